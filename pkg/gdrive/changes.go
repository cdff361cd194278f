package gdrive

import (
	"strings"

	"arcana-be/internal/entity"
)

// ChangeAction classifies what the sync worker must do with a file.
type ChangeAction string

const (
	ActionIndex  ChangeAction = "index"
	ActionSkip   ChangeAction = "skip"
	ActionRemove ChangeAction = "remove"
)

// Change pairs a file with its classified action. Remove entries only
// carry the file id.
type Change struct {
	File   *File
	FileID string
	Action ChangeAction
}

// supportedMimes are the ingestible document types. Everything else in
// the tree is skipped without touching its snapshot.
var supportedMimes = map[string]bool{
	MimeGoogleDoc:   true,
	MimeGoogleSheet: true,
	MimeGoogleSlide: true,
	MimePDF:         true,
	MimeDocx:        true,
	MimeXlsx:        true,
	MimePptx:        true,
	"text/plain":    true,
	"text/markdown": true,
}

// IsSupported reports whether the pipeline can extract text from the
// MIME type.
func IsSupported(mimeType string) bool {
	return supportedMimes[mimeType]
}

// IsGoogleNative reports whether a file is a Workspace document with
// no binary payload of its own.
func IsGoogleNative(mimeType string) bool {
	return strings.HasPrefix(mimeType, "application/vnd.google-apps")
}

// NeedsReindex decides whether a listed file changed since its last
// ingest. Binary files compare md5; Google-native files expose no md5,
// so version plus modified time decide. A missing snapshot always
// reindexes.
func NeedsReindex(f *File, snap *entity.DriveFileSnapshot) bool {
	if snap == nil {
		return true
	}
	if IsGoogleNative(f.MimeType) {
		return f.Version != snap.Version || !f.ModifiedTime.Equal(snap.ModifiedTime)
	}
	return f.Md5Checksum != snap.Md5Checksum
}

// ClassifyChange folds one changes-feed entry into the action the sync
// worker takes. inScope is the reachability verdict for the file's
// current parents; a file that left the workspace tree is treated like
// a removal when it was ever indexed.
func ClassifyChange(ch *ChangedFile, snap *entity.DriveFileSnapshot, inScope bool) ChangeAction {
	switch {
	case ch.Removed || ch.File == nil:
		if snap == nil {
			return ActionSkip
		}
		return ActionRemove
	case !inScope:
		if snap == nil {
			return ActionSkip
		}
		return ActionRemove
	case !IsSupported(ch.File.MimeType):
		return ActionSkip
	case NeedsReindex(ch.File, snap):
		return ActionIndex
	default:
		return ActionSkip
	}
}

// Classify diffs the current folder listing against the stored
// snapshots: unsupported types skip, unchanged files skip, changed or
// new files index, and snapshot entries that vanished from the tree
// (moved out, trashed, deleted) remove.
func Classify(listing []*File, snapshots []*entity.DriveFileSnapshot) []Change {
	snapByID := make(map[string]*entity.DriveFileSnapshot, len(snapshots))
	for _, snap := range snapshots {
		snapByID[snap.FileId] = snap
	}

	var changes []Change
	seen := make(map[string]bool, len(listing))
	for _, f := range listing {
		seen[f.ID] = true

		if f.Trashed {
			if _, had := snapByID[f.ID]; had {
				changes = append(changes, Change{FileID: f.ID, Action: ActionRemove})
			}
			continue
		}
		if !IsSupported(f.MimeType) {
			changes = append(changes, Change{File: f, FileID: f.ID, Action: ActionSkip})
			continue
		}
		if NeedsReindex(f, snapByID[f.ID]) {
			changes = append(changes, Change{File: f, FileID: f.ID, Action: ActionIndex})
		} else {
			changes = append(changes, Change{File: f, FileID: f.ID, Action: ActionSkip})
		}
	}

	for _, snap := range snapshots {
		if !seen[snap.FileId] {
			changes = append(changes, Change{FileID: snap.FileId, Action: ActionRemove})
		}
	}
	return changes
}
