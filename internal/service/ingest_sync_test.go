package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"arcana-be/internal/dto"
	"arcana-be/internal/entity"
	"arcana-be/internal/repository/specification"
	"arcana-be/pkg/chunker"
	"arcana-be/pkg/gdrive"
	"arcana-be/pkg/notion"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

// fakeNotionAPI serves scripted search batches and records the cursors
// it was asked to resume from.
type fakeNotionAPI struct {
	batches []*notion.PageBatch
	cursors []string
}

func (f *fakeNotionAPI) SearchPages(_ context.Context, cursor string) (*notion.PageBatch, error) {
	f.cursors = append(f.cursors, cursor)
	if len(f.batches) == 0 {
		return &notion.PageBatch{}, nil
	}
	batch := f.batches[0]
	f.batches = f.batches[1:]
	return batch, nil
}

func (f *fakeNotionAPI) FetchSegments(_ context.Context, pageID string) ([]chunker.Segment, error) {
	return []chunker.Segment{{Type: "paragraph", Text: "content of " + pageID}}, nil
}

// fakeDriveAPI serves a scripted folder tree and changes feed. A parent
// is reachable when it equals the root folder directly.
type fakeDriveAPI struct {
	tree        []*gdrive.File
	startToken  string
	changes     []*gdrive.ChangedFile
	nextToken   string
	files       map[string][]byte
	changesFrom []string
}

func (f *fakeDriveAPI) ListFolderTree(_ context.Context, _ string) ([]*gdrive.File, error) {
	return f.tree, nil
}

func (f *fakeDriveAPI) GetStartPageToken(_ context.Context) (string, error) {
	return f.startToken, nil
}

func (f *fakeDriveAPI) ListChanges(_ context.Context, token string) ([]*gdrive.ChangedFile, string, error) {
	f.changesFrom = append(f.changesFrom, token)
	return f.changes, f.nextToken, nil
}

func (f *fakeDriveAPI) IsReachable(_ context.Context, parents []string, rootFolderID string) (bool, error) {
	for _, parent := range parents {
		if parent == rootFolderID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeDriveAPI) ExportPDF(_ context.Context, fileID string) ([]byte, error) {
	return nil, fmt.Errorf("unexpected export of %s", fileID)
}

func (f *fakeDriveAPI) Download(_ context.Context, fileID string) ([]byte, error) {
	data, ok := f.files[fileID]
	if !ok {
		return nil, fmt.Errorf("no content for %s", fileID)
	}
	return data, nil
}

func (f *fakeDriveAPI) ConvertOfficePDF(_ context.Context, fileID, _ string) ([]byte, error) {
	return nil, fmt.Errorf("unexpected conversion of %s", fileID)
}

func (f *ingestFixture) seedCredential(t *testing.T, provider string, sourceID uuid.UUID) {
	t.Helper()
	require.NoError(t, f.uow.credentials.Create(context.Background(), &entity.OauthCredential{
		Id:           uuid.New(),
		Provider:     provider,
		DataSourceId: sourceID,
		AccessToken:  "tok",
	}))
}

func textFile(id, name, md5 string, parents ...string) *gdrive.File {
	return &gdrive.File{
		ID:          id,
		Name:        name,
		MimeType:    "text/plain",
		Md5Checksum: md5,
		WebViewLink: "https://drive.google.com/file/d/" + id,
		Parents:     parents,
	}
}

func TestNotionFullSyncReingestsEverything(t *testing.T) {
	f := newIngestFixture(t)
	ctx := context.Background()
	workspaceID := f.seedWorkspace(t, "docs")
	sourceID := f.seedSource(t, workspaceID, entity.SourceTypeNotion)
	f.seedCredential(t, entity.SourceTypeNotion, sourceID)

	// The last run finished an hour ago and left a parked cursor behind.
	since := time.Now().UTC().Add(-time.Hour)
	require.NoError(t, f.uow.notionState.Upsert(ctx, &entity.NotionSyncState{
		Id:           uuid.New(),
		DataSourceId: sourceID,
		Since:        &since,
		NextCursor:   "cursor-abc",
	}))

	// A record for a page the integration no longer returns.
	require.NoError(t, f.uow.records.ReplaceSource(ctx, workspaceID, entity.SourceTypeNotion, "ghost-page",
		[]*entity.SourceRecord{{
			Id:          entity.RecordID(entity.SourceTypeNotion, "ghost-page", 0),
			WorkspaceId: workspaceID,
			SourceType:  entity.SourceTypeNotion,
			SourceId:    "ghost-page",
			Text:        "stale",
		}}))

	api := &fakeNotionAPI{batches: []*notion.PageBatch{{
		Pages: []notion.PageSummary{{
			ID:         "page-1",
			Title:      "Notes",
			URL:        "https://notion.so/page-1",
			LastEdited: since.Add(-time.Hour),
		}},
	}}}
	f.impl.newNotionClient = func(string) notionAPI { return api }

	result, err := f.svc.Sync(ctx, workspaceID, &dto.SyncRequest{
		Provider: entity.SourceTypeNotion,
		Mode:     dto.SyncModeFull,
	})
	require.NoError(t, err)

	// Full mode ignores the edit watermark and the parked cursor, so the
	// untouched page is re-ingested from the top of the enumeration.
	assert.Equal(t, []string{""}, api.cursors)
	assert.False(t, result.Resumed)
	assert.Equal(t, 1, result.Indexed)
	assert.Zero(t, result.Skipped)
	assert.Equal(t, 1, result.Removed)

	recs, err := f.uow.records.FindAll(ctx, specification.BySourceType{SourceType: entity.SourceTypeNotion})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "page-1", recs[0].SourceId)

	state, err := f.uow.notionState.FindByDataSource(ctx, sourceID)
	require.NoError(t, err)
	assert.Empty(t, state.NextCursor)
	require.NotNil(t, state.LastFullSync)
	require.NotNil(t, state.Since)
	assert.True(t, state.Since.After(since))
}

func TestNotionIncrementalSkipsUntouchedPages(t *testing.T) {
	f := newIngestFixture(t)
	ctx := context.Background()
	workspaceID := f.seedWorkspace(t, "docs")
	sourceID := f.seedSource(t, workspaceID, entity.SourceTypeNotion)
	f.seedCredential(t, entity.SourceTypeNotion, sourceID)

	since := time.Now().UTC().Add(-time.Hour)
	require.NoError(t, f.uow.notionState.Upsert(ctx, &entity.NotionSyncState{
		Id:           uuid.New(),
		DataSourceId: sourceID,
		Since:        &since,
	}))

	api := &fakeNotionAPI{batches: []*notion.PageBatch{{
		Pages: []notion.PageSummary{
			{ID: "untouched", Title: "Old", LastEdited: since.Add(-time.Hour)},
			{ID: "edited", Title: "New", LastEdited: time.Now().UTC()},
		},
	}}}
	f.impl.newNotionClient = func(string) notionAPI { return api }

	result, err := f.svc.Sync(ctx, workspaceID, &dto.SyncRequest{
		Provider: entity.SourceTypeNotion,
		Mode:     dto.SyncModeIncremental,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Indexed)
	assert.Equal(t, 1, result.Skipped)

	recs, err := f.uow.records.FindAll(ctx, specification.BySourceType{SourceType: entity.SourceTypeNotion})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "edited", recs[0].SourceId)
}

func TestDriveBootstrapStoresStartPageToken(t *testing.T) {
	f := newIngestFixture(t)
	ctx := context.Background()
	workspaceID := f.seedWorkspace(t, "docs")
	sourceID := f.seedSource(t, workspaceID, entity.SourceTypeGdrive)

	api := &fakeDriveAPI{
		tree:       []*gdrive.File{textFile("f1", "readme.txt", "md5-1", "root-1")},
		startToken: "spt-1",
		files:      map[string][]byte{"f1": []byte("hello drive")},
	}
	f.impl.newDriveClient = func(context.Context, oauth2.TokenSource) (driveAPI, error) { return api, nil }

	result, err := f.svc.Sync(ctx, workspaceID, &dto.SyncRequest{
		Provider:     entity.SourceTypeGdrive,
		RootFolderId: "root-1",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Indexed)

	// The first run records the watermark the next incremental run will
	// consume the changes feed from.
	state, err := f.uow.driveState.FindByDataSource(ctx, sourceID)
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.Equal(t, "spt-1", state.StartPageToken)
	assert.Equal(t, "root-1", state.RootFolderId)
	require.NotNil(t, state.BootstrappedAt)
	require.NotNil(t, state.LastSynced)

	snap, err := f.uow.snapshots.FindOne(ctx, specification.ByFileID{FileID: "f1"})
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, "md5-1", snap.Md5Checksum)
}

func TestDriveIncrementalConsumesChanges(t *testing.T) {
	f := newIngestFixture(t)
	ctx := context.Background()
	workspaceID := f.seedWorkspace(t, "docs")
	sourceID := f.seedSource(t, workspaceID, entity.SourceTypeGdrive)

	bootstrapped := time.Now().UTC().Add(-time.Hour)
	require.NoError(t, f.uow.driveState.Upsert(ctx, &entity.DriveSyncState{
		Id:             uuid.New(),
		DataSourceId:   sourceID,
		RootFolderId:   "root-1",
		StartPageToken: "spt-1",
		BootstrappedAt: &bootstrapped,
	}))

	seedSnapshot := func(fileID, md5 string) {
		require.NoError(t, f.uow.snapshots.Upsert(ctx, &entity.DriveFileSnapshot{
			Id:           uuid.New(),
			DataSourceId: sourceID,
			FileId:       fileID,
			Name:         fileID + ".txt",
			MimeType:     "text/plain",
			Md5Checksum:  md5,
		}))
	}
	seedSnapshot("f1", "md5-old")
	seedSnapshot("f2", "md5-f2")
	require.NoError(t, f.uow.records.ReplaceSource(ctx, workspaceID, entity.SourceTypeGdrive, "f2",
		[]*entity.SourceRecord{{
			Id:          entity.RecordID(entity.SourceTypeGdrive, "f2", 0),
			WorkspaceId: workspaceID,
			SourceType:  entity.SourceTypeGdrive,
			SourceId:    "f2",
			Text:        "doomed",
		}}))

	api := &fakeDriveAPI{
		changes: []*gdrive.ChangedFile{
			// Content change inside the tree.
			{FileID: "f1", File: textFile("f1", "f1.txt", "md5-new", "root-1")},
			// Deleted outright.
			{FileID: "f2", Removed: true},
			// New file outside the synced folder.
			{FileID: "f3", File: textFile("f3", "f3.txt", "md5-f3", "elsewhere")},
		},
		nextToken: "spt-2",
		files:     map[string][]byte{"f1": []byte("fresh content")},
	}
	f.impl.newDriveClient = func(context.Context, oauth2.TokenSource) (driveAPI, error) { return api, nil }

	result, err := f.svc.Sync(ctx, workspaceID, &dto.SyncRequest{Provider: entity.SourceTypeGdrive})
	require.NoError(t, err)

	assert.Equal(t, []string{"spt-1"}, api.changesFrom)
	assert.Equal(t, 1, result.Indexed)
	assert.Equal(t, 1, result.Removed)
	assert.Equal(t, 1, result.Skipped)

	recs, err := f.uow.records.FindAll(ctx, specification.BySourceType{SourceType: entity.SourceTypeGdrive})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "f1", recs[0].SourceId)

	gone, err := f.uow.snapshots.FindOne(ctx, specification.ByFileID{FileID: "f2"})
	require.NoError(t, err)
	assert.Nil(t, gone)

	state, err := f.uow.driveState.FindByDataSource(ctx, sourceID)
	require.NoError(t, err)
	assert.Equal(t, "spt-2", state.StartPageToken)
}

func TestDriveRenameOnlyRefreshesSnapshot(t *testing.T) {
	f := newIngestFixture(t)
	ctx := context.Background()
	workspaceID := f.seedWorkspace(t, "docs")
	sourceID := f.seedSource(t, workspaceID, entity.SourceTypeGdrive)

	require.NoError(t, f.uow.driveState.Upsert(ctx, &entity.DriveSyncState{
		Id:             uuid.New(),
		DataSourceId:   sourceID,
		RootFolderId:   "root-1",
		StartPageToken: "spt-1",
	}))
	require.NoError(t, f.uow.snapshots.Upsert(ctx, &entity.DriveFileSnapshot{
		Id:           uuid.New(),
		DataSourceId: sourceID,
		FileId:       "f1",
		Name:         "old-name.txt",
		MimeType:     "text/plain",
		Md5Checksum:  "md5-same",
	}))

	api := &fakeDriveAPI{
		changes: []*gdrive.ChangedFile{
			{FileID: "f1", File: textFile("f1", "new-name.txt", "md5-same", "root-1")},
		},
		nextToken: "spt-2",
	}
	f.impl.newDriveClient = func(context.Context, oauth2.TokenSource) (driveAPI, error) { return api, nil }

	result, err := f.svc.Sync(ctx, workspaceID, &dto.SyncRequest{Provider: entity.SourceTypeGdrive})
	require.NoError(t, err)

	// Same checksum means no re-ingest, but the title follows the rename.
	assert.Zero(t, result.Indexed)
	assert.Equal(t, 1, result.Skipped)

	snap, err := f.uow.snapshots.FindOne(ctx, specification.ByFileID{FileID: "f1"})
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, "new-name.txt", snap.Name)

	recs, err := f.uow.records.FindAll(ctx, specification.BySourceType{SourceType: entity.SourceTypeGdrive})
	require.NoError(t, err)
	assert.Empty(t, recs)
}
