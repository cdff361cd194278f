package entity

import (
	"time"

	"github.com/google/uuid"
)

// DriveFileSnapshot caches the last-ingested revision markers per file.
// Md5Checksum decides re-ingest for binary files; Version+ModifiedTime
// decide for Google-native files.
type DriveFileSnapshot struct {
	Id           uuid.UUID
	DataSourceId uuid.UUID
	FileId       string
	Name         string
	MimeType     string
	Md5Checksum  string
	Version      int64
	ModifiedTime time.Time
	WebViewLink  string
	LastSynced   time.Time
}
