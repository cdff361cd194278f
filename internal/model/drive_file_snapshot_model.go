package model

import (
	"time"

	"github.com/google/uuid"
)

type DriveFileSnapshot struct {
	Id           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	DataSourceId uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_snapshot_ds_file"`
	FileId       string    `gorm:"type:varchar(128);not null;uniqueIndex:idx_snapshot_ds_file"`
	Name         string    `gorm:"type:varchar(512)"`
	MimeType     string    `gorm:"type:varchar(128)"`
	Md5Checksum  string    `gorm:"type:varchar(64)"`
	Version      int64     `gorm:"default:0"`
	ModifiedTime time.Time `gorm:""`
	WebViewLink  string    `gorm:"type:text"`
	LastSynced   time.Time `gorm:"autoUpdateTime"`
}

func (DriveFileSnapshot) TableName() string {
	return "drive_file_snapshots"
}
