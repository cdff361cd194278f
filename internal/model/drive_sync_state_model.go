package model

import (
	"time"

	"github.com/google/uuid"
)

type DriveSyncState struct {
	Id             uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	DataSourceId   uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex"`
	RootFolderId   string     `gorm:"type:varchar(128);not null;default:'root'"`
	StartPageToken string     `gorm:"type:varchar(128)"`
	BootstrappedAt *time.Time `gorm:""`
	LastSynced     *time.Time `gorm:""`
	UpdatedAt      time.Time  `gorm:"autoUpdateTime"`
}

func (DriveSyncState) TableName() string {
	return "drive_sync_states"
}
