package model

import (
	"time"

	"github.com/google/uuid"
)

type NotionSyncState struct {
	Id               uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	DataSourceId     uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex"`
	LastFullSync     *time.Time `gorm:""`
	Since            *time.Time `gorm:""`
	NextCursor       string     `gorm:"type:text"`
	RateLimitedUntil *time.Time `gorm:""`
	UpdatedAt        time.Time  `gorm:"autoUpdateTime"`
}

func (NotionSyncState) TableName() string {
	return "notion_sync_states"
}
