package entity

import (
	"time"

	"github.com/google/uuid"
)

// NotionSyncState tracks resumable enumeration for one connected Notion
// data source. NextCursor survives rate-limit interruptions; Since gates
// incremental pulls by last_edited_time.
type NotionSyncState struct {
	Id               uuid.UUID
	DataSourceId     uuid.UUID
	LastFullSync     *time.Time
	Since            *time.Time
	NextCursor       string
	RateLimitedUntil *time.Time
	UpdatedAt        time.Time
}
