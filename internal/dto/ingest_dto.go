package dto

import "time"

// Sync modes. Full re-pulls everything and sweeps deletions;
// incremental trusts the stored sync state. An empty mode means
// incremental.
const (
	SyncModeFull        = "full"
	SyncModeIncremental = "incremental"
)

type SyncRequest struct {
	Provider string `json:"provider" validate:"required,oneof=notion gdrive"`
	Mode     string `json:"mode" validate:"omitempty,oneof=full incremental"`
	// RootFolderId scopes a Drive sync; ignored for Notion.
	RootFolderId string `json:"root_folder_id" validate:"omitempty"`
}

type SyncResultResponse struct {
	Provider string `json:"provider"`
	Indexed  int    `json:"indexed"`
	Skipped  int    `json:"skipped"`
	Removed  int    `json:"removed"`
	// Resumed is true when the run continued from a saved cursor.
	Resumed          bool       `json:"resumed"`
	RateLimitedUntil *time.Time `json:"rate_limited_until,omitempty"`
}

type DisconnectRequest struct {
	Provider string `json:"provider" validate:"required,oneof=notion gdrive"`
}

type SyncStateResponse struct {
	Provider         string     `json:"provider"`
	LastFullSync     *time.Time `json:"last_full_sync,omitempty"`
	NextCursor       string     `json:"next_cursor,omitempty"`
	RateLimitedUntil *time.Time `json:"rate_limited_until,omitempty"`
}
