package entity

import (
	"time"

	"github.com/google/uuid"
)

type DriveSyncState struct {
	Id             uuid.UUID
	DataSourceId   uuid.UUID
	RootFolderId   string
	StartPageToken string
	BootstrappedAt *time.Time
	LastSynced     *time.Time
	UpdatedAt      time.Time
}
