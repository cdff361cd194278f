package entity

import (
	"time"

	"github.com/google/uuid"
)

const (
	SourceTypeNotion = "notion"
	SourceTypeGdrive = "gdrive"
)

type DataSource struct {
	Id          uuid.UUID
	WorkspaceId uuid.UUID
	Provider    string
	UserId      uuid.UUID
	CreatedAt   time.Time
}
