package entity

import (
	"time"

	"github.com/google/uuid"
)

type RagIndexStatus string

const (
	RagIndexReady    RagIndexStatus = "ready"
	RagIndexBuilding RagIndexStatus = "building"
	RagIndexFailed   RagIndexStatus = "failed"
)

// RagIndex is the per-workspace retrieval-index metadata row. One
// workspace owns exactly one "default" index.
type RagIndex struct {
	Id          uuid.UUID
	WorkspaceId uuid.UUID
	IndexName   string
	Engine      string
	StorageURI  string
	Dim         int
	Status      RagIndexStatus
	ObjectCount int64
	VectorCount int64
	UpdatedAt   time.Time
}
