package model

import (
	"time"

	"github.com/google/uuid"
)

type RagIndex struct {
	Id          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	WorkspaceId uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_rag_index_ws_name"`
	IndexName   string    `gorm:"type:varchar(64);not null;default:'default';uniqueIndex:idx_rag_index_ws_name"`
	Engine      string    `gorm:"type:varchar(32);not null;default:'pgvector'"`
	StorageURI  string    `gorm:"type:text"`
	Dim         int       `gorm:"default:0"`
	Status      string    `gorm:"type:varchar(16);not null;default:'ready'"`
	ObjectCount int64     `gorm:"default:0"`
	VectorCount int64     `gorm:"default:0"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

func (RagIndex) TableName() string {
	return "rag_indexes"
}
