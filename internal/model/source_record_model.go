package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

// SourceRecord rows carry deterministic string ids of the form
// "{source_type}:{source_id}:{chunk_ord}" so replace-by-source can
// upsert in place.
type SourceRecord struct {
	Id          string    `gorm:"type:varchar(256);primaryKey"`
	WorkspaceId uuid.UUID `gorm:"type:uuid;not null;index"`
	SourceType  string    `gorm:"type:varchar(16);not null;index:idx_source_records_src"`
	SourceId    string    `gorm:"type:varchar(128);not null;index:idx_source_records_src"`
	ChunkOrd    int       `gorm:"not null;default:0"`
	Text        string    `gorm:"type:text;not null"`
	Title       string    `gorm:"type:varchar(512)"`
	URL         string    `gorm:"type:text"`

	BlockTypes   string `gorm:"type:text"`
	BlockMarkers string `gorm:"type:text"`
	BlockDepths  string `gorm:"type:text"`
	BlockStarts  string `gorm:"type:text"`

	StructuredFormat string `gorm:"type:varchar(16);not null;default:'none'"`
	StructuredText   string `gorm:"type:text"`
	FilePath         string `gorm:"type:text"`

	Embedding  pgvector.Vector `gorm:"type:vector"`
	IngestedAt time.Time       `gorm:"autoCreateTime"`
}

func (SourceRecord) TableName() string {
	return "source_records"
}
