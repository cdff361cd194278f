package contract

import (
	"context"

	"arcana-be/internal/entity"
	"arcana-be/internal/repository/specification"

	"github.com/google/uuid"
)

// ScoredSourceRecord pairs a record with its cosine similarity.
type ScoredSourceRecord struct {
	Record     *entity.SourceRecord
	Similarity float64
}

type SourceRecordRepository interface {
	// ReplaceSource swaps the full record set of one (source_type,
	// source_id) inside a single transaction: upsert the new ids, then
	// delete ids that are no longer present. Readers observe either the
	// old complete set or the new one.
	ReplaceSource(ctx context.Context, workspaceID uuid.UUID, sourceType, sourceID string, records []*entity.SourceRecord) error

	DeleteBySource(ctx context.Context, workspaceID uuid.UUID, sourceType, sourceID string) error
	DeleteBySourceType(ctx context.Context, workspaceID uuid.UUID, sourceType string) error

	// SearchVector runs cosine-ranked retrieval over the workspace.
	SearchVector(ctx context.Context, workspaceID uuid.UUID, queryVector []float32, limit int) ([]*ScoredSourceRecord, error)

	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.SourceRecord, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	CountSources(ctx context.Context, workspaceID uuid.UUID) (int64, error)
}
