package contract

import (
	"context"

	"arcana-be/internal/entity"
	"arcana-be/internal/repository/specification"

	"github.com/google/uuid"
)

type RagIndexRepository interface {
	Create(ctx context.Context, index *entity.RagIndex) error
	Update(ctx context.Context, index *entity.RagIndex) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.RagIndex, error)

	// FindByWorkspace returns the workspace's "default" index row.
	FindByWorkspace(ctx context.Context, workspaceID uuid.UUID) (*entity.RagIndex, error)

	// RefreshCounts recomputes object_count and vector_count from the
	// live record set and persists them.
	RefreshCounts(ctx context.Context, workspaceID uuid.UUID) error
}
