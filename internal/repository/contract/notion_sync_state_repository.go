package contract

import (
	"context"

	"arcana-be/internal/entity"

	"github.com/google/uuid"
)

type NotionSyncStateRepository interface {
	// FindByDataSourceForUpdate reads the row under a row lock so one
	// sync run owns the cursor while it advances it.
	FindByDataSourceForUpdate(ctx context.Context, dataSourceID uuid.UUID) (*entity.NotionSyncState, error)
	FindByDataSource(ctx context.Context, dataSourceID uuid.UUID) (*entity.NotionSyncState, error)
	Upsert(ctx context.Context, state *entity.NotionSyncState) error
	DeleteByDataSource(ctx context.Context, dataSourceID uuid.UUID) error
}
