package contract

import (
	"context"

	"arcana-be/internal/entity"

	"github.com/google/uuid"
)

type DriveSyncStateRepository interface {
	FindByDataSourceForUpdate(ctx context.Context, dataSourceID uuid.UUID) (*entity.DriveSyncState, error)
	FindByDataSource(ctx context.Context, dataSourceID uuid.UUID) (*entity.DriveSyncState, error)
	Upsert(ctx context.Context, state *entity.DriveSyncState) error
	DeleteByDataSource(ctx context.Context, dataSourceID uuid.UUID) error
}
