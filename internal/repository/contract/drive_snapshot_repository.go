package contract

import (
	"context"

	"arcana-be/internal/entity"
	"arcana-be/internal/repository/specification"

	"github.com/google/uuid"
)

type DriveSnapshotRepository interface {
	Upsert(ctx context.Context, snapshot *entity.DriveFileSnapshot) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.DriveFileSnapshot, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.DriveFileSnapshot, error)
	DeleteByFile(ctx context.Context, dataSourceID uuid.UUID, fileID string) error
	DeleteByDataSource(ctx context.Context, dataSourceID uuid.UUID) error
}
