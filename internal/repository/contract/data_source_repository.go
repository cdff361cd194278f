package contract

import (
	"context"

	"arcana-be/internal/entity"
	"arcana-be/internal/repository/specification"

	"github.com/google/uuid"
)

type DataSourceRepository interface {
	Create(ctx context.Context, source *entity.DataSource) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.DataSource, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.DataSource, error)
}
