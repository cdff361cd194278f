package implementation

import (
	"context"
	"errors"

	"arcana-be/internal/entity"
	"arcana-be/internal/mapper"
	"arcana-be/internal/model"
	"arcana-be/internal/repository/contract"
	"arcana-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DataSourceRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.WorkspaceMapper
}

func NewDataSourceRepository(db *gorm.DB) contract.DataSourceRepository {
	return &DataSourceRepositoryImpl{
		db:     db,
		mapper: mapper.NewWorkspaceMapper(),
	}
}

func (r *DataSourceRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *DataSourceRepositoryImpl) Create(ctx context.Context, source *entity.DataSource) error {
	m := r.mapper.DataSourceToModel(source)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*source = *r.mapper.DataSourceToEntity(m)
	return nil
}

func (r *DataSourceRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.DataSource{}, id).Error
}

func (r *DataSourceRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.DataSource, error) {
	var m model.DataSource
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.DataSourceToEntity(&m), nil
}

func (r *DataSourceRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.DataSource, error) {
	var models []*model.DataSource
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.DataSource, len(models))
	for i, m := range models {
		entities[i] = r.mapper.DataSourceToEntity(m)
	}
	return entities, nil
}
