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

type RagIndexRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.WorkspaceMapper
}

func NewRagIndexRepository(db *gorm.DB) contract.RagIndexRepository {
	return &RagIndexRepositoryImpl{
		db:     db,
		mapper: mapper.NewWorkspaceMapper(),
	}
}

func (r *RagIndexRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *RagIndexRepositoryImpl) Create(ctx context.Context, index *entity.RagIndex) error {
	m := r.mapper.RagIndexToModel(index)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*index = *r.mapper.RagIndexToEntity(m)
	return nil
}

func (r *RagIndexRepositoryImpl) Update(ctx context.Context, index *entity.RagIndex) error {
	m := r.mapper.RagIndexToModel(index)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*index = *r.mapper.RagIndexToEntity(m)
	return nil
}

func (r *RagIndexRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.RagIndex, error) {
	var m model.RagIndex
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.RagIndexToEntity(&m), nil
}

func (r *RagIndexRepositoryImpl) FindByWorkspace(ctx context.Context, workspaceID uuid.UUID) (*entity.RagIndex, error) {
	return r.FindOne(ctx,
		specification.ByWorkspaceID{WorkspaceID: workspaceID},
		specification.Filter("index_name", "default"),
	)
}

func (r *RagIndexRepositoryImpl) RefreshCounts(ctx context.Context, workspaceID uuid.UUID) error {
	var vectorCount int64
	if err := r.db.WithContext(ctx).
		Model(&model.SourceRecord{}).
		Where("workspace_id = ?", workspaceID).
		Count(&vectorCount).Error; err != nil {
		return err
	}

	var objectCount int64
	if err := r.db.WithContext(ctx).
		Model(&model.SourceRecord{}).
		Where("workspace_id = ?", workspaceID).
		Distinct("source_type", "source_id").
		Count(&objectCount).Error; err != nil {
		return err
	}

	return r.db.WithContext(ctx).
		Model(&model.RagIndex{}).
		Where("workspace_id = ? AND index_name = ?", workspaceID, "default").
		Updates(map[string]interface{}{
			"object_count": objectCount,
			"vector_count": vectorCount,
		}).Error
}
