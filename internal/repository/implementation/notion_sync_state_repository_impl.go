package implementation

import (
	"context"
	"errors"

	"arcana-be/internal/entity"
	"arcana-be/internal/mapper"
	"arcana-be/internal/model"
	"arcana-be/internal/repository/contract"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type NotionSyncStateRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.SyncStateMapper
}

func NewNotionSyncStateRepository(db *gorm.DB) contract.NotionSyncStateRepository {
	return &NotionSyncStateRepositoryImpl{
		db:     db,
		mapper: mapper.NewSyncStateMapper(),
	}
}

func (r *NotionSyncStateRepositoryImpl) findByDataSource(ctx context.Context, dataSourceID uuid.UUID, forUpdate bool) (*entity.NotionSyncState, error) {
	var m model.NotionSyncState
	query := r.db.WithContext(ctx).Where("data_source_id = ?", dataSourceID)
	if forUpdate {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.NotionToEntity(&m), nil
}

func (r *NotionSyncStateRepositoryImpl) FindByDataSourceForUpdate(ctx context.Context, dataSourceID uuid.UUID) (*entity.NotionSyncState, error) {
	return r.findByDataSource(ctx, dataSourceID, true)
}

func (r *NotionSyncStateRepositoryImpl) FindByDataSource(ctx context.Context, dataSourceID uuid.UUID) (*entity.NotionSyncState, error) {
	return r.findByDataSource(ctx, dataSourceID, false)
}

func (r *NotionSyncStateRepositoryImpl) Upsert(ctx context.Context, state *entity.NotionSyncState) error {
	m := r.mapper.NotionToModel(state)
	if m.Id == uuid.Nil {
		m.Id = uuid.New()
	}
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "data_source_id"}},
		UpdateAll: true,
	}).Create(m).Error; err != nil {
		return err
	}
	*state = *r.mapper.NotionToEntity(m)
	return nil
}

func (r *NotionSyncStateRepositoryImpl) DeleteByDataSource(ctx context.Context, dataSourceID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("data_source_id = ?", dataSourceID).
		Delete(&model.NotionSyncState{}).Error
}
