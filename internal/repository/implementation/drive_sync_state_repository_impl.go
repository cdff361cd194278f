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

type DriveSyncStateRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.SyncStateMapper
}

func NewDriveSyncStateRepository(db *gorm.DB) contract.DriveSyncStateRepository {
	return &DriveSyncStateRepositoryImpl{
		db:     db,
		mapper: mapper.NewSyncStateMapper(),
	}
}

func (r *DriveSyncStateRepositoryImpl) findByDataSource(ctx context.Context, dataSourceID uuid.UUID, forUpdate bool) (*entity.DriveSyncState, error) {
	var m model.DriveSyncState
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
	return r.mapper.DriveToEntity(&m), nil
}

func (r *DriveSyncStateRepositoryImpl) FindByDataSourceForUpdate(ctx context.Context, dataSourceID uuid.UUID) (*entity.DriveSyncState, error) {
	return r.findByDataSource(ctx, dataSourceID, true)
}

func (r *DriveSyncStateRepositoryImpl) FindByDataSource(ctx context.Context, dataSourceID uuid.UUID) (*entity.DriveSyncState, error) {
	return r.findByDataSource(ctx, dataSourceID, false)
}

func (r *DriveSyncStateRepositoryImpl) Upsert(ctx context.Context, state *entity.DriveSyncState) error {
	m := r.mapper.DriveToModel(state)
	if m.Id == uuid.Nil {
		m.Id = uuid.New()
	}
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "data_source_id"}},
		UpdateAll: true,
	}).Create(m).Error; err != nil {
		return err
	}
	*state = *r.mapper.DriveToEntity(m)
	return nil
}

func (r *DriveSyncStateRepositoryImpl) DeleteByDataSource(ctx context.Context, dataSourceID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("data_source_id = ?", dataSourceID).
		Delete(&model.DriveSyncState{}).Error
}
