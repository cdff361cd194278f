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
	"gorm.io/gorm/clause"
)

type DriveSnapshotRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.SyncStateMapper
}

func NewDriveSnapshotRepository(db *gorm.DB) contract.DriveSnapshotRepository {
	return &DriveSnapshotRepositoryImpl{
		db:     db,
		mapper: mapper.NewSyncStateMapper(),
	}
}

func (r *DriveSnapshotRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *DriveSnapshotRepositoryImpl) Upsert(ctx context.Context, snapshot *entity.DriveFileSnapshot) error {
	m := r.mapper.SnapshotToModel(snapshot)
	if m.Id == uuid.Nil {
		m.Id = uuid.New()
	}
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "data_source_id"}, {Name: "file_id"}},
		UpdateAll: true,
	}).Create(m).Error; err != nil {
		return err
	}
	*snapshot = *r.mapper.SnapshotToEntity(m)
	return nil
}

func (r *DriveSnapshotRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.DriveFileSnapshot, error) {
	var m model.DriveFileSnapshot
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.SnapshotToEntity(&m), nil
}

func (r *DriveSnapshotRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.DriveFileSnapshot, error) {
	var models []*model.DriveFileSnapshot
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.DriveFileSnapshot, len(models))
	for i, m := range models {
		entities[i] = r.mapper.SnapshotToEntity(m)
	}
	return entities, nil
}

func (r *DriveSnapshotRepositoryImpl) DeleteByFile(ctx context.Context, dataSourceID uuid.UUID, fileID string) error {
	return r.db.WithContext(ctx).
		Where("data_source_id = ? AND file_id = ?", dataSourceID, fileID).
		Delete(&model.DriveFileSnapshot{}).Error
}

func (r *DriveSnapshotRepositoryImpl) DeleteByDataSource(ctx context.Context, dataSourceID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("data_source_id = ?", dataSourceID).
		Delete(&model.DriveFileSnapshot{}).Error
}
