package implementation

import (
	"arcana-be/internal/entity"
	"arcana-be/internal/mapper"
	"arcana-be/internal/model"
	"arcana-be/internal/repository/contract"
	"arcana-be/internal/repository/specification"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"context"
)

type SourceRecordRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.SourceRecordMapper
}

func NewSourceRecordRepository(db *gorm.DB) contract.SourceRecordRepository {
	return &SourceRecordRepositoryImpl{
		db:     db,
		mapper: mapper.NewSourceRecordMapper(),
	}
}

func (r *SourceRecordRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *SourceRecordRepositoryImpl) ReplaceSource(ctx context.Context, workspaceID uuid.UUID, sourceType, sourceID string, records []*entity.SourceRecord) error {
	models := r.mapper.ToModels(records)
	newIDs := make([]string, len(models))
	for i, m := range models {
		newIDs[i] = m.Id
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(models) > 0 {
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "id"}},
				UpdateAll: true,
			}).Create(models).Error; err != nil {
				return err
			}
		}

		// Drop pre-existing ids that are not in the new set.
		stale := tx.
			Where("workspace_id = ? AND source_type = ? AND source_id = ?", workspaceID, sourceType, sourceID)
		if len(newIDs) > 0 {
			stale = stale.Where("id NOT IN ?", newIDs)
		}
		return stale.Delete(&model.SourceRecord{}).Error
	})
}

func (r *SourceRecordRepositoryImpl) DeleteBySource(ctx context.Context, workspaceID uuid.UUID, sourceType, sourceID string) error {
	return r.db.WithContext(ctx).
		Where("workspace_id = ? AND source_type = ? AND source_id = ?", workspaceID, sourceType, sourceID).
		Delete(&model.SourceRecord{}).Error
}

func (r *SourceRecordRepositoryImpl) DeleteBySourceType(ctx context.Context, workspaceID uuid.UUID, sourceType string) error {
	return r.db.WithContext(ctx).
		Where("workspace_id = ? AND source_type = ?", workspaceID, sourceType).
		Delete(&model.SourceRecord{}).Error
}

func (r *SourceRecordRepositoryImpl) SearchVector(ctx context.Context, workspaceID uuid.UUID, queryVector []float32, limit int) ([]*contract.ScoredSourceRecord, error) {
	if limit <= 0 {
		limit = 5
	}

	// Cosine distance in pgvector is 1 - cosine_similarity, so
	// 1 - (embedding <=> query) recovers the similarity score.
	type result struct {
		model.SourceRecord
		Similarity float64
	}
	var results []result

	qv := pgvector.NewVector(queryVector)

	err := r.db.WithContext(ctx).
		Table("source_records").
		Select("source_records.*, 1 - (embedding <=> ?) as similarity", qv).
		Where("workspace_id = ?", workspaceID).
		Order("similarity DESC").
		Limit(limit).
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	scored := make([]*contract.ScoredSourceRecord, len(results))
	for i, res := range results {
		scored[i] = &contract.ScoredSourceRecord{
			Record:     r.mapper.ToEntity(&res.SourceRecord),
			Similarity: res.Similarity,
		}
	}
	return scored, nil
}

func (r *SourceRecordRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.SourceRecord, error) {
	var models []*model.SourceRecord
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *SourceRecordRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	err := query.Model(&model.SourceRecord{}).Count(&count).Error
	return count, err
}

func (r *SourceRecordRepositoryImpl) CountSources(ctx context.Context, workspaceID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.SourceRecord{}).
		Where("workspace_id = ?", workspaceID).
		Distinct("source_type", "source_id").
		Count(&count).Error
	return count, err
}
