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

type CredentialRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.OauthCredentialMapper
}

func NewCredentialRepository(db *gorm.DB) contract.CredentialRepository {
	return &CredentialRepositoryImpl{
		db:     db,
		mapper: mapper.NewOauthCredentialMapper(),
	}
}

func (r *CredentialRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *CredentialRepositoryImpl) Create(ctx context.Context, credential *entity.OauthCredential) error {
	m := r.mapper.ToModel(credential)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*credential = *r.mapper.ToEntity(m)
	return nil
}

func (r *CredentialRepositoryImpl) Update(ctx context.Context, credential *entity.OauthCredential) error {
	m := r.mapper.ToModel(credential)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*credential = *r.mapper.ToEntity(m)
	return nil
}

func (r *CredentialRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.OauthCredential, error) {
	var m model.OauthCredential
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *CredentialRepositoryImpl) DeleteByDataSource(ctx context.Context, dataSourceID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("data_source_id = ?", dataSourceID).
		Delete(&model.OauthCredential{}).Error
}
