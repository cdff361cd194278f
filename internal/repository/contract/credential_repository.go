package contract

import (
	"context"

	"arcana-be/internal/entity"
	"arcana-be/internal/repository/specification"

	"github.com/google/uuid"
)

type CredentialRepository interface {
	Create(ctx context.Context, credential *entity.OauthCredential) error

	// Update is last-writer-wins on updated_at; the token provider
	// coalesces concurrent refreshes before calling it.
	Update(ctx context.Context, credential *entity.OauthCredential) error

	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.OauthCredential, error)
	DeleteByDataSource(ctx context.Context, dataSourceID uuid.UUID) error
}
