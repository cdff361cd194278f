package entity

import (
	"time"

	"github.com/google/uuid"
)

type OauthCredential struct {
	Id              uuid.UUID
	Provider        string
	UserId          uuid.UUID
	DataSourceId    uuid.UUID
	AccessToken     string
	RefreshToken    string
	ExpiresAt       *time.Time
	TokenType       string
	ProviderPayload map[string]interface{}
	UpdatedAt       time.Time
}
