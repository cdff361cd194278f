package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type OauthCredential struct {
	Id              uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Provider        string         `gorm:"type:varchar(32);not null;index"`
	UserId          uuid.UUID      `gorm:"type:uuid;not null;index"`
	DataSourceId    uuid.UUID      `gorm:"type:uuid;not null;index"`
	AccessToken     string         `gorm:"type:text;not null"`
	RefreshToken    string         `gorm:"type:text"`
	ExpiresAt       *time.Time     `gorm:""`
	TokenType       string         `gorm:"type:varchar(32)"`
	ProviderPayload datatypes.JSON `gorm:"type:jsonb"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime"`
}

func (OauthCredential) TableName() string {
	return "oauth_credentials"
}
