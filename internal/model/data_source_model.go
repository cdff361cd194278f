package model

import (
	"time"

	"github.com/google/uuid"
)

type DataSource struct {
	Id          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	WorkspaceId uuid.UUID `gorm:"type:uuid;not null;index"`
	Provider    string    `gorm:"type:varchar(32);not null;index"`
	UserId      uuid.UUID `gorm:"type:uuid;not null"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
}

func (DataSource) TableName() string {
	return "data_sources"
}
