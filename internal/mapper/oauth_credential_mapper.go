package mapper

import (
	"encoding/json"

	"arcana-be/internal/entity"
	"arcana-be/internal/model"

	"gorm.io/datatypes"
)

type OauthCredentialMapper struct{}

func NewOauthCredentialMapper() *OauthCredentialMapper {
	return &OauthCredentialMapper{}
}

func (m *OauthCredentialMapper) ToEntity(c *model.OauthCredential) *entity.OauthCredential {
	if c == nil {
		return nil
	}

	var payload map[string]interface{}
	if len(c.ProviderPayload) > 0 {
		// Malformed payloads degrade to nil rather than failing the read.
		_ = json.Unmarshal(c.ProviderPayload, &payload)
	}

	return &entity.OauthCredential{
		Id:              c.Id,
		Provider:        c.Provider,
		UserId:          c.UserId,
		DataSourceId:    c.DataSourceId,
		AccessToken:     c.AccessToken,
		RefreshToken:    c.RefreshToken,
		ExpiresAt:       c.ExpiresAt,
		TokenType:       c.TokenType,
		ProviderPayload: payload,
		UpdatedAt:       c.UpdatedAt,
	}
}

func (m *OauthCredentialMapper) ToModel(c *entity.OauthCredential) *model.OauthCredential {
	if c == nil {
		return nil
	}

	var payload datatypes.JSON
	if c.ProviderPayload != nil {
		if raw, err := json.Marshal(c.ProviderPayload); err == nil {
			payload = raw
		}
	}

	return &model.OauthCredential{
		Id:              c.Id,
		Provider:        c.Provider,
		UserId:          c.UserId,
		DataSourceId:    c.DataSourceId,
		AccessToken:     c.AccessToken,
		RefreshToken:    c.RefreshToken,
		ExpiresAt:       c.ExpiresAt,
		TokenType:       c.TokenType,
		ProviderPayload: payload,
		UpdatedAt:       c.UpdatedAt,
	}
}
