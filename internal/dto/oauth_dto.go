package dto

import "github.com/google/uuid"

type AuthorizeRequest struct {
	Provider    string    `json:"provider" validate:"required,oneof=notion gdrive"`
	WorkspaceId uuid.UUID `json:"workspace_id" validate:"required"`
}

type AuthorizeResponse struct {
	// URL is the provider consent page the client must open.
	URL string `json:"url"`
}

type CallbackRequest struct {
	Code  string `json:"code" validate:"required"`
	State string `json:"state" validate:"required"`
}

type ConnectionResponse struct {
	DataSourceId uuid.UUID `json:"data_source_id"`
	Provider     string    `json:"provider"`
	WorkspaceId  uuid.UUID `json:"workspace_id"`
}
