package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateWorkspaceRequest struct {
	Name string `json:"name" validate:"required,min=1,max=120"`
}

type WorkspaceResponse struct {
	Id        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"created_at"`
}

type WorkspaceIndexStatus struct {
	Engine      string `json:"engine"`
	Dim         int    `json:"dim"`
	Status      string `json:"status"`
	ObjectCount int64  `json:"object_count"`
	VectorCount int64  `json:"vector_count"`
}

type WorkspaceDataSource struct {
	Id        uuid.UUID  `json:"id"`
	Provider  string     `json:"provider"`
	Connected bool       `json:"connected"`
	LastSync  *time.Time `json:"last_sync,omitempty"`
}

type WorkspaceStatusResponse struct {
	Workspace   WorkspaceResponse     `json:"workspace"`
	Index       *WorkspaceIndexStatus `json:"index,omitempty"`
	DataSources []WorkspaceDataSource `json:"data_sources"`
}
