package mapper

import (
	"time"

	"arcana-be/internal/entity"
	"arcana-be/internal/model"
)

type WorkspaceMapper struct{}

func NewWorkspaceMapper() *WorkspaceMapper {
	return &WorkspaceMapper{}
}

func (m *WorkspaceMapper) ToEntity(w *model.Workspace) *entity.Workspace {
	if w == nil {
		return nil
	}

	var updatedAt *time.Time
	if !w.UpdatedAt.IsZero() {
		t := w.UpdatedAt
		updatedAt = &t
	}

	return &entity.Workspace{
		Id:        w.Id,
		Name:      w.Name,
		Slug:      w.Slug,
		CreatedAt: w.CreatedAt,
		UpdatedAt: updatedAt,
	}
}

func (m *WorkspaceMapper) ToModel(w *entity.Workspace) *model.Workspace {
	if w == nil {
		return nil
	}

	var updatedAt time.Time
	if w.UpdatedAt != nil {
		updatedAt = *w.UpdatedAt
	}

	return &model.Workspace{
		Id:        w.Id,
		Name:      w.Name,
		Slug:      w.Slug,
		CreatedAt: w.CreatedAt,
		UpdatedAt: updatedAt,
	}
}

func (m *WorkspaceMapper) RagIndexToEntity(r *model.RagIndex) *entity.RagIndex {
	if r == nil {
		return nil
	}
	return &entity.RagIndex{
		Id:          r.Id,
		WorkspaceId: r.WorkspaceId,
		IndexName:   r.IndexName,
		Engine:      r.Engine,
		StorageURI:  r.StorageURI,
		Dim:         r.Dim,
		Status:      entity.RagIndexStatus(r.Status),
		ObjectCount: r.ObjectCount,
		VectorCount: r.VectorCount,
		UpdatedAt:   r.UpdatedAt,
	}
}

func (m *WorkspaceMapper) RagIndexToModel(r *entity.RagIndex) *model.RagIndex {
	if r == nil {
		return nil
	}
	return &model.RagIndex{
		Id:          r.Id,
		WorkspaceId: r.WorkspaceId,
		IndexName:   r.IndexName,
		Engine:      r.Engine,
		StorageURI:  r.StorageURI,
		Dim:         r.Dim,
		Status:      string(r.Status),
		ObjectCount: r.ObjectCount,
		VectorCount: r.VectorCount,
		UpdatedAt:   r.UpdatedAt,
	}
}

func (m *WorkspaceMapper) DataSourceToEntity(d *model.DataSource) *entity.DataSource {
	if d == nil {
		return nil
	}
	return &entity.DataSource{
		Id:          d.Id,
		WorkspaceId: d.WorkspaceId,
		Provider:    d.Provider,
		UserId:      d.UserId,
		CreatedAt:   d.CreatedAt,
	}
}

func (m *WorkspaceMapper) DataSourceToModel(d *entity.DataSource) *model.DataSource {
	if d == nil {
		return nil
	}
	return &model.DataSource{
		Id:          d.Id,
		WorkspaceId: d.WorkspaceId,
		Provider:    d.Provider,
		UserId:      d.UserId,
		CreatedAt:   d.CreatedAt,
	}
}
