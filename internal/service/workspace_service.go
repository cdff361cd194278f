package service

import (
	"context"
	"fmt"
	"time"

	"arcana-be/internal/apperr"
	"arcana-be/internal/dto"
	"arcana-be/internal/entity"
	"arcana-be/internal/pkg/logger"
	"arcana-be/internal/repository/specification"
	"arcana-be/internal/repository/unitofwork"
	"arcana-be/internal/workspace"

	"github.com/google/uuid"
)

type IWorkspaceService interface {
	Create(ctx context.Context, req *dto.CreateWorkspaceRequest) (*dto.WorkspaceResponse, error)
	GetAll(ctx context.Context) ([]*dto.WorkspaceResponse, error)
	Show(ctx context.Context, id uuid.UUID) (*dto.WorkspaceResponse, error)
	Status(ctx context.Context, id uuid.UUID) (*dto.WorkspaceStatusResponse, error)
}

type workspaceService struct {
	uowFactory  unitofwork.RepositoryFactory
	storageRoot string
	logger      logger.ILogger
}

func NewWorkspaceService(uowFactory unitofwork.RepositoryFactory, storageRoot string, logger logger.ILogger) IWorkspaceService {
	return &workspaceService{
		uowFactory:  uowFactory,
		storageRoot: storageRoot,
		logger:      logger,
	}
}

func (ws *workspaceService) Create(ctx context.Context, req *dto.CreateWorkspaceRequest) (*dto.WorkspaceResponse, error) {
	uow := ws.uowFactory.NewUnitOfWork(ctx)

	// 1. Slugs identify the workspace's storage directory, so they must
	// be unique across the instance.
	slug := workspace.SanitizeSlug(req.Name)
	existing, err := uow.WorkspaceRepository().FindOne(ctx, specification.BySlug{Slug: slug})
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperr.New(apperr.KindValidation, fmt.Sprintf("workspace slug %q already in use", slug))
	}

	newWorkspace := &entity.Workspace{
		Id:        uuid.New(),
		Name:      req.Name,
		Slug:      slug,
		CreatedAt: time.Now().UTC(),
	}
	if err := uow.WorkspaceRepository().Create(ctx, newWorkspace); err != nil {
		return nil, err
	}

	// 2. Provision the storage tree up front so the first sync never
	// races directory creation.
	wctx := workspace.NewContext(newWorkspace.Id, newWorkspace.Name, ws.storageRoot)
	if err := wctx.EnsureDirs(); err != nil {
		return nil, apperr.Wrap(apperr.KindIndexWriteFailed, "provision workspace storage", err)
	}

	ws.logger.Info("workspace_service", "workspace created", map[string]interface{}{
		"workspace_id": newWorkspace.Id.String(),
		"slug":         slug,
	})

	return toWorkspaceResponse(newWorkspace), nil
}

func (ws *workspaceService) GetAll(ctx context.Context) ([]*dto.WorkspaceResponse, error) {
	uow := ws.uowFactory.NewUnitOfWork(ctx)

	all, err := uow.WorkspaceRepository().FindAll(ctx, specification.OrderBy{Field: "created_at"})
	if err != nil {
		return nil, err
	}

	responses := make([]*dto.WorkspaceResponse, 0, len(all))
	for _, w := range all {
		responses = append(responses, toWorkspaceResponse(w))
	}
	return responses, nil
}

func (ws *workspaceService) Show(ctx context.Context, id uuid.UUID) (*dto.WorkspaceResponse, error) {
	uow := ws.uowFactory.NewUnitOfWork(ctx)

	w, err := uow.WorkspaceRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if w == nil {
		return nil, apperr.New(apperr.KindValidation, "workspace not found")
	}
	return toWorkspaceResponse(w), nil
}

// Status reports the workspace's index row and connected data sources in
// one response.
func (ws *workspaceService) Status(ctx context.Context, id uuid.UUID) (*dto.WorkspaceStatusResponse, error) {
	uow := ws.uowFactory.NewUnitOfWork(ctx)

	w, err := uow.WorkspaceRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if w == nil {
		return nil, apperr.New(apperr.KindValidation, "workspace not found")
	}

	resp := &dto.WorkspaceStatusResponse{
		Workspace:   *toWorkspaceResponse(w),
		DataSources: []dto.WorkspaceDataSource{},
	}

	idx, err := uow.RagIndexRepository().FindByWorkspace(ctx, w.Id)
	if err != nil {
		return nil, err
	}
	if idx != nil {
		resp.Index = &dto.WorkspaceIndexStatus{
			Engine:      idx.Engine,
			Dim:         idx.Dim,
			Status:      string(idx.Status),
			ObjectCount: idx.ObjectCount,
			VectorCount: idx.VectorCount,
		}
	}

	sources, err := uow.DataSourceRepository().FindAll(ctx, specification.ByWorkspaceID{WorkspaceID: w.Id})
	if err != nil {
		return nil, err
	}
	for _, src := range sources {
		entry := dto.WorkspaceDataSource{
			Id:        src.Id,
			Provider:  src.Provider,
			Connected: true,
		}
		entry.LastSync = ws.lastSync(ctx, uow, src)
		resp.DataSources = append(resp.DataSources, entry)
	}

	return resp, nil
}

func (ws *workspaceService) lastSync(ctx context.Context, uow unitofwork.UnitOfWork, src *entity.DataSource) *time.Time {
	switch src.Provider {
	case entity.SourceTypeNotion:
		state, err := uow.NotionSyncStateRepository().FindByDataSource(ctx, src.Id)
		if err != nil || state == nil {
			return nil
		}
		return state.LastFullSync
	case entity.SourceTypeGdrive:
		state, err := uow.DriveSyncStateRepository().FindByDataSource(ctx, src.Id)
		if err != nil || state == nil {
			return nil
		}
		return state.LastSynced
	}
	return nil
}

func toWorkspaceResponse(w *entity.Workspace) *dto.WorkspaceResponse {
	return &dto.WorkspaceResponse{
		Id:        w.Id,
		Name:      w.Name,
		Slug:      w.Slug,
		CreatedAt: w.CreatedAt,
	}
}
