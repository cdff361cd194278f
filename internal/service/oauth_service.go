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
	"arcana-be/pkg/oauth"

	"github.com/google/uuid"
)

type IOAuthService interface {
	// Authorize issues a single-use state and returns the provider's
	// consent URL.
	Authorize(ctx context.Context, req *dto.AuthorizeRequest) (*dto.AuthorizeResponse, error)

	// HandleCallback consumes the state, exchanges the code, and binds
	// the resulting credential to a workspace data source.
	HandleCallback(ctx context.Context, req *dto.CallbackRequest) (*dto.ConnectionResponse, error)
}

type oauthService struct {
	uowFactory unitofwork.RepositoryFactory
	states     oauth.StateStore
	notion     *oauth.NotionOAuth
	google     *oauth.GoogleOAuth
	logger     logger.ILogger
}

func NewOAuthService(
	uowFactory unitofwork.RepositoryFactory,
	states oauth.StateStore,
	notionOAuth *oauth.NotionOAuth,
	googleOAuth *oauth.GoogleOAuth,
	logger logger.ILogger,
) IOAuthService {
	return &oauthService{
		uowFactory: uowFactory,
		states:     states,
		notion:     notionOAuth,
		google:     googleOAuth,
		logger:     logger,
	}
}

func (s *oauthService) Authorize(ctx context.Context, req *dto.AuthorizeRequest) (*dto.AuthorizeResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	w, err := uow.WorkspaceRepository().FindOne(ctx, specification.ByID{ID: req.WorkspaceId})
	if err != nil {
		return nil, err
	}
	if w == nil {
		return nil, apperr.New(apperr.KindValidation, "workspace not found")
	}

	state, err := s.states.Issue(ctx, oauth.StatePayload{
		WorkspaceID: req.WorkspaceId.String(),
		Provider:    req.Provider,
	})
	if err != nil {
		return nil, err
	}

	var url string
	switch req.Provider {
	case entity.SourceTypeNotion:
		url = s.notion.AuthorizeURL(state)
	case entity.SourceTypeGdrive:
		url = s.google.AuthorizeURL(state)
	default:
		return nil, apperr.New(apperr.KindValidation, fmt.Sprintf("unknown provider %q", req.Provider))
	}

	s.logger.Info("oauth_service", "authorization started", map[string]interface{}{
		"workspace_id": req.WorkspaceId.String(),
		"provider":     req.Provider,
	})
	return &dto.AuthorizeResponse{URL: url}, nil
}

func (s *oauthService) HandleCallback(ctx context.Context, req *dto.CallbackRequest) (*dto.ConnectionResponse, error) {
	// 1. The state is single-use: replays and forged callbacks die here.
	payload, err := s.states.Consume(ctx, req.State)
	if err != nil {
		return nil, err
	}

	workspaceID, err := uuid.Parse(payload.WorkspaceID)
	if err != nil {
		return nil, apperr.New(apperr.KindValidation, "state carries an invalid workspace id")
	}

	// 2. Exchange the authorization code for tokens.
	var token *oauth.Token
	switch payload.Provider {
	case entity.SourceTypeNotion:
		token, err = s.notion.Exchange(ctx, req.Code)
	case entity.SourceTypeGdrive:
		token, err = s.google.Exchange(ctx, req.Code)
	default:
		return nil, apperr.New(apperr.KindValidation, fmt.Sprintf("unknown provider %q", payload.Provider))
	}
	if err != nil {
		return nil, err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	// 3. Reconnecting reuses the existing data source row so sync state
	// and index records stay attached.
	src, err := uow.DataSourceRepository().FindOne(ctx,
		specification.ByWorkspaceID{WorkspaceID: workspaceID},
		specification.ByProvider{Provider: payload.Provider},
	)
	if err != nil {
		return nil, err
	}
	if src == nil {
		src = &entity.DataSource{
			Id:          uuid.New(),
			WorkspaceId: workspaceID,
			Provider:    payload.Provider,
			CreatedAt:   time.Now().UTC(),
		}
		if err := uow.DataSourceRepository().Create(ctx, src); err != nil {
			return nil, err
		}
	}

	if err := s.saveCredential(ctx, uow, src, token); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.logger.Info("oauth_service", "provider connected", map[string]interface{}{
		"workspace_id":   workspaceID.String(),
		"provider":       payload.Provider,
		"data_source_id": src.Id.String(),
	})

	return &dto.ConnectionResponse{
		DataSourceId: src.Id,
		Provider:     payload.Provider,
		WorkspaceId:  workspaceID,
	}, nil
}

func (s *oauthService) saveCredential(ctx context.Context, uow unitofwork.UnitOfWork, src *entity.DataSource, token *oauth.Token) error {
	cred, err := uow.CredentialRepository().FindOne(ctx, specification.ByDataSourceID{DataSourceID: src.Id})
	if err != nil {
		return err
	}
	if cred == nil {
		cred = &entity.OauthCredential{
			Id:           uuid.New(),
			Provider:     src.Provider,
			DataSourceId: src.Id,
		}
		applyToken(cred, token)
		return uow.CredentialRepository().Create(ctx, cred)
	}

	applyToken(cred, token)
	return uow.CredentialRepository().Update(ctx, cred)
}

func applyToken(cred *entity.OauthCredential, token *oauth.Token) {
	cred.AccessToken = token.AccessToken
	if token.RefreshToken != "" {
		cred.RefreshToken = token.RefreshToken
	}
	cred.TokenType = token.TokenType
	cred.ExpiresAt = token.ExpiresAt
	if token.Payload != nil {
		cred.ProviderPayload = token.Payload
	}
	cred.UpdatedAt = time.Now().UTC()
}
