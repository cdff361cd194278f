package service

import (
	"context"
	"net/url"
	"testing"
	"time"

	"arcana-be/internal/apperr"
	"arcana-be/internal/dto"
	"arcana-be/internal/entity"
	"arcana-be/pkg/oauth"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOAuthFixture(t *testing.T) (*fakeUow, IOAuthService, *oauth.MemoryStateStore) {
	t.Helper()
	uow := newFakeUow()
	states := oauth.NewMemoryStateStore()
	notionOAuth := oauth.NewNotionOAuth("notion-client", "notion-secret", "http://localhost/api/oauth/v1/callback", 10*time.Second)
	googleOAuth := oauth.NewGoogleOAuth("google-client", "google-secret", "http://localhost/api/oauth/v1/callback")

	svc := NewOAuthService(&fakeUowFactory{uow: uow}, states, notionOAuth, googleOAuth, nopLogger{})
	return uow, svc, states
}

func TestAuthorizeIssuesSingleUseState(t *testing.T) {
	uow, svc, states := newOAuthFixture(t)
	ctx := context.Background()

	workspaceID := uuid.New()
	require.NoError(t, uow.workspaces.Create(ctx, &entity.Workspace{Id: workspaceID, Name: "docs", Slug: "docs"}))

	resp, err := svc.Authorize(ctx, &dto.AuthorizeRequest{Provider: entity.SourceTypeNotion, WorkspaceId: workspaceID})
	require.NoError(t, err)

	parsed, err := url.Parse(resp.URL)
	require.NoError(t, err)
	assert.Equal(t, "api.notion.com", parsed.Host)
	assert.Equal(t, "notion-client", parsed.Query().Get("client_id"))

	state := parsed.Query().Get("state")
	require.NotEmpty(t, state)

	// The state round-trips back to the originating workspace, once.
	payload, err := states.Consume(ctx, state)
	require.NoError(t, err)
	assert.Equal(t, workspaceID.String(), payload.WorkspaceID)
	assert.Equal(t, entity.SourceTypeNotion, payload.Provider)

	_, err = states.Consume(ctx, state)
	require.Error(t, err)
}

func TestAuthorizeUnknownWorkspace(t *testing.T) {
	_, svc, _ := newOAuthFixture(t)

	_, err := svc.Authorize(context.Background(), &dto.AuthorizeRequest{
		Provider:    entity.SourceTypeNotion,
		WorkspaceId: uuid.New(),
	})
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestAuthorizeUnknownProvider(t *testing.T) {
	uow, svc, _ := newOAuthFixture(t)
	ctx := context.Background()

	workspaceID := uuid.New()
	require.NoError(t, uow.workspaces.Create(ctx, &entity.Workspace{Id: workspaceID, Name: "docs", Slug: "docs"}))

	_, err := svc.Authorize(ctx, &dto.AuthorizeRequest{Provider: "dropbox", WorkspaceId: workspaceID})
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestHandleCallbackRejectsForgedState(t *testing.T) {
	_, svc, _ := newOAuthFixture(t)

	_, err := svc.HandleCallback(context.Background(), &dto.CallbackRequest{
		Code:  "code-123",
		State: "never-issued",
	})
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestApplyTokenKeepsRefreshTokenWhenOmitted(t *testing.T) {
	cred := &entity.OauthCredential{
		AccessToken:  "old-access",
		RefreshToken: "old-refresh",
	}

	// Google reissues the refresh token only on the first consent.
	applyToken(cred, &oauth.Token{
		AccessToken: "new-access",
		TokenType:   "Bearer",
	})

	assert.Equal(t, "new-access", cred.AccessToken)
	assert.Equal(t, "old-refresh", cred.RefreshToken)
	assert.False(t, cred.UpdatedAt.IsZero())
}

func TestApplyTokenReplacesPayload(t *testing.T) {
	cred := &entity.OauthCredential{
		ProviderPayload: map[string]interface{}{"workspace_name": "old"},
	}

	applyToken(cred, &oauth.Token{
		AccessToken: "access",
		Payload:     map[string]interface{}{"duplicated_template_id": "tpl-1"},
	})

	assert.Equal(t, "tpl-1", cred.ProviderPayload["duplicated_template_id"])
}
