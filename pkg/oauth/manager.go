package oauth

import (
	"context"
	"fmt"
	"time"

	"arcana-be/internal/apperr"
	"arcana-be/internal/entity"
	"arcana-be/internal/pkg/logger"
	"arcana-be/internal/repository/contract"
	"arcana-be/internal/repository/specification"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"
)

// refreshWindow refreshes tokens that expire within this margin so a
// long provider call never starts with a token about to die.
const refreshWindow = 90 * time.Second

// Manager serves access tokens from stored credentials and coalesces
// concurrent refreshes of the same connection into one provider call.
type Manager struct {
	creds      contract.CredentialRepository
	refreshers map[string]Refresher
	group      singleflight.Group
	log        logger.ILogger
	window     time.Duration
	now        func() time.Time
}

func NewManager(creds contract.CredentialRepository, refreshers map[string]Refresher, log logger.ILogger) *Manager {
	return &Manager{
		creds:      creds,
		refreshers: refreshers,
		log:        log,
		window:     refreshWindow,
		now:        time.Now,
	}
}

// AccessToken returns a token valid for at least the refresh window.
func (m *Manager) AccessToken(ctx context.Context, dataSourceID string) (string, error) {
	id, err := uuid.Parse(dataSourceID)
	if err != nil {
		return "", apperr.Wrap(apperr.KindValidation, "invalid data source id", err)
	}

	cred, err := m.lookup(ctx, id)
	if err != nil {
		return "", err
	}
	if m.fresh(cred) {
		return cred.AccessToken, nil
	}

	// Coalesce concurrent refreshes per connection.
	token, err, _ := m.group.Do(dataSourceID, func() (interface{}, error) {
		return m.refresh(ctx, id)
	})
	if err != nil {
		return "", err
	}
	return token.(string), nil
}

// TokenSource adapts the manager to the oauth2 interface consumed by
// the Drive client.
func (m *Manager) TokenSource(ctx context.Context, dataSourceID string) oauth2.TokenSource {
	return &managerTokenSource{m: m, ctx: ctx, dataSourceID: dataSourceID}
}

type managerTokenSource struct {
	m            *Manager
	ctx          context.Context
	dataSourceID string
}

func (s *managerTokenSource) Token() (*oauth2.Token, error) {
	access, err := s.m.AccessToken(s.ctx, s.dataSourceID)
	if err != nil {
		return nil, err
	}
	return &oauth2.Token{AccessToken: access, TokenType: "Bearer"}, nil
}

func (m *Manager) lookup(ctx context.Context, dataSourceID uuid.UUID) (*entity.OauthCredential, error) {
	cred, err := m.creds.FindOne(ctx, specification.ByDataSourceID{DataSourceID: dataSourceID})
	if err != nil {
		return nil, err
	}
	if cred == nil {
		return nil, apperr.New(apperr.KindAuthExpired, "no credential stored for connection")
	}
	return cred, nil
}

// fresh reports whether the token outlives the refresh window. Tokens
// without an expiry never refresh.
func (m *Manager) fresh(cred *entity.OauthCredential) bool {
	if cred.ExpiresAt == nil {
		return true
	}
	return cred.ExpiresAt.After(m.now().Add(m.window))
}

func (m *Manager) refresh(ctx context.Context, dataSourceID uuid.UUID) (string, error) {
	// Re-read inside the flight: a competing request may have already
	// rotated the token.
	cred, err := m.lookup(ctx, dataSourceID)
	if err != nil {
		return "", err
	}
	if m.fresh(cred) {
		return cred.AccessToken, nil
	}

	refresher, ok := m.refreshers[cred.Provider]
	if !ok {
		return "", apperr.New(apperr.KindAuthExpired, fmt.Sprintf("no refresher for provider %q", cred.Provider))
	}
	if cred.RefreshToken == "" {
		return "", apperr.New(apperr.KindAuthExpired, "credential has no refresh token")
	}

	token, err := refresher.Refresh(ctx, cred.RefreshToken)
	if err != nil {
		if apperr.KindOf(err) != "" {
			return "", err
		}
		return "", apperr.Wrap(apperr.KindAuthExpired, "token refresh rejected", err)
	}

	cred.AccessToken = token.AccessToken
	if token.RefreshToken != "" {
		cred.RefreshToken = token.RefreshToken
	}
	if token.TokenType != "" {
		cred.TokenType = token.TokenType
	}
	cred.ExpiresAt = token.ExpiresAt
	cred.UpdatedAt = m.now().UTC()

	if err := m.creds.Update(ctx, cred); err != nil {
		return "", err
	}

	m.log.Info("oauth_manager", "access token refreshed", map[string]interface{}{
		"data_source_id": dataSourceID.String(),
		"provider":       cred.Provider,
	})
	return cred.AccessToken, nil
}
