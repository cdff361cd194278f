package oauth

import (
	"context"
	"errors"

	"arcana-be/internal/apperr"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// DriveScopes limit the grant to read-only Drive traversal plus the
// file-level scope used for temporary conversion copies.
var DriveScopes = []string{
	"https://www.googleapis.com/auth/drive.readonly",
	"https://www.googleapis.com/auth/drive.file",
}

// GoogleOAuth wraps the standard authorization-code flow against
// accounts.google.com.
type GoogleOAuth struct {
	cfg *oauth2.Config
}

func NewGoogleOAuth(clientID, clientSecret, redirectURI string) *GoogleOAuth {
	return &GoogleOAuth{
		cfg: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURI,
			Scopes:       DriveScopes,
			Endpoint:     google.Endpoint,
		},
	}
}

// AuthorizeURL requests offline access so a refresh token arrives on
// first consent.
func (g *GoogleOAuth) AuthorizeURL(state string) string {
	return g.cfg.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
	)
}

// Exchange trades the callback code for an access plus refresh token.
func (g *GoogleOAuth) Exchange(ctx context.Context, code string) (*Token, error) {
	tok, err := g.cfg.Exchange(ctx, code)
	if err != nil {
		return nil, mapGoogleTokenError(err)
	}
	return fromOauth2Token(tok), nil
}

// Refresh rotates the access token using the stored refresh token.
func (g *GoogleOAuth) Refresh(ctx context.Context, refreshToken string) (*Token, error) {
	src := g.cfg.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
	tok, err := src.Token()
	if err != nil {
		return nil, mapGoogleTokenError(err)
	}
	return fromOauth2Token(tok), nil
}

func fromOauth2Token(tok *oauth2.Token) *Token {
	token := &Token{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenType:    tok.TokenType,
	}
	if !tok.Expiry.IsZero() {
		at := tok.Expiry.UTC()
		token.ExpiresAt = &at
	}
	return token
}

// mapGoogleTokenError separates revoked grants (reconnect required)
// from transient endpoint failures.
func mapGoogleTokenError(err error) error {
	var retrieve *oauth2.RetrieveError
	if errors.As(err, &retrieve) {
		if retrieve.ErrorCode == "invalid_grant" {
			return apperr.Wrap(apperr.KindAuthExpired, "google grant revoked", err)
		}
		return apperr.Wrap(apperr.KindProviderUnavailable, "google token endpoint error", err)
	}
	return apperr.Wrap(apperr.KindProviderUnavailable, "google token endpoint unreachable", err)
}
