package oauth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"arcana-be/internal/apperr"
)

const notionTokenURL = "https://api.notion.com/v1/oauth/token"
const notionAuthorizeURL = "https://api.notion.com/v1/oauth/authorize"

// NotionOAuth drives the Notion public-integration grant flow. The
// token endpoint authenticates with HTTP basic auth over a JSON body.
type NotionOAuth struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	HTTPClient   *http.Client
}

func NewNotionOAuth(clientID, clientSecret, redirectURI string, timeout time.Duration) *NotionOAuth {
	return &NotionOAuth{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURI:  redirectURI,
		HTTPClient:   &http.Client{Timeout: timeout},
	}
}

// AuthorizeURL builds the consent URL carrying the anti-forgery state.
func (n *NotionOAuth) AuthorizeURL(state string) string {
	q := url.Values{}
	q.Set("client_id", n.ClientID)
	q.Set("redirect_uri", n.RedirectURI)
	q.Set("response_type", "code")
	q.Set("owner", "user")
	q.Set("state", state)
	return notionAuthorizeURL + "?" + q.Encode()
}

// Exchange trades the callback code for a workspace-scoped bot token.
func (n *NotionOAuth) Exchange(ctx context.Context, code string) (*Token, error) {
	return n.tokenRequest(ctx, map[string]string{
		"grant_type":   "authorization_code",
		"code":         code,
		"redirect_uri": n.RedirectURI,
	})
}

// Refresh rotates an expiring grant.
func (n *NotionOAuth) Refresh(ctx context.Context, refreshToken string) (*Token, error) {
	return n.tokenRequest(ctx, map[string]string{
		"grant_type":    "refresh_token",
		"refresh_token": refreshToken,
	})
}

func (n *NotionOAuth) tokenRequest(ctx context.Context, body map[string]string) (*Token, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, notionTokenURL, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(n.ClientID, n.ClientSecret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.HTTPClient.Do(req)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindProviderUnavailable, "notion token endpoint unreachable", err)
	}
	defer resp.Body.Close()

	var raw map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, apperr.Wrap(apperr.KindParsingFailed, "notion token response", err)
	}

	if resp.StatusCode != http.StatusOK {
		errCode, _ := raw["error"].(string)
		if errCode == "invalid_grant" || resp.StatusCode == http.StatusUnauthorized {
			return nil, apperr.New(apperr.KindAuthExpired, fmt.Sprintf("notion grant rejected: %s", errCode))
		}
		return nil, apperr.New(apperr.KindProviderUnavailable, fmt.Sprintf("notion token endpoint status %d: %s", resp.StatusCode, errCode))
	}

	access, _ := raw["access_token"].(string)
	if access == "" {
		return nil, apperr.New(apperr.KindParsingFailed, "notion token response missing access_token")
	}

	token := &Token{
		AccessToken: access,
		TokenType:   "Bearer",
		Payload:     raw,
	}
	if refresh, ok := raw["refresh_token"].(string); ok {
		token.RefreshToken = refresh
	}
	if secs, ok := raw["expires_in"].(float64); ok && secs > 0 {
		at := time.Now().UTC().Add(time.Duration(secs) * time.Second)
		token.ExpiresAt = &at
	}
	return token, nil
}
