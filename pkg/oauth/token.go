package oauth

import (
	"context"
	"time"
)

// Token is one provider token grant as returned by an exchange or
// refresh call.
type Token struct {
	AccessToken  string
	RefreshToken string
	TokenType    string
	ExpiresAt    *time.Time
	// Payload keeps provider-specific grant fields (bot id, workspace
	// name, scope) for later diagnostics.
	Payload map[string]interface{}
}

// TokenProvider hands out a currently valid access token for one data
// source connection, refreshing behind the scenes when needed.
type TokenProvider interface {
	AccessToken(ctx context.Context, dataSourceID string) (string, error)
}

// Refresher exchanges a refresh token for a fresh grant at one
// provider's token endpoint.
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (*Token, error)
}
