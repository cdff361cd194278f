package notion

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"arcana-be/internal/apperr"

	"github.com/jomei/notionapi"
)

// RateLimitBackoff is how long a sync pauses after a 429 when Notion
// gives no Retry-After hint.
const RateLimitBackoff = 60 * time.Second

// RateLimitError surfaces a 429 with the provider's Retry-After hint.
// The transport synthesizes it so the header survives into the error
// chain, which otherwise only carries the decoded response body.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("notion rate limited, retry after %s", e.RetryAfter)
}

// rateLimitTripper turns 429 responses into RateLimitError before the
// API client decodes them.
type rateLimitTripper struct {
	base http.RoundTripper
}

func (t *rateLimitTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		retryAfter := parseRetryAfter(resp.Header.Get("Retry-After"))
		resp.Body.Close()
		return nil, &RateLimitError{RetryAfter: retryAfter}
	}
	return resp, nil
}

func parseRetryAfter(value string) time.Duration {
	if secs, err := strconv.Atoi(value); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return RateLimitBackoff
}

// Backoff returns how long to pause after err, honoring the provider's
// Retry-After when the error carries one.
func Backoff(err error) time.Duration {
	var rl *RateLimitError
	if errors.As(err, &rl) && rl.RetryAfter > 0 {
		return rl.RetryAfter
	}
	return RateLimitBackoff
}

// mapError folds Notion API failures into the shared taxonomy so the
// sync worker can branch on kind: 429 pauses and resumes from the
// cursor, 401 asks for a reconnect, 5xx retries later.
func mapError(err error) error {
	var rl *RateLimitError
	if errors.As(err, &rl) {
		return apperr.Wrap(apperr.KindProviderRateLimited, "notion rate limit", err)
	}

	var apiErr *notionapi.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Status == http.StatusTooManyRequests || apiErr.Code == "rate_limited":
			return apperr.Wrap(apperr.KindProviderRateLimited, "notion rate limit", err)
		case apiErr.Status == http.StatusUnauthorized || apiErr.Code == "unauthorized":
			return apperr.Wrap(apperr.KindAuthExpired, "notion token rejected", err)
		case apiErr.Status >= 500:
			return apperr.Wrap(apperr.KindProviderUnavailable, fmt.Sprintf("notion api status %d", apiErr.Status), err)
		default:
			return apperr.Wrap(apperr.KindProviderUnavailable, string(apiErr.Code), err)
		}
	}
	return apperr.Wrap(apperr.KindProviderUnavailable, "notion api unreachable", err)
}
