package notion

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"arcana-be/internal/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimitTripperReadsRetryAfter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Retry-After", "7")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := &http.Client{Transport: &rateLimitTripper{base: http.DefaultTransport}}
	_, err := client.Get(srv.URL)
	require.Error(t, err)

	var rl *RateLimitError
	require.True(t, errors.As(err, &rl))
	assert.Equal(t, 7*time.Second, rl.RetryAfter)
}

func TestRateLimitTripperPassesOtherStatuses(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := &http.Client{Transport: &rateLimitTripper{base: http.DefaultTransport}}
	resp, err := client.Get(srv.URL)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestBackoffHonorsRetryAfterHint(t *testing.T) {
	err := mapError(&RateLimitError{RetryAfter: 9 * time.Second})
	assert.Equal(t, apperr.KindProviderRateLimited, apperr.KindOf(err))
	assert.Equal(t, 9*time.Second, Backoff(err))
}

func TestBackoffDefaultsWithoutHint(t *testing.T) {
	assert.Equal(t, RateLimitBackoff, Backoff(errors.New("connection reset")))
	assert.Equal(t, RateLimitBackoff, parseRetryAfter(""))
	assert.Equal(t, RateLimitBackoff, parseRetryAfter("not-a-number"))
}
