package oauth

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"arcana-be/internal/apperr"
	"arcana-be/internal/entity"
	"arcana-be/internal/repository/specification"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Debug(string, string, map[string]interface{}) {}
func (nopLogger) Info(string, string, map[string]interface{})  {}
func (nopLogger) Warn(string, string, map[string]interface{})  {}
func (nopLogger) Error(string, string, map[string]interface{}) {}
func (nopLogger) Sync() error                                  { return nil }

type fakeCredRepo struct {
	mu   sync.Mutex
	cred *entity.OauthCredential
}

func (f *fakeCredRepo) Create(_ context.Context, cred *entity.OauthCredential) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cred = cred
	return nil
}

func (f *fakeCredRepo) Update(_ context.Context, cred *entity.OauthCredential) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cred = cred
	return nil
}

func (f *fakeCredRepo) FindOne(_ context.Context, _ ...specification.Specification) (*entity.OauthCredential, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.cred == nil {
		return nil, nil
	}
	copied := *f.cred
	return &copied, nil
}

func (f *fakeCredRepo) DeleteByDataSource(_ context.Context, _ uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cred = nil
	return nil
}

type fakeRefresher struct {
	calls int32
	delay time.Duration
	err   error
}

func (f *fakeRefresher) Refresh(_ context.Context, _ string) (*Token, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.err != nil {
		return nil, f.err
	}
	at := time.Now().Add(time.Hour)
	return &Token{AccessToken: "fresh-token", RefreshToken: "rotated", ExpiresAt: &at}, nil
}

func managerWith(repo *fakeCredRepo, refresher Refresher) *Manager {
	return NewManager(repo, map[string]Refresher{"notion": refresher}, nopLogger{})
}

func storedCred(dsID uuid.UUID, expiresIn time.Duration) *entity.OauthCredential {
	var expiresAt *time.Time
	if expiresIn != 0 {
		at := time.Now().Add(expiresIn)
		expiresAt = &at
	}
	return &entity.OauthCredential{
		Id:           uuid.New(),
		Provider:     "notion",
		DataSourceId: dsID,
		AccessToken:  "stored-token",
		RefreshToken: "stored-refresh",
		ExpiresAt:    expiresAt,
	}
}

func TestAccessTokenServesStoredTokenWhileFresh(t *testing.T) {
	dsID := uuid.New()
	refresher := &fakeRefresher{}
	m := managerWith(&fakeCredRepo{cred: storedCred(dsID, time.Hour)}, refresher)

	token, err := m.AccessToken(context.Background(), dsID.String())
	require.NoError(t, err)
	assert.Equal(t, "stored-token", token)
	assert.Zero(t, atomic.LoadInt32(&refresher.calls))
}

func TestAccessTokenWithoutExpiryNeverRefreshes(t *testing.T) {
	dsID := uuid.New()
	refresher := &fakeRefresher{}
	m := managerWith(&fakeCredRepo{cred: storedCred(dsID, 0)}, refresher)

	token, err := m.AccessToken(context.Background(), dsID.String())
	require.NoError(t, err)
	assert.Equal(t, "stored-token", token)
	assert.Zero(t, atomic.LoadInt32(&refresher.calls))
}

func TestAccessTokenRefreshesInsideWindow(t *testing.T) {
	dsID := uuid.New()
	repo := &fakeCredRepo{cred: storedCred(dsID, 30*time.Second)}
	refresher := &fakeRefresher{}
	m := managerWith(repo, refresher)

	token, err := m.AccessToken(context.Background(), dsID.String())
	require.NoError(t, err)
	assert.Equal(t, "fresh-token", token)
	assert.Equal(t, int32(1), atomic.LoadInt32(&refresher.calls))

	stored, err := repo.FindOne(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fresh-token", stored.AccessToken)
	assert.Equal(t, "rotated", stored.RefreshToken)
}

func TestAccessTokenCoalescesConcurrentRefreshes(t *testing.T) {
	dsID := uuid.New()
	repo := &fakeCredRepo{cred: storedCred(dsID, 10*time.Second)}
	refresher := &fakeRefresher{delay: 50 * time.Millisecond}
	m := managerWith(repo, refresher)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			token, err := m.AccessToken(context.Background(), dsID.String())
			assert.NoError(t, err)
			assert.Equal(t, "fresh-token", token)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&refresher.calls))
}

func TestAccessTokenMissingCredentialFailsAuthExpired(t *testing.T) {
	m := managerWith(&fakeCredRepo{}, &fakeRefresher{})

	_, err := m.AccessToken(context.Background(), uuid.New().String())
	require.Error(t, err)
	assert.Equal(t, apperr.KindAuthExpired, apperr.KindOf(err))
}

func TestAccessTokenRefreshFailureSurfacesAuthExpired(t *testing.T) {
	dsID := uuid.New()
	refresher := &fakeRefresher{err: assert.AnError}
	m := managerWith(&fakeCredRepo{cred: storedCred(dsID, 5*time.Second)}, refresher)

	_, err := m.AccessToken(context.Background(), dsID.String())
	require.Error(t, err)
	assert.Equal(t, apperr.KindAuthExpired, apperr.KindOf(err))
}

func TestMemoryStateStoreSingleUse(t *testing.T) {
	store := NewMemoryStateStore()
	ctx := context.Background()

	state, err := store.Issue(ctx, StatePayload{WorkspaceID: "ws-1", Provider: "notion"})
	require.NoError(t, err)
	require.NotEmpty(t, state)

	payload, err := store.Consume(ctx, state)
	require.NoError(t, err)
	assert.Equal(t, "ws-1", payload.WorkspaceID)

	_, err = store.Consume(ctx, state)
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestMemoryStateStoreExpires(t *testing.T) {
	store := NewMemoryStateStore()
	base := time.Now()
	store.now = func() time.Time { return base }

	state, err := store.Issue(context.Background(), StatePayload{WorkspaceID: "ws-1"})
	require.NoError(t, err)

	store.now = func() time.Time { return base.Add(11 * time.Minute) }
	_, err = store.Consume(context.Background(), state)
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}
