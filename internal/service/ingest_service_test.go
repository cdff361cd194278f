package service

import (
	"context"
	"testing"
	"time"

	"arcana-be/internal/apperr"
	"arcana-be/internal/dto"
	"arcana-be/internal/entity"
	"arcana-be/pkg/chunker"
	"arcana-be/pkg/events"
	"arcana-be/pkg/oauth"
	"arcana-be/pkg/rag/index"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ingestFixture struct {
	uow       *fakeUow
	svc       IIngestService
	impl      *ingestService
	publisher *capturingPublisher
	root      string
}

func newIngestFixture(t *testing.T) *ingestFixture {
	t.Helper()
	uow := newFakeUow()
	root := t.TempDir()

	hybrid := index.NewHybridIndex(uow.records, uow.ragIndexes, &fakeEmbedder{}, nopLogger{})
	tokens := oauth.NewManager(uow.credentials, map[string]oauth.Refresher{}, nopLogger{})
	builder := chunker.NewBuilder(1200, 0.15)
	publisher := &capturingPublisher{}

	svc := NewIngestService(&fakeUowFactory{uow: uow}, hybrid, tokens, builder, root, 0, publisher, nil, nopLogger{})
	return &ingestFixture{uow: uow, svc: svc, impl: svc.(*ingestService), publisher: publisher, root: root}
}

func (f *ingestFixture) seedWorkspace(t *testing.T, name string) uuid.UUID {
	t.Helper()
	id := uuid.New()
	require.NoError(t, f.uow.workspaces.Create(context.Background(), &entity.Workspace{
		Id:   id,
		Name: name,
		Slug: name,
	}))
	return id
}

func (f *ingestFixture) seedSource(t *testing.T, workspaceID uuid.UUID, provider string) uuid.UUID {
	t.Helper()
	id := uuid.New()
	require.NoError(t, f.uow.dataSources.Create(context.Background(), &entity.DataSource{
		Id:          id,
		WorkspaceId: workspaceID,
		Provider:    provider,
	}))
	return id
}

func TestSyncUnknownWorkspace(t *testing.T) {
	f := newIngestFixture(t)

	_, err := f.svc.Sync(context.Background(), uuid.New(), &dto.SyncRequest{Provider: entity.SourceTypeNotion})
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestSyncWithoutConnectedSource(t *testing.T) {
	f := newIngestFixture(t)
	workspaceID := f.seedWorkspace(t, "docs")

	_, err := f.svc.Sync(context.Background(), workspaceID, &dto.SyncRequest{Provider: entity.SourceTypeNotion})
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.ErrorContains(t, err, "no connected notion data source")
}

func TestNotionSyncHonorsStandingBackoff(t *testing.T) {
	f := newIngestFixture(t)
	workspaceID := f.seedWorkspace(t, "docs")
	sourceID := f.seedSource(t, workspaceID, entity.SourceTypeNotion)

	// A parked run left a resume cursor and a backoff deadline. The
	// gate sits before any token or provider call, so no credential is
	// needed for the run to return cleanly.
	until := time.Now().UTC().Add(5 * time.Minute)
	require.NoError(t, f.uow.notionState.Upsert(context.Background(), &entity.NotionSyncState{
		Id:               uuid.New(),
		DataSourceId:     sourceID,
		NextCursor:       "cursor-abc",
		RateLimitedUntil: &until,
	}))

	result, err := f.svc.Sync(context.Background(), workspaceID, &dto.SyncRequest{Provider: entity.SourceTypeNotion})
	require.NoError(t, err)

	assert.True(t, result.Resumed)
	assert.Zero(t, result.Indexed)
	assert.Zero(t, result.Removed)
	require.NotNil(t, result.RateLimitedUntil)
	assert.True(t, result.RateLimitedUntil.Equal(until))

	// The parked cursor survives untouched for the next attempt.
	state, err := f.uow.notionState.FindByDataSource(context.Background(), sourceID)
	require.NoError(t, err)
	assert.Equal(t, "cursor-abc", state.NextCursor)

	assert.Equal(t, []string{events.TypeSyncStarted, events.TypeSyncCompleted}, f.publisher.types())
}

func TestDisconnectPurgesProviderData(t *testing.T) {
	f := newIngestFixture(t)
	ctx := context.Background()
	workspaceID := f.seedWorkspace(t, "docs")
	notionID := f.seedSource(t, workspaceID, entity.SourceTypeNotion)
	gdriveID := f.seedSource(t, workspaceID, entity.SourceTypeGdrive)

	require.NoError(t, f.uow.credentials.Create(ctx, &entity.OauthCredential{
		Id:           uuid.New(),
		Provider:     entity.SourceTypeNotion,
		DataSourceId: notionID,
		AccessToken:  "tok",
	}))
	require.NoError(t, f.uow.notionState.Upsert(ctx, &entity.NotionSyncState{
		Id:           uuid.New(),
		DataSourceId: notionID,
	}))

	seedRecord := func(sourceType, sourceID string) *entity.SourceRecord {
		return &entity.SourceRecord{
			Id:          entity.RecordID(sourceType, sourceID, 0),
			WorkspaceId: workspaceID,
			SourceType:  sourceType,
			SourceId:    sourceID,
			Text:        "chunk text",
		}
	}
	require.NoError(t, f.uow.records.ReplaceSource(ctx, workspaceID, entity.SourceTypeNotion, "page-1",
		[]*entity.SourceRecord{seedRecord(entity.SourceTypeNotion, "page-1")}))
	require.NoError(t, f.uow.records.ReplaceSource(ctx, workspaceID, entity.SourceTypeGdrive, "file-1",
		[]*entity.SourceRecord{seedRecord(entity.SourceTypeGdrive, "file-1")}))

	require.NoError(t, f.svc.Disconnect(ctx, workspaceID, &dto.DisconnectRequest{Provider: entity.SourceTypeNotion}))

	// Notion's records, credential, sync state, and data source are gone.
	notionRecs, err := f.uow.records.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, notionRecs, 1)
	assert.Equal(t, entity.SourceTypeGdrive, notionRecs[0].SourceType)

	cred, err := f.uow.credentials.FindOne(ctx)
	require.NoError(t, err)
	assert.Nil(t, cred)

	state, err := f.uow.notionState.FindByDataSource(ctx, notionID)
	require.NoError(t, err)
	assert.Nil(t, state)

	remaining, err := f.uow.dataSources.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, gdriveID, remaining[0].Id)

	assert.Equal(t, []string{events.TypeSourceDisconnected}, f.publisher.types())
}

func TestStateReturnsParkedCursor(t *testing.T) {
	f := newIngestFixture(t)
	ctx := context.Background()
	workspaceID := f.seedWorkspace(t, "docs")
	sourceID := f.seedSource(t, workspaceID, entity.SourceTypeNotion)

	lastFull := time.Now().UTC().Add(-24 * time.Hour)
	until := time.Now().UTC().Add(time.Minute)
	require.NoError(t, f.uow.notionState.Upsert(ctx, &entity.NotionSyncState{
		Id:               uuid.New(),
		DataSourceId:     sourceID,
		LastFullSync:     &lastFull,
		NextCursor:       "cursor-abc",
		RateLimitedUntil: &until,
	}))

	state, err := f.svc.State(ctx, workspaceID, entity.SourceTypeNotion)
	require.NoError(t, err)
	assert.Equal(t, entity.SourceTypeNotion, state.Provider)
	assert.Equal(t, "cursor-abc", state.NextCursor)
	require.NotNil(t, state.LastFullSync)
	assert.True(t, state.LastFullSync.Equal(lastFull))
	require.NotNil(t, state.RateLimitedUntil)
}

func TestStateUnknownProvider(t *testing.T) {
	f := newIngestFixture(t)
	workspaceID := f.seedWorkspace(t, "docs")

	_, err := f.svc.State(context.Background(), workspaceID, "ftp")
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}
