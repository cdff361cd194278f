package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"arcana-be/internal/apperr"
	"arcana-be/internal/dto"
	"arcana-be/internal/entity"
	"arcana-be/internal/pkg/logger"
	"arcana-be/internal/repository/specification"
	"arcana-be/internal/repository/unitofwork"
	"arcana-be/internal/workspace"
	"arcana-be/pkg/chunker"
	"arcana-be/pkg/events"
	"arcana-be/pkg/extract"
	"arcana-be/pkg/gdrive"
	"arcana-be/pkg/notion"
	"arcana-be/pkg/oauth"
	"arcana-be/pkg/rag/index"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

// EventPublisher pushes domain events onto the broker. A nil publisher
// disables event emission.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// notionAPI is the slice of the Notion client the sync worker drives.
type notionAPI interface {
	SearchPages(ctx context.Context, cursor string) (*notion.PageBatch, error)
	FetchSegments(ctx context.Context, pageID string) ([]chunker.Segment, error)
}

// driveAPI is the slice of the Drive client the sync worker drives.
type driveAPI interface {
	ListFolderTree(ctx context.Context, rootFolderID string) ([]*gdrive.File, error)
	GetStartPageToken(ctx context.Context) (string, error)
	ListChanges(ctx context.Context, token string) ([]*gdrive.ChangedFile, string, error)
	IsReachable(ctx context.Context, parents []string, rootFolderID string) (bool, error)
	ExportPDF(ctx context.Context, fileID string) ([]byte, error)
	Download(ctx context.Context, fileID string) ([]byte, error)
	ConvertOfficePDF(ctx context.Context, fileID, mimeType string) ([]byte, error)
}

type IIngestService interface {
	// Sync pulls the provider's current content into the workspace
	// index. At most one sync runs per workspace at a time.
	Sync(ctx context.Context, workspaceID uuid.UUID, req *dto.SyncRequest) (*dto.SyncResultResponse, error)

	// Disconnect removes the provider connection and every record it
	// contributed to the index.
	Disconnect(ctx context.Context, workspaceID uuid.UUID, req *dto.DisconnectRequest) error

	State(ctx context.Context, workspaceID uuid.UUID, provider string) (*dto.SyncStateResponse, error)
}

type ingestService struct {
	uowFactory  unitofwork.RepositoryFactory
	hybrid      *index.HybridIndex
	tokens      *oauth.Manager
	builder     *chunker.Builder
	storageRoot string
	publisher   EventPublisher
	audit       IAuditService
	logger      logger.ILogger

	newNotionClient func(token string) notionAPI
	newDriveClient  func(ctx context.Context, ts oauth2.TokenSource) (driveAPI, error)

	mu      sync.Mutex
	running map[uuid.UUID]bool
}

func NewIngestService(
	uowFactory unitofwork.RepositoryFactory,
	hybrid *index.HybridIndex,
	tokens *oauth.Manager,
	builder *chunker.Builder,
	storageRoot string,
	providerTimeoutSecs int,
	publisher EventPublisher,
	audit IAuditService,
	logger logger.ILogger,
) IIngestService {
	providerTimeout := defaultProviderTimeout
	if providerTimeoutSecs > 0 {
		providerTimeout = time.Duration(providerTimeoutSecs) * time.Second
	}
	return &ingestService{
		uowFactory:  uowFactory,
		hybrid:      hybrid,
		tokens:      tokens,
		builder:     builder,
		storageRoot: storageRoot,
		publisher:   publisher,
		audit:       audit,
		logger:      logger,
		newNotionClient: func(token string) notionAPI {
			return notion.NewClient(token, providerTimeout)
		},
		newDriveClient: func(ctx context.Context, ts oauth2.TokenSource) (driveAPI, error) {
			return gdrive.NewClient(ctx, ts, providerTimeout)
		},
		running: map[uuid.UUID]bool{},
	}
}

func (is *ingestService) Sync(ctx context.Context, workspaceID uuid.UUID, req *dto.SyncRequest) (*dto.SyncResultResponse, error) {
	uow := is.uowFactory.NewUnitOfWork(ctx)

	w, src, err := is.findConnection(ctx, uow, workspaceID, req.Provider)
	if err != nil {
		return nil, err
	}

	// 1. One sync per workspace: a second request fails fast instead of
	// queueing behind the running one.
	if !is.acquire(workspaceID) {
		return nil, apperr.New(apperr.KindValidation, "a sync is already running for this workspace")
	}
	defer is.release(workspaceID)

	wctx := workspace.NewContext(w.Id, w.Name, is.storageRoot)
	if err := wctx.EnsureDirs(); err != nil {
		return nil, apperr.Wrap(apperr.KindIndexWriteFailed, "provision workspace storage", err)
	}

	is.publish(ctx, events.NewSyncStarted(w.Id.String(), req.Provider))
	is.record(ctx, wctx, req.Provider, "sync.started", nil)

	// 2. Run the provider worker
	var result *dto.SyncResultResponse
	switch req.Provider {
	case entity.SourceTypeNotion:
		result, err = is.syncNotion(ctx, uow, wctx, src, req.Mode)
	case entity.SourceTypeGdrive:
		result, err = is.syncDrive(ctx, uow, wctx, src, req.RootFolderId, req.Mode)
	default:
		err = apperr.New(apperr.KindValidation, fmt.Sprintf("unknown provider %q", req.Provider))
	}

	if err != nil {
		is.publish(ctx, events.NewSyncFailed(w.Id.String(), req.Provider, string(apperr.KindOf(err)), err.Error()))
		is.record(ctx, wctx, req.Provider, "sync.failed", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, err
	}

	is.publish(ctx, events.NewSyncCompleted(w.Id.String(), req.Provider, result.Indexed, result.Skipped, result.Removed))
	is.record(ctx, wctx, req.Provider, "sync.completed", map[string]interface{}{
		"indexed": result.Indexed,
		"skipped": result.Skipped,
		"removed": result.Removed,
	})
	return result, nil
}

// syncNotion enumerates the integration's shared pages and replaces the
// index records of every page edited since the last run. A full-mode
// run ignores the stored watermark and re-ingests everything. Rate
// limits park the cursor instead of failing the run.
func (is *ingestService) syncNotion(ctx context.Context, uow unitofwork.UnitOfWork, wctx workspace.Context, src *entity.DataSource, mode string) (*dto.SyncResultResponse, error) {
	state, err := uow.NotionSyncStateRepository().FindByDataSource(ctx, src.Id)
	if err != nil {
		return nil, err
	}
	if state == nil {
		state = &entity.NotionSyncState{Id: uuid.New(), DataSourceId: src.Id}
	}

	now := time.Now().UTC()
	full := mode == dto.SyncModeFull
	resumed := !full && state.NextCursor != ""
	result := &dto.SyncResultResponse{Provider: entity.SourceTypeNotion, Resumed: resumed}

	// 1. Honor a standing backoff without touching the provider.
	if state.RateLimitedUntil != nil && now.Before(*state.RateLimitedUntil) {
		result.RateLimitedUntil = state.RateLimitedUntil
		return result, nil
	}

	token, err := is.tokens.AccessToken(ctx, src.Id.String())
	if err != nil {
		return nil, err
	}
	client := is.newNotionClient(token)

	// 2. Walk the search pagination, resuming a parked cursor if one
	// survived a previous rate limit. Full mode starts from the top.
	cursor := state.NextCursor
	if full {
		cursor = ""
	}
	seen := map[string]bool{}
	for {
		batch, err := client.SearchPages(ctx, cursor)
		if err != nil {
			if interrupted := is.parkNotionCursor(ctx, uow, state, cursor, err); interrupted != nil {
				result.RateLimitedUntil = interrupted
				return result, nil
			}
			return nil, err
		}

		for _, page := range batch.Pages {
			seen[page.ID] = true

			// Incremental gate: untouched pages since the last run
			// keep their existing records.
			if !full && state.Since != nil && !page.LastEdited.After(*state.Since) {
				result.Skipped++
				continue
			}

			if err := is.indexNotionPage(ctx, wctx, client, page); err != nil {
				if interrupted := is.parkNotionCursor(ctx, uow, state, cursor, err); interrupted != nil {
					result.RateLimitedUntil = interrupted
					return result, nil
				}
				if apperr.KindOf(err) == apperr.KindParsingFailed {
					is.logger.Warn("ingest_service", "skipping unparseable notion page", map[string]interface{}{
						"page_id": page.ID,
						"error":   err.Error(),
					})
					result.Skipped++
					continue
				}
				return nil, err
			}
			result.Indexed++
		}

		if !batch.HasMore {
			break
		}
		cursor = batch.NextCursor
	}

	// 3. A complete non-resumed enumeration also proves which pages are
	// gone; a resumed run only saw the tail, so it cannot.
	if !resumed {
		removed, err := is.sweepNotion(ctx, uow, wctx, seen)
		if err != nil {
			return nil, err
		}
		result.Removed = removed
	}

	state.NextCursor = ""
	state.RateLimitedUntil = nil
	state.Since = &now
	if !resumed {
		state.LastFullSync = &now
	}
	if err := uow.NotionSyncStateRepository().Upsert(ctx, state); err != nil {
		return nil, err
	}
	return result, nil
}

func (is *ingestService) indexNotionPage(ctx context.Context, wctx workspace.Context, client notionAPI, page notion.PageSummary) error {
	segments, err := client.FetchSegments(ctx, page.ID)
	if err != nil {
		return err
	}

	records, err := is.builder.Build(chunker.PageInput{
		WorkspaceID: wctx.WorkspaceID,
		SourceType:  entity.SourceTypeNotion,
		SourceID:    page.ID,
		Title:       page.Title,
		URL:         page.URL,
		Segments:    segments,
	})
	if err != nil {
		return apperr.Wrap(apperr.KindParsingFailed, "build notion page records", err)
	}
	return is.hybrid.Replace(ctx, wctx, entity.SourceTypeNotion, page.ID, records)
}

// parkNotionCursor persists the resume point when err is a provider
// rate limit, returning the backoff deadline. The deadline honors the
// provider's Retry-After when the error carries one. Other errors
// return nil.
func (is *ingestService) parkNotionCursor(ctx context.Context, uow unitofwork.UnitOfWork, state *entity.NotionSyncState, cursor string, err error) *time.Time {
	if apperr.KindOf(err) != apperr.KindProviderRateLimited {
		return nil
	}

	until := time.Now().UTC().Add(notion.Backoff(err))
	state.NextCursor = cursor
	state.RateLimitedUntil = &until
	if upsertErr := uow.NotionSyncStateRepository().Upsert(ctx, state); upsertErr != nil {
		is.logger.Error("ingest_service", "failed to park notion cursor", map[string]interface{}{
			"data_source_id": state.DataSourceId.String(),
			"error":          upsertErr.Error(),
		})
	}
	is.logger.Warn("ingest_service", "notion rate limited, sync parked", map[string]interface{}{
		"data_source_id": state.DataSourceId.String(),
		"resume_cursor":  cursor,
		"until":          until.Format(time.RFC3339),
	})
	return &until
}

// sweepNotion deletes records of pages the integration no longer
// returns.
func (is *ingestService) sweepNotion(ctx context.Context, uow unitofwork.UnitOfWork, wctx workspace.Context, seen map[string]bool) (int, error) {
	records, err := uow.SourceRecordRepository().FindAll(ctx,
		specification.ByWorkspaceID{WorkspaceID: wctx.WorkspaceID},
		specification.BySourceType{SourceType: entity.SourceTypeNotion},
	)
	if err != nil {
		return 0, err
	}

	stale := map[string]bool{}
	for _, rec := range records {
		if !seen[rec.SourceId] {
			stale[rec.SourceId] = true
		}
	}

	removed := 0
	for sourceID := range stale {
		if err := is.hybrid.DeleteSource(ctx, wctx, entity.SourceTypeNotion, sourceID); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

// syncDrive routes a Drive run: the first sync (or a forced full one)
// enumerates the folder tree and records a changes watermark; later
// runs consume the changes feed from that watermark.
func (is *ingestService) syncDrive(ctx context.Context, uow unitofwork.UnitOfWork, wctx workspace.Context, src *entity.DataSource, rootFolderID, mode string) (*dto.SyncResultResponse, error) {
	state, err := uow.DriveSyncStateRepository().FindByDataSource(ctx, src.Id)
	if err != nil {
		return nil, err
	}
	if state == nil {
		state = &entity.DriveSyncState{Id: uuid.New(), DataSourceId: src.Id}
	}

	root := rootFolderID
	if root == "" {
		root = state.RootFolderId
	}
	if root == "" {
		return nil, apperr.New(apperr.KindValidation, "root_folder_id is required for the first drive sync")
	}

	client, err := is.newDriveClient(ctx, is.tokens.TokenSource(ctx, src.Id.String()))
	if err != nil {
		return nil, err
	}

	if mode == dto.SyncModeFull || state.StartPageToken == "" {
		return is.bootstrapDrive(ctx, uow, wctx, src, client, state, root)
	}
	return is.incrementalDrive(ctx, uow, wctx, src, client, state, root)
}

// bootstrapDrive diffs the full folder tree against the stored
// snapshots, then records the changes watermark the next incremental
// run starts from.
func (is *ingestService) bootstrapDrive(ctx context.Context, uow unitofwork.UnitOfWork, wctx workspace.Context, src *entity.DataSource, client driveAPI, state *entity.DriveSyncState, root string) (*dto.SyncResultResponse, error) {
	listing, err := client.ListFolderTree(ctx, root)
	if err != nil {
		return nil, err
	}
	snapshots, err := uow.DriveSnapshotRepository().FindAll(ctx, specification.ByDataSourceID{DataSourceID: src.Id})
	if err != nil {
		return nil, err
	}

	result := &dto.SyncResultResponse{Provider: entity.SourceTypeGdrive}
	for _, change := range gdrive.Classify(listing, snapshots) {
		if err := is.applyDriveChange(ctx, uow, wctx, src, client, change, result); err != nil {
			return nil, err
		}
	}

	// The watermark is fetched after the listing so edits racing the
	// bootstrap surface in the next incremental run.
	token, err := client.GetStartPageToken(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	state.RootFolderId = root
	state.StartPageToken = token
	state.LastSynced = &now
	if state.BootstrappedAt == nil {
		state.BootstrappedAt = &now
	}
	if err := uow.DriveSyncStateRepository().Upsert(ctx, state); err != nil {
		return nil, err
	}
	return result, nil
}

// incrementalDrive consumes the changes feed from the stored watermark.
// A changed file is re-ingested only when its revision markers moved
// and it is still reachable from the workspace root folder.
func (is *ingestService) incrementalDrive(ctx context.Context, uow unitofwork.UnitOfWork, wctx workspace.Context, src *entity.DataSource, client driveAPI, state *entity.DriveSyncState, root string) (*dto.SyncResultResponse, error) {
	changed, nextToken, err := client.ListChanges(ctx, state.StartPageToken)
	if err != nil {
		return nil, err
	}

	snapshots, err := uow.DriveSnapshotRepository().FindAll(ctx, specification.ByDataSourceID{DataSourceID: src.Id})
	if err != nil {
		return nil, err
	}
	snapByID := make(map[string]*entity.DriveFileSnapshot, len(snapshots))
	for _, snap := range snapshots {
		snapByID[snap.FileId] = snap
	}

	result := &dto.SyncResultResponse{Provider: entity.SourceTypeGdrive}
	for _, ch := range changed {
		snap := snapByID[ch.FileID]

		inScope := false
		if !ch.Removed && ch.File != nil {
			inScope, err = client.IsReachable(ctx, ch.File.Parents, root)
			if err != nil {
				return nil, err
			}
		}

		switch gdrive.ClassifyChange(ch, snap, inScope) {
		case gdrive.ActionRemove:
			if err := is.removeDriveFile(ctx, uow, wctx, src, ch.FileID); err != nil {
				return nil, err
			}
			result.Removed++

		case gdrive.ActionIndex:
			if err := is.applyDriveChange(ctx, uow, wctx, src, client, gdrive.Change{File: ch.File, FileID: ch.FileID, Action: gdrive.ActionIndex}, result); err != nil {
				return nil, err
			}

		case gdrive.ActionSkip:
			// Metadata-only changes (renames) still refresh the
			// snapshot so titles stay current.
			if ch.File != nil && snap != nil && inScope {
				if err := uow.DriveSnapshotRepository().Upsert(ctx, snapshotFromFile(src.Id, ch.File)); err != nil {
					return nil, err
				}
			}
			result.Skipped++
		}
	}

	now := time.Now().UTC()
	state.StartPageToken = nextToken
	state.LastSynced = &now
	if err := uow.DriveSyncStateRepository().Upsert(ctx, state); err != nil {
		return nil, err
	}
	return result, nil
}

// applyDriveChange executes one classified change against the index
// and the snapshot table, folding per-file parse failures into skips.
func (is *ingestService) applyDriveChange(ctx context.Context, uow unitofwork.UnitOfWork, wctx workspace.Context, src *entity.DataSource, client driveAPI, change gdrive.Change, result *dto.SyncResultResponse) error {
	switch change.Action {
	case gdrive.ActionSkip:
		result.Skipped++

	case gdrive.ActionRemove:
		if err := is.removeDriveFile(ctx, uow, wctx, src, change.FileID); err != nil {
			return err
		}
		result.Removed++

	case gdrive.ActionIndex:
		if err := is.indexDriveFile(ctx, wctx, client, change.File); err != nil {
			if apperr.KindOf(err) == apperr.KindParsingFailed {
				is.logger.Warn("ingest_service", "skipping unparseable drive file", map[string]interface{}{
					"file_id": change.File.ID,
					"name":    change.File.Name,
					"error":   err.Error(),
				})
				result.Skipped++
				return nil
			}
			return err
		}
		if err := uow.DriveSnapshotRepository().Upsert(ctx, snapshotFromFile(src.Id, change.File)); err != nil {
			return err
		}
		result.Indexed++
	}
	return nil
}

func (is *ingestService) removeDriveFile(ctx context.Context, uow unitofwork.UnitOfWork, wctx workspace.Context, src *entity.DataSource, fileID string) error {
	if err := is.hybrid.DeleteSource(ctx, wctx, entity.SourceTypeGdrive, fileID); err != nil {
		return err
	}
	return uow.DriveSnapshotRepository().DeleteByFile(ctx, src.Id, fileID)
}

// indexDriveFile normalizes one Drive file into segments and commits
// its records. Google-native and Office files go through PDF; docx
// additionally keeps its OpenXML structure.
func (is *ingestService) indexDriveFile(ctx context.Context, wctx workspace.Context, client driveAPI, f *gdrive.File) error {
	input := chunker.PageInput{
		WorkspaceID: wctx.WorkspaceID,
		SourceType:  entity.SourceTypeGdrive,
		SourceID:    f.ID,
		Title:       f.Name,
		URL:         f.WebViewLink,
	}

	switch {
	case gdrive.IsGoogleNative(f.MimeType):
		data, err := client.ExportPDF(ctx, f.ID)
		if err != nil {
			return err
		}
		input.Segments, input.FilePath, err = is.pdfSegments(wctx, f.ID, data)
		if err != nil {
			return err
		}

	case f.MimeType == gdrive.MimePDF:
		data, err := client.Download(ctx, f.ID)
		if err != nil {
			return err
		}
		input.Segments, input.FilePath, err = is.pdfSegments(wctx, f.ID, data)
		if err != nil {
			return err
		}

	case f.MimeType == gdrive.MimeDocx:
		data, err := client.Download(ctx, f.ID)
		if err != nil {
			return err
		}
		doc, err := extract.DocxBytes(data)
		if err != nil {
			return err
		}
		for _, para := range doc.Paragraphs {
			input.Segments = append(input.Segments, chunker.Segment{Type: "paragraph", Text: para})
		}
		input.StructuredFormat = entity.StructuredFormatOpenXML
		input.StructuredText = doc.RawXML

	case f.MimeType == gdrive.MimeXlsx || f.MimeType == gdrive.MimePptx:
		data, err := client.ConvertOfficePDF(ctx, f.ID, f.MimeType)
		if err != nil {
			return err
		}
		input.Segments, input.FilePath, err = is.pdfSegments(wctx, f.ID, data)
		if err != nil {
			return err
		}

	default:
		// Plain text and markdown come through as-is.
		data, err := client.Download(ctx, f.ID)
		if err != nil {
			return err
		}
		input.Segments = []chunker.Segment{{Type: "paragraph", Text: string(data)}}
	}

	records, err := is.builder.Build(input)
	if err != nil {
		return apperr.Wrap(apperr.KindParsingFailed, "build drive file records", err)
	}
	return is.hybrid.Replace(ctx, wctx, entity.SourceTypeGdrive, f.ID, records)
}

// pdfSegments persists the PDF under the workspace tree and extracts
// one segment per page.
func (is *ingestService) pdfSegments(wctx workspace.Context, fileID string, data []byte) ([]chunker.Segment, string, error) {
	path, err := gdrive.SavePDF(wctx.PDFDir(), fileID, data)
	if err != nil {
		return nil, "", err
	}

	pages, err := extract.PDFPages(path)
	if err != nil {
		return nil, "", err
	}

	segments := make([]chunker.Segment, 0, len(pages))
	for _, page := range pages {
		segments = append(segments, chunker.Segment{Type: "page", Text: page.Text})
	}
	return segments, path, nil
}

func snapshotFromFile(dataSourceID uuid.UUID, f *gdrive.File) *entity.DriveFileSnapshot {
	return &entity.DriveFileSnapshot{
		Id:           uuid.New(),
		DataSourceId: dataSourceID,
		FileId:       f.ID,
		Name:         f.Name,
		MimeType:     f.MimeType,
		Md5Checksum:  f.Md5Checksum,
		Version:      f.Version,
		ModifiedTime: f.ModifiedTime,
		WebViewLink:  f.WebViewLink,
		LastSynced:   time.Now().UTC(),
	}
}

func (is *ingestService) Disconnect(ctx context.Context, workspaceID uuid.UUID, req *dto.DisconnectRequest) error {
	uow := is.uowFactory.NewUnitOfWork(ctx)

	w, src, err := is.findConnection(ctx, uow, workspaceID, req.Provider)
	if err != nil {
		return err
	}

	wctx := workspace.NewContext(w.Id, w.Name, is.storageRoot)

	// 1. Purge every record the provider contributed.
	if err := is.hybrid.DeleteSourceType(ctx, wctx, req.Provider); err != nil {
		return err
	}

	// 2. Drop the connection's credential, sync state, and snapshots.
	if err := uow.CredentialRepository().DeleteByDataSource(ctx, src.Id); err != nil {
		return err
	}
	switch req.Provider {
	case entity.SourceTypeNotion:
		if err := uow.NotionSyncStateRepository().DeleteByDataSource(ctx, src.Id); err != nil {
			return err
		}
	case entity.SourceTypeGdrive:
		if err := uow.DriveSyncStateRepository().DeleteByDataSource(ctx, src.Id); err != nil {
			return err
		}
		if err := uow.DriveSnapshotRepository().DeleteByDataSource(ctx, src.Id); err != nil {
			return err
		}
	}
	if err := uow.DataSourceRepository().Delete(ctx, src.Id); err != nil {
		return err
	}

	is.publish(ctx, events.NewSourceDisconnected(w.Id.String(), req.Provider))
	is.record(ctx, wctx, req.Provider, "source.disconnected", nil)
	return nil
}

func (is *ingestService) State(ctx context.Context, workspaceID uuid.UUID, provider string) (*dto.SyncStateResponse, error) {
	uow := is.uowFactory.NewUnitOfWork(ctx)

	_, src, err := is.findConnection(ctx, uow, workspaceID, provider)
	if err != nil {
		return nil, err
	}

	resp := &dto.SyncStateResponse{Provider: provider}
	switch provider {
	case entity.SourceTypeNotion:
		state, err := uow.NotionSyncStateRepository().FindByDataSource(ctx, src.Id)
		if err != nil {
			return nil, err
		}
		if state != nil {
			resp.LastFullSync = state.LastFullSync
			resp.NextCursor = state.NextCursor
			resp.RateLimitedUntil = state.RateLimitedUntil
		}
	case entity.SourceTypeGdrive:
		state, err := uow.DriveSyncStateRepository().FindByDataSource(ctx, src.Id)
		if err != nil {
			return nil, err
		}
		if state != nil {
			resp.LastFullSync = state.LastSynced
		}
	default:
		return nil, apperr.New(apperr.KindValidation, fmt.Sprintf("unknown provider %q", provider))
	}
	return resp, nil
}

// findConnection loads the workspace and its data source for one
// provider, failing with a validation error when either is missing.
func (is *ingestService) findConnection(ctx context.Context, uow unitofwork.UnitOfWork, workspaceID uuid.UUID, provider string) (*entity.Workspace, *entity.DataSource, error) {
	w, err := uow.WorkspaceRepository().FindOne(ctx, specification.ByID{ID: workspaceID})
	if err != nil {
		return nil, nil, err
	}
	if w == nil {
		return nil, nil, apperr.New(apperr.KindValidation, "workspace not found")
	}

	src, err := uow.DataSourceRepository().FindOne(ctx,
		specification.ByWorkspaceID{WorkspaceID: workspaceID},
		specification.ByProvider{Provider: provider},
	)
	if err != nil {
		return nil, nil, err
	}
	if src == nil {
		return nil, nil, apperr.New(apperr.KindValidation, fmt.Sprintf("no connected %s data source", provider))
	}
	return w, src, nil
}

func (is *ingestService) acquire(workspaceID uuid.UUID) bool {
	is.mu.Lock()
	defer is.mu.Unlock()
	if is.running[workspaceID] {
		return false
	}
	is.running[workspaceID] = true
	return true
}

func (is *ingestService) release(workspaceID uuid.UUID) {
	is.mu.Lock()
	defer is.mu.Unlock()
	delete(is.running, workspaceID)
}

func (is *ingestService) publish(ctx context.Context, event events.Event) {
	if is.publisher == nil {
		return
	}
	if err := is.publisher.Publish(ctx, event); err != nil {
		is.logger.Warn("ingest_service", "failed to publish event", map[string]interface{}{
			"event": event.EventType(),
			"error": err.Error(),
		})
	}
}

func (is *ingestService) record(ctx context.Context, wctx workspace.Context, sourceType, action string, detail map[string]interface{}) {
	if is.audit == nil {
		return
	}
	err := is.audit.Record(ctx, dto.AuditEntry{
		WorkspaceId: wctx.WorkspaceID.String(),
		Slug:        wctx.Slug,
		SourceType:  sourceType,
		Action:      action,
		Detail:      detail,
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		is.logger.Warn("ingest_service", "failed to record audit entry", map[string]interface{}{
			"action": action,
			"error":  err.Error(),
		})
	}
}
