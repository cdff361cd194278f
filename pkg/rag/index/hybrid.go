package index

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"arcana-be/internal/apperr"
	"arcana-be/internal/entity"
	"arcana-be/internal/pkg/logger"
	"arcana-be/internal/repository/contract"
	"arcana-be/internal/repository/specification"
	"arcana-be/internal/workspace"
	"arcana-be/pkg/embedding"
	"arcana-be/pkg/rag/keyword"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
)

const (
	DefaultTopK = 5
	MinTopK     = 1
	MaxTopK     = 10

	DefaultAlpha = 0.6
	DefaultRRFK  = 60

	StrategyHybrid  = "hybrid"
	StrategyVector  = "vector"
	StrategyKeyword = "keyword"

	DefaultIndexEngine = "pgvector"
)

// RecordStore is the slice of the record repository the index needs.
type RecordStore interface {
	ReplaceSource(ctx context.Context, workspaceID uuid.UUID, sourceType, sourceID string, records []*entity.SourceRecord) error
	DeleteBySource(ctx context.Context, workspaceID uuid.UUID, sourceType, sourceID string) error
	DeleteBySourceType(ctx context.Context, workspaceID uuid.UUID, sourceType string) error
	SearchVector(ctx context.Context, workspaceID uuid.UUID, queryVector []float32, limit int) ([]*contract.ScoredSourceRecord, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.SourceRecord, error)
}

// MetaStore manages the per-workspace index metadata row.
type MetaStore interface {
	Create(ctx context.Context, index *entity.RagIndex) error
	Update(ctx context.Context, index *entity.RagIndex) error
	FindByWorkspace(ctx context.Context, workspaceID uuid.UUID) (*entity.RagIndex, error)
	RefreshCounts(ctx context.Context, workspaceID uuid.UUID) error
}

// SearchRequest carries the caller's retrieval knobs. Zero values fall
// back to defaults.
type SearchRequest struct {
	Query    string
	TopK     int
	Alpha    float64
	Strategy string
}

// SearchResult is one ranked chunk.
type SearchResult struct {
	Record *entity.SourceRecord
	Score  float64
}

// HybridIndex fuses cosine retrieval over pgvector with a BM25 keyword
// index kept on the workspace filesystem.
type HybridIndex struct {
	records  RecordStore
	meta     MetaStore
	embedder embedding.EmbeddingProvider
	kwCache  *gocache.Cache
	log      logger.ILogger

	defaultTopK  int
	defaultAlpha float64
	rrfK         int
}

func NewHybridIndex(records RecordStore, meta MetaStore, embedder embedding.EmbeddingProvider, log logger.ILogger) *HybridIndex {
	return &HybridIndex{
		records:      records,
		meta:         meta,
		embedder:     embedder,
		kwCache:      gocache.New(10*time.Minute, 30*time.Minute),
		log:          log,
		defaultTopK:  DefaultTopK,
		defaultAlpha: DefaultAlpha,
		rrfK:         DefaultRRFK,
	}
}

// Tune overrides the defaults applied when a request leaves k, alpha,
// or the RRF constant unset. Out-of-range values keep the built-ins.
func (h *HybridIndex) Tune(topK int, alpha float64, rrfK int) {
	if topK >= MinTopK && topK <= MaxTopK {
		h.defaultTopK = topK
	}
	if alpha > 0 && alpha <= 1 {
		h.defaultAlpha = alpha
	}
	if rrfK > 0 {
		h.rrfK = rrfK
	}
}

// Replace commits the full chunk set of one source document. The swap
// is transactional on the record store, so concurrent readers never see
// a partially replaced document. An empty set removes the document.
func (h *HybridIndex) Replace(ctx context.Context, ws workspace.Context, sourceType, sourceID string, records []*entity.SourceRecord) error {
	if len(records) == 0 {
		return h.DeleteSource(ctx, ws, sourceType, sourceID)
	}

	// 1. Embed all chunk texts in one batch
	texts := make([]string, len(records))
	for i, rec := range records {
		texts[i] = rec.Text
	}
	vectors, err := h.embedder.Embed(ctx, texts)
	if err != nil {
		return apperr.Wrap(apperr.KindEmbeddingFailed, "embedding batch failed", err)
	}
	if len(vectors) != len(records) {
		return apperr.New(apperr.KindEmbeddingFailed,
			fmt.Sprintf("embedder returned %d vectors for %d chunks", len(vectors), len(records)))
	}

	// 2. Guard the workspace's pinned embedding dimension
	if err := h.ensureDim(ctx, ws, len(vectors[0])); err != nil {
		return err
	}

	now := time.Now().UTC()
	for i, rec := range records {
		rec.Embedding = vectors[i]
		rec.IngestedAt = now
	}

	// 3. Atomic upsert-and-prune of the document's records
	if err := h.records.ReplaceSource(ctx, ws.WorkspaceID, sourceType, sourceID, records); err != nil {
		return apperr.Wrap(apperr.KindIndexWriteFailed, "replace source records", err)
	}

	// 4. Keyword index and counters follow every write
	if _, err := h.rebuildKeyword(ctx, ws); err != nil {
		return err
	}
	return h.meta.RefreshCounts(ctx, ws.WorkspaceID)
}

// DeleteSource removes one document's records and refreshes the
// keyword sidecar.
func (h *HybridIndex) DeleteSource(ctx context.Context, ws workspace.Context, sourceType, sourceID string) error {
	if err := h.records.DeleteBySource(ctx, ws.WorkspaceID, sourceType, sourceID); err != nil {
		return apperr.Wrap(apperr.KindIndexWriteFailed, "delete source records", err)
	}
	if _, err := h.rebuildKeyword(ctx, ws); err != nil {
		return err
	}
	return h.meta.RefreshCounts(ctx, ws.WorkspaceID)
}

// DeleteSourceType clears every record of one provider, used when a
// data source disconnects.
func (h *HybridIndex) DeleteSourceType(ctx context.Context, ws workspace.Context, sourceType string) error {
	if err := h.records.DeleteBySourceType(ctx, ws.WorkspaceID, sourceType); err != nil {
		return apperr.Wrap(apperr.KindIndexWriteFailed, "delete source type records", err)
	}
	if _, err := h.rebuildKeyword(ctx, ws); err != nil {
		return err
	}
	return h.meta.RefreshCounts(ctx, ws.WorkspaceID)
}

// Search runs retrieval with the requested strategy and returns at most
// TopK fused results.
func (h *HybridIndex) Search(ctx context.Context, ws workspace.Context, req SearchRequest) ([]*SearchResult, error) {
	topK := req.TopK
	if topK == 0 {
		topK = h.defaultTopK
	}
	k := clampTopK(topK)

	reqAlpha := req.Alpha
	if reqAlpha == 0 {
		reqAlpha = h.defaultAlpha
	}
	alpha := clampAlpha(reqAlpha)
	strategy := req.Strategy
	if strategy == "" {
		strategy = StrategyHybrid
	}

	switch strategy {
	case StrategyVector:
		return h.searchVector(ctx, ws, req.Query, k)
	case StrategyKeyword:
		return h.searchKeyword(ctx, ws, req.Query, k)
	case StrategyHybrid:
		return h.searchHybrid(ctx, ws, req.Query, k, alpha)
	default:
		return nil, apperr.New(apperr.KindValidation, fmt.Sprintf("unknown search strategy %q", strategy))
	}
}

func (h *HybridIndex) searchVector(ctx context.Context, ws workspace.Context, query string, k int) ([]*SearchResult, error) {
	scored, err := h.vectorRanked(ctx, ws, query, k)
	if err != nil {
		return nil, err
	}
	results := make([]*SearchResult, 0, len(scored))
	for _, s := range scored {
		results = append(results, &SearchResult{Record: s.Record, Score: s.Similarity})
	}
	return results, nil
}

func (h *HybridIndex) searchKeyword(ctx context.Context, ws workspace.Context, query string, k int) ([]*SearchResult, error) {
	hits, byID, err := h.keywordRanked(ctx, ws, query, k)
	if err != nil {
		return nil, err
	}
	results := make([]*SearchResult, 0, len(hits))
	for _, hit := range hits {
		rec, ok := byID[hit.ID]
		if !ok {
			continue
		}
		results = append(results, &SearchResult{Record: rec, Score: hit.Score})
	}
	return results, nil
}

func (h *HybridIndex) searchHybrid(ctx context.Context, ws workspace.Context, query string, k int, alpha float64) ([]*SearchResult, error) {
	// Oversample both branches so fusion has enough candidates.
	oversample := k
	if need := int(math.Ceil(float64(k) / alpha)); need > oversample {
		oversample = need
	}

	vecScored, err := h.vectorRanked(ctx, ws, query, oversample)
	if err != nil {
		return nil, err
	}
	kwHits, kwByID, err := h.keywordRanked(ctx, ws, query, oversample)
	if err != nil {
		return nil, err
	}

	vecRanks := make(map[string]int, len(vecScored))
	recordsByID := make(map[string]*entity.SourceRecord, len(vecScored)+len(kwByID))
	for i, s := range vecScored {
		vecRanks[s.Record.Id] = i + 1
		recordsByID[s.Record.Id] = s.Record
	}
	kwRanks := make(map[string]int, len(kwHits))
	for i, hit := range kwHits {
		kwRanks[hit.ID] = i + 1
		if rec, ok := kwByID[hit.ID]; ok {
			recordsByID[hit.ID] = rec
		}
	}

	fused := fuseRRF(vecRanks, kwRanks, alpha, h.rrfK)

	results := make([]*SearchResult, 0, len(fused))
	for id, score := range fused {
		rec, ok := recordsByID[id]
		if !ok {
			continue
		}
		results = append(results, &SearchResult{Record: rec, Score: score})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		if results[i].Record.SourceId != results[j].Record.SourceId {
			return results[i].Record.SourceId < results[j].Record.SourceId
		}
		return results[i].Record.Id < results[j].Record.Id
	})

	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

func (h *HybridIndex) vectorRanked(ctx context.Context, ws workspace.Context, query string, limit int) ([]*contract.ScoredSourceRecord, error) {
	vectors, err := h.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, apperr.Wrap(apperr.KindEmbeddingFailed, "embed query", err)
	}
	if len(vectors) != 1 {
		return nil, apperr.New(apperr.KindEmbeddingFailed, "embedder returned no query vector")
	}
	return h.records.SearchVector(ctx, ws.WorkspaceID, vectors[0], limit)
}

func (h *HybridIndex) keywordRanked(ctx context.Context, ws workspace.Context, query string, limit int) ([]keyword.Result, map[string]*entity.SourceRecord, error) {
	ix, err := h.keywordIndex(ctx, ws)
	if err != nil {
		return nil, nil, err
	}

	hits := ix.Search(query, limit)
	if len(hits) == 0 {
		return nil, nil, nil
	}

	ids := make([]string, len(hits))
	for i, hit := range hits {
		ids[i] = hit.ID
	}
	recs, err := h.records.FindAll(ctx,
		specification.ByWorkspaceID{WorkspaceID: ws.WorkspaceID},
		specification.ByRecordIDs{IDs: ids},
	)
	if err != nil {
		return nil, nil, err
	}

	byID := make(map[string]*entity.SourceRecord, len(recs))
	for _, rec := range recs {
		byID[rec.Id] = rec
	}
	return hits, byID, nil
}

// keywordIndex returns the workspace's BM25 index: memoized, else the
// persisted sidecar file, else a rebuild from the record store.
func (h *HybridIndex) keywordIndex(ctx context.Context, ws workspace.Context) (*keyword.Index, error) {
	cacheKey := ws.WorkspaceID.String()
	if cached, ok := h.kwCache.Get(cacheKey); ok {
		return cached.(*keyword.Index), nil
	}

	ix, err := keyword.LoadFile(ws.KeywordIndexPath())
	if err != nil {
		h.log.Warn("hybrid_index", "keyword index file unreadable, rebuilding", map[string]interface{}{
			"workspace_id": ws.WorkspaceID.String(),
			"error":        err.Error(),
		})
		ix = nil
	}
	if ix == nil {
		return h.rebuildKeyword(ctx, ws)
	}

	h.kwCache.Set(cacheKey, ix, gocache.DefaultExpiration)
	return ix, nil
}

// rebuildKeyword regenerates the BM25 sidecar from the live record set
// and refreshes the memo, invalidating any stale cached copy.
func (h *HybridIndex) rebuildKeyword(ctx context.Context, ws workspace.Context) (*keyword.Index, error) {
	recs, err := h.records.FindAll(ctx, specification.ByWorkspaceID{WorkspaceID: ws.WorkspaceID})
	if err != nil {
		return nil, apperr.Wrap(apperr.KindIndexWriteFailed, "load records for keyword rebuild", err)
	}

	docs := make([]keyword.Document, 0, len(recs))
	for _, rec := range recs {
		docs = append(docs, keyword.Document{ID: rec.Id, Text: rec.Text})
	}
	ix := keyword.Build(docs)

	if err := ix.SaveFile(ws.KeywordIndexPath()); err != nil {
		// The in-memory index still serves searches this process.
		h.log.Warn("hybrid_index", "failed to persist keyword index", map[string]interface{}{
			"workspace_id": ws.WorkspaceID.String(),
			"path":         ws.KeywordIndexPath(),
			"error":        err.Error(),
		})
	}

	h.kwCache.Set(ws.WorkspaceID.String(), ix, gocache.DefaultExpiration)
	return ix, nil
}

// ensureDim pins the workspace's embedding dimension on first write and
// rejects writes whose vectors disagree with the pinned value.
func (h *HybridIndex) ensureDim(ctx context.Context, ws workspace.Context, dim int) error {
	idx, err := h.meta.FindByWorkspace(ctx, ws.WorkspaceID)
	if err != nil {
		return err
	}

	if idx == nil {
		return h.meta.Create(ctx, &entity.RagIndex{
			Id:          uuid.New(),
			WorkspaceId: ws.WorkspaceID,
			IndexName:   "default",
			Engine:      DefaultIndexEngine,
			StorageURI:  ws.StorageRoot,
			Dim:         dim,
			Status:      entity.RagIndexReady,
		})
	}

	if idx.Dim != 0 && idx.Dim != dim {
		return apperr.New(apperr.KindDimMismatch,
			fmt.Sprintf("workspace index pinned to dim %d, got %d; reconfigure embeddings or rebuild the index", idx.Dim, dim))
	}
	if idx.Dim == 0 {
		idx.Dim = dim
		return h.meta.Update(ctx, idx)
	}
	return nil
}

func clampTopK(k int) int {
	if k == 0 {
		return DefaultTopK
	}
	if k < MinTopK {
		return MinTopK
	}
	if k > MaxTopK {
		return MaxTopK
	}
	return k
}

func clampAlpha(alpha float64) float64 {
	if alpha <= 0 || alpha > 1 {
		return DefaultAlpha
	}
	return alpha
}

// fuseRRF combines two rank lists with weighted reciprocal-rank fusion:
// alpha weighs the vector list, (1-alpha) the keyword list. A document
// absent from a list contributes nothing for that list.
func fuseRRF(vecRanks, kwRanks map[string]int, alpha float64, rrfK int) map[string]float64 {
	fused := make(map[string]float64, len(vecRanks)+len(kwRanks))
	for id, rank := range vecRanks {
		fused[id] += alpha / float64(rrfK+rank)
	}
	for id, rank := range kwRanks {
		fused[id] += (1 - alpha) / float64(rrfK+rank)
	}
	return fused
}
