package service

import (
	"context"
	"errors"
	"time"

	"arcana-be/internal/apperr"
	"arcana-be/internal/dto"
	"arcana-be/internal/entity"
	"arcana-be/internal/pkg/logger"
	"arcana-be/internal/repository/specification"
	"arcana-be/internal/repository/unitofwork"
	"arcana-be/internal/workspace"
	"arcana-be/pkg/agent"
	"arcana-be/pkg/events"
	"arcana-be/pkg/llm"
	"arcana-be/pkg/notion"
	"arcana-be/pkg/oauth"
	"arcana-be/pkg/rag/index"
	"arcana-be/pkg/rag/search"

	"github.com/google/uuid"
)

// defaultRequestBudget bounds one agent run end to end, LLM calls
// included, when no budget is configured.
const defaultRequestBudget = 120 * time.Second

// defaultProviderTimeout bounds one upstream provider HTTP call.
const defaultProviderTimeout = 60 * time.Second

type IAgentService interface {
	// Query runs one question through the agent graph.
	Query(ctx context.Context, workspaceID uuid.UUID, req *dto.QueryRequest) (*dto.QueryResponse, error)

	// Search runs bare retrieval without the agent.
	Search(ctx context.Context, workspaceID uuid.UUID, req *dto.SearchRequest) (*dto.SearchResponse, error)
}

type agentService struct {
	uowFactory      unitofwork.RepositoryFactory
	hybrid          *index.HybridIndex
	chatLLM         llm.LLMProvider
	finalLLM        llm.LLMProvider
	tokens          *oauth.Manager
	docMaxTokens    int
	budget          time.Duration
	providerTimeout time.Duration
	storageRoot     string
	publisher       EventPublisher
	audit           IAuditService
	logger          logger.ILogger
}

func NewAgentService(
	uowFactory unitofwork.RepositoryFactory,
	hybrid *index.HybridIndex,
	chatLLM llm.LLMProvider,
	finalLLM llm.LLMProvider,
	tokens *oauth.Manager,
	docMaxTokens int,
	budgetSecs int,
	providerTimeoutSecs int,
	storageRoot string,
	publisher EventPublisher,
	audit IAuditService,
	logger logger.ILogger,
) IAgentService {
	budget := defaultRequestBudget
	if budgetSecs > 0 {
		budget = time.Duration(budgetSecs) * time.Second
	}
	providerTimeout := defaultProviderTimeout
	if providerTimeoutSecs > 0 {
		providerTimeout = time.Duration(providerTimeoutSecs) * time.Second
	}
	return &agentService{
		uowFactory:      uowFactory,
		hybrid:          hybrid,
		chatLLM:         chatLLM,
		finalLLM:        finalLLM,
		tokens:          tokens,
		docMaxTokens:    docMaxTokens,
		budget:          budget,
		providerTimeout: providerTimeout,
		storageRoot:     storageRoot,
		publisher:       publisher,
		audit:           audit,
		logger:          logger,
	}
}

func (as *agentService) Query(ctx context.Context, workspaceID uuid.UUID, req *dto.QueryRequest) (*dto.QueryResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, as.budget)
	defer cancel()

	uow := as.uowFactory.NewUnitOfWork(ctx)
	wctx, err := as.workspaceContext(ctx, uow, workspaceID)
	if err != nil {
		return nil, err
	}

	// Page creation is only available when a Notion connection with a
	// writable parent page exists; the agent degrades to an inline
	// draft otherwise.
	pages := as.notionPages(ctx, uow, workspaceID)

	runner := agent.New(as.chatLLM, as.finalLLM, as.hybrid, pages, as.docMaxTokens, as.logger)
	st := &agent.State{
		Workspace:         wctx,
		Query:             req.Query,
		History:           toLLMHistory(req.History),
		TopK:              req.TopK,
		Alpha:             req.Alpha,
		Strategy:          req.Strategy,
		FinalInstructions: req.FinalInstructions,
	}

	if err := runner.Run(ctx, st); err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, apperr.Wrap(apperr.KindRequestTimeout, "agent run exceeded the request budget", err)
		}
		return nil, err
	}

	resp := &dto.QueryResponse{
		Mode: st.Mode,
		Result: dto.QueryResultResponse{
			Answer:    st.Answer,
			Citations: st.Citations,
			TopURL:    st.TopURL,
		},
	}
	if st.Decision != nil {
		resp.Decision = &dto.DecisionResponse{
			Action:       st.Decision.Action,
			Query:        st.Decision.Query,
			Title:        st.Decision.Title,
			UseRag:       st.Decision.UseRag,
			Instructions: st.Decision.Instructions,
		}
	}
	if st.Mode == agent.ActionGenerate {
		resp.GeneratedDocument = st.Draft
	}
	if st.CreatedPage != nil {
		resp.CreatedPage = &dto.CreatedPageResponse{
			Id:    st.CreatedPage.ID,
			Title: st.CreatedPage.Title,
			URL:   st.CreatedPage.URL,
		}
		as.publishPageCreated(ctx, wctx, st.CreatedPage)
	}
	return resp, nil
}

func (as *agentService) Search(ctx context.Context, workspaceID uuid.UUID, req *dto.SearchRequest) (*dto.SearchResponse, error) {
	uow := as.uowFactory.NewUnitOfWork(ctx)
	wctx, err := as.workspaceContext(ctx, uow, workspaceID)
	if err != nil {
		return nil, err
	}

	results, err := as.hybrid.Search(ctx, wctx, index.SearchRequest{
		Query:    req.Query,
		TopK:     req.TopK,
		Alpha:    req.Alpha,
		Strategy: req.Strategy,
	})
	if err != nil {
		return nil, err
	}

	resp := &dto.SearchResponse{Hits: make([]dto.SearchHit, 0, len(results))}
	for _, res := range results {
		resp.Hits = append(resp.Hits, dto.SearchHit{
			ChunkId:    res.Record.Id,
			SourceType: res.Record.SourceType,
			SourceId:   res.Record.SourceId,
			Title:      res.Record.Title,
			URL:        res.Record.URL,
			Snippet:    search.Snippet(res.Record.Text, search.SnippetMaxChars),
			Score:      res.Score,
		})
	}
	return resp, nil
}

func (as *agentService) workspaceContext(ctx context.Context, uow unitofwork.UnitOfWork, workspaceID uuid.UUID) (workspace.Context, error) {
	w, err := uow.WorkspaceRepository().FindOne(ctx, specification.ByID{ID: workspaceID})
	if err != nil {
		return workspace.Context{}, err
	}
	if w == nil {
		return workspace.Context{}, apperr.New(apperr.KindValidation, "workspace not found")
	}
	return workspace.NewContext(w.Id, w.Name, as.storageRoot), nil
}

// notionPages returns a page creator for the workspace's Notion
// connection, or nil when there is none or its integration has no
// writable parent page.
func (as *agentService) notionPages(ctx context.Context, uow unitofwork.UnitOfWork, workspaceID uuid.UUID) agent.PageCreator {
	src, err := uow.DataSourceRepository().FindOne(ctx,
		specification.ByWorkspaceID{WorkspaceID: workspaceID},
		specification.ByProvider{Provider: entity.SourceTypeNotion},
	)
	if err != nil || src == nil {
		return nil
	}

	cred, err := uow.CredentialRepository().FindOne(ctx, specification.ByDataSourceID{DataSourceID: src.Id})
	if err != nil || cred == nil {
		return nil
	}
	parentPageID, _ := cred.ProviderPayload["duplicated_template_id"].(string)
	if parentPageID == "" {
		return nil
	}

	token, err := as.tokens.AccessToken(ctx, src.Id.String())
	if err != nil {
		as.logger.Warn("agent_service", "notion token unavailable, page creation disabled", map[string]interface{}{
			"data_source_id": src.Id.String(),
			"error":          err.Error(),
		})
		return nil
	}

	return &notionPageCreator{
		client:       notion.NewClient(token, as.providerTimeout),
		parentPageID: parentPageID,
	}
}

func (as *agentService) publishPageCreated(ctx context.Context, wctx workspace.Context, page *notion.PageSummary) {
	if as.publisher != nil {
		if err := as.publisher.Publish(ctx, events.NewPageCreated(wctx.WorkspaceID.String(), page.ID, page.Title)); err != nil {
			as.logger.Warn("agent_service", "failed to publish page created event", map[string]interface{}{
				"page_id": page.ID,
				"error":   err.Error(),
			})
		}
	}
	if as.audit != nil {
		err := as.audit.Record(ctx, dto.AuditEntry{
			WorkspaceId: wctx.WorkspaceID.String(),
			Slug:        wctx.Slug,
			Action:      "page.created",
			Detail: map[string]interface{}{
				"page_id": page.ID,
				"title":   page.Title,
			},
		})
		if err != nil {
			as.logger.Warn("agent_service", "failed to record audit entry", map[string]interface{}{
				"page_id": page.ID,
				"error":   err.Error(),
			})
		}
	}
}

// notionPageCreator publishes generated documents under the
// integration's duplicated template page.
type notionPageCreator struct {
	client       *notion.Client
	parentPageID string
}

func (c *notionPageCreator) CreatePage(ctx context.Context, title, markdown string) (*notion.PageSummary, error) {
	return c.client.CreatePage(ctx, c.parentPageID, title, notion.MarkdownToBlocks(markdown))
}

func toLLMHistory(history []dto.HistoryMessage) []llm.Message {
	if len(history) == 0 {
		return nil
	}
	messages := make([]llm.Message, 0, len(history))
	for _, msg := range history {
		messages = append(messages, llm.Message{Role: msg.Role, Content: msg.Content})
	}
	return messages
}
