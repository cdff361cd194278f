package bootstrap

import (
	"log"
	"time"

	"arcana-be/internal/config"
	"arcana-be/internal/controller"
	"arcana-be/internal/pkg/logger"
	"arcana-be/internal/repository/implementation"
	"arcana-be/internal/repository/unitofwork"
	"arcana-be/internal/service"
	"arcana-be/pkg/chunker"
	"arcana-be/pkg/embedding"
	"arcana-be/pkg/llm"
	"arcana-be/pkg/llm/factory"
	"arcana-be/pkg/oauth"
	"arcana-be/pkg/rag/index"

	pktNats "arcana-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	WorkspaceController controller.IWorkspaceController
	IngestController    controller.IIngestController
	AgentController     controller.IAgentController
	OAuthController     controller.IOAuthController

	// Background services (main.go starts these)
	AuditService service.IAuditService

	// NatsPublisher is closed on shutdown; nil when NATS is disabled.
	NatsPublisher *pktNats.Publisher
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermillLogger)
	auditService := service.NewAuditService(pubSub, service.AuditTopic, cfg.Storage.WorkspaceRoot, sysLogger)

	var natsPub *pktNats.Publisher
	if cfg.App.NatsURL != "" {
		var err error
		natsPub, err = pktNats.NewPublisher(cfg.App.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS publisher: %v", err)
			natsPub = nil
		}
	}
	// EventPublisher takes a typed nil unless guarded.
	var eventPublisher service.EventPublisher
	if natsPub != nil {
		eventPublisher = natsPub
	}

	// 3. AI providers
	embedTimeout := time.Duration(cfg.Embedding.TimeoutSecs) * time.Second
	var embeddingProvider embedding.EmbeddingProvider
	if cfg.Embedding.Provider == "ollama" {
		embeddingProvider = embedding.NewOllamaProvider(cfg.Embedding.OllamaBaseURL, cfg.Embedding.Deployment, embedTimeout)
		log.Printf("[INFO] Using embedding provider: OLLAMA (%s)", cfg.Embedding.Deployment)
	} else {
		embeddingProvider = embedding.NewGeminiProvider(cfg.Embedding.GeminiAPIKey, cfg.Embedding.Deployment, embedTimeout)
		log.Printf("[INFO] Using embedding provider: GEMINI (%s)", cfg.Embedding.Deployment)
	}

	chatLLM := mustLLM(cfg, cfg.LLM.ChatDeployment)
	finalLLM := chatLLM
	if cfg.LLM.FinalAnswerDeployment != cfg.LLM.ChatDeployment {
		finalLLM = mustLLM(cfg, cfg.LLM.FinalAnswerDeployment)
	}
	log.Printf("[INFO] Using LLM provider: %s (chat=%s, final=%s)",
		cfg.LLM.Provider, cfg.LLM.ChatDeployment, cfg.LLM.FinalAnswerDeployment)

	// 4. Retrieval index. The index holds long-lived repositories bound
	// to the pool, not per-request units of work.
	hybrid := index.NewHybridIndex(
		implementation.NewSourceRecordRepository(db),
		implementation.NewRagIndexRepository(db),
		embeddingProvider,
		sysLogger,
	)
	hybrid.Tune(cfg.Retrieval.TopK, cfg.Retrieval.HybridAlpha, cfg.Retrieval.HybridRRFK)
	builder := chunker.NewBuilder(cfg.Chunking.ChunkSize, cfg.Chunking.OverlapRatio)

	// 5. OAuth plumbing
	notionOAuth := oauth.NewNotionOAuth(
		cfg.Notion.ClientID,
		cfg.Notion.ClientSecret,
		cfg.Notion.RedirectURI,
		time.Duration(cfg.Providers.TimeoutSecs)*time.Second,
	)
	googleOAuth := oauth.NewGoogleOAuth(cfg.Google.ClientID, cfg.Google.ClientSecret, cfg.Google.RedirectURI)

	tokenManager := oauth.NewManager(
		implementation.NewCredentialRepository(db),
		map[string]oauth.Refresher{
			"notion": notionOAuth,
			"gdrive": googleOAuth,
		},
		sysLogger,
	)

	stateStore, err := oauth.NewStateStore(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Redis state store unavailable, falling back to memory: %v", err)
		stateStore = oauth.NewMemoryStateStore()
	}

	// 6. Services
	workspaceService := service.NewWorkspaceService(uowFactory, cfg.Storage.WorkspaceRoot, sysLogger)
	ingestService := service.NewIngestService(
		uowFactory,
		hybrid,
		tokenManager,
		builder,
		cfg.Storage.WorkspaceRoot,
		cfg.Providers.TimeoutSecs,
		eventPublisher,
		auditService,
		sysLogger,
	)
	agentService := service.NewAgentService(
		uowFactory,
		hybrid,
		chatLLM,
		finalLLM,
		tokenManager,
		cfg.LLM.DocGenMaxTokens,
		cfg.App.RequestBudgetSecs,
		cfg.Providers.TimeoutSecs,
		cfg.Storage.WorkspaceRoot,
		eventPublisher,
		auditService,
		sysLogger,
	)
	oauthService := service.NewOAuthService(uowFactory, stateStore, notionOAuth, googleOAuth, sysLogger)

	// 7. Controllers
	return &Container{
		WorkspaceController: controller.NewWorkspaceController(workspaceService),
		IngestController:    controller.NewIngestController(ingestService),
		AgentController:     controller.NewAgentController(agentService),
		OAuthController:     controller.NewOAuthController(oauthService),

		AuditService:  auditService,
		NatsPublisher: natsPub,
	}
}

func mustLLM(cfg *config.Config, model string) llm.LLMProvider {
	provider, err := factory.NewLLMProvider(factory.ProviderConfig{
		Provider:    cfg.LLM.Provider,
		BaseURL:     llmBaseURL(cfg),
		APIKey:      cfg.LLM.APIKey,
		Model:       model,
		TimeoutSecs: cfg.LLM.TimeoutSecs,
	})
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM provider: %v", err)
	}
	return provider
}

func llmBaseURL(cfg *config.Config) string {
	if cfg.LLM.Provider == "ollama" {
		return cfg.LLM.OllamaBaseURL
	}
	return cfg.LLM.Endpoint
}
