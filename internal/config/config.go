package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Storage   StorageConfig
	Retrieval RetrievalConfig
	Chunking  ChunkingConfig
	LLM       LLMConfig
	Embedding EmbeddingConfig
	Providers ProvidersConfig
	Notion    NotionConfig
	Google    GoogleConfig
	Tracing   TracingConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	RequestBudgetSecs  int
}

type DatabaseConfig struct {
	Connection string
}

type StorageConfig struct {
	WorkspaceRoot string
}

type RetrievalConfig struct {
	TopK        int
	HybridAlpha float64
	HybridRRFK  int
}

type ChunkingConfig struct {
	ChunkSize    int
	OverlapRatio float64
}

type LLMConfig struct {
	Provider              string // "openai" or "ollama"
	Endpoint              string
	APIKey                string
	ChatDeployment        string
	FinalAnswerDeployment string
	DocGenMaxTokens       int
	TimeoutSecs           int
	OllamaBaseURL         string
}

type EmbeddingConfig struct {
	Provider      string // "gemini" or "ollama"
	Deployment    string
	GeminiAPIKey  string
	OllamaBaseURL string
	TimeoutSecs   int
}

// ProvidersConfig holds knobs shared by every upstream content
// provider (Notion, Drive).
type ProvidersConfig struct {
	TimeoutSecs int
}

type NotionConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
}

type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
}

type TracingConfig struct {
	Enabled      bool
	OTLPEndpoint string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "8080"),
			Environment:        getEnv("APP_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "./logs/app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),
			NatsURL:            getEnv("NATS_URL", ""),
			RedisURL:           getEnv("REDIS_URL", ""),
			RequestBudgetSecs:  getEnvAsInt("REQUEST_BUDGET_SECS", 120),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION", "host=localhost user=postgres dbname=arcana port=5432 sslmode=disable"),
		},
		Storage: StorageConfig{
			WorkspaceRoot: getEnv("WORKSPACE_STORAGE_ROOT", "./data/workspaces"),
		},
		Retrieval: RetrievalConfig{
			TopK:        getEnvAsInt("TOP_K", 5),
			HybridAlpha: getEnvAsFloat("HYBRID_ALPHA", 0.6),
			HybridRRFK:  getEnvAsInt("HYBRID_RRF_K", 60),
		},
		Chunking: ChunkingConfig{
			ChunkSize:    getEnvAsInt("RAG_CHUNK_SIZE", 800),
			OverlapRatio: getEnvAsFloat("RAG_CHUNK_OVERLAP_RATIO", 0.10),
		},
		LLM: LLMConfig{
			Provider:              getEnv("LLM_PROVIDER", "openai"),
			Endpoint:              getEnv("LLM_ENDPOINT", "https://api.openai.com/v1"),
			APIKey:                getEnv("LLM_API_KEY", ""),
			ChatDeployment:        getEnv("CHAT_DEPLOYMENT", "gpt-4o-mini"),
			FinalAnswerDeployment: getEnv("FINAL_ANSWER_DEPLOYMENT", "gpt-4o-mini"),
			DocGenMaxTokens:       getEnvAsInt("DOC_GEN_MAX_TOKENS", 1600),
			TimeoutSecs:           getEnvAsInt("LLM_TIMEOUT_SECS", 30),
			OllamaBaseURL:         getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
		},
		Embedding: EmbeddingConfig{
			Provider:      getEnv("EMBEDDING_PROVIDER", "gemini"),
			Deployment:    getEnv("EMBED_DEPLOYMENT", "text-embedding-004"),
			GeminiAPIKey:  getEnv("GEMINI_API_KEY", ""),
			OllamaBaseURL: getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			TimeoutSecs:   getEnvAsInt("EMBEDDING_TIMEOUT_SECS", 10),
		},
		Providers: ProvidersConfig{
			TimeoutSecs: getEnvAsInt("PROVIDER_TIMEOUT_SECS", 60),
		},
		Notion: NotionConfig{
			ClientID:     getEnv("NOTION_CLIENT_ID", ""),
			ClientSecret: getEnv("NOTION_CLIENT_SECRET", ""),
			RedirectURI:  getEnv("NOTION_REDIRECT_URI", ""),
		},
		Google: GoogleConfig{
			ClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
			ClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
			RedirectURI:  getEnv("GOOGLE_REDIRECT_URI", ""),
		},
		Tracing: TracingConfig{
			Enabled:      getEnvAsBool("TRACING_ENABLED", false),
			OTLPEndpoint: getEnv("OTLP_ENDPOINT", "localhost:4318"),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return fallback
	}
	return value
}

func getEnvAsFloat(key string, fallback float64) float64 {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return fallback
	}
	return value
}

func getEnvAsBool(key string, fallback bool) bool {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return fallback
	}
	return value
}
