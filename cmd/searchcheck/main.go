package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"arcana-be/internal/config"
	"arcana-be/internal/pkg/logger"
	"arcana-be/internal/repository/implementation"
	"arcana-be/internal/repository/specification"
	"arcana-be/internal/workspace"
	"arcana-be/pkg/database"
	"arcana-be/pkg/embedding"
	"arcana-be/pkg/rag/index"
	"arcana-be/pkg/rag/search"

	"github.com/fatih/color"
	"github.com/google/uuid"
)

// searchcheck runs one query against a workspace with all three
// retrieval strategies side by side.
//
// Usage: searchcheck <workspace-id> <query>
func main() {
	if len(os.Args) < 3 {
		log.Fatal("Usage: searchcheck <workspace-id> <query>")
	}
	workspaceID, err := uuid.Parse(os.Args[1])
	if err != nil {
		log.Fatal("Invalid workspace ID:", err)
	}
	query := os.Args[2]

	cfg := config.Load()
	db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Fatal("Failed to connect to DB:", err)
	}

	embedTimeout := time.Duration(cfg.Embedding.TimeoutSecs) * time.Second
	var embeddingProvider embedding.EmbeddingProvider
	if cfg.Embedding.Provider == "ollama" {
		embeddingProvider = embedding.NewOllamaProvider(cfg.Embedding.OllamaBaseURL, cfg.Embedding.Deployment, embedTimeout)
	} else {
		embeddingProvider = embedding.NewGeminiProvider(cfg.Embedding.GeminiAPIKey, cfg.Embedding.Deployment, embedTimeout)
	}

	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, false)
	hybrid := index.NewHybridIndex(
		implementation.NewSourceRecordRepository(db),
		implementation.NewRagIndexRepository(db),
		embeddingProvider,
		sysLogger,
	)

	ctx := context.Background()
	w, err := implementation.NewWorkspaceRepository(db).FindOne(ctx, specification.ByID{ID: workspaceID})
	if err != nil || w == nil {
		log.Fatalf("Workspace %s not found: %v", workspaceID, err)
	}
	wctx := workspace.NewContext(w.Id, w.Name, cfg.Storage.WorkspaceRoot)

	header := color.New(color.FgCyan, color.Bold)
	title := color.New(color.FgGreen)
	dim := color.New(color.Faint)

	header.Printf("Workspace: %s (%s)\n", w.Name, w.Id)
	header.Printf("Query:     %q\n\n", query)

	for _, strategy := range []string{index.StrategyHybrid, index.StrategyVector, index.StrategyKeyword} {
		header.Printf("=== %s ===\n", strategy)
		results, err := hybrid.Search(ctx, wctx, index.SearchRequest{Query: query, Strategy: strategy})
		if err != nil {
			color.Red("  search failed: %v", err)
			continue
		}
		if len(results) == 0 {
			dim.Println("  (no results)")
		}
		for i, res := range results {
			title.Printf("  [%d] %.6f  %s\n", i+1, res.Score, res.Record.Title)
			dim.Printf("      %s  %s\n", res.Record.Id, res.Record.URL)
			fmt.Printf("      %s\n", search.Snippet(res.Record.Text, 160))
		}
		fmt.Println()
	}
}
