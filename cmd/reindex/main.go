package main

import (
	"context"
	"log"
	"os"

	"arcana-be/internal/config"
	"arcana-be/internal/entity"
	"arcana-be/internal/repository/implementation"
	"arcana-be/internal/repository/specification"
	"arcana-be/internal/workspace"
	"arcana-be/pkg/database"
	"arcana-be/pkg/rag/keyword"

	"github.com/fatih/color"
	"github.com/google/uuid"
)

// reindex rebuilds the BM25 sidecar files and index counters from the
// live record store. Run it after restoring a database backup or when a
// sidecar file is lost.
//
// Usage: reindex [workspace-id]
func main() {
	cfg := config.Load()
	db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Fatal("Failed to connect to DB:", err)
	}

	workspaceRepo := implementation.NewWorkspaceRepository(db)
	recordRepo := implementation.NewSourceRecordRepository(db)
	ragIndexRepo := implementation.NewRagIndexRepository(db)

	ctx := context.Background()

	var targets []*entity.Workspace
	if len(os.Args) > 1 {
		id, err := uuid.Parse(os.Args[1])
		if err != nil {
			log.Fatal("Invalid workspace ID:", err)
		}
		w, err := workspaceRepo.FindOne(ctx, specification.ByID{ID: id})
		if err != nil || w == nil {
			log.Fatalf("Workspace %s not found: %v", id, err)
		}
		targets = append(targets, w)
	} else {
		targets, err = workspaceRepo.FindAll(ctx)
		if err != nil {
			log.Fatal("Failed to list workspaces:", err)
		}
	}

	ok := color.New(color.FgGreen)
	bad := color.New(color.FgRed)

	for _, w := range targets {
		wctx := workspace.NewContext(w.Id, w.Name, cfg.Storage.WorkspaceRoot)
		if err := wctx.EnsureDirs(); err != nil {
			bad.Printf("✗ %s: storage: %v\n", w.Slug, err)
			continue
		}

		records, err := recordRepo.FindAll(ctx, specification.ByWorkspaceID{WorkspaceID: w.Id})
		if err != nil {
			bad.Printf("✗ %s: load records: %v\n", w.Slug, err)
			continue
		}

		docs := make([]keyword.Document, 0, len(records))
		for _, rec := range records {
			docs = append(docs, keyword.Document{ID: rec.Id, Text: rec.Text})
		}
		if err := keyword.Build(docs).SaveFile(wctx.KeywordIndexPath()); err != nil {
			bad.Printf("✗ %s: save sidecar: %v\n", w.Slug, err)
			continue
		}

		if err := ragIndexRepo.RefreshCounts(ctx, w.Id); err != nil {
			bad.Printf("✗ %s: refresh counts: %v\n", w.Slug, err)
			continue
		}

		ok.Printf("✓ %s: %d chunks reindexed\n", w.Slug, len(records))
	}
}
