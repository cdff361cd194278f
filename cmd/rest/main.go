package main

import (
	"context"
	"log"

	"arcana-be/internal/bootstrap"
	"arcana-be/internal/config"
	"arcana-be/internal/server"
	"arcana-be/internal/tracer"
	"arcana-be/pkg/database"
)

func main() {
	// 1. Load Configuration
	cfg := config.Load()

	// 2. Initialize Tracer
	shutdownTracer := tracer.InitTracer(cfg.Tracing.Enabled, cfg.Tracing.OTLPEndpoint)
	defer shutdownTracer(context.Background())

	// 3. Initialize Database
	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	// 4. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(gormDB, cfg)
	if container.NatsPublisher != nil {
		defer container.NatsPublisher.Close()
	}

	// 5. Start Background Services
	go func() {
		log.Println("Background: Starting audit JSONL writer...")
		if err := container.AuditService.Consume(context.Background()); err != nil {
			log.Printf("Background audit writer error: %v", err)
		}
	}()

	// 6. Initialize Server
	srv := server.New(cfg, container)

	// 7. Run Server
	log.Fatal(srv.Run())
}
