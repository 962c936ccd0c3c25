package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ozolsandis/peoplebook-backend/internal/data/repos/overrides"
	"github.com/ozolsandis/peoplebook-backend/internal/db"
	"github.com/ozolsandis/peoplebook-backend/internal/people"
	"github.com/ozolsandis/peoplebook-backend/internal/pkg/dbctx"
	"github.com/ozolsandis/peoplebook-backend/internal/platform/envutil"
	"github.com/ozolsandis/peoplebook-backend/internal/platform/logger"
	"github.com/ozolsandis/peoplebook-backend/internal/scanner"
	"github.com/ozolsandis/peoplebook-backend/internal/services"
)

func main() {
	log, err := logger.New(envutil.Str("LOG_MODE", "development"))
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	subjectsRoot := envutil.Str("SUBJECTS_ROOT", "./content/people")
	scanConcurrency := envutil.Int("SCAN_CONCURRENCY", 8)
	watchEnabled := envutil.Bool("SUBJECTS_WATCH", true)

	dbService, err := db.NewService(log)
	if err != nil {
		log.Fatal("Database init failed", "error", err)
	}
	if err := dbService.AutoMigrateAll(); err != nil {
		log.Fatal("Auto migration failed", "error", err)
	}
	theDB := dbService.DB()

	overrideRepo := overrides.NewOverrideRepo(theDB, log)
	runRepo := overrides.NewMigrationRunRepo(theDB, log)

	subjectScanner := scanner.NewScanner(subjectsRoot, log, scanConcurrency)
	indexService := people.NewService(subjectScanner, log)
	profileService := services.NewProfileService(theDB, log, overrideRepo, runRepo, indexService)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := indexService.Initialize(ctx); err != nil {
		log.Error("Initial scan failed, serving in failed state until recovery", "error", err)
	}

	health := indexService.Health()
	log.Info("Startup health",
		"status", health.Status,
		"subjects", health.Counts.Subjects,
		"issues", health.Issues,
	)

	// Warm the resolution path so the one-time migration runs at startup
	// instead of on the first admin read.
	if _, err := profileService.ListProfiles(dbctx.Context{Ctx: ctx}); err != nil {
		log.Warn("Warm-up list failed", "error", err)
	}

	if watchEnabled {
		watcher := people.NewWatcher(subjectsRoot, indexService, log)
		go func() {
			if err := watcher.Run(ctx); err != nil && ctx.Err() == nil {
				log.Error("Subject watcher stopped", "error", err)
			}
		}()
	}

	<-ctx.Done()
	log.Info("Shutting down")
}
