package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/ozolsandis/peoplebook-backend/internal/data/repos/overrides"
	"github.com/ozolsandis/peoplebook-backend/internal/db"
	"github.com/ozolsandis/peoplebook-backend/internal/people"
	"github.com/ozolsandis/peoplebook-backend/internal/pkg/dbctx"
	"github.com/ozolsandis/peoplebook-backend/internal/platform/envutil"
	"github.com/ozolsandis/peoplebook-backend/internal/platform/logger"
	"github.com/ozolsandis/peoplebook-backend/internal/scanner"
	"github.com/ozolsandis/peoplebook-backend/internal/services"
)

// One-shot bulk migration of file-derived profile text into the override
// store. Safe to rerun: already-overridden slugs are skipped.
func main() {
	var dryRun bool
	var ranBy string
	flag.BoolVar(&dryRun, "dry-run", false, "report what would be migrated without writing")
	flag.StringVar(&ranBy, "ran-by", "migration-cli", "username recorded on created overrides")
	flag.Parse()

	log, err := logger.New(envutil.Str("LOG_MODE", "development"))
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	dbService, err := db.NewService(log)
	if err != nil {
		log.Fatal("Database init failed", "error", err)
	}
	if err := dbService.AutoMigrateAll(); err != nil {
		log.Fatal("Auto migration failed", "error", err)
	}
	theDB := dbService.DB()

	subjectsRoot := envutil.Str("SUBJECTS_ROOT", "./content/people")
	subjectScanner := scanner.NewScanner(subjectsRoot, log, envutil.Int("SCAN_CONCURRENCY", 8))
	indexService := people.NewService(subjectScanner, log)

	ctx := context.Background()
	if err := indexService.Initialize(ctx); err != nil {
		log.Fatal("Subject scan failed", "error", err)
	}
	snap := indexService.Snapshot()
	log.Info("Scanned subjects", "count", snap.Len())

	if dryRun {
		overrideRepo := overrides.NewOverrideRepo(theDB, log)
		for _, record := range snap.All() {
			_, err := overrideRepo.FindBySlug(ctx, nil, record.Slug)
			state := "would create"
			if err == nil {
				state = "skip (override exists)"
			}
			fmt.Printf("%-40s %s\n", record.Slug, state)
		}
		return
	}

	overrideRepo := overrides.NewOverrideRepo(theDB, log)
	runRepo := overrides.NewMigrationRunRepo(theDB, log)
	profileService := services.NewProfileService(theDB, log, overrideRepo, runRepo, indexService)

	result, err := profileService.MigrateFromFiles(dbctx.Context{Ctx: ctx}, ranBy)
	if err != nil {
		log.Fatal("Migration aborted", "error", err)
	}
	fmt.Printf("total=%d successful=%d skipped=%d failed=%d\n",
		result.Total, result.Successful, result.Skipped, result.Failed)
	for _, item := range result.Errors {
		fmt.Printf("  %s: %s\n", item.Slug, item.Reason)
	}
	if result.Failed > 0 {
		os.Exit(1)
	}
}
