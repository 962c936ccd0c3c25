package services

import (
	"encoding/json"
	"fmt"
	"html"
	"regexp"
	"strings"
	"sync"
	"unicode/utf8"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/ozolsandis/peoplebook-backend/internal/data/repos/overrides"
	"github.com/ozolsandis/peoplebook-backend/internal/domain"
	"github.com/ozolsandis/peoplebook-backend/internal/people"
	"github.com/ozolsandis/peoplebook-backend/internal/pkg/dbctx"
	pkgerrors "github.com/ozolsandis/peoplebook-backend/internal/pkg/errors"
	"github.com/ozolsandis/peoplebook-backend/internal/platform/logger"
)

const previewChars = 160

// MigrationItemError records one subject that could not be migrated.
type MigrationItemError struct {
	Slug   string `json:"slug"`
	Reason string `json:"reason"`
}

// MigrationResult summarizes one bulk file-to-override migration.
type MigrationResult struct {
	Total      int                  `json:"total"`
	Successful int                  `json:"successful"`
	Skipped    int                  `json:"skipped"`
	Failed     int                  `json:"failed"`
	Errors     []MigrationItemError `json:"errors"`
}

// ProfileService reconciles the persisted override store with the file-backed
// subject index: override text wins, file images always win.
type ProfileService interface {
	ListProfiles(dbc dbctx.Context) ([]domain.ProfileSummary, error)
	GetProfile(dbc dbctx.Context, slug string) (*domain.ResolvedProfile, error)
	UpdateProfile(dbc dbctx.Context, slug, content, updatedBy string) (*domain.ResolvedProfile, error)
	MigrateFromFiles(dbc dbctx.Context, ranBy string) (*MigrationResult, error)
	Health(caller people.Caller) people.HealthView
	Recover(dbc dbctx.Context) bool
}

type profileService struct {
	db           *gorm.DB
	log          *logger.Logger
	overrideRepo overrides.OverrideRepo
	runRepo      overrides.MigrationRunRepo
	index        *people.Service

	migrateMu      sync.Mutex
	migrateChecked bool
}

func NewProfileService(
	db *gorm.DB,
	baseLog *logger.Logger,
	overrideRepo overrides.OverrideRepo,
	runRepo overrides.MigrationRunRepo,
	index *people.Service,
) ProfileService {
	return &profileService{
		db:           db,
		log:          baseLog.With("service", "ProfileService"),
		overrideRepo: overrideRepo,
		runRepo:      runRepo,
		index:        index,
	}
}

func (s *profileService) handle(dbc dbctx.Context) *gorm.DB {
	if dbc.Tx != nil {
		return dbc.Tx
	}
	return s.db
}

func (s *profileService) GetProfile(dbc dbctx.Context, slug string) (*domain.ResolvedProfile, error) {
	if !s.index.Initialized() {
		return nil, pkgerrors.ErrServiceUnavailable
	}
	s.ensureMigrated(dbc)

	snap := s.index.Snapshot()
	record, inIndex := snap.Get(slug)

	override, err := s.overrideRepo.FindBySlug(dbc.Ctx, dbc.Tx, slug)
	if err != nil && err != pkgerrors.ErrNotFound {
		return nil, err
	}

	switch {
	case override != nil:
		return resolveFromOverride(override, record), nil
	case inIndex:
		return resolveFromRecord(record), nil
	default:
		return nil, pkgerrors.ErrNotFound
	}
}

func (s *profileService) ListProfiles(dbc dbctx.Context) ([]domain.ProfileSummary, error) {
	if !s.index.Initialized() {
		return nil, pkgerrors.ErrServiceUnavailable
	}
	s.ensureMigrated(dbc)

	rows, err := s.overrideRepo.GetAll(dbc.Ctx, dbc.Tx)
	if err != nil {
		return nil, err
	}
	overridden := make(map[string]*domain.PersonContentOverride, len(rows))
	for _, row := range rows {
		overridden[row.PersonSlug] = row
	}

	snap := s.index.Snapshot()
	summaries := make([]domain.ProfileSummary, 0, snap.Len())
	seen := make(map[string]bool, snap.Len())

	for _, record := range snap.SortedByName() {
		seen[record.Slug] = true
		if row, ok := overridden[record.Slug]; ok {
			summaries = append(summaries, summaryFromOverride(row, record))
			continue
		}
		summaries = append(summaries, summaryFromRecord(record))
	}

	// Overrides for subjects no longer present on disk still belong in the
	// admin listing.
	for _, row := range rows {
		if !seen[row.PersonSlug] {
			summaries = append(summaries, summaryFromOverride(row, nil))
		}
	}
	return summaries, nil
}

func (s *profileService) UpdateProfile(dbc dbctx.Context, slug, content, updatedBy string) (*domain.ResolvedProfile, error) {
	if !s.index.Initialized() {
		return nil, pkgerrors.ErrServiceUnavailable
	}
	if err := validateContent(content); err != nil {
		return nil, err
	}

	_, err := s.overrideRepo.FindBySlug(dbc.Ctx, dbc.Tx, slug)
	switch {
	case err == nil:
		if _, err := s.overrideRepo.Update(dbc.Ctx, dbc.Tx, slug, content, updatedBy); err != nil {
			return nil, err
		}
	case err == pkgerrors.ErrNotFound:
		record, ok := s.index.Snapshot().Get(slug)
		if !ok {
			return nil, pkgerrors.ErrNotFound
		}
		if _, err := s.overrideRepo.Create(dbc.Ctx, dbc.Tx, slug, record.Name, content, updatedBy); err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	return s.GetProfile(dbc, slug)
}

// MigrateFromFiles copies file-derived text into the override store for every
// indexed subject not yet overridden. The batch runs inside one transaction:
// item-level validation failures are collected, an unexpected storage error
// rolls the whole batch back.
func (s *profileService) MigrateFromFiles(dbc dbctx.Context, ranBy string) (*MigrationResult, error) {
	result := &MigrationResult{Errors: []MigrationItemError{}}
	snap := s.index.Snapshot()

	err := s.handle(dbc).WithContext(dbc.Ctx).Transaction(func(tx *gorm.DB) error {
		for _, record := range snap.All() {
			result.Total++

			if _, err := s.overrideRepo.FindBySlug(dbc.Ctx, tx, record.Slug); err == nil {
				result.Skipped++
				continue
			} else if err != pkgerrors.ErrNotFound {
				return err
			}

			if err := validateContent(record.Content.Text); err != nil {
				result.Failed++
				result.Errors = append(result.Errors, MigrationItemError{
					Slug:   record.Slug,
					Reason: err.Error(),
				})
				continue
			}

			if _, err := s.overrideRepo.Create(dbc.Ctx, tx, record.Slug, record.Name, record.Content.Text, ranBy); err != nil {
				if err == pkgerrors.ErrDuplicateSlug {
					result.Skipped++
					continue
				}
				return err
			}
			result.Successful++
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("bulk migration aborted: %w", err)
	}

	s.recordMigrationRun(dbc, result, ranBy)
	s.log.Info("Bulk migration finished",
		"total", result.Total,
		"successful", result.Successful,
		"skipped", result.Skipped,
		"failed", result.Failed,
	)
	return result, nil
}

func (s *profileService) Health(caller people.Caller) people.HealthView {
	return people.ShapeHealth(s.index.Health(), caller)
}

func (s *profileService) Recover(dbc dbctx.Context) bool {
	return s.index.Recover(dbc.Ctx)
}

// ensureMigrated runs the bulk migration once, the first time a read observes
// an empty override store while subjects exist on disk.
func (s *profileService) ensureMigrated(dbc dbctx.Context) {
	s.migrateMu.Lock()
	defer s.migrateMu.Unlock()
	if s.migrateChecked {
		return
	}

	count, err := s.overrideRepo.Count(dbc.Ctx, dbc.Tx)
	if err != nil {
		s.log.Warn("Could not check override store for auto-migration", "error", err)
		return
	}
	if count > 0 {
		s.migrateChecked = true
		return
	}
	if s.index.Snapshot().Len() == 0 {
		return
	}

	if _, err := s.MigrateFromFiles(dbc, "system"); err != nil {
		s.log.Error("Auto-migration failed", "error", err)
		return
	}
	s.migrateChecked = true
}

func (s *profileService) recordMigrationRun(dbc dbctx.Context, result *MigrationResult, ranBy string) {
	payload, err := json.Marshal(result.Errors)
	if err != nil {
		payload = []byte("[]")
	}
	run := &domain.MigrationRun{
		Total:      result.Total,
		Successful: result.Successful,
		Skipped:    result.Skipped,
		Failed:     result.Failed,
		Errors:     datatypes.JSON(payload),
		RanBy:      ranBy,
	}
	if _, err := s.runRepo.Create(dbc.Ctx, dbc.Tx, run); err != nil {
		s.log.Warn("Could not record migration run", "error", err)
	}
}

func validateContent(content string) error {
	length := utf8.RuneCountInString(content)
	if length < domain.OverrideContentMin {
		return pkgerrors.NewValidation("content", "content_too_short",
			fmt.Sprintf("content must be at least %d characters, got %d", domain.OverrideContentMin, length))
	}
	if length > domain.OverrideContentMax {
		return pkgerrors.NewValidation("content", "content_too_long",
			fmt.Sprintf("content must be at most %d characters, got %d", domain.OverrideContentMax, length))
	}
	return nil
}

var blankLineSplit = regexp.MustCompile(`\n\s*\n`)

// renderHTML regenerates display markup from admin-entered plain text:
// blank-line separated blocks become paragraphs, single newlines become line
// breaks.
func renderHTML(text string) string {
	blocks := blankLineSplit.Split(strings.ReplaceAll(text, "\r\n", "\n"), -1)
	var b strings.Builder
	for _, block := range blocks {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		escaped := html.EscapeString(block)
		escaped = strings.ReplaceAll(escaped, "\n", "<br>")
		b.WriteString("<p>")
		b.WriteString(escaped)
		b.WriteString("</p>\n")
	}
	return strings.TrimSpace(b.String())
}

func resolveFromOverride(row *domain.PersonContentOverride, record *domain.SubjectRecord) *domain.ResolvedProfile {
	profile := &domain.ResolvedProfile{
		Slug:      row.PersonSlug,
		Name:      row.PersonName,
		HTML:      renderHTML(row.Content),
		Text:      row.Content,
		WordCount: len(strings.Fields(row.Content)),
		Images:    []domain.ImageDescriptor{},
		Source:    domain.ProfileSourceDatabase,
		UpdatedBy: row.UpdatedBy,
		UpdatedAt: row.UpdatedAt,
	}
	if record != nil {
		profile.Name = record.Name
		profile.Images = record.Images
	}
	return profile
}

func resolveFromRecord(record *domain.SubjectRecord) *domain.ResolvedProfile {
	return &domain.ResolvedProfile{
		Slug:      record.Slug,
		Name:      record.Name,
		HTML:      record.Content.HTML,
		Text:      record.Content.Text,
		WordCount: record.Content.WordCount,
		Images:    record.Images,
		Source:    domain.ProfileSourceFile,
		UpdatedAt: record.Metadata.LastModified,
	}
}

func summaryFromOverride(row *domain.PersonContentOverride, record *domain.SubjectRecord) domain.ProfileSummary {
	summary := domain.ProfileSummary{
		Slug:           row.PersonSlug,
		Name:           row.PersonName,
		LastUpdated:    row.UpdatedAt,
		UpdatedBy:      row.UpdatedBy,
		ContentPreview: preview(row.Content),
		WordCount:      len(strings.Fields(row.Content)),
		Source:         domain.ProfileSourceDatabase,
	}
	if record != nil {
		summary.Name = record.Name
		if len(record.Images) > 0 {
			summary.MainImage = record.Images[0].Path
		}
	}
	return summary
}

func summaryFromRecord(record *domain.SubjectRecord) domain.ProfileSummary {
	summary := domain.ProfileSummary{
		Slug:           record.Slug,
		Name:           record.Name,
		LastUpdated:    record.Metadata.LastModified,
		ContentPreview: preview(record.Content.Text),
		WordCount:      record.Content.WordCount,
		Source:         domain.ProfileSourceFile,
	}
	if len(record.Images) > 0 {
		summary.MainImage = record.Images[0].Path
	}
	return summary
}

func preview(text string) string {
	runes := []rune(strings.TrimSpace(text))
	if len(runes) <= previewChars {
		return string(runes)
	}
	return strings.TrimSpace(string(runes[:previewChars])) + "…"
}
