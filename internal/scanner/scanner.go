package scanner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/ozolsandis/peoplebook-backend/internal/domain"
	pkgerrors "github.com/ozolsandis/peoplebook-backend/internal/pkg/errors"
	"github.com/ozolsandis/peoplebook-backend/internal/platform/logger"
)

// Minimum plain-text length for a subject to enter the index.
const minContentChars = 50

// Scanner builds subject records from the subjects root on disk. Per-subject
// failures are logged and skipped; only an inaccessible root is fatal.
type Scanner struct {
	root    string
	log     *logger.Logger
	maxConc int
	titler  cases.Caser
}

func NewScanner(root string, baseLog *logger.Logger, maxConc int) *Scanner {
	if maxConc <= 0 {
		maxConc = 8
	}
	return &Scanner{
		root:    root,
		log:     baseLog.With("component", "Scanner"),
		maxConc: maxConc,
		titler:  cases.Title(language.Latvian),
	}
}

// Scan enumerates subject directories and builds one record per valid
// subject. The returned slice is sorted by slug for determinism.
func (s *Scanner) Scan(ctx context.Context) ([]*domain.SubjectRecord, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("read subjects root %s: %w", s.root, err)
	}

	var (
		mu      sync.Mutex
		records []*domain.SubjectRecord
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConc)

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dirName := entry.Name()
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			record, err := s.buildSubject(dirName)
			if err != nil {
				s.log.Warn("Skipping subject", "dir", dirName, "error", err)
				return nil
			}
			mu.Lock()
			records = append(records, record)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(records, func(i, j int) bool { return records[i].Slug < records[j].Slug })
	s.log.Info("Scan complete", "subjects", len(records))
	return records, nil
}

func (s *Scanner) buildSubject(dirName string) (*domain.SubjectRecord, error) {
	subjectDir := filepath.Join(s.root, dirName)
	displayName := s.titler.String(strings.TrimSpace(dirName))

	slug := Slugify(dirName)
	if !ValidSlug(slug) {
		return nil, fmt.Errorf("invalid slug %q derived from directory name", slug)
	}

	docPath, err := findDocument(subjectDir)
	if err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(docPath)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}

	content, err := ExtractContent(raw)
	if err != nil {
		return nil, err
	}
	if len(content.Text) < minContentChars {
		return nil, fmt.Errorf("content too short (%d chars): %w", len(content.Text), pkgerrors.ErrNoValidContent)
	}

	images := CollectImages(subjectDir, dirName, displayName, s.log)
	images = AssociateCredits(images, content.PhotoCredits)

	var lastModified time.Time
	if info, err := os.Stat(subjectDir); err == nil {
		lastModified = info.ModTime()
	}

	return &domain.SubjectRecord{
		Slug:    slug,
		Name:    displayName,
		DirName: dirName,
		Content: domain.SubjectContent{
			HTML:         content.HTML,
			Text:         content.Text,
			PhotoCredits: content.PhotoCredits,
			WordCount:    content.WordCount,
		},
		Images: images,
		Metadata: domain.SubjectMetadata{
			LastModified:  lastModified,
			WordCount:     content.WordCount,
			ImageCount:    len(images),
			HasContent:    true,
			ContentLength: len(content.Text),
		},
	}, nil
}

// findDocument returns the first .html file in the subject directory by
// enumeration order.
func findDocument(subjectDir string) (string, error) {
	entries, err := os.ReadDir(subjectDir)
	if err != nil {
		return "", fmt.Errorf("read subject directory: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext == ".html" || ext == ".htm" {
			return filepath.Join(subjectDir, entry.Name()), nil
		}
	}
	return "", pkgerrors.ErrNoValidContent
}
