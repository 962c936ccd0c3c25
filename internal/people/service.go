package people

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/ozolsandis/peoplebook-backend/internal/domain"
	"github.com/ozolsandis/peoplebook-backend/internal/platform/logger"
)

// SubjectSource produces subject records from the file source. Implemented by
// scanner.Scanner; kept as an interface so tests can feed records directly.
type SubjectSource interface {
	Scan(ctx context.Context) ([]*domain.SubjectRecord, error)
}

// Health states.
const (
	StatusHealthy  = "healthy"
	StatusDegraded = "degraded"
	StatusFailed   = "failed"
)

// Degradation thresholds over the current snapshot.
const (
	maxMissingImagesRatio       = 0.20
	maxInsufficientContentRatio = 0.10
)

// HealthStatus is computed from the current snapshot, never stored.
type HealthStatus struct {
	Status string     `json:"status"`
	Issues []string   `json:"issues"`
	Counts IndexStats `json:"counts"`
}

// Service owns the subject index lifecycle: a guarded one-time initialization,
// wholesale snapshot replacement on rebuild, and health computation. Readers
// in flight during a rebuild observe either the old or the new snapshot,
// never a partial one.
type Service struct {
	log    *logger.Logger
	source SubjectSource

	snapshot atomic.Pointer[Snapshot]

	mu          sync.Mutex
	initialized bool
}

func NewService(source SubjectSource, baseLog *logger.Logger) *Service {
	s := &Service{
		log:    baseLog.With("service", "PeopleService"),
		source: source,
	}
	s.snapshot.Store(EmptySnapshot())
	return s
}

// Initialize runs the first scan. It is idempotent: concurrent callers
// converge on a single scan, and later calls are no-ops once one succeeded.
func (s *Service) Initialize(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.initialized {
		return nil
	}
	return s.rescanLocked(ctx)
}

// Rebuild clears the index and re-runs the scan regardless of prior state.
func (s *Service) Rebuild(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rescanLocked(ctx)
}

// Recover is the operational recovery entry point: it rebuilds and reports
// whether the resulting index holds any subjects.
func (s *Service) Recover(ctx context.Context) bool {
	if err := s.Rebuild(ctx); err != nil {
		s.log.Error("Recovery scan failed", "error", err)
		return false
	}
	return s.Snapshot().Len() > 0
}

func (s *Service) rescanLocked(ctx context.Context) error {
	records, err := s.source.Scan(ctx)
	if err != nil {
		s.snapshot.Store(EmptySnapshot())
		s.initialized = false
		return fmt.Errorf("subject scan: %w", err)
	}
	s.snapshot.Store(NewSnapshot(records))
	s.initialized = true
	return nil
}

// Snapshot returns the current immutable index view.
func (s *Service) Snapshot() *Snapshot {
	return s.snapshot.Load()
}

func (s *Service) Initialized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initialized
}

// Health derives the service state from the current snapshot.
func (s *Service) Health() HealthStatus {
	snap := s.Snapshot()
	stats := snap.Stats()

	if !s.Initialized() {
		return HealthStatus{
			Status: StatusFailed,
			Issues: []string{"service was never successfully initialized"},
			Counts: stats,
		}
	}

	var issues []string
	if stats.Subjects == 0 {
		issues = append(issues, "no data: subject index is empty")
	} else {
		if ratio(stats.WithoutImages, stats.Subjects) > maxMissingImagesRatio {
			issues = append(issues, fmt.Sprintf(
				"%d of %d subjects have no images", stats.WithoutImages, stats.Subjects))
		}
		if ratio(stats.InsufficientContent, stats.Subjects) > maxInsufficientContentRatio {
			issues = append(issues, fmt.Sprintf(
				"%d of %d subjects have insufficient content", stats.InsufficientContent, stats.Subjects))
		}
	}

	status := StatusHealthy
	if len(issues) > 0 {
		status = StatusDegraded
	}
	return HealthStatus{Status: status, Issues: issues, Counts: stats}
}

func ratio(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total)
}
