package people

import (
	"math/rand"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/ozolsandis/peoplebook-backend/internal/domain"
)

// Subjects below this word count are flagged as insufficient for health
// reporting. Records under the hard 50-char floor never enter the index.
const insufficientWordCount = 100

// Snapshot is an immutable view over the subject records built by one scan.
// It is safe for unsynchronized concurrent reads and replaced wholesale on
// rescan.
type Snapshot struct {
	records []*domain.SubjectRecord
	bySlug  map[string]*domain.SubjectRecord
	builtAt time.Time
}

// NewSnapshot builds a snapshot from scan output. Records with duplicate
// slugs keep the first occurrence.
func NewSnapshot(records []*domain.SubjectRecord) *Snapshot {
	bySlug := make(map[string]*domain.SubjectRecord, len(records))
	kept := make([]*domain.SubjectRecord, 0, len(records))
	for _, r := range records {
		if _, exists := bySlug[r.Slug]; exists {
			continue
		}
		bySlug[r.Slug] = r
		kept = append(kept, r)
	}
	return &Snapshot{records: kept, bySlug: bySlug, builtAt: time.Now()}
}

func EmptySnapshot() *Snapshot {
	return NewSnapshot(nil)
}

func (s *Snapshot) Len() int             { return len(s.records) }
func (s *Snapshot) BuiltAt() time.Time   { return s.builtAt }
func (s *Snapshot) Has(slug string) bool { _, ok := s.bySlug[slug]; return ok }

func (s *Snapshot) Get(slug string) (*domain.SubjectRecord, bool) {
	r, ok := s.bySlug[slug]
	return r, ok
}

// All returns the records in slug order. The slice is a copy; the records
// themselves are shared and must not be mutated.
func (s *Snapshot) All() []*domain.SubjectRecord {
	out := make([]*domain.SubjectRecord, len(s.records))
	copy(out, s.records)
	return out
}

// Search matches the query case-insensitively against subject names and
// plain-text content.
func (s *Snapshot) Search(query string) []*domain.SubjectRecord {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return s.All()
	}
	var out []*domain.SubjectRecord
	for _, r := range s.records {
		if strings.Contains(strings.ToLower(r.Name), q) ||
			strings.Contains(strings.ToLower(r.Content.Text), q) {
			out = append(out, r)
		}
	}
	return out
}

// SortedByName orders subjects with Latvian collation so names with
// diacritics land where a reader expects them.
func (s *Snapshot) SortedByName() []*domain.SubjectRecord {
	out := s.All()
	c := collate.New(language.Latvian)
	sort.SliceStable(out, func(i, j int) bool {
		return c.CompareString(out[i].Name, out[j].Name) < 0
	})
	return out
}

func (s *Snapshot) SortedByWordCount() []*domain.SubjectRecord {
	out := s.All()
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Content.WordCount > out[j].Content.WordCount
	})
	return out
}

func (s *Snapshot) SortedByImageCount() []*domain.SubjectRecord {
	out := s.All()
	sort.SliceStable(out, func(i, j int) bool {
		return len(out[i].Images) > len(out[j].Images)
	})
	return out
}

// Random returns up to n distinct records in random order.
func (s *Snapshot) Random(n int) []*domain.SubjectRecord {
	if n <= 0 || len(s.records) == 0 {
		return nil
	}
	if n > len(s.records) {
		n = len(s.records)
	}
	idx := rand.Perm(len(s.records))[:n]
	out := make([]*domain.SubjectRecord, 0, n)
	for _, i := range idx {
		out = append(out, s.records[i])
	}
	return out
}

// IndexStats aggregates the snapshot for health computation and reporting.
type IndexStats struct {
	Subjects            int     `json:"subjects"`
	TotalWords          int     `json:"total_words"`
	TotalImages         int     `json:"total_images"`
	AvgWords            float64 `json:"avg_words"`
	AvgImages           float64 `json:"avg_images"`
	WithoutImages       int     `json:"without_images"`
	InsufficientContent int     `json:"insufficient_content"`
}

func (s *Snapshot) Stats() IndexStats {
	stats := IndexStats{Subjects: len(s.records)}
	for _, r := range s.records {
		stats.TotalWords += r.Content.WordCount
		stats.TotalImages += len(r.Images)
		if len(r.Images) == 0 {
			stats.WithoutImages++
		}
		if r.Content.WordCount < insufficientWordCount {
			stats.InsufficientContent++
		}
	}
	if stats.Subjects > 0 {
		stats.AvgWords = float64(stats.TotalWords) / float64(stats.Subjects)
		stats.AvgImages = float64(stats.TotalImages) / float64(stats.Subjects)
	}
	return stats
}
