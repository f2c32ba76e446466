// Package ingeststats implements IngestionStats:
// per-source-path counters, a bounded ring of recent failures, and the
// totals backing the ingestion:// resources. All counters are guarded by
// one mutex of their own rather than the store's RWMutex — readers only ever
// need a consistent snapshot at a point in time, not coordination with
// the store.
package ingeststats

import (
	"log/slog"
	"sync"
	"time"
)

// maxSourcesTracked bounds the number of distinct source paths Stats
// tracks individually; overflow is logged once, not silently dropped
// forever.
const maxSourcesTracked = 100

// maxFailures is the size of the failure ring.
const maxFailures = 20

// SourceCounters holds the matched/processed/segments/errors counts for
// one configured source path.
type SourceCounters struct {
	Path            string
	FilesMatched    int
	FilesProcessed  int
	SegmentsCreated int
	Errors          int
}

// Failure is one recorded ingestion failure.
type Failure struct {
	FilePath   string
	ErrorType  string
	Message    string
	SourcePath string
	Timestamp  time.Time
}

// Stats is the process-lifetime ingestion statistics tracker.
type Stats struct {
	mu sync.Mutex

	sources     map[string]*SourceCounters
	sourceOrder []string
	overflowed  bool

	totalDocuments int
	totalSegments  int
	totalErrors    int
	lastIngestion  time.Time

	failures    []Failure
	failureHead int
}

// New constructs an empty Stats tracker.
func New() *Stats {
	return &Stats{sources: make(map[string]*SourceCounters)}
}

func (s *Stats) counters(sourcePath string) *SourceCounters {
	if c, ok := s.sources[sourcePath]; ok {
		return c
	}
	if len(s.sources) >= maxSourcesTracked {
		if !s.overflowed {
			s.overflowed = true
			slog.Warn("ingestion stats source limit reached; further sources are not tracked individually",
				slog.Int("max_sources", maxSourcesTracked), slog.String("source", sourcePath))
		}
		return nil
	}
	c := &SourceCounters{Path: sourcePath}
	s.sources[sourcePath] = c
	s.sourceOrder = append(s.sourceOrder, sourcePath)
	return c
}

// RecordMatched increments a source's matched-file count.
func (s *Stats) RecordMatched(sourcePath string, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c := s.counters(sourcePath); c != nil {
		c.FilesMatched += n
	}
}

// RecordProcessed records a successfully ingested file and its segment
// count, updating both the source counters and the process totals.
func (s *Stats) RecordProcessed(sourcePath string, segmentCount int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c := s.counters(sourcePath); c != nil {
		c.FilesProcessed++
		c.SegmentsCreated += segmentCount
	}
	s.totalDocuments++
	s.totalSegments += segmentCount
	s.lastIngestion = now()
}

// RecordError records an ingestion failure against a source, appends it
// to the bounded failure ring (dropping the oldest entry past N=20),
// and increments the total error counter.
func (s *Stats) RecordError(sourcePath, filePath, errorType, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c := s.counters(sourcePath); c != nil {
		c.Errors++
	}
	s.totalErrors++

	f := Failure{FilePath: filePath, ErrorType: errorType, Message: message, SourcePath: sourcePath, Timestamp: now()}
	if len(s.failures) < maxFailures {
		s.failures = append(s.failures, f)
	} else {
		s.failures[s.failureHead] = f
		s.failureHead = (s.failureHead + 1) % maxFailures
	}
}

// Status is the ingestion://status resource payload.
type Status struct {
	TotalDocuments  int
	TotalSegments   int
	TotalErrors     int
	LastIngestionAt time.Time
}

// Status returns a consistent snapshot of the process totals.
func (s *Stats) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{
		TotalDocuments:  s.totalDocuments,
		TotalSegments:   s.totalSegments,
		TotalErrors:     s.totalErrors,
		LastIngestionAt: s.lastIngestion,
	}
}

// Sources returns per-source counters in the order sources were first
// observed, for the ingestion://stats resource.
func (s *Stats) Sources() []SourceCounters {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]SourceCounters, 0, len(s.sourceOrder))
	for _, path := range s.sourceOrder {
		out = append(out, *s.sources[path])
	}
	return out
}

// Failures returns the failure ring in chronological order, oldest
// first, for the ingestion://failures resource.
func (s *Stats) Failures() []Failure {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.failures) < maxFailures {
		return append([]Failure(nil), s.failures...)
	}
	out := make([]Failure, 0, maxFailures)
	for i := 0; i < maxFailures; i++ {
		out = append(out, s.failures[(s.failureHead+i)%maxFailures])
	}
	return out
}

// Overflowed reports whether more than maxSourcesTracked distinct
// source paths have been observed.
func (s *Stats) Overflowed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.overflowed
}

var now = time.Now
