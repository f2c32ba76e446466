// Package vectorstore implements the in-memory vector store: a
// linear-scan cosine-similarity index keyed by file id, with bulk
// insert, bulk delete-by-file-id, and conjunctive equality filtering.
// Approximate nearest-neighbor indexing is out of scope, so the search
// path is deliberately a plain scan guarded by a readers-writer lock.
package vectorstore

import (
	"math"
	"sort"
	"sync"
)

// Row is one stored segment: its embedding, the text returned to
// searchers, and its full metadata.
type Row struct {
	FileID    string
	SegmentID string
	Embedding []float32
	Text      string
	Metadata  map[string]any
}

// Hit is one ranked search result.
type Hit struct {
	Score    float64
	Text     string
	Metadata map[string]any
}

// Store is the process-lifetime vector index. The zero value is not
// usable; construct with New.
type Store struct {
	mu   sync.RWMutex
	rows []Row
	// seq gives each row a stable insertion index, used only to break
	// score ties deterministically.
	seq []int
	next int
}

// New constructs an empty Store.
func New() *Store {
	return &Store{}
}

// Insert appends a row. Embeddings are expected pre-normalized; Insert
// does not re-normalize them, so callers own that invariant (the
// embedder wrapper normalizes before handing vectors to the store).
func (s *Store) Insert(row Row) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, row)
	s.seq = append(s.seq, s.next)
	s.next++
}

// InsertAll inserts rows atomically with respect to concurrent readers
// — no search observes a partial batch mid-insert.
func (s *Store) InsertAll(rows []Row) {
	if len(rows) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, row := range rows {
		s.rows = append(s.rows, row)
		s.seq = append(s.seq, s.next)
		s.next++
	}
}

// RemoveAll deletes every row with the given file id.
func (s *Store) RemoveAll(fileID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.rows[:0]
	keptSeq := s.seq[:0]
	for i, row := range s.rows {
		if row.FileID == fileID {
			continue
		}
		kept = append(kept, row)
		keptSeq = append(keptSeq, s.seq[i])
	}
	s.rows = kept
	s.seq = keptSeq
}

// ReplaceFile atomically removes all existing rows for fileID and
// inserts rows, under a single write-lock acquisition, so a reader
// never observes the file as deleted without its replacement rows.
func (s *Store) ReplaceFile(fileID string, rows []Row) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.rows[:0]
	keptSeq := s.seq[:0]
	for i, row := range s.rows {
		if row.FileID == fileID {
			continue
		}
		kept = append(kept, row)
		keptSeq = append(keptSeq, s.seq[i])
	}
	for _, row := range rows {
		kept = append(kept, row)
		keptSeq = append(keptSeq, s.next)
		s.next++
	}
	s.rows = kept
	s.seq = keptSeq
}

// Len reports the current row count.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rows)
}

// Search computes cosine similarity between query and every stored
// row, keeps rows passing filter (nil means no filter), sorts
// descending by score with ties broken by insertion order, and returns
// the top limit hits.
func (s *Store) Search(query []float32, limit int, filter Filter) []Hit {
	s.mu.RLock()
	defer s.mu.RUnlock()

	type scored struct {
		hit Hit
		seq int
	}
	candidates := make([]scored, 0, len(s.rows))
	for i, row := range s.rows {
		if filter != nil && !filter.Matches(row.Metadata) {
			continue
		}
		candidates = append(candidates, scored{
			hit: Hit{Score: cosineSimilarity(query, row.Embedding), Text: row.Text, Metadata: row.Metadata},
			seq: s.seq[i],
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].hit.Score != candidates[j].hit.Score {
			return candidates[i].hit.Score > candidates[j].hit.Score
		}
		return candidates[i].seq < candidates[j].seq
	})

	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}

	hits := make([]Hit, len(candidates))
	for i, c := range candidates {
		hits[i] = c.hit
	}
	return hits
}

func cosineSimilarity(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, magA, magB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		magA += float64(a[i]) * float64(a[i])
		magB += float64(b[i]) * float64(b[i])
	}
	if magA == 0 || magB == 0 {
		return 0
	}
	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}
