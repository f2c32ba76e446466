package vectorstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearch_RanksByCosineSimilarity(t *testing.T) {
	s := New()
	s.Insert(Row{FileID: "/tmp/football.md", SegmentID: "/tmp/football.md", Embedding: []float32{1, 0, 0}, Text: "I love playing football and soccer"})
	s.Insert(Row{FileID: "/tmp/cooking.md", SegmentID: "/tmp/cooking.md", Embedding: []float32{0, 1, 0}, Text: "Cooking pasta is delicious"})

	hits := s.Search([]float32{0.9, 0.1, 0}, 2, nil)
	require.Len(t, hits, 2)
	assert.Equal(t, "I love playing football and soccer", hits[0].Text)
	assert.Greater(t, hits[0].Score, hits[1].Score)
}

func TestSearch_TiesBreakByInsertionOrder(t *testing.T) {
	s := New()
	s.Insert(Row{FileID: "a", SegmentID: "a", Embedding: []float32{1, 0}, Text: "first"})
	s.Insert(Row{FileID: "b", SegmentID: "b", Embedding: []float32{1, 0}, Text: "second"})

	hits := s.Search([]float32{1, 0}, 2, nil)
	require.Len(t, hits, 2)
	assert.Equal(t, "first", hits[0].Text)
	assert.Equal(t, "second", hits[1].Text)
}

func TestSearch_EqFilter_OnlyMatchingRowsReturned(t *testing.T) {
	s := New()
	s.Insert(Row{FileID: "a", SegmentID: "a", Embedding: []float32{1, 0}, Text: "alpha", Metadata: map[string]any{"name": "test-docs"}})
	s.Insert(Row{FileID: "b", SegmentID: "b", Embedding: []float32{1, 0}, Text: "beta", Metadata: map[string]any{"name": "other"}})

	hits := s.Search([]float32{1, 0}, 10, Eq{Key: "name", Value: "test-docs"})
	require.Len(t, hits, 1)
	assert.Equal(t, "alpha", hits[0].Text)
}

func TestSearch_AndFilter_RequiresAllConjuncts(t *testing.T) {
	s := New()
	s.Insert(Row{FileID: "a", SegmentID: "a", Embedding: []float32{1, 0}, Text: "a", Metadata: map[string]any{"name": "x", "version": "v1"}})
	s.Insert(Row{FileID: "b", SegmentID: "b", Embedding: []float32{1, 0}, Text: "b", Metadata: map[string]any{"name": "x", "version": "v2"}})

	hits := s.Search([]float32{1, 0}, 10, And{Eq{Key: "name", Value: "x"}, Eq{Key: "version", Value: "v1"}})
	require.Len(t, hits, 1)
	assert.Equal(t, "a", hits[0].Text)
}

func TestRemoveAll_DeletesOnlyMatchingFileID(t *testing.T) {
	s := New()
	s.Insert(Row{FileID: "a", SegmentID: "a#0", Embedding: []float32{1}, Text: "a0"})
	s.Insert(Row{FileID: "a", SegmentID: "a#1", Embedding: []float32{1}, Text: "a1"})
	s.Insert(Row{FileID: "b", SegmentID: "b", Embedding: []float32{1}, Text: "b"})

	s.RemoveAll("a")
	assert.Equal(t, 1, s.Len())

	hits := s.Search([]float32{1}, 10, nil)
	require.Len(t, hits, 1)
	assert.Equal(t, "b", hits[0].Text)
}

func TestReplaceFile_AtomicUpdateLeavesNoStaleRows(t *testing.T) {
	s := New()
	s.Insert(Row{FileID: "a", SegmentID: "a", Embedding: []float32{1}, Text: "alpha"})

	s.ReplaceFile("a", []Row{{FileID: "a", SegmentID: "a", Embedding: []float32{1}, Text: "beta"}})

	hits := s.Search([]float32{1}, 10, nil)
	require.Len(t, hits, 1)
	assert.Equal(t, "beta", hits[0].Text)
}

func TestSearch_LimitTruncatesResults(t *testing.T) {
	s := New()
	for i := 0; i < 5; i++ {
		s.Insert(Row{FileID: string(rune('a' + i)), SegmentID: string(rune('a' + i)), Embedding: []float32{1}, Text: "x"})
	}
	hits := s.Search([]float32{1}, 2, nil)
	assert.Len(t, hits, 2)
}

func TestFromEquality_EmptyMapYieldsNilFilter(t *testing.T) {
	assert.Nil(t, FromEquality(nil))
	assert.Nil(t, FromEquality(map[string]string{}))
}
