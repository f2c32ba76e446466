package ingeststats

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordProcessed_UpdatesSourceAndTotals(t *testing.T) {
	s := New()
	s.RecordMatched("/tmp/*.md", 2)
	s.RecordProcessed("/tmp/*.md", 3)
	s.RecordProcessed("/tmp/*.md", 1)

	status := s.Status()
	assert.Equal(t, 2, status.TotalDocuments)
	assert.Equal(t, 4, status.TotalSegments)

	sources := s.Sources()
	require.Len(t, sources, 1)
	assert.Equal(t, 2, sources[0].FilesMatched)
	assert.Equal(t, 2, sources[0].FilesProcessed)
	assert.Equal(t, 4, sources[0].SegmentsCreated)
}

func TestRecordError_IncrementsCountersAndFailureRing(t *testing.T) {
	s := New()
	s.RecordError("/tmp/*.md", "/tmp/bad.md", "parse-error", "no docstring")

	status := s.Status()
	assert.Equal(t, 1, status.TotalErrors)

	failures := s.Failures()
	require.Len(t, failures, 1)
	assert.Equal(t, "/tmp/bad.md", failures[0].FilePath)
	assert.Equal(t, "parse-error", failures[0].ErrorType)
}

func TestFailures_RingDropsOldestPastTwenty(t *testing.T) {
	s := New()
	for i := 0; i < 25; i++ {
		s.RecordError("src", fmt.Sprintf("/tmp/f%d.md", i), "read-error", "boom")
	}

	failures := s.Failures()
	require.Len(t, failures, maxFailures)
	assert.Equal(t, "/tmp/f5.md", failures[0].FilePath)
	assert.Equal(t, "/tmp/f24.md", failures[len(failures)-1].FilePath)
}

func TestSources_OverflowPastMaxSourcesTrackedIsFlagged(t *testing.T) {
	s := New()
	for i := 0; i < maxSourcesTracked+5; i++ {
		s.RecordMatched(fmt.Sprintf("source-%d", i), 1)
	}
	assert.True(t, s.Overflowed())
	assert.Len(t, s.Sources(), maxSourcesTracked)
}
