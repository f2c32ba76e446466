package watcher

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDebouncer_SingleEvent_PassesThrough(t *testing.T) {
	// Given: a debouncer with a short quiet window
	d := NewDebouncer(50 * time.Millisecond, 64)
	defer d.Stop()

	// When: a single create event is added
	d.Add("test.go", OpCreate)

	// Then: the event is emitted after the window elapses
	select {
	case ev := <-d.Output():
		assert.Equal(t, "test.go", ev.Path)
		assert.Equal(t, OpCreate, ev.Operation)
	case <-time.After(500 * time.Millisecond):
		t.Fatal("timeout waiting for debounced event")
	}
}

func TestDebouncer_RapidModifies_Coalesce(t *testing.T) {
	// Given: a debouncer with a short quiet window
	d := NewDebouncer(100 * time.Millisecond, 64)
	defer d.Stop()

	// When: several modify events arrive for the same path within the window
	for i := 0; i < 5; i++ {
		d.Add("test.go", OpModify)
		time.Sleep(10 * time.Millisecond)
	}

	// Then: exactly one modify event comes out
	select {
	case ev := <-d.Output():
		assert.Equal(t, "test.go", ev.Path)
		assert.Equal(t, OpModify, ev.Operation)
	case <-time.After(500 * time.Millisecond):
		t.Fatal("timeout waiting for debounced event")
	}
	assertNoFurtherEvent(t, d)
}

func TestDebouncer_CreateThenModify_StaysCreate(t *testing.T) {
	// Given: a debouncer with a short quiet window
	d := NewDebouncer(80 * time.Millisecond, 64)
	defer d.Stop()

	// When: create is followed by modify before the window elapses
	d.Add("new.go", OpCreate)
	time.Sleep(10 * time.Millisecond)
	d.Add("new.go", OpModify)

	// Then: the file is still treated as newly created
	select {
	case ev := <-d.Output():
		assert.Equal(t, OpCreate, ev.Operation)
	case <-time.After(500 * time.Millisecond):
		t.Fatal("timeout waiting for debounced event")
	}
}

func TestDebouncer_CreateThenDelete_QueuesDelete(t *testing.T) {
	// Given: a debouncer with a short quiet window
	d := NewDebouncer(80 * time.Millisecond, 64)
	defer d.Stop()

	// When: create is immediately followed by delete for the same path
	d.Add("temp.go", OpCreate)
	d.Add("temp.go", OpDelete)

	// Then: the delete is queued and emitted, not discarded
	select {
	case ev := <-d.Output():
		assert.Equal(t, "temp.go", ev.Path)
		assert.Equal(t, OpDelete, ev.Operation)
	case <-time.After(500 * time.Millisecond):
		t.Fatal("timeout waiting for debounced event")
	}
}

func TestDebouncer_ModifyThenDelete_EmitsDelete(t *testing.T) {
	// Given: a debouncer with a short quiet window
	d := NewDebouncer(80 * time.Millisecond, 64)
	defer d.Stop()

	// When: modify is followed by delete
	d.Add("existing.go", OpModify)
	d.Add("existing.go", OpDelete)

	// Then: a single delete event is emitted
	select {
	case ev := <-d.Output():
		assert.Equal(t, OpDelete, ev.Operation)
	case <-time.After(500 * time.Millisecond):
		t.Fatal("timeout waiting for debounced event")
	}
}

func TestDebouncer_DeleteThenCreate_EmitsModify(t *testing.T) {
	// Given: a debouncer with a short quiet window
	d := NewDebouncer(80 * time.Millisecond, 64)
	defer d.Stop()

	// When: delete is followed by a create for the same path (file replaced)
	d.Add("replaced.go", OpDelete)
	d.Add("replaced.go", OpCreate)

	// Then: the coalesced event is a modify
	select {
	case ev := <-d.Output():
		assert.Equal(t, OpModify, ev.Operation)
	case <-time.After(500 * time.Millisecond):
		t.Fatal("timeout waiting for debounced event")
	}
}

func TestDebouncer_DifferentFiles_IndependentEvents(t *testing.T) {
	// Given: a debouncer with a short quiet window
	d := NewDebouncer(50 * time.Millisecond, 64)
	defer d.Stop()

	// When: events for three different paths are added
	d.Add("a.go", OpCreate)
	d.Add("b.go", OpModify)
	d.Add("c.go", OpDelete)

	// Then: each path is emitted independently with its own operation
	got := make(map[string]Operation, 3)
	for i := 0; i < 3; i++ {
		select {
		case ev := <-d.Output():
			got[ev.Path] = ev.Operation
		case <-time.After(500 * time.Millisecond):
			t.Fatal("timeout waiting for debounced events")
		}
	}
	assert.Equal(t, OpCreate, got["a.go"])
	assert.Equal(t, OpModify, got["b.go"])
	assert.Equal(t, OpDelete, got["c.go"])
}

func TestDebouncer_Stop_ClosesOutput(t *testing.T) {
	// Given: a debouncer
	d := NewDebouncer(50 * time.Millisecond, 64)

	// When: stopped
	d.Stop()

	// Then: the output channel is closed
	select {
	case _, ok := <-d.Output():
		assert.False(t, ok, "channel should be closed")
	case <-time.After(100 * time.Millisecond):
		t.Fatal("timeout waiting for channel close")
	}
}

func TestDebouncer_Stop_IgnoresFurtherEvents(t *testing.T) {
	// Given: a stopped debouncer
	d := NewDebouncer(30 * time.Millisecond, 64)
	d.Stop()

	// When/Then: adding an event after Stop must not panic or deadlock
	require.NotPanics(t, func() { d.Add("late.go", OpCreate) })
}

func assertNoFurtherEvent(t *testing.T, d *Debouncer) {
	t.Helper()
	select {
	case ev := <-d.Output():
		t.Fatalf("unexpected extra event: %+v", ev)
	case <-time.After(150 * time.Millisecond):
	}
}
