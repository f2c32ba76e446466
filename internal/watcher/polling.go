package watcher

import (
	"context"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// PollingWatcher detects filesystem changes by periodically re-scanning a
// set of root directories. It is the fallback used when fsnotify.NewWatcher
// fails to initialize (inotify instance limits, some network mounts).
// It supports multiple watched roots and reports events through a
// callback rather than its own channel, so it can feed the same
// per-path Debouncer the fsnotify path uses.
type PollingWatcher struct {
	interval time.Duration
	onEvent  func(path string, op Operation)

	mu    sync.Mutex
	state map[string]fileSnapshot

	stopCh  chan struct{}
	stopped bool
}

type fileSnapshot struct {
	modTime time.Time
	size    int64
}

// NewPollingWatcher constructs a PollingWatcher that calls onEvent for
// every detected create, modify or delete.
func NewPollingWatcher(interval time.Duration, onEvent func(path string, op Operation)) *PollingWatcher {
	return &PollingWatcher{
		interval: interval,
		onEvent:  onEvent,
		state:    make(map[string]fileSnapshot),
		stopCh:   make(chan struct{}),
	}
}

// Run scans roots to establish a baseline, then re-scans on every tick
// until ctx is cancelled or Stop is called.
func (p *PollingWatcher) Run(ctx context.Context, roots []string) error {
	for _, root := range roots {
		p.scan(root)
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-p.stopCh:
			return nil
		case <-ticker.C:
			for _, root := range roots {
				p.detectChanges(root)
			}
		}
	}
}

// Stop halts the polling loop. Safe to call multiple times.
func (p *PollingWatcher) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		return
	}
	p.stopped = true
	close(p.stopCh)
}

func (p *PollingWatcher) scan(root string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		p.state[path] = fileSnapshot{modTime: info.ModTime(), size: info.Size()}
		return nil
	})
}

func (p *PollingWatcher) detectChanges(root string) {
	type change struct {
		path string
		op   Operation
	}
	var changes []change

	p.mu.Lock()
	seenUnderRoot := make(map[string]bool)
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		snap := fileSnapshot{modTime: info.ModTime(), size: info.Size()}
		seenUnderRoot[path] = true

		prev, existed := p.state[path]
		p.state[path] = snap
		if !existed {
			changes = append(changes, change{path, OpCreate})
		} else if prev.modTime != snap.modTime || prev.size != snap.size {
			changes = append(changes, change{path, OpModify})
		}
		return nil
	})

	for path := range p.state {
		if !strings.HasPrefix(path, root) || seenUnderRoot[path] {
			continue
		}
		delete(p.state, path)
		changes = append(changes, change{path, OpDelete})
	}
	p.mu.Unlock()

	for _, c := range changes {
		p.onEvent(c.path, c.op)
	}
}
