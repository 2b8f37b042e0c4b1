package watch

import (
	"errors"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultPollInterval is the stat cadence when none is configured.
// Polling backs up fsnotify on filesystems without change notification
// and drives recovery of lost sources.
const DefaultPollInterval = 250 * time.Millisecond

// Kind classifies a change event
type Kind int

const (
	// Grow means bytes [OldSize, NewSize) were appended
	Grow Kind = iota

	// Reset means the file was truncated or replaced: discard any
	// index and rescan from offset zero
	Reset

	// Lost means the path disappeared or became unreadable; a Reset
	// follows automatically once it is readable again
	Lost
)

// Event describes one observed change to a watched path
type Event struct {
	Path    string
	Kind    Kind
	OldSize int64
	NewSize int64
}

// Callback receives events for one subscription. Callbacks run on the
// watcher goroutine; for a given path they arrive in the order the
// underlying changes occurred. A callback should hand the event to its
// owner's queue rather than doing heavy work inline.
type Callback func(Event)

// Subscription is one registered interest in a path
type Subscription struct {
	watcher *Watcher
	path    string
	fn      Callback
}

type watchedPath struct {
	subs []*Subscription
	size int64
	info os.FileInfo
	lost bool
}

// Watcher is a process-wide service monitoring watched paths for
// growth, truncation, replacement or loss. It keeps one OS-level watch
// per path regardless of how many subscribers share it and fans events
// out in registration order. All state lives on a single goroutine;
// there are no locks and no reordering.
type Watcher struct {
	pollInterval time.Duration
	fsw          *fsnotify.Watcher
	paths        map[string]*watchedPath
	ops          chan func()
	done         chan struct{}
	finished     chan struct{}
}

// New creates a watcher polling at the given interval; zero selects
// DefaultPollInterval
func New(pollInterval time.Duration) *Watcher {
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}
	return &Watcher{
		pollInterval: pollInterval,
		paths:        make(map[string]*watchedPath),
		ops:          make(chan func()),
		done:         make(chan struct{}),
		finished:     make(chan struct{}),
	}
}

// Start begins monitoring. fsnotify is used when available; otherwise
// the watcher falls back to pure polling.
func (w *Watcher) Start() {
	if fsw, err := fsnotify.NewWatcher(); err == nil {
		w.fsw = fsw
	}
	go w.run()
}

// Stop halts monitoring and releases the OS watches. No callbacks are
// delivered after Stop returns.
func (w *Watcher) Stop() {
	close(w.done)
	<-w.finished
	if w.fsw != nil {
		w.fsw.Close()
	}
}

// ErrStopped is returned by Watch after the watcher has shut down
var ErrStopped = errors.New("watch: watcher stopped")

// Watch registers fn for changes to path and immediately delivers the
// file's current size as an initial Grow from zero, so the subscriber
// can perform its initial scan. The watcher must have been started. If the path is currently unreadable the
// initial event is Lost and a Reset follows when it appears.
func (w *Watcher) Watch(path string, fn Callback) (*Subscription, error) {
	sub := &Subscription{watcher: w, path: path, fn: fn}
	err := w.do(func() {
		wp, ok := w.paths[path]
		if !ok {
			wp = &watchedPath{}
			w.paths[path] = wp

			info, err := os.Stat(path)
			if err != nil {
				wp.lost = true
			} else {
				wp.size = info.Size()
				wp.info = info
				if w.fsw != nil {
					w.fsw.Add(path)
				}
			}
		}

		wp.subs = append(wp.subs, sub)
		if wp.lost {
			sub.fn(Event{Path: path, Kind: Lost})
		} else {
			sub.fn(Event{Path: path, Kind: Grow, OldSize: 0, NewSize: wp.size})
		}
	})
	if err != nil {
		return nil, err
	}
	return sub, nil
}

// Cancel removes the subscription. The OS-level watch is dropped when
// the last subscriber for the path cancels.
func (s *Subscription) Cancel() {
	s.watcher.do(func() {
		wp, ok := s.watcher.paths[s.path]
		if !ok {
			return
		}
		for i, sub := range wp.subs {
			if sub == s {
				wp.subs = append(wp.subs[:i], wp.subs[i+1:]...)
				break
			}
		}
		if len(wp.subs) == 0 {
			delete(s.watcher.paths, s.path)
			if s.watcher.fsw != nil {
				s.watcher.fsw.Remove(s.path)
			}
		}
	})
}

// do runs op on the watcher goroutine and waits for it
func (w *Watcher) do(op func()) error {
	ran := make(chan struct{})
	select {
	case w.ops <- func() { op(); close(ran) }:
		<-ran
		return nil
	case <-w.done:
		return ErrStopped
	}
}

func (w *Watcher) run() {
	defer close(w.finished)

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	var events chan fsnotify.Event
	var errs chan error
	if w.fsw != nil {
		events = w.fsw.Events
		errs = w.fsw.Errors
	}

	for {
		select {
		case <-w.done:
			return

		case op := <-w.ops:
			op()

		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if wp, watched := w.paths[ev.Name]; watched {
				w.check(ev.Name, wp)
			}

		case _, ok := <-errs:
			if !ok {
				errs = nil
			}

		case <-ticker.C:
			for path, wp := range w.paths {
				w.check(path, wp)
			}
		}
	}
}

// check stats path once and delivers at most one event reflecting the
// state at detection time. Rapid successive writes therefore coalesce
// into a single Grow carrying the final size.
func (w *Watcher) check(path string, wp *watchedPath) {
	info, err := os.Stat(path)
	if err != nil {
		if !wp.lost {
			old := wp.size
			wp.lost = true
			wp.size = 0
			wp.info = nil
			if w.fsw != nil {
				w.fsw.Remove(path)
			}
			w.deliver(wp, Event{Path: path, Kind: Lost, OldSize: old})
		}
		return
	}

	if wp.lost {
		wp.lost = false
		wp.size = info.Size()
		wp.info = info
		if w.fsw != nil {
			w.fsw.Add(path)
		}
		w.deliver(wp, Event{Path: path, Kind: Reset, NewSize: wp.size})
		return
	}

	// Replacement shows up as a new file identity, truncation as a
	// size regression
	if replaced := wp.info != nil && !os.SameFile(wp.info, info); replaced || info.Size() < wp.size {
		old := wp.size
		wp.size = info.Size()
		wp.info = info
		if replaced && w.fsw != nil {
			// The old watch follows the replaced inode
			w.fsw.Remove(path)
			w.fsw.Add(path)
		}
		w.deliver(wp, Event{Path: path, Kind: Reset, OldSize: old, NewSize: wp.size})
		return
	}

	if info.Size() > wp.size {
		old := wp.size
		wp.size = info.Size()
		wp.info = info
		w.deliver(wp, Event{Path: path, Kind: Grow, OldSize: old, NewSize: wp.size})
		return
	}

	wp.info = info
}

func (w *Watcher) deliver(wp *watchedPath, ev Event) {
	for _, sub := range wp.subs {
		sub.fn(ev)
	}
}
