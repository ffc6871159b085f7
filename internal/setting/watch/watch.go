// Package watch notifies about external changes to setting source files,
// e.g. a settings file edited by hand while the application runs.
//
// File sources live inside shared directories, so the watcher registers
// the parent directory with fsnotify and filters events down to the exact
// files it was asked about. Bursts of events for one file (editors tend to
// write, chmod and rename in quick succession) are debounced into a single
// notification.
package watch

import (
	"errors"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Op is the kind of change observed on a watched file.
type Op int

// Operations reported to handlers.
const (
	Write Op = iota
	Create
	Remove
	Rename
)

// String implements fmt.Stringer.
func (o Op) String() string {
	switch o {
	case Write:
		return "write"
	case Create:
		return "create"
	case Remove:
		return "remove"
	case Rename:
		return "rename"
	default:
		return "unknown"
	}
}

// Event describes one debounced change to a watched file.
type Event struct {
	// Path is the absolute path of the changed file.
	Path string

	// Op is the last operation observed during the debounce window.
	Op Op

	// Time is when the last underlying event arrived.
	Time time.Time
}

// Handler receives debounced events. Handlers run on the watcher's
// goroutine and must not block.
type Handler func(e Event)

// ErrWatcherClosed is returned by Add after Close.
var ErrWatcherClosed = errors.New("watcher is closed")

// Watcher delivers debounced change notifications for a set of files.
type Watcher struct {
	mu      sync.Mutex
	fsw     *fsnotify.Watcher
	files   map[string]bool
	dirs    map[string]int
	pending map[string]*pendingEvent
	handler Handler
	delay   time.Duration
	closed  bool
	done    chan struct{}
	wg      sync.WaitGroup
}

type pendingEvent struct {
	event Event
	timer *time.Timer
}

// New creates a watcher that calls handler for every debounced change.
// A non-positive delay falls back to a minimal debounce window.
func New(handler Handler, delay time.Duration) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if delay <= 0 {
		delay = time.Millisecond
	}

	w := &Watcher{
		fsw:     fsw,
		files:   make(map[string]bool),
		dirs:    make(map[string]int),
		pending: make(map[string]*pendingEvent),
		handler: handler,
		delay:   delay,
		done:    make(chan struct{}),
	}

	w.wg.Add(1)
	go w.loop()

	return w, nil
}

// Add starts watching the given file. The file itself may not exist yet;
// its parent directory must.
func (w *Watcher) Add(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrWatcherClosed
	}
	if w.files[absPath] {
		return nil
	}

	dir := filepath.Dir(absPath)
	if w.dirs[dir] == 0 {
		if err := w.fsw.Add(dir); err != nil {
			return err
		}
	}
	w.dirs[dir]++
	w.files[absPath] = true
	return nil
}

// Remove stops watching the given file.
func (w *Watcher) Remove(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.files[absPath] {
		return nil
	}
	delete(w.files, absPath)

	if p, ok := w.pending[absPath]; ok {
		p.timer.Stop()
		delete(w.pending, absPath)
	}

	dir := filepath.Dir(absPath)
	w.dirs[dir]--
	if w.dirs[dir] <= 0 {
		delete(w.dirs, dir)
		return w.fsw.Remove(dir)
	}
	return nil
}

// Close stops the watcher and drops pending notifications.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.done)
	for path, p := range w.pending {
		p.timer.Stop()
		delete(w.pending, path)
	}
	w.mu.Unlock()

	err := w.fsw.Close()
	w.wg.Wait()
	return err
}

func (w *Watcher) loop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.done:
			return
		case fe, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.dispatch(fe)
		case _, ok := <-w.fsw.Errors:
			// fsnotify errors concern the underlying directory watches;
			// nothing to recover here beyond continuing.
			if !ok {
				return
			}
		}
	}
}

func (w *Watcher) dispatch(fe fsnotify.Event) {
	op, ok := mapOp(fe.Op)
	if !ok {
		return
	}
	path := filepath.Clean(fe.Name)

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed || !w.files[path] {
		return
	}

	event := Event{Path: path, Op: op, Time: time.Now()}
	if p, exists := w.pending[path]; exists {
		p.event = event
		p.timer.Reset(w.delay)
		return
	}

	p := &pendingEvent{event: event}
	p.timer = time.AfterFunc(w.delay, func() { w.fire(path) })
	w.pending[path] = p
}

func (w *Watcher) fire(path string) {
	w.mu.Lock()
	p, ok := w.pending[path]
	if ok {
		delete(w.pending, path)
	}
	closed := w.closed
	w.mu.Unlock()

	if !ok || closed {
		return
	}
	w.handler(p.event)
}

func mapOp(op fsnotify.Op) (Op, bool) {
	switch {
	case op.Has(fsnotify.Write):
		return Write, true
	case op.Has(fsnotify.Create):
		return Create, true
	case op.Has(fsnotify.Remove):
		return Remove, true
	case op.Has(fsnotify.Rename):
		return Rename, true
	default:
		return 0, false
	}
}
