package watcher

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

// FSNotifyWatcher follows directory trees with fsnotify. Directories created
// under a followed tree are followed too.
type FSNotifyWatcher struct {
	fsw    *fsnotify.Watcher
	cfg    Config
	events chan Event
	errors chan error
	done   chan struct{}
	wg     sync.WaitGroup

	mu      sync.Mutex
	dirs    map[string]struct{}
	closed  bool
	dropped atomic.Uint64
}

// NewFSNotifyWatcher starts a watcher with no directories.
func NewFSNotifyWatcher(opts ...Option) (*FSNotifyWatcher, error) {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = DefaultConfig().BufferSize
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("start fsnotify: %w", err)
	}

	w := &FSNotifyWatcher{
		fsw:    fsw,
		cfg:    cfg,
		events: make(chan Event, cfg.BufferSize),
		errors: make(chan error, cfg.BufferSize),
		done:   make(chan struct{}),
		dirs:   make(map[string]struct{}),
	}
	w.wg.Add(1)
	go w.run()
	return w, nil
}

// Add follows root and every directory below it that is not skipped.
// Adding a directory again is a no-op.
func (w *FSNotifyWatcher) Add(root string) error {
	abs, err := filepath.Abs(root)
	if err != nil {
		return err
	}
	info, err := os.Stat(abs)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%s: %w", abs, ErrPathNotExist)
	case err != nil:
		return err
	case !info.IsDir():
		return fmt.Errorf("%s: %w", abs, ErrNotDir)
	}
	return w.addTree(abs)
}

func (w *FSNotifyWatcher) addTree(root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == root {
				return err
			}
			w.report(err)
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if p != root && w.skip(d.Name()) {
			return filepath.SkipDir
		}
		return w.addDir(p)
	})
}

func (w *FSNotifyWatcher) addDir(dir string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrWatcherClosed
	}
	if _, ok := w.dirs[dir]; ok {
		return nil
	}
	if err := w.fsw.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	w.dirs[dir] = struct{}{}
	return nil
}

// forget drops path and everything below it from the followed set. fsnotify
// removes the kernel watches itself.
func (w *FSNotifyWatcher) forget(path string) {
	prefix := path + string(filepath.Separator)

	w.mu.Lock()
	defer w.mu.Unlock()
	for dir := range w.dirs {
		if dir == path || len(dir) > len(prefix) && dir[:len(prefix)] == prefix {
			delete(w.dirs, dir)
		}
	}
}

// Dirs returns the followed directories in sorted order.
func (w *FSNotifyWatcher) Dirs() []string {
	w.mu.Lock()
	dirs := make([]string, 0, len(w.dirs))
	for dir := range w.dirs {
		dirs = append(dirs, dir)
	}
	w.mu.Unlock()

	sort.Strings(dirs)
	return dirs
}

// Dropped returns how many events were discarded with ErrOverflow.
func (w *FSNotifyWatcher) Dropped() uint64 {
	return w.dropped.Load()
}

// Events returns the event channel.
func (w *FSNotifyWatcher) Events() <-chan Event { return w.events }

// Errors returns the error channel.
func (w *FSNotifyWatcher) Errors() <-chan error { return w.errors }

// Close stops following every directory and closes both channels.
func (w *FSNotifyWatcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.done)
	w.mu.Unlock()

	err := w.fsw.Close()
	w.wg.Wait()
	close(w.events)
	close(w.errors)
	return err
}

func (w *FSNotifyWatcher) run() {
	defer w.wg.Done()
	for {
		select {
		case <-w.done:
			return
		case fe, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handle(fe)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.report(err)
		}
	}
}

func (w *FSNotifyWatcher) handle(fe fsnotify.Event) {
	op := opFrom(fe.Op)
	if op == 0 {
		return
	}
	name := filepath.Base(fe.Name)

	if op.Has(OpCreate) {
		if info, err := os.Lstat(fe.Name); err == nil && info.IsDir() {
			if !w.skip(name) {
				if err := w.addTree(fe.Name); err != nil {
					w.report(err)
				}
			}
			return
		}
	}
	if op.Has(OpRemove) || op.Has(OpRename) {
		w.forget(fe.Name)
	}
	if w.cfg.IgnoreHidden && hidden(name) {
		return
	}

	ev := Event{Path: fe.Name, Op: op, Timestamp: time.Now()}
	if w.cfg.Filter != nil && !w.cfg.Filter(ev) {
		return
	}

	select {
	case w.events <- ev:
	default:
		w.dropped.Add(1)
		w.report(fmt.Errorf("%w: dropped %s %s", ErrOverflow, ev.Op, ev.Path))
	}
}

func (w *FSNotifyWatcher) skip(name string) bool {
	return (w.cfg.IgnoreHidden && hidden(name)) || slices.Contains(w.cfg.SkipDirs, name)
}

func (w *FSNotifyWatcher) report(err error) {
	select {
	case w.errors <- err:
	default:
	}
}

func hidden(name string) bool {
	return len(name) > 1 && name[0] == '.'
}

var fsOps = [...]struct {
	from fsnotify.Op
	to   Op
}{
	{fsnotify.Create, OpCreate},
	{fsnotify.Write, OpWrite},
	{fsnotify.Remove, OpRemove},
	{fsnotify.Rename, OpRename},
	{fsnotify.Chmod, OpChmod},
}

func opFrom(fsOp fsnotify.Op) Op {
	var op Op
	for _, m := range fsOps {
		if fsOp.Has(m.from) {
			op |= m.to
		}
	}
	return op
}

var _ Watcher = (*FSNotifyWatcher)(nil)
