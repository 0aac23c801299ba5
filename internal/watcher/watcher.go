// Package watcher reports changes to source files on disk.
//
// Watch mode uses it to turn file system activity into document events: a
// file appearing is an open, a file being written is a save. Rapid sequences
// of writes, as produced by editors that save through a temporary file, are
// coalesced by DebouncedWatcher.
package watcher

import (
	"errors"
	"path/filepath"
	"strings"
	"time"
)

// Errors returned by watchers.
var (
	ErrWatcherClosed = errors.New("watcher is closed")
	ErrPathNotExist  = errors.New("path does not exist")
	ErrNotDir        = errors.New("not a directory")
	// ErrOverflow is reported when an event is dropped because the consumer
	// fell behind.
	ErrOverflow = errors.New("event buffer full")
)

// Op is a bitmask of file system operations.
type Op uint32

const (
	OpCreate Op = 1 << iota
	OpWrite
	OpRemove
	OpRename
	OpChmod
)

// String returns the operation names joined by '|'.
func (op Op) String() string {
	if op == 0 {
		return "NONE"
	}
	var parts []string
	for _, o := range []struct {
		op   Op
		name string
	}{
		{OpCreate, "CREATE"},
		{OpWrite, "WRITE"},
		{OpRemove, "REMOVE"},
		{OpRename, "RENAME"},
		{OpChmod, "CHMOD"},
	} {
		if op.Has(o.op) {
			parts = append(parts, o.name)
		}
	}
	if len(parts) == 0 {
		return "UNKNOWN"
	}
	return strings.Join(parts, "|")
}

// Has reports whether op includes o.
func (op Op) Has(o Op) bool {
	return op&o == o
}

// Event is a change to a single path.
type Event struct {
	// Path is the absolute path of the affected file.
	Path string
	// Op holds every operation seen for Path, coalesced when debounced.
	Op Op
	// Timestamp is when the last operation was observed.
	Timestamp time.Time
}

// Source delivers file events until its channels are closed.
type Source interface {
	Events() <-chan Event
	Errors() <-chan error
}

// Watcher is a Source that owns resources released by Close. Close closes
// both channels.
type Watcher interface {
	Source
	Close() error
}

// EventFilter reports whether an event should be delivered.
type EventFilter func(event Event) bool

// Config holds watcher configuration options.
type Config struct {
	// BufferSize is the size of the event and error channels.
	BufferSize int
	// IgnoreHidden skips files and directories starting with '.'.
	IgnoreHidden bool
	// SkipDirs are directory base names never descended into.
	SkipDirs []string
	// Filter drops events it returns false for.
	Filter EventFilter
}

// DefaultConfig returns the default watcher configuration.
func DefaultConfig() Config {
	return Config{
		BufferSize:   100,
		IgnoreHidden: true,
		SkipDirs:     []string{"node_modules", "vendor", "build"},
	}
}

// Option configures a watcher.
type Option func(*Config)

// WithBufferSize sets the channel buffer size.
func WithBufferSize(size int) Option {
	return func(c *Config) {
		c.BufferSize = size
	}
}

// WithIgnoreHidden toggles skipping of dot files.
func WithIgnoreHidden(ignore bool) Option {
	return func(c *Config) {
		c.IgnoreHidden = ignore
	}
}

// WithSkipDirs replaces the skipped directory names.
func WithSkipDirs(names ...string) Option {
	return func(c *Config) {
		c.SkipDirs = names
	}
}

// WithFilter sets the event filter.
func WithFilter(filter EventFilter) Option {
	return func(c *Config) {
		c.Filter = filter
	}
}

// ExtensionFilter keeps events whose path has one of exts, compared
// case-insensitively. Extensions include the leading dot.
func ExtensionFilter(exts ...string) EventFilter {
	set := make(map[string]struct{}, len(exts))
	for _, e := range exts {
		set[strings.ToLower(e)] = struct{}{}
	}
	return func(event Event) bool {
		_, ok := set[strings.ToLower(filepath.Ext(event.Path))]
		return ok
	}
}
