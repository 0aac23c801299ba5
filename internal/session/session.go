// Package session reacts to document open and save events by formatting the
// document with the active profile.
//
// A save triggered by the session itself, to persist formatted output, is
// recognised when its event arrives and is not formatted again.
package session

import (
	"context"
	"crypto/sha256"
	"errors"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/dshills/keyfmt/internal/config"
	"github.com/dshills/keyfmt/internal/document"
	"github.com/dshills/keyfmt/internal/formatter"
	"github.com/dshills/keyfmt/internal/logging"
	"github.com/dshills/keyfmt/internal/watcher"
)

// Trigger is the event that caused a format.
type Trigger uint8

const (
	TriggerOpened Trigger = iota + 1
	TriggerSaved
)

func (t Trigger) String() string {
	switch t {
	case TriggerOpened:
		return "opened"
	case TriggerSaved:
		return "saved"
	default:
		return "unknown"
	}
}

// Outcome reports what the session did for one event.
type Outcome struct {
	Path    string
	Trigger Trigger
	// Suppressed is set for the echo of the session's own save.
	Suppressed bool
	// Disabled is set when the profile does not format on this trigger.
	Disabled bool
	Result   *formatter.Result
	// Saved reports whether formatted output was written back.
	Saved bool
	Err   error
}

// Formatter formats documents. *formatter.Orchestrator satisfies it.
type Formatter interface {
	Format(ctx context.Context, doc formatter.Document, profile config.Profile, selectionOnly bool) (*formatter.Result, error)
}

// Options configures a Session.
type Options struct {
	Formatter Formatter
	// Profile returns the profile to format with. It is called per event.
	Profile func() config.Profile
	// Documents tracks open documents. Defaults to a new manager.
	Documents *document.Manager
	Logger    *logging.Logger
	// Jobs bounds concurrent formats in Run. Defaults to 1.
	Jobs int
	// OnOutcome is called after each handled event.
	OnOutcome func(Outcome)
}

// Session formats documents in response to open and save events.
type Session struct {
	formatter Formatter
	profile   func() config.Profile
	docs      *document.Manager
	logger    *logging.Logger
	jobs      int
	onOutcome func(Outcome)

	mu       sync.Mutex
	locks    map[string]*sync.Mutex
	selfSave map[string][sha256.Size]byte
}

// New creates a Session.
func New(opts Options) *Session {
	s := &Session{
		formatter: opts.Formatter,
		profile:   opts.Profile,
		docs:      opts.Documents,
		logger:    opts.Logger.WithComponent("session"),
		jobs:      opts.Jobs,
		onOutcome: opts.OnOutcome,
		locks:     make(map[string]*sync.Mutex),
		selfSave:  make(map[string][sha256.Size]byte),
	}
	if s.docs == nil {
		s.docs = document.NewManager()
	}
	if s.jobs < 1 {
		s.jobs = 1
	}
	if s.onOutcome == nil {
		s.onOutcome = func(Outcome) {}
	}
	return s
}

// Documents returns the document manager.
func (s *Session) Documents() *document.Manager {
	return s.docs
}

func (s *Session) lock(path string) func() {
	s.mu.Lock()
	l, ok := s.locks[path]
	if !ok {
		l = &sync.Mutex{}
		s.locks[path] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// Opened handles a newly opened document.
func (s *Session) Opened(ctx context.Context, path string) Outcome {
	out := Outcome{Path: path, Trigger: TriggerOpened}

	doc, _, err := s.docs.Open(path)
	if err != nil {
		out.Err = err
		return out
	}
	out.Path = doc.Path()

	unlock := s.lock(doc.Path())
	defer unlock()

	profile := s.profile()
	if !profile.FormatOnOpen {
		out.Disabled = true
		return out
	}
	s.formatAndSave(ctx, doc, profile, &out)
	return out
}

// Saved handles a document saved by someone else, or the echo of the
// session's own save.
func (s *Session) Saved(ctx context.Context, path string) Outcome {
	out := Outcome{Path: path, Trigger: TriggerSaved}

	doc, loaded, err := s.docs.Open(path)
	if err != nil {
		out.Err = err
		return out
	}
	out.Path = doc.Path()

	unlock := s.lock(doc.Path())
	defer unlock()

	if !loaded {
		if err := doc.Reload(); err != nil {
			out.Err = err
			return out
		}
	}
	if s.consumeSelfSave(doc) {
		out.Suppressed = true
		return out
	}

	profile := s.profile()
	if !profile.FormatOnSave {
		out.Disabled = true
		return out
	}
	s.formatAndSave(ctx, doc, profile, &out)
	return out
}

// Closed forgets a document that disappeared from disk.
func (s *Session) Closed(path string) {
	doc, ok := s.docs.Get(path)
	if !ok {
		return
	}
	unlock := s.lock(doc.Path())
	defer unlock()

	s.docs.Close(doc.Path())
	s.mu.Lock()
	delete(s.selfSave, doc.Path())
	s.mu.Unlock()
}

func (s *Session) formatAndSave(ctx context.Context, doc *document.Document, profile config.Profile, out *Outcome) {
	res, err := s.formatter.Format(ctx, doc, profile, false)
	out.Result = res
	if err != nil {
		out.Err = err
		return
	}
	if res.Skipped || !res.Changed {
		return
	}

	text := doc.Text()
	s.mu.Lock()
	s.selfSave[doc.Path()] = sha256.Sum256([]byte(text))
	s.mu.Unlock()

	if err := doc.Save(); err != nil {
		s.mu.Lock()
		delete(s.selfSave, doc.Path())
		s.mu.Unlock()
		out.Err = err
		return
	}
	out.Saved = true
}

// consumeSelfSave reports whether doc's content is exactly what the session
// last saved. The marker is consumed either way, so only one echo is
// suppressed.
func (s *Session) consumeSelfSave(doc *document.Document) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sum, ok := s.selfSave[doc.Path()]
	if !ok {
		return false
	}
	delete(s.selfSave, doc.Path())
	return sum == sha256.Sum256([]byte(doc.Text()))
}

// HandleEvent maps a file system event to open, save or close handling.
// A create of an unknown file is an open; any other create or write is a save.
func (s *Session) HandleEvent(ctx context.Context, ev watcher.Event) (Outcome, bool) {
	switch {
	case ev.Op.Has(watcher.OpCreate) || ev.Op.Has(watcher.OpWrite):
		if _, known := s.docs.Get(ev.Path); !known && ev.Op.Has(watcher.OpCreate) {
			return s.Opened(ctx, ev.Path), true
		}
		return s.Saved(ctx, ev.Path), true
	case ev.Op.Has(watcher.OpRemove) || ev.Op.Has(watcher.OpRename):
		s.Closed(ev.Path)
	}
	return Outcome{}, false
}

// Run handles events from src until ctx is done or its event channel is
// closed. Events for different documents are formatted concurrently, up to
// Jobs at a time.
func (s *Session) Run(ctx context.Context, src watcher.Source) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.jobs)

	err := s.loop(gctx, g, src)
	if werr := g.Wait(); werr != nil && err == nil {
		err = werr
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (s *Session) loop(ctx context.Context, g *errgroup.Group, src watcher.Source) error {
	events, errs := src.Events(), src.Errors()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-events:
			if !ok {
				return nil
			}
			g.Go(func() error {
				out, handled := s.HandleEvent(ctx, ev)
				if !handled {
					return nil
				}
				s.report(out)
				return nil
			})

		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			s.logger.Warn("watcher error", "error", err)
		}
	}
}

func (s *Session) report(out Outcome) {
	log := s.logger.With("path", out.Path, "trigger", out.Trigger.String())
	switch {
	case out.Err != nil:
		log.Warn("format failed", "error", out.Err)
	case out.Suppressed:
		log.Debug("own save ignored")
	case out.Disabled:
		log.Debug("formatting disabled for trigger")
	case out.Result != nil && out.Result.Skipped:
		log.Debug("format skipped", "reason", out.Result.SkipReason)
	default:
		log.Info("handled", "saved", out.Saved)
	}
	s.onOutcome(out)
}
