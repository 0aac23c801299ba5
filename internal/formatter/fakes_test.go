package formatter

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/dshills/keyfmt/internal/config"
	"github.com/dshills/keyfmt/internal/document"
	"github.com/dshills/keyfmt/internal/engine/buffer"
	"github.com/dshills/keyfmt/internal/process"
)

// recordingDoc counts write and view calls on top of a real document.
type recordingDoc struct {
	*document.Document
	replaces int
	carets   int
	scrolls  int
}

func (d *recordingDoc) Replace(start, end buffer.ByteOffset, text string) error {
	d.replaces++
	return d.Document.Replace(start, end, text)
}

func (d *recordingDoc) SetCaret(offset buffer.ByteOffset) {
	d.carets++
	d.Document.SetCaret(offset)
}

func (d *recordingDoc) SetCaretPoint(p buffer.Point) {
	d.carets++
	d.Document.SetCaretPoint(p)
}

func (d *recordingDoc) ScrollTo(line uint32) {
	d.scrolls++
	d.Document.ScrollTo(line)
}

func (d *recordingDoc) viewCalls() int {
	return d.carets + d.scrolls
}

func newDoc(t *testing.T, name, text string, opts ...document.Option) *recordingDoc {
	t.Helper()
	return &recordingDoc{Document: document.New(filepath.Join(t.TempDir(), name), text, opts...)}
}

type fakeStatus struct {
	mu    sync.Mutex
	texts []string
	busy  []bool
}

func (s *fakeStatus) SetText(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.texts = append(s.texts, text)
}

func (s *fakeStatus) SetBusy(busy bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy = append(s.busy, busy)
}

func (s *fakeStatus) last() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.texts) == 0 {
		return ""
	}
	return s.texts[len(s.texts)-1]
}

func (s *fakeStatus) busyCleared() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.busy) > 0 && !s.busy[len(s.busy)-1]
}

// fakeRunner calls fn with the command, standing in for a formatter.
type fakeRunner struct {
	calls []process.Command
	fn    func(cmd process.Command) (*process.Result, error)
}

func (r *fakeRunner) Run(_ context.Context, cmd process.Command) (*process.Result, error) {
	r.calls = append(r.calls, cmd)
	if r.fn == nil {
		return &process.Result{ExitedCleanly: true}, nil
	}
	return r.fn(cmd)
}

// rewriteFile returns a runner function that replaces the transient file,
// passed as the first argument, with out.
func rewriteFile(out string) func(process.Command) (*process.Result, error) {
	return func(cmd process.Command) (*process.Result, error) {
		if err := os.WriteFile(cmd.Args[0], []byte(out), 0o600); err != nil {
			return nil, err
		}
		return &process.Result{ExitedCleanly: true}, nil
	}
}

func fileProfile(program string) config.Profile {
	p := config.NewProfile("test")
	p.Program = program
	p.CommandLine = `"%FILE%"`
	return p
}

func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fmt.sh")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func assertEmptyDir(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("expected transient files removed, found %d entries", len(entries))
	}
}
