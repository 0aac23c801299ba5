package watcher

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestOpString(t *testing.T) {
	tests := []struct {
		op   Op
		want string
	}{
		{0, "NONE"},
		{OpCreate, "CREATE"},
		{OpWrite, "WRITE"},
		{OpCreate | OpWrite, "CREATE|WRITE"},
		{OpRemove | OpRename | OpChmod, "REMOVE|RENAME|CHMOD"},
		{Op(1 << 10), "UNKNOWN"},
	}
	for _, tt := range tests {
		if got := tt.op.String(); got != tt.want {
			t.Errorf("Op(%d).String() = %q, want %q", uint32(tt.op), got, tt.want)
		}
	}
}

func TestExtensionFilter(t *testing.T) {
	f := ExtensionFilter(".c", ".Java")

	tests := map[string]bool{
		"/src/a.c":      true,
		"/src/A.C":      true,
		"/src/b.java":   true,
		"/src/c.go":     false,
		"/src/Makefile": false,
	}
	for path, want := range tests {
		if got := f(Event{Path: path}); got != want {
			t.Errorf("filter(%q) = %v, want %v", path, got, want)
		}
	}
}

func TestFSNotifyWatcherAddErrors(t *testing.T) {
	w, err := NewFSNotifyWatcher()
	if err != nil {
		t.Fatalf("create watcher: %v", err)
	}

	dir := t.TempDir()
	file := filepath.Join(dir, "a.c")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := w.Add(filepath.Join(dir, "missing")); !errors.Is(err, ErrPathNotExist) {
		t.Errorf("expected ErrPathNotExist, got %v", err)
	}
	if err := w.Add(file); !errors.Is(err, ErrNotDir) {
		t.Errorf("expected ErrNotDir, got %v", err)
	}
	if err := w.Add(dir); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if err := w.Add(dir); err != nil {
		t.Errorf("second add failed: %v", err)
	}
	if got := w.Dirs(); len(got) != 1 || got[0] != dir {
		t.Errorf("Dirs() = %v, want [%s]", got, dir)
	}

	if err := w.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("second close failed: %v", err)
	}
	if err := w.Add(dir); !errors.Is(err, ErrWatcherClosed) {
		t.Errorf("expected ErrWatcherClosed, got %v", err)
	}
}

func TestFSNotifyWatcherSkipsDirs(t *testing.T) {
	dir := t.TempDir()
	for _, sub := range []string{"src/inner", ".git/objects", "vendor/lib"} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o755); err != nil {
			t.Fatal(err)
		}
	}

	w, err := NewFSNotifyWatcher()
	if err != nil {
		t.Fatalf("create watcher: %v", err)
	}
	defer w.Close()

	if err := w.Add(dir); err != nil {
		t.Fatalf("add: %v", err)
	}

	want := []string{dir, filepath.Join(dir, "src"), filepath.Join(dir, "src", "inner")}
	got := w.Dirs()
	if len(got) != len(want) {
		t.Fatalf("Dirs() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Dirs()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func waitFor(t *testing.T, w *FSNotifyWatcher, match func(Event) bool) {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case ev := <-w.Events():
			if match(ev) {
				return
			}
		case <-deadline:
			t.Fatal("timed out waiting for event")
		}
	}
}

func TestFSNotifyWatcherDeliversFilteredEvents(t *testing.T) {
	dir := t.TempDir()

	w, err := NewFSNotifyWatcher(WithFilter(ExtensionFilter(".c")))
	if err != nil {
		t.Fatalf("create watcher: %v", err)
	}
	defer w.Close()

	if err := w.Add(dir); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	target := filepath.Join(dir, "main.c")
	if err := os.WriteFile(target, []byte("int x;"), 0o644); err != nil {
		t.Fatal(err)
	}

	waitFor(t, w, func(ev Event) bool {
		if filepath.Ext(ev.Path) != ".c" {
			t.Fatalf("filter let through %q", ev.Path)
		}
		return ev.Path == target && (ev.Op.Has(OpCreate) || ev.Op.Has(OpWrite))
	})
}

func TestFSNotifyWatcherFollowsNewDirs(t *testing.T) {
	dir := t.TempDir()

	w, err := NewFSNotifyWatcher(WithFilter(ExtensionFilter(".c")))
	if err != nil {
		t.Fatalf("create watcher: %v", err)
	}
	defer w.Close()

	if err := w.Add(dir); err != nil {
		t.Fatal(err)
	}

	sub := filepath.Join(dir, "pkg")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	deadline := time.Now().Add(5 * time.Second)
	for len(w.Dirs()) < 2 {
		if time.Now().After(deadline) {
			t.Fatalf("new directory never followed, Dirs() = %v", w.Dirs())
		}
		time.Sleep(10 * time.Millisecond)
	}

	target := filepath.Join(sub, "lib.c")
	if err := os.WriteFile(target, []byte("int y;"), 0o644); err != nil {
		t.Fatal(err)
	}
	waitFor(t, w, func(ev Event) bool { return ev.Path == target })

	if err := os.RemoveAll(sub); err != nil {
		t.Fatal(err)
	}
	deadline = time.Now().Add(5 * time.Second)
	for len(w.Dirs()) != 1 {
		if time.Now().After(deadline) {
			t.Fatalf("removed directory still followed, Dirs() = %v", w.Dirs())
		}
		time.Sleep(10 * time.Millisecond)
	}
}
