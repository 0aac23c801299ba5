package process

import (
	"context"
	"errors"
	"os/exec"
	"strings"
	"testing"
)

func TestNewProcess(t *testing.T) {
	proc := NewProcess("echo", exec.Command("echo", "hello"))

	if proc.ID == "" {
		t.Error("expected generated ID")
	}
	if proc.State() != StateCreated {
		t.Errorf("expected state created, got %v", proc.State())
	}
	if proc.ExitCode() != -1 {
		t.Errorf("expected exit code -1, got %d", proc.ExitCode())
	}
	if proc.PID() != -1 {
		t.Errorf("expected PID -1 before start, got %d", proc.PID())
	}
	if proc.HasExited() {
		t.Error("expected HasExited() false before start")
	}
	if proc.Runtime() != 0 {
		t.Error("expected zero runtime before start")
	}
}

func TestProcessIDsAreUnique(t *testing.T) {
	a := NewProcess("a", exec.Command("true"))
	b := NewProcess("b", exec.Command("true"))
	if a.ID == b.ID {
		t.Errorf("expected distinct IDs, got %s twice", a.ID)
	}
}

func TestProcessStartTwice(t *testing.T) {
	proc := NewProcess("true", exec.Command("true"))

	if err := proc.Start(); err != nil {
		t.Fatalf("failed to start process: %v", err)
	}
	if err := proc.Start(); !errors.Is(err, ErrProcessAlreadyStarted) {
		t.Errorf("expected ErrProcessAlreadyStarted, got %v", err)
	}
	proc.Wait()

	if !proc.HasExited() {
		t.Error("expected HasExited() true after exit")
	}
}

func TestProcessExitCode(t *testing.T) {
	tests := []struct {
		name      string
		cmd       *exec.Cmd
		wantCode  int
		wantState State
	}{
		{"success", exec.Command("true"), 0, StateExited},
		{"failure", exec.Command("false"), 1, StateExited},
		{"exit 42", exec.Command("sh", "-c", "exit 42"), 42, StateExited},
		{"killed", exec.Command("sh", "-c", "kill -9 $$"), -1, StateKilled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			proc := NewProcess(tt.name, tt.cmd)
			if err := proc.Start(); err != nil {
				t.Fatalf("failed to start: %v", err)
			}
			<-proc.Done()

			if proc.ExitCode() != tt.wantCode {
				t.Errorf("expected exit code %d, got %d", tt.wantCode, proc.ExitCode())
			}
			if proc.State() != tt.wantState {
				t.Errorf("expected state %v, got %v", tt.wantState, proc.State())
			}
		})
	}
}

func TestProcessStartFailure(t *testing.T) {
	proc := NewProcess("missing", exec.Command("/nonexistent/keyfmt-formatter"))

	err := proc.Start()
	if !errors.Is(err, ErrLaunch) {
		t.Fatalf("expected ErrLaunch, got %v", err)
	}
	if proc.State() != StateCreated {
		t.Errorf("expected state created after failed start, got %v", proc.State())
	}
}

func TestStateString(t *testing.T) {
	tests := map[State]string{
		StateCreated: "created",
		StateRunning: "running",
		StateExited:  "exited",
		StateKilled:  "killed",
		State(9):     "unknown(9)",
	}
	for s, want := range tests {
		if s.String() != want {
			t.Errorf("State(%d).String() = %q, want %q", int(s), s.String(), want)
		}
	}
}

func TestExecRun(t *testing.T) {
	r := NewExec()

	res, err := r.Run(context.Background(), Command{
		Program: "sh",
		Args:    []string{"-c", `printf out; printf 'bad input\nmore' >&2; exit 3`},
	})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if res.ID == "" {
		t.Error("expected process ID on result")
	}
	if !res.ExitedCleanly || res.ExitCode != 3 {
		t.Errorf("unexpected exit state %+v", res)
	}
	if res.Success() {
		t.Error("non-zero exit must not be success")
	}
	if string(res.Stdout) != "out" {
		t.Errorf("unexpected stdout %q", res.Stdout)
	}
	if res.Diagnostic() != "bad input" {
		t.Errorf("unexpected diagnostic %q", res.Diagnostic())
	}
}

func TestExecRunDirAndEnv(t *testing.T) {
	dir := t.TempDir()
	res, err := NewExec().Run(context.Background(), Command{
		Program: "sh",
		Args:    []string{"-c", `printf "%s|$KEYFMT_TEST" "$(pwd)"`},
		Dir:     dir,
		Env:     []string{"KEYFMT_TEST=yes"},
	})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if !res.Success() {
		t.Fatalf("unexpected failure %+v", res)
	}
	out := string(res.Stdout)
	if !strings.HasSuffix(out, "|yes") || !strings.Contains(out, dir) {
		t.Errorf("unexpected output %q", out)
	}
}

func TestExecRunLaunchFailure(t *testing.T) {
	r := NewExec()

	for _, prog := range []string{"", "/nonexistent/keyfmt-formatter"} {
		if _, err := r.Run(context.Background(), Command{Program: prog}); !errors.Is(err, ErrLaunch) {
			t.Errorf("Run(%q): expected ErrLaunch, got %v", prog, err)
		}
	}
}

func TestExecRunCanceledBeforeLaunch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewExec().Run(ctx, Command{Program: "true"}); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestCommandString(t *testing.T) {
	c := Command{Program: "astyle", Args: []string{"-q", "a.c"}}
	if c.String() != "astyle -q a.c" {
		t.Errorf("unexpected %q", c.String())
	}
	if (Command{Program: "x"}).String() != "x" {
		t.Error("expected bare program")
	}
}
