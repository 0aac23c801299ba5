package process

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// Command describes one program invocation.
type Command struct {
	Program string
	Args    []string
	// Dir is the working directory. Empty means the current directory.
	Dir string
	// Env is appended to the inherited environment.
	Env []string
}

// String renders the command for logs.
func (c Command) String() string {
	if len(c.Args) == 0 {
		return c.Program
	}
	return c.Program + " " + strings.Join(c.Args, " ")
}

// Result is the outcome of a finished run.
type Result struct {
	// ID identifies the process that produced the result.
	ID string
	// ExitedCleanly is false when the process was killed by a signal.
	ExitedCleanly bool
	// ExitCode is the process exit status, -1 when killed.
	ExitCode int
	Stdout   []byte
	Stderr   []byte
	Duration time.Duration
}

// Success reports a clean exit with status zero.
func (r *Result) Success() bool {
	return r != nil && r.ExitedCleanly && r.ExitCode == 0
}

// Diagnostic returns the first line of stderr, for status messages.
func (r *Result) Diagnostic() string {
	if r == nil {
		return ""
	}
	line, _, _ := strings.Cut(strings.TrimSpace(string(r.Stderr)), "\n")
	return strings.TrimSpace(line)
}

// Runner runs a program to completion.
type Runner interface {
	Run(ctx context.Context, cmd Command) (*Result, error)
}

// Exec is a Runner backed by os/exec.
type Exec struct{}

// NewExec returns an os/exec backed runner.
func NewExec() *Exec {
	return &Exec{}
}

// Run launches cmd and blocks until it exits. The context is checked before
// launch; a started process is never interrupted. A non-zero exit is not an
// error: inspect the Result.
func (e *Exec) Run(ctx context.Context, cmd Command) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(cmd.Program) == "" {
		return nil, fmt.Errorf("%w: no program configured", ErrLaunch)
	}

	c := exec.Command(cmd.Program, cmd.Args...)
	c.Dir = cmd.Dir
	if len(cmd.Env) > 0 {
		c.Env = append(c.Environ(), cmd.Env...)
	}
	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	p := NewProcess(filepath.Base(cmd.Program), c)
	if err := p.Start(); err != nil {
		return nil, err
	}
	p.Wait()

	return &Result{
		ID:            p.ID,
		ExitedCleanly: p.State() == StateExited,
		ExitCode:      p.ExitCode(),
		Stdout:        stdout.Bytes(),
		Stderr:        stderr.Bytes(),
		Duration:      p.Runtime(),
	}, nil
}
