package process

import (
	"errors"
	"fmt"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
)

// State is where a Process is in its life.
type State int

const (
	StateCreated State = iota
	StateRunning
	// StateExited means the program ended on its own, with any status.
	StateExited
	// StateKilled means a signal ended the program.
	StateKilled
)

var stateNames = [...]string{
	StateCreated: "created",
	StateRunning: "running",
	StateExited:  "exited",
	StateKilled:  "killed",
}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("unknown(%d)", int(s))
}

var (
	// ErrLaunch wraps failures to start the program.
	ErrLaunch = errors.New("could not launch program")

	ErrProcessAlreadyStarted = errors.New("process already started")
)

// Process follows one formatter run from launch to exit. It is safe for
// concurrent use.
type Process struct {
	// ID is unique per run and appears in logs.
	ID string
	// Name is the program base name.
	Name string

	cmd  *exec.Cmd
	done chan struct{}

	mu       sync.Mutex
	state    State
	exitCode int
	exitErr  error
	started  time.Time
	finished time.Time
}

// NewProcess prepares a run of cmd. cmd must not have been started.
func NewProcess(name string, cmd *exec.Cmd) *Process {
	return &Process{
		ID:       uuid.NewString(),
		Name:     name,
		cmd:      cmd,
		done:     make(chan struct{}),
		exitCode: -1,
	}
}

// Start launches the program. A failure wraps ErrLaunch and leaves the
// state at StateCreated.
func (p *Process) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != StateCreated {
		return ErrProcessAlreadyStarted
	}
	if err := p.cmd.Start(); err != nil {
		return fmt.Errorf("%w %s: %w", ErrLaunch, p.Name, err)
	}
	p.state = StateRunning
	p.started = time.Now()
	go p.reap()
	return nil
}

func (p *Process) reap() {
	err := p.cmd.Wait()

	code, state := 0, StateExited
	var exitErr *exec.ExitError
	switch {
	case errors.As(err, &exitErr):
		code = exitErr.ExitCode()
		if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
			state = StateKilled
		}
	case err != nil:
		code = -1
	}

	p.mu.Lock()
	p.state = state
	p.exitCode = code
	p.exitErr = err
	p.finished = time.Now()
	p.mu.Unlock()
	close(p.done)
}

// Wait blocks until the program has exited. It must follow a successful Start.
func (p *Process) Wait() { <-p.done }

// Done is closed once the program has exited.
func (p *Process) Done() <-chan struct{} { return p.done }

// State reports the current state.
func (p *Process) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// HasExited reports whether the program ended, by itself or by signal.
func (p *Process) HasExited() bool {
	s := p.State()
	return s == StateExited || s == StateKilled
}

// ExitCode is the exit status, or -1 before exit and after a signal.
func (p *Process) ExitCode() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.exitCode
}

// ExitError is what waiting on the program returned.
func (p *Process) ExitError() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.exitErr
}

// PID is the OS process id, or -1 before launch.
func (p *Process) PID() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cmd.Process == nil {
		return -1
	}
	return p.cmd.Process.Pid
}

// Runtime is how long the program ran, or has run so far.
func (p *Process) Runtime() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch {
	case p.started.IsZero():
		return 0
	case p.finished.IsZero():
		return time.Since(p.started)
	}
	return p.finished.Sub(p.started)
}
