package formatter

import (
	"errors"
	"fmt"

	"github.com/dshills/keyfmt/internal/process"
)

var (
	// ErrLaunch is returned when the formatter program could not be started.
	ErrLaunch = process.ErrLaunch

	// ErrFormatterFailed is returned when the formatter exited unsuccessfully.
	ErrFormatterFailed = errors.New("formatter failed")
)

// ExitError reports a formatter that ran but did not exit cleanly with
// status zero.
type ExitError struct {
	Code       int
	Signaled   bool
	Diagnostic string
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("formatter exited with code %d", e.Code)
	if e.Signaled {
		msg = "formatter was killed"
	}
	if e.Diagnostic != "" {
		msg += ": " + e.Diagnostic
	}
	return msg
}

// Is makes every ExitError match ErrFormatterFailed.
func (e *ExitError) Is(target error) bool {
	return target == ErrFormatterFailed
}

// OpError describes a failed format operation.
type OpError struct {
	// Stage is where the operation stopped.
	Stage Stage
	// Path is the document path.
	Path string
	// Err is the underlying error.
	Err error
}

func (e *OpError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("format %s: %s: %v", e.Path, e.Stage, e.Err)
	}
	return fmt.Sprintf("format: %s: %v", e.Stage, e.Err)
}

func (e *OpError) Unwrap() error {
	return e.Err
}

// Is matches another OpError with the same stage, ignoring path and cause.
func (e *OpError) Is(target error) bool {
	t, ok := target.(*OpError)
	if !ok {
		return false
	}
	return t.Stage == e.Stage
}
