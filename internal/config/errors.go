package config

import (
	"errors"
	"fmt"

	"github.com/pelletier/go-toml/v2"
)

// Profile errors.
var (
	// ErrInvalidName indicates an empty name or one starting with '>'.
	ErrInvalidName = errors.New("invalid profile name")

	// ErrDuplicateProfile indicates a profile with the same name exists.
	ErrDuplicateProfile = errors.New("profile already exists")

	// ErrProfileNotFound indicates no profile matched the name.
	ErrProfileNotFound = errors.New("profile not found")

	// ErrDefaultProfile indicates an operation not allowed on the default profile.
	ErrDefaultProfile = errors.New("operation not allowed on the default profile")
)

// ParseError represents an error while parsing a configuration file.
type ParseError struct {
	Path    string
	Line    int
	Column  int
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Line > 0 && e.Column > 0 {
		return fmt.Sprintf("parse error in %s at line %d, column %d: %s", e.Path, e.Line, e.Column, e.Message)
	}
	if e.Line > 0 {
		return fmt.Sprintf("parse error in %s at line %d: %s", e.Path, e.Line, e.Message)
	}
	return fmt.Sprintf("parse error in %s: %s", e.Path, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// newParseError wraps a decoder error, keeping the position when the decoder
// reports one.
func newParseError(path string, err error) *ParseError {
	pe := &ParseError{Path: path, Message: err.Error(), Err: err}
	var derr *toml.DecodeError
	if errors.As(err, &derr) {
		pe.Line, pe.Column = derr.Position()
	}
	return pe
}
