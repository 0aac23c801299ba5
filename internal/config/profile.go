package config

import (
	"fmt"
	"strings"

	"github.com/dshills/keyfmt/internal/language"
)

// DefaultCommandLine is the command line template of a fresh profile.
const DefaultCommandLine = `-c "%CFGFILE%" -q -l %LANGUAGE% --no-backup "%FILE%"`

// OutputMode selects where the formatted text is read back from.
type OutputMode string

const (
	// OutputFile reads the transient file after the formatter rewrote it in place.
	OutputFile OutputMode = "file"
	// OutputStdout reads the formatter's standard output.
	OutputStdout OutputMode = "stdout"
)

// ParseOutputMode parses an output mode name. Empty means OutputFile.
func ParseOutputMode(s string) (OutputMode, error) {
	switch OutputMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", OutputFile:
		return OutputFile, nil
	case OutputStdout:
		return OutputStdout, nil
	}
	return OutputFile, fmt.Errorf("unknown output mode %q", s)
}

// Profile is a named set of formatter settings.
type Profile struct {
	// Name identifies the profile.
	Name string
	// Program is the formatter executable.
	Program string
	// ConfigFile is substituted for %CFGFILE%.
	ConfigFile string
	// CommandLine is the argument template passed to Program.
	CommandLine string
	// LanguageFilter limits which documents are formatted.
	LanguageFilter language.Filter
	// FragmentFormatting appends --frag when formatting a selection.
	FragmentFormatting bool
	// FormatOnOpen formats documents when they are opened.
	FormatOnOpen bool
	// FormatOnSave formats documents when they are saved.
	FormatOnSave bool
	// Output selects where the formatted text is read from.
	Output OutputMode
}

// NewProfile returns a profile with default settings.
func NewProfile(name string) Profile {
	p := Profile{Name: name}
	p.Reset()
	return p
}

// Reset restores every setting except the name to its default.
func (p *Profile) Reset() {
	*p = Profile{
		Name:               p.Name,
		CommandLine:        DefaultCommandLine,
		LanguageFilter:     language.All,
		FragmentFormatting: true,
		Output:             OutputFile,
	}
}

// CopyFrom copies all settings from other. The name is kept.
func (p *Profile) CopyFrom(other Profile) {
	name := p.Name
	*p = other
	p.Name = name
}

// Validate reports settings that would make every format operation fail.
func (p Profile) Validate() error {
	if strings.TrimSpace(p.Program) == "" {
		return fmt.Errorf("profile %q: no formatter program configured", p.Name)
	}
	if _, err := ParseOutputMode(string(p.Output)); err != nil {
		return fmt.Errorf("profile %q: %w", p.Name, err)
	}
	return nil
}

// ValidName trims name and reports whether it is usable as a profile name.
func ValidName(name string) (string, bool) {
	name = strings.TrimSpace(name)
	return name, name != "" && name[0] != '>'
}
