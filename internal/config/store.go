package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/dshills/keyfmt/internal/language"
)

// Format is the serialization used for a configuration file.
type Format uint8

const (
	FormatTOML Format = iota
	FormatYAML
)

// FormatFor picks the serialization from the file extension.
// Anything that is not .yaml or .yml is TOML.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatTOML
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string
	JSON  bool
}

// Config is the complete keyfmt configuration.
type Config struct {
	Log LogConfig
	// Jobs limits concurrent formatter processes in batch mode.
	Jobs int
	// Profiles holds every profile and the active one.
	Profiles *Profiles
}

// Defaults returns the built-in configuration.
func Defaults() *Config {
	return &Config{
		Log:      LogConfig{Level: "warn"},
		Jobs:     runtime.NumCPU(),
		Profiles: NewProfiles(),
	}
}

type fileConfig struct {
	Active   string        `toml:"active,omitempty" yaml:"active,omitempty"`
	Jobs     int           `toml:"jobs,omitempty" yaml:"jobs,omitempty"`
	Log      fileLog       `toml:"log" yaml:"log"`
	Profiles []fileProfile `toml:"profiles" yaml:"profiles"`
}

type fileLog struct {
	Level string `toml:"level,omitempty" yaml:"level,omitempty"`
	JSON  bool   `toml:"json,omitempty" yaml:"json,omitempty"`
}

// fileProfile uses pointers where a missing key must keep a non-zero default.
type fileProfile struct {
	Name               string  `toml:"name" yaml:"name"`
	Program            string  `toml:"program,omitempty" yaml:"program,omitempty"`
	ConfigFile         string  `toml:"config_file,omitempty" yaml:"config_file,omitempty"`
	CommandLine        *string `toml:"command_line,omitempty" yaml:"command_line,omitempty"`
	LanguageFilter     string  `toml:"language_filter,omitempty" yaml:"language_filter,omitempty"`
	FragmentFormatting *bool   `toml:"fragment_formatting,omitempty" yaml:"fragment_formatting,omitempty"`
	FormatOnOpen       bool    `toml:"format_on_open,omitempty" yaml:"format_on_open,omitempty"`
	FormatOnSave       bool    `toml:"format_on_save,omitempty" yaml:"format_on_save,omitempty"`
	Output             string  `toml:"output,omitempty" yaml:"output,omitempty"`
}

func toFileProfile(p Profile) fileProfile {
	cmdline := p.CommandLine
	frag := p.FragmentFormatting
	return fileProfile{
		Name:               p.Name,
		Program:            p.Program,
		ConfigFile:         p.ConfigFile,
		CommandLine:        &cmdline,
		LanguageFilter:     p.LanguageFilter.String(),
		FragmentFormatting: &frag,
		FormatOnOpen:       p.FormatOnOpen,
		FormatOnSave:       p.FormatOnSave,
		Output:             string(p.Output),
	}
}

func (fp fileProfile) profile() (Profile, error) {
	p := NewProfile(fp.Name)
	p.Program = fp.Program
	p.ConfigFile = fp.ConfigFile
	if fp.CommandLine != nil {
		p.CommandLine = *fp.CommandLine
	}
	if fp.FragmentFormatting != nil {
		p.FragmentFormatting = *fp.FragmentFormatting
	}
	p.FormatOnOpen = fp.FormatOnOpen
	p.FormatOnSave = fp.FormatOnSave

	if fp.LanguageFilter != "" {
		f, err := language.ParseFilter(fp.LanguageFilter)
		if err != nil {
			return Profile{}, fmt.Errorf("profile %q: %w", fp.Name, err)
		}
		p.LanguageFilter = f
	}
	out, err := ParseOutputMode(fp.Output)
	if err != nil {
		return Profile{}, fmt.Errorf("profile %q: %w", fp.Name, err)
	}
	p.Output = out
	return p, nil
}

func unmarshal(path string, data []byte, v any) error {
	var err error
	if FormatFor(path) == FormatYAML {
		err = yaml.Unmarshal(data, v)
	} else {
		err = toml.Unmarshal(data, v)
	}
	if err != nil {
		return newParseError(path, err)
	}
	return nil
}

func marshal(path string, v any) ([]byte, error) {
	if FormatFor(path) == FormatYAML {
		return yaml.Marshal(v)
	}
	return toml.Marshal(v)
}

// Load reads the configuration at path on top of the defaults.
// A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	var fc fileConfig
	if err := unmarshal(path, data, &fc); err != nil {
		return nil, err
	}

	if fc.Log.Level != "" {
		cfg.Log.Level = fc.Log.Level
	}
	cfg.Log.JSON = fc.Log.JSON
	if fc.Jobs > 0 {
		cfg.Jobs = fc.Jobs
	}

	for _, fp := range fc.Profiles {
		p, err := fp.profile()
		if err != nil {
			return nil, &ParseError{Path: path, Message: err.Error(), Err: err}
		}
		if IsDefault(p.Name) {
			err = cfg.Profiles.Update(p)
		} else {
			_, err = cfg.Profiles.Add(p)
		}
		if err != nil {
			return nil, &ParseError{Path: path, Message: err.Error(), Err: err}
		}
	}

	// An unknown active name falls back to the default profile.
	_ = cfg.Profiles.Use(fc.Active)
	if fc.Active == "" {
		_ = cfg.Profiles.Use(DefaultProfileName)
	}
	return cfg, nil
}

// Save writes cfg to path, creating parent directories as needed.
func Save(path string, cfg *Config) error {
	fc := fileConfig{
		Active: cfg.Profiles.ActiveName(),
		Jobs:   cfg.Jobs,
		Log:    fileLog{Level: cfg.Log.Level, JSON: cfg.Log.JSON},
	}
	for _, p := range cfg.Profiles.All() {
		fc.Profiles = append(fc.Profiles, toFileProfile(p))
	}

	data, err := marshal(path, fc)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return writeFile(path, data)
}

// ExportProfile writes a single profile to path.
func ExportProfile(path string, p Profile) error {
	data, err := marshal(path, toFileProfile(p))
	if err != nil {
		return fmt.Errorf("encoding profile %q: %w", p.Name, err)
	}
	return writeFile(path, data)
}

// ImportProfile reads a single profile from path. A profile without a name
// takes the file's base name.
func ImportProfile(path string) (Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, fmt.Errorf("reading profile %s: %w", path, err)
	}

	var fp fileProfile
	if err := unmarshal(path, data, &fp); err != nil {
		return Profile{}, err
	}
	if strings.TrimSpace(fp.Name) == "" {
		fp.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	p, err := fp.profile()
	if err != nil {
		return Profile{}, &ParseError{Path: path, Message: err.Error(), Err: err}
	}
	return p, nil
}

// writeFile replaces path atomically via a sibling temp file.
func writeFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}

// DefaultPath returns the profiles file location. KEYFMT_CONFIG overrides it.
func DefaultPath() string {
	if p := os.Getenv("KEYFMT_CONFIG"); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".keyfmt", "profiles.toml")
	}
	return filepath.Join(dir, "keyfmt", "profiles.toml")
}
