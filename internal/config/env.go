package config

import (
	"fmt"
	"strconv"

	"github.com/dshills/keyfmt/internal/language"
	"github.com/dshills/keyfmt/internal/logging"
)

// Environment variables consulted by ApplyEnv.
const (
	EnvProfile        = "KEYFMT_PROFILE"
	EnvProgram        = "KEYFMT_PROGRAM"
	EnvConfigFile     = "KEYFMT_CFGFILE"
	EnvCommandLine    = "KEYFMT_CMDLINE"
	EnvLanguageFilter = "KEYFMT_LANGUAGE_FILTER"
	EnvLogLevel       = "KEYFMT_LOG_LEVEL"
	EnvJobs           = "KEYFMT_JOBS"
)

// LookupFunc reports the value of an environment variable. os.LookupEnv
// satisfies it.
type LookupFunc func(key string) (string, bool)

// ApplyEnv overlays environment variables onto cfg. Profile overrides apply
// to the active profile in memory only. Empty values are treated as set.
func ApplyEnv(cfg *Config, lookup LookupFunc) error {
	if v, ok := lookup(EnvProfile); ok {
		if err := cfg.Profiles.Use(v); err != nil {
			return fmt.Errorf("%s: %w", EnvProfile, err)
		}
	}

	if v, ok := lookup(EnvLogLevel); ok {
		if !logging.ValidLevel(v) {
			return fmt.Errorf("%s: unknown log level %q", EnvLogLevel, v)
		}
		cfg.Log.Level = v
	}
	if v, ok := lookup(EnvJobs); ok {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return fmt.Errorf("%s: invalid job count %q", EnvJobs, v)
		}
		cfg.Jobs = n
	}

	p := cfg.Profiles.Active()
	changed := false
	setString := func(key string, dst *string) {
		if v, ok := lookup(key); ok {
			*dst = v
			changed = true
		}
	}
	setString(EnvProgram, &p.Program)
	setString(EnvConfigFile, &p.ConfigFile)
	setString(EnvCommandLine, &p.CommandLine)

	if v, ok := lookup(EnvLanguageFilter); ok {
		f, err := language.ParseFilter(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvLanguageFilter, err)
		}
		p.LanguageFilter = f
		changed = true
	}

	if changed {
		return cfg.Profiles.Update(p)
	}
	return nil
}
