package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dshills/keyfmt/internal/config"
	"github.com/dshills/keyfmt/internal/logging"
)

// env is the state every subcommand starts from.
type env struct {
	cfg     *config.Config
	cfgPath string
	// profile is the profile formatting commands use.
	profile   config.Profile
	logger    *logging.Logger
	console   *console
	workspace string
}

type loadOptions struct {
	// overrides applies KEYFMT_* variables. Commands that persist the
	// configuration skip them so overrides are never written back.
	overrides bool
}

func loadEnv(cmd *cobra.Command, opts loadOptions) (*env, error) {
	flags := cmd.Root().PersistentFlags()

	if err := applyColorMode(flags.Lookup("color").Value.String()); err != nil {
		return nil, err
	}

	cfgPath, _ := flags.GetString("config")
	if cfgPath == "" {
		cfgPath = config.DefaultPath()
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	if opts.overrides {
		if err := config.ApplyEnv(cfg, os.LookupEnv); err != nil {
			return nil, err
		}
	}

	level, _ := flags.GetString("log-level")
	if level == "" {
		level = cfg.Log.Level
	}
	if !logging.ValidLevel(level) {
		return nil, fmt.Errorf("invalid log level %q (must be debug, info, warn, or error)", level)
	}
	jsonLogs, _ := flags.GetBool("log-json")
	logger := logging.New(logging.Config{
		Level:  logging.ParseLevel(level),
		Output: os.Stderr,
		JSON:   jsonLogs || cfg.Log.JSON,
		Prefix: "keyfmt",
	})

	profile := cfg.Profiles.Active()
	if name, _ := flags.GetString("profile"); name != "" {
		p, ok := cfg.Profiles.Find(name)
		if !ok {
			return nil, fmt.Errorf("%w: %q", config.ErrProfileNotFound, name)
		}
		profile = p
	}

	workspace, _ := flags.GetString("workspace")
	if workspace == "" {
		if wd, err := os.Getwd(); err == nil {
			workspace = wd
		}
	}

	quiet, _ := flags.GetBool("quiet")
	return &env{
		cfg:       cfg,
		cfgPath:   cfgPath,
		profile:   profile,
		logger:    logger,
		console:   newConsole(cmd.OutOrStdout(), quiet),
		workspace: workspace,
	}, nil
}

// save writes the configuration back to the file it was loaded from.
func (e *env) save() error {
	if err := config.Save(e.cfgPath, e.cfg); err != nil {
		return err
	}
	e.logger.Debug("configuration saved", "path", e.cfgPath)
	return nil
}

func applyColorMode(mode string) error {
	switch strings.ToLower(mode) {
	case "auto", "":
		color.NoColor = !isTerminal(os.Stdout)
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	default:
		return fmt.Errorf("invalid --color value %q (must be auto, on, or off)", mode)
	}
	return nil
}
