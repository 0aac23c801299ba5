// Package config holds formatter profiles and their on-disk store.
//
// A profile names the formatter program, its configuration file, the
// command line template and the event-driven formatting switches. A
// Profiles set always contains the default profile, which can be edited but
// never deleted or renamed.
//
// Configuration is layered: built-in defaults, then the profiles file
// (TOML or YAML, chosen by extension), then KEYFMT_* environment variables.
//
//	cfg, err := config.Load(config.DefaultPath())
//	if err != nil {
//	    return err
//	}
//	config.ApplyEnv(cfg, os.LookupEnv)
//	profile := cfg.Profiles.Active()
package config
