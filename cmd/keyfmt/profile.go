package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dshills/keyfmt/internal/config"
	"github.com/dshills/keyfmt/internal/language"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage formatter profiles",
}

var profileListCmd = &cobra.Command{
	Use:   "list",
	Short: "List profiles, marking the active one",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := loadEnv(cmd, loadOptions{})
		if err != nil {
			return err
		}
		active := e.cfg.Profiles.ActiveName()
		for _, name := range e.cfg.Profiles.Names() {
			if name == active {
				e.console.printf("%s %s\n", okColor.Sprint("*"), name)
				continue
			}
			e.console.printf("  %s\n", name)
		}
		return nil
	},
}

var profileShowCmd = &cobra.Command{
	Use:   "show [name]",
	Short: "Show a profile's settings (default: the active profile)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := loadEnv(cmd, loadOptions{overrides: true})
		if err != nil {
			return err
		}
		p := e.profile
		if len(args) == 1 {
			var ok bool
			if p, ok = e.cfg.Profiles.Find(args[0]); !ok {
				return fmt.Errorf("%w: %q", config.ErrProfileNotFound, args[0])
			}
		}
		for _, f := range profileFields(p) {
			e.console.printf("%-16s %s\n", faintColor.Sprint(f.key), f.value)
		}
		return nil
	},
}

var profileUseCmd = &cobra.Command{
	Use:   "use <name>",
	Short: "Make a profile active",
	Args:  cobra.ExactArgs(1),
	RunE: mutateProfiles(func(ps *config.Profiles, args []string) (string, error) {
		if err := ps.Use(args[0]); err != nil {
			return "", err
		}
		return fmt.Sprintf("active profile is now %q", args[0]), nil
	}),
}

var profileCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a profile with default settings and make it active",
	Args:  cobra.ExactArgs(1),
	RunE: mutateProfiles(func(ps *config.Profiles, args []string) (string, error) {
		p, err := ps.Create(args[0])
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("created profile %q", p.Name), nil
	}),
}

var profileDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a profile",
	Args:  cobra.ExactArgs(1),
	RunE: mutateProfiles(func(ps *config.Profiles, args []string) (string, error) {
		if err := ps.Delete(args[0]); err != nil {
			return "", err
		}
		return fmt.Sprintf("deleted profile %q, active profile is %q", args[0], ps.ActiveName()), nil
	}),
}

var profileRenameCmd = &cobra.Command{
	Use:   "rename <old> <new>",
	Short: "Rename a profile",
	Args:  cobra.ExactArgs(2),
	RunE: mutateProfiles(func(ps *config.Profiles, args []string) (string, error) {
		p, err := ps.Rename(args[0], args[1])
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("renamed %q to %q", args[0], p.Name), nil
	}),
}

var profileCloneCmd = &cobra.Command{
	Use:   "clone <source> <new>",
	Short: "Copy a profile's settings into a new active profile",
	Args:  cobra.ExactArgs(2),
	RunE: mutateProfiles(func(ps *config.Profiles, args []string) (string, error) {
		p, err := ps.Clone(args[0], args[1])
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("cloned %q to %q", args[0], p.Name), nil
	}),
}

var profileResetCmd = &cobra.Command{
	Use:   "reset [name]",
	Short: "Restore a profile's default settings (default: the active profile)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		all, _ := cmd.Flags().GetBool("all")
		return mutateProfiles(func(ps *config.Profiles, args []string) (string, error) {
			if all {
				ps.ResetAll()
				return "all profiles removed, default profile reset", nil
			}
			name := ps.ActiveName()
			if len(args) == 1 {
				name = args[0]
			}
			if err := ps.Reset(name); err != nil {
				return "", err
			}
			return fmt.Sprintf("reset profile %q", name), nil
		})(cmd, args)
	},
}

var profileSetCmd = &cobra.Command{
	Use:   "set <key=value> [key=value...]",
	Short: "Change settings of the active profile, or of --name",
	Long: `Set changes profile settings. Keys:
  program, config-file, command-line, language-filter,
  fragment, format-on-open, format-on-save, output`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		return mutateProfiles(func(ps *config.Profiles, args []string) (string, error) {
			if name == "" {
				name = ps.ActiveName()
			}
			p, ok := ps.Find(name)
			if !ok {
				return "", fmt.Errorf("%w: %q", config.ErrProfileNotFound, name)
			}
			for _, arg := range args {
				key, value, ok := strings.Cut(arg, "=")
				if !ok {
					return "", fmt.Errorf("invalid setting %q (want key=value)", arg)
				}
				if err := setProfileField(&p, key, value); err != nil {
					return "", err
				}
			}
			if err := ps.Update(p); err != nil {
				return "", err
			}
			return fmt.Sprintf("updated profile %q", p.Name), nil
		})(cmd, args)
	},
}

var profileImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Add a profile from a TOML or YAML file and make it active",
	Args:  cobra.ExactArgs(1),
	RunE: mutateProfiles(func(ps *config.Profiles, args []string) (string, error) {
		p, err := config.ImportProfile(args[0])
		if err != nil {
			return "", err
		}
		if p, err = ps.Add(p); err != nil {
			return "", err
		}
		return fmt.Sprintf("imported profile %q", p.Name), nil
	}),
}

var profileExportCmd = &cobra.Command{
	Use:   "export <name> <file>",
	Short: "Write a single profile to a TOML or YAML file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := loadEnv(cmd, loadOptions{})
		if err != nil {
			return err
		}
		p, ok := e.cfg.Profiles.Find(args[0])
		if !ok {
			return fmt.Errorf("%w: %q", config.ErrProfileNotFound, args[0])
		}
		if err := config.ExportProfile(args[1], p); err != nil {
			return err
		}
		e.console.ok(args[1], fmt.Sprintf("exported profile %q", p.Name))
		return nil
	},
}

func init() {
	profileResetCmd.Flags().Bool("all", false, "remove every profile and reset the default one")
	profileSetCmd.Flags().String("name", "", "profile to change (default: the active profile)")

	profileCmd.AddCommand(profileListCmd)
	profileCmd.AddCommand(profileShowCmd)
	profileCmd.AddCommand(profileUseCmd)
	profileCmd.AddCommand(profileCreateCmd)
	profileCmd.AddCommand(profileDeleteCmd)
	profileCmd.AddCommand(profileRenameCmd)
	profileCmd.AddCommand(profileCloneCmd)
	profileCmd.AddCommand(profileResetCmd)
	profileCmd.AddCommand(profileSetCmd)
	profileCmd.AddCommand(profileImportCmd)
	profileCmd.AddCommand(profileExportCmd)
}

// mutateProfiles loads the configuration without environment overrides,
// applies fn and saves the result.
func mutateProfiles(fn func(ps *config.Profiles, args []string) (string, error)) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		e, err := loadEnv(cmd, loadOptions{})
		if err != nil {
			return err
		}
		msg, err := fn(e.cfg.Profiles, args)
		if err != nil {
			return err
		}
		if err := e.save(); err != nil {
			return err
		}
		e.console.ok(e.cfgPath, msg)
		return nil
	}
}

type profileField struct {
	key, value string
}

func profileFields(p config.Profile) []profileField {
	return []profileField{
		{"name", p.Name},
		{"program", p.Program},
		{"config-file", p.ConfigFile},
		{"command-line", p.CommandLine},
		{"language-filter", p.LanguageFilter.String()},
		{"fragment", strconv.FormatBool(p.FragmentFormatting)},
		{"format-on-open", strconv.FormatBool(p.FormatOnOpen)},
		{"format-on-save", strconv.FormatBool(p.FormatOnSave)},
		{"output", string(p.Output)},
	}
}

func setProfileField(p *config.Profile, key, value string) error {
	parseBool := func(dst *bool) error {
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%s: invalid boolean %q", key, value)
		}
		*dst = b
		return nil
	}

	switch strings.ToLower(strings.TrimSpace(key)) {
	case "program":
		p.Program = value
	case "config-file":
		p.ConfigFile = value
	case "command-line":
		p.CommandLine = value
	case "language-filter":
		f, err := language.ParseFilter(value)
		if err != nil {
			return err
		}
		p.LanguageFilter = f
	case "fragment":
		return parseBool(&p.FragmentFormatting)
	case "format-on-open":
		return parseBool(&p.FormatOnOpen)
	case "format-on-save":
		return parseBool(&p.FormatOnSave)
	case "output":
		mode, err := config.ParseOutputMode(value)
		if err != nil {
			return err
		}
		p.Output = mode
	default:
		keys := make([]string, 0, 8)
		for _, f := range profileFields(config.Profile{})[1:] {
			keys = append(keys, f.key)
		}
		sort.Strings(keys)
		return fmt.Errorf("unknown setting %q (known: %s)", key, strings.Join(keys, ", "))
	}
	return nil
}
