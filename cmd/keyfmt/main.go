// Package main is the entry point for the keyfmt command.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "keyfmt",
	Short: "Run an external source formatter without losing your place",
	Long: `keyfmt pipes C, C++, C#, D and Java documents through an external
formatter such as Artistic Style, replaces the document with the result and
puts the caret back next to the code it was on.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(formatCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(anchorCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("config", "", "profiles file (default $XDG_CONFIG_HOME/keyfmt/profiles.toml)")
	rootCmd.PersistentFlags().String("profile", "", "use this profile instead of the active one")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug|info|warn|error)")
	rootCmd.PersistentFlags().Bool("log-json", false, "write logs as JSON")
	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().String("workspace", "", "directory substituted for %SOLUTION% (default: working directory)")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "only report failures")
}

func main() {
	os.Exit(run())
}

func run() int {
	rootCmd.Version = version
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "keyfmt: %v\n", err)
		return 1
	}
	return 0
}

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
