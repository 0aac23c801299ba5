package main

import (
	"encoding/json"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

type versionPayload struct {
	Tool      string `json:"tool"`
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
	Go        string `json:"go"`
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show build information",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := applyColorMode(cmd.Root().PersistentFlags().Lookup("color").Value.String()); err != nil {
			return err
		}
		payload := versionPayload{
			Tool:      "keyfmt",
			Version:   version,
			Commit:    commit,
			BuildDate: date,
			Go:        runtime.Version(),
		}

		out := cmd.OutOrStdout()
		if format, _ := cmd.Flags().GetString("format"); format == "json" {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(payload)
		}
		fmt.Fprintf(out, "%s %s\n", okColor.Sprint(payload.Tool), payload.Version)
		fmt.Fprintf(out, "%s %s\n", faintColor.Sprint("commit:"), payload.Commit)
		fmt.Fprintf(out, "%s %s\n", faintColor.Sprint("built: "), payload.BuildDate)
		fmt.Fprintf(out, "%s %s\n", faintColor.Sprint("go:    "), payload.Go)
		return nil
	},
}

func init() {
	versionCmd.Flags().String("format", "pretty", "output format (pretty|json)")
}
