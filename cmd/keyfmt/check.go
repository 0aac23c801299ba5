package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dshills/keyfmt/internal/document"
	"github.com/dshills/keyfmt/internal/formatter"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] <file> [file...]",
	Short: "Report which format commands are enabled for files",
	Long: `Check reports, without running the formatter or changing anything,
whether "format document" and "format selection" would be enabled for each
file under the active profile.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().String("selection", "", "selection FROM-TO to evaluate format selection against")
}

func runCheck(cmd *cobra.Command, args []string) error {
	e, err := loadEnv(cmd, loadOptions{overrides: true})
	if err != nil {
		return err
	}

	var sel *selectionSpec
	if s, _ := cmd.Flags().GetString("selection"); s != "" {
		spec, err := parseSelection(s)
		if err != nil {
			return fmt.Errorf("--selection: %w", err)
		}
		sel = &spec
	}

	if err := e.profile.Validate(); err != nil {
		e.console.printf("%s %v\n", skipColor.Sprint("warning:"), err)
	}

	disabled := 0
	for _, path := range args {
		doc, err := document.Open(path)
		if err != nil {
			e.console.fail(path, err)
			disabled++
			continue
		}
		if sel != nil {
			doc.SetSelection(sel.resolve(doc))
		}

		cmds := formatter.CheckCommands(doc, e.profile)
		e.console.printf("%s\n", path)
		e.console.printf("  format document:  %s\n", describeEligibility(cmds.Document))
		e.console.printf("  format selection: %s\n", describeEligibility(cmds.Selection))
		if !cmds.Document.OK {
			disabled++
		}
	}

	if disabled > 0 {
		return fmt.Errorf("%d of %d files cannot be formatted with profile %q", disabled, len(args), e.profile.Name)
	}
	return nil
}

func describeEligibility(el formatter.Eligibility) string {
	if el.OK {
		return okColor.Sprint("enabled") + faintColor.Sprintf(" (%s)", el.Language.Tag)
	}
	return skipColor.Sprint("disabled") + faintColor.Sprintf(" (%s)", el.Reason)
}
