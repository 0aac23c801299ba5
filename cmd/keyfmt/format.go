package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dshills/keyfmt/internal/document"
	"github.com/dshills/keyfmt/internal/formatter"
)

var formatCmd = &cobra.Command{
	Use:   "format [flags] <file> [file...]",
	Short: "Format files with the active profile",
	Long: `Format runs the profile's formatter on each file and writes the result
back. With --caret or --selection a single file is formatted and the restored
caret position is reported.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runFormat,
}

func init() {
	formatCmd.Flags().String("caret", "", "caret position as OFFSET or LINE:COL (1-based)")
	formatCmd.Flags().String("selection", "", "format only FROM-TO, each end an OFFSET or LINE:COL")
	formatCmd.Flags().Bool("stdout", false, "print formatted text instead of rewriting files")
	formatCmd.Flags().Int("jobs", 0, "formatter processes to run at once (default from config)")
	formatCmd.Flags().BoolP("verbose", "v", false, "show formatter progress")
}

type formatOptions struct {
	caret     *position
	selection *selectionSpec
	stdout    bool
	verbose   bool
}

func runFormat(cmd *cobra.Command, args []string) error {
	e, err := loadEnv(cmd, loadOptions{overrides: true})
	if err != nil {
		return err
	}

	var opts formatOptions
	if s, _ := cmd.Flags().GetString("caret"); s != "" {
		pos, err := parsePosition(s)
		if err != nil {
			return fmt.Errorf("--caret: %w", err)
		}
		opts.caret = &pos
	}
	if s, _ := cmd.Flags().GetString("selection"); s != "" {
		sel, err := parseSelection(s)
		if err != nil {
			return fmt.Errorf("--selection: %w", err)
		}
		opts.selection = &sel
	}
	if opts.caret != nil && opts.selection != nil {
		return errors.New("--caret and --selection are mutually exclusive")
	}
	if (opts.caret != nil || opts.selection != nil) && len(args) > 1 {
		return errors.New("--caret and --selection need exactly one file")
	}
	opts.stdout, _ = cmd.Flags().GetBool("stdout")
	opts.verbose, _ = cmd.Flags().GetBool("verbose")

	if err := e.profile.Validate(); err != nil {
		return err
	}

	jobs, _ := cmd.Flags().GetInt("jobs")
	if jobs < 1 {
		jobs = e.cfg.Jobs
	}

	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(jobs)

	var failed int
	results := make([]error, len(args))
	for i, path := range args {
		g.Go(func() error {
			results[i] = formatFile(ctx, e, path, opts)
			return nil
		})
	}
	_ = g.Wait()

	for i, err := range results {
		if err != nil {
			e.console.fail(args[i], err)
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("failed to format %d of %d files", failed, len(args))
	}
	return nil
}

func formatFile(ctx context.Context, e *env, path string, opts formatOptions) error {
	doc, err := document.Open(path)
	if err != nil {
		return err
	}

	selectionOnly := false
	switch {
	case opts.caret != nil:
		doc.SetCaret(opts.caret.resolve(doc))
	case opts.selection != nil:
		doc.SetSelection(opts.selection.resolve(doc))
		selectionOnly = true
	}

	orch := formatter.New(formatter.Options{
		Status:    e.console.statusFor(path, opts.verbose),
		Logger:    e.logger,
		Workspace: e.workspace,
	})
	res, err := orch.Format(ctx, doc, e.profile, selectionOnly)
	if err != nil {
		return err
	}
	if res.Skipped {
		e.console.skip(path, res.SkipReason)
		return nil
	}

	if opts.stdout {
		e.console.printf("%s", doc.Text())
		return nil
	}
	if !res.Changed {
		e.console.ok(path, "unchanged")
		return nil
	}
	if err := doc.Save(); err != nil {
		return err
	}

	detail := "reformatted"
	if opts.caret != nil || opts.selection != nil {
		detail = fmt.Sprintf("reformatted, caret %s (%s)", formatPoint(doc.OffsetToPoint(res.Caret)), res.Restore)
	}
	e.console.ok(path, detail)
	return nil
}
