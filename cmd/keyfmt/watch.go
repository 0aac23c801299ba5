package main

import (
	"context"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dshills/keyfmt/internal/config"
	"github.com/dshills/keyfmt/internal/formatter"
	"github.com/dshills/keyfmt/internal/language"
	"github.com/dshills/keyfmt/internal/session"
	"github.com/dshills/keyfmt/internal/watcher"
)

var watchCmd = &cobra.Command{
	Use:   "watch [flags] [dir...]",
	Short: "Format files as they are created and saved",
	Long: `Watch follows the given directories (default: the workspace) and formats
source files when they appear, if the profile formats on open, and after they
are saved, if the profile formats on save. Formatted files are saved again;
that save is not formatted a second time.`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().Duration("debounce", watcher.DefaultDebounceDelay, "wait this long after the last change to a file")
	watchCmd.Flags().Int("jobs", 0, "formatter processes to run at once (default from config)")
	watchCmd.Flags().Bool("open-existing", false, "treat files already present as opened")
	watchCmd.Flags().StringSlice("skip-dir", []string{"node_modules", "vendor", "build"}, "directory names not to descend into")
	watchCmd.Flags().BoolP("verbose", "v", false, "report every handled event")
}

func runWatch(cmd *cobra.Command, args []string) error {
	e, err := loadEnv(cmd, loadOptions{overrides: true})
	if err != nil {
		return err
	}
	if err := e.profile.Validate(); err != nil {
		return err
	}
	if !e.profile.FormatOnOpen && !e.profile.FormatOnSave {
		e.console.printf("%s profile %q formats neither on open nor on save\n", skipColor.Sprint("warning:"), e.profile.Name)
	}

	dirs := args
	if len(dirs) == 0 {
		dirs = []string{e.workspace}
	}

	debounce, _ := cmd.Flags().GetDuration("debounce")
	skipDirs, _ := cmd.Flags().GetStringSlice("skip-dir")
	jobs, _ := cmd.Flags().GetInt("jobs")
	if jobs < 1 {
		jobs = e.cfg.Jobs
	}
	openExisting, _ := cmd.Flags().GetBool("open-existing")
	verbose, _ := cmd.Flags().GetBool("verbose")

	fsw, err := watcher.NewFSNotifyWatcher(
		watcher.WithSkipDirs(skipDirs...),
		watcher.WithFilter(watcher.ExtensionFilter(language.Extensions()...)),
	)
	if err != nil {
		return err
	}
	for _, dir := range dirs {
		if err := fsw.Add(dir); err != nil {
			_ = fsw.Close()
			return err
		}
	}
	e.logger.Info("watching", "dirs", len(fsw.Dirs()))
	e.logger.Debug("watched directories", "dirs", fsw.Dirs())

	w := watcher.NewDebouncedWatcher(fsw, debounce)
	defer w.Close()

	profile := e.profile
	sess := session.New(session.Options{
		Formatter: formatter.New(formatter.Options{
			Logger:    e.logger,
			Workspace: e.workspace,
		}),
		Profile: func() config.Profile { return profile },
		Logger:  e.logger,
		Jobs:    jobs,
		OnOutcome: func(out session.Outcome) {
			reportOutcome(e.console, out, verbose)
		},
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if openExisting {
		for _, dir := range dirs {
			openTree(ctx, sess, dir, skipDirs, func(out session.Outcome) {
				reportOutcome(e.console, out, verbose)
			})
		}
	}

	e.console.printf("%s %s (profile %q, Ctrl-C to stop)\n", okColor.Sprint("watching"), strings.Join(dirs, ", "), profile.Name)
	err = sess.Run(ctx, w)
	if n := w.PendingCount(); n > 0 {
		e.logger.Debug("pending changes dropped", "count", n)
	}
	if n := fsw.Dropped(); n > 0 {
		e.logger.Warn("events dropped while busy", "count", n)
	}
	e.logger.Info("stopped watching", "documents", sess.Documents().Count())
	return err
}

// openTree hands every formattable file under root to the session as opened.
func openTree(ctx context.Context, sess *session.Session, root string, skipDirs []string, report func(session.Outcome)) {
	skip := make(map[string]struct{}, len(skipDirs))
	for _, d := range skipDirs {
		skip[d] = struct{}{}
	}

	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || ctx.Err() != nil {
			return nil
		}
		if d.IsDir() {
			name := d.Name()
			if _, ok := skip[name]; ok || (path != root && strings.HasPrefix(name, ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		if _, ok := language.Detect(path); ok {
			report(sess.Opened(ctx, path))
		}
		return nil
	})
}

func reportOutcome(c *console, out session.Outcome, verbose bool) {
	switch {
	case out.Err != nil:
		c.fail(out.Path, out.Err)
	case out.Saved:
		c.ok(out.Path, "reformatted on "+out.Trigger.String())
	case !verbose:
	case out.Suppressed:
		c.skip(out.Path, "own save")
	case out.Disabled:
		c.skip(out.Path, "not formatted on "+out.Trigger.String())
	case out.Result != nil && out.Result.Skipped:
		c.skip(out.Path, out.Result.SkipReason)
	default:
		c.ok(out.Path, "unchanged")
	}
}
