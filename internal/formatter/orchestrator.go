package formatter

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"fortio.org/safecast"

	"github.com/dshills/keyfmt/internal/anchor"
	"github.com/dshills/keyfmt/internal/config"
	"github.com/dshills/keyfmt/internal/engine/buffer"
	"github.com/dshills/keyfmt/internal/logging"
	"github.com/dshills/keyfmt/internal/process"
)

// RestoreMethod is how the caret was placed after formatting.
type RestoreMethod uint8

const (
	// RestoreNone means the view was left alone.
	RestoreNone RestoreMethod = iota
	// RestoreAnchor means the anchor fingerprint matched.
	RestoreAnchor
	// RestoreLineColumn means the recorded line and column were used.
	RestoreLineColumn
)

func (m RestoreMethod) String() string {
	switch m {
	case RestoreAnchor:
		return "anchor"
	case RestoreLineColumn:
		return "line-column"
	default:
		return "none"
	}
}

// Result describes a completed or skipped format operation.
type Result struct {
	RequestID string
	// Skipped is set when the document was not eligible. Nothing else is set.
	Skipped    bool
	SkipReason string
	// Changed reports whether the document was modified.
	Changed bool
	Restore RestoreMethod
	// Caret is the caret offset after restoring the view.
	Caret    buffer.ByteOffset
	Duration time.Duration
}

// Options configures an Orchestrator.
type Options struct {
	// Runner launches the formatter. Defaults to process.NewExec().
	Runner process.Runner
	// Status receives progress messages. Defaults to a no-op.
	Status StatusBar
	Logger *logging.Logger
	// Workspace is substituted for %SOLUTION%.
	Workspace string
	// TempDir holds transient files. Defaults to os.TempDir().
	TempDir string
}

// Orchestrator sequences format operations. It holds no per-document state;
// callers serialize operations on the same document.
type Orchestrator struct {
	runner    process.Runner
	status    StatusBar
	logger    *logging.Logger
	workspace string
	tempDir   string
}

// New creates an Orchestrator.
func New(opts Options) *Orchestrator {
	o := &Orchestrator{
		runner:    opts.Runner,
		status:    opts.Status,
		logger:    opts.Logger.WithComponent("formatter"),
		workspace: opts.Workspace,
		tempDir:   opts.TempDir,
	}
	if o.runner == nil {
		o.runner = process.NewExec()
	}
	if o.status == nil {
		o.status = nopStatus{}
	}
	return o
}

// CanFormat reports whether doc is eligible for formatting with profile.
func (o *Orchestrator) CanFormat(doc Document, profile config.Profile, selectionOnly bool) bool {
	return CanFormat(doc, profile, selectionOnly).OK
}

// Format formats doc, or its selection when selectionOnly is set, with
// profile. An ineligible document yields a skipped Result and no error.
// Failures are returned as *OpError; a splice already applied is kept.
func (o *Orchestrator) Format(ctx context.Context, doc Document, profile config.Profile, selectionOnly bool) (res *Result, err error) {
	stage := StageEligible
	log := o.logger
	var path string
	defer func() {
		if r := recover(); r != nil {
			res, err = nil, o.fail(log, stage, path, "", fmt.Errorf("panic: %v", r))
		}
	}()

	elig := CanFormat(doc, profile, selectionOnly)
	if !elig.OK {
		o.logger.Debug("format skipped", "reason", elig.Reason)
		return &Result{Skipped: true, SkipReason: elig.Reason}, nil
	}
	path = doc.Path()

	start := time.Now()
	stage = StageSnapshotting
	req := snapshot(doc, elig.Language, selectionOnly)
	log = o.logger.With("request_id", req.ID, "path", path)

	log.Debug("format started", "stage", stage, "target", req.Target.String(), "language", req.Language.Tag)

	stage = StageInvoking
	o.status.SetText(StatusFormatting)
	o.status.SetBusy(true)
	defer o.status.SetBusy(false)

	tmpPath, err := o.writeTransient(path, req.Text)
	if err != nil {
		return nil, o.fail(log, stage, path, "", err)
	}
	defer o.removeTransient(log, tmpPath)

	args, err := BuildArgs(profile, varsFor(doc, profile, req.Language.Tag, tmpPath, o.workspace), selectionOnly)
	if err != nil {
		return nil, o.fail(log, stage, path, "", err)
	}

	cmd := process.Command{Program: profile.Program, Args: args}
	if path != "" {
		cmd.Dir = filepath.Dir(path)
	}
	log.Debug("running formatter", "stage", stage, "command", cmd.String())

	run, err := o.runner.Run(ctx, cmd)
	if err != nil {
		status := ""
		if errors.Is(err, ErrLaunch) {
			status = StatusLaunchFailed
		}
		return nil, o.fail(log, stage, path, status, err)
	}
	if !run.Success() {
		exitErr := &ExitError{Code: run.ExitCode, Signaled: !run.ExitedCleanly, Diagnostic: run.Diagnostic()}
		return nil, o.fail(log, stage, path, "", exitErr)
	}

	stage = StageSplicing
	formatted, err := o.readOutput(profile, tmpPath, run)
	if err != nil {
		return nil, o.fail(log, stage, path, "", err)
	}
	if formatted != req.Text {
		if le, ok := uniformLineEnding(req.Text); ok {
			formatted = normalizeNewlines(formatted, le)
		}
	}

	res = &Result{RequestID: req.ID}
	if formatted != req.Text {
		if err := doc.Replace(req.Target.Start, req.Target.End, formatted); err != nil {
			return nil, o.fail(log, stage, path, "", err)
		}
		res.Changed = true

		stage = StageRestoringView
		res.Restore, res.Caret = o.restoreView(log, doc, req)
	}

	res.Duration = time.Since(start)
	o.status.SetText(StatusSuccess)
	log.Info("document formatted",
		"changed", res.Changed,
		"restore", res.Restore.String(),
		"formatter_ms", run.Duration.Milliseconds(),
		"duration_ms", res.Duration.Milliseconds())
	return res, nil
}

func (o *Orchestrator) fail(log *logging.Logger, stage Stage, path, status string, err error) error {
	if status == "" {
		status = statusFailedPrefix + err.Error()
	}
	o.status.SetText(status)
	log.Error("format failed", "stage", stage, "error", err)
	return &OpError{Stage: stage, Path: path, Err: err}
}

// writeTransient stores text in a new temp file carrying the document's
// extension, so formatters that sniff the name see the right language.
func (o *Orchestrator) writeTransient(docPath, text string) (string, error) {
	f, err := os.CreateTemp(o.tempDir, "keyfmt-*"+filepath.Ext(docPath))
	if err != nil {
		return "", fmt.Errorf("create transient file: %w", err)
	}
	name := f.Name()

	if _, err := f.WriteString(text); err != nil {
		_ = f.Close()
		_ = os.Remove(name)
		return "", fmt.Errorf("write transient file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(name)
		return "", fmt.Errorf("write transient file: %w", err)
	}
	return name, nil
}

func (o *Orchestrator) removeTransient(log *logging.Logger, path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Debug("transient file not removed", "file", path, "error", err)
	}
}

func (o *Orchestrator) readOutput(profile config.Profile, tmpPath string, run *process.Result) (string, error) {
	if profile.Output == config.OutputStdout {
		return string(run.Stdout), nil
	}
	data, err := os.ReadFile(tmpPath)
	if err != nil {
		return "", fmt.Errorf("read formatted output: %w", err)
	}
	return string(data), nil
}

// uniformLineEnding reports the line ending s uses throughout. Text without
// breaks is LF. ok is false when s mixes LF and CRLF.
func uniformLineEnding(s string) (le buffer.LineEnding, ok bool) {
	breaks := strings.Count(s, "\n")
	switch crlf := strings.Count(s, "\r\n"); crlf {
	case 0:
		return buffer.LineEndingLF, true
	case breaks:
		return buffer.LineEndingCRLF, true
	}
	return buffer.LineEndingLF, false
}

// normalizeNewlines converts line breaks in s to le.
func normalizeNewlines(s string, le buffer.LineEnding) string {
	if !strings.Contains(s, "\n") {
		return s
	}
	lf := strings.ReplaceAll(s, "\r\n", "\n")
	if le == buffer.LineEndingCRLF {
		return strings.ReplaceAll(lf, "\n", "\r\n")
	}
	return lf
}

// restoreView scrolls back and relocates the caret. Failures here never fail
// the operation.
func (o *Orchestrator) restoreView(log *logging.Logger, doc Document, req *Request) (method RestoreMethod, caret buffer.ByteOffset) {
	defer func() {
		if r := recover(); r != nil {
			log.Debug("view not restored", "stage", StageRestoringView, "panic", r)
			method = RestoreNone
		}
	}()

	doc.ScrollTo(req.View.TopLine)

	start := req.Target.Start
	if m := anchor.Decode(doc.TextRange(start, doc.Len()), req.Anchor); m.Found {
		caret = start + buffer.ByteOffset(m.Offset)
		doc.SetCaret(caret)
		return RestoreAnchor, caret
	}

	p := lineColumnFallback(req.View, doc.LineLen(req.View.Caret.Line))
	doc.SetCaretPoint(p)
	log.Debug("anchor not found, restored line and column", "point", p.String())
	return RestoreLineColumn, doc.PointToOffset(p)
}

// lineColumnFallback keeps the recorded line. When the line got shorter and
// the recorded column lies past its new end, the column moves left by the
// amount the line shrank.
func lineColumnFallback(view ViewState, newLen int) buffer.Point {
	col := int(view.Caret.Column)
	if delta := newLen - view.CaretLineLen; delta < 0 && col > newLen {
		col += delta
	}
	col = max(0, min(col, newLen))

	c, err := safecast.Conv[uint32](col)
	if err != nil {
		c = 0
	}
	return buffer.Point{Line: view.Caret.Line, Column: c}
}
