package driver

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"runtime"
	"time"
	"unicode/utf8"

	"github.com/leapstack-labs/dialectshift/pkg/rewrite"
	"golang.org/x/sync/errgroup"
)

// Driver converts files with a rewrite pipeline.
type Driver struct {
	Pipeline *rewrite.Pipeline
	Checker  SyntaxChecker // nil disables the syntax check
	Logger   *slog.Logger
	Workers  int  // <= 0 means GOMAXPROCS
	DryRun   bool // compute diffs instead of writing files
}

// New creates a Driver that checks converted files with esbuild.
func New(p *rewrite.Pipeline, logger *slog.Logger) *Driver {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Driver{
		Pipeline: p,
		Checker:  ESBuildChecker{},
		Logger:   logger,
	}
}

// Run converts the target entries under dir. A file that is missing or
// fails to convert is recorded in the report and does not stop the
// others. The returned error is non-nil only when the targets cannot be
// resolved or ctx is cancelled.
func (d *Driver) Run(ctx context.Context, dir string, entries []string) (*Report, error) {
	report := newReport(dir, d.DryRun)
	logger := d.logger().With("run_id", report.RunID)

	targets, unmatched, err := ResolveTargets(dir, entries)
	if err != nil {
		return nil, err
	}
	for _, pattern := range unmatched {
		logger.Warn("target pattern matched no files", "pattern", pattern)
	}

	workers := d.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	logger.Debug("converting files", "dir", dir, "files", len(targets), "workers", workers, "dry_run", d.DryRun)

	report.Files = make([]FileResult, len(targets))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, target := range targets {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			report.Files[i] = d.convert(target, logger)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report.Duration = time.Since(report.StartedAt)
	s := report.Summary()
	logger.Info("conversion finished",
		"updated", s.Updated(),
		"skipped", s.Skipped,
		"missing", s.Missing,
		"failed", s.Failed,
		"duration", report.Duration)
	return report, nil
}

func (d *Driver) logger() *slog.Logger {
	if d.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return d.Logger
}

// convert runs the pipeline over one file.
func (d *Driver) convert(target Target, logger *slog.Logger) FileResult {
	res := FileResult{Name: target.Name, Path: target.Path}
	logger = logger.With("file", target.Name)

	fail := func(err error) FileResult {
		res.Status = StatusFailed
		res.Error = err.Error()
		logger.Error("conversion failed", "error", err)
		return res
	}

	data, err := os.ReadFile(target.Path)
	if errors.Is(err, fs.ErrNotExist) {
		res.Status = StatusMissing
		logger.Warn("target file not found", "path", target.Path)
		return res
	}
	if err != nil {
		return fail(fmt.Errorf("failed to read %s: %w", target.Path, err))
	}
	if !utf8.Valid(data) {
		return fail(fmt.Errorf("%s is not valid UTF-8", target.Path))
	}

	unit := &SourceUnit{Path: target.Path, OriginalText: string(data)}
	out := d.Pipeline.Run(unit.OriginalText)
	unit.CurrentText = out.Text
	unit.Changed = out.Text != unit.OriginalText

	res.Findings = out.Findings
	res.Applied = out.Applied
	res.Status = statusFor(unit, out.Findings)
	for _, f := range out.Findings {
		logger.Debug("finding", "rule", f.RuleID, "severity", f.Severity, "pos", f.Pos, "message", f.Message)
	}
	if !unit.Changed {
		logger.Debug("no changes")
		return res
	}

	if err := d.check(unit, logger); err != nil {
		return fail(err)
	}

	if d.DryRun {
		diff, err := unifiedDiff(target.Name, unit.OriginalText, unit.CurrentText)
		if err != nil {
			return fail(fmt.Errorf("failed to diff %s: %w", target.Name, err))
		}
		res.Diff = diff
		return res
	}

	if err := writeFile(target.Path, unit.CurrentText); err != nil {
		return fail(err)
	}
	res.Written = true
	logger.Info("file converted", "status", res.Status, "rules", len(res.Applied), "findings", len(res.Findings))
	return res
}

// check verifies the converted text still parses. A source that did not
// parse before conversion is not held to that.
func (d *Driver) check(unit *SourceUnit, logger *slog.Logger) error {
	if d.Checker == nil {
		return nil
	}
	if err := d.Checker.Check(unit.Path, unit.OriginalText); err != nil {
		logger.Debug("original does not parse; skipping syntax check", "error", err)
		return nil
	}
	if err := d.Checker.Check(unit.Path, unit.CurrentText); err != nil {
		return fmt.Errorf("converted output does not parse: %w", err)
	}
	return nil
}
