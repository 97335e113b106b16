// Package driver checks sets of markdown files in parallel.
package driver

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"reqdef/internal/analysis"
	"reqdef/internal/config"
	"reqdef/internal/diag"
	"reqdef/internal/diagfmt"
	"reqdef/internal/document"
	"reqdef/internal/project"
)

// CheckOptions configures CheckFiles.
type CheckOptions struct {
	Config config.Config
	// Jobs bounds concurrent files. Zero uses GOMAXPROCS.
	Jobs     int
	Progress ProgressSink
}

// FileResult is the outcome of checking one file. Err is set when the file
// could not be read; Findings is then empty.
type FileResult struct {
	Path     string
	Doc      *document.Document
	Findings []diag.Finding
	Err      error
	Elapsed  time.Duration
}

// CheckResult holds one FileResult per input file, in input order.
type CheckResult struct {
	Files []FileResult
}

// Discover lists the markdown files under targets using the file globs of cfg.
func Discover(targets []string, cfg config.Config) ([]string, error) {
	if len(targets) == 0 {
		targets = []string{"."}
	}
	return project.ListMarkdownFiles(targets, cfg.Files.Include, cfg.Files.Exclude)
}

// CheckFiles analyzes every file independently. Read failures are recorded
// per file; the returned error is reserved for an invalid configuration or
// cancellation.
func CheckFiles(ctx context.Context, files []string, opts CheckOptions) (*CheckResult, error) {
	passOpts, err := analysis.OptionsFromConfig(opts.Config)
	if err != nil {
		return nil, fmt.Errorf("invalid requirement.regexid: %w", err)
	}
	results := make([]FileResult, len(files))
	if len(files) == 0 {
		return &CheckResult{Files: results}, nil
	}
	for _, path := range files {
		emit(opts.Progress, Event{File: path, Stage: StageRead, Status: StatusQueued})
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	// each goroutine owns results[i]
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))
	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = checkFile(path, passOpts, opts.Progress)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &CheckResult{Files: results}, nil
}

func checkFile(path string, opts analysis.Options, sink ProgressSink) FileResult {
	start := time.Now()
	emit(sink, Event{File: path, Stage: StageRead, Status: StatusWorking})
	doc, err := project.ReadDocument(path)
	if err != nil {
		elapsed := time.Since(start)
		emit(sink, Event{File: path, Stage: StageRead, Status: StatusError, Err: err, Elapsed: elapsed})
		return FileResult{Path: path, Err: err, Elapsed: elapsed}
	}

	emit(sink, Event{File: path, Stage: StageAnalyze, Status: StatusWorking})
	findings := analysis.ReanalyzeWith(doc, opts)
	elapsed := time.Since(start)
	errs := 0
	for _, f := range findings {
		if f.IsError() {
			errs++
		}
	}
	emit(sink, Event{
		File:     path,
		Stage:    StageAnalyze,
		Status:   StatusDone,
		Elapsed:  elapsed,
		Findings: len(findings),
		Errors:   errs,
	})
	return FileResult{Path: path, Doc: doc, Findings: findings, Elapsed: elapsed}
}

// Report converts the readable files into a renderer report, sorted by path.
func (r *CheckResult) Report() diagfmt.Report {
	report := diagfmt.Report{Files: make([]diagfmt.FileReport, 0, len(r.Files))}
	for _, f := range r.Files {
		if f.Err != nil || f.Doc == nil {
			continue
		}
		report.Files = append(report.Files, diagfmt.NewFileReport(f.Path, f.Doc, f.Findings))
	}
	report.Sort()
	return report
}

// ReadErrors returns the files that could not be read.
func (r *CheckResult) ReadErrors() []FileResult {
	var out []FileResult
	for _, f := range r.Files {
		if f.Err != nil {
			out = append(out, f)
		}
	}
	return out
}

// HasErrors reports whether any file failed to read or has an error finding.
func (r *CheckResult) HasErrors() bool {
	for _, f := range r.Files {
		if f.Err != nil {
			return true
		}
		for _, d := range f.Findings {
			if d.IsError() {
				return true
			}
		}
	}
	return false
}
