package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"reqdef/internal/diagfmt"
	"reqdef/internal/driver"
	"reqdef/internal/observ"
	"reqdef/internal/version"
	"reqdef/internal/watch"
)

var checkCmd = &cobra.Command{
	Use:   "check [paths...]",
	Short: "Report duplicated requirement IDs and titles in markdown files",
	Long: `check analyzes every markdown file under the given paths (default: the
current directory) and prints duplicated requirement IDs and titles.
The exit status is 1 when a conflict is found or a file cannot be read.`,
	RunE: runCheck,
}

func init() {
	registerCheckFlags(checkCmd)
}

func registerCheckFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("format", "pretty", "output format (pretty|short|json|yaml|sarif)")
	f.Int("jobs", 0, "files analyzed in parallel (0 = number of CPUs)")
	f.String("ui", "auto", "progress display (auto|on|off)")
	f.Bool("watch", false, "re-check when files change")
	f.Bool("show-info", false, "also list requirements without conflicts")
	f.Bool("related", true, "show the location a conflict refers to")
	f.String("path-mode", "auto", "path display (auto|absolute|relative|basename)")
	f.Int("max", 0, "maximum findings in json/yaml output (0 = no limit)")
	f.Duration("debounce", 300*time.Millisecond, "watch debounce interval")
}

// checkRun is one configured check invocation.
type checkRun struct {
	s       *settings
	targets []string
	format  diagfmt.Format
	fmtOpts diagfmt.Options
	jobs    int
	useTUI  bool
	timings bool
	out     io.Writer
	errOut  io.Writer
}

func runCheck(cmd *cobra.Command, args []string) error {
	start := "."
	if len(args) > 0 {
		start = args[0]
		if info, err := os.Stat(start); err == nil && !info.IsDir() {
			start = filepath.Dir(start)
		}
	}
	s, err := loadSettings(cmd, start)
	if err != nil {
		return err
	}
	run, err := newCheckRun(cmd, s, args)
	if err != nil {
		return err
	}

	hasErrors, err := run.once(cmd.Context())
	if err != nil {
		return err
	}
	if s.v.GetBool("watch") {
		return run.watch(cmd.Context(), s.v.GetDuration("debounce"))
	}
	if hasErrors {
		cmd.SilenceUsage = true
		cmd.SilenceErrors = true
		return errConflicts
	}
	return nil
}

func newCheckRun(cmd *cobra.Command, s *settings, args []string) (*checkRun, error) {
	format, err := diagfmt.ParseFormat(strings.ToLower(s.v.GetString("format")))
	if err != nil {
		return nil, err
	}
	pathMode, ok := diagfmt.ParsePathMode(s.v.GetString("path-mode"))
	if !ok {
		return nil, fmt.Errorf("invalid --path-mode %q (expected auto|absolute|relative|basename)", s.v.GetString("path-mode"))
	}
	mode, err := readUIMode(s.v.GetString("ui"))
	if err != nil {
		return nil, err
	}
	jobs := s.v.GetInt("jobs")
	if jobs < 0 {
		return nil, fmt.Errorf("--jobs must not be negative")
	}
	if jobs == 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	baseDir, _ := os.Getwd()
	useColor := s.useColor()
	color.NoColor = !useColor
	includeInfo := s.v.GetBool("show-info")

	return &checkRun{
		s:       s,
		targets: args,
		format:  format,
		fmtOpts: diagfmt.Options{
			Pretty: diagfmt.PrettyOpts{
				Color:       useColor,
				PathMode:    pathMode,
				BaseDir:     baseDir,
				IncludeInfo: includeInfo,
				ShowRelated: s.v.GetBool("related"),
			},
			JSON: diagfmt.JSONOpts{
				PathMode:    pathMode,
				BaseDir:     baseDir,
				Max:         s.v.GetInt("max"),
				IncludeInfo: includeInfo,
			},
			Sarif: diagfmt.SarifRunMeta{
				ToolName:       "reqdef",
				ToolVersion:    version.Version,
				InvocationArgs: os.Args[1:],
			},
		},
		jobs:    jobs,
		useTUI:  shouldUseTUI(mode, isMachineFormat(format)) && !s.v.GetBool("watch"),
		timings: s.v.GetBool("timings"),
		out:     cmd.OutOrStdout(),
		errOut:  cmd.ErrOrStderr(),
	}, nil
}

func isMachineFormat(f diagfmt.Format) bool {
	switch f {
	case diagfmt.FormatJSON, diagfmt.FormatYAML, diagfmt.FormatSARIF:
		return true
	}
	return false
}

// once discovers, analyzes and renders. It reports whether any conflict or
// read failure was found.
func (r *checkRun) once(ctx context.Context) (bool, error) {
	timer := observ.NewTimer()

	endDiscover := timer.Track("discover")
	files, err := driver.Discover(r.targets, r.s.cfg)
	if err != nil {
		return false, err
	}
	endDiscover(fmt.Sprintf("%d files", len(files)))
	r.s.logger.Debug("discovered files", "count", len(files))

	opts := driver.CheckOptions{Config: r.s.cfg, Jobs: r.jobs}
	endAnalyze := timer.Track("analyze")
	var result *driver.CheckResult
	if r.useTUI && len(files) > 0 {
		display := make([]string, len(files))
		for i, f := range files {
			display[i] = diagfmt.FormatPath(f, r.fmtOpts.Pretty.PathMode, r.fmtOpts.Pretty.BaseDir)
		}
		result, err = runCheckWithUI(ctx, "reqdef check", files, display, opts)
	} else {
		result, err = driver.CheckFiles(ctx, files, opts)
	}
	if err != nil {
		return false, err
	}
	endAnalyze("")

	for _, fr := range result.ReadErrors() {
		fmt.Fprintf(r.errOut, "error: %s: %v\n", fr.Path, fr.Err)
	}

	endRender := timer.Track("render")
	if err := diagfmt.Write(r.out, r.format, result.Report(), r.fmtOpts); err != nil {
		return false, fmt.Errorf("failed to write output: %w", err)
	}
	endRender("")

	if r.timings {
		if err := timer.WriteSummary(r.errOut); err != nil {
			return false, err
		}
	}
	return result.HasErrors(), nil
}

// watch re-runs the check after every batch of changes until ctx is done.
func (r *checkRun) watch(ctx context.Context, debounce time.Duration) error {
	targets := r.targets
	if len(targets) == 0 {
		targets = []string{"."}
	}
	w, err := watch.New(targets, watch.Config{
		Debounce: debounce,
		Include:  r.s.cfg.Files.Include,
		Exclude:  r.s.cfg.Files.Exclude,
	}, r.s.logger)
	if err != nil {
		return err
	}
	defer w.Close()
	if err := w.Start(ctx); err != nil {
		return err
	}
	fmt.Fprintln(r.errOut, "watching for changes (Ctrl+C to stop)")
	for {
		select {
		case <-ctx.Done():
			return nil
		case batch, ok := <-w.Events():
			if !ok {
				return nil
			}
			for _, c := range batch {
				r.s.logger.Debug("file changed", "path", c.Path, "removed", c.Removed)
			}
			if _, err := r.once(ctx); err != nil {
				if errors.Is(err, context.Canceled) {
					return nil
				}
				fmt.Fprintf(r.errOut, "error: %v\n", err)
			}
		}
	}
}
