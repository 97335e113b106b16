package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"reqdef/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "reqdef",
	Short: "Requirement definition checker for markdown documents",
	Long: `reqdef finds requirement IDs and fenced requirement blocks in markdown,
reports duplicated IDs and titles, and serves the same analysis to editors
over the Language Server Protocol.`,
}

// errConflicts is returned after findings were printed; it only sets the exit status.
var errConflicts = errors.New("requirement conflicts found")

// main registers subcommands and persistent flags, then executes the root
// command. Any error exits with status 1.
func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(outlineCmd)
	rootCmd.AddCommand(lspCmd)
	rootCmd.AddCommand(versionCmd)

	registerGlobalFlags(rootCmd)
	pf := rootCmd.PersistentFlags()
	pf.String("cpu-profile", "", "write a CPU profile to file")
	pf.String("mem-profile", "", "write a heap profile to file")
	pf.String("runtime-trace", "", "write a runtime trace to file")
	rootCmd.PersistentPreRunE = startProfiling

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stopProfiling()
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func registerGlobalFlags(cmd *cobra.Command) {
	pf := cmd.PersistentFlags()
	pf.String("color", "auto", "colorize output (auto|on|off)")
	pf.String("config", "", "path to reqdef.toml (default: search upwards from the first path)")
	pf.String("regexid", "", "override the requirement ID pattern (three capture groups)")
	pf.String("log-level", "warn", "log level (debug|info|warn|error)")
	pf.BoolP("verbose", "v", false, "shortcut for --log-level=debug")
	pf.Bool("timings", false, "show timing information")
}

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
