package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"reqdef/internal/lsp"
	"reqdef/internal/version"
)

var lspCmd = &cobra.Command{
	Use:          "lsp",
	Short:        "Run the reqdef language server over stdio",
	SilenceUsage: true,
	RunE:         runLSP,
}

func init() {
	lspCmd.Flags().Bool("trace", false, "log every document event at debug level")
	lspCmd.Flags().Int("max-diagnostics", 0, "cap diagnostics per publish (0 = no cap)")
}

func runLSP(cmd *cobra.Command, _ []string) error {
	s, err := loadSettings(cmd, ".")
	if err != nil {
		return err
	}
	server := lsp.NewServer(os.Stdin, os.Stdout, lsp.ServerOptions{
		Config:         s.cfg,
		Logger:         s.logger,
		Trace:          s.v.GetBool("trace"),
		MaxDiagnostics: s.v.GetInt("max-diagnostics"),
		Version:        version.Version,
	})
	if err := server.Run(cmd.Context()); err != nil {
		if errors.Is(err, lsp.ErrExit) {
			return nil
		}
		if errors.Is(err, lsp.ErrExitWithoutShutdown) {
			return fmt.Errorf("lsp exit without shutdown")
		}
		return err
	}
	return nil
}
