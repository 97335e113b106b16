package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"reqdef/internal/config"
	"reqdef/internal/project"
)

const envPrefix = "REQDEF"

// settings is the resolved invocation: flags win over REQDEF_* environment
// variables, which win over reqdef.toml, which wins over defaults.
type settings struct {
	v          *viper.Viper
	cfg        config.Config
	configPath string
	logger     *slog.Logger
}

func newViper(cmd *cobra.Command) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return nil, fmt.Errorf("failed to bind flags: %w", err)
	}
	return v, nil
}

// loadSettings resolves configuration for cmd. startDir anchors the upward
// search for reqdef.toml when --config is not given.
func loadSettings(cmd *cobra.Command, startDir string) (*settings, error) {
	v, err := newViper(cmd)
	if err != nil {
		return nil, err
	}
	logger, err := newLogger(v)
	if err != nil {
		return nil, err
	}

	var (
		cfg  config.Config
		path string
	)
	if explicit := v.GetString("config"); explicit != "" {
		cfg, err = config.Load(explicit)
		path = explicit
	} else {
		if startDir == "" {
			startDir = "."
		}
		cfg, path, err = project.LoadConfig(startDir)
	}
	if err != nil {
		return nil, err
	}
	if path != "" {
		logger.Debug("using config file", "path", path)
	}
	if expr := v.GetString("regexid"); expr != "" {
		cfg = cfg.WithRegexID(expr)
		if _, err := cfg.IDPattern(); err != nil {
			return nil, fmt.Errorf("invalid --regexid: %w", err)
		}
	}
	return &settings{v: v, cfg: cfg, configPath: path, logger: logger}, nil
}

func newLogger(v *viper.Viper) (*slog.Logger, error) {
	level, err := parseLevel(v.GetString("log-level"))
	if err != nil {
		return nil, err
	}
	if v.GetBool("verbose") {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return slog.New(handler), nil
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "", "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("invalid --log-level %q (expected debug|info|warn|error)", s)
}

func (s *settings) useColor() bool {
	switch strings.ToLower(s.v.GetString("color")) {
	case "on", "always":
		return true
	case "off", "never":
		return false
	}
	return isTerminal(os.Stdout)
}
