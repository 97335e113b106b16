package config

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"

	"reqdef/internal/requirement"
)

// FileName is the workspace configuration file searched for by the CLI and
// the language server.
const FileName = "reqdef.toml"

// Config is the resolved configuration of one workspace.
type Config struct {
	Requirement RequirementConfig `toml:"requirement"`
	Files       FilesConfig       `toml:"files"`
}

// RequirementConfig controls extraction.
type RequirementConfig struct {
	// RegexID overrides the identifier pattern. Empty means the default.
	RegexID        string `toml:"regexid"`
	ExtensionField string `toml:"extension_field"`
	FenceLanguage  string `toml:"fence_language"`
}

// FilesConfig selects the markdown files `check` looks at.
type FilesConfig struct {
	Include []string `toml:"include"`
	Exclude []string `toml:"exclude"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Requirement: RequirementConfig{
			ExtensionField: requirement.DefaultExtensionField,
			FenceLanguage:  requirement.DefaultFenceLanguage,
		},
		Files: FilesConfig{
			Include: []string{"**/*.md", "**/*.markdown"},
			Exclude: []string{"**/node_modules/**", "**/.git/**"},
		},
	}
}

// Load reads path on top of the defaults. Keys missing from the file keep
// their default values.
func Load(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return Config{}, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if meta.IsDefined("requirement", "regexid") {
		if _, err := requirement.CompileIDPattern(cfg.Requirement.RegexID); err != nil {
			return Config{}, fmt.Errorf("%s: [requirement].regexid: %w", path, err)
		}
	}
	if strings.TrimSpace(cfg.Requirement.ExtensionField) == "" {
		return Config{}, fmt.Errorf("%s: [requirement].extension_field must not be empty", path)
	}
	return cfg, nil
}

// IDPattern compiles the identifier pattern. An invalid override falls back
// to the default pattern and is reported through err.
func (c Config) IDPattern() (*regexp.Regexp, error) {
	re, err := requirement.CompileIDPattern(c.Requirement.RegexID)
	if err != nil {
		return requirement.DefaultIDPattern, err
	}
	return re, nil
}

// RecordOptions returns the options for requirement.ExtractRecords.
func (c Config) RecordOptions() requirement.RecordOptions {
	return requirement.RecordOptions{
		FenceLanguage:  c.Requirement.FenceLanguage,
		ExtensionField: c.Requirement.ExtensionField,
	}
}

// WithRegexID returns a copy using expr as the identifier pattern.
func (c Config) WithRegexID(expr string) Config {
	c.Requirement.RegexID = expr
	return c
}
