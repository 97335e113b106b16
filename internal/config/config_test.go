package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reqdef/internal/requirement"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	re, err := cfg.IDPattern()
	require.NoError(t, err)
	assert.Same(t, requirement.DefaultIDPattern, re)
	assert.Equal(t, "MyFX", cfg.RecordOptions().ExtensionField)
	assert.Equal(t, "yaml", cfg.RecordOptions().FenceLanguage)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
[requirement]
regexid = '^req: REQ-(\d+)-(.*)-(\d+)'
extension_field = "Owner"

[files]
include = ["docs/**/*.md"]
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, `^req: REQ-(\d+)-(.*)-(\d+)`, cfg.Requirement.RegexID)
	assert.Equal(t, "Owner", cfg.Requirement.ExtensionField)
	assert.Equal(t, "yaml", cfg.Requirement.FenceLanguage)
	assert.Equal(t, []string{"docs/**/*.md"}, cfg.Files.Include)
	assert.Equal(t, Default().Files.Exclude, cfg.Files.Exclude)

	re, err := cfg.IDPattern()
	require.NoError(t, err)
	assert.True(t, re.MatchString("req: REQ-1-a-2"))
}

func TestLoadRejectsBadPattern(t *testing.T) {
	path := writeConfig(t, "[requirement]\nregexid = \"(\"\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "regexid")
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := writeConfig(t, "[requirement]\nregex = \"x\"\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requirement.regex")
}

func TestLoadRejectsMalformedTOML(t *testing.T) {
	_, err := Load(writeConfig(t, "[requirement\n"))
	require.Error(t, err)
}

func TestIDPatternFallsBack(t *testing.T) {
	re, err := Default().WithRegexID("([").IDPattern()
	require.Error(t, err)
	assert.Same(t, requirement.DefaultIDPattern, re)
}
