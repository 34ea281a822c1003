package linter

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	require.NotNil(t, config)
	assert.Equal(t, "v1", config.Version)
	assert.Empty(t, config.Rules.Enable)
	assert.Equal(t, "text", config.Output.Format)
	assert.Equal(t, "error", config.Output.MaxSeverity)
	assert.Equal(t, "_", config.HeaderGuard.Suffix)
	assert.Contains(t, config.Ignore, "vendor/**")
	assert.NoError(t, config.Validate())
}

func TestLoadConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "cstyle.yaml")

	configContent := `version: v1
rules:
  enable: [header-guard-missing, macro-do-while]
  disable: [macro-do-while]
  severity:
    header-guard-missing: warning
output:
  format: record
header_guard:
  root: src
  strip_prefixes: [include/]
includes:
  third_party_prefixes: [openssl/]
  symbol_index:
    printf: stdio.h
forbidden_functions:
  strcpy: use strlcpy
`
	require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0644))

	config, err := LoadConfig(configPath)
	require.NoError(t, err)

	assert.Equal(t, []string{"header-guard-missing", "macro-do-while"}, config.Rules.Enable)
	assert.Equal(t, []string{"macro-do-while"}, config.Rules.Disable)
	assert.Equal(t, "record", config.Output.Format)
	// keys missing from the file keep their defaults
	assert.Equal(t, "error", config.Output.MaxSeverity)
	assert.Equal(t, "_", config.HeaderGuard.Suffix)
	assert.Equal(t, "src", config.HeaderGuard.Root)
	assert.Equal(t, []string{"include/"}, config.HeaderGuard.StripPrefixes)
	assert.Equal(t, "stdio.h", config.Includes.SymbolIndex["printf"])
	assert.Equal(t, "use strlcpy", config.ForbiddenFunctions["strcpy"])

	sev, ok := config.SeverityOverride("header-guard-missing")
	require.True(t, ok)
	assert.Equal(t, SeverityWarning, sev)
	_, ok = config.SeverityOverride("macro-do-while")
	assert.False(t, ok)
}

func TestLoadConfig_Errors(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name    string
		content string
	}{
		{"invalid yaml", "rules: [unclosed"},
		{"bad version", "version: v9\n"},
		{"bad max severity", "output:\n  max_severity: fatal\n"},
		{"bad severity override", "rules:\n  severity:\n    lex-error: loud\n"},
		{"bad ignore glob", "ignore: ['[']\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(tmpDir, tt.name+".yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))

			_, err := LoadConfig(path)
			require.Error(t, err)
			assert.True(t, IsConfigError(err))
		})
	}

	_, err := LoadConfig(filepath.Join(tmpDir, "missing.yaml"))
	assert.True(t, IsConfigError(err))
}

func TestLoadConfigFromDir(t *testing.T) {
	tmpDir := t.TempDir()

	config, err := LoadConfigFromDir(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), config)

	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, ".cstyle.yml"), []byte("output:\n  format: json\n"), 0644))
	config, err = LoadConfigFromDir(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, "json", config.Output.Format)
}

func TestSaveConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultConfigName)
	config := DefaultConfig()
	config.Rules.Disable = []string{"include-grouping"}

	require.NoError(t, SaveConfig(config, path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, config.Rules.Disable, loaded.Rules.Disable)
	assert.Equal(t, config.Fingerprint(), loaded.Fingerprint())
}

func TestConfigFingerprint(t *testing.T) {
	a := DefaultConfig()
	b := DefaultConfig()
	assert.Equal(t, a.Fingerprint(), b.Fingerprint())

	b.Rules.Disable = []string{"lex-error"}
	assert.NotEqual(t, a.Fingerprint(), b.Fingerprint())
}
