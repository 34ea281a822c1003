package cli

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/cstyle/pkg/config"
	"github.com/platinummonkey/cstyle/pkg/linter"
	"github.com/platinummonkey/cstyle/pkg/report"
)

func TestNewRootCommand(t *testing.T) {
	env, err := config.LoadConfig()
	require.NoError(t, err)

	root := NewRootCommand(env, os.Stdout, os.Stderr)
	assert.Equal(t, "cstyle", root.Name())

	expectedCommands := []string{"check", "watch", "rules", "init"}
	for _, name := range expectedCommands {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, cmd.Name())
	}

	check, _, err := root.Find([]string{"check"})
	require.NoError(t, err)
	for _, flag := range []string{"rules", "disable", "format", "max-severity", "config", "workers", "color", "metrics-file"} {
		assert.NotNil(t, check.Flags().Lookup(flag), "missing flag %s", flag)
	}
	assert.NotNil(t, root.PersistentFlags().Lookup("log-level"))
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, report.ExitClean, exitCode(nil))
	assert.Equal(t, report.ExitFindings, exitCode(&ExitError{Code: report.ExitFindings}))
	assert.Equal(t, report.ExitCancelled, exitCode(&ExitError{Code: report.ExitCancelled}))
	assert.Equal(t, report.ExitUsage, exitCode(usageError(errors.New("bad flag"))))
	assert.Equal(t, report.ExitUsage, exitCode(errors.New("anything else")))
	assert.Nil(t, usageError(nil))

	cause := &linter.ConfigError{Field: "rule", Value: "x", Err: linter.ErrUnknownRule}
	err := usageError(cause)
	assert.True(t, errors.Is(err, linter.ErrUnknownRule))
	assert.True(t, linter.IsConfigError(err))
	assert.Equal(t, cause.Error(), err.Error())

	assert.Equal(t, "exit status 1", (&ExitError{Code: 1}).Error())
}

func TestRulesCommand(t *testing.T) {
	code, stdout, _ := run(t.Context(), "rules")
	require.Equal(t, report.ExitClean, code)

	assert.Contains(t, stdout, "Available rules (16):")
	assert.Contains(t, stdout, "Headers Rules:")
	assert.Contains(t, stdout, "Macros Rules:")
	assert.Contains(t, stdout, "macro-parenthesization")
	assert.Contains(t, stdout, "[warning]")
	assert.Less(t, strings.Index(stdout, "Headers Rules:"), strings.Index(stdout, "Includes Rules:"))
}

func TestInitCommand(t *testing.T) {
	dir := t.TempDir()

	code, stdout, _ := run(t.Context(), "init", "--dir", dir)
	require.Equal(t, report.ExitClean, code)
	assert.Contains(t, stdout, "Wrote ")

	cfg, err := linter.LoadConfig(filepath.Join(dir, linter.DefaultConfigName))
	require.NoError(t, err)
	assert.Equal(t, linter.DefaultConfig().Fingerprint(), cfg.Fingerprint())

	code, _, stderr := run(t.Context(), "init", "--dir", dir)
	assert.Equal(t, report.ExitUsage, code)
	assert.Contains(t, stderr, "already exists")

	code, _, _ = run(t.Context(), "init", "--dir", dir, "--force")
	assert.Equal(t, report.ExitClean, code)
}
