package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/cstyle/pkg/report"
)

const mulSource = "#define mul(x, y) x * y\n"

const mulRecord = "mul.c:1:9: warning macro-parenthesization macro mul: parameters x, y and its expansion are not parenthesized\n"

// writeFiles creates files under dir, creating parent directories as needed
func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
}

// runIn executes the command line in a fresh working directory holding files
func runIn(t *testing.T, files map[string]string, args ...string) (int, string, string) {
	t.Helper()
	dir := t.TempDir()
	writeFiles(t, dir, files)
	t.Chdir(dir)
	return run(context.Background(), args...)
}

func run(ctx context.Context, args ...string) (int, string, string) {
	var stdout, stderr bytes.Buffer
	code := ExecuteContext(ctx, args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestCheck_Clean(t *testing.T) {
	code, stdout, stderr := runIn(t, map[string]string{
		"main.c": "int main(void) { return 0; }\n",
	}, "check", ".")

	assert.Equal(t, report.ExitClean, code)
	assert.Equal(t, "0 findings (0 errors, 0 warnings, 0 info) in 1 file\n", stdout)
	assert.Empty(t, stderr)
}

func TestCheck_MacroScenario(t *testing.T) {
	files := map[string]string{"mul.c": mulSource}

	code, stdout, _ := runIn(t, files, "check", "--format=record", "mul.c")
	assert.Equal(t, report.ExitClean, code, "warnings are below the default floor")
	assert.Equal(t, mulRecord, stdout)

	code, stdout, _ = runIn(t, files, "check", "--format=record", "--max-severity=warning", "mul.c")
	assert.Equal(t, report.ExitFindings, code)
	assert.Equal(t, mulRecord, stdout)
}

func TestCheck_HeaderGuardScenario(t *testing.T) {
	correct := "#ifndef FOO_BAR_BAZ_H_\n#define FOO_BAR_BAZ_H_\n\nint baz(void);\n\n#endif\n"
	code, stdout, _ := runIn(t, map[string]string{"foo/bar/baz.h": correct}, "check", "--format=record", "foo")
	assert.Equal(t, report.ExitClean, code)
	assert.Empty(t, stdout)

	misnamed := "#ifndef BAZ_H_\n#define BAZ_H_\n\nint baz(void);\n\n#endif\n"
	code, stdout, _ = runIn(t, map[string]string{"foo/bar/baz.h": misnamed}, "check", "--format=record", "foo")
	assert.Equal(t, report.ExitFindings, code)
	assert.Contains(t, stdout, "foo/bar/baz.h:1:9: error header-guard-name-mismatch ")
}

func TestCheck_HeaderGuardPathsOutsideProject(t *testing.T) {
	correct := "#ifndef FOO_BAR_BAZ_H_\n#define FOO_BAR_BAZ_H_\n\nint baz(void);\n\n#endif\n"
	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	writeFiles(t, dir, map[string]string{"proj/foo/bar/baz.h": correct})
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "work"), 0755))

	t.Chdir(filepath.Join(dir, "proj"))
	code, stdout, _ := run(context.Background(), "check", "--format=record", filepath.Join(dir, "proj", "foo"))
	assert.Equal(t, report.ExitClean, code, "absolute path below the working directory")
	assert.Empty(t, stdout)

	t.Chdir(filepath.Join(dir, "work"))
	code, stdout, _ = run(context.Background(), "check", "--format=record", "../proj")
	assert.Equal(t, report.ExitClean, code, "directory argument outside the working directory")
	assert.Empty(t, stdout)
}

func TestCheck_Idempotent(t *testing.T) {
	files := map[string]string{
		"b.c":     mulSource,
		"a.c":     "#include <stdio.h>\nint main(void) { char b[8]; gets(b); return 0; }\n",
		"src/c.c": "#define sq(x) x * x\n#define sum(a, b) a + b\n",
	}

	_, first, _ := runIn(t, files, "check", "--format=record", "--workers=4", ".")
	_, second, _ := runIn(t, files, "check", "--format=record", "--workers=1", ".")
	assert.NotEmpty(t, first)
	assert.Equal(t, first, second)
}

func TestCheck_UsageErrors(t *testing.T) {
	files := map[string]string{"mul.c": mulSource}

	testCases := []struct {
		name   string
		args   []string
		stderr string
	}{
		{"unknown rule", []string{"check", "--rules=no-such-rule", "mul.c"}, "unknown rule"},
		{"unknown disabled rule", []string{"check", "--disable=no-such-rule", "mul.c"}, "unknown rule"},
		{"missing path", []string{"check", "missing.c"}, "cannot read missing.c"},
		{"bad format", []string{"check", "--format=xml", "mul.c"}, "unknown output format"},
		{"bad severity", []string{"check", "--max-severity=fatal", "mul.c"}, "unknown severity"},
		{"bad workers", []string{"check", "--workers=0", "mul.c"}, "workers"},
		{"missing config", []string{"check", "--config=none.yaml", "mul.c"}, "none.yaml"},
		{"unknown flag", []string{"check", "--bogus", "mul.c"}, "unknown flag"},
		{"no paths", []string{"check"}, "requires at least 1 arg"},
		{"bad log level", []string{"--log-level=loud", "check", "mul.c"}, "unknown log level"},
		{"unknown command", []string{"lint", "mul.c"}, "unknown command"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			code, stdout, stderr := runIn(t, files, tc.args...)
			assert.Equal(t, report.ExitUsage, code)
			assert.Empty(t, stdout, "no partial output on usage errors")
			assert.Contains(t, stderr, tc.stderr)
		})
	}
}

func TestCheck_RuleSelection(t *testing.T) {
	files := map[string]string{
		"a.c": "#define mul(x, y) x * y\nvoid f(char *d, const char *s) { strcpy(d, s); }\n",
	}

	_, stdout, _ := runIn(t, files, "check", "--format=record", "--rules=forbidden-function", "a.c")
	assert.Equal(t, "a.c:2:34: warning forbidden-function use of insecure function strcpy; consider strlcpy(dest, src, dest_size) or strncpy(dest, src, n)\n", stdout)

	_, stdout, _ = runIn(t, files, "check", "--format=record", "--disable=forbidden-function", "a.c")
	assert.Contains(t, stdout, "macro-parenthesization")
	assert.NotContains(t, stdout, "forbidden-function")
}

func TestCheck_ConfigPrecedence(t *testing.T) {
	files := map[string]string{
		"mul.c":        mulSource,
		".cstyle.yaml": "output:\n  format: json\n  max_severity: warning\n",
	}

	// file only
	code, stdout, _ := runIn(t, files, "check", "mul.c")
	assert.Equal(t, report.ExitFindings, code)
	assert.True(t, json.Valid([]byte(stdout)))

	// environment beats file
	t.Setenv("CSTYLE_FORMAT", "record")
	t.Setenv("CSTYLE_MAX_SEVERITY", "error")
	code, stdout, _ = runIn(t, files, "check", "mul.c")
	assert.Equal(t, report.ExitClean, code)
	assert.Equal(t, mulRecord, stdout)

	// flags beat environment
	code, stdout, _ = runIn(t, files, "check", "--format=github", "--max-severity=info", "mul.c")
	assert.Equal(t, report.ExitFindings, code)
	assert.Contains(t, stdout, "::warning file=mul.c,line=1,col=9::[macro-parenthesization]")
}

func TestCheck_DisabledByConfigFile(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"src/mul.c":  mulSource,
		"style.yaml": "rules:\n  disable:\n    - macro-parenthesization\n",
	})

	code, stdout, _ := run(context.Background(), "check", "--format=record", "--max-severity=info",
		"--config="+filepath.Join(dir, "style.yaml"), filepath.Join(dir, "src"))
	assert.Equal(t, report.ExitClean, code)
	assert.Empty(t, stdout)
}

func TestCheck_Cancelled(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"mul.c": mulSource, "b.c": mulSource})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	code, stdout, _ := run(ctx, "check", filepath.Join(dir, "mul.c"), filepath.Join(dir, "b.c"))
	assert.Equal(t, report.ExitCancelled, code)
	assert.Contains(t, stdout, "run cancelled: 2 files not checked")
}

func TestCheck_MetricsFile(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"mul.c": mulSource})
	metricsPath := filepath.Join(dir, "cstyle.prom")

	code, _, _ := run(context.Background(), "check", "--metrics-file="+metricsPath, filepath.Join(dir, "mul.c"))
	require.Equal(t, report.ExitClean, code)

	data, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "cstyle_files_checked_total")
	assert.Contains(t, string(data), `cstyle_findings_total{rule="macro-parenthesization",severity="warning"} 1`)
}

func TestCheck_SummaryLog(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"mul.c": mulSource})

	code, _, stderr := run(context.Background(), "--log-level=info", "--log-format=json", "check", filepath.Join(dir, "mul.c"))
	require.Equal(t, report.ExitClean, code)
	assert.Contains(t, stderr, `"msg":"check summary"`)
	assert.Contains(t, stderr, `"run_id":`)
}
