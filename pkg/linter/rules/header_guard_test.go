package rules

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/cstyle/pkg/csource"
	"github.com/platinummonkey/cstyle/pkg/linter"
)

func TestExpectedGuardName(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)

	testCases := []struct {
		name     string
		path     string
		baseDir  string
		cfg      linter.HeaderGuardConfig
		expected string
	}{
		{"nested path", "foo/bar/baz.h", "", linter.HeaderGuardConfig{Suffix: "_"}, "FOO_BAR_BAZ_H_"},
		{"dot prefix and dash", "./foo/bar-baz.h", "", linter.HeaderGuardConfig{Suffix: "_"}, "FOO_BAR_BAZ_H_"},
		{"no suffix", "foo.h", "", linter.HeaderGuardConfig{}, "FOO_H"},
		{"root", "src/net/sock.h", "", linter.HeaderGuardConfig{Root: "src", Suffix: "_"}, "NET_SOCK_H_"},
		{"outside root", "other/x.h", "", linter.HeaderGuardConfig{Root: "src", Suffix: "_"}, "OTHER_X_H_"},
		{"strip prefix", "include/proj/api.h", "", linter.HeaderGuardConfig{StripPrefixes: []string{"lib/", "include/"}, Suffix: "_"}, "PROJ_API_H_"},
		{"absolute outside working dir", "/abs/include/x.h", "", linter.HeaderGuardConfig{StripPrefixes: []string{"abs/include/"}, Suffix: "_"}, "X_H_"},
		{"absolute inside working dir", filepath.Join(wd, "foo", "bar", "baz.h"), "", linter.HeaderGuardConfig{Suffix: "_"}, "FOO_BAR_BAZ_H_"},
		{"parent dir argument", "../proj/foo/bar/baz.h", "../proj", linter.HeaderGuardConfig{Suffix: "_"}, "FOO_BAR_BAZ_H_"},
		{"absolute dir argument", "/work/proj/foo/bar/baz.h", "/work/proj", linter.HeaderGuardConfig{Suffix: "_"}, "FOO_BAR_BAZ_H_"},
		{"parent path without dir argument", "../proj/foo/bar/baz.h", "", linter.HeaderGuardConfig{Suffix: "_"}, "PROJ_FOO_BAR_BAZ_H_"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, ExpectedGuardName(tc.path, tc.baseDir, tc.cfg))
		})
	}
}

func TestHeaderGuardNameRule_PathsOutsideWorkingDir(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	content := "#ifndef FOO_BAR_BAZ_H_\n#define FOO_BAR_BAZ_H_\n#endif\n"

	assert.Empty(t, runRule(NewHeaderGuardNameRule(), filepath.Join(wd, "foo/bar/baz.h"), content))

	file := csource.NewSourceFile("../proj/foo/bar/baz.h", []byte(content))
	ctx := &linter.LintContext{FilePath: file.Path, BaseDir: "../proj", Config: linter.DefaultConfig()}
	assert.Empty(t, NewHeaderGuardNameRule().Check(file, csource.ExtractFacts(file), ctx))
}

func TestHeaderGuardMissingRule(t *testing.T) {
	rule := NewHeaderGuardMissingRule()

	findings := runRule(rule, "a.h", "int x;\n")
	require.Len(t, findings, 1)
	assert.Equal(t, 1, findings[0].Line)
	assert.Equal(t, 1, findings[0].Column)
	assert.Contains(t, findings[0].Message, "A_H_")

	findings = runRule(rule, "a.h", "// comment\n#pragma once\nint x;\n")
	require.Len(t, findings, 1)
	assert.Equal(t, 2, findings[0].Line)
	assert.Contains(t, findings[0].Message, "#pragma once")

	assert.Empty(t, runRule(rule, "a.h", "#ifndef A_H_\n#define A_H_\n#endif\n"))
	assert.Empty(t, runRule(rule, "a.c", "int x;\n"))
}

func TestHeaderGuardNameRule_Config(t *testing.T) {
	config := linter.DefaultConfig()
	config.HeaderGuard.StripPrefixes = []string{"include/"}
	content := "#ifndef PROJ_API_H_\n#define PROJ_API_H_\n#endif\n"

	assert.Empty(t, runRuleWithConfig(NewHeaderGuardNameRule(), "include/proj/api.h", content, config))
	assert.Len(t, runRule(NewHeaderGuardNameRule(), "include/proj/api.h", content), 1)
}

func TestHeaderGuardMismatchRule(t *testing.T) {
	rule := NewHeaderGuardMismatchRule()

	testCases := []struct {
		name    string
		path    string
		content string
		line    int
		message string
	}{
		{"different define", "a.h", "#ifndef A_H_\n#define B_H_\n#endif\n", 2, "does not match"},
		{"never closed", "a.h", "#ifndef A_H_\n#define A_H_\nint x;\n", 1, "never closed"},
		{"code after endif", "a.h", "#ifndef A_H_\n#define A_H_\n#endif\nint x;\n", 4, "after the #endif"},
		{"defined twice", "a.h", "#ifndef A_H_\n#define A_H_\n#define A_H_\n#endif\n", 2, "defined 2 times"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			findings := runRule(rule, tc.path, tc.content)
			require.Len(t, findings, 1)
			assert.Equal(t, tc.line, findings[0].Line)
			assert.Contains(t, findings[0].Message, tc.message)

			// guards are only checked in headers
			assert.Empty(t, runRule(rule, "a.c", tc.content))
		})
	}

	findings := runRule(rule, "a.h", "#ifndef A_H_\n#define B_H_\n#endif\n")
	assert.Equal(t, 9, findings[0].Column)

	assert.Empty(t, runRule(rule, "a.h", "#ifndef A_H_\n#define A_H_\nint x;\n#endif /* A_H_ */\n"))
}

func TestPragmaOnceWithGuardRule(t *testing.T) {
	content := "#pragma once\n#ifndef A_H_\n#define A_H_\n#endif\n"

	findings := runAll(t, "a.h", content)
	require.Len(t, findings, 1)
	assert.Equal(t, "pragma-once-with-guard", findings[0].RuleID)
	assert.Equal(t, linter.SeverityInfo, findings[0].Severity)
	assert.Equal(t, 1, findings[0].Line)

	assert.Empty(t, runRule(NewPragmaOnceWithGuardRule(), "a.h", "#ifndef A_H_\n#define A_H_\n#endif\n"))
}
