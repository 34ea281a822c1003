package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/platinummonkey/cstyle/pkg/config"
	"github.com/platinummonkey/cstyle/pkg/linter"
	"github.com/platinummonkey/cstyle/pkg/linter/rules"
	"github.com/platinummonkey/cstyle/pkg/observability"
)

// app holds state shared by every command of one invocation
type app struct {
	env    *config.Config
	stdout io.Writer
	stderr io.Writer
	logger *observability.Logger

	logLevel  string
	logFormat string
}

// NewRootCommand builds the cstyle command tree. env supplies defaults for
// flags; output goes to stdout and logs to stderr.
func NewRootCommand(env *config.Config, stdout, stderr io.Writer) *cobra.Command {
	a := &app{
		env:    env,
		stdout: stdout,
		stderr: stderr,
		logger: observability.NopLogger(),
	}

	root := &cobra.Command{
		Use:   "cstyle",
		Short: "C coding-standard conformance checker",
		Long: `cstyle checks C sources and headers against a fixed set of coding-standard
rules: header guards, include order, macro hygiene, initializers, typedefs and
forbidden functions. Findings are reported with their file position.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.initLogger()
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.PersistentFlags().StringVar(&a.logLevel, "log-level", strings.ToLower(env.Observability.LogLevel.String()), "Log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&a.logFormat, "log-format", string(env.Observability.LogFormat), "Log format (text, json)")

	root.AddCommand(
		newCheckCommand(a),
		newWatchCommand(a),
		newRulesCommand(a),
		newInitCommand(a),
	)
	return root
}

func (a *app) initLogger() error {
	level, err := observability.ParseLogLevel(a.logLevel)
	if err != nil {
		return usageError(err)
	}

	format := observability.LogFormat(strings.ToLower(a.logFormat))
	switch format {
	case observability.TextFormat, observability.JSONFormat:
	default:
		return usageError(fmt.Errorf("invalid log format %q (must be text or json)", a.logFormat))
	}

	a.logger = observability.NewLoggerWithFormat(level, a.stderr, format)
	return nil
}

// newRegistry returns a registry holding every built-in rule
func newRegistry() *linter.RuleRegistry {
	registry := linter.NewRuleRegistry()
	rules.RegisterDefaultRules(registry)
	return registry
}

// Execute runs the command line args and returns the process exit code
func Execute(args []string) int {
	return ExecuteContext(context.Background(), args, os.Stdout, os.Stderr)
}

// ExecuteContext is Execute with explicit context and output streams
func ExecuteContext(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	env, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCode(usageError(err))
	}

	root := NewRootCommand(env, stdout, stderr)
	root.SetArgs(args)

	err = root.ExecuteContext(ctx)
	var exitErr *ExitError
	if err != nil && !(errors.As(err, &exitErr) && exitErr.Err == nil) {
		fmt.Fprintf(stderr, "Error: %v\n", err)
	}
	return exitCode(err)
}
