// Package linter runs C coding-standard rules over scanned source files.
//
// # Overview
//
// A RuleRegistry holds the known rules. It is an ordinary value built by the
// caller, so several configurations can coexist in one process. The Engine
// takes the rules a Config enables from a registry and applies them to files:
//
//	scan (csource.Tokenize) -> facts (csource.ExtractFacts) -> rules -> findings
//
// Files are independent and are checked in parallel on a bounded errgroup.
// Within a file the stages run in order.
//
// # Usage Example
//
//	registry := linter.NewRuleRegistry()
//	rules.RegisterDefaultRules(registry)
//
//	config, err := linter.LoadConfigFromDir(".")
//	if err != nil {
//		return err
//	}
//
//	engine, err := linter.NewEngine(config, registry,
//		linter.WithWorkers(8),
//		linter.WithLogger(logger),
//	)
//	if err != nil {
//		return err // *linter.ConfigError for unknown rule IDs
//	}
//
//	result := engine.Run(ctx, inputs)
//	fmt.Printf("%d findings in %d files\n", len(result.Findings), result.Files)
//
// # Fault Isolation
//
// A rule that panics produces one internal-error finding naming the rule.
// The other rules and files are unaffected.
//
// # Configuration
//
// .cstyle.yaml:
//
//	version: v1
//	rules:
//	  disable: [include-grouping]
//	  severity:
//	    typedef-pointer: error
//	output:
//	  format: record
//	  max_severity: error
//	header_guard:
//	  strip_prefixes: [include/]
//	includes:
//	  third_party_prefixes: [openssl/, zlib.h]
//
// # Related Packages
//
//   - pkg/csource: Scanner and structural facts
//   - pkg/linter/rules: Built-in rules
//   - pkg/report: Rendering and exit codes
package linter
