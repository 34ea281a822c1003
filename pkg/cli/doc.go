// Package cli provides the cstyle command-line interface.
//
// # Overview
//
// This package implements the `cstyle` tool: it expands path arguments into
// C files, merges configuration and hands the files to the rule engine, then
// renders the findings and maps them to an exit status.
//
// # Commands
//
// check: Check files and directories once
//
//	cstyle check src include
//	cstyle check --format=record --max-severity=warning src
//	cstyle check --rules=header-guard-missing,header-guard-name-mismatch include
//
// watch: Re-check whenever a .c or .h file changes
//
//	cstyle watch src
//
// rules: List rules grouped by category
//
//	cstyle rules
//
// init: Write a default .cstyle.yaml
//
//	cstyle init --dir .
//
// # Exit Status
//
//	0    no finding at or above --max-severity
//	1    at least one finding at or above --max-severity
//	2    usage or configuration error (unknown rule, unreadable path, bad flag)
//	130  interrupted
//
// # Configuration
//
// Settings are merged in this order, later layers winning:
//
//  1. .cstyle.yaml in the working directory, or --config
//  2. CSTYLE_* environment variables (see pkg/config)
//  3. command-line flags
//
// # File Discovery
//
// Directory arguments are walked recursively. Only .c and .h files are kept;
// hidden, vendor and third_party directories and paths matching the ignore
// patterns of the configuration are skipped. File arguments are always
// checked when they are C files.
//
// # Related Packages
//
//   - pkg/linter: Rule engine and configuration file
//   - pkg/report: Output formats and exit codes
package cli
