package linter

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultConfigName is the file written by "cstyle init"
const DefaultConfigName = ".cstyle.yaml"

// Config represents the checker configuration file
type Config struct {
	Version            string            `yaml:"version"`
	Rules              RulesConfig       `yaml:"rules"`
	Output             OutputConfig      `yaml:"output"`
	Ignore             []string          `yaml:"ignore"`
	HeaderGuard        HeaderGuardConfig `yaml:"header_guard"`
	Includes           IncludesConfig    `yaml:"includes"`
	ForbiddenFunctions map[string]string `yaml:"forbidden_functions,omitempty"`
}

// RulesConfig selects rules and overrides their severity
type RulesConfig struct {
	Enable   []string          `yaml:"enable"` // empty enables every rule
	Disable  []string          `yaml:"disable"`
	Severity map[string]string `yaml:"severity"`
}

// OutputConfig configures rendering and the exit-code floor
type OutputConfig struct {
	Format      string `yaml:"format"`
	MaxSeverity string `yaml:"max_severity"`
}

// HeaderGuardConfig configures the expected guard macro name. The name is
// the header path relative to Root (else the working directory, else the
// directory argument it was found under), minus the first matching prefix in
// StripPrefixes, upper-cased with every other character replaced by '_',
// followed by Suffix.
type HeaderGuardConfig struct {
	Root          string   `yaml:"root"`
	StripPrefixes []string `yaml:"strip_prefixes"`
	Suffix        string   `yaml:"suffix"`
}

// IncludesConfig configures include tiers and the symbol index
type IncludesConfig struct {
	ThirdPartyPrefixes []string          `yaml:"third_party_prefixes"`
	SymbolIndex        map[string]string `yaml:"symbol_index,omitempty"` // symbol -> header
}

// DefaultConfig returns the default checker configuration
func DefaultConfig() *Config {
	return &Config{
		Version: "v1",
		Rules: RulesConfig{
			Enable:   []string{},
			Disable:  []string{},
			Severity: make(map[string]string),
		},
		Output: OutputConfig{
			Format:      "text",
			MaxSeverity: string(SeverityError),
		},
		Ignore: []string{"vendor/**", "third_party/**", "build/**"},
		HeaderGuard: HeaderGuardConfig{
			Suffix: "_",
		},
		Includes: IncludesConfig{
			ThirdPartyPrefixes: []string{},
		},
	}
}

// Validate checks values that do not depend on the rule registry
func (c *Config) Validate() error {
	switch c.Version {
	case "", "v1":
	default:
		return &ConfigError{Field: "version", Value: c.Version, Err: fmt.Errorf("only v1 is supported")}
	}
	if c.Output.MaxSeverity != "" {
		if _, err := ParseSeverity(c.Output.MaxSeverity); err != nil {
			return &ConfigError{Field: "output.max_severity", Value: c.Output.MaxSeverity, Err: ErrUnknownSeverity}
		}
	}
	for rule, sev := range c.Rules.Severity {
		if _, err := ParseSeverity(sev); err != nil {
			return &ConfigError{Field: "rules.severity." + rule, Value: sev, Err: ErrUnknownSeverity}
		}
	}
	for _, pattern := range c.Ignore {
		if _, err := filepath.Match(pattern, ""); err != nil {
			return &ConfigError{Field: "ignore", Value: pattern, Err: err}
		}
	}
	return nil
}

// SeverityOverride returns the configured severity for rule, if any
func (c *Config) SeverityOverride(rule string) (Severity, bool) {
	if c == nil {
		return "", false
	}
	raw, ok := c.Rules.Severity[rule]
	if !ok {
		return "", false
	}
	sev, err := ParseSeverity(raw)
	if err != nil {
		return "", false
	}
	return sev, true
}

// Fingerprint returns a stable hash of the configuration. Results computed
// under different fingerprints are never shared.
func (c *Config) Fingerprint() string {
	data, err := yaml.Marshal(c)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:8])
}

// LoadConfig loads configuration from a file. Keys missing from the file
// keep their default values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigError{Field: "config file", Value: path, Err: err}
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, &ConfigError{Field: "config file", Value: path, Err: err}
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return config, nil
}

// LoadConfigFromDir searches for config file in directory
func LoadConfigFromDir(dir string) (*Config, error) {
	configNames := []string{DefaultConfigName, ".cstyle.yml", "cstyle.yaml", "cstyle.yml"}

	for _, name := range configNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return LoadConfig(path)
		}
	}

	// Return default if no config found
	return DefaultConfig(), nil
}

// SaveConfig saves configuration to a file
func SaveConfig(config *Config, path string) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
