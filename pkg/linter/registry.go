package linter

import (
	"fmt"
	"sort"

	"github.com/platinummonkey/cstyle/pkg/csource"
)

// Rule interface that all lint rules must implement. Rules are stateless
// and must not modify the file or its facts, so they may run in any order
// and concurrently.
type Rule interface {
	Name() string
	Category() Category
	Severity() Severity
	Description() string
	Check(file *csource.SourceFile, facts *csource.Facts, ctx *LintContext) []Finding
}

// RuleRegistry manages available lint rules
type RuleRegistry struct {
	rules      map[string]Rule
	duplicates []string
}

// NewRuleRegistry creates a new, empty rule registry
func NewRuleRegistry() *RuleRegistry {
	return &RuleRegistry{
		rules: make(map[string]Rule),
	}
}

// Register adds a rule to the registry. Registering a second rule with the
// same name keeps the first one and is reported by Validate.
func (r *RuleRegistry) Register(rule Rule) {
	if _, exists := r.rules[rule.Name()]; exists {
		r.duplicates = append(r.duplicates, rule.Name())
		return
	}
	r.rules[rule.Name()] = rule
}

// Validate reports registration problems
func (r *RuleRegistry) Validate() error {
	if len(r.duplicates) > 0 {
		return &ConfigError{Field: "rule", Value: r.duplicates[0], Err: ErrDuplicateRule}
	}
	return nil
}

// GetRule retrieves a rule by name
func (r *RuleRegistry) GetRule(name string) (Rule, bool) {
	rule, ok := r.rules[name]
	return rule, ok
}

// Len returns the number of registered rules
func (r *RuleRegistry) Len() int {
	return len(r.rules)
}

// GetAllRules returns all registered rules sorted by name
func (r *RuleRegistry) GetAllRules() []Rule {
	rules := make([]Rule, 0, len(r.rules))
	for _, rule := range r.rules {
		rules = append(rules, rule)
	}
	sort.Slice(rules, func(i, j int) bool {
		return rules[i].Name() < rules[j].Name()
	})
	return rules
}

// GetEnabledRules returns the rules enabled by config, sorted by name.
// Naming an unregistered rule in enable, disable or severity is a
// configuration error.
func (r *RuleRegistry) GetEnabledRules(config *Config) ([]Rule, error) {
	if config == nil {
		return r.GetAllRules(), nil
	}

	if err := r.checkKnown("rules.enable", config.Rules.Enable); err != nil {
		return nil, err
	}
	if err := r.checkKnown("rules.disable", config.Rules.Disable); err != nil {
		return nil, err
	}
	for name := range config.Rules.Severity {
		if _, ok := r.rules[name]; !ok {
			return nil, &ConfigError{Field: "rules.severity", Value: name, Err: ErrUnknownRule}
		}
	}

	disabled := make(map[string]bool, len(config.Rules.Disable))
	for _, name := range config.Rules.Disable {
		disabled[name] = true
	}

	var rules []Rule
	if len(config.Rules.Enable) == 0 {
		rules = r.GetAllRules()
	} else {
		seen := make(map[string]bool)
		for _, name := range config.Rules.Enable {
			if !seen[name] {
				seen[name] = true
				rules = append(rules, r.rules[name])
			}
		}
		sort.Slice(rules, func(i, j int) bool {
			return rules[i].Name() < rules[j].Name()
		})
	}

	enabled := rules[:0]
	for _, rule := range rules {
		if !disabled[rule.Name()] {
			enabled = append(enabled, rule)
		}
	}
	return enabled, nil
}

func (r *RuleRegistry) checkKnown(field string, names []string) error {
	for _, name := range names {
		if _, ok := r.rules[name]; !ok {
			return &ConfigError{Field: field, Value: name, Err: fmt.Errorf("%w (run 'cstyle rules' for the list)", ErrUnknownRule)}
		}
	}
	return nil
}

// GetRulesByCategory returns rules in a specific category, sorted by name
func (r *RuleRegistry) GetRulesByCategory(category Category) []Rule {
	rules := make([]Rule, 0)
	for _, rule := range r.GetAllRules() {
		if rule.Category() == category {
			rules = append(rules, rule)
		}
	}
	return rules
}
