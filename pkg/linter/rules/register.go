package rules

import "github.com/platinummonkey/cstyle/pkg/linter"

// Registry interface for registering rules
type Registry interface {
	Register(rule linter.Rule)
}

// RegisterDefaultRules registers all built-in rules
func RegisterDefaultRules(registry Registry) {
	// Header rules
	registry.Register(NewHeaderGuardMissingRule())
	registry.Register(NewHeaderGuardNameRule())
	registry.Register(NewHeaderGuardMismatchRule())
	registry.Register(NewPragmaOnceWithGuardRule())

	// Include rules
	registry.Register(NewIncludeOrderRule())
	registry.Register(NewIncludeGroupingRule())
	registry.Register(NewIncludeWhatYouUseRule())
	registry.Register(NewHeaderSelfIncludeRule())

	// Macro rules
	registry.Register(NewMacroParenthesizationRule())
	registry.Register(NewMacroDoWhileRule())

	// Initialization and type rules
	registry.Register(NewDesignatedInitializerRule())
	registry.Register(NewTypedefNameMismatchRule())
	registry.Register(NewTypedefPointerRule())

	// Safety rules
	registry.Register(NewForbiddenFunctionRule())

	// Diagnostics
	registry.Register(NewLexErrorRule())
	registry.Register(NewStructuralAmbiguityRule())
}
