package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/platinummonkey/cstyle/pkg/linter"
)

func newRulesCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "List the available rules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listRules(a.stdout, newRegistry())
		},
	}
}

func listRules(w io.Writer, registry *linter.RuleRegistry) error {
	fmt.Fprintf(w, "Available rules (%d):\n\n", registry.Len())

	for _, cat := range linter.Categories {
		rules := registry.GetRulesByCategory(cat)
		if len(rules) == 0 {
			continue
		}

		// Capitalize category name
		catName := string(cat)
		catName = strings.ToUpper(catName[:1]) + catName[1:]

		fmt.Fprintf(w, "%s Rules:\n", catName)
		for _, rule := range rules {
			fmt.Fprintf(w, "  - %-28s [%s]\n    %s\n",
				rule.Name(),
				rule.Severity(),
				rule.Description(),
			)
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	return nil
}
