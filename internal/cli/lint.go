package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/foamlayout/pkg/faces"
)

// lintCommand creates the lint command for checking faces documents.
func (c *CLI) lintCommand() *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "lint [faces.json...]",
		Short: "Check faces documents for problems the builder would repair",
		Long: `Check faces documents for problems the builder would repair.

The builder never rejects a document: bad coordinates are dropped, short loops
are skipped and a missing outer loop yields the default block. Lint reports
each of those repairs so tracer bugs do not go unnoticed.

Exits non-zero when any document has issues.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			failed := 0
			for _, path := range args {
				ok, err := c.lintFile(path, quiet)
				if err != nil {
					return err
				}
				if !ok {
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d document(s) have issues", failed, len(args))
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "only print failing documents")

	return cmd
}

func (c *CLI) lintFile(path string, quiet bool) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("read %s: %w", path, err)
	}
	issues, err := faces.Lint(data)
	if err != nil {
		printError("%s: %v", path, err)
		return false, nil
	}

	if len(issues) == 0 {
		if !quiet {
			printSuccess("%s", path)
		}
		return true, nil
	}

	printWarning("%s: %s", path, plural(len(issues), "issue", "issues"))
	for _, issue := range issues {
		printDetail("%s", issue)
	}
	return false, nil
}
