package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/gobwas/glob"
	"github.com/spf13/cobra"
)

var listMatchFlag string

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list FILE",
	Short: "List the functions dice can extract from a file",
	Long: `List prints every function in FILE that can be extracted, in source order,
with its kind and line range.

Names are filtered by list.include from the config file, and further by
--match when given.

Examples:
  dice list app.js
  dice list names.go --match 'Sp*'
`,
	Args: cobra.ExactArgs(1),
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().StringVar(&listMatchFlag, "match", "", "Only list names matching this glob")
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	include, err := compileGlobs(cfg.List.Include)
	if err != nil {
		return err
	}

	var match glob.Glob
	if listMatchFlag != "" {
		match, err = glob.Compile(listMatchFlag)
		if err != nil {
			return fmt.Errorf("invalid --match pattern %q: %w", listMatchFlag, err)
		}
	}

	ex, err := newExtractor(cfg, false)
	if err != nil {
		return err
	}
	defer ex.Close()

	defs, err := ex.List(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	for _, def := range defs {
		if !matchesAny(include, def.Name) {
			continue
		}
		if match != nil && !match.Match(def.Name) {
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%d-%d\n", def.Name, def.Kind, def.StartLine, def.EndLine)
	}
	return w.Flush()
}

func compileGlobs(patterns []string) ([]glob.Glob, error) {
	globs := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid include pattern %q: %w", p, err)
		}
		globs = append(globs, g)
	}
	return globs, nil
}

func matchesAny(globs []glob.Glob, name string) bool {
	for _, g := range globs {
		if g.Match(name) {
			return true
		}
	}
	return false
}
