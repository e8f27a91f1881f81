package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mvp-joe/dice/internal/extractor"
)

var extractFirstFlag bool

// extractCmd represents the extract command
var extractCmd = &cobra.Command{
	Use:   "extract FILE LOCATOR [ARG...]",
	Short: "Extract a function from a file and invoke it",
	Long: `Extract locates a single named function in FILE, loads it on its own and
invokes it with the given arguments. The result is printed as JSON.

Each ARG is parsed as JSON; anything that is not valid JSON is passed as a
plain string.

Examples:
  # Call nextName() from an AngularJS controller
  dice extract app.js "nextName()"

  # Pass arguments
  dice extract names.go Sum 2 3
  dice extract forms.js greet '"Dice"'

  # Take the first of several same-named functions
  dice extract dupes.js pick --first
`,
	Args: cobra.MinimumNArgs(2),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)
	extractCmd.Flags().BoolVar(&extractFirstFlag, "first", false, "Use the first match when the name is ambiguous")
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ex, err := newExtractor(cfg, extractFirstFlag)
	if err != nil {
		return err
	}
	defer ex.Close()

	return extractAndInvoke(cmd.Context(), ex, cmd.OutOrStdout(), args[0], args[1], parseArgs(args[2:]))
}

// extractAndInvoke locates the function, invokes it and writes the JSON result to out.
func extractAndInvoke(ctx context.Context, ex *extractor.Extractor, out io.Writer, file, locator string, args []any) error {
	if ctx == nil {
		ctx = context.Background()
	}

	h, err := ex.Locate(ctx, file, locator)
	if err != nil {
		return err
	}

	logger.Debug("Invoking extracted function",
		zap.String("name", h.Name()),
		zap.String("language", h.Language()),
		zap.Int("args", len(args)))

	result, err := h.InvokeContext(ctx, args...)
	if err != nil {
		return fmt.Errorf("%s() failed: %w", h.Name(), err)
	}

	encoded, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode result of %s(): %w", h.Name(), err)
	}
	_, err = fmt.Fprintln(out, string(encoded))
	return err
}

// parseArgs decodes each argument as JSON, falling back to the raw string.
func parseArgs(raw []string) []any {
	args := make([]any, 0, len(raw))
	for _, r := range raw {
		var v any
		if err := json.Unmarshal([]byte(r), &v); err != nil {
			v = r
		}
		args = append(args, v)
	}
	return args
}
