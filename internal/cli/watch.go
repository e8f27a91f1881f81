package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mvp-joe/dice/internal/extractor"
	"github.com/mvp-joe/dice/internal/watcher"
)

var watchFirstFlag bool

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch FILE LOCATOR [ARG...]",
	Short: "Re-run an extracted function whenever its file changes",
	Long: `Watch behaves like extract, then keeps running: every time FILE is saved
the function is extracted again and re-invoked with the same arguments.

Failures after the first run are printed and watching continues.
Press Ctrl+C to stop.

Examples:
  dice watch app.js "nextName()"
  dice watch names.go Sum 2 3
`,
	Args: cobra.MinimumNArgs(2),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().BoolVar(&watchFirstFlag, "first", false, "Use the first match when the name is ambiguous")
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ex, err := newExtractor(cfg, watchFirstFlag)
	if err != nil {
		return err
	}
	defer ex.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fw, err := watcher.NewFileWatcher([]string{args[0]}, cfg.Watch.Debounce, logger)
	if err != nil {
		return fmt.Errorf("failed to watch %s: %w", args[0], err)
	}
	defer fw.Stop()

	return watchAndInvoke(ctx, ex, fw, cmd.OutOrStdout(), cmd.ErrOrStderr(), args[0], args[1], parseArgs(args[2:]))
}

// watchAndInvoke runs the function once, failing if that run fails, then
// re-runs it on every change until ctx is done.
func watchAndInvoke(ctx context.Context, ex *extractor.Extractor, fw watcher.FileWatcher, out, errOut io.Writer, file, locator string, args []any) error {
	if err := extractAndInvoke(ctx, ex, out, file, locator, args); err != nil {
		return err
	}

	changes := make(chan struct{}, 1)
	err := fw.Start(ctx, func(files []string) {
		logger.Debug("Source changed", zap.Strings("files", files))
		select {
		case changes <- struct{}{}:
		default:
		}
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(errOut, "Watching %s for changes...\n", file)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-changes:
			if err := extractAndInvoke(ctx, ex, out, file, locator, args); err != nil {
				fmt.Fprintf(errOut, "error: %v\n", err)
			}
		}
	}
}
