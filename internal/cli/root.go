package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/mvp-joe/dice/internal/config"
	"github.com/mvp-joe/dice/internal/extractor"
)

var (
	cfgFile string
	verbose bool
	logger  = zap.NewNop()
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "dice",
	Short: "dice - cut single functions out of source files and run them",
	Long: `dice isolates one named function from a JavaScript or Go source file
and invokes it on its own, without loading the module around it.

Configuration is read from .dice/config.yml in the current directory
(or --config), with DICE_* environment variables taking precedence.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		l, err := config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .dice/config.yml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Bind flags to viper
	viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

// loadConfig reads --config if given, otherwise .dice/ under the working directory.
func loadConfig() (*config.Config, error) {
	if cfgFile != "" {
		return config.NewFileLoader(cfgFile).Load()
	}
	return config.LoadConfig()
}

// newExtractor builds an extractor from cfg. first forces the first-match policy.
func newExtractor(cfg *config.Config, first bool) (*extractor.Extractor, error) {
	policy, err := extractor.ParsePolicy(strings.ToLower(cfg.Extract.Ambiguity))
	if err != nil {
		return nil, err
	}
	if first {
		policy = extractor.PolicyFirst
	}

	return extractor.New(
		extractor.WithPolicy(policy),
		extractor.WithTimeout(cfg.Extract.Timeout),
		extractor.WithCache(cfg.Extract.CacheSize),
		extractor.WithLogger(logger),
	), nil
}
