// Command skipmatch decides whether two digit-run encoded strings can denote
// the same letter sequence, runs case batches, and resolves user-supplied
// decision procedures from evaluated Go source.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"skipmatch/internal/config"
	"skipmatch/internal/logging"
)

// errExitFailure signals a non-zero exit after the command has already
// reported its result on stdout or stderr.
var errExitFailure = errors.New("exit status 1")

var (
	// Global flags
	verbose   bool
	workspace string
	window    int

	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd represents the base command.
var rootCmd = &cobra.Command{
	Use:   "skipmatch",
	Short: "skipmatch - digit-run string equivalence checker",
	Long: `skipmatch decides whether two strings over [a-z0-9] can encode the same
letter sequence once every digit run is read as a count of skipped
characters, with runs splittable into up to three summed pieces.

Beyond single checks it evaluates yaml case batches, journals verdicts to
SQLite, and can resolve a candidate decision procedure from a Go source
file via a sandboxed interpreter and drive it against the same cases.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Initialize logger
		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		if workspace == "" {
			workspace, err = os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to resolve workspace: %w", err)
			}
		}
		if err := logging.Initialize(workspace); err != nil {
			logger.Warn("file logging unavailable", zap.Error(err))
		}

		cfg, err = config.LoadOrDefault(workspace)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		logging.Boot("config loaded, window=%d", cfg.Matcher.Window)
		return nil
	},
}

// effectiveWindow prefers the --window flag over the configured value.
func effectiveWindow() int {
	if window > 0 {
		return window
	}
	return cfg.Matcher.Window
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&workspace, "workspace", "", "workspace directory (default: current directory)")
	rootCmd.PersistentFlags().IntVar(&window, "window", 0, "digit look-ahead window (default: config value)")

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(discoverCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(historyCmd)
}

func main() {
	err := rootCmd.Execute()

	// Cobra skips PersistentPostRun when RunE fails, so flush and close
	// the loggers here where every path passes through.
	if logger != nil {
		_ = logger.Sync()
	}
	logging.CloseAll()

	if err != nil {
		if !errors.Is(err, errExitFailure) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}
