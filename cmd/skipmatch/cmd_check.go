package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"skipmatch/cmd/skipmatch/ui"
	"skipmatch/internal/history"
	"skipmatch/internal/matcher"
)

var (
	checkRecord bool
	checkStrict bool
)

var checkCmd = &cobra.Command{
	Use:   "check [left] [right]",
	Short: "Decide equivalence of one input pair",
	Long: `Runs the equivalence matcher on a single pair of strings and prints the
verdict. Inputs must be lowercase letters and digits only.

Example:
  skipmatch check a5 a00005`,
	Args: cobra.ExactArgs(2),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().BoolVar(&checkRecord, "record", false, "journal the verdict even when history is disabled in config")
	checkCmd.Flags().BoolVar(&checkStrict, "strict", false, "exit non-zero when the pair is not equivalent")
}

func runCheck(cmd *cobra.Command, args []string) error {
	left, right := args[0], args[1]
	w := effectiveWindow()
	m := matcher.New(matcher.WithWindow(w))

	start := time.Now()
	equivalent, err := m.Equivalent(left, right)
	elapsed := time.Since(start)
	if err != nil {
		return err
	}

	styles := ui.DefaultStyles()
	fmt.Printf("%s  %q vs %q  %s\n",
		styles.Verdict(equivalent), left, right,
		styles.Muted.Render(fmt.Sprintf("(window %d, %s)", w, elapsed.Round(time.Microsecond))))

	logger.Debug("check complete",
		zap.String("left", left),
		zap.String("right", right),
		zap.Bool("equivalent", equivalent),
		zap.Int("window", w),
		zap.Duration("elapsed", elapsed))

	if checkRecord || cfg.History.Enabled {
		if err := journalCheck(left, right, equivalent, w, elapsed); err != nil {
			logger.Warn("verdict not journaled", zap.Error(err))
		}
	}

	if checkStrict && !equivalent {
		return errExitFailure
	}
	return nil
}

func journalCheck(left, right string, equivalent bool, w int, elapsed time.Duration) error {
	store, err := history.Open(cfg.History.DatabasePath)
	if err != nil {
		return err
	}
	defer store.Close()
	return store.Record(history.Check{
		Left:       left,
		Right:      right,
		Equivalent: equivalent,
		Window:     w,
		Source:     "matcher",
		Duration:   elapsed,
	})
}
