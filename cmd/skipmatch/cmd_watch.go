package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"skipmatch/internal/runner"
)

var (
	watchCases       string
	watchConcurrency int
)

var watchCmd = &cobra.Command{
	Use:   "watch [file.go]",
	Short: "Re-resolve and re-run cases whenever files change",
	Long: `Watches a Go source file and a yaml case file. On every change the
decision procedure is re-resolved from the source and the full case batch
is re-run, so editing either file gives immediate feedback. Runs until
interrupted.

Example:
  skipmatch watch candidate.go --cases cases.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&watchCases, "cases", "", "yaml case file to run on each change (required)")
	watchCmd.Flags().IntVar(&watchConcurrency, "concurrency", 4, "parallel case evaluations")
	_ = watchCmd.MarkFlagRequired("cases")
}

func runWatch(cmd *cobra.Command, args []string) error {
	source := args[0]
	w := effectiveWindow()

	rerun := func() {
		cases, err := runner.LoadCases(watchCases)
		if err != nil {
			fmt.Fprintf(os.Stderr, "case load failed: %v\n", err)
			return
		}
		pred, name, err := buildPredicate(w, source)
		if err != nil {
			fmt.Fprintf(os.Stderr, "resolve failed: %v\n", err)
			return
		}
		results, err := runner.New(pred,
			runner.WithConcurrency(watchConcurrency),
			runner.WithSource(name),
		).Run(cmd.Context(), cases)
		if err != nil {
			fmt.Fprintf(os.Stderr, "run failed: %v\n", err)
			return
		}
		renderResults(watchCases, name, results)
	}

	// Initial run before the first change
	rerun()

	watcher, err := runner.NewWatcher(func(path string) {
		logger.Debug("change detected", zap.String("path", path))
		rerun()
	}, source, watchCases)
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Start(cmd.Context()); err != nil {
		return err
	}
	defer watcher.Stop()

	fmt.Printf("watching %s and %s (ctrl-c to stop)\n", source, watchCases)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	select {
	case <-sigCh:
	case <-cmd.Context().Done():
	}

	stats := watcher.Stats()
	logger.Info("watch stopped",
		zap.Int("changes", stats.Changes),
		zap.Int("runs", stats.Triggered))
	return nil
}
