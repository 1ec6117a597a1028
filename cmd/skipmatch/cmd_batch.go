package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"skipmatch/cmd/skipmatch/ui"
	"skipmatch/internal/discovery"
	"skipmatch/internal/history"
	"skipmatch/internal/matcher"
	"skipmatch/internal/runner"
)

var (
	batchRecord      bool
	batchConcurrency int
	batchSource      string
)

var batchCmd = &cobra.Command{
	Use:   "batch [cases.yaml]",
	Short: "Evaluate a yaml case file",
	Long: `Runs every case in a yaml file through the matcher (or, with --source,
through a decision procedure resolved from a Go file) and renders a result
table. Cases with a "want" field become assertions; any mismatch or error
makes the command exit non-zero.

Case file format:
  cases:
    - left: a5
      right: a00005
      want: true`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().BoolVar(&batchRecord, "record", false, "journal verdicts even when history is disabled in config")
	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", 4, "parallel case evaluations")
	batchCmd.Flags().StringVar(&batchSource, "source", "", "Go file to resolve the decision procedure from")
}

// buildPredicate returns the decision procedure and its display name:
// the built-in matcher, or one resolved from a Go source file.
func buildPredicate(w int, source string) (runner.Predicate, string, error) {
	if source == "" {
		m := matcher.New(matcher.WithWindow(w))
		pred := func(_ context.Context, left, right string) (bool, error) {
			return m.Equivalent(left, right)
		}
		return pred, "matcher", nil
	}

	timeout, err := cfg.DiscoveryTimeout()
	if err != nil {
		return nil, "", err
	}
	resolved, err := discovery.NewResolver(cfg.Discovery.AllowExtraImports...).ResolveFile(source)
	if err != nil {
		return nil, "", fmt.Errorf("failed to resolve predicate from %s: %w", source, err)
	}
	logger.Info("predicate resolved", zap.String("function", resolved.Name), zap.String("file", source))

	pred := func(ctx context.Context, left, right string) (bool, error) {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		return resolved.Invoke(ctx, left, right)
	}
	return pred, resolved.Name, nil
}

func runBatch(cmd *cobra.Command, args []string) error {
	cases, err := runner.LoadCases(args[0])
	if err != nil {
		return err
	}

	w := effectiveWindow()
	pred, source, err := buildPredicate(w, batchSource)
	if err != nil {
		return err
	}

	opts := []runner.Option{
		runner.WithConcurrency(batchConcurrency),
		runner.WithSource(source),
	}
	var store *history.Store
	if batchRecord || cfg.History.Enabled {
		store, err = history.Open(cfg.History.DatabasePath)
		if err != nil {
			return fmt.Errorf("failed to open history: %w", err)
		}
		defer store.Close()
		opts = append(opts, runner.WithHistory(store, w))
	}

	results, err := runner.New(pred, opts...).Run(cmd.Context(), cases)
	if err != nil {
		return err
	}

	summary := renderResults(args[0], source, results)
	if summary.Mismatches > 0 || summary.Errors > 0 {
		return errExitFailure
	}
	return nil
}

// renderResults prints the result table and summary line, and returns the
// summary for exit-code decisions.
func renderResults(caseFile, source string, results []runner.Result) runner.Summary {
	styles := ui.DefaultStyles()
	table := ui.NewSimpleTable(
		fmt.Sprintf("%s via %s", caseFile, source),
		[]string{"LEFT", "RIGHT", "VERDICT", "STATUS", "TIME"},
	)
	for _, res := range results {
		verdict := styles.Verdict(res.Equivalent)
		status := styles.Muted.Render("-")
		switch {
		case res.Err != nil:
			verdict = styles.Bad.Render("ERROR")
			status = styles.Bad.Render(res.Err.Error())
		case res.Case.Want != nil && res.Mismatch:
			status = styles.Warn.Render(fmt.Sprintf("want %v", *res.Case.Want))
		case res.Case.Want != nil:
			status = styles.Good.Render("ok")
		}
		table.AddRow(res.Case.Left, res.Case.Right, verdict, status,
			res.Duration.Round(time.Microsecond).String())
	}
	fmt.Print(table.View(styles))

	summary := runner.Summarize(results)
	fmt.Printf("%d case(s): %d equivalent, %d distinct, %d error(s), %d mismatch(es)\n",
		summary.Total, summary.Equivalent,
		summary.Total-summary.Equivalent-summary.Errors,
		summary.Errors, summary.Mismatches)
	return summary
}
