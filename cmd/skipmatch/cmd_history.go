package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"skipmatch/cmd/skipmatch/ui"
	"skipmatch/internal/history"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent journaled verdicts",
	Long: `Lists the most recent entries in the SQLite verdict journal along with
journal totals. Verdicts are journaled by check/batch when history is
enabled in config or with --record.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "maximum entries to show")
}

func runHistory(cmd *cobra.Command, args []string) error {
	store, err := history.Open(cfg.History.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}
	defer store.Close()

	checks, err := store.Recent(historyLimit)
	if err != nil {
		return err
	}
	stats, err := store.Stats()
	if err != nil {
		return err
	}

	styles := ui.DefaultStyles()
	if len(checks) == 0 {
		fmt.Println(styles.Muted.Render("journal is empty"))
		return nil
	}

	table := ui.NewSimpleTable("Recent checks", []string{"WHEN", "LEFT", "RIGHT", "VERDICT", "SOURCE", "W"})
	for _, c := range checks {
		table.AddRow(
			c.CreatedAt.Format(time.DateTime),
			c.Left, c.Right,
			styles.Verdict(c.Equivalent),
			c.Source,
			fmt.Sprintf("%d", c.Window),
		)
	}
	fmt.Print(table.View(styles))
	fmt.Printf("%d total, %d equivalent\n", stats.Total, stats.Equivalent)
	return nil
}
