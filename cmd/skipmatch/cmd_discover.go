package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"skipmatch/cmd/skipmatch/ui"
	"skipmatch/internal/discovery"
)

var discoverCmd = &cobra.Command{
	Use:   "discover [file.go] [left right]",
	Short: "Resolve a decision procedure from a Go source file",
	Long: `Evaluates a Go file in a sandboxed interpreter, finds every
func(string, string) bool it defines, and selects the most plausible
candidate by name. With a pair of inputs it also invokes the resolved
function once and prints the verdict.

Example:
  skipmatch discover candidate.go a5 a00005`,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) != 1 && len(args) != 3 {
			return fmt.Errorf("expected FILE or FILE LEFT RIGHT, got %d argument(s)", len(args))
		}
		return nil
	},
	RunE: runDiscover,
}

func runDiscover(cmd *cobra.Command, args []string) error {
	resolver := discovery.NewResolver(cfg.Discovery.AllowExtraImports...)
	pred, err := resolver.ResolveFile(args[0])
	if err != nil {
		return err
	}

	styles := ui.DefaultStyles()
	fmt.Printf("resolved %s from %s\n", styles.Bold.Render(pred.Name), args[0])
	logger.Debug("predicate resolved", zap.String("function", pred.Name))

	if len(args) != 3 {
		return nil
	}

	timeout, err := cfg.DiscoveryTimeout()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	got, err := pred.Invoke(ctx, args[1], args[2])
	if err != nil {
		return fmt.Errorf("invocation failed: %w", err)
	}
	fmt.Printf("%s  %q vs %q\n", styles.Verdict(got), args[1], args[2])
	return nil
}
