package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/flowkit/pkg/engine"
	"github.com/matzehuels/flowkit/pkg/flow"
)

// recomputeCommand creates the recompute command for rebuilding derived state.
func (c *CLI) recomputeCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "recompute [flow.json]",
		Short: "Recompute visibility flags and synthetic boundary edges",
		Long: `Recompute visibility flags and synthetic boundary edges.

All derived state is rebuilt from scratch: prior synthetic edges are
discarded, fresh ones are derived from the real edges and the collapsed
groups, and every hidden flag is recomputed. Running recompute twice in a
row is a no-op; the command reports whether anything changed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRecompute(cmd, args[0], output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: update input in place)")

	return cmd
}

func (c *CLI) runRecompute(cmd *cobra.Command, input, output string) error {
	ctx := cmd.Context()

	f, err := flow.ReadFile(input)
	if err != nil {
		return fmt.Errorf("load flow %s: %w", input, err)
	}

	runner, err := c.newRunner(ctx, engine.Options{}, true)
	if err != nil {
		return fmt.Errorf("initialize engine: %w", err)
	}
	defer runner.Close()

	p := newProgress(c.Logger)
	out, changed := runner.Recompute(ctx, f)
	p.done(fmt.Sprintf("Recomputed %d nodes", len(out.Nodes)))

	if !changed {
		printInfo("Derived state already up to date")
		return nil
	}

	outputPath := output
	if outputPath == "" {
		outputPath = input
	}
	if err := flow.WriteFile(out, outputPath); err != nil {
		return fmt.Errorf("write flow %s: %w", outputPath, err)
	}

	printSuccess("Derived state updated")
	printFile(outputPath)
	printStats(len(out.Nodes), len(out.Edges), countSynthetic(out.Edges), false)

	return nil
}
