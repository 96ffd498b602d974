package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/flowkit/pkg/engine"
	"github.com/matzehuels/flowkit/pkg/flow"
	"github.com/matzehuels/flowkit/pkg/layout"
)

// layoutCommand creates the layout command for positioning the visible graph.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output    string
		noCache   bool
		direction string
		spacing   layout.Spacing
	)

	cmd := &cobra.Command{
		Use:   "layout [flow.json]",
		Short: "Compute positions for the visible nodes of a flow",
		Long: `Compute positions for the visible nodes of a flow.

Derived state is recomputed first, then the visible subset is arranged in
layers along the flow direction. Hidden nodes keep their stored positions
verbatim. Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd, args[0], output, direction, spacing, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().StringVarP(&direction, "direction", "d", "", "flow direction: LR (default), RL, TB, BT")
	cmd.Flags().Float64Var(&spacing.NodeSep, "node-sep", 0, "gap between adjacent nodes in a layer")
	cmd.Flags().Float64Var(&spacing.RankSep, "rank-sep", 0, "gap between consecutive layers")
	cmd.Flags().Float64Var(&spacing.ComponentSep, "component-sep", 0, "gap between disconnected components")

	return cmd
}

func (c *CLI) runLayout(cmd *cobra.Command, input, output, direction string, spacing layout.Spacing, noCache bool) error {
	ctx := cmd.Context()

	f, err := flow.ReadFile(input)
	if err != nil {
		return fmt.Errorf("load flow %s: %w", input, err)
	}

	runner, err := c.newRunner(ctx, engine.Options{Direction: direction, Spacing: spacing}, noCache)
	if err != nil {
		return fmt.Errorf("initialize engine: %w", err)
	}
	defer runner.Close()

	f, _ = runner.Recompute(ctx, f)

	spinner := newSpinnerWithContext(ctx, "Computing layout...")
	spinner.Start()

	out, info, err := runner.Layout(ctx, f)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return fmt.Errorf("compute layout: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	outputPath := output
	if outputPath == "" {
		base := strings.TrimSuffix(input, filepath.Ext(input))
		outputPath = base + ".layout.json"
	}

	if err := flow.WriteFile(out, outputPath); err != nil {
		return fmt.Errorf("write flow %s: %w", outputPath, err)
	}

	printSuccess("Layout complete")
	printFile(outputPath)
	printStats(len(out.Nodes), len(out.Edges), countSynthetic(out.Edges), info.CacheHit)
	if !info.Changed {
		printDetail("Positions unchanged")
	}
	printNewline()
	printNextStep("Render", "flowkit render "+outputPath)

	return nil
}
