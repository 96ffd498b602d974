package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/flowkit/pkg/engine"
	"github.com/matzehuels/flowkit/pkg/flow"
	"github.com/matzehuels/flowkit/pkg/render"
)

// renderCommand creates the render command for generating debug artifacts.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		output    string
		format    string
		direction string
		detailed  bool
		halos     bool
		noCache   bool
	)

	cmd := &cobra.Command{
		Use:   "render [flow.json]",
		Short: "Render a flow as a DOT, SVG, or PNG diagram",
		Long: `Render a flow as a DOT, SVG, or PNG diagram.

Expanded groups become nested cluster boundaries, collapsed groups become
single boxes, and synthetic boundary edges are drawn dashed. The output is
a debugging artifact: Graphviz computes its own layout for it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(format); err != nil {
				return err
			}
			return c.runRender(cmd, args[0], output, format, noCache, render.Options{
				Direction: direction,
				ShowHalos: halos,
				Detailed:  detailed,
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.<format>)")
	cmd.Flags().StringVarP(&format, "format", "f", render.FormatSVG, "output format: svg (default), png, dot")
	cmd.Flags().StringVarP(&direction, "direction", "d", "", "flow direction: LR (default), RL, TB, BT")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "include node kind and group state in labels")
	cmd.Flags().BoolVar(&halos, "halos", false, "fill expanded-group boundaries")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "bypass the artifact cache")

	return cmd
}

// validateFormat checks that the requested format is supported.
func validateFormat(f string) error {
	switch f {
	case render.FormatDOT, render.FormatSVG, render.FormatPNG:
		return nil
	default:
		return fmt.Errorf("invalid format: %s (must be 'svg', 'png', or 'dot')", f)
	}
}

func (c *CLI) runRender(cmd *cobra.Command, input, output, format string, noCache bool, opts render.Options) error {
	ctx := cmd.Context()

	f, err := flow.ReadFile(input)
	if err != nil {
		return fmt.Errorf("load flow %s: %w", input, err)
	}

	runner, err := c.newRunner(ctx, engine.Options{Direction: opts.Direction}, noCache)
	if err != nil {
		return fmt.Errorf("initialize engine: %w", err)
	}
	defer runner.Close()

	f, _ = runner.Recompute(ctx, f)
	if opts.Direction == "" {
		opts.Direction = runner.Opts.Direction
	}

	data, cached, err := runner.Artifact(ctx, f, format, opts)
	if err != nil {
		return fmt.Errorf("render %s: %w", format, err)
	}

	outputPath := output
	if outputPath == "" {
		base := strings.TrimSuffix(input, filepath.Ext(input))
		outputPath = base + "." + format
	}

	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Generated %s", outputPath)
	printStats(len(f.Nodes), len(f.Edges), countSynthetic(f.Edges), cached)

	return nil
}
