package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/flowkit/pkg/engine"
	"github.com/matzehuels/flowkit/pkg/flow"
)

// halosCommand creates the halos command for inspecting group boundaries.
func (c *CLI) halosCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "halos [flow.json]",
		Short: "Compute the padded bounding boxes of expanded groups",
		Long: `Compute the padded bounding boxes of expanded groups.

Each visible expanded group gets a halo: the bounding box of its visible
descendants plus depth-aware padding, so nested group outlines never touch.
Halos are emitted as JSON, smallest area first (inner before outer), which
is the paint order a renderer should use.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runHalos(cmd, args[0], output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")

	return cmd
}

func (c *CLI) runHalos(cmd *cobra.Command, input, output string) error {
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

	f, _ = runner.Recompute(ctx, f)
	halos := runner.Halos(f)

	data, err := json.MarshalIndent(halos, "", "  ")
	if err != nil {
		return fmt.Errorf("encode halos: %w", err)
	}
	data = append(data, '\n')

	if output == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("write halos %s: %w", output, err)
	}

	printSuccess("Computed %d halos", len(halos))
	printFile(output)
	return nil
}
