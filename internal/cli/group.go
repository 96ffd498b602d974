package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/flowkit/pkg/engine"
	"github.com/matzehuels/flowkit/pkg/flow"
	"github.com/matzehuels/flowkit/pkg/group"
)

// groupCommand creates the group management command tree.
func (c *CLI) groupCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "group",
		Short: "Create, dissolve, and toggle node groups",
	}

	cmd.AddCommand(c.groupCreateCommand())
	cmd.AddCommand(c.groupUngroupCommand())
	cmd.AddCommand(c.groupToggleCommand())

	return cmd
}

// groupCreateCommand creates the "group create" subcommand.
func (c *CLI) groupCreateCommand() *cobra.Command {
	var (
		output   string
		members  string
		label    string
		groupID  string
		expanded bool
	)

	cmd := &cobra.Command{
		Use:   "create [flow.json]",
		Short: "Group nodes under a new group node",
		Long: `Group nodes under a new group node.

Members must be valid sibling candidates: at least two distinct existing
nodes, none of which is an ancestor or descendant of another. The new group
starts collapsed unless --expanded is given. The flow file is updated in
place unless --output is set.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			memberIDs := splitList(members)
			if len(memberIDs) == 0 {
				return fmt.Errorf("--members is required (comma-separated node IDs)")
			}

			opts := group.CreateOptions{
				GroupID:   groupID,
				Label:     label,
				MemberIDs: memberIDs,
			}
			if expanded {
				collapsed := false
				opts.Collapse = &collapsed
			}

			return c.runMutation(cmd.Context(), args[0], output, func(r *engine.Runner, f flow.Flow) engine.Result {
				return r.CreateGroup(cmd.Context(), f, opts)
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: update input in place)")
	cmd.Flags().StringVarP(&members, "members", "m", "", "comma-separated member node IDs (required)")
	cmd.Flags().StringVarP(&label, "label", "l", "", "group display label")
	cmd.Flags().StringVar(&groupID, "id", "", "group node ID (default: generated UUID)")
	cmd.Flags().BoolVar(&expanded, "expanded", false, "create the group expanded instead of collapsed")

	return cmd
}

// groupUngroupCommand creates the "group ungroup" subcommand.
func (c *CLI) groupUngroupCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "ungroup [flow.json] GROUP_ID",
		Short: "Dissolve a group, re-parenting members one level up",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runMutation(cmd.Context(), args[0], output, func(r *engine.Runner, f flow.Flow) engine.Result {
				return r.Ungroup(cmd.Context(), f, args[1])
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: update input in place)")

	return cmd
}

// groupToggleCommand creates the "group toggle" subcommand.
func (c *CLI) groupToggleCommand() *cobra.Command {
	var (
		output string
		state  string
	)

	cmd := &cobra.Command{
		Use:   "toggle [flow.json] GROUP_ID",
		Short: "Toggle a group between collapsed and expanded",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var collapsed *bool
			switch state {
			case "":
				// flip the current state
			case "collapsed":
				v := true
				collapsed = &v
			case "expanded":
				v := false
				collapsed = &v
			default:
				return fmt.Errorf("invalid state: %s (must be 'collapsed' or 'expanded')", state)
			}

			return c.runMutation(cmd.Context(), args[0], output, func(r *engine.Runner, f flow.Flow) engine.Result {
				return r.ToggleExpansion(cmd.Context(), f, args[1], collapsed)
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: update input in place)")
	cmd.Flags().StringVar(&state, "state", "", "explicit target state: collapsed, expanded (default: flip)")

	return cmd
}

// runMutation loads the flow, applies the mutation through the engine, and
// writes the updated flow back. Validation failures are reported as command
// errors carrying the engine's user-facing message.
func (c *CLI) runMutation(ctx context.Context, input, output string, apply func(*engine.Runner, flow.Flow) engine.Result) error {
	f, err := flow.ReadFile(input)
	if err != nil {
		return fmt.Errorf("load flow %s: %w", input, err)
	}

	runner, err := c.newRunner(ctx, engine.Options{}, true)
	if err != nil {
		return fmt.Errorf("initialize engine: %w", err)
	}
	defer runner.Close()

	result := apply(runner, f)
	if !result.Success {
		printError("%s", result.Error)
		return fmt.Errorf("%s", result.Error)
	}

	outputPath := output
	if outputPath == "" {
		outputPath = input
	}
	if err := flow.WriteFile(*result.UpdatedFlow, outputPath); err != nil {
		return fmt.Errorf("write flow %s: %w", outputPath, err)
	}

	printSuccess("Flow updated")
	if result.GroupID != "" {
		printDetail("Group: %s", result.GroupID)
	}
	printFile(outputPath)
	printStats(len(result.UpdatedFlow.Nodes), len(result.UpdatedFlow.Edges), countSynthetic(result.UpdatedFlow.Edges), false)
	printNewline()
	printNextStep("Layout", "flowkit layout "+outputPath)

	return nil
}

// splitList parses a comma-separated flag value, dropping empty entries.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func countSynthetic(edges []flow.Edge) int {
	n := 0
	for _, e := range edges {
		if e.IsSynthetic {
			n++
		}
	}
	return n
}
