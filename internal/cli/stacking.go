package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/townsquare/pkg/layout"
	"github.com/matzehuels/townsquare/pkg/pipeline"
	"github.com/matzehuels/townsquare/pkg/render/dot"
)

// stackingCommand creates the stacking command.
func (c *CLI) stackingCommand() *cobra.Command {
	var (
		seats    seatFlags
		view     viewFlags
		asDOT    bool
		output   string
		isolated bool
	)

	cmd := &cobra.Command{
		Use:   "stacking [NAME...]",
		Short: "Show draw-order constraints and cycles",
		Long: `Show draw-order constraints and cycles.

Every row is a label that overlaps another seat's token; that token must be
drawn above the label's seat. Constraints that could not be satisfied within
the pass cap are marked unresolved and the seats forming each cycle are
listed.

--dot prints the constraint graph as Graphviz DOT. --output renders it to
SVG, PNG or PDF, chosen by the file extension.`,
		Example: `  townsquare stacking --count 20
  townsquare stacking --file seats.toml --dot | dot -Tsvg > stacking.svg
  townsquare stacking --count 20 --reminders 0=10 --expanded -o stacking.svg`,
		RunE: func(cmd *cobra.Command, args []string) error {
			participants, err := seats.participants(args)
			if err != nil {
				return err
			}
			return c.runStacking(cmd.Context(), cmd.OutOrStdout(), participants, view, asDOT, output, isolated)
		},
	}

	seats.register(cmd)
	view.register(cmd)
	cmd.Flags().BoolVar(&asDOT, "dot", false, "print the constraint graph as DOT")
	cmd.Flags().StringVarP(&output, "output", "o", "", "render the constraint graph to a file (.svg, .png, .pdf)")
	cmd.Flags().BoolVar(&isolated, "isolated", false, "include seats without constraints in the graph")
	_ = cmd.RegisterFlagCompletionFunc("output", completeGraphOutput)

	return cmd
}

func (c *CLI) runStacking(ctx context.Context, w io.Writer, participants []pipeline.Participant, view viewFlags, asDOT bool, output string, isolated bool) error {
	res, cached, err := c.computeLayout(ctx, participants, view)
	if err != nil {
		return err
	}
	src := dot.ToDOT(res, dot.Options{Detailed: true, Isolated: isolated})

	if output != "" {
		data, err := renderGraph(src, output)
		if err != nil {
			return err
		}
		if err := writeFile(output, data); err != nil {
			return err
		}
		printSuccess("Constraint graph rendered")
		printFile(output)
		return nil
	}

	if asDOT {
		_, err := io.WriteString(w, src)
		return err
	}

	a := res.Stacking
	if len(a.Edges) == 0 {
		fmt.Fprintln(w, "No label covers another seat's token.")
	} else {
		fmt.Fprintln(w, edgeTable(res))
	}
	for _, line := range cycleLines(res) {
		fmt.Fprintln(w, styleCycle.Render(line))
	}
	fmt.Fprintln(w, statsLine(res, cached))
	fmt.Fprintln(w, styleDim.Render(fmt.Sprintf("  max z %d · %d pass(es) · converged %t", a.MaxZ, a.Passes, a.Converged)))
	return nil
}

// cycleLines describes each constraint cycle by seat names.
func cycleLines(res layout.Result) []string {
	lines := make([]string, 0, len(res.Stacking.Cycles))
	for i, cycle := range res.Stacking.Cycles {
		members := make([]string, len(cycle))
		for j, seat := range cycle {
			members[j] = res.Slots[seat].Name
		}
		lines = append(lines, fmt.Sprintf("cycle %d: %s", i+1, strings.Join(members, " ↔ ")))
	}
	return lines
}

// renderGraph renders DOT source by the extension of path.
func renderGraph(src, path string) ([]byte, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".svg":
		return dot.RenderSVG(src)
	case ".png":
		return dot.RenderPNG(src, pipeline.DefaultPNGScale)
	case ".pdf":
		return dot.RenderPDF(src)
	case ".dot", ".gv":
		return []byte(src), nil
	default:
		return nil, fmt.Errorf("unsupported graph output %q (use .svg, .png, .pdf or .dot)", ext)
	}
}
