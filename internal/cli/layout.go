package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/matzehuels/townsquare/pkg/layout"
	"github.com/matzehuels/townsquare/pkg/pipeline"
)

// layoutCommand creates the layout command.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		seats  seatFlags
		view   viewFlags
		asJSON bool
		output string
	)

	cmd := &cobra.Command{
		Use:   "layout [NAME...]",
		Short: "Compute seat placements for a table",
		Long: `Compute seat placements for a table.

Participants are seated clockwise from the right-hand side of the circle in
the order given. The table lists every seat's token and label position,
label distance, anchor, rotation, font scale and z-index. Seats raised above
z 0 are highlighted: their token is covered by another participant's label.

Results are cached locally for faster subsequent runs.`,
		Example: `  townsquare layout Ada Brin Cato Dax Eve
  townsquare layout --count 12 --width 1024 --height 768
  townsquare layout --file seats.toml --json -o layout.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			participants, err := seats.participants(args)
			if err != nil {
				return err
			}
			return c.runLayout(cmd.Context(), cmd.OutOrStdout(), participants, view, asJSON, output)
		},
	}

	seats.register(cmd)
	view.register(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the layout result as JSON")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the JSON result to a file")

	return cmd
}

// runLayout computes one pass and prints it.
func (c *CLI) runLayout(ctx context.Context, w io.Writer, participants []pipeline.Participant, view viewFlags, asJSON bool, output string) error {
	res, cached, err := c.computeLayout(ctx, participants, view)
	if err != nil {
		return err
	}

	if output != "" {
		data, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return fmt.Errorf("encode layout: %w", err)
		}
		if err := writeFile(output, data); err != nil {
			return err
		}
		printSuccess("Layout complete")
		printFile(output)
		fmt.Println(statsLine(res, cached))
		fmt.Println()
		printNextStep("Render", fmt.Sprintf("%s render --count %d", appName, len(res.Slots)))
		return nil
	}

	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	fmt.Fprintln(w, slotTable(res))
	fmt.Fprintln(w, statsLine(res, cached))
	warnDiagnostics(res)
	return nil
}

// computeLayout runs a cached pass with the CLI's config.
func (c *CLI) computeLayout(ctx context.Context, participants []pipeline.Participant, view viewFlags) (layout.Result, bool, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return layout.Result{}, false, err
	}
	runner, err := c.newRunner(ctx, cfg, view.noCache)
	if err != nil {
		return layout.Result{}, false, fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts := view.options(&cfg, participants)
	opts.Logger = c.Logger
	res, cached, err := runner.ComputeLayoutWithCacheInfo(ctx, opts)
	if err != nil {
		return layout.Result{}, false, fmt.Errorf("compute layout: %w", err)
	}
	return res, cached, nil
}

// warnDiagnostics points out passes that hit a cap.
func warnDiagnostics(res layout.Result) {
	if !res.Optimizer.Converged {
		printWarning("Label relaxation stopped after %d rounds with overlaps left", res.Optimizer.Rounds)
	}
	if res.Stacking.Cyclic {
		printWarning("Stacking constraints form %d cycle(s); %d edge(s) unresolved",
			len(res.Stacking.Cycles), len(res.Stacking.Unresolved))
		printNextStep("Inspect", appName+" stacking --dot")
	}
}
