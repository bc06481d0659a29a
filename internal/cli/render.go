package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/townsquare/pkg/pipeline"
)

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		seats      seatFlags
		view       viewFlags
		formatsStr string
		output     string
		boxes      bool
	)

	cmd := &cobra.Command{
		Use:   "render [NAME...]",
		Short: "Render a table to SVG, PNG, PDF, JSON or DOT",
		Long: `Render a table to SVG, PNG, PDF, JSON or DOT.

SVG draws tokens in stacking order with rotated, scaled name labels. PNG and
PDF are converted from the SVG with rsvg-convert (librsvg). JSON is the raw
layout result, DOT the stacking constraint graph.

With a single format, --output names the file. With several, --output is the
base path and each format adds its extension.`,
		Example: `  townsquare render Ada Brin Cato Dax Eve -o table.svg
  townsquare render --count 16 -f svg,png,dot -o table
  townsquare render --file seats.toml --reminders 0=10 --expanded --boxes`,
		RunE: func(cmd *cobra.Command, args []string) error {
			formats := parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(formats); err != nil {
				return err
			}
			participants, err := seats.participants(args)
			if err != nil {
				return err
			}
			return c.runRender(cmd.Context(), participants, view, formats, output, boxes)
		},
	}

	seats.register(cmd)
	view.register(cmd)
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, pdf, json, dot (comma-separated)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().BoolVar(&boxes, "boxes", false, "outline the measured label and token boxes")
	_ = cmd.RegisterFlagCompletionFunc("format", completeFormats)

	return cmd
}

// runRender runs the full pipeline and writes every artifact.
func (c *CLI) runRender(ctx context.Context, participants []pipeline.Participant, view viewFlags, formats []string, output string, boxes bool) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	runner, err := c.newRunner(ctx, cfg, view.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts := view.options(&cfg, participants)
	opts.Formats = formats
	opts.ShowBoxes = boxes
	opts.Logger = c.Logger

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		return err
	}

	paths := artifactPaths(output, opts.Formats)
	for _, format := range opts.Formats {
		if err := writeFile(paths[format], result.Artifacts[format]); err != nil {
			return err
		}
	}

	printSuccess("Rendered %d seat(s)", result.Stats.Participants)
	for _, format := range opts.Formats {
		printFile(paths[format])
	}
	fmt.Println(statsLine(result.Layout, result.CacheInfo.LayoutHit))
	warnDiagnostics(result.Layout)
	return nil
}

// artifactPaths maps formats to output files. A single format uses output
// as is; otherwise output is a base path that gets one extension per format.
func artifactPaths(output string, formats []string) map[string]string {
	base := output
	if base == "" {
		base = "townsquare"
	}
	paths := make(map[string]string, len(formats))
	if len(formats) == 1 && output != "" {
		paths[formats[0]] = output
		return paths
	}
	base = strings.TrimSuffix(base, filepath.Ext(base))
	for _, f := range formats {
		paths[f] = base + "." + f
	}
	return paths
}

// writeFile writes data, creating parent directories as needed.
func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
