package pipeline

import (
	"encoding/json"
	"fmt"

	"github.com/matzehuels/townsquare/pkg/layout"
	"github.com/matzehuels/townsquare/pkg/render/dot"
	"github.com/matzehuels/townsquare/pkg/render/svg"
)

// RenderResult generates output artifacts in the requested formats.
func RenderResult(res layout.Result, opts Options) (map[string][]byte, error) {
	opts.SetRenderDefaults()
	svgOpts := buildSVGOptions(opts)
	artifacts := make(map[string][]byte, len(opts.Formats))

	for _, format := range opts.Formats {
		if _, ok := artifacts[format]; ok {
			continue
		}

		var data []byte
		var err error

		switch format {
		case FormatSVG:
			data = svg.Render(res, svgOpts...)
		case FormatPNG:
			data, err = svg.RenderPNG(res, DefaultPNGScale, svgOpts...)
		case FormatPDF:
			data, err = svg.RenderPDF(res, svgOpts...)
		case FormatJSON:
			data, err = json.MarshalIndent(res, "", "  ")
		case FormatDOT:
			data = []byte(dot.ToDOT(res, dot.Options{Detailed: true}))
		default:
			return nil, fmt.Errorf("unsupported format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}

// RenderFromLayoutData renders output from a JSON-encoded layout result.
// This is useful when the layout was computed elsewhere (e.g., cached).
func RenderFromLayoutData(layoutData []byte, opts Options) (map[string][]byte, error) {
	var res layout.Result
	if err := json.Unmarshal(layoutData, &res); err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}
	return RenderResult(res, opts)
}

// buildSVGOptions builds SVG rendering options.
func buildSVGOptions(opts Options) []svg.Option {
	svgOpts := []svg.Option{
		svg.WithMetrics(opts.Config.Theme.Metrics()),
	}
	if len(opts.Reminders()) > 0 {
		svgOpts = append(svgOpts, svg.WithMarkers(opts.Heuristic()))
	}
	if opts.ShowBoxes {
		svgOpts = append(svgOpts, svg.WithBoxes())
	}
	return svgOpts
}
