// Package render turns layout results into files.
//
// # Overview
//
// The seat layout itself is format-agnostic; this package and its
// subpackages draw it:
//
//   - [svg]: the seat circle as SVG, tokens in painting order
//   - [dot]: the stacking constraint graph as Graphviz DOT
//   - Generic format conversion (SVG to PDF/PNG)
//
// # Format Conversion
//
// The [ToPDF] and [ToPNG] functions convert any SVG to other formats using
// the external rsvg-convert tool (from librsvg).
//
//	out := svg.Render(result, svg.WithBoxes())
//	pdf, err := render.ToPDF(out)
//	png, err := render.ToPNG(out, 2.0)  // 2x scale
//
// [svg]: github.com/matzehuels/townsquare/pkg/render/svg
// [dot]: github.com/matzehuels/townsquare/pkg/render/dot
package render
