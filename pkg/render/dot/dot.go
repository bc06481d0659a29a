package dot

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/townsquare/pkg/layout"
	"github.com/matzehuels/townsquare/pkg/render"
	"github.com/matzehuels/townsquare/pkg/stacking"
)

// Options configures constraint graph generation.
type Options struct {
	// Detailed adds the z-index, anchor and distance multiplier to node labels.
	Detailed bool
	// Isolated keeps seats that take part in no constraint.
	Isolated bool
}

// ToDOT converts the stacking constraints of res to Graphviz DOT source.
func ToDOT(res layout.Result, opts Options) string {
	a := res.Stacking
	inCycle := make(map[int]bool)
	for _, c := range a.Cycles {
		for _, i := range c {
			inCycle[i] = true
		}
	}
	used := make(map[int]bool)
	for _, e := range a.Edges {
		used[e.Label], used[e.Token] = true, true
	}
	violated := make(map[stacking.Edge]bool, len(a.Unresolved))
	for _, e := range a.Unresolved {
		violated[e] = true
	}

	var buf bytes.Buffer
	buf.WriteString("digraph stacking {\n")
	buf.WriteString("  rankdir=BT;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=18, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, s := range res.Slots {
		if !opts.Isolated && !used[s.Index] {
			continue
		}
		// The assignment is authoritative; slot z may be unset on results
		// assembled by hand.
		if s.Index >= 0 && s.Index < len(a.Z) {
			s.Z = a.Z[s.Index]
		}
		attrs := []string{fmt.Sprintf("label=%q", fmtLabel(s, opts.Detailed))}
		if inCycle[s.Index] {
			attrs = append(attrs, "fillcolor=\"#f8d7da\"", "color=\"#b02a37\"")
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", nodeID(s.Index), strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range a.Edges {
		attr := ""
		if violated[e] {
			attr = " [style=dashed, color=\"#b02a37\"]"
		}
		fmt.Fprintf(&buf, "  %q -> %q%s;\n", nodeID(e.Label), nodeID(e.Token), attr)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeID(i int) string { return "seat-" + strconv.Itoa(i) }

func fmtLabel(s layout.SlotResult, detailed bool) string {
	label := fmt.Sprintf("%d %s", s.Index, s.Name)
	if !detailed {
		return label
	}
	return fmt.Sprintf("%s\nz: %d\n%s ×%.2f", label, s.Z, s.Anchor, s.DistanceMultiplier)
}

// RenderSVG renders DOT source to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's pt-sized root element with one sized
// in user units so the graph scales like the seat SVG.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}

// RenderPNG renders DOT source as PNG via SVG conversion.
func RenderPNG(dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(svg, scale)
}

// RenderPDF renders DOT source as PDF via SVG conversion.
func RenderPDF(dot string) ([]byte, error) {
	svg, err := RenderSVG(dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(svg)
}
