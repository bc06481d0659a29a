// Package svg draws a seat layout as a standalone SVG document.
//
// Seats are emitted in painting order (ascending z, ties by seat index), so
// the document order reproduces the stacking the layout engine resolved:
// a seat whose label or reminder stack reaches over another seat's token is
// drawn under it.
//
//	out := svg.Render(result,
//		svg.WithMetrics(theme.Metrics()),
//		svg.WithMarkers(heuristic),
//		svg.WithBoxes(),
//	)
package svg

import (
	"bytes"
	"encoding/xml"
	"fmt"

	"github.com/matzehuels/townsquare/pkg/geom"
	"github.com/matzehuels/townsquare/pkg/layout"
	"github.com/matzehuels/townsquare/pkg/measure"
	"github.com/matzehuels/townsquare/pkg/names"
	"github.com/matzehuels/townsquare/pkg/render"
)

const fontFamily = `system-ui, -apple-system, 'Segoe UI', sans-serif`

const seatCSS = `
    .table { fill: none; stroke: #c8c8c8; stroke-dasharray: 4 6; }
    .token { fill: #fdf6e3; stroke: #3b3b3b; stroke-width: 2; }
    .marker { fill: #e8e0cc; stroke: #6b6b6b; stroke-width: 1; }
    .name { fill: #1e1e1e; }
    .box { fill: none; stroke-width: 1; }
    .box.label { stroke: #d33682; }
    .box.token { stroke: #268bd2; }
    .box.overlay { stroke: #859900; stroke-dasharray: 3 3; }`

// MarkerSource returns the reminder marker boxes of a token.
// *measure.Heuristic implements it.
type MarkerSource interface {
	Markers(t names.Token) []geom.Rect
}

// Option configures rendering.
type Option func(*renderer)

type renderer struct {
	metrics measure.Metrics
	markers MarkerSource
	boxes   bool
	table   bool
	title   string
}

// WithMetrics sets the text metrics used for label font sizes.
func WithMetrics(m measure.Metrics) Option { return func(r *renderer) { r.metrics = m } }

// WithMarkers draws the reminder markers reported by src.
func WithMarkers(src MarkerSource) Option { return func(r *renderer) { r.markers = src } }

// WithBoxes outlines the measured token, label and overlay boxes.
func WithBoxes() Option { return func(r *renderer) { r.boxes = true } }

// WithoutTable hides the dashed seat circle.
func WithoutTable() Option { return func(r *renderer) { r.table = false } }

// WithTitle sets the document title.
func WithTitle(s string) Option { return func(r *renderer) { r.title = s } }

// Render returns the SVG document for res.
func Render(res layout.Result, opts ...Option) []byte {
	r := renderer{metrics: measure.DefaultMetrics(), table: true}
	for _, opt := range opts {
		opt(&r)
	}

	v := res.Viewport
	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		v.Width, v.Height, v.Width, v.Height)
	if r.title != "" {
		fmt.Fprintf(&buf, "  <title>%s</title>\n", escape(r.title))
	}
	fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", seatCSS)

	if r.table && res.Radius > 0 {
		fmt.Fprintf(&buf, `  <circle class="table" cx="%.2f" cy="%.2f" r="%.2f"/>`+"\n",
			res.Center.X, res.Center.Y, res.Radius)
	}

	// Writes to a bytes.Buffer cannot fail.
	_ = layout.Apply(res, layout.ApplierFunc(func(s layout.SlotResult) error {
		r.renderSeat(&buf, s)
		return nil
	}))

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func (r *renderer) renderSeat(buf *bytes.Buffer, s layout.SlotResult) {
	fmt.Fprintf(buf, `  <g class="seat" id="seat-%d" data-z="%d">`+"\n", s.Index, s.Z)

	tok := s.Token.Point()
	half := s.TokenSize / 2
	fmt.Fprintf(buf, `    <rect class="token" x="%.2f" y="%.2f" width="%.2f" height="%.2f" rx="%.2f"/>`+"\n",
		tok.X-half, tok.Y-half, s.TokenSize, s.TokenSize, half)

	if r.markers != nil {
		t := names.Token{Slot: s.Index, Center: tok, Size: s.TokenSize, Angle: s.Angle}
		for _, m := range r.markers.Markers(t) {
			fmt.Fprintf(buf, `    <rect class="marker" x="%.2f" y="%.2f" width="%.2f" height="%.2f" rx="%.2f"/>`+"\n",
				m.Left, m.Top, m.Width(), m.Height(), m.Width()/2)
		}
	}

	r.renderName(buf, s)

	if r.boxes {
		if s.HasTokenBox {
			renderBox(buf, "token", s.TokenBox)
		}
		if s.HasLabelBox {
			renderBox(buf, "label", s.LabelBox)
			if s.OverlayBox != s.LabelBox {
				renderBox(buf, "overlay", s.OverlayBox)
			}
		}
	}
	buf.WriteString("  </g>\n")
}

// renderName draws the label hanging from (Below) or standing on (Above) its
// anchor, rotated around the anchor.
func (r *renderer) renderName(buf *bytes.Buffer, s layout.SlotResult) {
	a := s.Label.Point()
	baseline := "hanging"
	if s.Anchor == names.Above {
		baseline = "text-after-edge"
	}
	fontSize := r.metrics.FontSize * s.FontScale

	fmt.Fprintf(buf, `    <text class="name" x="%.2f" y="%.2f" text-anchor="middle" dominant-baseline="%s" font-family="%s" font-size="%.2f"`,
		a.X, a.Y, baseline, fontFamily, fontSize)
	if s.RotationDegrees != 0 {
		fmt.Fprintf(buf, ` transform="rotate(%.2f %.2f %.2f)"`, s.RotationDegrees, a.X, a.Y)
	}
	fmt.Fprintf(buf, ">%s</text>\n", escape(s.Name))
}

func renderBox(buf *bytes.Buffer, kind string, b geom.Rect) {
	fmt.Fprintf(buf, `    <rect class="box %s" x="%.2f" y="%.2f" width="%.2f" height="%.2f"/>`+"\n",
		kind, b.Left, b.Top, b.Width(), b.Height())
}

func escape(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

// RenderPNG renders res as PNG via SVG conversion.
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPNG(res layout.Result, scale float64, opts ...Option) ([]byte, error) {
	return render.ToPNG(Render(res, opts...), scale)
}

// RenderPDF renders res as PDF via SVG conversion.
func RenderPDF(res layout.Result, opts ...Option) ([]byte, error) {
	return render.ToPDF(Render(res, opts...))
}
