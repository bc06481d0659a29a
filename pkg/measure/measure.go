// Package measure provides headless bounding-box measurers for the layout
// engine.
//
// [Heuristic] estimates label boxes from text metrics instead of a rendering
// backend, which is what the CLI, the HTTP server and the tests use. It also
// models reminder stacks: a column of markers that grows from a seat's token
// toward the circle center and can reach over the opposite seats.
package measure

import (
	"errors"
	"fmt"
	"math"

	"github.com/matzehuels/townsquare/pkg/geom"
	"github.com/matzehuels/townsquare/pkg/names"
)

// Default text metrics.
const (
	DefaultFontSize      = 14.0
	DefaultCharWidth     = 0.55
	DefaultLineHeight    = 1.25
	DefaultLabelPadding  = 4.0
	DefaultReminderScale = 0.5
)

// ErrBadMetrics is returned when the configured metrics cannot produce a box.
var ErrBadMetrics = errors.New("measure: font size and char width must be positive")

// Metrics are the text metrics labels are estimated with.
type Metrics struct {
	FontSize      float64 `toml:"font_size" json:"font_size"`
	CharWidth     float64 `toml:"char_width" json:"char_width"`
	LineHeight    float64 `toml:"line_height" json:"line_height"`
	LabelPadding  float64 `toml:"label_padding" json:"label_padding"`
	ReminderScale float64 `toml:"reminder_scale" json:"reminder_scale"`
}

// DefaultMetrics returns the default text metrics.
func DefaultMetrics() Metrics {
	return Metrics{
		FontSize:      DefaultFontSize,
		CharWidth:     DefaultCharWidth,
		LineHeight:    DefaultLineHeight,
		LabelPadding:  DefaultLabelPadding,
		ReminderScale: DefaultReminderScale,
	}
}

// Validate reports unusable metrics.
func (m Metrics) Validate() error {
	if m.FontSize <= 0 || m.CharWidth <= 0 {
		return ErrBadMetrics
	}
	if m.LineHeight <= 0 || m.LabelPadding < 0 || m.ReminderScale < 0 {
		return fmt.Errorf("measure: invalid metrics %+v", m)
	}
	return nil
}

// TextSize returns the padded size of text rendered at fontScale.
func (m Metrics) TextSize(text string, fontScale float64) geom.Size {
	fs := m.FontSize * fontScale
	runes := float64(len([]rune(text)))
	return geom.Size{
		W: runes*fs*m.CharWidth + 2*m.LabelPadding,
		H: fs*m.LineHeight + 2*m.LabelPadding,
	}
}

// Extent returns the largest label diagonal among texts at full font scale.
// It is the label term of seating.MarginBudget.
func (m Metrics) Extent(texts []string) float64 {
	var ext float64
	for _, t := range texts {
		s := m.TextSize(t, 1)
		ext = max(ext, math.Hypot(s.W, s.H))
	}
	return ext
}

// Stack is the reminder stack attached to one seat.
type Stack struct {
	Count    int  `toml:"reminders" json:"count"`
	Expanded bool `toml:"expanded" json:"expanded"`
}

// Visible returns how many markers the stack shows: all of them when
// expanded, one when collapsed.
func (s Stack) Visible() int {
	if s.Count <= 0 {
		return 0
	}
	if s.Expanded {
		return s.Count
	}
	return 1
}

// Heuristic measures labels from Metrics. The zero value is not usable; use
// NewHeuristic.
type Heuristic struct {
	Metrics   Metrics
	Reminders map[int]Stack
}

// NewHeuristic returns a measurer with the given metrics and reminder stacks
// keyed by seat index. reminders may be nil.
func NewHeuristic(m Metrics, reminders map[int]Stack) *Heuristic {
	return &Heuristic{Metrics: m, Reminders: reminders}
}

// MeasureLabel returns the label box, hanging below or standing on its
// anchor and rotated around it.
func (h *Heuristic) MeasureLabel(l names.Label) (geom.Rect, error) {
	if err := h.Metrics.Validate(); err != nil {
		return geom.Rect{}, err
	}
	s := h.Metrics.TextSize(l.Text, l.FontScale)
	r := geom.Rect{Left: l.Anchor.X - s.W/2, Right: l.Anchor.X + s.W/2}
	if l.Side == names.Above {
		r.Top, r.Bottom = l.Anchor.Y-s.H, l.Anchor.Y
	} else {
		r.Top, r.Bottom = l.Anchor.Y, l.Anchor.Y+s.H
	}
	return r.Rotate(l.Anchor, l.RotationDegrees), nil
}

// MeasureToken returns the square token box.
func (h *Heuristic) MeasureToken(t names.Token) (geom.Rect, error) {
	return geom.RectAround(t.Center, geom.Size{W: t.Size, H: t.Size}), nil
}

// MeasureOverlay returns the union of the label box and the seat's visible
// reminder markers.
func (h *Heuristic) MeasureOverlay(l names.Label) (geom.Rect, error) {
	r, err := h.MeasureLabel(l)
	if err != nil {
		return geom.Rect{}, err
	}
	for _, m := range h.markers(l.Slot, l.TokenCenter, l.TokenSize, l.Angle) {
		r = r.Union(m)
	}
	return r, nil
}

// Markers returns the boxes of the visible reminder markers of t, nearest
// to the token first.
func (h *Heuristic) Markers(t names.Token) []geom.Rect {
	return h.markers(t.Slot, t.Center, t.Size, t.Angle)
}

// ReminderCentroids returns the centers of the visible reminder markers of
// t, nearest to the token first.
func (h *Heuristic) ReminderCentroids(t names.Token) []geom.Point {
	markers := h.Markers(t)
	if len(markers) == 0 {
		return nil
	}
	out := make([]geom.Point, len(markers))
	for i, m := range markers {
		out[i] = m.Center()
	}
	return out
}

// markers lays the stack out radially inward: the first marker touches the
// token edge and each next one touches the previous.
func (h *Heuristic) markers(slot int, center geom.Point, tokenSize, angle float64) []geom.Rect {
	n := h.Reminders[slot].Visible()
	if n == 0 {
		return nil
	}
	size := tokenSize * h.Metrics.ReminderScale
	sin, cos := math.Sincos(angle)
	inward := geom.Point{X: -cos, Y: -sin}

	out := make([]geom.Rect, n)
	for k := range out {
		d := tokenSize/2 + size/2 + float64(k)*size
		out[k] = geom.RectAround(center.Add(inward.Scale(d)), geom.Size{W: size, H: size})
	}
	return out
}
