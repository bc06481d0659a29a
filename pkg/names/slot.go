package names

import (
	"fmt"
	"math"

	"github.com/matzehuels/townsquare/pkg/geom"
	"github.com/matzehuels/townsquare/pkg/seating"
)

// Anchor is the side of the label's anchor point the label hangs from.
type Anchor int

const (
	// Below hangs the label under its anchor point (bottom half of the circle).
	Below Anchor = iota
	// Above stacks the label on top of its anchor point (top half of the circle).
	Above
)

// String returns "above" or "below".
func (a Anchor) String() string {
	if a == Above {
		return "above"
	}
	return "below"
}

// MarshalText implements encoding.TextMarshaler.
func (a Anchor) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Anchor) UnmarshalText(b []byte) error {
	switch string(b) {
	case "above":
		*a = Above
	case "below":
		*a = Below
	default:
		return fmt.Errorf("invalid anchor: %q", string(b))
	}
	return nil
}

// AnchorFor returns Above for seats on the upper half of the circle.
func AnchorFor(angle float64) Anchor {
	if math.Sin(angle) < 0 {
		return Above
	}
	return Below
}

// Slot is one seat with its label placement state.
type Slot struct {
	Index              int     `json:"index"`
	Name               string  `json:"name"`
	Angle              float64 `json:"angle"`
	TokenSize          float64 `json:"token_size"`
	DistanceMultiplier float64 `json:"distance_multiplier"`
	Anchor             Anchor  `json:"anchor"`
	RotationDegrees    float64 `json:"rotation_degrees"`
	FontScale          float64 `json:"font_scale"`
}

// Label is what a Measurer needs to measure a name label.
type Label struct {
	Slot            int
	Text            string
	Anchor          geom.Point
	TokenCenter     geom.Point
	Side            Anchor
	RotationDegrees float64
	FontScale       float64
	TokenSize       float64
	Angle           float64
}

// Token is what a Measurer needs to measure a seat token.
type Token struct {
	Slot   int
	Center geom.Point
	Size   float64
	Angle  float64
}

// Measurer reports the bounding box of rendered labels and tokens.
// Implementations must be synchronous and must not retain their arguments.
type Measurer interface {
	MeasureLabel(l Label) (geom.Rect, error)
	MeasureToken(t Token) (geom.Rect, error)
}

// Geometry is the circle the slots are arranged on, in pixels.
type Geometry struct {
	Center seating.Center
	Radius float64
}

// TokenAt returns the token center of s.
func (g Geometry) TokenAt(s Slot) seating.Placement {
	return seating.Place(s.Angle, g.Radius, 0, g.Center)
}

// LabelAt returns the label anchor of s: tokenSize·distance beyond the circle.
func (g Geometry) LabelAt(s Slot) seating.Placement {
	return seating.Place(s.Angle, g.Radius, s.TokenSize*s.DistanceMultiplier, g.Center)
}

// Label builds the measurement request for the label of s.
func (g Geometry) Label(s Slot) Label {
	return Label{
		Slot:            s.Index,
		Text:            s.Name,
		Anchor:          g.LabelAt(s).Point(),
		TokenCenter:     g.TokenAt(s).Point(),
		Side:            s.Anchor,
		RotationDegrees: s.RotationDegrees,
		FontScale:       s.FontScale,
		TokenSize:       s.TokenSize,
		Angle:           s.Angle,
	}
}

// Token builds the measurement request for the token of s.
func (g Geometry) Token(s Slot) Token {
	return Token{Slot: s.Index, Center: g.TokenAt(s).Point(), Size: s.TokenSize, Angle: s.Angle}
}
