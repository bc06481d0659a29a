package seating

import (
	"fmt"
	"math"

	"github.com/matzehuels/townsquare/pkg/geom"
)

// Unit selects how a Center or Placement is expressed.
type Unit int

const (
	// Pixels are absolute user units.
	Pixels Unit = iota
	// Percent values are relative to the container (0-100 on each axis).
	Percent
)

// String returns the CSS suffix for the unit.
func (u Unit) String() string {
	if u == Percent {
		return "%"
	}
	return "px"
}

// MarshalText implements encoding.TextMarshaler.
func (u Unit) MarshalText() ([]byte, error) { return []byte(u.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (u *Unit) UnmarshalText(b []byte) error {
	switch string(b) {
	case "px":
		*u = Pixels
	case "%":
		*u = Percent
	default:
		return fmt.Errorf("invalid unit: %q", string(b))
	}
	return nil
}

// Center is the reference point seats are arranged around.
type Center struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Unit Unit    `json:"unit"`
}

// PixelCenter returns an absolute center.
func PixelCenter(x, y float64) Center { return Center{X: x, Y: y, Unit: Pixels} }

// PercentCenter returns the container-relative center (50%, 50%).
func PercentCenter() Center { return Center{X: 50, Y: 50, Unit: Percent} }

// Placement is a computed anchor position in the unit of its Center.
type Placement struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Unit Unit    `json:"unit"`
}

// Point returns the placement as a geom.Point, ignoring its unit.
func (p Placement) Point() geom.Point { return geom.Point{X: p.X, Y: p.Y} }

// Absolute converts the placement to pixels for a container of the given size.
// Pixel placements are returned unchanged.
func (p Placement) Absolute(width, height float64) geom.Point {
	if p.Unit == Percent {
		return geom.Point{X: p.X / 100 * width, Y: p.Y / 100 * height}
	}
	return p.Point()
}

// Relative converts the placement to percentages of a container of the given
// size. Percent placements are returned unchanged; an empty container maps
// everything to 0%.
func (p Placement) Relative(width, height float64) Placement {
	if p.Unit == Percent {
		return p
	}
	out := Placement{Unit: Percent}
	if width > 0 {
		out.X = p.X / width * 100
	}
	if height > 0 {
		out.Y = p.Y / height * 100
	}
	return out
}

// Place returns c + (radius+offset)·(cos angle, sin angle). The result has the
// unit of c, so radius and offset must be expressed in that unit too.
func Place(angle, radius, offset float64, c Center) Placement {
	sin, cos := math.Sincos(angle)
	d := radius + offset
	return Placement{X: c.X + d*cos, Y: c.Y + d*sin, Unit: c.Unit}
}

// Angle returns the angle of slot index out of n, shifted by phase and
// normalized to [0, 2π). It returns 0 when n is not positive.
func Angle(index, n int, phase float64) float64 {
	if n <= 0 {
		return 0
	}
	return Normalize(phase + 2*math.Pi*float64(index)/float64(n))
}

// Angles returns the angle of every slot in participant order.
func Angles(n int, phase float64) []float64 {
	if n <= 0 {
		return nil
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = Angle(i, n, phase)
	}
	return out
}

// Normalize maps any angle to [0, 2π).
func Normalize(angle float64) float64 {
	a := math.Mod(angle, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	if a >= 2*math.Pi {
		a = 0
	}
	return a
}

// SignedDegrees converts an angle to degrees in (-180, 180].
func SignedDegrees(angle float64) float64 {
	d := Normalize(angle) * 180 / math.Pi
	if d > 180 {
		d -= 360
	}
	return d
}

// Radians converts degrees to radians.
func Radians(deg float64) float64 { return deg * math.Pi / 180 }
