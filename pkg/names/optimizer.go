package names

import (
	"cmp"
	"math"
	"slices"

	"github.com/matzehuels/townsquare/pkg/geom"
	"github.com/matzehuels/townsquare/pkg/seating"
)

// Stats describes one optimizer run.
type Stats struct {
	// Rounds counts relaxation rounds that found at least one collision.
	Rounds int `json:"rounds"`
	// Pushes counts label pairs pushed outward.
	Pushes int `json:"pushes"`
	// Measurements counts MeasureLabel calls.
	Measurements int `json:"measurements"`
	// Failures counts measurements that returned an error.
	Failures int `json:"failures"`
	// Converged is true when the last round found no collision.
	Converged bool `json:"converged"`
}

// Optimizer assigns and relaxes label placements. One Optimizer belongs to
// one seat container; its guard keeps passes on that container from
// overlapping.
type Optimizer struct {
	cfg   Config
	guard Guard
}

// New returns an optimizer using cfg.
func New(cfg Config) *Optimizer {
	return &Optimizer{cfg: cfg}
}

// Config returns the optimizer's configuration.
func (o *Optimizer) Config() Config { return o.cfg }

// Begin starts a pass. See Guard.Begin.
func (o *Optimizer) Begin() (*Lease, error) { return o.guard.Begin() }

// Busy reports whether a pass is running.
func (o *Optimizer) Busy() bool { return o.guard.Busy() }

// Optimize assigns fresh label placements to a copy of slots and relaxes
// label collisions. The input slice is not modified.
func (o *Optimizer) Optimize(lease *Lease, slots []Slot, geo Geometry, m Measurer) ([]Slot, Stats, error) {
	if !lease.holds(&o.guard) {
		return nil, Stats{}, ErrInvalidLease
	}
	out := o.cfg.Assign(slots)
	stats := o.relax(out, geo, m)
	return out, stats, nil
}

// Relax runs only the relaxation loop on a copy of slots, keeping their
// current placements as the starting point. Relaxing an arrangement that has
// no collisions performs no pushes.
func (o *Optimizer) Relax(lease *Lease, slots []Slot, geo Geometry, m Measurer) ([]Slot, Stats, error) {
	if !lease.holds(&o.guard) {
		return nil, Stats{}, ErrInvalidLease
	}
	out := slices.Clone(slots)
	stats := o.relax(out, geo, m)
	return out, stats, nil
}

// Assign computes the starting placement of every slot: distance multiplier,
// anchor, rotation and font scale. It returns a new slice in input order.
//
// Rotation is taken from the slot angle in signed degrees, (-180, 180], so
// seats on the upper half of the circle tilt counter-clockwise: a seat at
// 300° rotates by -9°, not +20°.
func (c Config) Assign(slots []Slot) []Slot {
	n := len(slots)
	if n == 0 {
		return nil
	}
	out := slices.Clone(slots)

	// Angular order only feeds the spacing heuristic; identity stays with Index.
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		if d := cmp.Compare(out[a].Angle, out[b].Angle); d != 0 {
			return d
		}
		return cmp.Compare(out[a].Index, out[b].Index)
	})

	rotation, fontScale := c.Readability(n)
	for sortIndex, i := range order {
		s := &out[i]
		s.DistanceMultiplier = c.ClampDistance(c.StartDistance(n, sortIndex, s.Angle))
		s.Anchor = AnchorFor(s.Angle)
		s.RotationDegrees = 0
		s.FontScale = fontScale
		if rotation {
			s.RotationDegrees = geom.Clamp(seating.SignedDegrees(s.Angle)*c.RotationFactor, -c.MaxRotation, c.MaxRotation)
		}
	}
	return out
}

// StartDistance returns the unclamped starting distance multiplier for the
// slot at sortIndex in angular order when n seats are placed.
func (c Config) StartDistance(n, sortIndex int, angle float64) float64 {
	var d float64
	switch {
	case n <= c.UniformMax:
		d = c.BaseDistance
	case n <= c.AlternateMax:
		d = c.BaseDistance
		if sortIndex%2 == 1 {
			d = c.AlternateDistance
		}
	default:
		d = c.BaseDistance + float64(sortIndex)*c.SpiralStep
		if sortIndex%2 == 1 {
			d += c.SpiralOddBonus
		}
	}
	if math.Abs(math.Cos(angle)) > c.HorizontalCos {
		d += c.HorizontalBonus
	}
	return d
}

// ClampDistance limits d to the configured distance bounds.
func (c Config) ClampDistance(d float64) float64 {
	return geom.Clamp(d, c.MinDistance, c.MaxDistance)
}

// Readability reports whether labels rotate for n seats and the font scale
// every label uses.
func (c Config) Readability(n int) (rotate bool, fontScale float64) {
	if n <= c.RotateAbove {
		return false, 1
	}
	scale := 1 - c.FontShrink*float64(n-c.RotateAbove)
	return true, geom.Clamp(scale, c.MinFontScale, 1)
}

// relax pushes colliding label pairs outward for at most MaxRounds rounds.
// Boxes are cached per slot and re-measured only after a push.
func (o *Optimizer) relax(slots []Slot, geo Geometry, m Measurer) Stats {
	var stats Stats
	n := len(slots)
	if n < 2 {
		stats.Converged = true
		return stats
	}

	boxes := make([]geom.Rect, n)
	errs := make([]error, n)
	fresh := make([]bool, n)
	measure := func(i int) (geom.Rect, bool) {
		if !fresh[i] {
			boxes[i], errs[i] = m.MeasureLabel(geo.Label(slots[i]))
			fresh[i] = true
			stats.Measurements++
			if errs[i] != nil {
				stats.Failures++
			}
		}
		return boxes[i], errs[i] == nil
	}

	for round := 0; round < o.cfg.MaxRounds; round++ {
		collided := false
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				a, okA := measure(i)
				b, okB := measure(j)
				if !okA || !okB || !a.Near(b, o.cfg.Gap) {
					continue
				}
				collided = true
				stats.Pushes++
				o.push(&slots[i])
				o.push(&slots[j])
				fresh[i], fresh[j] = false, false
			}
		}
		if !collided {
			stats.Converged = true
			return stats
		}
		stats.Rounds++
	}
	return stats
}

// push moves a label outward by one step, never past MaxDistance and never
// inward.
func (o *Optimizer) push(s *Slot) {
	s.DistanceMultiplier = max(s.DistanceMultiplier, min(o.cfg.MaxDistance, s.DistanceMultiplier+o.cfg.PushStep))
}
