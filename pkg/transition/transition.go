// Package transition animates a seat container from one layout result to the
// next, for example when a participant joins and every label moves.
//
// Seats are matched by name. Matched seats glide from their old token and
// label placements to the new ones; seats that only exist in the target fade
// in where they will sit, and seats that disappear fade out where they sat.
// There is no global animation manager: callers drive Update themselves,
// once per frame.
//
//	tr := transition.New(prev, next, 0.4, ease.OutCubic)
//	for {
//		frames, done := tr.Update(dt)
//		draw(frames)
//		if done {
//			break
//		}
//	}
package transition

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"

	"github.com/matzehuels/townsquare/pkg/geom"
	"github.com/matzehuels/townsquare/pkg/layout"
)

// Frame is the interpolated state of one seat.
type Frame struct {
	// Index is the seat index in the target layout, or in the source layout
	// for leaving seats.
	Index           int
	Name            string
	Token           geom.Point
	Label           geom.Point
	RotationDegrees float64
	FontScale       float64
	Alpha           float64
	Z               int
	Leaving         bool
}

const (
	tokenX = iota
	tokenY
	labelX
	labelY
	rotation
	fontScale
	alpha
	numFields
)

type seat struct {
	index   int
	name    string
	z       int
	leaving bool
	tweens  [numFields]*gween.Tween
}

// Transition interpolates between two layout results.
type Transition struct {
	seats []seat
	done  bool
}

// New builds the tweens from from to to over duration seconds.
func New(from, to layout.Result, duration float32, fn ease.TweenFunc) *Transition {
	if fn == nil {
		fn = ease.Linear
	}

	byName := make(map[string][]int, len(from.Slots))
	for i, s := range from.Slots {
		byName[s.Name] = append(byName[s.Name], i)
	}
	matched := make([]bool, len(from.Slots))

	t := &Transition{seats: make([]seat, 0, len(to.Slots))}
	for _, dst := range to.Slots {
		src, a0 := dst, float32(0)
		if q := byName[dst.Name]; len(q) > 0 {
			src, a0 = from.Slots[q[0]], 1
			matched[q[0]] = true
			byName[dst.Name] = q[1:]
		}
		t.seats = append(t.seats, newSeat(dst.Index, dst.Name, dst.Z, false, src, dst, a0, 1, duration, fn))
	}
	for i, src := range from.Slots {
		if !matched[i] {
			t.seats = append(t.seats, newSeat(src.Index, src.Name, src.Z, true, src, src, 1, 0, duration, fn))
		}
	}
	return t
}

func newSeat(index int, name string, z int, leaving bool, src, dst layout.SlotResult, a0, a1, duration float32, fn ease.TweenFunc) seat {
	s := seat{index: index, name: name, z: z, leaving: leaving}
	from, to := values(src), values(dst)
	for f := range s.tweens {
		s.tweens[f] = gween.New(from[f], to[f], duration, fn)
	}
	s.tweens[alpha] = gween.New(a0, a1, duration, fn)
	return s
}

func values(s layout.SlotResult) [numFields]float32 {
	var v [numFields]float32
	v[tokenX], v[tokenY] = float32(s.Token.X), float32(s.Token.Y)
	v[labelX], v[labelY] = float32(s.Label.X), float32(s.Label.Y)
	v[rotation] = float32(s.RotationDegrees)
	v[fontScale] = float32(s.FontScale)
	return v
}

// Update advances every tween by dt seconds and returns the current frames:
// target seats in seat order, then leaving seats. The second result is true
// once every tween has finished.
func (t *Transition) Update(dt float32) ([]Frame, bool) {
	frames := make([]Frame, len(t.seats))
	allDone := true
	for i := range t.seats {
		s := &t.seats[i]
		var v [numFields]float64
		for f, tw := range s.tweens {
			val, finished := tw.Update(dt)
			v[f] = float64(val)
			if !finished {
				allDone = false
			}
		}
		frames[i] = Frame{
			Index:           s.index,
			Name:            s.name,
			Token:           geom.Point{X: v[tokenX], Y: v[tokenY]},
			Label:           geom.Point{X: v[labelX], Y: v[labelY]},
			RotationDegrees: v[rotation],
			FontScale:       v[fontScale],
			Alpha:           v[alpha],
			Z:               s.z,
			Leaving:         s.leaving,
		}
	}
	t.done = allDone
	return frames, allDone
}

// Done reports whether the last Update finished every tween.
func (t *Transition) Done() bool { return t.done }
