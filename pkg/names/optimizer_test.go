package names

import (
	"errors"
	"math"
	"slices"
	"testing"

	"github.com/matzehuels/townsquare/pkg/geom"
	"github.com/matzehuels/townsquare/pkg/seating"
)

// pointMeasurer reports zero-size boxes at the label anchor and square
// token boxes.
type pointMeasurer struct {
	labels int
	fail   map[int]bool
}

func (m *pointMeasurer) MeasureLabel(l Label) (geom.Rect, error) {
	m.labels++
	if m.fail[l.Slot] {
		return geom.Rect{}, errors.New("not attached")
	}
	return geom.RectAround(l.Anchor, geom.Size{}), nil
}

func (m *pointMeasurer) MeasureToken(t Token) (geom.Rect, error) {
	return geom.RectAround(t.Center, geom.Size{W: t.Size, H: t.Size}), nil
}

// stackedMeasurer reports the same box for every label, so every pair
// always collides.
type stackedMeasurer struct{}

func (stackedMeasurer) MeasureLabel(Label) (geom.Rect, error) {
	return geom.Rect{Right: 10, Bottom: 10}, nil
}

func (stackedMeasurer) MeasureToken(Token) (geom.Rect, error) {
	return geom.Rect{Right: 10, Bottom: 10}, nil
}

func makeSlots(n int, tokenSize float64) []Slot {
	slots := make([]Slot, n)
	for i, a := range seating.Angles(n, 0) {
		slots[i] = Slot{Index: i, Name: "p", Angle: a, TokenSize: tokenSize}
	}
	return slots
}

func begin(t *testing.T, o *Optimizer) *Lease {
	t.Helper()
	lease, err := o.Begin()
	if err != nil {
		t.Fatalf("Begin() error: %v", err)
	}
	t.Cleanup(lease.Release)
	return lease
}

func TestAssignUniform(t *testing.T) {
	out := DefaultConfig().Assign(makeSlots(8, 64))
	for _, s := range out {
		want := DefaultMinDistance // 0.8 clamps up to the lower bound
		if math.Abs(math.Cos(s.Angle)) > DefaultHorizontalCos {
			want = DefaultBaseDistance + DefaultHorizontalBonus
		}
		if !approx(s.DistanceMultiplier, want) {
			t.Errorf("slot %d distance = %v, want %v", s.Index, s.DistanceMultiplier, want)
		}
		if s.RotationDegrees != 0 || s.FontScale != 1 {
			t.Errorf("slot %d should not rotate or shrink with 8 seats", s.Index)
		}
	}
}

func TestAssignAlternate(t *testing.T) {
	out := DefaultConfig().Assign(makeSlots(12, 64))
	tests := []struct {
		slot int
		want float64
	}{
		{0, 1.0},  // even, horizontal
		{1, 1.6},  // odd, 30° is near horizontal
		{2, 0.9},  // even, 60°, clamped up
		{3, 1.4},  // odd, vertical
		{6, 1.0},  // even, 180°
		{11, 1.6}, // odd, 330°
	}
	for _, tt := range tests {
		if got := out[tt.slot].DistanceMultiplier; !approx(got, tt.want) {
			t.Errorf("slot %d distance = %v, want %v", tt.slot, got, tt.want)
		}
	}
}

func TestAssignRotationSign(t *testing.T) {
	tests := []struct {
		degrees float64
		want    float64
	}{
		{30, 4.5},
		{180, 20},
		{200, -20},
		{300, -9},
	}
	for _, tt := range tests {
		slots := makeSlots(16, 64)
		slots[0].Angle = seating.Radians(tt.degrees)
		out := DefaultConfig().Assign(slots)
		if !approx(out[0].RotationDegrees, tt.want) {
			t.Errorf("%v°: rotation = %v, want %v", tt.degrees, out[0].RotationDegrees, tt.want)
		}
	}
}

func TestAssignSpiral(t *testing.T) {
	out := DefaultConfig().Assign(makeSlots(16, 64))
	tests := []struct {
		slot     int
		distance float64
		rotation float64
	}{
		{0, 1.0, 0},
		{1, 1.65, 3.375},
		{2, 1.3, 6.75},
		{3, 1.95, 10.125},
		{4, 1.8, 13.5},
		{5, 2.0, 16.875},
		{8, 2.0, 20},
		{12, 2.0, -13.5}, // 270° counts as -90°
	}
	for _, tt := range tests {
		s := out[tt.slot]
		if !approx(s.DistanceMultiplier, tt.distance) {
			t.Errorf("slot %d distance = %v, want %v", tt.slot, s.DistanceMultiplier, tt.distance)
		}
		if !approx(s.RotationDegrees, tt.rotation) {
			t.Errorf("slot %d rotation = %v, want %v", tt.slot, s.RotationDegrees, tt.rotation)
		}
		if !approx(s.FontScale, 0.88) {
			t.Errorf("slot %d font scale = %v, want 0.88", tt.slot, s.FontScale)
		}
	}
}

func TestAssignBounds(t *testing.T) {
	cfg := DefaultConfig()
	for n := 1; n <= 20; n++ {
		for _, s := range cfg.Assign(makeSlots(n, 64)) {
			if s.DistanceMultiplier < DefaultMinDistance || s.DistanceMultiplier > DefaultMaxDistance {
				t.Errorf("n=%d slot %d distance %v out of bounds", n, s.Index, s.DistanceMultiplier)
			}
			if math.Abs(s.RotationDegrees) > DefaultMaxRotation {
				t.Errorf("n=%d slot %d rotation %v out of bounds", n, s.Index, s.RotationDegrees)
			}
			if s.FontScale < DefaultMinFontScale || s.FontScale > 1 {
				t.Errorf("n=%d slot %d font scale %v out of bounds", n, s.Index, s.FontScale)
			}
		}
	}
	_, scale := cfg.Readability(20)
	if !approx(scale, DefaultMinFontScale) {
		t.Errorf("Readability(20) font scale = %v, want floor %v", scale, DefaultMinFontScale)
	}
}

func TestAssignAnchor(t *testing.T) {
	out := DefaultConfig().Assign(makeSlots(4, 64))
	want := []Anchor{Below, Below, Below, Above} // 0°, 90°, 180°, 270°
	for i, s := range out {
		if s.Anchor != want[i] {
			t.Errorf("slot %d anchor = %v, want %v", i, s.Anchor, want[i])
		}
	}
}

func TestAssignKeepsParticipantOrder(t *testing.T) {
	in := makeSlots(6, 64)
	// Rotate the circle so angular order no longer starts at slot 0.
	for i := range in {
		in[i].Angle = seating.Angle(i, 6, math.Pi)
	}
	out := DefaultConfig().Assign(in)
	for i, s := range out {
		if s.Index != i || s.Angle != in[i].Angle {
			t.Errorf("Assign reordered slot %d: got index %d angle %v", i, s.Index, s.Angle)
		}
	}
}

func TestStartDistanceMonotonicInCount(t *testing.T) {
	cfg := DefaultConfig()
	for k := 0; k < 5; k++ {
		angle := seating.Angle(k, 5, 0)
		small := cfg.StartDistance(5, k, angle)
		large := cfg.StartDistance(16, k, angle)
		if small > large {
			t.Errorf("sort index %d: distance for 5 seats (%v) exceeds 16 seats (%v)", k, small, large)
		}
	}
}

func TestOptimizeEmpty(t *testing.T) {
	o := New(DefaultConfig())
	m := &pointMeasurer{}
	out, stats, err := o.Optimize(begin(t, o), nil, Geometry{}, m)
	if err != nil {
		t.Fatalf("Optimize() error: %v", err)
	}
	if len(out) != 0 || m.labels != 0 || stats.Measurements != 0 {
		t.Errorf("empty input should not measure: out=%d calls=%d", len(out), m.labels)
	}
}

func TestOptimizeRelaxesAndReachesFixedPoint(t *testing.T) {
	// Two labels 0.1 rad apart at distance 100 sit 9.98px apart vertically,
	// inside the 10px gap. One push (to 102.5) separates them.
	slots := []Slot{
		{Index: 0, Name: "a", Angle: 0, TokenSize: 10},
		{Index: 1, Name: "b", Angle: 0.1, TokenSize: 10},
	}
	geo := Geometry{Center: seating.PixelCenter(0, 0), Radius: 90}
	o := New(DefaultConfig())
	lease := begin(t, o)

	out, stats, err := o.Optimize(lease, slots, geo, &pointMeasurer{})
	if err != nil {
		t.Fatalf("Optimize() error: %v", err)
	}
	if stats.Rounds != 1 || stats.Pushes != 1 || !stats.Converged {
		t.Fatalf("stats = %+v, want 1 round, 1 push, converged", stats)
	}
	for _, s := range out {
		if !approx(s.DistanceMultiplier, 1.25) {
			t.Errorf("slot %d distance = %v, want 1.25", s.Index, s.DistanceMultiplier)
		}
	}
	if slots[0].DistanceMultiplier != 0 {
		t.Error("Optimize modified its input")
	}

	again, stats, err := o.Relax(lease, out, geo, &pointMeasurer{})
	if err != nil {
		t.Fatalf("Relax() error: %v", err)
	}
	if stats.Rounds != 0 || stats.Pushes != 0 || !stats.Converged {
		t.Errorf("relaxing a settled layout: stats = %+v, want no work", stats)
	}
	if !slices.Equal(again, out) {
		t.Errorf("relaxing a settled layout changed it: %v vs %v", again, out)
	}
}

func TestOptimizeRoundCap(t *testing.T) {
	o := New(DefaultConfig())
	out, stats, err := o.Optimize(begin(t, o), makeSlots(3, 64), Geometry{}, stackedMeasurer{})
	if err != nil {
		t.Fatalf("Optimize() error: %v", err)
	}
	if stats.Rounds != DefaultMaxRounds || stats.Converged {
		t.Errorf("stats = %+v, want %d rounds without convergence", stats, DefaultMaxRounds)
	}
	for _, s := range out {
		if s.DistanceMultiplier != DefaultMaxDistance {
			t.Errorf("slot %d distance = %v, want capped at %v", s.Index, s.DistanceMultiplier, DefaultMaxDistance)
		}
	}
}

func TestOptimizeMeasurementFailureCountsAsNoOverlap(t *testing.T) {
	o := New(DefaultConfig())
	m := &pointMeasurer{fail: map[int]bool{0: true, 1: true}}
	slots := []Slot{
		{Index: 0, Name: "a", Angle: 0, TokenSize: 10},
		{Index: 1, Name: "b", Angle: 0.1, TokenSize: 10},
	}
	out, stats, err := o.Optimize(begin(t, o), slots, Geometry{Radius: 90}, m)
	if err != nil {
		t.Fatalf("Optimize() error: %v", err)
	}
	if stats.Pushes != 0 || !stats.Converged || stats.Failures == 0 {
		t.Errorf("stats = %+v, want failures and no pushes", stats)
	}
	if !approx(out[0].DistanceMultiplier, 1.0) {
		t.Errorf("distance = %v, want unchanged 1.0", out[0].DistanceMultiplier)
	}
}

func TestGuard(t *testing.T) {
	o := New(DefaultConfig())

	lease, err := o.Begin()
	if err != nil {
		t.Fatalf("Begin() error: %v", err)
	}
	if _, err := o.Begin(); !errors.Is(err, ErrPassInProgress) {
		t.Fatalf("second Begin() error = %v, want ErrPassInProgress", err)
	}
	if !o.Busy() {
		t.Error("Busy() should be true while a lease is held")
	}

	lease.Release()
	lease.Release()
	if o.Busy() {
		t.Error("Busy() should be false after Release")
	}
	if _, _, err := o.Optimize(lease, makeSlots(2, 64), Geometry{}, &pointMeasurer{}); !errors.Is(err, ErrInvalidLease) {
		t.Errorf("Optimize with released lease error = %v, want ErrInvalidLease", err)
	}

	other := New(DefaultConfig())
	foreign := begin(t, other)
	if _, _, err := o.Optimize(foreign, makeSlots(2, 64), Geometry{}, &pointMeasurer{}); !errors.Is(err, ErrInvalidLease) {
		t.Errorf("Optimize with foreign lease error = %v, want ErrInvalidLease", err)
	}

	next := begin(t, o)
	if next.ID == lease.ID {
		t.Error("leases should carry distinct IDs")
	}
}

// reentrantMeasurer tries to start a second pass while measuring.
type reentrantMeasurer struct {
	pointMeasurer
	opt  *Optimizer
	errs []error
}

func (m *reentrantMeasurer) MeasureLabel(l Label) (geom.Rect, error) {
	if _, err := m.opt.Begin(); err != nil {
		m.errs = append(m.errs, err)
	}
	return m.pointMeasurer.MeasureLabel(l)
}

func TestReentrantPassIsRejected(t *testing.T) {
	o := New(DefaultConfig())
	m := &reentrantMeasurer{opt: o}
	if _, _, err := o.Optimize(begin(t, o), makeSlots(5, 64), Geometry{Radius: 200}, m); err != nil {
		t.Fatalf("Optimize() error: %v", err)
	}
	if len(m.errs) == 0 {
		t.Fatal("measurer was never called")
	}
	for _, err := range m.errs {
		if !errors.Is(err, ErrPassInProgress) {
			t.Errorf("re-entrant Begin() error = %v, want ErrPassInProgress", err)
		}
	}
}

func TestAnchorText(t *testing.T) {
	for _, a := range []Anchor{Above, Below} {
		b, _ := a.MarshalText()
		var got Anchor
		if err := got.UnmarshalText(b); err != nil || got != a {
			t.Errorf("round trip of %v = %v, %v", a, got, err)
		}
	}
	var a Anchor
	if err := a.UnmarshalText([]byte("left")); err == nil {
		t.Error("UnmarshalText should reject unknown anchors")
	}
}

func TestConfigValidate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	bad := DefaultConfig()
	bad.MaxDistance = 0.5
	if bad.Validate() == nil {
		t.Error("Validate() should reject max_distance below min_distance")
	}
}

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }
