package layout

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"

	"github.com/matzehuels/townsquare/pkg/geom"
	"github.com/matzehuels/townsquare/pkg/measure"
	"github.com/matzehuels/townsquare/pkg/names"
	"github.com/matzehuels/townsquare/pkg/seating"
)

func letters(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = string(rune('A' + i))
	}
	return out
}

func participants(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("Participant %02d", i+1)
	}
	return out
}

func TestComputeEmpty(t *testing.T) {
	eng := New(DefaultConfig())
	m := measure.NewCounting(measure.NewHeuristic(measure.DefaultMetrics(), nil))
	res, err := eng.Compute(Input{Viewport: seating.Viewport{Width: 800, Height: 600}, TokenSize: 64}, m)
	if err != nil {
		t.Fatalf("Compute() error: %v", err)
	}
	if len(res.Slots) != 0 || m.Total() != 0 {
		t.Errorf("empty pass returned %d slots after %d measurements", len(res.Slots), m.Total())
	}
	if eng.Busy() {
		t.Error("engine still busy after Compute")
	}
}

func TestComputePlacements(t *testing.T) {
	eng := New(DefaultConfig())
	res, err := eng.Compute(Input{
		Names:     letters(8),
		Viewport:  seating.Viewport{Width: 400, Height: 400, Margin: 40},
		TokenSize: 64,
	}, measure.NewHeuristic(measure.DefaultMetrics(), nil))
	if err != nil {
		t.Fatalf("Compute() error: %v", err)
	}
	if res.Radius != 160 || res.Center != (geom.Point{X: 200, Y: 200}) {
		t.Fatalf("circle = %v r=%v, want (200,200) r=160", res.Center, res.Radius)
	}
	first := res.Slots[0]
	if first.Token != (seating.Placement{X: 360, Y: 200}) {
		t.Errorf("token 0 = %+v, want (360, 200)", first.Token)
	}
	if first.TokenPercent != (seating.Placement{X: 90, Y: 50, Unit: seating.Percent}) {
		t.Errorf("token 0 percent = %+v, want (90%%, 50%%)", first.TokenPercent)
	}
	// 1.0 · 64 beyond the circle on the horizontal axis.
	if first.Label.X != 424 || first.Label.Y != 200 {
		t.Errorf("label 0 = %+v, want (424, 200)", first.Label)
	}
	for i, s := range res.Slots {
		if s.Index != i || s.Name != string(rune('A'+i)) {
			t.Errorf("slot %d reordered: index %d name %q", i, s.Index, s.Name)
		}
		if !s.HasLabelBox || !s.HasTokenBox {
			t.Errorf("slot %d missing boxes", i)
		}
	}
	if res.LeaseID == uuid.Nil {
		t.Error("result should carry the lease ID")
	}
}

// 8 seats of radius 160 with tokens of 64: ten expanded reminders on seat 0
// reach across the circle to seat 4.
func TestComputeReminderStackRaisesOppositeToken(t *testing.T) {
	in := Input{
		Names:     letters(8),
		Viewport:  seating.Viewport{Width: 400, Height: 400, Margin: 40},
		TokenSize: 64,
	}
	eng := New(DefaultConfig())

	baseline, err := eng.Compute(in, measure.NewHeuristic(measure.DefaultMetrics(), nil))
	if err != nil {
		t.Fatalf("Compute() error: %v", err)
	}
	if baseline.Stacking.MaxZ != 0 || baseline.Stacking.Overlaps != 0 {
		t.Fatalf("baseline has overlaps: %+v", baseline.Stacking)
	}

	h := measure.NewHeuristic(measure.DefaultMetrics(), map[int]measure.Stack{
		0: {Count: 10, Expanded: true},
	})
	res, err := eng.Compute(in, h)
	if err != nil {
		t.Fatalf("Compute() error: %v", err)
	}

	for i, s := range res.Slots {
		want := 0
		if i == 4 {
			want = 1
		}
		if s.Z != want {
			t.Errorf("z(%d) = %d, want %d", i, s.Z, want)
		}
	}
	if res.Stacking.Cyclic || !res.Stacking.Converged {
		t.Errorf("stacking diagnostics = %+v", res.Stacking)
	}

	centroids := h.ReminderCentroids(names.Token{
		Slot:   0,
		Center: res.Slots[0].Token.Point(),
		Size:   in.TokenSize,
		Angle:  res.Slots[0].Angle,
	})
	if len(centroids) != 10 {
		t.Fatalf("got %d reminder markers, want 10", len(centroids))
	}
	outer := centroids[len(centroids)-1]
	if outer.Dist(geom.Point{X: 24, Y: 200}) > 1e-9 {
		t.Fatalf("outermost reminder at %+v, want (24, 200)", outer)
	}
	hit, ok := res.HitTest(outer)
	if !ok || hit != 4 {
		t.Errorf("HitTest(outermost reminder) = %d, %v, want seat 4", hit, ok)
	}
	if res.Slots[4].Z <= res.Slots[0].Z {
		t.Errorf("z(4)=%d must exceed z(0)=%d", res.Slots[4].Z, res.Slots[0].Z)
	}
}

func TestComputeLabelsStayInsideViewport(t *testing.T) {
	metrics := measure.DefaultMetrics()
	cfg := DefaultConfig()
	ps := participants(20)
	margin := seating.MarginBudget(64, cfg.Optimizer.MaxDistance, metrics.Extent(ps), 8)

	v := seating.Viewport{Width: 1366, Height: 768, Margin: margin}
	res, err := New(cfg).Compute(Input{Names: ps, Viewport: v, TokenSize: 64}, measure.NewHeuristic(metrics, nil))
	if err != nil {
		t.Fatalf("Compute() error: %v", err)
	}
	if res.Radius <= 0 {
		t.Fatalf("margin %v leaves no room for the circle", margin)
	}
	for _, s := range res.Slots {
		if !s.LabelBox.Within(v.Bounds()) {
			t.Errorf("label %q box %+v leaves the viewport", s.Name, s.LabelBox)
		}
	}
}

func TestComputeTransitions(t *testing.T) {
	eng := New(DefaultConfig())
	h := measure.NewHeuristic(measure.DefaultMetrics(), nil)
	v := seating.Viewport{Width: 1366, Height: 768, Margin: 150}

	for _, n := range []int{5, 20, 5, 12, 20} {
		res, err := eng.Compute(Input{Names: participants(n), Viewport: v, TokenSize: 64}, h)
		if err != nil {
			t.Fatalf("n=%d: Compute() error: %v", n, err)
		}
		if len(res.Slots) != n {
			t.Fatalf("n=%d: got %d slots", n, len(res.Slots))
		}
		if res.Optimizer.Rounds > names.DefaultMaxRounds {
			t.Errorf("n=%d: %d rounds exceeds the cap", n, res.Optimizer.Rounds)
		}
		for _, s := range res.Slots {
			if s.DistanceMultiplier < names.DefaultMinDistance || s.DistanceMultiplier > names.DefaultMaxDistance {
				t.Errorf("n=%d slot %d: distance %v out of bounds", n, s.Index, s.DistanceMultiplier)
			}
		}
	}
}

// reentrant starts a nested pass from inside a measurement.
type reentrant struct {
	*measure.Heuristic
	eng  *Engine
	errs []error
}

func (r *reentrant) MeasureLabel(l names.Label) (geom.Rect, error) {
	if len(r.errs) == 0 {
		_, err := r.eng.Compute(Input{Names: letters(5), TokenSize: 64}, r.Heuristic)
		r.errs = append(r.errs, err)
	}
	return r.Heuristic.MeasureLabel(l)
}

func TestComputeRejectsOverlappingPass(t *testing.T) {
	eng := New(DefaultConfig())
	m := &reentrant{Heuristic: measure.NewHeuristic(measure.DefaultMetrics(), nil), eng: eng}
	_, err := eng.Compute(Input{
		Names:     letters(6),
		Viewport:  seating.Viewport{Width: 800, Height: 600},
		TokenSize: 64,
	}, m)
	if err != nil {
		t.Fatalf("outer Compute() error: %v", err)
	}
	if len(m.errs) != 1 || !errors.Is(m.errs[0], names.ErrPassInProgress) {
		t.Errorf("nested Compute() errors = %v, want ErrPassInProgress", m.errs)
	}
	if eng.Busy() {
		t.Error("engine still busy after Compute")
	}
}

type labelFailure struct{ *measure.Heuristic }

func (labelFailure) MeasureLabel(names.Label) (geom.Rect, error) {
	return geom.Rect{}, errors.New("label not mounted")
}

func TestComputeMeasurementFailure(t *testing.T) {
	res, err := New(DefaultConfig()).Compute(Input{
		Names:     letters(10),
		Viewport:  seating.Viewport{Width: 200, Height: 200},
		TokenSize: 64,
	}, labelFailure{measure.NewHeuristic(measure.DefaultMetrics(), nil)})
	if err != nil {
		t.Fatalf("Compute() error: %v", err)
	}
	if res.Optimizer.Pushes != 0 || res.Stacking.Overlaps != 0 {
		t.Errorf("failed measurements must count as no overlap: %+v %+v", res.Optimizer, res.Stacking)
	}
	for _, s := range res.Slots {
		if s.HasLabelBox {
			t.Errorf("slot %d reports a label box", s.Index)
		}
	}
}

func TestApplyPaintingOrder(t *testing.T) {
	res := Result{Slots: make([]SlotResult, 3)}
	res.Stacking.Z = []int{2, 0, 1}
	for i := range res.Slots {
		res.Slots[i].Index = i
	}

	var got []int
	err := Apply(res, ApplierFunc(func(s SlotResult) error {
		got = append(got, s.Index)
		return nil
	}))
	if err != nil {
		t.Fatalf("Apply() error: %v", err)
	}
	if fmt.Sprint(got) != "[1 2 0]" {
		t.Errorf("painting order = %v, want [1 2 0]", got)
	}

	stop := errors.New("stop")
	calls := 0
	err = Apply(res, ApplierFunc(func(SlotResult) error {
		calls++
		return stop
	}))
	if !errors.Is(err, stop) || calls != 1 {
		t.Errorf("Apply() = %v after %d calls, want first error", err, calls)
	}
}
