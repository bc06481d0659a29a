package layout

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/matzehuels/townsquare/pkg/geom"
	"github.com/matzehuels/townsquare/pkg/names"
	"github.com/matzehuels/townsquare/pkg/seating"
	"github.com/matzehuels/townsquare/pkg/stacking"
)

// OverlayMeasurer is implemented by measurers that know about decorations
// attached to a seat, such as reminder stacks. When available, the overlay
// box replaces the label box for stacking.
type OverlayMeasurer interface {
	MeasureOverlay(l names.Label) (geom.Rect, error)
}

// Config bundles the tunables of every stage.
type Config struct {
	Optimizer names.Config    `toml:"optimizer" json:"optimizer"`
	Stacking  stacking.Config `toml:"stacking" json:"stacking"`
}

// DefaultConfig returns the default configuration of every stage.
func DefaultConfig() Config {
	return Config{Optimizer: names.DefaultConfig(), Stacking: stacking.DefaultConfig()}
}

// Validate checks every stage.
func (c Config) Validate() error {
	if err := c.Optimizer.Validate(); err != nil {
		return fmt.Errorf("optimizer: %w", err)
	}
	if err := c.Stacking.Validate(); err != nil {
		return fmt.Errorf("stacking: %w", err)
	}
	return nil
}

// Input is everything one pass needs besides the measurer.
type Input struct {
	// Names are the participants in seating order.
	Names []string `json:"names"`
	// Viewport is the drawing surface; its margin shrinks the seat circle.
	Viewport seating.Viewport `json:"viewport"`
	// TokenSize is the edge length of a seat token in pixels.
	TokenSize float64 `json:"token_size"`
	// PhaseDegrees rotates the whole circle.
	PhaseDegrees float64 `json:"phase_degrees,omitempty"`
}

// SlotResult is everything a renderer applies to one seat.
type SlotResult struct {
	names.Slot

	Token        seating.Placement `json:"token"`
	TokenPercent seating.Placement `json:"token_percent"`
	Label        seating.Placement `json:"label"`
	LabelPercent seating.Placement `json:"label_percent"`

	TokenBox    geom.Rect `json:"token_box"`
	LabelBox    geom.Rect `json:"label_box"`
	OverlayBox  geom.Rect `json:"overlay_box"`
	HasTokenBox bool      `json:"has_token_box"`
	HasLabelBox bool      `json:"has_label_box"`

	// Z is the z-index of the seat's token container.
	Z int `json:"z"`
}

// Result is the outcome of one pass.
type Result struct {
	Slots     []SlotResult        `json:"slots"`
	Viewport  seating.Viewport    `json:"viewport"`
	Center    geom.Point          `json:"center"`
	Radius    float64             `json:"radius"`
	Optimizer names.Stats         `json:"optimizer"`
	Stacking  stacking.Assignment `json:"stacking"`
	LeaseID   uuid.UUID           `json:"lease_id"`
}

// Tokens returns the token boxes in seat order, for hit-testing.
func (r Result) Tokens() []geom.Rect {
	out := make([]geom.Rect, len(r.Slots))
	for i, s := range r.Slots {
		if s.HasTokenBox {
			out[i] = s.TokenBox
		}
	}
	return out
}

// HitTest returns the seat whose token is on top at p.
func (r Result) HitTest(p geom.Point) (int, bool) {
	return stacking.HitTest(p, r.Tokens(), r.Stacking.Z)
}

// Engine runs layout passes for one seat container. It is safe to call from
// several goroutines, but only one pass runs at a time.
type Engine struct {
	cfg Config
	opt *names.Optimizer
}

// New returns an engine using cfg.
func New(cfg Config) *Engine {
	return &Engine{cfg: cfg, opt: names.New(cfg.Optimizer)}
}

// Config returns the engine configuration.
func (e *Engine) Config() Config { return e.cfg }

// Busy reports whether a pass is running.
func (e *Engine) Busy() bool { return e.opt.Busy() }

// Compute runs a full pass: seat placement, label optimization and stacking.
// It returns names.ErrPassInProgress, and nothing else, when another pass
// holds the engine.
func (e *Engine) Compute(in Input, m names.Measurer) (Result, error) {
	lease, err := e.opt.Begin()
	if err != nil {
		return Result{}, err
	}
	defer lease.Release()

	v := in.Viewport
	center := v.Center()
	res := Result{
		Viewport: v,
		Center:   geom.Point{X: center.X, Y: center.Y},
		Radius:   seating.Radius(v),
		LeaseID:  lease.ID,
	}
	n := len(in.Names)
	if n == 0 {
		res.Optimizer.Converged = true
		res.Stacking.Converged = true
		return res, nil
	}

	geo := names.Geometry{Center: center, Radius: res.Radius}
	slots := make([]names.Slot, n)
	for i, a := range seating.Angles(n, seating.Radians(in.PhaseDegrees)) {
		slots[i] = names.Slot{Index: i, Name: in.Names[i], Angle: a, TokenSize: in.TokenSize}
	}

	slots, res.Optimizer, err = e.opt.Optimize(lease, slots, geo, m)
	if err != nil {
		return Result{}, err
	}

	res.Slots = make([]SlotResult, n)
	items := make([]stacking.Item, n)
	overlay, hasOverlay := m.(OverlayMeasurer)
	for i, s := range slots {
		sr := SlotResult{
			Slot:  s,
			Token: geo.TokenAt(s),
			Label: geo.LabelAt(s),
		}
		sr.TokenPercent = sr.Token.Relative(v.Width, v.Height)
		sr.LabelPercent = sr.Label.Relative(v.Width, v.Height)

		l := geo.Label(s)
		if r, err := m.MeasureToken(geo.Token(s)); err == nil {
			sr.TokenBox, sr.HasTokenBox = r, true
		}
		if r, err := m.MeasureLabel(l); err == nil {
			sr.LabelBox, sr.HasLabelBox = r, true
			sr.OverlayBox = r
		}
		if hasOverlay && sr.HasLabelBox {
			if r, err := overlay.MeasureOverlay(l); err == nil {
				sr.OverlayBox = r
			}
		}

		items[i] = stacking.Item{
			Label:    sr.OverlayBox,
			Token:    sr.TokenBox,
			HasLabel: sr.HasLabelBox,
			HasToken: sr.HasTokenBox,
		}
		res.Slots[i] = sr
	}

	res.Stacking = stacking.Resolve(items, e.cfg.Stacking)
	for i := range res.Slots {
		res.Slots[i].Z = res.Stacking.Z[i]
	}
	return res, nil
}
