// Package pipeline provides the layout → render pipeline for townsquare.
//
// This package implements the complete pipeline that the CLI and the HTTP
// API share. By centralizing this logic, both entry points validate, cache,
// log and emit observability events the same way.
//
// # Architecture
//
// The pipeline consists of two stages:
//
//  1. Layout: seat placement, name placement and stacking (see [layout.Engine])
//  2. Render: output in various formats (SVG, PNG, PDF, JSON, DOT)
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Participants: pipeline.FromNames("Ada", "Brin", "Cato", "Dax", "Eve"),
//	    Formats:      []string{"svg"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// Run individual stages:
//
//	res, err := runner.ComputeLayout(ctx, opts)
//	artifacts, err := runner.Render(ctx, res, opts)
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/townsquare/pkg/cache"
	"github.com/matzehuels/townsquare/pkg/config"
	terr "github.com/matzehuels/townsquare/pkg/errors"
	"github.com/matzehuels/townsquare/pkg/layout"
	"github.com/matzehuels/townsquare/pkg/measure"
	"github.com/matzehuels/townsquare/pkg/names"
	"github.com/matzehuels/townsquare/pkg/seating"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultWidth is the default viewport width in pixels.
	DefaultWidth = 1366.0

	// DefaultHeight is the default viewport height in pixels.
	DefaultHeight = 768.0

	// DefaultPNGScale is the resolution factor of PNG output.
	DefaultPNGScale = 2.0
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
	FormatDOT  = "dot"
)

// Formats lists the supported output formats.
var Formats = []string{FormatSVG, FormatPNG, FormatPDF, FormatJSON, FormatDOT}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Participant is one seat of the table.
type Participant struct {
	Name string `toml:"name" json:"name"`
	// Reminders is the number of reminder markers stacked on the seat.
	Reminders int `toml:"reminders" json:"reminders,omitempty"`
	// Expanded shows every reminder instead of a single collapsed marker.
	Expanded bool `toml:"expanded" json:"expanded,omitempty"`
}

// Options contains all configuration for the pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Layout options
	Participants []Participant `json:"participants"`
	Width        float64       `json:"width,omitempty"`
	Height       float64       `json:"height,omitempty"`
	Margin       float64       `json:"margin,omitempty"` // 0 = config, then derived budget
	TokenSize    float64       `json:"token_size,omitempty"`
	PhaseDegrees float64       `json:"phase_degrees,omitempty"`
	Refresh      bool          `json:"refresh,omitempty"` // Skip the layout cache

	// Render options
	Formats   []string `json:"formats,omitempty"`
	ShowBoxes bool     `json:"show_boxes,omitempty"`

	// Runtime options (not serialized)
	Config   *config.Config `json:"-"`
	Engine   *layout.Engine `json:"-"` // Shared engine; nil creates one per pass
	Scope    string         `json:"-"` // Cache namespace, e.g. a table ID
	Measurer names.Measurer `json:"-"` // nil uses the theme's Heuristic
	Logger   *log.Logger    `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Layout is the computed seat layout.
	Layout layout.Result

	// LayoutHash is the content hash of the JSON-encoded layout.
	LayoutHash string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Participants int
	Rounds       int
	Overlaps     int
	LayoutTime   time.Duration
	RenderTime   time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool // Whether the layout came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	return terr.ValidateFormat(format, Formats)
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the full pipeline.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// SetLayoutDefaults sets default values for layout computation.
func (o *Options) SetLayoutDefaults() {
	if o.Config == nil {
		cfg := config.Default()
		o.Config = &cfg
	}
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.TokenSize == 0 {
		o.TokenSize = o.Config.Theme.TokenSize
	}
	if o.PhaseDegrees == 0 {
		o.PhaseDegrees = o.Config.Layout.PhaseDegrees
	}
	if o.Margin == 0 {
		o.Margin = o.Config.Margin(o.Names())
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForLayout validates and sets defaults for layout computation.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	if err := o.Config.Validate(); err != nil {
		return err
	}
	if err := terr.ValidateParticipants(o.Names(), o.Config.Layout.MinParticipants, o.Config.Layout.MaxParticipants); err != nil {
		return err
	}
	for _, p := range o.Participants {
		if p.Reminders < 0 {
			return terr.New(terr.ErrCodeInvalidInput, "participant %q has a negative reminder count", p.Name)
		}
	}
	if o.TokenSize <= 0 {
		return terr.New(terr.ErrCodeInvalidInput, "token size must be positive")
	}
	return terr.ValidateViewport(o.Width, o.Height, o.Margin)
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	o.Formats = dedupe(o.Formats)
	if o.Config == nil {
		cfg := config.Default()
		o.Config = &cfg
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// dedupe drops repeated formats, keeping the first occurrence.
func dedupe(formats []string) []string {
	seen := make(map[string]bool, len(formats))
	out := formats[:0:0]
	for _, f := range formats {
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	return out
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	return ValidateFormats(o.Formats)
}

// Names returns the participant names in seating order.
func (o *Options) Names() []string {
	out := make([]string, len(o.Participants))
	for i, p := range o.Participants {
		out[i] = p.Name
	}
	return out
}

// Reminders returns the reminder stacks keyed by seat index, or nil when no
// seat carries reminders.
func (o *Options) Reminders() map[int]measure.Stack {
	var out map[int]measure.Stack
	for i, p := range o.Participants {
		if p.Reminders <= 0 {
			continue
		}
		if out == nil {
			out = make(map[int]measure.Stack)
		}
		out[i] = measure.Stack{Count: p.Reminders, Expanded: p.Expanded}
	}
	return out
}

// Input returns the layout engine input.
func (o *Options) Input() layout.Input {
	return layout.Input{
		Names:        o.Names(),
		Viewport:     seating.Viewport{Width: o.Width, Height: o.Height, Margin: o.Margin},
		TokenSize:    o.TokenSize,
		PhaseDegrees: o.PhaseDegrees,
	}
}

// Heuristic returns the headless measurer for the configured theme and the
// participants' reminder stacks.
func (o *Options) Heuristic() *measure.Heuristic {
	return measure.NewHeuristic(o.Config.Theme.Metrics(), o.Reminders())
}

// measurer returns the measurer a pass runs with.
func (o *Options) measurer() names.Measurer {
	if o.Measurer != nil {
		return o.Measurer
	}
	return o.Heuristic()
}

// EngineConfig returns the engine configuration a pass runs with.
func (o *Options) EngineConfig() layout.Config {
	if o.Engine != nil {
		return o.Engine.Config()
	}
	return o.Config.Engine()
}

// InputHash identifies the participants, including their reminder stacks.
func (o *Options) InputHash() string {
	return cache.HashJSON(o.Participants)
}

// LayoutKeyOpts returns cache key options for layout computation. The
// measurer is not part of the key; runs with an injected Measurer bypass
// the layout cache.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	cfg := cache.HashJSON(struct {
		Theme  config.Theme  `json:"theme"`
		Engine layout.Config `json:"engine"`
	}{o.Config.Theme, o.EngineConfig()})
	return cache.LayoutKeyOpts{
		Width:        o.Width,
		Height:       o.Height,
		Margin:       o.Margin,
		TokenSize:    o.TokenSize,
		PhaseDegrees: o.PhaseDegrees,
		ConfigHash:   cfg,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:    format,
		ShowBoxes: o.ShowBoxes,
		Reminders: len(o.Reminders()) > 0,
	}
}

// layoutTTL returns the configured layout cache lifetime.
func (o *Options) layoutTTL() time.Duration {
	if o.Config != nil && o.Config.Cache.TTL > 0 {
		return o.Config.Cache.TTL
	}
	return cache.TTLLayout
}
