package cache

// Keyer builds cache keys. Implementations must be deterministic: equal
// inputs yield equal keys.
type Keyer interface {
	// LayoutKey returns the key of a layout computed from the participants
	// identified by inputHash.
	LayoutKey(inputHash string, opts LayoutKeyOpts) string

	// ArtifactKey returns the key of an artifact rendered from a layout.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// LayoutKeyOpts are the layout inputs besides the participants.
type LayoutKeyOpts struct {
	Width        float64 `json:"width"`
	Height       float64 `json:"height"`
	Margin       float64 `json:"margin"`
	TokenSize    float64 `json:"token_size"`
	PhaseDegrees float64 `json:"phase_degrees"`
	// ConfigHash identifies the engine and theme configuration.
	ConfigHash string `json:"config_hash"`
}

// ArtifactKeyOpts are the render options of an artifact.
type ArtifactKeyOpts struct {
	Format    string `json:"format"`
	ShowBoxes bool   `json:"show_boxes"`
	Reminders bool   `json:"reminders"`
}

// DefaultKeyer hashes options into the key.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// LayoutKey implements Keyer.
func (DefaultKeyer) LayoutKey(inputHash string, opts LayoutKeyOpts) string {
	return joinKey(opts, "layout", inputHash)
}

// ArtifactKey implements Keyer.
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return joinKey(opts, "artifact", opts.Format, layoutHash)
}
