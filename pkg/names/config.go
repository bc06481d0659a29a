package names

import "fmt"

// Default heuristic thresholds. They are the values the label placement was
// tuned with; Config carries them so a theme can retune without code changes.
const (
	// DefaultUniformMax is the largest seat count where all labels share the
	// base distance.
	DefaultUniformMax = 10
	// DefaultAlternateMax is the largest seat count using alternating distances.
	DefaultAlternateMax = 14
	// DefaultRotateAbove is the seat count above which labels rotate and shrink.
	DefaultRotateAbove = 12

	DefaultBaseDistance      = 0.8
	DefaultAlternateDistance = 1.4
	DefaultSpiralStep        = 0.25
	DefaultSpiralOddBonus    = 0.4
	DefaultHorizontalCos     = 0.8
	DefaultHorizontalBonus   = 0.2

	// DefaultMinDistance and DefaultMaxDistance bound every distance multiplier.
	DefaultMinDistance = 0.9
	DefaultMaxDistance = 2.0

	DefaultRotationFactor = 0.15
	DefaultMaxRotation    = 20.0
	DefaultFontShrink     = 0.03
	DefaultMinFontScale   = 0.8

	// DefaultPushStep is how far both labels of a colliding pair move out.
	DefaultPushStep = 0.25
	// DefaultGap is the clearance two labels must keep, in pixels.
	DefaultGap = 10.0
	// DefaultMaxRounds caps the relaxation loop.
	DefaultMaxRounds = 8
)

// Config tunes the label placement heuristic.
type Config struct {
	UniformMax        int     `toml:"uniform_max" json:"uniform_max"`
	AlternateMax      int     `toml:"alternate_max" json:"alternate_max"`
	RotateAbove       int     `toml:"rotate_above" json:"rotate_above"`
	BaseDistance      float64 `toml:"base_distance" json:"base_distance"`
	AlternateDistance float64 `toml:"alternate_distance" json:"alternate_distance"`
	SpiralStep        float64 `toml:"spiral_step" json:"spiral_step"`
	SpiralOddBonus    float64 `toml:"spiral_odd_bonus" json:"spiral_odd_bonus"`
	HorizontalCos     float64 `toml:"horizontal_cos" json:"horizontal_cos"`
	HorizontalBonus   float64 `toml:"horizontal_bonus" json:"horizontal_bonus"`
	MinDistance       float64 `toml:"min_distance" json:"min_distance"`
	MaxDistance       float64 `toml:"max_distance" json:"max_distance"`
	RotationFactor    float64 `toml:"rotation_factor" json:"rotation_factor"`
	MaxRotation       float64 `toml:"max_rotation" json:"max_rotation"`
	FontShrink        float64 `toml:"font_shrink" json:"font_shrink"`
	MinFontScale      float64 `toml:"min_font_scale" json:"min_font_scale"`
	PushStep          float64 `toml:"push_step" json:"push_step"`
	Gap               float64 `toml:"gap" json:"gap"`
	MaxRounds         int     `toml:"max_rounds" json:"max_rounds"`
}

// DefaultConfig returns the tuned defaults.
func DefaultConfig() Config {
	return Config{
		UniformMax:        DefaultUniformMax,
		AlternateMax:      DefaultAlternateMax,
		RotateAbove:       DefaultRotateAbove,
		BaseDistance:      DefaultBaseDistance,
		AlternateDistance: DefaultAlternateDistance,
		SpiralStep:        DefaultSpiralStep,
		SpiralOddBonus:    DefaultSpiralOddBonus,
		HorizontalCos:     DefaultHorizontalCos,
		HorizontalBonus:   DefaultHorizontalBonus,
		MinDistance:       DefaultMinDistance,
		MaxDistance:       DefaultMaxDistance,
		RotationFactor:    DefaultRotationFactor,
		MaxRotation:       DefaultMaxRotation,
		FontShrink:        DefaultFontShrink,
		MinFontScale:      DefaultMinFontScale,
		PushStep:          DefaultPushStep,
		Gap:               DefaultGap,
		MaxRounds:         DefaultMaxRounds,
	}
}

// Validate reports the first inconsistent setting.
func (c Config) Validate() error {
	switch {
	case c.UniformMax > c.AlternateMax:
		return fmt.Errorf("uniform_max (%d) must not exceed alternate_max (%d)", c.UniformMax, c.AlternateMax)
	case c.MinDistance <= 0 || c.MaxDistance < c.MinDistance:
		return fmt.Errorf("distance bounds [%v, %v] are invalid", c.MinDistance, c.MaxDistance)
	case c.MaxRotation < 0:
		return fmt.Errorf("max_rotation must not be negative")
	case c.MinFontScale <= 0 || c.MinFontScale > 1:
		return fmt.Errorf("min_font_scale must be in (0, 1]")
	case c.PushStep <= 0:
		return fmt.Errorf("push_step must be positive")
	case c.Gap < 0:
		return fmt.Errorf("gap must not be negative")
	case c.MaxRounds < 0:
		return fmt.Errorf("max_rounds must not be negative")
	}
	return nil
}
