// Package config loads townsquare's TOML configuration.
//
// Every heuristic threshold of the layout engine has a named default in its
// own package; this package gathers them into one file so a theme can retune
// the engine without code changes. A missing file means defaults:
//
//	cfg, err := config.Load("")            // default search path
//	cfg, err := config.Load("./seats.toml") // explicit file
//
// The default path is $XDG_CONFIG_HOME/townsquare/config.toml, falling back
// to ~/.config/townsquare/config.toml.
package config

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	terr "github.com/matzehuels/townsquare/pkg/errors"
	"github.com/matzehuels/townsquare/pkg/layout"
	"github.com/matzehuels/townsquare/pkg/measure"
	"github.com/matzehuels/townsquare/pkg/names"
	"github.com/matzehuels/townsquare/pkg/seating"
	"github.com/matzehuels/townsquare/pkg/stacking"
)

const (
	appName  = "townsquare"
	fileName = "config.toml"
)

// Defaults that do not belong to an engine package.
const (
	DefaultTokenSize       = 64.0
	DefaultMinParticipants = 5
	DefaultMaxParticipants = 20
	DefaultMarginPadding   = 8.0
	DefaultCacheBackend    = "file"
	DefaultCacheTTL        = 24 * time.Hour
	DefaultRedisAddr       = "localhost:6379"
	DefaultMongoURI        = "mongodb://localhost:27017"
	DefaultMongoDatabase   = "townsquare"
	DefaultServerAddr      = ":8080"
)

// CacheBackends lists the accepted cache.backend values.
var CacheBackends = []string{"file", "redis", "mongo", "none"}

// Theme holds the visual metrics labels and tokens are measured with.
type Theme struct {
	TokenSize     float64 `toml:"token_size"`
	FontSize      float64 `toml:"font_size"`
	CharWidth     float64 `toml:"char_width"`
	LineHeight    float64 `toml:"line_height"`
	LabelPadding  float64 `toml:"label_padding"`
	ReminderScale float64 `toml:"reminder_scale"`
}

// Metrics returns the text metrics of the theme.
func (t Theme) Metrics() measure.Metrics {
	return measure.Metrics{
		FontSize:      t.FontSize,
		CharWidth:     t.CharWidth,
		LineHeight:    t.LineHeight,
		LabelPadding:  t.LabelPadding,
		ReminderScale: t.ReminderScale,
	}
}

// Layout holds the seat circle settings.
type Layout struct {
	PhaseDegrees float64 `toml:"phase_degrees"`
	// Margin is the space between the circle and the viewport edge. Zero
	// derives it from the label sizes, see Config.Margin.
	Margin          float64 `toml:"margin"`
	MinParticipants int     `toml:"min_participants"`
	MaxParticipants int     `toml:"max_participants"`
}

// Cache selects and configures the layout cache backend.
type Cache struct {
	Backend       string        `toml:"backend"`
	TTL           time.Duration `toml:"ttl"`
	RedisAddr     string        `toml:"redis_addr"`
	MongoURI      string        `toml:"mongo_uri"`
	MongoDatabase string        `toml:"mongo_database"`
}

// Server configures the HTTP API.
type Server struct {
	Addr string `toml:"addr"`
	// Metrics serves Prometheus metrics on /metrics.
	Metrics bool `toml:"metrics"`
}

// Config is the complete configuration file.
type Config struct {
	Theme     Theme           `toml:"theme"`
	Layout    Layout          `toml:"layout"`
	Optimizer names.Config    `toml:"optimizer"`
	Stacking  stacking.Config `toml:"stacking"`
	Cache     Cache           `toml:"cache"`
	Server    Server          `toml:"server"`
}

// Default returns the built-in configuration.
func Default() Config {
	m := measure.DefaultMetrics()
	return Config{
		Theme: Theme{
			TokenSize:     DefaultTokenSize,
			FontSize:      m.FontSize,
			CharWidth:     m.CharWidth,
			LineHeight:    m.LineHeight,
			LabelPadding:  m.LabelPadding,
			ReminderScale: m.ReminderScale,
		},
		Layout: Layout{
			MinParticipants: DefaultMinParticipants,
			MaxParticipants: DefaultMaxParticipants,
		},
		Optimizer: names.DefaultConfig(),
		Stacking:  stacking.DefaultConfig(),
		Cache: Cache{
			Backend:       DefaultCacheBackend,
			TTL:           DefaultCacheTTL,
			RedisAddr:     DefaultRedisAddr,
			MongoURI:      DefaultMongoURI,
			MongoDatabase: DefaultMongoDatabase,
		},
		Server: Server{Addr: DefaultServerAddr, Metrics: true},
	}
}

// Path returns the default config file location.
func Path() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, fileName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, fileName), nil
}

// Load reads the config file at path on top of the defaults. An empty path
// uses Path(). A missing file is not an error. Unknown keys are rejected so
// typos in threshold names do not go unnoticed.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		p, err := Path()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	md, err := toml.DecodeFile(path, &cfg)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return Config{}, terr.Wrap(terr.ErrCodeInvalidConfig, err, "read %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, terr.New(terr.ErrCodeInvalidConfig, "unknown keys in %s: %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Encode writes cfg as TOML.
func (c Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

// Validate reports the first inconsistent setting.
func (c Config) Validate() error {
	if c.Theme.TokenSize <= 0 {
		return terr.New(terr.ErrCodeInvalidConfig, "theme.token_size must be positive")
	}
	if err := c.Theme.Metrics().Validate(); err != nil {
		return terr.Wrap(terr.ErrCodeInvalidConfig, err, "theme")
	}
	if c.Layout.Margin < 0 {
		return terr.New(terr.ErrCodeInvalidConfig, "layout.margin cannot be negative")
	}
	if c.Layout.MinParticipants < 0 || c.Layout.MaxParticipants < c.Layout.MinParticipants {
		return terr.New(terr.ErrCodeInvalidConfig, "layout participant bounds [%d, %d] are invalid",
			c.Layout.MinParticipants, c.Layout.MaxParticipants)
	}
	if err := c.Engine().Validate(); err != nil {
		return terr.Wrap(terr.ErrCodeInvalidConfig, err, "engine")
	}
	if !slices.Contains(CacheBackends, c.Cache.Backend) {
		return terr.New(terr.ErrCodeInvalidConfig, "cache.backend %q is not one of %s",
			c.Cache.Backend, strings.Join(CacheBackends, ", "))
	}
	if c.Cache.TTL < 0 {
		return terr.New(terr.ErrCodeInvalidConfig, "cache.ttl cannot be negative")
	}
	return nil
}

// Engine returns the layout engine configuration.
func (c Config) Engine() layout.Config {
	return layout.Config{Optimizer: c.Optimizer, Stacking: c.Stacking}
}

// Margin returns the configured margin, or, when it is zero, the margin that
// keeps every label of the given participants inside the viewport.
func (c Config) Margin(participants []string) float64 {
	if c.Layout.Margin > 0 {
		return c.Layout.Margin
	}
	return seating.MarginBudget(
		c.Theme.TokenSize,
		c.Optimizer.MaxDistance,
		c.Theme.Metrics().Extent(participants),
		DefaultMarginPadding,
	)
}
