// Package cli implements the townsquare command-line interface.
//
// Commands compute seat layouts for a table of participants and print,
// render, preview or serve them:
//
//   - layout: table of seat placements, or the raw result with --json
//   - render: SVG, PNG, PDF, JSON or DOT files
//   - stacking: draw-order constraints and cycle diagnostics
//   - preview: interactive terminal preview with animated relayouts
//   - serve: the HTTP API
//   - cache, config, completion: housekeeping
//
// Participants come from positional names, --count or a TOML seating file
// (--file). All commands accept --verbose (-v) for debug logging.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/townsquare/pkg/buildinfo"
	"github.com/matzehuels/townsquare/pkg/cache"
	"github.com/matzehuels/townsquare/pkg/config"
	terr "github.com/matzehuels/townsquare/pkg/errors"
	"github.com/matzehuels/townsquare/pkg/observability"
	"github.com/matzehuels/townsquare/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "townsquare"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// configPath overrides the default config file location.
	configPath string
	verbose    bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// newLogger creates a logger with the CLI's timestamp format.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Townsquare lays out participants around a circular table",
		Long: `Townsquare arranges 5 to 20 participant tokens evenly around a circle, places
every name label so labels do not collide, and resolves the draw order so no
token is buried under another participant's label.`,
		Version:      buildinfo.Get().Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if c.verbose {
				c.SetLogLevel(LogDebug)
			}
			c.registerHooks()
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: $XDG_CONFIG_HOME/townsquare/config.toml)")

	// Register all subcommands
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.stackingCommand())
	root.AddCommand(c.previewCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// registerHooks routes pipeline, cache and HTTP events to the debug log.
func (c *CLI) registerHooks() {
	h := &logHooks{logger: c.Logger}
	observability.Register(observability.Hooks{Layout: h, Cache: h, HTTP: h})
}

// =============================================================================
// Config & Runner Factory
// =============================================================================

// loadConfig reads the config file selected by --config.
func (c *CLI) loadConfig() (config.Config, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, cfg config.Config, noCache bool) (*pipeline.Runner, error) {
	store, err := newCache(ctx, cfg, noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(store, nil, c.Logger), nil
}

// newCache opens the configured cache backend.
func newCache(ctx context.Context, cfg config.Config, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch cfg.Cache.Backend {
	case "none":
		return cache.NewNullCache(), nil
	case "redis":
		return cache.NewRedisCache(ctx, cfg.Cache.RedisAddr)
	case "mongo":
		return cache.NewMongoCache(ctx, cfg.Cache.MongoURI, cfg.Cache.MongoDatabase)
	default:
		dir, err := cacheDir()
		if err != nil {
			return cache.NewNullCache(), nil
		}
		return cache.NewFileCache(dir)
	}
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/townsquare/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// seatFlags selects the participants of a command.
type seatFlags struct {
	file      string
	count     int
	reminders map[string]int
	expanded  bool
}

func (f *seatFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.file, "file", "", "seating file (TOML, [[participant]] tables)")
	cmd.Flags().IntVarP(&f.count, "count", "n", 0, "generate N placeholder participants")
	cmd.Flags().StringToIntVar(&f.reminders, "reminders", nil, "reminder markers per seat, e.g. 0=3,4=1")
	cmd.Flags().BoolVar(&f.expanded, "expanded", false, "show every reminder instead of one marker per seat")
	_ = cmd.MarkFlagFilename("file", "toml")
}

// participants resolves the seat list from the file, the positional names or
// the count, in that order.
func (f *seatFlags) participants(args []string) ([]pipeline.Participant, error) {
	var out []pipeline.Participant
	switch {
	case f.file != "":
		if len(args) > 0 || f.count > 0 {
			return nil, terr.New(terr.ErrCodeInvalidInput, "--file cannot be combined with names or --count")
		}
		p, err := pipeline.LoadParticipants(f.file)
		if err != nil {
			return nil, err
		}
		out = p
	case len(args) > 0:
		if f.count > 0 {
			return nil, terr.New(terr.ErrCodeInvalidInput, "pass either names or --count, not both")
		}
		out = pipeline.FromNames(args...)
	case f.count > 0:
		out = pipeline.Generate(f.count)
	default:
		return nil, terr.New(terr.ErrCodeInvalidInput, "no participants: pass names, --count or --file")
	}

	for key, n := range f.reminders {
		i, err := strconv.Atoi(key)
		if err != nil || i < 0 || i >= len(out) {
			return nil, terr.New(terr.ErrCodeInvalidInput, "--reminders: seat %q is not in 0..%d", key, len(out)-1)
		}
		out[i].Reminders = n
		out[i].Expanded = out[i].Expanded || f.expanded
	}
	return out, nil
}

// viewFlags are the viewport options shared by layout commands.
type viewFlags struct {
	width, height float64
	margin        float64
	tokenSize     float64
	phase         float64
	refresh       bool
	noCache       bool
}

func (f *viewFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&f.width, "width", pipeline.DefaultWidth, "viewport width in pixels")
	cmd.Flags().Float64Var(&f.height, "height", pipeline.DefaultHeight, "viewport height in pixels")
	cmd.Flags().Float64Var(&f.margin, "margin", 0, "viewport margin (default: config, then derived from the labels)")
	cmd.Flags().Float64Var(&f.tokenSize, "token-size", 0, "token size in pixels (default: theme)")
	cmd.Flags().Float64Var(&f.phase, "phase", 0, "rotate the circle by this many degrees (default: config)")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "recompute even when the layout is cached")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
}

// options builds pipeline options for participants.
func (f *viewFlags) options(cfg *config.Config, participants []pipeline.Participant) pipeline.Options {
	return pipeline.Options{
		Participants: participants,
		Width:        f.width,
		Height:       f.height,
		Margin:       f.margin,
		TokenSize:    f.tokenSize,
		PhaseDegrees: f.phase,
		Refresh:      f.refresh,
		Config:       cfg,
	}
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.ToLower(strings.TrimSpace(f)); f != "" {
			out = append(out, f)
		}
	}
	return out
}
