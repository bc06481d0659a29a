package cli

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"math"
	"slices"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/tanema/gween/ease"

	"github.com/matzehuels/townsquare/pkg/config"
	"github.com/matzehuels/townsquare/pkg/layout"
	"github.com/matzehuels/townsquare/pkg/observability"
	"github.com/matzehuels/townsquare/pkg/pipeline"
	"github.com/matzehuels/townsquare/pkg/transition"
)

const (
	// cellWidth and cellHeight are the pixel size of one terminal cell.
	cellWidth  = 8.0
	cellHeight = 16.0

	// chromeLines are the header and footer rows around the table.
	chromeLines = 3

	previewFPS      = 30
	previewDuration = 0.4 // seconds per relayout animation

	// previewReminders is the reminder stack the r key toggles on seat 0.
	previewReminders = 6
)

// previewCommand creates the interactive preview command.
func (c *CLI) previewCommand() *cobra.Command {
	var seats seatFlags

	cmd := &cobra.Command{
		Use:   "preview [NAME...]",
		Short: "Preview a table interactively in the terminal",
		Long: `Preview a table interactively in the terminal.

The table is laid out for the terminal size and relaid out on every resize.
Seats and labels glide to their new places.

Keys:
  +  add a participant      -  remove the last participant
  r  toggle a reminder stack on the first seat
  q  quit`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && seats.file == "" && seats.count == 0 {
				seats.count = config.DefaultMinParticipants + 3
			}
			participants, err := seats.participants(args)
			if err != nil {
				return err
			}
			return c.runPreview(cmd.Context(), participants)
		},
	}

	seats.register(cmd)
	return cmd
}

func (c *CLI) runPreview(ctx context.Context, participants []pipeline.Participant) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	// Log output would tear the alternate screen.
	observability.Reset()

	m := newPreviewModel(cfg, participants)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		return err
	}
	if pm, ok := final.(previewModel); ok && pm.err != nil {
		return pm.err
	}
	return nil
}

// =============================================================================
// Model
// =============================================================================

type frameMsg time.Time

// previewModel is the bubbletea model of the preview command.
type previewModel struct {
	cfg          config.Config
	runner       *pipeline.Runner
	engine       *layout.Engine
	participants []pipeline.Participant
	reminders    bool

	cols, rows int

	current layout.Result
	trans   *transition.Transition
	frames  []transition.Frame
	last    time.Time
	err     error
}

func newPreviewModel(cfg config.Config, participants []pipeline.Participant) previewModel {
	quiet := log.New(io.Discard)
	return previewModel{
		cfg:          cfg,
		runner:       pipeline.NewRunner(nil, nil, quiet),
		engine:       layout.New(cfg.Engine()),
		participants: participants,
	}
}

func (m previewModel) Init() tea.Cmd { return nil }

func (m previewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "+", "=":
			if len(m.participants) < m.cfg.Layout.MaxParticipants {
				m.participants = append(m.participants, pipeline.Participant{
					Name: fmt.Sprintf("Player %d", len(m.participants)+1),
				})
				return m.relayout()
			}
		case "-", "_":
			if len(m.participants) > max(m.cfg.Layout.MinParticipants, 1) {
				m.participants = m.participants[:len(m.participants)-1]
				return m.relayout()
			}
		case "r":
			m.reminders = !m.reminders
			return m.relayout()
		}

	case tea.WindowSizeMsg:
		m.cols, m.rows = msg.Width, msg.Height
		return m.relayout()

	case frameMsg:
		now := time.Time(msg)
		dt := float32(now.Sub(m.last).Seconds())
		m.last = now
		if m.trans == nil {
			return m, nil
		}
		frames, done := m.trans.Update(dt)
		m.frames = frames
		if done {
			m.trans = nil
			return m, nil
		}
		return m, tick()
	}
	return m, nil
}

// relayout computes a pass for the current terminal size and animates
// towards it.
func (m previewModel) relayout() (tea.Model, tea.Cmd) {
	if m.cols == 0 || m.rows <= chromeLines {
		return m, nil
	}
	participants := make([]pipeline.Participant, len(m.participants))
	copy(participants, m.participants)
	if m.reminders && len(participants) > 0 {
		participants[0].Reminders = previewReminders
		participants[0].Expanded = true
	}

	cfg := m.cfg
	res, err := m.runner.ComputeLayout(context.Background(), pipeline.Options{
		Participants: participants,
		Width:        float64(m.cols) * cellWidth,
		Height:       float64(m.rows-chromeLines) * cellHeight,
		Config:       &cfg,
		Engine:       m.engine,
	})
	if err != nil {
		m.err = err
		return m, nil
	}
	m.err = nil

	m.trans = transition.New(m.current, res, previewDuration, ease.OutCubic)
	m.current = res
	m.frames, _ = m.trans.Update(0)
	m.last = time.Now()
	return m, tick()
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/previewFPS, func(t time.Time) tea.Msg { return frameMsg(t) })
}

// =============================================================================
// View
// =============================================================================

func (m previewModel) View() string {
	var b strings.Builder
	b.WriteString(styleTitle.Render("townsquare"))
	b.WriteString(styleDim.Render(fmt.Sprintf("  %d seats · %d×%d", len(m.participants), m.cols, m.rows)))
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString(styleIconError.Render(iconError) + " " + m.err.Error() + "\n")
	} else if m.cols > 0 && m.rows > chromeLines {
		b.WriteString(m.canvas())
	}

	b.WriteString("\n")
	b.WriteString(styleDim.Render(fmt.Sprintf("+/- seats  r reminders  q quit  · %d rounds · %d overlaps",
		m.current.Optimizer.Rounds, m.current.Stacking.Overlaps)))
	return b.String()
}

// canvas draws the table circle, tokens and labels into a character grid in
// painting order, so raised tokens overwrite the labels they sit under.
func (m previewModel) canvas() string {
	w, h := m.cols, m.rows-chromeLines
	grid := make([][]rune, h)
	for y := range grid {
		grid[y] = []rune(strings.Repeat(" ", w))
	}
	put := func(x, y int, r rune) {
		if y >= 0 && y < h && x >= 0 && x < w {
			grid[y][x] = r
		}
	}
	cell := func(px, py float64) (int, int) {
		return int(math.Round(px / cellWidth)), int(math.Round(py / cellHeight))
	}

	res := m.current
	if res.Radius > 0 {
		steps := int(res.Radius / 4)
		for i := range steps {
			a := 2 * math.Pi * float64(i) / float64(steps)
			x, y := cell(res.Center.X+res.Radius*math.Cos(a), res.Center.Y+res.Radius*math.Sin(a))
			put(x, y, '·')
		}
	}

	for _, f := range paintOrder(m.frames) {
		if f.Alpha < 0.5 {
			continue
		}
		tx, ty := cell(f.Token.X, f.Token.Y)
		token := 'o'
		if f.Z > 0 {
			token = '●'
		}
		put(tx, ty, token)

		lx, ly := cell(f.Label.X, f.Label.Y)
		name := []rune(f.Name)
		for k, r := range name {
			put(lx-len(name)/2+k, ly, r)
		}
	}

	lines := make([]string, h)
	for i, row := range grid {
		lines[i] = string(row)
	}
	return strings.Join(lines, "\n")
}

// paintOrder sorts frames by ascending z, keeping seat order on ties.
func paintOrder(frames []transition.Frame) []transition.Frame {
	out := slices.Clone(frames)
	slices.SortStableFunc(out, func(a, b transition.Frame) int { return cmp.Compare(a.Z, b.Z) })
	return out
}
