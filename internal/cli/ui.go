package cli

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/townsquare/pkg/layout"
	"github.com/matzehuels/townsquare/pkg/stacking"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorBlue   = lipgloss.Color("75")  // Light blue - commands
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Styles
// =============================================================================

var (
	styleTitle   = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	styleDim     = lipgloss.NewStyle().Foreground(colorDim)
	styleValue   = lipgloss.NewStyle().Foreground(colorWhite)
	styleWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleHeader  = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	styleRaised  = lipgloss.NewStyle().Foreground(colorCyan).Bold(true)
	styleCycle   = lipgloss.NewStyle().Foreground(colorRed)

	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)

	styleCached   = lipgloss.NewStyle().Foreground(colorGreen)
	styleComputed = lipgloss.NewStyle().Foreground(colorGray)
	styleCommand  = lipgloss.NewStyle().Foreground(colorBlue)
)

// =============================================================================
// Icons
// =============================================================================

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
	iconCached  = "cached"
	iconFresh   = "fresh"
)

// =============================================================================
// Status Output
// =============================================================================

// printSuccess prints a success message.
func printSuccess(format string, args ...any) {
	fmt.Println(styleIconSuccess.Render(iconSuccess) + " " + fmt.Sprintf(format, args...))
}

// printError prints an error message.
func printError(format string, args ...any) {
	fmt.Println(styleIconError.Render(iconError) + " " + fmt.Sprintf(format, args...))
}

// printWarning prints a warning message.
func printWarning(format string, args ...any) {
	fmt.Println(styleIconWarning.Render(iconWarning) + " " + styleWarning.Render(fmt.Sprintf(format, args...)))
}

// printInfo prints an info/status message.
func printInfo(format string, args ...any) {
	fmt.Println(styleIconInfo.Render(iconInfo) + " " + fmt.Sprintf(format, args...))
}

// printDetail prints a detail line (indented).
func printDetail(format string, args ...any) {
	fmt.Println("  " + styleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints a file output line.
func printFile(path string) {
	fmt.Println("  " + styleDim.Render(iconArrow) + " " + styleValue.Render(path))
}

// printNextStep prints a suggested next command.
func printNextStep(description, cmd string) {
	fmt.Println(styleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}

// =============================================================================
// Layout Output
// =============================================================================

// statsLine summarizes a pass on one dim line.
func statsLine(res layout.Result, cached bool) string {
	parts := []string{
		fmt.Sprintf("%d seats", len(res.Slots)),
		fmt.Sprintf("%d rounds", res.Optimizer.Rounds),
		fmt.Sprintf("%d overlaps", res.Stacking.Overlaps),
	}
	status := styleComputed.Render(iconFresh)
	if cached {
		status = styleCached.Render(iconCached)
	}

	var b strings.Builder
	b.WriteString("  ")
	for i, p := range parts {
		if i > 0 {
			b.WriteString(styleDim.Render(" · "))
		}
		b.WriteString(styleDim.Render(p))
	}
	b.WriteString(styleDim.Render(" · "))
	b.WriteString(status)
	return b.String()
}

// slotTable renders one row per seat. Seats raised above z 0 are
// highlighted.
func slotTable(res layout.Result) string {
	rows := make([][]string, len(res.Slots))
	for i, s := range res.Slots {
		rows[i] = []string{
			strconv.Itoa(s.Index),
			s.Name,
			fmt.Sprintf("%.0f°", degrees(s.Angle)),
			fmt.Sprintf("%.0f, %.0f", s.Token.X, s.Token.Y),
			fmt.Sprintf("%.0f, %.0f", s.Label.X, s.Label.Y),
			fmt.Sprintf("%.2f", s.DistanceMultiplier),
			s.Anchor.String(),
			fmt.Sprintf("%+.1f°", s.RotationDegrees),
			fmt.Sprintf("%.2f", s.FontScale),
			strconv.Itoa(s.Z),
		}
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("#", "Name", "Angle", "Token", "Label", "Dist", "Anchor", "Rot", "Font", "Z").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			if row >= 0 && row < len(res.Slots) && res.Slots[row].Z > 0 {
				return styleRaised
			}
			return lipgloss.NewStyle()
		})
	return t.Render()
}

func degrees(rad float64) float64 { return rad * 180 / math.Pi }

// edgeTable renders stacking constraints, marking the ones left violated.
func edgeTable(res layout.Result) string {
	unresolved := make(map[stacking.Edge]bool, len(res.Stacking.Unresolved))
	for _, e := range res.Stacking.Unresolved {
		unresolved[e] = true
	}

	name := func(i int) string {
		if i < len(res.Slots) {
			return fmt.Sprintf("%d %s", i, res.Slots[i].Name)
		}
		return strconv.Itoa(i)
	}
	rows := make([][]string, len(res.Stacking.Edges))
	for i, e := range res.Stacking.Edges {
		status := "ok"
		if unresolved[e] {
			status = "unresolved"
		}
		rows[i] = []string{name(e.Label), name(e.Token), status}
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Label of", "Covers token of", "Status").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			if row >= 0 && row < len(rows) && rows[row][2] != "ok" {
				return styleCycle
			}
			return lipgloss.NewStyle()
		})
	return t.Render()
}
