package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/depcollect/pkg/dag"
	"github.com/matzehuels/depcollect/pkg/graph"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // primary
	colorGreen  = lipgloss.Color("35")  // success
	colorYellow = lipgloss.Color("220") // warnings
	colorRed    = lipgloss.Color("167") // errors
	colorBlue   = lipgloss.Color("75")  // managed
	colorWhite  = lipgloss.Color("255") // values
	colorGray   = lipgloss.Color("245") // secondary text
	colorDim    = lipgloss.Color("240") // muted text
)

// =============================================================================
// Styles
// =============================================================================

var (
	// StyleTitle for headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleDim for secondary text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleWarning for warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)

	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleScope    = lipgloss.NewStyle().Foreground(colorGray)
	styleOptional = lipgloss.NewStyle().Foreground(colorYellow).Italic(true)
	styleManaged  = lipgloss.NewStyle().Foreground(colorBlue)
)

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconArrow   = "→"
)

// statusOut receives status lines. Command output proper goes to the
// command's stdout so it can be piped.
var statusOut io.Writer = os.Stderr

// =============================================================================
// Status Output
// =============================================================================

func printSuccess(format string, args ...any) {
	fmt.Fprintln(statusOut, styleIconSuccess.Render(iconSuccess)+" "+fmt.Sprintf(format, args...))
}

func printError(format string, args ...any) {
	fmt.Fprintln(statusOut, styleIconError.Render(iconError)+" "+fmt.Sprintf(format, args...))
}

func printWarning(format string, args ...any) {
	fmt.Fprintln(statusOut, styleIconWarning.Render(iconWarning)+" "+StyleWarning.Render(fmt.Sprintf(format, args...)))
}

// printDetail prints an indented, dimmed line.
func printDetail(format string, args ...any) {
	fmt.Fprintln(statusOut, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile reports a written output file.
func printFile(path string) {
	fmt.Fprintln(statusOut, "  "+StyleDim.Render(iconArrow)+" "+StyleValue.Render(path))
}

// printStats prints graph statistics on a single line.
func printStats(s graph.Stats, errors int) {
	parts := []string{
		fmt.Sprintf("%d nodes", s.Nodes),
		fmt.Sprintf("%d edges", s.Edges),
		fmt.Sprintf("depth %d", s.MaxDepth),
	}
	if s.Shared > 0 {
		parts = append(parts, fmt.Sprintf("%d shared", s.Shared))
	}
	parts = append(parts, fmt.Sprintf("%d leaves", s.Leaves))
	line := StyleDim.Render(strings.Join(parts, " · "))
	if errors > 0 {
		line += StyleDim.Render(" · ") + styleIconError.Render(fmt.Sprintf("%d errors", errors))
	}
	fmt.Fprintln(statusOut, "  "+line)
}

// dagStats summarizes an imported graph. Rows are shortest depths, so
// MaxDepth may be lower than for the collected graph it came from.
func dagStats(g *dag.DAG) graph.Stats {
	s := graph.Stats{
		Nodes:    g.NodeCount(),
		Edges:    g.EdgeCount(),
		MaxDepth: g.MaxRow(),
		Leaves:   len(g.Sinks()),
	}
	for _, n := range g.Nodes() {
		if n.Row > 0 && g.InDegree(n.ID) > 1 {
			s.Shared++
		}
	}
	return s
}

// styledLine renders one edge for the interactive browser.
func styledLine(e *graph.Edge) string {
	if e.IsRoot() {
		return StyleTitle.Render(rootLabel(e))
	}
	var b strings.Builder
	b.WriteString(StyleValue.Render(e.Artifact().String()))
	b.WriteString(" ")
	b.WriteString(styleScope.Render(e.Scope))
	if e.Optional() {
		b.WriteString(" " + styleOptional.Render("optional"))
	}
	if e.PremanagedVersion != "" {
		b.WriteString(" " + styleManaged.Render("managed from "+e.PremanagedVersion))
	}
	return b.String()
}

func rootLabel(e *graph.Edge) string {
	if e.Dependency == nil {
		return graph.RootID
	}
	return e.Artifact().String()
}
