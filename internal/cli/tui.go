package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/depcollect/pkg/graph"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// TreeModel - Interactive dependency graph browser
// =============================================================================

// treeRow is one visible line of the browser.
type treeRow struct {
	edge  *graph.Edge
	depth int
	// repeat marks a node whose subtree is already shown above, or that
	// sits on its own ancestor path.
	repeat bool
}

func (r treeRow) expandable() bool {
	return !r.repeat && len(r.edge.Target.Children) > 0
}

// TreeModel is the bubbletea model for browsing a collected graph. Nodes
// start collapsed below the first level.
type TreeModel struct {
	Root     *graph.Edge
	Cursor   int
	Offset   int
	Height   int
	expanded map[*graph.Edge]bool
	rows     []treeRow
}

// NewTreeModel creates a browser with the root expanded.
func NewTreeModel(root *graph.Edge) TreeModel {
	m := TreeModel{
		Root:     root,
		Height:   20,
		expanded: map[*graph.Edge]bool{root: true},
	}
	m.rebuild()
	return m
}

// rebuild flattens the expanded part of the graph into rows.
func (m *TreeModel) rebuild() {
	m.rows = nil
	shown := make(map[*graph.Node]bool)
	path := make(map[*graph.Node]bool)

	var visit func(e *graph.Edge, depth int)
	visit = func(e *graph.Edge, depth int) {
		n := e.Target
		repeat := path[n] || (shown[n] && len(n.Children) > 0)
		m.rows = append(m.rows, treeRow{edge: e, depth: depth, repeat: repeat})
		if repeat || !m.expanded[e] {
			return
		}
		shown[n] = true
		path[n] = true
		for _, c := range n.Children {
			visit(c, depth+1)
		}
		delete(path, n)
	}
	if m.Root != nil {
		visit(m.Root, 0)
	}
	m.Cursor = min(m.Cursor, max(len(m.rows)-1, 0))
	m.scroll()
}

func (m *TreeModel) scroll() {
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
}

// Rows returns the number of visible lines.
func (m TreeModel) Rows() int { return len(m.rows) }

// Selected returns the edge under the cursor.
func (m TreeModel) Selected() *graph.Edge {
	if len(m.rows) == 0 {
		return nil
	}
	return m.rows[m.Cursor].edge
}

func (m TreeModel) Init() tea.Cmd {
	return nil
}

func (m TreeModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if len(m.rows) == 0 {
			return m, tea.Quit
		}
		row := m.rows[m.Cursor]
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
			}
		case "down", "j":
			if m.Cursor < len(m.rows)-1 {
				m.Cursor++
			}
		case "right", "l":
			if row.expandable() {
				m.expanded[row.edge] = true
			}
		case "left", "h":
			if m.expanded[row.edge] && row.expandable() {
				delete(m.expanded, row.edge)
			} else {
				m.Cursor = m.parentRow(m.Cursor)
			}
		case "enter", " ":
			if row.expandable() {
				m.expanded[row.edge] = !m.expanded[row.edge]
			}
		case "E":
			graph.Walk(row.edge, func(e *graph.Edge, _ int) bool {
				m.expanded[e] = true
				return true
			})
		case "C":
			m.expanded = map[*graph.Edge]bool{m.Root: true}
			m.Cursor = 0
		}
		m.rebuild()
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-5, 5)
		m.scroll()
	}
	return m, nil
}

// parentRow returns the index of the closest row above i with a smaller
// depth.
func (m TreeModel) parentRow(i int) int {
	depth := m.rows[i].depth
	for j := i - 1; j >= 0; j-- {
		if m.rows[j].depth < depth {
			return j
		}
	}
	return i
}

func (m TreeModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Dependency Graph"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ←/→ collapse/expand  E expand all  C collapse all  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.rows))
	for i := m.Offset; i < end; i++ {
		r := m.rows[i]
		marker := "  "
		switch {
		case r.repeat:
			marker = listDimStyle.Render("* ")
		case r.expandable() && m.expanded[r.edge]:
			marker = "▾ "
		case r.expandable():
			marker = "▸ "
		}
		cursor := "  "
		if i == m.Cursor {
			cursor = listSelectedStyle.Render("› ")
		}
		b.WriteString(cursor + strings.Repeat("  ", r.depth) + marker + styledLine(r.edge))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.rows))))
	return b.String()
}
