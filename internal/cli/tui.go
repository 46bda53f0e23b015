package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/foamlayout/pkg/layout"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// LayerListModel - Interactive layer selection
// =============================================================================

// LayerListModel is the bubbletea model for picking one displayed layer of a
// stack. Selected is a stack index.
type LayerListModel struct {
	Layers   []layout.Layer
	Indexes  []int // stack index of each entry in Layers
	Cursor   int
	Selected int // -1 until a layer is chosen
}

// NewLayerListModel creates a picker over m's displayed layers.
func NewLayerListModel(m layout.Model) LayerListModel {
	return LayerListModel{Layers: m.DisplayLayers(), Indexes: m.DisplayIndexes(), Selected: -1}
}

func (m LayerListModel) Init() tea.Cmd {
	return nil
}

func (m LayerListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
			}
		case "down", "j":
			if m.Cursor < len(m.Layers)-1 {
				m.Cursor++
			}
		case "enter":
			if len(m.Layers) > 0 {
				m.Selected = m.Indexes[m.Cursor]
			}
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m LayerListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Layer"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	for i, l := range m.Layers {
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		line := fmt.Sprintf("%s%-12s %8s  %s", cursor, l.Label, formatIn(l.ThicknessIn),
			plural(len(l.Cavities), "cavity", "cavities"))

		if i == m.Cursor {
			b.WriteString(listSelectedStyle.Render(line))
		} else {
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}

	return b.String()
}

// pickLayer runs the picker. ok is false when the user quit without
// choosing. With at most one displayed layer nothing is prompted.
func pickLayer(m layout.Model) (layer int, ok bool, err error) {
	switch idx := m.DisplayIndexes(); len(idx) {
	case 0:
		return 0, true, nil
	case 1:
		return idx[0], true, nil
	}
	final, err := tea.NewProgram(NewLayerListModel(m)).Run()
	if err != nil {
		return 0, false, fmt.Errorf("layer picker: %w", err)
	}
	sel := final.(LayerListModel).Selected
	return sel, sel >= 0, nil
}
