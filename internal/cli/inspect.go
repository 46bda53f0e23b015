package cli

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/foamlayout/pkg/layout"
)

// inspectCommand creates the inspect command for summarizing a layout model.
func (c *CLI) inspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect [layout.json]",
		Short: "Show the block, layers and cavities of a layout model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := layout.Import(args[0])
			if err != nil {
				return fmt.Errorf("load layout %s: %w", args[0], err)
			}
			printInspect(m)
			return nil
		},
	}
}

func printInspect(m layout.Model) {
	fmt.Println(StyleTitle.Render("Block"))
	printKeyValue("Size", layout.BlockLabel(m.Block)+" in")
	corner := string(m.Block.CornerStyle)
	if m.Block.Chamfered() {
		corner += " " + formatIn(m.Block.ChamferIn)
	}
	printKeyValue("Corners", corner)
	layers := strconv.Itoa(len(m.DisplayLayers()))
	if hidden := len(m.Stack) - len(m.DisplayLayers()); hidden > 0 {
		layers += fmt.Sprintf(" (%d without thickness hidden)", hidden)
	}
	printKeyValue("Layers", layers)
	printNewline()

	for _, i := range m.DisplayIndexes() {
		l := m.Stack[i]
		fmt.Println(StyleTitle.Render(fmt.Sprintf("Layer %d", i)) + " " +
			StyleDim.Render(fmt.Sprintf("%s · %s thick", l.Label, formatIn(l.ThicknessIn))))
		if len(l.Cavities) == 0 {
			printDetail("no cavities")
			printNewline()
			continue
		}
		fmt.Println(cavityTable(l.Cavities))
		printNewline()
	}
}

func cavityTable(cavities []layout.Cavity) string {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	rows := make([][]string, 0, len(cavities))
	for _, cv := range cavities {
		label := cv.Label
		if label == "" {
			label = layout.Label(cv)
		}
		rows = append(rows, []string{
			cv.ID,
			string(cv.Kind()),
			label,
			fmt.Sprintf("%.3f, %.3f", cv.Pos.X, cv.Pos.Y),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("ID", "Shape", "Size", "Position").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if col == 3 {
				return lipgloss.NewStyle().Foreground(colorGray)
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		})
	return t.Render()
}

func formatIn(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + " in"
}
