package planner

import (
	"strings"

	"github.com/steveyegge/stoich/internal/style"
)

var fieldLabels = [fieldCount]string{
	"Target formula",
	"Reagents",
	"Total amount",
}

// View implements tea.Model.
func (m Model) View() string {
	if m.done || m.aborted {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("\n  " + style.Bold.Render("Synthesis plan") + "\n\n")

	for i := range m.inputs {
		label := fieldLabels[i]
		if i == m.focus {
			sb.WriteString("  " + style.ArrowPrefix + " " + style.Info.Render(label) + "\n")
		} else {
			sb.WriteString("    " + style.Dim.Render(label) + "\n")
		}
		sb.WriteString("    " + m.inputs[i].View() + "\n\n")
	}

	if m.errMsg != "" {
		sb.WriteString("  " + style.ErrorPrefix + " " + style.Error.Render(m.errMsg) + "\n\n")
	}

	if m.showHelp {
		sb.WriteString("  " + m.help.FullHelpView(m.keys.FullHelp()) + "\n")
	} else {
		sb.WriteString("  " + m.help.ShortHelpView(m.keys.ShortHelp()) + "\n")
	}

	return sb.String()
}
