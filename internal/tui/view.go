package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/tronikelis/tip/internal/args"
)

// chromeHeight is the fixed number of non-viewport lines in a frame:
// command preview, input line, status bar.
const chromeHeight = 3

var (
	// Adaptive colors for light/dark terminal backgrounds
	accentColor = lipgloss.AdaptiveColor{Light: "#D6249F", Dark: "#FF79C6"}
	greenColor  = lipgloss.AdaptiveColor{Light: "#116620", Dark: "#50FA7B"}
	yellowColor = lipgloss.AdaptiveColor{Light: "#7D5A00", Dark: "#F1FA8C"}
	redColor    = lipgloss.AdaptiveColor{Light: "#B31D28", Dark: "#FF5555"}
	dimColor    = lipgloss.AdaptiveColor{Light: "#777777", Dark: "#6272A4"}

	commandStyle = lipgloss.NewStyle().
			Foreground(dimColor)

	commandArgStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accentColor)

	promptStyle = lipgloss.NewStyle().
			Foreground(accentColor).
			Bold(true)

	runningStyle = lipgloss.NewStyle().
			Foreground(yellowColor)

	okStyle = lipgloss.NewStyle().
		Foreground(greenColor)

	exitErrStyle = lipgloss.NewStyle().
			Foreground(redColor)

	statusStyle = lipgloss.NewStyle().
			Foreground(dimColor)

	helpStyle = lipgloss.NewStyle().
			Foreground(dimColor)
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	// Command preview: fixed base command dimmed, live tokens highlighted.
	tokens := args.Split(m.input.Value())
	base := args.Join(m.session.Argv(nil))
	b.WriteString(commandStyle.Render("$ " + base))
	if len(tokens) > 0 {
		b.WriteString(commandArgStyle.Render(" " + args.Join(tokens)))
	}
	b.WriteString("\n")

	// Argument line
	b.WriteString(promptStyle.Render("> "))
	b.WriteString(m.input.View())
	b.WriteString("\n")

	// Output pane
	b.WriteString(m.output.View())
	b.WriteString("\n")

	// Status bar
	b.WriteString(m.statusLine())

	return b.String()
}

func (m Model) statusLine() string {
	var state string
	switch {
	case m.session.Running():
		state = runningStyle.Render("running")
	case m.session.ExitErr() != nil:
		state = exitErrStyle.Render(m.session.ExitErr().Error())
	default:
		state = okStyle.Render("done")
	}

	var extras []string
	if d := m.session.Dropped(); d > 0 {
		extras = append(extras, statusStyle.Render(fmt.Sprintf("%d lines dropped", d)))
	}
	extras = append(extras, statusStyle.Render(fmt.Sprintf("%3.0f%%", m.output.ScrollPercent()*100)))

	left := " " + state + "  " + strings.Join(extras, "  ")
	help := helpStyle.Render("enter accept  esc quit  ↑/↓ pgup/pgdn scroll ")

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(help)
	if gap < 1 {
		return left
	}
	return left + strings.Repeat(" ", gap) + help
}
