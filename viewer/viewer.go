// Package viewer renders a slide deck in the terminal. It is the native
// counterpart of the browser presentation: same slides, same navigation
// keys, drawn with lipgloss instead of a web canvas.
package viewer

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/surfdeck/surfdeck/deck"
)

var (
	counterStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("15"))

	emptyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9"))
)

// Model is the bubbletea model for deck presentation.
type Model struct {
	deck   *deck.Deck
	keys   keyMap
	help   help.Model
	width  int
	height int
}

// New creates a viewer over the given deck.
func New(d *deck.Deck) Model {
	return Model{
		deck: d,
		keys: defaultKeys,
		help: help.New(),
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Next):
			m.deck.Next()
		case key.Matches(msg, m.keys.Prev):
			m.deck.Prev()
		case key.Matches(msg, m.keys.First):
			m.deck.First()
		case key.Matches(msg, m.keys.Last):
			m.deck.Last()
		}
	}
	return m, nil
}

func (m Model) View() string {
	current := m.deck.Current()
	if current == nil {
		return emptyStyle.Render("No content available for the current slide")
	}

	contentHeight := m.height - 1
	body := renderSurface(current, m.width, contentHeight)

	status := m.statusLine()
	return body + "\n" + status
}

// statusLine places the help text left and the slide counter right.
func (m Model) statusLine() string {
	left := m.help.View(m.keys)
	right := counterStyle.Render(m.deck.Position())

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}

// Run presents the deck full-screen until the user exits.
func Run(d *deck.Deck) error {
	p := tea.NewProgram(New(d), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
