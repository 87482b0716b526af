package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/tui-azul/internal/azul"
	"github.com/vovakirdan/tui-azul/internal/multiplayer"
	"github.com/vovakirdan/tui-azul/internal/registry"
)

const humanChoice = "human"

// SetupOptions seed the table setup menu.
type SetupOptions struct {
	Name     string // name of the first seat
	Bots     int    // computer opponents seated by default
	Strategy string // strategy of the default opponents
}

// setup menu rows after the seats
const (
	rowStart = iota
	rowScores
	rowQuit
	extraRows
)

// SetupModel is the menu where players are seated before a game.
type SetupModel struct {
	name     string
	choices  []string // humanChoice followed by registered strategies
	seats    []int    // index into choices per seat
	cursor   int      // 0 = player count, then seats, then extra rows
	keys     SetupKeyMap
	help     help.Model
	width    int
	height   int
	selected []multiplayer.PlayerSpec
	scores   bool
	quitting bool
}

// NewSetupModel creates the setup menu.
func NewSetupModel(opts SetupOptions, width, height int) SetupModel {
	choices := []string{humanChoice}
	defaultChoice := 0
	for _, s := range registry.List() {
		if s.ID == opts.Strategy {
			defaultChoice = len(choices)
		}
		choices = append(choices, s.ID)
	}
	if defaultChoice == 0 && len(choices) > 1 {
		defaultChoice = 1
	}

	players := opts.Bots + 1
	players = max(azul.MinPlayers, min(players, azul.MaxPlayers))
	seats := make([]int, players)
	for i := 1; i < players; i++ {
		seats[i] = defaultChoice
	}

	name := opts.Name
	if name == "" {
		name = "Player 1"
	}

	h := help.New()
	h.Width = width
	return SetupModel{
		name:    name,
		choices: choices,
		seats:   seats,
		keys:    DefaultSetupKeyMap(),
		help:    h,
		width:   width,
		height:  height,
	}
}

// Init initializes the menu.
func (m SetupModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the menu.
func (m SetupModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
	}
	return m, nil
}

func (m SetupModel) rows() int {
	return 1 + len(m.seats) + extraRows
}

// handleKey processes keyboard input for menu navigation.
func (m SetupModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Scores):
		m.scores = true

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, m.keys.Down):
		if m.cursor < m.rows()-1 {
			m.cursor++
		}

	case key.Matches(msg, m.keys.Left):
		m.change(-1)

	case key.Matches(msg, m.keys.Right):
		m.change(1)

	case key.Matches(msg, m.keys.Select):
		switch m.cursor - 1 - len(m.seats) {
		case rowStart:
			m.selected = m.players()
		case rowScores:
			m.scores = true
		case rowQuit:
			m.quitting = true
			return m, tea.Quit
		default:
			m.change(1)
		}
	}
	return m, nil
}

// change cycles the value under the cursor.
func (m *SetupModel) change(delta int) {
	switch {
	case m.cursor == 0:
		n := len(m.seats) + delta
		if n < azul.MinPlayers || n > azul.MaxPlayers {
			return
		}
		if n > len(m.seats) {
			m.seats = append(m.seats, m.seats[len(m.seats)-1])
		} else {
			m.seats = m.seats[:n]
		}
	case m.cursor <= len(m.seats):
		seat := m.cursor - 1
		if seat == 0 {
			// the first seat is the person at the keyboard
			return
		}
		m.seats[seat] = (m.seats[seat] + delta + len(m.choices)) % len(m.choices)
	}
}

// players builds the seats of the new game.
func (m SetupModel) players() []multiplayer.PlayerSpec {
	out := make([]multiplayer.PlayerSpec, 0, len(m.seats))
	humans, bots := 0, 0
	for i, choice := range m.seats {
		id := m.choices[choice]
		if id == humanChoice {
			humans++
			name := m.name
			if i > 0 {
				name = fmt.Sprintf("Player %d", i+1)
			}
			out = append(out, multiplayer.Human(name))
			continue
		}
		bots++
		out = append(out, multiplayer.Bot(fmt.Sprintf("Bot %d (%s)", bots, id), id))
	}
	return out
}

// View renders the menu.
func (m SetupModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(centerText(titleStyle.Render("  A Z U L  "), m.width))
	b.WriteString("\n\n")
	b.WriteString(centerText(dimStyle.Render("Seat the players"), m.width))
	b.WriteString("\n\n")

	lines := []string{fmt.Sprintf("Players    < %d >", len(m.seats))}
	for i, choice := range m.seats {
		label := m.choices[choice]
		if i == 0 {
			label = fmt.Sprintf("%s (you)", m.name)
		} else {
			label = fmt.Sprintf("< %s >", label)
		}
		lines = append(lines, fmt.Sprintf("Seat %d     %s", i+1, label))
	}
	lines = append(lines, "Start game", "High scores", "Quit")

	for i, line := range lines {
		text := fmt.Sprintf("%-24s", line)
		cursor := "  "
		if i == m.cursor {
			cursor = "> "
			text = selectedStyle.Render(text)
		}
		b.WriteString(centerText(cursor+text, m.width))
		b.WriteString("\n")
		if i == len(m.seats) {
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(centerText(dimStyle.Render(m.help.View(m.keys)), m.width))
	b.WriteString("\n")
	return b.String()
}

// Selected returns the seats of the game to start, or nil if none selected.
func (m SetupModel) Selected() []multiplayer.PlayerSpec {
	return m.selected
}

// IsQuitting returns true if user requested to quit.
func (m SetupModel) IsQuitting() bool {
	return m.quitting
}

// WantsScoreboard returns true if user requested scoreboard.
func (m SetupModel) WantsScoreboard() bool {
	return m.scores
}
