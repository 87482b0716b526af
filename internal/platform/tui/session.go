package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/tui-azul/internal/multiplayer"
	"github.com/vovakirdan/tui-azul/internal/storage"
)

// screen is the part of the session shown to the user.
type screen int

const (
	screenSetup screen = iota
	screenGame
	screenScores
)

// SessionModel manages the full session flow: setup -> game -> setup, with
// the scoreboard reachable from the setup menu. It is the top-level model of
// local play and of SSH sessions.
type SessionModel struct {
	coord  *multiplayer.Coordinator
	store  *storage.Store
	opts   SetupOptions
	live   *liveGame
	screen screen

	setup  SetupModel
	game   GameModel
	scores ScoreboardModel

	width    int
	height   int
	errMsg   string
	quitting bool
}

// NewSessionModel creates a new session model. store may be nil.
func NewSessionModel(coord *multiplayer.Coordinator, store *storage.Store, opts SetupOptions, width, height int) SessionModel {
	return SessionModel{
		coord:  coord,
		store:  store,
		opts:   opts,
		live:   &liveGame{},
		setup:  NewSetupModel(opts, width, height),
		width:  width,
		height: height,
	}
}

// Init initializes the session.
func (m SessionModel) Init() tea.Cmd {
	return m.setup.Init()
}

// Update handles messages for the session.
func (m SessionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Handle window resize globally
	if wsm, ok := msg.(tea.WindowSizeMsg); ok {
		m.width = wsm.Width
		m.height = wsm.Height
	}

	switch m.screen {
	case screenGame:
		return m.updateGame(msg)
	case screenScores:
		return m.updateScores(msg)
	default:
		return m.updateSetup(msg)
	}
}

// updateSetup handles updates when in the setup menu.
func (m SessionModel) updateSetup(msg tea.Msg) (tea.Model, tea.Cmd) {
	newSetup, cmd := m.setup.Update(msg)
	if setup, ok := newSetup.(SetupModel); ok {
		m.setup = setup
	}

	if m.setup.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}

	if m.setup.WantsScoreboard() {
		m.scores = NewScoreboardModel(m.store, m.width, m.height)
		m.scores.embedded = true
		m.screen = screenScores
		m.setup.scores = false
		return m, m.scores.Init()
	}

	if players := m.setup.Selected(); players != nil {
		m.setup.selected = nil
		game, err := NewGameModel(m.coord, players, m.live, m.width, m.height)
		if err != nil {
			m.errMsg = err.Error()
			return m, nil
		}
		m.errMsg = ""
		m.game = game
		m.screen = screenGame
		return m, m.game.Init()
	}

	return m, cmd
}

// updateGame handles updates when in game mode.
func (m SessionModel) updateGame(msg tea.Msg) (tea.Model, tea.Cmd) {
	newGame, cmd := m.game.Update(msg)
	if game, ok := newGame.(GameModel); ok {
		m.game = game
	}

	if m.game.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}

	// Back to the setup menu, keeping the seats chosen before
	if m.game.BackToMenu() {
		m.game = GameModel{}
		m.screen = screenSetup
		return m, nil
	}

	return m, cmd
}

// updateScores handles updates when the scoreboard is shown.
func (m SessionModel) updateScores(msg tea.Msg) (tea.Model, tea.Cmd) {
	newScores, cmd := m.scores.Update(msg)
	if scores, ok := newScores.(ScoreboardModel); ok {
		m.scores = scores
	}

	if m.scores.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}
	if m.scores.IsGoingBack() {
		m.screen = screenSetup
		return m, nil
	}
	return m, cmd
}

// View renders the current view.
func (m SessionModel) View() string {
	if m.quitting {
		return ""
	}

	switch m.screen {
	case screenGame:
		return m.game.View()
	case screenScores:
		return m.scores.View()
	}

	view := m.setup.View()
	if m.errMsg != "" {
		view += "\n" + centerText(errorStyle.Render(m.errMsg), m.width)
	}
	return view
}

// Close abandons the game in progress, if any.
func (m SessionModel) Close() {
	m.live.release()
}

// Run starts a local session on the terminal and blocks until the user quits.
func Run(coord *multiplayer.Coordinator, store *storage.Store, opts SetupOptions, width, height int) error {
	model := NewSessionModel(coord, store, opts, width, height)
	defer model.Close()

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(), // Use alternate screen buffer
	)

	_, err := p.Run()
	return err
}
