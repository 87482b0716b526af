package tui

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/tui-azul/internal/azul"
	_ "github.com/vovakirdan/tui-azul/internal/bot"
	"github.com/vovakirdan/tui-azul/internal/multiplayer"
	"github.com/vovakirdan/tui-azul/internal/storage"
)

var (
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyDown  = tea.KeyMsg{Type: tea.KeyDown}
	keyLeft  = tea.KeyMsg{Type: tea.KeyLeft}
	keyEsc   = tea.KeyMsg{Type: tea.KeyEsc}
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newTestCoordinator(t *testing.T, botDelay time.Duration) *multiplayer.Coordinator {
	t.Helper()
	cfg := multiplayer.DefaultCoordinatorConfig()
	cfg.Seed = 7
	cfg.BotDelay = botDelay
	cfg.CleanupPeriod = 0
	c := multiplayer.NewCoordinator(cfg, nil)
	t.Cleanup(c.Stop)
	return c
}

func updateGame(t *testing.T, m GameModel, msg tea.Msg) GameModel {
	t.Helper()
	next, _ := m.Update(msg)
	gm, ok := next.(GameModel)
	require.True(t, ok)
	return gm
}

// pump feeds the queued table events to the model.
func pump(t *testing.T, m GameModel) GameModel {
	t.Helper()
	for {
		select {
		case evt := <-m.session.Events():
			m = updateGame(t, m, evt)
		default:
			return m
		}
	}
}

func TestHotSeatTakeAndPlace(t *testing.T) {
	coord := newTestCoordinator(t, 0)
	m, err := NewGameModel(coord, []multiplayer.PlayerSpec{
		multiplayer.Human("ada"), multiplayer.Human("bob"),
	}, nil, 120, 40)
	require.NoError(t, err)
	defer m.Close()

	first := m.snap.PlayerToPlayID
	require.True(t, m.myTurn())
	require.False(t, m.placing)

	m = updateGame(t, m, keyEnter)
	m = pump(t, m)
	require.True(t, m.placing, "tiles should be drawn")
	p, _ := m.snap.Player(first)
	assert.NotEmpty(t, p.TilesToPlace)
	assert.Empty(t, m.status)

	m = updateGame(t, m, runes("f"))
	m = pump(t, m)
	assert.False(t, m.placing)
	assert.NotEqual(t, first, m.snap.PlayerToPlayID)
	p, _ = m.snap.Player(first)
	assert.NotEmpty(t, p.Board.FloorLine)

	// the second human plays from the same terminal
	assert.True(t, m.myTurn())
	assert.Equal(t, uint64(2), m.version)
}

func TestPlaceOnPatternLineByNumber(t *testing.T) {
	coord := newTestCoordinator(t, 0)
	m, err := NewGameModel(coord, []multiplayer.PlayerSpec{
		multiplayer.Human("ada"), multiplayer.Human("bob"),
	}, nil, 120, 40)
	require.NoError(t, err)
	defer m.Close()

	first := m.snap.PlayerToPlayID
	m = pump(t, updateGame(t, m, keyEnter))
	m = pump(t, updateGame(t, m, runes("5")))

	p, _ := m.snap.Player(first)
	assert.Positive(t, p.Board.PatternLines[4].Count)
	assert.NotEqual(t, first, m.snap.PlayerToPlayID)
}

func TestRejectedPlacementShowsStatus(t *testing.T) {
	coord := newTestCoordinator(t, 0)
	m, err := NewGameModel(coord, []multiplayer.PlayerSpec{
		multiplayer.Human("ada"), multiplayer.Human("bob"),
	}, nil, 120, 40)
	require.NoError(t, err)
	defer m.Close()

	// first round: every display holds four tiles, so line 1 overflows but is
	// accepted; fill line 1, then try to put a different color on it
	first := m.snap.PlayerToPlayID
	m = pump(t, updateGame(t, m, keyEnter))
	m = pump(t, updateGame(t, m, runes("1")))
	p, _ := m.snap.Player(first)
	lineColor := p.Board.PatternLines[0].Color

	// second player floors whatever they take
	m = pump(t, updateGame(t, m, keyEnter))
	m = pump(t, updateGame(t, m, runes("f")))
	require.Equal(t, first, m.snap.PlayerToPlayID)

	// pick a source holding another color than the one on line 1
	found := false
	for i, src := range m.sources() {
		for j, c := range colorsIn(src) {
			if !found && c != lineColor {
				m.sourceCursor, m.colorCursor = i, j
				found = true
			}
		}
	}
	require.True(t, found, "no second color on the table")

	m = pump(t, updateGame(t, m, keyEnter))
	require.True(t, m.placing)
	m = pump(t, updateGame(t, m, runes("1")))
	assert.True(t, m.statusErr)
	assert.NotEmpty(t, m.status)
	assert.True(t, m.placing, "a rejected placement keeps the tiles in hand")
}

func TestKeysIgnoredOnComputerTurn(t *testing.T) {
	coord := newTestCoordinator(t, time.Hour)
	m, err := NewGameModel(coord, []multiplayer.PlayerSpec{
		multiplayer.Human("ada"), multiplayer.Bot("bot", "greedy"),
	}, nil, 120, 40)
	require.NoError(t, err)
	defer m.Close()

	m = pump(t, updateGame(t, m, keyEnter))
	m = pump(t, updateGame(t, m, runes("f")))
	require.False(t, m.myTurn())
	version := m.version

	m = pump(t, updateGame(t, m, keyEnter))
	assert.Equal(t, version, m.version)
	assert.Contains(t, m.View(), "is thinking")
}

func TestSourceCursorWraps(t *testing.T) {
	coord := newTestCoordinator(t, 0)
	m, err := NewGameModel(coord, []multiplayer.PlayerSpec{
		multiplayer.Human("ada"), multiplayer.Human("bob"),
	}, nil, 120, 40)
	require.NoError(t, err)
	defer m.Close()

	n := len(m.sources())
	require.Equal(t, 5, n, "two players sit at five displays, the center holds only the marker")
	m = updateGame(t, m, keyLeft)
	assert.Equal(t, n-1, m.sourceCursor)

	colors := colorsIn(m.sources()[m.sourceCursor])
	for range colors {
		m = updateGame(t, m, keyDown)
	}
	assert.Equal(t, 0, m.colorCursor)
}

func TestBackAbandonsGame(t *testing.T) {
	coord := newTestCoordinator(t, 0)
	m, err := NewGameModel(coord, []multiplayer.PlayerSpec{
		multiplayer.Human("ada"), multiplayer.Human("bob"),
	}, nil, 120, 40)
	require.NoError(t, err)
	require.Equal(t, 1, coord.GameCount())

	m = updateGame(t, m, keyEsc)
	assert.True(t, m.BackToMenu())
	assert.Equal(t, 0, coord.GameCount())
	assert.Empty(t, m.View())
}

func TestViewShowsTable(t *testing.T) {
	coord := newTestCoordinator(t, 0)
	m, err := NewGameModel(coord, []multiplayer.PlayerSpec{
		multiplayer.Human("ada"), multiplayer.Human("bob"),
	}, nil, 160, 50)
	require.NoError(t, err)
	defer m.Close()

	view := m.View()
	assert.Contains(t, view, "AZUL")
	assert.Contains(t, view, "ada")
	assert.Contains(t, view, "bob")
	assert.Contains(t, view, "center")
	assert.Contains(t, view, "pick a display")
}

func TestSetupSeatsPlayers(t *testing.T) {
	m := NewSetupModel(SetupOptions{Name: "ada", Bots: 2, Strategy: "random"}, 80, 24)
	require.Len(t, m.seats, 3)

	update := func(msg tea.Msg) {
		next, _ := m.Update(msg)
		m = next.(SetupModel)
	}

	// drop to two players
	update(keyLeft)
	require.Len(t, m.seats, 2)

	// move to "Start game" and select
	for range 1 + len(m.seats) + rowStart {
		update(keyDown)
	}
	update(keyEnter)

	players := m.Selected()
	require.Len(t, players, 2)
	assert.Equal(t, "ada", players[0].Name)
	assert.Equal(t, azul.PlayerHuman, players[0].Kind)
	assert.Equal(t, azul.PlayerComputer, players[1].Kind)
	assert.Equal(t, "random", players[1].Strategy)
}

func TestSetupPlayerCountBounds(t *testing.T) {
	m := NewSetupModel(SetupOptions{Bots: 9}, 80, 24)
	assert.Len(t, m.seats, azul.MaxPlayers)
	assert.Equal(t, "Player 1", m.name)

	m.change(1)
	assert.Len(t, m.seats, azul.MaxPlayers)

	m = NewSetupModel(SetupOptions{Bots: 0}, 80, 24)
	assert.Len(t, m.seats, azul.MinPlayers)
	m.change(-1)
	assert.Len(t, m.seats, azul.MinPlayers)
}

func TestSetupSeatCycle(t *testing.T) {
	m := NewSetupModel(SetupOptions{Name: "ada", Bots: 1}, 80, 24)
	start := m.seats[1]

	m.cursor = 2 // second seat
	m.change(1)
	assert.NotEqual(t, start, m.seats[1])
	for range len(m.choices) - 1 {
		m.change(1)
	}
	assert.Equal(t, start, m.seats[1], "a full cycle returns to the first choice")

	// the first seat always belongs to the person at the keyboard
	m.cursor = 1
	m.change(1)
	assert.Equal(t, 0, m.seats[0])
}

func TestSessionStartsAndLeavesGame(t *testing.T) {
	coord := newTestCoordinator(t, 0)
	m := NewSessionModel(coord, nil, SetupOptions{Name: "ada", Bots: 1}, 120, 40)
	defer m.Close()

	update := func(msg tea.Msg) {
		next, _ := m.Update(msg)
		m = next.(SessionModel)
	}

	for range 1 + len(m.setup.seats) + rowStart {
		update(keyDown)
	}
	update(keyEnter)
	require.Equal(t, screenGame, m.screen)
	assert.Equal(t, 1, coord.GameCount())

	update(keyEsc)
	assert.Equal(t, screenSetup, m.screen)
	assert.Equal(t, 0, coord.GameCount())

	update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, screenScores, m.screen)
	assert.Contains(t, m.View(), "not available")
	update(keyEsc)
	assert.Equal(t, screenSetup, m.screen)
}

func TestScoreboardViews(t *testing.T) {
	store, err := storage.Open(filepath.Join(t.TempDir(), "scores.db"))
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.SaveGameResult(azul.GameResult{
		GameID:  uuid.New(),
		Rounds:  5,
		EndedAt: time.Now(),
		Players: []azul.PlayerResult{
			{PlayerID: uuid.New(), Name: "ada", Kind: "human", Score: 61, Winner: true},
			{PlayerID: uuid.New(), Name: "Bot 1", Kind: "computer", Strategy: "greedy", Score: 40},
		},
	}))

	m := NewScoreboardModel(store, 120, 30)
	require.Len(t, m.rows, 2)
	assert.Equal(t, "ada", m.rows[0][1])
	assert.Contains(t, m.View(), "Top scores")

	for i := 1; i < len(scoreViews); i++ {
		m.switchView(1)
		assert.NoError(t, m.loadErr)
		assert.NotEmpty(t, m.rows, scoreViews[i].title)
	}
	assert.Equal(t, "ada", m.rows[0][2], "recent games list the winner")

	m.switchView(1)
	assert.Equal(t, 0, m.viewCursor)
}

func TestRenderPatternLineWidth(t *testing.T) {
	for length := 1; length <= azul.WallSize; length++ {
		line := azul.PatternLineSnapshot{Length: length, Count: length / 2, Color: azul.TileRed}
		assert.Equal(t, 2*azul.WallSize, lipgloss.Width(renderPatternLine(line)))
	}
}

func TestRenderHelpers(t *testing.T) {
	assert.Equal(t, "B", tileLetter(azul.TileBlue))
	assert.Equal(t, "T", tileLetter(azul.TileTurquoise))
	assert.Equal(t, "1", tileLetter(azul.TileStartingMarker))

	floor := renderFloor(nil)
	assert.Equal(t, 2*azul.FloorLineSize, lipgloss.Width(floor))
	assert.True(t, strings.Contains(floor, "-1"))

	floor = renderFloor([]azul.TileType{azul.TileStartingMarker, azul.TileRed})
	assert.Contains(t, floor, "-2")

	assert.Equal(t, "  ab", centerText("ab", 6))
	assert.Equal(t, "abcdef", centerText("abcdef", 3))
}

func TestPlayerName(t *testing.T) {
	tests := map[string]string{
		"ada":                         "ada",
		"  bob  ":                     "bob",
		"":                            "Guest",
		"eve\x1b[31m":                 "eve[31m",
		"averyveryverylongusername12": "averyveryverylon",
	}
	for in, want := range tests {
		assert.Equal(t, want, playerName(in), "%q", in)
	}
}

func TestNewSSHServer(t *testing.T) {
	coord := newTestCoordinator(t, 0)
	cfg := DefaultSSHServerConfig()
	cfg.Address = "127.0.0.1:0"
	cfg.HostKeyPath = filepath.Join(t.TempDir(), "keys", "host_key")

	srv, err := NewSSHServer(cfg, coord, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:0", srv.Addr())
	assert.Equal(t, 0, srv.ActiveSessions())
	assert.DirExists(t, filepath.Dir(cfg.HostKeyPath))
}
