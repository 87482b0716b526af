package tui

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/vovakirdan/tui-azul/internal/azul"
	"github.com/vovakirdan/tui-azul/internal/multiplayer"
)

// thinkingFrames animate the status line while a computer player moves.
var thinkingFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const (
	thinkingTickRate = 10
	eventBufferSize  = 64
)

// GameModel is the Bubble Tea model of one table. Every human seat of the
// game is played from this terminal (hot seat); computer seats are played by
// the coordinator.
type GameModel struct {
	coord   *multiplayer.Coordinator
	session *multiplayer.ChannelSession
	gameID  uuid.UUID
	players []multiplayer.PlayerSpec
	local   map[uuid.UUID]bool
	live    *liveGame

	snap    azul.Snapshot
	version uint64
	round   *azul.RoundReport
	result  *azul.GameResult

	sourceCursor int
	colorCursor  int
	lineCursor   int
	placing      bool

	status    string
	statusErr bool
	frame     int

	keys   GameKeyMap
	help   help.Model
	width  int
	height int

	quitting   bool
	backToMenu bool
}

// NewGameModel seats the players at a new table of coord and subscribes to
// its events. live, when set, is told how to close the game.
func NewGameModel(coord *multiplayer.Coordinator, players []multiplayer.PlayerSpec, live *liveGame, width, height int) (GameModel, error) {
	created, err := coord.CreateGame(players)
	if err != nil {
		return GameModel{}, err
	}

	session := multiplayer.NewChannelSession(multiplayer.SessionID("tui-"+uuid.NewString()), eventBufferSize)
	// bots may already have moved; the subscribe snapshot is the current state
	snap, err := coord.Subscribe(created.GameID, session)
	if err != nil {
		//nolint:errcheck // Nothing subscribed yet
		coord.Abandon(created.GameID)
		return GameModel{}, err
	}

	local := make(map[uuid.UUID]bool)
	for _, p := range snap.Players {
		if p.Kind == azul.PlayerHuman.String() {
			local[p.ID] = true
		}
	}

	if live == nil {
		live = &liveGame{}
	}
	gameID := snap.GameID
	live.set(func() {
		coord.Unsubscribe(gameID, session.ID())
		session.Close()
		//nolint:errcheck // The game may already have been purged
		coord.Abandon(gameID)
	})

	h := help.New()
	h.Width = width

	m := GameModel{
		coord:   coord,
		session: session,
		gameID:  gameID,
		players: players,
		local:   local,
		live:    live,
		snap:    snap,
		keys:    DefaultGameKeyMap(),
		help:    h,
		width:   width,
		height:  height,
	}
	m.syncCursors()
	return m, nil
}

// Init starts listening for table events and the thinking animation.
func (m GameModel) Init() tea.Cmd {
	return tea.Batch(m.waitForEvent(), tickCmd(thinkingTickRate))
}

// waitForEvent returns a command that waits for coordinator events.
func (m GameModel) waitForEvent() tea.Cmd {
	events, done := m.session.Events(), m.session.Done()
	return func() tea.Msg {
		select {
		case evt := <-events:
			return evt
		case <-done:
			return nil
		}
	}
}

// Update handles messages.
func (m GameModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case TickMsg:
		if m.quitting || m.backToMenu {
			return m, nil
		}
		m.frame++
		return m, tickCmd(thinkingTickRate)

	case multiplayer.SnapshotEvent:
		if msg.GameID == m.gameID && msg.Version > m.version {
			m.version = msg.Version
			m.snap = msg.Snapshot
			m.syncCursors()
		}
		return m, m.waitForEvent()

	case multiplayer.RoundEndedEvent:
		if msg.GameID == m.gameID {
			report := msg.Report
			m.round = &report
			m.setStatus(roundSummary(m.snap, report), false)
		}
		return m, m.waitForEvent()

	case multiplayer.GameEndedEvent:
		if msg.GameID == m.gameID {
			res := msg.Result
			m.result = &res
		}
		return m, m.waitForEvent()

	case multiplayer.MoveRejectedEvent:
		if msg.GameID == m.gameID && m.local[msg.PlayerID] {
			m.setStatus(msg.Message, true)
		}
		return m, m.waitForEvent()
	}
	return m, nil
}

// handleKey processes keyboard input.
func (m GameModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.Close()
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Back):
		m.Close()
		m.backToMenu = true
		return m, nil

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case key.Matches(msg, m.keys.Restart):
		if !m.snap.HasEnded {
			return m, nil
		}
		return m.restart()
	}

	if !m.myTurn() {
		return m, nil
	}
	if m.placing {
		return m.handlePlaceKey(msg)
	}
	return m.handleTakeKey(msg)
}

func (m GameModel) handleTakeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	sources := m.sources()
	if len(sources) == 0 {
		return m, nil
	}
	switch {
	case key.Matches(msg, m.keys.NextSource):
		m.sourceCursor = (m.sourceCursor + 1) % len(sources)
		m.colorCursor = 0
	case key.Matches(msg, m.keys.PrevSource):
		m.sourceCursor = (m.sourceCursor - 1 + len(sources)) % len(sources)
		m.colorCursor = 0
	case key.Matches(msg, m.keys.Down):
		colors := colorsIn(sources[m.sourceCursor])
		m.colorCursor = (m.colorCursor + 1) % len(colors)
	case key.Matches(msg, m.keys.Up):
		colors := colorsIn(sources[m.sourceCursor])
		m.colorCursor = (m.colorCursor - 1 + len(colors)) % len(colors)
	case key.Matches(msg, m.keys.Select):
		src := sources[m.sourceCursor]
		color := colorsIn(src)[m.colorCursor]
		err := m.coord.TakeTiles(m.gameID, m.snap.PlayerToPlayID, src.ID, color)
		m.report(err)
	}
	return m, nil
}

func (m GameModel) handlePlaceKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	options := azul.PlacementOptions(m.snap, m.snap.PlayerToPlayID)
	if len(options) == 0 {
		return m, nil
	}
	switch {
	case key.Matches(msg, m.keys.Down):
		m.lineCursor = (m.lineCursor + 1) % len(options)
	case key.Matches(msg, m.keys.Up):
		m.lineCursor = (m.lineCursor - 1 + len(options)) % len(options)
	case key.Matches(msg, m.keys.Line):
		m.place(int(msg.String()[0] - '1'))
	case key.Matches(msg, m.keys.Floor):
		m.place(azul.FloorLineIndex)
	case key.Matches(msg, m.keys.Select):
		m.place(options[m.lineCursor])
	}
	return m, nil
}

// place sends the drawn tiles to a pattern line or the floor line.
func (m *GameModel) place(line int) {
	player := m.snap.PlayerToPlayID
	if line == azul.FloorLineIndex {
		m.report(m.coord.PlaceOnFloorLine(m.gameID, player))
		return
	}
	m.report(m.coord.PlaceOnPatternLine(m.gameID, player, line))
}

// report shows the outcome of a move on the status line.
func (m *GameModel) report(err error) {
	if err == nil {
		m.status = ""
		return
	}
	var re azul.RuleError
	if errors.As(err, &re) && re.Message != "" {
		m.setStatus(re.Message, true)
		return
	}
	m.setStatus(err.Error(), true)
}

func (m *GameModel) setStatus(s string, isErr bool) {
	m.status = s
	m.statusErr = isErr
}

// restart leaves the finished table and seats the same players at a new one.
func (m GameModel) restart() (tea.Model, tea.Cmd) {
	next, err := NewGameModel(m.coord, m.players, m.live, m.width, m.height)
	if err != nil {
		m.setStatus(err.Error(), true)
		return m, nil
	}
	return next, next.Init()
}

// myTurn reports whether a human seat of this terminal is to play.
func (m GameModel) myTurn() bool {
	return !m.snap.HasEnded && m.local[m.snap.PlayerToPlayID]
}

// sources returns the displays and the center that still hold colored tiles.
func (m GameModel) sources() []azul.SourceSnapshot {
	var out []azul.SourceSnapshot
	for _, src := range m.snap.Sources() {
		if len(colorsIn(src)) > 0 {
			out = append(out, src)
		}
	}
	return out
}

// colorsIn returns the colors present in src in wall order.
func colorsIn(src azul.SourceSnapshot) []azul.TileType {
	var out []azul.TileType
	for _, c := range azul.PlayableColors() {
		if src.Count(c) > 0 {
			out = append(out, c)
		}
	}
	return out
}

// syncCursors keeps the cursors inside the current snapshot. The line
// cursor starts on the first free pattern line whenever tiles are drawn.
func (m *GameModel) syncCursors() {
	options := azul.PlacementOptions(m.snap, m.snap.PlayerToPlayID)
	wasPlacing := m.placing
	m.placing = len(options) > 0
	if m.placing && !wasPlacing {
		m.lineCursor = 0
	}
	if m.lineCursor >= len(options) {
		m.lineCursor = 0
	}

	sources := m.sources()
	if m.sourceCursor >= len(sources) {
		m.sourceCursor = 0
	}
	if len(sources) > 0 && m.colorCursor >= len(colorsIn(sources[m.sourceCursor])) {
		m.colorCursor = 0
	}
}

// Close leaves the table. The game is abandoned unless it already ended.
func (m GameModel) Close() {
	m.live.release()
}

// IsQuitting returns true if user requested to quit entirely.
func (m GameModel) IsQuitting() bool {
	return m.quitting
}

// BackToMenu returns true if user requested to go back to menu.
func (m GameModel) BackToMenu() bool {
	return m.backToMenu
}

// View renders the table.
func (m GameModel) View() string {
	if m.quitting || m.backToMenu {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")

	var selected azul.SourceSnapshot
	var color azul.TileType
	selecting := m.myTurn() && !m.placing
	if sources := m.sources(); selecting && len(sources) > 0 {
		selected = sources[m.sourceCursor]
		color = colorsIn(selected)[m.colorCursor]
	}
	b.WriteString(renderFactory(m.snap, selected, color, selecting, m.width))
	b.WriteString("\n")

	boards := make([]string, 0, len(m.snap.Players))
	for _, p := range m.snap.Players {
		toPlay := !m.snap.HasEnded && p.ID == m.snap.PlayerToPlayID
		cursor := noCursor
		if toPlay && m.placing && m.local[p.ID] {
			cursor = m.boardCursor(p)
		}
		boards = append(boards, renderBoard(p, toPlay && m.local[p.ID], toPlay, cursor))
	}
	b.WriteString(wrapHorizontal(boards, m.width))
	b.WriteString("\n")

	b.WriteString(m.renderStatus())
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.help.View(m.keys)))
	return b.String()
}

func (m GameModel) boardCursor(p azul.PlayerSnapshot) boardCursor {
	options := azul.PlacementOptions(m.snap, p.ID)
	if len(options) == 0 {
		return noCursor
	}
	c := boardCursor{line: options[m.lineCursor]}
	if len(p.TilesToPlace) > 0 {
		c.color = p.TilesToPlace[0]
	}
	return c
}

func (m GameModel) renderHeader() string {
	title := titleStyle.Render("AZUL")
	round := dimStyle.Render(fmt.Sprintf("round %d  bag %d  box %d", m.snap.RoundNumber, m.snap.BagCount, m.snap.UsedTileCount))
	return lipgloss.JoinHorizontal(lipgloss.Top, title, "  ", round)
}

func (m GameModel) renderStatus() string {
	var line string
	switch {
	case m.snap.HasEnded:
		line = titleStyle.Render(gameOverSummary(m.result)) + dimStyle.Render("  r: new game  esc: menu")
	case m.myTurn():
		p, _ := m.snap.Player(m.snap.PlayerToPlayID)
		if m.placing {
			line = selectedStyle.Render(p.Name) + ": choose a pattern line (1-5) or the floor (f)"
		} else {
			line = selectedStyle.Render(p.Name) + ": pick a display and a color"
		}
	default:
		p, _ := m.snap.Player(m.snap.PlayerToPlayID)
		spinner := thinkingFrames[m.frame%len(thinkingFrames)]
		line = dimStyle.Render(fmt.Sprintf("%s %s is thinking", spinner, p.Name))
	}

	if m.status != "" {
		style := dimStyle
		if m.statusErr {
			style = errorStyle
		}
		line += "\n" + style.Render(m.status)
	}
	return line
}

// roundSummary describes the wall tiling of a finished round.
func roundSummary(snap azul.Snapshot, report azul.RoundReport) string {
	parts := make([]string, 0, len(snap.Players))
	for _, p := range snap.Players {
		tiling, ok := report.Tiling[p.ID]
		if !ok {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s %+d", p.Name, tiling.ScoreAfter-tiling.ScoreBefore))
	}
	return fmt.Sprintf("Round %d scored: %s", report.RoundNumber, strings.Join(parts, ", "))
}

// gameOverSummary names the winners of a finished game.
func gameOverSummary(res *azul.GameResult) string {
	if res == nil {
		return "Game over"
	}
	var winners []string
	for _, p := range res.Players {
		if p.Winner {
			winners = append(winners, fmt.Sprintf("%s (%d)", p.Name, p.Score))
		}
	}
	return fmt.Sprintf("Game over after %d rounds. Winner: %s", res.Rounds, strings.Join(winners, ", "))
}

// liveGame remembers how to close the game a terminal is playing, so the
// game is abandoned when the terminal goes away.
type liveGame struct {
	mu    sync.Mutex
	close func()
}

// set replaces the close function, closing the previous game.
func (l *liveGame) set(f func()) {
	l.mu.Lock()
	prev := l.close
	l.close = f
	l.mu.Unlock()
	if prev != nil {
		prev()
	}
}

// release closes the current game, if any.
func (l *liveGame) release() {
	l.set(nil)
}
