package tui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/tui-azul/internal/storage"
)

const maxScores = 100 // rows loaded per view

// scoreView is one page of the scoreboard.
type scoreView struct {
	title   string
	columns []table.Column
	load    func(*storage.Store) ([]table.Row, error)
}

var scoreViews = []scoreView{
	{
		title: "Top scores",
		columns: []table.Column{
			{Title: "Rank", Width: 6},
			{Title: "Player", Width: 20},
			{Title: "Score", Width: 7},
			{Title: "Won", Width: 5},
			{Title: "Date", Width: 14},
		},
		load: loadTopScores,
	},
	{
		title: "Players",
		columns: []table.Column{
			{Title: "Player", Width: 20},
			{Title: "Games", Width: 7},
			{Title: "Wins", Width: 6},
			{Title: "Best", Width: 6},
			{Title: "Avg", Width: 7},
			{Title: "Last played", Width: 14},
		},
		load: loadPlayerStats,
	},
	{
		title: "Recent games",
		columns: []table.Column{
			{Title: "Date", Width: 14},
			{Title: "Rounds", Width: 7},
			{Title: "Winner", Width: 20},
			{Title: "Scores", Width: 24},
		},
		load: loadRecentGames,
	},
}

const dateLayout = "Jan 02 15:04"

func loadTopScores(store *storage.Store) ([]table.Row, error) {
	scores, err := store.TopScores(maxScores)
	if err != nil {
		return nil, err
	}
	rows := make([]table.Row, len(scores))
	for i, s := range scores {
		won := ""
		if s.Winner {
			won = "yes"
		}
		rows[i] = table.Row{
			fmt.Sprintf("#%d", i+1),
			s.Name,
			fmt.Sprintf("%d", s.Score),
			won,
			s.EndedAt.Local().Format(dateLayout),
		}
	}
	return rows, nil
}

func loadPlayerStats(store *storage.Store) ([]table.Row, error) {
	stats, err := store.AllPlayerStats()
	if err != nil {
		return nil, err
	}
	rows := make([]table.Row, len(stats))
	for i, s := range stats {
		rows[i] = table.Row{
			s.Name,
			fmt.Sprintf("%d", s.Games),
			fmt.Sprintf("%d", s.Wins),
			fmt.Sprintf("%d", s.HighScore),
			fmt.Sprintf("%.1f", s.AvgScore),
			s.LastPlayed.Local().Format(dateLayout),
		}
	}
	return rows, nil
}

func loadRecentGames(store *storage.Store) ([]table.Row, error) {
	games, err := store.RecentGames(maxScores)
	if err != nil {
		return nil, err
	}
	rows := make([]table.Row, len(games))
	for i, g := range games {
		scores := make([]string, len(g.Players))
		for j, p := range g.Players {
			scores[j] = fmt.Sprintf("%d", p.Score)
		}
		rows[i] = table.Row{
			g.EndedAt.Local().Format(dateLayout),
			fmt.Sprintf("%d", g.Rounds),
			strings.Join(g.Winners(), ", "),
			strings.Join(scores, " / "),
		}
	}
	return rows, nil
}

// ScoreboardModel shows finished games from the store, one view at a time.
type ScoreboardModel struct {
	store      *storage.Store // may be nil
	viewCursor int
	rows       []table.Row
	loadErr    error
	table      table.Model
	help       help.Model
	keys       ScoresKeyMap
	width      int
	height     int
	embedded   bool // Back hands control to the caller instead of quitting
	quitting   bool
	goingBack  bool
}

// NewScoreboardModel creates a scoreboard showing the first view.
func NewScoreboardModel(store *storage.Store, width, height int) ScoreboardModel {
	m := ScoreboardModel{
		store:  store,
		keys:   DefaultScoresKeyMap(),
		help:   help.New(),
		width:  width,
		height: height,
	}
	m.help.Width = width
	m.table = m.newTable()
	m.loadRows()
	return m
}

// newTable builds the table for the current view, shrinking its widest
// column to fit the terminal.
func (m *ScoreboardModel) newTable() table.Model {
	columns := slices.Clone(scoreViews[m.viewCursor].columns)

	widest, total := 0, 0
	for i, c := range columns {
		total += c.Width + 2
		if c.Width > columns[widest].Width {
			widest = i
		}
	}
	if over := total - (m.width - 6); over > 0 {
		columns[widest].Width = max(8, columns[widest].Width-over)
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(max(3, m.height-9)),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	styles.Selected = selectedStyle.Background(lipgloss.Color("57"))
	t.SetStyles(styles)
	return t
}

func (m *ScoreboardModel) loadRows() {
	m.rows, m.loadErr = nil, nil
	if m.store != nil {
		m.rows, m.loadErr = scoreViews[m.viewCursor].load(m.store)
	}
	m.table.SetRows(m.rows)
	m.table.GotoTop()
}

// switchView moves delta views along, wrapping around, and reloads.
func (m *ScoreboardModel) switchView(delta int) {
	m.viewCursor = (m.viewCursor + delta + len(scoreViews)) % len(scoreViews)
	m.table = m.newTable()
	m.loadRows()
}

func (m ScoreboardModel) Init() tea.Cmd {
	return nil
}

func (m ScoreboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Back):
			m.goingBack = true
			if m.embedded {
				return m, nil
			}
			return m, tea.Quit
		case key.Matches(msg, m.keys.NextView):
			m.switchView(1)
			return m, nil
		case key.Matches(msg, m.keys.PrevView):
			m.switchView(-1)
			return m, nil
		case key.Matches(msg, m.keys.Refresh):
			m.loadRows()
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.table = m.newTable()
		m.table.SetRows(m.rows)
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m ScoreboardModel) View() string {
	if m.quitting || m.goingBack {
		return ""
	}

	tabs := make([]string, len(scoreViews))
	for i, v := range scoreViews {
		if i == m.viewCursor {
			tabs[i] = activeBoxStyle.Render(titleStyle.Render(v.title))
		} else {
			tabs[i] = boxStyle.Render(dimStyle.Render(v.title))
		}
	}

	var body string
	switch {
	case m.store == nil:
		body = dimStyle.Italic(true).Padding(1, 2).Render("Scores are not available: the database could not be opened.")
	case m.loadErr != nil:
		body = errorStyle.Padding(1, 2).Render(m.loadErr.Error())
	case len(m.rows) == 0:
		body = dimStyle.Italic(true).Padding(1, 2).Render("No games recorded yet. Finish a game to set a high score!")
	default:
		body = m.table.View() + "\n" + dimStyle.Render(fmt.Sprintf("%d of %d", m.table.Cursor()+1, len(m.rows)))
	}

	var b strings.Builder
	b.WriteString(centerText(titleStyle.Render("AZUL SCORES"), m.width))
	b.WriteString("\n\n")
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...))
	b.WriteString("\n")
	b.WriteString(boxStyle.Render(body))
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

// IsGoingBack reports whether the user asked to return to the previous screen.
func (m ScoreboardModel) IsGoingBack() bool {
	return m.goingBack
}

// IsQuitting reports whether the user asked to quit.
func (m ScoreboardModel) IsQuitting() bool {
	return m.quitting
}

// RunScoreboard runs the scoreboard as its own program. goBack is false when
// the user quit.
func RunScoreboard(store *storage.Store, width, height int) (goBack bool, err error) {
	final, err := tea.NewProgram(NewScoreboardModel(store, width, height), tea.WithAltScreen()).Run()
	if err != nil {
		return false, err
	}
	m, ok := final.(ScoreboardModel)
	return ok && m.IsGoingBack(), nil
}
