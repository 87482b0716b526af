// Package storage provides SQLite-based persistence for finished games.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/vovakirdan/tui-azul/internal/azul"
	"github.com/vovakirdan/tui-azul/internal/multiplayer"
)

const timeLayout = "2006-01-02 15:04:05"

// Store manages the SQLite database connection for game persistence.
type Store struct {
	db *sql.DB
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}
	// one writer at a time; the coordinator saves from several goroutines
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS games (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			game_id TEXT NOT NULL UNIQUE,
			rounds INTEGER NOT NULL,
			ended_at DATETIME NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_games_ended_at ON games(ended_at DESC);

		CREATE TABLE IF NOT EXISTS game_players (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			game_id TEXT NOT NULL REFERENCES games(game_id) ON DELETE CASCADE,
			seat INTEGER NOT NULL,
			player_id TEXT NOT NULL,
			name TEXT NOT NULL,
			kind TEXT NOT NULL,
			strategy TEXT NOT NULL DEFAULT '',
			score INTEGER NOT NULL,
			completed_rows INTEGER NOT NULL DEFAULT 0,
			winner INTEGER NOT NULL DEFAULT 0
		);
		CREATE INDEX IF NOT EXISTS idx_game_players_game ON game_players(game_id);
		CREATE INDEX IF NOT EXISTS idx_game_players_name ON game_players(name);
		CREATE INDEX IF NOT EXISTS idx_game_players_top ON game_players(score DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveGameResult records a finished game and every player's final standing.
// It implements multiplayer.GameResultSaver.
func (s *Store) SaveGameResult(res azul.GameResult) (err error) {
	endedAt := res.EndedAt
	if endedAt.IsZero() {
		endedAt = time.Now()
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("storage: cannot begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if _, err = tx.Exec(
		"INSERT INTO games (game_id, rounds, ended_at) VALUES (?, ?, ?)",
		res.GameID.String(), res.Rounds, endedAt.UTC().Format(timeLayout),
	); err != nil {
		return fmt.Errorf("storage: cannot save game %s: %w", res.GameID, err)
	}

	for seat, p := range res.Players {
		if _, err = tx.Exec(
			`INSERT INTO game_players
			 (game_id, seat, player_id, name, kind, strategy, score, completed_rows, winner)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			res.GameID.String(), seat, p.PlayerID.String(), p.Name, p.Kind, p.Strategy,
			p.Score, p.CompletedRows, p.Winner,
		); err != nil {
			return fmt.Errorf("storage: cannot save player %s: %w", p.Name, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("storage: cannot commit game %s: %w", res.GameID, err)
	}
	return nil
}

// Ensure Store implements GameResultSaver
var _ multiplayer.GameResultSaver = (*Store)(nil)

// ScoreEntry is one player's final score in one game.
type ScoreEntry struct {
	GameID   string
	PlayerID string
	Name     string
	Kind     string
	Strategy string
	Score    int
	Winner   bool
	EndedAt  time.Time
}

// TopScores retrieves the best N final scores across all games.
// Results are ordered by score descending, earlier games first on ties.
func (s *Store) TopScores(limit int) ([]ScoreEntry, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.Query(
		`SELECT p.game_id, p.player_id, p.name, p.kind, p.strategy, p.score, p.winner, g.ended_at
		 FROM game_players p JOIN games g ON g.game_id = p.game_id
		 ORDER BY p.score DESC, g.ended_at ASC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query scores: %w", err)
	}
	defer rows.Close()

	var entries []ScoreEntry
	for rows.Next() {
		var e ScoreEntry
		var endedAt any
		if err := rows.Scan(&e.GameID, &e.PlayerID, &e.Name, &e.Kind, &e.Strategy, &e.Score, &e.Winner, &endedAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		e.EndedAt = parseTime(endedAt)
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return entries, nil
}

// PlayerRecord is a stored player standing.
type PlayerRecord struct {
	Seat          int
	PlayerID      string
	Name          string
	Kind          string
	Strategy      string
	Score         int
	CompletedRows int
	Winner        bool
}

// GameRecord is a stored finished game.
type GameRecord struct {
	ID      int64
	GameID  string
	Rounds  int
	EndedAt time.Time
	Players []PlayerRecord
}

// Winners returns the names of the winning players.
func (g GameRecord) Winners() []string {
	var names []string
	for _, p := range g.Players {
		if p.Winner {
			names = append(names, p.Name)
		}
	}
	return names
}

// RecentGames retrieves the most recently finished games, newest first.
func (s *Store) RecentGames(limit int) ([]GameRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT id, game_id, rounds, ended_at
		 FROM games
		 ORDER BY ended_at DESC, id DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query games: %w", err)
	}

	var games []GameRecord
	for rows.Next() {
		var g GameRecord
		var endedAt any
		if err := rows.Scan(&g.ID, &g.GameID, &g.Rounds, &endedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		g.EndedAt = parseTime(endedAt)
		games = append(games, g)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	rows.Close()

	// players are loaded after the cursor is closed: the pool has one connection
	for i := range games {
		players, err := s.gamePlayers(games[i].GameID)
		if err != nil {
			return nil, err
		}
		games[i].Players = players
	}
	return games, nil
}

// GameByID retrieves a finished game. Returns nil, nil if it is not stored.
func (s *Store) GameByID(gameID string) (*GameRecord, error) {
	var g GameRecord
	var endedAt any

	err := s.db.QueryRow(
		`SELECT id, game_id, rounds, ended_at FROM games WHERE game_id = ?`,
		gameID,
	).Scan(&g.ID, &g.GameID, &g.Rounds, &endedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query game: %w", err)
	}
	g.EndedAt = parseTime(endedAt)

	g.Players, err = s.gamePlayers(g.GameID)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (s *Store) gamePlayers(gameID string) ([]PlayerRecord, error) {
	rows, err := s.db.Query(
		`SELECT seat, player_id, name, kind, strategy, score, completed_rows, winner
		 FROM game_players
		 WHERE game_id = ?
		 ORDER BY seat`,
		gameID,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query players: %w", err)
	}
	defer rows.Close()

	var players []PlayerRecord
	for rows.Next() {
		var p PlayerRecord
		if err := rows.Scan(&p.Seat, &p.PlayerID, &p.Name, &p.Kind, &p.Strategy, &p.Score, &p.CompletedRows, &p.Winner); err != nil {
			return nil, fmt.Errorf("storage: cannot scan player row: %w", err)
		}
		players = append(players, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return players, nil
}

// PlayerStats contains aggregated statistics for a player name.
type PlayerStats struct {
	Name       string
	Games      int
	Wins       int
	HighScore  int
	AvgScore   float64
	LastPlayed time.Time
}

// PlayerStats retrieves aggregated statistics for one player name.
// A name that never played yields zero counts.
func (s *Store) PlayerStats(name string) (*PlayerStats, error) {
	stats := &PlayerStats{Name: name}
	var lastPlayed any

	err := s.db.QueryRow(
		`SELECT COUNT(*), COALESCE(SUM(p.winner), 0), COALESCE(MAX(p.score), 0),
		        COALESCE(AVG(p.score), 0), MAX(g.ended_at)
		 FROM game_players p JOIN games g ON g.game_id = p.game_id
		 WHERE p.name = ?`,
		name,
	).Scan(&stats.Games, &stats.Wins, &stats.HighScore, &stats.AvgScore, &lastPlayed)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get player stats: %w", err)
	}
	stats.LastPlayed = parseTime(lastPlayed)
	return stats, nil
}

// AllPlayerStats retrieves statistics for every player name, most wins first.
func (s *Store) AllPlayerStats() ([]PlayerStats, error) {
	rows, err := s.db.Query(
		`SELECT p.name, COUNT(*), SUM(p.winner), MAX(p.score), AVG(p.score), MAX(g.ended_at)
		 FROM game_players p JOIN games g ON g.game_id = p.game_id
		 GROUP BY p.name
		 ORDER BY SUM(p.winner) DESC, MAX(p.score) DESC, p.name`,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get all player stats: %w", err)
	}
	defer rows.Close()

	var all []PlayerStats
	for rows.Next() {
		var ps PlayerStats
		var lastPlayed any
		if err := rows.Scan(&ps.Name, &ps.Games, &ps.Wins, &ps.HighScore, &ps.AvgScore, &lastPlayed); err != nil {
			return nil, fmt.Errorf("storage: cannot scan stats row: %w", err)
		}
		ps.LastPlayed = parseTime(lastPlayed)
		all = append(all, ps)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return all, nil
}

// parseTime converts a DATETIME column, which the driver returns either as
// time.Time or as text.
func parseTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse(timeLayout, t); err == nil {
			return parsed
		}
	case []byte:
		if parsed, err := time.Parse(timeLayout, string(t)); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
