package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/vovakirdan/tui-azul/internal/azul"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func result(endedAt time.Time, players ...azul.PlayerResult) azul.GameResult {
	return azul.GameResult{
		GameID:  uuid.New(),
		Rounds:  6,
		EndedAt: endedAt,
		Players: players,
	}
}

func standing(name string, score int, winner bool) azul.PlayerResult {
	kind := "human"
	strategy := ""
	if name != "alice" && name != "bob" {
		kind = "bot"
		strategy = "greedy"
	}
	return azul.PlayerResult{
		PlayerID:      uuid.New(),
		Name:          name,
		Kind:          kind,
		Strategy:      strategy,
		Score:         score,
		CompletedRows: score / 20,
		Winner:        winner,
	}
}

func TestStoreOpenClose(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "nested", "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	// Check that the file was created
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
}

func TestStoreReopenKeepsData(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	res := result(time.Now(), standing("alice", 40, true), standing("bob", 30, false))
	if err := store.SaveGameResult(res); err != nil {
		t.Fatalf("SaveGameResult() failed: %v", err)
	}
	store.Close()

	store, err = Open(dbPath)
	if err != nil {
		t.Fatalf("second Open() failed: %v", err)
	}
	defer store.Close()

	got, err := store.GameByID(res.GameID.String())
	if err != nil {
		t.Fatalf("GameByID() failed: %v", err)
	}
	if got == nil {
		t.Fatal("game not found after reopen")
	}
}

func TestStoreSaveAndGameByID(t *testing.T) {
	store := openTestStore(t)

	endedAt := time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC)
	res := result(endedAt,
		standing("alice", 42, true),
		standing("Bot 1", 35, false),
		standing("Bot 2", 12, false),
	)
	if err := store.SaveGameResult(res); err != nil {
		t.Fatalf("SaveGameResult() failed: %v", err)
	}

	got, err := store.GameByID(res.GameID.String())
	if err != nil {
		t.Fatalf("GameByID() failed: %v", err)
	}
	if got == nil {
		t.Fatal("GameByID() returned nil")
	}
	if got.Rounds != 6 {
		t.Errorf("Rounds = %d, want 6", got.Rounds)
	}
	if !got.EndedAt.Equal(endedAt) {
		t.Errorf("EndedAt = %v, want %v", got.EndedAt, endedAt)
	}
	if len(got.Players) != 3 {
		t.Fatalf("len(Players) = %d, want 3", len(got.Players))
	}
	for i, p := range got.Players {
		if p.Seat != i {
			t.Errorf("Players[%d].Seat = %d", i, p.Seat)
		}
		if p.Name != res.Players[i].Name || p.Score != res.Players[i].Score {
			t.Errorf("Players[%d] = %+v, want %+v", i, p, res.Players[i])
		}
		if p.PlayerID != res.Players[i].PlayerID.String() {
			t.Errorf("Players[%d].PlayerID = %s", i, p.PlayerID)
		}
	}
	if got.Players[1].Kind != "bot" || got.Players[1].Strategy != "greedy" {
		t.Errorf("bot seat stored as %q/%q", got.Players[1].Kind, got.Players[1].Strategy)
	}
	if winners := got.Winners(); len(winners) != 1 || winners[0] != "alice" {
		t.Errorf("Winners() = %v, want [alice]", winners)
	}
}

func TestStoreGameByIDNotFound(t *testing.T) {
	store := openTestStore(t)

	got, err := store.GameByID(uuid.NewString())
	if err != nil {
		t.Fatalf("GameByID() failed: %v", err)
	}
	if got != nil {
		t.Errorf("GameByID() = %+v, want nil", got)
	}
}

func TestStoreRejectsDuplicateGame(t *testing.T) {
	store := openTestStore(t)

	res := result(time.Now(), standing("alice", 10, true), standing("bob", 5, false))
	if err := store.SaveGameResult(res); err != nil {
		t.Fatalf("SaveGameResult() failed: %v", err)
	}
	if err := store.SaveGameResult(res); err == nil {
		t.Fatal("expected duplicate game to fail")
	}

	got, err := store.GameByID(res.GameID.String())
	if err != nil {
		t.Fatalf("GameByID() failed: %v", err)
	}
	// the failed transaction must not leave extra player rows behind
	if len(got.Players) != 2 {
		t.Errorf("len(Players) = %d, want 2", len(got.Players))
	}
}

func TestStoreTopScores(t *testing.T) {
	store := openTestStore(t)

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	games := []azul.GameResult{
		result(base, standing("alice", 30, false), standing("Bot 1", 50, true)),
		result(base.Add(time.Hour), standing("bob", 70, true), standing("alice", 20, false)),
		result(base.Add(2*time.Hour), standing("alice", 50, true), standing("bob", 10, false)),
	}
	for _, g := range games {
		if err := store.SaveGameResult(g); err != nil {
			t.Fatalf("SaveGameResult() failed: %v", err)
		}
	}

	scores, err := store.TopScores(3)
	if err != nil {
		t.Fatalf("TopScores() failed: %v", err)
	}
	if len(scores) != 3 {
		t.Fatalf("len(scores) = %d, want 3", len(scores))
	}

	if scores[0].Score != 70 || scores[0].Name != "bob" {
		t.Errorf("scores[0] = %+v, want bob 70", scores[0])
	}
	// equal scores keep the earlier game first
	if scores[1].Score != 50 || scores[1].Name != "Bot 1" {
		t.Errorf("scores[1] = %+v, want Bot 1 50", scores[1])
	}
	if scores[2].Score != 50 || scores[2].Name != "alice" {
		t.Errorf("scores[2] = %+v, want alice 50", scores[2])
	}
	if !scores[0].Winner {
		t.Error("scores[0].Winner = false")
	}
	if scores[0].EndedAt.IsZero() {
		t.Error("scores[0].EndedAt is zero")
	}
}

func TestStoreTopScoresEmpty(t *testing.T) {
	store := openTestStore(t)

	scores, err := store.TopScores(10)
	if err != nil {
		t.Fatalf("TopScores() failed: %v", err)
	}
	if len(scores) != 0 {
		t.Errorf("len(scores) = %d, want 0", len(scores))
	}
}

func TestStoreRecentGames(t *testing.T) {
	store := openTestStore(t)

	base := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	var ids []uuid.UUID
	for i := 0; i < 5; i++ {
		res := result(base.Add(time.Duration(i)*time.Minute), standing("alice", i, true), standing("bob", 0, false))
		ids = append(ids, res.GameID)
		if err := store.SaveGameResult(res); err != nil {
			t.Fatalf("SaveGameResult() failed: %v", err)
		}
	}

	recent, err := store.RecentGames(3)
	if err != nil {
		t.Fatalf("RecentGames() failed: %v", err)
	}
	if len(recent) != 3 {
		t.Fatalf("len(recent) = %d, want 3", len(recent))
	}
	for i, g := range recent {
		want := ids[4-i].String()
		if g.GameID != want {
			t.Errorf("recent[%d].GameID = %s, want %s", i, g.GameID, want)
		}
		if len(g.Players) != 2 {
			t.Errorf("recent[%d] has %d players, want 2", i, len(g.Players))
		}
	}
}

func TestStorePlayerStats(t *testing.T) {
	store := openTestStore(t)

	games := []azul.GameResult{
		result(time.Now(), standing("alice", 30, true), standing("bob", 20, false)),
		result(time.Now(), standing("alice", 10, false), standing("bob", 40, true)),
		result(time.Now(), standing("alice", 50, true), standing("bob", 60, true)),
	}
	for _, g := range games {
		if err := store.SaveGameResult(g); err != nil {
			t.Fatalf("SaveGameResult() failed: %v", err)
		}
	}

	stats, err := store.PlayerStats("alice")
	if err != nil {
		t.Fatalf("PlayerStats() failed: %v", err)
	}
	if stats.Games != 3 {
		t.Errorf("Games = %d, want 3", stats.Games)
	}
	if stats.Wins != 2 {
		t.Errorf("Wins = %d, want 2", stats.Wins)
	}
	if stats.HighScore != 50 {
		t.Errorf("HighScore = %d, want 50", stats.HighScore)
	}
	if stats.AvgScore != 30 {
		t.Errorf("AvgScore = %v, want 30", stats.AvgScore)
	}
	if stats.LastPlayed.IsZero() {
		t.Error("LastPlayed is zero")
	}

	all, err := store.AllPlayerStats()
	if err != nil {
		t.Fatalf("AllPlayerStats() failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("len(all) = %d, want 2", len(all))
	}
	// equal wins, bob has the higher top score
	if all[0].Name != "bob" {
		t.Errorf("all[0].Name = %s, want bob", all[0].Name)
	}
}

func TestStorePlayerStatsUnknown(t *testing.T) {
	store := openTestStore(t)

	stats, err := store.PlayerStats("nobody")
	if err != nil {
		t.Fatalf("PlayerStats() failed: %v", err)
	}
	if stats.Games != 0 || stats.Wins != 0 || stats.HighScore != 0 {
		t.Errorf("stats = %+v, want zeros", stats)
	}
	if !stats.LastPlayed.IsZero() {
		t.Errorf("LastPlayed = %v, want zero", stats.LastPlayed)
	}
}
