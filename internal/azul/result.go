package azul

import (
	"time"

	"github.com/google/uuid"
)

// PlayerResult is one player's final standing.
type PlayerResult struct {
	PlayerID      uuid.UUID `json:"playerId"`
	Name          string    `json:"name"`
	Kind          string    `json:"kind"`
	Strategy      string    `json:"strategy,omitempty"`
	Score         int       `json:"score"`
	CompletedRows int       `json:"completedRows"`
	Winner        bool      `json:"winner"`
}

// GameResult summarises a finished game.
type GameResult struct {
	GameID  uuid.UUID      `json:"gameId"`
	Rounds  int            `json:"rounds"`
	EndedAt time.Time      `json:"endedAt"`
	Players []PlayerResult `json:"players"`
}

// Result builds the final standings. ok is false while the game is running.
func (g *Game) Result() (GameResult, bool) {
	if !g.HasEnded {
		return GameResult{}, false
	}
	winners := make(map[uuid.UUID]bool)
	for _, p := range g.Winners() {
		winners[p.ID] = true
	}
	res := GameResult{
		GameID:  g.ID,
		Rounds:  g.RoundNumber,
		EndedAt: time.Now(),
	}
	for _, p := range g.Players {
		res.Players = append(res.Players, PlayerResult{
			PlayerID:      p.ID,
			Name:          p.Name,
			Kind:          p.Kind.String(),
			Strategy:      p.Strategy,
			Score:         p.Board.Score(),
			CompletedRows: p.Board.CompletedRows(),
			Winner:        winners[p.ID],
		})
	}
	return res, true
}
