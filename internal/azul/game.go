package azul

import (
	"github.com/google/uuid"
)

// Player count limits.
const (
	MinPlayers = 2
	MaxPlayers = 4
)

// RoundReport describes what happened when a round ended.
type RoundReport struct {
	RoundNumber int
	Tiling      map[uuid.UUID]TilingReport
	Bonuses     map[uuid.UUID]BonusReport // set only when the game ended
	GameEnded   bool
}

// Game is the turn, round and game state machine.
type Game struct {
	ID             uuid.UUID
	TileFactory    *TileFactory
	Players        []*Player
	PlayerToPlayID uuid.UUID
	RoundNumber    int
	HasEnded       bool

	// LastRound is the report of the most recently finished round, nil
	// during round one.
	LastRound *RoundReport
}

// Player returns the player with the given id.
func (g *Game) Player(id uuid.UUID) (*Player, error) {
	for _, p := range g.Players {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, notFound("player %s is not part of game %s", id, g.ID)
}

// PlayerToPlay returns the player whose turn it is.
func (g *Game) PlayerToPlay() *Player {
	p, _ := g.Player(g.PlayerToPlayID)
	return p
}

// TakeTilesFromFactory takes every tile of type t from a display or the
// center for the acting player. The turn does not advance until the player
// places the tiles.
func (g *Game) TakeTilesFromFactory(playerID, displayID uuid.UUID, t TileType) error {
	p, err := g.actingPlayer(playerID)
	if err != nil {
		return err
	}
	if p.HasTilesToPlace() {
		return invalidState("player %s must place the drawn tiles first", p.Name)
	}

	tiles, err := g.TileFactory.TakeTiles(displayID, t)
	if err != nil {
		return err
	}
	for _, tile := range tiles {
		if tile == TileStartingMarker {
			p.HasStartingTile = true
			p.StartingTilePending = true
			continue
		}
		p.TilesToPlace = append(p.TilesToPlace, tile)
	}
	return nil
}

// PlaceTilesOnPatternLine places the drawn tiles on one of the player's
// pattern lines and passes the turn.
func (g *Game) PlaceTilesOnPatternLine(playerID uuid.UUID, lineIndex int) error {
	p, err := g.placingPlayer(playerID)
	if err != nil {
		return err
	}
	if err := p.Board.AddTilesToPatternLine(p.pendingTiles(), lineIndex, g.TileFactory); err != nil {
		return err
	}
	p.clearPending()
	g.endTurn()
	return nil
}

// PlaceTilesOnFloorLine drops the drawn tiles on the player's floor line and
// passes the turn.
func (g *Game) PlaceTilesOnFloorLine(playerID uuid.UUID) error {
	p, err := g.placingPlayer(playerID)
	if err != nil {
		return err
	}
	p.Board.AddTilesToFloorLine(p.pendingTiles(), g.TileFactory)
	p.clearPending()
	g.endTurn()
	return nil
}

func (g *Game) actingPlayer(playerID uuid.UUID) (*Player, error) {
	if g.HasEnded {
		return nil, invalidState("game %s has ended", g.ID)
	}
	p, err := g.Player(playerID)
	if err != nil {
		return nil, err
	}
	if p.ID != g.PlayerToPlayID {
		return nil, invalidTurn("it is not %s's turn", p.Name)
	}
	return p, nil
}

func (g *Game) placingPlayer(playerID uuid.UUID) (*Player, error) {
	p, err := g.actingPlayer(playerID)
	if err != nil {
		return nil, err
	}
	if !p.HasTilesToPlace() {
		return nil, invalidState("player %s has no tiles to place", p.Name)
	}
	return p, nil
}

// endTurn passes the turn to the next seat and closes the round when the
// factory has run out of tiles.
func (g *Game) endTurn() {
	g.PlayerToPlayID = g.nextPlayerID(g.PlayerToPlayID)
	if g.TileFactory.IsEmpty() {
		g.endRound()
	}
}

func (g *Game) nextPlayerID(id uuid.UUID) uuid.UUID {
	for i, p := range g.Players {
		if p.ID == id {
			return g.Players[(i+1)%len(g.Players)].ID
		}
	}
	return g.Players[0].ID
}

func (g *Game) endRound() {
	report := &RoundReport{
		RoundNumber: g.RoundNumber,
		Tiling:      make(map[uuid.UUID]TilingReport, len(g.Players)),
	}
	for _, p := range g.Players {
		report.Tiling[p.ID] = p.Board.DoWallTiling(g.TileFactory)
	}
	g.LastRound = report

	for _, p := range g.Players {
		if p.Board.HasCompletedHorizontalLine() {
			g.finish(report)
			return
		}
	}

	g.RoundNumber++
	for _, p := range g.Players {
		if p.HasStartingTile {
			g.PlayerToPlayID = p.ID
		}
		p.HasStartingTile = false
	}
	g.TileFactory.FillDisplays()

	// every tile is on a wall or a pattern line: nothing left to draft
	if g.TileFactory.IsEmpty() {
		g.finish(report)
	}
}

func (g *Game) finish(report *RoundReport) {
	report.Bonuses = make(map[uuid.UUID]BonusReport, len(g.Players))
	for _, p := range g.Players {
		report.Bonuses[p.ID] = p.Board.CalculateFinalBonusScores()
	}
	report.GameEnded = true
	g.HasEnded = true
}

// Winners returns the players with the highest score. Ties go to the player
// with more completed wall rows; players still tied share the win.
func (g *Game) Winners() []*Player {
	var winners []*Player
	for _, p := range g.Players {
		if len(winners) == 0 {
			winners = []*Player{p}
			continue
		}
		best := winners[0]
		switch compareStanding(p, best) {
		case 1:
			winners = []*Player{p}
		case 0:
			winners = append(winners, p)
		}
	}
	return winners
}

func compareStanding(a, b *Player) int {
	switch {
	case a.Board.Score() > b.Board.Score():
		return 1
	case a.Board.Score() < b.Board.Score():
		return -1
	}
	ra, rb := a.Board.CompletedRows(), b.Board.CompletedRows()
	switch {
	case ra > rb:
		return 1
	case ra < rb:
		return -1
	}
	return 0
}
