package multiplayer

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/vovakirdan/tui-azul/internal/azul"
	"github.com/vovakirdan/tui-azul/internal/registry"
)

// CoordinatorConfig holds configuration for the coordinator.
type CoordinatorConfig struct {
	Table         azul.TablePreferences
	Seed          int64         // 0 = seed from the clock
	BotDelay      time.Duration // pause before each computer move
	BotTimeout    time.Duration // how long a strategy may think
	LuaScript     string        // script for "lua" computer players
	FinishedTTL   time.Duration // how long finished games stay queryable
	IdleTTL       time.Duration // unwatched unfinished games are purged after this long; 0 keeps them
	CleanupPeriod time.Duration // how often finished and idle games are purged
}

// DefaultCoordinatorConfig returns sensible defaults.
func DefaultCoordinatorConfig() CoordinatorConfig {
	return CoordinatorConfig{
		BotDelay:      400 * time.Millisecond,
		BotTimeout:    2 * time.Second,
		FinishedTTL:   10 * time.Minute,
		IdleTTL:       30 * time.Minute,
		CleanupPeriod: time.Minute,
	}
}

// GameResultSaver persists finished games.
// This allows the coordinator to save results without depending on the storage package.
type GameResultSaver interface {
	SaveGameResult(result azul.GameResult) error
}

// Coordinator owns every live game. All methods are safe for concurrent use.
type Coordinator struct {
	config      CoordinatorConfig
	logger      *log.Logger
	factory     *azul.GameFactory
	games       azul.GameRepository
	resultSaver GameResultSaver // Optional, can be nil

	mu     sync.RWMutex
	tables map[uuid.UUID]*table

	// ctx is cancelled by Stop; computer players think under it.
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewCoordinator creates a coordinator. A nil logger discards log output.
func NewCoordinator(cfg CoordinatorConfig, logger *log.Logger) *Coordinator {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Coordinator{
		config:  cfg,
		logger:  logger,
		factory: azul.NewGameFactory(cfg.Seed, cfg.Table),
		games:   azul.NewInMemoryGameRepository(),
		tables:  make(map[uuid.UUID]*table),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// SetResultSaver sets the optional game result saver.
func (c *Coordinator) SetResultSaver(saver GameResultSaver) {
	c.resultSaver = saver
}

// Start begins background cleanup of finished and idle games.
func (c *Coordinator) Start() {
	if c.config.CleanupPeriod <= 0 {
		return
	}
	c.wg.Add(1)
	go c.cleanupLoop()
}

// Stop halts computer players and background work, waits for them, then
// releases every game still held.
func (c *Coordinator) Stop() {
	c.cancel()
	c.wg.Wait()

	c.mu.Lock()
	var strategies []registry.Strategy
	for id, t := range c.tables {
		t.mu.Lock()
		strategies = append(strategies, t.release()...)
		t.mu.Unlock()
		delete(c.tables, id)
		c.games.Remove(id)
	}
	c.mu.Unlock()
	c.closeBots(strategies)
}

// CreateGame seats the players and starts a game. Computer players get a
// strategy from the registry and start playing as soon as it is their turn.
func (c *Coordinator) CreateGame(players []PlayerSpec) (azul.Snapshot, error) {
	seats := make([]azul.Seat, 0, len(players))
	bots := make(map[uuid.UUID]registry.Strategy)
	for i, p := range players {
		if p.ID == uuid.Nil {
			p.ID = uuid.New()
		}
		if p.Name == "" {
			p.Name = fmt.Sprintf("Player %d", i+1)
		}
		if p.Kind == azul.PlayerComputer {
			strategy, err := registry.Create(p.Strategy, registry.Options{
				Seed:       c.factory.NextSeed(),
				ScriptPath: c.config.LuaScript,
			})
			if err != nil {
				return azul.Snapshot{}, fmt.Errorf("multiplayer: seat %q: %w", p.Name, err)
			}
			bots[p.ID] = strategy
		}
		seats = append(seats, p.seat())
	}

	g, err := c.factory.CreateNewForTable(seats)
	if err != nil {
		return azul.Snapshot{}, fmt.Errorf("multiplayer: create game: %w", err)
	}
	if err := c.games.Add(g); err != nil {
		return azul.Snapshot{}, fmt.Errorf("multiplayer: store game: %w", err)
	}

	t := newTable(g, bots)
	c.mu.Lock()
	c.tables[g.ID] = t
	c.mu.Unlock()

	c.logger.Info("game created", "game", g.ID, "players", len(seats), "bots", len(bots))

	t.mu.Lock()
	defer t.mu.Unlock()
	c.wakeBots(t)
	return g.Snapshot(), nil
}

// TakeTiles draws every tile of color from a display or the center.
func (c *Coordinator) TakeTiles(gameID, playerID, sourceID uuid.UUID, color azul.TileType) error {
	return c.humanMove(gameID, playerID, "take", func(g *azul.Game) error {
		return g.TakeTilesFromFactory(playerID, sourceID, color)
	})
}

// PlaceOnPatternLine places the drawn tiles on pattern line lineIndex.
func (c *Coordinator) PlaceOnPatternLine(gameID, playerID uuid.UUID, lineIndex int) error {
	return c.humanMove(gameID, playerID, "place", func(g *azul.Game) error {
		return g.PlaceTilesOnPatternLine(playerID, lineIndex)
	})
}

// PlaceOnFloorLine drops the drawn tiles on the floor line.
func (c *Coordinator) PlaceOnFloorLine(gameID, playerID uuid.UUID) error {
	return c.humanMove(gameID, playerID, "floor", func(g *azul.Game) error {
		return g.PlaceTilesOnFloorLine(playerID)
	})
}

// Play takes and places in a single step.
func (c *Coordinator) Play(gameID, playerID uuid.UUID, m azul.Move) error {
	return c.humanMove(gameID, playerID, "play", func(g *azul.Game) error {
		return g.ApplyMove(playerID, m)
	})
}

// Snapshot returns the current state of a game.
func (c *Coordinator) Snapshot(gameID uuid.UUID) (azul.Snapshot, error) {
	t, err := c.table(gameID)
	if err != nil {
		return azul.Snapshot{}, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.game.Snapshot(), nil
}

// Subscribe registers session for the events of a game and returns the
// current snapshot, so nothing is missed between the two.
func (c *Coordinator) Subscribe(gameID uuid.UUID, session SessionHandle) (azul.Snapshot, error) {
	t, err := c.table(gameID)
	if err != nil {
		return azul.Snapshot{}, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.subs[session.ID()] = session
	t.lastActive = time.Now()
	return t.game.Snapshot(), nil
}

// Unsubscribe stops sending events of a game to a session.
func (c *Coordinator) Unsubscribe(gameID uuid.UUID, sessionID SessionID) {
	t, err := c.table(gameID)
	if err != nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.subs, sessionID)
	t.lastActive = time.Now()
}

// Abandon stops a game and forgets it. Computer players stop after their
// current move and an unfinished game is never saved. Subscriber sessions
// that can be closed are closed without an event.
func (c *Coordinator) Abandon(gameID uuid.UUID) error {
	c.mu.Lock()
	t, ok := c.tables[gameID]
	if ok {
		delete(c.tables, gameID)
	}
	c.mu.Unlock()
	if !ok {
		return fmt.Errorf("multiplayer: game %s: %w", gameID, azul.ErrNotFound)
	}
	c.games.Remove(gameID)

	t.mu.Lock()
	strategies := t.release()
	ended, round := t.game.HasEnded, t.game.RoundNumber
	t.mu.Unlock()
	c.closeBots(strategies)

	if ended {
		c.logger.Debug("finished game released", "game", gameID)
		return nil
	}
	c.logger.Info("game abandoned", "game", gameID, "round", round)
	return nil
}

// Games returns the snapshots of all live games.
func (c *Coordinator) Games() []azul.Snapshot {
	var out []azul.Snapshot
	for _, g := range c.games.List() {
		t, err := c.table(g.ID)
		if err != nil {
			continue
		}
		t.mu.Lock()
		out = append(out, t.game.Snapshot())
		t.mu.Unlock()
	}
	return out
}

// GameCount returns the number of games held by the coordinator.
func (c *Coordinator) GameCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.tables)
}

func (c *Coordinator) table(gameID uuid.UUID) (*table, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.tables[gameID]
	if !ok {
		return nil, fmt.Errorf("multiplayer: game %s: %w", gameID, azul.ErrNotFound)
	}
	return t, nil
}

// humanMove applies a move made on behalf of a human player.
func (c *Coordinator) humanMove(gameID, playerID uuid.UUID, action string, apply func(*azul.Game) error) error {
	t, err := c.table(gameID)
	if err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, isBot := t.bots[playerID]; isBot {
		return fmt.Errorf("multiplayer: player %s is computer-controlled: %w", playerID, azul.ErrInvalidTurn)
	}
	if err := apply(t.game); err != nil {
		c.reject(t, playerID, action, err)
		return err
	}
	c.afterMove(t)
	return nil
}

func (c *Coordinator) reject(t *table, playerID uuid.UUID, action string, err error) {
	c.logger.Debug("move rejected", "game", t.game.ID, "player", playerID, "action", action, "err", err)
	evt := MoveRejectedEvent{GameID: t.game.ID, PlayerID: playerID, Message: err.Error()}
	if code, ok := azul.CodeOf(err); ok {
		evt.Code = code
	}
	t.subs.broadcast(evt)
}

// afterMove publishes the result of a successful move and hands the turn to
// a computer player if needed. Must be called with t.mu held.
func (c *Coordinator) afterMove(t *table) {
	if ended := c.publishMove(t); ended != nil {
		c.finish(*ended)
		return
	}
	c.wakeBots(t)
}

// publishMove commits and broadcasts a move. It returns the final result
// when the move ended the game. Must be called with t.mu held.
func (c *Coordinator) publishMove(t *table) *azul.GameResult {
	out := t.commit()
	if out.round != nil {
		report := out.round.Report
		for id, tiling := range report.Tiling {
			c.logger.Debug("wall tiling", "game", t.game.ID, "round", report.RoundNumber,
				"player", id, "placed", len(tiling.Placements), "penalty", tiling.Penalty, "score", tiling.ScoreAfter)
		}
		c.logger.Info("round ended", "game", t.game.ID, "round", report.RoundNumber)
	}
	t.publish(out)
	if out.ended == nil {
		return nil
	}
	return &out.ended.Result
}

func (c *Coordinator) finish(res azul.GameResult) {
	for _, p := range res.Players {
		if p.Winner {
			c.logger.Info("game ended", "game", res.GameID, "rounds", res.Rounds, "winner", p.Name, "score", p.Score)
		}
	}
	if c.resultSaver == nil {
		return
	}
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		if err := c.resultSaver.SaveGameResult(res); err != nil {
			c.logger.Error("save game result", "game", res.GameID, "err", err)
		}
	}()
}

// wakeBots starts the computer player loop of t if a computer player is to
// move and no loop is running. Must be called with t.mu held.
func (c *Coordinator) wakeBots(t *table) {
	if t.botsRunning || t.botToMove() == nil || c.ctx.Err() != nil {
		return
	}
	t.botsRunning = true
	c.wg.Add(1)
	go c.runBots(t)
}

// runBots plays computer turns until a human is to move or the game ends.
// The strategy thinks without holding the table lock; its move is dropped if
// the game changed in the meantime.
func (c *Coordinator) runBots(t *table) {
	defer c.wg.Done()
	for {
		if c.config.BotDelay > 0 {
			select {
			case <-time.After(c.config.BotDelay):
			case <-c.ctx.Done():
				c.stopBots(t)
				return
			}
		} else if c.ctx.Err() != nil {
			c.stopBots(t)
			return
		}

		ended, more := c.botTurn(t)
		if ended != nil {
			c.finish(*ended)
		}
		if !more {
			return
		}
	}
}

// botTurn plays one computer move. more is false when the loop stops; the
// running flag is cleared under the same lock hold that decides so.
func (c *Coordinator) botTurn(t *table) (ended *azul.GameResult, more bool) {
	t.mu.Lock()
	strategy := t.botToMove()
	if strategy == nil {
		t.botsRunning = false
		t.mu.Unlock()
		return nil, false
	}
	snap := t.game.Snapshot()
	version := t.version
	t.mu.Unlock()

	ctx, cancel := c.botContext()
	m, reason, ok := chooseMove(ctx, strategy, snap, snap.PlayerToPlayID)
	cancel()
	if !ok {
		c.logger.Error("computer player has no legal move", "game", snap.GameID, "player", snap.PlayerToPlayID)
		c.stopBots(t)
		return nil, false
	}
	if reason != nil {
		c.logger.Warn("strategy fell back to first legal move", "game", snap.GameID, "strategy", strategy.ID(), "err", reason)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.abandoned {
		t.botsRunning = false
		return nil, false
	}
	if t.version != version {
		return nil, true
	}
	if err := t.game.ApplyMove(snap.PlayerToPlayID, m); err != nil {
		c.logger.Error("computer move rejected", "game", snap.GameID, "player", snap.PlayerToPlayID, "err", err)
		t.botsRunning = false
		return nil, false
	}
	c.logger.Debug("computer move", "game", snap.GameID, "player", snap.PlayerToPlayID,
		"strategy", strategy.ID(), "color", m.Color, "line", m.LineIndex)
	if ended = c.publishMove(t); ended != nil {
		t.botsRunning = false
		return ended, false
	}
	return nil, true
}

func (c *Coordinator) stopBots(t *table) {
	t.mu.Lock()
	t.botsRunning = false
	t.mu.Unlock()
}

func (c *Coordinator) botContext() (context.Context, context.CancelFunc) {
	if c.config.BotTimeout > 0 {
		return context.WithTimeout(c.ctx, c.config.BotTimeout)
	}
	return context.WithCancel(c.ctx)
}

func (c *Coordinator) cleanupLoop() {
	defer c.wg.Done()
	ticker := time.NewTicker(c.config.CleanupPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.cleanup()
		case <-c.ctx.Done():
			return
		}
	}
}

// cleanup forgets games that ended more than FinishedTTL ago and unfinished
// games nobody has watched or played for IdleTTL.
func (c *Coordinator) cleanup() {
	c.mu.Lock()
	var strategies []registry.Strategy
	now := time.Now()
	for id, t := range c.tables {
		t.mu.Lock()
		expired := !t.endedAt.IsZero() && now.Sub(t.endedAt) > c.config.FinishedTTL
		idle := t.idle(now, c.config.IdleTTL)
		if expired || idle {
			strategies = append(strategies, t.release()...)
		}
		t.mu.Unlock()
		if !expired && !idle {
			continue
		}
		delete(c.tables, id)
		c.games.Remove(id)
		if idle {
			c.logger.Info("idle game removed", "game", id)
		} else {
			c.logger.Debug("finished game removed", "game", id)
		}
	}
	c.mu.Unlock()
	c.closeBots(strategies)
}

// closeBots closes the strategies of released games. Must be called
// without any table lock held.
func (c *Coordinator) closeBots(strategies []registry.Strategy) {
	if err := closeStrategies(strategies); err != nil {
		c.logger.Warn("close strategy", "err", err)
	}
}
