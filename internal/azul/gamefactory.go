package azul

import (
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
)

// TilesPerColor is the number of tiles of each color in a fresh bag.
const TilesPerColor = 20

// Seat describes one player taking part in a new game.
type Seat struct {
	ID            uuid.UUID
	Name          string
	LastVisitedAt *time.Time
	Kind          PlayerKind
	Strategy      string
}

// TablePreferences controls how a table is laid out.
type TablePreferences struct {
	// DisplaysByPlayers maps a player count to the number of displays.
	// Missing entries fall back to DefaultDisplayCount.
	DisplaysByPlayers map[int]int
}

// DefaultDisplayCount is the standard number of displays: two per player plus one.
func DefaultDisplayCount(players int) int {
	return players*2 + 1
}

// NumberOfDisplays returns the display count for the given number of players.
func (p TablePreferences) NumberOfDisplays(players int) int {
	if n, ok := p.DisplaysByPlayers[players]; ok && n > 0 {
		return n
	}
	return DefaultDisplayCount(players)
}

// GameFactory creates games with a shared random source. It is safe for
// concurrent use; the games it creates are not.
type GameFactory struct {
	mu    sync.Mutex
	rng   *rand.Rand
	prefs TablePreferences
}

// NewGameFactory creates a factory. Equal seeds produce equal bag draws.
func NewGameFactory(seed int64, prefs TablePreferences) *GameFactory {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &GameFactory{
		rng:   rand.New(rand.NewSource(seed)),
		prefs: prefs,
	}
}

// CreateNewForTable creates a game for the given seating, in seat order.
func (f *GameFactory) CreateNewForTable(seats []Seat) (*Game, error) {
	bag := NewTileBag(rand.New(rand.NewSource(f.NextSeed())))
	return NewGame(seats, f.prefs.NumberOfDisplays(len(seats)), bag)
}

// NextSeed draws a seed from the factory's random source, for components
// that need their own reproducible randomness.
func (f *GameFactory) NextSeed() int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rng.Int63()
}

// NewGame builds a game around bag: the bag is seeded with TilesPerColor tiles
// of each color, the displays are filled and the first player is chosen.
func NewGame(seats []Seat, numberOfDisplays int, bag Bag) (*Game, error) {
	if len(seats) < MinPlayers || len(seats) > MaxPlayers {
		return nil, argumentInvalid("a game needs %d to %d players, got %d", MinPlayers, MaxPlayers, len(seats))
	}
	if numberOfDisplays < 1 {
		return nil, argumentInvalid("a game needs at least one display, got %d", numberOfDisplays)
	}

	seen := make(map[uuid.UUID]bool, len(seats))
	players := make([]*Player, 0, len(seats))
	for _, s := range seats {
		if s.ID == uuid.Nil {
			return nil, argumentInvalid("seat %q has no player id", s.Name)
		}
		if seen[s.ID] {
			return nil, argumentInvalid("player %s is seated twice", s.ID)
		}
		seen[s.ID] = true

		p := NewPlayer(s.ID, s.Name, s.LastVisitedAt)
		p.Kind = s.Kind
		p.Strategy = s.Strategy
		players = append(players, p)
	}

	for _, c := range playableColors {
		bag.AddTiles(TilesPerColor, c)
	}
	factory := NewTileFactory(numberOfDisplays, bag)
	factory.FillDisplays()

	return &Game{
		ID:             uuid.New(),
		TileFactory:    factory,
		Players:        players,
		PlayerToPlayID: firstPlayer(players).ID,
		RoundNumber:    1,
	}, nil
}

// firstPlayer picks the player with the least recent LastVisitedAt. A nil
// date is the earliest possible; ties go to the earlier seat.
func firstPlayer(players []*Player) *Player {
	first := players[0]
	for _, p := range players[1:] {
		if visitedBefore(p.LastVisitedAt, first.LastVisitedAt) {
			first = p
		}
	}
	return first
}

func visitedBefore(a, b *time.Time) bool {
	switch {
	case a == nil:
		return b != nil
	case b == nil:
		return false
	default:
		return a.Before(*b)
	}
}
