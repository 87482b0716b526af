package azul

import (
	"sync"

	"github.com/google/uuid"
)

// GameRepository stores running games by id.
type GameRepository interface {
	Add(g *Game) error
	GetByID(id uuid.UUID) (*Game, error)
	Remove(id uuid.UUID)
	List() []*Game
}

// InMemoryGameRepository is a GameRepository backed by a map.
type InMemoryGameRepository struct {
	mu    sync.RWMutex
	games map[uuid.UUID]*Game
	order []uuid.UUID
}

// NewInMemoryGameRepository creates an empty repository.
func NewInMemoryGameRepository() *InMemoryGameRepository {
	return &InMemoryGameRepository{games: make(map[uuid.UUID]*Game)}
}

// Add stores g, replacing any game with the same id.
func (r *InMemoryGameRepository) Add(g *Game) error {
	if g == nil {
		return argumentInvalid("cannot store a nil game")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.games[g.ID]; !ok {
		r.order = append(r.order, g.ID)
	}
	r.games[g.ID] = g
	return nil
}

// GetByID returns the game with the given id.
func (r *InMemoryGameRepository) GetByID(id uuid.UUID) (*Game, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.games[id]
	if !ok {
		return nil, notFound("game %s does not exist", id)
	}
	return g, nil
}

// Remove deletes the game with the given id, if present.
func (r *InMemoryGameRepository) Remove(id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.games[id]; !ok {
		return
	}
	delete(r.games, id)
	for i, gid := range r.order {
		if gid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// List returns the games in insertion order.
func (r *InMemoryGameRepository) List() []*Game {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Game, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.games[id])
	}
	return out
}
