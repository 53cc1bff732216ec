// internal/store/memory.go
//
// In-memory implementation of the Store interface.
// Holds live hangman games for the HTTP layer.
//
// Characteristics:
//   - Stores *game.Game objects keyed by ID in a map.
//   - The map is guarded by an RWMutex; each game has its own mutex, so
//     guesses on different games never wait on each other.
//   - Update runs its callback under the game's mutex, so a game is never
//     mutated by two requests at once.
//   - State is lost when the process restarts.

package store

import (
	"context"
	"errors"
	"sync"

	"github.com/robalobadob/hangman/internal/game"
)

// ErrNotFound is returned for unknown game IDs.
var ErrNotFound = errors.New("not found")

// Store defines the persistence interface for game sessions.
type Store interface {
	// Save persists or replaces a game.
	Save(ctx context.Context, g *game.Game) error

	// Get retrieves a game by ID.
	// Returns ErrNotFound if the game is not stored.
	Get(ctx context.Context, id string) (*game.Game, error)

	// Update runs fn on the stored game with exclusive access.
	// The error from fn is returned unchanged.
	Update(ctx context.Context, id string, fn func(g *game.Game) error) error

	// Delete removes a game. Deleting an unknown ID is not an error.
	Delete(ctx context.Context, id string) error
}

type entry struct {
	mu sync.Mutex
	g  *game.Game
}

// memory is an in-memory map-based Store implementation.
type memory struct {
	mu    sync.RWMutex      // guards the map, not the games
	games map[string]*entry // keyed by Game.ID
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{games: make(map[string]*entry)}
}

func (m *memory) Save(ctx context.Context, g *game.Game) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.games[g.ID] = &entry{g: g}
	return nil
}

func (m *memory) lookup(id string) (*entry, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.games[id]
	return e, ok
}

// Get hands out the stored pointer. Readers must not mutate it; use Update.
func (m *memory) Get(ctx context.Context, id string) (*game.Game, error) {
	e, ok := m.lookup(id)
	if !ok {
		return nil, ErrNotFound
	}
	return e.g, nil
}

func (m *memory) Update(ctx context.Context, id string, fn func(g *game.Game) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e, ok := m.lookup(id)
	if !ok {
		return ErrNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e.g)
}

func (m *memory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.games, id)
	return nil
}
