// Package repository persists Game aggregates by id and maintains the
// secondary index of joinable games, the two external collaborators the
// truco package's own design notes name as out of scope for the core.
package repository

import (
	"context"
	"errors"
	"sync"

	"github.com/marianogappa/truco-backend/truco"
)

// ErrNotFound is returned by Load when no game exists for the given id.
var ErrNotFound = errors.New("repository: game not found")

// Store is the persistence contract the match dispatcher depends on. The
// core itself never imports this package; it is the orchestration
// boundary's collaborator.
type Store interface {
	// Load fetches a game by id.
	Load(ctx context.Context, id int) (truco.Game, error)
	// Save persists g, assigning a fresh id when g.ID == 0, and returns
	// the saved copy (with its id filled in).
	Save(ctx context.Context, g truco.Game) (truco.Game, error)
	// ListJoinable returns every game with one seated player that hasn't
	// started yet.
	ListJoinable(ctx context.Context) ([]truco.Game, error)
}

// InMemory is a Store backed by a guarded map, the default used by tests
// and by cmd/trucoserver when DATABASE_URL is unset.
type InMemory struct {
	mu     sync.RWMutex
	games  map[int]truco.Game
	nextID int
}

// NewInMemory returns an empty InMemory store.
func NewInMemory() *InMemory {
	return &InMemory{games: map[int]truco.Game{}, nextID: 1}
}

func (s *InMemory) Load(_ context.Context, id int) (truco.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.games[id]
	if !ok {
		return truco.Game{}, ErrNotFound
	}
	return g, nil
}

func (s *InMemory) Save(_ context.Context, g truco.Game) (truco.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if g.ID == 0 {
		g.ID = s.nextID
		s.nextID++
	}
	s.games[g.ID] = g
	return g, nil
}

func (s *InMemory) ListJoinable(_ context.Context) ([]truco.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var joinable []truco.Game
	for _, g := range s.games {
		if !g.State.Started && len(g.Players) == 1 {
			joinable = append(joinable, g)
		}
	}
	return joinable, nil
}
