package games

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

var (
	// ErrGameNotRegistered is returned by Get for unknown game names.
	ErrGameNotRegistered = errors.New("game not registered")
	// ErrGameAlreadyRegistered is returned by Register on a duplicate name.
	ErrGameAlreadyRegistered = errors.New("game already registered")
	// ErrInvalidSelection is returned by strategies that need a player
	// choice when the choice is missing or unsupported.
	ErrInvalidSelection = errors.New("invalid selection")
)

// Round carries one play request into a strategy: who is playing, the
// stake already reserved for the round, and the player's selection for
// choice-based games.
type Round struct {
	UserID int64
	Bet    int64
	Choice string
}

// Result is a resolved round. Payout is the total owed back to the
// player (stake included on a win or push), Display is a short
// human-readable summary, and State holds the outcome facts the round
// is recorded with.
type Result struct {
	Payout  int64
	Display string
	State   map[string]any
}

// Strategy is one playable game. Implementations must be safe for
// concurrent use; they draw all randomness from a cryptographically
// strong source because outcomes move chip balances.
type Strategy interface {
	Name() string
	Play(round Round) (*Result, error)
}

// Registry maps game names to strategies.
type Registry struct {
	mu    sync.RWMutex
	games map[string]Strategy
}

func NewRegistry() *Registry {
	return &Registry{games: make(map[string]Strategy)}
}

// Register adds a strategy under its own name.
func (r *Registry) Register(game Strategy) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := game.Name()
	if _, exists := r.games[name]; exists {
		return fmt.Errorf("%w: %s", ErrGameAlreadyRegistered, name)
	}
	r.games[name] = game
	return nil
}

// Get looks up a strategy by name.
func (r *Registry) Get(name string) (Strategy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	game, exists := r.games[name]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrGameNotRegistered, name)
	}
	return game, nil
}

// Names lists the registered game names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.games))
	for name := range r.games {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
