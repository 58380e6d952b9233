package match

import (
	"sync"

	"github.com/Sc1pex/MultiplayerTicTacToe/internal/entity"
)

// State guards the single Match shared by both sessions of a game.
type State struct {
	mutex sync.Mutex
	match *entity.Match

	started chan struct{}
}

func NewState(match *entity.Match) *State {
	return &State{
		match:   match,
		started: make(chan struct{}),
	}
}

// WithLock - runs fn with exclusive access to the match. fn must not block on
// the network or on a Notifier.
func (that *State) WithLock(fn func(match *entity.Match) error) error {
	that.mutex.Lock()
	defer that.mutex.Unlock()

	return fn(that.match)
}

// Snapshot - returns a copy of the match.
func (that *State) Snapshot() entity.Match {
	that.mutex.Lock()
	defer that.mutex.Unlock()

	return *that.match
}

// Start - marks the match running and releases every session waiting on Started.
// Only the first call on a waiting match has an effect.
func (that *State) Start() bool {
	var started bool

	_ = that.WithLock(func(match *entity.Match) error {
		started = match.Start()
		return nil
	})

	if started {
		close(that.started)
	}

	return started
}

func (that *State) Started() <-chan struct{} {
	return that.started
}
