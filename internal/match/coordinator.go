package match

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Sc1pex/MultiplayerTicTacToe/internal/config"
	"github.com/Sc1pex/MultiplayerTicTacToe/internal/entity"
	"github.com/Sc1pex/MultiplayerTicTacToe/internal/protocol"
	"github.com/Sc1pex/MultiplayerTicTacToe/internal/repository"
)

const (
	defaultSuperviseInterval = time.Second
	storeTimeout             = 5 * time.Second
)

type matchStore interface {
	CreateOrUpdate(ctx context.Context, match *entity.Match) error
	DeleteByID(ctx context.Context, id string) error
}

// Coordinator runs matches between pairs of connections.
type Coordinator struct {
	logger *slog.Logger
	conf   config.Match

	// store mirrors live matches; nil disables mirroring
	store matchStore
}

func NewCoordinator(logger *slog.Logger, conf config.Match, store matchStore) *Coordinator {
	return &Coordinator{
		logger: logger,
		conf:   conf,
		store:  store,
	}
}

// Play - runs one match between conns[0] (player X) and conns[1] (player O)
// and returns the final match once both sessions are over. Both connections
// are closed before it returns.
func (that *Coordinator) Play(ctx context.Context, conns [entity.PlayerCount]io.ReadWriteCloser) (*entity.Match, error) {
	matchID := uuid.NewString()
	log := that.logger.With("method", "Play", "matchID", matchID)

	state := NewState(entity.NewMatch(matchID))
	notifier := NewNotifier()

	// every session subscribes before the match starts
	sessions := make([]*Session, len(conns))
	for player, conn := range conns {
		sessionLogger := that.logger.With("component", "session", "matchID", matchID, "player", player)
		channel := protocol.NewServerChannel(conn, that.conf.MaxFrameSize)
		sessions[player] = NewSession(sessionLogger, player, channel, state, notifier, that.conf.MoveTimeout)
	}

	errs := make([]error, len(sessions))

	var wg sync.WaitGroup
	for player, session := range sessions {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[player] = session.Run(ctx)
		}()
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	state.Start()
	log.Info("match started")

	that.supervise(state, done)

	for player, conn := range conns {
		if err := conn.Close(); err != nil {
			log.Debug("failed to close connection", "player", player, "error", err)
		}
	}

	final := state.Snapshot()
	log.Info("match finished", "winner", final.Winner, "moves", final.Moves, "forfeit", final.Forfeit)

	return &final, errors.Join(errs...)
}

// supervise - polls the match until done is closed and mirrors it to the store.
// It never mutates the match.
func (that *Coordinator) supervise(state *State, done <-chan struct{}) {
	log := that.logger.With("method", "supervise")

	interval := that.conf.SuperviseInterval
	if interval <= 0 {
		interval = defaultSuperviseInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	snapshot := state.Snapshot()
	that.mirror(&snapshot)

	for {
		select {
		case <-done:
			that.forget(snapshot.ID)
			return
		case <-ticker.C:
			snapshot = state.Snapshot()
			log.Debug("match alive", "matchID", snapshot.ID, "running", snapshot.Running, "moves", snapshot.Moves)
			that.mirror(&snapshot)
		}
	}
}

func (that *Coordinator) mirror(match *entity.Match) {
	if that.store == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	if err := that.store.CreateOrUpdate(ctx, match); err != nil {
		that.logger.Error("failed to mirror match", "matchID", match.ID, "error", err)
	}
}

func (that *Coordinator) forget(matchID string) {
	if that.store == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	err := that.store.DeleteByID(ctx, matchID)
	switch {
	case errors.Is(err, repository.ErrMatchNotFound):
		// the mirror already expired
		that.logger.Debug("match mirror already gone", "matchID", matchID)
	case err != nil:
		that.logger.Error("failed to delete match mirror", "matchID", matchID, "error", err)
	}
}
