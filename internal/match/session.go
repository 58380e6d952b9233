package match

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Sc1pex/MultiplayerTicTacToe/internal/apperror"
	"github.com/Sc1pex/MultiplayerTicTacToe/internal/entity"
	"github.com/Sc1pex/MultiplayerTicTacToe/internal/protocol"
	"github.com/Sc1pex/MultiplayerTicTacToe/internal/tictactoe"
)

type channel interface {
	Send(message protocol.ServerMessage) error
	Receive() (protocol.ClientMessage, error)
}

type inbound struct {
	message protocol.ClientMessage
	err     error
}

// Session drives one player's side of a match: it solicits moves while the
// player is active and reports board changes while it is passive.
type Session struct {
	logger *slog.Logger
	player int

	channel      channel
	state        *State
	notifier     *Notifier
	subscription *Subscription
	moveTimeout  time.Duration

	inbox chan inbound
	ended bool
}

// NewSession - creates the session and subscribes it to the notifier, so it
// must be called before the match is started.
func NewSession(logger *slog.Logger, player int, channel channel, state *State, notifier *Notifier, moveTimeout time.Duration) *Session {
	return &Session{
		logger: logger,
		player: player,

		channel:      channel,
		state:        state,
		notifier:     notifier,
		subscription: notifier.Subscribe(),
		moveTimeout:  moveTimeout,

		inbox: make(chan inbound, 1),
	}
}

// Run - plays the match until it ends for this player, the transport fails or ctx is done.
// A transport failure or a move timeout forfeits the match to the opponent.
func (that *Session) Run(ctx context.Context) error {
	log := that.logger.With("method", "Run")

	defer that.subscription.Close()

	done := make(chan struct{})
	defer close(done)

	go that.readMessages(done)

	select {
	case <-that.state.Started():
	case <-ctx.Done():
		return fmt.Errorf("match did not start: %w", ctx.Err())
	}

	log.Debug("session started")

	for {
		snapshot := that.state.Snapshot()
		if snapshot.IsFinished() {
			return that.sendEnd(snapshot)
		}

		var (
			finished bool
			err      error
		)

		if snapshot.CurrentPlayer == that.player {
			finished, err = that.playActive(ctx)
		} else {
			finished, err = that.playPassive(ctx)
		}

		switch {
		case finished && err != nil:
			return fmt.Errorf("failed to finish match: %w", err)
		case finished:
			log.Debug("session finished")
			return nil
		case ctx.Err() != nil:
			return fmt.Errorf("session interrupted: %w", ctx.Err())
		case err != nil:
			that.forfeit(err)
			return fmt.Errorf("player %d forfeited: %w", that.player, err)
		}
	}
}

// playActive - solicits moves until one is applied. It reports whether the match is over.
func (that *Session) playActive(ctx context.Context) (bool, error) {
	log := that.logger.With("method", "playActive")

	if err := that.discardPending(); err != nil {
		return false, err
	}

	// only this session changes Moves while it is active
	turn := that.state.Snapshot().Moves

	if err := that.channel.Send(protocol.NewInputMessage(turn)); err != nil {
		return false, fmt.Errorf("failed to request input: %w", err)
	}

	var timeout <-chan time.Time
	if that.moveTimeout > 0 {
		timer := time.NewTimer(that.moveTimeout)
		defer timer.Stop()
		timeout = timer.C
	}

	for {
		select {
		case <-ctx.Done():
			return false, ctx.Err()

		case <-timeout:
			return false, apperror.ErrMoveTimeout

		case <-that.subscription.C():
			// the opponent can only change the match by forfeiting
			if snapshot := that.state.Snapshot(); snapshot.IsFinished() {
				return true, that.sendEnd(snapshot)
			}

		case in := <-that.inbox:
			if in.err != nil {
				return false, in.err
			}

			cell := *in.message.Cell

			if in.message.Turn != nil && *in.message.Turn != turn {
				log.Warn("discarding move for another turn", "cell", cell, "turn", *in.message.Turn, "expected", turn)
				continue
			}

			snapshot, err := that.applyMove(cell)
			switch {
			case errors.Is(err, apperror.ErrInvalidCell), errors.Is(err, apperror.ErrCellOccupied):
				log.Debug("move rejected", "cell", cell, "error", err)

				if err = that.reject(err, turn); err != nil {
					return false, err
				}

				continue
			case errors.Is(err, apperror.ErrMatchFinished):
				return true, that.sendEnd(snapshot)
			case err != nil:
				return false, fmt.Errorf("failed to apply move: %w", err)
			}

			log.Debug("move applied", "cell", cell, "moves", snapshot.Moves)

			if !snapshot.IsFinished() {
				that.notifier.Signal()
				return false, nil
			}

			err = that.sendEnd(snapshot)
			that.notifier.Signal()

			return true, err
		}
	}
}

// playPassive - waits for the match to change and reports the new board.
// It reports whether the match is over.
func (that *Session) playPassive(ctx context.Context) (bool, error) {
	log := that.logger.With("method", "playPassive")

	for waiting := true; waiting; {
		select {
		case <-ctx.Done():
			return false, ctx.Err()

		case in := <-that.inbox:
			if in.err != nil {
				return false, in.err
			}

			// only the active player may move
			log.Warn("discarding move sent out of turn", "cell", *in.message.Cell)

		case <-that.subscription.C():
			waiting = false
		}
	}

	snapshot := that.state.Snapshot()

	if err := that.channel.Send(protocol.NewBoardMessage(snapshot.Board)); err != nil {
		return false, fmt.Errorf("failed to send board: %w", err)
	}

	if snapshot.IsFinished() {
		return true, that.sendEnd(snapshot)
	}

	return false, nil
}

// discardPending - drops moves that arrived before input was requested.
// Moves still in flight are caught by their turn number.
func (that *Session) discardPending() error {
	for {
		select {
		case in := <-that.inbox:
			if in.err != nil {
				return in.err
			}

			that.logger.Warn("discarding move sent out of turn", "cell", *in.message.Cell)
		default:
			return nil
		}
	}
}

// applyMove - applies the move under lock and returns the resulting match.
func (that *Session) applyMove(cell int) (entity.Match, error) {
	var snapshot entity.Match

	err := that.state.WithLock(func(match *entity.Match) error {
		err := tictactoe.MakeTurn(match, that.player, cell)
		snapshot = *match

		return err
	})

	return snapshot, err
}

func (that *Session) reject(reason error, turn int) error {
	if err := that.channel.Send(protocol.NewRejectedMessage(reason.Error())); err != nil {
		return fmt.Errorf("failed to reject move: %w", err)
	}

	if err := that.channel.Send(protocol.NewInputMessage(turn)); err != nil {
		return fmt.Errorf("failed to request input: %w", err)
	}

	return nil
}

// forfeit - ends a running match in favor of the opponent and tells the player, if it still listens.
func (that *Session) forfeit(cause error) {
	log := that.logger.With("method", "forfeit")

	reason := entity.ForfeitDisconnect
	if errors.Is(cause, apperror.ErrMoveTimeout) {
		reason = entity.ForfeitTimeout
	}

	var (
		snapshot  entity.Match
		forfeited bool
	)

	_ = that.state.WithLock(func(match *entity.Match) error {
		if match.IsOngoing() {
			match.Finish(entity.Opponent(that.player), reason)
			forfeited = true
		}
		snapshot = *match

		return nil
	})

	if !forfeited {
		return
	}

	log.Warn("player forfeited the match", "reason", reason, "error", cause)

	that.notifier.Signal()

	if errors.Is(cause, apperror.ErrTransportClosed) {
		return
	}

	if err := that.sendEnd(snapshot); err != nil {
		log.Debug("failed to notify forfeiting player", "error", err)
	}
}

// sendEnd - sends the personalized result once per session.
func (that *Session) sendEnd(snapshot entity.Match) error {
	if that.ended {
		return nil
	}
	that.ended = true

	outcome := snapshot.OutcomeFor(that.player)
	that.logger.Info("match ended for player", "outcome", outcome, "forfeit", snapshot.Forfeit)

	if err := that.channel.Send(protocol.NewEndMessage(outcome)); err != nil {
		return fmt.Errorf("failed to send match end: %w", err)
	}

	return nil
}

// readMessages - feeds received messages to the inbox until a receive fails or done is closed.
func (that *Session) readMessages(done <-chan struct{}) {
	for {
		message, err := that.channel.Receive()

		select {
		case that.inbox <- inbound{message: message, err: err}:
		case <-done:
			return
		}

		if err != nil {
			return
		}
	}
}
