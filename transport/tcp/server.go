package tcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/Sc1pex/MultiplayerTicTacToe/internal/entity"
)

const (
	minRetryDelay = 5 * time.Millisecond
	maxRetryDelay = time.Second
)

type coordinator interface {
	Play(ctx context.Context, conns [entity.PlayerCount]io.ReadWriteCloser) (*entity.Match, error)
}

// Server pairs incoming connections in join order and plays one match per pair.
type Server struct {
	logger      *slog.Logger
	coordinator coordinator

	matches sync.WaitGroup
}

func New(logger *slog.Logger, coordinator coordinator) *Server {
	return &Server{
		logger:      logger,
		coordinator: coordinator,
	}
}

// Start - starts TCP server.
func (that *Server) Start(ctx context.Context, port string) error {
	var lc net.ListenConfig

	listener, err := lc.Listen(ctx, "tcp", ":"+port)
	if err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return that.Serve(ctx, listener)
}

// Serve - accepts connections until ctx is done, then waits for running matches.
// The first connection of a pair plays X, the second O.
func (that *Server) Serve(ctx context.Context, listener net.Listener) error {
	log := that.logger.With("method", "Serve", "addr", listener.Addr().String())

	stop := context.AfterFunc(ctx, func() {
		_ = listener.Close()
	})
	defer stop()

	var (
		pending [entity.PlayerCount]io.ReadWriteCloser
		joined  int
	)

	defer func() {
		for player := 0; player < joined; player++ {
			_ = pending[player].Close()
		}

		that.matches.Wait()
	}()

	log.Info("waiting for players")

	var retryDelay time.Duration

	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				log.Info("listener closed")
				return nil
			}

			retryDelay = nextRetryDelay(retryDelay)
			log.Error("failed to accept connection", "error", err, "retryIn", retryDelay)

			select {
			case <-ctx.Done():
			case <-time.After(retryDelay):
			}

			continue
		}

		retryDelay = 0

		log.Info("player connected", "player", joined, "remote", conn.RemoteAddr().String())

		pending[joined] = conn
		joined++

		if joined < entity.PlayerCount {
			continue
		}

		conns := pending
		pending = [entity.PlayerCount]io.ReadWriteCloser{}
		joined = 0

		that.matches.Add(1)
		go func() {
			defer that.matches.Done()
			that.playMatch(ctx, conns)
		}()
	}
}

// nextRetryDelay - doubles the accept retry delay up to maxRetryDelay.
func nextRetryDelay(current time.Duration) time.Duration {
	if current == 0 {
		return minRetryDelay
	}

	return min(current*2, maxRetryDelay)
}

func (that *Server) playMatch(ctx context.Context, conns [entity.PlayerCount]io.ReadWriteCloser) {
	log := that.logger.With("method", "playMatch")

	match, err := that.coordinator.Play(ctx, conns)
	if err != nil {
		log.Warn("match ended abnormally", "matchID", match.ID, "error", err)
		return
	}

	log.Info("match completed", "matchID", match.ID, "winner", match.Winner, "moves", match.Moves)
}
