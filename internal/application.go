package application

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/Sc1pex/MultiplayerTicTacToe/internal/config"
	"github.com/Sc1pex/MultiplayerTicTacToe/internal/match"
	"github.com/Sc1pex/MultiplayerTicTacToe/internal/repository"
	"github.com/Sc1pex/MultiplayerTicTacToe/internal/repository/storage"
	"github.com/Sc1pex/MultiplayerTicTacToe/transport/rest"
	"github.com/Sc1pex/MultiplayerTicTacToe/transport/tcp"
)

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)

	go func() {
		select {
		case sig := <-sigs:
			log.Info("Received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	// matches stays a nil interface when Redis is disabled
	var matches repository.MatchRepository

	if conf.Redis.Enabled {
		redisStorage, err := storage.NewRedisStorage(ctx, conf.Redis.GetRedisAddr())
		if err != nil {
			return fmt.Errorf("could not connect to redis storage: %w", err)
		}

		defer func() {
			if err := redisStorage.Close(); err != nil {
				log.Error("could not close redis storage", "error", err)
			}
		}()

		matches = repository.NewMatchRepository(redisStorage.Connection, conf.Redis.TTL)
	}

	coordinator := match.NewCoordinator(logger.With("component", "coordinator"), conf.Match, matches)

	var servers sync.WaitGroup
	errCh := make(chan error, 2)

	// run HTTP server
	servers.Add(1)
	go func() {
		defer servers.Done()

		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		httpServer := rest.New(logger.With("component", "rest"), matches)
		if err := httpServer.Start(ctx, conf.HTTPPort); err != nil {
			errCh <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// run game server
	servers.Add(1)
	go func() {
		defer servers.Done()

		log.Info("Starting game server", "port", conf.SocketPort)
		tcpServer := tcp.New(logger.With("component", "tcp"), coordinator)
		if err := tcpServer.Start(ctx, conf.SocketPort); err != nil {
			errCh <- fmt.Errorf("game server error: %w", err)
		}
	}()

	var err error

	select {
	case err = <-errCh:
		log.Error("server failed, shutting down", "error", err)
		cancel()
	case <-ctx.Done():
		log.Info("Application context canceled, shutting down")
	}

	// running matches finish before storage is closed
	servers.Wait()

	return err
}
