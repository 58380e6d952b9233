package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Sc1pex/MultiplayerTicTacToe/internal/entity"
	"github.com/Sc1pex/MultiplayerTicTacToe/internal/repository"
)

type Handlers interface {
	Ping(w http.ResponseWriter, _ *http.Request)
	GetMatch(w http.ResponseWriter, r *http.Request)
}

type matchReader interface {
	GetByID(ctx context.Context, id string) (*entity.Match, error)
}

type handlers struct {
	logger  *slog.Logger
	matches matchReader
}

func NewHandlers(logger *slog.Logger, matches matchReader) Handlers {
	return &handlers{
		logger:  logger,
		matches: matches,
	}
}

func (that *handlers) Ping(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("pong")); err != nil {
		that.logger.Debug("failed to write pong", "error", err)
	}
}

// GetMatch - returns the live snapshot of a running match.
func (that *handlers) GetMatch(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "GetMatch")

	if that.matches == nil {
		http.Error(w, "Match store is not configured", http.StatusServiceUnavailable)
		return
	}

	id := chi.URLParam(r, "id")

	match, err := that.matches.GetByID(r.Context(), id)
	if errors.Is(err, repository.ErrMatchNotFound) {
		http.Error(w, "Match not found", http.StatusNotFound)
		return
	}

	if err != nil {
		log.Error("failed to get match", "matchID", id, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err = json.NewEncoder(w).Encode(match); err != nil {
		log.Error("failed to encode match", "matchID", id, "error", err)
	}
}
