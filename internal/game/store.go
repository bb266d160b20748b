package game

import (
	"context"
	"errors"

	"github.com/kollektive-hackathon/dice-ledger-backend/internal/pkg/model"
)

var ErrGameNotFound = errors.New("game not found")

type Store interface {
	// FindGame returns ErrGameNotFound when no game has the id.
	FindGame(ctx context.Context, gameId uint64) (*model.Game, error)
	// CreateGameIfAbsent inserts the game unless one with the same game_id exists.
	CreateGameIfAbsent(ctx context.Context, game *model.Game) (bool, error)
	UpdateGame(ctx context.Context, game *model.Game) error
}
