package game

import (
	"context"
	"errors"
	"time"

	"github.com/kollektive-hackathon/dice-ledger-backend/internal/pkg/model"
	"github.com/kollektive-hackathon/dice-ledger-backend/internal/pkg/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) FindGame(ctx context.Context, gameId uint64) (*model.Game, error) {
	var game model.Game
	err := r.db.WithContext(ctx).Where("game_id = ?", gameId).First(&game).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrGameNotFound
	}
	if err != nil {
		return nil, err
	}
	return &game, nil
}

func (r *Repository) CreateGameIfAbsent(ctx context.Context, game *model.Game) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "game_id"}}, DoNothing: true}).
		Create(game)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// UpdateGame writes the completion columns. State only moves forward.
func (r *Repository) UpdateGame(ctx context.Context, game *model.Game) error {
	return r.db.WithContext(ctx).
		Model(&model.Game{}).
		Where("game_id = ? AND game_state <= ?", game.GameId, game.GameState).
		Select("game_state", "player_card", "house_card", "payout", "completed_timestamp", "player_won", "result", "total_time").
		Updates(game).Error
}

func (r *Repository) ListGames(ctx context.Context, page utils.PageRequest) ([]model.Game, int64, error) {
	var games []model.Game
	var count int64

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Game{}).Count(&count).Error; err != nil {
			return err
		}
		return tx.Order("request_timestamp DESC, game_id DESC").
			Limit(page.Size).
			Offset(page.Offset).
			Find(&games).Error
	})
	return games, count, err
}

type GameStats struct {
	Total                 int64        `json:"total"`
	Pending               int64        `json:"pending"`
	Completed             int64        `json:"completed"`
	UniqueWallets         int64        `json:"uniqueWallets"`
	AveragePlaysPerWallet float64      `json:"averagePlaysPerWallet"`
	PerDay                []DailyCount `json:"perDay"`
}

type DailyCount struct {
	Day   time.Time `json:"day"`
	Count int64     `json:"count"`
}

type stateCount struct {
	GameState model.GameState
	Count     int64
}

func (r *Repository) Stats(ctx context.Context, since time.Time) (*GameStats, error) {
	stats := &GameStats{PerDay: []DailyCount{}}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var states []stateCount
		if err := tx.Model(&model.Game{}).
			Select("game_state, COUNT(*) AS count").
			Group("game_state").
			Scan(&states).Error; err != nil {
			return err
		}
		for _, s := range states {
			stats.Total += s.Count
			switch s.GameState {
			case model.GamePending:
				stats.Pending = s.Count
			case model.GameCompleted:
				stats.Completed = s.Count
			}
		}

		if err := tx.Model(&model.Game{}).
			Select("COUNT(DISTINCT LOWER(player_address))").
			Scan(&stats.UniqueWallets).Error; err != nil {
			return err
		}

		return tx.Model(&model.Game{}).
			Select("DATE(request_timestamp) AS day, COUNT(*) AS count").
			Where("request_timestamp >= ?", since).
			Group("DATE(request_timestamp)").
			Order("day").
			Scan(&stats.PerDay).Error
	})
	if err != nil {
		return nil, err
	}

	if stats.UniqueWallets > 0 {
		stats.AveragePlaysPerWallet = float64(stats.Total) / float64(stats.UniqueWallets)
	}
	return stats, nil
}
