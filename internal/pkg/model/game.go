package model

import (
	"time"
)

type Game struct {
	Id                 uint64     `gorm:"primaryKey" json:"id"`
	GameId             uint64     `gorm:"uniqueIndex;not null" json:"gameId"`
	GameState          GameState  `gorm:"not null;index" json:"gameState"`
	PlayerAddress      string     `gorm:"size:42;not null;index" json:"playerAddress"`
	BetAmount          string     `gorm:"type:numeric(78,0);not null" json:"betAmount"`
	RequestId          uint64     `gorm:"index" json:"requestId"`
	RequestTimestamp   time.Time  `gorm:"not null;index" json:"requestTimestamp"`
	PlayerCard         string     `json:"playerCard,omitempty"`
	HouseCard          string     `json:"houseCard,omitempty"`
	Payout             string     `gorm:"type:numeric(78,0)" json:"payout,omitempty"`
	CompletedTimestamp *time.Time `gorm:"index" json:"completedTimestamp,omitempty"`
	PlayerWon          bool       `gorm:"not null;default:false" json:"playerWon"`
	Result             GameResult `gorm:"not null;default:0" json:"result"`
	// TotalTime is in whole seconds.
	TotalTime *int64 `json:"totalTime,omitempty"`
}

func (Game) TableName() string {
	return "games"
}

func (g *Game) IsCompleted() bool {
	return g.GameState == GameCompleted
}

func (g *Game) Validate() error {
	if g.PlayerAddress == "" {
		return &ValidationError{Entity: "game", Field: "player_address"}
	}
	if g.GameId == 0 {
		return &ValidationError{Entity: "game", Field: "game_id"}
	}
	if !g.GameState.Valid() {
		return &ValidationError{Entity: "game", Field: "game_state"}
	}
	return nil
}
