package model

import (
	"encoding/json"
	"fmt"
)

type GameResult uint8

const (
	ResultError     GameResult = 0
	ResultPlayerWon GameResult = 1
	ResultHouseWon  GameResult = 2
	ResultTie       GameResult = 3
)

var gameResultNames = map[GameResult]string{
	ResultError:     "error",
	ResultPlayerWon: "player_won",
	ResultHouseWon:  "house_won",
	ResultTie:       "tie",
}

func (r GameResult) Valid() bool {
	_, ok := gameResultNames[r]
	return ok
}

func (r GameResult) String() string {
	if name, ok := gameResultNames[r]; ok {
		return name
	}
	return fmt.Sprintf("GameResult(%d)", uint8(r))
}

func (r GameResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

func (r *GameResult) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	for result, resultName := range gameResultNames {
		if resultName == name {
			*r = result
			return nil
		}
	}
	return fmt.Errorf("unknown game result %q", name)
}
