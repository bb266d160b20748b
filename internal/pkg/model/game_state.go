package model

import (
	"encoding/json"
	"fmt"
)

type GameState uint8

const (
	GameNotStarted GameState = 0
	GamePending    GameState = 1
	GameCompleted  GameState = 2
)

var gameStateNames = map[GameState]string{
	GameNotStarted: "not_started",
	GamePending:    "pending",
	GameCompleted:  "completed",
}

func ParseGameState(value uint8) (GameState, error) {
	state := GameState(value)
	if !state.Valid() {
		return GameNotStarted, fmt.Errorf("unknown game state %d", value)
	}
	return state, nil
}

func (s GameState) Valid() bool {
	_, ok := gameStateNames[s]
	return ok
}

func (s GameState) String() string {
	if name, ok := gameStateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("GameState(%d)", uint8(s))
}

func (s GameState) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *GameState) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	for state, stateName := range gameStateNames {
		if stateName == name {
			*s = state
			return nil
		}
	}
	return fmt.Errorf("unknown game state %q", name)
}
