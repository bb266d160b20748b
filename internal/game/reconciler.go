package game

import (
	"errors"
	"math/big"
	"strconv"
	"time"

	"github.com/kollektive-hackathon/dice-ledger-backend/internal/indexer"
	"github.com/kollektive-hackathon/dice-ledger-backend/internal/pkg/blockchain"
	"github.com/kollektive-hackathon/dice-ledger-backend/internal/pkg/model"
)

var ErrNoGame = errors.New("completion applied without a game")

// ApplyRequest builds a pending game from a request event.
func ApplyRequest(event indexer.RequestEvent) (*model.Game, error) {
	game := &model.Game{
		GameId:           event.Id,
		GameState:        model.GamePending,
		PlayerAddress:    event.Player,
		BetAmount:        event.BetAmount,
		RequestId:        event.RequestId,
		RequestTimestamp: event.RequestTimestamp,
		Result:           model.ResultError,
	}
	if err := game.Validate(); err != nil {
		return nil, err
	}
	return game, nil
}

// ApplyCompletion moves the game to completed and derives its outcome from the
// winner address. Re-applying the same completion leaves the game unchanged.
func ApplyCompletion(game *model.Game, event indexer.CompletionEvent) error {
	if game == nil {
		return ErrNoGame
	}

	completed := event.CompletedTimestamp
	game.GameState = model.GameCompleted
	game.PlayerCard = event.PlayerCard
	game.HouseCard = event.HouseCard
	game.Payout = event.Payout
	game.CompletedTimestamp = &completed
	game.Result, game.PlayerWon = ResultFromWinner(event.Winner, game.PlayerAddress)

	CalculateTotalTime(game)
	return nil
}

// ResultFromWinner reads the outcome off the VRF winner address. The zero address is a tie.
func ResultFromWinner(winner, player string) (model.GameResult, bool) {
	switch {
	case blockchain.IsZeroAddress(winner):
		return model.ResultTie, false
	case blockchain.SameAddress(winner, player):
		return model.ResultPlayerWon, true
	default:
		return model.ResultHouseWon, false
	}
}

// CalculateResultFromPlayerWon derives the result from card values and the player_won
// flag. It only touches completed games with both cards present.
func CalculateResultFromPlayerWon(game *model.Game) {
	if !game.IsCompleted() {
		return
	}
	if result, ok := ResultFromCards(game.PlayerCard, game.HouseCard, game.PlayerWon); ok {
		game.Result = result
	}
}

func ResultFromCards(playerCard, houseCard string, playerWon bool) (model.GameResult, bool) {
	if playerCard == "" || houseCard == "" {
		return model.ResultError, false
	}
	player, err := strconv.ParseInt(playerCard, 10, 64)
	if err != nil {
		return model.ResultError, false
	}
	house, err := strconv.ParseInt(houseCard, 10, 64)
	if err != nil {
		return model.ResultError, false
	}

	switch {
	case player == house:
		return model.ResultTie, true
	case playerWon:
		return model.ResultPlayerWon, true
	default:
		return model.ResultHouseWon, true
	}
}

// CalculateTotalTime sets total_time in whole seconds once both timestamps exist.
func CalculateTotalTime(game *model.Game) {
	if game.RequestTimestamp.IsZero() || game.CompletedTimestamp == nil {
		return
	}
	seconds := int64(game.CompletedTimestamp.Sub(game.RequestTimestamp) / time.Second)
	game.TotalTime = &seconds
}

// ContractGame mirrors the game struct returned by the dice contract's games(uint256) getter.
type ContractGame struct {
	State              uint8
	Player             string
	BetAmount          *big.Int
	RequestTimestamp   int64
	PlayerCard         uint8
	HouseCard          uint8
	CompletedTimestamp int64
	PlayerWon          bool
}

// FromContractData hydrates a game read directly from the contract. The result comes
// from the card values since the struct carries no winner address.
func FromContractData(gameId uint64, data ContractGame) (*model.Game, error) {
	state, err := model.ParseGameState(data.State)
	if err != nil {
		return nil, err
	}

	betAmount := "0"
	if data.BetAmount != nil {
		betAmount = data.BetAmount.String()
	}

	game := &model.Game{
		GameId:           gameId,
		GameState:        state,
		PlayerAddress:    data.Player,
		BetAmount:        betAmount,
		RequestTimestamp: time.Unix(data.RequestTimestamp, 0).UTC(),
		PlayerCard:       strconv.Itoa(int(data.PlayerCard)),
		HouseCard:        strconv.Itoa(int(data.HouseCard)),
		PlayerWon:        data.PlayerWon,
	}
	if data.CompletedTimestamp > 0 {
		completed := time.Unix(data.CompletedTimestamp, 0).UTC()
		game.CompletedTimestamp = &completed
	}

	CalculateResultFromPlayerWon(game)
	CalculateTotalTime(game)

	if err := game.Validate(); err != nil {
		return nil, err
	}
	return game, nil
}
