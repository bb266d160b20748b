package ledger

import (
	"fmt"

	"github.com/kollektive-hackathon/dice-ledger-backend/internal/indexer"
	"github.com/kollektive-hackathon/dice-ledger-backend/internal/pkg/model"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

const placeholderMetadata = "0"

// Synthesizer shapes indexer events into ledger rows without a sequential id.
type Synthesizer struct {
	contractAddress string
	gasPrice        decimal.Decimal
}

func NewSynthesizer(contractAddress, fixedGasPrice string) (*Synthesizer, error) {
	gasPrice, err := decimal.NewFromString(fixedGasPrice)
	if err != nil {
		return nil, fmt.Errorf("parsing fixed gas price %q: %w", fixedGasPrice, err)
	}
	return &Synthesizer{contractAddress: contractAddress, gasPrice: gasPrice}, nil
}

// SyntheticHash is the deterministic stand-in for an on-chain hash.
func SyntheticHash(eventType model.EventType, eventId uint64) string {
	return fmt.Sprintf("%s_%d", eventType, eventId)
}

func (s *Synthesizer) SynthesizeRequest(event indexer.RequestEvent) (model.Transaction, error) {
	gameId := event.Id
	tx, err := s.draft(model.EventRequest, event.Id, event.GasUsed, event.Raw)
	if err != nil {
		return model.Transaction{}, err
	}
	tx.FromAddress = event.Player
	tx.ToAddress = s.contractAddress
	tx.Value = event.BetAmount
	tx.Timestamp = event.RequestTimestamp
	tx.GameId = &gameId
	return tx, tx.Validate()
}

func (s *Synthesizer) SynthesizeCompletion(event indexer.CompletionEvent) (model.Transaction, error) {
	completionId := event.Id
	tx, err := s.draft(model.EventCompletion, event.Id, event.GasUsed, event.Raw)
	if err != nil {
		return model.Transaction{}, err
	}
	tx.FromAddress = s.contractAddress
	tx.ToAddress = s.contractAddress
	tx.Value = "0"
	tx.Timestamp = event.CompletedTimestamp
	tx.CompletionId = &completionId
	return tx, tx.Validate()
}

func (s *Synthesizer) draft(eventType model.EventType, eventId uint64, gasUsed string, raw []byte) (model.Transaction, error) {
	if gasUsed == "" {
		gasUsed = "0"
	}
	gas, err := decimal.NewFromString(gasUsed)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing gas used %q: %w", gasUsed, err)
	}

	eventTypeValue := eventType
	eventIdValue := eventId
	return model.Transaction{
		TransactionHash: SyntheticHash(eventType, eventId),
		Method:          eventType.Method(),
		Fee:             gas.Mul(s.gasPrice).String(),
		GasUsed:         gas.String(),
		GasPrice:        s.gasPrice.String(),
		Status:          model.TransactionSuccess,
		BlockNumber:     placeholderMetadata,
		Confirmations:   placeholderMetadata,
		RawInput:        "",
		DecodedInput:    datatypes.JSON(raw),
		EventType:       &eventTypeValue,
		EventId:         &eventIdValue,
	}, nil
}
