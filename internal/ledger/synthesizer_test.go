package ledger

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/kollektive-hackathon/dice-ledger-backend/internal/indexer"
	"github.com/kollektive-hackathon/dice-ledger-backend/internal/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	contract = "0x5FbDB2315678afecb367f032d93F642f64180aa3"
	player   = "0xAAaAaAaaAaAaAaaAaAAAAAAAAaaaAaAaAaaAaaAa"
)

func newSynthesizer(t *testing.T) *Synthesizer {
	t.Helper()
	s, err := NewSynthesizer(contract, "1000000000")
	require.NoError(t, err)
	return s
}

func requestEvent() indexer.RequestEvent {
	raw := json.RawMessage(`{"id":5,"player":"` + player + `","betAmount":"100","requestId":9,"requestTimestamp":1000,"gasUsed":"21000"}`)
	event, err := indexer.DecodeRequest(raw)
	if err != nil {
		panic(err)
	}
	return event
}

func TestSynthesizeRequest(t *testing.T) {
	tx, err := newSynthesizer(t).SynthesizeRequest(requestEvent())
	require.NoError(t, err)

	assert.Equal(t, "request_5", tx.TransactionHash)
	assert.Equal(t, model.MethodRollDice, tx.Method)
	assert.Equal(t, player, tx.FromAddress)
	assert.Equal(t, contract, tx.ToAddress)
	assert.Equal(t, "100", tx.Value)
	assert.Equal(t, "21000000000000", tx.Fee)
	assert.Equal(t, "21000", tx.GasUsed)
	assert.Equal(t, "1000000000", tx.GasPrice)
	assert.Equal(t, model.TransactionSuccess, tx.Status)
	assert.Equal(t, time.Unix(1000, 0).UTC(), tx.Timestamp)
	assert.Equal(t, "0", tx.BlockNumber)
	assert.Equal(t, "0", tx.Confirmations)
	assert.Empty(t, tx.RawInput)
	assert.JSONEq(t, string(requestEvent().Raw), string(tx.DecodedInput))
	require.NotNil(t, tx.GameId)
	assert.Equal(t, uint64(5), *tx.GameId)
	assert.Nil(t, tx.CompletionId)
	assert.Equal(t, model.EventRequest, *tx.EventType)
	assert.Equal(t, uint64(5), *tx.EventId)
	assert.Zero(t, tx.SequentialId)
}

func TestSynthesizeCompletion(t *testing.T) {
	event := indexer.CompletionEvent{
		Id:                 7,
		GameId:             7,
		Winner:             player,
		CompletedTimestamp: time.Unix(1050, 0).UTC(),
		GasUsed:            "3",
	}

	tx, err := newSynthesizer(t).SynthesizeCompletion(event)
	require.NoError(t, err)

	assert.Equal(t, "completion_7", tx.TransactionHash)
	assert.Equal(t, model.MethodVrfCallback, tx.Method)
	assert.Equal(t, contract, tx.FromAddress)
	assert.Equal(t, contract, tx.ToAddress)
	assert.Equal(t, "0", tx.Value)
	assert.Equal(t, "3000000000", tx.Fee)
	assert.Equal(t, time.Unix(1050, 0).UTC(), tx.Timestamp)
	require.NotNil(t, tx.CompletionId)
	assert.Equal(t, uint64(7), *tx.CompletionId)
	assert.Nil(t, tx.GameId)
}

func TestSynthesizeIsDeterministic(t *testing.T) {
	s := newSynthesizer(t)
	first, err := s.SynthesizeRequest(requestEvent())
	require.NoError(t, err)
	second, err := s.SynthesizeRequest(requestEvent())
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestSynthesizeRejectsMissingContract(t *testing.T) {
	s, err := NewSynthesizer("", "1000000000")
	require.NoError(t, err)

	_, err = s.SynthesizeRequest(requestEvent())
	var validation *model.ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "to_address", validation.Field)
}

func TestNewSynthesizerRejectsBadGasPrice(t *testing.T) {
	_, err := NewSynthesizer(contract, "gwei")
	assert.Error(t, err)
}
