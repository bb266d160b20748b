package indexer

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/kollektive-hackathon/dice-ledger-backend/internal/pkg/blockchain"
	"github.com/shopspring/decimal"
)

type RequestEvent struct {
	Id               uint64
	Player           string
	BetAmount        string
	RequestId        uint64
	RequestTimestamp time.Time
	GasUsed          string
	Raw              json.RawMessage
}

type CompletionEvent struct {
	Id                 uint64
	GameId             uint64
	PlayerCard         string
	HouseCard          string
	Payout             string
	CompletedTimestamp time.Time
	Winner             string
	GasUsed            string
	Raw                json.RawMessage
}

type TieEvent struct {
	Id     uint64
	GameId uint64
	Raw    json.RawMessage
}

type requestPayload struct {
	Id               FlexibleString `json:"id"`
	Player           FlexibleString `json:"player"`
	BetAmount        FlexibleString `json:"betAmount"`
	RequestId        FlexibleString `json:"requestId"`
	RequestTimestamp FlexibleString `json:"requestTimestamp"`
	GasUsed          FlexibleString `json:"gasUsed"`
}

type completionPayload struct {
	Id                 FlexibleString `json:"id"`
	GameId             FlexibleString `json:"gameId"`
	PlayerCard         FlexibleString `json:"playerCard"`
	HouseCard          FlexibleString `json:"houseCard"`
	Payout             FlexibleString `json:"payout"`
	CompletedTimestamp FlexibleString `json:"completedTimestamp"`
	Winner             FlexibleString `json:"winner"`
	GasUsed            FlexibleString `json:"gasUsed"`
}

type tiePayload struct {
	Id     FlexibleString `json:"id"`
	GameId FlexibleString `json:"gameId"`
}

func DecodeRequest(raw json.RawMessage) (RequestEvent, error) {
	var p requestPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return RequestEvent{}, &MalformedDataError{Collection: CollectionRequests, Err: err}
	}

	d := decoder{collection: CollectionRequests}
	event := RequestEvent{
		Id:               d.eventId("id", p.Id),
		Player:           d.address("player", p.Player),
		BetAmount:        d.amount("betAmount", p.BetAmount, true),
		RequestId:        d.optionalUint("requestId", p.RequestId),
		RequestTimestamp: d.timestamp("requestTimestamp", p.RequestTimestamp),
		GasUsed:          d.amount("gasUsed", p.GasUsed, false),
		Raw:              raw,
	}
	return event, d.err
}

func DecodeCompletion(raw json.RawMessage) (CompletionEvent, error) {
	var p completionPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return CompletionEvent{}, &MalformedDataError{Collection: CollectionCompletions, Err: err}
	}

	d := decoder{collection: CollectionCompletions}
	event := CompletionEvent{
		Id:                 d.eventId("id", p.Id),
		PlayerCard:         string(p.PlayerCard),
		HouseCard:          string(p.HouseCard),
		Payout:             d.amount("payout", p.Payout, false),
		CompletedTimestamp: d.timestamp("completedTimestamp", p.CompletedTimestamp),
		Winner:             d.address("winner", p.Winner),
		GasUsed:            d.amount("gasUsed", p.GasUsed, false),
		Raw:                raw,
	}
	event.GameId = event.Id
	if !p.GameId.Empty() {
		event.GameId = d.eventId("gameId", p.GameId)
	}
	return event, d.err
}

func DecodeTie(raw json.RawMessage) (TieEvent, error) {
	var p tiePayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return TieEvent{}, &MalformedDataError{Collection: CollectionTies, Err: err}
	}

	d := decoder{collection: CollectionTies}
	event := TieEvent{Id: d.eventId("id", p.Id), Raw: raw}
	event.GameId = event.Id
	if !p.GameId.Empty() {
		event.GameId = d.eventId("gameId", p.GameId)
	}
	return event, d.err
}

// decoder keeps the first field error so a record is validated in one pass.
type decoder struct {
	collection Collection
	err        error
}

func (d *decoder) fail(field string, err error) {
	if d.err == nil {
		d.err = &MalformedDataError{Collection: d.collection, Field: field, Err: err}
	}
}

// eventId requires a positive id: the indexer cursor is an exclusive lower bound starting at 0.
func (d *decoder) eventId(field string, value FlexibleString) uint64 {
	if value.Empty() {
		d.fail(field, nil)
		return 0
	}
	id, err := value.ToUint64()
	if err != nil {
		d.fail(field, err)
		return 0
	}
	if id == 0 {
		d.fail(field, errors.New("must be positive"))
	}
	return id
}

func (d *decoder) optionalUint(field string, value FlexibleString) uint64 {
	if value.Empty() {
		return 0
	}
	n, err := value.ToUint64()
	if err != nil {
		d.fail(field, err)
	}
	return n
}

func (d *decoder) address(field string, value FlexibleString) string {
	if value.Empty() {
		d.fail(field, nil)
		return ""
	}
	if !blockchain.IsAddress(string(value)) {
		d.fail(field, errors.New("not a hex address"))
	}
	return string(value)
}

// amount validates a base-unit integer quantity. Optional amounts default to "0".
func (d *decoder) amount(field string, value FlexibleString, required bool) string {
	if value.Empty() {
		if required {
			d.fail(field, nil)
		}
		return "0"
	}
	n, err := decimal.NewFromString(string(value))
	if err != nil {
		d.fail(field, err)
		return "0"
	}
	if !n.IsInteger() || n.IsNegative() {
		d.fail(field, errors.New("must be a non-negative integer"))
		return "0"
	}
	return n.String()
}

func (d *decoder) timestamp(field string, value FlexibleString) time.Time {
	if value.Empty() {
		d.fail(field, nil)
		return time.Time{}
	}
	seconds, err := value.ToInt64()
	if err != nil {
		d.fail(field, err)
		return time.Time{}
	}
	return time.Unix(seconds, 0).UTC()
}
