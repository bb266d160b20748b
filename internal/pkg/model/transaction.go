package model

import (
	"time"

	"gorm.io/datatypes"
)

type Method string

const (
	MethodRollDice    Method = "rollDice"
	MethodVrfCallback Method = "vrfCallback"
)

type TransactionStatus string

const (
	TransactionSuccess TransactionStatus = "success"
	TransactionFailed  TransactionStatus = "failed"
)

// EventType names the indexer collection a ledger row was synthesized from.
type EventType string

const (
	EventRequest    EventType = "request"
	EventCompletion EventType = "completion"
)

func (e EventType) Method() Method {
	switch e {
	case EventRequest:
		return MethodRollDice
	case EventCompletion:
		return MethodVrfCallback
	}
	return ""
}

type Transaction struct {
	Id              uint64            `gorm:"primaryKey" json:"id"`
	TransactionHash string            `gorm:"size:80;not null;uniqueIndex:uk_transactions_hash" json:"transactionHash"`
	SequentialId    uint64            `gorm:"not null;uniqueIndex:uk_transactions_sequential_id" json:"sequentialId"`
	Method          Method            `gorm:"size:32;not null;index" json:"method"`
	FromAddress     string            `gorm:"size:42;not null" json:"fromAddress"`
	ToAddress       string            `gorm:"size:42;not null" json:"toAddress"`
	Value           string            `gorm:"type:numeric(78,0);not null" json:"value"`
	Fee             string            `gorm:"type:numeric(78,0);not null" json:"fee"`
	GasUsed         string            `gorm:"type:numeric(78,0);not null" json:"gasUsed"`
	GasPrice        string            `gorm:"type:numeric(78,0);not null" json:"gasPrice"`
	Status          TransactionStatus `gorm:"size:16;not null" json:"status"`
	Timestamp       time.Time         `gorm:"not null;index" json:"timestamp"`
	BlockNumber     string            `json:"blockNumber"`
	Confirmations   string            `json:"confirmations"`
	RawInput        string            `json:"rawInput"`
	DecodedInput    datatypes.JSON    `gorm:"type:jsonb" json:"decodedInput,omitempty"`

	// EventType and EventId identify the upstream indexer event. Legacy rows leave them empty.
	EventType    *EventType `gorm:"size:16;uniqueIndex:uk_transactions_event" json:"eventType,omitempty"`
	EventId      *uint64    `gorm:"uniqueIndex:uk_transactions_event" json:"eventId,omitempty"`
	GameId       *uint64    `gorm:"index" json:"gameId,omitempty"`
	CompletionId *uint64    `gorm:"index" json:"completionId,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

func (Transaction) TableName() string {
	return "transactions"
}

// TagId is the ordering key used when sequencing drafts.
func (t *Transaction) TagId() uint64 {
	if t.GameId != nil {
		return *t.GameId
	}
	if t.CompletionId != nil {
		return *t.CompletionId
	}
	return 0
}

func (t *Transaction) Validate() error {
	switch {
	case t.TransactionHash == "":
		return &ValidationError{Entity: "transaction", Field: "transaction_hash"}
	case t.Method == "":
		return &ValidationError{Entity: "transaction", Field: "method"}
	case t.FromAddress == "":
		return &ValidationError{Entity: "transaction", Field: "from_address"}
	case t.ToAddress == "":
		return &ValidationError{Entity: "transaction", Field: "to_address"}
	case t.Timestamp.IsZero():
		return &ValidationError{Entity: "transaction", Field: "timestamp"}
	}
	return nil
}
