package ledger

import (
	"context"

	"github.com/kollektive-hackathon/dice-ledger-backend/internal/pkg/model"
)

// Store is the persistence surface the ingestion pipeline writes the ledger through.
type Store interface {
	MaxSequentialId(ctx context.Context) (uint64, error)
	MaxEventId(ctx context.Context, eventType model.EventType) (uint64, error)
	ExistingHashes(ctx context.Context, hashes []string) (map[string]struct{}, error)
	// InsertTransactions writes every row or none.
	InsertTransactions(ctx context.Context, transactions []model.Transaction) error
}
