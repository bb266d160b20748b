package ledger

import (
	"context"
	"fmt"

	"github.com/kollektive-hackathon/dice-ledger-backend/internal/pkg/model"
)

type eventIdReader interface {
	MaxEventId(ctx context.Context, eventType model.EventType) (uint64, error)
}

// CursorTracker derives indexer cursors from the ledger itself.
type CursorTracker struct {
	store eventIdReader
}

func NewCursorTracker(store eventIdReader) *CursorTracker {
	return &CursorTracker{store: store}
}

// NextCursor returns the highest ingested event id for the type, or 0. Rows
// without an event key are not considered.
func (c *CursorTracker) NextCursor(ctx context.Context, eventType model.EventType) (uint64, error) {
	id, err := c.store.MaxEventId(ctx, eventType)
	if err != nil {
		return 0, fmt.Errorf("reading %s cursor: %w", eventType, err)
	}
	return id, nil
}
