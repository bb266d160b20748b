package ingestion

import (
	"context"
	"errors"
	"sync"

	"github.com/kollektive-hackathon/dice-ledger-backend/internal/game"
	"github.com/kollektive-hackathon/dice-ledger-backend/internal/ledger"
	"github.com/kollektive-hackathon/dice-ledger-backend/internal/pkg/model"
)

// memoryStore enforces the same unique constraints as the transactions and games tables.
type memoryStore struct {
	mu           sync.Mutex
	transactions []model.Transaction
	games        map[uint64]model.Game

	// beforeInsert runs once per InsertTransactions call, before constraints are checked.
	beforeInsert func(s *memoryStore)
	inserts      int
	failMax      error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{games: map[uint64]model.Game{}}
}

func (m *memoryStore) MaxSequentialId(context.Context) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failMax != nil {
		return 0, m.failMax
	}
	var highest uint64
	for _, tx := range m.transactions {
		highest = max(highest, tx.SequentialId)
	}
	return highest, nil
}

func (m *memoryStore) MaxEventId(_ context.Context, eventType model.EventType) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var highest uint64
	for _, tx := range m.transactions {
		if tx.EventType != nil && *tx.EventType == eventType && tx.EventId != nil {
			highest = max(highest, *tx.EventId)
		}
	}
	return highest, nil
}

func (m *memoryStore) ExistingHashes(_ context.Context, hashes []string) (map[string]struct{}, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing := map[string]struct{}{}
	for _, hash := range hashes {
		for _, tx := range m.transactions {
			if tx.TransactionHash == hash {
				existing[hash] = struct{}{}
			}
		}
	}
	return existing, nil
}

func (m *memoryStore) InsertTransactions(_ context.Context, rows []model.Transaction) error {
	m.mu.Lock()
	m.inserts++
	hook := m.beforeInsert
	m.beforeInsert = nil
	m.mu.Unlock()
	if hook != nil {
		hook(m)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, row := range rows {
		for _, tx := range m.transactions {
			switch {
			case tx.TransactionHash == row.TransactionHash:
				return &ledger.DuplicateKeyError{Constraint: ledger.ConstraintHash, Err: errors.New("duplicate hash")}
			case tx.SequentialId == row.SequentialId:
				return &ledger.DuplicateKeyError{Constraint: ledger.ConstraintSequentialId, Err: errors.New("duplicate sequential id")}
			}
		}
	}
	m.transactions = append(m.transactions, rows...)
	return nil
}

// append bypasses the hook, standing in for a concurrent writer.
func (m *memoryStore) append(tx model.Transaction) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transactions = append(m.transactions, tx)
}

func (m *memoryStore) FindGame(_ context.Context, gameId uint64) (*model.Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.games[gameId]
	if !ok {
		return nil, game.ErrGameNotFound
	}
	return &g, nil
}

func (m *memoryStore) CreateGameIfAbsent(_ context.Context, g *model.Game) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.games[g.GameId]; ok {
		return false, nil
	}
	m.games[g.GameId] = *g
	return true, nil
}

func (m *memoryStore) UpdateGame(_ context.Context, g *model.Game) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.games[g.GameId] = *g
	return nil
}

func (m *memoryStore) snapshot() []model.Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.Transaction(nil), m.transactions...)
}
