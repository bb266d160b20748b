package game

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"time"

	"github.com/kollektive-hackathon/dice-ledger-backend/internal/indexer"
	"github.com/kollektive-hackathon/dice-ledger-backend/internal/pkg/metrics"
	"github.com/kollektive-hackathon/dice-ledger-backend/internal/pkg/model"
	"github.com/rs/zerolog/log"
)

type Summary struct {
	Created   int
	Completed int
	Unchanged int
	Skipped   int
}

// Reconciler keeps the games table in step with ingested indexer events. A failing
// record is logged and skipped; it never stops the rest of the batch.
type Reconciler struct {
	store Store
}

func NewReconciler(store Store) *Reconciler {
	return &Reconciler{store: store}
}

func (r *Reconciler) ReconcileRequests(ctx context.Context, events []indexer.RequestEvent) Summary {
	var summary Summary
	for _, event := range events {
		game, err := ApplyRequest(event)
		if err != nil {
			summary.Skipped++
			log.Warn().Err(err).Uint64("game_id", event.Id).Msg("Skipping invalid game request")
			continue
		}

		created, err := r.store.CreateGameIfAbsent(ctx, game)
		if err != nil {
			summary.Skipped++
			log.Error().Err(err).Uint64("game_id", event.Id).Msg("Failed to create game")
			continue
		}
		if created {
			summary.Created++
			metrics.LedgerRowsWritten.WithLabelValues("games").Inc()
		} else {
			summary.Unchanged++
		}
	}
	return summary
}

func (r *Reconciler) ReconcileCompletions(ctx context.Context, events []indexer.CompletionEvent) Summary {
	var summary Summary
	for _, event := range events {
		game, err := r.store.FindGame(ctx, event.GameId)
		if errors.Is(err, ErrGameNotFound) {
			summary.Skipped++
			log.Warn().Uint64("game_id", event.GameId).Uint64("completion_id", event.Id).Msg("Completion for unknown game")
			continue
		}
		if err != nil {
			summary.Skipped++
			log.Error().Err(err).Uint64("game_id", event.GameId).Msg("Failed to load game")
			continue
		}

		before := *game
		if err := ApplyCompletion(game, event); err != nil {
			summary.Skipped++
			log.Warn().Err(err).Uint64("game_id", event.GameId).Msg("Skipping completion")
			continue
		}
		if sameOutcome(&before, game) {
			summary.Unchanged++
			continue
		}

		if err := r.store.UpdateGame(ctx, game); err != nil {
			summary.Skipped++
			log.Error().Err(err).Uint64("game_id", event.GameId).Msg("Failed to update game")
			continue
		}
		summary.Completed++
	}
	return summary
}

// ReadyCompletions returns the completions, in id order, that can be applied now.
// The batch stops at the first completion whose game is missing while its request
// lies above requestsSeen, the highest request id ingested so far. That completion
// and everything after it are left for a later cycle. A missing game whose request
// was already ingested stays in the batch, and ReconcileCompletions skips it.
func (r *Reconciler) ReadyCompletions(ctx context.Context, events []indexer.CompletionEvent, requestsSeen uint64) ([]indexer.CompletionEvent, int) {
	ordered := slices.Clone(events)
	slices.SortStableFunc(ordered, func(a, b indexer.CompletionEvent) int {
		return cmp.Compare(a.Id, b.Id)
	})

	for i, event := range ordered {
		_, err := r.store.FindGame(ctx, event.GameId)
		if err == nil {
			continue
		}
		if errors.Is(err, ErrGameNotFound) && event.GameId <= requestsSeen {
			continue
		}

		held := len(ordered) - i
		log.Info().
			Err(err).
			Uint64("game_id", event.GameId).
			Uint64("completion_id", event.Id).
			Int("held", held).
			Msg("Holding completions until their game is known")
		return ordered[:i], held
	}
	return ordered, 0
}

// AuditTies flags tie events whose game did not end in a tie.
func (r *Reconciler) AuditTies(ctx context.Context, events []indexer.TieEvent) int {
	mismatches := 0
	for _, event := range events {
		game, err := r.store.FindGame(ctx, event.GameId)
		if err != nil || !game.IsCompleted() {
			continue
		}
		if game.Result != model.ResultTie {
			mismatches++
			log.Warn().
				Uint64("game_id", event.GameId).
				Str("result", game.Result.String()).
				Msg("Indexer reported a tie for a game with a different result")
		}
	}
	return mismatches
}

// sameOutcome compares the completion columns. Timestamps are compared by instant
// since rows loaded from the database carry the connection's location.
func sameOutcome(a, b *model.Game) bool {
	return a.GameState == b.GameState &&
		a.PlayerCard == b.PlayerCard &&
		a.HouseCard == b.HouseCard &&
		a.Payout == b.Payout &&
		a.PlayerWon == b.PlayerWon &&
		a.Result == b.Result &&
		sameInstant(a.CompletedTimestamp, b.CompletedTimestamp) &&
		sameSeconds(a.TotalTime, b.TotalTime)
}

func sameInstant(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

func sameSeconds(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
