package ingestion

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jpillora/backoff"
	"github.com/kollektive-hackathon/dice-ledger-backend/internal/game"
	"github.com/kollektive-hackathon/dice-ledger-backend/internal/indexer"
	"github.com/kollektive-hackathon/dice-ledger-backend/internal/ledger"
	"github.com/kollektive-hackathon/dice-ledger-backend/internal/pkg/config"
	"github.com/kollektive-hackathon/dice-ledger-backend/internal/pkg/metrics"
	"github.com/kollektive-hackathon/dice-ledger-backend/internal/pkg/model"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

type Fetcher interface {
	Requests(ctx context.Context, lastId uint64, limit int) []indexer.RequestEvent
	Completions(ctx context.Context, lastId uint64, limit int) []indexer.CompletionEvent
	Ties(ctx context.Context, lastId uint64, limit int) []indexer.TieEvent
}

type CycleResult struct {
	CycleId          string       `json:"cycleId"`
	Skipped          bool         `json:"skipped"`
	RequestCursor    uint64       `json:"requestCursor"`
	CompletionCursor uint64       `json:"completionCursor"`
	Requests         int          `json:"requests"`
	Completions      int          `json:"completions"`
	HeldCompletions  int          `json:"heldCompletions"`
	Written          int          `json:"written"`
	Attempts         int          `json:"attempts"`
	GameRequests     game.Summary `json:"gameRequests"`
	GameCompletions  game.Summary `json:"gameCompletions"`
	TieMismatches    int          `json:"tieMismatches"`
}

type Service struct {
	cfg         config.Config
	fetcher     Fetcher
	store       ledger.Store
	cursors     *ledger.CursorTracker
	synthesizer *ledger.Synthesizer
	games       *game.Reconciler
	backoff     func() *backoff.Backoff
}

func NewService(cfg config.Config, fetcher Fetcher, store ledger.Store, games game.Store) (*Service, error) {
	synthesizer, err := ledger.NewSynthesizer(cfg.ContractAddress, cfg.FixedGasPrice)
	if err != nil {
		return nil, err
	}
	return &Service{
		cfg:         cfg,
		fetcher:     fetcher,
		store:       store,
		cursors:     ledger.NewCursorTracker(store),
		synthesizer: synthesizer,
		games:       game.NewReconciler(games),
		backoff: func() *backoff.Backoff {
			return &backoff.Backoff{Min: 100 * time.Millisecond, Max: 5 * time.Second, Factor: 2, Jitter: true}
		},
	}, nil
}

// RunCycle fetches one page per collection, appends the new ledger rows and
// reconciles games. A failing collection yields an empty page, never an error.
func (s *Service) RunCycle(ctx context.Context) (*CycleResult, error) {
	result := &CycleResult{CycleId: uuid.NewString()}
	logger := log.With().Str("cycle_id", result.CycleId).Logger()

	if !s.cfg.ContractConfigured() {
		result.Skipped = true
		metrics.IngestCycleTotal.WithLabelValues("skipped").Inc()
		logger.Warn().Msg("Contract address not configured, skipping ingestion")
		return result, nil
	}

	var err error
	if result.RequestCursor, err = s.cursors.NextCursor(ctx, model.EventRequest); err != nil {
		metrics.IngestCycleTotal.WithLabelValues("failed").Inc()
		return result, err
	}
	if result.CompletionCursor, err = s.cursors.NextCursor(ctx, model.EventCompletion); err != nil {
		metrics.IngestCycleTotal.WithLabelValues("failed").Inc()
		return result, err
	}

	var requests []indexer.RequestEvent
	var completions []indexer.CompletionEvent
	var ties []indexer.TieEvent

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		requests = s.fetcher.Requests(gctx, result.RequestCursor, s.cfg.PageLimit)
		return nil
	})
	g.Go(func() error {
		completions = s.fetcher.Completions(gctx, result.CompletionCursor, s.cfg.PageLimit)
		return nil
	})
	// Tie ids are completion ids: the indexer emits a tie record alongside the
	// completion that produced it, so the completion cursor bounds both.
	g.Go(func() error {
		ties = s.fetcher.Ties(gctx, result.CompletionCursor, s.cfg.PageLimit)
		return nil
	})
	_ = g.Wait()

	result.Requests = len(requests)
	result.Completions = len(completions)

	// Games for this page of requests must exist before completions are admitted,
	// otherwise a completion would be written to the ledger with nothing to complete.
	result.GameRequests = s.games.ReconcileRequests(ctx, requests)
	completions, result.HeldCompletions = s.games.ReadyCompletions(ctx, completions, requestsSeen(result.RequestCursor, requests))

	drafts := s.synthesize(logger, requests, completions)
	written, attempts, persistErr := s.persist(ctx, logger, drafts)
	result.Written = written
	result.Attempts = attempts

	result.GameCompletions = s.games.ReconcileCompletions(ctx, completions)
	result.TieMismatches = s.games.AuditTies(ctx, ties)

	if persistErr != nil {
		metrics.IngestCycleTotal.WithLabelValues("failed").Inc()
		logger.Error().Err(persistErr).Int("attempts", attempts).Msg("Failed to persist transactions")
		return result, persistErr
	}

	metrics.IngestCycleTotal.WithLabelValues("ok").Inc()
	logger.Info().
		Int("requests", result.Requests).
		Int("completions", result.Completions).
		Int("held_completions", result.HeldCompletions).
		Int("written", result.Written).
		Int("games_created", result.GameRequests.Created).
		Int("games_completed", result.GameCompletions.Completed).
		Msg("Ingestion cycle finished")
	return result, nil
}

func requestsSeen(cursor uint64, requests []indexer.RequestEvent) uint64 {
	seen := cursor
	for _, event := range requests {
		seen = max(seen, event.Id)
	}
	return seen
}

func (s *Service) synthesize(logger zerolog.Logger, requests []indexer.RequestEvent, completions []indexer.CompletionEvent) []model.Transaction {
	drafts := make([]model.Transaction, 0, len(requests)+len(completions))
	for _, event := range requests {
		tx, err := s.synthesizer.SynthesizeRequest(event)
		if err != nil {
			logger.Warn().Err(err).Uint64("event_id", event.Id).Msg("Skipping request transaction")
			continue
		}
		drafts = append(drafts, tx)
	}
	for _, event := range completions {
		tx, err := s.synthesizer.SynthesizeCompletion(event)
		if err != nil {
			logger.Warn().Err(err).Uint64("event_id", event.Id).Msg("Skipping completion transaction")
			continue
		}
		drafts = append(drafts, tx)
	}
	return drafts
}

// persist sequences and writes the drafts. Rows that already exist are dropped
// before each attempt; a sequential_id race is retried with a fresh starting id.
func (s *Service) persist(ctx context.Context, logger zerolog.Logger, drafts []model.Transaction) (int, int, error) {
	b := s.backoff()
	pending := drafts

	for attempt := 1; ; attempt++ {
		var err error
		pending, err = s.dropExisting(ctx, pending)
		if err != nil {
			return 0, attempt, err
		}
		if len(pending) == 0 {
			return 0, attempt, nil
		}

		maxId, err := s.store.MaxSequentialId(ctx)
		if err != nil {
			return 0, attempt, fmt.Errorf("reading max sequential id: %w", err)
		}

		rows := ledger.Assign(pending, maxId+1)
		err = s.store.InsertTransactions(ctx, rows)
		if err == nil {
			metrics.LedgerRowsWritten.WithLabelValues("transactions").Add(float64(len(rows)))
			return len(rows), attempt, nil
		}

		var duplicate *ledger.DuplicateKeyError
		if !errors.As(err, &duplicate) {
			return 0, attempt, err
		}
		if attempt >= s.cfg.IngestMaxAttempts {
			return 0, attempt, fmt.Errorf("giving up after %d attempts: %w", attempt, err)
		}

		wait := b.Duration()
		logger.Warn().
			Err(err).
			Str("constraint", duplicate.Constraint).
			Int("attempt", attempt).
			Dur("backoff", wait).
			Msg("Ledger write collided, retrying")

		select {
		case <-ctx.Done():
			return 0, attempt, ctx.Err()
		case <-time.After(wait):
		}
	}
}

func (s *Service) dropExisting(ctx context.Context, drafts []model.Transaction) ([]model.Transaction, error) {
	if len(drafts) == 0 {
		return drafts, nil
	}

	hashes := make([]string, len(drafts))
	for i, tx := range drafts {
		hashes[i] = tx.TransactionHash
	}
	existing, err := s.store.ExistingHashes(ctx, hashes)
	if err != nil {
		return nil, fmt.Errorf("checking existing hashes: %w", err)
	}

	fresh := drafts[:0:0]
	for _, tx := range drafts {
		if _, ok := existing[tx.TransactionHash]; !ok {
			fresh = append(fresh, tx)
		}
	}
	return fresh, nil
}
