package ingestion

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/kollektive-hackathon/dice-ledger-backend/internal/pkg/metrics"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

var ErrCycleInProgress = errors.New("ingestion cycle already in progress")

type cycleRunner interface {
	RunCycle(ctx context.Context) (*CycleResult, error)
}

// Runner lets one ingestion cycle run at a time per process. Triggers that arrive
// while a cycle is running are dropped.
type Runner struct {
	service      cycleRunner
	running      atomic.Bool
	last         atomic.Pointer[CycleResult]
	cron         *cron.Cron
	cycleTimeout time.Duration
}

func NewRunner(service cycleRunner, cycleTimeout time.Duration) *Runner {
	return &Runner{
		service:      service,
		cron:         cron.New(),
		cycleTimeout: cycleTimeout,
	}
}

func (r *Runner) TryRun(ctx context.Context, trigger string) (*CycleResult, error) {
	if !r.running.CompareAndSwap(false, true) {
		metrics.IngestCycleTotal.WithLabelValues("busy").Inc()
		log.Info().Str("trigger", trigger).Msg("Ingestion cycle already running, skipping trigger")
		return nil, ErrCycleInProgress
	}
	defer r.running.Store(false)

	if r.cycleTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cycleTimeout)
		defer cancel()
	}

	log.Debug().Str("trigger", trigger).Msg("Starting ingestion cycle")
	result, err := r.service.RunCycle(ctx)
	if err == nil && result != nil {
		r.last.Store(result)
	}
	return result, err
}

func (r *Runner) Running() bool {
	return r.running.Load()
}

// LastCycle returns the most recent successful cycle, or nil before the first one.
func (r *Runner) LastCycle() *CycleResult {
	return r.last.Load()
}

// Start schedules periodic cycles with a standard cron spec or a descriptor such as "@every 1m".
func (r *Runner) Start(spec string) error {
	_, err := r.cron.AddFunc(spec, func() {
		if _, err := r.TryRun(context.Background(), "cron"); err != nil && !errors.Is(err, ErrCycleInProgress) {
			log.Error().Err(err).Msg("Scheduled ingestion cycle failed")
		}
	})
	if err != nil {
		return err
	}

	r.cron.Start()
	log.Info().Str("schedule", spec).Msg("Ingestion scheduler started")
	return nil
}

func (r *Runner) Stop() {
	ctx := r.cron.Stop()
	<-ctx.Done()
	log.Info().Msg("Ingestion scheduler stopped")
}
