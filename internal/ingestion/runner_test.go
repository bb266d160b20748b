package ingestion

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	gpubsub "cloud.google.com/go/pubsub"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type blockingService struct {
	started  chan struct{}
	release  chan struct{}
	runs     atomic.Int32
	err      error
	deadline bool
}

func newBlockingService() *blockingService {
	return &blockingService{started: make(chan struct{}, 10), release: make(chan struct{})}
}

func (b *blockingService) RunCycle(ctx context.Context) (*CycleResult, error) {
	b.runs.Add(1)
	_, b.deadline = ctx.Deadline()
	b.started <- struct{}{}
	<-b.release
	return &CycleResult{CycleId: "cycle"}, b.err
}

func TestTryRunIsSingleFlight(t *testing.T) {
	service := newBlockingService()
	runner := NewRunner(service, time.Minute)

	done := make(chan error)
	go func() {
		_, err := runner.TryRun(context.Background(), "test")
		done <- err
	}()
	<-service.started
	assert.True(t, runner.Running())

	_, err := runner.TryRun(context.Background(), "test")
	assert.ErrorIs(t, err, ErrCycleInProgress)

	close(service.release)
	require.NoError(t, <-done)
	assert.False(t, runner.Running())
	assert.Equal(t, int32(1), service.runs.Load())
	assert.True(t, service.deadline)

	_, err = runner.TryRun(context.Background(), "test")
	<-service.started
	assert.NoError(t, err)
	assert.Equal(t, int32(2), service.runs.Load())
}

func TestRunnerSchedule(t *testing.T) {
	service := newBlockingService()
	close(service.release)
	runner := NewRunner(service, 0)

	require.NoError(t, runner.Start("@every 1s"))
	defer runner.Stop()

	select {
	case <-service.started:
	case <-time.After(3 * time.Second):
		t.Fatal("scheduled cycle did not run")
	}
}

func TestRunnerRejectsBadSchedule(t *testing.T) {
	runner := NewRunner(newBlockingService(), 0)
	assert.Error(t, runner.Start("every minute"))
}

func TestHandleTrigger(t *testing.T) {
	service := newBlockingService()
	close(service.release)
	runner := NewRunner(service, 0)

	handleTrigger(context.Background(), runner, &gpubsub.Message{ID: "1", Data: []byte(`{"reason":"scheduler"}`)})
	handleTrigger(context.Background(), runner, &gpubsub.Message{ID: "2", Data: []byte(`not json`)})
	handleTrigger(context.Background(), runner, &gpubsub.Message{ID: "3"})

	assert.Equal(t, int32(3), service.runs.Load())
}

func TestRunRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	service := newBlockingService()
	runner := NewRunner(service, 0)

	var guarded atomic.Bool
	router := gin.New()
	RegisterRoutes(router.Group("/dice-ledger-api"), runner, func(c *gin.Context) {
		guarded.Store(true)
		c.Next()
	})

	first := make(chan *httptest.ResponseRecorder)
	go func() {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/dice-ledger-api/ingestion/run", nil))
		first <- w
	}()
	<-service.started

	busy := httptest.NewRecorder()
	router.ServeHTTP(busy, httptest.NewRequest(http.MethodPost, "/dice-ledger-api/ingestion/run", nil))
	assert.Equal(t, http.StatusConflict, busy.Code)

	status := httptest.NewRecorder()
	router.ServeHTTP(status, httptest.NewRequest(http.MethodGet, "/dice-ledger-api/ingestion/status", nil))
	assert.JSONEq(t, `{"running":true}`, status.Body.String())

	close(service.release)
	w := <-first
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"cycleId":"cycle"`)
	assert.True(t, guarded.Load())

	status = httptest.NewRecorder()
	router.ServeHTTP(status, httptest.NewRequest(http.MethodGet, "/dice-ledger-api/ingestion/status", nil))
	assert.Contains(t, status.Body.String(), `"running":false`)
	assert.Contains(t, status.Body.String(), `"lastCycle":{"cycleId":"cycle"`)
}

func TestRunRouteFailure(t *testing.T) {
	gin.SetMode(gin.TestMode)
	service := newBlockingService()
	service.err = errors.New("database unavailable")
	close(service.release)

	router := gin.New()
	RegisterRoutes(router.Group(""), NewRunner(service, 0))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/ingestion/run", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
