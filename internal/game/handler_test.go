package game

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kollektive-hackathon/dice-ledger-backend/internal/pkg/model"
	"github.com/kollektive-hackathon/dice-ledger-backend/internal/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReader struct {
	*memoryStore
	since time.Time
	err   error
}

func (f *fakeReader) ListGames(_ context.Context, page utils.PageRequest) ([]model.Game, int64, error) {
	if f.err != nil {
		return nil, 0, f.err
	}
	var games []model.Game
	for id := uint64(1); id <= uint64(len(f.games)); id++ {
		games = append(games, f.games[id])
	}
	end := min(page.Offset+page.Size, len(games))
	if page.Offset >= end {
		return nil, int64(len(games)), nil
	}
	return games[page.Offset:end], int64(len(games)), nil
}

func (f *fakeReader) Stats(_ context.Context, since time.Time) (*GameStats, error) {
	f.since = since
	if f.err != nil {
		return nil, f.err
	}
	return &GameStats{Total: int64(len(f.games)), PerDay: []DailyCount{}}, nil
}

func newRouter(t *testing.T, reader *fakeReader) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	now := func() time.Time { return time.Date(2024, 3, 31, 18, 0, 0, 0, time.UTC) }
	registerRoutes(router.Group("/dice-ledger-api"), reader, now)
	return router
}

func seededReader(t *testing.T) *fakeReader {
	t.Helper()
	store := newMemoryStore()
	for id := uint64(1); id <= 3; id++ {
		game, err := ApplyRequest(request(id))
		require.NoError(t, err)
		store.games[id] = *game
	}
	return &fakeReader{memoryStore: store}
}

func get(router *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestGetGames(t *testing.T) {
	router := newRouter(t, seededReader(t))

	w := get(router, "/dice-ledger-api/games?page_size=2")
	require.Equal(t, http.StatusOK, w.Code)

	var body utils.PageResponse[model.Game]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Len(t, body.Items, 2)
	assert.Equal(t, int64(3), body.ItemCount)
	assert.Equal(t, int64(1), body.NextPageToken)
	assert.Equal(t, model.GamePending, body.Items[0].GameState)
}

func TestGetGame(t *testing.T) {
	router := newRouter(t, seededReader(t))

	w := get(router, "/dice-ledger-api/games/2")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"gameState":"pending"`)
	assert.Contains(t, w.Body.String(), `"result":"error"`)

	assert.Equal(t, http.StatusNotFound, get(router, "/dice-ledger-api/games/42").Code)
	assert.Equal(t, http.StatusBadRequest, get(router, "/dice-ledger-api/games/-1").Code)
}

func TestGetGameStats(t *testing.T) {
	reader := seededReader(t)
	router := newRouter(t, reader)

	w := get(router, "/dice-ledger-api/games/stats")
	require.Equal(t, http.StatusOK, w.Code)

	var stats GameStats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, int64(3), stats.Total)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), reader.since)
}

func TestGetGamesDatabaseError(t *testing.T) {
	reader := seededReader(t)
	reader.err = errors.New("down")

	w := get(newRouter(t, reader), "/dice-ledger-api/games")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "error.data.access")
}
