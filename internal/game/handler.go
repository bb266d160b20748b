package game

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kollektive-hackathon/dice-ledger-backend/internal/pkg/model"
	"github.com/kollektive-hackathon/dice-ledger-backend/internal/pkg/reject"
	"github.com/kollektive-hackathon/dice-ledger-backend/internal/pkg/utils"
	"gorm.io/gorm"
)

const statsWindowDays = 30

type gameReader interface {
	FindGame(ctx context.Context, gameId uint64) (*model.Game, error)
	ListGames(ctx context.Context, page utils.PageRequest) ([]model.Game, int64, error)
	Stats(ctx context.Context, since time.Time) (*GameStats, error)
}

type gameHandler struct {
	reader gameReader
	now    func() time.Time
}

func RegisterRoutes(rg *gin.RouterGroup, db *gorm.DB) {
	registerRoutes(rg, NewRepository(db), time.Now)
}

func registerRoutes(rg *gin.RouterGroup, reader gameReader, now func() time.Time) {
	handler := gameHandler{reader: reader, now: now}

	routes := rg.Group("/games")
	routes.GET("", handler.getGames)
	routes.GET("/stats", handler.getStats)
	routes.GET("/:id", handler.getGame)
}

func (gh *gameHandler) getGames(c *gin.Context) {
	page, problem := utils.NewPageRequest(c)
	if problem != nil {
		c.JSON(problem.Problem.Status, problem.Problem)
		return
	}

	games, count, err := gh.reader.ListGames(c.Request.Context(), page)
	if err != nil {
		problem := reject.DatabaseProblem(err)
		c.JSON(problem.Problem.Status, problem.Problem)
		return
	}

	response := utils.NewPageResponse[model.Game]().
		WithItems(games).
		WithItemCount(count).
		WithPage(page)

	c.JSON(http.StatusOK, response.Build())
}

func (gh *gameHandler) getGame(c *gin.Context) {
	gameId, parseErr := strconv.ParseUint(c.Param("id"), 10, 64)
	if parseErr != nil {
		c.JSON(http.StatusBadRequest, reject.RequestParamsProblem())
		return
	}

	game, err := gh.reader.FindGame(c.Request.Context(), gameId)
	if errors.Is(err, ErrGameNotFound) {
		c.JSON(http.StatusNotFound, reject.NotFoundProblem())
		return
	}
	if err != nil {
		problem := reject.DatabaseProblem(err)
		c.JSON(problem.Problem.Status, problem.Problem)
		return
	}

	c.JSON(http.StatusOK, game)
}

func (gh *gameHandler) getStats(c *gin.Context) {
	since := gh.now().UTC().AddDate(0, 0, -statsWindowDays).Truncate(24 * time.Hour)
	stats, err := gh.reader.Stats(c.Request.Context(), since)
	if err != nil {
		problem := reject.DatabaseProblem(err)
		c.JSON(problem.Problem.Status, problem.Problem)
		return
	}

	c.JSON(http.StatusOK, stats)
}
