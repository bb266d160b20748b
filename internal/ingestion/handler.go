package ingestion

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kollektive-hackathon/dice-ledger-backend/internal/pkg/reject"
)

type statusResponse struct {
	Running   bool         `json:"running"`
	LastCycle *CycleResult `json:"lastCycle,omitempty"`
}

type ingestionHandler struct {
	runner *Runner
}

// RegisterRoutes exposes the on-demand trigger. Extra handlers, such as token
// verification, run before it.
func RegisterRoutes(rg *gin.RouterGroup, runner *Runner, guards ...gin.HandlerFunc) {
	handler := ingestionHandler{runner: runner}

	routes := rg.Group("/ingestion")
	routes.POST("/run", append(guards, handler.run)...)
	routes.GET("/status", handler.status)
}

func (ih *ingestionHandler) run(c *gin.Context) {
	result, err := ih.runner.TryRun(c.Request.Context(), "http")
	if errors.Is(err, ErrCycleInProgress) {
		c.JSON(http.StatusConflict, reject.IngestionBusyProblem())
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, reject.UnexpectedProblem(err))
		return
	}

	c.JSON(http.StatusOK, result)
}

func (ih *ingestionHandler) status(c *gin.Context) {
	c.JSON(http.StatusOK, statusResponse{
		Running:   ih.runner.Running(),
		LastCycle: ih.runner.LastCycle(),
	})
}
