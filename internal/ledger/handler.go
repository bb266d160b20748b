package ledger

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

const (
	defaultChartDays = 30
	maxChartDays     = 365
)

type transactionReader interface {
	ListTransactions(ctx context.Context, page utils.PageRequest) ([]model.Transaction, int64, error)
	FindTransaction(ctx context.Context, sequentialId uint64) (*model.Transaction, error)
	Stats(ctx context.Context) (*TransactionStats, error)
	AverageFeeByDay(ctx context.Context, since time.Time) ([]ChartPoint, error)
}

type transactionHandler struct {
	reader transactionReader
	now    func() time.Time
}

type TransactionResponse struct {
	model.Transaction
	MethodName string `json:"methodName"`
	EthValue   string `json:"ethValue"`
	EthFee     string `json:"ethFee"`
}

func NewTransactionResponse(tx model.Transaction) TransactionResponse {
	return TransactionResponse{
		Transaction: tx,
		MethodName:  ResolveMethod(string(tx.Method)),
		EthValue:    FormatEth(tx.Value),
		EthFee:      FormatEth(tx.Fee),
	}
}

func RegisterRoutes(rg *gin.RouterGroup, db *gorm.DB) {
	registerRoutes(rg, NewRepository(db), time.Now)
}

func registerRoutes(rg *gin.RouterGroup, reader transactionReader, now func() time.Time) {
	handler := transactionHandler{reader: reader, now: now}

	routes := rg.Group("/transactions")
	routes.GET("", handler.getTransactions)
	routes.GET("/stats", handler.getStats)
	routes.GET("/chart", handler.getChart)
	routes.GET("/:id", handler.getTransaction)
}

func (th *transactionHandler) getTransactions(c *gin.Context) {
	page, problem := utils.NewPageRequest(c)
	if problem != nil {
		c.JSON(problem.Problem.Status, problem.Problem)
		return
	}

	transactions, count, err := th.reader.ListTransactions(c.Request.Context(), page)
	if err != nil {
		problem := reject.DatabaseProblem(err)
		c.JSON(problem.Problem.Status, problem.Problem)
		return
	}

	items := make([]TransactionResponse, 0, len(transactions))
	for _, tx := range transactions {
		items = append(items, NewTransactionResponse(tx))
	}

	response := utils.NewPageResponse[TransactionResponse]().
		WithItems(items).
		WithItemCount(count).
		WithPage(page)

	c.JSON(http.StatusOK, response.Build())
}

func (th *transactionHandler) getTransaction(c *gin.Context) {
	id, parseErr := strconv.ParseUint(c.Param("id"), 10, 64)
	if parseErr != nil {
		c.JSON(http.StatusBadRequest, reject.RequestParamsProblem())
		return
	}

	tx, err := th.reader.FindTransaction(c.Request.Context(), id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, reject.NotFoundProblem())
		return
	}
	if err != nil {
		problem := reject.DatabaseProblem(err)
		c.JSON(problem.Problem.Status, problem.Problem)
		return
	}

	c.JSON(http.StatusOK, NewTransactionResponse(*tx))
}

func (th *transactionHandler) getStats(c *gin.Context) {
	stats, err := th.reader.Stats(c.Request.Context())
	if err != nil {
		problem := reject.DatabaseProblem(err)
		c.JSON(problem.Problem.Status, problem.Problem)
		return
	}

	stats.Player = stats.Player.withEth()
	stats.Vrf = stats.Vrf.withEth()
	c.JSON(http.StatusOK, stats)
}

func (th *transactionHandler) getChart(c *gin.Context) {
	days := defaultChartDays
	if raw := c.Query("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > maxChartDays {
			c.JSON(http.StatusBadRequest, reject.RequestParamsProblem())
			return
		}
		days = parsed
	}

	until := th.now()
	since := truncateDay(until.AddDate(0, 0, -days))
	points, err := th.reader.AverageFeeByDay(c.Request.Context(), since)
	if err != nil {
		problem := reject.DatabaseProblem(err)
		c.JSON(problem.Problem.Status, problem.Problem)
		return
	}

	c.JSON(http.StatusOK, BuildFeeChart(points, since, until))
}
