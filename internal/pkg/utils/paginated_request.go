package utils

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/kollektive-hackathon/dice-ledger-backend/internal/pkg/reject"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100

	pageSizeInvalid  string = "error.request.page-size-invalid"
	pageTokenInvalid string = "error.request.page-token-invalid"
)

type PageRequest struct {
	Size   int
	Token  int
	Offset int
}

// NewPageRequest reads page_size and page_token. Both are optional; sizes above
// MaxPageSize are clamped.
func NewPageRequest(c *gin.Context) (PageRequest, *reject.ProblemWithTrace) {
	pageSize := DefaultPageSize
	if raw := c.Query("page_size"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil || size <= 0 {
			return PageRequest{}, pageProblem("Invalid page size", pageSizeInvalid, "page_size", raw, err)
		}
		pageSize = min(size, MaxPageSize)
	}

	pageToken := 0
	if raw := c.Query("page_token"); raw != "" {
		token, err := strconv.Atoi(raw)
		if err != nil || token < 0 {
			return PageRequest{}, pageProblem("Invalid page token", pageTokenInvalid, "page_token", raw, err)
		}
		pageToken = token
	}

	return PageRequest{
		Size:   pageSize,
		Token:  pageToken,
		Offset: pageSize * pageToken,
	}, nil
}

// NextPageToken returns the token of the following page, or nil on the last page.
func (p PageRequest) NextPageToken(itemCount int64) *int64 {
	if itemCount > int64((p.Token+1)*p.Size) {
		next := int64(p.Token + 1)
		return &next
	}
	return nil
}

func pageProblem(title, code, param, value string, cause error) *reject.ProblemWithTrace {
	return &reject.ProblemWithTrace{
		Problem: reject.NewProblem().
			WithTitle(title).
			WithStatus(http.StatusBadRequest).
			WithCode(code).
			WithParam(param, value).
			Build(),
		Cause: cause,
	}
}
