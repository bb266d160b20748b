package reject

import (
	"net/http"

	"github.com/rs/zerolog/log"
)

const (
	genericUnexpectedError string = "error.generic.unexpected"
	cannotParseParams      string = "error.generic.cannot-parse-params"
	genericNotFound        string = "error.generic.not-found"
	databaseError          string = "error.data.access"
	ingestionBusy          string = "error.ingestion.in-progress"
)

func RequestParamsProblem() Problem {
	return NewProblem().
		WithTitle("Invalid request parameters").
		WithStatus(http.StatusBadRequest).
		WithCode(cannotParseParams).
		Build()
}

func NotFoundProblem() Problem {
	return NewProblem().
		WithTitle("Record not found").
		WithStatus(http.StatusNotFound).
		WithCode(genericNotFound).
		Build()
}

func IngestionBusyProblem() Problem {
	return NewProblem().
		WithTitle("Ingestion cycle already running").
		WithStatus(http.StatusConflict).
		WithCode(ingestionBusy).
		Build()
}

func DatabaseProblem(err error) *ProblemWithTrace {
	return &ProblemWithTrace{
		Problem: NewProblem().
			WithTitle("Trouble fetching data from database").
			WithStatus(http.StatusInternalServerError).
			WithCode(databaseError).
			Build(),
		Cause: err,
	}
}

func UnexpectedProblem(err error) Problem {
	log.Warn().Err(err).Msg("Unexpected error while handling request")
	return NewProblem().
		WithTitle("Unexpected error").
		WithStatus(http.StatusInternalServerError).
		WithCode(genericUnexpectedError).
		Build()
}
