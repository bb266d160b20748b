package reject

// ProblemWithTrace pairs the problem sent to the client with the error that caused it.
type ProblemWithTrace struct {
	Problem Problem
	Cause   error
}

func (p *ProblemWithTrace) Error() string {
	if p.Cause != nil {
		return p.Problem.Title + ": " + p.Cause.Error()
	}
	return p.Problem.Title
}
