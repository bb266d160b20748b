package indexer

import "fmt"

// TransportError covers network failures, timeouts and non-2xx responses.
type TransportError struct {
	Collection Collection
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("indexer %s: unexpected status %d", e.Collection, e.StatusCode)
	}
	return fmt.Sprintf("indexer %s: %v", e.Collection, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// MalformedDataError reports an unparseable page or a record missing a required field.
type MalformedDataError struct {
	Collection Collection
	Field      string
	Err        error
}

func (e *MalformedDataError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("malformed %s payload: %v", e.Collection, e.Err)
	}
	if e.Err == nil {
		return fmt.Sprintf("malformed %s record: %s is required", e.Collection, e.Field)
	}
	return fmt.Sprintf("malformed %s record: %s: %v", e.Collection, e.Field, e.Err)
}

func (e *MalformedDataError) Unwrap() error {
	return e.Err
}
