package ledger

import "fmt"

// Unique constraint names on the transactions table.
const (
	ConstraintHash         = "uk_transactions_hash"
	ConstraintSequentialId = "uk_transactions_sequential_id"
	ConstraintEvent        = "uk_transactions_event"
)

// DuplicateKeyError is returned by InsertTransactions when a unique constraint fires.
// An empty Constraint means the store could not tell which one.
type DuplicateKeyError struct {
	Constraint string
	Err        error
}

func (e *DuplicateKeyError) Error() string {
	if e.Constraint == "" {
		return fmt.Sprintf("duplicate key: %v", e.Err)
	}
	return fmt.Sprintf("duplicate key on %s: %v", e.Constraint, e.Err)
}

func (e *DuplicateKeyError) Unwrap() error {
	return e.Err
}

// SequenceCollision reports a race on sequential_id; the batch must be re-sequenced.
func (e *DuplicateKeyError) SequenceCollision() bool {
	return e.Constraint == ConstraintSequentialId
}

// AlreadyIngested reports that at least one row of the batch already exists.
func (e *DuplicateKeyError) AlreadyIngested() bool {
	return e.Constraint == ConstraintHash || e.Constraint == ConstraintEvent
}
