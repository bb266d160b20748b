package ledger

import (
	"cmp"
	"slices"

	"github.com/kollektive-hackathon/dice-ledger-backend/internal/pkg/model"
)

// Assign orders drafts by (tag id, method) and numbers them from startingId with no gaps.
// The input slice is left untouched.
func Assign(drafts []model.Transaction, startingId uint64) []model.Transaction {
	sequenced := slices.Clone(drafts)
	slices.SortStableFunc(sequenced, func(a, b model.Transaction) int {
		if c := cmp.Compare(a.TagId(), b.TagId()); c != 0 {
			return c
		}
		return cmp.Compare(a.Method, b.Method)
	})

	for i := range sequenced {
		sequenced[i].SequentialId = startingId + uint64(i)
	}
	return sequenced
}
