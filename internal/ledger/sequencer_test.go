package ledger

import (
	"math/rand"
	"testing"

	"github.com/kollektive-hackathon/dice-ledger-backend/internal/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requestDraft(gameId uint64) model.Transaction {
	return model.Transaction{TransactionHash: SyntheticHash(model.EventRequest, gameId), Method: model.MethodRollDice, GameId: &gameId}
}

func completionDraft(completionId uint64) model.Transaction {
	return model.Transaction{TransactionHash: SyntheticHash(model.EventCompletion, completionId), Method: model.MethodVrfCallback, CompletionId: &completionId}
}

func TestAssignOrdersRequestBeforeCompletion(t *testing.T) {
	drafts := []model.Transaction{completionDraft(3), requestDraft(3)}

	sequenced := Assign(drafts, 10)

	require.Len(t, sequenced, 2)
	assert.Equal(t, model.MethodRollDice, sequenced[0].Method)
	assert.Equal(t, uint64(10), sequenced[0].SequentialId)
	assert.Equal(t, model.MethodVrfCallback, sequenced[1].Method)
	assert.Equal(t, uint64(11), sequenced[1].SequentialId)

	assert.Zero(t, drafts[0].SequentialId, "input must not be mutated")
}

func TestAssignIsSortedAndGapFree(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for run := 0; run < 50; run++ {
		var drafts []model.Transaction
		n := rng.Intn(40)
		for i := 0; i < n; i++ {
			id := uint64(rng.Intn(20) + 1)
			if rng.Intn(2) == 0 {
				drafts = append(drafts, requestDraft(id))
			} else {
				drafts = append(drafts, completionDraft(id))
			}
		}
		start := uint64(rng.Intn(1000) + 1)

		sequenced := Assign(drafts, start)

		require.Len(t, sequenced, len(drafts))
		for i := range sequenced {
			assert.Equal(t, start+uint64(i), sequenced[i].SequentialId)
			if i == 0 {
				continue
			}
			prev, cur := sequenced[i-1], sequenced[i]
			assert.True(t, prev.TagId() < cur.TagId() || (prev.TagId() == cur.TagId() && prev.Method <= cur.Method))
		}
	}
}

func TestAssignIsIndependentOfArrivalOrder(t *testing.T) {
	a := []model.Transaction{requestDraft(1), completionDraft(1), requestDraft(2), completionDraft(2)}
	b := []model.Transaction{completionDraft(2), requestDraft(2), completionDraft(1), requestDraft(1)}

	assert.Equal(t, Assign(a, 1), Assign(b, 1))
}

func TestAssignEmpty(t *testing.T) {
	assert.Empty(t, Assign(nil, 1))
}
