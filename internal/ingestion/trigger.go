package ingestion

import (
	"context"
	"errors"

	gpubsub "cloud.google.com/go/pubsub"
	"github.com/kollektive-hackathon/dice-ledger-backend/internal/pkg/pubsub"
	"github.com/kollektive-hackathon/dice-ledger-backend/internal/pkg/utils"
	"github.com/rs/zerolog/log"
)

// TriggerMessage is the optional body of an external trigger, e.g. a Cloud Scheduler job.
type TriggerMessage struct {
	Reason string `json:"reason"`
}

// TriggerSubscription runs a cycle for every message on the subscription. Messages
// are acked even when a cycle is already running; the next schedule picks up the work.
func TriggerSubscription(subscriptionId string, runner *Runner) pubsub.SubscriptionHandler {
	return pubsub.SubscriptionHandler{
		SubscriptionId: subscriptionId,
		Handler: func(ctx context.Context, message *gpubsub.Message) {
			handleTrigger(ctx, runner, message)
		},
	}
}

func handleTrigger(ctx context.Context, runner *Runner, message *gpubsub.Message) {
	trigger := "pubsub"
	if len(message.Data) > 0 {
		body, err := utils.JsonDecodeByteStream[TriggerMessage](message.Data)
		if err != nil {
			log.Warn().Err(err).Str("message_id", message.ID).Msg("Ignoring unreadable trigger payload")
		} else if body.Reason != "" {
			trigger = "pubsub:" + body.Reason
		}
	}

	_, err := runner.TryRun(ctx, trigger)
	if err != nil && !errors.Is(err, ErrCycleInProgress) {
		log.Error().Err(err).Str("message_id", message.ID).Msg("Triggered ingestion cycle failed")
	}
	message.Ack()
}
