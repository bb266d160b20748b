package pubsub

import (
	"context"

	"cloud.google.com/go/pubsub"
	"github.com/rs/zerolog/log"
)

var client *pubsub.Client

func InitPubSub(ctx context.Context, projectId string) error {
	log.Info().Str("project_id", projectId).Msg("Init pubsub")
	var err error
	client, err = pubsub.NewClient(ctx, projectId)
	if err != nil {
		return err
	}
	log.Info().Msg("Successful pubsub init")
	return nil
}

// Subscribe blocks receiving messages until ctx is cancelled.
func Subscribe(ctx context.Context, subscriptionHandler SubscriptionHandler) {
	sub := client.Subscription(subscriptionHandler.SubscriptionId)
	// Cycles are single-flight, so there is no point pulling messages in parallel.
	sub.ReceiveSettings.NumGoroutines = 1
	sub.ReceiveSettings.MaxOutstandingMessages = 1

	err := sub.Receive(ctx, subscriptionHandler.Handler)
	if err != nil {
		log.Error().Err(err).Str("subscription_id", subscriptionHandler.SubscriptionId).Msg("Subscriber error")
	}
}

func CloseClient() {
	if client != nil {
		client.Close()
	}
}
