package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"

	"github.com/ghuser/inventory/pkg/app"
	"github.com/ghuser/inventory/pkg/cache"
	"github.com/ghuser/inventory/pkg/config"
	"github.com/ghuser/inventory/pkg/database"
	"github.com/ghuser/inventory/pkg/events"
	"github.com/ghuser/inventory/pkg/logger"
	"github.com/ghuser/inventory/pkg/telemetry"
	appsvcs "github.com/ghuser/inventory/services/item/application/services"
	itemEvents "github.com/ghuser/inventory/services/item/domain/events"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if err := config.ValidateForProduction(cfg); err != nil {
		slog.Error("production config validation failed", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg).With("process", "worker")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	otelShutdown, _, err := telemetry.Setup(ctx, cfg)
	if err != nil {
		log.Error("failed to setup otel", "error", err)
		os.Exit(1)
	}
	defer otelShutdown(context.Background()) //nolint:errcheck

	if err := telemetry.SetupSentry(cfg); err != nil {
		log.Warn("failed to setup sentry, continuing without crash reporting", "error", err)
	}
	defer telemetry.SentryFlush()

	db, err := database.Connect(ctx, cfg.MongoURL, cfg.MongoDatabase, log)
	if err != nil {
		log.Error("failed to connect to mongodb", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedisClient(cfg)
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	defer redisClient.Close() //nolint:errcheck
	log.Info("redis connected")

	subscriber, err := events.NewSubscriber(cfg, log)
	if err != nil {
		log.Error("failed to setup event subscriber", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	defer subscriber.Close() //nolint:errcheck

	if err := subscriber.StartForwarder(ctx); err != nil {
		log.Error("failed to start event forwarder", "error", err)
		os.Exit(1) //nolint:gocritic
	}

	appConfig := &app.Application{
		Db:     db,
		Logger: log,
		Redis:  redisClient,
	}
	svcs := appsvcs.New(appConfig)

	if err := registerSubscribers(ctx, subscriber, svcs.Item, log); err != nil {
		log.Error("failed to register subscribers", "error", err)
		os.Exit(1) //nolint:gocritic
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down worker...")
	cancel()

	// Subscriber.Close() (via defer) waits up to 30s for in-flight handlers.
	log.Info("worker stopped")
}

// cacheSyncer is the slice of ItemService the worker drives.
type cacheSyncer interface {
	SyncCache(ctx context.Context, id uuid.UUID) error
}

// registerSubscribers wires the cache sync handler to every item topic.
// Add new topics here as more services publish events.
func registerSubscribers(ctx context.Context, sub *events.Subscriber, syncer cacheSyncer, log logger.Logger) error {
	for _, topic := range itemEvents.Topics {
		errCh, err := sub.Subscribe(ctx, topic, handleItemEvent(syncer, log))
		if err != nil {
			return err
		}

		// Drain subscriber errors in background so the channel never blocks.
		go func(topic string) {
			for err := range errCh {
				log.ErrorContext(ctx, "subscriber error", "topic", topic, "error", err)
			}
		}(topic)
	}

	log.Info("event subscribers registered", "topics", itemEvents.Topics)
	return nil
}

// handleItemEvent returns a handler that re-reads the item named by the event
// and writes or evicts its cache entry. The payload is only used for the id,
// so out-of-order or repeated deliveries converge on the store's state.
// Undecodable payloads are logged and acknowledged.
func handleItemEvent(syncer cacheSyncer, log logger.Logger) events.Handler {
	return func(ctx context.Context, msg *message.Message) error {
		var evt itemEvents.ItemEvent
		if err := json.Unmarshal(msg.Payload, &evt); err != nil || evt.ItemID == uuid.Nil {
			log.ErrorContext(ctx, "dropping malformed item event",
				"message_uuid", msg.UUID, "error", err)
			return nil
		}

		if err := syncer.SyncCache(ctx, evt.ItemID); err != nil {
			return err
		}
		log.DebugContext(ctx, "item cache synced",
			"item_id", evt.ItemID, "event_id", evt.EventID)
		return nil
	}
}
