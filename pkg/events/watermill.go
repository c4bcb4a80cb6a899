// Package events carries item notifications over Watermill's PostgreSQL transport.
//
// Items live in MongoDB; the bus only moves item.* notifications from the API
// to the worker, which keeps the Redis read model in step. The two processes
// use different halves of the package:
//
//   - Publisher (API): every message is wrapped as a forwarder envelope and
//     written to a durable SQL queue, so Publish returns once the event is stored.
//   - Subscriber (worker): runs the forwarder daemon that unwraps envelopes onto
//     their target topics, and delivers those topics to handlers.
//
// Handlers should be idempotent. A failed handler is retried up to 3 times with
// exponential backoff before the message is Nacked.
//
// OTel trace context is injected into message metadata on Publish and
// restored before the handler runs.
package events

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	watermillsql "github.com/ThreeDotsLabs/watermill-sql/v3/pkg/sql"
	"github.com/ThreeDotsLabs/watermill/components/forwarder"
	"github.com/ThreeDotsLabs/watermill/message"
	_ "github.com/jackc/pgx/v5/stdlib"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/ghuser/inventory/pkg/config"
	"github.com/ghuser/inventory/pkg/logger"
)

const (
	maxRetries      = 3
	retryBaseDelay  = time.Second
	shutdownTimeout = 30 * time.Second
	forwarderTopic  = "_forwarder_queue"
	errChanCapacity = 100
)

// Handler processes one message. A nil return Acks it.
type Handler func(context.Context, *message.Message) error

func openDB(cfg *config.Config) (*sql.DB, error) {
	db, err := sql.Open("pgx", cfg.EventsDatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("events: open db: %w", err)
	}
	return db, nil
}

func newSQLPublisher(db *sql.DB, log logger.Logger) (*watermillsql.Publisher, error) {
	return watermillsql.NewPublisher(
		db,
		watermillsql.PublisherConfig{
			SchemaAdapter:        watermillsql.DefaultPostgreSQLSchema{},
			AutoInitializeSchema: true,
		},
		&slogAdapter{log: log},
	)
}

func newSQLSubscriber(db *sql.DB, consumerGroup string, log logger.Logger) (*watermillsql.Subscriber, error) {
	return watermillsql.NewSubscriber(
		db,
		watermillsql.SubscriberConfig{
			SchemaAdapter:    watermillsql.DefaultPostgreSQLSchema{},
			OffsetsAdapter:   watermillsql.DefaultPostgreSQLOffsetsAdapter{},
			InitializeSchema: true,
			ConsumerGroup:    consumerGroup,
		},
		&slogAdapter{log: log},
	)
}

// Publisher writes item notifications into the durable forwarder queue.
type Publisher struct {
	db        *sql.DB
	publisher message.Publisher
}

// NewPublisher opens cfg.EventsDatabaseURL and returns a forwarder-enveloping
// Publisher. Schema tables are created on first publish.
func NewPublisher(cfg *config.Config, log logger.Logger) (*Publisher, error) {
	db, err := openDB(cfg)
	if err != nil {
		return nil, err
	}
	pub, err := newSQLPublisher(db, log)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("events: new publisher: %w", err)
	}
	return &Publisher{
		db: db,
		publisher: forwarder.NewPublisher(pub, forwarder.PublisherConfig{
			ForwarderTopic: forwarderTopic,
		}),
	}, nil
}

// Publish sends msgs to topic. Trace context from ctx is copied into each
// message's metadata.
func (p *Publisher) Publish(ctx context.Context, topic string, msgs ...*message.Message) error {
	injectTraceContext(ctx, msgs)
	if err := p.publisher.Publish(topic, msgs...); err != nil { //nolint:contextcheck
		return fmt.Errorf("events: publish to %s: %w", topic, err)
	}
	return nil
}

// Ping checks the event database connection.
func (p *Publisher) Ping(ctx context.Context) error {
	if err := p.db.PingContext(ctx); err != nil {
		return fmt.Errorf("events: ping db: %w", err)
	}
	return nil
}

// Close closes the publisher and its database handle.
func (p *Publisher) Close() error {
	if err := p.publisher.Close(); err != nil {
		return fmt.Errorf("events: close publisher: %w", err)
	}
	return p.db.Close()
}

// Subscriber consumes item topics and runs the forwarder daemon that moves
// enveloped messages from the durable queue onto those topics.
type Subscriber struct {
	db         *sql.DB
	subscriber *watermillsql.Subscriber
	fwd        *forwarder.Forwarder
	log        logger.Logger
	wg         sync.WaitGroup
}

// NewSubscriber opens cfg.EventsDatabaseURL and returns a Subscriber in the
// "<service>-consumer" group, so each message is handled by one worker instance.
func NewSubscriber(cfg *config.Config, log logger.Logger) (*Subscriber, error) {
	db, err := openDB(cfg)
	if err != nil {
		return nil, err
	}
	sub, err := newSQLSubscriber(db, cfg.ServiceName+"-consumer", log)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("events: new subscriber: %w", err)
	}
	return &Subscriber{db: db, subscriber: sub, log: log}, nil
}

// StartForwarder starts the forwarder daemon and blocks until it is running.
// Must be called at most once.
func (s *Subscriber) StartForwarder(ctx context.Context) error {
	if s.fwd != nil {
		return fmt.Errorf("events: forwarder already started")
	}

	wlog := &slogAdapter{log: s.log}

	fwdSub, err := newSQLSubscriber(s.db, "forwarder-consumer", s.log)
	if err != nil {
		return fmt.Errorf("events: new forwarder subscriber: %w", err)
	}
	targetPub, err := newSQLPublisher(s.db, s.log)
	if err != nil {
		_ = fwdSub.Close()
		return fmt.Errorf("events: new forwarder target publisher: %w", err)
	}
	fwd, err := forwarder.NewForwarder(fwdSub, targetPub, wlog, forwarder.Config{
		ForwarderTopic: forwarderTopic,
	})
	if err != nil {
		_ = targetPub.Close()
		_ = fwdSub.Close()
		return fmt.Errorf("events: create forwarder: %w", err)
	}
	s.fwd = fwd

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.log.InfoContext(ctx, "events: forwarder started")
		if err := fwd.Run(ctx); err != nil {
			s.log.ErrorContext(ctx, "events: forwarder stopped with error", "error", err)
			return
		}
		s.log.InfoContext(ctx, "events: forwarder stopped")
	}()

	select {
	case <-fwd.Running():
		return nil
	case <-ctx.Done():
		return fmt.Errorf("events: context cancelled waiting for forwarder: %w", ctx.Err())
	}
}

// Subscribe delivers messages from topic to handler on a background goroutine.
//
// Ack/Nack is managed by the subscriber:
//   - handler returns nil   → Ack
//   - handler returns error → retried up to 3× with exponential backoff (1s, 2s, 4s)
//   - retries exhausted     → Nack, error sent to the returned channel
//
// The returned channel is buffered; when it is full further errors are logged
// and dropped. Close waits for in-flight handlers.
func (s *Subscriber) Subscribe(ctx context.Context, topic string, handler Handler) (<-chan error, error) {
	ch, err := s.subscriber.Subscribe(ctx, topic)
	if err != nil {
		return nil, fmt.Errorf("events: subscribe to %s: %w", topic, err)
	}

	errCh := make(chan error, errChanCapacity)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer close(errCh)

		for msg := range ch {
			msgCtx := extractTraceContext(ctx, msg)
			if err := retryWithBackoff(msgCtx, msg, handler, maxRetries, retryBaseDelay, s.log); err != nil {
				msg.Nack()
				select {
				case errCh <- err:
				default:
					s.log.ErrorContext(msgCtx, "events: error channel full, dropping error",
						"error", err, "topic", topic)
				}
				continue
			}
			msg.Ack()
		}
	}()

	return errCh, nil
}

// Ping checks the event database connection.
func (s *Subscriber) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("events: ping db: %w", err)
	}
	return nil
}

// Close stops the subscriber and forwarder, waits up to 30s for in-flight
// handlers, then closes the database handle.
func (s *Subscriber) Close() error {
	if err := s.subscriber.Close(); err != nil {
		return fmt.Errorf("events: close subscriber: %w", err)
	}
	if s.fwd != nil {
		if err := s.fwd.Close(); err != nil {
			return fmt.Errorf("events: close forwarder: %w", err)
		}
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(shutdownTimeout):
		s.log.Error("events: timed out waiting for in-flight handlers to complete")
	}

	return s.db.Close()
}

// NewJSONMessage marshals payload into a message with a fresh UUID. eventID is
// copied into the "event_id" metadata key so consumers can drop redeliveries.
func NewJSONMessage(eventID string, version int, payload any) (*message.Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("events: marshal payload: %w", err)
	}
	msg := message.NewMessage(watermill.NewUUID(), data)
	if eventID != "" {
		msg.Metadata.Set("event_id", eventID)
	}
	msg.Metadata.Set("event_version", fmt.Sprint(version))
	return msg, nil
}

func injectTraceContext(ctx context.Context, msgs []*message.Message) {
	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	for _, msg := range msgs {
		for k, v := range carrier {
			msg.Metadata.Set(k, v)
		}
	}
}

func extractTraceContext(ctx context.Context, msg *message.Message) context.Context {
	carrier := propagation.MapCarrier{}
	for k, v := range msg.Metadata {
		carrier[k] = v
	}
	return otel.GetTextMapPropagator().Extract(ctx, carrier)
}

// retryWithBackoff calls handler up to maxRetries times with exponential backoff.
// Returns nil on first success; returns the last error after all retries exhaust.
func retryWithBackoff(
	ctx context.Context,
	msg *message.Message,
	handler Handler,
	maxRetries int,
	baseDelay time.Duration,
	log logger.Logger,
) error {
	delay := baseDelay
	var err error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		if err = handler(ctx, msg); err == nil {
			return nil
		}
		if attempt == maxRetries {
			break
		}
		log.WarnContext(ctx, "events: handler failed, retrying",
			"attempt", attempt,
			"max_retries", maxRetries,
			"next_delay", delay,
			"error", err,
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
	return fmt.Errorf("events: handler failed after %d retries: %w", maxRetries, err)
}

// slogAdapter bridges logger.Logger to watermill.LoggerAdapter.
type slogAdapter struct{ log logger.Logger }

func (a *slogAdapter) Error(msg string, err error, fields watermill.LogFields) {
	a.log.Error(msg, append(fieldsToArgs(fields), "error", err)...)
}
func (a *slogAdapter) Info(msg string, fields watermill.LogFields) {
	a.log.Info(msg, fieldsToArgs(fields)...)
}
func (a *slogAdapter) Debug(msg string, fields watermill.LogFields) {
	a.log.Debug(msg, fieldsToArgs(fields)...)
}
func (a *slogAdapter) Trace(msg string, fields watermill.LogFields) {
	a.log.Debug(msg, fieldsToArgs(fields)...)
}
func (a *slogAdapter) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return &slogAdapter{log: a.log.With(fieldsToArgs(fields)...)}
}

func fieldsToArgs(fields watermill.LogFields) []any {
	args := make([]any, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}
	return args
}
