package kafka

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

const maxHandlerRetries = 3

// Handler processes one event.
type Handler func(ctx context.Context, event *Event) error

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// ConsumerConfig configures a consumer group subscription.
type ConsumerConfig struct {
	Brokers  []string
	GroupID  string
	Topics   []string
	MinBytes int
	MaxBytes int
}

// Consumer reads events from one or more topics and hands them to a Handler.
// Every message is committed once handled, or once retries are exhausted and
// the message has been passed to the dead-letter publisher.
type Consumer struct {
	reader    messageReader
	group     string
	topics    string
	handler   Handler
	dlq       DeadLetterPublisher
	logger    *slog.Logger
	backoff   func(attempt int) time.Duration
	closeOnce sync.Once
}

// NewConsumer subscribes to cfg.Topics as consumer group cfg.GroupID.
// dlq may be nil.
func NewConsumer(cfg ConsumerConfig, handler Handler, dlq DeadLetterPublisher, l *slog.Logger) *Consumer {
	if cfg.MinBytes == 0 {
		cfg.MinBytes = 1
	}
	if cfg.MaxBytes == 0 {
		cfg.MaxBytes = 10e6
	}
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		GroupID:     cfg.GroupID,
		GroupTopics: cfg.Topics,
		MinBytes:    cfg.MinBytes,
		MaxBytes:    cfg.MaxBytes,
	})
	return newConsumer(r, cfg.GroupID, cfg.Topics, handler, dlq, l)
}

func newConsumer(r messageReader, group string, topics []string, handler Handler, dlq DeadLetterPublisher, l *slog.Logger) *Consumer {
	return &Consumer{
		reader:  r,
		group:   group,
		topics:  strings.Join(topics, ","),
		handler: handler,
		dlq:     dlq,
		logger:  l,
		backoff: func(attempt int) time.Duration { return time.Duration(attempt) * 100 * time.Millisecond },
	}
}

// Start consumes until ctx is canceled, then closes the reader.
func (c *Consumer) Start(ctx context.Context) error {
	c.logger.Info("consumer started", slog.String("topics", c.topics), slog.String("group", c.group))
	defer func() {
		c.logger.Info("consumer stopping", slog.String("topics", c.topics))
		_ = c.Close()
	}()

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return nil
			}
			c.logger.Error("failed to fetch message", slog.String("error", err.Error()))
			continue
		}
		if err := c.process(ctx, msg); err != nil && ctx.Err() != nil {
			return nil
		}
	}
}

// process handles a single message including retries and commit. It returns
// an error only when ctx ended while retrying, in which case the message
// is left uncommitted for redelivery.
func (c *Consumer) process(ctx context.Context, msg kafka.Message) error {
	start := time.Now()
	defer func() {
		consumerProcessingDuration.WithLabelValues(msg.Topic, c.group).Observe(time.Since(start).Seconds())
	}()

	event, err := UnmarshalEvent(msg.Value)
	if err != nil {
		c.logger.Error("failed to unmarshal event",
			slog.String("error", err.Error()),
			slog.String("topic", msg.Topic),
			slog.Int64("offset", msg.Offset),
		)
		c.deadLetter(ctx, msg, err)
		c.commit(ctx, msg)
		return nil
	}

	ctx = ExtractTraceContext(ctx, msg)

	var lastErr error
	for attempt := 1; attempt <= maxHandlerRetries; attempt++ {
		if lastErr = c.handler(ctx, event); lastErr == nil {
			break
		}
		c.logger.WarnContext(ctx, "handler failed",
			slog.String("event_type", event.EventType),
			slog.String("aggregate_id", event.AggregateID),
			slog.String("error", lastErr.Error()),
			slog.String("topic", msg.Topic),
			slog.Int64("offset", msg.Offset),
			slog.Int("attempt", attempt),
		)
		if attempt == maxHandlerRetries {
			break
		}
		timer := time.NewTimer(c.backoff(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr != nil {
		consumerMessagesFailed.WithLabelValues(msg.Topic, c.group).Inc()
		c.logger.ErrorContext(ctx, "handler failed after all retries, skipping message",
			slog.String("event_type", event.EventType),
			slog.String("aggregate_id", event.AggregateID),
			slog.String("error", lastErr.Error()),
		)
		c.deadLetter(ctx, msg, lastErr)
	} else {
		consumerMessagesProcessed.WithLabelValues(msg.Topic, c.group).Inc()
	}

	c.commit(ctx, msg)
	return nil
}

func (c *Consumer) deadLetter(ctx context.Context, msg kafka.Message, cause error) {
	if c.dlq == nil {
		return
	}
	if err := c.dlq.Publish(ctx, msg, cause, c.group); err != nil {
		c.logger.ErrorContext(ctx, "failed to dead-letter message", slog.String("error", err.Error()))
		return
	}
	consumerDLQPublished.WithLabelValues(msg.Topic, c.group).Inc()
}

func (c *Consumer) commit(ctx context.Context, msg kafka.Message) {
	if err := c.reader.CommitMessages(ctx, msg); err != nil {
		c.logger.ErrorContext(ctx, "failed to commit message",
			slog.String("topic", msg.Topic),
			slog.Int64("offset", msg.Offset),
			slog.String("error", err.Error()),
		)
	}
}

// Close closes the reader. Safe to call more than once.
func (c *Consumer) Close() error {
	var err error
	c.closeOnce.Do(func() { err = c.reader.Close() })
	return err
}
