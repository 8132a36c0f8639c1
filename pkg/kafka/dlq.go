package kafka

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
)

// DeadLetterPublisher receives messages a consumer gave up on.
type DeadLetterPublisher interface {
	Publish(ctx context.Context, msg kafka.Message, lastErr error, consumerGroup string) error
}

// DLQProducer copies failed messages to "<prefix>.dlq.<original topic>".
type DLQProducer struct {
	writer messageWriter
	prefix string
	logger *slog.Logger
}

// NewDLQProducer creates a dead-letter producer.
func NewDLQProducer(brokers []string, prefix string, l *slog.Logger) *DLQProducer {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		BatchSize:              1,
		BatchTimeout:           100 * time.Millisecond,
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &DLQProducer{writer: w, prefix: prefix, logger: l}
}

// DLQTopic returns the dead-letter topic for topic.
func DLQTopic(prefix, topic string) string {
	return prefix + ".dlq." + topic
}

// Publish writes msg unchanged to its dead-letter topic, adding headers
// describing where it came from and why it failed.
func (d *DLQProducer) Publish(ctx context.Context, msg kafka.Message, lastErr error, consumerGroup string) error {
	topic := DLQTopic(d.prefix, msg.Topic)

	headers := make([]kafka.Header, 0, len(msg.Headers)+5)
	headers = append(headers, msg.Headers...)
	headers = append(headers,
		kafka.Header{Key: "dlq.original_topic", Value: []byte(msg.Topic)},
		kafka.Header{Key: "dlq.original_partition", Value: []byte(strconv.Itoa(msg.Partition))},
		kafka.Header{Key: "dlq.original_offset", Value: []byte(strconv.FormatInt(msg.Offset, 10))},
		kafka.Header{Key: "dlq.consumer_group", Value: []byte(consumerGroup)},
	)
	if lastErr != nil {
		headers = append(headers, kafka.Header{Key: "dlq.error", Value: []byte(lastErr.Error())})
	}

	out := kafka.Message{Topic: topic, Key: msg.Key, Value: msg.Value, Headers: headers}
	if err := d.writer.WriteMessages(ctx, out); err != nil {
		return fmt.Errorf("publish to DLQ %s: %w", topic, err)
	}

	d.logger.WarnContext(ctx, "message sent to DLQ",
		slog.String("dlq_topic", topic),
		slog.Int("partition", msg.Partition),
		slog.Int64("offset", msg.Offset),
		slog.String("consumer_group", consumerGroup),
	)
	return nil
}

func (d *DLQProducer) Close() error {
	return d.writer.Close()
}
