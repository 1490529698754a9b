package events

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
)

// KafkaPublisher writes events to Kafka. Messages are keyed by aggregate id so
// the hash balancer keeps each aggregate's events on one partition.
type KafkaPublisher struct {
	writer      *kafka.Writer
	topicPrefix string
}

func NewKafkaPublisher(brokers []string, topicPrefix string) (*KafkaPublisher, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("kafka publisher requires at least one broker")
	}
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			RequiredAcks:           kafka.RequireAll,
			Balancer:               &kafka.Hash{},
			AllowAutoTopicCreation: true,
			WriteTimeout:           5 * time.Second,
			// Publish is synchronous and one message at a time; the 1s default
			// batch window would be added to every write.
			BatchTimeout: 5 * time.Millisecond,
			MaxAttempts:  3,
		},
		topicPrefix: topicPrefix,
	}, nil
}

// TopicFor maps an event type such as "task.created" to "<prefix>.task".
func (p *KafkaPublisher) TopicFor(eventType string) string {
	aggregate, _, _ := strings.Cut(eventType, ".")
	if p.topicPrefix == "" {
		return aggregate
	}
	return p.topicPrefix + "." + aggregate
}

func (p *KafkaPublisher) Publish(ctx context.Context, eventType string, payload []byte, partitionKey string) error {
	return p.writer.WriteMessages(ctx, kafka.Message{
		Topic:   p.TopicFor(eventType),
		Key:     []byte(partitionKey),
		Value:   payload,
		Time:    time.Now().UTC(),
		Headers: []kafka.Header{{Key: "event_type", Value: []byte(eventType)}},
	})
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
