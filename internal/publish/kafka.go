package publish

import (
	"context"
	"fmt"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"go.uber.org/zap"

	"txstream/internal/stream"
)

// KafkaPublisher produces payloads to Kafka, one topic per epoch-scoped
// event kind.
type KafkaPublisher struct {
	producer *kafka.Producer
	logger   *zap.Logger
	done     chan struct{}
}

func NewKafkaPublisher(broker string, logger *zap.Logger) (*KafkaPublisher, error) {
	if broker == "" {
		return nil, fmt.Errorf("kafka broker is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	producer, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers": broker,
	})
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}

	p := &KafkaPublisher{
		producer: producer,
		logger:   logger,
		done:     make(chan struct{}),
	}
	go p.handleDeliveryEvents()
	return p, nil
}

// Publish enqueues one payload for delivery.
func (p *KafkaPublisher) Publish(ctx context.Context, topic stream.Topic, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	name := topic.String()
	msg := &kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &name, Partition: kafka.PartitionAny},
		Value:          payload,
	}
	if err := p.producer.Produce(msg, nil); err != nil {
		return fmt.Errorf("produce to %s: %w", name, err)
	}
	return nil
}

// Close flushes outstanding messages and releases the producer.
func (p *KafkaPublisher) Close() error {
	remaining := p.producer.Flush(10_000)
	p.producer.Close()
	<-p.done
	if remaining > 0 {
		return fmt.Errorf("%d messages were not delivered before close", remaining)
	}
	return nil
}

func (p *KafkaPublisher) handleDeliveryEvents() {
	defer close(p.done)
	for event := range p.producer.Events() {
		switch ev := event.(type) {
		case *kafka.Message:
			if ev.TopicPartition.Error != nil {
				p.logger.Error("delivery failed",
					zap.Stringp("topic", ev.TopicPartition.Topic),
					zap.Error(ev.TopicPartition.Error))
			}
		case kafka.Error:
			p.logger.Error("kafka producer error", zap.String("error", ev.Error()))
		}
	}
}
