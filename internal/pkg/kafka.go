package pkg

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"
)

type KafkaProducer struct {
	writer *kafka.Writer
	topic  string
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// Message 待投递的一条消息
type Message struct {
	Key   string
	Value []byte
}

func NewKafkaProducer(cfg KafkaConfig) *KafkaProducer {
	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: 50 * time.Millisecond,
		Async:        false,
	}
	return &KafkaProducer{writer: w, topic: cfg.Topic}
}

func (p *KafkaProducer) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}

// Send 同一聚合的消息使用相同 key，保证分区内有序
func (p *KafkaProducer) Send(ctx context.Context, msgs ...Message) error {
	batch := make([]kafka.Message, 0, len(msgs))
	for _, m := range msgs {
		batch = append(batch, kafka.Message{Key: []byte(m.Key), Value: m.Value})
	}
	return p.writer.WriteMessages(ctx, batch...)
}
