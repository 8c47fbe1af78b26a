// Package events publishes post lifecycle notifications to Kafka.
// Publishing is best-effort: the request that triggered the event never
// fails because the broker is unavailable.
package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"
)

const (
	PostCreated = "post.created"
	PostDeleted = "post.deleted"
)

type PostEvent struct {
	Type   string `json:"type"`
	PostID uint64 `json:"post_id"`
	Slug   string `json:"slug"`
	Author string `json:"author"`
}

type Producer struct {
	writer *kafka.Writer
}

func NewProducer(brokers []string, topic string) *Producer {
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		Async:        true, // 不阻塞请求路径
	}
	return &Producer{writer: w}
}

// Publish sends one post event keyed by post id. Safe on a nil producer so
// deployments without Kafka simply skip eventing.
func (p *Producer) Publish(ctx context.Context, ev PostEvent) error {
	if p == nil || p.writer == nil {
		return nil
	}
	value, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(fmt.Sprintf("%d", ev.PostID)),
		Value: value,
	})
}

func (p *Producer) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
