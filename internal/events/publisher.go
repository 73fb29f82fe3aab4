package events

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/segmentio/kafka-go"

	"pawkie/internal/models"
)

const (
	EventTypeOrderCreated       = "order.created"
	EventTypeOrderStatusChanged = "order.status_changed"
)

// OrderEvent is the message body written to the orders topic.
type OrderEvent struct {
	Type      string    `json:"type"`
	OrderID   string    `json:"orderId"`
	UserEmail string    `json:"userEmail"`
	Data      any       `json:"data,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// OrderPublisher emits order lifecycle events. Publishing is best effort:
// callers log failures but never fail the request over them.
type OrderPublisher interface {
	OrderCreated(ctx context.Context, order *models.Order) error
	OrderStatusChanged(ctx context.Context, orderID, newStatus string) error
}

// KafkaPublisher writes order events to Kafka, keyed by order id so one
// order's events stay in partition order.
type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			WriteTimeout: 10 * time.Second,
			RequiredAcks: kafka.RequireOne,
		},
	}
}

func (p *KafkaPublisher) OrderCreated(ctx context.Context, order *models.Order) error {
	return p.publish(ctx, OrderEvent{
		Type:      EventTypeOrderCreated,
		OrderID:   order.ID.Hex(),
		UserEmail: order.UserEmail,
		Data:      order,
		Timestamp: time.Now(),
	})
}

func (p *KafkaPublisher) OrderStatusChanged(ctx context.Context, orderID, newStatus string) error {
	return p.publish(ctx, OrderEvent{
		Type:      EventTypeOrderStatusChanged,
		OrderID:   orderID,
		Data:      map[string]string{"orderStatus": newStatus},
		Timestamp: time.Now(),
	})
}

func (p *KafkaPublisher) publish(ctx context.Context, event OrderEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Key:   []byte(event.OrderID),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		log.Println("[EVENTS] [ERROR] publish failed:", err)
		return err
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NoopPublisher is used when no brokers are configured.
type NoopPublisher struct{}

func (NoopPublisher) OrderCreated(ctx context.Context, order *models.Order) error {
	return nil
}

func (NoopPublisher) OrderStatusChanged(ctx context.Context, orderID, newStatus string) error {
	return nil
}
