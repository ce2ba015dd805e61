package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/example/charcoalshop/pkg/config"
	"github.com/example/charcoalshop/pkg/shop"
)

// Envelope is the JSON value written for every order event. The message key
// is the order number so one order's events stay in partition order.
type Envelope struct {
	ID            string    `json:"id"`
	Type          string    `json:"type"`
	OrderNumber   string    `json:"orderNumber"`
	UserID        string    `json:"userId"`
	OrderStatus   string    `json:"orderStatus"`
	PaymentStatus string    `json:"paymentStatus"`
	Total         int64     `json:"total"`
	OccurredAt    time.Time `json:"occurredAt"`
}

func Encode(event shop.OrderEvent) (kafka.Message, error) {
	occurred := event.OccurredAt
	if occurred.IsZero() {
		occurred = time.Now()
	}
	data, err := json.Marshal(Envelope{
		ID:            uuid.NewString(),
		Type:          event.Type,
		OrderNumber:   event.OrderNumber,
		UserID:        event.UserID,
		OrderStatus:   string(event.OrderStatus),
		PaymentStatus: string(event.PaymentStatus),
		Total:         event.Total,
		OccurredAt:    occurred.UTC(),
	})
	if err != nil {
		return kafka.Message{}, err
	}
	return kafka.Message{
		Key:     []byte(event.OrderNumber),
		Value:   data,
		Time:    occurred.UTC(),
		Headers: []kafka.Header{{Key: "type", Value: []byte(event.Type)}},
	}, nil
}

type KafkaPublisher struct {
	writer *kafka.Writer
	logger *zap.Logger
}

// NewKafkaPublisher returns an async writer; delivery failures are reported
// through the completion callback and logged.
func NewKafkaPublisher(cfg *config.KafkaConfig, logger *zap.Logger) *KafkaPublisher {
	logger = logger.Named("events")
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		Async:        true,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				logger.Warn("Failed to deliver order events", zap.Int("count", len(messages)), zap.Error(err))
			}
		},
	}
	return &KafkaPublisher{writer: writer, logger: logger}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event shop.OrderEvent) error {
	msg, err := Encode(event)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, msg)
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// LogPublisher stands in when no brokers are configured.
type LogPublisher struct {
	Logger *zap.Logger
}

func (p LogPublisher) Publish(_ context.Context, event shop.OrderEvent) error {
	p.Logger.Debug("Order event",
		zap.String("type", event.Type),
		zap.String("order_number", event.OrderNumber),
		zap.String("order_status", string(event.OrderStatus)))
	return nil
}

func (p LogPublisher) Close() error { return nil }

type Publisher interface {
	shop.EventPublisher
	Close() error
}

// New picks Kafka when brokers are configured.
func New(cfg *config.KafkaConfig, logger *zap.Logger) Publisher {
	if len(cfg.Brokers) == 0 {
		return LogPublisher{Logger: logger.Named("events")}
	}
	return NewKafkaPublisher(cfg, logger)
}
