// Package events publishes order lifecycle notifications to the message
// broker for downstream consumers (fulfillment, notifications). Publishing is
// best effort: a broker outage never blocks or fails a webhook delivery.
package events

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/streadway/amqp"
)

const exchange = "storefront.orders"

type OrderEvent struct {
	ID         uuid.UUID `json:"id"`
	Type       string    `json:"type"`
	OrderID    string    `json:"orderId"`
	UserID     string    `json:"userId"`
	TotalCents int64     `json:"totalCents"`
	Currency   string    `json:"currency"`
	OccurredAt time.Time `json:"occurredAt"`
}

type Publisher struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	logger  *log.Logger
}

// NewPublisher dials the broker and declares the topic exchange.
func NewPublisher(url string, logger *log.Logger) (*Publisher, error) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial amqp: %w", err)
	}
	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := channel.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	return &Publisher{conn: conn, channel: channel, logger: logger}, nil
}

func (p *Publisher) Close() {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
}

// Publish sends the event with persistent delivery. The routing key is the
// event type, e.g. "order.paid".
func (p *Publisher) Publish(event OrderEvent) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	err = p.channel.Publish(exchange, event.Type, false, false, amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		MessageId:    event.ID.String(),
		Timestamp:    event.OccurredAt,
		Headers: amqp.Table{
			"order_id": event.OrderID,
			"user_id":  event.UserID,
		},
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", event.Type, err)
	}

	p.logger.Printf("events: published %s order=%s", event.Type, event.OrderID)
	return nil
}
