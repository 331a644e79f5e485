package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/streadway/amqp"
)

// Publisher fans order and payment events out on a topic exchange. Every
// publish is fire-and-forget from the caller's point of view; consumers are
// dashboards and webhook relays.
type Publisher struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	log      *logrus.Entry
}

type envelope struct {
	Pattern string `json:"pattern"`
	Data    any    `json:"data"`
}

func NewPublisher(amqpURL, exchange string) (*Publisher, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, fmt.Errorf("connect to RabbitMQ: %w", err)
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

	return &Publisher{
		conn:     conn,
		channel:  channel,
		exchange: exchange,
		log:      logrus.WithField("component", "rabbitmq"),
	}, nil
}

func (p *Publisher) Publish(ctx context.Context, routingKey string, data any) error {
	body, err := json.Marshal(envelope{Pattern: routingKey, Data: data})
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	p.log.WithFields(logrus.Fields{
		"routingKey": routingKey,
		"exchange":   p.exchange,
	}).Debug("publishing event")

	err = p.channel.Publish(p.exchange, routingKey, false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
	})
	if err != nil {
		return fmt.Errorf("publish event: %w", err)
	}
	return nil
}

func (p *Publisher) Close() {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
}

// LogPublisher stands in for the broker when RABBITMQ_URL is unset. Events
// still reach the logs so local runs stay observable.
type LogPublisher struct{}

func (LogPublisher) Publish(_ context.Context, routingKey string, data any) error {
	logrus.WithFields(logrus.Fields{
		"routingKey": routingKey,
		"data":       data,
	}).Info("event (no broker configured)")
	return nil
}
