package queue

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// Publisher publishes events to RabbitMQ.  It dials per message so a
// broker outage never leaves a broken connection behind; errors are
// logged and returned so callers can ignore them without interrupting the
// request flow.
type Publisher struct {
	url         string
	dialTimeout time.Duration
	log         logrus.FieldLogger
}

// NewPublisher returns a Publisher for the given AMQP URL.
func NewPublisher(url string, log logrus.FieldLogger) *Publisher {
	return &Publisher{url: url, dialTimeout: 2 * time.Second, log: log}
}

// Publish sends ev to EventsQueue as a persistent JSON message.
func (p *Publisher) Publish(ctx context.Context, ev Event) error {
	conn, err := amqp.DialConfig(p.url, amqp.Config{Dial: amqp.DefaultDial(p.dialTimeout)})
	if err != nil {
		p.log.WithError(err).Warn("rabbitmq: dial failed")
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		p.log.WithError(err).Warn("rabbitmq: channel open failed")
		return err
	}
	defer func() { _ = ch.Close() }()

	// Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(EventsQueue, true, false, false, false, nil); err != nil {
		p.log.WithError(err).Warn("rabbitmq: queue declare failed")
		return err
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Type:         ev.Type,
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", EventsQueue, false, false, pub); err != nil {
		p.log.WithError(err).Warn("rabbitmq: publish failed")
		return err
	}
	return nil
}

// NopPublisher drops every event.  It is used when no broker is configured.
type NopPublisher struct{}

// Publish implements the publisher contract and does nothing.
func (NopPublisher) Publish(context.Context, Event) error { return nil }
