package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// AuditFile is the file, inside the consumer's log directory, that every
// event is appended to.
const AuditFile = "parking.log"

// Consumer reads EventsQueue and appends each event to an audit log file
// as a single human-friendly line.
type Consumer struct {
	url    string
	logDir string
	log    logrus.FieldLogger
}

// NewConsumer returns a Consumer writing to logDir/parking.log.
func NewConsumer(url, logDir string, log logrus.FieldLogger) *Consumer {
	return &Consumer{url: url, logDir: logDir, log: log}
}

// Run connects to RabbitMQ and consumes until ctx is cancelled.  Broker
// failures trigger a reconnect with exponential backoff capped at 30s.
func (c *Consumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(c.url)
		if err != nil {
			c.log.WithError(err).Warnf("audit-consumer: failed to dial broker; retrying in %s", backoff)
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = c.consumeLoop(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.log.WithError(err).Warn("audit-consumer: consume loop ended; reconnecting")
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func (c *Consumer) consumeLoop(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		c.log.WithError(err).Warn("audit-consumer: set QoS failed")
	}
	if _, err := ch.QueueDeclare(EventsQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.Consume(EventsQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := c.handleMessage(d.Body); err != nil {
				c.log.WithError(err).Error("audit-consumer: handle message failed")
				_ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
				continue
			}
			_ = d.Ack(false)
		}
	}
}

func (c *Consumer) handleMessage(body []byte) error {
	var ev Event
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if ev.Type == "" {
		return errors.New("event without type")
	}
	if err := os.MkdirAll(c.logDir, 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(c.logDir, AuditFile), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(FormatEvent(ev) + "\n"); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

// FormatEvent renders an event as one audit line, skipping empty fields.
func FormatEvent(ev Event) string {
	parts := []string{fmt.Sprintf("[%s] %s", ev.OccurredAt, ev.Type), fmt.Sprintf("user_id=%d", ev.UserID)}
	if ev.ReservationID != 0 {
		parts = append(parts, fmt.Sprintf("reservation_id=%d", ev.ReservationID))
	}
	if ev.LotID != 0 {
		parts = append(parts, fmt.Sprintf("lot_id=%d", ev.LotID))
	}
	if ev.LotName != "" {
		parts = append(parts, fmt.Sprintf("lot=%q", ev.LotName))
	}
	if ev.SpotNumber != "" {
		parts = append(parts, "spot="+ev.SpotNumber)
	}
	if ev.Amount != "" {
		parts = append(parts, "amount="+ev.Amount)
	}
	if ev.ReferenceID != "" {
		parts = append(parts, "ref="+ev.ReferenceID)
	}
	return strings.Join(parts, " | ")
}
