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
	"go.uber.org/zap"
)

// AlertLogFile is the file, inside the consumer's directory, alerts are
// appended to.
const AlertLogFile = "health_alerts.log"

// Consumer drains the health.alert queue into a single-line log file.
type Consumer struct {
	URL string
	Dir string
	Log *zap.Logger
}

func NewConsumer(url, dir string, log *zap.Logger) *Consumer {
	return &Consumer{URL: url, Dir: dir, Log: log}
}

// Run keeps a consumer attached to the broker, reconnecting with
// exponential backoff, until ctx is cancelled.
func (c *Consumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(c.URL)
		if err != nil {
			c.Log.Warn("alert-consumer: dial failed", zap.Error(err), zap.Duration("retry_in", backoff))
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = c.consume(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.Log.Warn("alert-consumer: consume loop ended, reconnecting", zap.Error(err))
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func (c *Consumer) consume(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		c.Log.Warn("alert-consumer: set QoS failed", zap.Error(err))
	}
	if err := declareAlertQueue(ch); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.Consume(HealthAlertQueue, "", false, false, false, false, nil)
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
			if err := HandleMessage(c.Dir, d.Body); err != nil {
				c.Log.Error("alert-consumer: handle message failed", zap.Error(err))
				_ = d.Nack(false, false) // reject without requeue to avoid tight loops
				continue
			}
			_ = d.Ack(false)
		}
	}
}

// HandleMessage decodes one alert event and appends it to dir/AlertLogFile.
func HandleMessage(dir string, body []byte) error {
	var ev HealthAlertEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if ev.AlertID == "" || ev.UserID == "" {
		return errors.New("alert_id and user_id required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	f, err := os.OpenFile(filepath.Join(dir, AlertLogFile), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(FormatAlert(ev)); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

// FormatAlert renders ev as one log line.
func FormatAlert(ev HealthAlertEvent) string {
	contacts := make([]string, 0, len(ev.Contacts))
	for _, c := range ev.Contacts {
		contacts = append(contacts, fmt.Sprintf("%s<%s:%s>", c.Name, c.PreferredContactMethod, c.Phone))
	}
	return fmt.Sprintf("[%s] Health alert | alert_id=%s | user_id=%s | user=%q | severity=%s | triggered_by=%s | title=%q | contacts=[%s]\n",
		ev.CreatedAt, ev.AlertID, ev.UserID, ev.UserName, ev.Severity, ev.TriggeredBy, ev.Title, strings.Join(contacts, ","))
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
