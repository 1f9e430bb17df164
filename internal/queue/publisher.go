package queue

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Publisher sends alert events to RabbitMQ.  It dials per publish so a
// broker outage never holds a connection hostage; alerts are rare.
type Publisher struct {
	URL string
	Log *zap.Logger
}

func NewPublisher(url string, log *zap.Logger) *Publisher {
	return &Publisher{URL: url, Log: log}
}

// PublishHealthAlert publishes ev to the health.alert queue as a persistent
// JSON message.  Errors are logged and returned so the caller can ignore
// them without interrupting the request.
func (p *Publisher) PublishHealthAlert(ctx context.Context, ev HealthAlertEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		p.Log.Error("rabbitmq: marshal event failed", zap.Error(err))
		return err
	}

	conn, err := amqp.Dial(p.URL)
	if err != nil {
		p.Log.Warn("rabbitmq: dial failed", zap.Error(err))
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		p.Log.Warn("rabbitmq: channel open failed", zap.Error(err))
		return err
	}
	defer func() { _ = ch.Close() }()

	if err := declareAlertQueue(ch); err != nil {
		p.Log.Warn("rabbitmq: queue declare failed", zap.Error(err))
		return err
	}

	if err := ch.PublishWithContext(ctx,
		"",               // default exchange
		HealthAlertQueue, // routing key = queue name
		false,            // mandatory
		false,            // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		},
	); err != nil {
		p.Log.Warn("rabbitmq: publish failed", zap.Error(err))
		return err
	}
	p.Log.Info("health alert published", zap.String("alert_id", ev.AlertID), zap.Int("contacts", len(ev.Contacts)))
	return nil
}

func declareAlertQueue(ch *amqp.Channel) error {
	_, err := ch.QueueDeclare(HealthAlertQueue, true, false, false, false, nil)
	return err
}
