package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"tricy/pkg/logger"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

var ErrPublisherClosed = errors.New("publisher is closed")

type RabbitMQConfig struct {
	URL      string
	Exchange string
	AppID    string
}

// Publisher sends JSON events to a durable topic exchange. A single channel
// is shared and guarded by a mutex since amqp channels are not safe for
// concurrent publishing.
type Publisher struct {
	config *RabbitMQConfig
	logger *logger.Logger

	mu      sync.Mutex
	conn    *amqp.Connection
	channel *amqp.Channel
	closed  bool
}

func NewPublisher(config *RabbitMQConfig, log *logger.Logger) (*Publisher, error) {
	if log == nil {
		log = logger.NewNop()
	}

	p := &Publisher{
		config: config,
		logger: log.WithField("component", "rabbitmq"),
	}

	if err := p.connect(); err != nil {
		return nil, err
	}

	return p, nil
}

func (p *Publisher) connect() error {
	conn, err := amqp.Dial(p.config.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("failed to open channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		p.config.Exchange,
		amqp.ExchangeTopic,
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf("failed to declare exchange %s: %w", p.config.Exchange, err)
	}

	p.conn = conn
	p.channel = ch
	p.logger.WithField("exchange", p.config.Exchange).Info("Connected to RabbitMQ")
	return nil
}

// PublishJSON encodes msg and publishes it under routingKey. A dropped
// connection is re-established once before giving up.
func (p *Publisher) PublishJSON(ctx context.Context, routingKey string, msg any) error {
	publishing, err := newPublishing(msg, p.config.AppID, time.Now())
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrPublisherClosed
	}

	if p.channel == nil || p.channel.IsClosed() {
		p.logger.Warn("RabbitMQ channel closed, reconnecting")
		p.closeLocked()
		if err := p.connect(); err != nil {
			return err
		}
	}

	if err := p.channel.PublishWithContext(ctx, p.config.Exchange, routingKey, false, false, publishing); err != nil {
		return fmt.Errorf("failed to publish %s: %w", routingKey, err)
	}

	p.logger.WithFields(map[string]interface{}{
		"routing_key": routingKey,
		"message_id":  publishing.MessageId,
	}).Debug("Message published")
	return nil
}

func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.closed = true
	return p.closeLocked()
}

func (p *Publisher) closeLocked() error {
	var errs []error
	if p.channel != nil {
		if err := p.channel.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
			errs = append(errs, err)
		}
		p.channel = nil
	}
	if p.conn != nil {
		if err := p.conn.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
			errs = append(errs, err)
		}
		p.conn = nil
	}
	return errors.Join(errs...)
}

func newPublishing(msg any, appID string, now time.Time) (amqp.Publishing, error) {
	body, err := json.Marshal(msg)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("failed to encode message: %w", err)
	}

	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    uuid.NewString(),
		Timestamp:    now.UTC(),
		AppId:        appID,
		Body:         body,
	}, nil
}
