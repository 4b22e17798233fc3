package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/contracts"
)

var ErrEmptyCart = errors.New("cart is empty")

type Sequencer interface {
	NextSequence(ctx context.Context, partitionKey string) (int64, error)
}

type EventMeta struct {
	CorrelationID string
	CausationID   string
	PartitionKey  string
}

// channel is the part of *amqp.Channel the publisher needs.
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

type Publisher struct {
	ch       channel
	seq      Sequencer
	producer string
	log      *zap.Logger
}

type PublisherOptions struct {
	Producer string
	Logger   *zap.Logger
}

func NewPublisher(conn *amqp.Connection, seq Sequencer, opts PublisherOptions) (*Publisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := declareEventsExchange(ch); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("declare events exchange: %w", err)
	}

	return newPublisher(ch, seq, opts), nil
}

func newPublisher(ch channel, seq Sequencer, opts PublisherOptions) *Publisher {
	producer := opts.Producer
	if producer == "" {
		producer = contracts.StorefrontProducer
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Publisher{ch: ch, seq: seq, producer: producer, log: logger.Named("events")}
}

func (p *Publisher) Close() error {
	return p.ch.Close()
}

// PublishCartCheckedOut reserves the next sequence for the partition and
// publishes the enveloped event.
func (p *Publisher) PublishCartCheckedOut(ctx context.Context, meta EventMeta, c contracts.Checkout) error {
	if len(c.Items) == 0 {
		return ErrEmptyCart
	}
	if meta.PartitionKey == "" {
		meta.PartitionKey = c.SessionID
	}

	seq, err := p.seq.NextSequence(ctx, meta.PartitionKey)
	if err != nil {
		return fmt.Errorf("reserve sequence: %w", err)
	}

	env := contracts.BuildCartCheckedOutEvent(c, contracts.EnvelopeOptions{
		PartitionKey:  meta.PartitionKey,
		Sequence:      seq,
		Producer:      p.producer,
		CorrelationID: meta.CorrelationID,
		CausationID:   meta.CausationID,
	})
	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal CartCheckedOut envelope: %w", err)
	}

	if err := p.publishJSON(ctx, CartCheckedOutRoutingKey, env.EventID, env.CorrelationID, body); err != nil {
		return fmt.Errorf("publish CartCheckedOut: %w", err)
	}

	p.log.Info("published event",
		zap.String("event", env.EventName),
		zap.String("event_id", env.EventID),
		zap.String("partition_key", env.PartitionKey),
		zap.Int64("sequence", env.Sequence),
	)
	return nil
}

func (p *Publisher) publishJSON(ctx context.Context, routingKey, messageID, correlationID string, body []byte) error {
	pubCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return p.ch.PublishWithContext(
		pubCtx,
		EventsExchange,
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:   "application/json",
			DeliveryMode:  amqp.Persistent,
			MessageId:     messageID,
			CorrelationId: correlationID,
			Timestamp:     time.Now().UTC(),
			Body:          body,
		},
	)
}

// LogPublisher stands in for the broker when events are disabled. It builds
// the same envelope and writes it to the log.
type LogPublisher struct {
	log *zap.Logger
}

func NewLogPublisher(logger *zap.Logger) *LogPublisher {
	return &LogPublisher{log: logger.Named("events")}
}

func (p *LogPublisher) PublishCartCheckedOut(_ context.Context, meta EventMeta, c contracts.Checkout) error {
	if len(c.Items) == 0 {
		return ErrEmptyCart
	}
	env := contracts.BuildCartCheckedOutEvent(c, contracts.EnvelopeOptions{
		PartitionKey:  meta.PartitionKey,
		CorrelationID: meta.CorrelationID,
		CausationID:   meta.CausationID,
	})
	p.log.Info("event publishing disabled, dropping event",
		zap.String("event", env.EventName),
		zap.String("event_id", env.EventID),
		zap.String("cart_id", env.Payload.CartID),
		zap.Int("items", len(env.Payload.Items)),
		zap.Float64("total", env.Payload.TotalAmount),
	)
	return nil
}

func (p *LogPublisher) Close() error { return nil }
