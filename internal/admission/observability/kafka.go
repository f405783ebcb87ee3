package observability

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"marketgate/internal/platform/kafka/producer"
)

// ErrQueueFull is returned by Emit when the publish buffer is saturated.
var ErrQueueFull = errors.New("audit queue is full")

const (
	defaultQueueSize = 1024
	drainTimeout     = 5 * time.Second
)

// MessageProducer is satisfied by *producer.Producer.
type MessageProducer interface {
	Produce(ctx context.Context, msg *producer.Message) error
}

// KafkaPublisher buffers events and publishes them from Run so request
// handling never waits on the broker.
type KafkaPublisher struct {
	producer MessageProducer
	topic    string
	logger   *slog.Logger
	queue    chan Event
}

type KafkaOption func(*KafkaPublisher)

func WithKafkaLogger(logger *slog.Logger) KafkaOption {
	return func(p *KafkaPublisher) {
		p.logger = logger
	}
}

func WithQueueSize(n int) KafkaOption {
	return func(p *KafkaPublisher) {
		if n > 0 {
			p.queue = make(chan Event, n)
		}
	}
}

func NewKafkaPublisher(prod MessageProducer, topic string, opts ...KafkaOption) (*KafkaPublisher, error) {
	if prod == nil {
		return nil, errors.New("kafka producer is required")
	}
	if topic == "" {
		return nil, errors.New("audit topic is required")
	}
	p := &KafkaPublisher{
		producer: prod,
		topic:    topic,
		queue:    make(chan Event, defaultQueueSize),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Emit enqueues event without blocking.
func (p *KafkaPublisher) Emit(_ context.Context, event Event) error {
	select {
	case p.queue <- event:
		return nil
	default:
		return ErrQueueFull
	}
}

// Run publishes queued events until ctx is cancelled, then drains what is left.
func (p *KafkaPublisher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			p.drain()
			return nil
		case event := <-p.queue:
			p.publish(ctx, event)
		}
	}
}

func (p *KafkaPublisher) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()
	for {
		select {
		case event := <-p.queue:
			p.publish(ctx, event)
		default:
			return
		}
	}
}

func (p *KafkaPublisher) publish(ctx context.Context, event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		p.warn("failed to encode audit event", event, err)
		return
	}
	msg := &producer.Message{
		Topic: p.topic,
		Key:   []byte(event.Subject), // keeps one address's events ordered
		Value: payload,
		Headers: map[string]string{
			"event_type": event.Action,
			"decision":   event.Decision,
		},
	}
	if err := p.producer.Produce(ctx, msg); err != nil {
		p.warn("failed to publish audit event", event, err)
	}
}

func (p *KafkaPublisher) warn(msg string, event Event, err error) {
	if p.logger != nil {
		p.logger.Warn(msg, "event", event.Action, "error", err)
	}
}
