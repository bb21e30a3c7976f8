package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
	"github.com/wb-go/wbf/rabbitmq"
	"github.com/wb-go/wbf/retry"

	"notifyprefs/internal/events"
)

type Config struct {
	URL      string
	Exchange string
	Workers  int
}

// Manager connects the event adapter to RabbitMQ. Each event kind gets its
// own durable queue bound to the exchange with the kind as routing key.
// Consumers run until the context passed to Subscribe is cancelled.
type Manager struct {
	cfg       Config
	client    *rabbitmq.RabbitClient
	publisher *rabbitmq.Publisher
	logger    *zerolog.Logger
}

func NewManager(cfg Config, logger *zerolog.Logger) (*Manager, error) {
	if cfg.Exchange == "" {
		cfg.Exchange = "events"
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}

	config := rabbitmq.ClientConfig{
		URL:       cfg.URL,
		Heartbeat: 10 * time.Second,
		ReconnectStrat: retry.Strategy{
			Attempts: 10,
			Delay:    2 * time.Second,
			Backoff:  2,
		},
		ProducingStrat: retry.Strategy{
			Attempts: 3,
			Delay:    100 * time.Millisecond,
			Backoff:  2,
		},
		ConsumingStrat: retry.Strategy{
			Attempts: 3,
			Delay:    100 * time.Millisecond,
			Backoff:  2,
		},
	}

	client, err := rabbitmq.NewClient(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create RabbitMQ client: %w", err)
	}

	if err := client.DeclareExchange(cfg.Exchange, "direct", true, false, false, nil); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	publisher := rabbitmq.NewPublisher(client, cfg.Exchange, "application/json")

	logger.Info().Str("exchange", cfg.Exchange).Msg("RabbitMQ manager initialized")
	return &Manager{
		cfg:       cfg,
		client:    client,
		publisher: publisher,
		logger:    logger,
	}, nil
}

func QueueName(kind events.Kind) string {
	return "notifications." + string(kind)
}

// Subscribe declares the kind's queue and starts consuming it in the background.
func (m *Manager) Subscribe(ctx context.Context, kind events.Kind, handler events.Handler) error {
	queue := QueueName(kind)
	err := m.client.DeclareQueue(
		queue,
		m.cfg.Exchange,
		string(kind),
		true,
		false,
		true,
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", queue, err)
	}

	config := rabbitmq.ConsumerConfig{
		Queue:         queue,
		ConsumerTag:   "notifications-" + string(kind),
		AutoAck:       false,
		Workers:       m.cfg.Workers,
		PrefetchCount: 10,
		Ask: rabbitmq.AskConfig{
			Multiple: false,
		},
		Nack: rabbitmq.NackConfig{
			Multiple: false,
			Requeue:  true,
		},
		Args: nil,
	}

	consumer := rabbitmq.NewConsumer(m.client, config, m.deliveryHandler(kind, handler))

	go func() {
		if err := consumer.Start(ctx); err != nil {
			m.logger.Error().Err(err).Str("queue", queue).Msg("consumer stopped")
		}
	}()

	m.logger.Info().Str("queue", queue).Msg("consumer started")
	return nil
}

// deliveryHandler decodes the envelope; undecodable bodies are acked and dropped.
func (m *Manager) deliveryHandler(kind events.Kind, handler events.Handler) rabbitmq.MessageHandler {
	return func(ctx context.Context, delivery amqp091.Delivery) error {
		env, err := DecodeEnvelope(kind, delivery.Body)
		if err != nil {
			m.logger.Warn().Err(err).Str("kind", string(kind)).Msg("dropping undecodable delivery")
			return nil
		}
		return handler(ctx, env)
	}
}

// DecodeEnvelope parses a delivery body. The routing kind wins over the body's kind.
func DecodeEnvelope(kind events.Kind, body []byte) (events.Envelope, error) {
	var env events.Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return events.Envelope{}, fmt.Errorf("failed to unmarshal envelope: %w", err)
	}
	env.Kind = kind
	return env, nil
}

func (m *Manager) Publish(ctx context.Context, env events.Envelope) error {
	if env.OccurredAt.IsZero() {
		env.OccurredAt = time.Now()
	}
	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := m.publisher.Publish(ctx, body, string(env.Kind)); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	m.logger.Info().Str("kind", string(env.Kind)).Str("user", env.UserID).Msg("published event")
	return nil
}

func (m *Manager) Close() error {
	if m.client != nil {
		return m.client.Close()
	}
	return nil
}
