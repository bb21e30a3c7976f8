package worker

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"notifyprefs/internal/events"
)

// Transport is an event subscription that holds a connection.
type Transport interface {
	events.Subscriber
	io.Closer
}

// Processor runs the event adapter against a transport until stopped.
type Processor struct {
	adapter   *events.Adapter
	transport Transport
	logger    *zerolog.Logger
	cancel    context.CancelFunc
}

func NewProcessor(adapter *events.Adapter, transport Transport, logger *zerolog.Logger) *Processor {
	return &Processor{
		adapter:   adapter,
		transport: transport,
		logger:    logger,
	}
}

func (p *Processor) Start(ctx context.Context) error {
	ctx, p.cancel = context.WithCancel(ctx)
	if err := p.adapter.Start(ctx, p.transport); err != nil {
		p.cancel()
		return fmt.Errorf("failed to start consumer: %w", err)
	}

	p.logger.Info().Msg("event processor started")
	return nil
}

// Stop cancels the consumers and closes the transport.
func (p *Processor) Stop() error {
	if p.cancel != nil {
		p.cancel()
	}
	if err := p.transport.Close(); err != nil {
		return fmt.Errorf("failed to close transport: %w", err)
	}
	p.logger.Info().Msg("event processor stopped")
	return nil
}
