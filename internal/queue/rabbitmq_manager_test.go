package queue

import (
	"context"
	"testing"

	"github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notifyprefs/internal/events"
	"notifyprefs/internal/logger"
)

func TestDecodeEnvelope(t *testing.T) {
	env, err := DecodeEnvelope(events.KindBadgeUnlocked, []byte(`{"kind":"event.rsvp","userId":"u1","payload":{"badgeName":"b"}}`))
	require.NoError(t, err)
	assert.Equal(t, events.KindBadgeUnlocked, env.Kind)
	assert.Equal(t, "u1", env.UserID)
	assert.JSONEq(t, `{"badgeName":"b"}`, string(env.Payload))

	_, err = DecodeEnvelope(events.KindBadgeUnlocked, []byte(`not json`))
	assert.Error(t, err)
}

func TestDeliveryHandler(t *testing.T) {
	m := &Manager{logger: logger.Nop()}

	var got []events.Envelope
	h := m.deliveryHandler(events.KindReportResolved, func(_ context.Context, env events.Envelope) error {
		got = append(got, env)
		return nil
	})

	require.NoError(t, h(context.Background(), amqp091.Delivery{Body: []byte(`{"userId":"u2","payload":{}}`)}))
	require.NoError(t, h(context.Background(), amqp091.Delivery{Body: []byte(`{{`)}))

	require.Len(t, got, 1)
	assert.Equal(t, events.KindReportResolved, got[0].Kind)
	assert.Equal(t, "u2", got[0].UserID)
}

func TestQueueName(t *testing.T) {
	assert.Equal(t, "notifications.event.rsvp", QueueName(events.KindEventRSVP))
}
