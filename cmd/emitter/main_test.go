package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notifyprefs/internal/events"
	"notifyprefs/internal/logger"
	"notifyprefs/internal/models"
)

type countSink struct{ n int }

func (s *countSink) Admit(_ context.Context, _ string, d models.Draft) (string, error) {
	if err := d.Validate(); err != nil {
		return "", err
	}
	s.n++
	return "id", nil
}

func TestSamplesCoverEveryKind(t *testing.T) {
	for _, kind := range events.Kinds() {
		env, err := buildEnvelope(kind, "u1", "")
		require.NoError(t, err, kind)
		assert.Equal(t, kind, env.Kind)
		assert.NotEmpty(t, env.Payload)

		// Every sample must produce a notification.
		sink := &countSink{}
		a := events.NewAdapter(sink, "default", logger.Nop(), nil)
		require.NoError(t, a.Handle(context.Background(), env))
		assert.Equal(t, 1, sink.n, kind)
	}
}

func TestBuildEnvelopeRawPayload(t *testing.T) {
	env, err := buildEnvelope(events.KindReportResolved, "", `{"reportId":"r","resolution":"ok"}`)
	require.NoError(t, err)
	assert.JSONEq(t, `{"reportId":"r","resolution":"ok"}`, string(env.Payload))

	_, err = buildEnvelope(events.KindReportResolved, "", `{nope`)
	assert.Error(t, err)

	_, err = buildEnvelope("weather.changed", "", "")
	assert.ErrorContains(t, err, "known kinds")
}
