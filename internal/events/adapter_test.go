package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notifyprefs/internal/logger"
	"notifyprefs/internal/metrics"
	"notifyprefs/internal/models"
	"notifyprefs/internal/storage"
	"notifyprefs/internal/store"
)

// fakeBus is an in-process Subscriber tests emit events through.
type fakeBus struct {
	handlers map[Kind]Handler
}

func newFakeBus() *fakeBus {
	return &fakeBus{handlers: make(map[Kind]Handler)}
}

func (b *fakeBus) Subscribe(_ context.Context, kind Kind, h Handler) error {
	b.handlers[kind] = h
	return nil
}

func (b *fakeBus) Emit(t *testing.T, kind Kind, userID string, payload any) error {
	t.Helper()
	h, ok := b.handlers[kind]
	if !ok {
		return nil
	}
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	return h(context.Background(), Envelope{Kind: kind, UserID: userID, OccurredAt: time.Now(), Payload: raw})
}

type admitted struct {
	UserID string
	Draft  models.Draft
}

type recordingSink struct {
	calls []admitted
	err   error
}

func (s *recordingSink) Admit(_ context.Context, userID string, d models.Draft) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.calls = append(s.calls, admitted{UserID: userID, Draft: d})
	return "id", nil
}

func startAdapter(t *testing.T, sink Sink) (*fakeBus, *metrics.Metrics) {
	t.Helper()
	m := metrics.New(prometheus.NewRegistry())
	bus := newFakeBus()
	require.NoError(t, NewAdapter(sink, "default", logger.Nop(), m).Start(context.Background(), bus))
	assert.Len(t, bus.handlers, len(Kinds()))
	return bus, m
}

func TestAdapterDraftRules(t *testing.T) {
	sink := &recordingSink{}
	bus, m := startAdapter(t, sink)

	require.NoError(t, bus.Emit(t, KindEventRSVP, "alice", RSVPPayload{EventID: "ev-9", EventTitle: "Go meetup", Status: "going", Reminder: true}))
	require.NoError(t, bus.Emit(t, KindReportResolved, "alice", ReportResolvedPayload{ReportID: "r-1", Resolution: "content removed"}))
	require.NoError(t, bus.Emit(t, KindBadgeUnlocked, "", BadgeUnlockedPayload{BadgeName: "Explorer", Rarity: "rare"}))

	require.Len(t, sink.calls, 3)

	rsvp := sink.calls[0]
	assert.Equal(t, "alice", rsvp.UserID)
	assert.Equal(t, models.CategoryReminder, rsvp.Draft.Category)
	assert.Equal(t, models.PriorityMedium, rsvp.Draft.Priority)
	assert.Equal(t, []models.Channel{models.ChannelPush, models.ChannelInApp}, rsvp.Draft.Channels)
	assert.Equal(t, "/events/ev-9", rsvp.Draft.ActionURL)
	assert.Contains(t, rsvp.Draft.Message, `"Go meetup"`)

	report := sink.calls[1]
	assert.Equal(t, models.CategorySystem, report.Draft.Category)
	assert.Equal(t, models.PriorityLow, report.Draft.Priority)
	assert.Equal(t, []models.Channel{models.ChannelInApp}, report.Draft.Channels)
	assert.Contains(t, report.Draft.Message, "content removed")

	badge := sink.calls[2]
	assert.Equal(t, "default", badge.UserID)
	assert.Equal(t, models.CategoryAchievement, badge.Draft.Category)
	assert.Equal(t, models.PriorityHigh, badge.Draft.Priority)
	assert.Equal(t, []models.Channel{models.ChannelPush, models.ChannelInApp}, badge.Draft.Channels)
	assert.Contains(t, badge.Draft.Message, "(rare)")

	for _, c := range sink.calls {
		assert.NoError(t, c.Draft.Validate())
	}
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EventsReceived.WithLabelValues(string(KindBadgeUnlocked), "admitted")))
}

func TestAdapterRSVPConditions(t *testing.T) {
	sink := &recordingSink{}
	bus, m := startAdapter(t, sink)

	require.NoError(t, bus.Emit(t, KindEventRSVP, "a", RSVPPayload{EventID: "1", EventTitle: "x", Status: "going", Reminder: false}))
	require.NoError(t, bus.Emit(t, KindEventRSVP, "a", RSVPPayload{EventID: "1", EventTitle: "x", Status: "maybe", Reminder: true}))
	assert.Empty(t, sink.calls)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.EventsReceived.WithLabelValues(string(KindEventRSVP), "ignored")))
}

func TestAdapterDropsMalformedPayloads(t *testing.T) {
	sink := &recordingSink{}
	bus, m := startAdapter(t, sink)

	assert.NoError(t, bus.Emit(t, KindBadgeUnlocked, "a", map[string]string{"badgeName": "NoRarity"}))
	assert.NoError(t, bus.Emit(t, KindReportResolved, "a", []int{1, 2}))
	assert.NoError(t, bus.Emit(t, KindEventRSVP, "a", nil))

	h := bus.handlers[KindReportResolved]
	assert.NoError(t, h(context.Background(), Envelope{Kind: KindReportResolved}))
	assert.NoError(t, h(context.Background(), Envelope{Kind: "weather.changed", Payload: json.RawMessage(`{}`)}))

	assert.Empty(t, sink.calls)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.EventsReceived.WithLabelValues(string(KindReportResolved), "invalid")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EventsReceived.WithLabelValues("weather.changed", "unknown")))
}

func TestAdapterSinkErrors(t *testing.T) {
	sink := &recordingSink{err: models.NewValidationError("title", "bad")}
	bus, _ := startAdapter(t, sink)
	assert.NoError(t, bus.Emit(t, KindBadgeUnlocked, "a", BadgeUnlockedPayload{BadgeName: "b", Rarity: "r"}))

	boom := errors.New("redis down")
	sink.err = boom
	err := bus.Emit(t, KindBadgeUnlocked, "a", BadgeUnlockedPayload{BadgeName: "b", Rarity: "r"})
	assert.ErrorIs(t, err, boom)
}

func TestAdapterAgainstRegistry(t *testing.T) {
	ctx := context.Background()
	reg := store.NewRegistry(storage.NewMemoryStorage(), store.RegistryConfig{Namespace: "t", Location: time.UTC}, logger.Nop(), nil)
	bus, _ := startAdapter(t, reg)

	require.NoError(t, bus.Emit(t, KindBadgeUnlocked, "gina", BadgeUnlockedPayload{BadgeName: "Streak", Rarity: "epic"}))
	require.NoError(t, bus.Emit(t, KindReportResolved, "gina", ReportResolvedPayload{ReportID: "r", Resolution: "warned"}))

	s, err := reg.Get(ctx, "gina")
	require.NoError(t, err)

	got := s.FilteredNotifications(models.Filter{})
	require.Len(t, got, 2)
	assert.Equal(t, models.CategorySystem, got[0].Category, "latest event first")
	assert.Equal(t, models.CategoryAchievement, got[1].Category)
	assert.Equal(t, 2, s.UnreadCount())
}
