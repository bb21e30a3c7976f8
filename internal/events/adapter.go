package events

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"notifyprefs/internal/metrics"
	"notifyprefs/internal/models"
)

// Sink receives the drafts built from events.
type Sink interface {
	Admit(ctx context.Context, userID string, draft models.Draft) (string, error)
}

// rule builds the draft for one event kind. ok=false means the event is ignored.
type rule func(payload json.RawMessage) (draft models.Draft, ok bool, err error)

var rules = map[Kind]rule{
	KindEventRSVP:      rsvpDraft,
	KindReportResolved: reportResolvedDraft,
	KindBadgeUnlocked:  badgeUnlockedDraft,
}

type Adapter struct {
	sink        Sink
	defaultUser string
	logger      *zerolog.Logger
	metrics     *metrics.Metrics
}

func NewAdapter(sink Sink, defaultUser string, logger *zerolog.Logger, m *metrics.Metrics) *Adapter {
	return &Adapter{
		sink:        sink,
		defaultUser: defaultUser,
		logger:      logger,
		metrics:     m,
	}
}

// Start subscribes the adapter to every known event kind.
func (a *Adapter) Start(ctx context.Context, sub Subscriber) error {
	for _, kind := range Kinds() {
		if err := sub.Subscribe(ctx, kind, a.Handle); err != nil {
			return fmt.Errorf("failed to subscribe to %s: %w", kind, err)
		}
	}
	a.logger.Info().Int("kinds", len(rules)).Msg("event adapter subscribed")
	return nil
}

// Handle processes one envelope. Malformed events are logged and dropped;
// only sink failures that are not validation errors are returned.
func (a *Adapter) Handle(ctx context.Context, env Envelope) error {
	log := a.logger.With().Str("kind", string(env.Kind)).Logger()

	build, ok := rules[env.Kind]
	if !ok {
		a.count(env.Kind, "unknown")
		log.Warn().Msg("dropping event of unknown kind")
		return nil
	}

	draft, ok, err := build(env.Payload)
	if err != nil {
		a.count(env.Kind, "invalid")
		log.Warn().Err(err).Msg("dropping malformed event")
		return nil
	}
	if !ok {
		a.count(env.Kind, "ignored")
		log.Debug().Msg("event does not produce a notification")
		return nil
	}

	userID := env.UserID
	if userID == "" {
		userID = a.defaultUser
	}

	id, err := a.sink.Admit(ctx, userID, draft)
	if err != nil {
		if models.IsValidation(err) {
			a.count(env.Kind, "invalid")
			log.Warn().Err(err).Str("user", userID).Msg("dropping event rejected by store")
			return nil
		}
		a.count(env.Kind, "failed")
		return fmt.Errorf("failed to admit %s for %s: %w", env.Kind, userID, err)
	}

	a.count(env.Kind, "admitted")
	log.Info().Str("user", userID).Str("notification", id).Msg("notification created from event")
	return nil
}

func (a *Adapter) count(kind Kind, outcome string) {
	if a.metrics != nil {
		a.metrics.EventsReceived.WithLabelValues(string(kind), outcome).Inc()
	}
}

func decode(payload json.RawMessage, v any) error {
	if len(bytes.TrimSpace(payload)) == 0 {
		return models.NewValidationError("payload", "payload is required")
	}
	if err := json.Unmarshal(payload, v); err != nil {
		return models.NewValidationError("payload", "malformed payload: %v", err)
	}
	return models.ValidateStruct(v)
}

func rsvpDraft(payload json.RawMessage) (models.Draft, bool, error) {
	var p RSVPPayload
	if err := decode(payload, &p); err != nil {
		return models.Draft{}, false, err
	}
	if p.Status != RSVPGoing || !p.Reminder {
		return models.Draft{}, false, nil
	}
	return models.Draft{
		Title:       "Event reminder",
		Message:     fmt.Sprintf("You signed up for %q. We'll remind you before the event.", p.EventTitle),
		Category:    models.CategoryReminder,
		Priority:    models.PriorityMedium,
		Channels:    []models.Channel{models.ChannelPush, models.ChannelInApp},
		ActionURL:   "/events/" + p.EventID,
		ActionLabel: "View event",
	}, true, nil
}

func reportResolvedDraft(payload json.RawMessage) (models.Draft, bool, error) {
	var p ReportResolvedPayload
	if err := decode(payload, &p); err != nil {
		return models.Draft{}, false, err
	}
	return models.Draft{
		Title:       "Report resolved",
		Message:     "Your report has been processed. Action: " + p.Resolution,
		Category:    models.CategorySystem,
		Priority:    models.PriorityLow,
		Channels:    []models.Channel{models.ChannelInApp},
		ActionURL:   "/moderation/my-reports",
		ActionLabel: "View details",
	}, true, nil
}

func badgeUnlockedDraft(payload json.RawMessage) (models.Draft, bool, error) {
	var p BadgeUnlockedPayload
	if err := decode(payload, &p); err != nil {
		return models.Draft{}, false, err
	}
	return models.Draft{
		Title:       "Badge unlocked!",
		Message:     fmt.Sprintf("You earned the %q badge (%s)", p.BadgeName, p.Rarity),
		Category:    models.CategoryAchievement,
		Priority:    models.PriorityHigh,
		Channels:    []models.Channel{models.ChannelPush, models.ChannelInApp},
		ActionURL:   "/achievements",
		ActionLabel: "View badges",
	}, true, nil
}
