// Package events turns external domain events into notification drafts.
package events

import (
	"context"
	"encoding/json"
	"time"
)

type Kind string

const (
	KindEventRSVP      Kind = "event.rsvp"
	KindReportResolved Kind = "moderation.report_resolved"
	KindBadgeUnlocked  Kind = "achievement.badge_unlocked"
)

// Kinds lists every event kind the adapter subscribes to.
func Kinds() []Kind {
	return []Kind{KindEventRSVP, KindReportResolved, KindBadgeUnlocked}
}

// Envelope is the wire form of an external event.
type Envelope struct {
	Kind       Kind            `json:"kind"`
	UserID     string          `json:"userId,omitempty"`
	OccurredAt time.Time       `json:"occurredAt"`
	Payload    json.RawMessage `json:"payload"`
}

type Handler func(ctx context.Context, env Envelope) error

// Subscriber delivers envelopes of one kind to a handler. A handler error asks
// the transport to redeliver the event.
type Subscriber interface {
	Subscribe(ctx context.Context, kind Kind, handler Handler) error
}

const RSVPGoing = "going"

type RSVPPayload struct {
	EventID    string `json:"eventId" validate:"notblank"`
	EventTitle string `json:"eventTitle" validate:"notblank"`
	Status     string `json:"status" validate:"notblank"`
	Reminder   bool   `json:"reminder"`
}

type ReportResolvedPayload struct {
	ReportID   string `json:"reportId" validate:"notblank"`
	Resolution string `json:"resolution" validate:"notblank"`
}

type BadgeUnlockedPayload struct {
	BadgeName string `json:"badgeName" validate:"notblank"`
	Rarity    string `json:"rarity" validate:"notblank"`
}
