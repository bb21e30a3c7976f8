// Package resolver decides which of a notification's requested channels a
// user's preferences let it use at a given moment.
package resolver

import (
	"time"

	"notifyprefs/internal/models"
)

type Reason string

const (
	ReasonCategoryDisabled Reason = "category_disabled"
	ReasonChannelDisabled  Reason = "channel_disabled"
	ReasonQuietHours       Reason = "quiet_hours"
)

// Candidate is the part of a draft the resolver looks at.
type Candidate struct {
	Category models.Category
	Priority models.Priority
	Channels []models.Channel
}

func CandidateFromDraft(d models.Draft) Candidate {
	return Candidate{Category: d.Category, Priority: d.Priority, Channels: d.Channels}
}

type Decision struct {
	Admitted   []models.Channel
	Suppressed map[models.Channel]Reason
}

// Silenced reports whether no requested channel survived.
func (d Decision) Silenced() bool {
	return len(d.Admitted) == 0
}

// quietChannels are the interruptive channels muted during quiet hours.
var quietChannels = map[models.Channel]bool{
	models.ChannelPush:     true,
	models.ChannelSMS:      true,
	models.ChannelWhatsApp: true,
}

// Resolve computes the admitted channel set for c under prefs at the clock time of at.
// Admitted channels keep the requested order.
func Resolve(prefs models.Preferences, c Candidate, at time.Time) (Decision, error) {
	if err := validate(c); err != nil {
		return Decision{}, err
	}

	d := Decision{
		Admitted:   make([]models.Channel, 0, len(c.Channels)),
		Suppressed: make(map[models.Channel]Reason),
	}

	if !prefs.Categories[c.Category] {
		for _, ch := range c.Channels {
			d.Suppressed[ch] = ReasonCategoryDisabled
		}
		return d, nil
	}

	quiet := false
	if prefs.QuietHours.Enabled && c.Priority.Below(models.PriorityHigh) {
		in, err := InQuietHours(prefs.QuietHours, at)
		if err != nil {
			return Decision{}, err
		}
		quiet = in
	}

	for _, ch := range c.Channels {
		switch {
		case !prefs.Channels[ch]:
			d.Suppressed[ch] = ReasonChannelDisabled
		case quiet && quietChannels[ch]:
			d.Suppressed[ch] = ReasonQuietHours
		default:
			d.Admitted = append(d.Admitted, ch)
		}
	}

	return d, nil
}

// InQuietHours reports whether the clock time of at lies in [start, end).
// A window with end before start wraps past midnight; start == end is empty.
func InQuietHours(q models.QuietHours, at time.Time) (bool, error) {
	start, err := models.ParseClock(q.Start)
	if err != nil {
		return false, err
	}
	end, err := models.ParseClock(q.End)
	if err != nil {
		return false, err
	}

	now := at.Hour()*60 + at.Minute()
	switch {
	case start == end:
		return false, nil
	case start < end:
		return now >= start && now < end, nil
	default:
		return now >= start || now < end, nil
	}
}

func validate(c Candidate) error {
	if !c.Category.Valid() {
		return models.NewValidationError("category", "unknown category %q", c.Category)
	}
	if !c.Priority.Valid() {
		return models.NewValidationError("priority", "unknown priority %q", c.Priority)
	}
	if len(c.Channels) == 0 {
		return models.NewValidationError("channels", "at least one channel is required")
	}
	seen := make(map[models.Channel]bool, len(c.Channels))
	for _, ch := range c.Channels {
		if !ch.Valid() {
			return models.NewValidationError("channels", "unknown channel %q", ch)
		}
		if seen[ch] {
			return models.NewValidationError("channels", "duplicate channel %q", ch)
		}
		seen[ch] = true
	}
	return nil
}
