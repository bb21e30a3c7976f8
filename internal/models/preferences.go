package models

import (
	"maps"
	"strconv"
	"strings"
)

type QuietHours struct {
	Enabled bool   `json:"enabled"`
	Start   string `json:"start"`
	End     string `json:"end"`
}

type Preferences struct {
	Channels    map[Channel]bool  `json:"channels"`
	Categories  map[Category]bool `json:"categories"`
	QuietHours  QuietHours        `json:"quietHours"`
	EmailDigest EmailDigest       `json:"emailDigest"`
}

func DefaultPreferences() Preferences {
	return Preferences{
		Channels: map[Channel]bool{
			ChannelPush:     true,
			ChannelEmail:    true,
			ChannelSMS:      false,
			ChannelWhatsApp: false,
			ChannelInApp:    true,
		},
		Categories: map[Category]bool{
			CategorySystem:      true,
			CategoryCommunity:   true,
			CategoryAchievement: true,
			CategoryReminder:    true,
			CategoryPromotion:   false,
			CategoryAlert:       true,
		},
		QuietHours: QuietHours{
			Enabled: false,
			Start:   "22:00",
			End:     "08:00",
		},
		EmailDigest: DigestDaily,
	}
}

func (p Preferences) Clone() Preferences {
	c := p
	c.Channels = maps.Clone(p.Channels)
	c.Categories = maps.Clone(p.Categories)
	return c
}

func (p Preferences) Equal(o Preferences) bool {
	return p.QuietHours == o.QuietHours &&
		p.EmailDigest == o.EmailDigest &&
		maps.Equal(p.Channels, o.Channels) &&
		maps.Equal(p.Categories, o.Categories)
}

// Normalize validates a restored preferences object and fills absent keys from the defaults.
func (p Preferences) Normalize() (Preferences, error) {
	def := DefaultPreferences()
	out := p.Clone()

	if out.Channels == nil {
		out.Channels = map[Channel]bool{}
	}
	for ch := range out.Channels {
		if !ch.Valid() {
			return Preferences{}, NewValidationError("channels", "unknown channel %q", ch)
		}
	}
	for _, ch := range Channels() {
		if _, ok := out.Channels[ch]; !ok {
			out.Channels[ch] = def.Channels[ch]
		}
	}

	if out.Categories == nil {
		out.Categories = map[Category]bool{}
	}
	for c := range out.Categories {
		if !c.Valid() {
			return Preferences{}, NewValidationError("categories", "unknown category %q", c)
		}
	}
	for _, c := range Categories() {
		if _, ok := out.Categories[c]; !ok {
			out.Categories[c] = def.Categories[c]
		}
	}

	if out.QuietHours.Start == "" {
		out.QuietHours.Start = def.QuietHours.Start
	}
	if out.QuietHours.End == "" {
		out.QuietHours.End = def.QuietHours.End
	}
	if _, err := ParseClock(out.QuietHours.Start); err != nil {
		return Preferences{}, err
	}
	if _, err := ParseClock(out.QuietHours.End); err != nil {
		return Preferences{}, err
	}

	if out.EmailDigest == "" {
		out.EmailDigest = def.EmailDigest
	}
	if !out.EmailDigest.Valid() {
		return Preferences{}, NewValidationError("emailDigest", "unknown email digest %q", out.EmailDigest)
	}

	return out, nil
}

type QuietHoursPatch struct {
	Enabled *bool   `json:"enabled,omitempty"`
	Start   *string `json:"start,omitempty"`
	End     *string `json:"end,omitempty"`
}

// PreferencesPatch is a partial update; only the keys present are merged.
type PreferencesPatch struct {
	Channels    map[Channel]bool  `json:"channels,omitempty"`
	Categories  map[Category]bool `json:"categories,omitempty"`
	QuietHours  *QuietHoursPatch  `json:"quietHours,omitempty"`
	EmailDigest *EmailDigest      `json:"emailDigest,omitempty"`
}

func (p PreferencesPatch) Validate() error {
	for ch := range p.Channels {
		if !ch.Valid() {
			return NewValidationError("channels", "unknown channel %q", ch)
		}
	}
	for c := range p.Categories {
		if !c.Valid() {
			return NewValidationError("categories", "unknown category %q", c)
		}
	}
	if p.QuietHours != nil {
		if p.QuietHours.Start != nil {
			if _, err := ParseClock(*p.QuietHours.Start); err != nil {
				return err
			}
		}
		if p.QuietHours.End != nil {
			if _, err := ParseClock(*p.QuietHours.End); err != nil {
				return err
			}
		}
	}
	if p.EmailDigest != nil && !p.EmailDigest.Valid() {
		return NewValidationError("emailDigest", "unknown email digest %q", *p.EmailDigest)
	}
	return nil
}

// Apply returns prefs with the patch deep-merged in. prefs itself is not modified.
func (p PreferencesPatch) Apply(prefs Preferences) (Preferences, error) {
	if err := p.Validate(); err != nil {
		return Preferences{}, err
	}

	out := prefs.Clone()
	for ch, on := range p.Channels {
		out.Channels[ch] = on
	}
	for c, on := range p.Categories {
		out.Categories[c] = on
	}
	if q := p.QuietHours; q != nil {
		if q.Enabled != nil {
			out.QuietHours.Enabled = *q.Enabled
		}
		if q.Start != nil {
			out.QuietHours.Start = *q.Start
		}
		if q.End != nil {
			out.QuietHours.End = *q.End
		}
	}
	if p.EmailDigest != nil {
		out.EmailDigest = *p.EmailDigest
	}
	return out, nil
}

// ParseClock parses a 24h "HH:MM" string into minutes after midnight.
func ParseClock(s string) (int, error) {
	hh, mm, ok := strings.Cut(s, ":")
	if !ok || len(hh) != 2 || len(mm) != 2 {
		return 0, NewValidationError("quietHours", "time %q must be HH:MM", s)
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 23 {
		return 0, NewValidationError("quietHours", "invalid hour in %q", s)
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 || m > 59 {
		return 0, NewValidationError("quietHours", "invalid minute in %q", s)
	}
	return h*60 + m, nil
}
