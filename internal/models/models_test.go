package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogCompleteness(t *testing.T) {
	for _, c := range Categories() {
		info, ok := c.Info()
		assert.True(t, ok, "category %s has no metadata", c)
		assert.NotEmpty(t, info.Label)
		assert.NotEmpty(t, info.Icon)
	}
	for _, p := range Priorities() {
		info, ok := p.Info()
		assert.True(t, ok, "priority %s has no metadata", p)
		assert.NotEmpty(t, info.Label)
	}
	for _, ch := range Channels() {
		info, ok := ch.Info()
		assert.True(t, ok, "channel %s has no metadata", ch)
		assert.NotEmpty(t, info.Label)
	}
	for _, d := range EmailDigests() {
		_, ok := d.Info()
		assert.True(t, ok, "digest %s has no metadata", d)
	}

	assert.Len(t, categoryCatalog, len(Categories()))
	assert.Len(t, priorityCatalog, len(Priorities()))
	assert.Len(t, channelCatalog, len(Channels()))
	assert.Len(t, digestCatalog, len(EmailDigests()))

	c := NewCatalog()
	assert.Len(t, c.Categories, 6)
	assert.Len(t, c.Priorities, 4)
	assert.Len(t, c.Channels, 5)
	assert.Len(t, c.EmailDigests, 4)
}

func TestPriorityOrder(t *testing.T) {
	ps := Priorities()
	for i := 1; i < len(ps); i++ {
		assert.True(t, ps[i-1].Below(ps[i]), "%s should be below %s", ps[i-1], ps[i])
		assert.False(t, ps[i].Below(ps[i-1]))
	}
	assert.Equal(t, -1, Priority("critical").Rank())
}

func TestParseEnums(t *testing.T) {
	_, err := ParseCategory("promotion")
	assert.NoError(t, err)
	_, err = ParseCategory("spam")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = ParseChannel("in_app")
	assert.NoError(t, err)
	_, err = ParseChannel("pigeon")
	assert.True(t, IsValidation(err))

	_, err = ParsePriority("urgent")
	assert.NoError(t, err)
	_, err = ParsePriority("")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = ParseEmailDigest("hourly")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestDraftValidate(t *testing.T) {
	valid := Draft{
		Title:    "Hello",
		Message:  "World",
		Category: CategorySystem,
		Priority: PriorityLow,
		Channels: []Channel{ChannelInApp},
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(d *Draft)
		field  string
	}{
		{"blank title", func(d *Draft) { d.Title = "   " }, "title"},
		{"empty message", func(d *Draft) { d.Message = "" }, "message"},
		{"unknown category", func(d *Draft) { d.Category = "spam" }, "category"},
		{"missing priority", func(d *Draft) { d.Priority = "" }, "priority"},
		{"nil channels", func(d *Draft) { d.Channels = nil }, "channels"},
		{"empty channels", func(d *Draft) { d.Channels = []Channel{} }, "channels"},
		{"duplicate channels", func(d *Draft) { d.Channels = []Channel{ChannelPush, ChannelPush} }, "channels"},
		{"unknown channel", func(d *Draft) { d.Channels = []Channel{ChannelPush, "fax"} }, "channels[1]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := valid
			d.Channels = append([]Channel(nil), valid.Channels...)
			tt.mutate(&d)

			err := d.Validate()
			require.Error(t, err)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestPreferencesPatchApply(t *testing.T) {
	prefs := DefaultPreferences()
	weekly := DigestWeekly

	out, err := PreferencesPatch{EmailDigest: &weekly}.Apply(prefs)
	require.NoError(t, err)
	assert.Equal(t, DigestWeekly, out.EmailDigest)
	assert.Equal(t, prefs.Channels, out.Channels)
	assert.Equal(t, prefs.Categories, out.Categories)
	assert.Equal(t, prefs.QuietHours, out.QuietHours)
	assert.Equal(t, DigestDaily, prefs.EmailDigest, "input must not be modified")

	start := "23:15"
	out, err = PreferencesPatch{
		Channels:   map[Channel]bool{ChannelSMS: true},
		QuietHours: &QuietHoursPatch{Start: &start},
	}.Apply(prefs)
	require.NoError(t, err)
	assert.True(t, out.Channels[ChannelSMS])
	assert.True(t, out.Channels[ChannelPush], "unspecified channel flags stay untouched")
	assert.Equal(t, "23:15", out.QuietHours.Start)
	assert.Equal(t, "08:00", out.QuietHours.End)
	assert.False(t, out.QuietHours.Enabled)
	assert.False(t, prefs.Channels[ChannelSMS])

	bad := "25:00"
	_, err = PreferencesPatch{QuietHours: &QuietHoursPatch{End: &bad}}.Apply(prefs)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = PreferencesPatch{Categories: map[Category]bool{"spam": true}}.Apply(prefs)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestPreferencesEqual(t *testing.T) {
	a := DefaultPreferences()
	b := a.Clone()
	assert.True(t, a.Equal(b))

	b.Channels[ChannelSMS] = !b.Channels[ChannelSMS]
	assert.False(t, a.Equal(b))

	b = a.Clone()
	b.QuietHours.Enabled = !b.QuietHours.Enabled
	assert.False(t, a.Equal(b))

	b = a.Clone()
	b.EmailDigest = DigestNever
	assert.False(t, a.Equal(b))
}

func TestPreferencesNormalize(t *testing.T) {
	p := Preferences{
		Channels: map[Channel]bool{ChannelSMS: true},
	}
	out, err := p.Normalize()
	require.NoError(t, err)
	assert.True(t, out.Channels[ChannelSMS])
	assert.True(t, out.Channels[ChannelPush])
	assert.Len(t, out.Channels, 5)
	assert.Len(t, out.Categories, 6)
	assert.False(t, out.Categories[CategoryPromotion])
	assert.Equal(t, DigestDaily, out.EmailDigest)
	assert.Equal(t, "22:00", out.QuietHours.Start)

	_, err = Preferences{Channels: map[Channel]bool{"fax": true}}.Normalize()
	assert.ErrorIs(t, err, ErrValidation)

	_, err = Preferences{EmailDigest: "hourly"}.Normalize()
	assert.ErrorIs(t, err, ErrValidation)
}

func TestParseClock(t *testing.T) {
	m, err := ParseClock("22:30")
	require.NoError(t, err)
	assert.Equal(t, 22*60+30, m)

	m, err = ParseClock("00:00")
	require.NoError(t, err)
	assert.Equal(t, 0, m)

	for _, s := range []string{"", "7:00", "24:00", "12:60", "ab:cd", "1200"} {
		_, err := ParseClock(s)
		assert.ErrorIs(t, err, ErrValidation, s)
	}
}

func TestFilterMatch(t *testing.T) {
	n := Notification{Category: CategoryAlert, Read: true}
	cat := CategoryAlert
	other := CategorySystem
	yes, no := true, false

	assert.True(t, Filter{}.Match(n))
	assert.True(t, Filter{Category: &cat, Read: &yes, Archived: &no}.Match(n))
	assert.False(t, Filter{Category: &other}.Match(n))
	assert.False(t, Filter{Read: &no}.Match(n))
	assert.False(t, Filter{Archived: &yes}.Match(n))
}
