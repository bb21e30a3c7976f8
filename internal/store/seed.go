package store

import (
	"time"

	"notifyprefs/internal/models"
)

// DemoSnapshot is the state a user context starts from when seeding is enabled:
// five notifications, three of them unread, with default preferences.
func DemoSnapshot(now time.Time) Snapshot {
	ago := func(d time.Duration) time.Time { return now.Add(-d) }
	ch := func(cs ...models.Channel) []models.Channel { return cs }

	ns := []models.Notification{
		{
			ID:          "demo-1",
			Title:       "New achievement unlocked!",
			Message:     "You completed your first week of continuous learning. Keep it up!",
			Category:    models.CategoryAchievement,
			Priority:    models.PriorityMedium,
			Channels:    ch(models.ChannelPush, models.ChannelInApp),
			ActionURL:   "/achievements",
			ActionLabel: "View achievements",
			CreatedAt:   ago(30 * time.Minute),
		},
		{
			ID:        "demo-2",
			Title:     "System update",
			Message:   "Pages now load 40% faster. Enjoy the experience.",
			Category:  models.CategorySystem,
			Priority:  models.PriorityLow,
			Channels:  ch(models.ChannelInApp),
			CreatedAt: ago(2 * time.Hour),
		},
		{
			ID:          "demo-3",
			Title:       "Maria commented on your project",
			Message:     `"Excellent work! I loved your creative solution."`,
			Category:    models.CategoryCommunity,
			Priority:    models.PriorityMedium,
			Channels:    ch(models.ChannelPush, models.ChannelEmail, models.ChannelInApp),
			Read:        true,
			ActionURL:   "/community/projects/123",
			ActionLabel: "View comment",
			CreatedAt:   ago(5 * time.Hour),
		},
		{
			ID:          "demo-4",
			Title:       "Reminder: live class",
			Message:     "Your math class starts in 1 hour. Don't miss it!",
			Category:    models.CategoryReminder,
			Priority:    models.PriorityHigh,
			Channels:    ch(models.ChannelPush, models.ChannelSMS, models.ChannelInApp),
			ActionURL:   "/live/math-101",
			ActionLabel: "Join",
			CreatedAt:   ago(24 * time.Hour),
		},
		{
			ID:          "demo-5",
			Title:       "🎁 New content available",
			Message:     "15 new science lessons have been added. Explore them!",
			Category:    models.CategoryPromotion,
			Priority:    models.PriorityLow,
			Channels:    ch(models.ChannelEmail, models.ChannelInApp),
			Read:        true,
			ActionURL:   "/explore/science",
			ActionLabel: "Explore",
			CreatedAt:   ago(48 * time.Hour),
		},
	}
	for i := range ns {
		ns[i].AdmittedChannels = append([]models.Channel{}, ns[i].Channels...)
	}

	return Snapshot{
		Schema:        snapshotSchema,
		Notifications: ns,
		Preferences:   models.DefaultPreferences(),
	}
}

// NewDemo returns a store seeded with DemoSnapshot.
func NewDemo(opts ...Option) *Store {
	s := New(opts...)
	snap := DemoSnapshot(s.now())
	s.notifications = snap.Notifications
	return s
}
