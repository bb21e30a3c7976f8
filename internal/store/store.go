// Package store holds the notification state machine for a single user context.
//
// All mutation goes through the command methods, which run under one mutex.
// Hooks registered with WithHook receive a snapshot after every command that
// changed state; they run outside the lock so they may do I/O.
package store

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"notifyprefs/internal/models"
	"notifyprefs/internal/resolver"
)

// Hook runs after a state-changing command with the resulting snapshot.
type Hook func(Snapshot)

// AdmissionObserver sees every admitted notification with the resolver's decision.
type AdmissionObserver func(models.Notification, resolver.Decision)

type Option func(*Store)

func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

func WithIDGenerator(gen func() string) Option {
	return func(s *Store) {
		s.newID = gen
	}
}

func WithHook(h Hook) Option {
	return func(s *Store) {
		s.hooks = append(s.hooks, h)
	}
}

func WithAdmissionObserver(o AdmissionObserver) Option {
	return func(s *Store) {
		s.observers = append(s.observers, o)
	}
}

type Store struct {
	mu            sync.RWMutex
	notifications []models.Notification
	preferences   models.Preferences
	version       uint64

	now       func() time.Time
	newID     func() string
	hooks     []Hook
	observers []AdmissionObserver
}

// New returns an empty store with default preferences.
func New(opts ...Option) *Store {
	s := &Store{
		preferences: models.DefaultPreferences(),
		now:         time.Now,
		newID:       generateID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func generateID() string {
	return "notif-" + uuid.Must(uuid.NewV7()).String()
}

// AddNotification validates the draft, resolves its admitted channels and
// prepends the new record. The record is kept even when every channel is
// suppressed. It returns the new id.
func (s *Store) AddNotification(draft models.Draft) (string, error) {
	if err := draft.Validate(); err != nil {
		return "", err
	}

	s.mu.Lock()
	now := s.now()
	decision, err := resolver.Resolve(s.preferences, resolver.CandidateFromDraft(draft), now)
	if err != nil {
		s.mu.Unlock()
		return "", err
	}

	id := s.newID()
	for s.indexOf(id) >= 0 {
		id = s.newID()
	}

	n := models.Notification{
		ID:               id,
		Title:            draft.Title,
		Message:          draft.Message,
		Category:         draft.Category,
		Priority:         draft.Priority,
		Channels:         append([]models.Channel(nil), draft.Channels...),
		AdmittedChannels: decision.Admitted,
		ActionURL:        draft.ActionURL,
		ActionLabel:      draft.ActionLabel,
		ImageURL:         draft.ImageURL,
		CreatedAt:        now,
	}
	if draft.ExpiresAt != nil {
		exp := *draft.ExpiresAt
		n.ExpiresAt = &exp
	}

	s.notifications = append([]models.Notification{n}, s.notifications...)
	snap := s.commitLocked()
	s.mu.Unlock()

	for _, o := range s.observers {
		o(n.Clone(), decision)
	}
	s.fire(snap)
	return id, nil
}

// MarkAsRead is a no-op for unknown or already read ids.
func (s *Store) MarkAsRead(id string) {
	s.mutate(func() bool {
		i := s.indexOf(id)
		if i < 0 || s.notifications[i].Read {
			return false
		}
		s.notifications[i].Read = true
		return true
	})
}

func (s *Store) MarkAllAsRead() {
	s.mutate(func() bool {
		changed := false
		for i := range s.notifications {
			if !s.notifications[i].Read {
				s.notifications[i].Read = true
				changed = true
			}
		}
		return changed
	})
}

// ArchiveNotification is a no-op for unknown or already archived ids.
func (s *Store) ArchiveNotification(id string) {
	s.mutate(func() bool {
		i := s.indexOf(id)
		if i < 0 || s.notifications[i].Archived {
			return false
		}
		s.notifications[i].Archived = true
		return true
	})
}

func (s *Store) DeleteNotification(id string) {
	s.mutate(func() bool {
		i := s.indexOf(id)
		if i < 0 {
			return false
		}
		s.notifications = append(s.notifications[:i:i], s.notifications[i+1:]...)
		return true
	})
}

func (s *Store) ClearAll() {
	s.mutate(func() bool {
		if len(s.notifications) == 0 {
			return false
		}
		s.notifications = nil
		return true
	})
}

// UpdatePreferences deep-merges patch into the current preferences. A patch
// that changes nothing leaves the version untouched.
func (s *Store) UpdatePreferences(patch models.PreferencesPatch) error {
	return s.mutateErr(func() (bool, error) {
		next, err := patch.Apply(s.preferences)
		if err != nil {
			return false, err
		}
		if next.Equal(s.preferences) {
			return false, nil
		}
		s.preferences = next
		return true, nil
	})
}

func (s *Store) ToggleChannel(ch models.Channel) error {
	if !ch.Valid() {
		return models.NewValidationError("channel", "unknown channel %q", ch)
	}
	return s.mutateErr(func() (bool, error) {
		next := s.preferences.Clone()
		next.Channels[ch] = !next.Channels[ch]
		s.preferences = next
		return true, nil
	})
}

func (s *Store) ToggleCategory(c models.Category) error {
	if !c.Valid() {
		return models.NewValidationError("category", "unknown category %q", c)
	}
	return s.mutateErr(func() (bool, error) {
		next := s.preferences.Clone()
		next.Categories[c] = !next.Categories[c]
		s.preferences = next
		return true, nil
	})
}

// Stats counts non-archived notifications only.
func (s *Store) Stats() models.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := models.Stats{
		ByCategory: make(map[models.Category]int),
		ByPriority: make(map[models.Priority]int),
	}
	for _, n := range s.notifications {
		if n.Archived {
			continue
		}
		st.Total++
		if !n.Read {
			st.Unread++
		}
		st.ByCategory[n.Category]++
		st.ByPriority[n.Priority]++
	}
	return st
}

func (s *Store) UnreadCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, n := range s.notifications {
		if !n.Read && !n.Archived {
			count++
		}
	}
	return count
}

// FilteredNotifications returns copies of the matching notifications, most recent first.
func (s *Store) FilteredNotifications(f models.Filter) []models.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Notification, 0, len(s.notifications))
	for _, n := range s.notifications {
		if f.Match(n) {
			out = append(out, n.Clone())
		}
	}
	return out
}

func (s *Store) Notification(id string) (models.Notification, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(id)
	if i < 0 {
		return models.Notification{}, false
	}
	return s.notifications[i].Clone(), true
}

func (s *Store) Preferences() models.Preferences {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.preferences.Clone()
}

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

func (s *Store) mutate(fn func() bool) {
	_ = s.mutateErr(func() (bool, error) {
		return fn(), nil
	})
}

func (s *Store) mutateErr(fn func() (bool, error)) error {
	s.mu.Lock()
	changed, err := fn()
	if err != nil || !changed {
		s.mu.Unlock()
		return err
	}
	snap := s.commitLocked()
	s.mu.Unlock()

	s.fire(snap)
	return nil
}

func (s *Store) commitLocked() Snapshot {
	s.version++
	return s.snapshotLocked()
}

func (s *Store) fire(snap Snapshot) {
	for _, h := range s.hooks {
		h(snap)
	}
}

func (s *Store) indexOf(id string) int {
	for i := range s.notifications {
		if s.notifications[i].ID == id {
			return i
		}
	}
	return -1
}
