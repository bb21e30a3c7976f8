package store

import (
	"encoding/json"
	"fmt"
	"sort"

	"notifyprefs/internal/models"
)

const snapshotSchema = 1

// Snapshot is the persisted form of a store.
type Snapshot struct {
	Schema        int                   `json:"schema"`
	Version       uint64                `json:"version"`
	Notifications []models.Notification `json:"notifications"`
	Preferences   models.Preferences    `json:"preferences"`
}

func (s *Store) snapshotLocked() Snapshot {
	ns := make([]models.Notification, len(s.notifications))
	for i, n := range s.notifications {
		ns[i] = n.Clone()
	}
	return Snapshot{
		Schema:        snapshotSchema,
		Version:       s.version,
		Notifications: ns,
		Preferences:   s.preferences.Clone(),
	}
}

func (snap Snapshot) Marshal() ([]byte, error) {
	data, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	return data, nil
}

// DecodeSnapshot parses and validates persisted state.
func DecodeSnapshot(data []byte) (Snapshot, error) {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	if err := snap.validate(); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

func (snap *Snapshot) validate() error {
	if snap.Schema != snapshotSchema {
		return models.NewValidationError("schema", "unsupported snapshot schema %d", snap.Schema)
	}

	prefs, err := snap.Preferences.Normalize()
	if err != nil {
		return err
	}
	snap.Preferences = prefs

	seen := make(map[string]bool, len(snap.Notifications))
	for i, n := range snap.Notifications {
		if n.ID == "" || seen[n.ID] {
			return models.NewValidationError("notifications", "missing or duplicate id at %d", i)
		}
		seen[n.ID] = true

		d := models.Draft{
			Title:    n.Title,
			Message:  n.Message,
			Category: n.Category,
			Priority: n.Priority,
			Channels: n.Channels,
		}
		if err := d.Validate(); err != nil {
			return fmt.Errorf("notification %s: %w", n.ID, err)
		}
		for _, ch := range n.AdmittedChannels {
			if !ch.Valid() {
				return models.NewValidationError("admittedChannels", "unknown channel %q in %s", ch, n.ID)
			}
		}
		if n.AdmittedChannels == nil {
			snap.Notifications[i].AdmittedChannels = []models.Channel{}
		}
	}

	sort.SliceStable(snap.Notifications, func(i, j int) bool {
		return snap.Notifications[i].CreatedAt.After(snap.Notifications[j].CreatedAt)
	})
	return nil
}

// Restore builds a store holding the state of snap.
func Restore(snap Snapshot, opts ...Option) (*Store, error) {
	snap.Notifications = append([]models.Notification(nil), snap.Notifications...)
	if err := snap.validate(); err != nil {
		return nil, err
	}

	s := New(opts...)
	s.notifications = make([]models.Notification, len(snap.Notifications))
	for i, n := range snap.Notifications {
		s.notifications[i] = n.Clone()
	}
	s.preferences = snap.Preferences.Clone()
	s.version = snap.Version
	return s, nil
}
