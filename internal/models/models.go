package models

import (
	"time"
)

type Category string

const (
	CategorySystem      Category = "system"
	CategoryCommunity   Category = "community"
	CategoryAchievement Category = "achievement"
	CategoryReminder    Category = "reminder"
	CategoryPromotion   Category = "promotion"
	CategoryAlert       Category = "alert"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

type Channel string

const (
	ChannelPush     Channel = "push"
	ChannelEmail    Channel = "email"
	ChannelSMS      Channel = "sms"
	ChannelWhatsApp Channel = "whatsapp"
	ChannelInApp    Channel = "in_app"
)

type EmailDigest string

const (
	DigestRealtime EmailDigest = "realtime"
	DigestDaily    EmailDigest = "daily"
	DigestWeekly   EmailDigest = "weekly"
	DigestNever    EmailDigest = "never"
)

// Categories returns every category in display order.
func Categories() []Category {
	return []Category{
		CategorySystem,
		CategoryCommunity,
		CategoryAchievement,
		CategoryReminder,
		CategoryPromotion,
		CategoryAlert,
	}
}

// Priorities returns every priority from lowest to highest.
func Priorities() []Priority {
	return []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}
}

func Channels() []Channel {
	return []Channel{ChannelPush, ChannelEmail, ChannelSMS, ChannelWhatsApp, ChannelInApp}
}

func EmailDigests() []EmailDigest {
	return []EmailDigest{DigestRealtime, DigestDaily, DigestWeekly, DigestNever}
}

func (c Category) Valid() bool {
	_, ok := categoryCatalog[c]
	return ok
}

func (p Priority) Valid() bool {
	_, ok := priorityCatalog[p]
	return ok
}

// Rank orders priorities: low=0 < medium < high < urgent. Unknown values rank -1.
func (p Priority) Rank() int {
	info, ok := priorityCatalog[p]
	if !ok {
		return -1
	}
	return info.Rank
}

// Below reports whether p is strictly lower than other.
func (p Priority) Below(other Priority) bool {
	return p.Rank() < other.Rank()
}

func (c Channel) Valid() bool {
	_, ok := channelCatalog[c]
	return ok
}

func (d EmailDigest) Valid() bool {
	_, ok := digestCatalog[d]
	return ok
}

type Notification struct {
	ID               string     `json:"id"`
	Title            string     `json:"title"`
	Message          string     `json:"message"`
	Category         Category   `json:"category"`
	Priority         Priority   `json:"priority"`
	Channels         []Channel  `json:"channels"`
	AdmittedChannels []Channel  `json:"admittedChannels"`
	Read             bool       `json:"read"`
	Archived         bool       `json:"archived"`
	ActionURL        string     `json:"actionUrl,omitempty"`
	ActionLabel      string     `json:"actionLabel,omitempty"`
	ImageURL         string     `json:"imageUrl,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	ExpiresAt        *time.Time `json:"expiresAt,omitempty"`
}

// Clone returns a copy that shares no slices or pointers with n.
func (n Notification) Clone() Notification {
	c := n
	c.Channels = append([]Channel(nil), n.Channels...)
	c.AdmittedChannels = append([]Channel{}, n.AdmittedChannels...)
	if n.ExpiresAt != nil {
		t := *n.ExpiresAt
		c.ExpiresAt = &t
	}
	return c
}

// Draft is an unvalidated notification payload prior to admission.
type Draft struct {
	Title       string     `json:"title" validate:"notblank"`
	Message     string     `json:"message" validate:"notblank"`
	Category    Category   `json:"category" validate:"required,category"`
	Priority    Priority   `json:"priority" validate:"required,priority"`
	Channels    []Channel  `json:"channels" validate:"required,min=1,unique,dive,channel"`
	ActionURL   string     `json:"actionUrl,omitempty"`
	ActionLabel string     `json:"actionLabel,omitempty"`
	ImageURL    string     `json:"imageUrl,omitempty"`
	ExpiresAt   *time.Time `json:"expiresAt,omitempty"`
}

// Filter selects notifications; nil fields match everything.
type Filter struct {
	Category *Category `json:"category,omitempty"`
	Read     *bool     `json:"read,omitempty"`
	Archived *bool     `json:"archived,omitempty"`
}

func (f Filter) Match(n Notification) bool {
	if f.Category != nil && n.Category != *f.Category {
		return false
	}
	if f.Read != nil && n.Read != *f.Read {
		return false
	}
	if f.Archived != nil && n.Archived != *f.Archived {
		return false
	}
	return true
}

type Stats struct {
	Total      int              `json:"total"`
	Unread     int              `json:"unread"`
	ByCategory map[Category]int `json:"byCategory"`
	ByPriority map[Priority]int `json:"byPriority"`
}
