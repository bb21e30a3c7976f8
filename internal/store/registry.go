package store

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"
	"github.com/wb-go/wbf/retry"

	"notifyprefs/internal/metrics"
	"notifyprefs/internal/models"
	"notifyprefs/internal/resolver"
	"notifyprefs/internal/storage"
)

// defaultSaveStrategy is the only retry layer around slot writes.
var defaultSaveStrategy = retry.Strategy{
	Attempts: 3,
	Delay:    100 * time.Millisecond,
	Backoff:  2,
}

type RegistryConfig struct {
	Namespace string
	SeedDemo  bool
	IdleTTL   time.Duration
	Location  *time.Location
}

// entry is one user's store plus its persistence bookkeeping.
type entry struct {
	key   string
	store *Store

	saveMu sync.Mutex
	saved  uint64
	dirty  atomic.Bool
}

// Registry owns one Store per user context, restores it from storage on first
// use and writes a snapshot back after every state-changing command.
//
// live holds every store in memory; entries only tracks idleness. An idle
// store leaves memory once its state is saved. A store whose save keeps
// failing stays live and is retried on the next eviction or flush.
type Registry struct {
	cfg     RegistryConfig
	slot    storage.Storage
	logger  *zerolog.Logger
	metrics *metrics.Metrics

	mu           sync.Mutex
	live         map[string]*entry
	entries      *cache.Cache
	now          func() time.Time
	newID        func() string
	saveStrategy retry.Strategy
}

type RegistryOption func(*Registry)

func WithRegistryClock(now func() time.Time) RegistryOption {
	return func(r *Registry) {
		r.now = now
	}
}

func WithRegistryIDGenerator(gen func() string) RegistryOption {
	return func(r *Registry) {
		r.newID = gen
	}
}

func NewRegistry(slot storage.Storage, cfg RegistryConfig, logger *zerolog.Logger, m *metrics.Metrics, opts ...RegistryOption) *Registry {
	if cfg.Namespace == "" {
		cfg.Namespace = "notifications-storage"
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = cache.NoExpiration
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}

	r := &Registry{
		cfg:          cfg,
		slot:         slot,
		logger:       logger,
		metrics:      m,
		live:         make(map[string]*entry),
		now:          time.Now,
		newID:        generateID,
		saveStrategy: defaultSaveStrategy,
	}
	for _, opt := range opts {
		opt(r)
	}

	cleanup := cfg.IdleTTL / 2
	if cfg.IdleTTL == cache.NoExpiration {
		cleanup = 0
	}
	r.entries = cache.New(cfg.IdleTTL, cleanup)
	r.entries.OnEvicted(r.onEvicted)

	return r
}

func (r *Registry) key(userID string) string {
	return r.cfg.Namespace + ":" + userID
}

// Get returns the user's store, restoring or creating it on first use.
func (r *Registry) Get(ctx context.Context, userID string) (*Store, error) {
	e, err := r.entry(ctx, userID)
	if err != nil {
		return nil, err
	}
	return e.store, nil
}

// Admit adds a draft to the user's store.
func (r *Registry) Admit(ctx context.Context, userID string, draft models.Draft) (string, error) {
	s, err := r.Get(ctx, userID)
	if err != nil {
		return "", err
	}
	return s.AddNotification(draft)
}

func (r *Registry) entry(ctx context.Context, userID string) (*entry, error) {
	if userID == "" {
		return nil, models.NewValidationError("userId", "user id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := r.key(userID)
	// The cache hides expired items before the janitor evicts them, so
	// lookups go through live and the cache is only touched.
	if e, ok := r.live[key]; ok {
		r.entries.SetDefault(key, e)
		return e, nil
	}

	e, err := r.load(ctx, key)
	if err != nil {
		return nil, err
	}
	r.live[key] = e
	r.entries.SetDefault(key, e)
	r.updateActive()
	return e, nil
}

func (r *Registry) updateActive() {
	if r.metrics != nil {
		r.metrics.ActiveStores.Set(float64(len(r.live)))
	}
}

func (r *Registry) load(ctx context.Context, key string) (*entry, error) {
	e := &entry{key: key}
	opts := []Option{
		WithClock(func() time.Time { return r.now().In(r.cfg.Location) }),
		WithIDGenerator(r.newID),
		WithHook(func(snap Snapshot) { r.persist(context.Background(), e, snap) }),
		WithAdmissionObserver(r.observeAdmission),
	}

	data, err := r.slot.Load(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to load store %s: %w", key, err)
	}

	if data != nil {
		snap, decodeErr := DecodeSnapshot(data)
		if decodeErr == nil {
			s, restoreErr := Restore(snap, opts...)
			if restoreErr == nil {
				e.store = s
				e.saved = snap.Version
				return e, nil
			}
			decodeErr = restoreErr
		}
		r.logger.Warn().Err(decodeErr).Str("key", key).Msg("stored state is corrupt, falling back to defaults")
	}

	if r.cfg.SeedDemo {
		e.store = NewDemo(opts...)
	} else {
		e.store = New(opts...)
	}
	// Fresh state is written on the next command or flush.
	e.dirty.Store(true)
	return e, nil
}

// persist writes snap unless a newer version has already been saved.
func (r *Registry) persist(ctx context.Context, e *entry, snap Snapshot) {
	e.saveMu.Lock()
	defer e.saveMu.Unlock()

	if snap.Version < e.saved || (snap.Version == e.saved && !e.dirty.Load()) {
		return
	}

	data, err := snap.Marshal()
	if err == nil {
		start := time.Now()
		err = retry.DoContext(ctx, r.saveStrategy, func() error {
			return r.slot.Save(ctx, e.key, data)
		})
		if r.metrics != nil {
			r.metrics.SnapshotSaveLatency.Observe(time.Since(start).Seconds())
		}
	}

	if err != nil {
		e.dirty.Store(true)
		r.countSave("failed")
		r.logger.Error().Err(err).Str("key", e.key).Uint64("version", snap.Version).Msg("failed to save store snapshot")
		return
	}

	e.saved = snap.Version
	e.dirty.Store(false)
	r.countSave("ok")
}

func (r *Registry) countSave(status string) {
	if r.metrics != nil {
		r.metrics.SnapshotSaves.WithLabelValues(status).Inc()
	}
}

func (r *Registry) observeAdmission(n models.Notification, d resolver.Decision) {
	r.logger.Debug().
		Str("id", n.ID).
		Str("category", string(n.Category)).
		Str("priority", string(n.Priority)).
		Int("admitted", len(d.Admitted)).
		Msg("notification admitted")

	if r.metrics == nil {
		return
	}
	r.metrics.NotificationsAdmitted.WithLabelValues(string(n.Category), strconv.FormatBool(d.Silenced())).Inc()
	for ch, reason := range d.Suppressed {
		r.metrics.ChannelsSuppressed.WithLabelValues(string(ch), string(reason)).Inc()
	}
}

// Flush saves every store whose latest state has not been written.
func (r *Registry) Flush(ctx context.Context) error {
	r.mu.Lock()
	pending := make([]*entry, 0, len(r.live))
	for _, e := range r.live {
		if e.dirty.Load() {
			pending = append(pending, e)
		}
	}
	r.mu.Unlock()

	var failed int
	for _, e := range pending {
		r.persist(ctx, e, e.store.Snapshot())
		if e.dirty.Load() {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("failed to flush %d stores", failed)
	}
	return nil
}

// onEvicted saves an idle store and drops it from memory. A store that could
// not be saved goes back into the cache for another idle period.
func (r *Registry) onEvicted(key string, v interface{}) {
	e := v.(*entry)
	if e.dirty.Load() {
		r.persist(context.Background(), e, e.store.Snapshot())
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.live[key] != e {
		return
	}
	if _, touched := r.entries.Get(key); touched {
		return
	}
	if e.dirty.Load() {
		r.entries.SetDefault(key, e)
		r.logger.Warn().Str("key", key).Msg("idle store kept in memory, snapshot not saved")
		return
	}

	delete(r.live, key)
	r.updateActive()
	r.logger.Debug().Str("key", key).Msg("evicted idle store")
}

// Close flushes every store and drops them from memory.
func (r *Registry) Close(ctx context.Context) error {
	err := r.Flush(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries.Flush()
	r.live = make(map[string]*entry)
	r.updateActive()
	return err
}
