package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"notifyprefs/internal/models"
)

type RouterConfig struct {
	Timeout time.Duration
	// Metrics is mounted at /metrics when set.
	Metrics http.Handler
}

func NewRouter(stores Stores, logger *zerolog.Logger, cfg RouterConfig) http.Handler {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}

	notify := NewNotifyHandler(stores, logger)
	prefs := NewPreferencesHandler(stores, logger)
	catalog := models.NewCatalog()

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.Timeout))

	r.Get("/api/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/api/catalog", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, catalog)
	})

	if cfg.Metrics != nil {
		r.Handle("/metrics", cfg.Metrics)
	}

	r.Route("/api/users/{userID}", func(r chi.Router) {
		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", notify.GetNotifications)
			r.Post("/", notify.CreateNotification)
			r.Delete("/", notify.ClearAll)
			r.Get("/stats", notify.GetStats)
			r.Get("/unread-count", notify.GetUnreadCount)
			r.Post("/read-all", notify.MarkAllAsRead)
			r.Get("/{id}", notify.GetNotification)
			r.Post("/{id}/read", notify.MarkAsRead)
			r.Post("/{id}/archive", notify.ArchiveNotification)
			r.Delete("/{id}", notify.DeleteNotification)
		})

		r.Route("/preferences", func(r chi.Router) {
			r.Get("/", prefs.GetPreferences)
			r.Patch("/", prefs.UpdatePreferences)
			r.Post("/channels/{channel}/toggle", prefs.ToggleChannel)
			r.Post("/categories/{category}/toggle", prefs.ToggleCategory)
		})
	})

	return r
}

func requestLogger(logger *zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				logger.Info().
					Str("request_id", middleware.GetReqID(r.Context())).
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Int("status", ww.Status()).
					Dur("duration", time.Since(start)).
					Msg("http request")
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
