package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"notifyprefs/internal/models"
	"notifyprefs/internal/store"
)

// Stores resolves the notification store of a user context.
type Stores interface {
	Get(ctx context.Context, userID string) (*store.Store, error)
}

// base resolves the store named by the userID route parameter.
type base struct {
	stores Stores
	logger *zerolog.Logger
}

type NotifyHandler struct {
	base
}

func NewNotifyHandler(stores Stores, logger *zerolog.Logger) *NotifyHandler {
	return &NotifyHandler{base{stores: stores, logger: logger}}
}

func (h *base) userStore(w http.ResponseWriter, r *http.Request) (*store.Store, bool) {
	s, err := h.stores.Get(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		writeError(w, h.logger, err)
		return nil, false
	}
	return s, true
}

func (h *NotifyHandler) GetNotifications(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	s, ok := h.userStore(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.FilteredNotifications(filter))
}

func (h *NotifyHandler) CreateNotification(w http.ResponseWriter, r *http.Request) {
	var draft models.Draft
	if err := decodeBody(r, &draft); err != nil {
		writeError(w, h.logger, err)
		return
	}
	s, ok := h.userStore(w, r)
	if !ok {
		return
	}

	id, err := s.AddNotification(draft)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	n, _ := s.Notification(id)
	writeJSON(w, http.StatusCreated, n)
}

func (h *NotifyHandler) GetNotification(w http.ResponseWriter, r *http.Request) {
	s, ok := h.userStore(w, r)
	if !ok {
		return
	}
	n, found := s.Notification(chi.URLParam(r, "id"))
	if !found {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "notification not found"})
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (h *NotifyHandler) MarkAsRead(w http.ResponseWriter, r *http.Request) {
	s, ok := h.userStore(w, r)
	if !ok {
		return
	}
	s.MarkAsRead(chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}

func (h *NotifyHandler) MarkAllAsRead(w http.ResponseWriter, r *http.Request) {
	s, ok := h.userStore(w, r)
	if !ok {
		return
	}
	s.MarkAllAsRead()
	w.WriteHeader(http.StatusNoContent)
}

func (h *NotifyHandler) ArchiveNotification(w http.ResponseWriter, r *http.Request) {
	s, ok := h.userStore(w, r)
	if !ok {
		return
	}
	s.ArchiveNotification(chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}

func (h *NotifyHandler) DeleteNotification(w http.ResponseWriter, r *http.Request) {
	s, ok := h.userStore(w, r)
	if !ok {
		return
	}
	s.DeleteNotification(chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}

func (h *NotifyHandler) ClearAll(w http.ResponseWriter, r *http.Request) {
	s, ok := h.userStore(w, r)
	if !ok {
		return
	}
	s.ClearAll()
	w.WriteHeader(http.StatusNoContent)
}

func (h *NotifyHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	s, ok := h.userStore(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.Stats())
}

func (h *NotifyHandler) GetUnreadCount(w http.ResponseWriter, r *http.Request) {
	s, ok := h.userStore(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"unread": s.UnreadCount()})
}

// parseFilter reads the category, read and archived query parameters.
func parseFilter(r *http.Request) (models.Filter, error) {
	var f models.Filter
	q := r.URL.Query()

	if v := q.Get("category"); v != "" {
		c, err := models.ParseCategory(v)
		if err != nil {
			return models.Filter{}, err
		}
		f.Category = &c
	}

	for name, dst := range map[string]**bool{"read": &f.Read, "archived": &f.Archived} {
		v := q.Get(name)
		if v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return models.Filter{}, models.NewValidationError(name, "%q is not a boolean", v)
		}
		*dst = &b
	}
	return f, nil
}
