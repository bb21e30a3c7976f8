package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"notifyprefs/internal/models"
)

type PreferencesHandler struct {
	base
}

func NewPreferencesHandler(stores Stores, logger *zerolog.Logger) *PreferencesHandler {
	return &PreferencesHandler{base{stores: stores, logger: logger}}
}

func (h *PreferencesHandler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	s, ok := h.userStore(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.Preferences())
}

func (h *PreferencesHandler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	var patch models.PreferencesPatch
	if err := decodeBody(r, &patch); err != nil {
		writeError(w, h.logger, err)
		return
	}
	s, ok := h.userStore(w, r)
	if !ok {
		return
	}
	if err := s.UpdatePreferences(patch); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, s.Preferences())
}

func (h *PreferencesHandler) ToggleChannel(w http.ResponseWriter, r *http.Request) {
	ch, err := models.ParseChannel(chi.URLParam(r, "channel"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	s, ok := h.userStore(w, r)
	if !ok {
		return
	}
	if err := s.ToggleChannel(ch); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, s.Preferences())
}

func (h *PreferencesHandler) ToggleCategory(w http.ResponseWriter, r *http.Request) {
	c, err := models.ParseCategory(chi.URLParam(r, "category"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	s, ok := h.userStore(w, r)
	if !ok {
		return
	}
	if err := s.ToggleCategory(c); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, s.Preferences())
}
