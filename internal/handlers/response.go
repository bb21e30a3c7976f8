package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"notifyprefs/internal/models"
)

type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps validation failures to 400 and everything else to 500.
func writeError(w http.ResponseWriter, logger *zerolog.Logger, err error) {
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: verr.Message, Field: verr.Field})
		return
	}
	logger.Error().Err(err).Msg("request failed")
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}

// decodeBody rejects malformed JSON and unknown fields.
func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return models.NewValidationError("", "invalid request body: %v", err)
	}
	return nil
}
