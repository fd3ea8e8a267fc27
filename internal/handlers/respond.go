package handlers

import (
	"encoding/json"
	"net/http"

	"storeratings/internal/apperr"

	"github.com/rs/zerolog"
)

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, code int, errorCode, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{
		"error":   errorCode,
		"message": message,
	})
}

// respondServiceError maps a service failure onto the error taxonomy.
// Domain errors surface their message with the matching status; anything
// else is logged and returned as a generic 500.
func respondServiceError(w http.ResponseWriter, logger zerolog.Logger, errorCode string, err error) {
	if apperr.IsDomain(err) {
		respondWithError(w, apperr.StatusCode(err), errorCode, err.Error())
		return
	}
	logger.Error().Err(err).Msg("Unexpected service error")
	respondWithError(w, http.StatusInternalServerError, "internal_error", "Internal server error")
}
