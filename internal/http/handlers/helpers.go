package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"sellmypi/internal/models"
)

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeServiceError maps the service error taxonomy onto HTTP statuses,
// keeping the entity/operation detail of the error message.
func writeServiceError(w http.ResponseWriter, err error) {
	var (
		validationErr *models.ValidationError
		transitionErr *models.InvalidTransitionError
		immutableErr  *models.ImmutableFieldError
		partialErr    *models.PartialFailureError
		depErr        *models.DependencyError
	)

	switch {
	case errors.Is(err, models.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, models.ErrUnknownStatus):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &validationErr):
		writeError(w, http.StatusBadRequest, validationErr.Error())
	case errors.As(err, &transitionErr):
		writeError(w, http.StatusConflict, transitionErr.Error())
	case errors.As(err, &immutableErr):
		writeError(w, http.StatusConflict, immutableErr.Error())
	case errors.As(err, &partialErr):
		writeJSON(w, http.StatusMultiStatus, map[string]any{
			"error":     partialErr.Error(),
			"failedIds": partialErr.FailedIDs,
		})
	case errors.As(err, &depErr):
		writeError(w, http.StatusBadGateway, depErr.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
