package handlers

import (
	"net/http"

	"sellmypi/internal/service"
)

// NewStatsHandler returns the GET /api/stats handler.
func NewStatsHandler(orders *service.Orders) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := orders.Stats(r.Context())
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, stats)
	}
}
