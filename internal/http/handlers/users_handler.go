package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"sellmypi/internal/models"
	"sellmypi/internal/service"
)

// UsersHandlers serves per-owner summaries, per-user export and the
// delete-user-with-transactions flow.
type UsersHandlers struct {
	orders  *service.Orders
	deleter *service.Deleter
	logger  *zap.Logger
}

// NewUsersHandlers builds the handler set.
func NewUsersHandlers(orders *service.Orders, deleter *service.Deleter, logger *zap.Logger) *UsersHandlers {
	return &UsersHandlers{orders: orders, deleter: deleter, logger: logger}
}

// List handles GET /api/users.
func (h *UsersHandlers) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.orders.Users(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if users == nil {
		users = []models.UserSummary{}
	}
	writeJSON(w, http.StatusOK, users)
}

// Delete handles DELETE /api/users/{id}. The identity-provider record is
// deleted by the provider itself; here we purge the owner's orders and proof
// images.
func (h *UsersHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	ownerID := r.PathValue("id")
	deleted, warnings, err := h.deleter.DeleteUserTransactions(r.Context(), ownerID)
	if err != nil {
		h.logger.Error("user purge failed", zap.String("owner_id", ownerID), zap.Error(err))
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":  "user and associated data deleted successfully",
		"deleted":  deleted,
		"warnings": warnings,
	})
}

// Export handles GET /api/users/{id}/export, streaming one owner's history
// as CSV.
func (h *UsersHandlers) Export(w http.ResponseWriter, r *http.Request) {
	txs, err := h.orders.ListForOwner(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="user_transactions.csv"`)
	if err := service.WriteTransactionsCSV(w, txs); err != nil {
		h.logger.Error("csv export failed", zap.Error(err))
	}
}
