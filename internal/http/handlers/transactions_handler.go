package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"sellmypi/internal/models"
	"sellmypi/internal/service"
)

// TransactionsHandlers serves order submission, listing, status changes,
// deletion and export.
type TransactionsHandlers struct {
	orders    *service.Orders
	lifecycle *service.Lifecycle
	deleter   *service.Deleter
	logger    *zap.Logger
}

// NewTransactionsHandlers builds the handler set.
func NewTransactionsHandlers(orders *service.Orders, lifecycle *service.Lifecycle, deleter *service.Deleter, logger *zap.Logger) *TransactionsHandlers {
	return &TransactionsHandlers{orders: orders, lifecycle: lifecycle, deleter: deleter, logger: logger}
}

type createRequest struct {
	OwnerID     string          `json:"ownerId"`
	PiAmount    decimal.Decimal `json:"piAmount"`
	UpiID       string          `json:"upiId"`
	ImageURL    string          `json:"imageUrl"`
	SellRateUsd string          `json:"sellRateUsd"`
	SellRateInr string          `json:"sellRateInr"`
	UserInfo    struct {
		ID       string `json:"id"`
		Username string `json:"username"`
		Email    string `json:"email"`
		Phone    string `json:"phone"`
	} `json:"userInfo"`
}

// Create handles POST /api/transactions.
func (h *TransactionsHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	ownerID := req.OwnerID
	if ownerID == "" {
		// Older clients send the owner id only inside the identity snapshot.
		ownerID = req.UserInfo.ID
	}

	tx, err := h.orders.Create(r.Context(), service.CreateOrderInput{
		OwnerID:     ownerID,
		Username:    req.UserInfo.Username,
		Email:       req.UserInfo.Email,
		Phone:       req.UserInfo.Phone,
		PiAmount:    req.PiAmount,
		UpiID:       req.UpiID,
		ImageURL:    req.ImageURL,
		SellRateUsd: req.SellRateUsd,
		SellRateInr: req.SellRateInr,
	})
	if err != nil {
		h.logger.Warn("order creation rejected", zap.Error(err))
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, tx)
}

// List handles GET /api/transactions with filter/status/page/pageSize params.
func (h *TransactionsHandlers) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	page := intParam(query.Get("page"), 0)
	pageSize := intParam(query.Get("pageSize"), 10)
	statusFilter := query.Get("status")
	if statusFilter == "" {
		statusFilter = service.StatusFilterAll
	}

	view, err := h.orders.AdminView(r.Context(), query.Get("filter"), statusFilter, page, pageSize)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// OwnerHistory handles GET /api/transactions/{ownerId}.
func (h *TransactionsHandlers) OwnerHistory(w http.ResponseWriter, r *http.Request) {
	txs, err := h.orders.ListForOwner(r.Context(), r.PathValue("ownerId"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if txs == nil {
		txs = []models.Transaction{}
	}
	writeJSON(w, http.StatusOK, txs)
}

type statusRequest struct {
	Status models.Status `json:"status"`
}

// UpdateStatus handles PUT /api/transactions/{id}/status.
func (h *TransactionsHandlers) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	tx, err := h.lifecycle.Transition(r.Context(), id, req.Status)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

// ForceStatus handles PUT /api/transactions/{id}/status/force, the explicit
// operational override that skips the transition table.
func (h *TransactionsHandlers) ForceStatus(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	tx, err := h.lifecycle.ForceSetStatus(r.Context(), id, req.Status)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

// Delete handles DELETE /api/transactions/{id}.
func (h *TransactionsHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	warnings, err := h.deleter.DeleteTransaction(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":  "order deleted",
		"warnings": warnings,
	})
}

// Export handles GET /api/transactions/export, streaming all orders as CSV.
func (h *TransactionsHandlers) Export(w http.ResponseWriter, r *http.Request) {
	txs, err := h.orders.ListAll(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="all_transactions.csv"`)
	if err := service.WriteTransactionsCSV(w, txs); err != nil {
		h.logger.Error("csv export failed", zap.Error(err))
	}
}

func intParam(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
