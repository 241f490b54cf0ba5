package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DashboardStats is derived from the full transaction set. It is never stored
// as a source of truth; every value is recomputable from the transactions.
// Monetary sums are carried as decimals rounded to two places for display.
type DashboardStats struct {
	TotalOrders      int             `json:"totalOrders"`
	TotalUsers       int             `json:"totalUsers"`
	PendingOrders    int             `json:"pendingOrders"`
	ProcessingOrders int             `json:"processingOrders"`
	ApprovedOrders   int             `json:"approvedOrders"`
	CompletedOrders  int             `json:"completedOrders"`
	RejectedOrders   int             `json:"rejectedOrders"`
	TotalPiVolume    decimal.Decimal `json:"totalPiVolume"`
	TotalUsdValue    decimal.Decimal `json:"totalUsdValue"`
	TotalInrValue    decimal.Decimal `json:"totalInrValue"`
}

// UserSummary aggregates one owner's orders.
type UserSummary struct {
	OwnerID          string          `json:"id"`
	Username         string          `json:"username"`
	Email            string          `json:"email"`
	Phone            string          `json:"phone"`
	TotalOrders      int             `json:"totalOrders"`
	RealizedUsdValue decimal.Decimal `json:"totalUsdValue"`
	LastStatus       Status          `json:"lastStatus"`
	LastOrderAt      time.Time       `json:"lastOrderAt"`
}
