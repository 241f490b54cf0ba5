package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status of a sell order within its lifecycle.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusApproved   Status = "approved"
	StatusCompleted  Status = "completed"
	StatusRejected   Status = "rejected"
)

// Statuses lists every lifecycle status in display order.
var Statuses = []Status{
	StatusPending,
	StatusProcessing,
	StatusApproved,
	StatusCompleted,
	StatusRejected,
}

// KnownStatus reports whether s is one of the lifecycle statuses.
func KnownStatus(s Status) bool {
	switch s {
	case StatusPending, StatusProcessing, StatusApproved, StatusCompleted, StatusRejected:
		return true
	}
	return false
}

// Terminal reports whether no transition is defined out of s.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusRejected
}

// UserInfo is the owner identity snapshot captured at submission time. It is
// kept verbatim even if the identity provider record changes later.
type UserInfo struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
}

// Transaction represents one Pi sell order. Monetary quote fields are
// write-once: they record the quote at time of sale, not current value.
type Transaction struct {
	ID          string          `json:"id"`
	OwnerID     string          `json:"ownerId"`
	PiAmount    decimal.Decimal `json:"piAmount"`
	UsdValue    string          `json:"usdValue"`
	InrValue    string          `json:"inrValue"`
	SellRateUsd string          `json:"sellRateUsd"`
	SellRateInr string          `json:"sellRateInr"`
	UpiID       string          `json:"upiId"`
	ImageURL    string          `json:"imageUrl"`
	Status      Status          `json:"status"`
	UserInfo    UserInfo        `json:"userInfo"`
	Version     int64           `json:"version"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}
