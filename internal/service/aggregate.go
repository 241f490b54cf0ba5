package service

import (
	"sort"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"sellmypi/internal/models"
)

// Aggregator derives dashboard and per-user statistics from a transaction
// snapshot. Aggregation is a pure fold: no hidden state, no call-order
// dependency, never an error on well-formed input.
type Aggregator struct {
	realized map[models.Status]struct{}
	logger   *zap.Logger
}

// DefaultRealizedStatuses is the canonical set of statuses whose monetary
// value counts toward totals.
var DefaultRealizedStatuses = []models.Status{models.StatusCompleted}

// NewAggregator builds an aggregator counting the given statuses as realized.
// An empty set falls back to DefaultRealizedStatuses.
func NewAggregator(realized []models.Status, logger *zap.Logger) *Aggregator {
	if len(realized) == 0 {
		realized = DefaultRealizedStatuses
	}
	set := make(map[models.Status]struct{}, len(realized))
	for _, s := range realized {
		set[s] = struct{}{}
	}
	return &Aggregator{realized: set, logger: logger}
}

// Realized reports whether s counts toward monetary totals.
func (a *Aggregator) Realized(s models.Status) bool {
	_, ok := a.realized[s]
	return ok
}

// DashboardStats folds the transaction set into dashboard-wide statistics.
// Sums run at full precision and are rounded to two places once, at the end.
func (a *Aggregator) DashboardStats(txs []models.Transaction) models.DashboardStats {
	stats := models.DashboardStats{TotalOrders: len(txs)}
	owners := make(map[string]struct{})
	piVolume := decimal.Zero
	usdTotal := decimal.Zero
	inrTotal := decimal.Zero

	for _, tx := range txs {
		if tx.OwnerID != "" {
			owners[tx.OwnerID] = struct{}{}
		}
		switch tx.Status {
		case models.StatusPending:
			stats.PendingOrders++
		case models.StatusProcessing:
			stats.ProcessingOrders++
		case models.StatusApproved:
			stats.ApprovedOrders++
		case models.StatusCompleted:
			stats.CompletedOrders++
		case models.StatusRejected:
			stats.RejectedOrders++
		default:
			// Records written before the status field existed count as pending.
			stats.PendingOrders++
		}
		if a.Realized(tx.Status) {
			piVolume = piVolume.Add(tx.PiAmount)
			usdTotal = usdTotal.Add(a.monetary(tx.ID, "usdValue", tx.UsdValue))
			inrTotal = inrTotal.Add(a.monetary(tx.ID, "inrValue", tx.InrValue))
		}
	}

	stats.TotalUsers = len(owners)
	stats.TotalPiVolume = piVolume.Round(2)
	stats.TotalUsdValue = usdTotal.Round(2)
	stats.TotalInrValue = inrTotal.Round(2)
	return stats
}

// UserSummaries groups transactions by owner.
func (a *Aggregator) UserSummaries(txs []models.Transaction) map[string]models.UserSummary {
	sums := make(map[string]decimal.Decimal)
	summaries := make(map[string]models.UserSummary)

	for _, tx := range txs {
		if tx.OwnerID == "" {
			continue
		}
		summary, ok := summaries[tx.OwnerID]
		if !ok {
			summary = models.UserSummary{
				OwnerID:  tx.OwnerID,
				Username: tx.UserInfo.Username,
				Email:    tx.UserInfo.Email,
				Phone:    tx.UserInfo.Phone,
			}
			sums[tx.OwnerID] = decimal.Zero
		}
		summary.TotalOrders++
		if tx.CreatedAt.After(summary.LastOrderAt) || summary.LastStatus == "" {
			summary.LastOrderAt = tx.CreatedAt
			summary.LastStatus = tx.Status
		}
		if a.Realized(tx.Status) {
			sums[tx.OwnerID] = sums[tx.OwnerID].Add(a.monetary(tx.ID, "usdValue", tx.UsdValue))
		}
		summaries[tx.OwnerID] = summary
	}

	for ownerID, summary := range summaries {
		summary.RealizedUsdValue = sums[ownerID].Round(2)
		summaries[ownerID] = summary
	}
	return summaries
}

// SortedUserSummaries returns the summaries ordered by most recent order.
func (a *Aggregator) SortedUserSummaries(txs []models.Transaction) []models.UserSummary {
	byOwner := a.UserSummaries(txs)
	users := make([]models.UserSummary, 0, len(byOwner))
	for _, summary := range byOwner {
		users = append(users, summary)
	}
	sort.Slice(users, func(i, j int) bool {
		if users[i].LastOrderAt.Equal(users[j].LastOrderAt) {
			return users[i].OwnerID < users[j].OwnerID
		}
		return users[i].LastOrderAt.After(users[j].LastOrderAt)
	})
	return users
}

// monetary parses a stored decimal string. Malformed values contribute zero:
// bad data must not block dashboard rendering.
func (a *Aggregator) monetary(txID, field, value string) decimal.Decimal {
	if value == "" {
		a.logger.Warn("transaction missing monetary field",
			zap.String("tx_id", txID), zap.String("field", field))
		return decimal.Zero
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		a.logger.Warn("transaction has malformed monetary field",
			zap.String("tx_id", txID), zap.String("field", field), zap.String("value", value))
		return decimal.Zero
	}
	return d
}
