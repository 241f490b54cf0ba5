package service

import (
	"sort"
	"strings"

	"sellmypi/internal/models"
)

// StatusFilterAll passes every status through the view filter.
const StatusFilterAll = "All"

// View is a filtered, sorted, paged window over the transaction set. Pages
// are zero-indexed; Page is the clamped page actually returned.
type View struct {
	Items      []models.Transaction `json:"items"`
	TotalCount int                  `json:"totalCount"`
	PageCount  int                  `json:"pageCount"`
	Page       int                  `json:"page"`
}

// BuildView filters case-insensitively against owner username, email, phone
// and the UPI id (any field contains the substring), applies the status
// filter, sorts newest first and pages the result. The requested page is
// clamped into [0, PageCount-1], so a filter change can never leave a stale
// offset pointing past the shorter list.
func BuildView(txs []models.Transaction, filter, statusFilter string, page, pageSize int) View {
	matched := make([]models.Transaction, 0, len(txs))
	needle := strings.ToLower(strings.TrimSpace(filter))
	for _, tx := range txs {
		if statusFilter != "" && statusFilter != StatusFilterAll && string(tx.Status) != statusFilter {
			continue
		}
		if needle != "" && !matchesFilter(tx, needle) {
			continue
		}
		matched = append(matched, tx)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	if pageSize <= 0 {
		pageSize = 10
	}
	total := len(matched)
	pageCount := (total + pageSize - 1) / pageSize
	if page >= pageCount {
		page = pageCount - 1
	}
	if page < 0 {
		page = 0
	}

	start := page * pageSize
	end := start + pageSize
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	return View{
		Items:      matched[start:end],
		TotalCount: total,
		PageCount:  pageCount,
		Page:       page,
	}
}

func matchesFilter(tx models.Transaction, needle string) bool {
	for _, field := range []string{
		tx.UserInfo.Username,
		tx.UserInfo.Email,
		tx.UserInfo.Phone,
		tx.UpiID,
	} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}
