package service

import (
	"testing"
	"time"

	"sellmypi/internal/models"
)

func viewFixture() []models.Transaction {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	txs := make([]models.Transaction, 0, 25)
	for i := 0; i < 25; i++ {
		status := models.StatusPending
		if i%5 == 0 {
			status = models.StatusCompleted
		}
		item := tx("owner", status, 10, "5.00", "425.00", base.Add(time.Duration(i)*time.Minute))
		item.ID = "tx-" + string(rune('a'+i))
		item.UpiID = "owner@upi"
		txs = append(txs, item)
	}
	txs[3].UserInfo = models.UserInfo{Username: "Alice", Email: "alice@example.com", Phone: "111"}
	txs[7].UserInfo = models.UserInfo{Username: "Bob", Email: "bob@example.com", Phone: "222"}
	txs[7].UpiID = "alicepay@upi"
	return txs
}

func TestBuildViewPaging(t *testing.T) {
	txs := viewFixture()

	view := BuildView(txs, "", StatusFilterAll, 0, 10)
	if view.TotalCount != 25 || view.PageCount != 3 || view.Page != 0 {
		t.Fatalf("page 0: total=%d pages=%d page=%d", view.TotalCount, view.PageCount, view.Page)
	}
	if len(view.Items) != 10 {
		t.Fatalf("page 0 wants 10 items, got %d", len(view.Items))
	}

	last := BuildView(txs, "", StatusFilterAll, 2, 10)
	if len(last.Items) != 5 || last.Page != 2 {
		t.Fatalf("last page wants 5 items on page 2, got %d on %d", len(last.Items), last.Page)
	}
}

func TestBuildViewNewestFirst(t *testing.T) {
	view := BuildView(viewFixture(), "", StatusFilterAll, 0, 25)
	for i := 1; i < len(view.Items); i++ {
		if view.Items[i].CreatedAt.After(view.Items[i-1].CreatedAt) {
			t.Fatalf("items not sorted newest first at index %d", i)
		}
	}
}

func TestBuildViewStatusFilter(t *testing.T) {
	view := BuildView(viewFixture(), "", string(models.StatusCompleted), 0, 10)
	if view.TotalCount != 5 {
		t.Fatalf("want 5 completed orders, got %d", view.TotalCount)
	}
	for _, item := range view.Items {
		if item.Status != models.StatusCompleted {
			t.Fatalf("status filter leaked %s", item.Status)
		}
	}
}

func TestBuildViewTextFilterMatchesAnyContactField(t *testing.T) {
	txs := viewFixture()

	// Case-insensitive, and "alice" hits both the username on one order
	// and the UPI id on another.
	view := BuildView(txs, "ALICE", StatusFilterAll, 0, 10)
	if view.TotalCount != 2 {
		t.Fatalf("want 2 matches for alice, got %d", view.TotalCount)
	}

	byPhone := BuildView(txs, "222", StatusFilterAll, 0, 10)
	if byPhone.TotalCount != 1 || byPhone.Items[0].UserInfo.Username != "Bob" {
		t.Fatalf("phone filter: %+v", byPhone)
	}
}

func TestBuildViewClampsPageAfterFilterChange(t *testing.T) {
	txs := viewFixture()

	// Page 2 is valid for the unfiltered list but past the end once the
	// status filter shrinks it; the view clamps instead of going empty.
	view := BuildView(txs, "", string(models.StatusCompleted), 2, 10)
	if view.Page != 0 || len(view.Items) != 5 {
		t.Fatalf("want clamp to page 0 with 5 items, got page %d with %d", view.Page, len(view.Items))
	}

	negative := BuildView(txs, "", StatusFilterAll, -3, 10)
	if negative.Page != 0 {
		t.Fatalf("negative page must clamp to 0, got %d", negative.Page)
	}
}

func TestBuildViewEmptyResult(t *testing.T) {
	view := BuildView(nil, "nobody", StatusFilterAll, 4, 10)
	if view.TotalCount != 0 || view.PageCount != 0 || view.Page != 0 || len(view.Items) != 0 {
		t.Fatalf("empty view: %+v", view)
	}
}

func TestBuildViewDefaultPageSize(t *testing.T) {
	view := BuildView(viewFixture(), "", StatusFilterAll, 0, 0)
	if len(view.Items) != 10 || view.PageCount != 3 {
		t.Fatalf("zero pageSize must fall back to 10: items=%d pages=%d", len(view.Items), view.PageCount)
	}
}
