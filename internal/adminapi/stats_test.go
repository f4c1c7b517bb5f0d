package adminapi

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"
)

func TestStatsRangeDay(t *testing.T) {
	day := time.Date(2026, 8, 26, 0, 0, 0, 0, time.Local)
	start, end, err := statsRange("day", day)
	if err != nil {
		t.Fatal(err)
	}
	if !start.Equal(day) {
		t.Errorf("start = %s", start)
	}
	if end.Hour() != 23 || end.Day() != 26 {
		t.Errorf("end = %s", end)
	}
}

func TestStatsRangeWeek(t *testing.T) {
	// 2026-08-26 is a Wednesday; the week runs Mon 24th to Sun 30th
	day := time.Date(2026, 8, 26, 0, 0, 0, 0, time.Local)
	start, end, err := statsRange("week", day)
	if err != nil {
		t.Fatal(err)
	}
	if start.Day() != 24 || start.Weekday() != time.Monday {
		t.Errorf("week start = %s", start)
	}
	if end.Day() != 30 || end.Weekday() != time.Sunday {
		t.Errorf("week end = %s", end)
	}
}

func TestStatsRangeWeekOnSunday(t *testing.T) {
	day := time.Date(2026, 8, 30, 0, 0, 0, 0, time.Local)
	start, _, err := statsRange("week", day)
	if err != nil {
		t.Fatal(err)
	}
	if start.Day() != 24 || start.Weekday() != time.Monday {
		t.Errorf("week start = %s, want Monday 24th", start)
	}
}

func TestStatsRangeMonth(t *testing.T) {
	day := time.Date(2026, 2, 14, 0, 0, 0, 0, time.Local)
	start, end, err := statsRange("month", day)
	if err != nil {
		t.Fatal(err)
	}
	if start.Day() != 1 || start.Month() != time.February {
		t.Errorf("month start = %s", start)
	}
	if end.Day() != 28 {
		t.Errorf("month end = %s, want Feb 28", end)
	}
}

func TestStatsRangeUnknownType(t *testing.T) {
	if _, _, err := statsRange("year", time.Now()); err == nil {
		t.Error("expected error for unknown type")
	}
}

func TestSalesStats(t *testing.T) {
	env := setupTestEnv(t)
	cola := env.seedProduct(t, "P001", "Cola", 3.50, 100, 10)
	member := env.seedMember(t, "M001", "13800000001", 30)

	env.request(t, http.MethodPost, "/api/orders", map[string]interface{}{
		"items": []map[string]interface{}{{"product_id": cola.ID, "quantity": 2}},
	})
	env.request(t, http.MethodPost, "/api/orders", map[string]interface{}{
		"member_id": member.ID,
		"items":     []map[string]interface{}{{"product_id": cola.ID, "quantity": 1}},
	})

	rec := env.request(t, http.MethodGet, "/api/stats/sales?type=day", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	_, _, data := decodeEnvelope(t, rec)
	var stats struct {
		TotalAmount  float64 `json:"total_amount"`
		OrderCount   int     `json:"order_count"`
		ItemQuantity int64   `json:"item_quantity"`
		MemberOrders int     `json:"member_orders"`
		Breakdown    []struct {
			Label  string  `json:"label"`
			Amount float64 `json:"amount"`
		} `json:"breakdown"`
	}
	if err := json.Unmarshal(data, &stats); err != nil {
		t.Fatal(err)
	}
	// 7.00 + (3.50 - 0.18 discount) = 10.32
	if stats.TotalAmount != 10.32 {
		t.Errorf("total = %v, want 10.32", stats.TotalAmount)
	}
	if stats.OrderCount != 2 {
		t.Errorf("orders = %d, want 2", stats.OrderCount)
	}
	if stats.ItemQuantity != 3 {
		t.Errorf("items = %d, want 3", stats.ItemQuantity)
	}
	if stats.MemberOrders != 1 {
		t.Errorf("member orders = %d, want 1", stats.MemberOrders)
	}
	if len(stats.Breakdown) != 24 {
		t.Errorf("hourly buckets = %d, want 24", len(stats.Breakdown))
	}
}

func TestProductStats(t *testing.T) {
	env := setupTestEnv(t)
	cola := env.seedProduct(t, "P001", "Cola", 3.50, 100, 10)
	chips := env.seedProduct(t, "P002", "Chips", 5.00, 100, 10)

	env.request(t, http.MethodPost, "/api/orders", map[string]interface{}{
		"items": []map[string]interface{}{
			{"product_id": cola.ID, "quantity": 1},
			{"product_id": chips.ID, "quantity": 3},
		},
	})

	rec := env.request(t, http.MethodGet, "/api/stats/products?type=day&limit=5", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	_, _, data := decodeEnvelope(t, rec)
	var stats struct {
		Items []struct {
			ProductCode string  `json:"product_code"`
			Revenue     float64 `json:"revenue"`
		} `json:"items"`
	}
	if err := json.Unmarshal(data, &stats); err != nil {
		t.Fatal(err)
	}
	if len(stats.Items) != 2 {
		t.Fatalf("ranked products = %d, want 2", len(stats.Items))
	}
	if stats.Items[0].ProductCode != "P002" {
		t.Errorf("top product = %s, want P002 (highest revenue)", stats.Items[0].ProductCode)
	}
	if stats.Items[0].Revenue != 15.00 {
		t.Errorf("top revenue = %v, want 15.00", stats.Items[0].Revenue)
	}
}

func TestSystemStatsUnknownMetric(t *testing.T) {
	env := setupTestEnv(t)

	rec := env.request(t, http.MethodGet, "/api/stats/system?name=bogus", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestSystemStatsEmpty(t *testing.T) {
	env := setupTestEnv(t)

	rec := env.request(t, http.MethodGet, "/api/stats/system?name=system_cpuuse", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
}

func TestDashboardStats(t *testing.T) {
	env := setupTestEnv(t)
	cola := env.seedProduct(t, "P001", "Cola", 3.50, 100, 10)
	env.seedProduct(t, "P002", "Gum", 1.00, 2, 10)

	env.request(t, http.MethodPost, "/api/orders", map[string]interface{}{
		"items": []map[string]interface{}{{"product_id": cola.ID, "quantity": 2}},
	})

	rec := env.request(t, http.MethodGet, "/api/stats/dashboard", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	_, _, data := decodeEnvelope(t, rec)
	var stats struct {
		Today struct {
			OrderCount  int64   `json:"order_count"`
			TotalAmount float64 `json:"total_amount"`
		} `json:"today"`
		Trend         []struct{} `json:"trend"`
		LowStockCount int64      `json:"low_stock_count"`
	}
	if err := json.Unmarshal(data, &stats); err != nil {
		t.Fatal(err)
	}
	if stats.Today.OrderCount != 1 || stats.Today.TotalAmount != 7.00 {
		t.Errorf("today = %+v, want 1 order of 7.00", stats.Today)
	}
	if len(stats.Trend) != 7 {
		t.Errorf("trend points = %d, want 7", len(stats.Trend))
	}
	if stats.LowStockCount != 1 {
		t.Errorf("low stock = %d, want 1 (gum)", stats.LowStockCount)
	}
}
