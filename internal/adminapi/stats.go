package adminapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/talkincode/toughstore/internal/domain"
	"github.com/talkincode/toughstore/internal/webserver"
	"github.com/talkincode/toughstore/pkg/common"
	"github.com/talkincode/toughstore/pkg/metrics"
)

// statsRange resolves a report window: the day itself, its Monday-to-Sunday
// week, or its calendar month.
func statsRange(typ string, day time.Time) (start, end time.Time, err error) {
	switch typ {
	case "", "day":
		return day, common.EndOfDay(day), nil
	case "week":
		weekday := int(day.Weekday())
		if weekday == 0 {
			weekday = 7
		}
		start = day.AddDate(0, 0, -(weekday - 1))
		return start, common.EndOfDay(start.AddDate(0, 0, 6)), nil
	case "month":
		start = time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, day.Location())
		return start, common.EndOfDay(start.AddDate(0, 1, -1)), nil
	default:
		return start, end, fmt.Errorf("unknown stats type %s", typ)
	}
}

func parseStatsWindow(c echo.Context) (typ string, start, end time.Time, err error) {
	typ = c.QueryParam("type")
	if typ == "" {
		typ = "day"
	}
	day := common.Today()
	if d := c.QueryParam("date"); d != "" {
		day, err = common.ParseDate(d)
		if err != nil {
			return typ, start, end, fmt.Errorf("invalid date")
		}
	}
	start, end, err = statsRange(typ, day)
	return typ, start, end, err
}

type orderStatRow struct {
	CreatedAt    time.Time
	ActualAmount float64
	MemberId     *int64
}

type trendPoint struct {
	Label  string  `json:"label"`
	Amount float64 `json:"amount"`
	Orders int     `json:"orders"`
}

// salesStats returns window totals plus an hourly (day) or daily
// (week/month) breakdown.
func salesStats(c echo.Context) error {
	typ, start, end, err := parseStatsWindow(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, err.Error())
	}
	db := GetDB(c)
	var rows []orderStatRow
	err = db.Model(&domain.Order{}).
		Select("created_at, actual_amount, member_id").
		Where("created_at >= ? AND created_at <= ?", start, end).
		Find(&rows).Error
	if err != nil {
		return fail(c, http.StatusInternalServerError, err.Error())
	}

	var totalAmount float64
	memberOrders := 0
	for _, r := range rows {
		totalAmount += r.ActualAmount
		if r.MemberId != nil {
			memberOrders++
		}
	}
	var itemQuantity int64
	db.Model(&domain.OrderItem{}).
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.created_at >= ? AND orders.created_at <= ?", start, end).
		Select("COALESCE(SUM(order_items.quantity), 0)").
		Scan(&itemQuantity)

	var breakdown []trendPoint
	if typ == "day" {
		points := make([]trendPoint, 24)
		for h := range points {
			points[h].Label = fmt.Sprintf("%02d:00", h)
		}
		for _, r := range rows {
			h := r.CreatedAt.In(start.Location()).Hour()
			points[h].Amount += r.ActualAmount
			points[h].Orders++
		}
		breakdown = points
	} else {
		days := int(end.Sub(start).Hours()/24) + 1
		points := make([]trendPoint, days)
		for d := range points {
			points[d].Label = start.AddDate(0, 0, d).Format("2006-01-02")
		}
		for _, r := range rows {
			d := int(r.CreatedAt.In(start.Location()).Sub(start).Hours() / 24)
			if d >= 0 && d < days {
				points[d].Amount += r.ActualAmount
				points[d].Orders++
			}
		}
		breakdown = points
	}
	return ok(c, map[string]interface{}{
		"type":          typ,
		"start_date":    start.Format("2006-01-02"),
		"end_date":      end.Format("2006-01-02"),
		"total_amount":  round2(totalAmount),
		"order_count":   len(rows),
		"item_quantity": itemQuantity,
		"member_orders": memberOrders,
		"breakdown":     breakdown,
	})
}

type productRank struct {
	ProductId   int64   `json:"product_id"`
	ProductName string  `json:"product_name"`
	ProductCode string  `json:"product_code"`
	Quantity    int64   `json:"quantity"`
	Revenue     float64 `json:"revenue"`
}

func topProducts(db *gorm.DB, start, end time.Time, limit int) ([]productRank, error) {
	var ranks []productRank
	query := db.Model(&domain.OrderItem{}).
		Select(`order_items.product_id,
			products.name as product_name,
			products.code as product_code,
			SUM(order_items.quantity) as quantity,
			SUM(order_items.amount) as revenue`).
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Joins("JOIN products ON products.id = order_items.product_id").
		Where("orders.created_at >= ? AND orders.created_at <= ?", start, end).
		Group("order_items.product_id, products.name, products.code").
		Order("revenue desc")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Scan(&ranks).Error
	return ranks, err
}

// productStats ranks products by revenue inside the window
func productStats(c echo.Context) error {
	typ, start, end, err := parseStatsWindow(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, err.Error())
	}
	limit := 10
	if l := c.QueryParam("limit"); l != "" {
		if _, err := fmt.Sscanf(l, "%d", &limit); err != nil || limit <= 0 {
			return fail(c, http.StatusBadRequest, "invalid limit")
		}
	}
	ranks, err := topProducts(GetDB(c), start, end, limit)
	if err != nil {
		return fail(c, http.StatusInternalServerError, err.Error())
	}
	return ok(c, map[string]interface{}{
		"type":       typ,
		"start_date": start.Format("2006-01-02"),
		"end_date":   end.Format("2006-01-02"),
		"items":      ranks,
	})
}

// dashboardStats bundles the landing-page blocks: today's totals, a 7-day
// revenue trend and the top-5 products with the remainder folded into
// an "other" bucket.
func dashboardStats(c echo.Context) error {
	db := GetDB(c)
	today := common.Today()
	todayEnd := common.EndOfDay(today)

	var todayRow struct {
		Cnt int64
		Sum float64
	}
	db.Model(&domain.Order{}).
		Select("COUNT(*) as cnt, COALESCE(SUM(actual_amount), 0) as sum").
		Where("created_at >= ? AND created_at <= ?", today, todayEnd).
		Scan(&todayRow)

	trendStart := today.AddDate(0, 0, -6)
	var rows []orderStatRow
	db.Model(&domain.Order{}).
		Select("created_at, actual_amount, member_id").
		Where("created_at >= ? AND created_at <= ?", trendStart, todayEnd).
		Find(&rows)
	trend := make([]trendPoint, 7)
	for d := range trend {
		trend[d].Label = trendStart.AddDate(0, 0, d).Format("2006-01-02")
	}
	for _, r := range rows {
		d := int(r.CreatedAt.In(today.Location()).Sub(trendStart).Hours() / 24)
		if d >= 0 && d < 7 {
			trend[d].Amount += r.ActualAmount
			trend[d].Orders++
		}
	}

	ranks, err := topProducts(db, trendStart, todayEnd, 0)
	if err != nil {
		return fail(c, http.StatusInternalServerError, err.Error())
	}
	top := ranks
	if len(ranks) > 5 {
		top = ranks[:5]
		var other productRank
		other.ProductName = "other"
		for _, r := range ranks[5:] {
			other.Quantity += r.Quantity
			other.Revenue += r.Revenue
		}
		other.Revenue = round2(other.Revenue)
		top = append(top, other)
	}

	var lowStock int64
	db.Model(&domain.Inventory{}).
		Where("quantity <= alert_threshold").Count(&lowStock)

	return ok(c, map[string]interface{}{
		"today": map[string]interface{}{
			"order_count":  todayRow.Cnt,
			"total_amount": round2(todayRow.Sum),
		},
		"trend":           trend,
		"top_products":    top,
		"low_stock_count": lowStock,
	})
}

var systemGauges = map[string]bool{
	"system_cpuuse":     true,
	"system_memuse":     true,
	"toughstore_cpuuse": true,
	"toughstore_memuse": true,
}

type metricPoint struct {
	Timestamp int64   `json:"timestamp"`
	Value     float64 `json:"value"`
}

// systemStats returns monitor gauge points collected by the cron tasks
func systemStats(c echo.Context) error {
	name := c.QueryParam("name")
	if !systemGauges[name] {
		return fail(c, http.StatusBadRequest, "unknown metric name")
	}
	hours := 1
	if h := c.QueryParam("hours"); h != "" {
		if _, err := fmt.Sscanf(h, "%d", &hours); err != nil || hours <= 0 || hours > 168 {
			return fail(c, http.StatusBadRequest, "invalid hours")
		}
	}
	end := time.Now().Unix()
	start := end - int64(hours)*3600
	points, err := metrics.QueryRange(name, start, end)
	if err != nil {
		return fail(c, http.StatusInternalServerError, err.Error())
	}
	result := make([]metricPoint, 0, len(points))
	for _, p := range points {
		result = append(result, metricPoint{Timestamp: p.Timestamp, Value: p.Value})
	}
	return ok(c, result)
}

func registerStatsRoutes() {
	webserver.ApiGET("/stats/sales", salesStats)
	webserver.ApiGET("/stats/products", productStats)
	webserver.ApiGET("/stats/dashboard", dashboardStats)
	webserver.ApiGET("/stats/system", systemStats)
}
