package adminapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/talkincode/toughstore/internal/domain"
	"github.com/talkincode/toughstore/internal/webserver"
)

// shiftTotals aggregates the orders a user rang up inside the window
func shiftTotals(db *gorm.DB, userId int64, from, to time.Time) (count int64, amount float64) {
	var result struct {
		Cnt int64
		Sum float64
	}
	db.Model(&domain.Order{}).
		Select("COUNT(*) as cnt, COALESCE(SUM(actual_amount), 0) as sum").
		Where("user_id = ? AND created_at >= ? AND created_at <= ?", userId, from, to).
		Scan(&result)
	return result.Cnt, result.Sum
}

func startShift(c echo.Context) error {
	userId := currentUserID(c)
	db := GetDB(c)
	var count int64
	db.Model(&domain.Shift{}).
		Where("user_id = ? AND status = ?", userId, domain.ShiftActive).Count(&count)
	if count > 0 {
		return fail(c, http.StatusBadRequest, "an active shift already exists")
	}
	shift := domain.Shift{
		UserId:    userId,
		StartTime: time.Now(),
		Status:    domain.ShiftActive,
	}
	if err := db.Create(&shift).Error; err != nil {
		return fail(c, http.StatusInternalServerError, err.Error())
	}
	return okMessage(c, "shift started", shift)
}

func endShift(c echo.Context) error {
	userId := currentUserID(c)
	db := GetDB(c)
	var shift domain.Shift
	err := db.Where("user_id = ? AND status = ?", userId, domain.ShiftActive).
		First(&shift).Error
	if err != nil {
		return fail(c, http.StatusBadRequest, "no active shift")
	}
	now := time.Now()
	orderCount, totalAmount := shiftTotals(db, userId, shift.StartTime, now)
	err = db.Model(&shift).Updates(map[string]interface{}{
		"end_time":     now,
		"order_count":  orderCount,
		"total_amount": totalAmount,
		"status":       domain.ShiftEnded,
	}).Error
	if err != nil {
		return fail(c, http.StatusInternalServerError, err.Error())
	}
	shift.EndTime = &now
	shift.OrderCount = int(orderCount)
	shift.TotalAmount = totalAmount
	shift.Status = domain.ShiftEnded
	addOprLog(c, "shift_end",
		fmt.Sprintf("shift %d ended with %d orders", shift.ID, orderCount))
	return okMessage(c, "shift ended", shift)
}

// currentShift reports the running shift with live totals, without closing it
func currentShift(c echo.Context) error {
	userId := currentUserID(c)
	db := GetDB(c)
	var shift domain.Shift
	err := db.Where("user_id = ? AND status = ?", userId, domain.ShiftActive).
		First(&shift).Error
	if err != nil {
		return fail(c, http.StatusNotFound, "no active shift")
	}
	now := time.Now()
	orderCount, totalAmount := shiftTotals(db, userId, shift.StartTime, now)
	return ok(c, map[string]interface{}{
		"shift":            shift,
		"order_count":      orderCount,
		"total_amount":     totalAmount,
		"duration_minutes": int(now.Sub(shift.StartTime).Minutes()),
	})
}

func listShifts(c echo.Context) error {
	page, limit := parsePagination(c)
	query := GetDB(c).Model(&domain.Shift{})
	if userId := c.QueryParam("user_id"); userId != "" {
		query = query.Where("user_id = ?", userId)
	}
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return fail(c, http.StatusInternalServerError, err.Error())
	}
	var shifts []domain.Shift
	err := query.Order("start_time desc").
		Offset((page - 1) * limit).Limit(limit).
		Find(&shifts).Error
	if err != nil {
		return fail(c, http.StatusInternalServerError, err.Error())
	}
	return paged(c, shifts, total)
}

func registerShiftRoutes() {
	webserver.ApiPOST("/shifts/start", startShift)
	webserver.ApiPOST("/shifts/end", endShift)
	webserver.ApiGET("/shifts/current", currentShift)
	webserver.ApiGET("/shifts", listShifts)
}
