package adminapi

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/talkincode/toughstore/internal/domain"
	"github.com/talkincode/toughstore/internal/webserver"
	"github.com/talkincode/toughstore/pkg/common"
)

type purchasePlanForm struct {
	ProductId int64 `json:"product_id" validate:"required"`
	Quantity  int   `json:"quantity" validate:"required,gt=0"`
}

func addPurchasePlan(c echo.Context) error {
	form := new(purchasePlanForm)
	if err := c.Bind(form); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(form); err != nil {
		return handleValidationError(c, err)
	}
	db := GetDB(c)
	var product domain.Product
	if err := db.Where("id = ?", form.ProductId).First(&product).Error; err != nil {
		return fail(c, http.StatusNotFound, "product not found")
	}
	plan := domain.PurchasePlan{
		PlanNo:    common.GenerateDocNo("PP"),
		ProductId: form.ProductId,
		Quantity:  form.Quantity,
		Status:    0,
		CreatedBy: currentUserID(c),
	}
	if err := db.Create(&plan).Error; err != nil {
		return fail(c, http.StatusInternalServerError, err.Error())
	}
	addOprLog(c, "purchase_plan_add",
		fmt.Sprintf("plan %s for product %s x%d", plan.PlanNo, product.Code, plan.Quantity))
	return okMessage(c, "purchase plan created", plan)
}

type purchasePlanView struct {
	domain.PurchasePlan
	ProductName string `json:"product_name"`
	ProductCode string `json:"product_code"`
}

func listPurchasePlans(c echo.Context) error {
	page, limit := parsePagination(c)
	query := GetDB(c).Table("purchase_plans").
		Select("purchase_plans.*, products.name as product_name, products.code as product_code").
		Joins("JOIN products ON products.id = purchase_plans.product_id")
	if status := c.QueryParam("status"); status != "" {
		query = query.Where("purchase_plans.status = ?", status)
	}
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return fail(c, http.StatusInternalServerError, err.Error())
	}
	var plans []purchasePlanView
	err := query.Order("purchase_plans.created_at desc").
		Offset((page - 1) * limit).Limit(limit).
		Find(&plans).Error
	if err != nil {
		return fail(c, http.StatusInternalServerError, err.Error())
	}
	return paged(c, plans, total)
}

type stockInForm struct {
	ProductId int64   `json:"product_id" validate:"required"`
	Quantity  int     `json:"quantity" validate:"required,gt=0"`
	Amount    float64 `json:"amount" validate:"gte=0"`
	PlanId    *int64  `json:"plan_id"`
}

// addStockIn records a replenishment: inventory is incremented and the
// linked plan, when given, flips to done. One transaction end to end.
func addStockIn(c echo.Context) error {
	form := new(stockInForm)
	if err := c.Bind(form); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(form); err != nil {
		return handleValidationError(c, err)
	}
	db := GetDB(c)
	var product domain.Product
	if err := db.Where("id = ?", form.ProductId).First(&product).Error; err != nil {
		return fail(c, http.StatusNotFound, "product not found")
	}
	if form.PlanId != nil {
		var count int64
		db.Model(&domain.PurchasePlan{}).Where("id = ?", *form.PlanId).Count(&count)
		if count == 0 {
			return fail(c, http.StatusNotFound, "purchase plan not found")
		}
	}
	stockIn := domain.StockIn{
		StockInNo: common.GenerateDocNo("SI"),
		ProductId: form.ProductId,
		Quantity:  form.Quantity,
		Amount:    form.Amount,
		PlanId:    form.PlanId,
		CreatedBy: currentUserID(c),
	}
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&stockIn).Error; err != nil {
			return err
		}
		var inv domain.Inventory
		err := lockForUpdate(tx).
			Where("product_id = ?", form.ProductId).First(&inv).Error
		if err == gorm.ErrRecordNotFound {
			return tx.Create(&domain.Inventory{
				ProductId: form.ProductId,
				Quantity:  form.Quantity,
			}).Error
		}
		if err != nil {
			return err
		}
		err = tx.Model(&inv).
			Update("quantity", gorm.Expr("quantity + ?", form.Quantity)).Error
		if err != nil {
			return err
		}
		if form.PlanId != nil {
			return tx.Model(&domain.PurchasePlan{}).
				Where("id = ?", *form.PlanId).Update("status", 1).Error
		}
		return nil
	})
	if err != nil {
		return fail(c, http.StatusInternalServerError, err.Error())
	}
	addOprLog(c, "stock_in",
		fmt.Sprintf("stock-in %s product %s x%d", stockIn.StockInNo, product.Code, form.Quantity))
	return okMessage(c, "stock-in recorded", stockIn)
}

type stockInView struct {
	domain.StockIn
	ProductName string `json:"product_name"`
	ProductCode string `json:"product_code"`
}

func listStockIns(c echo.Context) error {
	page, limit := parsePagination(c)
	query := GetDB(c).Table("stock_in").
		Select("stock_in.*, products.name as product_name, products.code as product_code").
		Joins("JOIN products ON products.id = stock_in.product_id")
	if start := c.QueryParam("start_date"); start != "" {
		t, err := common.ParseDate(start)
		if err != nil {
			return fail(c, http.StatusBadRequest, "invalid start_date")
		}
		query = query.Where("stock_in.created_at >= ?", t)
	}
	if end := c.QueryParam("end_date"); end != "" {
		t, err := common.ParseDate(end)
		if err != nil {
			return fail(c, http.StatusBadRequest, "invalid end_date")
		}
		query = query.Where("stock_in.created_at <= ?", common.EndOfDay(t))
	}
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return fail(c, http.StatusInternalServerError, err.Error())
	}
	var records []stockInView
	err := query.Order("stock_in.created_at desc").
		Offset((page - 1) * limit).Limit(limit).
		Find(&records).Error
	if err != nil {
		return fail(c, http.StatusInternalServerError, err.Error())
	}
	return paged(c, records, total)
}

func registerPurchaseRoutes() {
	webserver.ApiPOST("/purchase-plans", addPurchasePlan)
	webserver.ApiGET("/purchase-plans", listPurchasePlans)
	webserver.ApiPOST("/stock-in", addStockIn)
	webserver.ApiGET("/stock-in", listStockIns)
}
