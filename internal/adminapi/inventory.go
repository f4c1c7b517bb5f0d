package adminapi

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/talkincode/toughstore/internal/domain"
	"github.com/talkincode/toughstore/internal/webserver"
)

type inventoryView struct {
	ProductId      int64   `json:"product_id"`
	ProductCode    string  `json:"product_code"`
	ProductName    string  `json:"product_name"`
	Category       string  `json:"category"`
	Price          float64 `json:"price"`
	Quantity       int     `json:"quantity"`
	AlertThreshold int     `json:"alert_threshold"`
	StockStatus    string  `json:"stock_status"`
}

type inventoryRow struct {
	domain.Inventory
	Code     string  `json:"-"`
	Name     string  `json:"-"`
	Category string  `json:"-"`
	Price    float64 `json:"-"`
}

func inventoryQuery(c echo.Context) *gorm.DB {
	return GetDB(c).Table("inventory").
		Select("inventory.*, products.code, products.name, products.category, products.price").
		Joins("JOIN products ON products.id = inventory.product_id")
}

func listInventory(c echo.Context) error {
	page, limit := parsePagination(c)
	query := inventoryQuery(c)
	query = keywordFilter(query, c.QueryParam("keyword"),
		"products.name", "products.code", "products.barcode")
	switch c.QueryParam("status") {
	case domain.StockStatusOut:
		query = query.Where("inventory.quantity <= 0")
	case domain.StockStatusLow:
		query = query.Where("inventory.quantity > 0 AND inventory.quantity <= inventory.alert_threshold")
	case domain.StockStatusNormal:
		query = query.Where("inventory.quantity > inventory.alert_threshold")
	}
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return fail(c, http.StatusInternalServerError, err.Error())
	}
	var rows []inventoryRow
	err := query.Order("products.code asc").
		Offset((page - 1) * limit).Limit(limit).
		Find(&rows).Error
	if err != nil {
		return fail(c, http.StatusInternalServerError, err.Error())
	}
	return paged(c, inventoryViews(rows), total)
}

func inventoryViews(rows []inventoryRow) []inventoryView {
	views := make([]inventoryView, 0, len(rows))
	for _, r := range rows {
		views = append(views, inventoryView{
			ProductId:      r.ProductId,
			ProductCode:    r.Code,
			ProductName:    r.Name,
			Category:       r.Category,
			Price:          r.Price,
			Quantity:       r.Quantity,
			AlertThreshold: r.AlertThreshold,
			StockStatus:    r.StockStatus(),
		})
	}
	return views
}

type inventoryUpdateForm struct {
	Quantity       *int `json:"quantity"`
	AlertThreshold *int `json:"alert_threshold" validate:"omitempty,gte=0"`
}

// updateInventory sets the absolute quantity or alert threshold for one
// product, creating the inventory row when the product has none yet.
// Negative quantities are accepted to record shrinkage.
func updateInventory(c echo.Context) error {
	productId, err := parseIDParam(c, "product_id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid product id")
	}
	form := new(inventoryUpdateForm)
	if err := c.Bind(form); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(form); err != nil {
		return handleValidationError(c, err)
	}
	if form.Quantity == nil && form.AlertThreshold == nil {
		return fail(c, http.StatusBadRequest, "no updatable fields in body")
	}
	db := GetDB(c)
	var count int64
	db.Model(&domain.Product{}).Where("id = ?", productId).Count(&count)
	if count == 0 {
		return fail(c, http.StatusNotFound, "product not found")
	}
	var inv domain.Inventory
	err = db.Where("product_id = ?", productId).First(&inv).Error
	switch {
	case err == gorm.ErrRecordNotFound:
		inv = domain.Inventory{ProductId: productId}
		if form.Quantity != nil {
			inv.Quantity = *form.Quantity
		}
		if form.AlertThreshold != nil {
			inv.AlertThreshold = *form.AlertThreshold
		}
		if err := db.Create(&inv).Error; err != nil {
			return fail(c, http.StatusInternalServerError, err.Error())
		}
	case err != nil:
		return fail(c, http.StatusInternalServerError, err.Error())
	default:
		values := map[string]interface{}{}
		if form.Quantity != nil {
			values["quantity"] = *form.Quantity
		}
		if form.AlertThreshold != nil {
			values["alert_threshold"] = *form.AlertThreshold
		}
		if err := db.Model(&inv).Updates(values).Error; err != nil {
			return fail(c, http.StatusInternalServerError, err.Error())
		}
	}
	addOprLog(c, "inventory_update", fmt.Sprintf("adjusted inventory of product %d", productId))
	return okMessage(c, "inventory updated", nil)
}

// listInventoryAlerts returns every product at or under its threshold
func listInventoryAlerts(c echo.Context) error {
	var rows []inventoryRow
	err := inventoryQuery(c).
		Where("inventory.quantity <= inventory.alert_threshold").
		Order("inventory.quantity asc").
		Find(&rows).Error
	if err != nil {
		return fail(c, http.StatusInternalServerError, err.Error())
	}
	return ok(c, inventoryViews(rows))
}

func registerInventoryRoutes() {
	webserver.ApiGET("/inventory", listInventory)
	webserver.ApiPUT("/inventory/:product_id", updateInventory)
	webserver.ApiGET("/inventory/alert", listInventoryAlerts)
}
