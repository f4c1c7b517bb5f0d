package adminapi

import (
	"bytes"
	"fmt"
	"math"
	"net/http"

	"github.com/360EntSecGroup-Skylar/excelize"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/talkincode/toughstore/internal/domain"
	"github.com/talkincode/toughstore/internal/webserver"
	"github.com/talkincode/toughstore/pkg/common"
)

// memberDiscountRate is applied to the whole cart for a valid member
const memberDiscountRate = 0.05

// Price is the agreed unit price at the register; when omitted the
// catalog price applies.
type orderItemForm struct {
	ProductId int64   `json:"product_id" validate:"required"`
	Quantity  int     `json:"quantity" validate:"required,gt=0"`
	Price     float64 `json:"price" validate:"omitempty,gt=0"`
}

type checkoutForm struct {
	Items         []orderItemForm `json:"items" validate:"required,min=1,dive"`
	MemberId      *int64          `json:"member_id"`
	PaymentMethod string          `json:"payment_method" validate:"omitempty,oneof=cash card mobile"`
}

type checkoutError struct {
	status  int
	message string
}

func (e *checkoutError) Error() string { return e.message }

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// checkout creates an order in one transaction: inventory rows are locked
// FOR UPDATE, stock is verified and decremented, the member discount is
// applied and the member's cumulative spend updated. Any failure rolls the
// whole order back.
func checkout(c echo.Context) error {
	form := new(checkoutForm)
	if err := c.Bind(form); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(form); err != nil {
		return handleValidationError(c, err)
	}
	userId := currentUserID(c)
	paymentMethod := form.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = "cash"
	}

	var order domain.Order
	var orderItems []domain.OrderItem
	err := GetDB(c).Transaction(func(tx *gorm.DB) error {
		var total float64
		orderItems = orderItems[:0]
		for _, item := range form.Items {
			var product domain.Product
			err := tx.Where("id = ? and status = ?", item.ProductId, common.ENABLED).
				First(&product).Error
			if err != nil {
				return &checkoutError{http.StatusBadRequest,
					fmt.Sprintf("product %d not found or delisted", item.ProductId)}
			}
			var inv domain.Inventory
			err = lockForUpdate(tx).
				Where("product_id = ?", product.ID).First(&inv).Error
			if err != nil {
				return &checkoutError{http.StatusBadRequest,
					fmt.Sprintf("no inventory record for product %s", product.Code)}
			}
			if inv.Quantity < item.Quantity {
				return &checkoutError{http.StatusBadRequest,
					fmt.Sprintf("insufficient stock for %s: %d left", product.Name, inv.Quantity)}
			}
			err = tx.Model(&inv).Update("quantity", gorm.Expr("quantity - ?", item.Quantity)).Error
			if err != nil {
				return err
			}
			price := item.Price
			if price == 0 {
				price = product.Price
			}
			amount := round2(price * float64(item.Quantity))
			total += amount
			orderItems = append(orderItems, domain.OrderItem{
				ProductId: product.ID,
				Quantity:  item.Quantity,
				Price:     price,
				Amount:    amount,
			})
		}
		total = round2(total)

		var discount float64
		if form.MemberId != nil {
			var member domain.Member
			err := tx.Where("id = ?", *form.MemberId).First(&member).Error
			if err != nil {
				return &checkoutError{http.StatusBadRequest, "member not found"}
			}
			if member.Status != common.ENABLED || member.Expired(common.Today()) {
				return &checkoutError{http.StatusBadRequest, "membership invalid or expired"}
			}
			discount = round2(total * memberDiscountRate)
		}
		actual := round2(total - discount)

		order = domain.Order{
			OrderNo:        common.GenerateDocNo("SO"),
			UserId:         userId,
			MemberId:       form.MemberId,
			TotalAmount:    total,
			DiscountAmount: discount,
			ActualAmount:   actual,
			PaymentMethod:  paymentMethod,
			Status:         "completed",
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}
		for i := range orderItems {
			orderItems[i].OrderId = order.ID
		}
		if err := tx.Create(&orderItems).Error; err != nil {
			return err
		}

		if form.MemberId != nil {
			err := tx.Model(&domain.Member{}).Where("id = ?", *form.MemberId).
				Updates(map[string]interface{}{
					"total_amount": gorm.Expr("total_amount + ?", actual),
					"points":       gorm.Expr("points + ?", int(actual)),
				}).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if cerr, isCheckout := err.(*checkoutError); isCheckout {
			return fail(c, cerr.status, cerr.message)
		}
		return fail(c, http.StatusInternalServerError, err.Error())
	}
	return okMessage(c, "order created", map[string]interface{}{
		"order": order,
		"items": orderItems,
	})
}

func listOrders(c echo.Context) error {
	page, limit := parsePagination(c)
	query := GetDB(c).Model(&domain.Order{})
	if keyword := c.QueryParam("keyword"); keyword != "" {
		query = query.Where("order_no = ?", keyword)
	}
	if userId := c.QueryParam("user_id"); userId != "" {
		query = query.Where("user_id = ?", userId)
	}
	if start := c.QueryParam("start_date"); start != "" {
		t, err := common.ParseDate(start)
		if err != nil {
			return fail(c, http.StatusBadRequest, "invalid start_date")
		}
		query = query.Where("created_at >= ?", t)
	}
	if end := c.QueryParam("end_date"); end != "" {
		t, err := common.ParseDate(end)
		if err != nil {
			return fail(c, http.StatusBadRequest, "invalid end_date")
		}
		query = query.Where("created_at <= ?", common.EndOfDay(t))
	}
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return fail(c, http.StatusInternalServerError, err.Error())
	}
	var orders []domain.Order
	err := query.Order("created_at desc").
		Offset((page - 1) * limit).Limit(limit).
		Find(&orders).Error
	if err != nil {
		return fail(c, http.StatusInternalServerError, err.Error())
	}
	return paged(c, orders, total)
}

type orderItemView struct {
	domain.OrderItem
	ProductName string `json:"product_name"`
	ProductCode string `json:"product_code"`
}

func getOrder(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid order id")
	}
	db := GetDB(c)
	var order domain.Order
	if err := db.Where("id = ?", id).First(&order).Error; err != nil {
		return fail(c, http.StatusNotFound, "order not found")
	}
	var items []orderItemView
	err = db.Table("order_items").
		Select("order_items.*, products.name as product_name, products.code as product_code").
		Joins("JOIN products ON products.id = order_items.product_id").
		Where("order_items.order_id = ?", order.ID).
		Find(&items).Error
	if err != nil {
		return fail(c, http.StatusInternalServerError, err.Error())
	}
	return ok(c, map[string]interface{}{
		"order": order,
		"items": items,
	})
}

// exportOrders writes the filtered order list as an xlsx workbook
func exportOrders(c echo.Context) error {
	query := GetDB(c).Model(&domain.Order{})
	if start := c.QueryParam("start_date"); start != "" {
		t, err := common.ParseDate(start)
		if err != nil {
			return fail(c, http.StatusBadRequest, "invalid start_date")
		}
		query = query.Where("created_at >= ?", t)
	}
	if end := c.QueryParam("end_date"); end != "" {
		t, err := common.ParseDate(end)
		if err != nil {
			return fail(c, http.StatusBadRequest, "invalid end_date")
		}
		query = query.Where("created_at <= ?", common.EndOfDay(t))
	}
	var orders []domain.Order
	if err := query.Order("created_at desc").Find(&orders).Error; err != nil {
		return fail(c, http.StatusInternalServerError, err.Error())
	}

	xf := excelize.NewFile()
	sheet := "Sheet1"
	headers := []string{"Order No", "Total", "Discount", "Actual", "Payment", "Status", "Created At"}
	for i, h := range headers {
		xf.SetCellValue(sheet, fmt.Sprintf("%c1", 'A'+i), h)
	}
	for row, o := range orders {
		r := row + 2
		xf.SetCellValue(sheet, fmt.Sprintf("A%d", r), o.OrderNo)
		xf.SetCellValue(sheet, fmt.Sprintf("B%d", r), o.TotalAmount)
		xf.SetCellValue(sheet, fmt.Sprintf("C%d", r), o.DiscountAmount)
		xf.SetCellValue(sheet, fmt.Sprintf("D%d", r), o.ActualAmount)
		xf.SetCellValue(sheet, fmt.Sprintf("E%d", r), o.PaymentMethod)
		xf.SetCellValue(sheet, fmt.Sprintf("F%d", r), o.Status)
		xf.SetCellValue(sheet, fmt.Sprintf("G%d", r), o.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	var buf bytes.Buffer
	if err := xf.Write(&buf); err != nil {
		return fail(c, http.StatusInternalServerError, err.Error())
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="orders.xlsx"`)
	return c.Blob(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

func registerOrderRoutes() {
	webserver.ApiPOST("/orders", checkout)
	webserver.ApiGET("/orders", listOrders)
	webserver.ApiGET("/orders/export", exportOrders)
	webserver.ApiGET("/orders/:id", getOrder)
}
