package adminapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/talkincode/toughstore/internal/domain"
	"github.com/talkincode/toughstore/internal/webserver"
)

type productAddForm struct {
	Code           string  `json:"code" validate:"required,max=50"`
	Name           string  `json:"name" validate:"required,max=100"`
	Barcode        *string `json:"barcode"`
	Category       string  `json:"category"`
	Price          float64 `json:"price" validate:"required,gt=0"`
	Quantity       int     `json:"quantity" validate:"gte=0"`
	AlertThreshold *int    `json:"alert_threshold"`
}

type productCsvRow struct {
	Code     string  `csv:"code"`
	Name     string  `csv:"name"`
	Barcode  string  `csv:"barcode"`
	Category string  `csv:"category"`
	Price    float64 `csv:"price"`
	Status   int     `csv:"status"`
	Quantity int     `csv:"quantity"`
}

// lockForUpdate takes a row lock where the dialect supports it; sqlite
// serializes writers on its own.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

// keywordFilter applies a case-insensitive match across the given columns
func keywordFilter(db *gorm.DB, keyword string, columns ...string) *gorm.DB {
	if keyword == "" {
		return db
	}
	var conds []string
	var args []interface{}
	for _, col := range columns {
		if db.Name() == "postgres" {
			conds = append(conds, col+" ILIKE ?")
			args = append(args, "%"+keyword+"%")
		} else {
			conds = append(conds, "LOWER("+col+") LIKE ?")
			args = append(args, "%"+strings.ToLower(keyword)+"%")
		}
	}
	return db.Where(strings.Join(conds, " OR "), args...)
}

func addProduct(c echo.Context) error {
	form := new(productAddForm)
	if err := c.Bind(form); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(form); err != nil {
		return handleValidationError(c, err)
	}
	db := GetDB(c)
	var count int64
	db.Model(&domain.Product{}).Where("code = ?", form.Code).Count(&count)
	if count > 0 {
		return fail(c, http.StatusBadRequest, "product code already exists")
	}
	if form.Barcode != nil && *form.Barcode != "" {
		db.Model(&domain.Product{}).Where("barcode = ?", *form.Barcode).Count(&count)
		if count > 0 {
			return fail(c, http.StatusBadRequest, "barcode already exists")
		}
	} else {
		form.Barcode = nil
	}
	product := domain.Product{
		Code:     form.Code,
		Name:     form.Name,
		Barcode:  form.Barcode,
		Category: form.Category,
		Price:    form.Price,
		Status:   1,
	}
	threshold := 10
	if form.AlertThreshold != nil {
		threshold = *form.AlertThreshold
	}
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&product).Error; err != nil {
			return err
		}
		return tx.Create(&domain.Inventory{
			ProductId:      product.ID,
			Quantity:       form.Quantity,
			AlertThreshold: threshold,
		}).Error
	})
	if err != nil {
		return fail(c, http.StatusInternalServerError, err.Error())
	}
	addOprLog(c, "product_add", fmt.Sprintf("added product %s (%s)", product.Name, product.Code))
	return okMessage(c, "product created", product)
}

type productListItem struct {
	domain.Product
	Quantity       int    `json:"quantity"`
	AlertThreshold int    `json:"alert_threshold"`
	StockStatus    string `json:"stock_status"`
}

func listProducts(c echo.Context) error {
	page, limit := parsePagination(c)
	db := GetDB(c)
	query := db.Model(&domain.Product{})
	query = keywordFilter(query, c.QueryParam("keyword"), "products.name", "products.code")
	if category := c.QueryParam("category"); category != "" {
		query = query.Where("products.category = ?", category)
	}
	if status := c.QueryParam("status"); status != "" {
		query = query.Where("products.status = ?", status)
	}
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return fail(c, http.StatusInternalServerError, err.Error())
	}
	var products []domain.Product
	err := query.Order("products.code asc").
		Offset((page - 1) * limit).Limit(limit).
		Find(&products).Error
	if err != nil {
		return fail(c, http.StatusInternalServerError, err.Error())
	}
	items := make([]productListItem, 0, len(products))
	for _, p := range products {
		var inv domain.Inventory
		db.Where("product_id = ?", p.ID).First(&inv)
		items = append(items, productListItem{
			Product:        p,
			Quantity:       inv.Quantity,
			AlertThreshold: inv.AlertThreshold,
			StockStatus:    inv.StockStatus(),
		})
	}
	return paged(c, items, total)
}

func updateProduct(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid product id")
	}
	db := GetDB(c)
	var product domain.Product
	if err := db.Where("id = ?", id).First(&product).Error; err != nil {
		return fail(c, http.StatusNotFound, "product not found")
	}
	body := map[string]interface{}{}
	if err := c.Bind(&body); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}
	values := map[string]interface{}{}
	for _, field := range []string{"name", "category", "price", "status", "barcode"} {
		if v, present := body[field]; present {
			values[field] = v
		}
	}
	invValues := map[string]interface{}{}
	for _, field := range []string{"quantity", "alert_threshold"} {
		if v, present := body[field]; present {
			invValues[field] = v
		}
	}
	if len(values) == 0 && len(invValues) == 0 {
		return fail(c, http.StatusBadRequest, "no updatable fields in body")
	}
	if price, present := values["price"]; present {
		if p, isNum := price.(float64); !isNum || p <= 0 {
			return fail(c, http.StatusBadRequest, "price must be a positive number")
		}
	}
	if barcode, present := values["barcode"]; present && barcode != nil && barcode != "" {
		var count int64
		db.Model(&domain.Product{}).
			Where("barcode = ? and id <> ?", barcode, product.ID).Count(&count)
		if count > 0 {
			return fail(c, http.StatusBadRequest, "barcode already exists")
		}
	}
	err = db.Transaction(func(tx *gorm.DB) error {
		if len(values) > 0 {
			if err := tx.Model(&product).Updates(values).Error; err != nil {
				return err
			}
		}
		if len(invValues) > 0 {
			var inv domain.Inventory
			err := tx.Where("product_id = ?", product.ID).First(&inv).Error
			if err == gorm.ErrRecordNotFound {
				inv = domain.Inventory{ProductId: product.ID, AlertThreshold: 10}
				if err := tx.Create(&inv).Error; err != nil {
					return err
				}
			} else if err != nil {
				return err
			}
			return tx.Model(&inv).Updates(invValues).Error
		}
		return nil
	})
	if err != nil {
		return fail(c, http.StatusInternalServerError, err.Error())
	}
	addOprLog(c, "product_update", fmt.Sprintf("updated product %s", product.Code))
	return okMessage(c, "product updated", nil)
}

// searchProducts is the checkout lookup: exact barcode or code first,
// then a fuzzy name match. Only on-sale products are returned.
func searchProducts(c echo.Context) error {
	keyword := strings.TrimSpace(c.QueryParam("keyword"))
	if keyword == "" {
		return fail(c, http.StatusBadRequest, "keyword is required")
	}
	db := GetDB(c)
	var products []domain.Product
	err := db.Where("barcode = ? OR code = ?", keyword, keyword).
		Where("status = ?", 1).Find(&products).Error
	if err != nil {
		return fail(c, http.StatusInternalServerError, err.Error())
	}
	if len(products) == 0 {
		query := db.Model(&domain.Product{}).Where("status = ?", 1)
		query = keywordFilter(query, keyword, "name")
		if err := query.Limit(20).Find(&products).Error; err != nil {
			return fail(c, http.StatusInternalServerError, err.Error())
		}
	}
	items := make([]productListItem, 0, len(products))
	for _, p := range products {
		var inv domain.Inventory
		db.Where("product_id = ?", p.ID).First(&inv)
		items = append(items, productListItem{
			Product:        p,
			Quantity:       inv.Quantity,
			AlertThreshold: inv.AlertThreshold,
			StockStatus:    inv.StockStatus(),
		})
	}
	return ok(c, items)
}

func exportProducts(c echo.Context) error {
	db := GetDB(c)
	var products []domain.Product
	if err := db.Order("code asc").Find(&products).Error; err != nil {
		return fail(c, http.StatusInternalServerError, err.Error())
	}
	rows := make([]productCsvRow, 0, len(products))
	for _, p := range products {
		var inv domain.Inventory
		db.Where("product_id = ?", p.ID).First(&inv)
		barcode := ""
		if p.Barcode != nil {
			barcode = *p.Barcode
		}
		rows = append(rows, productCsvRow{
			Code:     p.Code,
			Name:     p.Name,
			Barcode:  barcode,
			Category: p.Category,
			Price:    p.Price,
			Status:   p.Status,
			Quantity: inv.Quantity,
		})
	}
	data, err := gocsv.MarshalString(&rows)
	if err != nil {
		return fail(c, http.StatusInternalServerError, err.Error())
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="products.csv"`)
	return c.Blob(http.StatusOK, "text/csv", []byte(data))
}

func registerProductRoutes() {
	webserver.ApiPOST("/products", addProduct)
	webserver.ApiGET("/products", listProducts)
	webserver.ApiPUT("/products/:id", updateProduct)
	webserver.ApiGET("/products/search", searchProducts)
	webserver.ApiGET("/products/export", exportProducts)
}
