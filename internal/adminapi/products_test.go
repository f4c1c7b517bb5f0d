package adminapi

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/talkincode/toughstore/internal/domain"
)

func TestAddProduct(t *testing.T) {
	env := setupTestEnv(t)

	rec := env.request(t, http.MethodPost, "/api/products", map[string]interface{}{
		"code":     "P100",
		"name":     "Sparkling Water",
		"price":    2.50,
		"quantity": 30,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var product domain.Product
	if err := env.db().Where("code = ?", "P100").First(&product).Error; err != nil {
		t.Fatalf("product not persisted: %v", err)
	}
	var inv domain.Inventory
	if err := env.db().Where("product_id = ?", product.ID).First(&inv).Error; err != nil {
		t.Fatalf("inventory row not created: %v", err)
	}
	if inv.Quantity != 30 {
		t.Errorf("quantity = %d, want 30", inv.Quantity)
	}
	if inv.AlertThreshold != 10 {
		t.Errorf("default threshold = %d, want 10", inv.AlertThreshold)
	}
}

func TestAddProductDuplicateCode(t *testing.T) {
	env := setupTestEnv(t)
	env.seedProduct(t, "P100", "Cola", 3.50, 10, 5)

	rec := env.request(t, http.MethodPost, "/api/products", map[string]interface{}{
		"code":  "P100",
		"name":  "Another",
		"price": 1.00,
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestAddProductInvalidPrice(t *testing.T) {
	env := setupTestEnv(t)

	rec := env.request(t, http.MethodPost, "/api/products", map[string]interface{}{
		"code":  "P101",
		"name":  "Freebie",
		"price": 0,
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestListProductsPagination(t *testing.T) {
	env := setupTestEnv(t)
	env.seedProduct(t, "P001", "Cola", 3.50, 100, 10)
	env.seedProduct(t, "P002", "Chips", 5.00, 3, 10)
	env.seedProduct(t, "P003", "Gum", 1.00, 0, 10)

	rec := env.request(t, http.MethodGet, "/api/products?page=1&limit=2", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	_, _, data := decodeEnvelope(t, rec)
	var result struct {
		Total int64             `json:"total"`
		Items []json.RawMessage `json:"items"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		t.Fatalf("decode page: %v", err)
	}
	if result.Total != 3 {
		t.Errorf("total = %d, want 3", result.Total)
	}
	if len(result.Items) != 2 {
		t.Errorf("page size = %d, want 2", len(result.Items))
	}
}

func TestListProductsKeyword(t *testing.T) {
	env := setupTestEnv(t)
	env.seedProduct(t, "P001", "Cola", 3.50, 100, 10)
	env.seedProduct(t, "P002", "Chips", 5.00, 3, 10)

	rec := env.request(t, http.MethodGet, "/api/products?keyword=cola", nil)
	_, _, data := decodeEnvelope(t, rec)
	var result struct {
		Total int64 `json:"total"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		t.Fatal(err)
	}
	if result.Total != 1 {
		t.Errorf("keyword match total = %d, want 1", result.Total)
	}
}

func TestUpdateProduct(t *testing.T) {
	env := setupTestEnv(t)
	product := env.seedProduct(t, "P001", "Cola", 3.50, 100, 10)

	rec := env.request(t, http.MethodPut, "/api/products/"+itoa(product.ID),
		map[string]interface{}{"price": 4.00, "name": "Cola Zero"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var updated domain.Product
	env.db().First(&updated, product.ID)
	if updated.Price != 4.00 {
		t.Errorf("price = %v, want 4.00", updated.Price)
	}
	if updated.Name != "Cola Zero" {
		t.Errorf("name = %s, want Cola Zero", updated.Name)
	}
	if updated.Code != "P001" {
		t.Errorf("code changed to %s", updated.Code)
	}
}

func TestUpdateProductInventoryFields(t *testing.T) {
	env := setupTestEnv(t)
	product := env.seedProduct(t, "P001", "Cola", 3.50, 100, 10)

	rec := env.request(t, http.MethodPut, "/api/products/"+itoa(product.ID),
		map[string]interface{}{"quantity": 42, "alert_threshold": 8})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var inv domain.Inventory
	env.db().Where("product_id = ?", product.ID).First(&inv)
	if inv.Quantity != 42 || inv.AlertThreshold != 8 {
		t.Errorf("inventory = %d/%d, want 42/8", inv.Quantity, inv.AlertThreshold)
	}
}

func TestUpdateProductDuplicateBarcode(t *testing.T) {
	env := setupTestEnv(t)
	taken := "6900000000001"
	first := env.seedProduct(t, "P001", "Cola", 3.50, 100, 10)
	env.db().Model(first).Update("barcode", taken)
	second := env.seedProduct(t, "P002", "Chips", 5.00, 10, 10)

	rec := env.request(t, http.MethodPut, "/api/products/"+itoa(second.ID),
		map[string]interface{}{"barcode": taken})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestUpdateProductBadPrice(t *testing.T) {
	env := setupTestEnv(t)
	product := env.seedProduct(t, "P001", "Cola", 3.50, 100, 10)

	rec := env.request(t, http.MethodPut, "/api/products/"+itoa(product.ID),
		map[string]interface{}{"price": -1.0})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestUpdateProductNotFound(t *testing.T) {
	env := setupTestEnv(t)

	rec := env.request(t, http.MethodPut, "/api/products/999999",
		map[string]interface{}{"price": 1.0})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestSearchProductsByCode(t *testing.T) {
	env := setupTestEnv(t)
	env.seedProduct(t, "P001", "Cola", 3.50, 100, 10)
	env.seedProduct(t, "P002", "Cola Light", 3.80, 50, 10)

	rec := env.request(t, http.MethodGet, "/api/products/search?keyword=P001", nil)
	_, _, data := decodeEnvelope(t, rec)
	var items []struct {
		Code        string `json:"code"`
		Quantity    int    `json:"quantity"`
		StockStatus string `json:"stock_status"`
	}
	if err := json.Unmarshal(data, &items); err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 || items[0].Code != "P001" {
		t.Fatalf("exact code match failed: %+v", items)
	}
	if items[0].Quantity != 100 {
		t.Errorf("quantity = %d, want 100", items[0].Quantity)
	}
}

func TestSearchProductsByName(t *testing.T) {
	env := setupTestEnv(t)
	env.seedProduct(t, "P001", "Cola", 3.50, 100, 10)
	env.seedProduct(t, "P002", "Cola Light", 3.80, 50, 10)
	env.seedProduct(t, "P003", "Chips", 5.00, 10, 10)

	rec := env.request(t, http.MethodGet, "/api/products/search?keyword=cola", nil)
	_, _, data := decodeEnvelope(t, rec)
	var items []struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(data, &items); err != nil {
		t.Fatal(err)
	}
	if len(items) != 2 {
		t.Fatalf("fuzzy name match count = %d, want 2", len(items))
	}
}

func TestExportProductsCSV(t *testing.T) {
	env := setupTestEnv(t)
	env.seedProduct(t, "P001", "Cola", 3.50, 100, 10)

	rec := env.request(t, http.MethodGet, "/api/products/export", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "P001") || !strings.Contains(body, "Cola") {
		t.Errorf("csv missing seeded product: %q", body)
	}
	if !strings.Contains(rec.Header().Get("Content-Disposition"), "products.csv") {
		t.Error("missing attachment header")
	}
}
