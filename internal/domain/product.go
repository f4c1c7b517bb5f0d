package domain

import "time"

// Product is a sellable SKU with a unique code and optional barcode
type Product struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Code      string    `gorm:"size:50;uniqueIndex" json:"code"`
	Name      string    `gorm:"size:100;index" json:"name"`
	Barcode   *string   `gorm:"size:50;uniqueIndex" json:"barcode"`
	Category  string    `gorm:"size:50" json:"category"`
	Price     float64   `json:"price"`
	Status    int       `gorm:"default:1" json:"status"` // 1 on sale, 0 delisted
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName Specify table name
func (Product) TableName() string {
	return "products"
}

// Inventory holds the on-hand quantity and low-stock threshold for one product
type Inventory struct {
	ID             int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductId      int64     `gorm:"uniqueIndex" json:"product_id"`
	Quantity       int       `gorm:"default:0" json:"quantity"`
	AlertThreshold int       `gorm:"default:10" json:"alert_threshold"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// TableName Specify table name
func (Inventory) TableName() string {
	return "inventory"
}

// Inventory status labels derived from quantity vs threshold
const (
	StockStatusNormal = "normal"
	StockStatusLow    = "low"
	StockStatusOut    = "out_of_stock"
)

// StockStatus classifies an inventory row. Quantity wins over threshold:
// a non-positive quantity is out-of-stock even when the threshold is zero.
func (i Inventory) StockStatus() string {
	switch {
	case i.Quantity <= 0:
		return StockStatusOut
	case i.Quantity <= i.AlertThreshold:
		return StockStatusLow
	default:
		return StockStatusNormal
	}
}
