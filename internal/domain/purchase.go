package domain

import "time"

// PurchasePlan is a planned replenishment; status flips to done when a
// stock-in references it.
type PurchasePlan struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	PlanNo    string    `gorm:"size:50;uniqueIndex" json:"plan_no"`
	ProductId int64     `gorm:"index" json:"product_id"`
	Quantity  int       `json:"quantity"`
	Status    int       `gorm:"default:0;index" json:"status"` // 0 pending, 1 done
	CreatedBy int64     `gorm:"index" json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName Specify table name
func (PurchasePlan) TableName() string {
	return "purchase_plans"
}

// StockIn is a realized replenishment that increases inventory
type StockIn struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	StockInNo string    `gorm:"size:50;uniqueIndex" json:"stock_in_no"`
	ProductId int64     `gorm:"index" json:"product_id"`
	Quantity  int       `json:"quantity"`
	Amount    float64   `json:"amount"`
	PlanId    *int64    `gorm:"index" json:"plan_id"`
	CreatedBy int64     `gorm:"index" json:"created_by"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

// TableName Specify table name
func (StockIn) TableName() string {
	return "stock_in"
}
