package domain

import "time"

// Order is one checkout: a header row plus its items. actual_amount is
// always total_amount minus discount_amount.
type Order struct {
	ID             int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderNo        string    `gorm:"size:50;uniqueIndex" json:"order_no"`
	UserId         int64     `gorm:"index" json:"user_id"`
	MemberId       *int64    `gorm:"index" json:"member_id"`
	TotalAmount    float64   `json:"total_amount"`
	DiscountAmount float64   `gorm:"default:0" json:"discount_amount"`
	ActualAmount   float64   `json:"actual_amount"`
	PaymentMethod  string    `gorm:"size:20;default:'cash'" json:"payment_method"`
	Status         string    `gorm:"size:20;default:'completed'" json:"status"`
	CreatedAt      time.Time `gorm:"index" json:"created_at"`
}

// TableName Specify table name
func (Order) TableName() string {
	return "orders"
}

type OrderItem struct {
	ID        int64   `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderId   int64   `gorm:"index" json:"order_id"`
	ProductId int64   `gorm:"index" json:"product_id"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
	Amount    float64 `json:"amount"` // price * quantity
}

// TableName Specify table name
func (OrderItem) TableName() string {
	return "order_items"
}
