package domain

import "time"

// Member is a loyalty-card holder eligible for the checkout discount
// and cumulative spend accrual.
type Member struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	CardNo      string    `gorm:"size:50;uniqueIndex" json:"card_no"`
	Name        string    `gorm:"size:50;index" json:"name"`
	Phone       string    `gorm:"size:20;uniqueIndex" json:"phone"`
	JoinDate    time.Time `gorm:"type:date" json:"join_date"`
	ExpireDate  time.Time `gorm:"type:date" json:"expire_date"`
	TotalAmount float64   `gorm:"default:0" json:"total_amount"`
	Status      int       `gorm:"default:1;index" json:"status"` // 1 valid, 0 invalid
	Points      int       `gorm:"default:0" json:"points"`
	Level       string    `gorm:"size:20;default:'standard'" json:"level"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName Specify table name
func (Member) TableName() string {
	return "members"
}

// Expired reports whether the card expired before the given day
func (m Member) Expired(today time.Time) bool {
	return m.ExpireDate.Before(today)
}
