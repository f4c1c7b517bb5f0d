package domain

import "time"

const (
	ShiftActive = 0
	ShiftEnded  = 1
)

// Shift is a cashier working session; at most one active shift per user.
type Shift struct {
	ID          int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserId      int64      `gorm:"index" json:"user_id"`
	StartTime   time.Time  `json:"start_time"`
	EndTime     *time.Time `json:"end_time"`
	OrderCount  int        `gorm:"default:0" json:"order_count"`
	TotalAmount float64    `gorm:"default:0" json:"total_amount"`
	Status      int        `gorm:"default:0;index" json:"status"` // 0 active, 1 ended
}

// TableName Specify table name
func (Shift) TableName() string {
	return "shifts"
}
