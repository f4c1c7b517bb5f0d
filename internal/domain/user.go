package domain

import "time"

const (
	RoleAdmin   = "admin"
	RoleCashier = "cashier"
)

// SysUser is a back-office account; cashiers run checkouts, admins
// additionally manage accounts and the catalog.
type SysUser struct {
	ID           int64     `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"size:50;uniqueIndex" json:"username"`
	PasswordHash string    `gorm:"size:128" json:"-"`
	Name         string    `gorm:"size:50" json:"name"`
	Role         string    `gorm:"size:20;default:'cashier'" json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName Specify table name
func (SysUser) TableName() string {
	return "users"
}

// SysOprLog is an audit record for sensitive operations
type SysOprLog struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	OprName   string    `gorm:"size:50;index" json:"opr_name"`
	OprIp     string    `gorm:"size:50" json:"opr_ip"`
	OptAction string    `gorm:"size:50;index" json:"opt_action"`
	OptDesc   string    `gorm:"size:255" json:"opt_desc"`
	OptTime   time.Time `gorm:"index" json:"opt_time"`
}

// TableName Specify table name
func (SysOprLog) TableName() string {
	return "sys_opr_log"
}
