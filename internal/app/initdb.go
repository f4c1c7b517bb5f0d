package app

import (
	"errors"
	"strings"
	"time"

	"github.com/talkincode/toughstore/internal/domain"
	"github.com/talkincode/toughstore/pkg/common"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func (a *Application) checkSuper() {
	const superUsername = "admin"
	const defaultPassword = "admin123"

	var operator domain.SysUser
	err := a.gormDB.Where("username = ?", superUsername).First(&operator).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		hashed, herr := common.HashPassword(defaultPassword)
		if herr != nil {
			zap.L().Error("failed to hash default password", zap.Error(herr))
			return
		}
		if err := a.gormDB.Create(&domain.SysUser{
			Username:     superUsername,
			PasswordHash: hashed,
			Name:         "administrator",
			Role:         domain.RoleAdmin,
		}).Error; err != nil {
			zap.L().Error("failed to create default admin", zap.Error(err))
		} else {
			zap.L().Info("initialized default admin account", zap.String("username", superUsername))
		}
		return
	case err != nil:
		zap.L().Error("failed to query admin account", zap.Error(err))
		return
	}

	resetPassword := strings.TrimSpace(operator.PasswordHash) == ""
	resetRole := !strings.EqualFold(operator.Role, domain.RoleAdmin)
	if !resetPassword && !resetRole {
		return
	}

	updates := map[string]interface{}{
		"updated_at": time.Now(),
	}
	if resetPassword {
		hashed, herr := common.HashPassword(defaultPassword)
		if herr != nil {
			zap.L().Error("failed to hash default password", zap.Error(herr))
			return
		}
		updates["password_hash"] = hashed
	}
	if resetRole {
		updates["role"] = domain.RoleAdmin
	}

	if err := a.gormDB.Model(&domain.SysUser{}).Where("id = ?", operator.ID).Updates(updates).Error; err != nil {
		zap.L().Error("failed to repair admin account", zap.Error(err))
		return
	}

	zap.L().Warn("repaired default admin account",
		zap.String("username", superUsername),
		zap.Bool("passwordReset", resetPassword),
		zap.Bool("roleReset", resetRole))
}

// checkDemoCatalog seeds a small demo catalog in debug mode so a fresh
// install has something to sell.
func (a *Application) checkDemoCatalog() {
	if !a.appConfig.System.Debug {
		return
	}

	barcode := func(s string) *string { return &s }
	defaultProducts := []domain.Product{
		{Code: "P001", Name: "Cola 330ml", Barcode: barcode("6901234567890"), Category: "drinks", Price: 3.50},
		{Code: "P002", Name: "Instant Noodles", Barcode: barcode("6901234567892"), Category: "food", Price: 4.50},
		{Code: "P003", Name: "Mineral Water 550ml", Barcode: barcode("6901234567893"), Category: "drinks", Price: 2.00},
		{Code: "P004", Name: "Potato Chips", Barcode: barcode("6901234567894"), Category: "snacks", Price: 6.50},
	}

	for _, p := range defaultProducts {
		var count int64
		a.gormDB.Model(&domain.Product{}).Where("code = ?", p.Code).Count(&count)
		if count > 0 {
			continue
		}
		p.Status = 1
		if err := a.gormDB.Create(&p).Error; err != nil {
			zap.L().Error("failed to create demo product", zap.String("code", p.Code), zap.Error(err))
			continue
		}
		a.gormDB.Create(&domain.Inventory{ProductId: p.ID, Quantity: 100, AlertThreshold: 10})
		zap.L().Info("initialized demo product", zap.String("code", p.Code))
	}
}
