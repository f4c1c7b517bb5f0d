package app

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/shirou/gopsutil/cpu"
	"github.com/shirou/gopsutil/mem"
	"github.com/shirou/gopsutil/process"
	"github.com/talkincode/toughstore/internal/domain"
	"github.com/talkincode/toughstore/pkg/common"
	"github.com/talkincode/toughstore/pkg/metrics"
	"go.uber.org/zap"
	gomail "gopkg.in/gomail.v2"
)

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

func (a *Application) initJob() {
	loc, _ := time.LoadLocation(a.appConfig.System.Location)
	a.sched = cron.New(cron.WithLocation(loc), cron.WithParser(cronParser))

	var err error
	_, err = a.sched.AddFunc("@every 30s", func() {
		go a.SchedSystemMonitorTask()
		go a.SchedProcessMonitorTask()
	})
	if err != nil {
		zap.S().Errorf("init job error %s", err.Error())
	}

	_, err = a.sched.AddFunc("@hourly", func() {
		a.SchedMemberExpireSweep()
	})
	if err != nil {
		zap.S().Errorf("init job error %s", err.Error())
	}

	_, err = a.sched.AddFunc("@daily", func() {
		a.gormDB.
			Where("opt_time < ? ", time.Now().
				Add(-time.Hour*24*365)).Delete(domain.SysOprLog{})
	})
	if err != nil {
		zap.S().Errorf("init job error %s", err.Error())
	}

	_, err = a.sched.AddFunc("@daily", func() {
		a.SchedLowStockDigest()
	})
	if err != nil {
		zap.S().Errorf("init job error %s", err.Error())
	}

	a.sched.Start()
}

// SchedSystemMonitorTask system monitor
func (a *Application) SchedSystemMonitorTask() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()

	// Collect CPU usage
	_cpuuse, err := cpu.Percent(0, false)
	if err == nil && len(_cpuuse) > 0 {
		metrics.SetGauge("system_cpuuse", int64(_cpuuse[0]*100)) // Store as percentage * 100
	}

	// Collect memory usage
	_meminfo, err := mem.VirtualMemory()
	if err == nil {
		metrics.SetGauge("system_memuse", int64(_meminfo.Used/1024/1024))
	}
}

// SchedProcessMonitorTask app process monitor
func (a *Application) SchedProcessMonitorTask() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()

	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return
	}

	cpuuse, err := p.CPUPercent()
	if err == nil {
		metrics.SetGauge("toughstore_cpuuse", int64(cpuuse*100)) // Store as percentage * 100
	}

	meminfo, err := p.MemoryInfo()
	if err == nil {
		metrics.SetGauge("toughstore_memuse", int64(meminfo.RSS/1024/1024))
	}
}

// SchedMemberExpireSweep deactivates expired member cards. The search
// endpoint also flips status lazily on read; this sweep keeps list views
// consistent for cards nobody searches.
func (a *Application) SchedMemberExpireSweep() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()

	result := a.gormDB.Model(&domain.Member{}).
		Where("expire_date < ? AND status = ?", common.Today(), common.ENABLED).
		Updates(map[string]interface{}{"status": common.DISABLED, "updated_at": time.Now()})
	if result.Error != nil {
		zap.L().Error("member expire sweep failed", zap.Error(result.Error))
		return
	}
	if result.RowsAffected > 0 {
		zap.L().Info("member expire sweep", zap.Int64("deactivated", result.RowsAffected))
	}
}

// SchedLowStockDigest emails the low-stock list once a day when SMTP is configured
func (a *Application) SchedLowStockDigest() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()

	smtp := a.appConfig.Smtp
	if smtp.Host == "" || smtp.To == "" {
		return
	}

	type alertRow struct {
		Code           string
		Name           string
		Quantity       int
		AlertThreshold int
	}
	var rows []alertRow
	err := a.gormDB.Model(&domain.Inventory{}).
		Select("products.code, products.name, inventory.quantity, inventory.alert_threshold").
		Joins("JOIN products ON products.id = inventory.product_id").
		Where("inventory.quantity <= inventory.alert_threshold").
		Scan(&rows).Error
	if err != nil {
		zap.L().Error("low stock query failed", zap.Error(err))
		return
	}
	if len(rows) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString("<p>The following products are at or below their alert threshold:</p><ul>")
	for _, r := range rows {
		sb.WriteString(fmt.Sprintf("<li>%s %s: %d (threshold %d)</li>", r.Code, r.Name, r.Quantity, r.AlertThreshold))
	}
	sb.WriteString("</ul>")

	m := gomail.NewMessage()
	m.SetHeader("From", smtp.From)
	m.SetHeader("To", strings.Split(smtp.To, ",")...)
	m.SetHeader("Subject", fmt.Sprintf("[toughstore] low stock digest (%d items)", len(rows)))
	m.SetBody("text/html", sb.String())

	d := gomail.NewDialer(smtp.Host, smtp.Port, smtp.Username, smtp.Password)
	if err := d.DialAndSend(m); err != nil {
		zap.L().Error("low stock digest send failed", zap.Error(err))
		return
	}
	zap.L().Info("low stock digest sent", zap.Int("items", len(rows)))
}
