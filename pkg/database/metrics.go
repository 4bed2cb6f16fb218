package database

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"signage/backend/pkg/metrics"
)

const metricsStartKey = "metrics:start_time"

// MetricsPlugin GORM 查询耗时指标插件
type MetricsPlugin struct{}

// Name 插件名
func (p *MetricsPlugin) Name() string {
	return "metricsPlugin"
}

// Initialize 为各类操作注册前后回调
func (p *MetricsPlugin) Initialize(db *gorm.DB) error {
	cb := db.Callback()
	errs := []error{
		cb.Create().Before("gorm:create").Register("metrics:before_create", beforeCallback),
		cb.Create().After("gorm:create").Register("metrics:after_create", afterCallback("INSERT")),

		cb.Query().Before("gorm:query").Register("metrics:before_query", beforeCallback),
		cb.Query().After("gorm:query").Register("metrics:after_query", afterCallback("SELECT")),

		cb.Update().Before("gorm:update").Register("metrics:before_update", beforeCallback),
		cb.Update().After("gorm:update").Register("metrics:after_update", afterCallback("UPDATE")),

		cb.Delete().Before("gorm:delete").Register("metrics:before_delete", beforeCallback),
		cb.Delete().After("gorm:delete").Register("metrics:after_delete", afterCallback("DELETE")),

		cb.Row().Before("gorm:row").Register("metrics:before_row", beforeCallback),
		cb.Row().After("gorm:row").Register("metrics:after_row", afterCallback("ROW")),

		cb.Raw().Before("gorm:raw").Register("metrics:before_raw", beforeCallback),
		cb.Raw().After("gorm:raw").Register("metrics:after_raw", afterCallback("RAW")),
	}
	return errors.Join(errs...)
}

func beforeCallback(db *gorm.DB) {
	db.InstanceSet(metricsStartKey, time.Now())
}

func afterCallback(operation string) func(*gorm.DB) {
	return func(db *gorm.DB) {
		v, ok := db.InstanceGet(metricsStartKey)
		if !ok {
			return
		}
		start, ok := v.(time.Time)
		if !ok {
			return
		}

		table := db.Statement.Table
		if table == "" {
			table = "unknown"
		}
		// 记录不存在属于正常查询结果
		status := "success"
		if db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) {
			status = "error"
		}

		metrics.DBQueryDuration.WithLabelValues(operation, table, status).Observe(time.Since(start).Seconds())
	}
}
