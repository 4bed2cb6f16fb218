package model

import "time"

// 翻译任务状态
const (
	TranslationTaskPending    = "pending"
	TranslationTaskDispatched = "dispatched"
)

// TranslationTask 翻译任务发件箱表 — 与地点写入同一事务落库，提交后再投递到队列
type TranslationTask struct {
	TaskID       string      `gorm:"type:uuid;primaryKey"                   json:"task_id"`
	LocationID   int64       `gorm:"not null;index"                         json:"record_id"`
	Fields       StringArray `gorm:"type:text[];not null"                   json:"field_names"`
	SourceLocale string      `gorm:"type:varchar(10);not null"              json:"source_locale"`
	Queue        string      `gorm:"type:varchar(50);not null"              json:"-"`
	Status       string      `gorm:"type:varchar(20);not null;default:pending;index" json:"-"`
	Attempts     int         `gorm:"not null;default:0"                     json:"-"`
	DispatchedAt *time.Time  `json:"-"`
	CreatedAt    time.Time   `gorm:"not null;default:CURRENT_TIMESTAMP"     json:"-"`
	UpdatedAt    time.Time   `gorm:"not null;default:CURRENT_TIMESTAMP"     json:"-"`
}

// TableName 指定表名
func (TranslationTask) TableName() string { return "translation_tasks" }
