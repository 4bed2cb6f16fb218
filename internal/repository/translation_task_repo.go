package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"signage/backend/internal/model"
)

// TranslationTaskRepository 翻译任务发件箱数据访问接口
type TranslationTaskRepository interface {
	ListPending(ctx context.Context, createdBefore time.Time, limit int) ([]model.TranslationTask, error)
	MarkDispatched(ctx context.Context, taskID string) error
	IncrementAttempts(ctx context.Context, taskID string) error
}

type translationTaskRepo struct {
	db *gorm.DB
}

// NewTranslationTaskRepo 创建 TranslationTaskRepository 实例
func NewTranslationTaskRepo(db *gorm.DB) TranslationTaskRepository {
	return &translationTaskRepo{db: db}
}

func (r *translationTaskRepo) ListPending(ctx context.Context, createdBefore time.Time, limit int) ([]model.TranslationTask, error) {
	var tasks []model.TranslationTask
	err := r.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", model.TranslationTaskPending, createdBefore).
		Order("created_at ASC").
		Limit(limit).
		Find(&tasks).Error
	return tasks, err
}

func (r *translationTaskRepo) MarkDispatched(ctx context.Context, taskID string) error {
	return r.db.WithContext(ctx).
		Model(&model.TranslationTask{}).
		Where("task_id = ? AND status = ?", taskID, model.TranslationTaskPending).
		Updates(map[string]interface{}{
			"status":        model.TranslationTaskDispatched,
			"dispatched_at": gorm.Expr("NOW()"),
			"attempts":      gorm.Expr("attempts + 1"),
		}).Error
}

func (r *translationTaskRepo) IncrementAttempts(ctx context.Context, taskID string) error {
	return r.db.WithContext(ctx).
		Model(&model.TranslationTask{}).
		Where("task_id = ?", taskID).
		Update("attempts", gorm.Expr("attempts + 1")).Error
}
