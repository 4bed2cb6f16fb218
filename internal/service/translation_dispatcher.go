package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"signage/backend/config"
	"signage/backend/internal/model"
	"signage/backend/internal/repository"
	"signage/backend/pkg/metrics"
)

// TranslationPublisher 翻译任务投递接口（由 internal/queue 实现）
type TranslationPublisher interface {
	Publish(ctx context.Context, task *model.TranslationTask) error
}

// LocalizedInput 本次写入的三个可翻译地址字段（源语言文本）
type LocalizedInput struct {
	Address1     string
	Address2     string
	BuildingName string
}

// TranslationDispatcher 翻译任务派发
//
// 流程：
//   - 写入前由 Diff / ResetTags 计算待翻译字段并重置其他语言
//   - 任务与数据写入同一事务落入发件箱（translation_tasks）
//   - 提交后 Dispatch 立即投递；失败的任务由 Run 周期性补偿
type TranslationDispatcher struct {
	tasks     repository.TranslationTaskRepository
	publisher TranslationPublisher
	cfg       config.TranslationConfig
	logger    *zap.Logger
}

// NewTranslationDispatcher 创建 TranslationDispatcher
func NewTranslationDispatcher(
	cfg config.TranslationConfig,
	tasks repository.TranslationTaskRepository,
	publisher TranslationPublisher,
	logger *zap.Logger,
) *TranslationDispatcher {
	return &TranslationDispatcher{tasks: tasks, publisher: publisher, cfg: cfg, logger: logger}
}

// ────────────────────── 变更检测 ──────────────────────

// Diff 将 loc 当前（写入前）的源语言文本与 in 逐字段比较。
// 发生变化的字段写入新文本、其他语言置空，并返回这些字段名；未变化的字段保持原样。
func (d *TranslationDispatcher) Diff(loc *model.ScreenLocation, in LocalizedInput, locale string) []string {
	fields := []struct {
		name   string
		target *model.LocalizedText
		text   string
	}{
		{model.FieldAddress1, &loc.Address1, in.Address1},
		{model.FieldAddress2, &loc.Address2, in.Address2},
		{model.FieldBuildingName, &loc.BuildingName, in.BuildingName},
	}

	var pending []string
	for _, f := range fields {
		if f.target.Text(locale) == f.text {
			continue
		}
		*f.target = model.NewUntranslated(locale, f.text)
		pending = append(pending, f.name)
	}
	return pending
}

// ResetTags 以逗号拼接标签文本写入源语言，其他语言置空。标签不做变更比较。
func (d *TranslationDispatcher) ResetTags(loc *model.ScreenLocation, texts []string, locale string) {
	loc.Tags = model.NewUntranslated(locale, strings.Join(texts, ","))
}

// NewTask 构造翻译任务；无待翻译字段时返回 nil
func (d *TranslationDispatcher) NewTask(fields []string, locale string) *model.TranslationTask {
	if len(fields) == 0 {
		return nil
	}
	return &model.TranslationTask{
		TaskID:       uuid.New().String(),
		Fields:       model.StringArray(append([]string(nil), fields...)),
		SourceLocale: locale,
		Queue:        d.cfg.Queue,
		Status:       model.TranslationTaskPending,
	}
}

// ────────────────────── 投递 ──────────────────────

// Dispatch 在数据写入提交后投递任务。投递失败不影响调用方，任务保留在发件箱等待补偿。
func (d *TranslationDispatcher) Dispatch(ctx context.Context, task *model.TranslationTask) {
	if task == nil {
		return
	}
	if err := d.publish(ctx, task); err != nil {
		d.logger.Warn("翻译任务投递失败，等待补偿",
			zap.String("task_id", task.TaskID),
			zap.Int64("location_id", task.LocationID),
			zap.Error(err),
		)
		return
	}
	metrics.TranslationTasksTotal.WithLabelValues("dispatched").Inc()
}

func (d *TranslationDispatcher) publish(ctx context.Context, task *model.TranslationTask) error {
	if err := d.publisher.Publish(ctx, task); err != nil {
		metrics.TranslationTasksTotal.WithLabelValues("failed").Inc()
		if incErr := d.tasks.IncrementAttempts(ctx, task.TaskID); incErr != nil {
			d.logger.Error("更新翻译任务重试次数失败", zap.String("task_id", task.TaskID), zap.Error(incErr))
		}
		return err
	}
	if err := d.tasks.MarkDispatched(ctx, task.TaskID); err != nil {
		// 已投递但未标记：补偿时可能重复投递，翻译任务本身幂等
		d.logger.Error("标记翻译任务已投递失败", zap.String("task_id", task.TaskID), zap.Error(err))
	}
	return nil
}

// ────────────────────── 补偿 ──────────────────────

// RelayPending 重新投递超过 relay_after 仍未投递的任务，返回成功投递数
func (d *TranslationDispatcher) RelayPending(ctx context.Context) (int, error) {
	batch := d.cfg.RelayBatch
	if batch <= 0 {
		batch = 100
	}
	tasks, err := d.tasks.ListPending(ctx, time.Now().Add(-d.cfg.RelayAfter), batch)
	if err != nil {
		return 0, err
	}

	relayed := 0
	for i := range tasks {
		if err := d.publish(ctx, &tasks[i]); err != nil {
			d.logger.Warn("补偿投递翻译任务失败",
				zap.String("task_id", tasks[i].TaskID),
				zap.Int("attempts", tasks[i].Attempts+1),
				zap.Error(err),
			)
			continue
		}
		metrics.TranslationTasksTotal.WithLabelValues("relayed").Inc()
		relayed++
	}
	return relayed, nil
}

// Run 周期性补偿，直到 ctx 取消
func (d *TranslationDispatcher) Run(ctx context.Context) {
	interval := d.cfg.RelayInterval
	if interval <= 0 {
		interval = 30 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := d.RelayPending(ctx)
			if err != nil {
				d.logger.Error("查询待投递翻译任务失败", zap.Error(err))
				continue
			}
			if n > 0 {
				d.logger.Info("翻译任务补偿投递完成", zap.Int("count", n))
			}
		}
	}
}
