package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"signage/backend/internal/model"
	pkgerrors "signage/backend/pkg/errors"
	"signage/backend/pkg/redis"
)

// Pusher 队列写入能力（由 pkg/redis.Client 实现）
type Pusher interface {
	PushQueue(ctx context.Context, queue string, payload []byte) error
}

// Message 投递到翻译队列的消息体
type Message struct {
	TaskID       string   `json:"task_id"`
	RecordID     int64    `json:"record_id"`
	FieldNames   []string `json:"field_names"`
	SourceLocale string   `json:"source_locale"`
}

// RedisPublisher 将翻译任务写入 Redis List
type RedisPublisher struct {
	pusher Pusher
}

// NewRedisPublisher 创建发布器；rdb 为 nil 时发布器处于不可用状态，任务留在发件箱等待补偿
func NewRedisPublisher(rdb *redis.Client) *RedisPublisher {
	if rdb == nil {
		return &RedisPublisher{}
	}
	return &RedisPublisher{pusher: rdb}
}

// NewPublisher 基于任意 Pusher 创建发布器
func NewPublisher(p Pusher) *RedisPublisher {
	return &RedisPublisher{pusher: p}
}

// Publish 序列化任务并写入任务自身指定的队列通道
func (p *RedisPublisher) Publish(ctx context.Context, task *model.TranslationTask) error {
	if p.pusher == nil {
		return pkgerrors.ErrQueueUnavailable
	}
	payload, err := json.Marshal(Message{
		TaskID:       task.TaskID,
		RecordID:     task.LocationID,
		FieldNames:   task.Fields,
		SourceLocale: task.SourceLocale,
	})
	if err != nil {
		return fmt.Errorf("序列化翻译任务失败: %w", err)
	}
	if err := p.pusher.PushQueue(ctx, task.Queue, payload); err != nil {
		return fmt.Errorf("写入翻译队列失败: %w", err)
	}
	return nil
}
