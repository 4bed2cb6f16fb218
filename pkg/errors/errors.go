package errors

import "errors"

// ErrOptimisticLock 乐观锁冲突：记录已被其他操作修改
var ErrOptimisticLock = errors.New("数据已被其他操作修改，请刷新后重试")

// ErrQueueUnavailable 任务队列不可用（Redis 未连接）
var ErrQueueUnavailable = errors.New("任务队列不可用")
