package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"signage/backend/internal/model"
	pkgerrors "signage/backend/pkg/errors"
)

type recordingPusher struct {
	queue   string
	payload []byte
	err     error
}

func (p *recordingPusher) PushQueue(_ context.Context, queue string, payload []byte) error {
	p.queue = queue
	p.payload = payload
	return p.err
}

func TestRedisPublisher_Publish(t *testing.T) {
	pusher := &recordingPusher{}
	pub := NewPublisher(pusher)

	task := &model.TranslationTask{
		TaskID:       "9b2f7c1e-0000-4000-8000-000000000001",
		LocationID:   42,
		Fields:       model.StringArray{model.FieldBuildingName},
		SourceLocale: model.LocaleEN,
		Queue:        "translations",
	}
	if err := pub.Publish(context.Background(), task); err != nil {
		t.Fatalf("Publish 应成功: %v", err)
	}

	if pusher.queue != "translations" {
		t.Errorf("期望队列=translations，实际=%s", pusher.queue)
	}
	var msg Message
	if err := json.Unmarshal(pusher.payload, &msg); err != nil {
		t.Fatalf("消息体应为合法 JSON: %v", err)
	}
	if msg.RecordID != 42 || msg.SourceLocale != "en" {
		t.Errorf("消息体不符: %+v", msg)
	}
	if len(msg.FieldNames) != 1 || msg.FieldNames[0] != "building_name" {
		t.Errorf("期望 field_names=[building_name]，实际=%v", msg.FieldNames)
	}
}

func TestRedisPublisher_Unavailable(t *testing.T) {
	pub := NewRedisPublisher(nil)

	err := pub.Publish(context.Background(), &model.TranslationTask{Queue: "translations"})
	if !errors.Is(err, pkgerrors.ErrQueueUnavailable) {
		t.Errorf("期望 ErrQueueUnavailable，实际: %v", err)
	}
}

func TestRedisPublisher_PushError(t *testing.T) {
	pub := NewPublisher(&recordingPusher{err: errors.New("connection refused")})

	if err := pub.Publish(context.Background(), &model.TranslationTask{Queue: "translations"}); err == nil {
		t.Error("期望写入失败时返回错误")
	}
}
