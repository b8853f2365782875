package queue

import (
	"context"
	"encoding/json"
	"testing"

	"FPKProgress/internal/modules/notification/domain/entity"
	"FPKProgress/internal/modules/notification/infrastructure/mq"
)

type fakePusher struct {
	frames map[string][]PushFrame
}

func (p *fakePusher) SendJSON(userID string, v interface{}) (int, error) {
	if p.frames == nil {
		p.frames = make(map[string][]PushFrame)
	}
	p.frames[userID] = append(p.frames[userID], v.(PushFrame))
	return 1, nil
}

func TestPushWorkerDeliversToRecipient(t *testing.T) {
	pusher := &fakePusher{}
	w := NewPushWorker(nil, pusher)

	body, _ := json.Marshal(entity.PushMessage{NotificationId: "NT1", UserId: "u1", Type: entity.TypeLevelUp, Title: "Level up!"})
	if err := w.Handle(context.Background(), mq.Message{Topic: "t", Value: body}); err != nil {
		t.Fatalf("handle: %v", err)
	}
	frames := pusher.frames["u1"]
	if len(frames) != 1 || frames[0].Type != "notification" || frames[0].Data.NotificationId != "NT1" {
		t.Fatalf("unexpected frames: %+v", pusher.frames)
	}
}

func TestPushWorkerAcksMalformedMessages(t *testing.T) {
	pusher := &fakePusher{}
	w := NewPushWorker(nil, pusher)
	if err := w.Handle(context.Background(), mq.Message{Value: []byte("{not json")}); err != nil {
		t.Fatalf("malformed payload should be acked, got %v", err)
	}
	body, _ := json.Marshal(entity.PushMessage{NotificationId: "NT2"})
	if err := w.Handle(context.Background(), mq.Message{Value: body}); err != nil {
		t.Fatalf("missing user should be acked, got %v", err)
	}
	if len(pusher.frames) != 0 {
		t.Fatalf("nothing should be pushed")
	}
}

func TestPushWorkerFallsBackToHeaderUser(t *testing.T) {
	pusher := &fakePusher{}
	w := NewPushWorker(nil, pusher)
	body, _ := json.Marshal(entity.PushMessage{NotificationId: "NT3"})
	if err := w.Handle(context.Background(), mq.Message{Value: body, Headers: map[string]string{"user_id": "u9"}}); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(pusher.frames["u9"]) != 1 {
		t.Fatalf("expected push to header user")
	}
}
