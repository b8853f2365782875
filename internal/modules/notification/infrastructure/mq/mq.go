// Package mq 通知投递用到的消息抽象，kafka 子包是唯一实现
package mq

import (
	"context"
	"strconv"

	"FPKProgress/internal/modules/notification/domain/entity"
)

// 随通知消息发送的 header
const (
	HeaderEventType = "event_type"
	HeaderUserID    = "user_id"
	HeaderDedupKey  = "dedup_key"
)

type Message struct {
	Topic   string
	Key     []byte
	Value   []byte
	Headers map[string]string
}

// OutboxMessage 以用户为 key，同一用户的通知落在同一分区，保证推送顺序
func OutboxMessage(topic string, ev entity.OutboxEvent) Message {
	key := []byte(ev.UserId)
	if len(key) == 0 {
		key = []byte(strconv.FormatInt(ev.Id, 10))
	}
	return Message{
		Topic: topic,
		Key:   key,
		Value: []byte(ev.PayloadJson),
		Headers: map[string]string{
			HeaderEventType: ev.EventType,
			HeaderUserID:    ev.UserId,
			HeaderDedupKey:  ev.DedupKey,
		},
	}
}

// Header 缺失时返回空串
func (m Message) Header(name string) string {
	if m.Headers == nil {
		return ""
	}
	return m.Headers[name]
}

type PublishResult struct {
	Partition int32
	Offset    int64
}

type Publisher interface {
	Publish(ctx context.Context, msg Message) (PublishResult, error)
	Close() error
}

// Handler 返回 nil 时消息被确认，返回错误则不提交位点
type Handler interface {
	Handle(ctx context.Context, msg Message) error
}

type Consumer interface {
	Run(ctx context.Context, handler Handler) error
	Close() error
}
