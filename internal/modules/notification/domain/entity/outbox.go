package entity

import (
	"database/sql"
	"time"
)

const (
	PublishStatusPending    int8 = 0
	PublishStatusPublishing int8 = 1
	PublishStatusPublished  int8 = 2
	PublishStatusFailed     int8 = 3
)

const EventTypeNotificationCreated = "notification.created"

// OutboxEvent 与通知同事务写入，由 relay 异步投递到 Kafka
type OutboxEvent struct {
	Id             int64        `gorm:"column:id;primaryKey;autoIncrement"`
	EventType      string       `gorm:"column:event_type;type:varchar(40);not null"`
	UserId         string       `gorm:"column:user_id;type:varchar(64);not null;index:idx_outbox_user"`
	PayloadJson    string       `gorm:"column:payload_json;type:json"`
	DedupKey       string       `gorm:"column:dedup_key;type:varchar(160);not null;uniqueIndex:uniq_outbox_dedup"`
	PublishStatus  int8         `gorm:"column:publish_status;type:tinyint;not null;default:0;index:idx_outbox_publish"`
	RetryCount     int          `gorm:"column:retry_count;type:int;not null;default:0"`
	NextRetryAt    sql.NullTime `gorm:"column:next_retry_at;type:datetime;index:idx_outbox_publish"`
	KafkaTopic     string       `gorm:"column:kafka_topic;type:varchar(128)"`
	KafkaPartition int          `gorm:"column:kafka_partition;type:int"`
	KafkaOffset    int64        `gorm:"column:kafka_offset"`
	PublishedAt    sql.NullTime `gorm:"column:published_at;type:datetime"`
	LastError      string       `gorm:"column:last_error;type:varchar(255)"`
	CreatedAt      time.Time    `gorm:"column:created_at;type:datetime;not null"`
	UpdatedAt      time.Time    `gorm:"column:updated_at;type:datetime;not null"`
}

func (OutboxEvent) TableName() string {
	return "notification_outbox"
}

// PushMessage 写入 outbox payload，也是推送给 websocket 客户端的数据
type PushMessage struct {
	NotificationId string         `json:"notification_id"`
	UserId         string         `json:"user_id"`
	Type           string         `json:"type"`
	Title          string         `json:"title"`
	Message        string         `json:"message"`
	ActionUrl      string         `json:"action_url,omitempty"`
	Metadata       map[string]any `json:"metadata,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
}
