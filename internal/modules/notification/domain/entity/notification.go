package entity

import "time"

const (
	TypeGoalMilestone = "goal_milestone"
	TypeGoalCompleted = "goal_completed"
	TypeLevelUp       = "level_up"
)

// Notification 站内通知，一行即一次持久化的投递记录
type Notification struct {
	Id             int64      `gorm:"column:id;primaryKey;autoIncrement"`
	NotificationId string     `gorm:"column:notification_id;type:char(20);uniqueIndex;not null"`
	UserId         string     `gorm:"column:user_id;type:varchar(64);not null;index:idx_notification_user_read"`
	Type           string     `gorm:"column:type;type:varchar(30);not null"`
	Title          string     `gorm:"column:title;type:varchar(128);not null"`
	Message        string     `gorm:"column:message;type:text"`
	ActionUrl      string     `gorm:"column:action_url;type:varchar(255)"`
	MetadataJson   string     `gorm:"column:metadata_json;type:json"`
	ReadStatus     bool       `gorm:"column:read_status;not null;default:false;index:idx_notification_user_read"`
	ReadAt         *time.Time `gorm:"column:read_at;type:datetime"`
	CreatedAt      time.Time  `gorm:"column:created_at;type:datetime;not null"`
}

func (Notification) TableName() string {
	return "notification"
}
