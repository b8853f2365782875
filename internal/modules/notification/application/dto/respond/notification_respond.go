package respond

import "time"

type NotificationItem struct {
	NotificationId string         `json:"notification_id"`
	Type           string         `json:"type"`
	Title          string         `json:"title"`
	Message        string         `json:"message"`
	ActionUrl      string         `json:"action_url,omitempty"`
	Metadata       map[string]any `json:"metadata,omitempty"`
	ReadStatus     bool           `json:"read_status"`
	ReadAt         *time.Time     `json:"read_at,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
}

type UnreadCountRespond struct {
	Unread int64 `json:"unread"`
}

type MarkAllReadRespond struct {
	Updated int64 `json:"updated"`
}
