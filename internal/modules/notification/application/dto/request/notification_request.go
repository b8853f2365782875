package request

type ListNotificationRequest struct {
	UnreadOnly bool `json:"unread_only"`
	Limit      int  `json:"limit" validate:"omitempty,min=1,max=200"`
}

type MarkReadRequest struct {
	NotificationId string `json:"notification_id" binding:"required" validate:"required,len=20"`
}
