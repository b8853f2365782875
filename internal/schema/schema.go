// Package schema lists every gorm model owned by the service.
package schema

import (
	activityEntity "FPKProgress/internal/modules/activity/domain/entity"
	goalEntity "FPKProgress/internal/modules/goal/domain/entity"
	notificationEntity "FPKProgress/internal/modules/notification/domain/entity"
	xpEntity "FPKProgress/internal/modules/xp/domain/entity"
)

func Models() []interface{} {
	return []interface{}{
		&goalEntity.Goal{},

		&activityEntity.StudySession{},
		&activityEntity.ReadingSession{},
		&activityEntity.Flashcard{},
		&activityEntity.Note{},
		&activityEntity.FileUpload{},

		&xpEntity.XPEvent{},
		&xpEntity.BackfillJob{},
		&xpEntity.UserLevel{},
		&xpEntity.Badge{},
		&xpEntity.UserBadge{},

		&notificationEntity.Notification{},
		&notificationEntity.OutboxEvent{},
	}
}
