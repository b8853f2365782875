package persistence

import (
	"context"

	activityEntity "FPKProgress/internal/modules/activity/domain/entity"
	goalEntity "FPKProgress/internal/modules/goal/domain/entity"
	"FPKProgress/internal/modules/xp/domain/entity"
	"FPKProgress/internal/modules/xp/domain/repository"

	"gorm.io/gorm"
)

type badgeMetricsReaderImpl struct {
	db *gorm.DB
}

// NewBadgeMetricsReader 直接统计活动表与目标表，事务内构造时能看到本事务刚完成的目标
func NewBadgeMetricsReader(db *gorm.DB) repository.BadgeMetricsReader {
	return &badgeMetricsReaderImpl{db: db}
}

func (r *badgeMetricsReaderImpl) Metrics(ctx context.Context, userID string) (entity.BadgeMetrics, error) {
	db := r.db.WithContext(ctx)
	var flashcards, goals int64
	if err := db.Model(&activityEntity.Flashcard{}).Where("user_id = ?", userID).Count(&flashcards).Error; err != nil {
		return entity.BadgeMetrics{}, err
	}
	if err := db.Model(&goalEntity.Goal{}).
		Where("user_id = ? AND status = ?", userID, goalEntity.StatusCompleted).
		Count(&goals).Error; err != nil {
		return entity.BadgeMetrics{}, err
	}
	var seconds int
	if err := db.Model(&activityEntity.ReadingSession{}).
		Select("COALESCE(SUM(duration_seconds), 0)").
		Where("user_id = ?", userID).
		Scan(&seconds).Error; err != nil {
		return entity.BadgeMetrics{}, err
	}
	return entity.BadgeMetrics{
		Flashcards:     int(flashcards),
		GoalsCompleted: int(goals),
		ReadingSeconds: seconds,
	}, nil
}
