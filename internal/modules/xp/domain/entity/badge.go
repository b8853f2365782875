package entity

import "time"

// 徽章判定条件
const (
	CriteriaFlashcardCreated = "flashcard_created"
	CriteriaGoalCompleted    = "goal_completed"
	// CriteriaReadingTime 门槛单位为小时
	CriteriaReadingTime = "reading_time"
)

const (
	EventBadgeEarned = "badge_earned"
	SourceBadge      = "badge"
)

// Badge 徽章定义，条件与奖励经验都在表里维护
type Badge struct {
	Id           int64     `gorm:"column:id;primaryKey;autoIncrement"`
	BadgeId      string    `gorm:"column:badge_id;type:varchar(40);uniqueIndex;not null"`
	Name         string    `gorm:"column:name;type:varchar(64);not null"`
	Description  string    `gorm:"column:description;type:varchar(255)"`
	CriteriaType string    `gorm:"column:criteria_type;type:varchar(32);not null"`
	Threshold    float64   `gorm:"column:threshold;not null"`
	XPReward     int       `gorm:"column:xp_reward;type:int;not null;default:0"`
	CreatedAt    time.Time `gorm:"column:created_at;type:datetime;not null"`
}

func (Badge) TableName() string {
	return "xp_badge"
}

// UserBadge 同一徽章每个用户只能获得一次；Backfill 标记回填授予的徽章，撤销回填时一并删除
type UserBadge struct {
	Id        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	UserId    string    `gorm:"column:user_id;type:varchar(64);not null;uniqueIndex:uniq_user_badge,priority:1"`
	BadgeId   string    `gorm:"column:badge_id;type:varchar(40);not null;uniqueIndex:uniq_user_badge,priority:2"`
	Backfill  bool      `gorm:"column:backfill;not null;default:false"`
	AwardedAt time.Time `gorm:"column:awarded_at;type:datetime;not null"`
}

func (UserBadge) TableName() string {
	return "xp_user_badge"
}

// BadgeMetrics 判定徽章所需的活动汇总
type BadgeMetrics struct {
	Flashcards     int
	GoalsCompleted int
	ReadingSeconds int
}

func (b *Badge) Earned(m BadgeMetrics) bool {
	if b == nil || b.Threshold <= 0 {
		return false
	}
	switch b.CriteriaType {
	case CriteriaFlashcardCreated:
		return float64(m.Flashcards) >= b.Threshold
	case CriteriaGoalCompleted:
		return float64(m.GoalsCompleted) >= b.Threshold
	case CriteriaReadingTime:
		return float64(m.ReadingSeconds)/3600 >= b.Threshold
	}
	return false
}

// DefaultBadges 启动时写入的内置徽章，已存在的 badge_id 不覆盖
func DefaultBadges() []*Badge {
	return []*Badge{
		{BadgeId: "first_flashcard", Name: "First Card", Description: "Create your first flashcard", CriteriaType: CriteriaFlashcardCreated, Threshold: 1, XPReward: 10},
		{BadgeId: "card_collector", Name: "Card Collector", Description: "Create 50 flashcards", CriteriaType: CriteriaFlashcardCreated, Threshold: 50, XPReward: 50},
		{BadgeId: "goal_getter", Name: "Goal Getter", Description: "Complete your first goal", CriteriaType: CriteriaGoalCompleted, Threshold: 1, XPReward: 20},
		{BadgeId: "goal_crusher", Name: "Goal Crusher", Description: "Complete 10 goals", CriteriaType: CriteriaGoalCompleted, Threshold: 10, XPReward: 100},
		{BadgeId: "bookworm", Name: "Bookworm", Description: "Read for 10 hours", CriteriaType: CriteriaReadingTime, Threshold: 10, XPReward: 50},
	}
}
