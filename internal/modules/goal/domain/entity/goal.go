package entity

import (
	"errors"
	"math"
	"time"
)

const (
	CategoryReading = "reading"
	CategoryStudy   = "study"
	CategoryOther   = "other"
)

const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

const (
	StatusActive    = "active"
	StatusCompleted = "completed"
	// StatusOverdue 保留值，目前没有任何路径会自动写入
	StatusOverdue = "overdue"
)

const MaxProgress = 100

// Milestones 进度里程碑，升序
var Milestones = []int{25, 50, 75, 100}

var (
	ErrNotFound        = errors.New("goal not found")
	ErrVersionConflict = errors.New("goal version conflict")
)

type Goal struct {
	Id          int64      `gorm:"column:id;primaryKey;autoIncrement"`
	GoalId      string     `gorm:"column:goal_id;type:char(20);uniqueIndex;not null"`
	UserId      string     `gorm:"column:user_id;type:varchar(64);not null;index:idx_goal_user_status,priority:1"`
	OrgId       string     `gorm:"column:org_id;type:varchar(64)"`
	Title       string     `gorm:"column:title;type:varchar(255);not null"`
	Description string     `gorm:"column:description;type:text"`
	Category    string     `gorm:"column:category;type:varchar(16);not null;default:other"`
	Priority    string     `gorm:"column:priority;type:varchar(16);not null;default:medium"`
	Progress    int        `gorm:"column:progress;type:int;not null;default:0"`
	Status      string     `gorm:"column:status;type:varchar(16);not null;default:active;index:idx_goal_user_status,priority:2"`
	TargetDate  *time.Time `gorm:"column:target_date;type:datetime"`
	CompletedAt *time.Time `gorm:"column:completed_at;type:datetime"`
	Version     int        `gorm:"column:version;type:int;not null;default:1"`
	CreatedAt   time.Time  `gorm:"column:created_at;type:datetime;not null"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;type:datetime;not null"`
}

func (Goal) TableName() string {
	return "goal"
}

func (g *Goal) IsActive() bool {
	return g.Status == StatusActive
}

func ValidCategory(c string) bool {
	switch c {
	case CategoryReading, CategoryStudy, CategoryOther:
		return true
	}
	return false
}

func ValidPriority(p string) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

func ClampProgress(p int) int {
	if p < 0 {
		return 0
	}
	if p > MaxProgress {
		return MaxProgress
	}
	return p
}

// ProgressFromRatio round(value/target*100) 并截断到 [0,100]；非有限值按 0 处理
func ProgressFromRatio(value, target float64) int {
	if target <= 0 || math.IsNaN(target) || math.IsInf(target, 0) {
		return 0
	}
	pct := value / target * 100
	if math.IsNaN(pct) || math.IsInf(pct, -1) || pct < 0 {
		return 0
	}
	if math.IsInf(pct, 1) || pct >= MaxProgress {
		return MaxProgress
	}
	return ClampProgress(int(math.Round(pct)))
}

// CrossedMilestones 返回满足 from < t <= to 的里程碑
func CrossedMilestones(from, to int) []int {
	var out []int
	for _, t := range Milestones {
		if from < t && t <= to {
			out = append(out, t)
		}
	}
	return out
}
