package entity

import (
	"database/sql"
	"errors"
	"time"
)

// ErrDuplicateSource 同一来源已经发放过经验
var ErrDuplicateSource = errors.New("xp: source already awarded")

// XPEvent 经验流水，只追加不修改；回填撤销只删除 Backfill=true 的行
type XPEvent struct {
	Id           int64          `gorm:"column:id;primaryKey;autoIncrement"`
	EventId      string         `gorm:"column:event_id;type:char(20);uniqueIndex;not null"`
	UserId       string         `gorm:"column:user_id;type:varchar(64);not null;uniqueIndex:uniq_xp_event_source,priority:1;index:idx_xp_event_user_created,priority:1"`
	EventType    string         `gorm:"column:event_type;type:varchar(40);not null"`
	Amount       int            `gorm:"column:amount;type:int;not null"`
	SourceKey    sql.NullString `gorm:"column:source_key;type:varchar(160);uniqueIndex:uniq_xp_event_source,priority:2"`
	Backfill     bool           `gorm:"column:backfill;not null;default:false;index"`
	MetadataJson string         `gorm:"column:metadata_json;type:json"`
	CreatedAt    time.Time      `gorm:"column:created_at;type:datetime;not null;index:idx_xp_event_user_created,priority:2"`
}

func (XPEvent) TableName() string {
	return "xp_event"
}

const (
	JobStatusRunning   = "running"
	JobStatusCompleted = "completed"
	JobStatusFailed    = "failed"
)

// BackfillJob 全量回填的执行记录
type BackfillJob struct {
	Id             int64      `gorm:"column:id;primaryKey;autoIncrement"`
	JobId          string     `gorm:"column:job_id;type:char(20);uniqueIndex;not null"`
	RequestedBy    string     `gorm:"column:requested_by;type:varchar(64);not null"`
	DryRun         bool       `gorm:"column:dry_run;not null;default:false"`
	Status         string     `gorm:"column:status;type:varchar(16);not null"`
	UsersTotal     int        `gorm:"column:users_total;type:int;not null;default:0"`
	UsersSucceeded int        `gorm:"column:users_succeeded;type:int;not null;default:0"`
	UsersFailed    int        `gorm:"column:users_failed;type:int;not null;default:0"`
	EventsCreated  int        `gorm:"column:events_created;type:int;not null;default:0"`
	XPAwarded      int        `gorm:"column:xp_awarded;type:int;not null;default:0"`
	LastError      string     `gorm:"column:last_error;type:varchar(255)"`
	FinishedAt     *time.Time `gorm:"column:finished_at;type:datetime"`
	CreatedAt      time.Time  `gorm:"column:created_at;type:datetime;not null"`
	UpdatedAt      time.Time  `gorm:"column:updated_at;type:datetime;not null"`
}

func (BackfillJob) TableName() string {
	return "xp_backfill_job"
}
