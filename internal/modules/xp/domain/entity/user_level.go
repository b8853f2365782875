package entity

import "time"

// UserLevel 已经宣告过的最高等级。
// 每次写经验前先锁住这一行，同一用户的写入因此串行，升级通知不会重复也不会漏发。
// Level 为 0 表示尚未建立基线。
type UserLevel struct {
	UserId    string    `gorm:"column:user_id;type:varchar(64);primaryKey"`
	Level     int       `gorm:"column:level;type:int;not null;default:0"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:datetime;not null"`
}

func (UserLevel) TableName() string {
	return "xp_user_level"
}
