package entity

import "time"

// 活动记录写入后不再修改，是进度聚合与经验回填的唯一数据来源

type StudySession struct {
	Id              int64      `gorm:"column:id;primaryKey;autoIncrement"`
	SessionId       string     `gorm:"column:session_id;type:char(20);uniqueIndex;not null"`
	UserId          string     `gorm:"column:user_id;type:varchar(64);not null;index:idx_study_session_user_completed,priority:1"`
	DeckName        string     `gorm:"column:deck_name;type:varchar(128)"`
	CorrectAnswers  int        `gorm:"column:correct_answers;type:int;not null;default:0"`
	TotalCards      int        `gorm:"column:total_cards;type:int;not null;default:0"`
	DurationSeconds int        `gorm:"column:duration_seconds;type:int;not null;default:0"`
	StartedAt       time.Time  `gorm:"column:started_at;type:datetime;not null"`
	CompletedAt     *time.Time `gorm:"column:completed_at;type:datetime;index:idx_study_session_user_completed,priority:2"`
	CreatedAt       time.Time  `gorm:"column:created_at;type:datetime;not null"`
}

func (StudySession) TableName() string {
	return "study_session"
}

type ReadingSession struct {
	Id              int64     `gorm:"column:id;primaryKey;autoIncrement"`
	SessionId       string    `gorm:"column:session_id;type:char(20);uniqueIndex;not null"`
	UserId          string    `gorm:"column:user_id;type:varchar(64);not null;index:idx_reading_session_user_end,priority:1"`
	BookTitle       string    `gorm:"column:book_title;type:varchar(255)"`
	DurationSeconds int       `gorm:"column:duration_seconds;type:int;not null;default:0"`
	PagesRead       int       `gorm:"column:pages_read;type:int;not null;default:0"`
	SessionStart    time.Time `gorm:"column:session_start;type:datetime;not null"`
	SessionEnd      time.Time `gorm:"column:session_end;type:datetime;not null;index:idx_reading_session_user_end,priority:2"`
	CreatedAt       time.Time `gorm:"column:created_at;type:datetime;not null"`
}

func (ReadingSession) TableName() string {
	return "reading_session"
}

type Flashcard struct {
	Id          int64     `gorm:"column:id;primaryKey;autoIncrement"`
	FlashcardId string    `gorm:"column:flashcard_id;type:char(20);uniqueIndex;not null"`
	UserId      string    `gorm:"column:user_id;type:varchar(64);not null;index"`
	Front       string    `gorm:"column:front;type:text"`
	Back        string    `gorm:"column:back;type:text"`
	CreatedAt   time.Time `gorm:"column:created_at;type:datetime;not null"`
}

func (Flashcard) TableName() string {
	return "flashcard"
}

type Note struct {
	Id        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	NoteId    string    `gorm:"column:note_id;type:char(20);uniqueIndex;not null"`
	UserId    string    `gorm:"column:user_id;type:varchar(64);not null;index"`
	Title     string    `gorm:"column:title;type:varchar(255);not null"`
	Content   string    `gorm:"column:content;type:mediumtext"`
	CreatedAt time.Time `gorm:"column:created_at;type:datetime;not null"`
}

func (Note) TableName() string {
	return "note"
}

const (
	UploadStatusPending    = "pending"
	UploadStatusProcessing = "processing"
	UploadStatusCompleted  = "completed"
	UploadStatusFailed     = "failed"
)

type FileUpload struct {
	Id               int64     `gorm:"column:id;primaryKey;autoIncrement"`
	UploadId         string    `gorm:"column:upload_id;type:char(20);uniqueIndex;not null"`
	UserId           string    `gorm:"column:user_id;type:varchar(64);not null;index"`
	FileName         string    `gorm:"column:file_name;type:varchar(255);not null"`
	ProcessingStatus string    `gorm:"column:processing_status;type:varchar(16);not null"`
	CreatedAt        time.Time `gorm:"column:created_at;type:datetime;not null"`
	UpdatedAt        time.Time `gorm:"column:updated_at;type:datetime;not null"`
}

func (FileUpload) TableName() string {
	return "file_upload"
}
