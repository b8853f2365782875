package entity

import "strings"

// 事件类型
const (
	EventFlashcardCreated = "flashcard_created"
	EventStudySession     = "flashcard_study"
	EventNoteCreated      = "note_created"
	EventGoalCompleted    = "goal_completed"
	EventReadingSession   = "reading_session"
	EventFileUploaded     = "file_uploaded"
)

// 来源类别，也是 source key 的前缀
const (
	SourceFlashcard      = "flashcard"
	SourceStudySession   = "study_session"
	SourceNote           = "note"
	SourceGoal           = "goal"
	SourceReadingSession = "reading_session"
	SourceFileUpload     = "file_upload"
)

const (
	FlashcardXP  = 5
	NoteXP       = 10
	FileUploadXP = 15
	minSessionXP = 5
)

func SourceKey(kind, id string) string {
	return kind + "_" + id
}

// StudySessionXP 每答对 10 题 5 分，全对加 10，5 分钟内完成加 5，最低 5
func StudySessionXP(correct, total, durationSeconds int) int {
	xp := (correct / 10) * 5
	if correct == total {
		xp += 10
	}
	if durationSeconds < 300 {
		xp += 5
	}
	if xp < minSessionXP {
		xp = minSessionXP
	}
	return xp
}

// ReadingSessionXP 每 10 分钟 5 分，每页 2 分，最低 5
func ReadingSessionXP(durationSeconds, pages int) int {
	if durationSeconds < 0 {
		durationSeconds = 0
	}
	if pages < 0 {
		pages = 0
	}
	xp := (durationSeconds/600)*5 + pages*2
	if xp < minSessionXP {
		xp = minSessionXP
	}
	return xp
}

func GoalCompletedXP(priority string) int {
	switch strings.ToLower(priority) {
	case "high":
		return 50
	case "medium":
		return 40
	default:
		return 30
	}
}
