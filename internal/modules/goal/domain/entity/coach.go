package entity

// CoachBrief 发给教练模型的进度摘要
type CoachBrief struct {
	Goals          []*Goal
	ReadingMinutes float64
	StudyMinutes   float64
	WindowDays     int
	Question       string
}
