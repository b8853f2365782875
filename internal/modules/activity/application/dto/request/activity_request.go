package request

import "time"

type StudySessionRequest struct {
	DeckName        string     `json:"deck_name" validate:"max=128"`
	CorrectAnswers  int        `json:"correct_answers" validate:"min=0"`
	TotalCards      int        `json:"total_cards" validate:"min=0,gtefield=CorrectAnswers"`
	DurationSeconds int        `json:"duration_seconds" validate:"min=0,max=86400"`
	CompletedAt     *time.Time `json:"completed_at"`
}

type ReadingSessionRequest struct {
	BookTitle       string     `json:"book_title" validate:"max=255"`
	DurationSeconds int        `json:"duration_seconds" validate:"min=1,max=86400"`
	PagesRead       int        `json:"pages_read" validate:"min=0,max=10000"`
	SessionEnd      *time.Time `json:"session_end"`
}

type FlashcardRequest struct {
	Front string `json:"front" binding:"required" validate:"required,max=2000"`
	Back  string `json:"back" binding:"required" validate:"required,max=2000"`
}

type NoteRequest struct {
	Title   string `json:"title" binding:"required" validate:"required,max=255"`
	Content string `json:"content"`
}

type FileUploadRequest struct {
	FileName         string `json:"file_name" binding:"required" validate:"required,max=255"`
	ProcessingStatus string `json:"processing_status" validate:"omitempty,oneof=pending processing completed failed"`
}
