package repository

import (
	"context"
	"time"

	"FPKProgress/internal/modules/activity/domain/entity"
)

type StudySessionRepository interface {
	Create(ctx context.Context, s *entity.StudySession) error
	ListCompletedByUser(ctx context.Context, userID string) ([]*entity.StudySession, error)
	// ListCompletedBetween completed_at 落在 [from, to] 内的记录
	ListCompletedBetween(ctx context.Context, userID string, from, to time.Time) ([]*entity.StudySession, error)
	DistinctUserIDs(ctx context.Context) ([]string, error)
}

type ReadingSessionRepository interface {
	Create(ctx context.Context, s *entity.ReadingSession) error
	ListByUser(ctx context.Context, userID string) ([]*entity.ReadingSession, error)
	// ListEndedBetween session_end 落在 [from, to] 内的记录
	ListEndedBetween(ctx context.Context, userID string, from, to time.Time) ([]*entity.ReadingSession, error)
	DistinctUserIDs(ctx context.Context) ([]string, error)
}

type FlashcardRepository interface {
	Create(ctx context.Context, f *entity.Flashcard) error
	ListByUser(ctx context.Context, userID string) ([]*entity.Flashcard, error)
	DistinctUserIDs(ctx context.Context) ([]string, error)
}

type NoteRepository interface {
	Create(ctx context.Context, n *entity.Note) error
	ListByUser(ctx context.Context, userID string) ([]*entity.Note, error)
	DistinctUserIDs(ctx context.Context) ([]string, error)
}

type FileUploadRepository interface {
	Create(ctx context.Context, u *entity.FileUpload) error
	ListCompletedByUser(ctx context.Context, userID string) ([]*entity.FileUpload, error)
	DistinctUserIDs(ctx context.Context) ([]string, error)
}
