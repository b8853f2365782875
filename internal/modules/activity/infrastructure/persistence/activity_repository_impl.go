package persistence

import (
	"context"
	"time"

	"FPKProgress/internal/modules/activity/domain/entity"
	"FPKProgress/internal/modules/activity/domain/repository"

	"gorm.io/gorm"
)

func distinctUserIDs(ctx context.Context, db *gorm.DB, model interface{}, query string, args ...interface{}) ([]string, error) {
	var ids []string
	q := db.WithContext(ctx).Model(model).Distinct("user_id")
	if query != "" {
		q = q.Where(query, args...)
	}
	err := q.Order("user_id ASC").Pluck("user_id", &ids).Error
	return ids, err
}

type studySessionRepositoryImpl struct {
	db *gorm.DB
}

func NewStudySessionRepository(db *gorm.DB) repository.StudySessionRepository {
	return &studySessionRepositoryImpl{db: db}
}

func (r *studySessionRepositoryImpl) Create(ctx context.Context, s *entity.StudySession) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *studySessionRepositoryImpl) ListCompletedByUser(ctx context.Context, userID string) ([]*entity.StudySession, error) {
	var out []*entity.StudySession
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND completed_at IS NOT NULL", userID).
		Order("completed_at ASC, id ASC").
		Find(&out).Error
	return out, err
}

func (r *studySessionRepositoryImpl) ListCompletedBetween(ctx context.Context, userID string, from, to time.Time) ([]*entity.StudySession, error) {
	var out []*entity.StudySession
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND completed_at IS NOT NULL AND completed_at >= ? AND completed_at <= ?", userID, from, to).
		Order("completed_at ASC, id ASC").
		Find(&out).Error
	return out, err
}

func (r *studySessionRepositoryImpl) DistinctUserIDs(ctx context.Context) ([]string, error) {
	return distinctUserIDs(ctx, r.db, &entity.StudySession{}, "completed_at IS NOT NULL")
}

type readingSessionRepositoryImpl struct {
	db *gorm.DB
}

func NewReadingSessionRepository(db *gorm.DB) repository.ReadingSessionRepository {
	return &readingSessionRepositoryImpl{db: db}
}

func (r *readingSessionRepositoryImpl) Create(ctx context.Context, s *entity.ReadingSession) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *readingSessionRepositoryImpl) ListByUser(ctx context.Context, userID string) ([]*entity.ReadingSession, error) {
	var out []*entity.ReadingSession
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("session_end ASC, id ASC").
		Find(&out).Error
	return out, err
}

func (r *readingSessionRepositoryImpl) ListEndedBetween(ctx context.Context, userID string, from, to time.Time) ([]*entity.ReadingSession, error) {
	var out []*entity.ReadingSession
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND session_end >= ? AND session_end <= ?", userID, from, to).
		Order("session_end ASC, id ASC").
		Find(&out).Error
	return out, err
}

func (r *readingSessionRepositoryImpl) DistinctUserIDs(ctx context.Context) ([]string, error) {
	return distinctUserIDs(ctx, r.db, &entity.ReadingSession{}, "")
}

type flashcardRepositoryImpl struct {
	db *gorm.DB
}

func NewFlashcardRepository(db *gorm.DB) repository.FlashcardRepository {
	return &flashcardRepositoryImpl{db: db}
}

func (r *flashcardRepositoryImpl) Create(ctx context.Context, f *entity.Flashcard) error {
	return r.db.WithContext(ctx).Create(f).Error
}

func (r *flashcardRepositoryImpl) ListByUser(ctx context.Context, userID string) ([]*entity.Flashcard, error) {
	var out []*entity.Flashcard
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at ASC, id ASC").Find(&out).Error
	return out, err
}

func (r *flashcardRepositoryImpl) DistinctUserIDs(ctx context.Context) ([]string, error) {
	return distinctUserIDs(ctx, r.db, &entity.Flashcard{}, "")
}

type noteRepositoryImpl struct {
	db *gorm.DB
}

func NewNoteRepository(db *gorm.DB) repository.NoteRepository {
	return &noteRepositoryImpl{db: db}
}

func (r *noteRepositoryImpl) Create(ctx context.Context, n *entity.Note) error {
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *noteRepositoryImpl) ListByUser(ctx context.Context, userID string) ([]*entity.Note, error) {
	var out []*entity.Note
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at ASC, id ASC").Find(&out).Error
	return out, err
}

func (r *noteRepositoryImpl) DistinctUserIDs(ctx context.Context) ([]string, error) {
	return distinctUserIDs(ctx, r.db, &entity.Note{}, "")
}

type fileUploadRepositoryImpl struct {
	db *gorm.DB
}

func NewFileUploadRepository(db *gorm.DB) repository.FileUploadRepository {
	return &fileUploadRepositoryImpl{db: db}
}

func (r *fileUploadRepositoryImpl) Create(ctx context.Context, u *entity.FileUpload) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *fileUploadRepositoryImpl) ListCompletedByUser(ctx context.Context, userID string) ([]*entity.FileUpload, error) {
	var out []*entity.FileUpload
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND processing_status = ?", userID, entity.UploadStatusCompleted).
		Order("updated_at ASC, id ASC").
		Find(&out).Error
	return out, err
}

func (r *fileUploadRepositoryImpl) DistinctUserIDs(ctx context.Context) ([]string, error) {
	return distinctUserIDs(ctx, r.db, &entity.FileUpload{}, "processing_status = ?", entity.UploadStatusCompleted)
}
