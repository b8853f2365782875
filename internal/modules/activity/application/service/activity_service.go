package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"FPKProgress/internal/modules/activity/application/dto/request"
	"FPKProgress/internal/modules/activity/application/dto/respond"
	"FPKProgress/internal/modules/activity/domain/entity"
	"FPKProgress/internal/modules/activity/domain/repository"
	xpService "FPKProgress/internal/modules/xp/application/service"
	xpEntity "FPKProgress/internal/modules/xp/domain/entity"
	"FPKProgress/pkg/actor"
	"FPKProgress/pkg/util"
	"FPKProgress/pkg/validate"
	"FPKProgress/pkg/xerr"
	"FPKProgress/pkg/zlog"

	"go.uber.org/zap"
)

// RecomputeFunc 写入会影响目标进度的活动后触发重算
type RecomputeFunc func(ctx context.Context, userID string) error

// XPRecorder 由 xp 模块的 Awarder 实现，每次记账独立成事务
type XPRecorder interface {
	RecordEvent(ctx context.Context, userID, eventType string, amount int, opts xpService.RecordOptions) (*xpEntity.XPEvent, error)
}

type ActivityService interface {
	LogStudySession(ctx context.Context, a actor.Actor, req request.StudySessionRequest) (*respond.ActivityRespond, error)
	LogReadingSession(ctx context.Context, a actor.Actor, req request.ReadingSessionRequest) (*respond.ActivityRespond, error)
	CreateFlashcard(ctx context.Context, a actor.Actor, req request.FlashcardRequest) (*respond.ActivityRespond, error)
	CreateNote(ctx context.Context, a actor.Actor, req request.NoteRequest) (*respond.ActivityRespond, error)
	RegisterFileUpload(ctx context.Context, a actor.Actor, req request.FileUploadRequest) (*respond.ActivityRespond, error)
}

type activityServiceImpl struct {
	studyRepo     repository.StudySessionRepository
	readingRepo   repository.ReadingSessionRepository
	flashcardRepo repository.FlashcardRepository
	noteRepo      repository.NoteRepository
	uploadRepo    repository.FileUploadRepository
	xp            XPRecorder
	recompute     RecomputeFunc
}

func NewActivityService(studyRepo repository.StudySessionRepository, readingRepo repository.ReadingSessionRepository, flashcardRepo repository.FlashcardRepository, noteRepo repository.NoteRepository, uploadRepo repository.FileUploadRepository, xp XPRecorder, recompute RecomputeFunc) ActivityService {
	return &activityServiceImpl{
		studyRepo:     studyRepo,
		readingRepo:   readingRepo,
		flashcardRepo: flashcardRepo,
		noteRepo:      noteRepo,
		uploadRepo:    uploadRepo,
		xp:            xp,
		recompute:     recompute,
	}
}

func (s *activityServiceImpl) LogStudySession(ctx context.Context, a actor.Actor, req request.StudySessionRequest) (*respond.ActivityRespond, error) {
	if a.UserID == "" {
		return nil, xerr.ErrUnauthorized
	}
	if err := validate.Struct(req); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	completedAt := now
	if req.CompletedAt != nil && !req.CompletedAt.IsZero() {
		completedAt = req.CompletedAt.UTC()
	}
	session := &entity.StudySession{
		SessionId:       util.GenerateID("SS"),
		UserId:          a.UserID,
		DeckName:        strings.TrimSpace(req.DeckName),
		CorrectAnswers:  req.CorrectAnswers,
		TotalCards:      req.TotalCards,
		DurationSeconds: req.DurationSeconds,
		StartedAt:       completedAt.Add(-time.Duration(req.DurationSeconds) * time.Second),
		CompletedAt:     &completedAt,
		CreatedAt:       now,
	}
	if err := s.studyRepo.Create(ctx, session); err != nil {
		zlog.Error("study session create failed", zap.String("user_id", a.UserID), zap.Error(err))
		return nil, xerr.ErrServerError
	}

	amount := xpEntity.StudySessionXP(session.CorrectAnswers, session.TotalCards, session.DurationSeconds)
	awarded := s.award(ctx, a.UserID, xpEntity.EventStudySession, amount, xpService.RecordOptions{
		SourceKey: xpEntity.SourceKey(xpEntity.SourceStudySession, session.SessionId),
		Metadata: map[string]any{
			"session_id":       session.SessionId,
			"correct_answers":  session.CorrectAnswers,
			"total_cards":      session.TotalCards,
			"duration_seconds": session.DurationSeconds,
		},
		OccurredAt: completedAt,
	})
	s.triggerRecompute(ctx, a.UserID)
	return &respond.ActivityRespond{Id: session.SessionId, XPAwarded: awarded}, nil
}

func (s *activityServiceImpl) LogReadingSession(ctx context.Context, a actor.Actor, req request.ReadingSessionRequest) (*respond.ActivityRespond, error) {
	if a.UserID == "" {
		return nil, xerr.ErrUnauthorized
	}
	if err := validate.Struct(req); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	end := now
	if req.SessionEnd != nil && !req.SessionEnd.IsZero() {
		end = req.SessionEnd.UTC()
	}
	session := &entity.ReadingSession{
		SessionId:       util.GenerateID("RS"),
		UserId:          a.UserID,
		BookTitle:       strings.TrimSpace(req.BookTitle),
		DurationSeconds: req.DurationSeconds,
		PagesRead:       req.PagesRead,
		SessionStart:    end.Add(-time.Duration(req.DurationSeconds) * time.Second),
		SessionEnd:      end,
		CreatedAt:       now,
	}
	if err := s.readingRepo.Create(ctx, session); err != nil {
		zlog.Error("reading session create failed", zap.String("user_id", a.UserID), zap.Error(err))
		return nil, xerr.ErrServerError
	}

	amount := xpEntity.ReadingSessionXP(session.DurationSeconds, session.PagesRead)
	awarded := s.award(ctx, a.UserID, xpEntity.EventReadingSession, amount, xpService.RecordOptions{
		SourceKey: xpEntity.SourceKey(xpEntity.SourceReadingSession, session.SessionId),
		Metadata: map[string]any{
			"session_id":       session.SessionId,
			"duration_seconds": session.DurationSeconds,
			"pages_read":       session.PagesRead,
		},
		OccurredAt: end,
	})
	s.triggerRecompute(ctx, a.UserID)
	return &respond.ActivityRespond{Id: session.SessionId, XPAwarded: awarded}, nil
}

func (s *activityServiceImpl) CreateFlashcard(ctx context.Context, a actor.Actor, req request.FlashcardRequest) (*respond.ActivityRespond, error) {
	if a.UserID == "" {
		return nil, xerr.ErrUnauthorized
	}
	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	f := &entity.Flashcard{
		FlashcardId: util.GenerateID("FC"),
		UserId:      a.UserID,
		Front:       req.Front,
		Back:        req.Back,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.flashcardRepo.Create(ctx, f); err != nil {
		zlog.Error("flashcard create failed", zap.String("user_id", a.UserID), zap.Error(err))
		return nil, xerr.ErrServerError
	}
	return &respond.ActivityRespond{Id: f.FlashcardId}, nil
}

func (s *activityServiceImpl) CreateNote(ctx context.Context, a actor.Actor, req request.NoteRequest) (*respond.ActivityRespond, error) {
	if a.UserID == "" {
		return nil, xerr.ErrUnauthorized
	}
	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	n := &entity.Note{
		NoteId:    util.GenerateID("NO"),
		UserId:    a.UserID,
		Title:     strings.TrimSpace(req.Title),
		Content:   req.Content,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.noteRepo.Create(ctx, n); err != nil {
		zlog.Error("note create failed", zap.String("user_id", a.UserID), zap.Error(err))
		return nil, xerr.ErrServerError
	}
	return &respond.ActivityRespond{Id: n.NoteId}, nil
}

func (s *activityServiceImpl) RegisterFileUpload(ctx context.Context, a actor.Actor, req request.FileUploadRequest) (*respond.ActivityRespond, error) {
	if a.UserID == "" {
		return nil, xerr.ErrUnauthorized
	}
	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	status := req.ProcessingStatus
	if status == "" {
		status = entity.UploadStatusPending
	}
	now := time.Now().UTC()
	u := &entity.FileUpload{
		UploadId:         util.GenerateID("FU"),
		UserId:           a.UserID,
		FileName:         strings.TrimSpace(req.FileName),
		ProcessingStatus: status,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.uploadRepo.Create(ctx, u); err != nil {
		zlog.Error("file upload create failed", zap.String("user_id", a.UserID), zap.Error(err))
		return nil, xerr.ErrServerError
	}
	return &respond.ActivityRespond{Id: u.UploadId}, nil
}

// award 经验发放失败不影响活动记录本身，回填可以补齐
func (s *activityServiceImpl) award(ctx context.Context, userID, eventType string, amount int, opts xpService.RecordOptions) int {
	if s.xp == nil {
		return 0
	}
	if _, err := s.xp.RecordEvent(ctx, userID, eventType, amount, opts); err != nil {
		if !errors.Is(err, xpEntity.ErrDuplicateSource) {
			zlog.Warn("organic xp award failed", zap.String("user_id", userID), zap.String("event_type", eventType), zap.Error(err))
		}
		return 0
	}
	return amount
}

func (s *activityServiceImpl) triggerRecompute(ctx context.Context, userID string) {
	if s.recompute == nil {
		return
	}
	if err := s.recompute(ctx, userID); err != nil {
		zlog.Warn("goal recompute after activity failed", zap.String("user_id", userID), zap.Error(err))
	}
}
