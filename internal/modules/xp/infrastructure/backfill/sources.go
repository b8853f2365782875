// Package backfill turns historical activity rows into XP candidates.
package backfill

import (
	"context"

	activityRepository "FPKProgress/internal/modules/activity/domain/repository"
	goalRepository "FPKProgress/internal/modules/goal/domain/repository"
	"FPKProgress/internal/modules/xp/application/service"
	"FPKProgress/internal/modules/xp/domain/entity"
)

// Sources 回填顺序固定，报告中的类别顺序与之一致
func Sources(
	flashcards activityRepository.FlashcardRepository,
	studies activityRepository.StudySessionRepository,
	notes activityRepository.NoteRepository,
	goals goalRepository.GoalRepository,
	readings activityRepository.ReadingSessionRepository,
	uploads activityRepository.FileUploadRepository,
) []service.BackfillSource {
	return []service.BackfillSource{
		&FlashcardSource{repo: flashcards},
		&StudySessionSource{repo: studies},
		&NoteSource{repo: notes},
		&GoalSource{repo: goals},
		&ReadingSessionSource{repo: readings},
		&FileUploadSource{repo: uploads},
	}
}

type FlashcardSource struct {
	repo activityRepository.FlashcardRepository
}

func (s *FlashcardSource) Category() string { return entity.SourceFlashcard }

func (s *FlashcardSource) Users(ctx context.Context) ([]string, error) {
	return s.repo.DistinctUserIDs(ctx)
}

func (s *FlashcardSource) Candidates(ctx context.Context, userID string) ([]service.Candidate, error) {
	rows, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]service.Candidate, 0, len(rows))
	for _, f := range rows {
		out = append(out, service.Candidate{
			Category:   entity.SourceFlashcard,
			SourceID:   f.FlashcardId,
			EventType:  entity.EventFlashcardCreated,
			Amount:     entity.FlashcardXP,
			OccurredAt: f.CreatedAt,
			Metadata:   map[string]any{"flashcard_id": f.FlashcardId},
		})
	}
	return out, nil
}

type StudySessionSource struct {
	repo activityRepository.StudySessionRepository
}

func (s *StudySessionSource) Category() string { return entity.SourceStudySession }

func (s *StudySessionSource) Users(ctx context.Context) ([]string, error) {
	return s.repo.DistinctUserIDs(ctx)
}

func (s *StudySessionSource) Candidates(ctx context.Context, userID string) ([]service.Candidate, error) {
	rows, err := s.repo.ListCompletedByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]service.Candidate, 0, len(rows))
	for _, ss := range rows {
		occurred := ss.StartedAt
		if ss.CompletedAt != nil {
			occurred = *ss.CompletedAt
		}
		out = append(out, service.Candidate{
			Category:   entity.SourceStudySession,
			SourceID:   ss.SessionId,
			EventType:  entity.EventStudySession,
			Amount:     entity.StudySessionXP(ss.CorrectAnswers, ss.TotalCards, ss.DurationSeconds),
			OccurredAt: occurred,
			Metadata: map[string]any{
				"session_id":       ss.SessionId,
				"correct_answers":  ss.CorrectAnswers,
				"total_cards":      ss.TotalCards,
				"duration_seconds": ss.DurationSeconds,
			},
		})
	}
	return out, nil
}

type NoteSource struct {
	repo activityRepository.NoteRepository
}

func (s *NoteSource) Category() string { return entity.SourceNote }

func (s *NoteSource) Users(ctx context.Context) ([]string, error) {
	return s.repo.DistinctUserIDs(ctx)
}

func (s *NoteSource) Candidates(ctx context.Context, userID string) ([]service.Candidate, error) {
	rows, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]service.Candidate, 0, len(rows))
	for _, n := range rows {
		out = append(out, service.Candidate{
			Category:   entity.SourceNote,
			SourceID:   n.NoteId,
			EventType:  entity.EventNoteCreated,
			Amount:     entity.NoteXP,
			OccurredAt: n.CreatedAt,
			Metadata:   map[string]any{"note_id": n.NoteId, "title": n.Title},
		})
	}
	return out, nil
}

// GoalSource 只统计已完成的目标，来源键与实时完成奖励一致
type GoalSource struct {
	repo goalRepository.GoalRepository
}

func (s *GoalSource) Category() string { return entity.SourceGoal }

func (s *GoalSource) Users(ctx context.Context) ([]string, error) {
	return s.repo.CompletedUserIDs(ctx)
}

func (s *GoalSource) Candidates(ctx context.Context, userID string) ([]service.Candidate, error) {
	rows, err := s.repo.ListCompletedByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]service.Candidate, 0, len(rows))
	for _, g := range rows {
		occurred := g.UpdatedAt
		if g.CompletedAt != nil {
			occurred = *g.CompletedAt
		}
		out = append(out, service.Candidate{
			Category:   entity.SourceGoal,
			SourceID:   g.GoalId,
			EventType:  entity.EventGoalCompleted,
			Amount:     entity.GoalCompletedXP(g.Priority),
			OccurredAt: occurred,
			Metadata:   map[string]any{"goal_id": g.GoalId, "priority": g.Priority, "description": "Goal completed"},
		})
	}
	return out, nil
}

type ReadingSessionSource struct {
	repo activityRepository.ReadingSessionRepository
}

func (s *ReadingSessionSource) Category() string { return entity.SourceReadingSession }

func (s *ReadingSessionSource) Users(ctx context.Context) ([]string, error) {
	return s.repo.DistinctUserIDs(ctx)
}

func (s *ReadingSessionSource) Candidates(ctx context.Context, userID string) ([]service.Candidate, error) {
	rows, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]service.Candidate, 0, len(rows))
	for _, rs := range rows {
		out = append(out, service.Candidate{
			Category:   entity.SourceReadingSession,
			SourceID:   rs.SessionId,
			EventType:  entity.EventReadingSession,
			Amount:     entity.ReadingSessionXP(rs.DurationSeconds, rs.PagesRead),
			OccurredAt: rs.SessionEnd,
			Metadata: map[string]any{
				"session_id":       rs.SessionId,
				"duration_seconds": rs.DurationSeconds,
				"pages_read":       rs.PagesRead,
			},
		})
	}
	return out, nil
}

type FileUploadSource struct {
	repo activityRepository.FileUploadRepository
}

func (s *FileUploadSource) Category() string { return entity.SourceFileUpload }

func (s *FileUploadSource) Users(ctx context.Context) ([]string, error) {
	return s.repo.DistinctUserIDs(ctx)
}

func (s *FileUploadSource) Candidates(ctx context.Context, userID string) ([]service.Candidate, error) {
	rows, err := s.repo.ListCompletedByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]service.Candidate, 0, len(rows))
	for _, u := range rows {
		out = append(out, service.Candidate{
			Category:   entity.SourceFileUpload,
			SourceID:   u.UploadId,
			EventType:  entity.EventFileUploaded,
			Amount:     entity.FileUploadXP,
			OccurredAt: u.UpdatedAt,
			Metadata:   map[string]any{"upload_id": u.UploadId, "file_name": u.FileName},
		})
	}
	return out, nil
}
