// Package source 把活动记录折算成目标进度的度量值
package source

import (
	"context"
	"time"

	activityRepository "FPKProgress/internal/modules/activity/domain/repository"
	"FPKProgress/internal/modules/goal/domain/entity"
)

type ReadingSource struct {
	repo   activityRepository.ReadingSessionRepository
	target float64
}

// NewReadingSource 窗口内阅读分钟数，target 为满进度所需分钟
func NewReadingSource(repo activityRepository.ReadingSessionRepository, targetMinutes float64) *ReadingSource {
	return &ReadingSource{repo: repo, target: targetMinutes}
}

func (s *ReadingSource) Category() string { return entity.CategoryReading }

func (s *ReadingSource) Target() float64 { return s.target }

func (s *ReadingSource) Measure(ctx context.Context, userID string, from, to time.Time) (float64, int, error) {
	sessions, err := s.repo.ListEndedBetween(ctx, userID, from, to)
	if err != nil {
		return 0, 0, err
	}
	var seconds int
	for _, rs := range sessions {
		if rs.DurationSeconds > 0 {
			seconds += rs.DurationSeconds
		}
	}
	return float64(seconds) / 60, len(sessions), nil
}

type StudySource struct {
	repo   activityRepository.StudySessionRepository
	target float64
}

// NewStudySource 窗口内按正确率加权的学习分钟数
func NewStudySource(repo activityRepository.StudySessionRepository, targetMinutes float64) *StudySource {
	return &StudySource{repo: repo, target: targetMinutes}
}

func (s *StudySource) Category() string { return entity.CategoryStudy }

func (s *StudySource) Target() float64 { return s.target }

func (s *StudySource) Measure(ctx context.Context, userID string, from, to time.Time) (float64, int, error) {
	sessions, err := s.repo.ListCompletedBetween(ctx, userID, from, to)
	if err != nil {
		return 0, 0, err
	}
	var minutes float64
	for _, ss := range sessions {
		if ss.DurationSeconds <= 0 {
			continue
		}
		m := float64(ss.DurationSeconds) / 60
		if ss.TotalCards > 0 {
			m = m * float64(ss.CorrectAnswers) / float64(ss.TotalCards)
		}
		minutes += m
	}
	return minutes, len(sessions), nil
}
