package persistence

import (
	"context"
	"errors"
	"time"

	"FPKProgress/internal/modules/goal/domain/entity"
	"FPKProgress/internal/modules/goal/domain/repository"

	"gorm.io/gorm"
)

type goalRepositoryImpl struct {
	db *gorm.DB
}

func NewGoalRepository(db *gorm.DB) repository.GoalRepository {
	return &goalRepositoryImpl{db: db}
}

func (r *goalRepositoryImpl) Create(ctx context.Context, g *entity.Goal) error {
	return r.db.WithContext(ctx).Create(g).Error
}

func (r *goalRepositoryImpl) GetByGoalID(ctx context.Context, goalID string) (*entity.Goal, error) {
	var g entity.Goal
	err := r.db.WithContext(ctx).Where("goal_id = ?", goalID).Take(&g).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &g, nil
}

func (r *goalRepositoryImpl) ListByUser(ctx context.Context, userID, status string) ([]*entity.Goal, error) {
	var list []*entity.Goal
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	err := q.Order("created_at DESC, id DESC").Find(&list).Error
	return list, err
}

func (r *goalRepositoryImpl) ListActiveByUser(ctx context.Context, userID string) ([]*entity.Goal, error) {
	var list []*entity.Goal
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, entity.StatusActive).
		Order("id ASC").
		Find(&list).Error
	return list, err
}

func (r *goalRepositoryImpl) ListActiveOverdue(ctx context.Context, now time.Time) ([]*entity.Goal, error) {
	var list []*entity.Goal
	err := r.db.WithContext(ctx).
		Where("status = ? AND target_date IS NOT NULL AND target_date < ?", entity.StatusActive, now).
		Order("id ASC").
		Find(&list).Error
	return list, err
}

func (r *goalRepositoryImpl) ListCompletedByUser(ctx context.Context, userID string) ([]*entity.Goal, error) {
	var list []*entity.Goal
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, entity.StatusCompleted).
		Order("id ASC").
		Find(&list).Error
	return list, err
}

func (r *goalRepositoryImpl) ActiveUserIDs(ctx context.Context) ([]string, error) {
	return r.userIDsByStatus(ctx, entity.StatusActive)
}

func (r *goalRepositoryImpl) CompletedUserIDs(ctx context.Context) ([]string, error) {
	return r.userIDsByStatus(ctx, entity.StatusCompleted)
}

func (r *goalRepositoryImpl) userIDsByStatus(ctx context.Context, status string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&entity.Goal{}).
		Distinct("user_id").
		Where("status = ?", status).
		Order("user_id ASC").
		Pluck("user_id", &ids).Error
	return ids, err
}

func (r *goalRepositoryImpl) UpdateWithVersion(ctx context.Context, g *entity.Goal, expected int) error {
	if g == nil {
		return nil
	}
	g.Progress = entity.ClampProgress(g.Progress)
	res := r.db.WithContext(ctx).Model(&entity.Goal{}).
		Where("goal_id = ? AND version = ?", g.GoalId, expected).
		Updates(map[string]interface{}{
			"title":        g.Title,
			"description":  g.Description,
			"category":     g.Category,
			"priority":     g.Priority,
			"progress":     g.Progress,
			"status":       g.Status,
			"target_date":  g.TargetDate,
			"completed_at": g.CompletedAt,
			"updated_at":   g.UpdatedAt,
			"version":      expected + 1,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return entity.ErrVersionConflict
	}
	g.Version = expected + 1
	return nil
}
