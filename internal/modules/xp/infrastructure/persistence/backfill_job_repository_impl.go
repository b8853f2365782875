package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"FPKProgress/internal/modules/xp/domain/entity"
	"FPKProgress/internal/modules/xp/domain/repository"

	"gorm.io/gorm"
)

type backfillJobRepositoryImpl struct {
	db *gorm.DB
}

func NewBackfillJobRepository(db *gorm.DB) repository.BackfillJobRepository {
	return &backfillJobRepositoryImpl{db: db}
}

func (r *backfillJobRepositoryImpl) Create(ctx context.Context, job *entity.BackfillJob) error {
	if job == nil {
		return nil
	}
	now := time.Now().UTC()
	if job.CreatedAt.IsZero() {
		job.CreatedAt = now
	}
	job.UpdatedAt = now
	return r.db.WithContext(ctx).Create(job).Error
}

func (r *backfillJobRepositoryImpl) GetByJobID(ctx context.Context, jobID string) (*entity.BackfillJob, error) {
	var j entity.BackfillJob
	err := r.db.WithContext(ctx).Where("job_id = ?", jobID).Take(&j).Error
	if err == nil {
		return &j, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return nil, err
}

func (r *backfillJobRepositoryImpl) AddCounters(ctx context.Context, id int64, succeededDelta, failedDelta, eventsDelta, xpDelta int) error {
	updates := map[string]any{"updated_at": time.Now().UTC()}
	if succeededDelta != 0 {
		updates["users_succeeded"] = gorm.Expr("users_succeeded + ?", succeededDelta)
	}
	if failedDelta != 0 {
		updates["users_failed"] = gorm.Expr("users_failed + ?", failedDelta)
	}
	if eventsDelta != 0 {
		updates["events_created"] = gorm.Expr("events_created + ?", eventsDelta)
	}
	if xpDelta != 0 {
		updates["xp_awarded"] = gorm.Expr("xp_awarded + ?", xpDelta)
	}
	return r.db.WithContext(ctx).Model(&entity.BackfillJob{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *backfillJobRepositoryImpl) Finish(ctx context.Context, id int64, status string, lastError string, finishedAt time.Time) error {
	lastError = strings.TrimSpace(lastError)
	if len(lastError) > 255 {
		lastError = lastError[:255]
	}
	return r.db.WithContext(ctx).Model(&entity.BackfillJob{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":      status,
			"last_error":  lastError,
			"finished_at": finishedAt,
			"updated_at":  time.Now().UTC(),
		}).Error
}
