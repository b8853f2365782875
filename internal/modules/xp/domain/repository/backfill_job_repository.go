package repository

import (
	"context"
	"time"

	"FPKProgress/internal/modules/xp/domain/entity"
)

type BackfillJobRepository interface {
	Create(ctx context.Context, job *entity.BackfillJob) error
	GetByJobID(ctx context.Context, jobID string) (*entity.BackfillJob, error)
	AddCounters(ctx context.Context, id int64, succeededDelta, failedDelta, eventsDelta, xpDelta int) error
	Finish(ctx context.Context, id int64, status string, lastError string, finishedAt time.Time) error
}
