package scheduler

import (
	"context"
	"testing"

	"FPKProgress/internal/modules/goal/application/dto/respond"
	"FPKProgress/internal/modules/goal/domain/entity"
)

type fakeProgress struct {
	all   int
	sweep int
}

func (f *fakeProgress) RecomputeUser(ctx context.Context, userID string) (*respond.RecomputeSummary, error) {
	return &respond.RecomputeSummary{UserId: userID}, nil
}

func (f *fakeProgress) RecomputeGoal(ctx context.Context, g *entity.Goal) (*respond.GoalOutcome, error) {
	return &respond.GoalOutcome{GoalId: g.GoalId}, nil
}

func (f *fakeProgress) RecomputeAll(ctx context.Context) (*respond.RecomputeAllSummary, error) {
	f.all++
	return &respond.RecomputeAllSummary{}, nil
}

func (f *fakeProgress) SweepOverdue(ctx context.Context) (*respond.OverdueSummary, error) {
	f.sweep++
	return &respond.OverdueSummary{}, nil
}

func TestNewSchedulerRejectsBadSpec(t *testing.T) {
	if _, err := NewScheduler(&fakeProgress{}, "not a cron", "0 * * * *"); err == nil {
		t.Fatalf("expected error for bad recompute spec")
	}
	if _, err := NewScheduler(&fakeProgress{}, "*/15 * * * *", "61 * * * *"); err == nil {
		t.Fatalf("expected error for bad overdue spec")
	}
}

func TestSchedulerJobs(t *testing.T) {
	fp := &fakeProgress{}
	s, err := NewScheduler(fp, "*/15 * * * *", "0 * * * *")
	if err != nil {
		t.Fatalf("NewScheduler: %v", err)
	}
	if n := len(s.cron.Entries()); n != 2 {
		t.Fatalf("entries=%d", n)
	}

	s.recomputeAll()
	s.sweepOverdue()
	if fp.all != 1 || fp.sweep != 1 {
		t.Fatalf("all=%d sweep=%d", fp.all, fp.sweep)
	}

	s.Start()
	<-s.Stop().Done()
}
