package scheduler

import (
	"context"
	"fmt"
	"time"

	"FPKProgress/internal/modules/goal/application/service"
	"FPKProgress/pkg/zlog"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// 单次任务的上限，防止慢库拖住下一轮
const jobTimeout = 10 * time.Minute

type Scheduler struct {
	cron     *cron.Cron
	progress service.ProgressService
}

// NewScheduler 标准 5 段 cron 表达式；同一任务上一轮未结束时跳过本轮
func NewScheduler(progress service.ProgressService, recomputeSpec, overdueSpec string) (*Scheduler, error) {
	logger := cronLogger{}
	s := &Scheduler{
		cron:     cron.New(cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger))),
		progress: progress,
	}
	if _, err := s.cron.AddFunc(recomputeSpec, s.recomputeAll); err != nil {
		return nil, fmt.Errorf("schedule recompute %q: %w", recomputeSpec, err)
	}
	if _, err := s.cron.AddFunc(overdueSpec, s.sweepOverdue); err != nil {
		return nil, fmt.Errorf("schedule overdue sweep %q: %w", overdueSpec, err)
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	zlog.Info("goal scheduler started", zap.Int("entries", len(s.cron.Entries())))
}

// Stop 等待正在执行的任务结束
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

func (s *Scheduler) recomputeAll() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()
	if _, err := s.progress.RecomputeAll(ctx); err != nil {
		zlog.Error("scheduled recompute failed", zap.Error(err))
	}
}

func (s *Scheduler) sweepOverdue() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()
	sum, err := s.progress.SweepOverdue(ctx)
	if err != nil {
		zlog.Error("scheduled overdue sweep failed", zap.Error(err))
		return
	}
	zlog.Info("overdue sweep finished",
		zap.Int("checked", sum.Checked),
		zap.Int("completed", sum.Completed),
		zap.Int("still_active", sum.StillActive),
		zap.Int("failed", sum.Failed))
}

// cronLogger 把 cron 的日志转到 zlog
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	zlog.Debug("cron: "+msg, zap.Any("kv", keysAndValues))
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	zlog.Error("cron: "+msg, zap.Error(err), zap.Any("kv", keysAndValues))
}
