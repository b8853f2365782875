package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"FPKProgress/internal/modules/xp/application/dto/request"
	"FPKProgress/internal/modules/xp/application/dto/respond"
	"FPKProgress/internal/modules/xp/domain/entity"
	"FPKProgress/internal/modules/xp/domain/repository"
	"FPKProgress/pkg/actor"
	"FPKProgress/pkg/util"
	"FPKProgress/pkg/validate"
	"FPKProgress/pkg/xerr"
	"FPKProgress/pkg/zlog"

	"go.uber.org/zap"
)

const (
	jobIDPrefix       = "BJ"
	backfillLockKey   = "xp:backfill:"
	recentEventsLimit = 10
)

var errBackfillRunning = xerr.New(xerr.Conflict, "backfill already running for this user")

type XPService interface {
	Stats(ctx context.Context, a actor.Actor, req request.StatsRequest) (*respond.StatsRespond, error)
	Leaderboard(ctx context.Context, req request.LeaderboardRequest) ([]respond.LeaderboardItem, error)
	Backfill(ctx context.Context, a actor.Actor, req request.BackfillRequest) (*respond.BackfillRespond, error)
	BackfillAll(ctx context.Context, a actor.Actor, req request.BackfillAllRequest) (*respond.BackfillAllRespond, error)
	Rollback(ctx context.Context, a actor.Actor, req request.RollbackRequest) (*respond.RollbackRespond, error)
	Report(ctx context.Context, a actor.Actor, req request.ReportRequest) (*respond.ReportRespond, error)
	JobStatus(ctx context.Context, a actor.Actor, req request.JobStatusRequest) (*respond.BackfillJobRespond, error)
}

type Options struct {
	LockTTL          time.Duration
	LeaderboardLimit int
}

type xpServiceImpl struct {
	stores  repository.XPStores
	uow     repository.XPUnitOfWork
	jobs    repository.BackfillJobRepository
	sources []BackfillSource
	locker  Locker
	opts    Options
}

// NewXPService stores 用于事务外的读取，写入都走 uow
func NewXPService(stores repository.XPStores, uow repository.XPUnitOfWork, jobs repository.BackfillJobRepository, sources []BackfillSource, locker Locker, opts Options) XPService {
	if locker == nil {
		locker = noopLocker{}
	}
	if opts.LockTTL <= 0 {
		opts.LockTTL = 5 * time.Minute
	}
	if opts.LeaderboardLimit <= 0 {
		opts.LeaderboardLimit = 10
	}
	return &xpServiceImpl{
		stores:  stores,
		uow:     uow,
		jobs:    jobs,
		sources: sources,
		locker:  locker,
		opts:    opts,
	}
}

// resolveTarget 空 user_id 指本人，操作他人需要管理员身份
func resolveTarget(a actor.Actor, userID string) (string, error) {
	if a.UserID == "" {
		return "", xerr.ErrUnauthorized
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return a.UserID, nil
	}
	if !a.CanActFor(userID) {
		return "", xerr.ErrForbidden
	}
	return userID, nil
}

func (s *xpServiceImpl) Stats(ctx context.Context, a actor.Actor, req request.StatsRequest) (*respond.StatsRespond, error) {
	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	userID, err := resolveTarget(a, req.UserId)
	if err != nil {
		return nil, err
	}
	totals, err := s.stores.Events.TotalsByUser(ctx, userID)
	if err != nil {
		zlog.Error("xp stats failed", zap.String("user_id", userID), zap.Error(err))
		return nil, xerr.ErrServerError
	}
	badges, err := s.userBadges(ctx, userID)
	if err != nil {
		zlog.Error("xp stats badges failed", zap.String("user_id", userID), zap.Error(err))
		return nil, xerr.ErrServerError
	}
	lv := entity.ComputeLevel(totals.TotalXP)
	return &respond.StatsRespond{
		UserId:       userID,
		TotalXP:      totals.TotalXP,
		Level:        lv.Level,
		LevelFloorXP: lv.LevelFloorXP,
		NextLevelXP:  lv.NextLevelXP,
		XPToNext:     lv.XPToNext,
		MaxLevel:     lv.MaxLevel,
		BackfillXP:   totals.BackfillXP,
		OrganicXP:    totals.OrganicXP,
		Badges:       badges,
	}, nil
}

func (s *xpServiceImpl) Leaderboard(ctx context.Context, req request.LeaderboardRequest) ([]respond.LeaderboardItem, error) {
	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	limit := req.Limit
	if limit <= 0 {
		limit = s.opts.LeaderboardLimit
	}
	rows, err := s.stores.Events.TopUsers(ctx, limit)
	if err != nil {
		zlog.Error("xp leaderboard failed", zap.Error(err))
		return nil, xerr.ErrServerError
	}
	out := make([]respond.LeaderboardItem, 0, len(rows))
	for i, r := range rows {
		out = append(out, respond.LeaderboardItem{
			Rank:    i + 1,
			UserId:  r.UserId,
			TotalXP: r.TotalXP,
			Level:   entity.ComputeLevel(r.TotalXP).Level,
		})
	}
	return out, nil
}

func (s *xpServiceImpl) Backfill(ctx context.Context, a actor.Actor, req request.BackfillRequest) (*respond.BackfillRespond, error) {
	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	userID, err := resolveTarget(a, req.UserId)
	if err != nil {
		return nil, err
	}
	res, err := s.backfillUser(ctx, userID, req.DryRun)
	if err != nil {
		if _, ok := xerr.As(err); ok {
			return nil, err
		}
		zlog.Error("xp backfill failed", zap.String("user_id", userID), zap.Bool("dry_run", req.DryRun), zap.Error(err))
		return nil, xerr.ErrServerError
	}
	zlog.Info("xp backfill done",
		zap.String("user_id", userID),
		zap.Bool("dry_run", req.DryRun),
		zap.Int("events", res.EventsToCreate),
		zap.Int("xp", res.XPToAward),
		zap.Int("badges", len(res.BadgesAwarded)))
	return res, nil
}

// backfillUser 单个用户的回填，是全量回填中的最小失败单元
func (s *xpServiceImpl) backfillUser(ctx context.Context, userID string, dryRun bool) (*respond.BackfillRespond, error) {
	if !dryRun {
		unlock, ok, err := s.locker.TryLock(ctx, backfillLockKey+userID, s.opts.LockTTL)
		if err != nil {
			return nil, fmt.Errorf("acquire backfill lock: %w", err)
		}
		if !ok {
			return nil, errBackfillRunning
		}
		defer unlock()
	}

	before, err := s.stores.Events.SumByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("sum xp: %w", err)
	}
	existing, err := s.stores.Events.SourceKeysByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load existing sources: %w", err)
	}

	res := &respond.BackfillRespond{
		UserId:      userID,
		DryRun:      dryRun,
		BeforeXP:    before,
		BeforeLevel: entity.ComputeLevel(before).Level,
		ByCategory:  make(map[string]respond.CategoryCount, len(s.sources)),
	}

	var pending []*entity.XPEvent
	for _, src := range s.sources {
		candidates, err := src.Candidates(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("backfill source %s: %w", src.Category(), err)
		}
		cc := respond.CategoryCount{}
		for _, c := range candidates {
			key := c.SourceKey()
			if _, seen := existing[key]; seen {
				continue
			}
			existing[key] = struct{}{}
			ev, err := NewEvent(userID, c.EventType, c.Amount, RecordOptions{
				SourceKey:  key,
				Backfill:   true,
				Metadata:   c.Metadata,
				OccurredAt: c.OccurredAt,
			})
			if err != nil {
				return nil, err
			}
			pending = append(pending, ev)
			cc.Events++
			cc.XP += c.Amount
		}
		res.ByCategory[src.Category()] = cc
		res.EventsToCreate += cc.Events
		res.XPToAward += cc.XP
	}

	res.ProjectedAfterXP = before + res.XPToAward
	res.AfterLevel = entity.ComputeLevel(res.ProjectedAfterXP).Level
	if dryRun {
		// 徽章按当前活动判定，与实际回填的结果一致
		badges, err := grantBadges(ctx, s.stores, userID, true, true, time.Now())
		if err != nil {
			return nil, fmt.Errorf("check badges: %w", err)
		}
		res.AfterXP = before
		res.BadgesAwarded = badgeNames(badges)
		return res, nil
	}

	err = s.uow.Transaction(ctx, func(stores repository.XPStores, _ repository.LevelUpNotifier) error {
		state, err := stores.Levels.Lock(ctx, userID)
		if err != nil {
			return fmt.Errorf("lock xp level: %w", err)
		}
		if len(pending) > 0 {
			if err := stores.Events.CreateBatch(ctx, pending); err != nil {
				return err
			}
		}
		after, err := stores.Events.SumByUser(ctx, userID)
		if err != nil {
			return fmt.Errorf("sum xp: %w", err)
		}
		// 回填静默抬高等级基线，不补发历史升级通知
		if lv := entity.ComputeLevel(after).Level; lv > state.Level {
			state.Level = lv
			if err := stores.Levels.Save(ctx, state); err != nil {
				return fmt.Errorf("save xp level: %w", err)
			}
		}
		badges, err := grantBadges(ctx, stores, userID, false, true, time.Now())
		if err != nil {
			return fmt.Errorf("grant badges: %w", err)
		}
		res.AfterXP = after
		res.BadgesAwarded = badgeNames(badges)
		return nil
	})
	if err != nil {
		if errors.Is(err, entity.ErrDuplicateSource) {
			// 唯一索引兜底：并发写入了相同来源，整批回滚，重跑即可
			return nil, xerr.New(xerr.Conflict, "xp ledger changed during backfill, please retry")
		}
		return nil, fmt.Errorf("backfill user: %w", err)
	}
	res.AfterLevel = entity.ComputeLevel(res.AfterXP).Level
	res.EventsCreated = len(pending)
	return res, nil
}

func (s *xpServiceImpl) BackfillAll(ctx context.Context, a actor.Actor, req request.BackfillAllRequest) (*respond.BackfillAllRespond, error) {
	if !a.IsAdmin() {
		return nil, xerr.ErrForbidden
	}

	users, err := s.activeUsers(ctx)
	if err != nil {
		zlog.Error("xp backfill all list users failed", zap.Error(err))
		return nil, xerr.ErrServerError
	}

	job := &entity.BackfillJob{
		JobId:       util.GenerateID(jobIDPrefix),
		RequestedBy: a.UserID,
		DryRun:      req.DryRun,
		Status:      entity.JobStatusRunning,
		UsersTotal:  len(users),
	}
	if err := s.jobs.Create(ctx, job); err != nil {
		zlog.Error("xp backfill job create failed", zap.Error(err))
		return nil, xerr.ErrServerError
	}

	out := &respond.BackfillAllRespond{
		JobId:      job.JobId,
		DryRun:     req.DryRun,
		UsersTotal: len(users),
	}
	status, lastErr := entity.JobStatusCompleted, ""
	for _, userID := range users {
		if err := ctx.Err(); err != nil {
			status, lastErr = entity.JobStatusFailed, err.Error()
			break
		}
		res, err := s.backfillUser(ctx, userID, req.DryRun)
		if err != nil {
			zlog.Warn("xp backfill user failed", zap.String("job_id", job.JobId), zap.String("user_id", userID), zap.Error(err))
			out.UsersFailed++
			out.Failures = append(out.Failures, respond.UserFailure{UserId: userID, Error: err.Error()})
			lastErr = err.Error()
			if cerr := s.jobs.AddCounters(ctx, job.Id, 0, 1, 0, 0); cerr != nil {
				zlog.Warn("xp backfill job counter failed", zap.String("job_id", job.JobId), zap.Error(cerr))
			}
			continue
		}
		out.UsersSucceeded++
		out.Events += res.EventsToCreate
		out.XP += res.XPToAward
		out.Badges += len(res.BadgesAwarded)
		if cerr := s.jobs.AddCounters(ctx, job.Id, 1, 0, res.EventsToCreate, res.XPToAward); cerr != nil {
			zlog.Warn("xp backfill job counter failed", zap.String("job_id", job.JobId), zap.Error(cerr))
		}
	}

	// 取消后仍要落下终态，不能复用已取消的 ctx
	if err := s.jobs.Finish(context.WithoutCancel(ctx), job.Id, status, lastErr, time.Now().UTC()); err != nil {
		zlog.Warn("xp backfill job finish failed", zap.String("job_id", job.JobId), zap.Error(err))
	}
	out.Status = status
	zlog.Info("xp backfill all done",
		zap.String("job_id", job.JobId),
		zap.Bool("dry_run", req.DryRun),
		zap.Int("users", out.UsersTotal),
		zap.Int("failed", out.UsersFailed),
		zap.Int("events", out.Events),
		zap.Int("badges", out.Badges))
	return out, nil
}

func (s *xpServiceImpl) activeUsers(ctx context.Context) ([]string, error) {
	seen := make(map[string]struct{})
	for _, src := range s.sources {
		users, err := src.Users(ctx)
		if err != nil {
			return nil, fmt.Errorf("list users for %s: %w", src.Category(), err)
		}
		for _, u := range users {
			if u = strings.TrimSpace(u); u != "" {
				seen[u] = struct{}{}
			}
		}
	}
	out := make([]string, 0, len(seen))
	for u := range seen {
		out = append(out, u)
	}
	sort.Strings(out)
	return out, nil
}

func (s *xpServiceImpl) Rollback(ctx context.Context, a actor.Actor, req request.RollbackRequest) (*respond.RollbackRespond, error) {
	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	userID, err := resolveTarget(a, req.UserId)
	if err != nil {
		return nil, err
	}

	out := &respond.RollbackRespond{UserId: userID}
	err = s.uow.Transaction(ctx, func(stores repository.XPStores, _ repository.LevelUpNotifier) error {
		state, err := stores.Levels.Lock(ctx, userID)
		if err != nil {
			return fmt.Errorf("lock xp level: %w", err)
		}
		before, err := stores.Events.SumByUser(ctx, userID)
		if err != nil {
			return fmt.Errorf("sum xp: %w", err)
		}
		deleted, removed, err := stores.Events.DeleteBackfill(ctx, userID)
		if err != nil {
			return fmt.Errorf("delete backfill events: %w", err)
		}
		badges, err := stores.Badges.DeleteBackfill(ctx, userID)
		if err != nil {
			return fmt.Errorf("delete backfill badges: %w", err)
		}
		// 基线回落到剩余经验对应的等级，之后的自然升级照常通知
		state.Level = entity.ComputeLevel(before - removed).Level
		if err := stores.Levels.Save(ctx, state); err != nil {
			return fmt.Errorf("save xp level: %w", err)
		}
		out.BeforeXP = before
		out.AfterXP = before - removed
		out.EventsDeleted = deleted
		out.XPRemoved = removed
		out.BadgesRemoved = badges
		return nil
	})
	if err != nil {
		zlog.Error("xp rollback failed", zap.String("user_id", userID), zap.Error(err))
		return nil, xerr.ErrServerError
	}
	zlog.Info("xp rollback done",
		zap.String("user_id", userID),
		zap.String("by", a.UserID),
		zap.Int("events", out.EventsDeleted),
		zap.Int("xp", out.XPRemoved),
		zap.Int("badges", out.BadgesRemoved))
	return out, nil
}

func (s *xpServiceImpl) Report(ctx context.Context, a actor.Actor, req request.ReportRequest) (*respond.ReportRespond, error) {
	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	userID, err := resolveTarget(a, req.UserId)
	if err != nil {
		return nil, err
	}
	totals, err := s.stores.Events.TotalsByUser(ctx, userID)
	if err != nil {
		zlog.Error("xp report totals failed", zap.String("user_id", userID), zap.Error(err))
		return nil, xerr.ErrServerError
	}
	recent, err := s.stores.Events.ListRecent(ctx, userID, recentEventsLimit)
	if err != nil {
		zlog.Error("xp report recent failed", zap.String("user_id", userID), zap.Error(err))
		return nil, xerr.ErrServerError
	}

	badges, err := s.userBadges(ctx, userID)
	if err != nil {
		zlog.Error("xp report badges failed", zap.String("user_id", userID), zap.Error(err))
		return nil, xerr.ErrServerError
	}

	lv := entity.ComputeLevel(totals.TotalXP)
	out := &respond.ReportRespond{
		UserId:         userID,
		TotalXP:        totals.TotalXP,
		Level:          lv.Level,
		NextLevelXP:    lv.NextLevelXP,
		TotalEvents:    totals.TotalEvents,
		BackfillEvents: totals.BackfillCount,
		BackfillXP:     totals.BackfillXP,
		OrganicEvents:  totals.OrganicCount,
		OrganicXP:      totals.OrganicXP,
		RecentEvents:   make([]respond.EventItem, 0, len(recent)),
		Badges:         badges,
	}
	for _, ev := range recent {
		out.RecentEvents = append(out.RecentEvents, respond.EventItem{
			EventId:   ev.EventId,
			EventType: ev.EventType,
			Amount:    ev.Amount,
			SourceKey: ev.SourceKey.String,
			Backfill:  ev.Backfill,
			CreatedAt: ev.CreatedAt,
		})
	}
	return out, nil
}

func (s *xpServiceImpl) userBadges(ctx context.Context, userID string) ([]respond.BadgeItem, error) {
	out := []respond.BadgeItem{}
	if s.stores.Badges == nil {
		return out, nil
	}
	held, err := s.stores.Badges.ListByUser(ctx, userID)
	if err != nil || len(held) == 0 {
		return out, err
	}
	catalog, err := s.stores.Badges.ListCatalog(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(catalog))
	for _, b := range catalog {
		names[b.BadgeId] = b.Name
	}
	for _, ub := range held {
		out = append(out, respond.BadgeItem{
			BadgeId:   ub.BadgeId,
			Name:      names[ub.BadgeId],
			Backfill:  ub.Backfill,
			AwardedAt: ub.AwardedAt,
		})
	}
	return out, nil
}

// JobStatus 查询全量回填的执行记录，仅管理员可见
func (s *xpServiceImpl) JobStatus(ctx context.Context, a actor.Actor, req request.JobStatusRequest) (*respond.BackfillJobRespond, error) {
	if !a.IsAdmin() {
		return nil, xerr.ErrForbidden
	}
	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	job, err := s.jobs.GetByJobID(ctx, strings.TrimSpace(req.JobId))
	if err != nil {
		zlog.Error("xp backfill job lookup failed", zap.String("job_id", req.JobId), zap.Error(err))
		return nil, xerr.ErrServerError
	}
	if job == nil {
		return nil, xerr.ErrNotFound
	}
	return &respond.BackfillJobRespond{
		JobId:          job.JobId,
		RequestedBy:    job.RequestedBy,
		DryRun:         job.DryRun,
		Status:         job.Status,
		UsersTotal:     job.UsersTotal,
		UsersSucceeded: job.UsersSucceeded,
		UsersFailed:    job.UsersFailed,
		EventsCreated:  job.EventsCreated,
		XPAwarded:      job.XPAwarded,
		LastError:      job.LastError,
		CreatedAt:      job.CreatedAt,
		FinishedAt:     job.FinishedAt,
	}, nil
}
