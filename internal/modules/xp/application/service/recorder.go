package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"FPKProgress/internal/modules/xp/domain/entity"
	"FPKProgress/internal/modules/xp/domain/repository"
	"FPKProgress/pkg/util"
	"FPKProgress/pkg/zlog"

	"go.uber.org/zap"
)

const eventIDPrefix = "XE"

type RecordOptions struct {
	SourceKey  string
	Backfill   bool
	Metadata   map[string]any
	OccurredAt time.Time
}

// Recorder 追加经验事件，升级时发通知并检查徽章。
// 必须用同一事务内的仓储构造：等级行锁、事件、通知、徽章一起提交或一起回滚。
type Recorder struct {
	stores   repository.XPStores
	notifier repository.LevelUpNotifier
}

func NewRecorder(stores repository.XPStores, notifier repository.LevelUpNotifier) *Recorder {
	return &Recorder{stores: stores, notifier: notifier}
}

func (r *Recorder) RecordEvent(ctx context.Context, userID, eventType string, amount int, opts RecordOptions) (*entity.XPEvent, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" || eventType == "" || amount <= 0 {
		return nil, fmt.Errorf("record xp event: invalid input user=%q type=%q amount=%d", userID, eventType, amount)
	}

	// 先锁等级行，后续读取的累计经验与基线都在锁内
	state, err := r.stores.Levels.Lock(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("lock xp level: %w", err)
	}
	if opts.SourceKey != "" {
		exists, err := r.stores.Events.ExistsSourceKey(ctx, userID, opts.SourceKey)
		if err != nil {
			return nil, fmt.Errorf("check xp source: %w", err)
		}
		if exists {
			return nil, entity.ErrDuplicateSource
		}
	}

	before, err := r.stores.Events.SumByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("sum xp: %w", err)
	}

	ev, err := NewEvent(userID, eventType, amount, opts)
	if err != nil {
		return nil, err
	}
	if err := r.stores.Events.Create(ctx, ev); err != nil {
		if errors.Is(err, entity.ErrDuplicateSource) {
			return nil, err
		}
		return nil, fmt.Errorf("append xp event: %w", err)
	}

	dirty := false
	if state.Level == 0 {
		state.Level = entity.ComputeLevel(before).Level
		dirty = true
	}
	oldLevel := state.Level
	newLevel := entity.ComputeLevel(before + amount).Level
	if newLevel <= oldLevel {
		if dirty {
			if err := r.stores.Levels.Save(ctx, state); err != nil {
				return nil, fmt.Errorf("save xp level: %w", err)
			}
		}
		return ev, nil
	}

	state.Level = newLevel
	if err := r.stores.Levels.Save(ctx, state); err != nil {
		return nil, fmt.Errorf("save xp level: %w", err)
	}
	if r.notifier != nil {
		if err := r.notifier.NotifyLevelUp(ctx, userID, newLevel); err != nil {
			return nil, fmt.Errorf("level up notification: %w", err)
		}
	}
	zlog.Info("xp level up", zap.String("user_id", userID), zap.Int("from", oldLevel), zap.Int("to", newLevel))

	if err := r.awardBadges(ctx, userID); err != nil {
		return nil, err
	}
	return ev, nil
}

// awardBadges 升级时检查徽章；先写 user_badge 再发奖励经验，奖励触发的再次升级不会重复授予
func (r *Recorder) awardBadges(ctx context.Context, userID string) error {
	earned, err := grantBadges(ctx, r.stores, userID, false, false, time.Now())
	if err != nil {
		return fmt.Errorf("grant badges: %w", err)
	}
	for _, b := range earned {
		zlog.Info("badge earned", zap.String("user_id", userID), zap.String("badge_id", b.BadgeId))
		if b.XPReward <= 0 {
			continue
		}
		_, err := r.RecordEvent(ctx, userID, entity.EventBadgeEarned, b.XPReward, RecordOptions{
			SourceKey: entity.SourceKey(entity.SourceBadge, b.BadgeId),
			Metadata: map[string]any{
				"badge_id":    b.BadgeId,
				"description": "Badge earned: " + b.Name,
			},
		})
		if err != nil && !errors.Is(err, entity.ErrDuplicateSource) {
			return err
		}
	}
	return nil
}

// AwardGoalCompleted 目标完成奖励，同一目标只发一次
func (r *Recorder) AwardGoalCompleted(ctx context.Context, userID, goalID, priority string) error {
	_, err := r.RecordEvent(ctx, userID, entity.EventGoalCompleted, entity.GoalCompletedXP(priority), RecordOptions{
		SourceKey: entity.SourceKey(entity.SourceGoal, goalID),
		Metadata: map[string]any{
			"goal_id":     goalID,
			"priority":    priority,
			"description": "Goal completed",
		},
	})
	if errors.Is(err, entity.ErrDuplicateSource) {
		return nil
	}
	return err
}

// NewEvent 构造一条待写入的事件
func NewEvent(userID, eventType string, amount int, opts RecordOptions) (*entity.XPEvent, error) {
	meta := opts.Metadata
	if meta == nil {
		meta = map[string]any{}
	}
	if opts.SourceKey != "" {
		meta["source_id"] = opts.SourceKey
	}
	if opts.Backfill {
		meta["backfill"] = true
	}
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("encode xp metadata: %w", err)
	}

	createdAt := opts.OccurredAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	return &entity.XPEvent{
		EventId:      util.GenerateID(eventIDPrefix),
		UserId:       userID,
		EventType:    eventType,
		Amount:       amount,
		SourceKey:    sql.NullString{String: opts.SourceKey, Valid: opts.SourceKey != ""},
		Backfill:     opts.Backfill,
		MetadataJson: string(metaJSON),
		CreatedAt:    createdAt.UTC(),
	}, nil
}
