package persistence

import (
	"context"
	"errors"

	"FPKProgress/internal/modules/xp/domain/entity"
	"FPKProgress/internal/modules/xp/domain/repository"

	"gorm.io/gorm"
)

type xpEventRepositoryImpl struct {
	db *gorm.DB
}

func NewXPEventRepository(db *gorm.DB) repository.XPEventRepository {
	return &xpEventRepositoryImpl{db: db}
}

func (r *xpEventRepositoryImpl) Create(ctx context.Context, ev *entity.XPEvent) error {
	if ev == nil {
		return nil
	}
	return translateDuplicate(r.db.WithContext(ctx).Create(ev).Error)
}

func (r *xpEventRepositoryImpl) CreateBatch(ctx context.Context, events []*entity.XPEvent) error {
	if len(events) == 0 {
		return nil
	}
	return translateDuplicate(r.db.WithContext(ctx).CreateInBatches(events, 200).Error)
}

func (r *xpEventRepositoryImpl) SumByUser(ctx context.Context, userID string) (int, error) {
	var total int
	err := r.db.WithContext(ctx).Model(&entity.XPEvent{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("user_id = ?", userID).
		Scan(&total).Error
	return total, err
}

func (r *xpEventRepositoryImpl) TotalsByUser(ctx context.Context, userID string) (repository.Totals, error) {
	type row struct {
		Backfill bool
		Cnt      int
		Total    int
	}
	var rows []row
	err := r.db.WithContext(ctx).Model(&entity.XPEvent{}).
		Select("backfill, COUNT(*) AS cnt, COALESCE(SUM(amount), 0) AS total").
		Where("user_id = ?", userID).
		Group("backfill").
		Scan(&rows).Error
	if err != nil {
		return repository.Totals{}, err
	}

	var t repository.Totals
	for _, rw := range rows {
		if rw.Backfill {
			t.BackfillCount += rw.Cnt
			t.BackfillXP += rw.Total
		} else {
			t.OrganicCount += rw.Cnt
			t.OrganicXP += rw.Total
		}
	}
	t.TotalEvents = t.BackfillCount + t.OrganicCount
	t.TotalXP = t.BackfillXP + t.OrganicXP
	return t, nil
}

func (r *xpEventRepositoryImpl) SourceKeysByUser(ctx context.Context, userID string) (map[string]struct{}, error) {
	var keys []string
	err := r.db.WithContext(ctx).Model(&entity.XPEvent{}).
		Where("user_id = ? AND source_key IS NOT NULL", userID).
		Pluck("source_key", &keys).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		out[k] = struct{}{}
	}
	return out, nil
}

func (r *xpEventRepositoryImpl) ExistsSourceKey(ctx context.Context, userID, sourceKey string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&entity.XPEvent{}).
		Where("user_id = ? AND source_key = ?", userID, sourceKey).
		Count(&n).Error
	return n > 0, err
}

func (r *xpEventRepositoryImpl) ListRecent(ctx context.Context, userID string, limit int) ([]*entity.XPEvent, error) {
	if limit <= 0 {
		limit = 10
	}
	var out []*entity.XPEvent
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&out).Error
	return out, err
}

func (r *xpEventRepositoryImpl) DeleteBackfill(ctx context.Context, userID string) (int, int, error) {
	var count, xp int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		type agg struct {
			Cnt   int
			Total int
		}
		var a agg
		if err := tx.Model(&entity.XPEvent{}).
			Select("COUNT(*) AS cnt, COALESCE(SUM(amount), 0) AS total").
			Where("user_id = ? AND backfill = ?", userID, true).
			Scan(&a).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ? AND backfill = ?", userID, true).Delete(&entity.XPEvent{}).Error; err != nil {
			return err
		}
		count, xp = a.Cnt, a.Total
		return nil
	})
	return count, xp, err
}

func (r *xpEventRepositoryImpl) TopUsers(ctx context.Context, limit int) ([]repository.UserTotal, error) {
	if limit <= 0 {
		limit = 10
	}
	var out []repository.UserTotal
	err := r.db.WithContext(ctx).Model(&entity.XPEvent{}).
		Select("user_id, SUM(amount) AS total_xp").
		Group("user_id").
		Order("total_xp DESC, user_id ASC").
		Limit(limit).
		Scan(&out).Error
	return out, err
}

func translateDuplicate(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return entity.ErrDuplicateSource
	}
	return err
}
