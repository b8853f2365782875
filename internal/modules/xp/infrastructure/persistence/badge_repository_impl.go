package persistence

import (
	"context"
	"time"

	"FPKProgress/internal/modules/xp/domain/entity"
	"FPKProgress/internal/modules/xp/domain/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type badgeRepositoryImpl struct {
	db *gorm.DB
}

func NewBadgeRepository(db *gorm.DB) repository.BadgeRepository {
	return &badgeRepositoryImpl{db: db}
}

func (r *badgeRepositoryImpl) EnsureCatalog(ctx context.Context, badges []*entity.Badge) error {
	if len(badges) == 0 {
		return nil
	}
	now := time.Now().UTC()
	for _, b := range badges {
		if b.CreatedAt.IsZero() {
			b.CreatedAt = now
		}
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "badge_id"}}, DoNothing: true}).
		Create(&badges).Error
}

func (r *badgeRepositoryImpl) ListCatalog(ctx context.Context) ([]*entity.Badge, error) {
	var out []*entity.Badge
	err := r.db.WithContext(ctx).Order("id ASC").Find(&out).Error
	return out, err
}

func (r *badgeRepositoryImpl) EarnedBadgeIDs(ctx context.Context, userID string) (map[string]struct{}, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&entity.UserBadge{}).
		Where("user_id = ?", userID).
		Pluck("badge_id", &ids).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		out[id] = struct{}{}
	}
	return out, nil
}

func (r *badgeRepositoryImpl) Award(ctx context.Context, ub *entity.UserBadge) (bool, error) {
	if ub == nil {
		return false, nil
	}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}, {Name: "badge_id"}}, DoNothing: true}).
		Create(ub)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *badgeRepositoryImpl) ListByUser(ctx context.Context, userID string) ([]*entity.UserBadge, error) {
	var out []*entity.UserBadge
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("awarded_at ASC, id ASC").
		Find(&out).Error
	return out, err
}

func (r *badgeRepositoryImpl) DeleteBackfill(ctx context.Context, userID string) (int, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND backfill = ?", userID, true).
		Delete(&entity.UserBadge{})
	return int(res.RowsAffected), res.Error
}
