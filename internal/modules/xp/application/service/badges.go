package service

import (
	"context"
	"time"

	"FPKProgress/internal/modules/xp/domain/entity"
	"FPKProgress/internal/modules/xp/domain/repository"
)

// grantBadges 返回本次新获得的徽章；dryRun 只判定不写入
func grantBadges(ctx context.Context, stores repository.XPStores, userID string, dryRun, backfill bool, now time.Time) ([]*entity.Badge, error) {
	if stores.Badges == nil || stores.Metrics == nil {
		return nil, nil
	}
	catalog, err := stores.Badges.ListCatalog(ctx)
	if err != nil || len(catalog) == 0 {
		return nil, err
	}
	held, err := stores.Badges.EarnedBadgeIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	metrics, err := stores.Metrics.Metrics(ctx, userID)
	if err != nil {
		return nil, err
	}

	var out []*entity.Badge
	for _, b := range catalog {
		if _, ok := held[b.BadgeId]; ok || !b.Earned(metrics) {
			continue
		}
		if dryRun {
			out = append(out, b)
			continue
		}
		ok, err := stores.Badges.Award(ctx, &entity.UserBadge{
			UserId:    userID,
			BadgeId:   b.BadgeId,
			Backfill:  backfill,
			AwardedAt: now.UTC(),
		})
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, b)
		}
	}
	return out, nil
}

func badgeNames(badges []*entity.Badge) []string {
	out := make([]string, 0, len(badges))
	for _, b := range badges {
		out = append(out, b.Name)
	}
	return out
}
