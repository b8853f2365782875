package persistence

import (
	"context"
	"time"

	"FPKProgress/internal/modules/xp/domain/entity"
	"FPKProgress/internal/modules/xp/domain/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type userLevelRepositoryImpl struct {
	db *gorm.DB
}

func NewUserLevelRepository(db *gorm.DB) repository.UserLevelRepository {
	return &userLevelRepositoryImpl{db: db}
}

// Lock 需要在事务内调用才能起到串行化作用；sqlite 忽略 FOR UPDATE，本身就是单写
func (r *userLevelRepositoryImpl) Lock(ctx context.Context, userID string) (*entity.UserLevel, error) {
	db := r.db.WithContext(ctx)
	seed := &entity.UserLevel{UserId: userID, UpdatedAt: time.Now().UTC()}
	if err := db.Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).Create(seed).Error; err != nil {
		return nil, err
	}
	var lv entity.UserLevel
	err := db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).
		Take(&lv).Error
	if err != nil {
		return nil, err
	}
	return &lv, nil
}

func (r *userLevelRepositoryImpl) Save(ctx context.Context, lv *entity.UserLevel) error {
	if lv == nil {
		return nil
	}
	lv.UpdatedAt = time.Now().UTC()
	return r.db.WithContext(ctx).Model(&entity.UserLevel{}).
		Where("user_id = ?", lv.UserId).
		Updates(map[string]any{"level": lv.Level, "updated_at": lv.UpdatedAt}).Error
}
