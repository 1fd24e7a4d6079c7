package dbmysql

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"thriveup/internal/notify"
)

type friendRepository struct {
	db *gorm.DB
}

func NewFriendRepository(db *gorm.DB) notify.FriendRepository {
	return &friendRepository{db: db}
}

func (r *friendRepository) FriendIDs(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&Friend{}).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Pluck("friend_user_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list friends: %w", err)
	}
	return ids, nil
}
