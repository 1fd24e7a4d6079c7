package dbmysql

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"thriveup/internal/common"
	"thriveup/internal/notify"
)

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) notify.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Profile(ctx context.Context, userID string) (*notify.UserProfile, error) {
	var user User
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&user).Error
	if err == gorm.ErrRecordNotFound {
		return nil, common.NotFoundf("user %s", userID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &notify.UserProfile{
		ID:              user.UserID,
		Name:            user.Name,
		ProfileImageURL: user.ProfileImageURL,
	}, nil
}
