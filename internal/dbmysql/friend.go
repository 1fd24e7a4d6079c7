package dbmysql

import (
	"time"
)

// Friend is a directional edge: UserID considers FriendUserID a friend.
type Friend struct {
	ID           uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID       string    `gorm:"column:user_id;size:36;not null;index:idx_user_friend,unique" json:"user_id"`
	FriendUserID string    `gorm:"column:friend_user_id;size:36;not null;index:idx_user_friend,unique" json:"friend_user_id"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}
