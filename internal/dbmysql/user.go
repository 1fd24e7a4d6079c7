package dbmysql

import (
	"time"
)

type User struct {
	UserID          string    `gorm:"primaryKey;column:user_id;size:36" json:"user_id"`
	Name            string    `gorm:"column:name;size:100;not null" json:"name"`
	Email           string    `gorm:"column:email;size:255" json:"email"`
	ProfileImageURL string    `gorm:"column:profile_image_url;size:512" json:"profile_image_url"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
