// Package dbsqlite persists per-user message watermarks in a local sqlite
// file, so listening resumes across restarts independent of document-store
// connectivity.
package dbsqlite

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"thriveup/internal/notify"
)

// Cursor is one row per user: the last-processed-message watermark as a
// millisecond epoch timestamp.
type Cursor struct {
	UserID      string    `gorm:"primaryKey;column:user_id;size:36"`
	WatermarkMS int64     `gorm:"column:watermark_ms;not null"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

type cursorRepository struct {
	db *gorm.DB
}

// Open creates or opens the cursor database at path and migrates the schema.
func Open(path string) (notify.CursorRepository, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("cannot open cursor database: %w", err)
	}
	if err := db.AutoMigrate(&Cursor{}); err != nil {
		return nil, fmt.Errorf("cursor migration failed: %w", err)
	}
	return &cursorRepository{db: db}, nil
}

func (r *cursorRepository) Watermark(ctx context.Context, userID string) (time.Time, bool, error) {
	var cursor Cursor
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&cursor).Error
	if err == gorm.ErrRecordNotFound {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to load watermark: %w", err)
	}
	return time.UnixMilli(cursor.WatermarkMS), true, nil
}

// SaveWatermark advances the stored watermark. A save at or below the
// current value is a no-op: the watermark never moves backward.
func (r *cursorRepository) SaveWatermark(ctx context.Context, userID string, ts time.Time) error {
	ms := ts.UnixMilli()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cursor Cursor
		err := tx.Where("user_id = ?", userID).First(&cursor).Error
		if err == gorm.ErrRecordNotFound {
			return tx.Create(&Cursor{UserID: userID, WatermarkMS: ms}).Error
		}
		if err != nil {
			return err
		}
		if cursor.WatermarkMS >= ms {
			return nil
		}
		return tx.Model(&Cursor{}).
			Where("user_id = ?", userID).
			Update("watermark_ms", ms).Error
	})
	if err != nil {
		return fmt.Errorf("failed to save watermark: %w", err)
	}
	return nil
}
