// Package videostore persists finished-video records. Only the final video
// reference is stored; intermediate artifacts never reach the database.
package videostore

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Video is one finished-video record.
type Video struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	URL       string    `gorm:"not null" json:"url"`
	OwnerID   string    `gorm:"index" json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Store wraps the videos table.
type Store struct {
	db *gorm.DB
}

// Open opens (and migrates) the sqlite database at path.
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.AutoMigrate(&Video{}); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return &Store{db: db}, nil
}

// CreateVideo records a finished video for its owner.
func (s *Store) CreateVideo(ctx context.Context, url, ownerID string) (Video, error) {
	video := Video{
		ID:      uuid.NewString(),
		URL:     url,
		OwnerID: ownerID,
	}
	if err := s.db.WithContext(ctx).Create(&video).Error; err != nil {
		return Video{}, fmt.Errorf("create video record: %w", err)
	}
	return video, nil
}

// ListVideos returns records newest first. An empty ownerID lists everything.
func (s *Store) ListVideos(ctx context.Context, ownerID string) ([]Video, error) {
	q := s.db.WithContext(ctx).Order("created_at desc")
	if ownerID != "" {
		q = q.Where("owner_id = ?", ownerID)
	}
	var videos []Video
	if err := q.Find(&videos).Error; err != nil {
		return nil, fmt.Errorf("list videos: %w", err)
	}
	return videos, nil
}
