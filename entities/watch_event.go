package entities

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"time"
)

// WatchEvent is one user's engagement with one video. The (user_id, video_id)
// pair is unique; rows imported from older stores may still carry duplicates.
type WatchEvent struct {
	ID             uuid.UUID                   `json:"id" gorm:"type:uuid;primaryKey"`
	UserID         uuid.UUID                   `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_watch_events_user_video,priority:1"`
	VideoID        uuid.UUID                   `json:"video_id" gorm:"type:uuid;not null;uniqueIndex:idx_watch_events_user_video,priority:2;index"`
	Progress       float64                     `json:"progress" gorm:"not null;default:0"`
	WatchDuration  float64                     `json:"watch_duration" gorm:"not null;default:0"`
	Completed      bool                        `json:"completed" gorm:"not null;default:false"`
	FirstWatchedAt time.Time                   `json:"first_watched_at"`
	LastWatchedAt  time.Time                   `json:"last_watched_at" gorm:"index"`
	Milestones     datatypes.JSONSlice[int]    `json:"milestones"`
	IsRewatch      bool                        `json:"is_rewatch" gorm:"not null;default:false"`
	RewatchCount   int                         `json:"rewatch_count" gorm:"not null;default:0"`
	PlayCount      int                         `json:"play_count" gorm:"not null;default:0"`
	VideoTitle     string                      `json:"video_title" gorm:"type:varchar(255)"`
	VideoCategory  string                      `json:"video_category" gorm:"type:varchar(100)"`
	VideoTags      datatypes.JSONSlice[string] `json:"video_tags"`
	CreatedAt      time.Time                   `json:"created_at"`
	UpdatedAt      time.Time                   `json:"updated_at"`
}

func (WatchEvent) TableName() string {
	return "video_watch_events"
}

func (w *WatchEvent) BeforeCreate(*gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	return nil
}

func (w *WatchEvent) HasMilestone(m int) bool {
	for _, v := range w.Milestones {
		if v == m {
			return true
		}
	}
	return false
}
