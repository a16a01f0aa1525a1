package entities

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"time"
)

type Video struct {
	ID           uuid.UUID                   `json:"id" gorm:"type:uuid;primaryKey"`
	Title        string                      `json:"title" gorm:"type:varchar(255);not null"`
	Description  string                      `json:"description" gorm:"type:text"`
	Category     string                      `json:"category" gorm:"type:varchar(100);index:idx_videos_category"`
	Tags         datatypes.JSONSlice[string] `json:"tags"`
	Duration     string                      `json:"duration" gorm:"type:varchar(50)"`
	MediaURL     string                      `json:"media_url" gorm:"type:varchar(1000)"`
	ObjectName   string                      `json:"object_name" gorm:"type:varchar(500)"`
	PublicID     string                      `json:"public_id" gorm:"type:varchar(100);index"`
	ThumbnailURL string                      `json:"thumbnail_url" gorm:"type:varchar(1000)"`
	CreatedAt    time.Time                   `json:"created_at"`
	UpdatedAt    time.Time                   `json:"updated_at"`
}

func (Video) TableName() string {
	return "videos"
}

func (v *Video) BeforeCreate(*gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}
