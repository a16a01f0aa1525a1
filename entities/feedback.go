package entities

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"time"
	"video-portal/constant"
)

type Feedback struct {
	ID             uuid.UUID             `json:"id" gorm:"type:uuid;primaryKey"`
	UserID         uuid.UUID             `json:"user_id" gorm:"type:uuid;not null;index"`
	UserEmail      string                `json:"user_email" gorm:"type:varchar(255)"`
	Feedback       string                `json:"feedback" gorm:"type:text;not null"`
	Recommendation string                `json:"recommendation" gorm:"type:text"`
	Type           constant.FeedbackType `json:"type" gorm:"type:varchar(20);not null"`
	CreatedAt      time.Time             `json:"created_at" gorm:"index"`
}

func (Feedback) TableName() string {
	return "feedback"
}

func (f *Feedback) BeforeCreate(*gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}

type Setting struct {
	Key       string    `json:"key" gorm:"type:varchar(100);primaryKey"`
	Value     string    `json:"value" gorm:"type:text"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Setting) TableName() string {
	return "settings"
}
