package entities

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"time"
	"video-portal/constant"
)

// Job is the transcode job row read by the transcode worker.
type Job struct {
	ID         uuid.UUID          `json:"id" gorm:"type:uuid;primaryKey"`
	EntityId   uuid.UUID          `json:"entity_id" gorm:"type:uuid;index"`
	EntityType string             `json:"entity_type" gorm:"type:varchar(50)"`
	Status     constant.JobStatus `json:"status" gorm:"type:varchar(20);not null"`
	JobType    constant.JobType   `json:"job_type" gorm:"type:varchar(50);not null"`
	CreatedAt  time.Time          `json:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at"`
}

func (Job) TableName() string {
	return "jobs"
}

func (j *Job) BeforeCreate(*gorm.DB) error {
	if j.ID == uuid.Nil {
		j.ID = uuid.New()
	}
	return nil
}
