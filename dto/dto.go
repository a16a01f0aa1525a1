package dto

import (
	"github.com/google/uuid"
	"video-portal/constant"
)

// JobMessage is published to the transcoding exchange after an upload.
type JobMessage struct {
	JobId      uuid.UUID `json:"jobId"`
	ObjectPath string    `json:"objectPath"`
	FileName   string    `json:"fileName"`
}

// WatchEventMessage is consumed from the watch events queue.
type WatchEventMessage struct {
	Type      constant.WatchEventType `json:"type"`
	UserId    uuid.UUID               `json:"userId"`
	VideoId   uuid.UUID               `json:"videoId"`
	Progress  float64                 `json:"progress"`
	Elapsed   float64                 `json:"elapsed"`
	IsRewatch bool                    `json:"isRewatch"`
}
