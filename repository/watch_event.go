package repository

import (
	"context"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"video-portal/entities"
)

type WatchEventRepository interface {
	// UpsertWatchEvent creates the (user, video) record if missing, then applies
	// mutate to it under a row lock and saves it, all in one transaction.
	UpsertWatchEvent(ctx context.Context, userID, videoID uuid.UUID, mutate func(event *entities.WatchEvent) error) (*entities.WatchEvent, error)
	ListWatchEventsByUser(ctx context.Context, userID uuid.UUID) ([]*entities.WatchEvent, error)
	ListWatchEventsByUserAndVideos(ctx context.Context, userID uuid.UUID, videoIDs []uuid.UUID) ([]*entities.WatchEvent, error)
	ListWatchEvents(ctx context.Context) ([]*entities.WatchEvent, error)
}

func (r *repo) UpsertWatchEvent(ctx context.Context, userID, videoID uuid.UUID, mutate func(event *entities.WatchEvent) error) (*entities.WatchEvent, error) {
	var event *entities.WatchEvent
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seed := &entities.WatchEvent{
			UserID:     userID,
			VideoID:    videoID,
			Milestones: datatypes.JSONSlice[int]{},
			VideoTags:  datatypes.JSONSlice[string]{},
		}
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "video_id"}},
			DoNothing: true,
		}).Create(seed).Error
		if err != nil {
			return err
		}

		current := &entities.WatchEvent{}
		err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ? AND video_id = ?", userID, videoID).
			First(current).Error
		if err != nil {
			return err
		}

		if err := mutate(current); err != nil {
			return err
		}
		if err := tx.Save(current).Error; err != nil {
			return err
		}
		event = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return event, nil
}

func (r *repo) ListWatchEventsByUser(ctx context.Context, userID uuid.UUID) ([]*entities.WatchEvent, error) {
	var events []*entities.WatchEvent
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("last_watched_at DESC").Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (r *repo) ListWatchEventsByUserAndVideos(ctx context.Context, userID uuid.UUID, videoIDs []uuid.UUID) ([]*entities.WatchEvent, error) {
	var events []*entities.WatchEvent
	if len(videoIDs) == 0 {
		return events, nil
	}
	err := r.db.WithContext(ctx).Where("user_id = ? AND video_id IN ?", userID, videoIDs).Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (r *repo) ListWatchEvents(ctx context.Context) ([]*entities.WatchEvent, error) {
	var events []*entities.WatchEvent
	err := r.db.WithContext(ctx).Order("created_at ASC").Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}
