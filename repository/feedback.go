package repository

import (
	"context"
	"gorm.io/gorm/clause"
	"time"
	"video-portal/entities"
)

type FeedbackRepository interface {
	CreateFeedback(ctx context.Context, feedback *entities.Feedback) error
	ListFeedback(ctx context.Context, limit int) ([]*entities.Feedback, error)
}

type SettingRepository interface {
	ListSettings(ctx context.Context) ([]*entities.Setting, error)
	UpsertSettings(ctx context.Context, values map[string]string) error
}

func (r *repo) CreateFeedback(ctx context.Context, feedback *entities.Feedback) error {
	return r.db.WithContext(ctx).Create(feedback).Error
}

func (r *repo) ListFeedback(ctx context.Context, limit int) ([]*entities.Feedback, error) {
	var items []*entities.Feedback
	q := r.db.WithContext(ctx).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) ListSettings(ctx context.Context) ([]*entities.Setting, error) {
	var settings []*entities.Setting
	err := r.db.WithContext(ctx).Order(clause.OrderByColumn{Column: clause.Column{Name: "key"}}).Find(&settings).Error
	if err != nil {
		return nil, err
	}
	return settings, nil
}

func (r *repo) UpsertSettings(ctx context.Context, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}
	now := time.Now()
	rows := make([]*entities.Setting, 0, len(values))
	for k, v := range values {
		rows = append(rows, &entities.Setting{Key: k, Value: v, UpdatedAt: now})
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&rows).Error
}
