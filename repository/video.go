package repository

import (
	"context"
	"github.com/google/uuid"
	"strings"
	"video-portal/entities"
)

type VideoFilter struct {
	Category string
	Query    string
}

type VideoRepository interface {
	CreateVideo(ctx context.Context, video *entities.Video) error
	SaveVideo(ctx context.Context, video *entities.Video) error
	DeleteVideo(ctx context.Context, id uuid.UUID) error
	FindVideoById(ctx context.Context, id uuid.UUID) (*entities.Video, error)
	FindVideosByIds(ctx context.Context, ids []uuid.UUID) ([]*entities.Video, error)
	ListVideos(ctx context.Context, filter VideoFilter) ([]*entities.Video, error)
	ListCategories(ctx context.Context) ([]string, error)
}

func (r *repo) CreateVideo(ctx context.Context, video *entities.Video) error {
	return r.db.WithContext(ctx).Create(video).Error
}

func (r *repo) SaveVideo(ctx context.Context, video *entities.Video) error {
	return r.db.WithContext(ctx).Save(video).Error
}

func (r *repo) DeleteVideo(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&entities.Video{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repo) FindVideoById(ctx context.Context, id uuid.UUID) (*entities.Video, error) {
	video := &entities.Video{}
	err := r.db.WithContext(ctx).First(video, "id = ?", id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return video, nil
}

func (r *repo) FindVideosByIds(ctx context.Context, ids []uuid.UUID) ([]*entities.Video, error) {
	var videos []*entities.Video
	if len(ids) == 0 {
		return videos, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&videos).Error
	if err != nil {
		return nil, err
	}
	return videos, nil
}

func (r *repo) ListVideos(ctx context.Context, filter VideoFilter) ([]*entities.Video, error) {
	var videos []*entities.Video
	q := r.db.WithContext(ctx).Model(&entities.Video{})
	if filter.Category != "" {
		q = q.Where("LOWER(category) = ?", strings.ToLower(strings.TrimSpace(filter.Category)))
	}
	if filter.Query != "" {
		like := "%" + strings.ToLower(strings.TrimSpace(filter.Query)) + "%"
		q = q.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}
	err := q.Order("created_at DESC").Find(&videos).Error
	if err != nil {
		return nil, err
	}
	return videos, nil
}

func (r *repo) ListCategories(ctx context.Context) ([]string, error) {
	var categories []string
	err := r.db.WithContext(ctx).Model(&entities.Video{}).
		Where("category <> ''").
		Distinct("category").
		Order("category ASC").
		Pluck("category", &categories).Error
	if err != nil {
		return nil, err
	}
	return categories, nil
}
