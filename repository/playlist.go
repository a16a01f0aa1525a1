package repository

import (
	"context"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"video-portal/entities"
)

type PlaylistRepository interface {
	CreatePlaylist(ctx context.Context, playlist *entities.Playlist) error
	FindPlaylistById(ctx context.Context, id uuid.UUID) (*entities.Playlist, error)
	ListPlaylistsByUser(ctx context.Context, userID uuid.UUID) ([]*entities.Playlist, error)
	DeletePlaylistItem(ctx context.Context, playlistID, videoID uuid.UUID) error
	DeletePlaylist(ctx context.Context, id uuid.UUID) error
}

func orderedItems(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

func (r *repo) CreatePlaylist(ctx context.Context, playlist *entities.Playlist) error {
	return r.db.WithContext(ctx).Create(playlist).Error
}

func (r *repo) FindPlaylistById(ctx context.Context, id uuid.UUID) (*entities.Playlist, error) {
	playlist := &entities.Playlist{}
	err := r.db.WithContext(ctx).Preload("Items", orderedItems).First(playlist, "id = ?", id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return playlist, nil
}

func (r *repo) ListPlaylistsByUser(ctx context.Context, userID uuid.UUID) ([]*entities.Playlist, error) {
	var playlists []*entities.Playlist
	err := r.db.WithContext(ctx).Preload("Items", orderedItems).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&playlists).Error
	if err != nil {
		return nil, err
	}
	return playlists, nil
}

func (r *repo) DeletePlaylistItem(ctx context.Context, playlistID, videoID uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Where("playlist_id = ? AND video_id = ?", playlistID, videoID).
		Delete(&entities.PlaylistItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repo) DeletePlaylist(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("playlist_id = ?", id).Delete(&entities.PlaylistItem{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&entities.Playlist{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}
