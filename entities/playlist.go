package entities

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"time"
)

type Playlist struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID      `json:"user_id" gorm:"type:uuid;not null;index:idx_playlists_user_id"`
	Name      string         `json:"name" gorm:"type:varchar(255)"`
	Items     []PlaylistItem `json:"items" gorm:"foreignKey:PlaylistID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time      `json:"created_at"`
}

func (Playlist) TableName() string {
	return "playlists"
}

func (p *Playlist) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// VideoIDs returns the playlist's videos in position order. Items must be loaded sorted.
func (p *Playlist) VideoIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(p.Items))
	for _, item := range p.Items {
		ids = append(ids, item.VideoID)
	}
	return ids
}

type PlaylistItem struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	PlaylistID uuid.UUID `json:"playlist_id" gorm:"type:uuid;not null;uniqueIndex:idx_playlist_items_position,priority:1"`
	VideoID    uuid.UUID `json:"video_id" gorm:"type:uuid;not null;index"`
	Position   int       `json:"position" gorm:"not null;uniqueIndex:idx_playlist_items_position,priority:2"`
}

func (PlaylistItem) TableName() string {
	return "playlist_items"
}

func (i *PlaylistItem) BeforeCreate(*gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
