package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"video-portal/constant"
	"video-portal/dto"
	"video-portal/entities"
	"video-portal/pkg/analytics"
	"video-portal/repository"
)

const defaultPlaylistName = "My playlist"

type PlaylistService interface {
	Create(ctx context.Context, userID uuid.UUID, req dto.CreatePlaylistRequest) (*dto.PlaylistResponse, error)
	List(ctx context.Context, userID uuid.UUID) ([]*dto.PlaylistResponse, error)
	Get(ctx context.Context, userID, playlistID uuid.UUID) (*dto.PlaylistResponse, error)
	RemoveVideo(ctx context.Context, userID, playlistID, videoID uuid.UUID) error
	Delete(ctx context.Context, userID, playlistID uuid.UUID) error
	CanPlay(ctx context.Context, userID, playlistID, videoID uuid.UUID) (bool, error)
}

type playlistService struct {
	repo repository.Repository
}

func NewPlaylistService(repo repository.Repository) PlaylistService {
	return &playlistService{repo: repo}
}

func (s *playlistService) Create(ctx context.Context, userID uuid.UUID, req dto.CreatePlaylistRequest) (*dto.PlaylistResponse, error) {
	ids := dedupe(req.VideoIds)
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: a playlist needs at least one video", ErrInvalidInput)
	}

	videos, err := s.repo.FindVideosByIds(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(videos) != len(ids) {
		return nil, fmt.Errorf("%w: unknown video in playlist", ErrInvalidInput)
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = defaultPlaylistName
	}
	playlist := &entities.Playlist{UserID: userID, Name: name}
	for i, id := range ids {
		playlist.Items = append(playlist.Items, entities.PlaylistItem{VideoID: id, Position: i})
	}
	if err := s.repo.CreatePlaylist(ctx, playlist); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to create playlist")
		return nil, err
	}
	zerolog.Ctx(ctx).Info().Str("playlist_id", playlist.ID.String()).Int("videos", len(ids)).Msg("playlist created")

	return s.build(ctx, userID, playlist)
}

func (s *playlistService) List(ctx context.Context, userID uuid.UUID) ([]*dto.PlaylistResponse, error) {
	playlists, err := s.repo.ListPlaylistsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	res := make([]*dto.PlaylistResponse, 0, len(playlists))
	for _, p := range playlists {
		built, err := s.build(ctx, userID, p)
		if err != nil {
			return nil, err
		}
		res = append(res, built)
	}
	return res, nil
}

func (s *playlistService) Get(ctx context.Context, userID, playlistID uuid.UUID) (*dto.PlaylistResponse, error) {
	playlist, err := s.owned(ctx, userID, playlistID)
	if err != nil {
		return nil, err
	}
	return s.build(ctx, userID, playlist)
}

func (s *playlistService) RemoveVideo(ctx context.Context, userID, playlistID, videoID uuid.UUID) error {
	if _, err := s.owned(ctx, userID, playlistID); err != nil {
		return err
	}
	return s.repo.DeletePlaylistItem(ctx, playlistID, videoID)
}

func (s *playlistService) Delete(ctx context.Context, userID, playlistID uuid.UUID) error {
	if _, err := s.owned(ctx, userID, playlistID); err != nil {
		return err
	}
	return s.repo.DeletePlaylist(ctx, playlistID)
}

func (s *playlistService) CanPlay(ctx context.Context, userID, playlistID, videoID uuid.UUID) (bool, error) {
	playlist, err := s.owned(ctx, userID, playlistID)
	if err != nil {
		return false, err
	}
	completed, _, err := s.completed(ctx, userID, playlist.VideoIDs())
	if err != nil {
		return false, err
	}
	state, ok := ComputeGateStates(playlist.VideoIDs(), completed)[videoID]
	if !ok {
		return false, ErrNotFound
	}
	return state != constant.GateStateLocked, nil
}

func (s *playlistService) owned(ctx context.Context, userID, playlistID uuid.UUID) (*entities.Playlist, error) {
	playlist, err := s.repo.FindPlaylistById(ctx, playlistID)
	if err != nil {
		return nil, err
	}
	if playlist.UserID != userID {
		return nil, ErrForbidden
	}
	return playlist, nil
}

// completed returns the set of videos the user has completed among ids, plus
// the user's representative record for each of them.
func (s *playlistService) completed(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]bool, map[uuid.UUID]*entities.WatchEvent, error) {
	events, err := s.repo.ListWatchEventsByUserAndVideos(ctx, userID, ids)
	if err != nil {
		return nil, nil, err
	}
	done := make(map[uuid.UUID]bool, len(events))
	byVideo := make(map[uuid.UUID]*entities.WatchEvent, len(events))
	for _, ev := range events {
		if ev.Completed {
			done[ev.VideoID] = true
		}
		if cur, ok := byVideo[ev.VideoID]; !ok || analytics.Preferred(ev, cur) {
			byVideo[ev.VideoID] = ev
		}
	}
	return done, byVideo, nil
}

func (s *playlistService) build(ctx context.Context, userID uuid.UUID, playlist *entities.Playlist) (*dto.PlaylistResponse, error) {
	ids := playlist.VideoIDs()

	videos, err := s.repo.FindVideosByIds(ctx, ids)
	if err != nil {
		return nil, err
	}
	videoByID := make(map[uuid.UUID]*entities.Video, len(videos))
	for _, v := range videos {
		videoByID[v.ID] = v
	}

	completed, events, err := s.completed(ctx, userID, ids)
	if err != nil {
		return nil, err
	}

	res := &dto.PlaylistResponse{
		ID:        playlist.ID,
		Name:      playlist.Name,
		CreatedAt: playlist.CreatedAt,
		Videos:    make([]dto.PlaylistVideo, 0, len(ids)),
		Anomalies: DetectGateAnomalies(ids, completed),
	}
	for i, entry := range ComputeGate(ids, completed) {
		if entry.State == constant.GateStateCompleted {
			res.Completed++
		}
		res.Videos = append(res.Videos, dto.PlaylistVideo{
			Position: i,
			Video:    videoByID[entry.VideoID],
			State:    string(entry.State),
			Event:    events[entry.VideoID],
		})
	}
	if len(res.Anomalies) > 0 {
		zerolog.Ctx(ctx).Warn().Str("playlist_id", playlist.ID.String()).Int("anomalies", len(res.Anomalies)).Msg("videos completed out of sequence")
	}
	return res, nil
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
