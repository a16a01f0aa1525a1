package service

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"video-portal/constant"
	"video-portal/entities"
	"video-portal/repository"
)

type WatchEventService interface {
	RecordPlay(ctx context.Context, userID, videoID uuid.UUID, isRewatch bool) (*entities.WatchEvent, error)
	RecordProgress(ctx context.Context, userID, videoID uuid.UUID, percent, elapsedSeconds float64) (*entities.WatchEvent, error)
	RecordCompletion(ctx context.Context, userID, videoID uuid.UUID, totalElapsedSeconds float64) (*entities.WatchEvent, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*entities.WatchEvent, error)
}

type watchEventService struct {
	repo repository.Repository
	now  func() time.Time
}

func NewWatchEventService(repo repository.Repository) WatchEventService {
	return &watchEventService{repo: repo, now: time.Now}
}

func (s *watchEventService) RecordPlay(ctx context.Context, userID, videoID uuid.UUID, isRewatch bool) (*entities.WatchEvent, error) {
	return s.record(ctx, userID, videoID, func(ev *entities.WatchEvent, video *entities.Video, now time.Time) {
		applyPlay(ev, video, isRewatch, now)
	})
}

func (s *watchEventService) RecordProgress(ctx context.Context, userID, videoID uuid.UUID, percent, elapsedSeconds float64) (*entities.WatchEvent, error) {
	return s.record(ctx, userID, videoID, func(ev *entities.WatchEvent, video *entities.Video, now time.Time) {
		applyProgress(ev, video, percent, elapsedSeconds, now)
	})
}

func (s *watchEventService) RecordCompletion(ctx context.Context, userID, videoID uuid.UUID, totalElapsedSeconds float64) (*entities.WatchEvent, error) {
	return s.record(ctx, userID, videoID, func(ev *entities.WatchEvent, video *entities.Video, now time.Time) {
		applyCompletion(ev, video, totalElapsedSeconds, now)
	})
}

func (s *watchEventService) ListByUser(ctx context.Context, userID uuid.UUID) ([]*entities.WatchEvent, error) {
	return s.repo.ListWatchEventsByUser(ctx, userID)
}

func (s *watchEventService) record(ctx context.Context, userID, videoID uuid.UUID, apply func(*entities.WatchEvent, *entities.Video, time.Time)) (*entities.WatchEvent, error) {
	if userID == uuid.Nil || videoID == uuid.Nil {
		return nil, ErrInvalidInput
	}

	video, err := s.repo.FindVideoById(ctx, videoID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		zerolog.Ctx(ctx).Warn().Str("video_id", videoID.String()).Msg("recording watch event for unknown video")
		video = nil
	}

	now := s.now().UTC()
	event, err := s.repo.UpsertWatchEvent(ctx, userID, videoID, func(ev *entities.WatchEvent) error {
		apply(ev, video, now)
		return nil
	})
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).
			Str("user_id", userID.String()).
			Str("video_id", videoID.String()).
			Msg("failed to record watch event")
		return nil, err
	}
	return event, nil
}

func applyPlay(ev *entities.WatchEvent, video *entities.Video, isRewatch bool, now time.Time) {
	touch(ev, video, now)
	ev.PlayCount++
	if isRewatch {
		ev.IsRewatch = true
		ev.RewatchCount++
	}
}

func applyProgress(ev *entities.WatchEvent, video *entities.Video, percent, elapsed float64, now time.Time) {
	touch(ev, video, now)
	ev.WatchDuration += nonNegative(elapsed)
	ev.Progress = math.Max(ev.Progress, clampPercent(percent))
	crossMilestones(ev)
}

func applyCompletion(ev *entities.WatchEvent, video *entities.Video, totalElapsed float64, now time.Time) {
	touch(ev, video, now)
	ev.Progress = constant.MilestoneComplete
	ev.Completed = true
	ev.WatchDuration = math.Max(ev.WatchDuration, nonNegative(totalElapsed))
	crossMilestones(ev)
}

// touch stamps the watch timestamps and copies the video's descriptive fields
// onto the record.
func touch(ev *entities.WatchEvent, video *entities.Video, now time.Time) {
	if ev.FirstWatchedAt.IsZero() {
		ev.FirstWatchedAt = now
	}
	ev.LastWatchedAt = now

	if video == nil {
		if ev.VideoTitle == "" {
			ev.VideoTitle = constant.Unknown
		}
		if ev.VideoCategory == "" {
			ev.VideoCategory = constant.Unknown
		}
		return
	}
	ev.VideoTitle = orUnknown(video.Title)
	ev.VideoCategory = orUnknown(video.Category)
	ev.VideoTags = append(datatypes.JSONSlice[string]{}, video.Tags...)
}

func crossMilestones(ev *entities.WatchEvent) {
	for _, m := range constant.Milestones {
		if ev.Progress >= float64(m) && !ev.HasMilestone(m) {
			ev.Milestones = append(ev.Milestones, m)
		}
	}
}

func clampPercent(p float64) float64 {
	if math.IsNaN(p) || p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

func nonNegative(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

func orUnknown(s string) string {
	if s == "" {
		return constant.Unknown
	}
	return s
}
