package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"video-portal/entities"
	"video-portal/pkg/analytics"
	"video-portal/repository"
)

type AnalyticsService interface {
	Report(ctx context.Context, window analytics.Window) (*analytics.Report, error)
	UserReport(ctx context.Context, userID uuid.UUID, window analytics.Window) (*UserReport, error)
}

// UserReport is one user's engagement: their rollup plus a row per video.
type UserReport struct {
	Summary    analytics.UserSummary       `json:"summary"`
	Videos     []analytics.VideoWatch      `json:"videos"`
	Categories []analytics.CategorySummary `json:"categories"`
	Window     analytics.Window            `json:"window"`
}

type analyticsService struct {
	repo  repository.Repository
	cache repository.Cache
	ttl   time.Duration
}

// NewAnalyticsService builds the loader around the aggregation engine. cache
// may be nil, which disables memoization.
func NewAnalyticsService(repo repository.Repository, cache repository.Cache, ttl time.Duration) AnalyticsService {
	return &analyticsService{repo: repo, cache: cache, ttl: ttl}
}

func reportCacheKey(w analytics.Window) string {
	key := "analytics:report:"
	if !w.From.IsZero() {
		key += w.From.UTC().Format(time.RFC3339)
	}
	key += ":"
	if !w.To.IsZero() {
		key += w.To.UTC().Format(time.RFC3339)
	}
	return key
}

func (s *analyticsService) Report(ctx context.Context, window analytics.Window) (*analytics.Report, error) {
	key := reportCacheKey(window)
	if cached := s.cached(ctx, key); cached != nil {
		return cached, nil
	}

	var (
		events []*entities.WatchEvent
		videos []*entities.Video
		users  []*entities.User
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		events, err = s.repo.ListWatchEvents(gctx)
		return err
	})
	g.Go(func() (err error) {
		videos, err = s.repo.ListVideos(gctx, repository.VideoFilter{})
		return err
	})
	g.Go(func() (err error) {
		users, err = s.repo.ListUsers(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to load analytics input")
		return nil, err
	}

	report := analytics.Aggregate(analytics.Input{Events: events, Videos: videos, Users: users, Window: window})
	s.store(ctx, key, &report)
	return &report, nil
}

func (s *analyticsService) UserReport(ctx context.Context, userID uuid.UUID, window analytics.Window) (*UserReport, error) {
	var (
		user   *entities.User
		events []*entities.WatchEvent
		videos []*entities.Video
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		user, err = s.repo.FindUserById(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		events, err = s.repo.ListWatchEventsByUser(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		videos, err = s.repo.ListVideos(gctx, repository.VideoFilter{})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := analytics.Aggregate(analytics.Input{
		Events: events,
		Videos: videos,
		Users:  []*entities.User{user},
		Window: window,
	})
	res := &UserReport{Videos: report.Watches, Categories: report.Categories, Window: window}
	for _, u := range report.Users {
		if u.UserID == userID {
			res.Summary = u
		}
	}
	return res, nil
}

func (s *analyticsService) cached(ctx context.Context, key string) *analytics.Report {
	if s.cache == nil || s.ttl <= 0 {
		return nil
	}
	raw, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("failed to read analytics cache")
		return nil
	}
	if !ok {
		return nil
	}
	report := &analytics.Report{}
	if err := json.Unmarshal(raw, report); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("discarding malformed analytics cache entry")
		return nil
	}
	return report
}

func (s *analyticsService) store(ctx context.Context, key string, report *analytics.Report) {
	if s.cache == nil || s.ttl <= 0 {
		return
	}
	payload, err := json.Marshal(report)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("failed to encode analytics report")
		return
	}
	if err := s.cache.Set(ctx, key, payload, s.ttl); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("failed to store analytics cache")
	}
}
