package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"video-portal/pkg/analytics"
	"video-portal/repository"
)

func TestAnalyticsService_ReportAndCache(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	video := seedVideo(t, repo, "Tour", "Sales")
	alice := seedUser(t, repo, "alice@example.com", "Steel Inc.")
	bob := seedUser(t, repo, "bob@example.com", "steel inc.")
	watch := NewWatchEventService(repo)

	_, err := watch.RecordCompletion(ctx, alice.ID, video.ID, 10)
	require.NoError(t, err)
	_, err = watch.RecordProgress(ctx, bob.ID, video.ID, 40, 20)
	require.NoError(t, err)

	svc := NewAnalyticsService(repo, repository.NewMemoryStore(), time.Minute)
	report, err := svc.Report(ctx, analytics.Window{})
	require.NoError(t, err)

	require.Equal(t, 2, report.Overview.TotalViews)
	require.Len(t, report.Companies, 1)
	require.Equal(t, "Steel Inc.", report.Companies[0].Name)
	require.Equal(t, 2, report.Companies[0].UserCount)
	require.Equal(t, analytics.CompletedFloorSeconds+20, report.Companies[0].TotalWatchTime)

	// a later event is hidden until the cached entry expires
	_, err = watch.RecordPlay(ctx, alice.ID, seedVideo(t, repo, "Other", "").ID, false)
	require.NoError(t, err)
	again, err := svc.Report(ctx, analytics.Window{})
	require.NoError(t, err)
	require.Equal(t, 2, again.Overview.TotalViews)

	fresh, err := NewAnalyticsService(repo, nil, 0).Report(ctx, analytics.Window{})
	require.NoError(t, err)
	require.Equal(t, 3, fresh.Overview.TotalViews)
}

func TestAnalyticsService_UserReport(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	v1 := seedVideo(t, repo, "One", "Sales")
	v2 := seedVideo(t, repo, "Two", "Ops")
	user := seedUser(t, repo, "u@example.com", "Acme")
	other := seedUser(t, repo, "o@example.com", "Acme")
	watch := NewWatchEventService(repo)

	_, err := watch.RecordCompletion(ctx, user.ID, v1.ID, 100)
	require.NoError(t, err)
	_, err = watch.RecordProgress(ctx, user.ID, v2.ID, 30, 50)
	require.NoError(t, err)
	_, err = watch.RecordCompletion(ctx, other.ID, v2.ID, 100)
	require.NoError(t, err)

	res, err := NewAnalyticsService(repo, nil, 0).UserReport(ctx, user.ID, analytics.Window{})
	require.NoError(t, err)
	require.Equal(t, user.ID, res.Summary.UserID)
	require.Equal(t, 2, res.Summary.VideoCount)
	require.Equal(t, 1, res.Summary.CompletedCount)
	require.Equal(t, 150.0, res.Summary.TotalWatchTime)
	require.Len(t, res.Videos, 2)
	require.Greater(t, res.Summary.EngagementScore, 0.0)

	_, err = NewAnalyticsService(repo, nil, 0).UserReport(ctx, seedUser(t, repo, "x@example.com", "").ID, analytics.Window{})
	require.NoError(t, err)
}
