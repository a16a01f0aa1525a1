package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"video-portal/constant"
	"video-portal/entities"
)

func TestApplyProgress_MonotonicAndMilestonesOnce(t *testing.T) {
	ev := &entities.WatchEvent{}
	now := time.Now()

	applyProgress(ev, nil, 30, 10, now)
	require.Equal(t, 30.0, ev.Progress)
	require.Equal(t, []int{25}, []int(ev.Milestones))

	applyProgress(ev, nil, 20, 5, now)
	require.Equal(t, 30.0, ev.Progress)
	require.Equal(t, 15.0, ev.WatchDuration)

	applyProgress(ev, nil, 80, -4, now)
	require.Equal(t, 80.0, ev.Progress)
	require.Equal(t, 15.0, ev.WatchDuration)
	require.Equal(t, []int{25, 50, 75}, []int(ev.Milestones))

	applyProgress(ev, nil, 180, 1, now)
	require.Equal(t, 100.0, ev.Progress)
	require.Equal(t, []int{25, 50, 75, 100}, []int(ev.Milestones))
	require.False(t, ev.Completed)
}

func TestApplyCompletion(t *testing.T) {
	ev := &entities.WatchEvent{WatchDuration: 50, Progress: 40, Milestones: []int{25}}
	video := &entities.Video{Title: "Intro", Category: "Sales", Tags: []string{"a", "b"}}

	applyCompletion(ev, video, 20, time.Now())

	require.True(t, ev.Completed)
	require.Equal(t, 100.0, ev.Progress)
	require.Equal(t, 50.0, ev.WatchDuration)
	require.True(t, ev.HasMilestone(constant.MilestoneComplete))
	require.Equal(t, []int{25, 50, 75, 100}, []int(ev.Milestones))
	require.Equal(t, "Intro", ev.VideoTitle)
	require.Equal(t, "Sales", ev.VideoCategory)
	require.Equal(t, []string{"a", "b"}, []string(ev.VideoTags))

	applyCompletion(ev, video, 90, time.Now())
	require.Equal(t, 90.0, ev.WatchDuration)
}

func TestApplyPlay(t *testing.T) {
	ev := &entities.WatchEvent{Progress: 60}
	first := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	applyPlay(ev, nil, false, first)
	applyPlay(ev, nil, true, first.Add(time.Hour))

	require.Equal(t, 2, ev.PlayCount)
	require.Equal(t, 1, ev.RewatchCount)
	require.True(t, ev.IsRewatch)
	require.Equal(t, 60.0, ev.Progress)
	require.Equal(t, first, ev.FirstWatchedAt)
	require.Equal(t, first.Add(time.Hour), ev.LastWatchedAt)
	require.Equal(t, constant.Unknown, ev.VideoTitle)
	require.Equal(t, constant.Unknown, ev.VideoCategory)
}

func TestWatchEventService_RecordsOneRowPerUserAndVideo(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	video := seedVideo(t, repo, "Pricing", "Sales")
	svc := NewWatchEventService(repo)
	userID := uuid.New()

	_, err := svc.RecordPlay(ctx, userID, video.ID, false)
	require.NoError(t, err)
	_, err = svc.RecordProgress(ctx, userID, video.ID, 55, 30)
	require.NoError(t, err)
	ev, err := svc.RecordCompletion(ctx, userID, video.ID, 20)
	require.NoError(t, err)

	require.True(t, ev.Completed)
	require.Equal(t, 30.0, ev.WatchDuration)
	require.Equal(t, "Pricing", ev.VideoTitle)

	events, err := svc.ListByUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, 1, events[0].PlayCount)
	require.Equal(t, []int{25, 50, 75, 100}, []int(events[0].Milestones))
}

func TestWatchEventService_ConcurrentWritesKeepSingleRecord(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	video := seedVideo(t, repo, "Demo", "Ops")
	svc := NewWatchEventService(repo)
	userID := uuid.New()

	var wg sync.WaitGroup
	for i := 1; i <= 8; i++ {
		wg.Add(1)
		go func(p float64) {
			defer wg.Done()
			_, err := svc.RecordProgress(ctx, userID, video.ID, p, 1)
			assert.NoError(t, err)
		}(float64(i * 10))
	}
	wg.Wait()

	events, err := repo.ListWatchEventsByUserAndVideos(ctx, userID, []uuid.UUID{video.ID})
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, 80.0, events[0].Progress)
	require.Equal(t, 8.0, events[0].WatchDuration)
}

func TestWatchEventService_UnknownVideo(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	svc := NewWatchEventService(repo)

	ev, err := svc.RecordPlay(ctx, uuid.New(), uuid.New(), false)
	require.NoError(t, err)
	require.Equal(t, constant.Unknown, ev.VideoTitle)

	_, err = svc.RecordPlay(ctx, uuid.Nil, uuid.New(), false)
	require.ErrorIs(t, err, ErrInvalidInput)
}
