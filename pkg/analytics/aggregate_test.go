package analytics

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"video-portal/entities"
)

func event(user, video uuid.UUID, progress, duration float64, completed bool, at time.Time) *entities.WatchEvent {
	return &entities.WatchEvent{
		ID:            uuid.New(),
		UserID:        user,
		VideoID:       video,
		Progress:      progress,
		WatchDuration: duration,
		Completed:     completed,
		LastWatchedAt: at,
		PlayCount:     1,
	}
}

func findWatch(t *testing.T, r Report, user, video uuid.UUID) VideoWatch {
	t.Helper()
	for _, w := range r.Watches {
		if w.UserID == user && w.VideoID == video {
			return w
		}
	}
	t.Fatalf("no watch for user %s video %s", user, video)
	return VideoWatch{}
}

func findUser(t *testing.T, r Report, user uuid.UUID) UserSummary {
	t.Helper()
	for _, u := range r.Users {
		if u.UserID == user {
			return u
		}
	}
	t.Fatalf("no summary for user %s", user)
	return UserSummary{}
}

func TestAggregate_DuplicateRecordsPickHigherProgress(t *testing.T) {
	user, video := uuid.New(), uuid.New()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	low := event(user, video, 40, 20, false, now)
	high := event(user, video, 70, 15, false, now.Add(-time.Hour))

	report := Aggregate(Input{Events: []*entities.WatchEvent{low, high}})

	require.Equal(t, high, Representative([]*entities.WatchEvent{low, high}))
	w := findWatch(t, report, user, video)
	require.Equal(t, 70.0, w.Progress)
	require.False(t, w.Completed)
	require.Equal(t, 35.0, w.WatchDuration)
	require.Equal(t, 2, w.Records)
}

func TestAggregate_CompletedFloor(t *testing.T) {
	user, video := uuid.New(), uuid.New()
	ev := event(user, video, 100, 5, true, time.Now())

	report := Aggregate(Input{Events: []*entities.WatchEvent{ev}})

	w := findWatch(t, report, user, video)
	require.Equal(t, CompletedFloorSeconds, w.WatchDuration)
	require.Equal(t, 30.0, findUser(t, report, user).TotalWatchTime)
}

func TestAggregate_ZeroDurationBecomesOneSecond(t *testing.T) {
	user, video := uuid.New(), uuid.New()
	ev := event(user, video, 10, 0, false, time.Now())

	report := Aggregate(Input{Events: []*entities.WatchEvent{ev}})

	require.Equal(t, MinimumWatchSeconds, findWatch(t, report, user, video).WatchDuration)
}

func TestRepresentative_Precedence(t *testing.T) {
	user, video := uuid.New(), uuid.New()
	now := time.Now()

	completed := event(user, video, 80, 1, true, now.Add(-48*time.Hour))
	higher := event(user, video, 95, 1, false, now)
	require.Equal(t, completed, Representative([]*entities.WatchEvent{higher, completed}))

	older := event(user, video, 50, 1, false, now.Add(-time.Hour))
	newer := event(user, video, 50, 1, false, now)
	require.Equal(t, newer, Representative([]*entities.WatchEvent{older, newer}))

	require.Nil(t, Representative(nil))
}

func TestAggregate_CompanyNamesCaseInsensitive(t *testing.T) {
	video := uuid.New()
	users := []*entities.User{
		{ID: uuid.New(), Name: "A", CompanyName: "Steel Inc."},
		{ID: uuid.New(), Name: "B", CompanyName: "steel inc."},
		{ID: uuid.New(), Name: "C", CompanyName: "STEEL INC. "},
		{ID: uuid.New(), Name: "D", CompanyName: "Acme"},
	}
	var events []*entities.WatchEvent
	for i, u := range users[:3] {
		events = append(events, event(u.ID, video, 100, float64(60*(i+1)), true, time.Now()))
	}

	report := Aggregate(Input{Events: events, Users: users})

	require.Len(t, report.Companies, 2)
	steel := report.Companies[0]
	require.Equal(t, "Steel Inc.", steel.Name)
	require.Equal(t, 3, steel.UserCount)
	require.Equal(t, 3, steel.ActiveUsers)
	require.Equal(t, 360.0, steel.TotalWatchTime)
	require.Equal(t, 1, steel.VideosWatched)
	require.InDelta(t, 1.0, steel.AverageCompletionRate, 1e-9)

	acme := report.Companies[1]
	require.Equal(t, "Acme", acme.Name)
	require.Equal(t, 1, acme.UserCount)
	require.Zero(t, acme.ActiveUsers)
}

func TestCompanyKeyAndDisplayName(t *testing.T) {
	require.Equal(t, CompanyKey("Acme"), CompanyKey(" ACME "))
	require.Equal(t, CompanyKey("acme"), CompanyKey("Acme"))
	require.Equal(t, "unknown", CompanyKey("   "))
	require.Equal(t, "acme  co", CompanyKey(" Acme  Co "))
	require.NotEqual(t, CompanyKey("Acme Co"), CompanyKey("Acme  Co"))
	require.Equal(t, "Steel Inc.", CompanyDisplayName("steel inc."))
	require.Equal(t, "STEEL INC.", CompanyDisplayName(" STEEL  INC. "))
	require.Equal(t, "Unknown", CompanyDisplayName(""))
}

func TestAggregate_UserRollup(t *testing.T) {
	user := uuid.New()
	v1, v2, v3 := uuid.New(), uuid.New(), uuid.New()
	now := time.Now()
	rewatched := event(user, v1, 100, 200, true, now)
	rewatched.RewatchCount = 2
	events := []*entities.WatchEvent{
		rewatched,
		event(user, v2, 50, 100, false, now),
		event(user, v2, 20, 50, false, now.Add(-time.Minute)),
		event(user, v3, 100, 10, true, now),
	}

	report := Aggregate(Input{
		Events: events,
		Users:  []*entities.User{{ID: user, Name: "Dana", Email: "dana@example.com"}},
	})

	s := findUser(t, report, user)
	require.Equal(t, 3, s.VideoCount)
	require.Equal(t, 2, s.CompletedCount)
	require.Equal(t, 200.0+150.0+30.0, s.TotalWatchTime)
	require.InDelta(t, 2.0/3.0, s.CompletionRate, 1e-9)
	require.Equal(t, 2, s.RewatchCount)
	require.Equal(t, "Unknown", s.Company)

	avg := s.TotalWatchTime / 3
	want := 0.4*(2.0/3.0) + 0.3*(2.0/5.0) + 0.3*(avg/300.0)
	require.InDelta(t, want, s.EngagementScore, 1e-9)
}

func TestAggregate_VideoCountNeverExceedsDistinctVideos(t *testing.T) {
	user := uuid.New()
	videos := []uuid.UUID{uuid.New(), uuid.New()}
	var events []*entities.WatchEvent
	for i := 0; i < 6; i++ {
		events = append(events, event(user, videos[i%2], float64(i*10), 5, false, time.Now()))
	}

	report := Aggregate(Input{Events: events})

	require.LessOrEqual(t, findUser(t, report, user).VideoCount, len(videos))
	require.Equal(t, 2, findUser(t, report, user).VideoCount)
}

func TestEngagementScore_Caps(t *testing.T) {
	require.InDelta(t, 1.0, EngagementScore(1, 50, 10_000), 1e-9)
	require.InDelta(t, 0.0, EngagementScore(0, 0, 0), 1e-9)
	require.InDelta(t, 0.3*0.5, EngagementScore(0, 0, 150), 1e-9)
}

func TestAggregate_WindowAndHistoricalRecords(t *testing.T) {
	user := uuid.New()
	recent, old, undated := uuid.New(), uuid.New(), uuid.New()
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	events := []*entities.WatchEvent{
		event(user, recent, 10, 10, false, now),
		event(user, old, 10, 10, false, now.AddDate(0, -3, 0)),
		event(user, undated, 10, 10, false, time.Time{}),
	}

	all := Aggregate(Input{Events: events})
	require.Len(t, all.Watches, 3)
	require.Equal(t, HistoricalLabel, findWatch(t, all, user, undated).LastWatchedLabel)

	windowed := Aggregate(Input{Events: events, Window: Window{From: now.AddDate(0, -1, 0)}})
	require.Len(t, windowed.Watches, 1)
	require.Equal(t, recent, windowed.Watches[0].VideoID)
}

func TestAggregate_SameRecordLoadedTwiceCountsOnce(t *testing.T) {
	user, video := uuid.New(), uuid.New()
	ev := event(user, video, 60, 40, false, time.Now())

	report := Aggregate(Input{Events: []*entities.WatchEvent{ev, ev}})

	require.Equal(t, 40.0, findWatch(t, report, user, video).WatchDuration)
}

func TestAggregate_VideoSummaries(t *testing.T) {
	catalogVideo := &entities.Video{ID: uuid.New(), Title: "Onboarding", Category: "Sales", Duration: "6:00"}
	unwatched := &entities.Video{ID: uuid.New(), Title: "Unwatched", Duration: ""}
	orphan := uuid.New()
	u1, u2 := uuid.New(), uuid.New()
	events := []*entities.WatchEvent{
		event(u1, catalogVideo.ID, 100, 300, true, time.Now()),
		event(u2, catalogVideo.ID, 50, 100, false, time.Now()),
		event(u1, orphan, 25, 0, false, time.Now()),
	}
	events[1].Milestones = []int{25, 50}

	report := Aggregate(Input{Events: events, Videos: []*entities.Video{catalogVideo, unwatched}})

	require.Len(t, report.Videos, 3)
	top := report.Videos[0]
	require.Equal(t, catalogVideo.ID, top.VideoID)
	require.Equal(t, 2, top.Views)
	require.Equal(t, 2, top.UniqueViewers)
	require.Equal(t, 1, top.Completions)
	require.InDelta(t, 0.5, top.CompletionRate, 1e-9)
	require.InDelta(t, 75.0, top.AverageProgress, 1e-9)
	require.Equal(t, 1, top.MilestoneReach[25])
	require.Equal(t, 1, top.MilestoneReach[50])
	require.Equal(t, 1, top.MilestoneReach[100])
	require.InDelta(t, 400.0/3600.0, top.EstimatedWatchHours, 1e-9)

	orphanWatch := findWatch(t, report, u1, orphan)
	require.Equal(t, "Unknown", orphanWatch.Title)
	require.Equal(t, "Unknown", orphanWatch.Category)

	require.Equal(t, 3, report.Overview.TotalViews)
	require.Equal(t, 2, report.Overview.UniqueViewers)
	require.Equal(t, 2, report.Overview.VideosWatched)
	require.Equal(t, 2, report.Overview.TotalVideos)
}

func TestEstimateWatchHours(t *testing.T) {
	require.InDelta(t, 1.0, EstimateWatchHours(3600, 10, 5), 1e-9)
	require.InDelta(t, 1.0, EstimateWatchHours(0, 10, 6), 1e-9)
	require.InDelta(t, 0.5, EstimateWatchHours(0, 5, 0), 1e-9)
}

func TestParseDurationMinutes(t *testing.T) {
	cases := map[string]float64{
		"":           0,
		"5":          5,
		"5 min":      5,
		"12 minutes": 12,
		"5:30":       5.5,
		"1:02:03":    62.05,
		"1h 5m":      65,
		"90s":        1.5,
		"about":      0,
	}
	for in, want := range cases {
		require.InDelta(t, want, ParseDurationMinutes(in), 1e-9, in)
	}
}
