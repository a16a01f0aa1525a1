package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm/logger"
	"video-portal/entities"
)

func openTestRepo(t *testing.T) Repository {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	r, err := Open(sqlite.Open(dsn), logger.Silent)
	require.NoError(t, err)
	sqlDB, err := r.GetDB().DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, r.Migrate(context.Background()))
	return r
}

func TestUpsertWatchEvent_SingleRowPerPair(t *testing.T) {
	ctx := context.Background()
	r := openTestRepo(t)
	user, video := uuid.New(), uuid.New()

	for i := 1; i <= 3; i++ {
		_, err := r.UpsertWatchEvent(ctx, user, video, func(ev *entities.WatchEvent) error {
			ev.PlayCount++
			ev.LastWatchedAt = time.Now()
			return nil
		})
		require.NoError(t, err)
	}

	events, err := r.ListWatchEventsByUser(ctx, user)
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, 3, events[0].PlayCount)
}

func TestUpsertWatchEvent_MutateErrorRollsBack(t *testing.T) {
	ctx := context.Background()
	r := openTestRepo(t)
	boom := fmt.Errorf("boom")

	_, err := r.UpsertWatchEvent(ctx, uuid.New(), uuid.New(), func(*entities.WatchEvent) error { return boom })
	require.ErrorIs(t, err, boom)

	all, err := r.ListWatchEvents(ctx)
	require.NoError(t, err)
	require.Empty(t, all)
}

func TestUpsertSettings_OverwritesExisting(t *testing.T) {
	ctx := context.Background()
	r := openTestRepo(t)

	require.NoError(t, r.UpsertSettings(ctx, map[string]string{"a": "1", "b": "2"}))
	require.NoError(t, r.UpsertSettings(ctx, map[string]string{"a": "3"}))

	settings, err := r.ListSettings(ctx)
	require.NoError(t, err)
	require.Len(t, settings, 2)
	require.Equal(t, "a", settings[0].Key)
	require.Equal(t, "3", settings[0].Value)
}

func TestFindVideoById_NotFound(t *testing.T) {
	_, err := openTestRepo(t).FindVideoById(context.Background(), uuid.New())
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := &memoryStore{entries: map[string]memoryEntry{}, now: func() time.Time { return now }}

	n, err := s.IncrementLoginAttempts(ctx, "a@example.com", time.Minute)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)
	n, _ = s.IncrementLoginAttempts(ctx, "a@example.com", time.Minute)
	require.EqualValues(t, 2, n)

	require.NoError(t, s.RevokeToken(ctx, "jti", time.Minute))
	revoked, _ := s.IsTokenRevoked(ctx, "jti")
	require.True(t, revoked)

	user := uuid.New()
	require.NoError(t, s.SaveResetToken(ctx, "tok", user, time.Minute))
	got, err := s.ConsumeResetToken(ctx, "tok")
	require.NoError(t, err)
	require.Equal(t, user, got)
	_, err = s.ConsumeResetToken(ctx, "tok")
	require.ErrorIs(t, err, ErrNotFound)

	now = now.Add(2 * time.Minute)
	n, _ = s.LoginAttempts(ctx, "a@example.com")
	require.Zero(t, n)
	revoked, _ = s.IsTokenRevoked(ctx, "jti")
	require.False(t, revoked)
}

func TestMemoryStore_SweepsExpiredKeysOnWrite(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := &memoryStore{entries: map[string]memoryEntry{}, now: func() time.Time { return now }}

	for i := 0; i < 10; i++ {
		require.NoError(t, s.RevokeToken(ctx, fmt.Sprintf("jti-%d", i), time.Minute))
		require.NoError(t, s.Set(ctx, fmt.Sprintf("analytics:report:%d", i), []byte("{}"), time.Minute))
	}
	require.Len(t, s.entries, 20)

	now = now.Add(2 * time.Minute)
	require.NoError(t, s.Set(ctx, "analytics:report:fresh", []byte("{}"), time.Minute))
	require.Len(t, s.entries, 1)
	_, ok, err := s.Get(ctx, "analytics:report:fresh")
	require.NoError(t, err)
	require.True(t, ok)
}
