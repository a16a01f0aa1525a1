package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"video-portal/constant"
	"video-portal/dto"
	"video-portal/pkg/session"
)

func TestFeedbackService(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	svc := NewFeedbackService(repo)
	sess := &session.Session{UserID: uuid.New(), Email: "u@example.com"}

	fb, err := svc.Submit(ctx, sess, dto.FeedbackRequest{Feedback: " Great demos ", Type: ""})
	require.NoError(t, err)
	require.Equal(t, constant.FeedbackTypeGeneral, fb.Type)
	require.Equal(t, "Great demos", fb.Feedback)
	require.Equal(t, "u@example.com", fb.UserEmail)

	_, err = svc.Submit(ctx, sess, dto.FeedbackRequest{Feedback: "Crash on play", Type: "BUG"})
	require.NoError(t, err)

	_, err = svc.Submit(ctx, sess, dto.FeedbackRequest{Feedback: "x", Type: "praise"})
	require.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.Submit(ctx, sess, dto.FeedbackRequest{Feedback: "   "})
	require.ErrorIs(t, err, ErrInvalidInput)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
}

func TestSettingsService(t *testing.T) {
	ctx := context.Background()
	svc := NewSettingsService(newTestRepo(t))

	got, err := svc.Update(ctx, map[string]string{"site_title": "Demos", "support_email": "help@example.com"})
	require.NoError(t, err)
	require.Equal(t, "Demos", got["site_title"])

	got, err = svc.Update(ctx, map[string]string{"site_title": "Product demos"})
	require.NoError(t, err)
	require.Equal(t, map[string]string{"site_title": "Product demos", "support_email": "help@example.com"}, got)

	_, err = svc.Update(ctx, map[string]string{" ": "x"})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestUserService_UpdateProfile(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	user := seedUser(t, repo, "u@example.com", "Acme")
	svc := NewUserService(repo)

	company := " Steel Inc. "
	updated, err := svc.UpdateProfile(ctx, user.ID, dto.ProfileUpdateRequest{CompanyName: &company})
	require.NoError(t, err)
	require.Equal(t, "Steel Inc.", updated.CompanyName)
	require.Equal(t, "Test User", updated.Name)

	users, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)

	_, err = svc.Profile(ctx, uuid.New())
	require.ErrorIs(t, err, ErrNotFound)
}
