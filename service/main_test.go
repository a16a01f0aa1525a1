package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm/logger"
	"video-portal/entities"
	"video-portal/repository"
)

func newTestRepo(t *testing.T) repository.Repository {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	repo, err := repository.Open(sqlite.Open(dsn), logger.Silent)
	require.NoError(t, err)

	sqlDB, err := repo.GetDB().DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, repo.Migrate(context.Background()))
	return repo
}

func seedVideo(t *testing.T, repo repository.Repository, title, category string) *entities.Video {
	t.Helper()
	video := &entities.Video{Title: title, Category: category, Tags: []string{"demo"}, Duration: "5:00"}
	require.NoError(t, repo.CreateVideo(context.Background(), video))
	return video
}

func seedUser(t *testing.T, repo repository.Repository, email, company string) *entities.User {
	t.Helper()
	user := &entities.User{Name: "Test User", Email: email, CompanyName: company}
	require.NoError(t, repo.CreateUser(context.Background(), user))
	return user
}

type fakeMailer struct {
	sent []Message
	err  error
}

func (m *fakeMailer) Send(_ context.Context, msg Message) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.sent = append(m.sent, msg)
	return NewMessageID("portal@example.com"), nil
}
