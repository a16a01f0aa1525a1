package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewMessageID(t *testing.T) {
	id := NewMessageID("no-reply@example.com")
	require.True(t, strings.HasPrefix(id, "<"))
	require.True(t, strings.HasSuffix(id, "@example.com>"))

	require.True(t, strings.HasSuffix(NewMessageID("no-reply@portal.io"), "@portal.io>"))
	require.True(t, strings.HasSuffix(NewMessageID(""), "@localhost>"))
	require.NotEqual(t, NewMessageID("a@b.c"), NewMessageID("a@b.c"))
}

func TestMailService_PlaylistLinkIsEscaped(t *testing.T) {
	mailer := &fakeMailer{}
	svc := NewMailService(mailer)

	id, err := svc.SendPlaylistLink(context.Background(), "lead@example.com", `https://portal.example.com/p/1?x="><script>`)
	require.NoError(t, err)
	require.NotEmpty(t, id)
	require.Len(t, mailer.sent, 1)
	require.NotContains(t, mailer.sent[0].HTML, "<script>")
	require.Contains(t, mailer.sent[0].HTML, "https://portal.example.com/p/1")
}

func TestMailService_RejectsBadRecipient(t *testing.T) {
	_, err := NewMailService(&fakeMailer{}).SendEmail(context.Background(), "not an address", "s", "h")
	require.ErrorIs(t, err, ErrInvalidInput)
}
