package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/require"
	"video-portal/dto"
	"video-portal/entities"
	"video-portal/pkg/session"
	"video-portal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeMail struct {
	calls int
	err   error
}

func (m *fakeMail) SendEmail(context.Context, string, string, string) (string, error) {
	m.calls++
	if m.err != nil {
		return "", m.err
	}
	return "<id@example.com>", nil
}

func (m *fakeMail) SendPlaylistLink(ctx context.Context, to, link string) (string, error) {
	return m.SendEmail(ctx, to, "playlist", link)
}

func (m *fakeMail) SendPasswordReset(ctx context.Context, to, link string) (string, error) {
	return m.SendEmail(ctx, to, "reset", link)
}

type fakeWatch struct {
	err   error
	plays []uuid.UUID
}

func (w *fakeWatch) RecordPlay(_ context.Context, userID, videoID uuid.UUID, _ bool) (*entities.WatchEvent, error) {
	if w.err != nil {
		return nil, w.err
	}
	w.plays = append(w.plays, videoID)
	return &entities.WatchEvent{UserID: userID, VideoID: videoID, PlayCount: 1}, nil
}

func (w *fakeWatch) RecordProgress(_ context.Context, userID, videoID uuid.UUID, percent, _ float64) (*entities.WatchEvent, error) {
	if w.err != nil {
		return nil, w.err
	}
	return &entities.WatchEvent{UserID: userID, VideoID: videoID, Progress: percent}, nil
}

func (w *fakeWatch) RecordCompletion(_ context.Context, userID, videoID uuid.UUID, _ float64) (*entities.WatchEvent, error) {
	if w.err != nil {
		return nil, w.err
	}
	return &entities.WatchEvent{UserID: userID, VideoID: videoID, Progress: 100, Completed: true}, nil
}

func (w *fakeWatch) ListByUser(context.Context, uuid.UUID) ([]*entities.WatchEvent, error) {
	return nil, nil
}

func withSession(sess *session.Session) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request = c.Request.WithContext(session.WithSession(c.Request.Context(), sess))
		c.Next()
	}
}

func postJSON(t *testing.T, r http.Handler, path string, body any) (*httptest.ResponseRecorder, dto.ErrorResponse) {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var res dto.ErrorResponse
	_ = json.Unmarshal(w.Body.Bytes(), &res)
	return w, res
}

func emailRouter(h *HTTP) *gin.Engine {
	r := gin.New()
	r.POST("/api/send-email", h.SendEmail)
	r.POST("/api/send-playlist-email", h.SendPlaylistEmail)
	return r
}

func TestSendEmail_MissingFieldNamed(t *testing.T) {
	mail := &fakeMail{}
	r := emailRouter(&HTTP{Mail: mail})

	w, res := postJSON(t, r, "/api/send-email", map[string]string{"to": "a@example.com", "html": "<p>hi</p>"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "missing required field: subject", res.Error)

	w, res = postJSON(t, r, "/api/send-playlist-email", map[string]string{"email": "a@example.com"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "missing required field: playlistLink", res.Error)

	require.Zero(t, mail.calls)
}

func TestSendEmail_Success(t *testing.T) {
	r := emailRouter(&HTTP{Mail: &fakeMail{}})

	w, _ := postJSON(t, r, "/api/send-email", map[string]string{"to": "a@example.com", "subject": "Hi", "html": "<p>hi</p>"})
	require.Equal(t, http.StatusOK, w.Code)

	var res dto.SendEmailResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	require.True(t, res.Success)
	require.Equal(t, "<id@example.com>", res.MessageId)
}

func TestSendEmail_RelayFailure(t *testing.T) {
	r := emailRouter(&HTTP{Mail: &fakeMail{err: fmt.Errorf("%w: %w", service.ErrMailFailed, errors.New("dial tcp: refused"))}})

	w, res := postJSON(t, r, "/api/send-email", map[string]string{"to": "a@example.com", "subject": "Hi", "html": "x"})
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.Equal(t, "failed to send email", res.Error)
	require.Equal(t, "dial tcp: refused", res.Details)
}

func TestRecordPlay_NeverBlocksPlayback(t *testing.T) {
	watch := &fakeWatch{}
	sess := &session.Session{UserID: uuid.New()}
	r := gin.New()
	r.POST("/api/watch/play", withSession(sess), (&HTTP{Watch: watch}).RecordPlay)
	videoID := uuid.New()

	w, _ := postJSON(t, r, "/api/watch/play", map[string]any{"videoId": videoID})
	require.Equal(t, http.StatusAccepted, w.Code)
	var ok dto.WatchEventResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ok))
	require.True(t, ok.Persisted)
	require.Equal(t, []uuid.UUID{videoID}, watch.plays)

	watch.err = errors.New("database is down")
	w, _ = postJSON(t, r, "/api/watch/play", map[string]any{"videoId": videoID})
	require.Equal(t, http.StatusAccepted, w.Code)
	var failed dto.WatchEventResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &failed))
	require.False(t, failed.Persisted)
	require.Nil(t, failed.Event)
}

func TestRecordPlay_RequiresSession(t *testing.T) {
	r := gin.New()
	r.POST("/api/watch/play", (&HTTP{Watch: &fakeWatch{}}).RecordPlay)

	w, _ := postJSON(t, r, "/api/watch/play", map[string]any{"videoId": uuid.New()})
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestWriteError_Statuses(t *testing.T) {
	cases := []struct {
		err    error
		status int
		msg    string
	}{
		{service.ErrInvalidCredentials, http.StatusUnauthorized, "invalid email or password"},
		{service.ErrTooManyAttempts, http.StatusTooManyRequests, "too many attempts, try again later"},
		{fmt.Errorf("%w: title is required", service.ErrInvalidInput), http.StatusBadRequest, "invalid input"},
		{service.ErrNotFound, http.StatusNotFound, "record not found"},
		{service.ErrForbidden, http.StatusForbidden, "forbidden"},
		{errors.New("boom"), http.StatusInternalServerError, "internal server error"},
	}
	for _, tc := range cases {
		r := gin.New()
		r.GET("/", func(c *gin.Context) { writeError(c, tc.err) })
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		var res dto.ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
		require.Equal(t, tc.status, w.Code, tc.err.Error())
		require.Equal(t, tc.msg, res.Error)
	}
}

func TestParseBound(t *testing.T) {
	from, err := parseBound("2024-03-01", false)
	require.NoError(t, err)
	require.Equal(t, "2024-03-01T00:00:00Z", from.Format("2006-01-02T15:04:05Z07:00"))

	to, err := parseBound("2024-03-01", true)
	require.NoError(t, err)
	require.Equal(t, 23, to.Hour())

	_, err = parseBound("last week", false)
	require.Error(t, err)

	zero, err := parseBound("", true)
	require.NoError(t, err)
	require.True(t, zero.IsZero())
}

func TestWatchEventHandler(t *testing.T) {
	watch := &fakeWatch{}
	deps := ServiceDependencies{WatchEvents: watch}
	videoID := uuid.New()
	body, err := json.Marshal(dto.WatchEventMessage{Type: "play", UserId: uuid.New(), VideoId: videoID})
	require.NoError(t, err)

	require.NoError(t, WatchEventHandler(context.Background(), amqp.Delivery{Body: body}, deps))
	require.Equal(t, []uuid.UUID{videoID}, watch.plays)

	require.Error(t, WatchEventHandler(context.Background(), amqp.Delivery{Body: []byte("{")}, deps))

	unknown, err := json.Marshal(dto.WatchEventMessage{Type: "pause"})
	require.NoError(t, err)
	require.Error(t, WatchEventHandler(context.Background(), amqp.Delivery{Body: unknown}, deps))
}
