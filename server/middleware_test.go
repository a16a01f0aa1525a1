package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"video-portal/handler"
	"video-portal/pkg/session"
	"video-portal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// tokenAuth accepts "admin" and "user" as bearer tokens.
type tokenAuth struct {
	service.AuthService
}

func (tokenAuth) Authenticate(_ context.Context, token string) (*session.Session, error) {
	switch token {
	case "admin":
		return &session.Session{UserID: uuid.New(), Email: "admin@example.com", IsAdmin: true}, nil
	case "user":
		return &session.Session{UserID: uuid.New(), Email: "user@example.com"}, nil
	}
	return nil, service.ErrUnauthorized
}

func guardedRouter() *gin.Engine {
	r := gin.New()
	r.Use(requestLogger(zerolog.Nop()))
	admin := r.Group("/api/admin", requireSession(tokenAuth{}), requireAdmin("/dashboard"))
	admin.GET("/settings", func(c *gin.Context) {
		sess, _ := session.FromContext(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"email": sess.Email})
	})
	return r
}

func get(r http.Handler, path, token, accept string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireAdmin(t *testing.T) {
	r := guardedRouter()

	require.Equal(t, http.StatusOK, get(r, "/api/admin/settings", "admin", "").Code)

	w := get(r, "/api/admin/settings", "user", "application/json")
	require.Equal(t, http.StatusForbidden, w.Code)

	w = get(r, "/api/admin/settings", "user", "text/html,application/xhtml+xml")
	require.Equal(t, http.StatusSeeOther, w.Code)
	require.Equal(t, "/dashboard", w.Header().Get("Location"))
}

func TestRequireSession(t *testing.T) {
	r := guardedRouter()

	require.Equal(t, http.StatusUnauthorized, get(r, "/api/admin/settings", "", "").Code)
	require.Equal(t, http.StatusUnauthorized, get(r, "/api/admin/settings", "forged", "").Code)
}

func TestNewRouter_HealthAndAuthBoundary(t *testing.T) {
	r := NewRouter(zerolog.Nop(), &handler.HTTP{}, tokenAuth{}, RouterConfig{
		DashboardPath:  "/dashboard",
		AllowedOrigins: []string{"http://localhost:5173"},
	})

	require.Equal(t, http.StatusOK, get(r, "/health", "", "").Code)
	require.Equal(t, http.StatusUnauthorized, get(r, "/api/playlists", "", "").Code)
	require.Equal(t, http.StatusForbidden, get(r, "/api/admin/analytics", "user", "").Code)
	require.Equal(t, http.StatusBadRequest, get(r, "/api/admin/analytics?from=yesterday", "admin", "").Code)
}
