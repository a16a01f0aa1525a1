package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"video-portal/dto"
	"video-portal/pkg/session"
	"video-portal/service"
)

// HTTP holds the services behind the JSON API.
type HTTP struct {
	Auth      service.AuthService
	Catalog   service.CatalogService
	Playlists service.PlaylistService
	Watch     service.WatchEventService
	Feedback  service.FeedbackService
	Settings  service.SettingsService
	Users     service.UserService
	Analytics service.AnalyticsService
	Mail      service.MailService
}

// currentSession returns the caller's session, answering 401 when there is none.
func currentSession(c *gin.Context) (*session.Session, bool) {
	sess, ok := session.FromContext(c.Request.Context())
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{Error: service.ErrUnauthorized.Error()})
		return nil, false
	}
	return sess, true
}

func pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid " + name, Details: err.Error()})
		return uuid.Nil, false
	}
	return id, true
}
