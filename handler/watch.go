package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"video-portal/dto"
	"video-portal/entities"
)

// Watch writes never fail the request: a lost event is logged by the service
// and reported as persisted=false so playback carries on.
func accepted(c *gin.Context, event *entities.WatchEvent, err error) {
	if err != nil {
		c.JSON(http.StatusAccepted, dto.WatchEventResponse{Persisted: false})
		return
	}
	c.JSON(http.StatusAccepted, dto.WatchEventResponse{Persisted: true, Event: event})
}

func (h *HTTP) RecordPlay(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	var req dto.RecordPlayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	event, err := h.Watch.RecordPlay(c.Request.Context(), sess.UserID, req.VideoId, req.IsRewatch)
	accepted(c, event, err)
}

func (h *HTTP) RecordProgress(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	var req dto.RecordProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	event, err := h.Watch.RecordProgress(c.Request.Context(), sess.UserID, req.VideoId, req.Progress, req.Elapsed)
	accepted(c, event, err)
}

func (h *HTTP) RecordCompletion(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	var req dto.RecordCompletionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	event, err := h.Watch.RecordCompletion(c.Request.Context(), sess.UserID, req.VideoId, req.TotalElapsed)
	accepted(c, event, err)
}

func (h *HTTP) ListWatchEvents(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	events, err := h.Watch.ListByUser(c.Request.Context(), sess.UserID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, events)
}
