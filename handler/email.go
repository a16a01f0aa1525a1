package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"video-portal/dto"
)

func (h *HTTP) SendEmail(c *gin.Context) {
	var req dto.SendEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	id, err := h.Mail.SendEmail(c.Request.Context(), req.To, req.Subject, req.Html)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.SendEmailResponse{Success: true, MessageId: id})
}

// SendPlaylistEmail serves the older {email, playlistLink} payload.
func (h *HTTP) SendPlaylistEmail(c *gin.Context) {
	var req dto.SendPlaylistEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	id, err := h.Mail.SendPlaylistLink(c.Request.Context(), req.Email, req.PlaylistLink)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.SendEmailResponse{Success: true, MessageId: id})
}
