package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"video-portal/dto"
)

func (h *HTTP) SubmitFeedback(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	var req dto.FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	feedback, err := h.Feedback.Submit(c.Request.Context(), sess, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, feedback)
}

func (h *HTTP) ListFeedback(c *gin.Context) {
	feedback, err := h.Feedback.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, feedback)
}

func (h *HTTP) Me(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	user, err := h.Users.Profile(c.Request.Context(), sess.UserID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user, "isAdmin": sess.IsAdmin})
}

func (h *HTTP) UpdateMe(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	var req dto.ProfileUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	user, err := h.Users.UpdateProfile(c.Request.Context(), sess.UserID, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *HTTP) ListUsers(c *gin.Context) {
	users, err := h.Users.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *HTTP) GetSettings(c *gin.Context) {
	settings, err := h.Settings.Get(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

func (h *HTTP) UpdateSettings(c *gin.Context) {
	var values map[string]string
	if err := c.ShouldBindJSON(&values); err != nil {
		writeBindError(c, err)
		return
	}
	settings, err := h.Settings.Update(c.Request.Context(), values)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}
