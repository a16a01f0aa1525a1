package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"video-portal/dto"
)

func (h *HTTP) CreatePlaylist(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	var req dto.CreatePlaylistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	playlist, err := h.Playlists.Create(c.Request.Context(), sess.UserID, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, playlist)
}

func (h *HTTP) ListPlaylists(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	playlists, err := h.Playlists.List(c.Request.Context(), sess.UserID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, playlists)
}

func (h *HTTP) GetPlaylist(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	playlist, err := h.Playlists.Get(c.Request.Context(), sess.UserID, id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, playlist)
}

func (h *HTTP) RemovePlaylistVideo(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	videoID, ok := pathID(c, "videoId")
	if !ok {
		return
	}
	if err := h.Playlists.RemoveVideo(c.Request.Context(), sess.UserID, id, videoID); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// CanPlayVideo answers whether the caller may start the video in playlist order.
func (h *HTTP) CanPlayVideo(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	videoID, ok := pathID(c, "videoId")
	if !ok {
		return
	}
	playable, err := h.Playlists.CanPlay(c.Request.Context(), sess.UserID, id, videoID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"playable": playable})
}

func (h *HTTP) DeletePlaylist(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.Playlists.Delete(c.Request.Context(), sess.UserID, id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
