package handler

import (
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"video-portal/dto"
	"video-portal/repository"
	"video-portal/service"
)

func (h *HTTP) ListVideos(c *gin.Context) {
	videos, err := h.Catalog.List(c.Request.Context(), repository.VideoFilter{
		Category: c.Query("category"),
		Query:    c.Query("q"),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, videos)
}

func (h *HTTP) GetVideo(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	video, err := h.Catalog.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, video)
}

func (h *HTTP) ListCategories(c *gin.Context) {
	categories, err := h.Catalog.Categories(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

func openPart(header *multipart.FileHeader) (service.UploadFile, func(), error) {
	f, err := header.Open()
	if err != nil {
		return service.UploadFile{}, nil, err
	}
	return service.UploadFile{
		Name:        header.Filename,
		Size:        header.Size,
		ContentType: header.Header.Get("Content-Type"),
		Reader:      f,
	}, func() { _ = f.Close() }, nil
}

func (h *HTTP) UploadVideo(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, dto.ErrorResponse{Error: "missing required field: file", Details: err.Error()})
		return
	}
	videoFile, closeVideo, err := openPart(fileHeader)
	if err != nil {
		writeError(c, err)
		return
	}
	defer closeVideo()

	in := service.UploadInput{
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
		Category:    c.PostForm("category"),
		Tags:        strings.Split(c.PostForm("tags"), ","),
		Duration:    c.PostForm("duration"),
		Video:       videoFile,
	}
	if thumbHeader, err := c.FormFile("thumbnail"); err == nil {
		thumb, closeThumb, err := openPart(thumbHeader)
		if err != nil {
			writeError(c, err)
			return
		}
		defer closeThumb()
		in.Thumbnail = thumb
	}

	video, job, err := h.Catalog.Upload(c.Request.Context(), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"video": video, "job": job})
}

func (h *HTTP) UpdateVideo(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.VideoUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	video, err := h.Catalog.Update(c.Request.Context(), id, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, video)
}

func (h *HTTP) DeleteVideo(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.Catalog.Delete(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *HTTP) GetJob(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	job, err := h.Catalog.Job(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}
