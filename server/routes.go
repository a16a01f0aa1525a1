package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"video-portal/handler"
	"video-portal/service"
)

type RouterConfig struct {
	DashboardPath  string
	AllowedOrigins []string
}

func NewRouter(logger zerolog.Logger, h *handler.HTTP, auth service.AuthService, cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(logger))
	if len(cfg.AllowedOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Authorization", "Content-Type", "Accept"},
			AllowCredentials: true,
		}))
	}
	addHealth(r)

	api := r.Group("/api")
	api.POST("/auth/signup", h.SignUp)
	api.POST("/auth/signin", h.SignIn)
	api.POST("/auth/password-reset", h.RequestPasswordReset)
	api.POST("/auth/password-reset/confirm", h.ConfirmPasswordReset)

	user := api.Group("", requireSession(auth))
	user.POST("/auth/signout", h.SignOut)

	user.GET("/videos", h.ListVideos)
	user.GET("/videos/:id", h.GetVideo)
	user.GET("/categories", h.ListCategories)

	user.POST("/playlists", h.CreatePlaylist)
	user.GET("/playlists", h.ListPlaylists)
	user.GET("/playlists/:id", h.GetPlaylist)
	user.GET("/playlists/:id/videos/:videoId/playable", h.CanPlayVideo)
	user.DELETE("/playlists/:id/videos/:videoId", h.RemovePlaylistVideo)
	user.DELETE("/playlists/:id", h.DeletePlaylist)

	user.POST("/watch/play", h.RecordPlay)
	user.POST("/watch/progress", h.RecordProgress)
	user.POST("/watch/complete", h.RecordCompletion)
	user.GET("/watch/events", h.ListWatchEvents)

	user.POST("/feedback", h.SubmitFeedback)
	user.GET("/me", h.Me)
	user.PUT("/me", h.UpdateMe)
	user.GET("/me/analytics", h.MyAnalytics)

	user.POST("/send-email", h.SendEmail)
	user.POST("/send-playlist-email", h.SendPlaylistEmail)

	admin := user.Group("/admin", requireAdmin(cfg.DashboardPath))
	admin.POST("/videos", h.UploadVideo)
	admin.PUT("/videos/:id", h.UpdateVideo)
	admin.DELETE("/videos/:id", h.DeleteVideo)
	admin.GET("/jobs/:id", h.GetJob)
	admin.GET("/feedback", h.ListFeedback)
	admin.GET("/users", h.ListUsers)
	admin.GET("/settings", h.GetSettings)
	admin.PUT("/settings", h.UpdateSettings)
	admin.GET("/analytics", h.AnalyticsReport)
	admin.GET("/analytics/users/:id", h.UserAnalytics)

	return r
}

func addHealth(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})
}
