package dto

import (
	"github.com/google/uuid"
	"time"
	"video-portal/entities"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

type SignUpRequest struct {
	Name              string `json:"name" binding:"required"`
	Email             string `json:"email" binding:"required,email"`
	Password          string `json:"password" binding:"required,min=6"`
	CompanyName       string `json:"companyName"`
	Phone             string `json:"phone"`
	PrimaryCategory   string `json:"primaryCategory"`
	SecondaryCategory string `json:"secondaryCategory"`
}

type SignInRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	Token     string         `json:"token"`
	ExpiresAt time.Time      `json:"expiresAt"`
	User      *entities.User `json:"user"`
	IsAdmin   bool           `json:"isAdmin"`
}

type PasswordResetRequest struct {
	Email string `json:"email" binding:"required"`
}

type PasswordResetConfirmRequest struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required,min=6"`
}

type ProfileUpdateRequest struct {
	Name              *string `json:"name"`
	CompanyName       *string `json:"companyName"`
	Phone             *string `json:"phone"`
	PrimaryCategory   *string `json:"primaryCategory"`
	SecondaryCategory *string `json:"secondaryCategory"`
}

type VideoUpdateRequest struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Category    *string  `json:"category"`
	Tags        []string `json:"tags"`
	Duration    *string  `json:"duration"`
}

type CreatePlaylistRequest struct {
	Name     string      `json:"name"`
	VideoIds []uuid.UUID `json:"videoIds" binding:"required,min=1"`
}

type PlaylistVideo struct {
	Position int                  `json:"position"`
	Video    *entities.Video      `json:"video"`
	State    string               `json:"state"`
	Event    *entities.WatchEvent `json:"event,omitempty"`
}

type PlaylistResponse struct {
	ID        uuid.UUID       `json:"id"`
	Name      string          `json:"name"`
	CreatedAt time.Time       `json:"createdAt"`
	Videos    []PlaylistVideo `json:"videos"`
	Completed int             `json:"completed"`
	Anomalies []uuid.UUID     `json:"anomalies,omitempty"`
}

type RecordPlayRequest struct {
	VideoId   uuid.UUID `json:"videoId" binding:"required"`
	IsRewatch bool      `json:"isRewatch"`
}

type RecordProgressRequest struct {
	VideoId  uuid.UUID `json:"videoId" binding:"required"`
	Progress float64   `json:"progress"`
	Elapsed  float64   `json:"elapsed"`
}

type RecordCompletionRequest struct {
	VideoId      uuid.UUID `json:"videoId" binding:"required"`
	TotalElapsed float64   `json:"totalElapsed"`
}

type WatchEventResponse struct {
	Persisted bool                 `json:"persisted"`
	Event     *entities.WatchEvent `json:"event,omitempty"`
}

type FeedbackRequest struct {
	Feedback       string `json:"feedback" binding:"required"`
	Recommendation string `json:"recommendation"`
	Type           string `json:"type"`
}

type SendEmailRequest struct {
	To      string `json:"to" binding:"required"`
	Subject string `json:"subject" binding:"required"`
	Html    string `json:"html" binding:"required"`
}

type SendPlaylistEmailRequest struct {
	Email        string `json:"email" binding:"required"`
	PlaylistLink string `json:"playlistLink" binding:"required"`
}

type SendEmailResponse struct {
	Success   bool   `json:"success"`
	MessageId string `json:"messageId"`
}
