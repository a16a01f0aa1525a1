package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"video-portal/constant"
	"video-portal/dto"
	"video-portal/entities"
	"video-portal/pkg/session"
	"video-portal/repository"
)

const feedbackListLimit = 500

type FeedbackService interface {
	Submit(ctx context.Context, sess *session.Session, req dto.FeedbackRequest) (*entities.Feedback, error)
	List(ctx context.Context) ([]*entities.Feedback, error)
}

type feedbackService struct {
	repo repository.FeedbackRepository
}

func NewFeedbackService(repo repository.FeedbackRepository) FeedbackService {
	return &feedbackService{repo: repo}
}

func (s *feedbackService) Submit(ctx context.Context, sess *session.Session, req dto.FeedbackRequest) (*entities.Feedback, error) {
	text := strings.TrimSpace(req.Feedback)
	if text == "" {
		return nil, fmt.Errorf("%w: feedback is required", ErrInvalidInput)
	}
	kind := constant.FeedbackType(strings.ToLower(strings.TrimSpace(req.Type)))
	if kind == "" {
		kind = constant.FeedbackTypeGeneral
	}
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: unknown feedback type %q", ErrInvalidInput, req.Type)
	}

	feedback := &entities.Feedback{
		UserID:         sess.UserID,
		UserEmail:      sess.Email,
		Feedback:       text,
		Recommendation: strings.TrimSpace(req.Recommendation),
		Type:           kind,
	}
	if err := s.repo.CreateFeedback(ctx, feedback); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to save feedback")
		return nil, err
	}
	return feedback, nil
}

func (s *feedbackService) List(ctx context.Context) ([]*entities.Feedback, error) {
	return s.repo.ListFeedback(ctx, feedbackListLimit)
}

type SettingsService interface {
	Get(ctx context.Context) (map[string]string, error)
	Update(ctx context.Context, values map[string]string) (map[string]string, error)
}

type settingsService struct {
	repo repository.SettingRepository
}

func NewSettingsService(repo repository.SettingRepository) SettingsService {
	return &settingsService{repo: repo}
}

func (s *settingsService) Get(ctx context.Context) (map[string]string, error) {
	settings, err := s.repo.ListSettings(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(settings))
	for _, st := range settings {
		out[st.Key] = st.Value
	}
	return out, nil
}

func (s *settingsService) Update(ctx context.Context, values map[string]string) (map[string]string, error) {
	clean := make(map[string]string, len(values))
	for k, v := range values {
		k = strings.TrimSpace(k)
		if k == "" {
			return nil, fmt.Errorf("%w: empty setting key", ErrInvalidInput)
		}
		clean[k] = v
	}
	if len(clean) > 0 {
		if err := s.repo.UpsertSettings(ctx, clean); err != nil {
			return nil, err
		}
	}
	return s.Get(ctx)
}
