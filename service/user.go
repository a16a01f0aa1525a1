package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"video-portal/dto"
	"video-portal/entities"
	"video-portal/repository"
)

type UserService interface {
	Profile(ctx context.Context, userID uuid.UUID) (*entities.User, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, req dto.ProfileUpdateRequest) (*entities.User, error)
	List(ctx context.Context) ([]*entities.User, error)
}

type userService struct {
	repo repository.UserRepository
}

func NewUserService(repo repository.UserRepository) UserService {
	return &userService{repo: repo}
}

func (s *userService) Profile(ctx context.Context, userID uuid.UUID) (*entities.User, error) {
	return s.repo.FindUserById(ctx, userID)
}

func (s *userService) UpdateProfile(ctx context.Context, userID uuid.UUID, req dto.ProfileUpdateRequest) (*entities.User, error) {
	user, err := s.repo.FindUserById(ctx, userID)
	if err != nil {
		return nil, err
	}
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = strings.TrimSpace(*v)
		}
	}
	set(&user.Name, req.Name)
	set(&user.CompanyName, req.CompanyName)
	set(&user.Phone, req.Phone)
	set(&user.PrimaryCategory, req.PrimaryCategory)
	set(&user.SecondaryCategory, req.SecondaryCategory)

	if err := s.repo.SaveUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) List(ctx context.Context) ([]*entities.User, error) {
	return s.repo.ListUsers(ctx)
}
