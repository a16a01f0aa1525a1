package repository

import (
	"context"
	"github.com/google/uuid"
	"gorm.io/gorm/clause"
	"strings"
	"video-portal/entities"
)

type UserRepository interface {
	CreateUser(ctx context.Context, user *entities.User) error
	SaveUser(ctx context.Context, user *entities.User) error
	FindUserById(ctx context.Context, id uuid.UUID) (*entities.User, error)
	FindUserByEmail(ctx context.Context, email string) (*entities.User, error)
	FindUserByExternalSubject(ctx context.Context, subject string) (*entities.User, error)
	ListUsers(ctx context.Context) ([]*entities.User, error)
	IsAdmin(ctx context.Context, email string) (bool, error)
	AddAdmin(ctx context.Context, email string) error
}

func (r *repo) CreateUser(ctx context.Context, user *entities.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *repo) SaveUser(ctx context.Context, user *entities.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

func (r *repo) FindUserById(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	user := &entities.User{}
	err := r.db.WithContext(ctx).First(user, "id = ?", id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return user, nil
}

func (r *repo) FindUserByEmail(ctx context.Context, email string) (*entities.User, error) {
	user := &entities.User{}
	err := r.db.WithContext(ctx).First(user, "email = ?", strings.ToLower(strings.TrimSpace(email))).Error
	if err != nil {
		return nil, notFound(err)
	}
	return user, nil
}

func (r *repo) FindUserByExternalSubject(ctx context.Context, subject string) (*entities.User, error) {
	user := &entities.User{}
	err := r.db.WithContext(ctx).First(user, "external_subject = ?", subject).Error
	if err != nil {
		return nil, notFound(err)
	}
	return user, nil
}

func (r *repo) ListUsers(ctx context.Context) ([]*entities.User, error) {
	var users []*entities.User
	err := r.db.WithContext(ctx).Order("created_at ASC").Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

func (r *repo) IsAdmin(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.Admin{}).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repo) AddAdmin(ctx context.Context, email string) error {
	admin := &entities.Admin{Email: strings.ToLower(strings.TrimSpace(email))}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "email"}}, DoNothing: true}).
		Create(admin).Error
}
