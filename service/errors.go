package service

import (
	"errors"
	"video-portal/repository"
)

var (
	ErrNotFound           = repository.ErrNotFound
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidInput       = errors.New("invalid input")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrTooManyAttempts    = errors.New("too many attempts, try again later")
	ErrEmailTaken         = errors.New("email already registered")
	ErrUploadFailed       = errors.New("upload failed, please try again")
	ErrMailFailed         = errors.New("failed to send email")
)
