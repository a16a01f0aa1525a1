// Package session carries the signed-in user through a request context.
package session

import (
	"context"
	"github.com/google/uuid"
	"time"
)

type Session struct {
	UserID    uuid.UUID
	Email     string
	IsAdmin   bool
	TokenID   string
	ExpiresAt time.Time
}

type ctxKey struct{}

func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(*Session)
	return s, ok && s != nil
}
