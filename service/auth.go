package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"video-portal/dto"
	"video-portal/entities"
	"video-portal/pkg/session"
	"video-portal/repository"
)

const (
	MaxSignInAttempts = 5
	SignInWindow      = 15 * time.Minute
	ResetTokenTTL     = time.Hour
)

type AuthService interface {
	SignUp(ctx context.Context, req dto.SignUpRequest) (*dto.AuthResponse, error)
	SignIn(ctx context.Context, email, password string) (*dto.AuthResponse, error)
	SignOut(ctx context.Context, sess *session.Session) error
	Authenticate(ctx context.Context, token string) (*session.Session, error)
	RequestPasswordReset(ctx context.Context, email string) error
	ConfirmPasswordReset(ctx context.Context, token, password string) error
}

type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
	// ResetURL is the front-end page that receives the reset token.
	ResetURL string
}

type authService struct {
	repo     repository.Repository
	store    repository.SessionStore
	mail     MailService
	external IdentityVerifier
	cfg      AuthConfig
	now      func() time.Time
}

type tokenClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// NewAuthService builds the auth service. external may be nil when no OIDC
// provider is configured.
func NewAuthService(repo repository.Repository, store repository.SessionStore, mail MailService, external IdentityVerifier, cfg AuthConfig) AuthService {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 24 * time.Hour
	}
	return &authService{
		repo:     repo,
		store:    store,
		mail:     mail,
		external: external,
		cfg:      cfg,
		now:      time.Now,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *authService) SignUp(ctx context.Context, req dto.SignUpRequest) (*dto.AuthResponse, error) {
	email := normalizeEmail(req.Email)
	if _, err := s.repo.FindUserByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := &entities.User{
		Name:              strings.TrimSpace(req.Name),
		Email:             email,
		PasswordHash:      string(hash),
		CompanyName:       strings.TrimSpace(req.CompanyName),
		Phone:             strings.TrimSpace(req.Phone),
		PrimaryCategory:   req.PrimaryCategory,
		SecondaryCategory: req.SecondaryCategory,
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to create user")
		return nil, err
	}
	zerolog.Ctx(ctx).Info().Str("user_id", user.ID.String()).Msg("user signed up")
	return s.issue(ctx, user)
}

func (s *authService) SignIn(ctx context.Context, email, password string) (*dto.AuthResponse, error) {
	email = normalizeEmail(email)

	attempts, err := s.store.LoginAttempts(ctx, email)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("failed to read sign-in attempts")
	}
	if attempts >= MaxSignInAttempts {
		return nil, ErrTooManyAttempts
	}

	user, err := s.repo.FindUserByEmail(ctx, email)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if user == nil || user.PasswordHash == "" ||
		bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		if _, err := s.store.IncrementLoginAttempts(ctx, email, SignInWindow); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Msg("failed to count sign-in attempt")
		}
		return nil, ErrInvalidCredentials
	}

	if err := s.store.ResetLoginAttempts(ctx, email); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("failed to reset sign-in attempts")
	}
	return s.issue(ctx, user)
}

func (s *authService) SignOut(ctx context.Context, sess *session.Session) error {
	if sess == nil || sess.TokenID == "" {
		return nil
	}
	return s.store.RevokeToken(ctx, sess.TokenID, time.Until(sess.ExpiresAt))
}

func (s *authService) Authenticate(ctx context.Context, token string) (*session.Session, error) {
	if token == "" {
		return nil, ErrUnauthorized
	}

	claims := &tokenClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return []byte(s.cfg.JWTSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		if s.external != nil {
			return s.authenticateExternal(ctx, token)
		}
		return nil, fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}

	revoked, err := s.store.IsTokenRevoked(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, ErrUnauthorized
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, ErrUnauthorized
	}
	sess := &session.Session{UserID: userID, Email: claims.Email, TokenID: claims.ID}
	if claims.ExpiresAt != nil {
		sess.ExpiresAt = claims.ExpiresAt.Time
	}
	if sess.IsAdmin, err = s.repo.IsAdmin(ctx, claims.Email); err != nil {
		return nil, err
	}
	return sess, nil
}

// authenticateExternal accepts an ID token from the configured provider and
// provisions the matching user on first sight.
func (s *authService) authenticateExternal(ctx context.Context, token string) (*session.Session, error) {
	identity, err := s.external.Verify(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}
	if identity.Subject == "" || identity.Email == "" || !identity.EmailVerified {
		return nil, ErrUnauthorized
	}

	user, err := s.repo.FindUserByExternalSubject(ctx, identity.Subject)
	if errors.Is(err, repository.ErrNotFound) {
		user, err = s.provision(ctx, identity)
	}
	if err != nil {
		return nil, err
	}

	isAdmin, err := s.repo.IsAdmin(ctx, user.Email)
	if err != nil {
		return nil, err
	}
	return &session.Session{UserID: user.ID, Email: user.Email, IsAdmin: isAdmin}, nil
}

// provision creates a user for an unseen external subject. An existing local
// account with the same email is never linked automatically.
func (s *authService) provision(ctx context.Context, identity *ExternalIdentity) (*entities.User, error) {
	subject := identity.Subject
	user, err := s.repo.FindUserByEmail(ctx, identity.Email)
	switch {
	case err == nil:
		zerolog.Ctx(ctx).Warn().Str("user_id", user.ID.String()).Msg("external identity matches an existing account, not linking")
		return nil, fmt.Errorf("%w: account already exists for this email", ErrUnauthorized)
	case errors.Is(err, repository.ErrNotFound):
		user = &entities.User{Name: identity.Name, Email: identity.Email, ExternalSubject: &subject}
		if err := s.repo.CreateUser(ctx, user); err != nil {
			return nil, err
		}
		zerolog.Ctx(ctx).Info().Str("user_id", user.ID.String()).Msg("provisioned external user")
	default:
		return nil, err
	}
	return user, nil
}

func (s *authService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.repo.FindUserByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		zerolog.Ctx(ctx).Info().Msg("password reset requested for unknown email")
		return nil
	}
	if err != nil {
		return err
	}

	token := uuid.NewString()
	if err := s.store.SaveResetToken(ctx, token, user.ID, ResetTokenTTL); err != nil {
		return err
	}
	link := s.cfg.ResetURL + "?token=" + url.QueryEscape(token)
	if _, err := s.mail.SendPasswordReset(ctx, user.Email, link); err != nil {
		return err
	}
	return nil
}

func (s *authService) ConfirmPasswordReset(ctx context.Context, token, password string) error {
	userID, err := s.store.ConsumeResetToken(ctx, token)
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%w: reset link is invalid or expired", ErrInvalidInput)
	}
	if err != nil {
		return err
	}

	user, err := s.repo.FindUserById(ctx, userID)
	if err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.PasswordHash = string(hash)
	if err := s.repo.SaveUser(ctx, user); err != nil {
		return err
	}
	if err := s.store.ResetLoginAttempts(ctx, user.Email); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("failed to reset sign-in attempts")
	}
	return nil
}

func (s *authService) issue(ctx context.Context, user *entities.User) (*dto.AuthResponse, error) {
	now := s.now()
	expiresAt := now.Add(s.cfg.TokenTTL)
	claims := tokenClaims{
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return nil, err
	}
	isAdmin, err := s.repo.IsAdmin(ctx, user.Email)
	if err != nil {
		return nil, err
	}
	return &dto.AuthResponse{Token: signed, ExpiresAt: expiresAt, User: user, IsAdmin: isAdmin}, nil
}
