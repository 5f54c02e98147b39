package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/aquaflow/servicecrm/internal/core/domain"
	"github.com/aquaflow/servicecrm/internal/core/ports"
)

// tokenClaims is the JWT payload. The token id doubles as the session key.
type tokenClaims struct {
	Email    string `json:"email"`
	RoleKind string `json:"role_kind"`
	jwt.RegisteredClaims
}

// AuthService implements login, logout and token verification.
type AuthService struct {
	users     ports.UserRepository
	sessions  ports.SessionStore
	jwtSecret []byte
	tokenTTL  time.Duration
	log       zerolog.Logger
	now       func() time.Time
}

func NewAuthService(users ports.UserRepository, sessions ports.SessionStore, jwtSecret string, tokenTTL time.Duration, log zerolog.Logger) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthService{
		users:     users,
		sessions:  sessions,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
		log:       log,
		now:       time.Now,
	}
}

// Login checks the credentials and opens a session. Unknown emails, inactive
// accounts and wrong passwords all fail with ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login: %w", err)
	}
	if !user.IsActive {
		return nil, domain.ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}

	now := s.now().UTC()
	p := domain.Principal{
		UserID:    user.UserID,
		Email:     user.Email,
		SessionID: uuid.NewString(),
		ExpiresAt: now.Add(s.tokenTTL),
	}
	if user.Role != nil {
		p.RoleKind = user.Role.Kind
	}

	token, err := s.generateToken(p, now)
	if err != nil {
		return nil, fmt.Errorf("login: sign token: %w", err)
	}
	if err := s.sessions.Save(ctx, p, s.tokenTTL); err != nil {
		return nil, fmt.Errorf("login: save session: %w", err)
	}

	s.log.Info().Str("user_id", user.UserID).Str("role_kind", string(p.RoleKind)).Msg("user logged in")
	return &ports.LoginResult{Token: token, ExpiresAt: p.ExpiresAt, User: user}, nil
}

// Logout revokes the caller's session. The token stays signed but is no
// longer accepted.
func (s *AuthService) Logout(ctx context.Context, p domain.Principal) error {
	if err := s.sessions.Delete(ctx, p.SessionID); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	s.log.Info().Str("user_id", p.UserID).Msg("user logged out")
	return nil
}

// Authenticate verifies the token signature and expiry, then resolves the
// live session it names.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.Principal, error) {
	claims := &tokenClaims{}
	tkn, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return s.jwtSecret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !tkn.Valid {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrSessionExpired
		}
		return nil, domain.ErrInvalidCredentials
	}
	if claims.ID == "" || claims.Subject == "" {
		return nil, domain.ErrInvalidCredentials
	}

	p, err := s.sessions.Get(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if p.UserID != claims.Subject {
		return nil, domain.ErrInvalidCredentials
	}
	return p, nil
}

// Me returns the user behind the principal.
func (s *AuthService) Me(ctx context.Context, p domain.Principal) (*domain.User, error) {
	u, err := s.users.Get(ctx, p.UserID)
	if err != nil {
		return nil, fmt.Errorf("me: %w", err)
	}
	return u, nil
}

func (s *AuthService) generateToken(p domain.Principal, issuedAt time.Time) (string, error) {
	claims := tokenClaims{
		Email:    p.Email,
		RoleKind: string(p.RoleKind),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.UserID,
			ID:        p.SessionID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(p.ExpiresAt),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.jwtSecret)
}
