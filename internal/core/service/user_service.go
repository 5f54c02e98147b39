package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/aquaflow/servicecrm/internal/core/domain"
	"github.com/aquaflow/servicecrm/internal/core/ports"
)

type UserService struct {
	users ports.UserRepository
	roles ports.RoleRepository
	log   zerolog.Logger
	now   func() time.Time
}

func NewUserService(users ports.UserRepository, roles ports.RoleRepository, log zerolog.Logger) *UserService {
	return &UserService{users: users, roles: roles, log: log, now: time.Now}
}

func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	us, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return nonNil(us), nil
}

func (s *UserService) Get(ctx context.Context, userID string) (*domain.User, error) {
	u, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (s *UserService) Create(ctx context.Context, in ports.UserInput) (*domain.User, error) {
	u := domain.User{
		Email:    normalizeEmail(in.Email),
		FullName: strings.TrimSpace(in.FullName),
		Phone:    strings.TrimSpace(in.Phone),
		RoleID:   strings.TrimSpace(in.RoleID),
		IsActive: in.IsActive,
	}
	if err := validateUser(&u, in.Password, true); err != nil {
		return nil, err
	}

	role, err := s.roles.Get(ctx, u.RoleID)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("create user: hash password: %w", err)
	}

	now := s.now().UTC()
	u.UserID = uuid.NewString()
	u.PasswordHash = string(hash)
	u.CreatedAt = now
	u.UpdatedAt = now

	if err := s.users.Create(ctx, &u); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	u.Role = role

	s.log.Info().Str("user_id", u.UserID).Str("role_kind", string(role.Kind)).Msg("user created")
	return &u, nil
}

// Update replaces the user's profile and role. The password hash changes
// only when a new password is supplied.
func (s *UserService) Update(ctx context.Context, userID string, in ports.UserInput) (*domain.User, error) {
	existing, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	u := *existing
	u.Email = normalizeEmail(in.Email)
	u.FullName = strings.TrimSpace(in.FullName)
	u.Phone = strings.TrimSpace(in.Phone)
	u.RoleID = strings.TrimSpace(in.RoleID)
	u.IsActive = in.IsActive
	if err := validateUser(&u, in.Password, false); err != nil {
		return nil, err
	}

	role, err := s.roles.Get(ctx, u.RoleID)
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	if in.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("update user: hash password: %w", err)
		}
		u.PasswordHash = string(hash)
	}
	u.UpdatedAt = s.now().UTC()
	u.Role = role

	if err := s.users.Update(ctx, &u); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	s.log.Info().Str("user_id", u.UserID).Msg("user updated")
	return &u, nil
}

func (s *UserService) Delete(ctx context.Context, userID string) error {
	if _, err := s.users.Get(ctx, userID); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if err := s.users.Delete(ctx, userID); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	s.log.Info().Str("user_id", userID).Msg("user deleted")
	return nil
}

// Eligible lists the active users whose role grants c, e.g. the installer and
// technician pickers.
func (s *UserService) Eligible(ctx context.Context, c domain.Capability) ([]domain.User, error) {
	if !c.Valid() {
		ve := domain.NewValidationError()
		ve.Add("capability", "must be one of: administer install_assets perform_service")
		return nil, ve
	}
	all, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("eligible users: %w", err)
	}
	out := make([]domain.User, 0, len(all))
	for _, u := range all {
		if u.Can(c) {
			out = append(out, u)
		}
	}
	return out, nil
}

// Bootstrap seeds a protected manager role and an administrator when the
// store holds no users. It reports whether anything was created.
func (s *UserService) Bootstrap(ctx context.Context, email, password string) (bool, error) {
	n, err := s.users.Count(ctx)
	if err != nil {
		return false, fmt.Errorf("bootstrap: %w", err)
	}
	if n > 0 {
		return false, nil
	}

	now := s.now().UTC()
	role := domain.Role{
		RoleID:    uuid.NewString(),
		Name:      "Administrator",
		Kind:      domain.RoleManager,
		Protected: true,
		CreatedAt: now,
	}
	if err := s.roles.Create(ctx, &role); err != nil {
		return false, fmt.Errorf("bootstrap: create role: %w", err)
	}

	if _, err := s.Create(ctx, ports.UserInput{
		Email:    email,
		FullName: "Administrator",
		RoleID:   role.RoleID,
		IsActive: true,
		Password: password,
	}); err != nil {
		return false, fmt.Errorf("bootstrap: %w", err)
	}

	s.log.Info().Str("email", normalizeEmail(email)).Msg("administrator seeded")
	return true, nil
}

func validateUser(u *domain.User, password string, requirePassword bool) error {
	ve := domain.NewValidationError()
	var fields *domain.ValidationError
	if errors.As(u.Validate(), &fields) {
		for field, msg := range fields.Fields {
			ve.Add(field, msg)
		}
	}
	switch {
	case password == "" && requirePassword:
		ve.Add("password", "is required")
	case password != "" && len(password) < domain.MinPasswordLength:
		ve.Add("password", fmt.Sprintf("must be at least %d characters", domain.MinPasswordLength))
	}
	return ve.OrNil()
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
