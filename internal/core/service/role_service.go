package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/aquaflow/servicecrm/internal/core/domain"
	"github.com/aquaflow/servicecrm/internal/core/ports"
)

type RoleService struct {
	roles ports.RoleRepository
	users ports.UserRepository
	log   zerolog.Logger
	now   func() time.Time
}

func NewRoleService(roles ports.RoleRepository, users ports.UserRepository, log zerolog.Logger) *RoleService {
	return &RoleService{roles: roles, users: users, log: log, now: time.Now}
}

func (s *RoleService) List(ctx context.Context) ([]domain.Role, error) {
	rs, err := s.roles.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	return nonNil(rs), nil
}

// Create adds an unprotected role. Only the bootstrap seed creates
// protected roles.
func (s *RoleService) Create(ctx context.Context, r domain.Role) (*domain.Role, error) {
	r.Name = strings.TrimSpace(r.Name)
	if err := r.Validate(); err != nil {
		return nil, err
	}
	r.RoleID = uuid.NewString()
	r.Protected = false
	r.CreatedAt = s.now().UTC()

	if err := s.roles.Create(ctx, &r); err != nil {
		return nil, fmt.Errorf("create role: %w", err)
	}
	s.log.Info().Str("role_id", r.RoleID).Str("kind", string(r.Kind)).Msg("role created")
	return &r, nil
}

// Update renames a role or changes its kind. A protected role keeps its kind.
func (s *RoleService) Update(ctx context.Context, r domain.Role) (*domain.Role, error) {
	r.Name = strings.TrimSpace(r.Name)
	existing, err := s.roles.Get(ctx, r.RoleID)
	if err != nil {
		return nil, fmt.Errorf("update role: %w", err)
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	if existing.Protected && r.Kind != existing.Kind {
		s.log.Warn().Str("role_id", r.RoleID).Msg("protected role kind change rejected")
		return nil, fmt.Errorf("update role: %w", domain.ErrProtectedRole)
	}
	r.Protected = existing.Protected
	r.CreatedAt = existing.CreatedAt

	if err := s.roles.Update(ctx, &r); err != nil {
		return nil, fmt.Errorf("update role: %w", err)
	}
	s.log.Info().Str("role_id", r.RoleID).Msg("role updated")
	return &r, nil
}

// Delete removes an unprotected role that no user holds.
func (s *RoleService) Delete(ctx context.Context, roleID string) error {
	existing, err := s.roles.Get(ctx, roleID)
	if err != nil {
		return fmt.Errorf("delete role: %w", err)
	}
	if existing.Protected {
		s.log.Warn().Str("role_id", roleID).Msg("protected role delete rejected")
		return fmt.Errorf("delete role: %w", domain.ErrProtectedRole)
	}
	n, err := s.users.CountByRole(ctx, roleID)
	if err != nil {
		return fmt.Errorf("delete role: %w", err)
	}
	if n > 0 {
		s.log.Warn().Str("role_id", roleID).Int64("users", n).Msg("role delete rejected")
		return fmt.Errorf("delete role: %w", domain.ErrHasDependents)
	}

	if err := s.roles.Delete(ctx, roleID); err != nil {
		return fmt.Errorf("delete role: %w", err)
	}
	s.log.Info().Str("role_id", roleID).Msg("role deleted")
	return nil
}
