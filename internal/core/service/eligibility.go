package service

import (
	"context"
	"fmt"

	"github.com/aquaflow/servicecrm/internal/core/domain"
	"github.com/aquaflow/servicecrm/internal/core/ports"
)

// requireCapability fails with ErrTechnicianIneligible unless userID names an
// active user whose role grants c.
func requireCapability(ctx context.Context, users ports.UserRepository, userID string, c domain.Capability) error {
	u, err := users.Get(ctx, userID)
	if err != nil {
		return err
	}
	if !u.Can(c) {
		return fmt.Errorf("%w: %s lacks %s", domain.ErrTechnicianIneligible, userID, c)
	}
	return nil
}
