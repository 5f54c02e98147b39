package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/aquaflow/servicecrm/internal/core/domain"
)

// SessionStore keeps login sessions in Redis.
// Key format: session:<session_id>
type SessionStore struct {
	client *redis.Client
}

func NewSessionStore(client *redis.Client) *SessionStore {
	return &SessionStore{client: client}
}

type sessionRecord struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	RoleKind  string    `json:"role_kind"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Save stores p until ttl elapses. A non-positive ttl is rejected since the
// session would never expire.
func (s *SessionStore) Save(ctx context.Context, p domain.Principal, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("save session: ttl must be positive, got %s", ttl)
	}
	raw, err := json.Marshal(sessionRecord{
		UserID:    p.UserID,
		Email:     p.Email,
		RoleKind:  string(p.RoleKind),
		ExpiresAt: p.ExpiresAt,
	})
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.client.Set(ctx, s.key(p.SessionID), raw, ttl).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *SessionStore) Get(ctx context.Context, sessionID string) (*domain.Principal, error) {
	raw, err := s.client.Get(ctx, s.key(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrSessionExpired
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	var rec sessionRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &domain.Principal{
		UserID:    rec.UserID,
		Email:     rec.Email,
		RoleKind:  domain.RoleKind(rec.RoleKind),
		SessionID: sessionID,
		ExpiresAt: rec.ExpiresAt,
	}, nil
}

// Delete revokes a session. Deleting an unknown session is not an error.
func (s *SessionStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, s.key(sessionID)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *SessionStore) key(sessionID string) string {
	return "session:" + sessionID
}
