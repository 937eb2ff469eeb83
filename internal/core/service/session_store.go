package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/lyvo/session-gateway/internal/core/domain"
	"github.com/lyvo/session-gateway/internal/core/ports"
	"github.com/lyvo/session-gateway/internal/pkg/metrics"
)

type sessionStore struct {
	kv  ports.KeyValueStore
	log zerolog.Logger
}

// NewSessionStore returns the SessionStore backed by kv.
func NewSessionStore(kv ports.KeyValueStore, log zerolog.Logger) ports.SessionStore {
	return &sessionStore{kv: kv, log: log}
}

// Read loads the record for deviceID. It never returns an error: storage
// failures and corrupt records both read as logged out.
func (s *sessionStore) Read(ctx context.Context, deviceID string) domain.SessionRecord {
	token, hasToken, err := s.kv.Get(ctx, deviceID, domain.KeyAuthToken)
	if err != nil {
		s.log.Warn().Err(err).Str("device_id", deviceID).Msg("session read failed")
		return domain.SessionRecord{}
	}
	raw, hasUser, err := s.kv.Get(ctx, deviceID, domain.KeyCurrentUser)
	if err != nil {
		s.log.Warn().Err(err).Str("device_id", deviceID).Msg("session read failed")
		return domain.SessionRecord{}
	}

	switch {
	case !hasToken && !hasUser:
		return domain.SessionRecord{}
	case hasToken && !hasUser:
		s.discard(ctx, deviceID, "token_without_user")
		return domain.SessionRecord{}
	case !hasToken && hasUser:
		s.discard(ctx, deviceID, "user_without_token")
		return domain.SessionRecord{}
	}

	var user domain.UserProfile
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		s.discard(ctx, deviceID, "invalid_json")
		return domain.SessionRecord{}
	}
	return domain.SessionRecord{Token: token, User: &user}
}

// discard removes both session keys of a corrupt record. Cleanup is best
// effort; the caller already treats the record as absent.
func (s *sessionStore) discard(ctx context.Context, deviceID, reason string) {
	metrics.CorruptSessionsTotal.WithLabelValues(reason).Inc()
	s.log.Warn().
		Err(domain.ErrCorruptSession).
		Str("device_id", deviceID).
		Str("reason", reason).
		Msg("discarding session record")

	if err := s.kv.Delete(ctx, deviceID, "", domain.KeyAuthToken, domain.KeyCurrentUser); err != nil {
		s.log.Warn().Err(err).Str("device_id", deviceID).Msg("corrupt session cleanup failed")
	}
}

// Write persists token and user in one atomic set.
func (s *sessionStore) Write(ctx context.Context, deviceID, originTab, token string, user *domain.UserProfile) error {
	if token == "" || user == nil {
		return fmt.Errorf("write session: %w", domain.ErrCorruptSession)
	}
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("write session: encode user: %w", err)
	}
	pairs := map[string]string{
		domain.KeyAuthToken:   token,
		domain.KeyCurrentUser: string(raw),
	}
	if err := s.kv.SetMany(ctx, deviceID, originTab, pairs); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

// Clear removes both session keys. last-seen markers survive.
func (s *sessionStore) Clear(ctx context.Context, deviceID, originTab string) error {
	if err := s.kv.Delete(ctx, deviceID, originTab, domain.KeyAuthToken, domain.KeyCurrentUser); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

func (s *sessionStore) TouchLastSeen(ctx context.Context, deviceID, originTab, userID string, at time.Time) (bool, error) {
	if userID == "" {
		return false, nil
	}
	key := domain.LastSeenKey(userID)
	_, seen, err := s.kv.Get(ctx, deviceID, key)
	if err != nil {
		return false, fmt.Errorf("touch last seen: %w", err)
	}
	if err := s.kv.SetMany(ctx, deviceID, originTab, map[string]string{key: at.UTC().Format(time.RFC3339)}); err != nil {
		return false, fmt.Errorf("touch last seen: %w", err)
	}
	return !seen, nil
}
