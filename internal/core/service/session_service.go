package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/lyvo/session-gateway/internal/core/domain"
	"github.com/lyvo/session-gateway/internal/core/policy"
	"github.com/lyvo/session-gateway/internal/core/ports"
	"github.com/lyvo/session-gateway/internal/pkg/metrics"
)

type sessionService struct {
	auth  ports.AuthService
	store ports.SessionStore
	sink  ports.EventSink
	audit ports.SessionAuditRepository
	log   zerolog.Logger
	now   func() time.Time
}

// NewSessionService returns a SessionService implementation. audit may be nil.
func NewSessionService(
	auth ports.AuthService,
	store ports.SessionStore,
	sink ports.EventSink,
	audit ports.SessionAuditRepository,
	log zerolog.Logger,
) ports.SessionService {
	return &sessionService{
		auth:  auth,
		store: store,
		sink:  sink,
		audit: audit,
		log:   log,
		now:   time.Now,
	}
}

func (s *sessionService) Login(ctx context.Context, o ports.Origin, email, password string) (*ports.LoginResult, error) {
	token, user, err := s.auth.Login(ctx, email, password)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("login", "error").Inc()
		return nil, err
	}
	metrics.LoginsTotal.WithLabelValues("login", "ok").Inc()
	return s.start(ctx, o, token, user)
}

func (s *sessionService) Register(ctx context.Context, o ports.Origin, in ports.RegisterInput) (*ports.LoginResult, error) {
	token, user, err := s.auth.Register(ctx, in)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("register", "error").Inc()
		return nil, err
	}
	metrics.LoginsTotal.WithLabelValues("register", "ok").Inc()
	return s.start(ctx, o, token, user)
}

// start writes the new session, records the visit and emits logged-in.
func (s *sessionService) start(ctx context.Context, o ports.Origin, token string, user *domain.User) (*ports.LoginResult, error) {
	profile := user.Snapshot()
	if err := s.store.Write(ctx, o.DeviceID, o.TabID, token, profile); err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}

	now := s.now()
	first, err := s.store.TouchLastSeen(ctx, o.DeviceID, o.TabID, profile.ID, now)
	if err != nil {
		s.log.Warn().Err(err).Str("device_id", o.DeviceID).Str("user_id", profile.ID).Msg("last-seen update failed")
	}

	s.emit(ctx, domain.EventLoggedIn, o, now)
	s.record(ctx, domain.EventLoggedIn, o, profile, now)

	dest := policy.LoginDestination(profile)
	s.log.Info().
		Str("device_id", o.DeviceID).
		Str("tab_id", o.TabID).
		Str("user_id", profile.ID).
		Str("role", profile.Role.String()).
		Str("target", dest).
		Bool("first_visit", first).
		Msg("session started")

	return &ports.LoginResult{
		Token:       token,
		User:        profile,
		Destination: dest,
		FirstVisit:  first,
	}, nil
}

// Logout clears the session and always sends the user to /login with a full
// reload, whether or not a session existed.
func (s *sessionService) Logout(ctx context.Context, o ports.Origin) (*ports.LogoutResult, error) {
	prev := s.store.Read(ctx, o.DeviceID)
	if err := s.store.Clear(ctx, o.DeviceID, o.TabID); err != nil {
		return nil, err
	}

	now := s.now()
	s.emit(ctx, domain.EventLoggedOut, o, now)
	if prev.User != nil {
		s.record(ctx, domain.EventLoggedOut, o, prev.User, now)
	}

	s.log.Info().
		Str("device_id", o.DeviceID).
		Str("tab_id", o.TabID).
		Str("user_id", prev.UserID()).
		Msg("session cleared")

	return &ports.LogoutResult{Destination: domain.PathLogin, Reload: true}, nil
}

// Refresh re-fetches the cached profile from the backend and overwrites it.
// A record with an unknown role is refreshed too; its role is never guessed.
func (s *sessionService) Refresh(ctx context.Context, o ports.Origin) (domain.SessionRecord, error) {
	rec := s.store.Read(ctx, o.DeviceID)
	if rec.Token == "" || rec.UserID() == "" {
		return domain.SessionRecord{}, domain.ErrNotAuthenticated
	}

	user, err := s.auth.Profile(ctx, rec.UserID())
	if errors.Is(err, domain.ErrUserNotFound) {
		s.log.Warn().Str("device_id", o.DeviceID).Str("user_id", rec.UserID()).Msg("session user no longer exists")
		if _, err := s.Logout(ctx, o); err != nil {
			return domain.SessionRecord{}, err
		}
		return domain.SessionRecord{}, domain.ErrNotAuthenticated
	}
	if err != nil {
		return domain.SessionRecord{}, fmt.Errorf("refresh session: %w", err)
	}

	if user.Role != rec.User.Role {
		s.log.Warn().
			Str("device_id", o.DeviceID).
			Str("user_id", user.ID).
			Int("cached_role", int(rec.User.Role)).
			Int("role", int(user.Role)).
			Msg("role changed, overwriting cached profile")
	}
	return s.rewrite(ctx, o, rec.Token, user)
}

func (s *sessionService) CompleteOnboarding(ctx context.Context, o ports.Origin) (domain.SessionRecord, error) {
	rec, err := s.authenticated(ctx, o)
	if err != nil {
		return domain.SessionRecord{}, err
	}
	user, err := s.auth.CompleteOnboarding(ctx, rec.UserID())
	if err != nil {
		return domain.SessionRecord{}, err
	}
	return s.rewrite(ctx, o, rec.Token, user)
}

func (s *sessionService) UpdateProfile(ctx context.Context, o ports.Origin, fields domain.ProfileFields) (domain.SessionRecord, error) {
	rec, err := s.authenticated(ctx, o)
	if err != nil {
		return domain.SessionRecord{}, err
	}
	user, err := s.auth.UpdateProfile(ctx, rec.UserID(), fields)
	if err != nil {
		return domain.SessionRecord{}, err
	}
	return s.rewrite(ctx, o, rec.Token, user)
}

func (s *sessionService) Current(ctx context.Context, deviceID string) domain.SessionRecord {
	return s.store.Read(ctx, deviceID)
}

func (s *sessionService) authenticated(ctx context.Context, o ports.Origin) (domain.SessionRecord, error) {
	rec := s.store.Read(ctx, o.DeviceID)
	if !rec.Authenticated() {
		return domain.SessionRecord{}, domain.ErrNotAuthenticated
	}
	return rec, nil
}

// rewrite replaces the whole user field of the session and emits logged-in
// so mounted guards re-read.
func (s *sessionService) rewrite(ctx context.Context, o ports.Origin, token string, user *domain.User) (domain.SessionRecord, error) {
	profile := user.Snapshot()
	if err := s.store.Write(ctx, o.DeviceID, o.TabID, token, profile); err != nil {
		return domain.SessionRecord{}, err
	}
	s.emit(ctx, domain.EventLoggedIn, o, s.now())
	return domain.SessionRecord{Token: token, User: profile}, nil
}

func (s *sessionService) emit(ctx context.Context, kind domain.SessionEventKind, o ports.Origin, at time.Time) {
	err := s.sink.Emit(ctx, domain.SessionEvent{Kind: kind, DeviceID: o.DeviceID, TabID: o.TabID, At: at})
	if err != nil {
		s.log.Error().Err(err).
			Str("device_id", o.DeviceID).
			Str("kind", string(kind)).
			Msg("session event not delivered")
	}
}

func (s *sessionService) record(ctx context.Context, kind domain.SessionEventKind, o ports.Origin, user *domain.UserProfile, at time.Time) {
	if s.audit == nil {
		return
	}
	entry := domain.SessionAuditEntry{
		Kind:     kind,
		DeviceID: o.DeviceID,
		TabID:    o.TabID,
		UserID:   user.ID,
		Role:     user.Role,
		At:       at.UTC(),
	}
	if err := s.audit.InsertSessionEvent(ctx, entry); err != nil {
		s.log.Warn().Err(err).Str("user_id", user.ID).Msg("failed to insert session audit entry")
	}
}
