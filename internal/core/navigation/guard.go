package navigation

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/lyvo/session-gateway/internal/core/domain"
	"github.com/lyvo/session-gateway/internal/core/policy"
	"github.com/lyvo/session-gateway/internal/core/ports"
	"github.com/lyvo/session-gateway/internal/pkg/metrics"
)

// GuardState is the RoleRouteGuard state machine: Checking, then Authorized
// or Redirecting. The zero value means no guard is mounted.
type GuardState int

const (
	GuardChecking GuardState = iota + 1
	GuardAuthorized
	GuardRedirecting
)

func (s GuardState) String() string {
	switch s {
	case GuardChecking:
		return "checking"
	case GuardAuthorized:
		return "authorized"
	case GuardRedirecting:
		return "redirecting"
	}
	return "none"
}

func (s GuardState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *GuardState) UnmarshalText(b []byte) error {
	for _, st := range []GuardState{GuardChecking, GuardAuthorized, GuardRedirecting} {
		if st.String() == string(b) {
			*s = st
			return nil
		}
	}
	*s = 0
	return nil
}

// RoleRouteGuard wraps a protected subtree. Its children render only once the
// guard is Authorized; while Checking or Redirecting the subtree is withheld.
type RoleRouteGuard struct {
	req      policy.Requirement
	sessions ports.SessionReader
	nav      ports.Navigator
	log      zerolog.Logger

	mu      sync.Mutex
	state   GuardState
	target  string
	gen     uint64
	mounted bool
}

func NewSeekerGuard(sessions ports.SessionReader, nav ports.Navigator, log zerolog.Logger) *RoleRouteGuard {
	return NewGuard(policy.RequireRole(domain.RoleSeeker), sessions, nav, log)
}

func NewOwnerGuard(sessions ports.SessionReader, nav ports.Navigator, log zerolog.Logger) *RoleRouteGuard {
	return NewGuard(policy.RequireRole(domain.RoleOwner), sessions, nav, log)
}

func NewAdminGuard(sessions ports.SessionReader, nav ports.Navigator, log zerolog.Logger) *RoleRouteGuard {
	return NewGuard(policy.RequireRole(domain.RoleAdmin), sessions, nav, log)
}

// NewAuthenticatedGuard accepts any valid role.
func NewAuthenticatedGuard(sessions ports.SessionReader, nav ports.Navigator, log zerolog.Logger) *RoleRouteGuard {
	return NewGuard(policy.RequireAuthenticated(), sessions, nav, log)
}

// NewGuard builds a mounted guard in the Checking state.
func NewGuard(req policy.Requirement, sessions ports.SessionReader, nav ports.Navigator, log zerolog.Logger) *RoleRouteGuard {
	return &RoleRouteGuard{
		req:      req,
		sessions: sessions,
		nav:      nav,
		log:      log.With().Str("guard", req.String()).Logger(),
		state:    GuardChecking,
		mounted:  true,
	}
}

// GuardFor returns the guard that wraps path, or nil for a public path.
func GuardFor(path string, sessions ports.SessionReader, nav ports.Navigator, log zerolog.Logger) *RoleRouteGuard {
	req, ok := policy.RequirementFor(path)
	if !ok {
		return nil
	}
	return NewGuard(req, sessions, nav, log)
}

// Check re-reads the session and settles the guard. A check that is
// overtaken by Unmount or a newer Check is dropped without navigating.
func (g *RoleRouteGuard) Check(ctx context.Context, deviceID, path string) GuardState {
	g.mu.Lock()
	if !g.mounted {
		g.mu.Unlock()
		return g.State()
	}
	g.gen++
	gen := g.gen
	g.state = GuardChecking
	g.target = ""
	g.mu.Unlock()

	session := g.sessions.Read(ctx, deviceID)
	trigger := policy.Guarded(g.req)
	target, redirect := policy.ResolveRedirect(session, path, trigger)

	g.mu.Lock()
	if !g.mounted || gen != g.gen {
		g.mu.Unlock()
		return g.State()
	}
	if redirect {
		g.state = GuardRedirecting
		g.target = target
	} else {
		g.state = GuardAuthorized
	}
	state := g.state
	g.mu.Unlock()

	metrics.GuardDecisionsTotal.WithLabelValues(g.req.String(), state.String()).Inc()
	if redirect {
		issue(ctx, g.nav, g.log, trigger, deviceID, path, target)
	}
	return state
}

func (g *RoleRouteGuard) State() GuardState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Target is the pending redirect while Redirecting.
func (g *RoleRouteGuard) Target() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.target
}

// Renders reports whether the protected children may render.
func (g *RoleRouteGuard) Renders() bool {
	return g.State() == GuardAuthorized
}

func (g *RoleRouteGuard) Requirement() policy.Requirement { return g.req }

// Unmount drops any pending decision.
func (g *RoleRouteGuard) Unmount() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.mounted = false
	g.gen++
}
