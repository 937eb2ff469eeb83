package navigation

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/lyvo/session-gateway/internal/core/policy"
	"github.com/lyvo/session-gateway/internal/core/ports"
)

// GlobalNavigationAuthorizer is the corrective watcher that runs on every
// path change. It never blocks rendering.
type GlobalNavigationAuthorizer struct {
	sessions ports.SessionReader
	nav      ports.Navigator
	log      zerolog.Logger
}

func NewGlobalNavigationAuthorizer(sessions ports.SessionReader, nav ports.Navigator, log zerolog.Logger) *GlobalNavigationAuthorizer {
	return &GlobalNavigationAuthorizer{
		sessions: sessions,
		nav:      nav,
		log:      log.With().Str("component", "authorizer").Logger(),
	}
}

func (a *GlobalNavigationAuthorizer) OnPathChange(ctx context.Context, deviceID, path string) (string, bool) {
	session := a.sessions.Read(ctx, deviceID)
	target, redirect := policy.ResolveRedirect(session, path, policy.Navigation())
	if redirect {
		issue(ctx, a.nav, a.log, policy.Navigation(), deviceID, path, target)
	}
	return target, redirect
}
