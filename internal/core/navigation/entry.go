package navigation

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/lyvo/session-gateway/internal/core/policy"
	"github.com/lyvo/session-gateway/internal/core/ports"
)

// RootEntryRedirector handles a cold landing. It evaluates the path it was
// mounted on exactly once per page load.
type RootEntryRedirector struct {
	sessions ports.SessionReader
	nav      ports.Navigator
	log      zerolog.Logger

	once sync.Once
	done chan struct{}
}

func NewRootEntryRedirector(sessions ports.SessionReader, nav ports.Navigator, log zerolog.Logger) *RootEntryRedirector {
	return &RootEntryRedirector{
		sessions: sessions,
		nav:      nav,
		log:      log.With().Str("component", "entry").Logger(),
		done:     make(chan struct{}),
	}
}

// Run returns the redirect for the mount path, if any. Only the first call
// does anything; later calls return "", false.
func (r *RootEntryRedirector) Run(ctx context.Context, deviceID, path string) (target string, redirect bool) {
	r.once.Do(func() {
		defer close(r.done)
		session := r.sessions.Read(ctx, deviceID)
		target, redirect = policy.ResolveRedirect(session, path, policy.Entry())
		if redirect {
			issue(ctx, r.nav, r.log, policy.Entry(), deviceID, path, target)
		}
	})
	return target, redirect
}

// Done reports whether the entry check has completed and children may render.
func (r *RootEntryRedirector) Done() bool {
	select {
	case <-r.done:
		return true
	default:
		return false
	}
}
