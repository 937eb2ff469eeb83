package navigation

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/lyvo/session-gateway/internal/core/domain"
	"github.com/lyvo/session-gateway/internal/core/policy"
	"github.com/lyvo/session-gateway/internal/core/ports"
)

// Decision is what a tab should show for its current path.
type Decision struct {
	Path       string     `json:"path"`
	Redirect   string     `json:"redirect,omitempty"`
	Guard      string     `json:"guard,omitempty"`
	GuardState GuardState `json:"guard_state,omitempty"`
	Render     bool       `json:"render"`
	ShowShell  bool       `json:"show_shell"`
}

// Observer is called after every session event a tab reacts to.
type Observer func(event domain.SessionEvent, d Decision)

// Tab is one mounted SPA instance: an entry redirector for the page load, a
// navigation watcher, and the guard of the current route.
type Tab struct {
	ID       string
	DeviceID string

	sessions   ports.SessionReader
	nav        ports.Navigator
	bus        ports.EventBus
	log        zerolog.Logger
	entry      *RootEntryRedirector
	authorizer *GlobalNavigationAuthorizer

	closed    atomic.Bool
	done      chan struct{}
	closeOnce sync.Once

	mu    sync.Mutex
	path  string
	guard *RoleRouteGuard
}

// NewTab builds an unmounted tab. bus may be nil when the tab never runs.
func NewTab(deviceID, tabID string, sessions ports.SessionReader, nav ports.Navigator, bus ports.EventBus, log zerolog.Logger) *Tab {
	l := log.With().Str("device_id", deviceID).Str("tab_id", tabID).Logger()
	t := &Tab{
		ID:       tabID,
		DeviceID: deviceID,
		sessions: sessions,
		bus:      bus,
		log:      l,
		done:     make(chan struct{}),
	}
	t.nav = tabNavigator{tab: t, next: nav}
	t.entry = NewRootEntryRedirector(sessions, t.nav, l)
	t.authorizer = NewGlobalNavigationAuthorizer(sessions, t.nav, l)
	return t
}

// Mount handles the page load: entry check, then the route guard, then the
// watcher. The first redirect wins.
func (t *Tab) Mount(ctx context.Context, path string) Decision {
	t.mu.Lock()
	defer t.mu.Unlock()

	p := t.enter(path)
	if target, ok := t.entry.Run(ctx, t.DeviceID, p); ok {
		return t.decision(target)
	}
	return t.settle(ctx)
}

// Navigate handles an in-app path change: the new route's guard, then the
// watcher.
func (t *Tab) Navigate(ctx context.Context, path string) Decision {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.enter(path)
	return t.settle(ctx)
}

// Current re-runs the checks for the current path.
func (t *Tab) Current(ctx context.Context) Decision {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.settle(ctx)
}

// Path returns the last path the tab reported.
func (t *Tab) Path() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.path
}

// Run consumes session events for this tab until ctx is done, the tab is
// closed or the bus closes the subscription. Every relevant event re-runs the
// current route's checks against a fresh read.
func (t *Tab) Run(ctx context.Context, observe Observer) error {
	unsub, events := t.bus.Subscribe(t.DeviceID, t.ID)
	defer unsub()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.done:
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if ev.Kind == domain.EventStorageChanged && !domain.IsSessionKey(ev.Key) {
				continue
			}
			d := t.Current(ctx)
			t.log.Debug().
				Str("kind", string(ev.Kind)).
				Str("path", d.Path).
				Str("target", d.Redirect).
				Msg("session changed, route re-checked")
			if observe != nil {
				observe(ev, d)
			}
		}
	}
}

// Close unmounts the current guard and ends Run. Later calls to Mount or
// Navigate still answer but no longer navigate.
func (t *Tab) Close() {
	t.closed.Store(true)
	t.closeOnce.Do(func() { close(t.done) })

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.guard != nil {
		t.guard.Unmount()
	}
}

// Done is closed once the tab is closed, including when a newer tab replaces
// it in a Registry.
func (t *Tab) Done() <-chan struct{} {
	return t.done
}

// enter records path and swaps in the guard for its route.
func (t *Tab) enter(path string) string {
	p := domain.NormalizePath(path)
	t.path = p
	if t.guard != nil {
		t.guard.Unmount()
		t.guard = nil
	}
	t.guard = GuardFor(p, t.sessions, t.nav, t.log)
	return p
}

func (t *Tab) settle(ctx context.Context) Decision {
	if t.guard != nil {
		if t.guard.Check(ctx, t.DeviceID, t.path) == GuardRedirecting {
			return t.decision(t.guard.Target())
		}
	}
	target, _ := t.authorizer.OnPathChange(ctx, t.DeviceID, t.path)
	return t.decision(target)
}

func (t *Tab) decision(redirect string) Decision {
	d := Decision{
		Path:      t.path,
		Redirect:  redirect,
		ShowShell: policy.ShouldShowSharedShell(t.path),
	}
	if t.guard != nil {
		d.Guard = t.guard.Requirement().String()
		d.GuardState = t.guard.State()
	}
	d.Render = redirect == "" && (t.guard == nil || t.guard.Renders())
	return d
}

// tabNavigator stops forwarding once the tab is closed.
type tabNavigator struct {
	tab  *Tab
	next ports.Navigator
}

func (n tabNavigator) Navigate(ctx context.Context, target string, mode ports.NavigationMode) error {
	if n.tab.closed.Load() || n.next == nil {
		return nil
	}
	return n.next.Navigate(ctx, target, mode)
}
