// Package policy holds the routing authorization rules. Everything here is a
// pure function of (session, path, trigger): no storage, no clocks, no history.
package policy

import "github.com/lyvo/session-gateway/internal/core/domain"

// TriggerKind says which call site is asking.
type TriggerKind int

const (
	// KindEntry is the once-per-page-load check of a cold landing.
	KindEntry TriggerKind = iota
	// KindNavigation is the watcher that runs on every path change.
	KindNavigation
	// KindGuard is a route guard wrapping a protected subtree.
	KindGuard
)

func (k TriggerKind) String() string {
	switch k {
	case KindEntry:
		return "entry"
	case KindNavigation:
		return "navigation"
	case KindGuard:
		return "guard"
	}
	return "unknown"
}

// Requirement is what a guard expects of the session.
type Requirement struct {
	Role    domain.Role
	AnyRole bool
}

func (r Requirement) String() string {
	if r.AnyRole {
		return "authenticated"
	}
	return r.Role.String()
}

// RequireRole builds a single-role requirement.
func RequireRole(role domain.Role) Requirement { return Requirement{Role: role} }

// RequireAuthenticated accepts any valid role.
func RequireAuthenticated() Requirement { return Requirement{AnyRole: true} }

// Trigger identifies the caller of ResolveRedirect.
type Trigger struct {
	Kind        TriggerKind
	Requirement Requirement // KindGuard only
}

func Entry() Trigger      { return Trigger{Kind: KindEntry} }
func Navigation() Trigger { return Trigger{Kind: KindNavigation} }

// Guarded is the trigger used by a route guard with the given requirement.
func Guarded(req Requirement) Trigger {
	return Trigger{Kind: KindGuard, Requirement: req}
}

func (t Trigger) String() string {
	if t.Kind == KindGuard {
		return "guard:" + t.Requirement.String()
	}
	return t.Kind.String()
}

// authenticatedOnly are shared-area paths that still need a login.
var authenticatedOnly = map[string]struct{}{
	domain.PathProfile: {},
}

// guestOnly are pages a logged-in user has no reason to see.
var guestOnly = map[string]struct{}{
	domain.PathLogin:       {},
	domain.PathSignup:      {},
	domain.PathOwnerSignup: {},
}

// RequirementFor returns the guard that wraps path, if any.
func RequirementFor(path string) (Requirement, bool) {
	p := domain.NormalizePath(path)
	switch domain.AreaOf(p) {
	case domain.AreaSeeker:
		return RequireRole(domain.RoleSeeker), true
	case domain.AreaOwner:
		return RequireRole(domain.RoleOwner), true
	case domain.AreaAdmin:
		return RequireRole(domain.RoleAdmin), true
	}
	if _, ok := authenticatedOnly[p]; ok {
		return RequireAuthenticated(), true
	}
	return Requirement{}, false
}

// IsProtected reports whether path needs an authenticated session.
func IsProtected(path string) bool {
	_, ok := RequirementFor(path)
	return ok
}

// IsGuestOnly reports whether path is a login/signup page.
func IsGuestOnly(path string) bool {
	_, ok := guestOnly[domain.NormalizePath(path)]
	return ok
}
