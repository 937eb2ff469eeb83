package policy

import "github.com/lyvo/session-gateway/internal/core/domain"

// ResolveRedirect is the one authorization policy behind every guard, the
// entry redirector and the navigation watcher. It returns the redirect target
// and true, or "" and false when the user may stay on path.
//
// Rules, first match wins:
//  1. unauthenticated: entry never redirects; guards send to /login; the
//     watcher sends to /login only from protected paths.
//  2. guards accept a matching (or any, in any-role mode) role, else send the
//     user to their role's home.
//  3. a Seeker with onboarding pending goes to /seeker-onboarding.
//  4. a protected path in another role's area goes to the role's home, except
//     that a Seeker landing there on entry goes to /seeker-dashboard.
//  5. guest-only pages go to the login destination.
//  6. the root sends Admins and Owners home, and Seekers to their dashboard
//     on entry only.
//
// A target is never equal to the path it was resolved from, and resolving the
// target again yields no redirect.
func ResolveRedirect(s domain.SessionRecord, path string, t Trigger) (string, bool) {
	p := domain.NormalizePath(path)

	if !s.Authenticated() {
		switch t.Kind {
		case KindGuard:
			return redirect(p, domain.PathLogin)
		case KindNavigation:
			if IsProtected(p) {
				return redirect(p, domain.PathLogin)
			}
		}
		return "", false
	}

	user := s.User
	role := user.Role

	if t.Kind == KindGuard {
		if t.Requirement.AnyRole || t.Requirement.Role == role {
			return "", false
		}
		return redirect(p, role.HomePath())
	}

	if user.NeedsOnboarding() {
		return redirect(p, domain.PathSeekerOnboarding)
	}

	if area := domain.AreaOf(p); area != domain.AreaAnonymous && area != role.Area() {
		if t.Kind == KindEntry && role == domain.RoleSeeker {
			return redirect(p, domain.PathSeekerDashboard)
		}
		return redirect(p, role.HomePath())
	}

	if IsGuestOnly(p) {
		return redirect(p, LoginDestination(user))
	}

	if p == domain.PathRoot {
		switch {
		case role == domain.RoleAdmin || role == domain.RoleOwner:
			return redirect(p, role.HomePath())
		case t.Kind == KindEntry:
			return redirect(p, domain.PathSeekerDashboard)
		}
	}

	return "", false
}

// redirect suppresses a redirect onto the current path.
func redirect(from, to string) (string, bool) {
	if to == "" || to == from {
		return "", false
	}
	return to, true
}

// LoginDestination is where a user goes right after logging in, and where a
// logged-in user visiting a guest-only page is sent.
func LoginDestination(u *domain.UserProfile) string {
	if u == nil || !u.Role.Valid() {
		return domain.PathLogin
	}
	switch {
	case u.NeedsOnboarding():
		return domain.PathSeekerOnboarding
	case u.NeedsProfileCompletion():
		return domain.PathSeekerProfile
	case u.Role == domain.RoleSeeker:
		return domain.PathSeekerDashboard
	}
	return u.Role.HomePath()
}
