package domain

import "strings"

// Paths the engine redirects to or treats specially.
const (
	PathRoot             = "/"
	PathLogin            = "/login"
	PathSignup           = "/signup"
	PathOwnerSignup      = "/room-owner-signup"
	PathForgotPassword   = "/forgot-password"
	PathResetPassword    = "/reset-password"
	PathVerifyEmail      = "/verify-email"
	PathProfile          = "/profile"
	PathDashboard        = "/dashboard"
	PathSeekerDashboard  = "/seeker-dashboard"
	PathSeekerOnboarding = "/seeker-onboarding"
	PathSeekerProfile    = "/seeker-profile"
	PathAdminDashboard   = "/admin-dashboard"
	PathOwnerDashboard   = "/owner-dashboard"
)

// RoleArea is the routing partition a path belongs to. It is derived from the
// path and never stored.
type RoleArea int

const (
	AreaAnonymous RoleArea = iota
	AreaSeeker
	AreaOwner
	AreaAdmin
)

func (a RoleArea) String() string {
	switch a {
	case AreaSeeker:
		return "seeker"
	case AreaOwner:
		return "owner"
	case AreaAdmin:
		return "admin"
	default:
		return "anonymous"
	}
}

// AreaOf classifies a path by prefix: /admin* is admin, /owner* is owner,
// /seeker*, /dashboard and /room/* are seeker, everything else is shared.
func AreaOf(path string) RoleArea {
	p := NormalizePath(path)
	switch {
	case strings.HasPrefix(p, "/admin"):
		return AreaAdmin
	case strings.HasPrefix(p, "/owner"):
		return AreaOwner
	case strings.HasPrefix(p, "/seeker"),
		p == PathDashboard,
		strings.HasPrefix(p, "/room/"):
		return AreaSeeker
	}
	return AreaAnonymous
}

// NormalizePath strips query and fragment, drops a trailing slash and maps
// the empty string to the root.
func NormalizePath(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return PathRoot
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	for len(path) > 1 && strings.HasSuffix(path, "/") {
		path = strings.TrimSuffix(path, "/")
	}
	return path
}
