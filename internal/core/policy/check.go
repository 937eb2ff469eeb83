package policy

import (
	"fmt"

	"github.com/lyvo/session-gateway/internal/core/domain"
)

// Catalog is the set of routes the SPA registers, plus a few representative
// dynamic ones. CheckTotality is run against it.
var Catalog = []string{
	domain.PathRoot,
	"/about",
	"/contact",
	domain.PathLogin,
	domain.PathSignup,
	domain.PathOwnerSignup,
	domain.PathForgotPassword,
	domain.PathResetPassword,
	domain.PathVerifyEmail,
	domain.PathProfile,
	domain.PathDashboard,
	domain.PathSeekerDashboard,
	domain.PathSeekerOnboarding,
	domain.PathSeekerProfile,
	"/seeker-search",
	"/seeker-favorites",
	"/seeker-bookings",
	"/room/abc123",
	domain.PathOwnerDashboard,
	"/owner-properties",
	"/owner-bookings",
	"/owner-settings",
	domain.PathAdminDashboard,
	"/admin-users",
	"/admin-properties",
	"/does-not-exist",
}

// Fixture is a named session shape used to exercise the policy.
type Fixture struct {
	Name    string
	Session domain.SessionRecord
}

// Fixtures covers every role, both onboarding states and the degraded
// records (no token, unknown role).
func Fixtures() []Fixture {
	age := 30
	complete := domain.ProfileFields{Phone: "555-0100", Location: "Kochi", Age: &age, Occupation: "engineer", Gender: "female"}
	session := func(u domain.UserProfile) domain.SessionRecord {
		return domain.SessionRecord{Token: "token", User: &u}
	}
	return []Fixture{
		{Name: "anonymous", Session: domain.SessionRecord{}},
		{Name: "unknown-role", Session: session(domain.UserProfile{ID: "u0", Role: 9})},
		{Name: "seeker", Session: session(domain.UserProfile{ID: "u1", Role: domain.RoleSeeker, ProfileFields: complete})},
		{Name: "seeker-onboarding", Session: session(domain.UserProfile{ID: "u2", Role: domain.RoleSeeker, IsNewUser: true})},
		{Name: "seeker-incomplete-profile", Session: session(domain.UserProfile{ID: "u3", Role: domain.RoleSeeker, HasCompletedBehaviorQuestions: true})},
		{Name: "owner", Session: session(domain.UserProfile{ID: "u4", Role: domain.RoleOwner})},
		{Name: "admin", Session: session(domain.UserProfile{ID: "u5", Role: domain.RoleAdmin})},
	}
}

// Violation describes a redirect that does not settle.
type Violation struct {
	Fixture string
	Trigger Trigger
	Path    string
	Target  string
	Next    string
}

func (v Violation) Error() string {
	if v.Next == "" {
		return fmt.Sprintf("%s %s %s: redirects onto itself", v.Fixture, v.Trigger, v.Path)
	}
	return fmt.Sprintf("%v: %s %s %s -> %s -> %s", domain.ErrRedirectLoop, v.Fixture, v.Trigger, v.Path, v.Target, v.Next)
}

// Unwrap lets callers match violations with errors.Is(err, domain.ErrRedirectLoop).
func (v Violation) Unwrap() error { return domain.ErrRedirectLoop }

// CheckTotality resolves every (fixture, trigger, path) combination and then
// resolves the target again, the way the next page would. Any second redirect
// is a violation. Guards are re-checked with the guard that wraps the target.
func CheckTotality(paths []string) []Violation {
	var out []Violation
	for _, f := range Fixtures() {
		for _, p := range paths {
			for _, t := range triggersFor(p) {
				target, ok := ResolveRedirect(f.Session, p, t)
				if !ok {
					continue
				}
				if target == domain.NormalizePath(p) {
					out = append(out, Violation{Fixture: f.Name, Trigger: t, Path: p, Target: target})
					continue
				}
				next := t
				if t.Kind == KindGuard {
					req, guarded := RequirementFor(target)
					if !guarded {
						next = Navigation()
					} else {
						next = Guarded(req)
					}
				}
				if again, loops := ResolveRedirect(f.Session, target, next); loops {
					out = append(out, Violation{Fixture: f.Name, Trigger: t, Path: p, Target: target, Next: again})
				}
			}
		}
	}
	return out
}

func triggersFor(path string) []Trigger {
	ts := []Trigger{Entry(), Navigation()}
	if req, ok := RequirementFor(path); ok {
		ts = append(ts, Guarded(req))
	}
	return ts
}
