package policy

import (
	"testing"

	"github.com/lyvo/session-gateway/internal/core/domain"
)

func authed(u domain.UserProfile) domain.SessionRecord {
	return domain.SessionRecord{Token: "t", User: &u}
}

func completeSeeker() domain.UserProfile {
	age := 25
	return domain.UserProfile{
		ID:   "s1",
		Role: domain.RoleSeeker,
		ProfileFields: domain.ProfileFields{
			Phone: "1", Location: "x", Age: &age, Occupation: "dev", Gender: "m",
		},
	}
}

func fixtureSession(t *testing.T, name string) domain.SessionRecord {
	t.Helper()
	for _, f := range Fixtures() {
		if f.Name == name {
			return f.Session
		}
	}
	t.Fatalf("no fixture %q", name)
	return domain.SessionRecord{}
}

func TestResolveRedirect_ForeignAreaGoesHome(t *testing.T) {
	for _, role := range domain.Roles {
		var s domain.SessionRecord
		if role == domain.RoleSeeker {
			s = authed(completeSeeker())
		} else {
			s = authed(domain.UserProfile{ID: "u", Role: role})
		}
		for _, p := range Catalog {
			area := domain.AreaOf(p)
			if area == domain.AreaAnonymous || area == role.Area() {
				continue
			}
			triggers := []Trigger{Entry(), Navigation()}
			if req, ok := RequirementFor(p); ok {
				triggers = append(triggers, Guarded(req))
			}
			for _, tr := range triggers {
				got, ok := ResolveRedirect(s, p, tr)
				if !ok || got != role.HomePath() {
					t.Fatalf("%s on %s (%s): expected %s, got %q (%v)", role, p, tr, role.HomePath(), got, ok)
				}
			}
		}
	}
}

func TestResolveRedirect_HomeIsFixedPoint(t *testing.T) {
	for _, role := range domain.Roles {
		var s domain.SessionRecord
		if role == domain.RoleSeeker {
			s = authed(completeSeeker())
		} else {
			s = authed(domain.UserProfile{ID: "u", Role: role})
		}
		home := role.HomePath()
		req, _ := RequirementFor(home)
		for _, tr := range []Trigger{Entry(), Navigation(), Guarded(req)} {
			if got, ok := ResolveRedirect(s, home, tr); ok {
				t.Fatalf("%s at home %s (%s): unexpected redirect to %s", role, home, tr, got)
			}
		}
	}
}

func TestResolveRedirect_UnauthenticatedGoesToLoginOnlyWhenProtected(t *testing.T) {
	anon := domain.SessionRecord{}
	for _, p := range Catalog {
		got, ok := ResolveRedirect(anon, p, Navigation())
		if IsProtected(p) {
			if !ok || got != domain.PathLogin {
				t.Fatalf("anonymous on protected %s: expected /login, got %q", p, got)
			}
			req, _ := RequirementFor(p)
			if got, ok := ResolveRedirect(anon, p, Guarded(req)); !ok || got != domain.PathLogin {
				t.Fatalf("guard on %s: expected /login, got %q", p, got)
			}
		} else if ok {
			t.Fatalf("anonymous on public %s: unexpected redirect to %s", p, got)
		}
	}
}

func TestResolveRedirect_EntryLetsAnonymousThrough(t *testing.T) {
	if got, ok := ResolveRedirect(domain.SessionRecord{}, domain.PathOwnerDashboard, Entry()); ok {
		t.Fatalf("entry redirected anonymous user to %s", got)
	}
}

func TestResolveRedirect_Idempotent(t *testing.T) {
	if v := CheckTotality(Catalog); len(v) != 0 {
		for _, violation := range v {
			t.Errorf("%v", violation)
		}
		t.FailNow()
	}
}

func TestResolveRedirect_UnknownRoleIsAnonymous(t *testing.T) {
	s := fixtureSession(t, "unknown-role")
	got, ok := ResolveRedirect(s, domain.PathAdminDashboard, Navigation())
	if !ok || got != domain.PathLogin {
		t.Fatalf("expected /login for unknown role, got %q", got)
	}
	if got, ok := ResolveRedirect(s, domain.PathRoot, Entry()); ok {
		t.Fatalf("unknown role must not be routed as any role, got %s", got)
	}
}

func TestResolveRedirect_ScenarioA_AnonymousOwnerDashboard(t *testing.T) {
	got, ok := ResolveRedirect(domain.SessionRecord{}, domain.PathOwnerDashboard, Guarded(RequireRole(domain.RoleOwner)))
	if !ok || got != domain.PathLogin {
		t.Fatalf("expected /login, got %q", got)
	}
}

func TestResolveRedirect_ScenarioB_OnboardingGate(t *testing.T) {
	s := fixtureSession(t, "seeker-onboarding")

	if got := LoginDestination(s.User); got != domain.PathSeekerOnboarding {
		t.Fatalf("login destination: expected onboarding, got %s", got)
	}
	for _, tr := range []Trigger{Entry(), Navigation()} {
		got, ok := ResolveRedirect(s, domain.PathSeekerDashboard, tr)
		if !ok || got != domain.PathSeekerOnboarding {
			t.Fatalf("%s: expected onboarding redirect, got %q", tr, got)
		}
		if got, ok := ResolveRedirect(s, domain.PathSeekerOnboarding, tr); ok {
			t.Fatalf("%s: onboarding page redirected to %s", tr, got)
		}
	}
}

func TestResolveRedirect_ScenarioC_Root(t *testing.T) {
	admin := fixtureSession(t, "admin")
	for _, tr := range []Trigger{Entry(), Navigation()} {
		if got, ok := ResolveRedirect(admin, domain.PathRoot, tr); !ok || got != domain.PathAdminDashboard {
			t.Fatalf("admin root %s: expected /admin-dashboard, got %q", tr, got)
		}
	}

	seeker := authed(completeSeeker())
	if got, ok := ResolveRedirect(seeker, domain.PathRoot, Navigation()); ok {
		t.Fatalf("seeker browsing / was redirected to %s", got)
	}
	if got, ok := ResolveRedirect(seeker, domain.PathRoot, Entry()); !ok || got != domain.PathSeekerDashboard {
		t.Fatalf("seeker cold landing on /: expected /seeker-dashboard, got %q", got)
	}
}

func TestResolveRedirect_SeekerEntryInForeignArea(t *testing.T) {
	seeker := fixtureSession(t, "seeker")
	for _, p := range []string{domain.PathAdminDashboard, domain.PathOwnerDashboard, "/owner-properties"} {
		if got, ok := ResolveRedirect(seeker, p, Entry()); !ok || got != domain.PathSeekerDashboard {
			t.Fatalf("entry on %s: expected /seeker-dashboard, got %q", p, got)
		}
		if got, ok := ResolveRedirect(seeker, p, Navigation()); !ok || got != domain.PathDashboard {
			t.Fatalf("navigation on %s: expected /dashboard, got %q", p, got)
		}
	}
}

func TestResolveRedirect_AnyRoleGuard(t *testing.T) {
	for _, name := range []string{"seeker", "owner", "admin"} {
		s := fixtureSession(t, name)
		if got, ok := ResolveRedirect(s, domain.PathProfile, Guarded(RequireAuthenticated())); ok {
			t.Fatalf("%s: any-role guard redirected to %s", name, got)
		}
	}
}

func TestResolveRedirect_GuestOnlyPages(t *testing.T) {
	owner := fixtureSession(t, "owner")
	if got, ok := ResolveRedirect(owner, domain.PathLogin, Navigation()); !ok || got != domain.PathOwnerDashboard {
		t.Fatalf("owner on /login: expected owner dashboard, got %q", got)
	}
	incomplete := fixtureSession(t, "seeker-incomplete-profile")
	if got, ok := ResolveRedirect(incomplete, domain.PathSignup, Entry()); !ok || got != domain.PathSeekerProfile {
		t.Fatalf("seeker with incomplete profile on /signup: expected /seeker-profile, got %q", got)
	}
}

func TestResolveRedirect_NormalizesPath(t *testing.T) {
	admin := fixtureSession(t, "admin")
	if got, ok := ResolveRedirect(admin, "/?utm=1", Navigation()); !ok || got != domain.PathAdminDashboard {
		t.Fatalf("expected query to be ignored, got %q", got)
	}
	if got, ok := ResolveRedirect(admin, "/admin-dashboard/", Navigation()); ok {
		t.Fatalf("trailing slash home redirected to %s", got)
	}
}

func TestShouldShowSharedShell(t *testing.T) {
	cases := map[string]bool{
		"/":                  true,
		"/login":             true,
		"/profile":           true,
		"/room-owner-signup": true,
		"/dashboard":         false,
		"/seeker-bookings":   false,
		"/room/42":           false,
		"/owner-dashboard":   false,
		"/admin-users":       false,
	}
	for path, want := range cases {
		if got := ShouldShowSharedShell(path); got != want {
			t.Fatalf("%s: expected %v, got %v", path, want, got)
		}
	}
}
