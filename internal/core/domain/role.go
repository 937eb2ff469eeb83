package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Role is the numeric account role shared with the SPA and the user backend.
// Zero and any value outside the constants below are invalid and must never be
// mapped onto a concrete role.
type Role int

const (
	RoleSeeker Role = 1
	RoleAdmin  Role = 2
	RoleOwner  Role = 3
)

// Roles lists every valid role in ascending order.
var Roles = []Role{RoleSeeker, RoleAdmin, RoleOwner}

// Valid reports whether r is one of the three known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleSeeker, RoleAdmin, RoleOwner:
		return true
	}
	return false
}

func (r Role) String() string {
	switch r {
	case RoleSeeker:
		return "seeker"
	case RoleAdmin:
		return "admin"
	case RoleOwner:
		return "owner"
	default:
		return "unknown(" + strconv.Itoa(int(r)) + ")"
	}
}

// HomePath is where a user of this role is sent when they land in another
// role's area. Invalid roles have no home.
func (r Role) HomePath() string {
	switch r {
	case RoleAdmin:
		return PathAdminDashboard
	case RoleOwner:
		return PathOwnerDashboard
	case RoleSeeker:
		return PathDashboard
	}
	return ""
}

// Area returns the routing partition owned by the role.
func (r Role) Area() RoleArea {
	switch r {
	case RoleAdmin:
		return AreaAdmin
	case RoleOwner:
		return AreaOwner
	case RoleSeeker:
		return AreaSeeker
	}
	return AreaAnonymous
}

// ParseRole accepts a role name ("seeker", "admin", "owner") or its numeric
// value ("1", "2", "3").
func ParseRole(s string) (Role, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "seeker":
		return RoleSeeker, nil
	case "admin":
		return RoleAdmin, nil
	case "owner":
		return RoleOwner, nil
	}
	n, err := strconv.Atoi(s)
	if err == nil && Role(n).Valid() {
		return Role(n), nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownRole, s)
}
