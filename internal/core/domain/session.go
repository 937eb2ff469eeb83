package domain

import "strings"

// Session storage keys. These strings are shared with the SPA.
const (
	KeyAuthToken      = "auth-token"
	KeyCurrentUser    = "current-user"
	keyLastSeenPrefix = "last-seen:"
)

// LastSeenKey returns the per-user marker key.
func LastSeenKey(userID string) string {
	return keyLastSeenPrefix + userID
}

// IsSessionKey reports whether a storage key belongs to the session record.
// last-seen markers are deliberately excluded.
func IsSessionKey(key string) bool {
	return key == KeyAuthToken || key == KeyCurrentUser
}

// IsLastSeenKey reports whether key is a last-seen marker.
func IsLastSeenKey(key string) bool {
	return strings.HasPrefix(key, keyLastSeenPrefix)
}

// SessionRecord is the persisted {token, user} pair. The zero value is the
// logged-out record.
type SessionRecord struct {
	Token string       `json:"token,omitempty"`
	User  *UserProfile `json:"user,omitempty"`
}

// Authenticated reports whether the record routes as logged in. A record
// whose role is missing or unknown is treated as unauthenticated.
func (s SessionRecord) Authenticated() bool {
	return s.Token != "" && s.User != nil && s.User.Role.Valid()
}

// Role returns the session role, or 0 when unauthenticated.
func (s SessionRecord) Role() Role {
	if !s.Authenticated() {
		return 0
	}
	return s.User.Role
}

// UserID returns the cached user id, if any.
func (s SessionRecord) UserID() string {
	if s.User == nil {
		return ""
	}
	return s.User.ID
}
