package domain

import "time"

// SessionEventKind names the invalidation signals carried by the event bus.
type SessionEventKind string

const (
	EventLoggedIn  SessionEventKind = "session_logged_in"
	EventLoggedOut SessionEventKind = "session_logged_out"
	// EventStorageChanged mirrors the browser's cross-tab storage event: it
	// reaches every tab of the device except the one that wrote.
	EventStorageChanged SessionEventKind = "storage"
)

// SessionEvent carries no session data. Receivers re-read the SessionStore.
type SessionEvent struct {
	Kind     SessionEventKind `json:"kind"`
	DeviceID string           `json:"device_id"`
	TabID    string           `json:"tab_id,omitempty"` // origin tab
	Key      string           `json:"key,omitempty"`    // storage events only
	At       time.Time        `json:"at"`
}

// SessionAuditEntry is a durable record of a login or logout.
type SessionAuditEntry struct {
	Kind     SessionEventKind
	DeviceID string
	TabID    string
	UserID   string
	Role     Role
	At       time.Time
}
