package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/lyvo/session-gateway/internal/core/domain"
	"github.com/lyvo/session-gateway/internal/core/ports"
)

const sessionEventsCollection = "session_events"

// SessionAuditRepository implements ports.SessionAuditRepository using MongoDB.
type SessionAuditRepository struct {
	db *mongo.Database
}

// NewSessionAuditRepository creates a new SessionAuditRepository.
func NewSessionAuditRepository(db *mongo.Database) ports.SessionAuditRepository {
	return &SessionAuditRepository{db: db}
}

// InsertSessionEvent persists a login or logout to the session_events collection.
func (r *SessionAuditRepository) InsertSessionEvent(ctx context.Context, entry domain.SessionAuditEntry) error {
	doc := bson.M{
		"kind":        string(entry.Kind),
		"device_id":   entry.DeviceID,
		"user_id":     entry.UserID,
		"role":        int(entry.Role),
		"timestamp":   entry.At.UTC(),
		"recorded_at": time.Now().UTC(),
	}
	if entry.TabID != "" {
		doc["tab_id"] = entry.TabID
	}

	if _, err := r.db.Collection(sessionEventsCollection).InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert session event: %w", err)
	}
	return nil
}
