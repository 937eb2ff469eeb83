package mongo

import (
	"context"
	"testing"
	"time"

	"github.com/lyvo/session-gateway/internal/core/domain"
)

func TestAuthRepository_InvalidIDIsNotFound(t *testing.T) {
	repo := &MongoAuthRepository{}

	if _, err := repo.FindByID(context.Background(), "not-an-object-id"); err != domain.ErrUserNotFound {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if err := repo.Update(context.Background(), &domain.User{ID: "nope"}); err != domain.ErrUserNotFound {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestMongoUser_KeepsUnknownRole(t *testing.T) {
	mu := mongoUser{Email: "x@example.com", Role: 0, CreatedAt: 0}
	u := mu.toDomain()
	if u.Role.Valid() {
		t.Fatalf("a stored role of 0 must not map to a valid role, got %s", u.Role)
	}
	if !u.CreatedAt.IsZero() {
		t.Fatalf("zero timestamp should map to zero time")
	}
}

func TestMongoUser_ProfileMapping(t *testing.T) {
	age := 33
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	in := &domain.User{
		Email:     "s@example.com",
		Role:      domain.RoleSeeker,
		IsNewUser: true,
		Profile:   domain.ProfileFields{Phone: "9", Location: "Delhi", Age: &age, Occupation: "nurse", Gender: "female"},
		CreatedAt: now,
		UpdatedAt: now,
	}
	out := toMongoUser(in).toDomain()
	if out.Role != domain.RoleSeeker || !out.IsNewUser || !out.Profile.Complete() || *out.Profile.Age != 33 {
		t.Fatalf("unexpected mapping: %+v", out)
	}
	if !out.CreatedAt.Equal(now) {
		t.Fatalf("expected %s, got %s", now, out.CreatedAt)
	}
}
