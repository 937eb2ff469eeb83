package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lyvo/session-gateway/internal/core/domain"
)

const testDevice = "device-1"

func TestSessionStore_RoundTrip(t *testing.T) {
	kv := newMemKV()
	store := NewSessionStore(kv, zerolog.Nop())
	ctx := context.Background()

	age := 28
	user := &domain.UserProfile{
		ID:        "u1",
		Email:     "a@example.com",
		Role:      domain.RoleSeeker,
		IsNewUser: true,
		ProfileFields: domain.ProfileFields{
			Phone: "555", Age: &age,
		},
	}
	require.NoError(t, store.Write(ctx, testDevice, "tab-a", "tok", user))

	got := store.Read(ctx, testDevice)
	assert.Equal(t, "tok", got.Token)
	require.NotNil(t, got.User)
	assert.Equal(t, *user, *got.User)
	assert.True(t, got.Authenticated())

	require.Len(t, kv.ops, 1, "write must be a single atomic set")
	assert.ElementsMatch(t, []string{domain.KeyAuthToken, domain.KeyCurrentUser}, kv.ops[0].keys)
	assert.Equal(t, "tab-a", kv.ops[0].tab)
}

func TestSessionStore_ReadEmpty(t *testing.T) {
	store := NewSessionStore(newMemKV(), zerolog.Nop())
	got := store.Read(context.Background(), testDevice)
	assert.Equal(t, domain.SessionRecord{}, got)
}

func TestSessionStore_CorruptUserJSON(t *testing.T) {
	kv := newMemKV()
	kv.put(testDevice, domain.KeyAuthToken, "tok")
	kv.put(testDevice, domain.KeyCurrentUser, "{not json")
	store := NewSessionStore(kv, zerolog.Nop())

	got := store.Read(context.Background(), testDevice)
	assert.False(t, got.Authenticated())
	assert.Equal(t, domain.SessionRecord{}, got)
	assert.False(t, kv.has(testDevice, domain.KeyAuthToken), "stale token left behind")
	assert.False(t, kv.has(testDevice, domain.KeyCurrentUser), "stale user left behind")
}

func TestSessionStore_HalfPresentRecord(t *testing.T) {
	cases := map[string]string{
		"token only": domain.KeyAuthToken,
		"user only":  domain.KeyCurrentUser,
	}
	for name, key := range cases {
		t.Run(name, func(t *testing.T) {
			kv := newMemKV()
			kv.put(testDevice, key, `{"id":"u1","role":1}`)
			store := NewSessionStore(kv, zerolog.Nop())

			got := store.Read(context.Background(), testDevice)
			assert.Equal(t, domain.SessionRecord{}, got)
			assert.False(t, kv.has(testDevice, key))
		})
	}
}

func TestSessionStore_UnknownRoleIsKeptButUnauthenticated(t *testing.T) {
	kv := newMemKV()
	kv.put(testDevice, domain.KeyAuthToken, "tok")
	kv.put(testDevice, domain.KeyCurrentUser, `{"id":"u1","email":"x@y.z"}`)
	store := NewSessionStore(kv, zerolog.Nop())

	got := store.Read(context.Background(), testDevice)
	assert.Equal(t, "tok", got.Token)
	require.NotNil(t, got.User)
	assert.False(t, got.Authenticated())
	assert.True(t, kv.has(testDevice, domain.KeyCurrentUser))
}

func TestSessionStore_StorageErrorReadsLoggedOut(t *testing.T) {
	kv := newMemKV()
	kv.put(testDevice, domain.KeyAuthToken, "tok")
	kv.getErr = errBoom
	store := NewSessionStore(kv, zerolog.Nop())

	assert.Equal(t, domain.SessionRecord{}, store.Read(context.Background(), testDevice))
}

func TestSessionStore_WriteRejectsPartialRecord(t *testing.T) {
	kv := newMemKV()
	store := NewSessionStore(kv, zerolog.Nop())
	ctx := context.Background()

	assert.ErrorIs(t, store.Write(ctx, testDevice, "", "tok", nil), domain.ErrCorruptSession)
	assert.ErrorIs(t, store.Write(ctx, testDevice, "", "", &domain.UserProfile{ID: "u"}), domain.ErrCorruptSession)
	assert.Empty(t, kv.ops)
}

func TestSessionStore_ClearKeepsLastSeen(t *testing.T) {
	kv := newMemKV()
	store := NewSessionStore(kv, zerolog.Nop())
	ctx := context.Background()

	require.NoError(t, store.Write(ctx, testDevice, "", "tok", &domain.UserProfile{ID: "u1", Role: domain.RoleOwner}))
	_, err := store.TouchLastSeen(ctx, testDevice, "", "u1", time.Now())
	require.NoError(t, err)

	require.NoError(t, store.Clear(ctx, testDevice, "tab-a"))
	assert.Equal(t, domain.SessionRecord{}, store.Read(ctx, testDevice))
	assert.True(t, kv.has(testDevice, domain.LastSeenKey("u1")))
}

func TestSessionStore_TouchLastSeen(t *testing.T) {
	kv := newMemKV()
	store := NewSessionStore(kv, zerolog.Nop())
	ctx := context.Background()
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.FixedZone("IST", 19800))

	first, err := store.TouchLastSeen(ctx, testDevice, "", "u1", at)
	require.NoError(t, err)
	assert.True(t, first)

	v, ok, _ := kv.Get(ctx, testDevice, domain.LastSeenKey("u1"))
	require.True(t, ok)
	assert.Equal(t, "2026-03-01T04:30:00Z", v)

	first, err = store.TouchLastSeen(ctx, testDevice, "", "u1", at.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, first)

	first, err = store.TouchLastSeen(ctx, "other-device", "", "u1", at)
	require.NoError(t, err)
	assert.True(t, first, "last-seen is per device")
}
