package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/lyvo/session-gateway/internal/core/domain"
)

// ---------------------------------------------------------------------------
// In-memory KeyValueStore
// ---------------------------------------------------------------------------

type kvOp struct {
	op     string
	device string
	tab    string
	keys   []string
}

type memKV struct {
	mu     sync.Mutex
	data   map[string]map[string]string
	ops    []kvOp
	getErr error
	setErr error
	delErr error
}

func newMemKV() *memKV {
	return &memKV{data: make(map[string]map[string]string)}
}

func (m *memKV) Get(_ context.Context, device, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return "", false, m.getErr
	}
	v, ok := m.data[device][key]
	return v, ok, nil
}

func (m *memKV) SetMany(_ context.Context, device, tab string, pairs map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	if m.data[device] == nil {
		m.data[device] = make(map[string]string)
	}
	op := kvOp{op: "set", device: device, tab: tab}
	for k, v := range pairs {
		m.data[device][k] = v
		op.keys = append(op.keys, k)
	}
	m.ops = append(m.ops, op)
	return nil
}

func (m *memKV) Delete(_ context.Context, device, tab string, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.delErr != nil {
		return m.delErr
	}
	for _, k := range keys {
		delete(m.data[device], k)
	}
	m.ops = append(m.ops, kvOp{op: "del", device: device, tab: tab, keys: keys})
	return nil
}

func (m *memKV) put(device, key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data[device] == nil {
		m.data[device] = make(map[string]string)
	}
	m.data[device][key] = value
}

func (m *memKV) has(device, key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[device][key]
	return ok
}

// ---------------------------------------------------------------------------
// Auth repository
// ---------------------------------------------------------------------------

type stubAuthRepo struct {
	users     map[string]*domain.User // by id
	updateErr error
	nextID    int
}

func newStubAuthRepo() *stubAuthRepo {
	return &stubAuthRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubAuthRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == user.Email {
			return nil, domain.ErrUserExists
		}
	}
	copy := cloneUser(user)
	if copy.ID == "" {
		r.nextID++
		copy.ID = fmt.Sprintf("user-%d", r.nextID)
	}
	r.users[copy.ID] = cloneUser(copy)
	return cloneUser(copy), nil
}

func (r *stubAuthRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubAuthRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubAuthRepo) Update(_ context.Context, user *domain.User) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	if _, ok := r.users[user.ID]; !ok {
		return domain.ErrUserNotFound
	}
	r.users[user.ID] = cloneUser(user)
	return nil
}

// ---------------------------------------------------------------------------
// Event sink and audit
// ---------------------------------------------------------------------------

// recordingSink captures events together with the session visible at emit time.
type recordingSink struct {
	store interface {
		Read(ctx context.Context, deviceID string) domain.SessionRecord
	}
	events  []domain.SessionEvent
	seen    []domain.SessionRecord
	emitErr error
}

func (s *recordingSink) Emit(ctx context.Context, ev domain.SessionEvent) error {
	if s.emitErr != nil {
		return s.emitErr
	}
	s.events = append(s.events, ev)
	if s.store != nil {
		s.seen = append(s.seen, s.store.Read(ctx, ev.DeviceID))
	}
	return nil
}

type stubAudit struct {
	entries []domain.SessionAuditEntry
	err     error
}

func (a *stubAudit) InsertSessionEvent(_ context.Context, e domain.SessionAuditEntry) error {
	if a.err != nil {
		return a.err
	}
	a.entries = append(a.entries, e)
	return nil
}

var errBoom = errors.New("boom")
