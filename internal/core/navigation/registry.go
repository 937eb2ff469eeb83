package navigation

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/lyvo/session-gateway/internal/core/domain"
	"github.com/lyvo/session-gateway/internal/core/ports"
	"github.com/lyvo/session-gateway/internal/pkg/metrics"
)

// Registry tracks the tabs open on this process.
type Registry struct {
	sessions ports.SessionReader
	bus      ports.EventBus
	log      zerolog.Logger

	mu   sync.Mutex
	tabs map[tabKey]*Tab
}

type tabKey struct {
	device string
	tab    string
}

func NewRegistry(sessions ports.SessionReader, bus ports.EventBus, log zerolog.Logger) *Registry {
	return &Registry{
		sessions: sessions,
		bus:      bus,
		log:      log,
		tabs:     make(map[tabKey]*Tab),
	}
}

// Open registers a tab that navigates through nav. A tab reopened under the
// same id (a reconnecting stream) replaces and closes the old one.
func (r *Registry) Open(deviceID, tabID string, nav ports.Navigator) *Tab {
	t := NewTab(deviceID, tabID, r.sessions, nav, r.bus, r.log)

	r.mu.Lock()
	key := tabKey{device: deviceID, tab: tabID}
	prev := r.tabs[key]
	r.tabs[key] = t
	metrics.ActiveTabs.Set(float64(len(r.tabs)))
	r.mu.Unlock()

	if prev != nil {
		prev.Close()
	}
	return t
}

// Get returns the open tab, or ErrTabNotFound. Tabs are only visible to the
// device that opened them.
func (r *Registry) Get(deviceID, tabID string) (*Tab, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tabs[tabKey{device: deviceID, tab: tabID}]
	if !ok {
		return nil, domain.ErrTabNotFound
	}
	return t, nil
}

// Release closes t if it is still the registered tab for its id.
func (r *Registry) Release(t *Tab) {
	r.mu.Lock()
	key := tabKey{device: t.DeviceID, tab: t.ID}
	if r.tabs[key] == t {
		delete(r.tabs, key)
	}
	metrics.ActiveTabs.Set(float64(len(r.tabs)))
	r.mu.Unlock()

	t.Close()
}

// Len returns the number of open tabs.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tabs)
}
