package handler

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/lyvo/session-gateway/internal/api/middleware"
	"github.com/lyvo/session-gateway/internal/core/domain"
	"github.com/lyvo/session-gateway/internal/core/navigation"
	"github.com/lyvo/session-gateway/internal/core/service"
)

type sseFrame struct {
	event string
	data  string
}

// readFrames parses an event stream until the body closes.
func readFrames(body *bufio.Scanner, out chan<- sseFrame) {
	defer close(out)
	var f sseFrame
	for body.Scan() {
		line := body.Text()
		switch {
		case strings.HasPrefix(line, "event: "):
			f.event = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			f.data = strings.TrimPrefix(line, "data: ")
		case line == "" && f.event != "":
			out <- f
			f = sseFrame{}
		}
	}
}

func next(t *testing.T, frames <-chan sseFrame) sseFrame {
	t.Helper()
	select {
	case f, ok := <-frames:
		if !ok {
			t.Fatalf("stream closed")
		}
		return f
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for stream event")
	}
	return sseFrame{}
}

type tabFixture struct {
	sessions *stubSessions
	bus      *service.EventBus
	registry *navigation.Registry
	server   *httptest.Server
}

func newTabFixture(t *testing.T) *tabFixture {
	t.Helper()
	f := &tabFixture{sessions: newStubSessions(), bus: service.NewEventBus(zerolog.Nop())}
	f.registry = navigation.NewRegistry(f.sessions, f.bus, zerolog.Nop())

	e := newEcho()
	h := NewTabHandler(f.registry, zerolog.Nop())
	device := middleware.Device(middleware.DeviceOptions{})
	e.GET("/v1/tabs/stream", h.Stream, device)
	e.POST("/v1/tabs/:tab_id/path", h.Path, device)

	f.server = httptest.NewServer(e)
	t.Cleanup(func() {
		f.server.Close()
		f.bus.Close()
	})
	return f
}

func (f *tabFixture) open(t *testing.T, ctx context.Context, path string) <-chan sseFrame {
	t.Helper()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.server.URL+"/v1/tabs/stream?path="+path, nil)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.AddCookie(deviceCookie())
	req.Header.Set(middleware.TabHeader, testTab)

	resp, err := f.server.Client().Do(req)
	if err != nil {
		t.Fatalf("open stream: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("unexpected content type %q", ct)
	}

	frames := make(chan sseFrame, 16)
	go readFrames(bufio.NewScanner(resp.Body), frames)
	return frames
}

func TestTabHandler_Stream_MountAndLogout(t *testing.T) {
	f := newTabFixture(t)
	f.sessions.set(testDevice, session(domain.UserProfile{ID: "u1", Role: domain.RoleOwner}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	frames := f.open(t, ctx, "/owner-dashboard")

	first := next(t, frames)
	if first.event != "decision" {
		t.Fatalf("expected decision first, got %s", first.event)
	}
	var d navigation.Decision
	if err := json.Unmarshal([]byte(first.data), &d); err != nil {
		t.Fatalf("invalid decision: %v", err)
	}
	if !d.Render || d.Redirect != "" {
		t.Fatalf("owner at home must render: %+v", d)
	}

	deadline := time.Now().Add(2 * time.Second)
	for f.bus.Subscribers(testDevice) == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("tab never subscribed")
		}
		time.Sleep(5 * time.Millisecond)
	}

	// Another tab logs out.
	f.sessions.set(testDevice, domain.SessionRecord{})
	if err := f.bus.Emit(ctx, domain.SessionEvent{
		Kind:     domain.EventStorageChanged,
		DeviceID: testDevice,
		TabID:    "tab-b",
		Key:      domain.KeyAuthToken,
		At:       time.Now(),
	}); err != nil {
		t.Fatalf("emit: %v", err)
	}

	var sawNavigate, sawSession bool
	for !sawNavigate || !sawSession {
		fr := next(t, frames)
		switch fr.event {
		case "navigate":
			var ev navigateEvent
			if err := json.Unmarshal([]byte(fr.data), &ev); err != nil {
				t.Fatalf("invalid navigate: %v", err)
			}
			if ev.Target != domain.PathLogin || ev.Mode != "replace" {
				t.Fatalf("unexpected navigate: %+v", ev)
			}
			sawNavigate = true
		case "session":
			var ev sessionEvent
			if err := json.Unmarshal([]byte(fr.data), &ev); err != nil {
				t.Fatalf("invalid session event: %v", err)
			}
			if ev.Kind != domain.EventStorageChanged || ev.Decision.Redirect != domain.PathLogin || ev.Decision.Render {
				t.Fatalf("unexpected session event: %+v", ev)
			}
			sawSession = true
		}
	}
}

func TestTabHandler_Path(t *testing.T) {
	f := newTabFixture(t)
	f.sessions.set(testDevice, session(domain.UserProfile{ID: "u1", Role: domain.RoleOwner}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	frames := f.open(t, ctx, "/owner-dashboard")
	if fr := next(t, frames); fr.event != "decision" {
		t.Fatalf("expected decision, got %s", fr.event)
	}

	post := func(tabID, body string) *http.Response {
		req, _ := http.NewRequest(http.MethodPost, f.server.URL+"/v1/tabs/"+tabID+"/path", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.AddCookie(deviceCookie())
		resp, err := f.server.Client().Do(req)
		if err != nil {
			t.Fatalf("post path: %v", err)
		}
		t.Cleanup(func() { resp.Body.Close() })
		return resp
	}

	resp := post(testTab, `{"path":"/admin-dashboard"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var d navigation.Decision
	if err := json.NewDecoder(resp.Body).Decode(&d); err != nil {
		t.Fatalf("invalid decision: %v", err)
	}
	if d.Redirect != domain.PathOwnerDashboard || d.GuardState != navigation.GuardRedirecting {
		t.Fatalf("owner on admin area: %+v", d)
	}

	fr := next(t, frames)
	if fr.event != "navigate" || !strings.Contains(fr.data, domain.PathOwnerDashboard) {
		t.Fatalf("expected navigate to owner home, got %+v", fr)
	}

	if resp := post("unknown-tab", `{"path":"/"}`); resp.StatusCode == http.StatusOK {
		t.Fatalf("unknown tab must not be accepted")
	}
}

func TestTabHandler_Stream_ReopenClosesPreviousStream(t *testing.T) {
	f := newTabFixture(t)
	f.sessions.set(testDevice, session(domain.UserProfile{ID: "u1", Role: domain.RoleOwner}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	stale := f.open(t, ctx, "/owner-dashboard")
	if fr := next(t, stale); fr.event != "decision" {
		t.Fatalf("expected decision, got %s", fr.event)
	}

	fresh := f.open(t, ctx, "/owner-dashboard")
	if fr := next(t, fresh); fr.event != "decision" {
		t.Fatalf("expected decision on reopened stream, got %s", fr.event)
	}

	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-stale:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatalf("replaced stream was left open")
		}
	}
}
