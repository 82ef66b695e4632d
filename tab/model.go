package tab

import (
	"sync"
	"time"
)

// Frame types exchanged with content scripts.
const (
	TypeWelcome  = "welcome"
	TypeHello    = "hello"
	TypeState    = "state"
	TypeRequest  = "request"
	TypeResponse = "response"
)

// Request actions understood by content scripts.
const (
	ActionGetCurrentURL = "getCurrentUrl"
	ActionUpdateSearch  = "updateSearch"
	ActionNavigate      = "navigate"
)

// Frame is one JSON message on a relay socket, in either direction.
type Frame struct {
	Type     string `json:"type"`
	ID       string `json:"id,omitempty"`
	TabID    string `json:"tabId,omitempty"`
	Action   string `json:"action,omitempty"`
	Keywords string `json:"keywords,omitempty"`
	URL      string `json:"url,omitempty"`
	Focused  bool   `json:"focused,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Info is a point-in-time view of a connected tab.
type Info struct {
	ID          string    `json:"id"`
	URL         string    `json:"url"`
	Focused     bool      `json:"focused"`
	ConnectedAt time.Time `json:"connected_at"`
	LastActive  time.Time `json:"last_active"`
}

// Tab is a browser tab whose content script holds a relay connection.
type Tab struct {
	ID          string
	ConnectedAt time.Time

	mu         sync.Mutex
	url        string
	focused    bool
	focusedAt  time.Time
	lastActive time.Time
	outChan    chan Frame
	kickChan   chan struct{}
	pending    map[string]chan Frame
}

func newTab(id string) *Tab {
	now := time.Now()
	return &Tab{
		ID:          id,
		ConnectedAt: now,
		lastActive:  now,
		pending:     make(map[string]chan Frame),
	}
}

// SetClient registers the outbound channel of a new connection. A previous
// connection is displaced: its kick channel is closed and its pending
// requests fail. The returned channel is closed if this connection is later
// displaced in turn.
func (t *Tab) SetClient(ch chan Frame) <-chan struct{} {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.kickChan != nil {
		close(t.kickChan)
	}
	t.failPendingLocked()
	kick := make(chan struct{})
	t.kickChan = kick
	t.outChan = ch
	return kick
}

// ClearClient is called when a connection ends. It only clears tab state if
// ch is still the current owner, and reports whether it was. It always
// closes ch so the pump goroutine exits.
func (t *Tab) ClearClient(ch chan Frame) bool {
	t.mu.Lock()
	owned := t.outChan == ch
	if owned {
		t.outChan = nil
		t.kickChan = nil
		t.failPendingLocked()
	}
	t.mu.Unlock()
	close(ch)
	return owned
}

func (t *Tab) failPendingLocked() {
	for id, reply := range t.pending {
		close(reply)
		delete(t.pending, id)
	}
}

// Report records the URL and focus state a content script announced.
func (t *Tab) Report(url string, focused bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := time.Now()
	if url != "" {
		t.url = url
	}
	if focused && !t.focused {
		t.focusedAt = now
	}
	t.focused = focused
	t.lastActive = now
}

// Resolve hands a response frame to the request waiting on its id.
func (t *Tab) Resolve(f Frame) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	reply, ok := t.pending[f.ID]
	if !ok {
		return false
	}
	delete(t.pending, f.ID)
	t.lastActive = time.Now()
	reply <- f
	return true
}

// send queues f on the live connection. A non-nil reply is registered under
// f.ID before the frame leaves.
func (t *Tab) send(f Frame, reply chan Frame) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.outChan == nil {
		return ErrTabGone
	}
	if reply != nil {
		t.pending[f.ID] = reply
	}
	select {
	case t.outChan <- f:
		return nil
	default:
		delete(t.pending, f.ID)
		return ErrBusy
	}
}

func (t *Tab) forget(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.pending, id)
}

// Snapshot returns the tab's current state.
func (t *Tab) Snapshot() Info {
	t.mu.Lock()
	defer t.mu.Unlock()
	return Info{
		ID:          t.ID,
		URL:         t.url,
		Focused:     t.focused,
		ConnectedAt: t.ConnectedAt,
		LastActive:  t.lastActive,
	}
}

func (t *Tab) focusTime() (time.Time, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.focusedAt, t.focused && t.outChan != nil
}
