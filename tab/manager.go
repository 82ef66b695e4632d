// Package tab tracks browser tabs connected through the content-script relay
// and sends them requests. A Manager doubles as a search.Host.
package tab

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/browser"
	"go.uber.org/zap"

	"search-launcher/search"
)

var (
	ErrNotFound     = errors.New("tab not found")
	ErrTabGone      = errors.New("tab disconnected")
	ErrBusy         = errors.New("tab outbox full")
	ErrTimeout      = errors.New("tab did not respond")
	ErrNoFocusedTab = errors.New("no focused tab")
)

const (
	DefaultTimeout = 5 * time.Second
	outboxSize     = 32
)

type Manager struct {
	mu      sync.RWMutex
	tabs    map[string]*Tab
	opener  func(url string) error
	timeout time.Duration
	log     *zap.Logger
}

type Option func(*Manager)

// WithOpener sets how Create opens new tabs (browser.OpenURL by default).
func WithOpener(fn func(url string) error) Option {
	return func(m *Manager) { m.opener = fn }
}

// WithTimeout bounds how long Request waits for a response.
func WithTimeout(d time.Duration) Option {
	return func(m *Manager) { m.timeout = d }
}

func WithLogger(l *zap.Logger) Option {
	return func(m *Manager) { m.log = l }
}

func NewManager(opts ...Option) *Manager {
	m := &Manager{
		tabs:    make(map[string]*Tab),
		opener:  browser.OpenURL,
		timeout: DefaultTimeout,
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Connect registers a new connection for tab id, creating the tab if needed.
// An empty id gets a fresh one. The returned channel carries outbound frames;
// kick is closed when a newer connection for the same id displaces this one.
func (m *Manager) Connect(id string) (t *Tab, out chan Frame, kick <-chan struct{}) {
	if id == "" {
		id = uuid.NewString()
	}

	m.mu.Lock()
	t, ok := m.tabs[id]
	if !ok {
		t = newTab(id)
		m.tabs[id] = t
	}
	m.mu.Unlock()

	out = make(chan Frame, outboxSize)
	kick = t.SetClient(out)
	m.log.Debug("tab connected", zap.String("tab", id), zap.Bool("reconnect", ok))
	return t, out, kick
}

// Disconnect ends the connection that owns out. The tab is forgotten unless a
// newer connection already took it over.
func (m *Manager) Disconnect(t *Tab, out chan Frame) {
	if !t.ClearClient(out) {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.tabs[t.ID] == t {
		delete(m.tabs, t.ID)
	}
	m.log.Debug("tab disconnected", zap.String("tab", t.ID))
}

func (m *Manager) Get(id string) (*Tab, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tabs[id]
	return t, ok
}

// List returns snapshots of all connected tabs, oldest connection first.
func (m *Manager) List() []Info {
	m.mu.RLock()
	list := make([]Info, 0, len(m.tabs))
	for _, t := range m.tabs {
		list = append(list, t.Snapshot())
	}
	m.mu.RUnlock()

	sort.Slice(list, func(i, j int) bool {
		if list[i].ConnectedAt.Equal(list[j].ConnectedAt) {
			return list[i].ID < list[j].ID
		}
		return list[i].ConnectedAt.Before(list[j].ConnectedAt)
	})
	return list
}

// Send queues a request without waiting for an answer.
func (m *Manager) Send(tabID string, f Frame) error {
	t, ok := m.Get(tabID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, tabID)
	}
	f.Type = TypeRequest
	f.ID = uuid.NewString()
	return t.send(f, nil)
}

// Request sends f to the tab and waits for the matching response.
func (m *Manager) Request(ctx context.Context, tabID string, f Frame) (Frame, error) {
	t, ok := m.Get(tabID)
	if !ok {
		return Frame{}, fmt.Errorf("%w: %s", ErrNotFound, tabID)
	}
	f.Type = TypeRequest
	f.ID = uuid.NewString()

	reply := make(chan Frame, 1)
	if err := t.send(f, reply); err != nil {
		return Frame{}, err
	}
	defer t.forget(f.ID)

	timer := time.NewTimer(m.timeout)
	defer timer.Stop()

	select {
	case resp, ok := <-reply:
		if !ok {
			return Frame{}, ErrTabGone
		}
		if resp.Error != "" {
			return resp, fmt.Errorf("tab %s: %s", tabID, resp.Error)
		}
		return resp, nil
	case <-timer.C:
		return Frame{}, fmt.Errorf("%w after %s", ErrTimeout, m.timeout)
	case <-ctx.Done():
		return Frame{}, ctx.Err()
	}
}

// CurrentURL asks the tab for the address it is showing.
func (m *Manager) CurrentURL(ctx context.Context, tabID string) (string, error) {
	resp, err := m.Request(ctx, tabID, Frame{Action: ActionGetCurrentURL})
	if err != nil {
		return "", err
	}
	if t, ok := m.Get(tabID); ok && resp.URL != "" {
		info := t.Snapshot()
		t.Report(resp.URL, info.Focused)
	}
	return resp.URL, nil
}

// UpdateSearch asks the tab to type keywords into the page's search box. It
// is best effort: the content script acts only if the page has one.
func (m *Manager) UpdateSearch(_ context.Context, tabID, keywords string) error {
	return m.Send(tabID, Frame{Action: ActionUpdateSearch, Keywords: keywords})
}

// FocusedTab returns the connected tab that most recently gained focus.
func (m *Manager) FocusedTab(context.Context) (search.Tab, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var (
		best   *Tab
		bestAt time.Time
	)
	for _, t := range m.tabs {
		at, focused := t.focusTime()
		if !focused {
			continue
		}
		if best == nil || at.After(bestAt) {
			best, bestAt = t, at
		}
	}
	if best == nil {
		return search.Tab{}, ErrNoFocusedTab
	}
	info := best.Snapshot()
	return search.Tab{ID: info.ID, URL: info.URL}, nil
}

// Update navigates a connected tab. The page unloads as a result, so no
// response is awaited.
func (m *Manager) Update(_ context.Context, tabID, url string) error {
	return m.Send(tabID, Frame{Action: ActionNavigate, URL: url})
}

// Create opens url in a new tab through the configured opener.
func (m *Manager) Create(_ context.Context, url string) error {
	return m.opener(url)
}
