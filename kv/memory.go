package kv

import (
	"context"
	"fmt"
	"sync"
)

// MemoryGateway keeps values in process memory. It records how many calls each
// operation received and can be told to fail, which makes it the gateway of
// choice for tests and ephemeral runs.
type MemoryGateway struct {
	mu     sync.Mutex
	values map[string][]byte

	GetCalls    int
	SetCalls    int
	RemoveCalls int

	// FailGet, FailSet and FailRemove make the matching operation return
	// ErrStorageUnavailable.
	FailGet    bool
	FailSet    bool
	FailRemove bool
}

func NewMemoryGateway() *MemoryGateway {
	return &MemoryGateway{values: make(map[string][]byte)}
}

func (g *MemoryGateway) Get(_ context.Context, key string) ([]byte, bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.GetCalls++
	if g.FailGet {
		return nil, false, fmt.Errorf("%w: get %s", ErrStorageUnavailable, key)
	}
	v, ok := g.values[key]
	if !ok {
		return nil, false, nil
	}
	cp := make([]byte, len(v))
	copy(cp, v)
	return cp, true, nil
}

func (g *MemoryGateway) Set(_ context.Context, key string, value []byte) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.SetCalls++
	if g.FailSet {
		return fmt.Errorf("%w: set %s", ErrStorageUnavailable, key)
	}
	cp := make([]byte, len(value))
	copy(cp, value)
	g.values[key] = cp
	return nil
}

func (g *MemoryGateway) Remove(_ context.Context, key string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.RemoveCalls++
	if g.FailRemove {
		return fmt.Errorf("%w: remove %s", ErrStorageUnavailable, key)
	}
	delete(g.values, key)
	return nil
}

// Calls returns the get, set and remove counters under the lock.
func (g *MemoryGateway) Calls() (get, set, remove int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.GetCalls, g.SetCalls, g.RemoveCalls
}
