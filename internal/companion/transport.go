package companion

import (
	"context"
	stdsync "sync"
)

// Status is the state tuple mirrored to the companion device.
type Status struct {
	IsAuthorized    bool   `json:"is_authorized"`
	CurrentDay      int    `json:"current_day"`
	CurrentActivity string `json:"current_activity,omitempty"`
}

// Transport delivers status to the companion device over some channel pair:
// a durable context snapshot the device reads whenever it wakes, and a live
// message path that only works while the device is reachable.
type Transport interface {
	UpdateContext(ctx context.Context, status Status) error
	SendMessage(ctx context.Context, status Status) error
	Reachable() bool
}

// MemoryTransport is an in-process Transport for tests.
type MemoryTransport struct {
	mu        stdsync.Mutex
	reachable bool
	contexts  []Status
	messages  []Status
}

// NewMemoryTransport constructs a reachable MemoryTransport.
func NewMemoryTransport() *MemoryTransport {
	return &MemoryTransport{reachable: true}
}

// SetReachable toggles the simulated device presence.
func (t *MemoryTransport) SetReachable(reachable bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.reachable = reachable
}

// UpdateContext implements Transport.
func (t *MemoryTransport) UpdateContext(_ context.Context, status Status) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.contexts = append(t.contexts, status)
	return nil
}

// SendMessage implements Transport.
func (t *MemoryTransport) SendMessage(_ context.Context, status Status) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.messages = append(t.messages, status)
	return nil
}

// Reachable implements Transport.
func (t *MemoryTransport) Reachable() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.reachable
}

// Contexts returns the durable snapshots pushed so far.
func (t *MemoryTransport) Contexts() []Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Status(nil), t.contexts...)
}

// Messages returns the live messages pushed so far.
func (t *MemoryTransport) Messages() []Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Status(nil), t.messages...)
}
