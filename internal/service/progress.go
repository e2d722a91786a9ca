package service

import (
	"sync"
	"time"
)

// DefaultProgressLinger is how long a finished transfer's last percentage stays
// readable, so a poller that missed the end still sees it.
const DefaultProgressLinger = 10 * time.Second

type transfer struct {
	percent  int
	active   bool
	finished time.Time
}

// ProgressTracker holds the upload percentage of each user's transfer.
type ProgressTracker struct {
	Linger time.Duration

	mu        sync.Mutex
	transfers map[string]*transfer
	now       func() time.Time
}

func NewProgressTracker() *ProgressTracker {
	return &ProgressTracker{
		Linger:    DefaultProgressLinger,
		transfers: make(map[string]*transfer),
		now:       time.Now,
	}
}

// Set records percent for the caller's transfer and marks it in flight.
func (p *ProgressTracker) Set(ownerID string, percent int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.transfers[ownerID] = &transfer{percent: percent, active: true}
}

// Get returns the percentage and whether a transfer is in flight. A finished
// transfer keeps its percentage for Linger.
func (p *ProgressTracker) Get(ownerID string) (int, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	t, ok := p.transfers[ownerID]
	if !ok {
		return 0, false
	}
	if !t.active && p.now().Sub(t.finished) > p.Linger {
		delete(p.transfers, ownerID)
		return 0, false
	}
	return t.percent, t.active
}

// Done marks the caller's transfer finished.
func (p *ProgressTracker) Done(ownerID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if t, ok := p.transfers[ownerID]; ok {
		t.active = false
		t.finished = p.now()
	}
}
