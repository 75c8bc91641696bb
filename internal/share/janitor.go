package share

import (
	"sync"
	"time"
)

// Janitor sweeps a store periodically in a background goroutine.
type Janitor struct {
	store    *Store
	interval time.Duration
	stopCh   chan struct{}
	onSweep  func(SweepReport) // Called after every periodic sweep

	mu   sync.Mutex
	next time.Time
}

// NewJanitor creates a janitor that sweeps store every interval.
func NewJanitor(store *Store, interval time.Duration) *Janitor {
	return &Janitor{
		store:    store,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// OnSweep sets a callback invoked from the background goroutine after each
// periodic sweep.
func (j *Janitor) OnSweep(callback func(SweepReport)) {
	j.onSweep = callback
}

// Start begins sweeping in a background goroutine.
func (j *Janitor) Start() {
	// Create a fresh stop channel in case we're restarting
	j.stopCh = make(chan struct{})
	j.setNext(j.store.now().Add(j.interval))
	go j.loop(j.stopCh)
}

// Stop stops the sweeping goroutine.
func (j *Janitor) Stop() {
	close(j.stopCh)
}

// NextRun returns when the next periodic sweep is due.
func (j *Janitor) NextRun() time.Time {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.next
}

func (j *Janitor) setNext(t time.Time) {
	j.mu.Lock()
	j.next = t
	j.mu.Unlock()
}

func (j *Janitor) loop(stop <-chan struct{}) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			rep := j.store.Sweep()
			j.setNext(j.store.now().Add(j.interval))
			if j.onSweep != nil {
				j.onSweep(rep)
			}
		}
	}
}
