package session

import (
	"math"
	"sync"
	"time"

	"github.com/NutriVision/NV-Backend/internal/provider"
	"github.com/google/uuid"
)

// Registry owns one heartbeat tracker per live auth session. Start/Stop are
// called by the auth handlers on login and logout; Stop returns only after
// the tracker goroutine has exited, so a stale tick can never write to a
// session the user has already left.
type Registry struct {
	store    Store
	interval time.Duration
	now      func() time.Time

	mu       sync.Mutex
	trackers map[string]*tracker
}

func NewRegistry(store Store, interval time.Duration) *Registry {
	return &Registry{
		store:    store,
		interval: interval,
		now:      time.Now,
		trackers: make(map[string]*tracker),
	}
}

// Start begins heartbeat tracking for an auth session. A failed insert is
// logged and tracking is skipped; telemetry is best-effort.
func (r *Registry) Start(sessionID, userID string) {
	start := r.now()
	row := &UserSession{
		ID:              uuid.NewString(),
		UserID:          userID,
		LoginAt:         start,
		LastActiveAt:    start,
		DurationMinutes: 0,
		PagesVisited:    1,
	}
	if err := r.store.Insert(row); err != nil {
		provider.LogError("heartbeat", "insert", err)
		return
	}

	t := &tracker{
		store: r.store,
		rowID: row.ID,
		start: start,
		pages: 1,
		stop:  make(chan struct{}),
		done:  make(chan struct{}),
	}

	r.mu.Lock()
	if old, ok := r.trackers[sessionID]; ok {
		// Re-login on the same auth session replaces the old tracker.
		old.halt()
	}
	r.trackers[sessionID] = t
	r.mu.Unlock()

	go t.run(r.interval, r.now)
}

// Stop cancels the tracker for sessionID and waits for it to exit. Safe to
// call for unknown sessions and safe to call twice.
func (r *Registry) Stop(sessionID string) {
	r.mu.Lock()
	t, ok := r.trackers[sessionID]
	delete(r.trackers, sessionID)
	r.mu.Unlock()
	if ok {
		t.halt()
	}
}

// PageVisit records one page load against the session's tracker. The count is
// flushed with the next heartbeat rather than written immediately.
func (r *Registry) PageVisit(sessionID string) {
	r.mu.Lock()
	t, ok := r.trackers[sessionID]
	r.mu.Unlock()
	if ok {
		t.visit()
	}
}

// Shutdown stops every tracker. Called on service teardown.
func (r *Registry) Shutdown() {
	r.mu.Lock()
	ts := make([]*tracker, 0, len(r.trackers))
	for _, t := range r.trackers {
		ts = append(ts, t)
	}
	r.trackers = make(map[string]*tracker)
	r.mu.Unlock()
	for _, t := range ts {
		t.halt()
	}
}

type tracker struct {
	store Store
	rowID string
	start time.Time

	mu    sync.Mutex
	pages int

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

func (t *tracker) visit() {
	t.mu.Lock()
	t.pages++
	t.mu.Unlock()
}

func (t *tracker) halt() {
	t.stopOnce.Do(func() { close(t.stop) })
	<-t.done
}

func (t *tracker) run(interval time.Duration, now func() time.Time) {
	defer close(t.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-t.stop:
			return
		case <-ticker.C:
			t.beat(now())
		}
	}
}

// beat recomputes the session duration from wall-clock time and flushes the
// page-visit count. Write failures are logged, never surfaced.
func (t *tracker) beat(now time.Time) {
	minutes := int(math.Round(now.Sub(t.start).Minutes()))

	t.mu.Lock()
	pages := t.pages
	t.mu.Unlock()

	if err := t.store.Heartbeat(t.rowID, now, minutes, pages); err != nil {
		provider.LogError("heartbeat", "update", err)
		return
	}
	provider.LogHeartbeat(t.rowID, minutes, pages)
}
