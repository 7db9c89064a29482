package poller

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"schoolhub/backend/internal/session"
)

// Registry runs one poller per live session. It is wired into the session
// manager as a lifecycle hook.
type Registry struct {
	src      Source
	interval time.Duration
	log      *slog.Logger

	mu      sync.Mutex
	pollers map[string]*Poller
}

var _ session.Lifecycle = (*Registry)(nil)

func NewRegistry(src Source, interval time.Duration, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		src:      src,
		interval: interval,
		log:      logger,
		pollers:  map[string]*Poller{},
	}
}

func (r *Registry) SessionStarted(s session.Session) {
	log := r.log.With("session_id", s.ID)
	p := New(s, r.src, r.interval, r.log, func(snap Snapshot) {
		if snap.NewNotice && snap.Notice != nil {
			log.Info("new notice", "kind", snap.Notice.Kind, "notice_id", snap.Notice.ID)
		}
	})

	r.mu.Lock()
	if old, ok := r.pollers[s.ID]; ok {
		old.Stop()
	}
	r.pollers[s.ID] = p
	r.mu.Unlock()

	p.Start(context.Background())
}

func (r *Registry) SessionEnded(id string) {
	r.mu.Lock()
	p, ok := r.pollers[id]
	delete(r.pollers, id)
	r.mu.Unlock()

	if ok {
		p.Stop()
	}
}

// Snapshot returns the latest state observed for the session.
func (r *Registry) Snapshot(id string) (Snapshot, bool) {
	r.mu.Lock()
	p, ok := r.pollers[id]
	r.mu.Unlock()
	if !ok {
		return Snapshot{}, false
	}
	return p.Latest(), true
}

// StopAll stops every poller, used on shutdown.
func (r *Registry) StopAll() {
	r.mu.Lock()
	pollers := r.pollers
	r.pollers = map[string]*Poller{}
	r.mu.Unlock()

	for _, p := range pollers {
		p.Stop()
	}
}
