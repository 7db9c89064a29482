// Package poller re-reads a logged-in user's record on a fixed interval to
// surface new warnings, broadcasts and, for admins, the moderation backlog.
// It substitutes for a push channel.
package poller

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"schoolhub/backend/internal/models"
	"schoolhub/backend/internal/notice"
	"schoolhub/backend/internal/session"
	"schoolhub/backend/internal/store"
)

const DefaultInterval = 10 * time.Second

type State int

const (
	Idle State = iota
	Polling
)

func (s State) String() string {
	if s == Polling {
		return "polling"
	}
	return "idle"
}

// Source is the subset of the record store the poller reads.
type Source interface {
	GetUser(ctx context.Context, userID string) (*models.User, bool)
	CommunityPosts(ctx context.Context) []models.CommunityPost
	AssessmentEvents(ctx context.Context) []models.AssessmentEvent
	Connected() bool
}

// Snapshot is the latest state observed for one session.
type Snapshot struct {
	Notice            *notice.Notice `json:"notice"`
	NewNotice         bool           `json:"newNotice"`
	PendingCount      int            `json:"pendingCount"`
	PendingModeration int            `json:"pendingModeration"`
	Connected         bool           `json:"connected"`
	CheckedAt         time.Time      `json:"checkedAt"`
}

type Poller struct {
	sess     session.Session
	src      Source
	interval time.Duration
	log      *slog.Logger
	onUpdate func(Snapshot)

	mu     sync.Mutex
	state  State
	stop   chan struct{}
	shown  map[string]bool
	latest Snapshot
}

func New(sess session.Session, src Source, interval time.Duration, logger *slog.Logger, onUpdate func(Snapshot)) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{
		sess:     sess,
		src:      src,
		interval: interval,
		log:      logger.With("component", "poller", "session_id", sess.ID, "user_id", sess.UserID),
		onUpdate: onUpdate,
		shown:    map[string]bool{},
	}
}

func (p *Poller) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *Poller) Latest() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.latest
}

// Start moves Idle to Polling and runs the first poll immediately.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	if p.state == Polling {
		p.mu.Unlock()
		return
	}
	p.state = Polling
	stop := make(chan struct{})
	p.stop = stop
	p.mu.Unlock()

	go p.loop(ctx, stop)
}

// Stop moves Polling to Idle. A poll already in flight is not interrupted; its
// result is dropped when it arrives.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == Idle {
		return
	}
	p.state = Idle
	close(p.stop)
	p.stop = nil
}

func (p *Poller) loop(ctx context.Context, stop <-chan struct{}) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.poll(ctx, stop)
	for {
		select {
		case <-stop:
			return
		case <-ctx.Done():
			p.Stop()
			return
		case <-ticker.C:
			p.poll(ctx, stop)
		}
	}
}

func (p *Poller) poll(ctx context.Context, stop <-chan struct{}) {
	snap := Snapshot{CheckedAt: time.Now().UTC()}

	user, ok := p.src.GetUser(ctx, p.sess.UserID)
	snap.Connected = p.src.Connected()
	if !snap.Connected {
		p.log.Debug("store offline, keeping last state")
		p.apply(stop, func(latest Snapshot) Snapshot {
			latest.Connected = false
			latest.NewNotice = false
			latest.CheckedAt = snap.CheckedAt
			return latest
		})
		return
	}
	if !ok {
		p.log.Warn("session user not found")
		p.apply(stop, func(Snapshot) Snapshot { return snap })
		return
	}

	if n, found := notice.Next(*user); found {
		snap.Notice = &n
	}
	snap.PendingCount = len(notice.Pending(*user))

	if user.Role.IsAdmin() {
		var (
			posts  []models.CommunityPost
			events []models.AssessmentEvent
		)
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			posts = p.src.CommunityPosts(gctx)
			return nil
		})
		g.Go(func() error {
			events = p.src.AssessmentEvents(gctx)
			return nil
		})
		_ = g.Wait()
		snap.PendingModeration = store.PendingModeration(posts, events)
	}

	p.apply(stop, func(Snapshot) Snapshot { return snap })
}

// apply installs the snapshot built by next unless the poller was stopped
// while the poll was in flight.
func (p *Poller) apply(stop <-chan struct{}, next func(Snapshot) Snapshot) {
	p.mu.Lock()
	if p.state != Polling || p.stop != stop {
		p.mu.Unlock()
		p.log.Debug("discarding poll result after stop")
		return
	}
	prev := p.latest
	snap := next(prev)
	if snap.Notice != nil {
		key := string(snap.Notice.Kind) + ":" + snap.Notice.ID
		if !p.shown[key] {
			p.shown[key] = true
			snap.NewNotice = true
		}
	}
	p.latest = snap
	p.mu.Unlock()

	if p.onUpdate != nil && changed(prev, snap) {
		p.onUpdate(snap)
	}
}

func changed(prev, next Snapshot) bool {
	return next.NewNotice ||
		prev.PendingModeration != next.PendingModeration ||
		prev.PendingCount != next.PendingCount ||
		prev.Connected != next.Connected
}
