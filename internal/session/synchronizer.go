package session

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
)

// ErrDisconnected means the agent state feed could not be reached or ended.
var ErrDisconnected = errors.New("agent state feed disconnected")

type Status string

const (
	StatusConnecting   Status = "connecting"
	StatusConnected    Status = "connected"
	StatusDisconnected Status = "disconnected"
)

// Synchronizer hands out subscriptions to the latest snapshot of a session.
type Synchronizer struct {
	source Source
	logger *zap.Logger
}

func NewSynchronizer(source Source, logger *zap.Logger) *Synchronizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Synchronizer{source: source, logger: logger}
}

// Subscription is a latest-value view of one session. Updates yields complete
// snapshots in commit order; intermediate snapshots may be skipped when the
// reader is slower than the agent. The first value is always the empty state.
// Both channels close once the subscription context is done.
type Subscription struct {
	name    string
	updates chan Snapshot
	statusc chan Status
	done    chan struct{}

	mu     sync.Mutex
	latest Snapshot
	status Status
	err    error
}

// Subscribe never fails: if the feed cannot be reached the subscription
// reports StatusDisconnected and keeps the empty snapshot.
func (s *Synchronizer) Subscribe(ctx context.Context, name string) *Subscription {
	sub := &Subscription{
		name:    name,
		updates: make(chan Snapshot, 1),
		statusc: make(chan Status, 1),
		done:    make(chan struct{}),
		latest:  EmptySnapshot(name),
		status:  StatusConnecting,
	}
	offer(sub.updates, sub.latest)
	offer(sub.statusc, StatusConnecting)
	go sub.run(ctx, s.source, s.logger.With(zap.String("session", name)))
	return sub
}

func (sub *Subscription) run(ctx context.Context, source Source, logger *zap.Logger) {
	defer close(sub.done)
	defer close(sub.statusc)
	defer close(sub.updates)

	if source == nil {
		sub.setStatus(StatusDisconnected, ErrDisconnected)
		<-ctx.Done()
		return
	}
	feed, err := source.Watch(ctx, sub.name)
	if err != nil {
		logger.Warn("agent state feed unavailable", zap.Error(err))
		sub.setStatus(StatusDisconnected, err)
		<-ctx.Done()
		return
	}
	sub.setStatus(StatusConnected, nil)

	for {
		select {
		case <-ctx.Done():
			return
		case snap, ok := <-feed:
			if !ok {
				if ctx.Err() != nil {
					return
				}
				logger.Warn("agent state feed ended")
				sub.setStatus(StatusDisconnected, ErrDisconnected)
				<-ctx.Done()
				return
			}
			sub.deliver(snap)
		}
	}
}

func (sub *Subscription) deliver(snap Snapshot) {
	sub.mu.Lock()
	if snap.Version <= sub.latest.Version {
		sub.mu.Unlock()
		return
	}
	snap.Session = sub.name
	sub.latest = snap
	sub.mu.Unlock()
	offer(sub.updates, snap)
}

func (sub *Subscription) setStatus(status Status, err error) {
	sub.mu.Lock()
	sub.status = status
	sub.err = err
	sub.mu.Unlock()
	offer(sub.statusc, status)
}

func (sub *Subscription) Name() string { return sub.name }

// Updates yields snapshots; see Subscription.
func (sub *Subscription) Updates() <-chan Snapshot { return sub.updates }

// StatusChanges yields the latest connection status whenever it changes.
func (sub *Subscription) StatusChanges() <-chan Status { return sub.statusc }

// Done is closed after both channels are closed.
func (sub *Subscription) Done() <-chan struct{} { return sub.done }

// Latest is the newest snapshot accepted so far.
func (sub *Subscription) Latest() Snapshot {
	sub.mu.Lock()
	defer sub.mu.Unlock()
	return sub.latest
}

func (sub *Subscription) Status() Status {
	sub.mu.Lock()
	defer sub.mu.Unlock()
	return sub.status
}

// Err is why the subscription is disconnected, if it is.
func (sub *Subscription) Err() error {
	sub.mu.Lock()
	defer sub.mu.Unlock()
	return sub.err
}
