package session

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// RemoteSource reads snapshots from an external agent runtime over a
// websocket. Each frame is either {"version": n, "state": {...}} or a bare
// state object, in which case versions are counted locally.
type RemoteSource struct {
	target  string
	dialer  *websocket.Dialer
	breaker *gobreaker.CircuitBreaker
	logger  *zap.Logger
}

// NewRemoteSource takes a ws:// or wss:// URL. A "{session}" placeholder is
// replaced by the escaped session name; otherwise the name is appended as
// the last path segment.
func NewRemoteSource(target string, logger *zap.Logger) *RemoteSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RemoteSource{
		target: target,
		dialer: &websocket.Dialer{HandshakeTimeout: 5 * time.Second},
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "agent-state-feed",
			Timeout: 30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 3
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logger.Info("agent feed breaker state changed",
					zap.String("breaker", name),
					zap.String("from", from.String()),
					zap.String("to", to.String()))
			},
		}),
		logger: logger,
	}
}

func (r *RemoteSource) url(name string) string {
	escaped := url.PathEscape(name)
	if strings.Contains(r.target, "{session}") {
		return strings.ReplaceAll(r.target, "{session}", escaped)
	}
	return strings.TrimSuffix(r.target, "/") + "/" + escaped
}

// Watch dials the feed. Any dial failure, including an open breaker, is
// reported as ErrDisconnected.
func (r *RemoteSource) Watch(ctx context.Context, name string) (<-chan Snapshot, error) {
	target := r.url(name)
	res, err := r.breaker.Execute(func() (interface{}, error) {
		conn, _, err := r.dialer.DialContext(ctx, target, nil)
		if err != nil {
			return nil, err
		}
		return conn, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: dial %s: %v", ErrDisconnected, target, err)
	}
	conn := res.(*websocket.Conn)

	ch := make(chan Snapshot, 1)
	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
		case <-done:
		}
		_ = conn.Close()
	}()
	go func() {
		defer close(ch)
		defer close(done)
		r.read(ctx, conn, name, ch)
	}()
	return ch, nil
}

func (r *RemoteSource) read(ctx context.Context, conn *websocket.Conn, name string, ch chan Snapshot) {
	logger := r.logger.With(zap.String("session", name))
	var cur cursor
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				logger.Warn("agent feed read failed", zap.Error(err))
			}
			return
		}
		restarts := cur.restarts
		snap, fresh, err := decodeFrame(name, data, &cur)
		if err != nil {
			logger.Warn("dropping malformed agent frame", zap.Error(err))
			continue
		}
		if cur.restarts != restarts {
			logger.Warn("agent feed restarted its versions", zap.Uint64("version", snap.Version))
		}
		if !fresh {
			logger.Debug("dropping stale agent frame", zap.Uint64("version", snap.Version))
			continue
		}
		offer(ch, snap)
	}
}

type frame struct {
	Version *uint64         `json:"version"`
	State   json.RawMessage `json:"state"`
}

// cursor maps the versions of one connection onto local versions, which
// never go backwards. A versioned frame numbered 1 after a higher version
// means the agent restarted; its versions are then shifted past the local
// ones.
type cursor struct {
	remote   uint64
	local    uint64
	offset   uint64
	restarts int
}

// decodeFrame reports fresh=false for a versioned frame that is not newer
// than the last one seen.
func decodeFrame(name string, data []byte, cur *cursor) (snap Snapshot, fresh bool, err error) {
	var f frame
	if err := json.Unmarshal(data, &f); err != nil {
		return Snapshot{}, false, fmt.Errorf("decode frame: %w", err)
	}
	raw := []byte(f.State)
	versioned := f.Version != nil && len(f.State) > 0
	if !versioned {
		raw = data
	}
	state, err := DecodeState(raw)
	if err != nil {
		return Snapshot{}, false, err
	}
	if versioned {
		v := *f.Version
		switch {
		case v == 1 && cur.remote > 1:
			cur.offset = cur.local
			cur.restarts++
		case v <= cur.remote:
			return Snapshot{Session: name, Version: v + cur.offset}, false, nil
		}
		cur.remote = v
		cur.local = v + cur.offset
	} else {
		cur.remote++
		cur.local = cur.remote + cur.offset
	}
	return Snapshot{Session: name, Version: cur.local, State: state, UpdatedAt: time.Now()}, true, nil
}
