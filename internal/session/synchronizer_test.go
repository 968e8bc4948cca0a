package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BerylCAtieno/gtm-quest/internal/models"
)

type failingSource struct{}

func (failingSource) Watch(context.Context, string) (<-chan Snapshot, error) {
	return nil, errors.New("connection refused")
}

// scriptedSource replays a fixed list of snapshots and then ends the feed.
type scriptedSource struct {
	snaps []Snapshot
}

func (s scriptedSource) Watch(ctx context.Context, _ string) (<-chan Snapshot, error) {
	ch := make(chan Snapshot)
	go func() {
		defer close(ch)
		for _, snap := range s.snaps {
			select {
			case ch <- snap:
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch, nil
}

func next(t *testing.T, sub *Subscription) Snapshot {
	t.Helper()
	select {
	case snap, ok := <-sub.Updates():
		require.True(t, ok, "updates closed")
		return snap
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for snapshot")
		return Snapshot{}
	}
}

func waitStatus(t *testing.T, sub *Subscription, want Status) {
	t.Helper()
	require.Eventually(t, func() bool { return sub.Status() == want }, time.Second, 5*time.Millisecond)
}

func TestSubscribeDeliversEmptySnapshotFirst(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sub := NewSynchronizer(NewStore(nil), nil).Subscribe(ctx, "s1")
	first := next(t, sub)
	assert.Zero(t, first.Version)
	assert.Equal(t, models.NewGTMState(), first.State)
	waitStatus(t, sub, StatusConnected)
}

func TestSubscribeFollowsStoreUpdates(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := NewStore(nil)
	sub := NewSynchronizer(store, nil).Subscribe(ctx, "s1")
	next(t, sub)
	waitStatus(t, sub, StatusConnected)

	store.Update("s1", func(st *models.GTMState) { st.Industry = models.String("fintech") })
	snap := next(t, sub)
	assert.Equal(t, uint64(1), snap.Version)
	require.NotNil(t, snap.State.Industry)
	assert.Equal(t, "fintech", *snap.State.Industry)
	assert.Equal(t, snap, sub.Latest())
}

func TestSubscribeSurvivesSessionReset(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := NewStore(nil)
	sub := NewSynchronizer(store, nil).Subscribe(ctx, "s")
	next(t, sub)
	waitStatus(t, sub, StatusConnected)

	store.Update("s", func(st *models.GTMState) { st.CompanyName = models.String("Old Co") })
	assert.Equal(t, uint64(1), next(t, sub).Version)

	store.Drop("s")
	reset := next(t, sub)
	assert.Equal(t, uint64(2), reset.Version)
	assert.Equal(t, models.NewGTMState(), reset.State)

	store.Update("s", func(st *models.GTMState) { st.CompanyName = models.String("Acme") })
	snap := next(t, sub)
	assert.Equal(t, uint64(3), snap.Version)
	require.NotNil(t, snap.State.CompanyName)
	assert.Equal(t, "Acme", *snap.State.CompanyName)
	assert.Equal(t, StatusConnected, sub.Status())
	assert.NoError(t, sub.Err())
}

func TestSubscribeDropsOutOfOrderSnapshots(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	newer := Snapshot{Version: 3, State: models.NewGTMState()}
	newer.State.CompanyName = models.String("new")
	older := Snapshot{Version: 2, State: models.NewGTMState()}
	older.State.CompanyName = models.String("old")

	sub := NewSynchronizer(scriptedSource{snaps: []Snapshot{newer, older, newer}}, nil).Subscribe(ctx, "s1")
	waitStatus(t, sub, StatusDisconnected)
	assert.ErrorIs(t, sub.Err(), ErrDisconnected)

	// The empty snapshot may have been coalesced away; whatever is queued
	// must be the newest one.
	got := next(t, sub)
	if got.Version == 0 {
		got = next(t, sub)
	}
	assert.Equal(t, uint64(3), got.Version)
	assert.Equal(t, "s1", got.Session)
	assert.Equal(t, "new", *sub.Latest().State.CompanyName)
}

func TestSubscribeReportsDisconnectedWithoutFailing(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	sub := NewSynchronizer(failingSource{}, nil).Subscribe(ctx, "s1")
	first := next(t, sub)
	assert.Equal(t, EmptySnapshot("s1").State, first.State)
	waitStatus(t, sub, StatusDisconnected)
	assert.Error(t, sub.Err())

	cancel()
	select {
	case <-sub.Done():
	case <-time.After(time.Second):
		t.Fatal("subscription did not stop")
	}
	_, ok := <-sub.Updates()
	assert.False(t, ok)
}

func TestSubscribeWithoutSource(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sub := NewSynchronizer(nil, nil).Subscribe(ctx, "s1")
	next(t, sub)
	waitStatus(t, sub, StatusDisconnected)
}
