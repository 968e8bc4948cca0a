package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// newFeedServer serves the given frames to every client, then holds the
// connection open until the client goes away.
func newFeedServer(t *testing.T, frames ...string) (*httptest.Server, chan string) {
	t.Helper()
	paths := make(chan string, 4)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths <- r.URL.Path
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for _, f := range frames {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(f)); err != nil {
				return
			}
		}
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)
	return srv, paths
}

func wsURL(srv *httptest.Server) string {
	return strings.Replace(srv.URL, "http", "ws", 1)
}

func TestRemoteSourceStreamsVersionedFrames(t *testing.T) {
	srv, paths := newFeedServer(t,
		`{"version": 1, "state": {"company_name": "Acme"}}`,
		`{"version": 1, "state": {"company_name": "duplicate"}}`,
		`not json`,
		`{"version": 4, "state": {"company_name": "Acme", "industry": "fintech"}}`,
	)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	feed, err := NewRemoteSource(wsURL(srv)+"/state/{session}", nil).Watch(ctx, "team a")
	require.NoError(t, err)
	assert.Equal(t, "/state/team a", <-paths)

	var last Snapshot
	require.Eventually(t, func() bool {
		select {
		case snap := <-feed:
			last = snap
		default:
		}
		return last.Version == 4
	}, 2*time.Second, 10*time.Millisecond)
	require.NotNil(t, last.State.Industry)
	assert.Equal(t, "fintech", *last.State.Industry)
	assert.Equal(t, "team a", last.Session)

	cancel()
	require.Eventually(t, func() bool {
		select {
		case _, ok := <-feed:
			return !ok
		default:
			return false
		}
	}, 2*time.Second, 10*time.Millisecond)
}

func TestRemoteSourceCountsBareFrames(t *testing.T) {
	srv, _ := newFeedServer(t, `{"industry": "saas"}`, `{"industry": "saas", "stage": "seed"}`)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sub := NewSynchronizer(NewRemoteSource(wsURL(srv)+"/feed", nil), nil).Subscribe(ctx, "s1")
	require.Eventually(t, func() bool { return sub.Latest().Version == 2 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, StatusConnected, sub.Status())
	require.NotNil(t, sub.Latest().State.Stage)
}

func TestRemoteSourceDialFailureIsDisconnected(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	target := wsURL(srv)
	srv.Close()

	_, err := NewRemoteSource(target, nil).Watch(context.Background(), "s1")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDisconnected)
}

func TestDecodeFrameFollowsAgentRestart(t *testing.T) {
	var cur cursor
	versions := func(frames ...string) []uint64 {
		var out []uint64
		for _, f := range frames {
			snap, fresh, err := decodeFrame("s1", []byte(f), &cur)
			require.NoError(t, err)
			if fresh {
				out = append(out, snap.Version)
			}
		}
		return out
	}

	assert.Equal(t, []uint64{1, 3}, versions(
		`{"version": 1, "state": {}}`,
		`{"version": 3, "state": {}}`,
		`{"version": 2, "state": {}}`,
	))
	assert.Zero(t, cur.restarts)

	// The agent came back with a fresh counter.
	assert.Equal(t, []uint64{4, 5, 6}, versions(
		`{"version": 1, "state": {"company_name": "Acme"}}`,
		`{"version": 2, "state": {}}`,
		`{"industry": "saas"}`,
	))
	assert.Equal(t, 1, cur.restarts)
}
