package hub

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mjcf-editor/internal/editor/models"
	"mjcf-editor/internal/editor/session"
	"mjcf-editor/internal/editor/store"
)

func dial(t *testing.T, srv *httptest.Server, sid string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?session=" + sid
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readState(t *testing.T, conn *websocket.Conn) models.State {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var st models.State
	require.NoError(t, conn.ReadJSON(&st))
	return st
}

func waitClients(t *testing.T, h *Hub, sid string, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return h.Clients(sid) == n }, 5*time.Second, 10*time.Millisecond)
}

func TestHubStreamsStates(t *testing.T) {
	sessions := session.NewManager(store.Options{})
	h := New(sessions)
	srv := httptest.NewServer(h)
	defer srv.Close()

	sid, st := sessions.Open()
	conn := dial(t, srv, sid)

	initial := readState(t, conn)
	assert.Empty(t, initial.Nodes)
	waitClients(t, h, sid, 1)

	id := st.AddPrimitive(models.GeomSphere)
	next := readState(t, conn)
	assert.Greater(t, next.Version, initial.Version)
	require.Len(t, next.Nodes, 1)
	assert.Equal(t, id, next.Nodes[0].ID)
	assert.Equal(t, models.Sphere{Radius: 0.1}, next.Nodes[0].Geom.Shape)
	assert.Equal(t, st.XML(), next.XML)
}

func TestHubUnknownSession(t *testing.T) {
	h := New(session.NewManager(store.Options{}))
	srv := httptest.NewServer(h)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?session=nope"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHubCloseSessionDisconnects(t *testing.T) {
	sessions := session.NewManager(store.Options{})
	h := New(sessions)
	sessions.OnLifecycle(nil, h.CloseSession)
	srv := httptest.NewServer(h)
	defer srv.Close()

	sid, _ := sessions.Open()
	conn := dial(t, srv, sid)
	readState(t, conn)
	waitClients(t, h, sid, 1)

	require.NoError(t, sessions.Close(sid))
	assert.Equal(t, 0, h.Clients(sid))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
}

func TestOfferDropsOldest(t *testing.T) {
	c := &client{send: make(chan models.State, 2), done: make(chan struct{})}
	c.offer(models.State{Version: 1})
	c.offer(models.State{Version: 2})
	c.offer(models.State{Version: 3})

	assert.Equal(t, uint64(2), (<-c.send).Version)
	assert.Equal(t, uint64(3), (<-c.send).Version)
}

func TestJoinAfterSessionClosed(t *testing.T) {
	sessions := session.NewManager(store.Options{})
	h := New(sessions)

	sid, st := sessions.Open()
	live := &client{send: make(chan models.State, 1), done: make(chan struct{})}
	require.True(t, h.join(sid, st, live))
	assert.Equal(t, 1, h.Clients(sid))
	h.remove(sid, live)

	require.NoError(t, sessions.Close(sid))
	late := &client{send: make(chan models.State, 1), done: make(chan struct{})}
	assert.False(t, h.join(sid, st, late))
	assert.Equal(t, 0, h.Clients(sid))
}
