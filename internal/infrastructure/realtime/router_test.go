package realtime

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newServer attaches every upgraded socket to router and joins it to the room in ?room=.
func newServer(t *testing.T, router *Router) *httptest.Server {
	t.Helper()
	up := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := up.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		conn := NewConnection(r.URL.Query().Get("viewer"), ws)
		router.Attach(conn)
		if room := r.URL.Query().Get("room"); room != "" {
			router.Join(room, conn)
		}
		// hold the socket until the client goes away
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				router.Detach(conn)
				return
			}
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?" + query
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ws.Close() })
	return ws
}

func readFrame(t *testing.T, ws *websocket.Conn) Frame {
	t.Helper()
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := ws.ReadMessage()
	require.NoError(t, err)
	var f Frame
	require.NoError(t, json.Unmarshal(data, &f))
	return f
}

func TestRouter_RoomAndGlobalBroadcast(t *testing.T) {
	router := NewRouter()
	defer router.Close()
	srv := newServer(t, router)

	inRoom := dial(t, srv, "viewer=a&room=111_222")
	outside := dial(t, srv, "viewer=b")
	require.Eventually(t, func() bool { return router.Count() == 2 }, time.Second, 10*time.Millisecond)

	n, err := router.BroadcastRoom("111_222", "newMessage", map[string]int{"id": 1})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, "newMessage", readFrame(t, inRoom).Type)

	n, err = router.BroadcastEvent("conversationUpdated", nil)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, "conversationUpdated", readFrame(t, inRoom).Type)
	assert.Equal(t, "conversationUpdated", readFrame(t, outside).Type)
}

func TestRouter_SameViewerReplacesSession(t *testing.T) {
	router := NewRouter()
	defer router.Close()
	srv := newServer(t, router)

	first := dial(t, srv, "viewer=a&room=r")
	require.Eventually(t, func() bool { return router.Count() == 1 }, time.Second, 10*time.Millisecond)
	_ = dial(t, srv, "viewer=a")

	require.NoError(t, first.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := first.ReadMessage()
	var closeErr *websocket.CloseError
	require.ErrorAs(t, err, &closeErr)
	assert.Equal(t, 4001, closeErr.Code)
	assert.Equal(t, 0, router.Broadcast("r", []byte("{}")))
}
