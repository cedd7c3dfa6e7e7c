package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/humoyun-dev/anonim-chat/internal/infrastructure/realtime"
	anon "github.com/humoyun-dev/anonim-chat/internal/pkg/anon/application/domain"
	"github.com/humoyun-dev/anonim-chat/internal/pkg/anon/persistence/repository/memory"
)

func newEngine(t *testing.T, token string) (*gin.Engine, *memory.Store, *realtime.Router) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	store := memory.NewStore()
	router := realtime.NewRouter()
	t.Cleanup(router.Close)

	r := gin.New()
	RegisterRoutes(r.Group("/api/v1"), Stores{Messages: store, Summaries: store, Users: store}, router, token, nil)
	return r, store, router
}

func seed(t *testing.T, store *memory.Store) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, store.UpsertUser(ctx, anon.User{ID: 5, FirstName: "Ann"}))
	require.NoError(t, store.UpsertUser(ctx, anon.User{ID: 9, Username: "bob"}))
	for i, text := range []string{"first", "second", "third"} {
		_, err := store.CreateMessage(ctx, anon.Message{
			Sender: 9, Recipient: 5, RoomKey: anon.RoomKey(5, 9), Kind: anon.KindText, Text: text,
			CreatedAt: time.Date(2026, 3, 1, 10, i, 0, 0, time.UTC),
		})
		require.NoError(t, err)
	}
}

func get(r http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestConversations_RequireToken(t *testing.T) {
	r, _, _ := newEngine(t, "s3cret")

	assert.Equal(t, http.StatusUnauthorized, get(r, "/api/v1/conversations", "").Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, "/api/v1/conversations", "wrong").Code)
	assert.Equal(t, http.StatusOK, get(r, "/api/v1/conversations", "s3cret").Code)
	assert.Equal(t, http.StatusOK, get(r, "/api/v1/conversations?token=s3cret", "").Code)
}

func TestConversations_ListsSeededRooms(t *testing.T) {
	r, store, _ := newEngine(t, "")
	seed(t, store)

	w := get(r, "/api/v1/conversations", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Conversations []struct {
			RoomKey         string `json:"room_key"`
			LastMessageText string `json:"last_message_text"`
			NameA           string `json:"name_a"`
			NameB           string `json:"name_b"`
		} `json:"conversations"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Conversations, 1)
	c := body.Conversations[0]
	assert.Equal(t, "5_9", c.RoomKey)
	assert.Equal(t, "third", c.LastMessageText)
	assert.Equal(t, "Ann", c.NameA)
	assert.Equal(t, "@bob", c.NameB)
}

func TestRoomMessages_PagingAndValidation(t *testing.T) {
	r, store, _ := newEngine(t, "")
	seed(t, store)

	w := get(r, "/api/v1/conversations/5_9/messages?limit=2", "")
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Messages []struct {
			ID   int64  `json:"id"`
			Text string `json:"text"`
		} `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Messages, 2)
	assert.Equal(t, "third", body.Messages[0].Text)

	w = get(r, "/api/v1/conversations/5_9/messages?before=2", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Messages, 1)
	assert.Equal(t, "first", body.Messages[0].Text)

	assert.Equal(t, http.StatusBadRequest, get(r, "/api/v1/conversations/9_5/messages", "").Code)
	assert.Equal(t, http.StatusBadRequest, get(r, "/api/v1/conversations/5_9/messages?limit=x", "").Code)
}

func TestSocket_JoinReceivesRoomEvents(t *testing.T) {
	r, _, router := newEngine(t, "")
	srv := httptest.NewServer(r)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/ws?viewer_id=v1"
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer ws.Close()

	read := func() map[string]any {
		t.Helper()
		require.NoError(t, ws.SetReadDeadline(time.Now().Add(2*time.Second)))
		var m map[string]any
		require.NoError(t, ws.ReadJSON(&m))
		return m
	}

	assert.Equal(t, "connected", read()["type"])

	require.NoError(t, ws.WriteJSON(map[string]any{"type": "join", "sender_id": 9, "receiver_id": "5"}))
	joined := read()
	assert.Equal(t, "joined", joined["type"])
	assert.Equal(t, "5_9", joined["room_key"])

	n, err := router.BroadcastRoom("5_9", "newMessage", map[string]any{"id": 1})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, "newMessage", read()["type"])

	require.NoError(t, ws.WriteJSON(map[string]any{"type": "join", "sender_id": 5, "receiver_id": 5}))
	assert.Equal(t, "error", read()["type"])
}
