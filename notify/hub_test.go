package notify_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/shuttlecourt/tournament-engine/notify"
)

func TestPublishMatchReadyReachesSubscribedClient(t *testing.T) {
	hub := notify.NewHub()
	go hub.Run()

	var upgrader websocket.Upgrader
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		hub.Register(conn, "category-42")
	}))
	defer server.Close()

	wsURL := "ws" + server.URL[len("http"):]
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	// give the server side a moment to register before publishing
	time.Sleep(50 * time.Millisecond)
	hub.PublishMatchReady(42, 7, 2)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)

	var event notify.MatchReadyEvent
	require.NoError(t, json.Unmarshal(payload, &event))
	require.Equal(t, int64(42), event.CategoryID)
	require.Equal(t, int64(7), event.MatchID)
	require.Equal(t, 2, event.Round)
}

func TestPublishMatchReadyToEmptyRoomIsNoOp(t *testing.T) {
	hub := notify.NewHub()
	go hub.Run()
	hub.PublishMatchReady(999, 1, 1)
}
