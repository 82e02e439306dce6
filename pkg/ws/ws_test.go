package ws

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishReachesOnlyTheOwner(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		owner, _ := strconv.Atoi(r.URL.Query().Get("owner"))
		hub.Serve(w, r, uint(owner))
	}))
	defer srv.Close()

	dial := func(owner int) *websocket.Conn {
		url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?owner=" + strconv.Itoa(owner)
		conn, _, err := websocket.DefaultDialer.Dial(url, nil)
		require.NoError(t, err)
		return conn
	}

	alice := dial(1)
	defer alice.Close()
	bob := dial(2)
	defer bob.Close()

	require.Eventually(t, func() bool { return hub.Count(1) == 1 && hub.Count(2) == 1 },
		time.Second, 10*time.Millisecond)

	require.NoError(t, hub.Publish(1, map[string]int{"product_id": 7, "stock": 4}))

	_ = alice.SetReadDeadline(time.Now().Add(time.Second))
	_, msg, err := alice.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, `{"product_id":7,"stock":4}`, string(msg))

	_ = bob.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	_, _, err = bob.ReadMessage()
	assert.Error(t, err)
}
