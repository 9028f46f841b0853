package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/oddsmesh/internal/scheduler"
)

func dialHub(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil {
		resp.Body.Close()
	}
	return conn
}

func TestHubBroadcastsPassSummaries(t *testing.T) {
	hub := NewHub(nil)
	go hub.Run()
	defer hub.Close()

	srv := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	defer srv.Close()

	conn := dialHub(t, srv)
	defer conn.Close()

	// Registration races the broadcast; give the hub a beat to process it.
	time.Sleep(50 * time.Millisecond)

	hub.BroadcastSummary(&scheduler.PassSummary{Providers: 2})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg wsMessage
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "pass_summary", msg.Type)
}

func TestServeWSAfterCloseDisconnects(t *testing.T) {
	hub := NewHub(nil)
	go hub.Run()
	hub.Close()

	srv := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	defer srv.Close()

	// A subscriber arriving after shutdown must be dropped, not parked on
	// the register channel.
	conn := dialHub(t, srv)
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
}
