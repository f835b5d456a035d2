// internal/server/handlers/websocket_test.go

package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

// dialTestClient upgrades a loopback connection and returns the client side
func dialTestClient(t *testing.T) *websocket.Conn {
	t.Helper()

	accepted := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		close(accepted)
		conn.ReadMessage()
		conn.Close()
	}))
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	<-accepted
	return conn
}

func TestAlertClientCloseConcurrent(t *testing.T) {
	client := &AlertClient{
		conn: dialTestClient(t),
		send: make(chan []byte, 1),
	}

	// Both pumps tear the client down on exit; racing closes must be safe
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			client.close()
		}()
	}
	wg.Wait()

	require.Nil(t, client.subscriptions)
}
