package websocket_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gwebsocket "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tkahng/stickpile/websocket"
)

func TestWSHandler(t *testing.T) {
	testBytes := []byte(`{"type":"play","data":{"number":1}}`)

	doneReg := make(chan websocket.Client)
	doneUnreg := make(chan websocket.Client, 2)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	manager := websocket.NewBroadcaster()
	go manager.Run(ctx)

	h := websocket.ServeWS(
		websocket.DefaultUpgrader(nil),
		websocket.DefaultSetupConn,
		websocket.NewClientFactory(nil),
		func(*http.Request) string { return "viewer-1" },
		func(ctx context.Context, cf context.CancelFunc, c websocket.Client) {
			manager.RegisterClient(ctx, cf, c)
			doneReg <- c
		},
		func(c websocket.Client) {
			manager.UnregisterClient(c)
			doneUnreg <- c
		},
		50*time.Second,
		// echo
		[]websocket.MessageHandler{func(c websocket.Client, b []byte) { c.Send(b) }},
	)

	s := httptest.NewServer(h)
	defer s.Close()
	rawWS, _, err := gwebsocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(s.URL, "http"), nil)
	require.NoError(t, err)
	defer func() {
		_ = rawWS.Close()
	}()

	c := <-doneReg
	assert.Equal(t, "viewer-1", c.ID())
	assert.Len(t, manager.Clients(), 1)

	require.NoError(t, rawWS.WriteMessage(gwebsocket.TextMessage, testBytes))
	_, msg, err := rawWS.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, testBytes, msg)

	require.NoError(t, manager.Broadcast([]byte("frame")))
	_, msg, err = rawWS.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, []byte("frame"), msg)

	// closing the connection unregisters the viewer
	_ = rawWS.WriteControl(gwebsocket.CloseMessage, nil, time.Now().Add(time.Second))
	assert.Equal(t, c, <-doneUnreg)
	c.Wait()
	assert.Empty(t, manager.Clients())
}

func TestDefaultUpgrader_CheckOrigin(t *testing.T) {
	u := websocket.DefaultUpgrader([]string{"http://localhost:8081"})
	tests := []struct {
		origin string
		want   bool
	}{
		{origin: "", want: true},
		{origin: "http://localhost:8081", want: true},
		{origin: "http://evil.example", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.origin, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/api/ws", nil)
			if tt.origin != "" {
				r.Header.Set("Origin", tt.origin)
			}
			assert.Equal(t, tt.want, u.CheckOrigin(r))
		})
	}
}
