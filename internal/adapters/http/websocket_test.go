package http_test

import (
	"encoding/json"
	"net"
	"testing"
	"time"

	fastws "github.com/fasthttp/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	handler "github.com/samirrijal/minarah/internal/adapters/http"
	"github.com/samirrijal/minarah/internal/core/domain"
)

// serve starts the fixture app on a loopback port and returns the ws URL.
func serve(t *testing.T, f *fixture) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = f.app.Listener(ln) }()
	t.Cleanup(func() { _ = f.app.Shutdown() })
	return "ws://" + ln.Addr().String() + "/ws"
}

func waitSubscribers(t *testing.T, f *fixture, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return f.hub.Len() == n }, 2*time.Second, 10*time.Millisecond)
}

func TestWebSocket_StreamsEventsInOrder(t *testing.T) {
	f := newFixture(t)
	url := serve(t, f)

	conns := make([]*fastws.Conn, 2)
	for i := range conns {
		c, _, err := fastws.DefaultDialer.Dial(url, nil)
		require.NoError(t, err)
		defer c.Close()
		conns[i] = c
	}
	waitSubscribers(t, f, 2)

	// Client payloads are ignored.
	require.NoError(t, conns[0].WriteMessage(fastws.TextMessage, []byte(`{"action":"subscribe"}`)))

	f.hub.Publish(domain.SOSAssignedEvent("s1", "t1"))
	f.hub.Publish(domain.SOSRescuedEvent("s1"))

	for _, c := range conns {
		require.NoError(t, c.SetReadDeadline(time.Now().Add(2*time.Second)))
		var got []domain.Event
		for i := 0; i < 2; i++ {
			_, msg, err := c.ReadMessage()
			require.NoError(t, err)
			var ev domain.Event
			require.NoError(t, json.Unmarshal(msg, &ev))
			got = append(got, ev)
		}
		assert.Equal(t, domain.EventSOSAssigned, got[0].Type)
		assert.Equal(t, "t1", got[0].RescueTeam)
		assert.Equal(t, domain.EventSOSRescued, got[1].Type)
	}
}

func TestWebSocket_DisconnectUnsubscribes(t *testing.T) {
	f := newFixture(t, func(d *handler.Dependencies) {
		d.WS = handler.WSConfig{WriteTimeout: time.Second, PingInterval: 50 * time.Millisecond}
	})
	url := serve(t, f)

	c, _, err := fastws.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	waitSubscribers(t, f, 1)

	require.NoError(t, c.Close())
	waitSubscribers(t, f, 0)

	assert.Zero(t, f.hub.Publish(domain.SOSRescuedEvent("s1")))
}
