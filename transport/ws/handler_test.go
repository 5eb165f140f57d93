package ws

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/destinyy00/skillswap/auth"
	"github.com/destinyy00/skillswap/domain/event"
	"github.com/destinyy00/skillswap/errors"
	"github.com/destinyy00/skillswap/relay"

	"github.com/gorilla/websocket"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

const testSecret = "handshake-test-secret"

func newTestServer(t *testing.T) (*httptest.Server, *relay.Registry, *auth.TokenIssuer) {
	t.Helper()
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	registry := relay.NewRegistry()
	core := relay.NewRelay(log, registry)
	handler := NewHandler(log, auth.NewJWTVerifier(testSecret), registry, core, 5*time.Second, 16)

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server, registry, auth.NewTokenIssuer(testSecret, time.Hour)
}

func wsURL(server *httptest.Server) string {
	return "ws" + strings.TrimPrefix(server.URL, "http")
}

func dial(t *testing.T, server *httptest.Server, token string) *websocket.Conn {
	t.Helper()
	header := http.Header{}
	if token != "" {
		header.Set("Authorization", "Bearer "+token)
	}
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL(server), header)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestHandshake_Rejects_Missing_Token(t *testing.T) {
	req := require.New(t)
	server, registry, _ := newTestServer(t)

	_, resp, err := websocket.DefaultDialer.Dial(wsURL(server), nil)

	req.ErrorIs(err, websocket.ErrBadHandshake)
	req.Equal(http.StatusUnauthorized, resp.StatusCode)
	_ = resp.Body.Close()
	// No partial state: the rejected attempt never entered a routing group
	req.Equal(0, registry.Count())
}

func TestHandshake_Rejects_Invalid_Token(t *testing.T) {
	req := require.New(t)
	server, registry, _ := newTestServer(t)

	header := http.Header{}
	header.Set("Authorization", "Bearer not.a.token")
	_, resp, err := websocket.DefaultDialer.Dial(wsURL(server), header)

	req.ErrorIs(err, websocket.ErrBadHandshake)
	req.Equal(http.StatusUnauthorized, resp.StatusCode)
	_ = resp.Body.Close()
	req.Equal(0, registry.Count())
}

func TestHandshake_Accepts_Token_As_Query_Parameter(t *testing.T) {
	req := require.New(t)
	server, registry, issuer := newTestServer(t)

	token, err := issuer.Generate("alice", "alice@example.com", nil)
	req.NoError(err)

	conn, resp, err := websocket.DefaultDialer.Dial(wsURL(server)+"?token="+token, nil)
	req.NoError(err)
	_ = resp.Body.Close()
	defer conn.Close()

	req.Eventually(func() bool { return registry.Count() == 1 },
		time.Second, 10*time.Millisecond)
}

func TestHandshake_Registers_And_Unregisters(t *testing.T) {
	req := require.New(t)
	server, registry, issuer := newTestServer(t)

	token, err := issuer.Generate("alice", "", nil)
	req.NoError(err)
	conn := dial(t, server, token)

	req.Eventually(func() bool { return registry.Count() == 1 },
		time.Second, 10*time.Millisecond)
	req.Len(registry.MembersOf("alice"), 1)

	// When the client goes away
	_ = conn.Close()

	// Then the connection leaves its routing group
	req.Eventually(func() bool { return registry.Count() == 0 },
		time.Second, 10*time.Millisecond)
}

func TestRelay_EndToEnd_Session_Request(t *testing.T) {
	req := require.New(t)
	server, registry, issuer := newTestServer(t)

	aliceToken, err := issuer.Generate("alice", "", nil)
	req.NoError(err)
	bobToken, err := issuer.Generate("bob", "", nil)
	req.NoError(err)

	alice := dial(t, server, aliceToken)
	bob := dial(t, server, bobToken)
	req.Eventually(func() bool { return registry.Count() == 2 },
		time.Second, 10*time.Millisecond)

	// When bob submits a session request addressed to alice
	err = bob.WriteJSON(inboundMessage{
		Type:     event.KindSessionRequest,
		ToUserID: "alice",
		Payload:  json.RawMessage(`{"sessionId":"s1"}`),
	})
	req.NoError(err)

	// Then alice receives exactly one "received" variant carrying the origin
	var got outboundMessage
	req.NoError(alice.SetReadDeadline(time.Now().Add(2 * time.Second)))
	req.NoError(alice.ReadJSON(&got))
	req.Equal(event.KindSessionIncoming, got.Type)
	req.Equal("bob", got.FromUserID)
	req.JSONEq(`{"sessionId":"s1"}`, string(got.Payload))

	// And bob's own connection receives nothing
	req.NoError(bob.SetReadDeadline(time.Now().Add(300 * time.Millisecond)))
	var stray outboundMessage
	req.Error(bob.ReadJSON(&stray))
}

func TestRelay_EndToEnd_Ordering_Per_Origin(t *testing.T) {
	req := require.New(t)
	server, registry, issuer := newTestServer(t)

	aliceToken, err := issuer.Generate("alice", "", nil)
	req.NoError(err)
	bobToken, err := issuer.Generate("bob", "", nil)
	req.NoError(err)

	alice := dial(t, server, aliceToken)
	bob := dial(t, server, bobToken)
	req.Eventually(func() bool { return registry.Count() == 2 },
		time.Second, 10*time.Millisecond)

	for i := 1; i <= 5; i++ {
		req.NoError(bob.WriteJSON(inboundMessage{
			Type:     event.KindNotification,
			ToUserID: "alice",
			Payload:  json.RawMessage(fmt.Sprintf(`{"seq":%d}`, i)),
		}))
	}

	req.NoError(alice.SetReadDeadline(time.Now().Add(2 * time.Second)))
	for i := 1; i <= 5; i++ {
		var got outboundMessage
		req.NoError(alice.ReadJSON(&got))
		req.Equal(event.KindNotificationReceived, got.Type)
		var payload struct {
			Seq int `json:"seq"`
		}
		req.NoError(json.Unmarshal(got.Payload, &payload))
		req.Equal(i, payload.Seq)
	}
}

func TestConsume_Reports_Closed_Connection(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	conn := newConnection(log, nil, "alice", 1)
	conn.close()

	err := conn.Consume(t.Context(), event.Envelope{
		Target: "alice", Kind: event.KindNotification, Payload: json.RawMessage(`{}`),
	})
	req.Error(err)
}

func TestConsume_Full_Buffer_Disconnects_The_Slow_Consumer(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	conn := newConnection(log, nil, "alice", 1)
	envelope := event.Envelope{Target: "alice", Kind: event.KindNotification, Payload: json.RawMessage(`{}`)}

	// First enqueue fills the buffer; nothing drains it (no writer running)
	req.NoError(conn.Consume(t.Context(), envelope))

	// Second enqueue overflows: the event is refused and the connection closed
	err := conn.Consume(t.Context(), envelope)
	req.ErrorIs(err, errors.ErrSlowConsumer)
	select {
	case <-conn.done:
	default:
		req.Fail("expected the connection to be closed after the overflow")
	}

	// Later deliveries see a closed connection, not another overflow
	err = conn.Consume(t.Context(), envelope)
	req.ErrorIs(err, errors.ErrConnectionClosed)
}
