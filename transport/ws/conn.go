package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/destinyy00/skillswap/contract"
	"github.com/destinyy00/skillswap/domain/event"
	"github.com/destinyy00/skillswap/errors"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// connection wraps one live websocket with its immutable subject binding.
// A single writer goroutine drains the buffered send channel, which keeps
// frame writes serialized and preserves per-origin submission order.
type connection struct {
	id        uuid.UUID
	subjectID string
	createdAt time.Time

	ws   *websocket.Conn
	send chan []byte
	done chan struct{}
	once sync.Once

	log *slog.Logger
}

func newConnection(log *slog.Logger, wsConn *websocket.Conn, subjectID string, bufferSize int) *connection {
	return &connection{
		id:        uuid.New(),
		subjectID: subjectID,
		createdAt: time.Now().UTC(),
		ws:        wsConn,
		send:      make(chan []byte, bufferSize),
		done:      make(chan struct{}),
		log:       log,
	}
}

// Consume implements contract.EventSink. It enqueues the outbound frame
// without blocking: a closed connection or a full buffer is reported back to
// the relay, which absorbs the failure.
func (c *connection) Consume(_ context.Context, e event.Envelope) error {
	kind, ok := e.Kind.Received()
	if !ok {
		return nil
	}

	data, err := json.Marshal(outboundMessage{
		Type:       kind,
		FromUserID: e.Origin,
		Payload:    e.Payload,
	})
	if err != nil {
		return err
	}

	select {
	case <-c.done:
		return errors.ErrConnectionClosed
	default:
	}

	select {
	case c.send <- data:
		return nil
	default:
		// A full buffer means the client stopped reading. The connection is
		// torn down rather than left to stall the relay: closing done makes
		// writePump send the close frame and drop the socket, which ends
		// readPump and removes this connection from its routing group.
		c.close()
		return errors.ErrSlowConsumer
	}
}

// readPump consumes inbound frames until the client disconnects or the
// context is canceled, forwarding each well-formed submission through the
// relay with this connection's subject as origin.
func (c *connection) readPump(ctx context.Context, relay contract.IRelay) {
	c.ws.SetReadLimit(maxMessageSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Debug("Unexpected close", "subject_id", c.subjectID, "error", err)
			}
			return
		}

		var msg inboundMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			c.log.Debug("Dropping malformed frame", "subject_id", c.subjectID, "error", err)
			continue
		}
		if msg.ToUserID == "" {
			continue
		}

		relay.Forward(ctx, event.Envelope{
			Target:  msg.ToUserID,
			Origin:  c.subjectID,
			Kind:    msg.Type,
			Payload: msg.Payload,
			At:      time.Now().UTC(),
		})
	}
}

// writePump is the single writer for this connection. It drains the send
// channel and keeps the peer alive with periodic pings.
func (c *connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.ws.Close()
	}()

	for {
		select {
		case <-c.done:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.ws.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case data := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// close is idempotent; the transport can report disconnect more than once.
func (c *connection) close() {
	c.once.Do(func() {
		close(c.done)
	})
}
