package ws

import (
	"encoding/json"

	"github.com/destinyy00/skillswap/domain/event"
)

// inboundMessage is the frame a client submits over its connection.
// The payload is carried through opaque; only the routing fields are read.
type inboundMessage struct {
	Type     event.Kind      `json:"type"`
	ToUserID string          `json:"toUserId"`
	Payload  json.RawMessage `json:"payload"`
}

// outboundMessage mirrors each inbound kind as its "received" variant.
// FromUserID is empty for server-triggered notifications.
type outboundMessage struct {
	Type       event.Kind      `json:"type"`
	FromUserID string          `json:"fromUserId,omitempty"`
	Payload    json.RawMessage `json:"payload"`
}
