package event

import (
	"encoding/json"
	"time"
)

// Kind tags an envelope with its notification type. The relay never looks
// past this tag and the routing fields; payload schema lives at the edges.
type Kind string

// Inbound kinds, submitted by a client connection or by a request handler.
const (
	KindSessionRequest Kind = "session:request"
	KindSessionUpdate  Kind = "session:update"
	KindNotification   Kind = "notification:send"
)

// Outbound kinds, the "received" variants mirrored to target connections.
const (
	KindSessionIncoming      Kind = "session:incoming"
	KindSessionUpdated       Kind = "session:updated"
	KindNotificationReceived Kind = "notification:received"
)

// Received maps an inbound kind to the outbound variant delivered to the
// target's connections. The second return is false for unknown kinds,
// which the relay drops.
func (k Kind) Received() (Kind, bool) {
	switch k {
	case KindSessionRequest:
		return KindSessionIncoming, true
	case KindSessionUpdate:
		return KindSessionUpdated, true
	case KindNotification:
		return KindNotificationReceived, true
	default:
		return "", false
	}
}

// Envelope is the transient value passed through the relay: target subject,
// origin subject (empty for server-triggered notifications), kind tag and
// an opaque payload. It exists only for the duration of one forwarding
// operation and is never stored.
type Envelope struct {
	Target  string
	Origin  string
	Kind    Kind
	Payload json.RawMessage
	At      time.Time
}
