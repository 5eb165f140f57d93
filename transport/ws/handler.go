package ws

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/destinyy00/skillswap/auth"
	"github.com/destinyy00/skillswap/contract"

	"github.com/gorilla/websocket"
)

// Handler is the relay's handshake endpoint. Every connection attempt goes
// through the authentication gate before it can enter a routing group:
// pending -> authenticated (registered) or pending -> rejected (refused with
// 401, no partial state).
type Handler struct {
	log              *slog.Logger
	verifier         auth.IdentityVerifier
	registry         contract.IRegistry
	relay            contract.IRelay
	handshakeTimeout time.Duration
	bufferSize       int
	upgrader         websocket.Upgrader
}

func NewHandler(log *slog.Logger, verifier auth.IdentityVerifier,
	registry contract.IRegistry, relay contract.IRelay,
	handshakeTimeout time.Duration, bufferSize int) *Handler {
	return &Handler{
		log:              log,
		verifier:         verifier,
		registry:         registry,
		relay:            relay,
		handshakeTimeout: handshakeTimeout,
		bufferSize:       bufferSize,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Browser clients connect from the SPA origin; cross-origin
			// access control is enforced by the bearer token.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	token := auth.BearerToken(r)
	if token == "" {
		// Browsers cannot set headers on websocket dials, so the token may
		// arrive as a query parameter instead.
		token = r.URL.Query().Get("token")
	}
	if token == "" {
		http.Error(w, "authorization token is missing", http.StatusUnauthorized)
		return
	}

	// The verification call runs under the request context: if the client
	// disconnects while it is outstanding, the context cancels and a late
	// result is discarded instead of registered. The timeout bounds pending
	// connections so a stalled verifier cannot leak them indefinitely.
	ctx, cancel := context.WithTimeout(r.Context(), h.handshakeTimeout)
	defer cancel()

	identity, err := h.verifier.Verify(ctx, token)
	if err != nil {
		h.log.Debug("Handshake rejected", "error", err)
		http.Error(w, "invalid or expired token", http.StatusUnauthorized)
		return
	}

	wsConn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response.
		h.log.Debug("Upgrade failed", "subject_id", identity.SubjectID, "error", err)
		return
	}

	conn := newConnection(h.log, wsConn, identity.SubjectID, h.bufferSize)
	h.registry.Register(identity.SubjectID, conn.id, conn)
	h.log.Info("Connection authenticated",
		"subject_id", identity.SubjectID,
		"conn_id", conn.id,
		"open_connections", h.registry.Count())

	go conn.writePump()

	// Blocks for the connection's lifetime. Whatever ends it (client close,
	// network failure, server shutdown), the connection leaves its routing
	// group exactly once.
	conn.readPump(r.Context(), h.relay)

	h.registry.Unregister(conn.id)
	conn.close()
	h.log.Info("Connection closed",
		"subject_id", identity.SubjectID,
		"conn_id", conn.id,
		"open_connections", h.registry.Count())
}
