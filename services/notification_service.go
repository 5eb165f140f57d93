package services

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/destinyy00/skillswap/contract"
	"github.com/destinyy00/skillswap/domain/event"
	"github.com/destinyy00/skillswap/errors"
)

type INotificationService interface {
	Trigger(ctx context.Context, e event.Envelope) error
	SessionRequested(ctx context.Context, toUserID, fromUserID string, payload any) error
	SessionUpdated(ctx context.Context, toUserID, fromUserID string, payload any) error
	Notify(ctx context.Context, toUserID string, payload any) error
}

// NotificationService lets request handlers inject an event into the relay
// without holding a live connection of their own. It is constructed
// explicitly at the composition root and passed by handle; there is no
// ambient global to look up, so a missing relay is a visible wiring bug.
type NotificationService struct {
	log   *slog.Logger
	relay contract.IRelay
}

func NewNotificationService(log *slog.Logger, relay contract.IRelay) *NotificationService {
	return &NotificationService{log: log, relay: relay}
}

// Trigger delegates to the relay. A nil relay means the HTTP layer was wired
// before the relay subsystem: that is a startup-ordering bug, reported
// loudly rather than a silently dropped event.
func (s *NotificationService) Trigger(ctx context.Context, e event.Envelope) error {
	if s.relay == nil {
		s.log.Error("Notification triggered before relay initialization",
			"target", e.Target, "kind", e.Kind)
		return errors.ErrRelayNotReady
	}
	s.relay.Forward(ctx, e)
	return nil
}

// SessionRequested notifies toUserID that fromUserID requested a session.
func (s *NotificationService) SessionRequested(ctx context.Context, toUserID, fromUserID string, payload any) error {
	return s.trigger(ctx, event.KindSessionRequest, toUserID, fromUserID, payload)
}

// SessionUpdated notifies toUserID that fromUserID changed a session's status.
func (s *NotificationService) SessionUpdated(ctx context.Context, toUserID, fromUserID string, payload any) error {
	return s.trigger(ctx, event.KindSessionUpdate, toUserID, fromUserID, payload)
}

// Notify sends a generic notification with no origin connection.
func (s *NotificationService) Notify(ctx context.Context, toUserID string, payload any) error {
	return s.trigger(ctx, event.KindNotification, toUserID, "", payload)
}

func (s *NotificationService) trigger(ctx context.Context, kind event.Kind, toUserID, fromUserID string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return s.Trigger(ctx, event.Envelope{
		Target:  toUserID,
		Origin:  fromUserID,
		Kind:    kind,
		Payload: data,
		At:      time.Now().UTC(),
	})
}
