package services

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/destinyy00/skillswap/domain/event"
	"github.com/destinyy00/skillswap/errors"
	"github.com/destinyy00/skillswap/mocks"
	"github.com/destinyy00/skillswap/relay"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestNotificationService_Trigger_Before_Relay_Is_A_Loud_Failure(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	// Given a service wired before the relay subsystem exists
	service := NewNotificationService(log, nil)

	// When a request handler triggers a notification
	err := service.Notify(context.Background(), "alice", map[string]string{"message": "hi"})

	// Then the startup-ordering bug is surfaced, not swallowed
	req.ErrorIs(err, errors.ErrRelayNotReady)
}

func TestNotificationService_Trigger_Offline_Target_Succeeds(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	// Given a real relay with no open connections
	service := NewNotificationService(log, relay.NewRelay(log, relay.NewRegistry()))

	// When a generic notification targets an offline subject
	err := service.Notify(context.Background(), "offline-user", map[string]string{"message": "hi"})

	// Then the call completes silently; nothing propagates to the handler
	req.NoError(err)
}

func TestNotificationService_SessionRequested_Builds_The_Envelope(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockRelay := mocks.NewMockIRelay(ctrl)

	service := NewNotificationService(log, mockRelay)

	var forwarded event.Envelope
	mockRelay.EXPECT().Forward(gomock.Any(), gomock.Any()).Do(
		func(ctx context.Context, e event.Envelope) {
			forwarded = e
		}).Times(1)

	err := service.SessionRequested(context.Background(), "alice", "bob",
		map[string]string{"sessionId": "s1"})
	req.NoError(err)

	req.Equal("alice", forwarded.Target)
	req.Equal("bob", forwarded.Origin)
	req.Equal(event.KindSessionRequest, forwarded.Kind)
	req.JSONEq(`{"sessionId":"s1"}`, string(forwarded.Payload))
}

func TestNotificationService_Notify_Has_No_Origin(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockRelay := mocks.NewMockIRelay(ctrl)

	service := NewNotificationService(log, mockRelay)

	var forwarded event.Envelope
	mockRelay.EXPECT().Forward(gomock.Any(), gomock.Any()).Do(
		func(ctx context.Context, e event.Envelope) {
			forwarded = e
		}).Times(1)

	req.NoError(service.Notify(context.Background(), "alice", json.RawMessage(`{"type":"SYSTEM"}`)))
	req.Empty(forwarded.Origin)
	req.Equal(event.KindNotification, forwarded.Kind)
}
