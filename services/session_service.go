package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/destinyy00/skillswap/domain"
	"github.com/destinyy00/skillswap/errors"
	"github.com/destinyy00/skillswap/infrastructure/storage"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type RequestSessionCommand struct {
	Title       string    `validate:"required,max=200"`
	Description string    `validate:"max=2000"`
	HostID      string    `validate:"required"`
	DateTime    time.Time `validate:"required"`
	Message     string    `validate:"max=2000"`
}

type UpdateStatusCommand struct {
	SessionID uuid.UUID
	Status    domain.SessionStatus
}

type ISessionService interface {
	Request(ctx context.Context, requesterID string, cmd RequestSessionCommand) (domain.Session, error)
	UpdateStatus(ctx context.Context, subjectID string, cmd UpdateStatusCommand) (domain.Session, error)
	ListFor(subjectID string) ([]domain.Session, error)
}

var validate = validator.New()

// SessionService owns the session lifecycle. State changes are persisted
// first, then the other party is notified through the relay; a notification
// that cannot be delivered never rolls back the persisted change.
type SessionService struct {
	log           *slog.Logger
	sessions      storage.ISessionRepository
	notifications INotificationService
}

func NewSessionService(log *slog.Logger, sessions storage.ISessionRepository,
	notifications INotificationService) *SessionService {
	return &SessionService{log: log, sessions: sessions, notifications: notifications}
}

// Request creates a PENDING session and notifies the host.
func (s *SessionService) Request(ctx context.Context, requesterID string, cmd RequestSessionCommand) (domain.Session, error) {
	if err := validate.Struct(cmd); err != nil {
		return domain.Session{}, errors.ErrValidation
	}

	session := domain.Session{
		ID:          uuid.New(),
		Title:       cmd.Title,
		Description: cmd.Description,
		Status:      domain.StatusPending,
		UserID:      requesterID,
		HostID:      cmd.HostID,
		DateTime:    cmd.DateTime,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.sessions.Create(session); err != nil {
		return domain.Session{}, err
	}

	payload := map[string]any{
		"session": session,
		"message": cmd.Message,
	}
	if err := s.notifications.SessionRequested(ctx, cmd.HostID, requesterID, payload); err != nil {
		// ErrRelayNotReady is a wiring bug and must surface; anything else
		// would only ever be a marshal failure of our own payload.
		return domain.Session{}, err
	}

	return session, nil
}

// UpdateStatus moves a session to a new canonical status. Only the two
// participants may do this; the other party is notified with the previous
// status included so clients can render the transition.
func (s *SessionService) UpdateStatus(ctx context.Context, subjectID string, cmd UpdateStatusCommand) (domain.Session, error) {
	if !domain.ValidStatus(cmd.Status) {
		return domain.Session{}, errors.ErrValidation
	}

	session, err := s.sessions.Get(cmd.SessionID)
	if err != nil {
		return domain.Session{}, err
	}
	if !session.Involves(subjectID) {
		return domain.Session{}, errors.ErrForbidden
	}

	previous := session.Status
	session.Status = cmd.Status
	if err := s.sessions.Update(session); err != nil {
		return domain.Session{}, err
	}

	payload := map[string]any{
		"session":        session,
		"previousStatus": previous,
	}
	if err := s.notifications.SessionUpdated(ctx, session.OtherParty(subjectID), subjectID, payload); err != nil {
		return domain.Session{}, err
	}

	return session, nil
}

func (s *SessionService) ListFor(subjectID string) ([]domain.Session, error) {
	return s.sessions.ListByParticipant(subjectID)
}
