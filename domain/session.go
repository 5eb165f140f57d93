package domain

import (
	"time"

	"github.com/google/uuid"
)

// SessionStatus is the canonical status enumeration, matching what is
// persisted. There is intentionally no ACCEPTED/REJECTED pair: a host
// confirming a request moves it straight to CONFIRMED, declining to
// CANCELLED.
type SessionStatus string

const (
	StatusPending   SessionStatus = "PENDING"
	StatusConfirmed SessionStatus = "CONFIRMED"
	StatusCompleted SessionStatus = "COMPLETED"
	StatusCancelled SessionStatus = "CANCELLED"
)

// ValidStatus reports whether s is one of the canonical session statuses.
func ValidStatus(s SessionStatus) bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Session is a scheduled skill exchange between a requesting user and a host.
type Session struct {
	ID          uuid.UUID     `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description,omitempty"`
	Status      SessionStatus `json:"status"`
	UserID      string        `json:"userId"`
	HostID      string        `json:"hostId"`
	DateTime    time.Time     `json:"dateTime"`
	CreatedAt   time.Time     `json:"createdAt"`
}

// OtherParty returns the participant that is not subjectID. Session events
// are always addressed to the other side of the exchange.
func (s Session) OtherParty(subjectID string) string {
	if subjectID == s.HostID {
		return s.UserID
	}
	return s.HostID
}

// Involves reports whether subjectID is one of the two participants.
func (s Session) Involves(subjectID string) bool {
	return subjectID == s.UserID || subjectID == s.HostID
}
