package models

import (
	"time"

	"github.com/google/uuid"
)

// SessionID identifies one checkout session.
type SessionID uuid.UUID

// NewSessionID returns a random session ID.
func NewSessionID() SessionID {
	return SessionID(uuid.New())
}

// ParseSessionID parses a canonical UUID string. The nil UUID is rejected.
func ParseSessionID(s string) (SessionID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return SessionID{}, err
	}
	if u == uuid.Nil {
		return SessionID{}, errNilSessionID
	}
	return SessionID(u), nil
}

func (id SessionID) String() string {
	return uuid.UUID(id).String()
}

func (id SessionID) IsNil() bool {
	return uuid.UUID(id) == uuid.Nil
}

func (id SessionID) MarshalText() ([]byte, error) {
	return uuid.UUID(id).MarshalText()
}

func (id *SessionID) UnmarshalText(b []byte) error {
	return (*uuid.UUID)(id).UnmarshalText(b)
}

// Session is one user's checkout in progress. It owns exactly one wizard.
//
// OrderNumber is a display-only placeholder drawn when the order is placed.
// It is not unique, not stored anywhere else, and does not identify any
// order record; zero means no order has been placed.
type Session struct {
	ID          SessionID   `json:"id"`
	Wizard      WizardState `json:"wizard"`
	OrderNumber int         `json:"order_number,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
	ExpiresAt   time.Time   `json:"expires_at"`
}

// IsExpired reports whether the session outlived its TTL at now.
func (s *Session) IsExpired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}
