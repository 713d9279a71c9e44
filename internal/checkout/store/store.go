// Package store persists checkout sessions. Both implementations return
// sentinel.ErrNotFound for sessions that do not exist or have expired.
package store

import (
	"time"

	"checkout/internal/checkout/models"
)

const sessionKeyPrefix = "checkout:session:"

func sessionKey(id models.SessionID) string {
	return sessionKeyPrefix + id.String()
}

func cloneSession(s *models.Session) *models.Session {
	cp := *s
	return &cp
}

// Clock returns the current time; tests substitute a fixed one.
type Clock func() time.Time
