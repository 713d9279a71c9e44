package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"checkout/internal/checkout/models"
	"checkout/pkg/platform/sentinel"
)

type InMemoryStoreSuite struct {
	suite.Suite
	now   time.Time
	store *InMemoryStore
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.now = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	s.store = NewInMemoryStore(WithClock(func() time.Time { return s.now }))
}

func (s *InMemoryStoreSuite) newSession(ttl time.Duration) *models.Session {
	return &models.Session{
		ID:        models.NewSessionID(),
		Wizard:    models.WizardState{Step: models.StepShipping, Draft: models.NewOrderDraft()},
		CreatedAt: s.now,
		UpdatedAt: s.now,
		ExpiresAt: s.now.Add(ttl),
	}
}

func (s *InMemoryStoreSuite) TestFind() {
	ctx := context.Background()

	s.Run("returns a saved session", func() {
		session := s.newSession(time.Hour)
		s.Require().NoError(s.store.Save(ctx, session))

		found, err := s.store.Find(ctx, session.ID)
		s.Require().NoError(err)
		s.Equal(session, found)
	})

	s.Run("returns ErrNotFound for unknown ids", func() {
		_, err := s.store.Find(ctx, models.NewSessionID())
		s.ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("hides expired sessions", func() {
		session := s.newSession(time.Minute)
		s.Require().NoError(s.store.Save(ctx, session))

		s.now = s.now.Add(time.Minute)
		_, err := s.store.Find(ctx, session.ID)
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *InMemoryStoreSuite) TestSaveCopiesSession() {
	ctx := context.Background()
	session := s.newSession(time.Hour)
	s.Require().NoError(s.store.Save(ctx, session))

	session.Wizard.Draft.Shipping.Country = "Mexico"
	found, err := s.store.Find(ctx, session.ID)
	s.Require().NoError(err)
	s.Empty(found.Wizard.Draft.Shipping.Country)

	found.Wizard.Step = models.StepPayment
	again, err := s.store.Find(ctx, session.ID)
	s.Require().NoError(err)
	s.Equal(models.StepShipping, again.Wizard.Step)
}

func (s *InMemoryStoreSuite) TestDelete() {
	ctx := context.Background()
	session := s.newSession(time.Hour)
	s.Require().NoError(s.store.Save(ctx, session))

	s.Require().NoError(s.store.Delete(ctx, session.ID))
	_, err := s.store.Find(ctx, session.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)
	s.ErrorIs(s.store.Delete(ctx, session.ID), sentinel.ErrNotFound)
}

func (s *InMemoryStoreSuite) TestDeleteTreatsExpiredAsMissing() {
	ctx := context.Background()
	session := s.newSession(time.Minute)
	s.Require().NoError(s.store.Save(ctx, session))

	s.now = s.now.Add(time.Minute)
	s.ErrorIs(s.store.Delete(ctx, session.ID), sentinel.ErrNotFound)
	s.Zero(s.store.Len(), "expired entry is dropped rather than left for the sweeper")
}

func (s *InMemoryStoreSuite) TestDeleteExpired() {
	ctx := context.Background()
	short := s.newSession(time.Minute)
	long := s.newSession(time.Hour)
	s.Require().NoError(s.store.Save(ctx, short))
	s.Require().NoError(s.store.Save(ctx, long))

	removed, err := s.store.DeleteExpired(ctx, s.now.Add(30*time.Minute))
	s.Require().NoError(err)
	s.Equal(1, removed)
	s.Equal(1, s.store.Len())

	_, err = s.store.Find(ctx, long.ID)
	s.NoError(err)
}
