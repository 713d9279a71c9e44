package wizard

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"checkout/internal/checkout/models"
)

type ControllerSuite struct {
	suite.Suite
	c     *Controller
	moves [][2]models.Step
}

func TestControllerSuite(t *testing.T) {
	suite.Run(t, new(ControllerSuite))
}

func (s *ControllerSuite) SetupTest() {
	s.moves = nil
	s.c = New(WithStepChangeHook(func(from, to models.Step) {
		s.moves = append(s.moves, [2]models.Step{from, to})
	}))
}

func (s *ControllerSuite) fillShipping() {
	s.Require().NoError(s.c.Edit(
		models.SetCountry{Value: "UK"},
		models.SetCategory{Value: "Clothing"},
		models.SetPrice{Value: "100"},
		models.SetLength{Value: "30"},
		models.SetWidth{Value: "20"},
		models.SetHeight{Value: "10"},
		models.SetWeight{Value: "1"},
		models.SetCourier{Value: models.CourierDHL},
	))
}

func (s *ControllerSuite) fillPayment() {
	s.Require().NoError(s.c.Edit(
		models.SetCardNumber{Value: "4111111111111111"},
		models.SetCardName{Value: "Jane Doe"},
		models.SetExpiry{Value: "0927"},
		models.SetCVV{Value: "123"},
	))
}

func (s *ControllerSuite) TestStartsOnShippingWithEmptyDraft() {
	s.Equal(models.StepShipping, s.c.Step())
	s.Equal(models.NewOrderDraft(), s.c.Draft())
}

func (s *ControllerSuite) TestAdvanceAndRetreatClamp() {
	s.False(s.c.Retreat())
	s.Equal(models.StepShipping, s.c.Step())

	s.True(s.c.Advance())
	s.True(s.c.Advance())
	s.True(s.c.Advance())
	s.Equal(models.StepConfirmation, s.c.Step())

	s.False(s.c.Advance())
	s.Equal(models.StepConfirmation, s.c.Step())
}

func (s *ControllerSuite) TestConfirmationHasNoBackEdge() {
	s.c.Advance()
	s.c.Advance()
	s.c.Advance()

	s.False(s.c.Retreat())
	s.Equal(models.StepConfirmation, s.c.Step())
}

func (s *ControllerSuite) TestHookRunsOnlyOnActualChange() {
	s.c.Retreat()
	s.c.Advance()
	s.c.Retreat()

	s.Equal([][2]models.Step{
		{models.StepShipping, models.StepPayment},
		{models.StepPayment, models.StepShipping},
	}, s.moves)
}

func (s *ControllerSuite) TestResetRestoresDefaults() {
	s.fillShipping()
	s.c.Advance()
	s.fillPayment()
	s.c.Advance()
	s.c.Advance()

	s.c.Reset()
	s.Equal(models.StepShipping, s.c.Step())
	s.Equal(models.NewOrderDraft(), s.c.Draft())
}

func (s *ControllerSuite) TestUpdateShippingPreservesSiblings() {
	s.fillShipping()
	before := s.c.Draft()

	weight := "5"
	s.c.UpdateShipping(models.ShippingUpdate{Weight: &weight})

	want := before
	want.Shipping.Weight = "5"
	s.Equal(want, s.c.Draft())
}

func (s *ControllerSuite) TestUpdatePayment() {
	name := "J. Doe"
	s.c.UpdatePayment(models.PaymentUpdate{CardName: &name})
	s.Equal("J. Doe", s.c.Draft().Payment.CardName)
	s.Equal(models.Shipping{}, s.c.Draft().Shipping)
}

func (s *ControllerSuite) TestSubmitShippingRejectsEmptyDraft() {
	errs, err := s.c.Submit()
	s.Require().NoError(err)
	s.Len(errs, 8)
	s.Equal(models.StepShipping, s.c.Step())
	s.Empty(s.moves)
}

func (s *ControllerSuite) TestFullCheckout() {
	s.fillShipping()
	errs, err := s.c.Submit()
	s.Require().NoError(err)
	s.True(errs.Empty())
	s.Equal(models.StepPayment, s.c.Step())

	s.fillPayment()
	errs, err = s.c.Submit()
	s.Require().NoError(err)
	s.True(errs.Empty())
	s.Equal(models.StepSummary, s.c.Step())
	s.Equal("4111 1111 1111 1111", s.c.Draft().Payment.CardNumber)
	s.Equal("09/27", s.c.Draft().Payment.Expiry)

	errs, err = s.c.Submit()
	s.Require().NoError(err)
	s.True(errs.Empty())
	s.Equal(models.StepConfirmation, s.c.Step())

	_, err = s.c.Submit()
	s.ErrorIs(err, ErrSubmitNotAllowed)
}

func (s *ControllerSuite) TestPlacingOrderRequiresNumericPrice() {
	s.fillShipping()
	s.Require().NoError(s.c.Edit(models.SetPrice{Value: "free"}))
	_, err := s.c.Submit()
	s.Require().NoError(err)
	s.fillPayment()
	_, err = s.c.Submit()
	s.Require().NoError(err)
	s.Require().Equal(models.StepSummary, s.c.Step())

	errs, err := s.c.Submit()
	s.Require().NoError(err)
	s.Contains(errs, models.FieldPrice)
	s.Equal(models.StepSummary, s.c.Step())
}

func (s *ControllerSuite) TestEditRestrictedToCurrentForm() {
	err := s.c.Edit(models.SetCVV{Value: "123"})
	s.ErrorIs(err, ErrEditNotAllowed)

	err = s.c.Edit(models.SetCountry{Value: "USA"}, models.SetCVV{Value: "123"})
	s.ErrorIs(err, ErrEditNotAllowed)
	s.Empty(s.c.Draft().Shipping.Country, "edits apply all or nothing")

	s.c.Advance()
	s.c.Advance()
	s.ErrorIs(s.c.Edit(models.SetCountry{Value: "USA"}), ErrEditNotAllowed)
}

func (s *ControllerSuite) TestDispatch() {
	out, err := s.c.Dispatch(EditFields{Edits: []models.FieldEdit{models.SetCountry{Value: "USA"}}})
	s.Require().NoError(err)
	s.False(out.Moved())
	s.Equal("USA", s.c.Draft().Shipping.Country)

	out, err = s.c.Dispatch(Submit{})
	s.Require().NoError(err)
	s.True(out.Rejected())
	s.NotContains(out.Errors, models.FieldCountry)
	s.Len(out.Errors, 7)

	s.fillShipping()
	out, err = s.c.Dispatch(Submit{})
	s.Require().NoError(err)
	s.False(out.Rejected())
	s.Equal(models.StepShipping, out.From)
	s.Equal(models.StepPayment, out.To)

	out, err = s.c.Dispatch(Previous{})
	s.Require().NoError(err)
	s.Equal(models.StepShipping, out.To)

	out, err = s.c.Dispatch(Reset{})
	s.Require().NoError(err)
	s.Equal(models.NewOrderDraft(), s.c.Draft())
	s.False(out.Moved())
}

func TestRestore(t *testing.T) {
	draft := models.NewOrderDraft()
	draft.Shipping.Country = "USA"

	c, err := Restore(models.WizardState{Step: models.StepSummary, Draft: draft})
	require.NoError(t, err)
	assert.Equal(t, models.StepSummary, c.Step())
	assert.Equal(t, "USA", c.Draft().Shipping.Country)
	assert.Equal(t, models.WizardState{Step: models.StepSummary, Draft: draft}, c.State())

	for _, step := range []models.Step{0, 5, -1} {
		_, err := Restore(models.WizardState{Step: step})
		assert.ErrorIs(t, err, ErrInvalidState)
	}
}

func TestStepStaysInRangeForAnySequence(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for run := 0; run < 200; run++ {
		c := New()
		for i := 0; i < 50; i++ {
			if rng.IntN(2) == 0 {
				c.Advance()
			} else {
				c.Retreat()
			}
			require.True(t, c.Step().IsValid(), "run %d step %d: %d", run, i, c.Step())
		}
	}
}

type unknownIntent struct{}

func (unknownIntent) isIntent() {}

func TestDispatchUnknownIntent(t *testing.T) {
	_, err := New().Dispatch(unknownIntent{})
	assert.ErrorIs(t, err, ErrUnknownIntent)
}
