package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func filledShipping() Shipping {
	return Shipping{
		Country:    "USA",
		Category:   "Electronics",
		Price:      "100",
		Dimensions: Dimensions{Length: "10", Width: "20", Height: "30"},
		Weight:     "2",
		Courier:    CourierDHL,
	}
}

func ptr[T any](v T) *T { return &v }

func TestShippingMergeLeavesSiblingsUntouched(t *testing.T) {
	before := filledShipping()
	after := before.Merge(ShippingUpdate{Weight: ptr("5")})

	want := before
	want.Weight = "5"
	assert.Equal(t, want, after)
	assert.Equal(t, "2", before.Weight, "receiver must not be modified")
}

func TestShippingMergeSingleDimension(t *testing.T) {
	after := filledShipping().Merge(ShippingUpdate{
		Dimensions: &DimensionsUpdate{Width: ptr("25")},
	})
	assert.Equal(t, Dimensions{Length: "10", Width: "25", Height: "30"}, after.Dimensions)
}

func TestPaymentMerge(t *testing.T) {
	p := Payment{CardNumber: "4111 1111 1111 1111", CardName: "A", Expiry: "09/27", CVV: "123"}
	after := p.Merge(PaymentUpdate{CVV: ptr("4567")})
	assert.Equal(t, "4567", after.CVV)
	assert.Equal(t, p.CardNumber, after.CardNumber)
}

func TestNewOrderDraftIsAllEmpty(t *testing.T) {
	raw, err := json.Marshal(NewOrderDraft())
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"shipping": {"country":"","category":"","price":"","dimensions":{"length":"","width":"","height":""},"weight":"","courier":""},
		"payment": {"cardNumber":"","cardName":"","expiry":"","cvv":""}
	}`, string(raw))
}

func TestApplyEdit(t *testing.T) {
	t.Run("nested dimension edit changes only that leaf", func(t *testing.T) {
		d := OrderDraft{Shipping: filledShipping()}
		got := ApplyEdit(d, SetLength{Value: "11"})
		assert.Equal(t, "11", got.Shipping.Dimensions.Length)
		assert.Equal(t, "20", got.Shipping.Dimensions.Width)
		assert.Equal(t, "30", got.Shipping.Dimensions.Height)
	})

	t.Run("card number keeps digits and regroups", func(t *testing.T) {
		got := ApplyEdit(NewOrderDraft(), SetCardNumber{Value: "4111-1111-1111-1111-99"})
		assert.Equal(t, "4111 1111 1111 1111", got.Payment.CardNumber)
	})

	t.Run("expiry is masked", func(t *testing.T) {
		got := ApplyEdit(NewOrderDraft(), SetExpiry{Value: "0927"})
		assert.Equal(t, "09/27", got.Payment.Expiry)
	})

	t.Run("cvv stored as typed", func(t *testing.T) {
		got := ApplyEdit(NewOrderDraft(), SetCVV{Value: "12a"})
		assert.Equal(t, "12a", got.Payment.CVV)
	})
}

func TestParseFieldEdit(t *testing.T) {
	t.Run("dotted keys map to dimension edits", func(t *testing.T) {
		edit, err := ParseFieldEdit("dimensions.height", "7")
		require.NoError(t, err)
		assert.Equal(t, SetHeight{Value: "7"}, edit)
		assert.Equal(t, SectionShipping, edit.Section())
		assert.Equal(t, FieldHeight, edit.Field())
	})

	t.Run("payment keys map to payment section", func(t *testing.T) {
		edit, err := ParseFieldEdit("cardName", "Jane")
		require.NoError(t, err)
		assert.Equal(t, SectionPayment, edit.Section())
	})

	t.Run("courier must be known", func(t *testing.T) {
		_, err := ParseFieldEdit("courier", "ups")
		require.Error(t, err)

		edit, err := ParseFieldEdit("courier", "")
		require.NoError(t, err)
		assert.Equal(t, SetCourier{Value: ""}, edit)
	})

	t.Run("unknown keys are rejected", func(t *testing.T) {
		for _, key := range []string{"dimensions", "dimensions.depth", "shipping.country", ""} {
			_, err := ParseFieldEdit(key, "x")
			assert.Error(t, err, "key %q", key)
		}
	})
}

func TestStepClamping(t *testing.T) {
	assert.Equal(t, StepPayment, StepShipping.Next())
	assert.Equal(t, StepConfirmation, StepConfirmation.Next())
	assert.Equal(t, StepShipping, StepShipping.Prev())
	assert.Equal(t, StepSummary, StepConfirmation.Prev())
	assert.False(t, Step(0).IsValid())
	assert.False(t, Step(5).IsValid())

	for _, s := range Steps {
		assert.True(t, s.IsValid())
		assert.True(t, s.Next().IsValid())
		assert.True(t, s.Prev().IsValid())
	}
}

func TestStepSection(t *testing.T) {
	section, ok := StepShipping.Section()
	assert.True(t, ok)
	assert.Equal(t, SectionShipping, section)

	_, ok = StepSummary.Section()
	assert.False(t, ok)
}

func TestParseSessionID(t *testing.T) {
	_, err := ParseSessionID("not-a-uuid")
	require.Error(t, err)

	_, err = ParseSessionID(uuid.Nil.String())
	require.Error(t, err)

	id := NewSessionID()
	parsed, err := ParseSessionID(id.String())
	require.NoError(t, err)
	assert.Equal(t, id, parsed)
}

func TestSessionJSONRoundTripKeepsID(t *testing.T) {
	s := Session{ID: NewSessionID(), Wizard: WizardState{Step: StepPayment}}
	raw, err := json.Marshal(s)
	require.NoError(t, err)

	var decoded Session
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, s.ID, decoded.ID)
	assert.Equal(t, StepPayment, decoded.Wizard.Step)
}

func TestSessionIsExpired(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s := Session{ExpiresAt: now}
	assert.True(t, s.IsExpired(now))
	assert.False(t, s.IsExpired(now.Add(-time.Second)))
	assert.False(t, (&Session{}).IsExpired(now))
}
