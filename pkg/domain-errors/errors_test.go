package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasCode(t *testing.T) {
	t.Run("matches direct code", func(t *testing.T) {
		err := New(CodeNotFound, "session not found")
		assert.True(t, HasCode(err, CodeNotFound))
		assert.False(t, HasCode(err, CodeInternal))
	})

	t.Run("matches code through fmt wrapping", func(t *testing.T) {
		err := fmt.Errorf("load: %w", New(CodeNotFound, "session not found"))
		assert.True(t, HasCode(err, CodeNotFound))
	})

	t.Run("matches inner code of nested domain errors", func(t *testing.T) {
		inner := New(CodeTimeout, "lock wait")
		err := Wrap(inner, CodeInternal, "save failed")
		assert.True(t, HasCode(err, CodeInternal))
		assert.True(t, HasCode(err, CodeTimeout))
	})

	t.Run("plain errors carry no code", func(t *testing.T) {
		assert.False(t, HasCode(errors.New("boom"), CodeInternal))
		assert.Equal(t, CodeInternal, CodeOf(errors.New("boom")))
	})
}

func TestNewValidationCopiesFields(t *testing.T) {
	fields := map[string]string{"cvv": "Please enter a valid CVV"}
	err := NewValidation("payment details are invalid", fields)
	fields["cvv"] = "changed"

	assert.Equal(t, "Please enter a valid CVV", FieldsOf(err)["cvv"])
	assert.Equal(t, CodeValidation, CodeOf(err))
}

func TestErrorMessageIncludesCause(t *testing.T) {
	err := Wrap(errors.New("connection refused"), CodeUnavailable, "session store unavailable")
	assert.Equal(t, "session store unavailable: connection refused", err.Error())
}
