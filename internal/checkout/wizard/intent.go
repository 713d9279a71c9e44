package wizard

import (
	"fmt"

	"checkout/internal/checkout/models"
	"checkout/internal/checkout/validation"
)

// Intent is a user action dispatched to the controller.
type Intent interface {
	isIntent()
}

type (
	// EditFields changes fields of the current step's form.
	EditFields struct{ Edits []models.FieldEdit }
	// Submit completes the current step.
	Submit struct{}
	// Previous goes back one step.
	Previous struct{}
	// Reset starts over with an empty draft.
	Reset struct{}
)

func (EditFields) isIntent() {}
func (Submit) isIntent()     {}
func (Previous) isIntent()   {}
func (Reset) isIntent()      {}

// Outcome describes what a dispatched intent did.
type Outcome struct {
	From   models.Step
	To     models.Step
	Errors validation.ErrorSet
}

// Moved reports whether the intent changed the step.
func (o Outcome) Moved() bool {
	return o.From != o.To
}

// Rejected reports whether a submit failed validation.
func (o Outcome) Rejected() bool {
	return len(o.Errors) > 0
}

// Dispatch applies one intent and reports the resulting transition.
func (c *Controller) Dispatch(in Intent) (Outcome, error) {
	out := Outcome{From: c.step}
	switch in := in.(type) {
	case EditFields:
		if err := c.Edit(in.Edits...); err != nil {
			return Outcome{}, err
		}
	case Submit:
		errs, err := c.Submit()
		if err != nil {
			return Outcome{}, err
		}
		out.Errors = errs
	case Previous:
		c.Retreat()
	case Reset:
		c.Reset()
	default:
		return Outcome{}, fmt.Errorf("%w: %T", ErrUnknownIntent, in)
	}
	out.To = c.step
	return out, nil
}
