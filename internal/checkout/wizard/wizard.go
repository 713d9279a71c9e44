// Package wizard drives the four-step checkout: shipping, payment, summary
// and confirmation.
//
// A Controller owns the canonical wizard state (current step and order
// draft). Views are pure functions of that state; user input reaches the
// controller only as intents passed to Dispatch.
//
// Transitions form a linear chain 1→2→3→4 with back-edges 2→1 and 3→2.
// Confirmation has no back-edge: Reset is the only way out of it, and it
// reinitializes the draft rather than retreating.
package wizard

import (
	"errors"
	"fmt"

	"checkout/internal/checkout/models"
	"checkout/internal/checkout/pricing"
	"checkout/internal/checkout/validation"
)

var (
	// ErrEditNotAllowed is returned for edits that do not target the form
	// shown on the current step.
	ErrEditNotAllowed = errors.New("field cannot be edited on the current step")
	// ErrSubmitNotAllowed is returned for a submit on the confirmation step.
	ErrSubmitNotAllowed = errors.New("nothing to submit on the current step")
	// ErrInvalidState is returned when restoring a state with an out-of-range step.
	ErrInvalidState = errors.New("invalid wizard state")
	// ErrUnknownIntent is returned by Dispatch for intents it does not handle.
	ErrUnknownIntent = errors.New("unknown intent")
)

// StepChangeHook runs after every step change. Hosts use it for
// presentation side effects such as scrolling back to the top.
type StepChangeHook func(from, to models.Step)

// Controller is the checkout wizard. It is not safe for concurrent use;
// callers serialize access per session.
type Controller struct {
	step         models.Step
	draft        models.OrderDraft
	onStepChange StepChangeHook
}

type Option func(*Controller)

// WithStepChangeHook registers a hook invoked after each step change.
func WithStepChangeHook(hook StepChangeHook) Option {
	return func(c *Controller) {
		c.onStepChange = hook
	}
}

// New returns a controller on the shipping step with an empty draft.
func New(opts ...Option) *Controller {
	c := &Controller{step: models.FirstStep, draft: models.NewOrderDraft()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Restore rebuilds a controller from a persisted state.
func Restore(state models.WizardState, opts ...Option) (*Controller, error) {
	if !state.Step.IsValid() {
		return nil, fmt.Errorf("%w: step %d", ErrInvalidState, int(state.Step))
	}
	c := New(opts...)
	c.step = state.Step
	c.draft = state.Draft
	return c, nil
}

func (c *Controller) Step() models.Step {
	return c.step
}

func (c *Controller) Draft() models.OrderDraft {
	return c.draft
}

// State returns the persistable snapshot of the controller.
func (c *Controller) State() models.WizardState {
	return models.WizardState{Step: c.step, Draft: c.draft}
}

// Advance moves one step forward. It is a no-op on the last step and
// performs no validation; forms validate before calling it.
func (c *Controller) Advance() bool {
	return c.moveTo(c.step.Next())
}

// Retreat moves one step back. It is a no-op on the first step and on
// confirmation, which has no back-edge.
func (c *Controller) Retreat() bool {
	if c.step == models.StepConfirmation {
		return false
	}
	return c.moveTo(c.step.Prev())
}

// UpdateShipping merges a partial shipping section into the draft.
func (c *Controller) UpdateShipping(u models.ShippingUpdate) {
	c.draft.Shipping = c.draft.Shipping.Merge(u)
}

// UpdatePayment merges a partial payment section into the draft.
func (c *Controller) UpdatePayment(u models.PaymentUpdate) {
	c.draft.Payment = c.draft.Payment.Merge(u)
}

// Reset returns to the shipping step with a fresh empty draft.
func (c *Controller) Reset() {
	c.draft = models.NewOrderDraft()
	c.moveTo(models.FirstStep)
}

// Edit applies field edits to the form on the current step. Either all
// edits apply or none do.
func (c *Controller) Edit(edits ...models.FieldEdit) error {
	section, ok := c.step.Section()
	if !ok {
		return fmt.Errorf("%w: step %s has no form", ErrEditNotAllowed, c.step)
	}
	for _, e := range edits {
		if e.Section() != section {
			return fmt.Errorf("%w: %s belongs to %s", ErrEditNotAllowed, e.Field(), e.Section())
		}
	}
	for _, e := range edits {
		c.draft = models.ApplyEdit(c.draft, e)
	}
	return nil
}

// Submit completes the current step. Form steps advance only when their
// validator returns an empty set, which is returned to the caller; the
// summary step places the order, which requires a numeric item price.
func (c *Controller) Submit() (validation.ErrorSet, error) {
	switch c.step {
	case models.StepShipping, models.StepPayment:
		errs := validation.ValidateStep(c.step, c.draft)
		if !errs.Empty() {
			return errs, nil
		}
	case models.StepSummary:
		if _, err := pricing.Compute(c.draft.Shipping.Price); err != nil {
			return validation.ErrorSet{models.FieldPrice: "Please enter a valid price"}, nil
		}
	default:
		return nil, fmt.Errorf("%w: step %s", ErrSubmitNotAllowed, c.step)
	}
	c.Advance()
	return validation.ErrorSet{}, nil
}

func (c *Controller) moveTo(next models.Step) bool {
	if next == c.step {
		return false
	}
	prev := c.step
	c.step = next
	if c.onStepChange != nil {
		c.onStepChange(prev, next)
	}
	return true
}
