package models

import "fmt"

// Step is one screen of the linear checkout wizard.
type Step int

const (
	StepShipping Step = iota + 1
	StepPayment
	StepSummary
	StepConfirmation
)

const (
	FirstStep = StepShipping
	LastStep  = StepConfirmation
)

// Steps lists every step in order.
var Steps = []Step{StepShipping, StepPayment, StepSummary, StepConfirmation}

func (s Step) IsValid() bool {
	return s >= FirstStep && s <= LastStep
}

// Next returns the following step, clamped at LastStep.
func (s Step) Next() Step {
	return min(s+1, LastStep)
}

// Prev returns the preceding step, clamped at FirstStep.
func (s Step) Prev() Step {
	return max(s-1, FirstStep)
}

// Section returns the draft section edited on this step, if any.
func (s Step) Section() (Section, bool) {
	switch s {
	case StepShipping:
		return SectionShipping, true
	case StepPayment:
		return SectionPayment, true
	default:
		return "", false
	}
}

func (s Step) String() string {
	switch s {
	case StepShipping:
		return "Shipping"
	case StepPayment:
		return "Payment"
	case StepSummary:
		return "Summary"
	case StepConfirmation:
		return "Confirmation"
	default:
		return fmt.Sprintf("Step(%d)", int(s))
	}
}

// WizardState is the persisted form of a wizard: the current step and the
// draft being edited.
type WizardState struct {
	Step  Step       `json:"step"`
	Draft OrderDraft `json:"draft"`
}
