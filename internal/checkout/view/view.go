// Package view derives what the client renders for each wizard step.
// Every function here is a pure function of the session state.
package view

import (
	"checkout/internal/checkout/format"
	"checkout/internal/checkout/models"
	"checkout/internal/checkout/pricing"
	"checkout/internal/checkout/validation"
)

// Select options offered by the shipping form.
var (
	Countries  = []string{"Hong Kong", "USA", "UK"}
	Categories = []string{"Furniture", "Electronics", "Clothing"}
)

const confirmationMessage = "Your order has been placed successfully. " +
	"A confirmation email has been sent to your email address."

// Page is the document rendered for the current step. Exactly one of
// Shipping, Payment, Summary or Confirmation is set.
type Page struct {
	SessionID   string              `json:"session_id"`
	Step        models.Step         `json:"step"`
	StepName    string              `json:"step_name"`
	Title       string              `json:"title"`
	Progress    []StepIndicator     `json:"progress,omitempty"`
	ScrollToTop bool                `json:"scroll_to_top"`
	Errors      validation.ErrorSet `json:"errors,omitempty"`
	Actions     Actions             `json:"actions"`

	Shipping     *ShippingForm     `json:"shipping,omitempty"`
	Payment      *models.Payment   `json:"payment,omitempty"`
	Summary      *SummaryView      `json:"summary,omitempty"`
	Confirmation *ConfirmationView `json:"confirmation,omitempty"`
}

// StepIndicator is one entry of the progress bar.
type StepIndicator struct {
	Step      models.Step `json:"step"`
	Name      string      `json:"name"`
	Active    bool        `json:"active"`
	Completed bool        `json:"completed"`
}

// Actions lists the buttons available on the current step.
type Actions struct {
	Submit   string `json:"submit,omitempty"`
	Previous bool   `json:"previous"`
	Reset    string `json:"reset,omitempty"`
}

// ShippingForm is the shipping draft plus its select options.
type ShippingForm struct {
	models.Shipping
	Countries  []string        `json:"country_options"`
	Categories []string        `json:"category_options"`
	Couriers   []CourierOption `json:"courier_options"`
}

// CourierOption describes one selectable courier.
type CourierOption struct {
	Value       models.Courier `json:"value"`
	Description string         `json:"description"`
}

// Input carries everything a page is derived from. Errors is the result
// of the submit being answered, if any; it is never stored.
type Input struct {
	Session     *models.Session
	Errors      validation.ErrorSet
	StepChanged bool
}

// Render builds the page for the session's current step.
func Render(in Input) Page {
	s := in.Session
	step := s.Wizard.Step
	p := Page{
		SessionID:   s.ID.String(),
		Step:        step,
		StepName:    step.String(),
		Title:       "Checkout Process",
		ScrollToTop: in.StepChanged,
		Errors:      in.Errors,
	}

	switch step {
	case models.StepShipping:
		p.Shipping = newShippingForm(s.Wizard.Draft.Shipping)
		p.Actions = Actions{Submit: "Next Step"}
	case models.StepPayment:
		payment := s.Wizard.Draft.Payment
		p.Payment = &payment
		p.Actions = Actions{Submit: "Review Order", Previous: true}
	case models.StepSummary:
		summary := Summary(s.Wizard.Draft)
		p.Summary = &summary
		p.Actions = Actions{Submit: "Place Order", Previous: true}
	case models.StepConfirmation:
		confirmation := Confirmation(s.Wizard.Draft, s.OrderNumber)
		p.Confirmation = &confirmation
		p.Title = "Order Complete"
		p.Actions = Actions{Reset: "Back to Shopping"}
	}
	if step != models.StepConfirmation {
		p.Progress = progress(step)
	}
	return p
}

func progress(current models.Step) []StepIndicator {
	out := make([]StepIndicator, 0, len(models.Steps))
	for _, s := range models.Steps {
		out = append(out, StepIndicator{
			Step:      s,
			Name:      s.String(),
			Active:    s == current,
			Completed: s < current,
		})
	}
	return out
}

func newShippingForm(s models.Shipping) *ShippingForm {
	couriers := make([]CourierOption, 0, len(models.Couriers))
	for _, c := range models.Couriers {
		couriers = append(couriers, CourierOption{Value: c, Description: c.Description()})
	}
	return &ShippingForm{
		Shipping:   s,
		Countries:  Countries,
		Categories: Categories,
		Couriers:   couriers,
	}
}

// SummaryView is the order review shown before the order is placed.
// When the item price does not parse, Prices is nil and PriceError is set.
type SummaryView struct {
	ShippingTo string             `json:"shipping_to"`
	Category   string             `json:"category"`
	Dimensions string             `json:"dimensions"`
	Weight     string             `json:"weight"`
	Courier    string             `json:"courier"`
	Prices     *pricing.Formatted `json:"prices,omitempty"`
	PriceError string             `json:"price_error,omitempty"`
	CardNumber string             `json:"card_number"`
	CardHolder string             `json:"card_holder"`
	Expiry     string             `json:"expiry"`
}

// Summary derives the review page from the draft.
func Summary(d models.OrderDraft) SummaryView {
	sh := d.Shipping
	v := SummaryView{
		ShippingTo: sh.Country,
		Category:   sh.Category,
		Dimensions: sh.Dimensions.Length + " × " + sh.Dimensions.Width + " × " + sh.Dimensions.Height + " cm",
		Weight:     sh.Weight + " kg",
		Courier:    sh.Courier.Label(),
		CardNumber: format.MaskCardNumber(d.Payment.CardNumber),
		CardHolder: d.Payment.CardName,
		Expiry:     d.Payment.Expiry,
	}
	if b, err := pricing.Compute(sh.Price); err != nil {
		v.PriceError = "Item price is not a valid number"
	} else {
		f := b.Format()
		v.Prices = &f
	}
	return v
}

// ConfirmationView is shown once the order is placed.
//
// OrderNumber is a display-only placeholder: it is random, not unique and
// not tied to any order record.
type ConfirmationView struct {
	Message     string `json:"message"`
	OrderNumber int    `json:"order_number"`
	ShippingTo  string `json:"shipping_to"`
	TotalAmount string `json:"total_amount,omitempty"`
}

// Confirmation derives the confirmation page from the draft and the
// session's display order number.
func Confirmation(d models.OrderDraft, orderNumber int) ConfirmationView {
	v := ConfirmationView{
		Message:     confirmationMessage,
		OrderNumber: orderNumber,
		ShippingTo:  d.Shipping.Country,
	}
	if b, err := pricing.Compute(d.Shipping.Price); err == nil {
		v.TotalAmount = pricing.Money(b.Total)
	}
	return v
}
