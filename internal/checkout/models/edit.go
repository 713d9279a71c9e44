package models

import (
	"fmt"

	"checkout/internal/checkout/format"
)

// FieldEdit sets one leaf of the OrderDraft. There is one variant per leaf;
// ApplyEdit is the single reducer that interprets them.
type FieldEdit interface {
	// Field returns the field key the edit targets.
	Field() string
	// Section returns the draft section that owns the field.
	Section() Section
	isFieldEdit()
}

type (
	SetCountry    struct{ Value string }
	SetCategory   struct{ Value string }
	SetPrice      struct{ Value string }
	SetLength     struct{ Value string }
	SetWidth      struct{ Value string }
	SetHeight     struct{ Value string }
	SetWeight     struct{ Value string }
	SetCourier    struct{ Value Courier }
	SetCardNumber struct{ Value string }
	SetCardName   struct{ Value string }
	SetExpiry     struct{ Value string }
	SetCVV        struct{ Value string }
)

func (SetCountry) Field() string    { return FieldCountry }
func (SetCategory) Field() string   { return FieldCategory }
func (SetPrice) Field() string      { return FieldPrice }
func (SetLength) Field() string     { return FieldLength }
func (SetWidth) Field() string      { return FieldWidth }
func (SetHeight) Field() string     { return FieldHeight }
func (SetWeight) Field() string     { return FieldWeight }
func (SetCourier) Field() string    { return FieldCourier }
func (SetCardNumber) Field() string { return FieldCardNumber }
func (SetCardName) Field() string   { return FieldCardName }
func (SetExpiry) Field() string     { return FieldExpiry }
func (SetCVV) Field() string        { return FieldCVV }

func (SetCountry) Section() Section    { return SectionShipping }
func (SetCategory) Section() Section   { return SectionShipping }
func (SetPrice) Section() Section      { return SectionShipping }
func (SetLength) Section() Section     { return SectionShipping }
func (SetWidth) Section() Section      { return SectionShipping }
func (SetHeight) Section() Section     { return SectionShipping }
func (SetWeight) Section() Section     { return SectionShipping }
func (SetCourier) Section() Section    { return SectionShipping }
func (SetCardNumber) Section() Section { return SectionPayment }
func (SetCardName) Section() Section   { return SectionPayment }
func (SetExpiry) Section() Section     { return SectionPayment }
func (SetCVV) Section() Section        { return SectionPayment }

func (SetCountry) isFieldEdit()    {}
func (SetCategory) isFieldEdit()   {}
func (SetPrice) isFieldEdit()      {}
func (SetLength) isFieldEdit()     {}
func (SetWidth) isFieldEdit()      {}
func (SetHeight) isFieldEdit()     {}
func (SetWeight) isFieldEdit()     {}
func (SetCourier) isFieldEdit()    {}
func (SetCardNumber) isFieldEdit() {}
func (SetCardName) isFieldEdit()   {}
func (SetExpiry) isFieldEdit()     {}
func (SetCVV) isFieldEdit()        {}

// ApplyEdit returns d with the edit applied. Card numbers keep digits only
// and are regrouped; expiry input is masked to MM/YY. Every other value is
// stored as typed.
func ApplyEdit(d OrderDraft, edit FieldEdit) OrderDraft {
	switch e := edit.(type) {
	case SetCountry:
		d.Shipping.Country = e.Value
	case SetCategory:
		d.Shipping.Category = e.Value
	case SetPrice:
		d.Shipping.Price = e.Value
	case SetLength:
		d.Shipping.Dimensions.Length = e.Value
	case SetWidth:
		d.Shipping.Dimensions.Width = e.Value
	case SetHeight:
		d.Shipping.Dimensions.Height = e.Value
	case SetWeight:
		d.Shipping.Weight = e.Value
	case SetCourier:
		d.Shipping.Courier = e.Value
	case SetCardNumber:
		d.Payment.CardNumber = format.FormatCardNumber(format.DigitsOnly(e.Value))
	case SetCardName:
		d.Payment.CardName = e.Value
	case SetExpiry:
		d.Payment.Expiry = format.FormatExpiry(e.Value)
	case SetCVV:
		d.Payment.CVV = e.Value
	}
	return d
}

// ParseFieldEdit maps a wire field key and value onto its typed edit.
// Unknown keys and unknown couriers are rejected.
func ParseFieldEdit(field, value string) (FieldEdit, error) {
	switch field {
	case FieldCountry:
		return SetCountry{Value: value}, nil
	case FieldCategory:
		return SetCategory{Value: value}, nil
	case FieldPrice:
		return SetPrice{Value: value}, nil
	case FieldLength:
		return SetLength{Value: value}, nil
	case FieldWidth:
		return SetWidth{Value: value}, nil
	case FieldHeight:
		return SetHeight{Value: value}, nil
	case FieldWeight:
		return SetWeight{Value: value}, nil
	case FieldCourier:
		c, err := ParseCourier(value)
		if err != nil {
			return nil, err
		}
		return SetCourier{Value: c}, nil
	case FieldCardNumber:
		return SetCardNumber{Value: value}, nil
	case FieldCardName:
		return SetCardName{Value: value}, nil
	case FieldExpiry:
		return SetExpiry{Value: value}, nil
	case FieldCVV:
		return SetCVV{Value: value}, nil
	default:
		return nil, fmt.Errorf("unknown field %q", field)
	}
}
