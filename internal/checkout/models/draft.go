package models

// Field keys address a single leaf of the OrderDraft. Nested shipping
// dimensions use dotted keys; the same keys label validation errors.
const (
	FieldCountry    = "country"
	FieldCategory   = "category"
	FieldPrice      = "price"
	FieldLength     = "dimensions.length"
	FieldWidth      = "dimensions.width"
	FieldHeight     = "dimensions.height"
	FieldWeight     = "weight"
	FieldCourier    = "courier"
	FieldCardNumber = "cardNumber"
	FieldCardName   = "cardName"
	FieldExpiry     = "expiry"
	FieldCVV        = "cvv"
)

// Section names one half of the OrderDraft.
type Section string

const (
	SectionShipping Section = "shipping"
	SectionPayment  Section = "payment"
)

// OrderDraft is the in-progress order edited across the wizard steps.
//
// Invariants:
//   - every leaf is a string; absence is the empty string, never a missing key
//   - the zero value equals NewOrderDraft()
type OrderDraft struct {
	Shipping Shipping `json:"shipping"`
	Payment  Payment  `json:"payment"`
}

// Shipping holds the package and delivery details of step one. The
// validate tags are checked by the validation package.
// Price is a decimal kept as typed so pricing can report unparseable input.
type Shipping struct {
	Country    string     `json:"country" validate:"required"`
	Category   string     `json:"category" validate:"required"`
	Price      string     `json:"price" validate:"required"`
	Dimensions Dimensions `json:"dimensions"`
	Weight     string     `json:"weight" validate:"required"`
	Courier    Courier    `json:"courier" validate:"required"`
}

// Dimensions of the package in centimetres.
type Dimensions struct {
	Length string `json:"length" validate:"required"`
	Width  string `json:"width" validate:"required"`
	Height string `json:"height" validate:"required"`
}

// Payment holds the card details of step two. CardNumber is stored grouped
// in fours and Expiry as MM/YY.
type Payment struct {
	CardNumber string `json:"cardNumber" validate:"cardnumber"`
	CardName   string `json:"cardName" validate:"required"`
	Expiry     string `json:"expiry" validate:"expiry"`
	CVV        string `json:"cvv" validate:"cvv"`
}

// NewOrderDraft returns the all-empty draft a wizard starts (and resets) with.
func NewOrderDraft() OrderDraft {
	return OrderDraft{}
}

// ShippingUpdate is a partial shipping section. Nil fields are left
// untouched, including each individual dimension.
type ShippingUpdate struct {
	Country    *string
	Category   *string
	Price      *string
	Dimensions *DimensionsUpdate
	Weight     *string
	Courier    *Courier
}

// DimensionsUpdate is a partial Dimensions.
type DimensionsUpdate struct {
	Length *string
	Width  *string
	Height *string
}

// PaymentUpdate is a partial payment section.
type PaymentUpdate struct {
	CardNumber *string
	CardName   *string
	Expiry     *string
	CVV        *string
}

// Merge applies the non-nil fields of u and returns the result; s is not
// modified.
func (s Shipping) Merge(u ShippingUpdate) Shipping {
	setIf(&s.Country, u.Country)
	setIf(&s.Category, u.Category)
	setIf(&s.Price, u.Price)
	setIf(&s.Weight, u.Weight)
	if u.Courier != nil {
		s.Courier = *u.Courier
	}
	if d := u.Dimensions; d != nil {
		setIf(&s.Dimensions.Length, d.Length)
		setIf(&s.Dimensions.Width, d.Width)
		setIf(&s.Dimensions.Height, d.Height)
	}
	return s
}

// Merge applies the non-nil fields of u and returns the result.
func (p Payment) Merge(u PaymentUpdate) Payment {
	setIf(&p.CardNumber, u.CardNumber)
	setIf(&p.CardName, u.CardName)
	setIf(&p.Expiry, u.Expiry)
	setIf(&p.CVV, u.CVV)
	return p
}

func setIf(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
