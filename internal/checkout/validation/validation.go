// Package validation checks a wizard step's section of the draft before the
// wizard may advance past it.
//
// Validators are pure: they never mutate the draft and report every
// violated rule at once. A step may advance only when its ErrorSet is empty.
// The rules live in the validate tags of models.Shipping and models.Payment.
package validation

import (
	"errors"
	"maps"
	"reflect"
	"regexp"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"

	"checkout/internal/checkout/format"
	"checkout/internal/checkout/models"
)

const cardNumberDigits = 16

var (
	expiryPattern = regexp.MustCompile(`^\d{2}/\d{2}$`)
	cvvPattern    = regexp.MustCompile(`^\d{3,4}$`)
)

// messages holds the text shown for each field key. Every field carries a
// single rule, so the key alone picks the message.
var messages = map[string]string{
	models.FieldCountry:    "Country is required",
	models.FieldCategory:   "Category is required",
	models.FieldPrice:      "Price is required",
	models.FieldLength:     "Length is required",
	models.FieldWidth:      "Width is required",
	models.FieldHeight:     "Height is required",
	models.FieldWeight:     "Weight is required",
	models.FieldCourier:    "Please select a courier",
	models.FieldCardNumber: "Please enter a valid 16-digit card number",
	models.FieldCardName:   "Cardholder name is required",
	models.FieldExpiry:     "Please enter a valid expiry date (MM/YY)",
	models.FieldCVV:        "Please enter a valid CVV",
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their json names so nested keys come out dotted,
	// e.g. "dimensions.length".
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	mustRegister(v, "cardnumber", func(fl validator.FieldLevel) bool {
		return len(format.StripWhitespace(fl.Field().String())) == cardNumberDigits
	})
	mustRegister(v, "expiry", func(fl validator.FieldLevel) bool {
		return expiryPattern.MatchString(fl.Field().String())
	})
	mustRegister(v, "cvv", func(fl validator.FieldLevel) bool {
		return cvvPattern.MatchString(fl.Field().String())
	})
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(err)
	}
}

// ErrorSet maps a field key to the message shown next to that field.
// It is recomputed on every submit and never merged with a previous set.
type ErrorSet map[string]string

// Empty reports whether no rule was violated.
func (e ErrorSet) Empty() bool {
	return len(e) == 0
}

// Fields returns the offending field keys in sorted order.
func (e ErrorSet) Fields() []string {
	return slices.Sorted(maps.Keys(e))
}

// ValidateShipping requires every shipping leaf to be non-empty.
func ValidateShipping(s models.Shipping) ErrorSet {
	return check(s)
}

// ValidatePayment checks card syntax only. Expiry is matched as MM/YY text;
// no month range or expiration date check is made.
func ValidatePayment(p models.Payment) ErrorSet {
	return check(p)
}

// ValidateStep runs the validator owning step. Steps without a form section
// always validate.
func ValidateStep(step models.Step, d models.OrderDraft) ErrorSet {
	switch step {
	case models.StepShipping:
		return ValidateShipping(d.Shipping)
	case models.StepPayment:
		return ValidatePayment(d.Payment)
	default:
		return ErrorSet{}
	}
}

func check(section any) ErrorSet {
	errs := ErrorSet{}
	var failures validator.ValidationErrors
	if err := validate.Struct(section); !errors.As(err, &failures) {
		return errs
	}
	for _, fe := range failures {
		key := fieldKey(fe.Namespace())
		msg, ok := messages[key]
		if !ok {
			msg = key + " is invalid"
		}
		errs[key] = msg
	}
	return errs
}

// fieldKey drops the root struct name from a namespace such as
// "Shipping.dimensions.length".
func fieldKey(namespace string) string {
	_, key, found := strings.Cut(namespace, ".")
	if !found {
		return namespace
	}
	return key
}
