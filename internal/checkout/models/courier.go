package models

import "fmt"

// Courier selects the carrier for the package. The empty value means no
// courier has been chosen yet.
type Courier string

const (
	CourierFedEx Courier = "fedex"
	CourierDHL   Courier = "dhl"
)

// Couriers lists the selectable carriers in display order.
var Couriers = []Courier{CourierFedEx, CourierDHL}

// ParseCourier accepts a known carrier or the empty string.
func ParseCourier(s string) (Courier, error) {
	c := Courier(s)
	if c == "" || c.IsValid() {
		return c, nil
	}
	return "", fmt.Errorf("unknown courier %q", s)
}

func (c Courier) IsValid() bool {
	return c == CourierFedEx || c == CourierDHL
}

// Label is the short name shown on the order summary.
func (c Courier) Label() string {
	switch c {
	case CourierFedEx:
		return "FedEx Int."
	case CourierDHL:
		return "DHL Express"
	default:
		return ""
	}
}

// Description is the long form offered when choosing a courier.
func (c Courier) Description() string {
	switch c {
	case CourierFedEx:
		return "FedEx International: 2-3 business days delivery"
	case CourierDHL:
		return "DHL Express: 1-2 business days delivery"
	default:
		return ""
	}
}
