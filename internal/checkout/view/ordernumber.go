package view

import "math/rand/v2"

const (
	minOrderNumber = 100000
	maxOrderNumber = 999999
)

// OrderNumberSource draws the placeholder order number shown on the
// confirmation page.
type OrderNumberSource interface {
	Next() int
}

// RandomOrderNumbers draws uniformly from [100000, 999999]. The numbers are
// for display only: they are neither unique nor authoritative.
type RandomOrderNumbers struct{}

func (RandomOrderNumbers) Next() int {
	return minOrderNumber + rand.IntN(maxOrderNumber-minOrderNumber+1)
}
