// Package commission derives the platform's cut and the tailor's net
// earnings from an order amount. All amounts are in kobo.
package commission

import (
	"math"

	"github.com/atelier-hq/atelier/pkg/errorbank"
)

// DefaultRate is the platform's share of an order total.
const DefaultRate = 0.05

// Breakdown is the settlement split for a single base amount. It is derived
// on demand and never persisted.
type Breakdown struct {
	BaseAmount     int64   `json:"baseAmount"`
	Rate           float64 `json:"rate"`
	Commission     int64   `json:"commission"`
	TailorEarnings int64   `json:"tailorEarnings"`
}

// Calculator computes settlement breakdowns at a fixed rate.
type Calculator struct {
	rate float64
}

// NewCalculator builds a Calculator; non-positive rates fall back to the
// default.
func NewCalculator(rate float64) Calculator {
	if rate <= 0 || rate >= 1 {
		rate = DefaultRate
	}
	return Calculator{rate: rate}
}

// Rate returns the configured commission rate.
func (c Calculator) Rate() float64 {
	return c.rate
}

// Calculate splits baseAmount into platform commission and tailor earnings.
// The commission is rounded half-up to the nearest kobo and the earnings are
// defined by subtraction, so Commission+TailorEarnings == BaseAmount for
// every valid input.
func (c Calculator) Calculate(baseAmount int64) (Breakdown, error) {
	if baseAmount < 0 {
		return Breakdown{}, errorbank.BadRequest("base amount must not be negative",
			errorbank.WithDetail("baseAmount", baseAmount))
	}

	cut := int64(math.Floor(float64(baseAmount)*c.rate + 0.5))
	return Breakdown{
		BaseAmount:     baseAmount,
		Rate:           c.rate,
		Commission:     cut,
		TailorEarnings: baseAmount - cut,
	}, nil
}
