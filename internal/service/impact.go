package service

import (
	"errors"
	"math"
	"math/big"

	"github.com/shopspring/decimal"
)

// Impact conversion rates per STX donated
const (
	TreesPerSTX     = 0.5
	PlasticKgPerSTX = 0.02
	CO2LbsPerTree   = 48
	MarineLifePerKg = 5

	// MaxDonationSTX is the largest single donation accepted
	MaxDonationSTX = 10000
)

var (
	ErrAmountNotPositive = errors.New("Amount must be greater than 0")
	ErrAmountTooLarge    = errors.New("Amount cannot exceed 10,000 STX")
)

// Impact is the projected environmental effect of a donation
type Impact struct {
	Trees               int64   `json:"trees"`
	PlasticKg           float64 `json:"plasticKg"`
	CO2Lbs              int64   `json:"co2Lbs"`
	MarineLifeProtected int64   `json:"marineLifeProtected"`
}

// CalculateImpact projects the impact of donating amount STX.
//
// CO2 is derived from the floored tree count and marine life from the
// rounded plastic weight, so rounding compounds. The amount is not
// validated; see ValidateDonationAmount.
func CalculateImpact(amount float64) Impact {
	trees := math.Floor(amount * TreesPerSTX)
	plastic := roundToCents(amount * PlasticKgPerSTX)
	co2 := math.Floor(trees * CO2LbsPerTree)
	marine := math.Floor(plastic * MarineLifePerKg)

	return Impact{
		Trees:               toCount(trees),
		PlasticKg:           plastic,
		CO2Lbs:              toCount(co2),
		MarineLifeProtected: toCount(marine),
	}
}

// exactFracDigits is enough fraction digits to print any float64 exactly
const exactFracDigits = 1074

// roundToCents rounds the exact binary value of v to two decimals, halves
// away from zero. 0.125 becomes 0.13, while 1.005 becomes 1 because it is
// stored as 1.00499...
func roundToCents(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	exact := new(big.Float).SetFloat64(v).Text('f', exactFracDigits)
	return decimal.RequireFromString(exact).Round(2).InexactFloat64()
}

// toCount converts a floored count to int64, saturating instead of
// wrapping when it does not fit
func toCount(v float64) int64 {
	switch {
	case math.IsNaN(v):
		return 0
	case v >= math.MaxInt64:
		return math.MaxInt64
	case v <= math.MinInt64:
		return math.MinInt64
	}
	return int64(v)
}

// ValidateDonationAmount checks a donation is within (0, 10000] STX
func ValidateDonationAmount(amount float64) error {
	if math.IsNaN(amount) || amount <= 0 {
		return ErrAmountNotPositive
	}
	if amount > MaxDonationSTX {
		return ErrAmountTooLarge
	}
	return nil
}
