package service

import (
	"errors"
	"math"
	"testing"
)

func TestCalculateImpact(t *testing.T) {
	tests := []struct {
		name     string
		amount   float64
		expected Impact
	}{
		{
			name:     "zero amount",
			amount:   0,
			expected: Impact{Trees: 0, PlasticKg: 0, CO2Lbs: 0, MarineLifeProtected: 0},
		},
		{
			name:     "100 STX",
			amount:   100,
			expected: Impact{Trees: 50, PlasticKg: 2, CO2Lbs: 2400, MarineLifeProtected: 10},
		},
		{
			name:   "25 STX - co2 uses floored trees",
			amount: 25,
			// trees = floor(12.5) = 12, co2 = 12 * 48 = 576, marine = floor(2.5) = 2
			expected: Impact{Trees: 12, PlasticKg: 0.5, CO2Lbs: 576, MarineLifeProtected: 2},
		},
		{
			name:     "1 STX",
			amount:   1,
			expected: Impact{Trees: 0, PlasticKg: 0.02, CO2Lbs: 0, MarineLifeProtected: 0},
		},
		{
			name:   "fractional amount",
			amount: 33.3,
			// plastic = 0.666 -> 0.67, marine = floor(3.35) = 3
			expected: Impact{Trees: 16, PlasticKg: 0.67, CO2Lbs: 768, MarineLifeProtected: 3},
		},
		{
			name:   "plastic tie rounds up",
			amount: 6.25,
			// plastic = 0.125 exactly -> 0.13, marine = floor(0.65) = 0
			expected: Impact{Trees: 3, PlasticKg: 0.13, CO2Lbs: 144, MarineLifeProtected: 0},
		},
		{
			name:     "plastic tie above one",
			amount:   31.25,
			expected: Impact{Trees: 15, PlasticKg: 0.63, CO2Lbs: 720, MarineLifeProtected: 3},
		},
		{
			name:     "maximum donation",
			amount:   10000,
			expected: Impact{Trees: 5000, PlasticKg: 200, CO2Lbs: 240000, MarineLifeProtected: 1000},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateImpact(tt.amount)
			if got != tt.expected {
				t.Errorf("CalculateImpact(%v) = %+v, expected %+v", tt.amount, got, tt.expected)
			}
		})
	}
}

func TestCalculateImpact_Monotonic(t *testing.T) {
	prev := CalculateImpact(0)
	for cents := 1; cents <= 1_000_000; cents += 7 {
		amount := float64(cents) / 100
		cur := CalculateImpact(amount)
		if cur.Trees < prev.Trees || cur.PlasticKg < prev.PlasticKg ||
			cur.CO2Lbs < prev.CO2Lbs || cur.MarineLifeProtected < prev.MarineLifeProtected {
			t.Fatalf("impact decreased at %v: %+v after %+v", amount, cur, prev)
		}
		prev = cur
	}
}

func TestCalculateImpact_LargeAmounts(t *testing.T) {
	amounts := []float64{1e15, 1e17, 1e18, 1e19, 1e20, 1e300, math.MaxFloat64}

	prev := CalculateImpact(0)
	for _, amount := range amounts {
		cur := CalculateImpact(amount)
		if cur.Trees < 0 || cur.CO2Lbs < 0 || cur.MarineLifeProtected < 0 {
			t.Fatalf("CalculateImpact(%v) went negative: %+v", amount, cur)
		}
		if cur.Trees < prev.Trees || cur.PlasticKg < prev.PlasticKg ||
			cur.CO2Lbs < prev.CO2Lbs || cur.MarineLifeProtected < prev.MarineLifeProtected {
			t.Fatalf("impact decreased at %v: %+v after %+v", amount, cur, prev)
		}
		prev = cur
	}

	got := CalculateImpact(1e20)
	if got.Trees != math.MaxInt64 || got.CO2Lbs != math.MaxInt64 || got.MarineLifeProtected != math.MaxInt64 {
		t.Errorf("CalculateImpact(1e20) = %+v, expected saturated counts", got)
	}
	if got := CalculateImpact(1e18); got.Trees != 500_000_000_000_000_000 || got.CO2Lbs != math.MaxInt64 {
		t.Errorf("CalculateImpact(1e18) = %+v", got)
	}
}

func TestRoundToCents(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{in: 0.5, want: 0.5},
		{in: 0.666, want: 0.67},
		{in: 0.125, want: 0.13},
		{in: 0.625, want: 0.63},
		{in: -0.125, want: -0.13},
		{in: 1.005, want: 1}, // binary value is just below 1.005
		{in: 2.0000001, want: 2},
	}
	for _, tt := range tests {
		if got := roundToCents(tt.in); got != tt.want {
			t.Errorf("roundToCents(%v) = %v, expected %v", tt.in, got, tt.want)
		}
	}
}

func TestValidateDonationAmount(t *testing.T) {
	tests := []struct {
		name     string
		amount   float64
		expected error
	}{
		{name: "zero", amount: 0, expected: ErrAmountNotPositive},
		{name: "negative", amount: -5, expected: ErrAmountNotPositive},
		{name: "NaN", amount: math.NaN(), expected: ErrAmountNotPositive},
		{name: "smallest positive", amount: 0.000001, expected: nil},
		{name: "limit", amount: 10000, expected: nil},
		{name: "over limit", amount: 10000.01, expected: ErrAmountTooLarge},
		{name: "infinity", amount: math.Inf(1), expected: ErrAmountTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDonationAmount(tt.amount)
			if !errors.Is(err, tt.expected) {
				t.Errorf("expected %v, got %v", tt.expected, err)
			}
		})
	}
}

func TestFormatting(t *testing.T) {
	if got := FormatSTX(1234.5); got != "1,234.5 STX" {
		t.Errorf("FormatSTX = %q", got)
	}
	if got := FormatSTX(100); got != "100 STX" {
		t.Errorf("FormatSTX = %q", got)
	}

	got, err := FormatMicroSTX("1234500000")
	if err != nil {
		t.Fatalf("FormatMicroSTX: %v", err)
	}
	if got != "1,234.5" {
		t.Errorf("FormatMicroSTX = %q", got)
	}

	for micro, want := range map[string]string{
		"1":             "0",
		"1500":          "0.002",
		"":              "0",
		"1234567890123": "1,234,567.89",
		"-2500000000":   "-2,500",
	} {
		got, err := FormatMicroSTX(micro)
		if err != nil {
			t.Fatalf("FormatMicroSTX(%q): %v", micro, err)
		}
		if got != want {
			t.Errorf("FormatMicroSTX(%q) = %q, expected %q", micro, got, want)
		}
	}
	if got := FormatSTX(0.0005); got != "0.001 STX" {
		t.Errorf("FormatSTX = %q", got)
	}

	if _, err := FormatMicroSTX("12abc"); err == nil {
		t.Error("expected error for malformed micro-STX")
	}

	if got := STXToMicro(2.5); got != 2_500_000 {
		t.Errorf("STXToMicro = %d", got)
	}

	for status, want := range map[string]string{
		"success":           "✅ Confirmed",
		"pending":           "⏳ Pending",
		"failed":            "❌ Failed",
		"abort_by_response": "abort_by_response",
	} {
		if got := FormatTransactionStatus(status); got != want {
			t.Errorf("FormatTransactionStatus(%q) = %q, expected %q", status, got, want)
		}
	}
}
