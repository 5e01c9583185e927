package service

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"greenearth/backend/internal/models"
)

// MicroSTXPerSTX is the number of micro-STX in one STX
const MicroSTXPerSTX = 1_000_000

var microSTX = decimal.NewFromInt(MicroSTXPerSTX)

// displayFracDigits caps the fraction digits shown for STX amounts
const displayFracDigits = 3

// FormatSTX renders an STX amount with grouped thousands, e.g. "1,234.5 STX"
func FormatSTX(amount float64) string {
	return groupThousands(decimal.NewFromFloat(amount)) + " STX"
}

// FormatMicroSTX converts a micro-STX integer string into grouped STX,
// e.g. "1234500000" becomes "1,234.5"
func FormatMicroSTX(micro string) (string, error) {
	d, err := MicroToSTX(micro)
	if err != nil {
		return "", err
	}
	return groupThousands(d), nil
}

// MicroToSTX parses a micro-STX integer string into STX
func MicroToSTX(micro string) (decimal.Decimal, error) {
	if strings.TrimSpace(micro) == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(micro)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid micro-STX amount %q: %w", micro, err)
	}
	return d.Div(microSTX), nil
}

// STXToMicro converts an STX amount into micro-STX, truncating dust
func STXToMicro(amount float64) int64 {
	return decimal.NewFromFloat(amount).Mul(microSTX).IntPart()
}

// FormatTransactionStatus renders an upstream transaction status for display
func FormatTransactionStatus(status string) string {
	switch status {
	case "success":
		return "✅ Confirmed"
	case "pending":
		return "⏳ Pending"
	case "failed":
		return "❌ Failed"
	default:
		return status
	}
}

// SettlementStatus maps an upstream tx_status to the final pledge status.
// ok is false while the transaction is still pending.
func SettlementStatus(txStatus string) (status models.PledgeStatus, ok bool) {
	switch txStatus {
	case "success":
		return models.PledgeStatusConfirmed, true
	case "failed", "abort_by_response", "abort_by_post_condition",
		"dropped_replace_by_fee", "dropped_replace_across_fork", "dropped_too_expensive",
		"dropped_stale_garbage_collect", "dropped_problematic":
		return models.PledgeStatusFailed, true
	default:
		return "", false
	}
}

// isTxID reports whether s is 64 hex digits with an optional 0x prefix
func isTxID(s string) bool {
	s = strings.TrimPrefix(s, "0x")
	if len(s) != 64 {
		return false
	}
	for _, r := range s {
		if !strings.ContainsRune("0123456789abcdefABCDEF", r) {
			return false
		}
	}
	return true
}

// groupThousands rounds d to at most three fraction digits, halves away
// from zero, and groups the integer part with commas
func groupThousands(d decimal.Decimal) string {
	return humanize.Commaf(d.Round(displayFracDigits).InexactFloat64())
}
