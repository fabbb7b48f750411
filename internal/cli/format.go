// Package cli provides formatting and rendering utilities for terminal output.
//
// Amounts are in 만원 (10,000 KRW). Rounding is half away from zero.
package cli

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Unit is the suffix appended to every amount.
const Unit = "만원"

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	return groupDigits(strconv.FormatInt(n, 10))
}

// groupDigits inserts thousands separators into a base-10 integer string
// with an optional leading minus sign.
func groupDigits(s string) string {
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	if len(s) <= 3 {
		return sign + s
	}

	var result strings.Builder
	result.WriteString(sign)
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if i > 0 {
			result.WriteByte(',')
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}

// nonFinite renders NaN and ±Inf. ok is false for finite values.
func nonFinite(v float64) (string, bool) {
	switch {
	case math.IsNaN(v):
		return "NaN", true
	case math.IsInf(v, 1):
		return "∞", true
	case math.IsInf(v, -1):
		return "-∞", true
	}
	return "", false
}

// fixed renders v with exactly places decimals.
func fixed(v float64, places int32) string {
	if s, bad := nonFinite(v); bad {
		return s
	}
	return decimal.NewFromFloat(v).StringFixed(places)
}

// FormatInt rounds v to an integer with thousands separators.
// e.g., 8954.238 -> "8,954"
func FormatInt(v float64) string {
	if s, bad := nonFinite(v); bad {
		return s
	}
	// values beyond int64 still format exactly
	return groupDigits(decimal.NewFromFloat(v).Round(0).String())
}

// FormatWan formats an aggregate amount: integer, separators, unit.
// e.g., 5000 -> "5,000만원"
func FormatWan(v float64) string {
	return FormatInt(v) + Unit
}

// FormatWan1 formats an income or dividend figure with one decimal.
// e.g., 80 -> "80.0만원"
func FormatWan1(v float64) string {
	return fixed(v, 1) + Unit
}

// FormatPct1 formats a percentage value (6 means 6%) with one decimal.
func FormatPct1(v float64) string {
	return fixed(v, 1) + "%"
}

// FormatPct2 formats a percentage value with two decimals.
func FormatPct2(v float64) string {
	return fixed(v, 2) + "%"
}

// FormatPlain prints a backend number as given, without padding zeros.
// e.g., 4.8 -> "4.8", 16 -> "16"
func FormatPlain(v float64) string {
	if s, bad := nonFinite(v); bad {
		return s
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// FormatPayoutMonths lists dividend months, e.g. [3 6 9 12] -> "3, 6, 9, 12월".
// Returns "" for no months.
func FormatPayoutMonths(months []int) string {
	if len(months) == 0 {
		return ""
	}
	parts := make([]string, len(months))
	for i, m := range months {
		parts[i] = strconv.Itoa(m)
	}
	return strings.Join(parts, ", ") + "월"
}

// FormatYears renders a horizon label, e.g. 10 -> "10년 후".
func FormatYears(n int) string {
	return strconv.Itoa(n) + "년 후"
}
