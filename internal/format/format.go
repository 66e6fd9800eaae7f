// Package format turns raw figures into display strings. Every helper
// returns "N/A" for values that are missing or not finite.
package format

import (
	"fmt"
	"math"
	"strconv"
)

// NA is shown wherever a figure is missing or cannot be computed.
const NA = "N/A"

// Number scales v to B/M/K with the given decimals. The sign goes in front of
// the currency symbol, so -1.5e9 becomes "-$1.50B".
func Number(v float64, currency bool, decimals int) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return NA
	}

	sign := ""
	if v < 0 {
		sign = "-"
	}
	abs := math.Abs(v)

	suffix := ""
	switch {
	case abs >= 1e9:
		abs, suffix = abs/1e9, "B"
	case abs >= 1e6:
		abs, suffix = abs/1e6, "M"
	case abs >= 1e3:
		abs, suffix = abs/1e3, "K"
	}

	prefix := ""
	if currency {
		prefix = "$"
	}
	return sign + prefix + strconv.FormatFloat(abs, 'f', decimals, 64) + suffix
}

// Currency is Number with a dollar prefix and two decimals.
func Currency(v float64) string {
	return Number(v, true, 2)
}

// CurrencyPtr formats an optional amount.
func CurrencyPtr(v *float64) string {
	if v == nil {
		return NA
	}
	return Currency(*v)
}

// Percent renders a fraction as a percentage: 0.1532 becomes "15.32%".
func Percent(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return NA
	}
	return fmt.Sprintf("%.2f%%", v*100)
}

func PercentPtr(v *float64) string {
	if v == nil {
		return NA
	}
	return Percent(*v)
}

// Fixed renders v with two decimals and no scaling.
func Fixed(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return NA
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func FixedPtr(v *float64) string {
	if v == nil {
		return NA
	}
	return Fixed(*v)
}

// Price renders a per-share amount without scaling, e.g. "$189.25".
func Price(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return NA
	}
	if v < 0 {
		return "-$" + strconv.FormatFloat(-v, 'f', 2, 64)
	}
	return "$" + strconv.FormatFloat(v, 'f', 2, 64)
}

// Shares renders a share count in millions, e.g. "15552.8M".
func Shares(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return NA
	}
	return strconv.FormatFloat(v/1e6, 'f', 1, 64) + "M"
}

// Count renders an integer with thousands separators.
func Count(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := false
	if n < 0 {
		neg = true
		s = s[1:]
	}
	var out []byte
	for i := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, s[i])
	}
	if neg {
		return "-" + string(out)
	}
	return string(out)
}

// Text returns s, or N/A when s is empty.
func Text(s string) string {
	if s == "" {
		return NA
	}
	return s
}

// Millions converts an amount to millions for chart series.
func Millions(v float64) float64 {
	return v / 1e6
}

// Year returns the leading YYYY of a YYYY-MM-DD date.
func Year(date string) string {
	if len(date) < 4 {
		return date
	}
	return date[:4]
}

// SignClass classifies a growth figure for colouring. Zero counts as
// positive; a missing value gets no class.
func SignClass(v *float64) string {
	switch {
	case v == nil || math.IsNaN(*v):
		return ""
	case *v < 0:
		return "negative"
	}
	return "positive"
}
