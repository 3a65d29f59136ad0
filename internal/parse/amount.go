// Package parse converts the free-form text the household types — web form
// fields, Telegram messages — into validated ledger values.
package parse

import (
	"math"
	"strconv"
	"strings"
)

// ParseAmount converts a locale-formatted currency string into a number.
// Accepted forms: "R$ 1.234,56", "1234,56", "1234". The currency marker and
// every dot are stripped, then the first comma becomes the decimal point.
//
// Dots are treated as thousands separators unconditionally, so a bare
// dot-decimal such as "1234.56" yields 123456. That reading is relied on by
// the recorded integration fixtures; keep it.
//
// Returns 0 for empty or unparseable input, never an error.
func ParseAmount(raw string) float64 {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0
	}

	s = strings.Replace(s, "R$", "", 1)
	s = strings.ReplaceAll(s, ".", "")
	s = strings.Replace(s, ",", ".", 1)
	s = strings.TrimSpace(s)

	n, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0
	}
	return n
}
