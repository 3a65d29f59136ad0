package parse

import (
	"errors"
	"strconv"
	"strings"
)

// ErrInvalidInstallments is surfaced verbatim to the user on any installment
// rule violation.
var ErrInvalidInstallments = errors.New(`Parcelas inválidas. Envie "10" ou "1/10" (total >= 2).`)

// Installments is a current/total pair. Both sides are set or both are nil.
type Installments struct {
	Current *int
	Total   *int
}

// ParseFlexible parses the flexible installment notations:
//
//	"10"   => current 1, total 10
//	"1/10" => current 1, total 10
//	""     => both nil
//
// A non-numeric token yields nil for that side rather than a failure.
// Leading zeros are tolerated ("01/12" => 1/12).
func ParseFlexible(raw string) Installments {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Installments{}
	}

	if strings.Contains(s, "/") {
		parts := strings.Split(s, "/")
		return Installments{
			Current: parseIntOrNil(parts[0]),
			Total:   parseIntOrNil(parts[1]),
		}
	}

	current := 1
	return Installments{
		Current: &current,
		Total:   parseIntOrNil(s),
	}
}

// NormalizeByKind applies the single business rule for installments: the pair
// only exists on installment-kind entries. For any other kind both sides come
// back nil no matter what the raw text says. For installment entries the raw
// text must satisfy total >= 2 and 1 <= current <= total, otherwise
// ErrInvalidInstallments is returned instead of a silently coerced pair.
func NormalizeByKind(isInstallment bool, raw string) (Installments, error) {
	if !isInstallment {
		return Installments{}, nil
	}

	ins := ParseFlexible(raw)
	if ins.Total == nil || *ins.Total < 2 || ins.Current == nil || *ins.Current < 1 || *ins.Current > *ins.Total {
		return Installments{}, ErrInvalidInstallments
	}
	return ins, nil
}

func parseIntOrNil(s string) *int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return nil
	}
	return &n
}
