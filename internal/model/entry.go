package model

import "time"

// Kind is the stored type of a ledger entry. The string values match the
// database enum the dashboard has used since the first deploy, so they stay
// in Portuguese.
type Kind string

const (
	KindRecurring Kind = "FIXA"   // fixed monthly bill
	KindCard      Kind = "CARTAO" // credit-card charge, one-off or installment
	KindIncome    Kind = "RENDA"  // earnings
)

// Status of an entry within its month.
type Status string

const (
	StatusPending Status = "PENDENTE"
	StatusPaid    Status = "PAGO"
)

// Entry is one bill or income record.
type Entry struct {
	ID                 int64
	UserID             int
	Description        string
	Amount             float64
	Kind               Kind
	Category           *string
	Status             Status
	DueDate            time.Time
	InstallmentCurrent *int
	InstallmentTotal   *int
	ThirdPartyName     *string
	Order              int
	CreatedAt          time.Time
}

// HasInstallments reports whether the entry carries a matched installment
// pair. The pair is always both present or both absent.
func (e *Entry) HasInstallments() bool {
	return e.InstallmentCurrent != nil && e.InstallmentTotal != nil
}

// Draft is a parser-validated entry ready to be persisted. The repository
// assigns ID, Order and CreatedAt on insert.
type Draft struct {
	UserID             int
	Description        string
	Amount             float64
	Kind               Kind
	Category           *string
	Status             Status
	DueDate            time.Time
	InstallmentCurrent *int
	InstallmentTotal   *int
	ThirdPartyName     *string
}

// Classification is the stored shape derived from form input: which kind the
// entry gets, its category, its initial status and its installment pair.
type Classification struct {
	Kind               Kind
	Category           *string
	Status             Status
	InstallmentCurrent *int
	InstallmentTotal   *int
}

// StatusFor returns the status an entry of the given kind carries when it
// enters a month bucket, at creation and on rollover alike. Bills start
// unpaid, income is assumed received.
func StatusFor(k Kind) Status {
	if k == KindIncome {
		return StatusPaid
	}
	return StatusPending
}

// The two fixed household members. Display names only.
var userNames = map[int]string{
	1: "Dodo",
	2: "Vitória",
}

// UserName returns the display name for a member id, or an empty string for
// an id outside the household.
func UserName(id int) string {
	return userNames[id]
}
