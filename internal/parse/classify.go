package parse

import "github.com/dodopay/contas/internal/model"

// Form sub-types sent by the web dashboard.
const (
	SubKindFixed       = "Fixa"
	SubKindSingle      = "Unica"
	SubKindInstallment = "Parcelada"
)

// Classify derives the stored kind, category, status and installment pair
// from the web form fields. It is the single place where the kind rules live:
// income is always created paid and keeps its sub-type as category, fixed
// bills become FIXA, everything else is a card charge, and installments are
// only accepted on the installment sub-type.
func Classify(transactionKind, subKind, installmentsRaw string) (model.Classification, error) {
	c := model.Classification{
		Kind:   model.KindCard,
		Status: model.StatusPending,
	}
	if subKind == SubKindFixed {
		c.Kind = model.KindRecurring
	}

	if model.Kind(transactionKind) == model.KindIncome {
		category := subKind
		return model.Classification{
			Kind:     model.KindIncome,
			Category: &category,
			Status:   model.StatusFor(model.KindIncome),
		}, nil
	}

	if subKind == SubKindInstallment {
		ins, err := NormalizeByKind(true, installmentsRaw)
		if err != nil {
			return model.Classification{}, err
		}
		c.InstallmentCurrent = ins.Current
		c.InstallmentTotal = ins.Total
	}
	return c, nil
}
