package consumer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dodopay/contas/internal/conversation"
	"github.com/dodopay/contas/internal/model"
)

func intp(n int) *int { return &n }

func strp(s string) *string { return &s }

func TestFormatSuccess_FixedBill(t *testing.T) {
	got := FormatSuccess(&model.Draft{
		UserID:      1,
		Description: "Internet",
		Amount:      100,
		Kind:        model.KindRecurring,
	})

	require.Contains(t, got, "CONTA LANÇADA COM SUCESSO")
	require.Contains(t, got, "Dodo")
	require.Contains(t, got, "Internet")
	require.Contains(t, got, "R\\$ 100,00")
	require.Contains(t, got, "Conta Fixa")
	require.Contains(t, got, "Terceiro: —")
}

func TestFormatSuccess_Installment(t *testing.T) {
	got := FormatSuccess(&model.Draft{
		UserID:             2,
		Description:        "Tênis",
		Amount:             500.5,
		Kind:               model.KindCard,
		InstallmentCurrent: intp(1),
		InstallmentTotal:   intp(10),
		ThirdPartyName:     strp("Maria"),
	})

	require.Contains(t, got, "Vitória")
	require.Contains(t, got, "R\\$ 500,50")
	require.Contains(t, got, "Parcelado 1/10")
	require.Contains(t, got, "Maria")
}

func TestFormatSuccess_SingleCard(t *testing.T) {
	got := FormatSuccess(&model.Draft{
		UserID:      1,
		Description: "Mercado",
		Amount:      250,
		Kind:        model.KindCard,
	})
	require.Contains(t, got, "Crédito à vista")
}

func TestFormatError_EscapesMarkdown(t *testing.T) {
	got := FormatError("Parcelas inválidas. Envie \"10\" ou \"1/10\" (total >= 2).")
	require.Contains(t, got, "❌")
	require.Contains(t, got, "\\.")
	require.Contains(t, got, "\\(total")
}

func TestDraftFromFields_Installment(t *testing.T) {
	d := draftFromFields(conversation.Fields{
		UserID:             2,
		Description:        "Tênis",
		Amount:             500,
		Kind:               "parcelada",
		InstallmentCurrent: intp(1),
		InstallmentTotal:   intp(10),
		ThirdParty:         strp("Maria"),
	})
	require.Equal(t, model.KindCard, d.Kind)
	require.Equal(t, model.StatusPending, d.Status)
	require.Equal(t, 1, *d.InstallmentCurrent)
	require.Equal(t, 10, *d.InstallmentTotal)
	require.Equal(t, "Maria", *d.ThirdPartyName)
	require.False(t, d.DueDate.IsZero())
}

func TestDraftFromFields_Fixed(t *testing.T) {
	d := draftFromFields(conversation.Fields{
		UserID:      1,
		Description: "Aluguel",
		Amount:      1200,
		Kind:        "fixa",
	})
	require.Equal(t, model.KindRecurring, d.Kind)
	require.Nil(t, d.InstallmentCurrent)
	require.Nil(t, d.ThirdPartyName)
}
