package consumer

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/dodopay/contas/internal/model"
)

const messageHeader = "🏦 *Contas a Pagar \\- Lançamentos*"

// FormatSuccess renders the confirmation sent after an entry is persisted,
// MarkdownV2-escaped.
func FormatSuccess(d *model.Draft) string {
	owner := model.UserName(d.UserID)
	if owner == "" {
		owner = fmt.Sprintf("Usuário %d", d.UserID)
	}

	thirdParty := "—"
	if d.ThirdPartyName != nil && *d.ThirdPartyName != "" {
		thirdParty = *d.ThirdPartyName
	}

	return strings.Join([]string{
		messageHeader,
		"",
		"✅ CONTA LANÇADA COM SUCESSO",
		"",
		"👤 Usuário: " + escape(owner),
		"📋 Descrição: " + escape(d.Description),
		"💰 Valor: " + escape(formatAmount(d.Amount)),
		"📌 Tipo: " + escape(kindDetail(d)),
		"🏷️ Terceiro: " + escape(thirdParty),
	}, "\n")
}

// FormatError renders an error reply, MarkdownV2-escaped.
func FormatError(message string) string {
	return strings.Join([]string{
		messageHeader,
		"",
		"❌ " + escape(message),
	}, "\n")
}

// formatAmount renders a value the way the household reads money: comma
// decimal, R$ prefix.
func formatAmount(v float64) string {
	return "R$ " + strings.Replace(fmt.Sprintf("%.2f", v), ".", ",", 1)
}

func kindDetail(d *model.Draft) string {
	if d.Kind == model.KindRecurring {
		return "Conta Fixa"
	}
	if d.InstallmentTotal != nil {
		return fmt.Sprintf("Parcelado %d/%d", *d.InstallmentCurrent, *d.InstallmentTotal)
	}
	return "Crédito à vista"
}

func escape(text string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeMarkdownV2, text)
}
