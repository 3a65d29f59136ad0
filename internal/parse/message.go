package parse

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/dodopay/contas/internal/model"
)

// Kind tokens accepted from the integration surfaces (Telegram line mode and
// the Android shortcut).
const (
	TokenFixed       = "fixa"
	TokenSingle      = "unica"
	TokenInstallment = "parcelada"
)

const minFields = 4

// Validation errors surfaced verbatim to the user, on the bot and on the web
// API alike.
var (
	ErrEmptyMessage       = errors.New("Mensagem vazia ou inválida.")
	ErrInvalidUser        = errors.New("ID do usuário inválido. Use 1 (Dodo) ou 2 (Vitória).")
	ErrMissingDescription = errors.New("Descrição é obrigatória.")
	ErrInvalidAmount      = errors.New(`Valor inválido. Envie algo como "R$ 100,00" ou "100".`)
	ErrMissingKind        = errors.New("Tipo é obrigatório. Use: fixa, unica ou parcelada.")
)

// UsageMessage is the help text sent back when a message has too few fields.
func UsageMessage() string {
	return "❌ Formato inválido.\n\n" +
		"📝 Formato esperado:\n" +
		"usuario_id; descricao; valor; tipo; parcelas; terceiro\n\n" +
		"📌 Exemplos:\n" +
		"1; Internet; R$ 100,00; fixa; ;\n" +
		"1; Tênis; R$ 500,00; parcelada; 10; Vitoria\n" +
		"2; Mercado; 250; unica; ;"
}

// ParseMessage converts a single ;-delimited line into an entry draft:
//
//	"usuario_id; descricao; valor; tipo; parcelas; terceiro"
//
// At least four fields are required; installments and third party are
// optional. Validation short-circuits on the first failure and every failure
// carries a distinct user-facing message meant to be replied verbatim.
func ParseMessage(raw string) (*model.Draft, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, ErrEmptyMessage
	}

	fields := strings.Split(raw, ";")
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	if len(fields) < minFields {
		return nil, errors.New(UsageMessage())
	}

	userID, err := strconv.Atoi(fields[0])
	if err != nil || userID <= 0 {
		return nil, ErrInvalidUser
	}

	description := fields[1]
	if description == "" {
		return nil, ErrMissingDescription
	}

	amount := ParseAmount(fields[2])
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	kindToken := strings.ToLower(strings.TrimSpace(fields[3]))
	if kindToken == "" {
		return nil, ErrMissingKind
	}

	kind := model.KindCard
	if kindToken == TokenFixed {
		kind = model.KindRecurring
	}

	var installmentsRaw, thirdParty string
	if len(fields) > 4 {
		installmentsRaw = fields[4]
	}
	if len(fields) > 5 {
		thirdParty = fields[5]
	}

	ins, err := NormalizeByKind(kindToken == TokenInstallment, installmentsRaw)
	if err != nil {
		return nil, err
	}

	var thirdPartyName *string
	if thirdParty != "" {
		thirdPartyName = &thirdParty
	}

	return &model.Draft{
		UserID:             userID,
		Description:        description,
		Amount:             amount,
		Kind:               kind,
		Status:             model.StatusPending,
		DueDate:            time.Now(),
		InstallmentCurrent: ins.Current,
		InstallmentTotal:   ins.Total,
		ThirdPartyName:     thirdPartyName,
	}, nil
}
