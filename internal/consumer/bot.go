// Package consumer runs the Telegram side of the dashboard: a long-poll loop
// that accepts entries either as a single ;-delimited line or through a
// step-by-step conversation with inline keyboards.
package consumer

import (
	"context"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/dodopay/contas/internal/conversation"
	"github.com/dodopay/contas/internal/model"
	"github.com/dodopay/contas/internal/parse"
)

const storageTimeout = 10 * time.Second

const genericFailure = "Não foi possível salvar o lançamento. Tente novamente."

// EntryCreator persists a finished draft.
type EntryCreator interface {
	CreateFromDraft(ctx context.Context, draft *model.Draft) error
}

// Bot polls the Telegram server and feeds one authorized chat. Updates for
// the chat arrive serially from the updates channel, so the conversation
// session is never mutated concurrently.
type Bot struct {
	api           *tgbotapi.BotAPI
	allowedChatID int64
	timeout       int
	conversations *conversation.Store
	entries       EntryCreator
}

func NewBot(api *tgbotapi.BotAPI, allowedChatID int64, timeout int, conversations *conversation.Store, entries EntryCreator) *Bot {
	return &Bot{
		api:           api,
		allowedChatID: allowedChatID,
		timeout:       timeout,
		conversations: conversations,
		entries:       entries,
	}
}

func (b *Bot) Consume(ctx context.Context) {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = b.timeout
	updates := b.api.GetUpdatesChan(cfg)

	logrus.Infof("telegram bot %s started consuming", b.api.Self.UserName)
	for {
		select {
		case <-ctx.Done():
			logrus.Infof("bot consumer stopped: %v", ctx.Err())
			return
		case update := <-updates:
			switch {
			case update.CallbackQuery != nil:
				b.handleCallback(ctx, update.CallbackQuery)
			case update.Message != nil:
				b.handleMessage(ctx, update.Message)
			}
		}
	}
}

func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	if message.Chat.ID != b.allowedChatID {
		logrus.Infof("ignored message from unauthorized chat %d", message.Chat.ID)
		return
	}

	text := strings.TrimSpace(message.Text)
	if text == "" {
		return
	}

	if strings.HasPrefix(text, "/") {
		b.handleCommand(text)
		return
	}

	// A ;-delimited line is a complete entry; everything else is an answer
	// in the running conversation.
	if strings.Contains(text, ";") {
		b.handleLine(ctx, text)
		return
	}

	b.handleConversationText(ctx, message.Chat.ID, text)
}

func (b *Bot) handleCommand(text string) {
	command := strings.ToLower(strings.Fields(text)[0])
	switch command {
	case "/novo", "/start":
		logrus.Info("starting a new conversation")
		b.conversations.Start(b.allowedChatID)
		b.askStep(conversation.StepOwner)
	case "/cancelar":
		b.conversations.Cancel(b.allowedChatID)
		b.send("❌ Lançamento cancelado\\.")
	case "/help":
		b.send(strings.Join([]string{
			"🏦 *Bot Contas a Pagar*",
			"",
			"📌 *Comandos:*",
			"/novo \\- Iniciar novo lançamento",
			"/cancelar \\- Cancelar lançamento em andamento",
			"/help \\- Ver esta ajuda",
		}, "\n"))
	default:
		logrus.Infof("unknown command: %s", text)
		b.send("Comando não reconhecido\\. Use /help")
	}
}

// handleLine is the fast path: the whole entry in one message.
func (b *Bot) handleLine(ctx context.Context, text string) {
	draft, err := parse.ParseMessage(text)
	if err != nil {
		logrus.Infof("message rejected: %v", err)
		b.send(FormatError(err.Error()))
		return
	}
	b.persist(ctx, draft)
}

func (b *Bot) handleConversationText(ctx context.Context, chatID int64, text string) {
	sess, ok := b.conversations.Get(chatID)
	if !ok {
		b.conversations.Start(chatID)
		b.askStep(conversation.StepOwner)
		return
	}

	switch sess.Step {
	case conversation.StepDescription:
		b.advance(ctx, chatID, func(f *conversation.Fields) { f.Description = text })

	case conversation.StepAmount:
		amount := parse.ParseAmount(text)
		if amount <= 0 {
			b.send("⚠️ Valor inválido\\. Envie algo como *R\\$ 100,00* ou *100*")
			return
		}
		b.advance(ctx, chatID, func(f *conversation.Fields) { f.Amount = amount })

	case conversation.StepInstallments:
		ins, err := parse.NormalizeByKind(true, text)
		if err != nil {
			b.send(FormatError(err.Error()) + "\nEnvie no formato *10* ou *1/10*")
			return
		}
		b.advance(ctx, chatID, func(f *conversation.Fields) {
			f.InstallmentCurrent = ins.Current
			f.InstallmentTotal = ins.Total
		})

	case conversation.StepThirdParty:
		b.advance(ctx, chatID, func(f *conversation.Fields) { f.ThirdParty = &text })

	default:
		// StepOwner and StepKind expect a button press
		b.send("👆 Por favor, selecione uma opção usando os botões acima\\.")
	}
}

func (b *Bot) handleCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	chatID := query.Message.Chat.ID
	if chatID != b.allowedChatID {
		return
	}

	if _, err := b.api.Request(tgbotapi.NewCallback(query.ID, "")); err != nil {
		logrus.Errorf("answer callback query: %v", err)
	}

	if _, ok := b.conversations.Get(chatID); !ok {
		b.send("Nenhum lançamento em andamento\\. Use /novo para iniciar\\.")
		return
	}

	// Callback data format: "campo:valor" (e.g. "usuario:1", "tipo:fixa")
	field, value, _ := strings.Cut(query.Data, ":")
	switch field {
	case "usuario":
		userID, err := strconv.Atoi(value)
		if err != nil {
			logrus.Errorf("bad usuario callback %q", query.Data)
			return
		}
		b.advance(ctx, chatID, func(f *conversation.Fields) { f.UserID = userID })
	case "tipo":
		b.advance(ctx, chatID, func(f *conversation.Fields) { f.Kind = value })
	case "terceiro":
		// the "skip" button
		b.advance(ctx, chatID, func(f *conversation.Fields) { f.ThirdParty = nil })
	default:
		logrus.Infof("unknown callback data: %s", query.Data)
	}
}

// advance records an answer, then either asks the next question or persists
// the finished entry.
func (b *Bot) advance(ctx context.Context, chatID int64, apply func(*conversation.Fields)) {
	next, ok := b.conversations.Advance(chatID, apply)
	if !ok {
		return
	}
	if next == conversation.StepNone {
		b.finalize(ctx, chatID)
		return
	}
	b.askStep(next)
}

func (b *Bot) finalize(ctx context.Context, chatID int64) {
	fields, ok := b.conversations.Finish(chatID)
	if !ok {
		return
	}
	b.persist(ctx, draftFromFields(fields))
}

func (b *Bot) persist(ctx context.Context, draft *model.Draft) {
	newCtx, cancel := context.WithTimeout(ctx, storageTimeout)
	defer cancel()

	if err := b.entries.CreateFromDraft(newCtx, draft); err != nil {
		logrus.Errorf("couldn't create entry: %v", err)
		b.send(FormatError(genericFailure))
		return
	}

	logrus.Infof("user %d added entry: %s: %.2f", draft.UserID, draft.Description, draft.Amount)
	b.send(FormatSuccess(draft))
}

// draftFromFields converts a finished conversation into a draft. The
// interactive flow only creates bills, never income.
func draftFromFields(f conversation.Fields) *model.Draft {
	kind := model.KindCard
	if f.Kind == parse.TokenFixed {
		kind = model.KindRecurring
	}
	return &model.Draft{
		UserID:             f.UserID,
		Description:        f.Description,
		Amount:             f.Amount,
		Kind:               kind,
		Status:             model.StatusPending,
		DueDate:            time.Now(),
		InstallmentCurrent: f.InstallmentCurrent,
		InstallmentTotal:   f.InstallmentTotal,
		ThirdPartyName:     f.ThirdParty,
	}
}

func (b *Bot) askStep(step conversation.Step) {
	switch step {
	case conversation.StepOwner:
		msg := tgbotapi.NewMessage(b.allowedChatID, "👤 *Conta de quem?*")
		msg.ParseMode = tgbotapi.ModeMarkdownV2
		msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("🧑 Dodo", "usuario:1"),
				tgbotapi.NewInlineKeyboardButtonData("👩 Vitória", "usuario:2"),
			),
		)
		b.sendMessage(msg)

	case conversation.StepDescription:
		b.send("📋 *Qual a descrição?*\n_Ex: Netflix, Mercado, Rancho_")

	case conversation.StepAmount:
		b.send("💰 *Qual o valor?*\n_Ex: R\\$ 100,00 ou 100_")

	case conversation.StepKind:
		msg := tgbotapi.NewMessage(b.allowedChatID, "📌 *Qual o tipo?*")
		msg.ParseMode = tgbotapi.ModeMarkdownV2
		msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("📅 Fixa", "tipo:"+parse.TokenFixed),
				tgbotapi.NewInlineKeyboardButtonData("💳 Única", "tipo:"+parse.TokenSingle),
				tgbotapi.NewInlineKeyboardButtonData("🔢 Parcelada", "tipo:"+parse.TokenInstallment),
			),
		)
		b.sendMessage(msg)

	case conversation.StepInstallments:
		b.send("🔢 *Quantas parcelas?*\n_Envie 10 ou 1/10_")

	case conversation.StepThirdParty:
		msg := tgbotapi.NewMessage(b.allowedChatID, "🏷️ *É para algum terceiro?*\n_Envie o nome ou pule_")
		msg.ParseMode = tgbotapi.ModeMarkdownV2
		msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("⏭️ Pular", "terceiro:pular"),
			),
		)
		b.sendMessage(msg)
	}
}

func (b *Bot) send(text string) {
	msg := tgbotapi.NewMessage(b.allowedChatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdownV2
	b.sendMessage(msg)
}

func (b *Bot) sendMessage(msg tgbotapi.MessageConfig) {
	if _, err := b.api.Send(msg); err != nil {
		logrus.Errorf("telegram bot couldn't send message: %v", err)
	}
}
