package telegram

import (
	"context"
	"errors"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/sashakosti/Go_Race_Bot/internal/service"
	"github.com/sashakosti/Go_Race_Bot/internal/session"
	"github.com/sashakosti/Go_Race_Bot/internal/wizard"
)

// MessageSender определяет интерфейс для отправки сообщений.
type MessageSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

type Handler struct {
	Bot      MessageSender
	Service  service.RaceServiceInterface
	Sessions *session.Store
	Wizard   wizard.Options
}

func NewHandler(bot MessageSender, service service.RaceServiceInterface, sessions *session.Store, opts wizard.Options) *Handler {
	return &Handler{
		Bot:      bot,
		Service:  service,
		Sessions: sessions,
		Wizard:   opts,
	}
}

// HandleMessage - точка входа для всех входящих сообщений.
// Команды обрабатываются всегда, даже посреди ввода гонки.
func (h *Handler) HandleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if !msg.IsCommand() {
		h.HandleText(ctx, msg)
		return
	}

	switch msg.Command() {
	case "start", "help":
		h.HandleHelp(msg.Chat.ID)
	case "leaderboard":
		h.HandleLeaderboard(ctx, msg.Chat.ID)
	case "newrace":
		h.HandleNewRace(ctx, msg.Chat.ID)
	case "cancel":
		h.HandleCancel(msg.Chat.ID)
	}
}

// HandleCallback - кнопки из /help
func (h *Handler) HandleCallback(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	// Отвечаем на callback, чтобы у кнопки пропал индикатор загрузки
	if _, err := h.Bot.Request(tgbotapi.NewCallback(callback.ID, "")); err != nil {
		log.Printf("Failed to send callback request: %v", err)
	}
	if callback.Message == nil {
		return
	}

	chatID := callback.Message.Chat.ID
	switch callback.Data {
	case "help":
		h.HandleHelp(chatID)
	case "leaderboard":
		h.HandleLeaderboard(ctx, chatID)
	case "newrace":
		h.HandleNewRace(ctx, chatID)
	}
}

// HandleLeaderboard - Обработка команды /leaderboard
func (h *Handler) HandleLeaderboard(ctx context.Context, chatID int64) {
	rows, err := h.Service.GetLeaderboard(ctx)
	if err != nil {
		log.Printf("[Leaderboard] chat %d: %v", chatID, err)
		sendMessage(h.Bot, tgbotapi.NewMessage(chatID, "Error fetching leaderboard:\n"+err.Error()))
		return
	}

	reply := tgbotapi.NewMessage(chatID, service.FormatLeaderboard(rows))
	reply.ParseMode = tgbotapi.ModeMarkdown
	sendMessage(h.Bot, reply)
}

// HandleNewRace - /newrace, запускает ввод новой гонки
func (h *Handler) HandleNewRace(ctx context.Context, chatID int64) {
	w := wizard.New(h.Service, h.Wizard)
	if _, err := h.Sessions.Create(chatID, w); err != nil {
		if errors.Is(err, session.ErrActiveSession) {
			sendMessage(h.Bot, tgbotapi.NewMessage(chatID, "A race is already being entered. Finish it or send /cancel."))
			return
		}
		log.Printf("Failed to start race entry: %v", err)
		return
	}

	log.Printf("[NewRace] chat %d: started", chatID)
	h.reply(chatID, w, w.Start(ctx))
}

// HandleText - очередной ответ пользователя в визарде.
// Без активной сессии обычный текст игнорируется.
func (h *Handler) HandleText(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	sess, ok := h.Sessions.Get(chatID)
	if !ok {
		return
	}
	// стикеры, фото и прочее без текста не считаются ответом
	if msg.Text == "" {
		return
	}

	h.reply(chatID, sess.Wizard, sess.Wizard.Handle(ctx, msg.Text))
}

// HandleCancel - /cancel, выход из визарда без сохранения
func (h *Handler) HandleCancel(chatID int64) {
	if _, ok := h.Sessions.Get(chatID); !ok {
		sendMessage(h.Bot, tgbotapi.NewMessage(chatID, "Nothing to cancel."))
		return
	}
	h.Sessions.Delete(chatID)

	reply := tgbotapi.NewMessage(chatID, "Race entry cancelled.")
	reply.ReplyMarkup = tgbotapi.NewRemoveKeyboard(true)
	sendMessage(h.Bot, reply)
}

// reply отправляет ответ визарда и закрывает сессию, если визард закончил.
func (h *Handler) reply(chatID int64, w *wizard.Wizard, r wizard.Reply) {
	if r.Text != "" {
		sendMessage(h.Bot, replyMessage(chatID, r))
	}
	if w.Done() {
		h.Sessions.Delete(chatID)
		log.Printf("[NewRace] chat %d: finished", chatID)
	}
}

var commandsKeyboard = tgbotapi.NewInlineKeyboardMarkup(
	tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("Leaderboard", "leaderboard"),
		tgbotapi.NewInlineKeyboardButtonData("New race", "newrace"),
	),
)

const helpText = "Race results bot. Commands:\n\n" +
	"/newrace - enter results of a new race\n" +
	"/leaderboard - show the leaderboard\n" +
	"/cancel - stop entering a race\n" +
	"/help - show this message"

// HandleHelp - /help
func (h *Handler) HandleHelp(chatID int64) {
	reply := tgbotapi.NewMessage(chatID, helpText)
	reply.ReplyMarkup = commandsKeyboard
	sendMessage(h.Bot, reply)
}
