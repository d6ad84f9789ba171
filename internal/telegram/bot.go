package telegram

import (
	"context"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/sashakosti/Go_Race_Bot/internal/service"
	"github.com/sashakosti/Go_Race_Bot/internal/session"
	"github.com/sashakosti/Go_Race_Bot/internal/wizard"
)

type Bot struct {
	bot     *tgbotapi.BotAPI
	handler *Handler
}

func NewBot(token string, svc service.RaceServiceInterface, opts wizard.Options) (*Bot, error) {
	botAPI, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	log.Printf("Authorized as @%s", botAPI.Self.UserName)

	handler := NewHandler(botAPI, svc, session.NewStore(), opts)

	return &Bot{
		bot:     botAPI,
		handler: handler,
	}, nil
}

var botCommands = []tgbotapi.BotCommand{
	{Command: "newrace", Description: "Enter results of a new race"},
	{Command: "leaderboard", Description: "Show the leaderboard"},
	{Command: "cancel", Description: "Stop entering a race"},
	{Command: "help", Description: "Help"},
}

// Start читает апдейты по одному, пока не отменят ctx.
func (b *Bot) Start(ctx context.Context) {
	if _, err := b.bot.Request(tgbotapi.NewSetMyCommands(botCommands...)); err != nil {
		log.Printf("Failed to set bot commands: %v", err)
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.bot.GetUpdatesChan(u)

	log.Println("🤖 Bot is up and running")

	for {
		select {
		case <-ctx.Done():
			b.bot.StopReceivingUpdates()
			log.Println("Bot stopped")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message != nil { // пришло сообщение
				b.handler.HandleMessage(ctx, update.Message)
			} else if update.CallbackQuery != nil {
				b.handler.HandleCallback(ctx, update.CallbackQuery)
			}
		}
	}
}
