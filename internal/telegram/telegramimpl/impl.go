package telegramimpl

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/orgball2608/insta-archive/internal/telegram"
	"github.com/orgball2608/insta-archive/pkg/config"
	"github.com/orgball2608/insta-archive/pkg/logger"
	"go.uber.org/fx"
)

type Opts struct {
	fx.In

	Config *config.Config
	Logger logger.Logger
}

// Sender is the part of tgbotapi.BotAPI the notifier uses.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type TelegramImpl struct {
	bot    Sender
	userID int64
	logger logger.Logger
}

// New returns a bot-backed client, or telegram.Nop when no token or operator is configured.
func New(opts Opts) (telegram.Client, error) {
	log := opts.Logger.WithComponent("Telegram")
	if opts.Config.Telegram.Token == "" || opts.Config.Telegram.User == 0 {
		log.Info("Telegram notifications disabled")
		return telegram.Nop{}, nil
	}

	bot, err := tgbotapi.NewBotAPI(opts.Config.Telegram.Token)
	if err != nil {
		log.Error("Error creating bot", "error", err)
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	return NewWithSender(bot, opts.Config.Telegram.User, log), nil
}

func NewWithSender(bot Sender, userID int64, logger logger.Logger) *TelegramImpl {
	return &TelegramImpl{
		bot:    bot,
		userID: userID,
		logger: logger,
	}
}

var _ telegram.Client = (*TelegramImpl)(nil)

func (tg *TelegramImpl) SendMessage(chatID int64, text string) (int, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdownV2
	msg.DisableWebPagePreview = true

	sent, err := tg.bot.Send(msg)
	if err != nil {
		tg.logger.Error("Error sending message", "chat_id", chatID, "error", err)
		return 0, fmt.Errorf("failed to send message: %w", err)
	}

	tg.logger.Debug("Message sent", "chat_id", chatID, "message_id", sent.MessageID)
	return sent.MessageID, nil
}

func (tg *TelegramImpl) SendMessageToUser(text string) {
	_, _ = tg.SendMessage(tg.userID, text)
}

var Module = fx.Provide(New)
