package service

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// Messenger is the part of the Telegram Bot API the bot uses.
type Messenger interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetFileDirectURL(fileID string) (string, error)
}

// TelegramService wraps the Bot API client with logging.
type TelegramService struct {
	bot *tgbotapi.BotAPI
	log zerolog.Logger
}

func NewTelegramService(bot *tgbotapi.BotAPI, log zerolog.Logger) *TelegramService {
	return &TelegramService{bot: bot, log: log}
}

func (s *TelegramService) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	msg, err := s.bot.Send(c)
	if err != nil {
		s.log.Warn().Err(err).Msg("failed to send telegram message")
		return msg, fmt.Errorf("failed to send message: %w", err)
	}
	s.log.Debug().Int64("chat_id", msg.Chat.ID).Int("message_id", msg.MessageID).Msg("message sent")
	return msg, nil
}

func (s *TelegramService) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	resp, err := s.bot.Request(c)
	if err != nil {
		s.log.Debug().Err(err).Msg("telegram request failed")
		return resp, fmt.Errorf("failed to request: %w", err)
	}
	return resp, nil
}

func (s *TelegramService) GetFileDirectURL(fileID string) (string, error) {
	return s.bot.GetFileDirectURL(fileID)
}

// Updates starts long polling.
func (s *TelegramService) Updates(timeout int) tgbotapi.UpdatesChannel {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = timeout
	return s.bot.GetUpdatesChan(u)
}

func (s *TelegramService) Stop() {
	s.bot.StopReceivingUpdates()
}

func (s *TelegramService) UserName() string {
	return s.bot.Self.UserName
}
