package telegram

import (
	"context"
	"fmt"
	"strings"

	"github.com/admin/tg-bots/pack-store-bot/internal/domain"
)

// HandleUpdate Основной метод для обработки всех типов обновлений
func (s *Service) HandleUpdate(ctx context.Context, update *domain.Update) error {
	if update == nil {
		return fmt.Errorf("update is nil")
	}

	if update.CallbackQuery != nil {
		return s.HandleCallbackQuery(ctx, update.CallbackQuery, update.UpdateID)
	}

	if update.Message != nil {
		return s.HandleMessage(ctx, update.Message, update.UpdateID)
	}

	return nil
}

// HandleMessage обрабатывает входящее сообщение - роутинг в usecase
func (s *Service) HandleMessage(ctx context.Context, message *domain.Message, updateID int64) error {
	if message == nil {
		return fmt.Errorf("message is nil")
	}

	if message.From == nil || message.From.IsBot {
		s.Log.Debug("ignoring message from bot", "update_id", updateID)
		return nil
	}

	if message.Chat == nil {
		return fmt.Errorf("message has no chat")
	}

	if message.Chat.Type != "private" {
		s.Log.Warn("ignoring message from group/chat",
			"update_id", updateID,
			"chat_type", message.Chat.Type,
			"chat_id", message.Chat.ID,
		)
		return nil
	}

	if message.Text == nil {
		s.Log.Debug("ignoring non-text message", "update_id", updateID)
		return nil
	}

	text := *message.Text
	if IsCommand(text) {
		return s.Store.HandleCommand(ctx, message.Chat.ID, ParseCommand(text))
	}

	return s.Store.HandleText(ctx, message.Chat.ID, text)
}

// HandleCallbackQuery обрабатывает нажатие inline-кнопки.
// Query подтверждается всегда, иначе у пользователя зависнут "часики".
func (s *Service) HandleCallbackQuery(ctx context.Context, query *domain.CallbackQuery, updateID int64) error {
	if query == nil {
		return fmt.Errorf("callback query is nil")
	}

	if err := s.Transport.AnswerCallbackQuery(ctx, query.ID, "", false); err != nil {
		s.Log.Warn("failed to answer callback query",
			"error", err,
			"callback_id", query.ID,
			"update_id", updateID,
		)
	}

	if query.From == nil || query.From.IsBot {
		s.Log.Debug("ignoring callback from bot", "update_id", updateID)
		return nil
	}

	if query.Data == nil || *query.Data == "" {
		s.Log.Debug("ignoring callback without data", "update_id", updateID)
		return nil
	}

	chatID := query.From.ID
	if query.Message != nil && query.Message.Chat != nil {
		chatID = query.Message.Chat.ID
	}

	return s.Store.HandleCallback(ctx, query.From.ID, chatID, *query.Data)
}

func ParseCommand(text string) string {
	text = strings.TrimPrefix(text, "/")

	if idx := strings.Index(text, "@"); idx != -1 {
		text = text[:idx]
	}

	if idx := strings.Index(text, " "); idx != -1 {
		text = text[:idx]
	}

	return text
}

func IsCommand(text string) bool {
	return len(text) > 0 && text[0] == '/'
}
