package service

import (
	"context"

	"github.com/admin/tg-bots/pack-store-bot/internal/domain"
)

// ITransport исходящие операции к чат-платформе.
// Реализуется telegram-адаптером; use cases и delivery зависят только от интерфейса.
type ITransport interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
	SendMessageWithKeyboard(ctx context.Context, chatID int64, text string, keyboard *domain.InlineKeyboard) error

	// SendPhotoByURL отправляет фото по внешней ссылке (Telegram сам скачивает превью)
	SendPhotoByURL(ctx context.Context, chatID int64, photoURL, caption string, keyboard *domain.InlineKeyboard) error

	// SendPhoto отправляет байты фото напрямую (multipart)
	SendPhoto(ctx context.Context, chatID int64, data []byte, filename, caption string) error

	SendVideoByURL(ctx context.Context, chatID int64, videoURL, caption string) error

	// SendDocument отправляет произвольный файл (пак как архив)
	SendDocument(ctx context.Context, chatID int64, data []byte, filename, caption string) error

	AnswerCallbackQuery(ctx context.Context, callbackID string, text string, showAlert bool) error
}
