package service

import "context"

// IBotService интерфейс use case слоя магазина для telegram-сервиса
type IBotService interface {
	HandleCommand(ctx context.Context, chatID int64, command string) error
	HandleText(ctx context.Context, chatID int64, text string) error

	// HandleCallback обрабатывает intent вида action:argument с inline-кнопки
	HandleCallback(ctx context.Context, buyerID int64, chatID int64, data string) error
}
