package telegram

import (
	"log/slog"

	"github.com/admin/tg-bots/pack-store-bot/internal/ports/service"
)

// Service принимает обновления от Telegram (webhook или polling)
// и роутит их в use case магазина
type Service struct {
	Store     service.IBotService
	Transport service.ITransport
	Log       *slog.Logger
}

func New(store service.IBotService, transport service.ITransport, log *slog.Logger) *Service {
	return &Service{
		Store:     store,
		Transport: transport,
		Log:       log,
	}
}
