package store

import (
	"log/slog"

	"github.com/admin/tg-bots/pack-store-bot/internal/ports/cache"
	"github.com/admin/tg-bots/pack-store-bot/internal/ports/events"
	"github.com/admin/tg-bots/pack-store-bot/internal/ports/payment"
	ports "github.com/admin/tg-bots/pack-store-bot/internal/ports/repository"
	"github.com/admin/tg-bots/pack-store-bot/internal/ports/service"
	"github.com/admin/tg-bots/pack-store-bot/internal/ports/usecase"
)

// underpayTolerance доля цены, ниже которой недоплата считается существенной
// и уходит алертом в ops-чат. Любая недоплата логируется, но подтверждение
// оплаты не блокируется никогда.
const underpayTolerance = 0.99

// UseCase движок жизненного цикла заказов и логика чат-магазина
type UseCase struct {
	Orders    ports.IOrderRepo
	Catalog   ports.ICatalog
	Gateway   payment.IPaymentGateway
	Transport service.ITransport
	Delivery  service.IDeliveryService
	Alerter   service.IAlerterService       // опционален
	Producer  events.IOrderEventProducer    // опционален
	Cache     cache.Cache                   // опционален
	Log       *slog.Logger
}

func New(
	orders ports.IOrderRepo,
	catalog ports.ICatalog,
	gateway payment.IPaymentGateway,
	transport service.ITransport,
	delivery service.IDeliveryService,
	alerter service.IAlerterService,
	producer events.IOrderEventProducer,
	c cache.Cache,
	log *slog.Logger,
) usecase.IStoreUseCase {
	return &UseCase{
		Orders:    orders,
		Catalog:   catalog,
		Gateway:   gateway,
		Transport: transport,
		Delivery:  delivery,
		Alerter:   alerter,
		Producer:  producer,
		Cache:     c,
		Log:       log,
	}
}
