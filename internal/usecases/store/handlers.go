package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/admin/tg-bots/pack-store-bot/internal/domain"
	"github.com/admin/tg-bots/pack-store-bot/internal/ports/cache"
	"github.com/google/uuid"
)

const statusCacheTTL = 10 * time.Second

// HandleCommand обрабатывает команду бота (без ведущего "/")
func (u *UseCase) HandleCommand(ctx context.Context, chatID int64, command string) error {
	switch command {
	case "start":
		return u.Transport.SendMessageWithKeyboard(ctx, chatID, welcomeText, mainMenuKeyboard())
	case "store", "packs":
		return u.showMainMenu(ctx, chatID)
	case "orders":
		return u.showOrders(ctx, chatID)
	case "help":
		return u.Transport.SendMessage(ctx, chatID, helpText)
	default:
		u.Log.Debug("unknown command", "chat_id", chatID, "command", command)
		return u.Transport.SendMessage(ctx, chatID, "Неизвестная команда. Справка: /help")
	}
}

// HandleText свободный текст не поддерживается, отвечаем подсказкой
func (u *UseCase) HandleText(ctx context.Context, chatID int64, text string) error {
	u.Log.Debug("free text received", "chat_id", chatID, "len", len(text))
	return u.Transport.SendMessage(ctx, chatID, unknownTextReply)
}

// HandleCallback роутит intent с inline-кнопки, формат action:argument
func (u *UseCase) HandleCallback(ctx context.Context, buyerID int64, chatID int64, data string) error {
	action, arg := parseIntent(data)

	switch action {
	case "back_main":
		return u.showMainMenu(ctx, chatID)
	case "menu_images":
		return u.showPackList(ctx, chatID, domain.ProductKindImage, "🖼 <b>Фото-паки</b>")
	case "menu_videos":
		return u.showPackList(ctx, chatID, domain.ProductKindVideo, "🎬 <b>Видео-паки</b>")
	case "menu_demo":
		return u.showDemoMenu(ctx, chatID)
	case "menu_about":
		return u.Transport.SendMessage(ctx, chatID, aboutText)
	case "my_orders":
		return u.showOrders(ctx, chatID)
	case "pack":
		return u.showPackCard(ctx, chatID, arg)
	case "demo_pack":
		return u.sendDemo(ctx, chatID, arg)
	case "buy":
		return u.buyPack(ctx, buyerID, chatID, arg)
	case "pay_now":
		return u.resendInvoice(ctx, buyerID, chatID, arg)
	case "check_paid":
		return u.checkPaid(ctx, buyerID, chatID, arg)
	case "cancel":
		return u.cancelOrder(ctx, buyerID, chatID, arg)
	default:
		u.Log.Warn("unknown callback action",
			"buyer_id", buyerID,
			"action", action,
		)
		return u.Transport.SendMessage(ctx, chatID, unknownActionText)
	}
}

func parseIntent(data string) (action, arg string) {
	parts := strings.SplitN(data, ":", 2)
	if len(parts) == 2 {
		return parts[0], parts[1]
	}
	return parts[0], ""
}

func (u *UseCase) showMainMenu(ctx context.Context, chatID int64) error {
	return u.Transport.SendMessageWithKeyboard(ctx, chatID, "🛍 <b>Каталог</b>\n\nВыберите раздел:", mainMenuKeyboard())
}

func (u *UseCase) showDemoMenu(ctx context.Context, chatID int64) error {
	return u.Transport.SendMessageWithKeyboard(ctx, chatID,
		"🎁 <b>Бесплатное демо</b>\n\nВыберите пак, демо придёт в чат:", demoMenuKeyboard(u.Catalog.All()))
}

func (u *UseCase) showPackList(ctx context.Context, chatID int64, kind domain.ProductKind, title string) error {
	products := u.Catalog.List(kind)
	if len(products) == 0 {
		return u.Transport.SendMessage(ctx, chatID, "В этом разделе пока пусто.")
	}
	return u.Transport.SendMessageWithKeyboard(ctx, chatID, title, packListKeyboard(products))
}

func (u *UseCase) showPackCard(ctx context.Context, chatID int64, productID string) error {
	product, err := u.Catalog.Get(productID)
	if err != nil {
		return u.Transport.SendMessage(ctx, chatID, unknownActionText)
	}
	return u.Transport.SendMessageWithKeyboard(ctx, chatID, packCardText(product), packCardKeyboard(product))
}

// sendDemo отправляет бесплатное демо пака
func (u *UseCase) sendDemo(ctx context.Context, chatID int64, productID string) error {
	product, err := u.Catalog.Get(productID)
	if err != nil {
		return u.Transport.SendMessage(ctx, chatID, unknownActionText)
	}

	if product.DemoURL == "" {
		return u.Transport.SendMessage(ctx, chatID, "У этого пака пока нет демо.")
	}

	caption := fmt.Sprintf("👀 Демо: <b>%s</b>", product.Title)
	if product.Kind == domain.ProductKindVideo {
		err = u.Transport.SendVideoByURL(ctx, chatID, product.DemoURL, caption)
	} else {
		err = u.Transport.SendPhotoByURL(ctx, chatID, product.DemoURL, caption, packCardKeyboard(product))
	}
	if err != nil {
		u.Log.Warn("failed to send demo",
			"error", err,
			"product_id", productID,
			"chat_id", chatID,
		)
		return u.Transport.SendMessage(ctx, chatID,
			fmt.Sprintf("Демо сейчас недоступно, посмотреть можно по ссылке: %s", product.DemoURL))
	}
	return nil
}

// buyPack создаёт заказ, выставляет invoice и отправляет ссылку на оплату
func (u *UseCase) buyPack(ctx context.Context, buyerID, chatID int64, productID string) error {
	order, product, err := u.CreateOrder(ctx, buyerID, productID)
	if err != nil {
		if errors.Is(err, domain.ErrUnknownProduct) {
			return u.Transport.SendMessage(ctx, chatID, unknownActionText)
		}
		u.Log.Error("failed to create order", "error", err, "buyer_id", buyerID, "product_id", productID)
		return u.Transport.SendMessage(ctx, chatID, "Не получилось создать заказ, попробуйте ещё раз.")
	}

	if _, err := u.IssueInvoice(ctx, order, product); err != nil {
		u.Log.Error("failed to issue invoice", "error", err, "order_id", order.ID)
		return u.Transport.SendMessageWithKeyboard(ctx, chatID,
			fmt.Sprintf("Заказ <code>%s</code> создан, но выставить счёт не удалось. Попробуйте позже.", order.ID),
			domain.NewKeyboard(
				domain.Row(domain.InlineButton{Text: "🔄 Повторить", CallbackData: "pay_now:" + order.ID.String()}),
				domain.Row(domain.InlineButton{Text: "❌ Отменить заказ", CallbackData: "cancel:" + order.ID.String()}),
			))
	}

	return u.Transport.SendMessageWithKeyboard(ctx, chatID, invoiceText(order, product), invoiceKeyboard(order))
}

// resendInvoice перевыставляет invoice и показывает свежую ссылку на оплату
func (u *UseCase) resendInvoice(ctx context.Context, buyerID, chatID int64, rawOrderID string) error {
	order, err := u.parseOwnedOrder(ctx, buyerID, chatID, rawOrderID)
	if err != nil || order == nil {
		return err
	}

	if order.Status.IsTerminal() {
		return u.sendStatus(ctx, chatID, order)
	}

	product, err := u.Catalog.Get(order.ProductID)
	if err != nil {
		return u.Transport.SendMessage(ctx, chatID, unknownActionText)
	}

	// Повторное нажатие выставляет свежий invoice, действует последний
	if _, err := u.IssueInvoice(ctx, order, product); err != nil {
		if errors.Is(err, domain.ErrInvalidTransition) {
			// Заказ стал терминальным параллельно - показываем актуальный статус
			if refreshed, rerr := u.getOwnedOrder(ctx, buyerID, order.ID); rerr == nil {
				return u.sendStatus(ctx, chatID, refreshed)
			}
			return u.sendStatus(ctx, chatID, order)
		}
		u.Log.Error("failed to reissue invoice", "error", err, "order_id", order.ID)
		return u.Transport.SendMessage(ctx, chatID, "Выставить счёт не удалось, попробуйте позже.")
	}

	return u.Transport.SendMessageWithKeyboard(ctx, chatID, invoiceText(order, product), invoiceKeyboard(order))
}

// checkPaid показывает покупателю текущий статус заказа
func (u *UseCase) checkPaid(ctx context.Context, buyerID, chatID int64, rawOrderID string) error {
	orderID, err := uuid.Parse(rawOrderID)
	if err != nil {
		return u.Transport.SendMessage(ctx, chatID, unknownActionText)
	}

	// Ключ кэша привязан к покупателю: fast path никогда не отдаст чужой заказ
	if status, ok := u.cachedStatus(ctx, buyerID, orderID); ok && !domain.OrderStatus(status).IsTerminal() {
		return u.sendStatusText(ctx, chatID, orderID, domain.OrderStatus(status))
	}

	order, err := u.CheckPaid(ctx, buyerID, orderID)
	if err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			return u.Transport.SendMessage(ctx, chatID, "Заказ не найден.")
		}
		u.Log.Error("failed to check order", "error", err, "order_id", orderID)
		return u.Transport.SendMessage(ctx, chatID, "Не получилось проверить заказ, попробуйте позже.")
	}

	u.cacheStatus(ctx, order)
	return u.sendStatus(ctx, chatID, order)
}

// cancelOrder отменяет заказ по кнопке
func (u *UseCase) cancelOrder(ctx context.Context, buyerID, chatID int64, rawOrderID string) error {
	orderID, err := uuid.Parse(rawOrderID)
	if err != nil {
		return u.Transport.SendMessage(ctx, chatID, unknownActionText)
	}

	order, err := u.Cancel(ctx, buyerID, orderID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrOrderNotFound):
			return u.Transport.SendMessage(ctx, chatID, "Заказ не найден.")
		case errors.Is(err, domain.ErrInvalidTransition):
			return u.sendStatus(ctx, chatID, order)
		default:
			u.Log.Error("failed to cancel order", "error", err, "order_id", orderID)
			return u.Transport.SendMessage(ctx, chatID, "Не получилось отменить заказ, попробуйте позже.")
		}
	}

	return u.Transport.SendMessage(ctx, chatID,
		fmt.Sprintf("❌ Заказ <code>%s</code> отменён.", orderID))
}

func (u *UseCase) showOrders(ctx context.Context, chatID int64) error {
	orders, err := u.ListOrders(ctx, chatID)
	if err != nil {
		u.Log.Error("failed to list orders", "error", err, "buyer_id", chatID)
		return u.Transport.SendMessage(ctx, chatID, "Не получилось загрузить заказы, попробуйте позже.")
	}

	titles := make(map[string]string)
	for _, p := range u.Catalog.All() {
		titles[p.ID] = p.Title
	}

	return u.Transport.SendMessage(ctx, chatID, ordersListText(orders, titles))
}

// parseOwnedOrder разбирает order_id и проверяет владельца.
// При ошибке сам отвечает покупателю и возвращает (nil, nil).
func (u *UseCase) parseOwnedOrder(ctx context.Context, buyerID, chatID int64, rawOrderID string) (*domain.Order, error) {
	orderID, err := uuid.Parse(rawOrderID)
	if err != nil {
		return nil, u.Transport.SendMessage(ctx, chatID, unknownActionText)
	}

	order, err := u.getOwnedOrder(ctx, buyerID, orderID)
	if err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			return nil, u.Transport.SendMessage(ctx, chatID, "Заказ не найден.")
		}
		u.Log.Error("failed to load order", "error", err, "order_id", orderID)
		return nil, u.Transport.SendMessage(ctx, chatID, "Не получилось загрузить заказ, попробуйте позже.")
	}
	return order, nil
}

func (u *UseCase) sendStatus(ctx context.Context, chatID int64, order *domain.Order) error {
	return u.sendStatusText(ctx, chatID, order.ID, order.Status)
}

func (u *UseCase) sendStatusText(ctx context.Context, chatID int64, orderID uuid.UUID, status domain.OrderStatus) error {
	var text string
	switch status {
	case domain.OrderStatusPaid:
		text = fmt.Sprintf("✅ Заказ <code>%s</code> оплачен. Пак уже отправлен в чат.", orderID)
	case domain.OrderStatusCancelled:
		text = fmt.Sprintf("❌ Заказ <code>%s</code> отменён.", orderID)
	case domain.OrderStatusInvoiced:
		text = fmt.Sprintf("⏳ Оплата по заказу <code>%s</code> ещё не подтверждена. "+
			"Крипто-платёж может идти несколько минут, проверьте чуть позже.", orderID)
	default:
		text = fmt.Sprintf("⏳ Заказ <code>%s</code> ожидает выставления счёта.", orderID)
	}
	return u.Transport.SendMessage(ctx, chatID, text)
}

func (u *UseCase) cachedStatus(ctx context.Context, buyerID int64, orderID uuid.UUID) (string, bool) {
	if u.Cache == nil {
		return "", false
	}
	v, err := u.Cache.Get(ctx, cache.OrderStatusKey(buyerID, orderID))
	if err != nil || v == "" {
		return "", false
	}
	return v, true
}

func (u *UseCase) cacheStatus(ctx context.Context, order *domain.Order) {
	if u.Cache == nil {
		return
	}
	if err := u.Cache.Set(ctx, cache.OrderStatusKey(order.BuyerID, order.ID), string(order.Status), statusCacheTTL); err != nil {
		u.Log.Debug("failed to cache order status", "error", err, "order_id", order.ID)
	}
}
