package store

import (
	"fmt"
	"strings"

	"github.com/admin/tg-bots/pack-store-bot/internal/domain"
)

const (
	welcomeText = "👋 Привет! Это магазин цифровых паков.\n\n" +
		"Здесь можно купить подборки артов и видео. Оплата криптой, " +
		"доставка прямо в этот чат сразу после подтверждения оплаты."

	helpText = "ℹ️ <b>Как это работает</b>\n\n" +
		"/store - каталог паков\n" +
		"/orders - мои заказы\n" +
		"/help - эта справка\n\n" +
		"Выберите пак, посмотрите демо и нажмите «Купить». " +
		"После оплаты по ссылке пак придёт в чат автоматически."

	aboutText = "🏪 <b>О магазине</b>\n\n" +
		"Продаём подборки цифровых артов и видео. Оплата криптовалютой " +
		"через платёжного провайдера, доставка в чат сразу после подтверждения.\n\n" +
		"У каждого пака есть бесплатное демо - посмотрите перед покупкой."

	unknownActionText = "🤔 Неизвестное действие. Откройте меню заново: /store"
	unknownTextReply  = "Я понимаю только команды и кнопки. Каталог: /store"
)

// mainMenuKeyboard главное меню магазина
func mainMenuKeyboard() *domain.InlineKeyboard {
	return domain.NewKeyboard(
		domain.Row(
			domain.InlineButton{Text: "🖼 Фото-паки", CallbackData: "menu_images"},
			domain.InlineButton{Text: "🎬 Видео-паки", CallbackData: "menu_videos"},
		),
		domain.Row(
			domain.InlineButton{Text: "🎁 Бесплатное демо", CallbackData: "menu_demo"},
			domain.InlineButton{Text: "📦 Мои заказы", CallbackData: "my_orders"},
		),
		domain.Row(
			domain.InlineButton{Text: "ℹ️ О магазине", CallbackData: "menu_about"},
		),
	)
}

// demoMenuKeyboard список всех паков с бесплатным демо
func demoMenuKeyboard(products []domain.Product) *domain.InlineKeyboard {
	rows := make([][]domain.InlineButton, 0, len(products)+1)
	for _, p := range products {
		rows = append(rows, domain.Row(domain.InlineButton{
			Text:         "👀 " + p.Title,
			CallbackData: "demo_pack:" + p.ID,
		}))
	}
	rows = append(rows, domain.Row(domain.InlineButton{Text: "⬅️ Назад", CallbackData: "back_main"}))
	return domain.NewKeyboard(rows...)
}

// packListKeyboard список паков одного типа + кнопка назад
func packListKeyboard(products []domain.Product) *domain.InlineKeyboard {
	rows := make([][]domain.InlineButton, 0, len(products)+1)
	for _, p := range products {
		rows = append(rows, domain.Row(domain.InlineButton{
			Text:         fmt.Sprintf("%s - %.8g %s", p.Title, p.Price, p.Currency),
			CallbackData: "pack:" + p.ID,
		}))
	}
	rows = append(rows, domain.Row(domain.InlineButton{Text: "⬅️ Назад", CallbackData: "back_main"}))
	return domain.NewKeyboard(rows...)
}

// packCardKeyboard карточка пака: демо, покупка, назад
func packCardKeyboard(p *domain.Product) *domain.InlineKeyboard {
	back := "menu_images"
	if p.Kind == domain.ProductKindVideo {
		back = "menu_videos"
	}
	return domain.NewKeyboard(
		domain.Row(
			domain.InlineButton{Text: "👀 Демо", CallbackData: "demo_pack:" + p.ID},
			domain.InlineButton{Text: fmt.Sprintf("💳 Купить за %.8g %s", p.Price, p.Currency), CallbackData: "buy:" + p.ID},
		),
		domain.Row(domain.InlineButton{Text: "⬅️ Назад", CallbackData: back}),
	)
}

// invoiceKeyboard кнопки под выставленным invoice
func invoiceKeyboard(order *domain.Order) *domain.InlineKeyboard {
	rows := [][]domain.InlineButton{}
	if order.Invoice.PayURL != "" {
		rows = append(rows, domain.Row(domain.InlineButton{Text: "💳 Оплатить", URL: order.Invoice.PayURL}))
	}
	rows = append(rows,
		domain.Row(domain.InlineButton{Text: "✅ Я оплатил", CallbackData: "check_paid:" + order.ID.String()}),
		domain.Row(domain.InlineButton{Text: "❌ Отменить заказ", CallbackData: "cancel:" + order.ID.String()}),
	)
	return domain.NewKeyboard(rows...)
}

func packCardText(p *domain.Product) string {
	return fmt.Sprintf("<b>%s</b>\n\n%s\n\nЦена: <b>%.8g %s</b>", p.Title, p.Description, p.Price, p.Currency)
}

func invoiceText(order *domain.Order, p *domain.Product) string {
	return fmt.Sprintf("🧾 Заказ <code>%s</code>\n\n%s - <b>%.8g %s</b>\n\n"+
		"Оплатите по кнопке ниже. После подтверждения оплаты пак придёт в чат автоматически.",
		order.ID, p.Title, order.Price, order.Currency)
}

func orderStatusLine(order domain.Order, title string) string {
	status := map[domain.OrderStatus]string{
		domain.OrderStatusPending:   "⏳ ожидает invoice",
		domain.OrderStatusInvoiced:  "💳 ждёт оплату",
		domain.OrderStatusPaid:      "✅ оплачен",
		domain.OrderStatusCancelled: "❌ отменён",
	}[order.Status]

	return fmt.Sprintf("• %s - %.8g %s - %s\n  <code>%s</code>",
		title, order.Price, order.Currency, status, order.ID)
}

func ordersListText(orders []domain.Order, titles map[string]string) string {
	if len(orders) == 0 {
		return "📦 У вас пока нет заказов. Каталог: /store"
	}

	var b strings.Builder
	b.WriteString("📦 <b>Ваши заказы</b>\n\n")
	for _, o := range orders {
		title := titles[o.ProductID]
		if title == "" {
			title = o.ProductID
		}
		b.WriteString(orderStatusLine(o, title))
		b.WriteString("\n\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
