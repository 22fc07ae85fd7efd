package store

import (
	"context"
	"testing"

	"github.com/admin/tg-bots/pack-store-bot/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const chatID = buyerID

func TestHandleCallback_BuyCreatesInvoicedOrder(t *testing.T) {
	f := newFixture()

	err := f.uc.HandleCallback(context.Background(), buyerID, chatID, "buy:face_pack")
	require.NoError(t, err)

	orders, err := f.uc.ListOrders(context.Background(), buyerID)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, domain.OrderStatusInvoiced, orders[0].Status)
	assert.NotEmpty(t, orders[0].Invoice.PayURL)
	assert.Contains(t, f.transport.lastMessage(), orders[0].ID.String())
}

func TestHandleCallback_BuyUnknownPack(t *testing.T) {
	f := newFixture()

	err := f.uc.HandleCallback(context.Background(), buyerID, chatID, "buy:ghost_pack")
	require.NoError(t, err)
	assert.Equal(t, unknownActionText, f.transport.lastMessage())
}

func TestHandleCallback_BuyWithFailedInvoiceKeepsOrder(t *testing.T) {
	f := newFixture()
	f.gateway.failInvoice = true

	err := f.uc.HandleCallback(context.Background(), buyerID, chatID, "buy:face_pack")
	require.NoError(t, err)

	orders, _ := f.uc.ListOrders(context.Background(), buyerID)
	require.Len(t, orders, 1)
	assert.Equal(t, domain.OrderStatusPending, orders[0].Status)
	assert.Contains(t, f.transport.lastMessage(), "создан")
}

func TestHandleCallback_CheckPaidRetriesFailedDelivery(t *testing.T) {
	f := newFixture()
	order, product, _ := f.uc.CreateOrder(context.Background(), buyerID, "face_pack")
	_, _ = f.uc.IssueInvoice(context.Background(), order, product)

	f.delivery.fail = true
	_, err := f.uc.ConfirmPaid(context.Background(), order.ID, order.Price, true, nil)
	require.NoError(t, err)
	require.Equal(t, 0, f.delivery.count())
	require.Equal(t, 1, f.alerter.count())

	// Telegram ожил: ручная проверка оплаты повторяет доставку
	f.delivery.fail = false
	err = f.uc.HandleCallback(context.Background(), buyerID, chatID, "check_paid:"+order.ID.String())
	require.NoError(t, err)
	assert.Equal(t, 1, f.delivery.count())
	assert.Contains(t, f.transport.lastMessage(), "оплачен")
}

func TestHandleCallback_CheckPaidConfirmsFromStoredInvoiceStatus(t *testing.T) {
	f := newFixture()
	order, product, _ := f.uc.CreateOrder(context.Background(), buyerID, "face_pack")
	_, _ = f.uc.IssueInvoice(context.Background(), order, product)

	// Провайдер успел проставить finished, но финальное уведомление не дошло
	require.NoError(t, f.orders.UpdateInvoiceStatus(context.Background(), order.ID, "finished"))

	err := f.uc.HandleCallback(context.Background(), buyerID, chatID, "check_paid:"+order.ID.String())
	require.NoError(t, err)

	stored, _ := f.orders.GetByID(context.Background(), order.ID)
	assert.Equal(t, domain.OrderStatusPaid, stored.Status)
	assert.Equal(t, 1, f.delivery.count())
	assert.Contains(t, f.transport.lastMessage(), "оплачен")
}

func TestCheckPaid_UnpaidInvoiceStatusLeavesOrderUntouched(t *testing.T) {
	f := newFixture()
	order, product, _ := f.uc.CreateOrder(context.Background(), buyerID, "face_pack")
	_, _ = f.uc.IssueInvoice(context.Background(), order, product)
	require.NoError(t, f.orders.UpdateInvoiceStatus(context.Background(), order.ID, "waiting"))

	checked, err := f.uc.CheckPaid(context.Background(), buyerID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusInvoiced, checked.Status)
	assert.Equal(t, 0, f.delivery.count())
}

func TestHandleCallback_PayNowReissuesInvoice(t *testing.T) {
	f := newFixture()

	err := f.uc.HandleCallback(context.Background(), buyerID, chatID, "buy:face_pack")
	require.NoError(t, err)
	require.Equal(t, 1, f.gateway.created)

	orders, _ := f.uc.ListOrders(context.Background(), buyerID)
	require.Len(t, orders, 1)

	err = f.uc.HandleCallback(context.Background(), buyerID, chatID, "pay_now:"+orders[0].ID.String())
	require.NoError(t, err)
	assert.Equal(t, 2, f.gateway.created)
	assert.Contains(t, f.transport.lastMessage(), orders[0].ID.String())
}

func TestHandleCallback_MenuAbout(t *testing.T) {
	f := newFixture()

	err := f.uc.HandleCallback(context.Background(), buyerID, chatID, "menu_about")
	require.NoError(t, err)
	assert.Equal(t, aboutText, f.transport.lastMessage())
}

func TestHandleCallback_MenuDemo(t *testing.T) {
	f := newFixture()

	err := f.uc.HandleCallback(context.Background(), buyerID, chatID, "menu_demo")
	require.NoError(t, err)
	assert.Contains(t, f.transport.lastMessage(), "демо")
}

func TestHandleCommand_PacksAlias(t *testing.T) {
	f := newFixture()

	err := f.uc.HandleCommand(context.Background(), chatID, "packs")
	require.NoError(t, err)
	assert.Contains(t, f.transport.lastMessage(), "Каталог")
}

func TestHandleCallback_UnknownAction(t *testing.T) {
	f := newFixture()

	err := f.uc.HandleCallback(context.Background(), buyerID, chatID, "fly_to_moon:now")
	require.NoError(t, err)
	assert.Equal(t, unknownActionText, f.transport.lastMessage())
}

func TestHandleCallback_CancelOwnOrder(t *testing.T) {
	f := newFixture()
	order, product, _ := f.uc.CreateOrder(context.Background(), buyerID, "face_pack")
	_, _ = f.uc.IssueInvoice(context.Background(), order, product)

	err := f.uc.HandleCallback(context.Background(), buyerID, chatID, "cancel:"+order.ID.String())
	require.NoError(t, err)

	stored, _ := f.orders.GetByID(context.Background(), order.ID)
	assert.Equal(t, domain.OrderStatusCancelled, stored.Status)
	assert.Contains(t, f.transport.lastMessage(), "отменён")
}

func TestHandleCallback_CancelForeignOrderHidden(t *testing.T) {
	f := newFixture()
	order, product, _ := f.uc.CreateOrder(context.Background(), buyerID, "face_pack")
	_, _ = f.uc.IssueInvoice(context.Background(), order, product)

	err := f.uc.HandleCallback(context.Background(), buyerID+1, chatID, "cancel:"+order.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "Заказ не найден.", f.transport.lastMessage())

	stored, _ := f.orders.GetByID(context.Background(), order.ID)
	assert.Equal(t, domain.OrderStatusInvoiced, stored.Status)
}

func TestHandleCallback_CheckPaidReportsStatus(t *testing.T) {
	f := newFixture()
	order, product, _ := f.uc.CreateOrder(context.Background(), buyerID, "face_pack")
	_, _ = f.uc.IssueInvoice(context.Background(), order, product)

	err := f.uc.HandleCallback(context.Background(), buyerID, chatID, "check_paid:"+order.ID.String())
	require.NoError(t, err)
	assert.Contains(t, f.transport.lastMessage(), "не подтверждена")

	_, err = f.uc.ConfirmPaid(context.Background(), order.ID, 10.0, true, nil)
	require.NoError(t, err)

	err = f.uc.HandleCallback(context.Background(), buyerID, chatID, "check_paid:"+order.ID.String())
	require.NoError(t, err)
	assert.Contains(t, f.transport.lastMessage(), "оплачен")
}

func TestHandleCallback_MalformedOrderID(t *testing.T) {
	f := newFixture()

	err := f.uc.HandleCallback(context.Background(), buyerID, chatID, "cancel:not-a-uuid")
	require.NoError(t, err)
	assert.Equal(t, unknownActionText, f.transport.lastMessage())
}

func TestHandleCallback_DemoSendsPhoto(t *testing.T) {
	f := newFixture()

	err := f.uc.HandleCallback(context.Background(), buyerID, chatID, "demo_pack:face_pack")
	require.NoError(t, err)
	require.Len(t, f.transport.photos, 1)
	assert.Contains(t, f.transport.photos[0], "face_pack")
}

func TestHandleCallback_DemoFallsBackToLink(t *testing.T) {
	f := newFixture()
	f.transport.failURL = true

	err := f.uc.HandleCallback(context.Background(), buyerID, chatID, "demo_pack:face_pack")
	require.NoError(t, err)
	assert.Contains(t, f.transport.lastMessage(), "по ссылке")
}

func TestHandleCommand_Routing(t *testing.T) {
	f := newFixture()

	require.NoError(t, f.uc.HandleCommand(context.Background(), chatID, "start"))
	require.NoError(t, f.uc.HandleCommand(context.Background(), chatID, "store"))
	require.NoError(t, f.uc.HandleCommand(context.Background(), chatID, "help"))
	require.NoError(t, f.uc.HandleCommand(context.Background(), chatID, "orders"))
	assert.Contains(t, f.transport.lastMessage(), "нет заказов")

	require.NoError(t, f.uc.HandleCommand(context.Background(), chatID, "frobnicate"))
	assert.Contains(t, f.transport.lastMessage(), "Неизвестная команда")
}

func TestHandleText_PointsToCatalog(t *testing.T) {
	f := newFixture()

	require.NoError(t, f.uc.HandleText(context.Background(), chatID, "хочу пак"))
	assert.Equal(t, unknownTextReply, f.transport.lastMessage())
}

func TestParseIntent(t *testing.T) {
	action, arg := parseIntent("buy:face_pack")
	assert.Equal(t, "buy", action)
	assert.Equal(t, "face_pack", arg)

	action, arg = parseIntent("back_main")
	assert.Equal(t, "back_main", action)
	assert.Empty(t, arg)
}
