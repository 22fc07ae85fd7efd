package paymentController

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/admin/tg-bots/pack-store-bot/internal/domain"
	"github.com/admin/tg-bots/pack-store-bot/internal/ports/usecase"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// signatureHeader заголовок с HMAC-подписью IPN-уведомления
const signatureHeader = "x-nowpayments-sig"

// maxNotificationBody потолок размера тела уведомления
const maxNotificationBody = 1 << 20

type Controller struct {
	Store usecase.IStoreUseCase
	Log   *slog.Logger
}

func New(store usecase.IStoreUseCase, log *slog.Logger) *Controller {
	return &Controller{
		Store: store,
		Log:   log,
	}
}

func (c *Controller) RegisterRoutes(router *gin.Engine) {
	router.POST("/payment/notify", c.handleNotify)
	router.GET("/pay/:order_id", c.payPage)
	router.POST("/pay/:order_id/simulate", c.simulatePayment)
}

// handleNotify принимает IPN-уведомление от платёжного провайдера.
// На внутренние ошибки отвечаем 5xx - провайдер перепошлёт уведомление.
func (c *Controller) handleNotify(ctx *gin.Context) {
	rawBody, err := io.ReadAll(io.LimitReader(ctx.Request.Body, maxNotificationBody))
	if err != nil {
		c.Log.Error("failed to read notification body", "error", err)
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}

	signature := ctx.GetHeader(signatureHeader)

	err = c.Store.HandleNotification(ctx.Request.Context(), rawBody, signature)
	switch {
	case err == nil:
		ctx.JSON(http.StatusOK, gin.H{"ok": true})
	case errors.Is(err, domain.ErrSignatureInvalid):
		ctx.JSON(http.StatusForbidden, gin.H{"error": "invalid signature"})
	case errors.Is(err, domain.ErrOrderNotFound):
		// Уведомление по неизвестному заказу: ретраить бессмысленно
		c.Log.Warn("notification for unknown order")
		ctx.JSON(http.StatusOK, gin.H{"ok": true})
	default:
		c.Log.Error("failed to process notification", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process notification"})
	}
}

// payPage dev-страница оплаты для placeholder-invoice (провайдер недоступен
// или не сконфигурирован). В проде на неё никто не попадает.
func (c *Controller) payPage(ctx *gin.Context) {
	orderID, err := uuid.Parse(ctx.Param("order_id"))
	if err != nil {
		ctx.String(http.StatusBadRequest, "bad order id")
		return
	}

	order, err := c.Store.GetOrder(ctx.Request.Context(), orderID)
	if err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			ctx.String(http.StatusNotFound, "order not found")
			return
		}
		c.Log.Error("failed to load order for pay page", "error", err, "order_id", orderID)
		ctx.String(http.StatusInternalServerError, "internal error")
		return
	}

	// Кнопка имитации доступна только для placeholder-invoice
	action := fmt.Sprintf(`<form method="post" action="/pay/%s/simulate">
<button type="submit" style="padding:12px 24px">Имитировать оплату</button>
</form>`, order.ID)
	if !order.Invoice.IsPlaceholder() {
		action = `<p>Оплата принимается платёжным провайдером по ссылке из чата.</p>`
	}

	html := fmt.Sprintf(`<!doctype html>
<html lang="ru"><head><meta charset="utf-8"><title>Оплата заказа</title></head>
<body style="font-family:sans-serif;max-width:480px;margin:40px auto">
<h2>Заказ %s</h2>
<p>Товар: <b>%s</b></p>
<p>Сумма: <b>%.8g %s</b></p>
<p>Статус: <b>%s</b></p>
%s
</body></html>`,
		order.ID, order.ProductID, order.Price, order.Currency, order.Status, action)

	ctx.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}

// simulatePayment подтверждает оплату с dev-страницы
func (c *Controller) simulatePayment(ctx *gin.Context) {
	orderID, err := uuid.Parse(ctx.Param("order_id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "bad order id"})
		return
	}

	if err := c.Store.SimulatePayment(ctx.Request.Context(), orderID); err != nil {
		switch {
		case errors.Is(err, domain.ErrOrderNotFound):
			ctx.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
		case errors.Is(err, domain.ErrSimulationUnavailable):
			ctx.JSON(http.StatusForbidden, gin.H{"error": "simulation is not available for this order"})
		case errors.Is(err, domain.ErrInvalidTransition):
			ctx.JSON(http.StatusConflict, gin.H{"error": "order is not payable"})
		default:
			c.Log.Error("failed to simulate payment", "error", err, "order_id", orderID)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		}
		return
	}

	ctx.Data(http.StatusOK, "text/html; charset=utf-8",
		[]byte(`<!doctype html><html><body style="font-family:sans-serif;max-width:480px;margin:40px auto">
<h2>✅ Оплата подтверждена</h2><p>Вернитесь в чат с ботом - пак уже в пути.</p></body></html>`))
}
