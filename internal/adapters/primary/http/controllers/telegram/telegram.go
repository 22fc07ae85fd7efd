package telegramController

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/admin/tg-bots/pack-store-bot/internal/domain"
	telegramService "github.com/admin/tg-bots/pack-store-bot/internal/services/telegram"
	"github.com/gin-gonic/gin"
)

// handleTimeout потолок на обработку одного update вне HTTP-запроса
const handleTimeout = 60 * time.Second

type Controller struct {
	TgService     *telegramService.Service
	WebhookSecret string
	Log           *slog.Logger
}

func New(tgService *telegramService.Service, webhookSecret string, log *slog.Logger) *Controller {
	return &Controller{
		TgService:     tgService,
		WebhookSecret: webhookSecret,
		Log:           log,
	}
}

func (c *Controller) RegisterRoutes(router *gin.Engine) {
	router.POST("/webhook/telegram", c.handleWebhook)
}

// handleWebhook принимает update от Telegram. Отвечаем 200 сразу,
// обработка идёт вне запроса: Telegram ретраит медленные ответы,
// а дубликаты нам не нужны.
func (c *Controller) handleWebhook(ctx *gin.Context) {
	if c.WebhookSecret != "" {
		secretToken := ctx.GetHeader("X-Telegram-Bot-Api-Secret-Token")
		if subtle.ConstantTimeCompare([]byte(secretToken), []byte(c.WebhookSecret)) != 1 {
			c.Log.Warn("webhook with invalid secret token")
			ctx.JSON(http.StatusUnauthorized, gin.H{"error": "invalid secret token"})
			return
		}
	}

	var update domain.Update
	if err := ctx.ShouldBindJSON(&update); err != nil {
		c.Log.Error("failed to bind webhook request", "error", err)
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	c.Log.Debug("received webhook update", "update_id", update.UpdateID)

	go c.processUpdate(&update)

	// Telegram ожидает 200 OK в ответ
	ctx.JSON(http.StatusOK, gin.H{"ok": true})
}

func (c *Controller) processUpdate(update *domain.Update) {
	defer func() {
		if r := recover(); r != nil {
			c.Log.Error("panic while handling update",
				"panic", r,
				"update_id", update.UpdateID,
				"stack", string(debug.Stack()),
			)
		}
	}()

	handleCtx, cancel := context.WithTimeout(context.Background(), handleTimeout)
	defer cancel()

	if err := c.TgService.HandleUpdate(handleCtx, update); err != nil {
		c.Log.Error("failed to handle update",
			"error", err,
			"update_id", update.UpdateID,
		)
	}
}
