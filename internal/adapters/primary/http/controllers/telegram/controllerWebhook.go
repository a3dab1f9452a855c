package telegram

import (
	"crypto/subtle"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	tgAdapter "github.com/admin/tg-bots/raffle-bot/internal/adapters/secondary/telegram"
	"github.com/admin/tg-bots/raffle-bot/internal/ports/service"
)

const (
	SecretTokenHeader = "X-Telegram-Bot-Api-Secret-Token"
	maxUpdateSize     = 1 << 20
)

type Controller struct {
	Handler service.IUpdateHandler
	Secret  string
	Log     *slog.Logger
}

func New(handler service.IUpdateHandler, secret string, log *slog.Logger) *Controller {
	return &Controller{
		Handler: handler,
		Secret:  secret,
		Log:     log,
	}
}

func (c *Controller) RegisterRoutes(router *gin.Engine) {
	router.POST("/webhook", c.handleWebhook)
}

func (c *Controller) handleWebhook(ctx *gin.Context) {
	if c.Secret != "" {
		secretToken := ctx.GetHeader(SecretTokenHeader)
		if subtle.ConstantTimeCompare([]byte(secretToken), []byte(c.Secret)) != 1 {
			c.Log.Warn("webhook secret token mismatch", "client_ip", ctx.ClientIP())
			ctx.JSON(http.StatusUnauthorized, gin.H{"error": "invalid secret token"})
			return
		}
	}

	body, err := io.ReadAll(io.LimitReader(ctx.Request.Body, maxUpdateSize))
	if err != nil {
		c.Log.Error("failed to read webhook body", "error", err)
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	update, err := tgAdapter.ParseUpdate(body)
	if err != nil {
		c.Log.Error("failed to bind webhook request", "error", err)
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	c.Log.Debug("received webhook update", "update_id", update.UpdateID)

	if err := c.Handler.HandleUpdate(ctx.Request.Context(), update); err != nil {
		// повторная доставка могла бы второй раз забронировать номера, поэтому отвечаем 200
		c.Log.Error("failed to handle update",
			"error", err,
			"update_id", update.UpdateID,
		)
	}

	// Telegram ожидает 200 OK в ответ
	ctx.JSON(http.StatusOK, gin.H{"ok": true})
}
