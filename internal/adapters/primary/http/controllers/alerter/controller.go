package alerter

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/admin/tg-bots/raffle-bot/internal/ports/service"
)

type Controller struct {
	AlerterService service.IAlerterService
	Auth           gin.HandlerFunc
	Log            *slog.Logger
}

func New(alerterService service.IAlerterService, auth gin.HandlerFunc, log *slog.Logger) *Controller {
	return &Controller{
		AlerterService: alerterService,
		Auth:           auth,
		Log:            log,
	}
}

func (c *Controller) RegisterRoutes(router *gin.Engine) {
	router.POST("/webhooks/alert", c.Auth, c.handleGenericAlert)
}

// handleGenericAlert пересылает алерт в чат алертов
func (c *Controller) handleGenericAlert(ctx *gin.Context) {
	var payload GenericAlertPayload

	if err := ctx.ShouldBindJSON(&payload); err != nil {
		c.Log.Warn("failed to bind generic alert request",
			"error", err,
		)
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	c.Log.Debug("received generic alert",
		"message_length", len(payload.Message),
		"source", payload.Source,
	)

	message := payload.Message
	if payload.Source != "" {
		message = fmt.Sprintf("🔔 Источник алерта: %s\n\n%s", payload.Source, payload.Message)
	}

	if err := c.AlerterService.SendAlert(ctx.Request.Context(), message); err != nil {
		c.Log.Warn("failed to send alert",
			"error", err,
			"source", payload.Source,
		)
		// 200, чтобы мониторинг не повторял запрос
		ctx.JSON(http.StatusOK, gin.H{"ok": false, "error": "failed to send alert"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"ok": true})
}
