package admin

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/admin/tg-bots/raffle-bot/internal/domain"
	"github.com/admin/tg-bots/raffle-bot/internal/ports/service"
	"github.com/admin/tg-bots/raffle-bot/internal/ports/usecase"
)

const proofURLExpiry = 5 * time.Minute

type Controller struct {
	Raffles usecase.IRaffleService
	Proofs  service.IProofArchive // nil - архив чеков выключен
	Auth    gin.HandlerFunc
	Log     *slog.Logger
}

func New(
	raffles usecase.IRaffleService,
	proofs service.IProofArchive,
	auth gin.HandlerFunc,
	log *slog.Logger,
) *Controller {
	return &Controller{
		Raffles: raffles,
		Proofs:  proofs,
		Auth:    auth,
		Log:     log,
	}
}

func (c *Controller) RegisterRoutes(router *gin.Engine) {
	admin := router.Group("/admin", c.Auth)
	{
		admin.GET("/raffles", c.listRaffles)
		admin.POST("/raffles", c.createRaffle)
		admin.DELETE("/raffles/:id", c.deleteRaffle)
		admin.GET("/raffles/:id/pool", c.pool)
		admin.GET("/raffles/:id/stats", c.stats)
		admin.GET("/raffles/:id/sold", c.sold)

		admin.GET("/payments", c.listPayments)
		admin.GET("/payments/:id", c.payment)
		admin.GET("/payments/:id/proof", c.proof)
		admin.POST("/payments/:id/approve", c.decide(domain.DecisionApprove))
		admin.POST("/payments/:id/reject", c.decide(domain.DecisionReject))

		admin.POST("/sweep", c.sweep)
	}
}

// CreateRaffleRequest запрос на создание розыгрыша
type CreateRaffleRequest struct {
	Name      string `json:"name" binding:"required"`
	UnitPrice int64  `json:"unit_price" binding:"required,gt=0"`
}

func (c *Controller) listRaffles(ctx *gin.Context) {
	raffles, err := c.Raffles.ListRaffles(ctx.Request.Context())
	if err != nil {
		c.fail(ctx, "failed to list raffles", err)
		return
	}
	ctx.JSON(http.StatusOK, raffles)
}

func (c *Controller) createRaffle(ctx *gin.Context) {
	var req CreateRaffleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		c.Log.Warn("failed to bind create raffle request", "error", err)
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	raffle, err := c.Raffles.CreateRaffle(ctx.Request.Context(), req.Name, req.UnitPrice)
	if err != nil {
		c.fail(ctx, "failed to create raffle", err)
		return
	}
	ctx.JSON(http.StatusCreated, raffle)
}

func (c *Controller) deleteRaffle(ctx *gin.Context) {
	id, ok := c.idParam(ctx)
	if !ok {
		return
	}
	if err := c.Raffles.DeleteRaffle(ctx.Request.Context(), id); err != nil {
		c.fail(ctx, "failed to delete raffle", err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

func (c *Controller) pool(ctx *gin.Context) {
	id, ok := c.idParam(ctx)
	if !ok {
		return
	}
	pool, err := c.Raffles.PoolStatus(ctx.Request.Context(), id)
	if err != nil {
		c.fail(ctx, "failed to load pool", err)
		return
	}
	ctx.JSON(http.StatusOK, pool)
}

func (c *Controller) stats(ctx *gin.Context) {
	id, ok := c.idParam(ctx)
	if !ok {
		return
	}
	stats, err := c.Raffles.Stats(ctx.Request.Context(), id)
	if err != nil {
		c.fail(ctx, "failed to load raffle stats", err)
		return
	}
	ctx.JSON(http.StatusOK, stats)
}

func (c *Controller) sold(ctx *gin.Context) {
	id, ok := c.idParam(ctx)
	if !ok {
		return
	}
	sold, err := c.Raffles.SoldNumbers(ctx.Request.Context(), id)
	if err != nil {
		c.fail(ctx, "failed to load sold numbers", err)
		return
	}
	ctx.JSON(http.StatusOK, sold)
}

func (c *Controller) listPayments(ctx *gin.Context) {
	state := domain.PaymentState(ctx.DefaultQuery("state", string(domain.PaymentStateInReview)))
	if !state.IsValid() {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "unknown payment state", "state": state})
		return
	}

	payments, err := c.Raffles.PaymentsByState(ctx.Request.Context(), state)
	if err != nil {
		c.fail(ctx, "failed to list payments", err)
		return
	}
	ctx.JSON(http.StatusOK, payments)
}

func (c *Controller) payment(ctx *gin.Context) {
	id, ok := c.idParam(ctx)
	if !ok {
		return
	}
	details, err := c.Raffles.PaymentDetails(ctx.Request.Context(), id)
	if err != nil {
		c.fail(ctx, "failed to load payment", err)
		return
	}
	ctx.JSON(http.StatusOK, details)
}

// proof редирект на временную ссылку на чек в S3
func (c *Controller) proof(ctx *gin.Context) {
	id, ok := c.idParam(ctx)
	if !ok {
		return
	}
	if c.Proofs == nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "proof archive is disabled"})
		return
	}

	details, err := c.Raffles.PaymentDetails(ctx.Request.Context(), id)
	if err != nil {
		c.fail(ctx, "failed to load payment", err)
		return
	}
	if details.ProofReference == nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "payment has no proof"})
		return
	}

	url, err := c.Proofs.URL(ctx.Request.Context(), id, *details.ProofReference, proofURLExpiry)
	if err != nil {
		c.fail(ctx, "failed to get proof url", err)
		return
	}
	ctx.Redirect(http.StatusFound, url)
}

func (c *Controller) decide(decision domain.Decision) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		id, ok := c.idParam(ctx)
		if !ok {
			return
		}
		payment, err := c.Raffles.Decide(ctx.Request.Context(), id, decision)
		if err != nil {
			c.fail(ctx, "failed to decide payment", err)
			return
		}

		c.Log.InfoContext(ctx.Request.Context(), "payment decided via api",
			"payment_id", payment.ID,
			"decision", decision,
			"admin", ctx.GetString("admin"),
		)
		ctx.JSON(http.StatusOK, payment)
	}
}

func (c *Controller) sweep(ctx *gin.Context) {
	expired, err := c.Raffles.SweepExpired(ctx.Request.Context())
	if err != nil {
		c.fail(ctx, "failed to sweep expired payments", err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"expired": expired})
}

func (c *Controller) idParam(ctx *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

// fail переводит доменную ошибку в HTTP-статус
func (c *Controller) fail(ctx *gin.Context, msg string, err error) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		c.Log.ErrorContext(ctx.Request.Context(), msg, "error", err)
	} else {
		c.Log.WarnContext(ctx.Request.Context(), msg, "error", err)
	}

	body := gin.H{"error": err.Error()}
	var conflict *domain.ConflictError
	if errors.As(err, &conflict) {
		body["taken"] = conflict.Taken
	}
	ctx.JSON(status, body)
}

func StatusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConflict), errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
