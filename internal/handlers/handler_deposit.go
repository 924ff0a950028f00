package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/SscSPs/core_banking_ledger/internal/core/domain"
	"github.com/SscSPs/core_banking_ledger/internal/core/ports"
	portssvc "github.com/SscSPs/core_banking_ledger/internal/core/ports/services"
	"github.com/SscSPs/core_banking_ledger/internal/dto"
	"github.com/SscSPs/core_banking_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

type depositHandler struct {
	depositService portssvc.DepositSvcFacade
	clock          ports.Clock
}

// RegisterDepositRoutes registers fixed deposit routes.
func RegisterDepositRoutes(rg *gin.RouterGroup, depositService portssvc.DepositSvcFacade, clock ports.Clock) {
	h := &depositHandler{depositService: depositService, clock: clock}

	deposits := rg.Group("/deposits")
	{
		deposits.POST("", h.createDeposit)
		deposits.GET("/:depositID", h.getDeposit)
		deposits.POST("/:depositID/activate", h.activateDeposit)
		deposits.POST("/:depositID/mature", h.matureDeposit)
		deposits.POST("/:depositID/withdraw-early", h.withdrawEarly)
		deposits.POST("/:depositID/renew", h.renewDeposit)
	}
}

// createDeposit godoc
// @Summary Create a fixed deposit
// @Description Maturity date and amount are computed at creation
// @Tags deposits
// @Accept  json
// @Produce  json
// @Param   deposit body dto.CreateDepositRequest true "Deposit terms"
// @Success 201 {object} dto.DepositResponse
// @Failure 400 {object} map[string]string "Invalid terms"
// @Failure 404 {object} map[string]string "Payout account not found"
// @Security BearerAuth
// @Router /deposits [post]
func (h *depositHandler) createDeposit(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateDepositRequest
	if !bindJSON(c, logger, &req, "CreateDeposit") {
		return
	}
	actor, ok := requireActor(c, logger)
	if !ok {
		return
	}

	fd, err := h.depositService.CreateDeposit(c.Request.Context(), req, actor)
	if err != nil {
		respondError(c, logger.With(slog.String("customer_ref", req.CustomerRef)), err, "Failed to create deposit")
		return
	}

	logger.Info("Deposit created",
		slog.String("deposit_id", fd.DepositID),
		slog.String("maturity_amount", fd.MaturityAmount.String()),
		slog.Time("maturity_date", fd.MaturityDate))
	c.JSON(http.StatusCreated, dto.ToDepositResponse(fd, nil))
}

// getDeposit godoc
// @Summary Get a fixed deposit with its current valuation
// @Tags deposits
// @Produce  json
// @Param   depositID path string true "Deposit ID"
// @Param   asOf query string false "Valuation date (YYYY-MM-DD), defaults to today"
// @Success 200 {object} dto.DepositResponse
// @Failure 400 {object} map[string]string "Invalid date"
// @Failure 404 {object} map[string]string "Deposit not found"
// @Security BearerAuth
// @Router /deposits/{depositID} [get]
func (h *depositHandler) getDeposit(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	if _, ok := requireActor(c, logger); !ok {
		return
	}
	asOf, ok := dateQuery(c, "asOf", h.clock.Today())
	if !ok {
		return
	}

	depositID := c.Param("depositID")
	fd, err := h.depositService.GetDeposit(c.Request.Context(), depositID)
	if err != nil {
		respondError(c, logger, err, "Failed to retrieve deposit")
		return
	}
	valuation, err := h.depositService.ValueDeposit(c.Request.Context(), depositID, asOf)
	if err != nil {
		respondError(c, logger, err, "Failed to value deposit")
		return
	}
	c.JSON(http.StatusOK, dto.ToDepositResponse(fd, valuation))
}

// activateDeposit godoc
// @Summary Activate a draft deposit
// @Tags deposits
// @Produce  json
// @Param   depositID path string true "Deposit ID"
// @Success 200 {object} dto.DepositResponse
// @Failure 404 {object} map[string]string "Deposit not found"
// @Failure 409 {object} map[string]string "Transition not allowed"
// @Security BearerAuth
// @Router /deposits/{depositID}/activate [post]
func (h *depositHandler) activateDeposit(c *gin.Context) {
	h.transition(c, "activate", h.depositService.ActivateDeposit)
}

// matureDeposit godoc
// @Summary Mature an active deposit
// @Description Credits the maturity amount to the payout account
// @Tags deposits
// @Produce  json
// @Param   depositID path string true "Deposit ID"
// @Success 200 {object} dto.DepositPayoutResponse
// @Failure 404 {object} map[string]string "Deposit not found"
// @Failure 409 {object} map[string]string "Transition not allowed"
// @Security BearerAuth
// @Router /deposits/{depositID}/mature [post]
func (h *depositHandler) matureDeposit(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	actor, ok := requireActor(c, logger)
	if !ok {
		return
	}

	depositID := c.Param("depositID")
	logger = logger.With(slog.String("deposit_id", depositID))

	fd, payout, err := h.depositService.MatureDeposit(c.Request.Context(), depositID, actor)
	if err != nil {
		respondError(c, logger, err, "Failed to mature deposit")
		return
	}

	logger.Info("Deposit matured", slog.String("net", payout.Net.String()))
	c.JSON(http.StatusOK, dto.DepositPayoutResponse{
		Deposit: dto.ToDepositResponse(fd, nil),
		Payout:  *payout,
	})
}

// renewDeposit godoc
// @Summary Renew a matured deposit
// @Description Creates a new draft deposit whose principal is the maturity amount
// @Tags deposits
// @Produce  json
// @Param   depositID path string true "Deposit ID"
// @Success 201 {object} dto.DepositResponse
// @Failure 404 {object} map[string]string "Deposit not found"
// @Failure 409 {object} map[string]string "Deposit not matured"
// @Security BearerAuth
// @Router /deposits/{depositID}/renew [post]
func (h *depositHandler) renewDeposit(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	actor, ok := requireActor(c, logger)
	if !ok {
		return
	}

	depositID := c.Param("depositID")
	renewed, err := h.depositService.RenewDeposit(c.Request.Context(), depositID, actor)
	if err != nil {
		respondError(c, logger.With(slog.String("deposit_id", depositID)), err, "Failed to renew deposit")
		return
	}

	logger.Info("Deposit renewed", slog.String("deposit_id", depositID), slog.String("renewal_id", renewed.DepositID))
	c.JSON(http.StatusCreated, dto.ToDepositResponse(renewed, nil))
}

func (h *depositHandler) transition(c *gin.Context, action string, fn func(ctx context.Context, depositID string, actor string) (*domain.FixedDeposit, error)) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	actor, ok := requireActor(c, logger)
	if !ok {
		return
	}

	depositID := c.Param("depositID")
	logger = logger.With(slog.String("deposit_id", depositID), slog.String("action", action))

	fd, err := fn(c.Request.Context(), depositID, actor)
	if err != nil {
		respondError(c, logger, err, "Failed to "+action+" deposit")
		return
	}

	logger.Info("Deposit updated", slog.String("state", string(fd.State)))
	c.JSON(http.StatusOK, dto.ToDepositResponse(fd, nil))
}

// withdrawEarly godoc
// @Summary Withdraw a deposit before maturity
// @Description Pays out the requested amount (current value when omitted) less the early withdrawal penalty
// @Tags deposits
// @Accept  json
// @Produce  json
// @Param   depositID path string true "Deposit ID"
// @Param   request body dto.EarlyWithdrawalRequest false "Amount"
// @Success 200 {object} dto.DepositPayoutResponse
// @Failure 400 {object} map[string]string "Invalid amount"
// @Failure 404 {object} map[string]string "Deposit not found"
// @Failure 409 {object} map[string]string "Early withdrawal not allowed"
// @Security BearerAuth
// @Router /deposits/{depositID}/withdraw-early [post]
func (h *depositHandler) withdrawEarly(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.EarlyWithdrawalRequest
	if c.Request.ContentLength > 0 && !bindJSON(c, logger, &req, "WithdrawEarly") {
		return
	}
	actor, ok := requireActor(c, logger)
	if !ok {
		return
	}

	depositID := c.Param("depositID")
	logger = logger.With(slog.String("deposit_id", depositID))

	fd, payout, err := h.depositService.WithdrawEarly(c.Request.Context(), depositID, req.Amount, actor)
	if err != nil {
		respondError(c, logger, err, "Failed to withdraw deposit")
		return
	}

	logger.Info("Deposit withdrawn early",
		slog.String("gross", payout.Gross.String()),
		slog.String("penalty", payout.Penalty.String()),
		slog.String("net", payout.Net.String()))
	c.JSON(http.StatusOK, dto.DepositPayoutResponse{
		Deposit: dto.ToDepositResponse(fd, nil),
		Payout:  *payout,
	})
}
