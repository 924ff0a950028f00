package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/core_banking_ledger/internal/core/ports/services"
	"github.com/SscSPs/core_banking_ledger/internal/dto"
	"github.com/SscSPs/core_banking_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

type scheduledHandler struct {
	schedulerService portssvc.SchedulerSvcFacade
}

// RegisterScheduledRoutes registers one-shot scheduled transaction routes.
func RegisterScheduledRoutes(rg *gin.RouterGroup, schedulerService portssvc.SchedulerSvcFacade) {
	h := &scheduledHandler{schedulerService: schedulerService}

	scheduled := rg.Group("/scheduled-transactions")
	{
		scheduled.POST("", h.createScheduled)
		scheduled.GET("/:scheduledID", h.getScheduled)
		scheduled.POST("/:scheduledID/execute", h.executeScheduled)
		scheduled.POST("/:scheduledID/cancel", h.cancelScheduled)
	}
}

// createScheduled godoc
// @Summary Schedule a transaction
// @Description Stores a posting to run once on scheduledDate. Entries with autoProcess=false only run through the execute route.
// @Tags scheduled-transactions
// @Accept  json
// @Produce  json
// @Param   scheduled body dto.CreateScheduledTransactionRequest true "Scheduled transaction details"
// @Success 201 {object} dto.ScheduledTransactionResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 404 {object} map[string]string "Account not found"
// @Security BearerAuth
// @Router /scheduled-transactions [post]
func (h *scheduledHandler) createScheduled(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateScheduledTransactionRequest
	if !bindJSON(c, logger, &req, "CreateScheduledTransaction") {
		return
	}
	actor, ok := requireActor(c, logger)
	if !ok {
		return
	}

	st, err := h.schedulerService.CreateScheduledTransaction(c.Request.Context(), req, actor)
	if err != nil {
		respondError(c, logger.With(slog.String("account_id", req.AccountID)), err, "Failed to schedule transaction")
		return
	}

	logger.Info("Scheduled transaction created", slog.String("scheduled_id", st.ScheduledID))
	c.JSON(http.StatusCreated, dto.ToScheduledTransactionResponse(st))
}

// getScheduled godoc
// @Summary Get a scheduled transaction
// @Tags scheduled-transactions
// @Produce  json
// @Param   scheduledID path string true "Scheduled transaction ID"
// @Success 200 {object} dto.ScheduledTransactionResponse
// @Failure 404 {object} map[string]string "Scheduled transaction not found"
// @Security BearerAuth
// @Router /scheduled-transactions/{scheduledID} [get]
func (h *scheduledHandler) getScheduled(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	if _, ok := requireActor(c, logger); !ok {
		return
	}

	st, err := h.schedulerService.GetScheduledTransaction(c.Request.Context(), c.Param("scheduledID"))
	if err != nil {
		respondError(c, logger, err, "Failed to retrieve scheduled transaction")
		return
	}
	c.JSON(http.StatusOK, dto.ToScheduledTransactionResponse(st))
}

// executeScheduled godoc
// @Summary Execute a scheduled transaction now
// @Tags scheduled-transactions
// @Produce  json
// @Param   scheduledID path string true "Scheduled transaction ID"
// @Success 200 {object} dto.ScheduledTransactionResponse
// @Failure 404 {object} map[string]string "Scheduled transaction not found"
// @Failure 409 {object} map[string]string "Already processed, failed or cancelled"
// @Failure 422 {object} map[string]string "Posting rejected"
// @Security BearerAuth
// @Router /scheduled-transactions/{scheduledID}/execute [post]
func (h *scheduledHandler) executeScheduled(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	actor, ok := requireActor(c, logger)
	if !ok {
		return
	}

	scheduledID := c.Param("scheduledID")
	st, err := h.schedulerService.ExecuteScheduledTransaction(c.Request.Context(), scheduledID, actor)
	if err != nil {
		respondError(c, logger.With(slog.String("scheduled_id", scheduledID)), err, "Failed to execute scheduled transaction")
		return
	}

	logger.Info("Scheduled transaction executed", slog.String("scheduled_id", st.ScheduledID), slog.String("transaction_id", *st.TransactionID))
	c.JSON(http.StatusOK, dto.ToScheduledTransactionResponse(st))
}

// cancelScheduled godoc
// @Summary Cancel a scheduled transaction
// @Tags scheduled-transactions
// @Produce  json
// @Param   scheduledID path string true "Scheduled transaction ID"
// @Success 200 {object} dto.ScheduledTransactionResponse
// @Failure 404 {object} map[string]string "Scheduled transaction not found"
// @Failure 409 {object} map[string]string "No longer scheduled"
// @Security BearerAuth
// @Router /scheduled-transactions/{scheduledID}/cancel [post]
func (h *scheduledHandler) cancelScheduled(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	actor, ok := requireActor(c, logger)
	if !ok {
		return
	}

	st, err := h.schedulerService.CancelScheduledTransaction(c.Request.Context(), c.Param("scheduledID"), actor)
	if err != nil {
		respondError(c, logger, err, "Failed to cancel scheduled transaction")
		return
	}
	c.JSON(http.StatusOK, dto.ToScheduledTransactionResponse(st))
}
