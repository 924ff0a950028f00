package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/SscSPs/core_banking_ledger/internal/core/domain"
	"github.com/SscSPs/core_banking_ledger/internal/core/ports"
	portssvc "github.com/SscSPs/core_banking_ledger/internal/core/ports/services"
	"github.com/SscSPs/core_banking_ledger/internal/dto"
	"github.com/SscSPs/core_banking_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

type loanHandler struct {
	loanService portssvc.LoanSvcFacade
	clock       ports.Clock
}

// RegisterLoanRoutes registers the loan lifecycle routes.
func RegisterLoanRoutes(rg *gin.RouterGroup, loanService portssvc.LoanSvcFacade, clock ports.Clock) {
	h := &loanHandler{loanService: loanService, clock: clock}

	loans := rg.Group("/loans")
	{
		loans.POST("", h.createLoan)
		loans.GET("/:loanID", h.getLoan)
		loans.POST("/:loanID/submit", h.submitLoan)
		loans.POST("/:loanID/approve", h.approveLoan)
		loans.POST("/:loanID/reject", h.rejectLoan)
		loans.POST("/:loanID/disburse", h.disburseLoan)
		loans.POST("/:loanID/default", h.markDefault)
		loans.POST("/:loanID/schedule", h.generateSchedule)
		loans.POST("/:loanID/payments/:paymentNumber", h.recordPayment)
	}
}

// createLoan godoc
// @Summary Create a loan application
// @Description The EMI is computed from principal, rate and term at creation
// @Tags loans
// @Accept  json
// @Produce  json
// @Param   loan body dto.CreateLoanRequest true "Loan terms"
// @Success 201 {object} dto.LoanResponse
// @Failure 400 {object} map[string]string "Invalid terms"
// @Security BearerAuth
// @Router /loans [post]
func (h *loanHandler) createLoan(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateLoanRequest
	if !bindJSON(c, logger, &req, "CreateLoan") {
		return
	}
	actor, ok := requireActor(c, logger)
	if !ok {
		return
	}

	loan, err := h.loanService.CreateLoan(c.Request.Context(), req, actor)
	if err != nil {
		respondError(c, logger.With(slog.String("customer_ref", req.CustomerRef)), err, "Failed to create loan")
		return
	}

	logger.Info("Loan created", slog.String("loan_id", loan.LoanID), slog.String("emi", loan.EMIAmount.String()))
	c.JSON(http.StatusCreated, dto.ToLoanResponse(loan, nil))
}

// getLoan godoc
// @Summary Get a loan with its schedule and repayment status
// @Tags loans
// @Produce  json
// @Param   loanID path string true "Loan ID"
// @Param   asOf query string false "Status date (YYYY-MM-DD), defaults to today"
// @Success 200 {object} dto.LoanResponse
// @Failure 400 {object} map[string]string "Invalid date"
// @Failure 404 {object} map[string]string "Loan not found"
// @Security BearerAuth
// @Router /loans/{loanID} [get]
func (h *loanHandler) getLoan(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	if _, ok := requireActor(c, logger); !ok {
		return
	}
	asOf, ok := dateQuery(c, "asOf", h.clock.Today())
	if !ok {
		return
	}

	loanID := c.Param("loanID")
	loan, err := h.loanService.GetLoan(c.Request.Context(), loanID)
	if err != nil {
		respondError(c, logger, err, "Failed to retrieve loan")
		return
	}
	status, err := h.loanService.GetLoanStatus(c.Request.Context(), loanID, asOf)
	if err != nil {
		respondError(c, logger, err, "Failed to compute loan status")
		return
	}
	c.JSON(http.StatusOK, dto.ToLoanResponse(loan, status))
}

// submitLoan godoc
// @Summary Submit a draft loan
// @Tags loans
// @Produce  json
// @Param   loanID path string true "Loan ID"
// @Success 200 {object} dto.LoanResponse
// @Failure 404 {object} map[string]string "Loan not found"
// @Failure 409 {object} map[string]string "Transition not allowed"
// @Security BearerAuth
// @Router /loans/{loanID}/submit [post]
func (h *loanHandler) submitLoan(c *gin.Context) {
	h.transition(c, "submit", h.loanService.SubmitLoan)
}

// approveLoan godoc
// @Summary Approve a submitted loan
// @Tags loans
// @Produce  json
// @Param   loanID path string true "Loan ID"
// @Success 200 {object} dto.LoanResponse
// @Failure 404 {object} map[string]string "Loan not found"
// @Failure 409 {object} map[string]string "Transition not allowed"
// @Security BearerAuth
// @Router /loans/{loanID}/approve [post]
func (h *loanHandler) approveLoan(c *gin.Context) {
	h.transition(c, "approve", h.loanService.ApproveLoan)
}

// rejectLoan godoc
// @Summary Reject a submitted loan
// @Tags loans
// @Produce  json
// @Param   loanID path string true "Loan ID"
// @Success 200 {object} dto.LoanResponse
// @Failure 404 {object} map[string]string "Loan not found"
// @Failure 409 {object} map[string]string "Transition not allowed"
// @Security BearerAuth
// @Router /loans/{loanID}/reject [post]
func (h *loanHandler) rejectLoan(c *gin.Context) {
	h.transition(c, "reject", h.loanService.RejectLoan)
}

// disburseLoan godoc
// @Summary Disburse an approved loan
// @Description Stamps the disbursement date and generates the repayment schedule
// @Tags loans
// @Produce  json
// @Param   loanID path string true "Loan ID"
// @Success 200 {object} dto.LoanResponse
// @Failure 404 {object} map[string]string "Loan not found"
// @Failure 409 {object} map[string]string "Transition not allowed"
// @Security BearerAuth
// @Router /loans/{loanID}/disburse [post]
func (h *loanHandler) disburseLoan(c *gin.Context) {
	h.transition(c, "disburse", h.loanService.DisburseLoan)
}

// markDefault godoc
// @Summary Mark a disbursed loan as defaulted
// @Tags loans
// @Produce  json
// @Param   loanID path string true "Loan ID"
// @Success 200 {object} dto.LoanResponse
// @Failure 404 {object} map[string]string "Loan not found"
// @Failure 409 {object} map[string]string "Transition not allowed"
// @Security BearerAuth
// @Router /loans/{loanID}/default [post]
func (h *loanHandler) markDefault(c *gin.Context) {
	h.transition(c, "default", h.loanService.MarkDefault)
}

// generateSchedule godoc
// @Summary Generate the repayment schedule
// @Tags loans
// @Produce  json
// @Param   loanID path string true "Loan ID"
// @Success 200 {object} dto.LoanResponse
// @Failure 404 {object} map[string]string "Loan not found"
// @Failure 409 {object} map[string]string "Schedule already exists"
// @Failure 422 {object} map[string]string "Loan terms incomplete"
// @Security BearerAuth
// @Router /loans/{loanID}/schedule [post]
func (h *loanHandler) generateSchedule(c *gin.Context) {
	h.transition(c, "schedule", h.loanService.GenerateSchedule)
}

func (h *loanHandler) transition(c *gin.Context, action string, fn func(ctx context.Context, loanID string, actor string) (*domain.Loan, error)) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	actor, ok := requireActor(c, logger)
	if !ok {
		return
	}

	loanID := c.Param("loanID")
	logger = logger.With(slog.String("loan_id", loanID), slog.String("action", action))

	loan, err := fn(c.Request.Context(), loanID, actor)
	if err != nil {
		respondError(c, logger, err, "Failed to "+action+" loan")
		return
	}

	logger.Info("Loan updated", slog.String("state", string(loan.State)))
	c.JSON(http.StatusOK, dto.ToLoanResponse(loan, nil))
}

// recordPayment godoc
// @Summary Record a repayment against one installment
// @Description Debits the repayment account and applies the amount to the installment
// @Tags loans
// @Accept  json
// @Produce  json
// @Param   loanID path string true "Loan ID"
// @Param   paymentNumber path int true "Installment number"
// @Param   payment body dto.RecordLoanPaymentRequest true "Amount"
// @Success 200 {object} dto.LoanResponse
// @Failure 400 {object} map[string]string "Invalid amount"
// @Failure 404 {object} map[string]string "Loan or installment not found"
// @Failure 409 {object} map[string]string "Loan not in repayment"
// @Failure 422 {object} map[string]string "Insufficient funds"
// @Security BearerAuth
// @Router /loans/{loanID}/payments/{paymentNumber} [post]
func (h *loanHandler) recordPayment(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	paymentNumber, err := strconv.Atoi(c.Param("paymentNumber"))
	if err != nil || paymentNumber < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payment number"})
		return
	}
	var req dto.RecordLoanPaymentRequest
	if !bindJSON(c, logger, &req, "RecordLoanPayment") {
		return
	}
	actor, ok := requireActor(c, logger)
	if !ok {
		return
	}

	loanID := c.Param("loanID")
	logger = logger.With(slog.String("loan_id", loanID), slog.Int("payment_number", paymentNumber))

	loan, err := h.loanService.RecordPayment(c.Request.Context(), loanID, paymentNumber, req.Amount, actor)
	if err != nil {
		respondError(c, logger, err, "Failed to record loan payment")
		return
	}

	logger.Info("Loan payment recorded", slog.String("amount", req.Amount.String()), slog.String("state", string(loan.State)))
	status := loan.Status(h.clock.Today())
	c.JSON(http.StatusOK, dto.ToLoanResponse(loan, &status))
}
