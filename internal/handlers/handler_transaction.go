package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/SscSPs/core_banking_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/core_banking_ledger/internal/core/ports/services"
	"github.com/SscSPs/core_banking_ledger/internal/dto"
	"github.com/SscSPs/core_banking_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

type transactionHandler struct {
	transactionService portssvc.TransactionSvcFacade
}

// RegisterTransactionRoutes registers the posting state machine routes.
func RegisterTransactionRoutes(rg *gin.RouterGroup, transactionService portssvc.TransactionSvcFacade) {
	h := &transactionHandler{transactionService: transactionService}

	txns := rg.Group("/transactions")
	{
		txns.POST("", h.createTransaction)
		// Registered before /:transactionID so the static segment wins.
		txns.POST("/reconcile", h.reconcileTransactions)
		txns.GET("/:transactionID", h.getTransaction)
		txns.POST("/:transactionID/post", h.postTransaction)
		txns.POST("/:transactionID/reverse", h.reverseTransaction)
		txns.POST("/:transactionID/cancel", h.cancelTransaction)
	}
}

// createTransaction godoc
// @Summary Create a transaction
// @Description Creates a draft (or pending) transaction. Pass post=true to create and post in one step.
// @Tags transactions
// @Accept  json
// @Produce  json
// @Param   post query bool false "Post immediately"
// @Param   transaction body dto.CreateTransactionRequest true "Transaction details"
// @Success 201 {object} dto.TransactionResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 409 {object} map[string]string "Account cannot accept postings"
// @Failure 422 {object} map[string]string "Insufficient funds"
// @Failure 500 {object} map[string]string "Failed to create transaction"
// @Security BearerAuth
// @Router /transactions [post]
func (h *transactionHandler) createTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateTransactionRequest
	if !bindJSON(c, logger, &req, "CreateTransaction") {
		return
	}
	actor, ok := requireActor(c, logger)
	if !ok {
		return
	}

	postNow := c.Query("post") == "true"
	logger = logger.With(
		slog.String("transaction_type", string(req.TransactionType)),
		slog.String("account_id", req.AccountID),
		slog.Bool("post", postNow),
	)
	logger.Info("Received request to create transaction", slog.String("amount", req.Amount.String()))

	var (
		txn *domain.Transaction
		err error
	)
	if postNow {
		txn, err = h.transactionService.CreateAndPostTransaction(c.Request.Context(), req, actor)
	} else {
		txn, err = h.transactionService.CreateTransaction(c.Request.Context(), req, actor)
	}
	if err != nil {
		respondError(c, logger, err, "Failed to create transaction")
		return
	}

	logger.Info("Transaction created", slog.String("transaction_id", txn.TransactionID), slog.String("state", string(txn.State)))
	c.JSON(http.StatusCreated, dto.ToTransactionResponse(txn))
}

// getTransaction godoc
// @Summary Get a transaction by ID
// @Tags transactions
// @Produce  json
// @Param   transactionID path string true "Transaction ID"
// @Success 200 {object} dto.TransactionResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Transaction not found"
// @Failure 500 {object} map[string]string "Failed to retrieve transaction"
// @Security BearerAuth
// @Router /transactions/{transactionID} [get]
func (h *transactionHandler) getTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	if _, ok := requireActor(c, logger); !ok {
		return
	}

	txnID := c.Param("transactionID")
	txn, err := h.transactionService.GetTransaction(c.Request.Context(), txnID)
	if err != nil {
		respondError(c, logger.With(slog.String("transaction_id", txnID)), err, "Failed to retrieve transaction")
		return
	}
	c.JSON(http.StatusOK, dto.ToTransactionResponse(txn))
}

// postTransaction godoc
// @Summary Post a draft or pending transaction
// @Description Applies the signed amount to the account balances atomically
// @Tags transactions
// @Produce  json
// @Param   transactionID path string true "Transaction ID"
// @Success 200 {object} dto.TransactionResponse
// @Failure 404 {object} map[string]string "Transaction not found"
// @Failure 409 {object} map[string]string "Not postable in its current state"
// @Failure 422 {object} map[string]string "Insufficient funds"
// @Security BearerAuth
// @Router /transactions/{transactionID}/post [post]
func (h *transactionHandler) postTransaction(c *gin.Context) {
	h.transition(c, "post", http.StatusOK, h.transactionService.PostTransaction)
}

// reverseTransaction godoc
// @Summary Reverse a posted transaction
// @Description Posts a compensating transaction and returns it
// @Tags transactions
// @Produce  json
// @Param   transactionID path string true "Transaction ID"
// @Success 201 {object} dto.TransactionResponse
// @Failure 404 {object} map[string]string "Transaction not found"
// @Failure 409 {object} map[string]string "Already reversed or not posted"
// @Failure 422 {object} map[string]string "Insufficient funds for the reversal"
// @Security BearerAuth
// @Router /transactions/{transactionID}/reverse [post]
func (h *transactionHandler) reverseTransaction(c *gin.Context) {
	h.transition(c, "reverse", http.StatusCreated, h.transactionService.ReverseTransaction)
}

// cancelTransaction godoc
// @Summary Cancel a draft or pending transaction
// @Tags transactions
// @Produce  json
// @Param   transactionID path string true "Transaction ID"
// @Success 200 {object} dto.TransactionResponse
// @Failure 404 {object} map[string]string "Transaction not found"
// @Failure 409 {object} map[string]string "Not cancellable in its current state"
// @Security BearerAuth
// @Router /transactions/{transactionID}/cancel [post]
func (h *transactionHandler) cancelTransaction(c *gin.Context) {
	h.transition(c, "cancel", http.StatusOK, h.transactionService.CancelTransaction)
}

func (h *transactionHandler) transition(c *gin.Context, action string, status int, fn func(ctx context.Context, transactionID string, actor string) (*domain.Transaction, error)) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	actor, ok := requireActor(c, logger)
	if !ok {
		return
	}

	txnID := c.Param("transactionID")
	logger = logger.With(slog.String("transaction_id", txnID), slog.String("action", action))

	txn, err := fn(c.Request.Context(), txnID, actor)
	if err != nil {
		respondError(c, logger, err, "Failed to "+action+" transaction")
		return
	}

	logger.Info("Transaction updated", slog.String("result_id", txn.TransactionID), slog.String("state", string(txn.State)))
	c.JSON(status, dto.ToTransactionResponse(txn))
}

// reconcileTransactions godoc
// @Summary Reconcile posted transactions
// @Description Marks every listed transaction reconciled, or none of them
// @Tags transactions
// @Accept  json
// @Produce  json
// @Param   request body dto.ReconcileRequest true "Transaction IDs"
// @Success 200 {array} dto.TransactionResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 404 {object} map[string]string "Transaction not found"
// @Failure 409 {object} map[string]string "A transaction is not posted"
// @Security BearerAuth
// @Router /transactions/reconcile [post]
func (h *transactionHandler) reconcileTransactions(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.ReconcileRequest
	if !bindJSON(c, logger, &req, "ReconcileTransactions") {
		return
	}
	actor, ok := requireActor(c, logger)
	if !ok {
		return
	}

	txns, err := h.transactionService.ReconcileTransactions(c.Request.Context(), req.TransactionIDs, actor)
	if err != nil {
		respondError(c, logger, err, "Failed to reconcile transactions")
		return
	}

	logger.Info("Transactions reconciled", slog.Int("count", len(txns)))
	c.JSON(http.StatusOK, dto.ToTransactionResponses(txns))
}
