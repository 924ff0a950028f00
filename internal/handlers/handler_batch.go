package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/core_banking_ledger/internal/core/ports/services"
	"github.com/SscSPs/core_banking_ledger/internal/dto"
	"github.com/SscSPs/core_banking_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// maxImportSize caps an uploaded CSV file.
const maxImportSize = 10 << 20

type batchHandler struct {
	batchService portssvc.BatchSvcFacade
}

// RegisterBatchRoutes registers bulk processing routes.
func RegisterBatchRoutes(rg *gin.RouterGroup, batchService portssvc.BatchSvcFacade) {
	h := &batchHandler{batchService: batchService}

	batches := rg.Group("/batches")
	{
		batches.POST("", h.createBatch)
		batches.POST("/import", h.importBatch)
		batches.GET("/:batchID", h.getBatch)
		batches.POST("/:batchID/process", h.processBatch)
		batches.POST("/:batchID/cancel", h.cancelBatch)
	}
}

// createBatch godoc
// @Summary Create a batch from JSON rows
// @Description Validates every row up front. The whole batch is rejected when any row is invalid.
// @Tags batches
// @Accept  json
// @Produce  json
// @Param   batch body dto.CreateBatchRequest true "Batch rows"
// @Success 201 {object} dto.BatchResponse
// @Failure 400 {object} map[string]string "Invalid row"
// @Failure 404 {object} map[string]string "Unknown account on a row"
// @Security BearerAuth
// @Router /batches [post]
func (h *batchHandler) createBatch(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateBatchRequest
	if !bindJSON(c, logger, &req, "CreateBatch") {
		return
	}
	actor, ok := requireActor(c, logger)
	if !ok {
		return
	}

	logger = logger.With(slog.String("batch_kind", string(req.Kind)), slog.Int("rows", len(req.Rows)))
	batch, err := h.batchService.CreateBatch(c.Request.Context(), req, actor)
	if err != nil {
		respondError(c, logger, err, "Failed to create batch")
		return
	}

	logger.Info("Batch created", slog.String("batch_id", batch.BatchID), slog.String("total", batch.TotalAmount.String()))
	c.JSON(http.StatusCreated, dto.ToBatchResponse(batch))
}

// importBatch godoc
// @Summary Import a batch from CSV
// @Description Columns: account_number, amount, reference, destination_account, description. Row 1 is the header.
// @Tags batches
// @Accept  multipart/form-data
// @Produce  json
// @Param   kind query string true "Batch kind" Enums(transfer, deposit, withdrawal, payment, salary)
// @Param   currencyCode query string true "ISO currency code"
// @Param   description query string false "Batch description"
// @Param   file formData file true "CSV file"
// @Success 201 {object} dto.BatchResponse
// @Failure 400 {object} map[string]string "Invalid file or row"
// @Failure 404 {object} map[string]string "Unknown account on a row"
// @Security BearerAuth
// @Router /batches/import [post]
func (h *batchHandler) importBatch(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.ImportBatchParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query params for ImportBatch", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}
	actor, ok := requireActor(c, logger)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "CSV file is required in form field 'file'"})
		return
	}
	if fileHeader.Size > maxImportSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "CSV file too large"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		respondError(c, logger, err, "Failed to read uploaded file")
		return
	}
	defer file.Close()

	logger = logger.With(slog.String("batch_kind", string(params.Kind)), slog.String("file_name", fileHeader.Filename))
	batch, err := h.batchService.ImportBatchCSV(c.Request.Context(), params, file, actor)
	if err != nil {
		respondError(c, logger, err, "Failed to import batch")
		return
	}

	logger.Info("Batch imported", slog.String("batch_id", batch.BatchID), slog.Int("lines", batch.TotalLines))
	c.JSON(http.StatusCreated, dto.ToBatchResponse(batch))
}

// getBatch godoc
// @Summary Get a batch with its lines
// @Tags batches
// @Produce  json
// @Param   batchID path string true "Batch ID"
// @Success 200 {object} dto.BatchResponse
// @Failure 404 {object} map[string]string "Batch not found"
// @Security BearerAuth
// @Router /batches/{batchID} [get]
func (h *batchHandler) getBatch(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	if _, ok := requireActor(c, logger); !ok {
		return
	}

	batch, err := h.batchService.GetBatch(c.Request.Context(), c.Param("batchID"))
	if err != nil {
		respondError(c, logger, err, "Failed to retrieve batch")
		return
	}
	c.JSON(http.StatusOK, dto.ToBatchResponse(batch))
}

// processBatch godoc
// @Summary Process a validated batch
// @Description Posts each pending line in its own unit of work. Line failures are recorded on the line.
// @Tags batches
// @Produce  json
// @Param   batchID path string true "Batch ID"
// @Success 200 {object} dto.BatchResponse
// @Failure 404 {object} map[string]string "Batch not found"
// @Failure 409 {object} map[string]string "Batch not processable"
// @Security BearerAuth
// @Router /batches/{batchID}/process [post]
func (h *batchHandler) processBatch(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	actor, ok := requireActor(c, logger)
	if !ok {
		return
	}

	batchID := c.Param("batchID")
	logger = logger.With(slog.String("batch_id", batchID))
	batch, err := h.batchService.ProcessBatch(c.Request.Context(), batchID, actor)
	if err != nil {
		respondError(c, logger, err, "Failed to process batch")
		return
	}

	logger.Info("Batch processed",
		slog.String("state", string(batch.State)),
		slog.Int("succeeded", batch.SuccessCount),
		slog.Int("failed", batch.FailedCount))
	c.JSON(http.StatusOK, dto.ToBatchResponse(batch))
}

// cancelBatch godoc
// @Summary Cancel a batch before processing
// @Tags batches
// @Produce  json
// @Param   batchID path string true "Batch ID"
// @Success 200 {object} dto.BatchResponse
// @Failure 404 {object} map[string]string "Batch not found"
// @Failure 409 {object} map[string]string "Batch already processing or done"
// @Security BearerAuth
// @Router /batches/{batchID}/cancel [post]
func (h *batchHandler) cancelBatch(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	actor, ok := requireActor(c, logger)
	if !ok {
		return
	}

	batch, err := h.batchService.CancelBatch(c.Request.Context(), c.Param("batchID"), actor)
	if err != nil {
		respondError(c, logger, err, "Failed to cancel batch")
		return
	}
	c.JSON(http.StatusOK, dto.ToBatchResponse(batch))
}
