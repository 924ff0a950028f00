package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/SscSPs/core_banking_ledger/internal/core/ports"
	portssvc "github.com/SscSPs/core_banking_ledger/internal/core/ports/services"
	"github.com/SscSPs/core_banking_ledger/internal/dto"
	"github.com/SscSPs/core_banking_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

type instructionHandler struct {
	schedulerService portssvc.SchedulerSvcFacade
	clock            ports.Clock
}

// RegisterInstructionRoutes registers standing order routes and the manual
// scheduler trigger.
func RegisterInstructionRoutes(rg *gin.RouterGroup, schedulerService portssvc.SchedulerSvcFacade, clock ports.Clock) {
	h := &instructionHandler{schedulerService: schedulerService, clock: clock}

	instructions := rg.Group("/instructions")
	{
		instructions.POST("", h.createInstruction)
		instructions.GET("/:instructionID", h.getInstruction)
		instructions.POST("/:instructionID/activate", h.activateInstruction)
		instructions.POST("/:instructionID/cancel", h.cancelInstruction)
	}
	rg.POST("/scheduler/run", h.runScheduler)
}

// createInstruction godoc
// @Summary Create a standing order
// @Tags instructions
// @Accept  json
// @Produce  json
// @Param   instruction body dto.CreateInstructionRequest true "Instruction details"
// @Success 201 {object} dto.InstructionResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 404 {object} map[string]string "Account not found"
// @Security BearerAuth
// @Router /instructions [post]
func (h *instructionHandler) createInstruction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateInstructionRequest
	if !bindJSON(c, logger, &req, "CreateInstruction") {
		return
	}
	actor, ok := requireActor(c, logger)
	if !ok {
		return
	}

	instr, err := h.schedulerService.CreateInstruction(c.Request.Context(), req, actor)
	if err != nil {
		respondError(c, logger.With(slog.String("account_id", req.AccountID)), err, "Failed to create instruction")
		return
	}

	logger.Info("Instruction created", slog.String("instruction_id", instr.InstructionID), slog.String("frequency", string(instr.Frequency)))
	c.JSON(http.StatusCreated, dto.ToInstructionResponse(instr))
}

// getInstruction godoc
// @Summary Get a standing order
// @Tags instructions
// @Produce  json
// @Param   instructionID path string true "Instruction ID"
// @Success 200 {object} dto.InstructionResponse
// @Failure 404 {object} map[string]string "Instruction not found"
// @Security BearerAuth
// @Router /instructions/{instructionID} [get]
func (h *instructionHandler) getInstruction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	if _, ok := requireActor(c, logger); !ok {
		return
	}

	instr, err := h.schedulerService.GetInstruction(c.Request.Context(), c.Param("instructionID"))
	if err != nil {
		respondError(c, logger, err, "Failed to retrieve instruction")
		return
	}
	c.JSON(http.StatusOK, dto.ToInstructionResponse(instr))
}

// activateInstruction godoc
// @Summary Activate a draft standing order
// @Tags instructions
// @Produce  json
// @Param   instructionID path string true "Instruction ID"
// @Success 200 {object} dto.InstructionResponse
// @Failure 404 {object} map[string]string "Instruction not found"
// @Failure 409 {object} map[string]string "Not in draft"
// @Security BearerAuth
// @Router /instructions/{instructionID}/activate [post]
func (h *instructionHandler) activateInstruction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	actor, ok := requireActor(c, logger)
	if !ok {
		return
	}

	instr, err := h.schedulerService.ActivateInstruction(c.Request.Context(), c.Param("instructionID"), actor)
	if err != nil {
		respondError(c, logger, err, "Failed to activate instruction")
		return
	}
	c.JSON(http.StatusOK, dto.ToInstructionResponse(instr))
}

// cancelInstruction godoc
// @Summary Cancel a standing order
// @Tags instructions
// @Produce  json
// @Param   instructionID path string true "Instruction ID"
// @Success 200 {object} dto.InstructionResponse
// @Failure 404 {object} map[string]string "Instruction not found"
// @Failure 409 {object} map[string]string "Already expired or cancelled"
// @Security BearerAuth
// @Router /instructions/{instructionID}/cancel [post]
func (h *instructionHandler) cancelInstruction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	actor, ok := requireActor(c, logger)
	if !ok {
		return
	}

	instr, err := h.schedulerService.CancelInstruction(c.Request.Context(), c.Param("instructionID"), actor)
	if err != nil {
		respondError(c, logger, err, "Failed to cancel instruction")
		return
	}
	c.JSON(http.StatusOK, dto.ToInstructionResponse(instr))
}

// runScheduler godoc
// @Summary Run due standing orders
// @Description Executes every instruction due on runDate (today when omitted). Failures are reported per instruction.
// @Tags scheduler
// @Accept  json
// @Produce  json
// @Param   request body dto.SchedulerRunRequest false "Run date"
// @Success 200 {object} domain.SchedulerRunResult
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 500 {object} map[string]string "Scheduler run failed"
// @Security BearerAuth
// @Router /scheduler/run [post]
func (h *instructionHandler) runScheduler(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	if _, ok := requireActor(c, logger); !ok {
		return
	}

	var req dto.SchedulerRunRequest
	if c.Request.ContentLength > 0 && !bindJSON(c, logger, &req, "RunScheduler") {
		return
	}
	runDate := h.clock.Today()
	if req.RunDate != nil {
		runDate = req.RunDate.UTC().Truncate(24 * time.Hour)
	}

	logger = logger.With(slog.Time("run_date", runDate))
	logger.Info("Manual scheduler run requested")

	result, err := h.schedulerService.RunDue(c.Request.Context(), runDate)
	if err != nil {
		respondError(c, logger, err, "Scheduler run failed")
		return
	}

	logger.Info("Scheduler run finished", slog.Int("executed", result.Executed), slog.Int("failed", result.Failed))
	c.JSON(http.StatusOK, result)
}
