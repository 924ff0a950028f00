package handlers_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/SscSPs/core_banking_ledger/internal/apperrors"
	"github.com/SscSPs/core_banking_ledger/internal/core/domain"
	"github.com/SscSPs/core_banking_ledger/internal/dto"
	"github.com/SscSPs/core_banking_ledger/internal/handlers"
	"github.com/SscSPs/core_banking_ledger/internal/middleware"
	"github.com/SscSPs/core_banking_ledger/internal/platform/clock"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var schedulerToday = time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)

func newInstructionRouter(t *testing.T) (*gin.Engine, *MockSchedulerService, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	svc := new(MockSchedulerService)
	v1 := r.Group("/api/v1", middleware.AuthMiddleware(testJWTSecret, testIssuer))
	handlers.RegisterInstructionRoutes(v1, svc, clock.NewFixed(schedulerToday.Add(2*time.Hour)))

	token, err := generateTestToken("ops-2")
	require.NoError(t, err)
	return r, svc, token
}

func TestCreateInstruction(t *testing.T) {
	r, svc, token := newInstructionRouter(t)
	dest := "acc-b"
	svc.On("CreateInstruction", mock.Anything, mock.MatchedBy(func(req dto.CreateInstructionRequest) bool {
		return req.AccountID == "acc-a" && req.Frequency == domain.FrequencyMonthly && req.Activate
	}), "ops-2").Return(&domain.RecurringInstruction{
		InstructionID:        "so-1",
		Reference:            "SO000001",
		AccountID:            "acc-a",
		DestinationAccountID: &dest,
		BeneficiaryName:      "Landlord",
		Amount:               decimal.NewFromInt(900),
		Frequency:            domain.FrequencyMonthly,
		NextExecutionDate:    schedulerToday,
		State:                domain.InstructionActive,
	}, nil).Once()

	w := serveJSON(r, token, http.MethodPost, "/api/v1/instructions", map[string]any{
		"accountID":            "acc-a",
		"destinationAccountID": dest,
		"beneficiaryName":      "Landlord",
		"amount":               "900",
		"frequency":            "monthly",
		"startDate":            "2024-01-31T00:00:00Z",
		"activate":             true,
	})

	require.Equal(t, http.StatusCreated, w.Code)
	var resp dto.InstructionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, domain.InstructionActive, resp.State)
	svc.AssertExpectations(t)
}

func TestCreateInstruction_UnknownFrequency(t *testing.T) {
	r, svc, token := newInstructionRouter(t)

	w := serveJSON(r, token, http.MethodPost, "/api/v1/instructions", map[string]any{
		"accountID":       "acc-a",
		"beneficiaryName": "Landlord",
		"amount":          "900",
		"frequency":       "fortnightly",
		"startDate":       "2024-01-31T00:00:00Z",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "CreateInstruction")
}

func TestCancelInstruction_AlreadyExpired(t *testing.T) {
	r, svc, token := newInstructionRouter(t)
	svc.On("CancelInstruction", mock.Anything, "so-1", "ops-2").Return(nil, apperrors.ErrInvalidState).Once()

	w := serveJSON(r, token, http.MethodPost, "/api/v1/instructions/so-1/cancel", nil)

	assert.Equal(t, http.StatusConflict, w.Code)
	svc.AssertExpectations(t)
}

func TestRunScheduler(t *testing.T) {
	t.Run("defaults to today", func(t *testing.T) {
		r, svc, token := newInstructionRouter(t)
		svc.On("RunDue", mock.Anything, schedulerToday).Return(&domain.SchedulerRunResult{
			RunDate:  schedulerToday,
			Executed: 2,
			Rearmed:  1,
			Expired:  1,
			Failed:   1,
			Errors:   []domain.InstructionError{{InstructionID: "so-3", Reference: "SO000003", Error: "insufficient funds"}},
		}, nil).Once()

		w := serveJSON(r, token, http.MethodPost, "/api/v1/scheduler/run", nil)

		require.Equal(t, http.StatusOK, w.Code)
		var resp domain.SchedulerRunResult
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, 2, resp.Executed)
		assert.Equal(t, 1, resp.Failed)
		require.Len(t, resp.Errors, 1)
		assert.Equal(t, "so-3", resp.Errors[0].InstructionID)
		svc.AssertExpectations(t)
	})

	t.Run("explicit run date is truncated", func(t *testing.T) {
		r, svc, token := newInstructionRouter(t)
		runDate := time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)
		svc.On("RunDue", mock.Anything, runDate).Return(&domain.SchedulerRunResult{RunDate: runDate}, nil).Once()

		w := serveJSON(r, token, http.MethodPost, "/api/v1/scheduler/run", map[string]string{"runDate": "2024-02-29T17:45:00Z"})

		assert.Equal(t, http.StatusOK, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("store failure", func(t *testing.T) {
		r, svc, token := newInstructionRouter(t)
		svc.On("RunDue", mock.Anything, schedulerToday).Return(nil, errors.New("connection refused")).Once()

		w := serveJSON(r, token, http.MethodPost, "/api/v1/scheduler/run", nil)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "connection refused")
		svc.AssertExpectations(t)
	})
}
