package handlers_test

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/SscSPs/core_banking_ledger/internal/apperrors"
	"github.com/SscSPs/core_banking_ledger/internal/core/domain"
	"github.com/SscSPs/core_banking_ledger/internal/dto"
	"github.com/SscSPs/core_banking_ledger/internal/handlers"
	"github.com/SscSPs/core_banking_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newBatchRouter(t *testing.T) (*gin.Engine, *MockBatchService, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	svc := new(MockBatchService)
	v1 := r.Group("/api/v1", middleware.AuthMiddleware(testJWTSecret, testIssuer))
	handlers.RegisterBatchRoutes(v1, svc)

	token, err := generateTestToken("ops-1")
	require.NoError(t, err)
	return r, svc, token
}

func TestImportBatch_ForwardsFileAndParams(t *testing.T) {
	r, svc, token := newBatchRouter(t)
	csvContent := "account_number,amount,reference\nACC000001,100.00,SAL-1\nACC000002,250.00,SAL-2\n"

	svc.On("ImportBatchCSV", mock.Anything,
		dto.ImportBatchParams{Kind: domain.BatchSalary, CurrencyCode: "USD", Description: "March"},
		csvContent,
		"ops-1",
	).Return(&domain.Batch{
		BatchID:     "b-1",
		Kind:        domain.BatchSalary,
		State:       domain.BatchValidated,
		TotalLines:  2,
		TotalAmount: decimal.NewFromInt(350),
	}, nil).Once()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "salaries.csv")
	require.NoError(t, err)
	_, _ = part.Write([]byte(csvContent))
	require.NoError(t, mw.Close())

	req, _ := http.NewRequest(http.MethodPost, "/api/v1/batches/import?kind=salary&currencyCode=USD&description=March", &body)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"state":"validated"`)
	svc.AssertExpectations(t)
}

func TestImportBatch_MissingFile(t *testing.T) {
	r, svc, token := newBatchRouter(t)

	w := serveJSON(r, token, http.MethodPost, "/api/v1/batches/import?kind=deposit&currencyCode=USD", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "ImportBatchCSV")
}

func TestCreateBatch_RowErrorIsBadRequest(t *testing.T) {
	r, svc, token := newBatchRouter(t)
	rowErr := &apperrors.RowError{Row: 2, Fields: []string{"reference"}, Err: apperrors.ErrMissingField}
	svc.On("CreateBatch", mock.Anything, mock.Anything, "ops-1").Return(nil, fmt.Errorf("validate rows: %w", rowErr)).Once()

	w := serveJSON(r, token, http.MethodPost, "/api/v1/batches", map[string]any{
		"kind":         "deposit",
		"currencyCode": "USD",
		"rows": []map[string]string{
			{"account": "ACC000001", "amount": "10", "reference": "R1"},
			{"account": "ACC000002", "amount": "10"},
		},
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "row 2")
	svc.AssertExpectations(t)
}

func TestProcessBatch_ReturnsCounts(t *testing.T) {
	r, svc, token := newBatchRouter(t)
	svc.On("ProcessBatch", mock.Anything, "b-1", "ops-1").Return(&domain.Batch{
		BatchID:        "b-1",
		State:          domain.BatchFailed,
		TotalLines:     3,
		SuccessCount:   2,
		FailedCount:    1,
		ProcessedCount: 3,
	}, nil).Once()

	w := serveJSON(r, token, http.MethodPost, "/api/v1/batches/b-1/process", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"failedCount":1`)
	svc.AssertExpectations(t)
}
