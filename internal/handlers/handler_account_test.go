package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SscSPs/core_banking_ledger/internal/apperrors"
	"github.com/SscSPs/core_banking_ledger/internal/core/domain"
	"github.com/SscSPs/core_banking_ledger/internal/dto"
	"github.com/SscSPs/core_banking_ledger/internal/handlers"
	"github.com/SscSPs/core_banking_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Test Suite ---
type AccountHandlerTestSuite struct {
	suite.Suite
	router             *gin.Engine
	mockAccountService *MockAccountService
	userID             string
	token              string
}

func (suite *AccountHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.router = gin.New()
	suite.router.Use(middleware.AuthMiddleware(testJWTSecret, testIssuer))

	suite.mockAccountService = new(MockAccountService)

	v1 := suite.router.Group("/api/v1")
	handlers.RegisterAccountRoutes(v1, suite.mockAccountService)

	suite.userID = uuid.NewString()
	token, err := generateTestToken(suite.userID)
	suite.Require().NoError(err)
	suite.token = token
}

func (suite *AccountHandlerTestSuite) do(method, url string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		suite.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req, _ := http.NewRequest(method, url, &buf)
	req.Header.Set("Authorization", "Bearer "+suite.token)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func sampleAccount(id string) *domain.Account {
	return &domain.Account{
		AccountID:     id,
		AccountNumber: "ACC000001",
		Name:          "Main",
		CustomerRef:   "CUST-1",
		CurrencyCode:  "USD",
		Balance:       decimal.NewFromInt(1000),
		HoldAmount:    decimal.NewFromInt(200),
		State:         domain.AccountActive,
	}
}

// --- Test Cases ---

func (suite *AccountHandlerTestSuite) TestCreateAccount_Success() {
	accountID := uuid.NewString()
	suite.mockAccountService.On("CreateAccount",
		mock.Anything,
		mock.MatchedBy(func(r dto.CreateAccountRequest) bool {
			return r.CustomerRef == "CUST-1" && r.CurrencyCode == "USD" && r.Activate
		}),
		suite.userID,
	).Return(sampleAccount(accountID), nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/accounts", map[string]any{
		"name":         "Main",
		"customerRef":  "CUST-1",
		"currencyCode": "USD",
		"activate":     true,
	})

	suite.Equal(http.StatusCreated, w.Code)
	var resp dto.AccountResponse
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(accountID, resp.AccountID)
	suite.Equal("ACC000001", resp.AccountNumber)
	suite.True(decimal.NewFromInt(800).Equal(resp.AvailableBalance), "available = balance - hold")
	suite.mockAccountService.AssertExpectations(suite.T())
}

func (suite *AccountHandlerTestSuite) TestCreateAccount_BindError() {
	w := suite.do(http.MethodPost, "/api/v1/accounts", map[string]any{"name": "no currency"})

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockAccountService.AssertNotCalled(suite.T(), "CreateAccount")
}

func (suite *AccountHandlerTestSuite) TestMissingToken_Unauthorized() {
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/accounts/abc", nil)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.mockAccountService.AssertNotCalled(suite.T(), "GetAccountByID")
}

func (suite *AccountHandlerTestSuite) TestGetAccount_NotFound() {
	suite.mockAccountService.On("GetAccountByID", mock.Anything, "missing").
		Return(nil, fmt.Errorf("%w: account missing", apperrors.ErrNotFound)).Once()

	w := suite.do(http.MethodGet, "/api/v1/accounts/missing", nil)

	suite.Equal(http.StatusNotFound, w.Code)
	suite.mockAccountService.AssertExpectations(suite.T())
}

func (suite *AccountHandlerTestSuite) TestListAccounts_UsesPaging() {
	suite.mockAccountService.On("ListAccounts", mock.Anything, 5, 10).
		Return([]domain.Account{*sampleAccount("a"), *sampleAccount("b")}, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/accounts?limit=5&offset=10", nil)

	suite.Equal(http.StatusOK, w.Code)
	var resp []dto.AccountResponse
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Len(resp, 2)
	suite.mockAccountService.AssertExpectations(suite.T())
}

func (suite *AccountHandlerTestSuite) TestListTransactions_Success() {
	accountID := uuid.NewString()
	next := "token-2"
	expected := &dto.ListTransactionsResponse{
		Transactions: []dto.TransactionResponse{
			{TransactionID: uuid.NewString(), AccountID: accountID, Amount: decimal.NewFromInt(-50), TransactionDate: time.Now()},
			{TransactionID: uuid.NewString(), AccountID: accountID, Amount: decimal.NewFromInt(100), TransactionDate: time.Now().Add(-time.Hour)},
		},
		NextToken: &next,
	}
	suite.mockAccountService.On("ListTransactions",
		mock.Anything,
		accountID,
		mock.MatchedBy(func(p dto.ListTransactionsParams) bool {
			return p.Limit == 2 && p.NextToken != nil && *p.NextToken == "token-1"
		}),
	).Return(expected, nil).Once()

	w := suite.do(http.MethodGet, fmt.Sprintf("/api/v1/accounts/%s/transactions?limit=2&nextToken=token-1", accountID), nil)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.ListTransactionsResponse
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Len(resp.Transactions, 2)
	suite.Require().NotNil(resp.NextToken)
	suite.Equal("token-2", *resp.NextToken)
	suite.mockAccountService.AssertExpectations(suite.T())
}

func (suite *AccountHandlerTestSuite) TestStateTransitions_MapErrors() {
	tests := []struct {
		name   string
		path   string
		method string
		err    error
		want   int
	}{
		{"activate ok", "activate", "ActivateAccount", nil, http.StatusOK},
		{"dormant from closed", "dormant", "MarkDormant", fmt.Errorf("%w: closed", apperrors.ErrInvalidState), http.StatusConflict},
		{"restrict missing", "restrict", "RestrictAccount", apperrors.ErrAccountNotFound, http.StatusNotFound},
		{"unrestrict ok", "unrestrict", "UnrestrictAccount", nil, http.StatusOK},
		{"close with balance", "close", "CloseAccount", fmt.Errorf("%w: balance 10", apperrors.ErrNonZeroBalance), http.StatusUnprocessableEntity},
		{"close store failure", "close", "CloseAccount", apperrors.NewAppError(500, "db down", nil), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			suite.SetupTest()
			if tt.err == nil {
				suite.mockAccountService.On(tt.method, mock.Anything, "acc-1", suite.userID).Return(sampleAccount("acc-1"), nil).Once()
			} else {
				suite.mockAccountService.On(tt.method, mock.Anything, "acc-1", suite.userID).Return(nil, tt.err).Once()
			}

			w := suite.do(http.MethodPost, "/api/v1/accounts/acc-1/"+tt.path, nil)

			suite.Equal(tt.want, w.Code)
			suite.mockAccountService.AssertExpectations(suite.T())
		})
	}
}

func (suite *AccountHandlerTestSuite) TestInternalErrorDoesNotLeak() {
	suite.mockAccountService.On("GetAccountByID", mock.Anything, "acc-1").
		Return(nil, apperrors.NewAppError(500, "pq: connection refused", nil)).Once()

	w := suite.do(http.MethodGet, "/api/v1/accounts/acc-1", nil)

	suite.Equal(http.StatusInternalServerError, w.Code)
	suite.NotContains(w.Body.String(), "connection refused")
}

func (suite *AccountHandlerTestSuite) TestSetHold_PassesAmount() {
	suite.mockAccountService.On("SetHold", mock.Anything, "acc-1",
		mock.MatchedBy(func(d decimal.Decimal) bool { return d.Equal(decimal.RequireFromString("150.25")) }),
		suite.userID,
	).Return(sampleAccount("acc-1"), nil).Once()

	w := suite.do(http.MethodPut, "/api/v1/accounts/acc-1/hold", map[string]any{"amount": "150.25"})

	suite.Equal(http.StatusOK, w.Code)
	suite.mockAccountService.AssertExpectations(suite.T())
}

func (suite *AccountHandlerTestSuite) TestWithdraw_InsufficientFunds() {
	suite.mockAccountService.On("Withdraw", mock.Anything, "acc-1",
		mock.MatchedBy(func(r dto.MoneyMovementRequest) bool { return r.Amount.Equal(decimal.NewFromInt(5000)) }),
		suite.userID,
	).Return(nil, fmt.Errorf("%w: available 800", apperrors.ErrInsufficientFunds)).Once()

	w := suite.do(http.MethodPost, "/api/v1/accounts/acc-1/withdraw", map[string]any{"amount": "5000", "reference": "ATM"})

	suite.Equal(http.StatusUnprocessableEntity, w.Code)
	suite.Contains(w.Body.String(), "insufficient funds")
	suite.mockAccountService.AssertExpectations(suite.T())
}

func (suite *AccountHandlerTestSuite) TestDeposit_Created() {
	txn := &domain.Transaction{
		TransactionID:   uuid.NewString(),
		TransactionType: domain.TxDeposit,
		AccountID:       "acc-1",
		Amount:          decimal.NewFromInt(250),
		ExchangeRate:    decimal.NewFromInt(1),
		State:           domain.TxStatePosted,
	}
	suite.mockAccountService.On("Deposit", mock.Anything, "acc-1", mock.Anything, suite.userID).Return(txn, nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/accounts/acc-1/deposit", map[string]any{"amount": "250"})

	suite.Equal(http.StatusCreated, w.Code)
	var resp dto.TransactionResponse
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(domain.TxStatePosted, resp.State)
	suite.Equal(txn.TransactionID, resp.TransactionID)
}

// --- Run Test Suite ---
func TestAccountHandler(t *testing.T) {
	suite.Run(t, new(AccountHandlerTestSuite))
}
