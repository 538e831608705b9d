package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"impact-ledger/internal/entity"
	"impact-ledger/internal/usecase"
	"impact-ledger/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockLedgerUseCase is a mock implementation of LedgerUseCase
type MockLedgerUseCase struct {
	mock.Mock
}

func (m *MockLedgerUseCase) Initialize(accountID string) (entity.Balance, error) {
	args := m.Called(accountID)
	return args.Get(0).(entity.Balance), args.Error(1)
}

func (m *MockLedgerUseCase) GetState(accountID string) (*entity.Snapshot, error) {
	args := m.Called(accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Snapshot), args.Error(1)
}

func (m *MockLedgerUseCase) GetBalance(accountID string) (entity.Balance, error) {
	args := m.Called(accountID)
	return args.Get(0).(entity.Balance), args.Error(1)
}

func (m *MockLedgerUseCase) GetRewards(accountID string, claimableOnly bool) ([]entity.Reward, error) {
	args := m.Called(accountID, claimableOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Reward), args.Error(1)
}

func (m *MockLedgerUseCase) UnlockReward(accountID, rewardID string) (bool, error) {
	args := m.Called(accountID, rewardID)
	return args.Bool(0), args.Error(1)
}

func (m *MockLedgerUseCase) ClaimReward(accountID, rewardID string) (*entity.Transaction, error) {
	args := m.Called(accountID, rewardID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Transaction), args.Error(1)
}

func (m *MockLedgerUseCase) Contribute(accountID, causeID string, amount float64) (*entity.Transaction, error) {
	args := m.Called(accountID, causeID, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Transaction), args.Error(1)
}

func (m *MockLedgerUseCase) TransferTokens(accountID, toAddress string, amount float64, note string) (*entity.Transaction, error) {
	args := m.Called(accountID, toAddress, amount, note)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Transaction), args.Error(1)
}

func (m *MockLedgerUseCase) RecordReceive(accountID, fromAddress string, amount float64, note string) (*entity.Transaction, error) {
	args := m.Called(accountID, fromAddress, amount, note)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Transaction), args.Error(1)
}

func (m *MockLedgerUseCase) StakeTokens(accountID string, amount float64) (*entity.Transaction, error) {
	args := m.Called(accountID, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Transaction), args.Error(1)
}

func (m *MockLedgerUseCase) UnstakeTokens(accountID, stakeID string) (*entity.Transaction, error) {
	args := m.Called(accountID, stakeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Transaction), args.Error(1)
}

func (m *MockLedgerUseCase) GetTransactions(accountID string, limit, offset int) ([]entity.Transaction, error) {
	args := m.Called(accountID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Transaction), args.Error(1)
}

func (m *MockLedgerUseCase) ExportAuditLog(accountID string) (string, error) {
	args := m.Called(accountID)
	return args.String(0), args.Error(1)
}

func (m *MockLedgerUseCase) Reset(accountID string) error {
	args := m.Called(accountID)
	return args.Error(0)
}

var _ usecase.LedgerUseCase = (*MockLedgerUseCase)(nil)

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func withAccount(accountID string, handler gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", accountID)
		handler(c)
	}
}

func TestInitialize_Success(t *testing.T) {
	mockUseCase := new(MockLedgerUseCase)
	logger := logger.New()
	handler := NewLedgerHandler(mockUseCase, logger)

	router := setupTestRouter()
	router.POST("/ledger/initialize", withAccount("acct-123", handler.Initialize))

	mockUseCase.On("Initialize", "acct-123").Return(entity.Balance{Tokens: 100, Gas: 0.5}, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/ledger/initialize", nil)

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, "Ledger initialized", response["message"])
	balance := response["balance"].(map[string]interface{})
	assert.Equal(t, 100.0, balance["tokens"])

	mockUseCase.AssertExpectations(t)
}

func TestGetBalance_Success(t *testing.T) {
	mockUseCase := new(MockLedgerUseCase)
	logger := logger.New()
	handler := NewLedgerHandler(mockUseCase, logger)

	router := setupTestRouter()
	router.GET("/ledger/balance", withAccount("acct-123", handler.GetBalance))

	mockUseCase.On("GetBalance", "acct-123").Return(entity.Balance{Tokens: 123.456, Gas: 0.5}, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/ledger/balance", nil)

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, 123.46, response["tokens"])
	assert.Equal(t, 0.5, response["gas"])

	mockUseCase.AssertExpectations(t)
}

func TestClaimReward_Success(t *testing.T) {
	mockUseCase := new(MockLedgerUseCase)
	logger := logger.New()
	handler := NewLedgerHandler(mockUseCase, logger)

	router := setupTestRouter()
	router.POST("/ledger/rewards/:reward_id/claim", withAccount("acct-123", handler.ClaimReward))

	tx := &entity.Transaction{ID: "tx-1", Kind: entity.TxClaimReward, Amount: 50}
	mockUseCase.On("ClaimReward", "acct-123", "day_7_milestone").Return(tx, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/ledger/rewards/day_7_milestone/claim", nil)

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, "Reward claimed", response["message"])

	mockUseCase.AssertExpectations(t)
}

func TestClaimReward_AlreadyClaimed(t *testing.T) {
	mockUseCase := new(MockLedgerUseCase)
	logger := logger.New()
	handler := NewLedgerHandler(mockUseCase, logger)

	router := setupTestRouter()
	router.POST("/ledger/rewards/:reward_id/claim", withAccount("acct-123", handler.ClaimReward))

	mockUseCase.On("ClaimReward", "acct-123", "welcome_bonus").Return(nil, entity.ErrRewardClaimed)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/ledger/rewards/welcome_bonus/claim", nil)

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	var response map[string]string
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, "already_claimed", response["kind"])

	mockUseCase.AssertExpectations(t)
}

func TestClaimReward_NotFound(t *testing.T) {
	mockUseCase := new(MockLedgerUseCase)
	logger := logger.New()
	handler := NewLedgerHandler(mockUseCase, logger)

	router := setupTestRouter()
	router.POST("/ledger/rewards/:reward_id/claim", withAccount("acct-123", handler.ClaimReward))

	mockUseCase.On("ClaimReward", "acct-123", "nope").Return(nil, entity.ErrRewardNotFound)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/ledger/rewards/nope/claim", nil)

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	mockUseCase.AssertExpectations(t)
}

func TestContribute_InsufficientBalance(t *testing.T) {
	mockUseCase := new(MockLedgerUseCase)
	logger := logger.New()
	handler := NewLedgerHandler(mockUseCase, logger)

	router := setupTestRouter()
	router.POST("/ledger/contribute", withAccount("acct-123", handler.Contribute))

	mockUseCase.On("Contribute", "acct-123", "ocean-cleanup", 500.0).Return(nil, entity.ErrInsufficientBalance)

	body := `{"cause_id":"ocean-cleanup","amount":500}`
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/ledger/contribute", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var response map[string]string
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, "insufficient_balance", response["kind"])

	mockUseCase.AssertExpectations(t)
}

func TestContribute_MissingBody(t *testing.T) {
	mockUseCase := new(MockLedgerUseCase)
	logger := logger.New()
	handler := NewLedgerHandler(mockUseCase, logger)

	router := setupTestRouter()
	router.POST("/ledger/contribute", withAccount("acct-123", handler.Contribute))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/ledger/contribute", bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "application/json")

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockUseCase.AssertNotCalled(t, "Contribute")
}

func TestStake_Success(t *testing.T) {
	mockUseCase := new(MockLedgerUseCase)
	logger := logger.New()
	handler := NewLedgerHandler(mockUseCase, logger)

	router := setupTestRouter()
	router.POST("/ledger/stake", withAccount("acct-123", handler.Stake))

	tx := &entity.Transaction{ID: "tx-2", Kind: entity.TxStake, Amount: -40}
	mockUseCase.On("StakeTokens", "acct-123", 40.0).Return(tx, nil)

	body := `{"amount":40}`
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/ledger/stake", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, "Tokens staked", response["message"])

	mockUseCase.AssertExpectations(t)
}

func TestUnstake_NotFound(t *testing.T) {
	mockUseCase := new(MockLedgerUseCase)
	logger := logger.New()
	handler := NewLedgerHandler(mockUseCase, logger)

	router := setupTestRouter()
	router.POST("/ledger/stakes/:stake_id/unstake", withAccount("acct-123", handler.Unstake))

	mockUseCase.On("UnstakeTokens", "acct-123", "stake-404").Return(nil, entity.ErrStakeNotFound)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/ledger/stakes/stake-404/unstake", nil)

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	mockUseCase.AssertExpectations(t)
}

func TestGetRewards_ClaimableFilter(t *testing.T) {
	mockUseCase := new(MockLedgerUseCase)
	logger := logger.New()
	handler := NewLedgerHandler(mockUseCase, logger)

	router := setupTestRouter()
	router.GET("/ledger/rewards", withAccount("acct-123", handler.GetRewards))

	rewards := []entity.Reward{
		{ID: "welcome_bonus", Status: entity.RewardStatusUnlocked, Amount: 25},
	}
	mockUseCase.On("GetRewards", "acct-123", true).Return(rewards, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/ledger/rewards?claimable=true", nil)

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, 1.0, response["count"])

	mockUseCase.AssertExpectations(t)
}

func TestGetTransactions_Pagination(t *testing.T) {
	mockUseCase := new(MockLedgerUseCase)
	logger := logger.New()
	handler := NewLedgerHandler(mockUseCase, logger)

	router := setupTestRouter()
	router.GET("/ledger/transactions", withAccount("acct-123", handler.GetTransactions))

	mockUseCase.On("GetTransactions", "acct-123", 10, 5).Return([]entity.Transaction{}, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/ledger/transactions?limit=10&offset=5", nil)

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockUseCase.AssertExpectations(t)
}

func TestExportAuditLog_Success(t *testing.T) {
	mockUseCase := new(MockLedgerUseCase)
	logger := logger.New()
	handler := NewLedgerHandler(mockUseCase, logger)

	router := setupTestRouter()
	router.POST("/ledger/export", withAccount("acct-123", handler.ExportAuditLog))

	mockUseCase.On("ExportAuditLog", "acct-123").Return("https://bucket.s3.amazonaws.com/exports/acct-123/audit_1.json", nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/ledger/export", nil)

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var response map[string]string
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Contains(t, response["url"], "audit_1.json")

	mockUseCase.AssertExpectations(t)
}

func TestNewLedgerHandler(t *testing.T) {
	mockUseCase := new(MockLedgerUseCase)
	logger := logger.New()
	handler := NewLedgerHandler(mockUseCase, logger)

	assert.NotNil(t, handler)
}
