package http

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"impact-ledger/internal/entity"
	"impact-ledger/internal/usecase"
	"impact-ledger/pkg/logger"

	"github.com/gin-gonic/gin"
)

type LedgerHandler struct {
	ledgerUseCase usecase.LedgerUseCase
	logger        *logger.Logger
}

func NewLedgerHandler(ledgerUseCase usecase.LedgerUseCase, logger *logger.Logger) *LedgerHandler {
	return &LedgerHandler{
		ledgerUseCase: ledgerUseCase,
		logger:        logger,
	}
}

type ContributeRequest struct {
	CauseID string  `json:"cause_id" binding:"required"`
	Amount  float64 `json:"amount" binding:"required"`
}

type TransferRequest struct {
	ToAddress string  `json:"to_address" binding:"required"`
	Amount    float64 `json:"amount" binding:"required"`
	Note      string  `json:"note"`
}

type ReceiveRequest struct {
	FromAddress string  `json:"from_address" binding:"required"`
	Amount      float64 `json:"amount"`
	Note        string  `json:"note"`
}

type StakeRequest struct {
	Amount float64 `json:"amount" binding:"required"`
}

// respondError maps domain errors to HTTP statuses. Anything that is not a
// ledger error is a 500.
func (h *LedgerHandler) respondError(c *gin.Context, err error) {
	var ledgerErr *entity.LedgerError
	if errors.As(err, &ledgerErr) {
		status := http.StatusBadRequest
		switch ledgerErr.Kind {
		case entity.KindNotFound:
			status = http.StatusNotFound
		case entity.KindNotUnlocked, entity.KindAlreadyClaimed:
			status = http.StatusConflict
		}
		c.JSON(status, gin.H{"error": ledgerErr.Message, "kind": string(ledgerErr.Kind)})
		return
	}
	h.logger.Error("Ledger operation failed: %v", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Initialize godoc
// @Summary      Initialize ledger
// @Description  Seed the starting balance for the authenticated account. Idempotent.
// @Tags         ledger
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]interface{}
// @Router       /ledger/initialize [post]
func (h *LedgerHandler) Initialize(c *gin.Context) {
	accountID := c.GetString("user_id")

	balance, err := h.ledgerUseCase.Initialize(accountID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Ledger initialized",
		"balance": balance,
	})
}

// GetState godoc
// @Summary      Get ledger state
// @Description  Get the full ledger state for the authenticated account
// @Tags         ledger
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  entity.Snapshot
// @Router       /ledger [get]
func (h *LedgerHandler) GetState(c *gin.Context) {
	accountID := c.GetString("user_id")

	state, err := h.ledgerUseCase.GetState(accountID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, state)
}

// GetBalance godoc
// @Summary      Get balance
// @Description  Get token and gas balances for the authenticated account
// @Tags         ledger
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]interface{}
// @Router       /ledger/balance [get]
func (h *LedgerHandler) GetBalance(c *gin.Context) {
	accountID := c.GetString("user_id")

	balance, err := h.ledgerUseCase.GetBalance(accountID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tokens": round2(balance.Tokens),
		"gas":    balance.Gas,
	})
}

// GetRewards godoc
// @Summary      List rewards
// @Description  List rewards for the authenticated account, optionally only claimable ones
// @Tags         rewards
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        claimable query bool false "Only unlocked, unclaimed rewards"
// @Success      200  {object}  map[string]interface{}
// @Router       /ledger/rewards [get]
func (h *LedgerHandler) GetRewards(c *gin.Context) {
	accountID := c.GetString("user_id")
	claimableOnly := c.Query("claimable") == "true"

	rewards, err := h.ledgerUseCase.GetRewards(accountID, claimableOnly)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if rewards == nil {
		rewards = []entity.Reward{}
	}

	c.JSON(http.StatusOK, gin.H{"rewards": rewards, "count": len(rewards)})
}

// UnlockReward godoc
// @Summary      Unlock reward
// @Description  Mark a locked reward as unlocked. Returns unlocked=false if it was not locked.
// @Tags         rewards
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        reward_id path string true "Reward ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]string
// @Router       /ledger/rewards/{reward_id}/unlock [post]
func (h *LedgerHandler) UnlockReward(c *gin.Context) {
	accountID := c.GetString("user_id")
	rewardID := c.Param("reward_id")

	unlocked, err := h.ledgerUseCase.UnlockReward(accountID, rewardID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"reward_id": rewardID, "unlocked": unlocked})
}

// ClaimReward godoc
// @Summary      Claim reward
// @Description  Credit an unlocked reward to the balance. Each reward can be claimed once.
// @Tags         rewards
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        reward_id path string true "Reward ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /ledger/rewards/{reward_id}/claim [post]
func (h *LedgerHandler) ClaimReward(c *gin.Context) {
	accountID := c.GetString("user_id")
	rewardID := c.Param("reward_id")

	tx, err := h.ledgerUseCase.ClaimReward(accountID, rewardID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "Reward claimed",
		"transaction": tx,
	})
}

// Contribute godoc
// @Summary      Contribute to a cause
// @Description  Donate tokens to a cause and record the contribution
// @Tags         ledger
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body ContributeRequest true "Contribution"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Router       /ledger/contribute [post]
func (h *LedgerHandler) Contribute(c *gin.Context) {
	accountID := c.GetString("user_id")

	var req ContributeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tx, err := h.ledgerUseCase.Contribute(accountID, req.CauseID, req.Amount)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "Contribution recorded",
		"transaction": tx,
	})
}

// Transfer godoc
// @Summary      Transfer tokens
// @Description  Send tokens to an external address
// @Tags         ledger
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body TransferRequest true "Transfer"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Router       /ledger/transfer [post]
func (h *LedgerHandler) Transfer(c *gin.Context) {
	accountID := c.GetString("user_id")

	var req TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tx, err := h.ledgerUseCase.TransferTokens(accountID, req.ToAddress, req.Amount, req.Note)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "Transfer sent",
		"transaction": tx,
	})
}

// Receive godoc
// @Summary      Record inbound transfer
// @Description  Credit tokens received from an external address
// @Tags         ledger
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body ReceiveRequest true "Inbound transfer"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Router       /ledger/receive [post]
func (h *LedgerHandler) Receive(c *gin.Context) {
	accountID := c.GetString("user_id")

	var req ReceiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tx, err := h.ledgerUseCase.RecordReceive(accountID, req.FromAddress, req.Amount, req.Note)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "Transfer received",
		"transaction": tx,
	})
}

// Stake godoc
// @Summary      Stake tokens
// @Description  Move tokens from the balance into a new stake position
// @Tags         staking
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body StakeRequest true "Stake amount"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Router       /ledger/stake [post]
func (h *LedgerHandler) Stake(c *gin.Context) {
	accountID := c.GetString("user_id")

	var req StakeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tx, err := h.ledgerUseCase.StakeTokens(accountID, req.Amount)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "Tokens staked",
		"transaction": tx,
	})
}

// Unstake godoc
// @Summary      Unstake tokens
// @Description  Close an active stake and return principal plus accrued rewards
// @Tags         staking
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        stake_id path string true "Stake ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]string
// @Router       /ledger/stakes/{stake_id}/unstake [post]
func (h *LedgerHandler) Unstake(c *gin.Context) {
	accountID := c.GetString("user_id")
	stakeID := c.Param("stake_id")

	tx, err := h.ledgerUseCase.UnstakeTokens(accountID, stakeID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "Tokens unstaked",
		"transaction": tx,
	})
}

// GetTransactions godoc
// @Summary      Get transactions
// @Description  Get transaction history for the authenticated account, newest first
// @Tags         ledger
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        limit query int false "Number of transactions"
// @Param        offset query int false "Offset"
// @Success      200  {object}  map[string]interface{}
// @Router       /ledger/transactions [get]
func (h *LedgerHandler) GetTransactions(c *gin.Context) {
	accountID := c.GetString("user_id")
	limit := 50
	offset := 0

	if limitStr := c.Query("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}

	if offsetStr := c.Query("offset"); offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o >= 0 {
			offset = o
		}
	}

	transactions, err := h.ledgerUseCase.GetTransactions(accountID, limit, offset)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transactions": transactions, "count": len(transactions)})
}

// ExportAuditLog godoc
// @Summary      Export audit log
// @Description  Upload the full transaction log to object storage and return the URL
// @Tags         ledger
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]string
// @Router       /ledger/export [post]
func (h *LedgerHandler) ExportAuditLog(c *gin.Context) {
	accountID := c.GetString("user_id")

	url, err := h.ledgerUseCase.ExportAuditLog(accountID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url})
}

// Reset godoc
// @Summary      Reset ledger
// @Description  Clear all ledger state for the authenticated account and restore defaults
// @Tags         ledger
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]string
// @Router       /ledger/reset [post]
func (h *LedgerHandler) Reset(c *gin.Context) {
	accountID := c.GetString("user_id")

	if err := h.ledgerUseCase.Reset(accountID); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Ledger reset"})
}
