package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"fantasy-casino-backend/internal/models"
	"fantasy-casino-backend/internal/services"
)

type WalletHandler struct {
	economyService *services.EconomyService
	broadcaster    services.Broadcaster
}

func NewWalletHandler(economyService *services.EconomyService, broadcaster services.Broadcaster) *WalletHandler {
	return &WalletHandler{
		economyService: economyService,
		broadcaster:    broadcaster,
	}
}

// GetWallet returns the balance and the last daily-bonus claim time.
func (h *WalletHandler) GetWallet(c *gin.Context) {
	userID := c.GetInt64("user_id")

	wallet, err := h.economyService.GetWallet(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, models.ErrAccountNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load wallet"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"wallet":  wallet,
	})
}

// ClaimDaily credits the daily bonus once per 24 hours.
func (h *WalletHandler) ClaimDaily(c *gin.Context) {
	userID := c.GetInt64("user_id")

	result, err := h.economyService.GrantDailyBonus(c.Request.Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrBonusNotReady):
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Daily bonus not ready yet"})
		case errors.Is(err, models.ErrAccountNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to claim daily bonus"})
		}
		return
	}

	h.broadcaster.BroadcastBalance(userID, result.Balance)

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"transaction": result.Transaction,
		"balance":     result.Balance,
	})
}

// Deposit credits chips from an external source.
func (h *WalletHandler) Deposit(c *gin.Context) {
	userID := c.GetInt64("user_id")

	var req models.DepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	result, err := h.economyService.Deposit(c.Request.Context(), userID, req.Amount)
	if err != nil {
		if errors.Is(err, models.ErrAccountNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to deposit"})
		return
	}

	h.broadcaster.BroadcastBalance(userID, result.Balance)

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"transaction": result.Transaction,
		"balance":     result.Balance,
	})
}

// Withdraw debits chips toward an external address.
func (h *WalletHandler) Withdraw(c *gin.Context) {
	userID := c.GetInt64("user_id")

	var req models.WithdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	result, err := h.economyService.Withdraw(c.Request.Context(), userID, req.Amount, req.Address)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrInsufficientBalance):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Insufficient balance"})
		case errors.Is(err, models.ErrAccountNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to withdraw"})
		}
		return
	}

	h.broadcaster.BroadcastBalance(userID, result.Balance)

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"transaction": result.Transaction,
		"balance":     result.Balance,
	})
}

// GetTransactions returns the newest ledger entries first.
func (h *WalletHandler) GetTransactions(c *gin.Context) {
	userID := c.GetInt64("user_id")

	limitStr := c.DefaultQuery("limit", "50")
	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit <= 0 || limit > 100 {
		limit = 50
	}

	transactions, err := h.economyService.Transactions(c.Request.Context(), userID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load transactions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"transactions": transactions,
	})
}
