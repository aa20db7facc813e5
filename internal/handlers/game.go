package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"fantasy-casino-backend/internal/games"
	"fantasy-casino-backend/internal/models"
	"fantasy-casino-backend/internal/services"
)

// A payout is announced to everyone only when it is at least tenfold
// the stake net and four figures, so routine wins stay quiet.
const (
	bigWinMultiple = 10
	bigWinFloor    = 1000
)

type GameHandler struct {
	registry           *games.Registry
	economyService     *services.EconomyService
	progressionService *services.ProgressionService
	redisService       *services.RedisService
	broadcaster        services.Broadcaster
}

func NewGameHandler(registry *games.Registry, economyService *services.EconomyService, progressionService *services.ProgressionService, redisService *services.RedisService, broadcaster services.Broadcaster) *GameHandler {
	return &GameHandler{
		registry:           registry,
		economyService:     economyService,
		progressionService: progressionService,
		redisService:       redisService,
		broadcaster:        broadcaster,
	}
}

// ListGames returns the playable games and the table limits.
func (h *GameHandler) ListGames(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"games":   h.registry.Names(),
		"limits": gin.H{
			"min_bet": h.economyService.MinBet(),
			"max_bet": h.economyService.MaxBet(),
		},
	})
}

// Play runs one complete round of an instant game: debit the stake,
// draw the outcome, settle the payout and record progression. The
// outcome is drawn before any money moves, so an invalid choice never
// touches the balance.
func (h *GameHandler) Play(c *gin.Context) {
	userID := c.GetInt64("user_id")
	name := c.Param("name")

	var req models.PlayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	strategy, err := h.registry.Get(name)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown game", "details": err.Error()})
		return
	}
	if name == "blackjack" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Blackjack is played at /api/blackjack/start"})
		return
	}

	result, err := strategy.Play(games.Round{UserID: userID, Bet: req.Bet, Choice: req.Choice})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid choice",
			"details": err.Error(),
		})
		return
	}

	ctx := c.Request.Context()

	if _, err := h.economyService.PlaceBet(ctx, userID, req.Bet); err != nil {
		switch {
		case errors.Is(err, models.ErrBetTooSmall), errors.Is(err, models.ErrBetTooLarge):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, models.ErrInsufficientBalance):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Insufficient balance"})
		case errors.Is(err, models.ErrAccountNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to place bet"})
		}
		return
	}

	round, settle, err := h.economyService.SettleBet(ctx, userID, name, req.Bet, result.Payout, models.Meta(result.State))
	if err != nil {
		log.Printf("Failed to settle %s round for user %d: %v", name, userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to settle round"})
		return
	}

	// The round is already settled; progression and leaderboard
	// failures must not fail the request.
	update, err := h.progressionService.RecordRound(ctx, userID, name, req.Bet, result.Payout)
	if err != nil {
		log.Printf("Failed to record progression for user %d: %v", userID, err)
		update = nil
	}
	if result.Payout > 0 {
		if err := h.redisService.RecordWin(ctx, userID, result.Payout); err != nil {
			log.Printf("Failed to record win on leaderboard: %v", err)
		}
	}

	h.broadcaster.BroadcastBalance(userID, settle.Balance)
	h.broadcaster.BroadcastRound(userID, round, result.Display)
	if round.Net() >= req.Bet*bigWinMultiple && result.Payout >= bigWinFloor {
		if user, err := h.economyService.GetUser(ctx, userID); err == nil {
			h.broadcaster.BroadcastBigWin(user.Username, name, result.Payout)
		}
	}

	response := gin.H{
		"success": true,
		"round":   round,
		"display": result.Display,
		"balance": settle.Balance,
	}
	if update != nil {
		response["progression"] = update
	}
	c.JSON(http.StatusOK, response)
}

// GetRounds returns the user's newest settled rounds first.
func (h *GameHandler) GetRounds(c *gin.Context) {
	userID := c.GetInt64("user_id")

	limitStr := c.DefaultQuery("limit", "50")
	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit <= 0 || limit > 100 {
		limit = 50
	}

	rounds, err := h.economyService.Rounds(c.Request.Context(), userID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load rounds"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"rounds":  rounds,
	})
}

// GetLeaderboard returns this week's biggest winners with usernames
// attached.
func (h *GameHandler) GetLeaderboard(c *gin.Context) {
	limitStr := c.DefaultQuery("limit", "10")
	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit <= 0 || limit > 50 {
		limit = 10
	}

	ctx := c.Request.Context()
	scores, err := h.redisService.TopWinners(ctx, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load leaderboard"})
		return
	}

	entries := make([]models.LeaderboardEntry, 0, len(scores))
	for i, score := range scores {
		entry := models.LeaderboardEntry{
			Rank:     i + 1,
			UserID:   score.UserID,
			TotalWon: score.TotalWon,
		}
		if user, err := h.economyService.GetUser(ctx, score.UserID); err == nil {
			entry.Username = user.Username
		}
		entries = append(entries, entry)
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"leaderboard": entries,
	})
}
