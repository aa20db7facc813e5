package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"fantasy-casino-backend/internal/games"
	"fantasy-casino-backend/internal/models"
	"fantasy-casino-backend/internal/services"
)

var errAlreadyDoubled = errors.New("round already doubled")

// BlackjackHandler plays the only multi-request game. Every action on
// a user's table runs under the session lock, so a player action and
// the stale sweep can never settle the same round twice.
type BlackjackHandler struct {
	blackjack          *games.Blackjack
	sessions           *services.SessionStore
	economyService     *services.EconomyService
	progressionService *services.ProgressionService
	redisService       *services.RedisService
	broadcaster        services.Broadcaster
}

func NewBlackjackHandler(blackjack *games.Blackjack, sessions *services.SessionStore, economyService *services.EconomyService, progressionService *services.ProgressionService, redisService *services.RedisService, broadcaster services.Broadcaster) *BlackjackHandler {
	return &BlackjackHandler{
		blackjack:          blackjack,
		sessions:           sessions,
		economyService:     economyService,
		progressionService: progressionService,
		redisService:       redisService,
		broadcaster:        broadcaster,
	}
}

// Start debits the stake and deals a fresh round. An opening natural
// on either side settles immediately.
func (h *BlackjackHandler) Start(c *gin.Context) {
	userID := c.GetInt64("user_id")

	var req models.BlackjackStartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	ctx := c.Request.Context()
	var response gin.H
	err := h.sessions.WithUser(userID, func() error {
		round := h.blackjack.NewRound(req.Bet)
		session, err := h.sessions.Put(userID, round)
		if err != nil {
			return err
		}

		betResult, err := h.economyService.PlaceBet(ctx, userID, req.Bet)
		if err != nil {
			h.sessions.End(userID)
			return err
		}

		if round.Finished {
			response, err = h.finishAndSettle(ctx, userID, session)
			return err
		}

		h.broadcaster.BroadcastBalance(userID, betResult.Balance)
		response = gin.H{
			"success": true,
			"table":   tableView(session),
			"balance": betResult.Balance,
		}
		return nil
	})
	if err != nil {
		blackjackError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// GetTable returns the open round, hole card hidden.
func (h *BlackjackHandler) GetTable(c *gin.Context) {
	userID := c.GetInt64("user_id")

	var response gin.H
	err := h.sessions.WithUser(userID, func() error {
		session, err := h.sessions.Get(userID)
		if err != nil {
			return err
		}
		response = gin.H{
			"success": true,
			"table":   tableView(session),
		}
		return nil
	})
	if err != nil {
		blackjackError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// Hit draws one card. A bust settles the round immediately.
func (h *BlackjackHandler) Hit(c *gin.Context) {
	userID := c.GetInt64("user_id")

	ctx := c.Request.Context()
	var response gin.H
	err := h.sessions.WithUser(userID, func() error {
		session, err := h.sessions.Get(userID)
		if err != nil {
			return err
		}

		h.blackjack.Hit(session.Round)
		if session.Round.Finished {
			response, err = h.finishAndSettle(ctx, userID, session)
			return err
		}

		response = gin.H{
			"success": true,
			"table":   tableView(session),
		}
		return nil
	})
	if err != nil {
		blackjackError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// Double debits a second stake, doubles the bet, draws exactly one
// card and settles.
func (h *BlackjackHandler) Double(c *gin.Context) {
	userID := c.GetInt64("user_id")

	ctx := c.Request.Context()
	var response gin.H
	err := h.sessions.WithUser(userID, func() error {
		session, err := h.sessions.Get(userID)
		if err != nil {
			return err
		}
		if session.Round.Doubled {
			return errAlreadyDoubled
		}

		// The extra stake equals the current bet and is debited before
		// the bet doubles.
		if _, err := h.economyService.PlaceBet(ctx, userID, session.Round.Bet); err != nil {
			return err
		}

		h.blackjack.Double(session.Round)
		response, err = h.finishAndSettle(ctx, userID, session)
		return err
	})
	if err != nil {
		blackjackError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// Stand ends the player's turn and settles against the dealer.
func (h *BlackjackHandler) Stand(c *gin.Context) {
	userID := c.GetInt64("user_id")

	ctx := c.Request.Context()
	var response gin.H
	err := h.sessions.WithUser(userID, func() error {
		session, err := h.sessions.Get(userID)
		if err != nil {
			return err
		}

		h.blackjack.Stand(session.Round)
		response, err = h.finishAndSettle(ctx, userID, session)
		return err
	})
	if err != nil {
		blackjackError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// SweepStaleSessions force-settles rounds abandoned longer than maxAge
// so their stakes do not leak. Runs on a schedule.
func (h *BlackjackHandler) SweepStaleSessions(maxAge time.Duration) {
	cutoff := time.Now().Add(-maxAge)
	for _, userID := range h.sessions.StaleUserIDs(cutoff) {
		err := h.sessions.WithUser(userID, func() error {
			session, err := h.sessions.Get(userID)
			if err != nil {
				// Settled by the player between snapshot and lock.
				return nil
			}
			if session.StartedAt.After(cutoff) {
				return nil
			}
			_, err = h.finishAndSettle(context.Background(), userID, session)
			return err
		})
		if err != nil {
			log.Printf("Failed to sweep stale blackjack round for user %d: %v", userID, err)
		} else {
			log.Printf("Swept stale blackjack round for user %d", userID)
		}
	}
}

// finishAndSettle resolves the round against the dealer, settles the
// payout, records progression and tears the session down. Callers hold
// the user's session lock.
func (h *BlackjackHandler) finishAndSettle(ctx context.Context, userID int64, session *services.TableSession) (gin.H, error) {
	result := h.blackjack.Finish(session.Round)
	bet := session.Round.Bet

	round, settle, err := h.economyService.SettleBet(ctx, userID, "blackjack", bet, result.Payout, models.Meta(result.State))
	if err != nil {
		return nil, err
	}
	h.sessions.End(userID)

	update, err := h.progressionService.RecordRound(ctx, userID, "blackjack", bet, result.Payout)
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
	if round.Net() >= bet*bigWinMultiple && result.Payout >= bigWinFloor {
		if user, err := h.economyService.GetUser(ctx, userID); err == nil {
			h.broadcaster.BroadcastBigWin(user.Username, "blackjack", result.Payout)
		}
	}

	response := gin.H{
		"success": true,
		"table":   tableView(session),
		"round":   round,
		"display": result.Display,
		"balance": settle.Balance,
	}
	if update != nil {
		response["progression"] = update
	}
	return response, nil
}

// tableView renders the table for the player. The dealer's hole card
// stays hidden until the round is finished.
func tableView(session *services.TableSession) *models.BlackjackView {
	r := session.Round
	playerValue, _ := games.HandValue(r.Player)
	view := &models.BlackjackView{
		SessionID:   session.ID,
		Bet:         r.Bet,
		Player:      games.CardNames(r.Player),
		PlayerValue: playerValue,
		Doubled:     r.Doubled,
		Finished:    r.Finished,
	}

	if r.Finished {
		view.Dealer = games.CardNames(r.Dealer)
		dealerValue, _ := games.HandValue(r.Dealer)
		view.DealerValue = dealerValue
	} else if len(r.Dealer) > 0 {
		view.Dealer = []string{r.Dealer[0].String(), "🂠"}
	}
	return view
}

func blackjackError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrRoundInProgress):
		c.JSON(http.StatusConflict, gin.H{"error": "A card round is already in progress"})
	case errors.Is(err, services.ErrNoActiveRound):
		c.JSON(http.StatusNotFound, gin.H{"error": "No active card round"})
	case errors.Is(err, errAlreadyDoubled):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Round already doubled"})
	case errors.Is(err, models.ErrBetTooSmall), errors.Is(err, models.ErrBetTooLarge):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrInsufficientBalance):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Insufficient balance"})
	case errors.Is(err, models.ErrAccountNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
	default:
		log.Printf("Blackjack action failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to play blackjack"})
	}
}
