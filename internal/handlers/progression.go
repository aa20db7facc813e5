package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"fantasy-casino-backend/internal/models"
	"fantasy-casino-backend/internal/services"
)

type ProgressionHandler struct {
	progressionService *services.ProgressionService
	economyService     *services.EconomyService
	broadcaster        services.Broadcaster
}

func NewProgressionHandler(progressionService *services.ProgressionService, economyService *services.EconomyService, broadcaster services.Broadcaster) *ProgressionHandler {
	return &ProgressionHandler{
		progressionService: progressionService,
		economyService:     economyService,
		broadcaster:        broadcaster,
	}
}

// GetProfile returns the stats, level, tier, achievements and missions
// in one response.
func (h *ProgressionHandler) GetProfile(c *gin.Context) {
	userID := c.GetInt64("user_id")

	profile, err := h.progressionService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"profile": profile,
	})
}

// GetAchievements lists every achievement with the user's unlock state.
func (h *ProgressionHandler) GetAchievements(c *gin.Context) {
	userID := c.GetInt64("user_id")

	achievements, err := h.progressionService.Achievements(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load achievements"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"achievements": achievements,
	})
}

// GetMissions lists every mission with the user's progress.
func (h *ProgressionHandler) GetMissions(c *gin.Context) {
	userID := c.GetInt64("user_id")

	missions, err := h.progressionService.Missions(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load missions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"missions": missions,
	})
}

// ClaimMission stamps the claim and pays the reward. The claim lands
// first; re-claiming returns the mission without paying again.
func (h *ProgressionHandler) ClaimMission(c *gin.Context) {
	userID := c.GetInt64("user_id")
	code := c.Param("code")

	ctx := c.Request.Context()
	mission, claimedNow, err := h.progressionService.ClaimMission(ctx, userID, code)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrMissionNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Mission not found"})
		case errors.Is(err, models.ErrMissionNotCompleted):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Mission not completed yet"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to claim mission"})
		}
		return
	}

	response := gin.H{
		"success": true,
		"mission": mission,
		"claimed": claimedNow,
	}

	if claimedNow {
		result, err := h.economyService.GrantReward(ctx, userID, mission.Reward, "mission", models.Meta{"mission": mission.Code})
		if err != nil {
			log.Printf("Failed to pay mission reward for user %d: %v", userID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to pay mission reward"})
			return
		}
		h.broadcaster.BroadcastBalance(userID, result.Balance)
		response["reward"] = result.Transaction
		response["balance"] = result.Balance
	}

	c.JSON(http.StatusOK, response)
}
