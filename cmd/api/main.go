package main

import (
	"context"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-co-op/gocron/v2"
	"github.com/joho/godotenv"

	"fantasy-casino-backend/internal/config"
	"fantasy-casino-backend/internal/games"
	"fantasy-casino-backend/internal/handlers"
	"fantasy-casino-backend/internal/middleware"
	"fantasy-casino-backend/internal/models"
	"fantasy-casino-backend/internal/services"
	"fantasy-casino-backend/internal/storage"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	store, err := storage.Open(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer store.Close()

	redisService, err := services.NewRedisService(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisService.Close()

	jwtService, err := services.NewJWTService(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		log.Fatalf("Failed to set up JWT: %v", err)
	}

	economyService := services.NewEconomyService(store, cfg.StartBonus, cfg.DailyBonus, cfg.MinBet, cfg.MaxBet)
	progressionService := services.NewProgressionService(store)
	sessions := services.NewSessionStore()

	blackjack := games.NewBlackjack()
	registry := games.NewRegistry()
	for _, strategy := range []games.Strategy{
		games.NewCoinFlip(),
		games.NewDiceDuel(),
		games.NewSlotMachine(),
		games.NewRoulette(),
		games.NewCrash(),
		blackjack,
	} {
		if err := registry.Register(strategy); err != nil {
			log.Fatalf("Failed to register game: %v", err)
		}
	}

	wsHandler := handlers.NewWebSocketHandler(economyService)
	authHandler := handlers.NewAuthHandler(economyService, jwtService)
	walletHandler := handlers.NewWalletHandler(economyService, wsHandler)
	gameHandler := handlers.NewGameHandler(registry, economyService, progressionService, redisService, wsHandler)
	blackjackHandler := handlers.NewBlackjackHandler(blackjack, sessions, economyService, progressionService, redisService, wsHandler)
	progressionHandler := handlers.NewProgressionHandler(progressionService, economyService, wsHandler)

	scheduler, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		log.Fatalf("Failed to create scheduler: %v", err)
	}
	defer func() { _ = scheduler.Shutdown() }()

	if _, err := scheduler.NewJob(
		gocron.DurationJob(5*time.Minute),
		gocron.NewTask(func() {
			blackjackHandler.SweepStaleSessions(cfg.StaleRoundAge)
		}),
	); err != nil {
		log.Fatalf("Failed to schedule stale round sweep: %v", err)
	}
	if _, err := scheduler.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(0, 0, 0))),
		gocron.NewTask(func() {
			resetMissions(progressionService, models.FrequencyDaily)
		}),
	); err != nil {
		log.Fatalf("Failed to schedule daily mission reset: %v", err)
	}
	if _, err := scheduler.NewJob(
		gocron.WeeklyJob(1, gocron.NewWeekdays(time.Monday), gocron.NewAtTimes(gocron.NewAtTime(0, 0, 0))),
		gocron.NewTask(func() {
			resetMissions(progressionService, models.FrequencyWeekly)
		}),
	); err != nil {
		log.Fatalf("Failed to schedule weekly mission reset: %v", err)
	}
	scheduler.Start()

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()

	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	router.POST("/auth/login", authHandler.Login)

	protected := router.Group("/api")
	protected.Use(middleware.AuthMiddleware(jwtService))
	protected.Use(middleware.RateLimitMiddleware(redisService, cfg.RateLimitPlays))
	{
		protected.GET("/ws", wsHandler.HandleWebSocket)

		wallet := protected.Group("/wallet")
		{
			wallet.GET("", walletHandler.GetWallet)
			wallet.POST("/daily", walletHandler.ClaimDaily)
			wallet.POST("/deposit", walletHandler.Deposit)
			wallet.POST("/withdraw", walletHandler.Withdraw)
			wallet.GET("/transactions", walletHandler.GetTransactions)
		}

		gamesGroup := protected.Group("/games")
		{
			gamesGroup.GET("", gameHandler.ListGames)
			gamesGroup.GET("/rounds", gameHandler.GetRounds)
			gamesGroup.POST("/:name/play", gameHandler.Play)
		}

		blackjackGroup := protected.Group("/blackjack")
		{
			blackjackGroup.GET("", blackjackHandler.GetTable)
			blackjackGroup.POST("/start", blackjackHandler.Start)
			blackjackGroup.POST("/hit", blackjackHandler.Hit)
			blackjackGroup.POST("/double", blackjackHandler.Double)
			blackjackGroup.POST("/stand", blackjackHandler.Stand)
		}

		protected.GET("/profile", progressionHandler.GetProfile)
		protected.GET("/achievements", progressionHandler.GetAchievements)

		missions := protected.Group("/missions")
		{
			missions.GET("", progressionHandler.GetMissions)
			missions.POST("/:code/claim", progressionHandler.ClaimMission)
		}

		protected.GET("/leaderboard", gameHandler.GetLeaderboard)
	}

	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func resetMissions(progressionService *services.ProgressionService, frequency string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cleared, err := progressionService.ResetMissions(ctx, frequency)
	if err != nil {
		log.Printf("Failed to reset %s missions: %v", frequency, err)
		return
	}
	log.Printf("Reset %s missions for %d user rows", frequency, cleared)
}
