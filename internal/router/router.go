// internal/router/router.go
package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	gocache "github.com/patrickmn/go-cache"
	"gorm.io/gorm"

	"github.com/vatsal2312/TinyAstro/internal/config"
	"github.com/vatsal2312/TinyAstro/internal/handlers"
	"github.com/vatsal2312/TinyAstro/internal/middleware"
	"github.com/vatsal2312/TinyAstro/internal/services"
	"github.com/vatsal2312/TinyAstro/internal/utils"
)

func Initialize(db *gorm.DB, cfg *config.Config) *gin.Engine {
	// Initialize services
	collectionService := services.NewCollectionService(db)
	rewardService := services.NewRewardService(db)
	stakingService := services.NewStakingService(db, cfg, collectionService, rewardService)
	rentalService := services.NewRentalService(db, cfg, collectionService)
	leaseService := services.NewLeaseService(db, cfg, collectionService)
	paymentService := services.NewPaymentService(db, cfg)
	adminService := services.NewAdminService(db, cfg)
	authService := services.NewAuthService(db, cfg)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	tokenHandler := handlers.NewTokenHandler(collectionService, stakingService, leaseService)
	stakingHandler := handlers.NewStakingHandler(stakingService, rewardService)
	rentalHandler := handlers.NewRentalHandler(rentalService)
	leaseHandler := handlers.NewLeaseHandler(leaseService)
	paymentHandler := handlers.NewPaymentHandler(paymentService)
	adminHandler := handlers.NewAdminHandler(adminService, leaseService, paymentService, collectionService)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	// Short-lived cache for the hot read endpoints
	readCache := gocache.New(5*time.Second, time.Minute)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS())
	r.Use(middleware.GeneralRateLimit())

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	// API v1 routes
	v1 := r.Group("/v1")
	{
		// Authentication routes
		auth := v1.Group("/auth")
		auth.Use(middleware.AuthRateLimit())
		{
			auth.POST("/wallet", authHandler.WalletToken)
			auth.POST("/login", authHandler.Login)
			auth.GET("/me", middleware.AuthRequired(), authHandler.Me)
		}

		// Collection routes (public reads)
		tokens := v1.Group("/tokens")
		{
			tokens.GET("", middleware.Cache(readCache, 5*time.Second), tokenHandler.List)
			tokens.GET("/:tokenId", tokenHandler.Get)
			tokens.GET("/:tokenId/locked", tokenHandler.Locked)
		}

		// Staking routes
		staking := v1.Group("/staking")
		{
			staking.GET("/status/:address", middleware.Cache(readCache, 5*time.Second), stakingHandler.Status)
			staking.GET("/rewards/:address", stakingHandler.RewardBalance)

			protected := staking.Group("")
			protected.Use(middleware.AuthRequired())
			{
				protected.POST("/stake", stakingHandler.Stake)
				protected.POST("/unstake", stakingHandler.Unstake)
				protected.POST("/claim", stakingHandler.Claim)
			}
		}

		// Rental pass routes
		rentals := v1.Group("/rentals")
		{
			rentals.GET("/status/:address", rentalHandler.Status)
			rentals.POST("", middleware.AuthRequired(), rentalHandler.Rent)
		}

		// Lease marketplace routes
		leases := v1.Group("/leases")
		{
			leases.GET("", middleware.Cache(readCache, 5*time.Second), leaseHandler.ListOpen)
			leases.GET("/:tokenId", leaseHandler.Status)

			protected := leases.Group("")
			protected.Use(middleware.AuthRequired())
			{
				protected.POST("", leaseHandler.Create)
				protected.PUT("/:tokenId", leaseHandler.Update)
				protected.DELETE("/:tokenId", leaseHandler.Cancel)
				protected.POST("/sign", leaseHandler.Sign)
			}
		}

		// Payment routes
		payments := v1.Group("/payments")
		payments.Use(middleware.AuthRequired())
		{
			payments.POST("/deposit", paymentHandler.CreateDeposit)
			payments.POST("/deposit/confirm", paymentHandler.ConfirmDeposit)
			payments.GET("/balance", paymentHandler.Balance)
			payments.GET("/history", paymentHandler.History)
		}

		// Admin routes
		admin := v1.Group("/admin")
		admin.Use(middleware.AuthRequired(), middleware.AdminRequired())
		{
			admin.GET("/dashboard", adminHandler.Dashboard)
			admin.GET("/platform-state", adminHandler.GetPlatformState)
			admin.GET("/events", adminHandler.ListEvents)

			admin.GET("/emission-rates", adminHandler.ListEmissionRates)
			admin.PUT("/emission-rates", adminHandler.SetEmissionRate)
			admin.PUT("/rarities", adminHandler.SetRarities)
			admin.PUT("/owners", adminHandler.SetOwner)

			admin.GET("/rental-durations", adminHandler.ListRentalDurations)
			admin.POST("/rental-durations", adminHandler.AddRentalDuration)
			admin.DELETE("/rental-durations/:days", adminHandler.RemoveRentalDuration)

			admin.PUT("/earning-fraction", adminHandler.SetEarningFraction)
			admin.PUT("/max-lease-duration", adminHandler.SetMaxLeaseDuration)
			admin.PUT("/staking-pause", adminHandler.SetStakingPaused)
			admin.POST("/withdraw-fees", adminHandler.WithdrawFees)
			admin.POST("/credit", adminHandler.Credit)
		}
	}

	return r
}
