package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/lifecheck/lifecheck/config"
	"github.com/lifecheck/lifecheck/controllers"
	"github.com/lifecheck/lifecheck/middleware"
	"github.com/lifecheck/lifecheck/services"
	"github.com/lifecheck/lifecheck/stores"
	"github.com/lifecheck/lifecheck/utils"
)

const checkinListCacheTTL = 5 * time.Minute

// SetupRouter wires routes, middlewares, stores and controllers.
func SetupRouter(db *gorm.DB) *gin.Engine {
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	userStore := stores.NewUserStore(db)
	checkinStore := stores.NewCheckInStore(db)
	directory := services.NewUserDirectory(userStore)
	tokens := utils.NewTokenService(cfg.JWTSecret, time.Duration(cfg.TokenTTLHours)*time.Hour)
	engine := services.NewCheckInEngine(userStore, checkinStore, cfg.Location())

	authController := controllers.NewAuthController(userStore, directory, tokens)
	checkinController := controllers.NewCheckInController(engine, checkinListCacheTTL)

	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.AccessLog())
	r.Use(middleware.Recovery())

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	// Attach a principal when a valid token is present; never rejects.
	// Protected groups enforce access through RequireAuth.
	r.Use(middleware.Authenticate(tokens, directory))

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware())
	authGroup.POST("/register", authController.Register)
	authGroup.POST("/login", authController.Login)
	authGroup.GET("/me", middleware.RequireAuth(), authController.Me)

	checkins := api.Group("/checkins")
	checkins.Use(middleware.RequireAuth())
	checkins.POST("", checkinController.Create)
	checkins.GET("/today", checkinController.Today)
	checkins.GET("/my", checkinController.My)
	checkins.GET("/:id", checkinController.Get)
	checkins.DELETE("/:id", checkinController.Delete)

	r.NoRoute(func(ctx *gin.Context) {
		utils.Error(ctx, http.StatusNotFound, 40400, "route not found")
	})

	return r
}
