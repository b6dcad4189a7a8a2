package router

import (
	"context"
	"time"

	"budget/api"
	"budget/config"
	_ "budget/docs"
	"budget/middleware"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

const (
	loginAttempts = 10
	loginWindow   = time.Minute
)

// SetupRouter wires every route. ctx bounds background work started here.
func SetupRouter(ctx context.Context, cfg *config.Config, deps api.Deps) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.GET("/health", api.NewHealthHandler(deps).Check)

	authHandler := api.NewAuthHandler(deps)
	auth := r.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", middleware.LoginRateLimit(ctx, loginAttempts, loginWindow), authHandler.Login)
		auth.POST("/logout", authHandler.Logout)
	}

	authorized := r.Group("")
	authorized.Use(deps.Auth.Middleware())
	{
		authorized.GET("/auth/profile", authHandler.Profile)
		authorized.PUT("/auth/password", authHandler.ChangePassword)

		transactionHandler := api.NewTransactionHandler(deps)
		transactions := authorized.Group("/transactions")
		{
			transactions.GET("", transactionHandler.List)
			transactions.POST("", transactionHandler.Create)
			transactions.PUT("/:id", transactionHandler.Update)
			transactions.DELETE("/:id", transactionHandler.Delete)
		}

		balanceHandler := api.NewBalanceHandler(deps)
		balance := authorized.Group("/balance")
		{
			balance.GET("/:month", balanceHandler.Get)
			balance.POST("/:month", balanceHandler.Set)
			balance.PUT("/:month", balanceHandler.Update)
			balance.POST("/:month/recalculate", balanceHandler.Recalculate)
		}

		categoryHandler := api.NewCategoryHandler(deps)
		categories := authorized.Group("/categories")
		{
			categories.GET("", categoryHandler.List)
			categories.POST("", categoryHandler.Create)
			categories.PUT("/:id", categoryHandler.Update)
			categories.DELETE("/:id", categoryHandler.Delete)
		}

		exportHandler := api.NewExportHandler(deps)
		export := authorized.Group("/export")
		{
			export.GET("/csv", exportHandler.ExportCSV)
			export.GET("/xlsx", exportHandler.ExportXLSX)
			export.GET("/json", exportHandler.ExportJSON)
		}

		authorized.GET("/statistics/summary", api.NewSummaryHandler(deps).Summary)

		reportHandler := api.NewReportHandler(deps)
		authorized.POST("/reports/:month/email", reportHandler.EmailMonthly)
	}

	return r
}

// CORSMiddleware answers preflight requests and echoes allowed origins. An empty
// list or "*" allows any origin.
func CORSMiddleware(allowed []string) gin.HandlerFunc {
	allowAll := len(allowed) == 0
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			allowAll = true
		}
		set[o] = true
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" && (allowAll || set[origin]) {
			h := c.Writer.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Vary", "Origin")
			h.Set("Access-Control-Allow-Credentials", "true")
			h.Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, Accept, Origin, Cache-Control, X-Requested-With, X-Request-ID")
			h.Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")
			h.Set("Access-Control-Expose-Headers", "X-Request-ID, Content-Disposition")
		}

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
