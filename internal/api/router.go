package api

import (
	"github.com/gin-gonic/gin"
	"github.com/renderbase/renderbase/internal/api/cron"
	v1 "github.com/renderbase/renderbase/internal/api/v1"
	"github.com/renderbase/renderbase/internal/config"
	"github.com/renderbase/renderbase/internal/logger"
	"github.com/renderbase/renderbase/internal/rest/middleware"
)

type Handlers struct {
	Health       *v1.HealthHandler
	Wallet       *v1.WalletHandler
	Subscription *v1.SubscriptionHandler
	Plan         *v1.PlanHandler
	RenderJob    *v1.RenderJobHandler
	CreditReset  *cron.CreditResetHandler
}

func NewRouter(handlers Handlers, cfg *config.Configuration, logger *logger.Logger) *gin.Engine {
	router := gin.New()

	router.Use(
		gin.Recovery(),
		middleware.RequestIDMiddleware,
		middleware.CORSMiddleware,
		middleware.SentryMiddleware(cfg),
		middleware.ErrorHandler(),
	)

	router.GET("/health", handlers.Health.Health)

	// Webhooks carry their own signature verification, no account context
	router.POST("/webhooks/billing", handlers.Subscription.HandleWebhook)

	v1Group := router.Group("/v1", middleware.AccountContextMiddleware)
	registerV1Routes(v1Group, handlers)

	cronGroup := router.Group("/cron")
	registerCronRoutes(cronGroup, handlers)

	return router
}

func registerV1Routes(router *gin.RouterGroup, handlers Handlers) {
	wallet := router.Group("/wallet")
	{
		wallet.GET("/balance", handlers.Wallet.GetBalance)
		wallet.GET("/transactions", handlers.Wallet.ListTransactions)
	}

	jobs := router.Group("/jobs")
	{
		jobs.POST("", handlers.RenderJob.SubmitJob)
	}

	plans := router.Group("/plans")
	{
		plans.GET("", handlers.Plan.ListPlans)
		plans.GET("/:id", handlers.Plan.GetPlan)
	}

	subscriptions := router.Group("/subscriptions")
	{
		subscriptions.GET("", handlers.Subscription.ListSubscriptions)
		subscriptions.GET("/:id", handlers.Subscription.GetSubscription)
	}

	admin := router.Group("/admin")
	{
		admin.POST("/plans", handlers.Plan.CreatePlan)
		admin.PUT("/plans/:id", handlers.Plan.UpdatePlan)
		admin.POST("/wallet/:direction", handlers.Wallet.AdjustCredits)
	}
}

func registerCronRoutes(router *gin.RouterGroup, handlers Handlers) {
	router.POST("/credits/reset", handlers.CreditReset.ResetMonthlyCredits)
}
