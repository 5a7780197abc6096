package handlers

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"findhome/internal/auth"
	"findhome/internal/logging"
	"findhome/internal/media"
	"findhome/internal/metrics"
	"findhome/internal/repository"
	"findhome/internal/services"
)

// RouterOptions carries the collaborators of the HTTP surface
type RouterOptions struct {
	DB             *gorm.DB
	Media          media.Store
	Revoker        auth.TokenRevoker
	Metrics        *metrics.Metrics
	AllowedOrigins []string
	SecureCookie   bool
}

// NewRouter wires repositories, services and handlers into a gin engine
func NewRouter(opts RouterOptions) *gin.Engine {
	repo := repository.NewRepository(opts.DB)
	policy := services.NewAccessPolicy(repo)
	listingService := services.NewListingService(repo, policy, opts.Media)
	adminService := services.NewAdminService(repo, policy, listingService)

	authenticator := auth.NewAuthenticator(opts.DB, opts.Revoker)
	authHandler := NewAuthHandler(services.NewAuthService(repo), authenticator, opts.Metrics, opts.SecureCookie)
	homeHandler := NewHomeHandler(services.NewSearchService(repo), services.NewDashboardService(repo, policy, adminService))
	listingHandler := NewListingHandler(listingService, opts.Metrics)
	interactionHandler := NewInteractionHandler(
		services.NewInteractionService(repo, policy),
		services.NewChatService(repo, policy),
		opts.Metrics,
	)
	adminHandler := NewAdminHandler(adminService, opts.Metrics)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(logging.GinMiddleware())

	if len(opts.AllowedOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     opts.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
			ExposeHeaders:    []string{"Content-Length", "Location"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	if opts.Metrics != nil {
		router.Use(opts.Metrics.Middleware())
		router.GET("/metrics", gin.WrapH(opts.Metrics.Handler()))
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	router.GET("/", homeHandler.Search)
	router.GET("/register/", authHandler.RegisterForm)
	router.POST("/register/", authHandler.Register)
	router.GET("/login/", authHandler.LoginForm)
	router.POST("/login/", authHandler.Login)

	optional := router.Group("/")
	optional.Use(authenticator.OptionalAuth())
	{
		optional.GET("/logout/", authHandler.Logout)
		optional.POST("/logout/", authHandler.Logout)
		optional.GET("/listing/:id/", listingHandler.Detail)
	}

	protected := router.Group("/")
	protected.Use(authenticator.AuthMiddleware())
	{
		protected.GET("/me/", authHandler.Me)
		protected.GET("/dashboard/", homeHandler.Dashboard)
		protected.GET("/create-listing/", listingHandler.CreateForm)
		protected.POST("/create-listing/", listingHandler.Create)

		protected.POST("/listing/:id/save/", interactionHandler.ToggleSave)
		protected.POST("/listing/:id/interest/", interactionHandler.ShowInterest)
		protected.POST("/listing/:id/comment/", interactionHandler.AddComment)
		protected.POST("/listing/:id/update-status/", listingHandler.UpdateStatus)
		protected.POST("/listing/:id/report/", listingHandler.Report)
		protected.GET("/listing/:id/chat/", interactionHandler.Chat)
		protected.POST("/listing/:id/send-message/", interactionHandler.SendMessage)

		protected.POST("/interest/:id/read/", interactionHandler.MarkInterestRead)
	}

	admin := router.Group("/admin")
	admin.Use(authenticator.AuthMiddleware())
	admin.Use(adminHandler.AdminMiddleware())
	{
		admin.POST("/report/:id/resolve/", adminHandler.ResolveReport)
		admin.POST("/toggle-user/:id/", adminHandler.ToggleUser)
		admin.POST("/listing/:id/toggle-reported/", adminHandler.ToggleListingReported)
		admin.GET("/logs/", adminHandler.GetAdminLogs)
	}

	return router
}
