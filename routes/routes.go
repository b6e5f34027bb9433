package routes

import (
	"net/http"
	"time"

	"taskpilot/handlers"
	"taskpilot/middleware"
	"taskpilot/models"
	"taskpilot/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterAuthRoutes registers registration, login and profile endpoints.
func RegisterAuthRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/auth")
	{
		api.POST("/register", hb.Auth.RegisterHandler)
		api.POST("/login", hb.Auth.LoginHandler)

		// Protected routes (Require Authentication)
		api.Use(middleware.JWTAuthMiddleware(hb.UserRepo))
		api.GET("/me", hb.Auth.MeHandler)
		api.PUT("/fcm-token", hb.Auth.UpdateFCMTokenHandler)
	}
}

// RegisterUserRoutes registers user management endpoints for managers.
func RegisterUserRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/users")
	{
		api.Use(middleware.JWTAuthMiddleware(hb.UserRepo))
		api.Use(middleware.RequireRole(models.RoleManager))
		api.GET("", hb.Users.ListUsersHandler)
		api.GET("/:id", hb.Users.GetUserHandler)
		api.DELETE("/:id", hb.Users.DeactivateUserHandler)
	}
}

// RegisterAccountRoutes registers work-account endpoints. Reads are open to
// both roles; writes are manager-only.
func RegisterAccountRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/accounts")
	{
		api.Use(middleware.JWTAuthMiddleware(hb.UserRepo))
		api.GET("", hb.Accounts.ListAccountsHandler)
		api.GET("/:id", hb.Accounts.GetAccountHandler)

		managed := api.Group("")
		managed.Use(middleware.RequireRole(models.RoleManager))
		managed.POST("", hb.Accounts.CreateAccountHandler)
		managed.PATCH("/:id", hb.Accounts.UpdateAccountHandler)
		managed.DELETE("/:id", hb.Accounts.DeactivateAccountHandler)
	}
}

// RegisterSessionRoutes registers work-session lifecycle endpoints.
func RegisterSessionRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/sessions")
	{
		api.Use(middleware.JWTAuthMiddleware(hb.UserRepo))
		api.POST("/start", hb.Sessions.StartSessionHandler)
		api.POST("/:id/stop", hb.Sessions.StopSessionHandler)
		api.GET("/active", hb.Sessions.ListActiveSessionsHandler)
		api.GET("/:id", hb.Sessions.GetSessionHandler)
		api.GET("", hb.Sessions.ListSessionsHandler)
	}
}

// RegisterPaymentRoutes registers payment endpoints. Generation, settlement
// and export are manager-only; listings are role-scoped in the service.
func RegisterPaymentRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/payments")
	{
		api.Use(middleware.JWTAuthMiddleware(hb.UserRepo))
		api.GET("", hb.Payments.ListPaymentsHandler)

		managed := api.Group("")
		managed.Use(middleware.RequireRole(models.RoleManager))
		managed.POST("/generate", hb.Payments.GeneratePaymentHandler)
		managed.GET("/pending", hb.Payments.PendingPaymentsHandler)
		managed.GET("/export", hb.Payments.ExportPaymentsHandler)
		managed.POST("/:id/mark-paid", hb.Payments.MarkPaidHandler)
		managed.POST("/:id/cancel", hb.Payments.CancelPaymentHandler)

		api.GET("/:id", hb.Payments.GetPaymentHandler)
	}
}

// RegisterSubmissionRoutes registers task-submission endpoints.
func RegisterSubmissionRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/submissions")
	{
		api.Use(middleware.JWTAuthMiddleware(hb.UserRepo))
		api.POST("", hb.Submissions.CreateSubmissionHandler)
		api.GET("", hb.Submissions.ListSubmissionsHandler)
		api.GET("/:id", hb.Submissions.GetSubmissionHandler)
		api.POST("/:id/review", middleware.RequireRole(models.RoleManager), hb.Submissions.ReviewSubmissionHandler)
	}
}

// RegisterStorageRoutes registers the standalone file-upload endpoint.
func RegisterStorageRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/storage")
	{
		api.Use(middleware.JWTAuthMiddleware(hb.UserRepo))
		api.POST("/upload", hb.Storage.UploadFileHandler)
	}
}

// RegisterAuditRoutes registers the manager-only audit log endpoint.
func RegisterAuditRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/audit")
	{
		api.Use(middleware.JWTAuthMiddleware(hb.UserRepo))
		api.Use(middleware.RequireRole(models.RoleManager))
		api.GET("", hb.Audit.ListAuditHandler)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, utils.GetHealthStatus())
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(utils.ErrorHandler())
	r.Use(middleware.RateLimitMiddleware())

	RegisterAuthRoutes(r, hb)
	RegisterUserRoutes(r, hb)
	RegisterAccountRoutes(r, hb)
	RegisterSessionRoutes(r, hb)
	RegisterPaymentRoutes(r, hb)
	RegisterSubmissionRoutes(r, hb)
	RegisterStorageRoutes(r, hb)
	RegisterAuditRoutes(r, hb)
	RegisterHealthRoute(r)
}
