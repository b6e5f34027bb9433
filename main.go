package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"taskpilot/config"
	"taskpilot/database"
	accountRepoPkg "taskpilot/database/repository/account"
	auditRepoPkg "taskpilot/database/repository/audit"
	paymentRepoPkg "taskpilot/database/repository/payment"
	sessionRepoPkg "taskpilot/database/repository/session"
	submissionRepoPkg "taskpilot/database/repository/submission"
	userRepoPkg "taskpilot/database/repository/user"
	"taskpilot/handlers"
	"taskpilot/routes"
	accountService "taskpilot/services/account"
	"taskpilot/services/audit"
	"taskpilot/services/notification"
	paymentService "taskpilot/services/payment"
	sessionService "taskpilot/services/session"
	submissionService "taskpilot/services/submission"
	userService "taskpilot/services/user"
	"taskpilot/utils"
	"taskpilot/worker"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
)

func main() {
	config.LoadConfig()
	utils.InitializeLogger()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitCache()
	utils.InitAuthCache()
	utils.FirebaseInit()

	storageService, err := utils.Cloudinary()
	if err != nil {
		logger.Sugar().Fatalf("main: failed to initialize cloudinary storage service: %v", err)
	}

	// Create the Gin router.
	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(gin.Logger())

	// repositories.
	userRepo := userRepoPkg.NewMongoUserRepo()
	accountRepo := accountRepoPkg.NewMongoAccountRepo()
	sessionRepo := sessionRepoPkg.NewMongoSessionRepo()
	paymentRepo := paymentRepoPkg.NewMongoPaymentRepo()
	submissionRepo := submissionRepoPkg.NewMongoSubmissionRepo()
	auditRepo := auditRepoPkg.NewMongoAuditRepo()

	// services.
	auditRecorder := &audit.DefaultRecorder{Repo: auditRepo}
	notifier := notification.NewQueueNotifier()

	usersSvc := &userService.DefaultUserService{
		Users: userRepo,
		Audit: auditRecorder,
	}
	accountsSvc := &accountService.DefaultAccountService{
		Accounts: accountRepo,
		Users:    userRepo,
		Sessions: sessionRepo,
		Audit:    auditRecorder,
	}
	sessionsSvc := &sessionService.DefaultSessionService{
		Sessions: sessionRepo,
		Accounts: accountRepo,
		Users:    userRepo,
		Audit:    auditRecorder,
	}
	paymentsSvc := &paymentService.DefaultPaymentService{
		Payments: paymentRepo,
		Sessions: sessionRepo,
		Users:    userRepo,
		Audit:    auditRecorder,
		Notifier: notifier,
	}
	submissionsSvc := &submissionService.DefaultSubmissionService{
		Submissions: submissionRepo,
		Accounts:    accountRepo,
		Users:       userRepo,
		Storage:     storageService,
		Audit:       auditRecorder,
		Notifier:    notifier,
	}

	// Background push delivery.
	worker.InitPushWorker(&notification.FCMSender{Users: userRepo})

	// Assemble the handler bundle.
	handlerBundle := &handlers.HandlerBundle{
		UserRepo:    userRepo,
		Auth:        &handlers.AuthHandler{Users: usersSvc},
		Users:       &handlers.UserHandler{Users: usersSvc},
		Accounts:    &handlers.AccountHandler{Accounts: accountsSvc},
		Sessions:    &handlers.SessionHandler{Sessions: sessionsSvc},
		Payments:    &handlers.PaymentHandler{Payments: paymentsSvc},
		Submissions: &handlers.SubmissionHandler{Submissions: submissionsSvc},
		Audit:       &handlers.AuditHandler{Audit: auditRecorder},
		Storage:     &handlers.StorageHandler{Storage: storageService},
	}

	routes.RegisterRoutes(router, handlerBundle)

	utils.StartHealthMonitor(
		[]*redis.Client{utils.GetCacheClient(), utils.GetAuthCacheClient()},
		database.MongoClient,
	)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
