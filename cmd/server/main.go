package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	budgetapp "github.com/expenseflow/backend/internal/application/budget"
	expenseapp "github.com/expenseflow/backend/internal/application/expense"
	segmentapp "github.com/expenseflow/backend/internal/application/segment"
	workflowapp "github.com/expenseflow/backend/internal/application/workflow"
	"github.com/expenseflow/backend/internal/infrastructure/cache"
	"github.com/expenseflow/backend/internal/infrastructure/config"
	"github.com/expenseflow/backend/internal/infrastructure/eventbus"
	"github.com/expenseflow/backend/internal/infrastructure/logger"
	"github.com/expenseflow/backend/internal/infrastructure/persistence"
	"github.com/expenseflow/backend/internal/infrastructure/scheduler"
	"github.com/expenseflow/backend/internal/interfaces/http/handler"
	"github.com/expenseflow/backend/internal/interfaces/http/middleware"
	"github.com/expenseflow/backend/internal/interfaces/http/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log := logger.New(&cfg.Log)
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting ExpenseFlow backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	gormLog := logger.NewGormLogger(log, logger.GormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()

	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to run migrations", zap.Error(err))
	}
	log.Info("Database connected and migrated")

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer func() {
		_ = redisClient.Close()
	}()
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.Fatal("Failed to connect to redis", zap.Error(err))
	}
	log.Info("Redis connected", zap.String("addr", cfg.Redis.Addr()))

	// Repositories
	expenseRepo := persistence.NewGormExpenseRepository(db.DB)
	workflowRepo := persistence.NewGormWorkflowRepository(db.DB)
	actionRepo := persistence.NewGormActionRepository(db.DB)
	historyRepo := persistence.NewGormHistoryRepository(db.DB)
	commentRepo := persistence.NewGormCommentRepository(db.DB)
	budgetRepo := persistence.NewGormBudgetRepository(db.DB)
	thresholdRepo := persistence.NewGormThresholdRepository(db.DB)
	alertRepo := persistence.NewGormAlertRepository(db.DB)
	segmentRepo := persistence.NewGormSegmentRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)

	// Shared infrastructure
	budgetCache := cache.NewRedisBudgetCache(redisClient, cfg.Cache.TTL)
	events := eventbus.NewInProcessBus(log)
	txScope := persistence.NewGormTransactionScope(db.DB)

	// Application services
	budgetService := budgetapp.NewService(budgetRepo, budgetCache, log)
	thresholdService := budgetapp.NewThresholdService(thresholdRepo, budgetRepo, log)
	alertService := budgetapp.NewAlertService(alertRepo, thresholdRepo, budgetRepo, log)
	tracker := budgetapp.NewConsumptionTracker(userRepo, budgetCache, log)
	expenseService := expenseapp.NewService(txScope, expenseRepo, segmentRepo, tracker, events, log)
	workflowService := workflowapp.NewService(workflowRepo, log)
	actionService := workflowapp.NewActionService(actionRepo, workflowRepo, expenseRepo, userRepo, log)
	historyService := workflowapp.NewHistoryService(historyRepo)
	commentService := workflowapp.NewCommentService(commentRepo, expenseRepo)
	segmentService := segmentapp.NewService(segmentRepo, log)

	// Background alert sweep
	if cfg.AlertScheduler.Enabled {
		alertScheduler := scheduler.NewAlertScheduler(alertService, cfg.AlertScheduler.CheckInterval, log)
		alertScheduler.Start()
		defer alertScheduler.Stop()
		log.Info("Alert scheduler started",
			zap.Duration("check_interval", cfg.AlertScheduler.CheckInterval),
		)
	}

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	middleware.SetupValidator()

	engine := router.New(log, router.Handlers{
		Expense:   handler.NewExpenseHandler(expenseService),
		Workflow:  handler.NewWorkflowHandler(workflowService),
		Action:    handler.NewActionHandler(actionService),
		History:   handler.NewHistoryHandler(historyService),
		Comment:   handler.NewCommentHandler(commentService),
		Budget:    handler.NewBudgetHandler(budgetService),
		Threshold: handler.NewThresholdHandler(thresholdService),
		Alert:     handler.NewAlertHandler(alertService),
		Segment:   handler.NewSegmentHandler(segmentService),
	})

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
