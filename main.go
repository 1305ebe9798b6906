// File: fixly/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fixly/config"
	"fixly/cron"
	"fixly/database"
	bookingRepo "fixly/database/repository/booking"
	professionalRepo "fixly/database/repository/professional"
	"fixly/handlers"
	"fixly/middleware"
	"fixly/routes"
	"fixly/services/dispatch"
	"fixly/services/notification"
	"fixly/services/subscription"
	"fixly/services/tasks"
	"fixly/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitCache()
	utils.FirebaseInit()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(cors.Default())
	router.Use(middleware.RateLimitMiddleware())

	// repositories.
	bookings := bookingRepo.NewMongoBookingRepo()
	professionals := professionalRepo.NewMongoProfessionalRepo()

	// push delivery queue.
	redisOpt := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}
	asynqClient := asynq.NewClient(redisOpt)
	defer asynqClient.Close()
	pushWorker := cron.InitPushWorker()

	// services.
	registry := subscription.NewRegistry(professionals)
	hub := notification.NewHub(utils.GetCacheClient(), logger)
	go hub.Run(ctx)

	fanout := notification.NewDefaultFanoutService(hub, registry, tasks.NewEnqueuer(asynqClient), logger)
	visibility := dispatch.NewVisibility(
		config.AppConfig.DispatchNearRadiusKm,
		time.Duration(config.AppConfig.DispatchWidenAfterMin)*time.Minute,
	)
	dispatchService := dispatch.NewDefaultDispatchService(
		bookings, professionals, registry, fanout, visibility, logger)

	go dispatch.StartRescan(ctx, dispatchService,
		time.Duration(config.AppConfig.DispatchRescanSeconds)*time.Second, logger)

	utils.StartHealthMonitor(utils.GetCacheClient(), database.MongoClient)

	// handlers and routes.
	dispatchHandler := handlers.NewDispatchHandler(dispatchService, bookings, logger)
	subscriptionHandler := handlers.NewSubscriptionHandler(registry, logger)
	streamHandler := handlers.NewStreamHandler(hub, logger)
	routes.RegisterRoutes(router, dispatchHandler, subscriptionHandler, streamHandler)

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

	cancel()
	pushWorker.Shutdown()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
