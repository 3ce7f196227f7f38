package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/Ashhhad/kiosk-flow-master/internal/catalog"
	"github.com/Ashhhad/kiosk-flow-master/internal/checkout"
	"github.com/Ashhhad/kiosk-flow-master/internal/events"
	"github.com/Ashhhad/kiosk-flow-master/internal/gateway"
	"github.com/Ashhhad/kiosk-flow-master/internal/handler"
	"github.com/Ashhhad/kiosk-flow-master/internal/repository"
	"github.com/Ashhhad/kiosk-flow-master/internal/state"
	"github.com/Ashhhad/kiosk-flow-master/pkg/config"
	"github.com/Ashhhad/kiosk-flow-master/pkg/middleware"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger.Info("Service configuration",
		zap.String("port", cfg.Port),
		zap.String("kafka_brokers", cfg.KafkaBrokers),
		zap.String("session_table", cfg.SessionTableName),
		zap.Duration("inactivity_timeout", cfg.InactivityTimeout))

	// Read-only catalog, loaded once.
	cat, err := catalog.Load(cfg.MenuPath)
	if err != nil {
		log.Fatal("Failed to load menu catalog:", err)
	}

	// Event transport.
	analytics := events.NewAnalyticsPublisher(cfg.KafkaBrokers, logger)
	defer analytics.Close()
	kds := events.NewKDSPublisher(cfg.KafkaBrokers, cfg.KDSAckTimeout, cfg.DefaultPrepMinutes, logger)
	defer kds.Close()
	queueDisplay := events.NewQueuePublisher(cfg.KafkaBrokers, logger)
	defer queueDisplay.Close()

	// State store and persistence.
	store := state.New(cfg.TaxRateBP, logger, analytics)

	localSnap, err := repository.NewLocalSnapshotStore(cfg.SnapshotPath, logger)
	if err != nil {
		log.Fatal("Failed to open local snapshot store:", err)
	}

	dynamoClient, err := repository.NewDynamoDBClient(cfg)
	if err != nil {
		log.Fatal("Failed to create DynamoDB client:", err)
	}
	sessionRepo := repository.NewSessionRepository(dynamoClient, cfg.SessionTableName)

	syncer := repository.NewSyncer(localSnap, sessionRepo, cfg.SyncDebounce, logger)
	syncer.SetCallbacks(store.SetError, store.ClearError)
	store.SetOnChange(syncer.Observe)

	// Restore offer: Load only yields fresh snapshots with cart items.
	restoreOffer, err := localSnap.Load(cfg.SnapshotTTL)
	if err != nil {
		logger.Warn("Failed to load session snapshot", zap.Error(err))
	}
	if restoreOffer != nil {
		logger.Info("Offering session restore",
			zap.String("session_id", restoreOffer.SessionID),
			zap.Int("cart_lines", len(restoreOffer.Cart)))
	}

	// Checkout pipeline and gateways.
	retries := checkout.NewRetryQueue(cfg.RetryInterval, logger)
	payments := gateway.NewMidtransProcessor(cfg.MidtransServerKey, logger)
	pos := gateway.NewHTTPCloudPOS(cfg.POSEndpoint, logger)
	printer := gateway.NewHTTPReceiptPrinter(cfg.PrinterEndpoint, logger)
	pipeline := checkout.New(store, payments, kds, pos, printer, queueDisplay, retries, analytics, cfg.DefaultPrepMinutes, logger)

	monitor := state.NewMonitor(store, state.MonitorConfig{
		Timeout:             cfg.InactivityTimeout,
		ConfirmationTimeout: cfg.ConfirmationTimeout,
		WarningThreshold:    cfg.WarningThreshold,
		Tick:                cfg.MonitorTick,
	}, logger)

	// Background workers.
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	var workers sync.WaitGroup
	for _, run := range []func(context.Context){
		monitor.Run,
		syncer.Run,
		retries.Run,
		analytics.Run,
		kds.Run,
	} {
		workers.Add(1)
		go func(run func(context.Context)) {
			defer workers.Done()
			run(workerCtx)
		}(run)
	}

	kioskHandler := handler.NewKioskHandler(store, pipeline, cat, restoreOffer, logger)

	// Setup Gin Router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(logger))
	router.Use(middleware.RequestID())

	// Routes
	v1 := router.Group("/api/v1")
	{
		v1.GET("/menu", kioskHandler.GetMenu)
		v1.GET("/state", kioskHandler.GetState)
		v1.POST("/session", kioskHandler.StartSession)
		v1.DELETE("/session", kioskHandler.CancelSession)
		v1.POST("/session/restore", kioskHandler.RestoreSession)
		v1.POST("/activity", kioskHandler.RecordActivity)
		v1.POST("/navigate", kioskHandler.Navigate)
		v1.POST("/order-type", kioskHandler.SetOrderType)
		v1.POST("/category", kioskHandler.SelectCategory)
		v1.POST("/item", kioskHandler.SelectItem)
		v1.POST("/cart/lines", kioskHandler.AddLine)
		v1.PATCH("/cart/lines/:id", kioskHandler.UpdateLine)
		v1.DELETE("/cart/lines/:id", kioskHandler.RemoveLine)
		v1.DELETE("/cart", kioskHandler.ClearCart)
		v1.POST("/checkout", kioskHandler.Checkout)
		v1.POST("/checkout/retry", kioskHandler.RetryCheckout)
		v1.GET("/health", func(c *gin.Context) {
			status := gin.H{
				"status":  "healthy",
				"service": "kiosk-service",
				"port":    cfg.Port,
			}
			if err := queueDisplay.HealthCheck(); err != nil {
				status["kafka"] = "unhealthy"
				c.JSON(503, status)
				return
			}
			status["kafka"] = "healthy"
			c.JSON(200, status)
		})
	}

	httpServer := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info("Starting HTTP server", zap.String("port", cfg.Port))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown failed", zap.Error(err))
	}

	// Push any pending snapshot before the workers stop.
	syncer.Flush(ctx)

	stopWorkers()
	workers.Wait()
	logger.Info("All workers stopped")
}
