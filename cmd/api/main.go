package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"QuakeWatchAPI/internal/alerting"
	"QuakeWatchAPI/internal/config"
	"QuakeWatchAPI/internal/database"
	"QuakeWatchAPI/internal/feed"
	"QuakeWatchAPI/internal/handler"
	"QuakeWatchAPI/internal/logger"
	"QuakeWatchAPI/internal/mqtt"
	"QuakeWatchAPI/internal/notify"
	"QuakeWatchAPI/internal/repository"
	"QuakeWatchAPI/internal/server"
	"QuakeWatchAPI/internal/service"
	"QuakeWatchAPI/internal/websocket"
)

func main() {
	// 1. Load Config
	cfg, err := config.Load()
	if err != nil {
		// Fallback logger since main logger isn't ready
		panic("Failed to load configuration: " + err.Error())
	}

	// 2. Initialize Logger
	log, err := logger.New(logger.Config{
		Level:       cfg.Logging.Level,
		Mode:        cfg.Logging.Mode,
		LogFilePath: cfg.Logging.FilePath,
		UseColors:   cfg.Logging.UseColors,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer log.Close()

	if err := cfg.Validate(); err != nil {
		log.Fatal("Configuration validation failed: %v", err)
	}

	cfg.Print()
	log.Info("Starting QuakeWatch API Server")

	// 3. Database Connection
	db, err := database.New(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	log.Info("Database connected successfully")

	// 4. Redis Connection
	redisClient, err := database.NewRedis(&cfg.Redis)
	if err != nil {
		log.Fatal("Failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	log.Info("Redis connected successfully")

	// 5. Initialize Repositories
	zoneRepo := repository.NewZoneRepository(db.DB)
	settingsRepo := repository.NewSettingsRepository(db.DB)
	alertRepo := repository.NewAlertRepository(db.DB)

	// 6. Initialize MQTT Client
	mqttClient, err := mqtt.NewClient(mqtt.ClientConfig{
		MQTT:   &cfg.MQTT,
		Logger: log,
	})
	if err != nil {
		log.Fatal("Failed to create MQTT client: %v", err)
	}
	defer func(mqttClient *mqtt.Client) {
		err := mqttClient.Disconnect()
		if err != nil {
			log.Error("Failed to disconnect MQTT: %v", err)
		}
	}(mqttClient)

	if err := mqttClient.Connect(); err != nil {
		log.Fatal("Failed to connect to MQTT broker: %v", err)
	}

	// 7. Initialize Services
	zoneService := service.NewZoneService(zoneRepo, log)

	settingsService, err := service.NewSettingsService(context.Background(), settingsRepo, log)
	if err != nil {
		log.Fatal("Failed to load alert settings: %v", err)
	}

	aiService := service.NewAIService(cfg.AI.BaseURL, cfg.AI.APIKey, cfg.AI.Model, cfg.AI.RequestTimeout, log)
	reportService := service.NewReportService(alertRepo, log)

	// 8. Websocket Hub (the visual notification channel)
	hub := websocket.NewHub(log)
	hubCtx, hubCancel := context.WithCancel(context.Background())
	defer hubCancel()
	go hub.Run(hubCtx)

	// 9. Notification Dispatcher (tone + voice over MQTT)
	dispatcher := notify.NewDispatcher(
		notify.NewMQTTSounder(mqttClient),
		notify.NewMQTTSpeaker(mqttClient),
		cfg.Alerting.SeverityFloor,
		log,
	)

	// 10. Quake Monitor
	feedClient := feed.NewClient(cfg.Feed.BaseURL, cfg.Feed.RequestTimeout, log)
	raisedStore := alerting.NewRaisedStore(redisClient, cfg.Alerting.RaisedTTL, log)

	monitor := service.NewMonitor(service.MonitorConfig{
		FeedClient:      feedClient,
		ZoneService:     zoneService,
		SettingsService: settingsService,
		AlertRepo:       alertRepo,
		RaisedStore:     raisedStore,
		Dispatcher:      dispatcher,
		Hub:             hub,
		Logger:          log,
		RefreshInterval: cfg.Feed.RefreshInterval,
		RecencyWindowMs: cfg.Alerting.RecencyWindow.Milliseconds(),
		Window:          feed.ParseWindow(cfg.Feed.Window),
	})
	monitor.Start()
	defer monitor.Shutdown()

	// 11. Initialize Handlers
	zoneHandler := handler.NewZoneHandler(zoneService, monitor, log)
	eventHandler := handler.NewEventHandler(monitor, log)
	alertHandler := handler.NewAlertHandler(monitor, alertRepo, log)
	settingsHandler := handler.NewSettingsHandler(settingsService, monitor, hub, log)
	aiHandler := handler.NewAIHandler(aiService, monitor, log)
	reportHandler := handler.NewReportHandler(reportService, monitor, log)
	authHandler := handler.NewAuthHandler(&cfg.Security, log)
	healthHandler := handler.NewHealthHandler(db, raisedStore, mqttClient, monitor, log)

	// 12. Start HTTP Server
	srv := server.New(cfg, log)
	srv.RegisterHandlers(
		zoneHandler,
		eventHandler,
		alertHandler,
		settingsHandler,
		aiHandler,
		reportHandler,
		authHandler,
		healthHandler,
		hub,
	)

	go func() {
		if err := srv.Start(); err != nil {
			log.Fatal("Server failed: %v", err)
		}
	}()

	log.Info("API server ready on http://%s:%d", cfg.Server.Host, cfg.Server.Port)

	// 13. Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Warn("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown error: %v", err)
	}

	log.Info("Shutdown complete")
}
