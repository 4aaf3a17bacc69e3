package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"crypto-tracker/src/catalog"
	"crypto-tracker/src/config"
	"crypto-tracker/src/connectivity"
	"crypto-tracker/src/favorites"
	"crypto-tracker/src/interfaces"
	"crypto-tracker/src/lifecycle"
	"crypto-tracker/src/logger"
	"crypto-tracker/src/monitor"
	"crypto-tracker/src/network"
	"crypto-tracker/src/notifier"
	"crypto-tracker/src/preloader"
	"crypto-tracker/src/server"
	"crypto-tracker/src/storage"
	"crypto-tracker/src/utils"

	"github.com/joho/godotenv"
)

// -----------------------------------------------------------------------------

func main() {

	// Parse command line flags
	configPath := flag.String("config", "../../config/default.yaml", "path to config file")
	flag.Parse()

	// Optional .env for connection strings and overrides
	_ = godotenv.Load()

	// Load config from YAML file
	conf, err := config.NewConfig(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	appLogger := logger.NewLogger(conf.MConfig, conf.Name)

	// 1. Local store
	var db interfaces.IDatabase

	switch conf.Storage.DBType {
	case "postgres":
		db, err = storage.NewPostgresDB(conf.MConfig, appLogger)
	default:
		// Default to SQLite
		db, err = storage.NewAsyncSQLiteDB(conf.MConfig, appLogger)
	}

	if err != nil {
		appLogger.Critical("Failed to init db: %v", err)
	}
	if err := db.Initialize(); err != nil {
		appLogger.Critical("Failed to migrate db: %v", err)
	}
	defer db.Close()

	cleanup := storage.NewCleanupScheduler(conf.MConfig, db, appLogger)
	if err := cleanup.Start(); err != nil {
		appLogger.Critical("Failed to schedule cleanup: %v", err)
	}
	defer cleanup.Stop()

	// 2. Network stack
	var networkManager interfaces.INetworkManager = network.NewAsyncNetworkManager(conf.MConfig, appLogger)
	var catalogClient interfaces.ICatalogClient = catalog.NewCoinGeckoClient(conf.MConfig, networkManager)

	netMonitor := connectivity.NewConnectivityMonitor(conf.MConfig)

	// 3. Domain services
	favService := favorites.NewFavoritesService(conf.MConfig, db)
	history := utils.NewAlertHistory(conf.Monitor.AlertHistory)
	alertNotifier := notifier.NewAlertNotifier(conf.MConfig, history)

	// 4. Background loops
	pre := preloader.NewCryptocurrencyPreloader(conf.MConfig, catalogClient, db, netMonitor)
	priceMonitor := monitor.NewPriceChangeMonitor(conf.MConfig, catalogClient, db, favService, alertNotifier)

	controller := lifecycle.NewLifecycleController(conf.MConfig, netMonitor, pre, priceMonitor)
	pre.OnPageStored = controller.PageStored

	// 5. HTTP / WebSocket surface
	srv := server.NewAPIServer(conf.MConfig, db, catalogClient, favService, netMonitor, history, controller)
	alertNotifier.Exchanger = srv

	go func() {
		if err := srv.Start(); err != nil {
			appLogger.Critical("Server failed: %v", err)
		}
	}()

	// 6. Start the connectivity-driven lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := netMonitor.Start(ctx); err != nil {
		appLogger.Critical("Failed to start connectivity monitor: %v", err)
	}
	controller.Start()

	appLogger.Info("%s up on %s:%d", conf.Name, conf.Host, conf.Port)

	// 7. Wait for shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down...")
	controller.Stop()
	netMonitor.Stop()
}
