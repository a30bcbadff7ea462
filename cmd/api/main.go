package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/example/weekmarket/gateway"
	"github.com/example/weekmarket/pkg/config"
	"github.com/example/weekmarket/pkg/discovery"
	"github.com/example/weekmarket/pkg/repository"
)

func main() {
	// Load config
	cfg, err := config.Load("config/api-config.yaml")
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Setup logger
	logger, err := zap.NewProduction()
	if err != nil {
		panic(fmt.Sprintf("Failed to create logger: %v", err))
	}
	defer logger.Sync()

	logger.Info("Starting api service",
		zap.String("name", cfg.Server.Name),
		zap.Int("port", cfg.Server.Port))

	// Connect stores
	mongo, err := repository.NewMongo(&cfg.MongoDB)
	if err != nil {
		logger.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	logger.Info("MongoDB connected successfully")

	cache := repository.NewCache(&cfg.Redis)
	defer cache.Close()

	ctx := context.Background()
	if err := cache.Ping(ctx); err != nil {
		logger.Warn("Redis connection failed, margin cache disabled", zap.Error(err))
		cache = nil
	} else {
		logger.Info("Redis connected successfully")
	}

	stores := gateway.Stores{
		Catalog:   repository.NewCatalogStore(mongo),
		Orders:    repository.NewOrdersStore(mongo),
		Checklist: repository.NewChecklistStore(mongo, logger.Named("checklist-store")),
		Settings:  repository.NewSettingsStore(mongo, cache),
		Invoices:  repository.NewInvoicesStore(mongo),
	}

	// Connect to etcd for service discovery
	sd, err := discovery.NewServiceDiscovery(&cfg.Etcd)
	if err != nil {
		logger.Fatal("Failed to connect to etcd", zap.Error(err))
	}
	defer sd.Close()

	instance := &discovery.ServiceInstance{
		Name: cfg.Server.Name,
		Host: cfg.Server.Host,
		Port: cfg.Server.Port,
	}
	if err := sd.Register(ctx, instance); err != nil {
		logger.Fatal("Failed to register service", zap.Error(err))
	}
	logger.Info("Service registered in etcd",
		zap.String("name", cfg.Server.Name),
		zap.String("address", fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)))

	// Start gateway in goroutine
	gw := gateway.New(cfg, logger, stores)
	gw.SetupRoutes()

	serverErr := make(chan error, 1)
	go func() {
		if err := gw.Start(); err != nil {
			serverErr <- err
		}
	}()

	// Wait for interrupt signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigCh:
		logger.Info("Received shutdown signal")
	case err := <-serverErr:
		logger.Fatal("Server error", zap.Error(err))
	}

	if err := sd.Deregister(ctx, instance); err != nil {
		logger.Error("Failed to deregister service", zap.Error(err))
	}
	if err := mongo.Close(ctx); err != nil {
		logger.Error("Failed to disconnect MongoDB", zap.Error(err))
	}

	logger.Info("Service stopped")
}
