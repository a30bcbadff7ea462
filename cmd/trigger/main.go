package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/asynkron/protoactor-go/actor"
	"go.uber.org/zap"

	"github.com/example/weekmarket/pkg/config"
	"github.com/example/weekmarket/pkg/discovery"
	"github.com/example/weekmarket/pkg/propagation"
	"github.com/example/weekmarket/pkg/repository"
)

func main() {
	// Load config
	cfg, err := config.Load("config/trigger-config.yaml")
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Setup logger
	logger, err := zap.NewProduction()
	if err != nil {
		panic(fmt.Sprintf("Failed to create logger: %v", err))
	}
	defer logger.Sync()

	logger.Info("Starting price propagation trigger",
		zap.String("name", cfg.Server.Name))

	// Connect stores
	mongo, err := repository.NewMongo(&cfg.MongoDB)
	if err != nil {
		logger.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	logger.Info("MongoDB connected successfully")

	catalog := repository.NewCatalogStore(mongo)
	orders := repository.NewOrdersStore(mongo)
	checklist := repository.NewChecklistStore(mongo, logger.Named("checklist-store"))

	engine := propagation.NewEngine(catalog, orders, logger.Named("propagation"))

	// Spawn the propagation actor
	system := actor.NewActorSystem()
	props := actor.PropsFromProducer(func() actor.Actor {
		return &PropagationActor{
			engine:     engine,
			maxRetries: cfg.Trigger.MaxRetries,
			backoff:    cfg.Trigger.RetryBackoff,
			logger:     logger.Named("propagation-actor"),
		}
	})
	pid, err := system.Root.SpawnNamed(props, "propagation-actor")
	if err != nil {
		logger.Fatal("Failed to spawn propagation actor", zap.Error(err))
	}

	// Connect to etcd for service discovery
	sd, err := discovery.NewServiceDiscovery(&cfg.Etcd)
	if err != nil {
		logger.Fatal("Failed to connect to etcd", zap.Error(err))
	}
	defer sd.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	instance := &discovery.ServiceInstance{
		Name: cfg.Server.Name,
		Host: cfg.Server.Host,
		Port: cfg.Server.Port,
	}
	if err := sd.Register(ctx, instance); err != nil {
		logger.Fatal("Failed to register service", zap.Error(err))
	}
	logger.Info("Service registered in etcd", zap.String("name", cfg.Server.Name))

	// Watch the checklist collection and feed events to the actor. The
	// stream closes on terminal errors; reopen it after a short pause.
	go func() {
		for {
			events, err := checklist.Watch(ctx)
			if err != nil {
				logger.Error("Failed to open checklist watch, retrying", zap.Error(err))
				select {
				case <-time.After(5 * time.Second):
					continue
				case <-ctx.Done():
					return
				}
			}

			logger.Info("Checklist watch established")
			for event := range events {
				system.Root.Send(pid, &ChecklistChanged{
					Previous: event.Previous,
					Current:  event.Current,
				})
			}

			if ctx.Err() != nil {
				return
			}
			logger.Warn("Checklist watch ended, reopening")
		}
	}()

	// Wait for interrupt signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh
	logger.Info("Received shutdown signal")

	cancel()
	if err := sd.Deregister(context.Background(), instance); err != nil {
		logger.Error("Failed to deregister service", zap.Error(err))
	}
	if err := mongo.Close(context.Background()); err != nil {
		logger.Error("Failed to disconnect MongoDB", zap.Error(err))
	}

	logger.Info("Service stopped")
}
