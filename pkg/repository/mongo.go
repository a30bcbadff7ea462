package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/example/weekmarket/pkg/config"
)

// Collection names.
const (
	colProducts  = "products"
	colOrders    = "orders"
	colChecklist = "delivery_checklist"
	colSettings  = "settings"
	colInvoices  = "delivery_invoices"
)

// Mongo wraps the shared client and database handle the stores are built on.
type Mongo struct {
	client   *mongo.Client
	database *mongo.Database
}

func NewMongo(cfg *config.MongoDBConfig) (*Mongo, error) {
	if cfg.URI == "" {
		return nil, fmt.Errorf("mongodb uri is empty")
	}

	clientOptions := options.Client().ApplyURI(cfg.URI).
		SetMaxPoolSize(50).
		SetMinPoolSize(10).
		SetConnectTimeout(5 * time.Second).
		SetSocketTimeout(10 * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	ctxPing, cancelPing := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancelPing()
	if err := client.Ping(ctxPing, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return &Mongo{
		client:   client,
		database: client.Database(cfg.Database),
	}, nil
}

func (m *Mongo) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, nil)
}

func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}
