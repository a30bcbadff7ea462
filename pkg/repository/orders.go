package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/example/weekmarket/pkg/models"
	"github.com/example/weekmarket/pkg/propagation"
)

// OrdersStore holds one document per customer order. Orders are mutated in
// place by customers, delivery staff, and the price-propagation trigger, and
// are never deleted in normal flow.
type OrdersStore struct {
	client     *mongo.Client
	collection *mongo.Collection
}

func NewOrdersStore(m *Mongo) *OrdersStore {
	return &OrdersStore{
		client:     m.client,
		collection: m.database.Collection(colOrders),
	}
}

// OrderFilter narrows Query. Zero-valued fields are not applied.
type OrderFilter struct {
	WeekCode       string
	UserID         string
	DeliveryStatus string
	NotDelivered   bool
}

func (s *OrdersStore) Create(ctx context.Context, order *models.Order) (string, error) {
	now := time.Now()
	if order.ID == "" {
		order.ID = primitive.NewObjectID().Hex()
	}
	if order.Status == "" {
		order.Status = models.StatusOpen
	}
	order.CreatedAt = now
	order.UpdatedAt = now

	if _, err := s.collection.InsertOne(ctx, order); err != nil {
		return "", err
	}
	return order.ID, nil
}

func (s *OrdersStore) Get(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	if err := s.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *OrdersStore) Query(ctx context.Context, filter OrderFilter) ([]models.Order, error) {
	query := bson.M{}
	if filter.WeekCode != "" {
		query["weekCode"] = filter.WeekCode
	}
	if filter.UserID != "" {
		query["userId"] = filter.UserID
	}
	if filter.DeliveryStatus != "" {
		query["deliveryStatus"] = filter.DeliveryStatus
	}
	if filter.NotDelivered {
		query["deliveryStatus"] = bson.M{"$ne": models.StatusDelivered}
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := s.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var orders []models.Order
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// OrdersForWeek returns every order of the week regardless of delivery
// status, as the propagation engine and the aggregation view expect.
func (s *OrdersStore) OrdersForWeek(ctx context.Context, weekCode string) ([]models.Order, error) {
	return s.Query(ctx, OrderFilter{WeekCode: weekCode})
}

// UpdateItems replaces one order's items array.
func (s *OrdersStore) UpdateItems(ctx context.Context, orderID string, items []models.LineItem, updatedAt time.Time) error {
	update := bson.M{"$set": bson.M{"items": items, "updatedAt": updatedAt}}
	result, err := s.collection.UpdateOne(ctx, bson.M{"_id": orderID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// UpdateItemsBatch commits staged item rewrites across many orders inside one
// session transaction, so a price change either lands on every staged order
// or on none of them.
func (s *OrdersStore) UpdateItemsBatch(ctx context.Context, updates []propagation.ItemsUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	session, err := s.client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		for _, u := range updates {
			update := bson.M{"$set": bson.M{"items": u.Items, "updatedAt": u.UpdatedAt}}
			if _, err := s.collection.UpdateOne(sc, bson.M{"_id": u.OrderID}, update); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	return err
}

// MarkDelivered closes an order for delivery. Delivered orders are immutable
// to price propagation from this point on.
func (s *OrdersStore) MarkDelivered(ctx context.Context, orderID string, at time.Time) error {
	update := bson.M{"$set": bson.M{
		"deliveryStatus": models.StatusDelivered,
		"deliveredAt":    at,
		"updatedAt":      at,
	}}
	result, err := s.collection.UpdateOne(ctx, bson.M{"_id": orderID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// SaveSignature stores the proof-of-delivery signature as a data URL.
func (s *OrdersStore) SaveSignature(ctx context.Context, orderID, signature string) error {
	update := bson.M{"$set": bson.M{"signature": signature, "updatedAt": time.Now()}}
	result, err := s.collection.UpdateOne(ctx, bson.M{"_id": orderID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
