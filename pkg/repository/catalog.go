package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/example/weekmarket/pkg/models"
)

// CatalogStore holds the product catalog. Products are never hard-deleted;
// available=false removes them from ordering while historical order snapshots
// stay intact.
type CatalogStore struct {
	collection *mongo.Collection
}

func NewCatalogStore(m *Mongo) *CatalogStore {
	return &CatalogStore{collection: m.database.Collection(colProducts)}
}

// ProductFilter narrows QueryProducts. Nil fields are not applied.
type ProductFilter struct {
	Supplier  string
	Available *bool
}

func (s *CatalogStore) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	err := s.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&product)
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// GetProducts batch-fetches products by id. Missing ids are simply absent
// from the result map.
func (s *CatalogStore) GetProducts(ctx context.Context, ids []string) (map[string]*models.Product, error) {
	result := make(map[string]*models.Product, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	cursor, err := s.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var product models.Product
		if err := cursor.Decode(&product); err != nil {
			return nil, err
		}
		result[product.ID] = &product
	}
	return result, cursor.Err()
}

func (s *CatalogStore) QueryProducts(ctx context.Context, filter ProductFilter) ([]models.Product, error) {
	query := bson.M{}
	if filter.Supplier != "" {
		query["supplier"] = filter.Supplier
	}
	if filter.Available != nil {
		query["available"] = *filter.Available
	}

	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := s.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var products []models.Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// UpsertProduct creates or replaces a catalog record, keeping createdAt on
// updates.
func (s *CatalogStore) UpsertProduct(ctx context.Context, product *models.Product) error {
	now := time.Now()
	product.UpdatedAt = now

	update := bson.M{
		"$set": bson.M{
			"name":      product.Name,
			"price":     product.Price,
			"supplier":  product.Supplier,
			"category":  product.Category,
			"available": product.Available,
			"bio":       product.Bio,
			"updatedAt": now,
		},
		"$setOnInsert": bson.M{"createdAt": now},
	}
	opts := options.Update().SetUpsert(true)
	_, err := s.collection.UpdateOne(ctx, bson.M{"_id": product.ID}, update, opts)
	return err
}

// Disable soft-deletes a product by flagging it unavailable.
func (s *CatalogStore) Disable(ctx context.Context, id string) error {
	update := bson.M{"$set": bson.M{"available": false, "updatedAt": time.Now()}}
	result, err := s.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
