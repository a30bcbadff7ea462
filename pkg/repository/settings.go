package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	salesSettingsID = "sales"
	marginCacheKey  = "settings:margin"
	marginCacheTTL  = 5 * time.Minute
)

// SettingsStore holds the global sales settings, currently just the margin
// percentage applied to every displayed price. Reads go through the cache;
// a margin of 0 is the default when nothing is configured.
type SettingsStore struct {
	collection *mongo.Collection
	cache      *Cache
}

func NewSettingsStore(m *Mongo, cache *Cache) *SettingsStore {
	return &SettingsStore{
		collection: m.database.Collection(colSettings),
		cache:      cache,
	}
}

// GetMargin returns the global margin percentage, defaulting to 0 when the
// settings document is absent. A stale cache entry is at most 5 minutes old,
// matching how rarely the margin changes in practice.
func (s *SettingsStore) GetMargin(ctx context.Context) (float64, error) {
	if s.cache != nil {
		var cached float64
		if err := s.cache.GetJSON(ctx, marginCacheKey, &cached); err == nil {
			return cached, nil
		}
	}

	var doc struct {
		Margin float64 `bson:"margin"`
	}
	err := s.collection.FindOne(ctx, bson.M{"_id": salesSettingsID}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	if s.cache != nil {
		_ = s.cache.SetJSON(ctx, marginCacheKey, doc.Margin, marginCacheTTL)
	}
	return doc.Margin, nil
}

// SetMargin stores the margin percentage and invalidates the cache.
func (s *SettingsStore) SetMargin(ctx context.Context, margin float64) error {
	update := bson.M{"$set": bson.M{"margin": margin, "updatedAt": time.Now()}}
	opts := options.Update().SetUpsert(true)
	if _, err := s.collection.UpdateOne(ctx, bson.M{"_id": salesSettingsID}, update, opts); err != nil {
		return err
	}
	if s.cache != nil {
		_ = s.cache.Del(ctx, marginCacheKey)
	}
	return nil
}
