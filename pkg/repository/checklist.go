package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/example/weekmarket/pkg/models"
)

// ChecklistStore holds one entry per (weekCode, productId), created lazily on
// the first staff interaction and never deleted.
type ChecklistStore struct {
	collection *mongo.Collection
	logger     *zap.Logger
}

func NewChecklistStore(m *Mongo, logger *zap.Logger) *ChecklistStore {
	return &ChecklistStore{collection: m.database.Collection(colChecklist), logger: logger}
}

// ForWeek returns the week's entries keyed by product id.
func (s *ChecklistStore) ForWeek(ctx context.Context, weekCode string) (map[string]*models.ChecklistEntry, error) {
	cursor, err := s.collection.Find(ctx, bson.M{"weekCode": weekCode})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	entries := make(map[string]*models.ChecklistEntry)
	for cursor.Next(ctx) {
		var entry models.ChecklistEntry
		if err := cursor.Decode(&entry); err != nil {
			return nil, err
		}
		entries[entry.ProductID] = &entry
	}
	return entries, cursor.Err()
}

// SetField updates one numeric field of the entry, creating it with defaults
// (collected=false, collectedQuantity=0) on first interaction. Only
// collectedQuantity and newPrice are settable this way. A freshly created
// entry carries no newPrice field at all: an absent override must stay
// absent, or the first edit of an unrelated field would propagate a price
// of 0 to every order of the week.
func (s *ChecklistStore) SetField(ctx context.Context, weekCode, productID, field string, value float64) error {
	if field != models.FieldCollectedQuantity && field != models.FieldNewPrice {
		return fmt.Errorf("unknown checklist field %q", field)
	}

	now := time.Now()
	onInsert := bson.M{
		"_id":       primitive.NewObjectID().Hex(),
		"weekCode":  weekCode,
		"productId": productID,
		"collected": false,
		"createdAt": now,
	}
	// $set and $setOnInsert must not name the same field.
	if field == models.FieldNewPrice {
		onInsert[models.FieldCollectedQuantity] = 0.0
	}

	update := bson.M{
		"$set":         bson.M{field: value, "updatedAt": now},
		"$setOnInsert": onInsert,
	}
	opts := options.Update().SetUpsert(true)
	_, err := s.collection.UpdateOne(ctx, bson.M{"weekCode": weekCode, "productId": productID}, update, opts)
	return err
}

// ClearNewPrice removes the override, reverting affected orders to the
// catalog price via the propagation trigger.
func (s *ChecklistStore) ClearNewPrice(ctx context.Context, weekCode, productID string) error {
	update := bson.M{
		"$unset": bson.M{models.FieldNewPrice: ""},
		"$set":   bson.M{"updatedAt": time.Now()},
	}
	result, err := s.collection.UpdateOne(ctx, bson.M{"weekCode": weekCode, "productId": productID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// ToggleCollected flips the collected flag, creating the entry with
// collected=true when staff tick a product for the first time.
func (s *ChecklistStore) ToggleCollected(ctx context.Context, weekCode, productID string) (bool, error) {
	var entry models.ChecklistEntry
	err := s.collection.FindOne(ctx, bson.M{"weekCode": weekCode, "productId": productID}).Decode(&entry)
	if err == mongo.ErrNoDocuments {
		now := time.Now()
		_, err := s.collection.InsertOne(ctx, bson.M{
			"_id":                         primitive.NewObjectID().Hex(),
			"weekCode":                    weekCode,
			"productId":                   productID,
			"collected":                   true,
			models.FieldCollectedQuantity: 0.0,
			"createdAt":                   now,
			"updatedAt":                   now,
		})
		return true, err
	}
	if err != nil {
		return false, err
	}

	newStatus := !entry.Collected
	update := bson.M{"$set": bson.M{"collected": newStatus, "updatedAt": time.Now()}}
	_, err = s.collection.UpdateOne(ctx, bson.M{"_id": entry.ID}, update)
	return newStatus, err
}

// ChecklistChange is one change-stream event pair. Previous is nil on first
// creation; Current is nil when the entry was removed out of band.
type ChecklistChange struct {
	Previous *models.ChecklistEntry
	Current  *models.ChecklistEntry
}

// Watch streams checklist changes via a MongoDB change stream, the document
// store's counterpart of the on-write trigger the propagation engine expects.
// The channel closes when the stream ends; callers restart the watch to
// resume. Delivery is at-least-once, which the engine's value-changed guard
// absorbs.
func (s *ChecklistStore) Watch(ctx context.Context) (<-chan ChecklistChange, error) {
	opts := options.ChangeStream().
		SetFullDocument(options.UpdateLookup).
		SetFullDocumentBeforeChange(options.WhenAvailable)

	stream, err := s.collection.Watch(ctx, mongo.Pipeline{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open checklist change stream: %w", err)
	}

	ch := make(chan ChecklistChange)
	go func() {
		defer close(ch)
		defer stream.Close(context.Background())

		for stream.Next(ctx) {
			change, ok := s.decodeChange(stream)
			if !ok {
				continue
			}

			select {
			case ch <- change:
			case <-ctx.Done():
				return
			}
		}
	}()

	return ch, nil
}

// checklistEvent is the change-stream envelope around an entry write.
type checklistEvent struct {
	OperationType string                 `bson:"operationType"`
	Current       *models.ChecklistEntry `bson:"fullDocument"`
	Previous      *models.ChecklistEntry `bson:"fullDocumentBeforeChange"`
}

type eventDecoder interface {
	Decode(val interface{}) error
}

// decodeChange extracts one change from the stream. A document that fails to
// decode is logged and skipped so one malformed entry cannot stall the watch;
// deletes carry no document to propagate and are skipped silently.
func (s *ChecklistStore) decodeChange(stream eventDecoder) (ChecklistChange, bool) {
	var event checklistEvent
	if err := stream.Decode(&event); err != nil {
		s.logger.Error("Failed to decode checklist change event", zap.Error(err))
		return ChecklistChange{}, false
	}
	if event.OperationType == "delete" {
		return ChecklistChange{}, false
	}
	return ChecklistChange{Previous: event.Previous, Current: event.Current}, true
}
