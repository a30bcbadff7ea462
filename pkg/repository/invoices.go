package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/example/weekmarket/pkg/models"
)

// InvoicesStore keeps the uploaded supplier invoice URL per (week, supplier).
// The document id is "<weekCode>_<supplier>", matching the blob store layout.
type InvoicesStore struct {
	collection *mongo.Collection
}

func NewInvoicesStore(m *Mongo) *InvoicesStore {
	return &InvoicesStore{collection: m.database.Collection(colInvoices)}
}

func invoiceID(weekCode, supplier string) string {
	return fmt.Sprintf("%s_%s", weekCode, supplier)
}

func (s *InvoicesStore) Get(ctx context.Context, weekCode, supplier string) (*models.SupplierInvoice, error) {
	var invoice models.SupplierInvoice
	err := s.collection.FindOne(ctx, bson.M{"_id": invoiceID(weekCode, supplier)}).Decode(&invoice)
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (s *InvoicesStore) SetURL(ctx context.Context, weekCode, supplier, url string) error {
	update := bson.M{"$set": bson.M{
		"weekCode":   weekCode,
		"supplier":   supplier,
		"invoiceUrl": url,
		"updatedAt":  time.Now(),
	}}
	opts := options.Update().SetUpsert(true)
	_, err := s.collection.UpdateOne(ctx, bson.M{"_id": invoiceID(weekCode, supplier)}, update, opts)
	return err
}
