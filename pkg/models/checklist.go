package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

// Checklist fields that accept numeric updates from the delivery screens.
const (
	FieldCollectedQuantity = "collectedQuantity"
	FieldNewPrice          = "newPrice"
)

// ChecklistEntry is the per-(week, product) operational record delivery staff
// edit while collecting goods. NewPrice is nil when no override is set; a
// non-numeric stored value decodes to nil as well, so the sentinel survives
// documents written by older clients.
type ChecklistEntry struct {
	ID                string    `bson:"_id,omitempty" json:"id"`
	WeekCode          string    `bson:"weekCode" json:"week_code"`
	ProductID         string    `bson:"productId" json:"product_id"`
	Collected         bool      `bson:"collected" json:"collected"`
	CollectedQuantity float64   `bson:"collectedQuantity" json:"collected_quantity"`
	NewPrice          *float64  `bson:"newPrice,omitempty" json:"new_price,omitempty"`
	CreatedAt         time.Time `bson:"createdAt,omitempty" json:"created_at"`
	UpdatedAt         time.Time `bson:"updatedAt,omitempty" json:"updated_at"`
}

func (e *ChecklistEntry) UnmarshalBSON(data []byte) error {
	var raw struct {
		ID                string      `bson:"_id"`
		WeekCode          string      `bson:"weekCode"`
		ProductID         string      `bson:"productId"`
		Collected         bool        `bson:"collected"`
		CollectedQuantity interface{} `bson:"collectedQuantity"`
		NewPrice          interface{} `bson:"newPrice"`
		CreatedAt         time.Time   `bson:"createdAt"`
		UpdatedAt         time.Time   `bson:"updatedAt"`
	}
	if err := bson.Unmarshal(data, &raw); err != nil {
		return err
	}

	e.ID = raw.ID
	e.WeekCode = raw.WeekCode
	e.ProductID = raw.ProductID
	e.Collected = raw.Collected
	e.CreatedAt = raw.CreatedAt
	e.UpdatedAt = raw.UpdatedAt

	qty, _ := NumericValue(raw.CollectedQuantity)
	e.CollectedQuantity = qty

	if price, ok := NumericValue(raw.NewPrice); ok {
		e.NewPrice = &price
	} else {
		e.NewPrice = nil
	}

	return nil
}

// HasOverride reports whether a numeric price override is set.
func (e *ChecklistEntry) HasOverride() bool {
	return e != nil && e.NewPrice != nil
}

// SupplierInvoice stores the uploaded invoice URL for one supplier in one
// week. The file itself lives in blob storage; only the URL is kept here.
type SupplierInvoice struct {
	ID         string    `bson:"_id,omitempty" json:"id"`
	WeekCode   string    `bson:"weekCode" json:"week_code"`
	Supplier   string    `bson:"supplier" json:"supplier"`
	InvoiceURL string    `bson:"invoiceUrl" json:"invoice_url"`
	UpdatedAt  time.Time `bson:"updatedAt,omitempty" json:"updated_at"`
}
