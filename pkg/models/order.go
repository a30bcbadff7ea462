package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

// Delivery status values. Anything other than StatusDelivered is treated as
// an active order.
const (
	StatusOpen      = "open"
	StatusDelivered = "delivered"
)

// Order is one customer order for one week. Items snapshot the product at
// order time; the only sanctioned retroactive mutation of a snapshot price is
// the checklist price propagation.
type Order struct {
	ID             string     `bson:"_id,omitempty" json:"id"`
	UserID         string     `bson:"userId" json:"user_id"`
	Email          string     `bson:"email" json:"email"`
	CompanyName    string     `bson:"companyName,omitempty" json:"company_name,omitempty"`
	WeekCode       string     `bson:"weekCode" json:"week_code"`
	Status         string     `bson:"status" json:"status"`
	DeliveryStatus string     `bson:"deliveryStatus,omitempty" json:"delivery_status,omitempty"`
	Items          []LineItem `bson:"items" json:"items"`
	Signature      string     `bson:"signature,omitempty" json:"signature,omitempty"`
	DeliveredAt    *time.Time `bson:"deliveredAt,omitempty" json:"delivered_at,omitempty"`
	CreatedAt      time.Time  `bson:"createdAt,omitempty" json:"created_at"`
	UpdatedAt      time.Time  `bson:"updatedAt,omitempty" json:"updated_at"`
}

// LineItem is embedded in an order. ID equals the product id at snapshot
// time, which also makes it the merge key within one order.
type LineItem struct {
	ID       string  `bson:"id" json:"id"`
	Name     string  `bson:"name" json:"name"`
	Price    float64 `bson:"price" json:"price"`
	Quantity int     `bson:"quantity" json:"quantity"`
	Supplier string  `bson:"supplier,omitempty" json:"supplier,omitempty"`
	Comment  string  `bson:"comment,omitempty" json:"comment,omitempty"`
	Refused  bool    `bson:"refused,omitempty" json:"refused,omitempty"`
}

// UnmarshalBSON coerces malformed numeric fields to 0 so documents written by
// older clients never break decoding or corrupt downstream sums.
func (li *LineItem) UnmarshalBSON(data []byte) error {
	var raw struct {
		ID       string      `bson:"id"`
		Name     string      `bson:"name"`
		Price    interface{} `bson:"price"`
		Quantity interface{} `bson:"quantity"`
		Supplier string      `bson:"supplier"`
		Comment  string      `bson:"comment"`
		Refused  bool        `bson:"refused"`
	}
	if err := bson.Unmarshal(data, &raw); err != nil {
		return err
	}

	li.ID = raw.ID
	li.Name = raw.Name
	li.Supplier = raw.Supplier
	li.Comment = raw.Comment
	li.Refused = raw.Refused

	price, _ := NumericValue(raw.Price)
	li.Price = price

	qty, _ := NumericValue(raw.Quantity)
	if qty < 0 {
		qty = 0
	}
	li.Quantity = int(qty)

	return nil
}

// IsDelivered reports whether the order has been closed by delivery.
func (o *Order) IsDelivered() bool {
	return o.DeliveryStatus == StatusDelivered
}

// FindItem returns the line item with the given product id, or nil.
func (o *Order) FindItem(productID string) *LineItem {
	for i := range o.Items {
		if o.Items[i].ID == productID {
			return &o.Items[i]
		}
	}
	return nil
}

// MergeItem adds a line item to the order, incrementing the quantity of an
// existing line instead of duplicating the product id.
func (o *Order) MergeItem(item LineItem) {
	if existing := o.FindItem(item.ID); existing != nil {
		existing.Quantity += item.Quantity
		if item.Comment != "" {
			existing.Comment = item.Comment
		}
		return
	}
	o.Items = append(o.Items, item)
}
