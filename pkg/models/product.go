package models

import "time"

// Product is a catalog record. Price is the raw base price; the global margin
// is applied at read sites, never stored here.
type Product struct {
	ID        string    `bson:"_id" json:"id"`
	Name      string    `bson:"name" json:"name"`
	Price     float64   `bson:"price" json:"price"`
	Supplier  string    `bson:"supplier" json:"supplier"`
	Category  string    `bson:"category" json:"category"`
	Available bool      `bson:"available" json:"available"`
	Bio       bool      `bson:"bio" json:"bio"`
	CreatedAt time.Time `bson:"createdAt,omitempty" json:"created_at"`
	UpdatedAt time.Time `bson:"updatedAt,omitempty" json:"updated_at"`
}
