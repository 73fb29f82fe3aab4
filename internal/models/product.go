package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product is an inventory item. StockQuantity never goes negative: every
// decrement is a conditional update that only matches while enough stock
// remains.
type Product struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name          string             `bson:"name" json:"name"`
	Description   string             `bson:"description,omitempty" json:"description,omitempty"`
	Price         float64            `bson:"price" json:"price"`
	Category      string             `bson:"category,omitempty" json:"category,omitempty"`
	StockQuantity int                `bson:"stockQuantity" json:"stockQuantity"`
	Image         string             `bson:"image,omitempty" json:"image,omitempty"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}
