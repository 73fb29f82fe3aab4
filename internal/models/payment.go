package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Payment belongs to exactly one Order and is written once, immediately
// after the order. TransactionID is set only for completed payments.
type Payment struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrderID       primitive.ObjectID `bson:"orderId" json:"orderId"`
	Amount        float64            `bson:"amount" json:"amount"`
	Method        string             `bson:"method" json:"method"`
	Status        string             `bson:"status" json:"status"`
	TransactionID string             `bson:"transactionId,omitempty" json:"transactionId,omitempty"`
	Details       map[string]string  `bson:"details,omitempty" json:"details,omitempty"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
}
