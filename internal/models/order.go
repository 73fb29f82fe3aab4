package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Order statuses. Orders start processing; admins move them through
// fulfilment with the status endpoint.
const (
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

// Payment statuses shared by Order.PaymentStatus and Payment.Status.
const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
)

// Payment methods accepted at checkout.
const (
	PaymentMethodCreditCard = "credit_card"
	PaymentMethodPaypal     = "paypal"
	PaymentMethodCOD        = "cod"
)

// OrderItem is a snapshot of one product line at order-placement time.
// Name and Price are captured from the product so later edits do not
// rewrite order history.
type OrderItem struct {
	ProductID primitive.ObjectID `bson:"productId" json:"productId"`
	Name      string             `bson:"name" json:"name"`
	Price     float64            `bson:"price" json:"price"`
	Quantity  int                `bson:"quantity" json:"quantity"`
	Subtotal  float64            `bson:"subtotal" json:"subtotal"`
}

// Order is the persisted order document, created together with its Payment
// and back-referenced once the payment outcome is known.
type Order struct {
	ID              primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserEmail       string              `bson:"userEmail" json:"userEmail"`
	Items           []OrderItem         `bson:"items" json:"items"`
	TotalAmount     float64             `bson:"totalAmount" json:"totalAmount"`
	ShippingAddress string              `bson:"shippingAddress" json:"shippingAddress"`
	PaymentMethod   string              `bson:"paymentMethod" json:"paymentMethod"`
	PaymentStatus   string              `bson:"paymentStatus" json:"paymentStatus"`
	PaymentID       *primitive.ObjectID `bson:"paymentId,omitempty" json:"paymentId,omitempty"`
	OrderStatus     string              `bson:"orderStatus" json:"orderStatus"`
	CreatedAt       time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time           `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}
