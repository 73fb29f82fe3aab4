package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"pawkie/internal/events"
	"pawkie/internal/models"
	"pawkie/internal/store"
)

// OrderItemInput is one requested line; the price always comes from the
// product document, never from the client.
type OrderItemInput struct {
	ProductID string
	Quantity  int
}

type PlaceOrderInput struct {
	Items           []OrderItemInput
	ShippingAddress string
	PaymentMethod   string
	PaymentDetails  map[string]string
}

type PlaceOrderResult struct {
	OrderID       primitive.ObjectID
	PaymentStatus string
}

// Orders places orders against the store: it validates stock, snapshots
// prices, decrements inventory and writes the Order/Payment pair.
type Orders struct {
	store     store.Store
	publisher events.OrderPublisher
}

func NewOrders(s store.Store, publisher events.OrderPublisher) *Orders {
	return &Orders{store: s, publisher: publisher}
}

type decrementedItem struct {
	productID primitive.ObjectID
	quantity  int
}

// PlaceOrder runs the checkout flow. Stock is taken per line item with a
// conditional decrement (only while stockQuantity covers the quantity); if
// a later item fails, earlier decrements are compensated, so a failed order
// leaves no stock mutation and no Order or Payment behind.
func (o *Orders) PlaceOrder(ctx context.Context, userEmail string, input PlaceOrderInput) (*PlaceOrderResult, error) {
	if len(input.Items) == 0 || input.ShippingAddress == "" || input.PaymentMethod == "" {
		return nil, ValidationError{Message: "items, shipping address and payment method are required"}
	}
	switch input.PaymentMethod {
	case models.PaymentMethodCreditCard, models.PaymentMethodPaypal, models.PaymentMethodCOD:
	default:
		return nil, ValidationError{Message: "invalid payment method"}
	}

	parsed := make([]decrementedItem, 0, len(input.Items))
	for _, item := range input.Items {
		productID, err := primitive.ObjectIDFromHex(item.ProductID)
		if err != nil {
			return nil, ValidationError{Message: "invalid productId"}
		}
		if item.Quantity <= 0 {
			return nil, ValidationError{Message: "quantity must be greater than zero"}
		}
		parsed = append(parsed, decrementedItem{productID: productID, quantity: item.Quantity})
	}

	var totalAmount float64
	orderItems := make([]models.OrderItem, 0, len(parsed))
	taken := make([]decrementedItem, 0, len(parsed))

	for _, item := range parsed {
		product, err := o.store.FindProduct(ctx, item.productID)
		if errors.Is(err, store.ErrNotFound) {
			o.restoreStock(ctx, taken)
			return nil, NotFoundError{Resource: "product", ID: item.productID.Hex()}
		}
		if err != nil {
			o.restoreStock(ctx, taken)
			return nil, StoreError{Op: "find product", Err: err}
		}

		if product.StockQuantity < item.quantity {
			o.restoreStock(ctx, taken)
			return nil, InsufficientStockError{
				ProductID: item.productID.Hex(),
				Name:      product.Name,
				Available: product.StockQuantity,
				Requested: item.quantity,
			}
		}

		subtotal := product.Price * float64(item.quantity)
		totalAmount += subtotal
		orderItems = append(orderItems, models.OrderItem{
			ProductID: product.ID,
			Name:      product.Name,
			Price:     product.Price,
			Quantity:  item.quantity,
			Subtotal:  subtotal,
		})

		// The read above can be stale by the time this lands; the
		// conditional decrement is what actually reserves the stock.
		if err := o.store.DecrementStock(ctx, item.productID, item.quantity); err != nil {
			o.restoreStock(ctx, taken)
			if errors.Is(err, store.ErrNotFound) {
				available := 0
				if current, ferr := o.store.FindProduct(ctx, item.productID); ferr == nil {
					available = current.StockQuantity
				}
				return nil, InsufficientStockError{
					ProductID: item.productID.Hex(),
					Name:      product.Name,
					Available: available,
					Requested: item.quantity,
				}
			}
			return nil, StoreError{Op: "decrement stock", Err: err}
		}
		taken = append(taken, item)
	}

	now := time.Now()
	order := &models.Order{
		UserEmail:       userEmail,
		Items:           orderItems,
		TotalAmount:     totalAmount,
		ShippingAddress: input.ShippingAddress,
		PaymentMethod:   input.PaymentMethod,
		PaymentStatus:   models.PaymentStatusPending,
		OrderStatus:     models.OrderStatusProcessing,
		CreatedAt:       now,
	}

	orderID, err := o.store.InsertOrder(ctx, order)
	if err != nil {
		o.restoreStock(ctx, taken)
		return nil, StoreError{Op: "insert order", Err: err}
	}
	order.ID = orderID

	payment := &models.Payment{
		OrderID:   orderID,
		Amount:    totalAmount,
		Method:    input.PaymentMethod,
		Status:    models.PaymentStatusPending,
		Details:   input.PaymentDetails,
		CreatedAt: now,
	}

	// Simulated gateway: card and paypal settle synchronously, cash on
	// delivery stays pending until the courier collects.
	switch input.PaymentMethod {
	case models.PaymentMethodCreditCard:
		payment.Status = models.PaymentStatusCompleted
		payment.TransactionID = fmt.Sprintf("CC-%d", now.UnixMilli())
	case models.PaymentMethodPaypal:
		payment.Status = models.PaymentStatusCompleted
		payment.TransactionID = fmt.Sprintf("PP-%d", now.UnixMilli())
	}

	paymentID, err := o.store.InsertPayment(ctx, payment)
	if err != nil {
		o.abortOrder(ctx, taken, orderID, primitive.NilObjectID)
		return nil, StoreError{Op: "insert payment", Err: err}
	}

	if err := o.store.SetOrderPayment(ctx, orderID, paymentID, payment.Status); err != nil {
		o.abortOrder(ctx, taken, orderID, paymentID)
		return nil, StoreError{Op: "update order payment", Err: err}
	}
	order.PaymentStatus = payment.Status
	order.PaymentID = &paymentID

	if err := o.publisher.OrderCreated(ctx, order); err != nil {
		log.Println("[ORDER] [ERROR] order created event publish failed:", err)
	}

	return &PlaceOrderResult{OrderID: orderID, PaymentStatus: payment.Status}, nil
}

// restoreStock compensates the decrements an aborted order already took.
func (o *Orders) restoreStock(ctx context.Context, taken []decrementedItem) {
	for _, item := range taken {
		if err := o.store.IncrementStock(ctx, item.productID, item.quantity); err != nil {
			log.Println("[ORDER] [ERROR] stock restore failed for", item.productID.Hex(), ":", err)
		}
	}
}

// abortOrder unwinds a checkout that failed after the Order was written:
// stock goes back, the Order comes out, and so does the Payment when one
// already landed. Best effort, so a dying store cannot mask the original
// failure.
func (o *Orders) abortOrder(ctx context.Context, taken []decrementedItem, orderID, paymentID primitive.ObjectID) {
	o.restoreStock(ctx, taken)
	if err := o.store.DeleteOrder(ctx, orderID); err != nil {
		log.Println("[ORDER] [ERROR] order rollback failed for", orderID.Hex(), ":", err)
	}
	if paymentID.IsZero() {
		return
	}
	if err := o.store.DeletePayment(ctx, paymentID); err != nil {
		log.Println("[ORDER] [ERROR] payment rollback failed for", paymentID.Hex(), ":", err)
	}
}
