package handlers

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"pawkie/internal/events"
	"pawkie/internal/metrics"
	"pawkie/internal/middleware"
	"pawkie/internal/models"
	"pawkie/internal/service"
)

type createOrderItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required"`
}

type createOrderRequest struct {
	Items           []createOrderItemRequest `json:"items" binding:"required"`
	ShippingAddress string                   `json:"shippingAddress" binding:"required"`
	PaymentMethod   string                   `json:"paymentMethod" binding:"required"`
	PaymentDetails  map[string]string        `json:"paymentDetails"`
}

// CreateOrder runs the checkout flow for the authenticated caller.
func CreateOrder(orders *service.Orders) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/orders"
		defer handlePanic(c, route)

		email := c.GetString(middleware.ContextEmailKey)
		if email == "" {
			respondWithError(c, http.StatusUnauthorized, route, "unauthorized")
			return
		}

		var req createOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		input := service.PlaceOrderInput{
			ShippingAddress: strings.TrimSpace(req.ShippingAddress),
			PaymentMethod:   strings.TrimSpace(req.PaymentMethod),
			PaymentDetails:  req.PaymentDetails,
		}
		for _, item := range req.Items {
			input.Items = append(input.Items, service.OrderItemInput{
				ProductID: strings.TrimSpace(item.ProductID),
				Quantity:  item.Quantity,
			})
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		res, err := orders.PlaceOrder(ctx, email, input)
		if err != nil {
			respondServiceError(c, route, err)
			return
		}

		metrics.OrdersTotal.WithLabelValues(res.PaymentStatus).Inc()
		log.Println("[ORDER] [INFO] order placed:", res.OrderID.Hex(), "payment:", res.PaymentStatus)
		c.JSON(http.StatusCreated, gin.H{
			"message":       "order placed",
			"orderId":       res.OrderID.Hex(),
			"paymentStatus": res.PaymentStatus,
		})
	}
}

// GetOrders lists the caller's orders, newest first.
func GetOrders(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/orders"
		defer handlePanic(c, route)

		email := c.GetString(middleware.ContextEmailKey)

		ctx, cancel := requestContext(c)
		defer cancel()

		cursor, err := db.Collection("orders").Find(
			ctx,
			bson.M{"userEmail": email},
			options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}),
		)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		defer cursor.Close(ctx)

		orders := make([]models.Order, 0)
		if err := cursor.All(ctx, &orders); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "decode error")
			return
		}

		c.JSON(http.StatusOK, orders)
	}
}

// GetOrder returns one order to its owner or to an admin.
func GetOrder(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/orders/:id"
		defer handlePanic(c, route)

		orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		var order models.Order
		if err := db.Collection("orders").FindOne(ctx, bson.M{"_id": orderID}).Decode(&order); err != nil {
			respondWithError(c, http.StatusNotFound, route, "order not found")
			return
		}

		email := c.GetString(middleware.ContextEmailKey)
		if order.UserEmail != email && !middleware.HasRole(c.Request.Context(), db, email, models.RoleAdmin) {
			respondWithError(c, http.StatusForbidden, route, "unauthorized access to this order")
			return
		}

		c.JSON(http.StatusOK, order)
	}
}

type orderStatusRequest struct {
	OrderStatus string `json:"orderStatus" binding:"required"`
}

// UpdateOrderStatus is the admin fulfilment transition.
func UpdateOrderStatus(db *mongo.Database, publisher events.OrderPublisher) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PATCH /api/orders/:id/status"
		defer handlePanic(c, route)

		orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		var req orderStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		status := strings.TrimSpace(req.OrderStatus)
		switch status {
		case models.OrderStatusProcessing, models.OrderStatusShipped,
			models.OrderStatusDelivered, models.OrderStatusCancelled:
		default:
			respondWithError(c, http.StatusBadRequest, route, "invalid order status")
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		res, err := db.Collection("orders").UpdateOne(ctx, bson.M{"_id": orderID}, bson.M{
			"$set": bson.M{"orderStatus": status, "updatedAt": time.Now()},
		})
		if err != nil {
			log.Println("[ORDER] [ERROR] status update failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if res.MatchedCount == 0 {
			respondWithError(c, http.StatusNotFound, route, "order not found")
			return
		}

		if err := publisher.OrderStatusChanged(ctx, orderID.Hex(), status); err != nil {
			log.Println("[ORDER] [ERROR] status event publish failed:", err)
		}

		c.JSON(http.StatusOK, gin.H{"message": "order status updated"})
	}
}
