package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"pawkie/internal/events"
	"pawkie/internal/middleware"
	"pawkie/internal/models"
	"pawkie/internal/service"
	"pawkie/internal/store"
)

func newOrdersRouter(memory *store.Memory, email string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	orders := service.NewOrders(memory, events.NoopPublisher{})

	r := gin.New()
	r.POST("/api/orders", func(c *gin.Context) {
		if email != "" {
			c.Set(middleware.ContextEmailKey, email)
		}
		c.Next()
	}, CreateOrder(orders))
	return r
}

func postJSON(r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateOrder_ReturnsCreatedWithPaymentStatus(t *testing.T) {
	memory := store.NewMemory()
	productID := memory.SeedProduct(models.Product{Name: "Cat Food", Price: 12.5, StockQuantity: 10})

	r := newOrdersRouter(memory, "buyer@example.com")
	body := fmt.Sprintf(`{
		"items": [{"productId": %q, "quantity": 2}],
		"shippingAddress": "12 Main St",
		"paymentMethod": "cod"
	}`, productID.Hex())

	w := postJSON(r, "/api/orders", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if resp["paymentStatus"] != models.PaymentStatusPending {
		t.Fatalf("expected pending payment for cod, got %v", resp["paymentStatus"])
	}
	orderID, ok := resp["orderId"].(string)
	if !ok || orderID == "" {
		t.Fatalf("expected an orderId in the response, got %v", resp["orderId"])
	}
	if _, err := primitive.ObjectIDFromHex(orderID); err != nil {
		t.Fatalf("orderId is not a valid object id: %v", err)
	}
}

func TestCreateOrder_RejectsUnauthenticatedCaller(t *testing.T) {
	memory := store.NewMemory()
	r := newOrdersRouter(memory, "")

	w := postJSON(r, "/api/orders", `{"items":[],"shippingAddress":"x","paymentMethod":"cod"}`)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestCreateOrder_InsufficientStockIncludesDetail(t *testing.T) {
	memory := store.NewMemory()
	productID := memory.SeedProduct(models.Product{Name: "Leash", Price: 8, StockQuantity: 1})

	r := newOrdersRouter(memory, "buyer@example.com")
	body := fmt.Sprintf(`{
		"items": [{"productId": %q, "quantity": 3}],
		"shippingAddress": "12 Main St",
		"paymentMethod": "credit_card"
	}`, productID.Hex())

	w := postJSON(r, "/api/orders", body)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}

	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if resp["productId"] != productID.Hex() {
		t.Fatalf("expected productId %s in detail, got %v", productID.Hex(), resp["productId"])
	}
	if resp["available"] != float64(1) || resp["requested"] != float64(3) {
		t.Fatalf("expected available=1 requested=3, got %v / %v", resp["available"], resp["requested"])
	}
}

func TestCreateOrder_UnknownProductIsNotFound(t *testing.T) {
	memory := store.NewMemory()
	r := newOrdersRouter(memory, "buyer@example.com")

	body := fmt.Sprintf(`{
		"items": [{"productId": %q, "quantity": 1}],
		"shippingAddress": "12 Main St",
		"paymentMethod": "cod"
	}`, primitive.NewObjectID().Hex())

	w := postJSON(r, "/api/orders", body)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", w.Code, w.Body.String())
	}
}

func TestCreateOrder_MalformedBodyIsBadRequest(t *testing.T) {
	memory := store.NewMemory()
	r := newOrdersRouter(memory, "buyer@example.com")

	w := postJSON(r, "/api/orders", `{"items": "nope"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}
