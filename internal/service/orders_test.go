package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"pawkie/internal/events"
	"pawkie/internal/models"
	"pawkie/internal/store"
)

type recordingPublisher struct {
	mu     sync.Mutex
	orders []*models.Order
}

func (r *recordingPublisher) OrderCreated(ctx context.Context, order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders = append(r.orders, order)
	return nil
}

func (r *recordingPublisher) OrderStatusChanged(ctx context.Context, orderID, newStatus string) error {
	return nil
}

func newOrdersService() (*Orders, *store.Memory) {
	mem := store.NewMemory()
	return NewOrders(mem, events.NoopPublisher{}), mem
}

func TestPlaceOrderComputesTotalFromCapturedPrices(t *testing.T) {
	svc, mem := newOrdersService()
	ctx := context.Background()

	foodID := mem.SeedProduct(models.Product{Name: "Dog Food", Price: 12.5, StockQuantity: 10})
	toyID := mem.SeedProduct(models.Product{Name: "Chew Toy", Price: 4, StockQuantity: 10})

	res, err := svc.PlaceOrder(ctx, "zayed@example.com", PlaceOrderInput{
		Items: []OrderItemInput{
			{ProductID: foodID.Hex(), Quantity: 3},
			{ProductID: toyID.Hex(), Quantity: 2},
		},
		ShippingAddress: "House 12, Road 5, Dhaka",
		PaymentMethod:   models.PaymentMethodCOD,
	})
	if err != nil {
		t.Fatalf("PlaceOrder returned error: %v", err)
	}

	order, ok := mem.Order(res.OrderID)
	if !ok {
		t.Fatal("order was not persisted")
	}
	if want := 12.5*3 + 4*2; order.TotalAmount != want {
		t.Fatalf("totalAmount = %v, want %v", order.TotalAmount, want)
	}
	for _, item := range order.Items {
		if item.Subtotal != item.Price*float64(item.Quantity) {
			t.Fatalf("subtotal %v does not match price %v x quantity %d", item.Subtotal, item.Price, item.Quantity)
		}
	}
	if order.UserEmail != "zayed@example.com" {
		t.Fatalf("userEmail = %q", order.UserEmail)
	}
}

func TestPlaceOrderDecrementsStock(t *testing.T) {
	svc, mem := newOrdersService()
	ctx := context.Background()

	productID := mem.SeedProduct(models.Product{Name: "Litter", Price: 9, StockQuantity: 5})

	res, err := svc.PlaceOrder(ctx, "user@example.com", PlaceOrderInput{
		Items:           []OrderItemInput{{ProductID: productID.Hex(), Quantity: 3}},
		ShippingAddress: "somewhere",
		PaymentMethod:   models.PaymentMethodCOD,
	})
	if err != nil {
		t.Fatalf("PlaceOrder returned error: %v", err)
	}

	product, _ := mem.FindProduct(ctx, productID)
	if product.StockQuantity != 2 {
		t.Fatalf("stockQuantity = %d, want 2", product.StockQuantity)
	}

	order, _ := mem.Order(res.OrderID)
	if order.TotalAmount != 9*3 {
		t.Fatalf("totalAmount = %v, want %v", order.TotalAmount, 9.0*3)
	}
}

func TestPlaceOrderSnapshotsPriceAtPurchaseTime(t *testing.T) {
	svc, mem := newOrdersService()
	ctx := context.Background()

	productID := mem.SeedProduct(models.Product{Name: "Leash", Price: 20, StockQuantity: 10})

	res, err := svc.PlaceOrder(ctx, "user@example.com", PlaceOrderInput{
		Items:           []OrderItemInput{{ProductID: productID.Hex(), Quantity: 1}},
		ShippingAddress: "somewhere",
		PaymentMethod:   models.PaymentMethodCOD,
	})
	if err != nil {
		t.Fatalf("PlaceOrder returned error: %v", err)
	}

	// A later price edit must not rewrite the snapshot.
	mem.SeedProduct(models.Product{ID: productID, Name: "Leash", Price: 35, StockQuantity: 9})

	order, _ := mem.Order(res.OrderID)
	if order.Items[0].Price != 20 || order.TotalAmount != 20 {
		t.Fatalf("snapshot price changed: item price %v, total %v", order.Items[0].Price, order.TotalAmount)
	}
}

func TestPlaceOrderInsufficientStockIsAllOrNothing(t *testing.T) {
	svc, mem := newOrdersService()
	ctx := context.Background()

	okID := mem.SeedProduct(models.Product{Name: "Food", Price: 10, StockQuantity: 10})
	lowID := mem.SeedProduct(models.Product{Name: "Treats", Price: 5, StockQuantity: 1})

	_, err := svc.PlaceOrder(ctx, "user@example.com", PlaceOrderInput{
		Items: []OrderItemInput{
			{ProductID: okID.Hex(), Quantity: 2},
			{ProductID: lowID.Hex(), Quantity: 4},
		},
		ShippingAddress: "somewhere",
		PaymentMethod:   models.PaymentMethodCreditCard,
	})

	var stockErr InsufficientStockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}
	if stockErr.Available != 1 || stockErr.Requested != 4 {
		t.Fatalf("unexpected stock error detail: %+v", stockErr)
	}

	// The first item's decrement must have been compensated.
	first, _ := mem.FindProduct(ctx, okID)
	second, _ := mem.FindProduct(ctx, lowID)
	if first.StockQuantity != 10 || second.StockQuantity != 1 {
		t.Fatalf("stock mutated by failed order: %d, %d", first.StockQuantity, second.StockQuantity)
	}

	orders, payments := mem.Counts()
	if orders != 0 || payments != 0 {
		t.Fatalf("failed order persisted documents: %d orders, %d payments", orders, payments)
	}
}

func TestPlaceOrderUnknownProduct(t *testing.T) {
	svc, mem := newOrdersService()
	ctx := context.Background()

	missing := "64b000000000000000000001"
	_, err := svc.PlaceOrder(ctx, "user@example.com", PlaceOrderInput{
		Items:           []OrderItemInput{{ProductID: missing, Quantity: 1}},
		ShippingAddress: "somewhere",
		PaymentMethod:   models.PaymentMethodCOD,
	})

	var notFound NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if notFound.ID != missing {
		t.Fatalf("expected missing product id in error, got %+v", notFound)
	}

	orders, payments := mem.Counts()
	if orders != 0 || payments != 0 {
		t.Fatalf("failed order persisted documents: %d orders, %d payments", orders, payments)
	}
}

func TestPlaceOrderValidation(t *testing.T) {
	svc, mem := newOrdersService()
	ctx := context.Background()
	productID := mem.SeedProduct(models.Product{Name: "Food", Price: 10, StockQuantity: 10})

	cases := []PlaceOrderInput{
		{ShippingAddress: "a", PaymentMethod: models.PaymentMethodCOD},
		{Items: []OrderItemInput{{ProductID: productID.Hex(), Quantity: 1}}, PaymentMethod: models.PaymentMethodCOD},
		{Items: []OrderItemInput{{ProductID: productID.Hex(), Quantity: 1}}, ShippingAddress: "a"},
		{Items: []OrderItemInput{{ProductID: productID.Hex(), Quantity: 1}}, ShippingAddress: "a", PaymentMethod: "bitcoin"},
		{Items: []OrderItemInput{{ProductID: productID.Hex(), Quantity: 0}}, ShippingAddress: "a", PaymentMethod: models.PaymentMethodCOD},
		{Items: []OrderItemInput{{ProductID: "nothex", Quantity: 1}}, ShippingAddress: "a", PaymentMethod: models.PaymentMethodCOD},
	}

	for i, input := range cases {
		_, err := svc.PlaceOrder(ctx, "user@example.com", input)
		var validation ValidationError
		if !errors.As(err, &validation) {
			t.Fatalf("case %d: expected ValidationError, got %v", i, err)
		}
	}
}

func TestPlaceOrderPaymentOutcomeByMethod(t *testing.T) {
	svc, mem := newOrdersService()
	ctx := context.Background()

	productID := mem.SeedProduct(models.Product{Name: "Food", Price: 10, StockQuantity: 30})

	place := func(method string) (*models.Order, *models.Payment) {
		t.Helper()
		res, err := svc.PlaceOrder(ctx, "user@example.com", PlaceOrderInput{
			Items:           []OrderItemInput{{ProductID: productID.Hex(), Quantity: 1}},
			ShippingAddress: "somewhere",
			PaymentMethod:   method,
		})
		if err != nil {
			t.Fatalf("PlaceOrder(%s) returned error: %v", method, err)
		}
		order, ok := mem.Order(res.OrderID)
		if !ok {
			t.Fatalf("order missing for method %s", method)
		}
		if order.PaymentID == nil {
			t.Fatalf("order not back-referenced with payment id for method %s", method)
		}
		payment, ok := mem.Payment(*order.PaymentID)
		if !ok {
			t.Fatalf("payment missing for method %s", method)
		}
		return order, payment
	}

	order, payment := place(models.PaymentMethodCOD)
	if order.PaymentStatus != models.PaymentStatusPending || payment.Status != models.PaymentStatusPending {
		t.Fatalf("cod should stay pending, got order %s payment %s", order.PaymentStatus, payment.Status)
	}
	if payment.TransactionID != "" {
		t.Fatalf("cod payment must not carry a transaction id, got %q", payment.TransactionID)
	}

	order, payment = place(models.PaymentMethodCreditCard)
	if order.PaymentStatus != models.PaymentStatusCompleted {
		t.Fatalf("credit_card should complete, got %s", order.PaymentStatus)
	}
	if !strings.HasPrefix(payment.TransactionID, "CC-") {
		t.Fatalf("credit_card transaction id = %q", payment.TransactionID)
	}

	_, payment = place(models.PaymentMethodPaypal)
	if !strings.HasPrefix(payment.TransactionID, "PP-") {
		t.Fatalf("paypal transaction id = %q", payment.TransactionID)
	}
	if payment.OrderID.IsZero() {
		t.Fatal("payment must reference its order")
	}
}

func TestPlaceOrderConcurrentLastUnit(t *testing.T) {
	mem := store.NewMemory()
	svc := NewOrders(mem, events.NoopPublisher{})
	ctx := context.Background()

	productID := mem.SeedProduct(models.Product{Name: "Aquarium", Price: 100, StockQuantity: 1})

	input := PlaceOrderInput{
		Items:           []OrderItemInput{{ProductID: productID.Hex(), Quantity: 1}},
		ShippingAddress: "somewhere",
		PaymentMethod:   models.PaymentMethodCOD,
	}

	results := make(chan error, 2)
	var start sync.WaitGroup
	start.Add(1)
	for i := 0; i < 2; i++ {
		go func() {
			start.Wait()
			_, err := svc.PlaceOrder(ctx, "user@example.com", input)
			results <- err
		}()
	}
	start.Done()

	var succeeded, insufficient int
	for i := 0; i < 2; i++ {
		err := <-results
		switch {
		case err == nil:
			succeeded++
		default:
			var stockErr InsufficientStockError
			if !errors.As(err, &stockErr) {
				t.Fatalf("unexpected error: %v", err)
			}
			insufficient++
		}
	}

	if succeeded != 1 || insufficient != 1 {
		t.Fatalf("expected exactly one winner, got %d successes and %d stock failures", succeeded, insufficient)
	}

	product, _ := mem.FindProduct(ctx, productID)
	if product.StockQuantity != 0 {
		t.Fatalf("stockQuantity = %d, want 0", product.StockQuantity)
	}
	orders, payments := mem.Counts()
	if orders != 1 || payments != 1 {
		t.Fatalf("expected one order/payment pair, got %d/%d", orders, payments)
	}
}

func TestPlaceOrderPublishesCreatedEvent(t *testing.T) {
	mem := store.NewMemory()
	publisher := &recordingPublisher{}
	svc := NewOrders(mem, publisher)
	ctx := context.Background()

	productID := mem.SeedProduct(models.Product{Name: "Food", Price: 10, StockQuantity: 5})

	res, err := svc.PlaceOrder(ctx, "user@example.com", PlaceOrderInput{
		Items:           []OrderItemInput{{ProductID: productID.Hex(), Quantity: 1}},
		ShippingAddress: "somewhere",
		PaymentMethod:   models.PaymentMethodPaypal,
	})
	if err != nil {
		t.Fatalf("PlaceOrder returned error: %v", err)
	}

	if len(publisher.orders) != 1 {
		t.Fatalf("expected one published event, got %d", len(publisher.orders))
	}
	if publisher.orders[0].ID != res.OrderID {
		t.Fatal("published event references a different order")
	}
	if publisher.orders[0].PaymentStatus != models.PaymentStatusCompleted {
		t.Fatalf("published order should carry the final payment status, got %s", publisher.orders[0].PaymentStatus)
	}
}

// faultyStore fails one named store operation and delegates the rest, so
// tests can break the checkout at a chosen step.
type faultyStore struct {
	*store.Memory
	failOp string
}

var errStoreDown = errors.New("store down")

func (f *faultyStore) InsertOrder(ctx context.Context, order *models.Order) (primitive.ObjectID, error) {
	if f.failOp == "insert order" {
		return primitive.NilObjectID, errStoreDown
	}
	return f.Memory.InsertOrder(ctx, order)
}

func (f *faultyStore) InsertPayment(ctx context.Context, payment *models.Payment) (primitive.ObjectID, error) {
	if f.failOp == "insert payment" {
		return primitive.NilObjectID, errStoreDown
	}
	return f.Memory.InsertPayment(ctx, payment)
}

func (f *faultyStore) SetOrderPayment(ctx context.Context, orderID, paymentID primitive.ObjectID, status string) error {
	if f.failOp == "set order payment" {
		return errStoreDown
	}
	return f.Memory.SetOrderPayment(ctx, orderID, paymentID, status)
}

func TestPlaceOrderStoreFailureMutatesNothing(t *testing.T) {
	for _, failOp := range []string{"insert order", "insert payment", "set order payment"} {
		t.Run(failOp, func(t *testing.T) {
			mem := store.NewMemory()
			svc := NewOrders(&faultyStore{Memory: mem, failOp: failOp}, events.NoopPublisher{})
			ctx := context.Background()

			productID := mem.SeedProduct(models.Product{Name: "Harness", Price: 20, StockQuantity: 5})

			_, err := svc.PlaceOrder(ctx, "user@example.com", PlaceOrderInput{
				Items:           []OrderItemInput{{ProductID: productID.Hex(), Quantity: 2}},
				ShippingAddress: "somewhere",
				PaymentMethod:   models.PaymentMethodCreditCard,
			})
			var storeErr StoreError
			if !errors.As(err, &storeErr) {
				t.Fatalf("expected a StoreError, got %v", err)
			}

			product, _ := mem.FindProduct(ctx, productID)
			if product.StockQuantity != 5 {
				t.Fatalf("stockQuantity = %d, want 5 restored", product.StockQuantity)
			}
			orders, payments := mem.Counts()
			if orders != 0 || payments != 0 {
				t.Fatalf("expected no order/payment left behind, got %d/%d", orders, payments)
			}
		})
	}
}
