package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"pawkie/internal/models"
)

// Memory is a mutex-guarded Store used by tests in place of the real
// deployment. The mutex gives each call the same per-document atomicity the
// driver gets from the server, which is what the conditional updates rely
// on.
type Memory struct {
	mu       sync.Mutex
	products map[primitive.ObjectID]*models.Product
	orders   map[primitive.ObjectID]*models.Order
	payments map[primitive.ObjectID]*models.Payment
	users    map[string]*models.User
	queue    map[primitive.ObjectID]*models.QueueEntry
}

func NewMemory() *Memory {
	return &Memory{
		products: make(map[primitive.ObjectID]*models.Product),
		orders:   make(map[primitive.ObjectID]*models.Order),
		payments: make(map[primitive.ObjectID]*models.Payment),
		users:    make(map[string]*models.User),
		queue:    make(map[primitive.ObjectID]*models.QueueEntry),
	}
}

// SeedProduct inserts a product and returns its generated id.
func (m *Memory) SeedProduct(product models.Product) primitive.ObjectID {
	m.mu.Lock()
	defer m.mu.Unlock()
	if product.ID.IsZero() {
		product.ID = primitive.NewObjectID()
	}
	m.products[product.ID] = &product
	return product.ID
}

// SeedUser inserts a user keyed by email.
func (m *Memory) SeedUser(user models.User) primitive.ObjectID {
	m.mu.Lock()
	defer m.mu.Unlock()
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	m.users[user.Email] = &user
	return user.ID
}

func (m *Memory) FindProduct(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	product, ok := m.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *product
	return &copied, nil
}

func (m *Memory) DecrementStock(ctx context.Context, id primitive.ObjectID, quantity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	product, ok := m.products[id]
	if !ok || product.StockQuantity < quantity {
		return ErrNotFound
	}
	product.StockQuantity -= quantity
	product.UpdatedAt = time.Now()
	return nil
}

func (m *Memory) IncrementStock(ctx context.Context, id primitive.ObjectID, quantity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	product, ok := m.products[id]
	if !ok {
		return nil
	}
	product.StockQuantity += quantity
	product.UpdatedAt = time.Now()
	return nil
}

func (m *Memory) InsertOrder(ctx context.Context, order *models.Order) (primitive.ObjectID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *order
	copied.ID = primitive.NewObjectID()
	m.orders[copied.ID] = &copied
	return copied.ID, nil
}

func (m *Memory) SetOrderPayment(ctx context.Context, orderID, paymentID primitive.ObjectID, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	order, ok := m.orders[orderID]
	if !ok {
		return ErrNotFound
	}
	order.PaymentStatus = status
	order.PaymentID = &paymentID
	return nil
}

func (m *Memory) DeleteOrder(ctx context.Context, orderID primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.orders, orderID)
	return nil
}

func (m *Memory) InsertPayment(ctx context.Context, payment *models.Payment) (primitive.ObjectID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *payment
	copied.ID = primitive.NewObjectID()
	m.payments[copied.ID] = &copied
	return copied.ID, nil
}

func (m *Memory) DeletePayment(ctx context.Context, paymentID primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.payments, paymentID)
	return nil
}

func (m *Memory) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[email]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (m *Memory) InsertQueueEntry(ctx context.Context, entry *models.QueueEntry) (primitive.ObjectID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *entry
	copied.ID = primitive.NewObjectID()
	m.queue[copied.ID] = &copied
	return copied.ID, nil
}

func (m *Memory) AcceptEntry(ctx context.Context, doctorID string, entryID primitive.ObjectID, at time.Time) (*models.QueueEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.queue[entryID]
	if !ok || entry.DoctorID != doctorID || entry.Status != models.QueueStatusWaiting {
		return nil, ErrNotFound
	}
	entry.Status = models.QueueStatusAccepted
	accepted := at
	entry.AcceptedAt = &accepted
	copied := *entry
	return &copied, nil
}

func (m *Memory) ListWaitingEntries(ctx context.Context, doctorID string) ([]models.QueueEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entries := make([]models.QueueEntry, 0)
	for _, entry := range m.queue {
		if entry.DoctorID == doctorID && entry.Status == models.QueueStatusWaiting {
			entries = append(entries, *entry)
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].CreatedAt.Before(entries[j].CreatedAt)
	})
	return entries, nil
}

// Order returns a stored order by id, for test assertions.
func (m *Memory) Order(id primitive.ObjectID) (*models.Order, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	order, ok := m.orders[id]
	if !ok {
		return nil, false
	}
	copied := *order
	return &copied, true
}

// Payment returns a stored payment by id, for test assertions.
func (m *Memory) Payment(id primitive.ObjectID) (*models.Payment, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	payment, ok := m.payments[id]
	if !ok {
		return nil, false
	}
	copied := *payment
	return &copied, true
}

// Counts reports how many orders and payments exist, for all-or-nothing
// assertions.
func (m *Memory) Counts() (orders, payments int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.orders), len(m.payments)
}
