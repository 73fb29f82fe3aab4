package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"pawkie/internal/models"
)

// ErrNotFound is returned when a lookup matches no document, and by the
// conditional updates when their predicate matches nothing.
var ErrNotFound = errors.New("document not found")

// ProductStore gives the order processor its two stock primitives: an
// atomic conditional decrement (only matches while stockQuantity covers the
// quantity) and the plain increment used to compensate a lost race.
type ProductStore interface {
	FindProduct(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	DecrementStock(ctx context.Context, id primitive.ObjectID, quantity int) error
	IncrementStock(ctx context.Context, id primitive.ObjectID, quantity int) error
}

// OrderStore and PaymentStore carry delete alongside insert so the order
// processor can take back a document it wrote when a later step fails.
type OrderStore interface {
	InsertOrder(ctx context.Context, order *models.Order) (primitive.ObjectID, error)
	SetOrderPayment(ctx context.Context, orderID, paymentID primitive.ObjectID, status string) error
	DeleteOrder(ctx context.Context, orderID primitive.ObjectID) error
}

type PaymentStore interface {
	InsertPayment(ctx context.Context, payment *models.Payment) (primitive.ObjectID, error)
	DeletePayment(ctx context.Context, paymentID primitive.ObjectID) error
}

type UserStore interface {
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// QueueStore backs the consultation queue. AcceptEntry is a single
// compare-and-swap: it transitions the entry to accepted only while the
// entry still belongs to the doctor and is waiting, and returns ErrNotFound
// otherwise.
type QueueStore interface {
	InsertQueueEntry(ctx context.Context, entry *models.QueueEntry) (primitive.ObjectID, error)
	AcceptEntry(ctx context.Context, doctorID string, entryID primitive.ObjectID, at time.Time) (*models.QueueEntry, error)
	ListWaitingEntries(ctx context.Context, doctorID string) ([]models.QueueEntry, error)
}

// Store bundles the collection views the services need.
type Store interface {
	ProductStore
	OrderStore
	PaymentStore
	UserStore
	QueueStore
}
