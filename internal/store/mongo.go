package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"pawkie/internal/models"
)

// Mongo implements Store on the platform's MongoDB collections.
type Mongo struct {
	db *mongo.Database
}

func NewMongo(db *mongo.Database) *Mongo {
	return &Mongo{db: db}
}

func (m *Mongo) FindProduct(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	var product models.Product
	err := m.db.Collection("products").FindOne(ctx, bson.M{"_id": id}).Decode(&product)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// DecrementStock only matches while stockQuantity still covers the
// quantity, so two racing orders cannot both take the last unit.
func (m *Mongo) DecrementStock(ctx context.Context, id primitive.ObjectID, quantity int) error {
	filter := bson.M{
		"_id":           id,
		"stockQuantity": bson.M{"$gte": quantity},
	}
	update := bson.M{
		"$inc": bson.M{"stockQuantity": -quantity},
		"$set": bson.M{"updatedAt": time.Now()},
	}

	res, err := m.db.Collection("products").UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *Mongo) IncrementStock(ctx context.Context, id primitive.ObjectID, quantity int) error {
	update := bson.M{
		"$inc": bson.M{"stockQuantity": quantity},
		"$set": bson.M{"updatedAt": time.Now()},
	}
	_, err := m.db.Collection("products").UpdateOne(ctx, bson.M{"_id": id}, update)
	return err
}

func (m *Mongo) InsertOrder(ctx context.Context, order *models.Order) (primitive.ObjectID, error) {
	res, err := m.db.Collection("orders").InsertOne(ctx, order)
	if err != nil {
		return primitive.NilObjectID, err
	}
	id, _ := res.InsertedID.(primitive.ObjectID)
	return id, nil
}

func (m *Mongo) SetOrderPayment(ctx context.Context, orderID, paymentID primitive.ObjectID, status string) error {
	update := bson.M{
		"$set": bson.M{
			"paymentStatus": status,
			"paymentId":     paymentID,
		},
	}
	res, err := m.db.Collection("orders").UpdateOne(ctx, bson.M{"_id": orderID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *Mongo) DeleteOrder(ctx context.Context, orderID primitive.ObjectID) error {
	_, err := m.db.Collection("orders").DeleteOne(ctx, bson.M{"_id": orderID})
	return err
}

func (m *Mongo) InsertPayment(ctx context.Context, payment *models.Payment) (primitive.ObjectID, error) {
	res, err := m.db.Collection("payments").InsertOne(ctx, payment)
	if err != nil {
		return primitive.NilObjectID, err
	}
	id, _ := res.InsertedID.(primitive.ObjectID)
	return id, nil
}

func (m *Mongo) DeletePayment(ctx context.Context, paymentID primitive.ObjectID) error {
	_, err := m.db.Collection("payments").DeleteOne(ctx, bson.M{"_id": paymentID})
	return err
}

func (m *Mongo) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := m.db.Collection("users").FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (m *Mongo) InsertQueueEntry(ctx context.Context, entry *models.QueueEntry) (primitive.ObjectID, error) {
	res, err := m.db.Collection("doctorQueue").InsertOne(ctx, entry)
	if err != nil {
		return primitive.NilObjectID, err
	}
	id, _ := res.InsertedID.(primitive.ObjectID)
	return id, nil
}

// AcceptEntry is the queue's compare-and-swap: filter and mutation run as
// one findOneAndUpdate, so concurrent doctors cannot both win the entry.
func (m *Mongo) AcceptEntry(ctx context.Context, doctorID string, entryID primitive.ObjectID, at time.Time) (*models.QueueEntry, error) {
	filter := bson.M{
		"_id":      entryID,
		"doctorId": doctorID,
		"status":   models.QueueStatusWaiting,
	}
	update := bson.M{
		"$set": bson.M{
			"status":     models.QueueStatusAccepted,
			"acceptedAt": at,
		},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var entry models.QueueEntry
	err := m.db.Collection("doctorQueue").FindOneAndUpdate(ctx, filter, update, opts).Decode(&entry)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (m *Mongo) ListWaitingEntries(ctx context.Context, doctorID string) ([]models.QueueEntry, error) {
	cursor, err := m.db.Collection("doctorQueue").Find(ctx, bson.M{
		"doctorId": doctorID,
		"status":   models.QueueStatusWaiting,
	}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	entries := make([]models.QueueEntry, 0)
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
