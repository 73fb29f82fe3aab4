package database

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func EnsureUserIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	emailIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "email", Value: 1}},
		Options: options.Index().
			SetName("email_unique").
			SetUnique(true),
	}

	log.Println("EnsureUserIndexes: creating email_unique index")
	_, err := db.Collection("users").Indexes().CreateOne(ctx, emailIndex)
	if err != nil {
		log.Println("EnsureUserIndexes: email index error:", err)
		return err
	}
	return nil
}

func EnsureProductIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	categoryIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "category", Value: 1}},
		Options: options.Index().SetName("category_index"),
	}

	log.Println("EnsureProductIndexes: creating category_index")
	_, err := db.Collection("products").Indexes().CreateOne(ctx, categoryIndex)
	if err != nil {
		log.Println("EnsureProductIndexes: category index error:", err)
		return err
	}
	return nil
}

func EnsureOrderIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	userEmailIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "userEmail", Value: 1}, {Key: "createdAt", Value: -1}},
		Options: options.Index().SetName("userEmail_createdAt_index"),
	}

	log.Println("EnsureOrderIndexes: creating userEmail_createdAt_index")
	_, err := db.Collection("orders").Indexes().CreateOne(ctx, userEmailIndex)
	if err != nil {
		log.Println("EnsureOrderIndexes: userEmail index error:", err)
		return err
	}
	return nil
}

// EnsureQueueIndexes backs the per-doctor waiting-list scan and keeps the
// accept filter selective.
func EnsureQueueIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	doctorStatusIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "doctorId", Value: 1}, {Key: "status", Value: 1}},
		Options: options.Index().SetName("doctorId_status_index"),
	}

	log.Println("EnsureQueueIndexes: creating doctorId_status_index")
	_, err := db.Collection("doctorQueue").Indexes().CreateOne(ctx, doctorStatusIndex)
	if err != nil {
		log.Println("EnsureQueueIndexes: doctorId index error:", err)
		return err
	}
	return nil
}

// EnsurePostIndexes keeps the newest-first board queries off the collection
// scan path.
func EnsurePostIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	createdAtIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "createdAt", Value: -1}},
		Options: options.Index().SetName("createdAt_desc_index"),
	}

	for _, name := range []string{"missingPosts", "rescuePosts", "pets"} {
		log.Printf("EnsurePostIndexes: creating createdAt_desc_index on %s", name)
		if _, err := db.Collection(name).Indexes().CreateOne(ctx, createdAtIndex); err != nil {
			log.Printf("EnsurePostIndexes: %s index error: %v", name, err)
			return err
		}
	}
	return nil
}
