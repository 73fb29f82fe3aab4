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

	"pawkie/internal/models"
)

type adoptionPostRequest struct {
	OwnerName string   `json:"ownerName" binding:"required"`
	Contact   string   `json:"contact" binding:"required"`
	Address   string   `json:"address" binding:"required"`
	PetName   string   `json:"petName" binding:"required"`
	PetBreed  string   `json:"petBreed" binding:"required"`
	PetColor  string   `json:"petColor" binding:"required"`
	PetAge    string   `json:"petAge" binding:"required"`
	Images    []string `json:"images" binding:"required"`
}

func CreateAdoptionPost(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req adoptionPostRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}
		if len(req.Images) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "at least one image is required"})
			return
		}

		post := models.AdoptionPost{
			OwnerName: strings.TrimSpace(req.OwnerName),
			Contact:   strings.TrimSpace(req.Contact),
			Address:   strings.TrimSpace(req.Address),
			PetName:   strings.TrimSpace(req.PetName),
			PetBreed:  strings.TrimSpace(req.PetBreed),
			PetColor:  strings.TrimSpace(req.PetColor),
			PetAge:    strings.TrimSpace(req.PetAge),
			Images:    req.Images,
			CreatedAt: time.Now(),
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		res, err := db.Collection("pets").InsertOne(ctx, post)
		if err != nil {
			log.Println("[ADOPT] [ERROR] insert failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		c.JSON(http.StatusCreated, gin.H{"message": "adoption post saved", "petId": res.InsertedID})
	}
}

func GetAdoptionPosts(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := requestContext(c)
		defer cancel()

		cursor, err := db.Collection("pets").Find(
			ctx,
			bson.M{},
			options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}),
		)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		defer cursor.Close(ctx)

		posts := make([]models.AdoptionPost, 0)
		if err := cursor.All(ctx, &posts); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "decode error"})
			return
		}

		c.JSON(http.StatusOK, posts)
	}
}

func DeleteAdoptionPost(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		postID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		res, err := db.Collection("pets").DeleteOne(ctx, bson.M{"_id": postID})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		if res.DeletedCount == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "post not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "post deleted"})
	}
}

// CreateAdoptedPet records an adoption request; status stays false until an
// admin confirms it.
func CreateAdoptedPet(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		var pet models.AdoptedPet
		if err := c.ShouldBindJSON(&pet); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
			return
		}

		pet.ID = primitive.NilObjectID
		pet.Status = false
		if pet.CreatedAt.IsZero() {
			pet.CreatedAt = time.Now()
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		res, err := db.Collection("adoptedPets").InsertOne(ctx, pet)
		if err != nil {
			log.Println("[ADOPT] [ERROR] adopted pet insert failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		c.JSON(http.StatusCreated, gin.H{"insertedId": res.InsertedID})
	}
}

func GetAdoptedPets(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := requestContext(c)
		defer cancel()

		cursor, err := db.Collection("adoptedPets").Find(ctx, bson.M{})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		defer cursor.Close(ctx)

		pets := make([]models.AdoptedPet, 0)
		if err := cursor.All(ctx, &pets); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "decode error"})
			return
		}

		c.JSON(http.StatusOK, pets)
	}
}

func ConfirmAdoptedPet(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		petID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		res, err := db.Collection("adoptedPets").UpdateOne(ctx, bson.M{"_id": petID}, bson.M{
			"$set": bson.M{"status": true},
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		if res.MatchedCount == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "pet not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "adoption confirmed"})
	}
}

func DeleteAdoptedPet(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		petID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		res, err := db.Collection("adoptedPets").DeleteOne(ctx, bson.M{"_id": petID})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		if res.DeletedCount == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "pet not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "pet deleted"})
	}
}
