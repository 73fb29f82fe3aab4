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

// The missing-pet and rescue-pet boards share handlers; the collection name
// selects the board.
const (
	MissingPostsCollection = "missingPosts"
	RescuePostsCollection  = "rescuePosts"
)

type petPostRequest struct {
	Body      string `json:"body" binding:"required"`
	Image     string `json:"image"`
	ImageType string `json:"imageType"`
}

type commentRequest struct {
	UserName string `json:"userName" binding:"required"`
	Text     string `json:"text" binding:"required"`
}

func CreatePetPost(db *mongo.Database, collection string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req petPostRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		post := models.PetPost{
			Body:      strings.TrimSpace(req.Body),
			Image:     req.Image,
			ImageType: strings.TrimSpace(req.ImageType),
			Comments:  []models.Comment{},
			CreatedAt: time.Now(),
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		res, err := db.Collection(collection).InsertOne(ctx, post)
		if err != nil {
			log.Printf("[POST] [ERROR] %s insert failed: %v", collection, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		if id, ok := res.InsertedID.(primitive.ObjectID); ok {
			post.ID = id
		}

		c.JSON(http.StatusCreated, gin.H{
			"message": "post submitted",
			"postId":  res.InsertedID,
			"post":    post,
		})
	}
}

func GetPetPosts(db *mongo.Database, collection string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := requestContext(c)
		defer cancel()

		cursor, err := db.Collection(collection).Find(
			ctx,
			bson.M{},
			options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}),
		)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		defer cursor.Close(ctx)

		posts := make([]models.PetPost, 0)
		if err := cursor.All(ctx, &posts); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "decode error"})
			return
		}

		c.JSON(http.StatusOK, posts)
	}
}

// AddComment appends a comment with an atomic $push, so concurrent comments
// never overwrite each other.
func AddComment(db *mongo.Database, collection string) gin.HandlerFunc {
	return func(c *gin.Context) {
		postID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}

		var req commentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		comment := models.Comment{
			UserName:  strings.TrimSpace(req.UserName),
			Text:      strings.TrimSpace(req.Text),
			CreatedAt: time.Now(),
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		res, err := db.Collection(collection).UpdateOne(ctx, bson.M{"_id": postID}, bson.M{
			"$push": bson.M{"comments": comment},
		})
		if err != nil {
			log.Printf("[POST] [ERROR] %s comment failed: %v", collection, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		if res.MatchedCount == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "post not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "comment added", "comment": comment})
	}
}
