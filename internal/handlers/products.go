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

	"pawkie/internal/cache"
	"pawkie/internal/models"
)

type productRequest struct {
	Name          string  `json:"name" binding:"required"`
	Description   string  `json:"description"`
	Price         float64 `json:"price" binding:"required"`
	Category      string  `json:"category"`
	StockQuantity int     `json:"stockQuantity" binding:"required"`
	Image         string  `json:"image"`
}

func CreateProduct(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/products"
		defer handlePanic(c, route)

		var req productRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}
		if req.Price < 0 || req.StockQuantity < 0 {
			respondWithError(c, http.StatusBadRequest, route, "price and stock quantity must not be negative")
			return
		}

		now := time.Now()
		product := models.Product{
			Name:          strings.TrimSpace(req.Name),
			Description:   strings.TrimSpace(req.Description),
			Price:         req.Price,
			Category:      strings.TrimSpace(req.Category),
			StockQuantity: req.StockQuantity,
			Image:         strings.TrimSpace(req.Image),
			CreatedAt:     now,
			UpdatedAt:     now,
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		if err := ensureDBConnection(ctx, db); err != nil {
			log.Println("[PRODUCT] [ERROR] database unreachable:", err)
			respondWithError(c, http.StatusInternalServerError, route, "database unavailable")
			return
		}

		res, err := db.Collection("products").InsertOne(ctx, product)
		if err != nil {
			log.Println("[PRODUCT] [ERROR] insert failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"message":   "product added",
			"productId": res.InsertedID,
		})
	}
}

func GetProducts(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/products"
		defer handlePanic(c, route)

		query := bson.M{}
		if category := strings.TrimSpace(c.Query("category")); category != "" {
			query["category"] = category
		}
		if c.Query("inStock") == "true" {
			query["stockQuantity"] = bson.M{"$gt": 0}
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		cursor, err := db.Collection("products").Find(ctx, query)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		defer cursor.Close(ctx)

		products := make([]models.Product, 0)
		if err := cursor.All(ctx, &products); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "decode error")
			return
		}

		c.JSON(http.StatusOK, products)
	}
}

// GetProduct reads through the product cache when one is configured.
func GetProduct(db *mongo.Database, productCache *cache.Products) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/products/:id"
		defer handlePanic(c, route)

		productID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		if cached := productCache.Get(ctx, productID.Hex()); cached != nil {
			c.JSON(http.StatusOK, cached)
			return
		}

		var product models.Product
		if err := db.Collection("products").FindOne(ctx, bson.M{"_id": productID}).Decode(&product); err != nil {
			respondWithError(c, http.StatusNotFound, route, "product not found")
			return
		}

		productCache.Set(ctx, &product)
		c.JSON(http.StatusOK, product)
	}
}

func UpdateProduct(db *mongo.Database, productCache *cache.Products) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/products/:id"
		defer handlePanic(c, route)

		productID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		var req productRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}
		if req.Price < 0 || req.StockQuantity < 0 {
			respondWithError(c, http.StatusBadRequest, route, "price and stock quantity must not be negative")
			return
		}

		update := bson.M{
			"name":          strings.TrimSpace(req.Name),
			"description":   strings.TrimSpace(req.Description),
			"price":         req.Price,
			"category":      strings.TrimSpace(req.Category),
			"stockQuantity": req.StockQuantity,
			"updatedAt":     time.Now(),
		}
		if image := strings.TrimSpace(req.Image); image != "" {
			update["image"] = image
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		res, err := db.Collection("products").UpdateOne(ctx, bson.M{"_id": productID}, bson.M{"$set": update})
		if err != nil {
			log.Println("[PRODUCT] [ERROR] update failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if res.MatchedCount == 0 {
			respondWithError(c, http.StatusNotFound, route, "product not found")
			return
		}

		productCache.Invalidate(ctx, productID.Hex())
		c.JSON(http.StatusOK, gin.H{"message": "product updated"})
	}
}

func DeleteProduct(db *mongo.Database, productCache *cache.Products) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /api/products/:id"
		defer handlePanic(c, route)

		productID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		res, err := db.Collection("products").DeleteOne(ctx, bson.M{"_id": productID})
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if res.DeletedCount == 0 {
			respondWithError(c, http.StatusNotFound, route, "product not found")
			return
		}

		productCache.Invalidate(ctx, productID.Hex())
		c.JSON(http.StatusOK, gin.H{"message": "product deleted"})
	}
}

type stockRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

// UpdateStock sets the absolute stock level (admin restock/correction).
func UpdateStock(db *mongo.Database, productCache *cache.Products) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PATCH /api/products/:id/stock"
		defer handlePanic(c, route)

		productID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		var req stockRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Quantity == nil {
			respondWithError(c, http.StatusBadRequest, route, "valid quantity is required")
			return
		}
		if *req.Quantity < 0 {
			respondWithError(c, http.StatusBadRequest, route, "quantity must not be negative")
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		res, err := db.Collection("products").UpdateOne(ctx, bson.M{"_id": productID}, bson.M{
			"$set": bson.M{"stockQuantity": *req.Quantity, "updatedAt": time.Now()},
		})
		if err != nil {
			log.Println("[PRODUCT] [ERROR] stock update failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if res.MatchedCount == 0 {
			respondWithError(c, http.StatusNotFound, route, "product not found")
			return
		}

		productCache.Invalidate(ctx, productID.Hex())
		c.JSON(http.StatusOK, gin.H{"message": "stock updated"})
	}
}
