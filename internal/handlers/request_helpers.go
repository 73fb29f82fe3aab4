package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"pawkie/internal/service"
)

func handlePanic(c *gin.Context, route string) {
	if r := recover(); r != nil {
		log.Printf("[%s] panic recovered: %v", route, r)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func ensureDBConnection(ctx context.Context, db *mongo.Database) error {
	checkCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	return db.Client().Ping(checkCtx, readpref.Primary())
}

func respondWithError(c *gin.Context, status int, route string, message string) {
	log.Printf("[%s] returning error %d: %s", route, status, message)
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}

// respondServiceError maps the domain error taxonomy onto HTTP statuses.
func respondServiceError(c *gin.Context, route string, err error) {
	var stockErr service.InsufficientStockError
	if errors.As(err, &stockErr) {
		log.Printf("[%s] insufficient stock for %s: available %d, requested %d",
			route, stockErr.ProductID, stockErr.Available, stockErr.Requested)
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     stockErr.Error(),
			"productId": stockErr.ProductID,
			"available": stockErr.Available,
			"requested": stockErr.Requested,
		})
		return
	}

	var validationErr service.ValidationError
	if errors.As(err, &validationErr) {
		respondWithError(c, http.StatusBadRequest, route, validationErr.Error())
		return
	}

	var notFoundErr service.NotFoundError
	if errors.As(err, &notFoundErr) {
		respondWithError(c, http.StatusNotFound, route, notFoundErr.Error())
		return
	}

	var forbiddenErr service.ForbiddenError
	if errors.As(err, &forbiddenErr) {
		respondWithError(c, http.StatusForbidden, route, forbiddenErr.Error())
		return
	}

	log.Printf("[%s] store error: %v", route, err)
	respondWithError(c, http.StatusInternalServerError, route, "internal server error")
}

func requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), 5*time.Second)
}
