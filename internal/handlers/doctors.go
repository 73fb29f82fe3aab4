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

	"pawkie/internal/models"
)

func CreateDoctor(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		var doctor models.Doctor
		if err := c.ShouldBindJSON(&doctor); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
			return
		}
		if strings.TrimSpace(doctor.Name) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
			return
		}
		doctor.ID = primitive.NilObjectID

		ctx, cancel := requestContext(c)
		defer cancel()

		res, err := db.Collection("doctors").InsertOne(ctx, doctor)
		if err != nil {
			log.Println("[DOCTOR] [ERROR] insert failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save doctor info"})
			return
		}

		c.JSON(http.StatusCreated, gin.H{"insertedId": res.InsertedID})
	}
}

func GetDoctors(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := requestContext(c)
		defer cancel()

		cursor, err := db.Collection("doctors").Find(ctx, bson.M{})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		defer cursor.Close(ctx)

		doctors := make([]models.Doctor, 0)
		if err := cursor.All(ctx, &doctors); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "decode error"})
			return
		}

		c.JSON(http.StatusOK, doctors)
	}
}

type prescriptionRequest struct {
	DoctorID string `json:"doctorId" binding:"required"`
	UserID   string `json:"userId" binding:"required"`
	Text     string `json:"text" binding:"required"`
}

func CreatePrescription(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req prescriptionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		prescription := models.Prescription{
			DoctorID:  strings.TrimSpace(req.DoctorID),
			UserID:    strings.TrimSpace(req.UserID),
			Text:      strings.TrimSpace(req.Text),
			CreatedAt: time.Now(),
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		res, err := db.Collection("prescriptions").InsertOne(ctx, prescription)
		if err != nil {
			log.Println("[PRESCRIPTION] [ERROR] insert failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "error saving prescription"})
			return
		}

		c.JSON(http.StatusCreated, gin.H{"insertedId": res.InsertedID})
	}
}

func GetPrescriptions(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := requestContext(c)
		defer cancel()

		cursor, err := db.Collection("prescriptions").Find(ctx, bson.M{})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "error fetching prescriptions"})
			return
		}
		defer cursor.Close(ctx)

		prescriptions := make([]models.Prescription, 0)
		if err := cursor.All(ctx, &prescriptions); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "decode error"})
			return
		}

		c.JSON(http.StatusOK, prescriptions)
	}
}
