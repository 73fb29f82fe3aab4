package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"pawkie/internal/metrics"
	"pawkie/internal/middleware"
	"pawkie/internal/service"
)

type enqueueRequest struct {
	DoctorID string `json:"doctorId" binding:"required"`
	PetName  string `json:"petName" binding:"required"`
	PetAge   string `json:"petAge"`
	Problem  string `json:"problem"`
}

type acceptRequest struct {
	DoctorID string `json:"doctorId" binding:"required"`
	UserID   string `json:"userId" binding:"required"`
}

// EnqueuePatient adds the caller's pet to a doctor's waiting list.
func EnqueuePatient(queue *service.Queue) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/queue"
		defer handlePanic(c, route)

		email := c.GetString(middleware.ContextEmailKey)
		if email == "" {
			respondWithError(c, http.StatusUnauthorized, route, "unauthorized")
			return
		}

		var req enqueueRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		entryID, err := queue.Enqueue(ctx, service.EnqueueInput{
			Email:    email,
			DoctorID: strings.TrimSpace(req.DoctorID),
			PetName:  strings.TrimSpace(req.PetName),
			PetAge:   strings.TrimSpace(req.PetAge),
			Problem:  strings.TrimSpace(req.Problem),
		})
		if err != nil {
			respondServiceError(c, route, err)
			return
		}

		log.Println("[QUEUE] [INFO] entry added:", entryID.Hex())
		c.JSON(http.StatusCreated, gin.H{"insertedId": entryID.Hex()})
	}
}

// GetQueue lists a doctor's waiting entries.
func GetQueue(queue *service.Queue) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/queue"
		defer handlePanic(c, route)

		doctorID := strings.TrimSpace(c.Query("doctorId"))
		if doctorID == "" {
			respondWithError(c, http.StatusBadRequest, route, "doctorId is required")
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		entries, err := queue.Waiting(ctx, doctorID)
		if err != nil {
			respondServiceError(c, route, err)
			return
		}

		c.JSON(http.StatusOK, entries)
	}
}

// AcceptFromQueue hands a waiting entry to the doctor. The body's userId
// field carries the queue entry id, a quirk the web client has always had.
func AcceptFromQueue(queue *service.Queue) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/queue/accept"
		defer handlePanic(c, route)

		var req acceptRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		entry, err := queue.Accept(ctx, strings.TrimSpace(req.DoctorID), strings.TrimSpace(req.UserID))
		if err != nil {
			// Only a not-found is a lost race; bad input and store
			// trouble get their own outcome.
			var notFoundErr service.NotFoundError
			if errors.As(err, &notFoundErr) {
				metrics.QueueAcceptsTotal.WithLabelValues("lost").Inc()
			} else {
				metrics.QueueAcceptsTotal.WithLabelValues("error").Inc()
			}
			respondServiceError(c, route, err)
			return
		}

		metrics.QueueAcceptsTotal.WithLabelValues("won").Inc()
		log.Println("[QUEUE] [INFO] entry accepted:", entry.ID.Hex(), "by doctor:", entry.DoctorID)
		c.JSON(http.StatusOK, entry)
	}
}
