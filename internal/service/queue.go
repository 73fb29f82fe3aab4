package service

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"pawkie/internal/models"
	"pawkie/internal/store"
)

type EnqueueInput struct {
	Email    string
	DoctorID string
	PetName  string
	PetAge   string
	Problem  string
}

// Queue coordinates the per-doctor consultation waiting list.
type Queue struct {
	store store.Store
}

func NewQueue(s store.Store) *Queue {
	return &Queue{store: s}
}

// Enqueue resolves the patient by email and adds a waiting entry bound to
// the chosen doctor.
func (q *Queue) Enqueue(ctx context.Context, input EnqueueInput) (primitive.ObjectID, error) {
	if input.Email == "" || input.DoctorID == "" || input.PetName == "" {
		return primitive.NilObjectID, ValidationError{Message: "email, doctorId and petName are required"}
	}

	user, err := q.store.FindUserByEmail(ctx, input.Email)
	if errors.Is(err, store.ErrNotFound) {
		return primitive.NilObjectID, NotFoundError{Resource: "user", ID: input.Email}
	}
	if err != nil {
		return primitive.NilObjectID, StoreError{Op: "find user", Err: err}
	}

	entry := &models.QueueEntry{
		DoctorID:  input.DoctorID,
		UserID:    user.ID,
		PetName:   input.PetName,
		PetAge:    input.PetAge,
		Problem:   input.Problem,
		Status:    models.QueueStatusWaiting,
		CreatedAt: time.Now(),
	}

	entryID, err := q.store.InsertQueueEntry(ctx, entry)
	if err != nil {
		return primitive.NilObjectID, StoreError{Op: "insert queue entry", Err: err}
	}
	return entryID, nil
}

// Accept hands a waiting entry to the doctor. The store performs the match
// (doctor, entry, still waiting) and the mutation as one atomic update, so
// at most one of any number of concurrent accepts wins. A lost race and a
// missing entry both come back as NotFoundError; callers cannot tell them
// apart.
func (q *Queue) Accept(ctx context.Context, doctorID, entryID string) (*models.QueueEntry, error) {
	if doctorID == "" {
		return nil, ValidationError{Message: "doctorId is required"}
	}
	id, err := primitive.ObjectIDFromHex(entryID)
	if err != nil {
		return nil, ValidationError{Message: "invalid queue entry id"}
	}

	entry, err := q.store.AcceptEntry(ctx, doctorID, id, time.Now())
	if errors.Is(err, store.ErrNotFound) {
		return nil, NotFoundError{Resource: "queue entry", ID: entryID}
	}
	if err != nil {
		return nil, StoreError{Op: "accept queue entry", Err: err}
	}
	return entry, nil
}

// Waiting lists a doctor's pending entries, oldest first.
func (q *Queue) Waiting(ctx context.Context, doctorID string) ([]models.QueueEntry, error) {
	entries, err := q.store.ListWaitingEntries(ctx, doctorID)
	if err != nil {
		return nil, StoreError{Op: "list queue", Err: err}
	}
	return entries, nil
}
