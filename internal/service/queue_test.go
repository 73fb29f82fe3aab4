package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"pawkie/internal/models"
	"pawkie/internal/store"
)

func newQueueService() (*Queue, *store.Memory) {
	mem := store.NewMemory()
	return NewQueue(mem), mem
}

func TestEnqueueUnknownUser(t *testing.T) {
	svc, _ := newQueueService()

	_, err := svc.Enqueue(context.Background(), EnqueueInput{
		Email:    "ghost@example.com",
		DoctorID: "doctorA",
		PetName:  "Mimi",
		Problem:  "not eating",
	})

	var notFound NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestEnqueueValidation(t *testing.T) {
	svc, mem := newQueueService()
	mem.SeedUser(models.User{Email: "owner@example.com", Name: "Owner", Role: models.RoleUser})

	_, err := svc.Enqueue(context.Background(), EnqueueInput{Email: "owner@example.com", DoctorID: "doctorA"})
	var validation ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError for missing petName, got %v", err)
	}
}

func TestEnqueueCreatesWaitingEntry(t *testing.T) {
	svc, mem := newQueueService()
	ctx := context.Background()
	userID := mem.SeedUser(models.User{Email: "owner@example.com", Name: "Owner", Role: models.RoleUser})

	entryID, err := svc.Enqueue(ctx, EnqueueInput{
		Email:    "owner@example.com",
		DoctorID: "doctorA",
		PetName:  "Mimi",
		PetAge:   "3",
		Problem:  "limping",
	})
	if err != nil {
		t.Fatalf("Enqueue returned error: %v", err)
	}

	waiting, err := svc.Waiting(ctx, "doctorA")
	if err != nil {
		t.Fatalf("Waiting returned error: %v", err)
	}
	if len(waiting) != 1 {
		t.Fatalf("expected one waiting entry, got %d", len(waiting))
	}
	entry := waiting[0]
	if entry.ID != entryID || entry.UserID != userID {
		t.Fatalf("entry identity mismatch: %+v", entry)
	}
	if entry.Status != models.QueueStatusWaiting {
		t.Fatalf("status = %s, want waiting", entry.Status)
	}
	if entry.AcceptedAt != nil {
		t.Fatal("acceptedAt must be unset before acceptance")
	}
}

func TestAcceptThenSecondAcceptFails(t *testing.T) {
	svc, mem := newQueueService()
	ctx := context.Background()
	mem.SeedUser(models.User{Email: "owner@example.com", Name: "Owner", Role: models.RoleUser})

	entryID, err := svc.Enqueue(ctx, EnqueueInput{
		Email:    "owner@example.com",
		DoctorID: "doctorA",
		PetName:  "Mimi",
		Problem:  "limping",
	})
	if err != nil {
		t.Fatalf("Enqueue returned error: %v", err)
	}

	entry, err := svc.Accept(ctx, "doctorA", entryID.Hex())
	if err != nil {
		t.Fatalf("first Accept returned error: %v", err)
	}
	if entry.Status != models.QueueStatusAccepted {
		t.Fatalf("status = %s, want accepted", entry.Status)
	}
	if entry.AcceptedAt == nil {
		t.Fatal("acceptedAt must be set on acceptance")
	}

	_, err = svc.Accept(ctx, "doctorB", entryID.Hex())
	var notFound NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("second Accept: expected NotFoundError, got %v", err)
	}

	// A duplicate click from the winning doctor fails the same way.
	_, err = svc.Accept(ctx, "doctorA", entryID.Hex())
	if !errors.As(err, &notFound) {
		t.Fatalf("duplicate Accept: expected NotFoundError, got %v", err)
	}
}

func TestAcceptWrongDoctorLooksLikeMissing(t *testing.T) {
	svc, mem := newQueueService()
	ctx := context.Background()
	mem.SeedUser(models.User{Email: "owner@example.com", Name: "Owner", Role: models.RoleUser})

	entryID, err := svc.Enqueue(ctx, EnqueueInput{
		Email:    "owner@example.com",
		DoctorID: "doctorA",
		PetName:  "Mimi",
		Problem:  "limping",
	})
	if err != nil {
		t.Fatalf("Enqueue returned error: %v", err)
	}

	_, err = svc.Accept(ctx, "doctorB", entryID.Hex())
	var notFound NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError for another doctor's entry, got %v", err)
	}

	// The entry is untouched and doctorA can still take it.
	if _, err := svc.Accept(ctx, "doctorA", entryID.Hex()); err != nil {
		t.Fatalf("owning doctor could not accept after failed attempt: %v", err)
	}
}

func TestAcceptConcurrentExactlyOneWinner(t *testing.T) {
	svc, mem := newQueueService()
	ctx := context.Background()
	mem.SeedUser(models.User{Email: "owner@example.com", Name: "Owner", Role: models.RoleUser})

	entryID, err := svc.Enqueue(ctx, EnqueueInput{
		Email:    "owner@example.com",
		DoctorID: "doctorA",
		PetName:  "Mimi",
		Problem:  "limping",
	})
	if err != nil {
		t.Fatalf("Enqueue returned error: %v", err)
	}

	const attempts = 8
	results := make(chan error, attempts)
	var start sync.WaitGroup
	start.Add(1)
	for i := 0; i < attempts; i++ {
		go func() {
			start.Wait()
			_, err := svc.Accept(ctx, "doctorA", entryID.Hex())
			results <- err
		}()
	}
	start.Done()

	var won, lost int
	for i := 0; i < attempts; i++ {
		err := <-results
		if err == nil {
			won++
			continue
		}
		var notFound NotFoundError
		if !errors.As(err, &notFound) {
			t.Fatalf("unexpected error: %v", err)
		}
		lost++
	}

	if won != 1 || lost != attempts-1 {
		t.Fatalf("expected exactly one winner, got %d winners and %d losers", won, lost)
	}
}
