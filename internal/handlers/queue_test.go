package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"pawkie/internal/metrics"
	"pawkie/internal/middleware"
	"pawkie/internal/models"
	"pawkie/internal/service"
	"pawkie/internal/store"
)

func newQueueRouter(memory *store.Memory, email string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	queue := service.NewQueue(memory)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		if email != "" {
			c.Set(middleware.ContextEmailKey, email)
		}
		c.Next()
	})
	r.POST("/api/queue", EnqueuePatient(queue))
	r.GET("/api/queue", GetQueue(queue))
	r.POST("/api/queue/accept", AcceptFromQueue(queue))
	return r
}

func TestEnqueuePatient_CreatesWaitingEntry(t *testing.T) {
	memory := store.NewMemory()
	memory.SeedUser(models.User{Email: "owner@example.com", Name: "Owner"})

	r := newQueueRouter(memory, "owner@example.com")
	w := postJSON(r, "/api/queue", `{"doctorId":"dr-ayse","petName":"Boncuk","petAge":"3","problem":"limping"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if resp["insertedId"] == "" {
		t.Fatal("expected an insertedId in the response")
	}
}

func TestEnqueuePatient_UnknownUserIsNotFound(t *testing.T) {
	memory := store.NewMemory()
	r := newQueueRouter(memory, "ghost@example.com")

	w := postJSON(r, "/api/queue", `{"doctorId":"dr-ayse","petName":"Boncuk"}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", w.Code, w.Body.String())
	}
}

func TestGetQueue_RequiresDoctorID(t *testing.T) {
	memory := store.NewMemory()
	r := newQueueRouter(memory, "dr@example.com")

	req := httptest.NewRequest("GET", "/api/queue", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestGetQueue_ListsWaitingEntries(t *testing.T) {
	memory := store.NewMemory()
	memory.SeedUser(models.User{Email: "owner@example.com", Name: "Owner"})
	r := newQueueRouter(memory, "owner@example.com")

	if w := postJSON(r, "/api/queue", `{"doctorId":"dr-ayse","petName":"Boncuk"}`); w.Code != http.StatusCreated {
		t.Fatalf("seed enqueue failed: %d %s", w.Code, w.Body.String())
	}

	req := httptest.NewRequest("GET", "/api/queue?doctorId=dr-ayse", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var entries []models.QueueEntry
	if err := json.Unmarshal(w.Body.Bytes(), &entries); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 waiting entry, got %d", len(entries))
	}
	if entries[0].Status != models.QueueStatusWaiting {
		t.Fatalf("expected waiting status, got %s", entries[0].Status)
	}
}

func TestAcceptFromQueue_SecondAcceptIsNotFound(t *testing.T) {
	memory := store.NewMemory()
	memory.SeedUser(models.User{Email: "owner@example.com", Name: "Owner"})
	r := newQueueRouter(memory, "owner@example.com")

	w := postJSON(r, "/api/queue", `{"doctorId":"dr-ayse","petName":"Boncuk"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("seed enqueue failed: %d %s", w.Code, w.Body.String())
	}
	var created map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("invalid enqueue response: %v", err)
	}
	entryID := created["insertedId"]

	body := fmt.Sprintf(`{"doctorId":"dr-ayse","userId":%q}`, entryID)
	first := postJSON(r, "/api/queue/accept", body)
	if first.Code != http.StatusOK {
		t.Fatalf("expected first accept to win, got %d: %s", first.Code, first.Body.String())
	}

	var entry models.QueueEntry
	if err := json.Unmarshal(first.Body.Bytes(), &entry); err != nil {
		t.Fatalf("invalid accept response: %v", err)
	}
	if entry.Status != models.QueueStatusAccepted {
		t.Fatalf("expected accepted status, got %s", entry.Status)
	}
	if entry.AcceptedAt == nil {
		t.Fatal("expected acceptedAt to be set")
	}

	second := postJSON(r, "/api/queue/accept", body)
	if second.Code != http.StatusNotFound {
		t.Fatalf("expected second accept to lose with 404, got %d", second.Code)
	}
}

func TestAcceptFromQueue_CountsOnlyLostRacesAsLost(t *testing.T) {
	memory := store.NewMemory()
	memory.SeedUser(models.User{Email: "owner@example.com", Name: "Owner"})
	r := newQueueRouter(memory, "owner@example.com")

	lostBefore := testutil.ToFloat64(metrics.QueueAcceptsTotal.WithLabelValues("lost"))
	errorBefore := testutil.ToFloat64(metrics.QueueAcceptsTotal.WithLabelValues("error"))

	// Bad entry id is the caller's fault, not a lost race.
	w := postJSON(r, "/api/queue/accept", `{"doctorId":"dr-ayse","userId":"not-a-hex"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for a bad entry id, got %d", w.Code)
	}
	if got := testutil.ToFloat64(metrics.QueueAcceptsTotal.WithLabelValues("lost")); got != lostBefore {
		t.Fatalf("lost counter moved on a validation failure: %v -> %v", lostBefore, got)
	}
	if got := testutil.ToFloat64(metrics.QueueAcceptsTotal.WithLabelValues("error")); got != errorBefore+1 {
		t.Fatalf("error counter = %v, want %v", got, errorBefore+1)
	}

	w = postJSON(r, "/api/queue", `{"doctorId":"dr-ayse","petName":"Boncuk"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("seed enqueue failed: %d %s", w.Code, w.Body.String())
	}
	var created map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("invalid enqueue response: %v", err)
	}

	body := fmt.Sprintf(`{"doctorId":"dr-ayse","userId":%q}`, created["insertedId"])
	if w := postJSON(r, "/api/queue/accept", body); w.Code != http.StatusOK {
		t.Fatalf("first accept should win, got %d", w.Code)
	}
	if w := postJSON(r, "/api/queue/accept", body); w.Code != http.StatusNotFound {
		t.Fatalf("second accept should lose with 404, got %d", w.Code)
	}
	if got := testutil.ToFloat64(metrics.QueueAcceptsTotal.WithLabelValues("lost")); got != lostBefore+1 {
		t.Fatalf("lost counter = %v, want %v", got, lostBefore+1)
	}
}
