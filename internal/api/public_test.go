package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Gori/mininews/internal/contacts"
	"github.com/Gori/mininews/internal/store"
	"github.com/Gori/mininews/internal/store/storetest"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newPublicRouter(s contacts.Store, getter NewsletterGetter) *gin.Engine {
	h := NewPublicHandlers(contacts.NewManager(s), getter, nil)
	r := gin.New()
	r.POST("/public/subscribe", h.Subscribe)
	return r
}

func seedPublicNewsletter(t *testing.T, mem *storetest.Memory) {
	t.Helper()
	err := mem.CreateNewsletter(context.Background(), &store.Newsletter{
		ID:            "nl-1",
		OwnerID:       "owner-1",
		Name:          "Digest",
		DriveFolderID: "F1",
		Status:        store.StatusDraft,
		CreatedAt:     time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("seed newsletter: %v", err)
	}
}

func postSubscribe(r *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/public/subscribe", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSubscribeMissingFields(t *testing.T) {
	mem := storetest.New()
	seedPublicNewsletter(t, mem)
	r := newPublicRouter(mem, mem)

	for _, body := range []string{
		`{}`,
		`{"newsletter_id": "nl-1"}`,
		`{"email": "a@x.com"}`,
	} {
		w := postSubscribe(r, body)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("body %s: expected 400, got %d", body, w.Code)
		}
	}
}

func TestSubscribeUnknownNewsletter(t *testing.T) {
	mem := storetest.New()
	r := newPublicRouter(mem, mem)

	w := postSubscribe(r, `{"newsletter_id": "nl-missing", "email": "a@x.com"}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

// Repeat opt-ins must be byte-identical to the first so the endpoint
// cannot be used to probe which emails are on a list.
func TestSubscribeResponseDoesNotLeakState(t *testing.T) {
	mem := storetest.New()
	seedPublicNewsletter(t, mem)
	r := newPublicRouter(mem, mem)

	first := postSubscribe(r, `{"newsletter_id": "nl-1", "email": "a@x.com"}`)
	if first.Code != http.StatusOK {
		t.Fatalf("first subscribe: expected 200, got %d", first.Code)
	}

	second := postSubscribe(r, `{"newsletter_id": "nl-1", "email": "a@x.com"}`)
	if second.Code != http.StatusOK {
		t.Fatalf("second subscribe: expected 200, got %d", second.Code)
	}
	if first.Body.String() != second.Body.String() {
		t.Fatalf("responses differ: %q vs %q", first.Body.String(), second.Body.String())
	}

	var resp struct {
		Success bool `json:"success"`
	}
	if err := json.Unmarshal(first.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if !resp.Success {
		t.Fatal("expected success: true")
	}

	if len(mem.Contacts) != 1 {
		t.Fatalf("expected one contact row, got %d", len(mem.Contacts))
	}
}

type failingStore struct {
	*storetest.Memory
}

func (s *failingStore) GetContactByEmail(ctx context.Context, newsletterID, email string) (*store.Contact, error) {
	return nil, errors.New("connection refused: db.internal:5432")
}

// Store failures surface as a generic 500; the driver error text stays in
// the logs.
func TestSubscribeStoreFailureHidesDetails(t *testing.T) {
	mem := storetest.New()
	seedPublicNewsletter(t, mem)
	r := newPublicRouter(&failingStore{mem}, mem)

	w := postSubscribe(r, `{"newsletter_id": "nl-1", "email": "a@x.com"}`)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	if strings.Contains(w.Body.String(), "db.internal") {
		t.Fatalf("response leaked store error text: %s", w.Body.String())
	}
}

func TestSubscribeInvalidBody(t *testing.T) {
	mem := storetest.New()
	seedPublicNewsletter(t, mem)
	r := newPublicRouter(mem, mem)

	w := postSubscribe(r, `{"newsletter_id": `)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}
