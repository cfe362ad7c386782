package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	wsHub := NewHub()
	go wsHub.Run()
	return SetupRouter(nil, wsHub)
}

func TestHandleHealth(t *testing.T) {
	r := newTestRouter()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body["status"] != "ok" {
		t.Fatalf("expected status ok, got %v", body["status"])
	}
}

func TestHandleSubmitBatchMalformedJSON(t *testing.T) {
	r := newTestRouter()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/batches", strings.NewReader("not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestHandleSubmitBatchEmptyBatchReturnsEmptyShape(t *testing.T) {
	r := newTestRouter()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/batches", strings.NewReader(`{"transactions": []}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var doc struct {
		Elements        []interface{} `json:"elements"`
		FlaggedAccounts []interface{} `json:"flagged_accounts"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &doc); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(doc.Elements) != 0 || len(doc.FlaggedAccounts) != 0 {
		t.Fatalf("expected empty result shape, got %+v", doc)
	}
}

func TestHandleSubmitBatchSmallBatchRunsSynchronously(t *testing.T) {
	r := newTestRouter()
	body := `{"transactions": [
		{"Source": "A", "Target": "B", "Amount": "1000"},
		{"Source": "B", "Target": "C", "Amount": "1000"},
		{"Source": "C", "Target": "A", "Amount": "1000"}
	]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/batches", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var doc struct {
		FraudRings []interface{} `json:"fraud_rings"`
		BatchID    string        `json:"batch_id"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &doc); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(doc.FraudRings) != 1 {
		t.Fatalf("expected 1 fraud ring, got %d", len(doc.FraudRings))
	}
	if doc.BatchID == "" {
		t.Fatal("expected a stamped batch id")
	}
}

func TestHandleGetBatchUnknownID(t *testing.T) {
	r := newTestRouter()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/batches/does-not-exist", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestHandleSampleDisabledByDefault(t *testing.T) {
	r := newTestRouter()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/sample", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 when ENABLE_SYNTHETIC is unset, got %d", w.Code)
	}
}
